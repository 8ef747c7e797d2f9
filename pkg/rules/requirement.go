package rules

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ReqKind discriminates the structural forms a declared requirement can take.
type ReqKind int

const (
	ReqScalar ReqKind = iota
	ReqList
	ReqObject
)

// Requirement is the parsed configuration value of one rule declaration:
// a scalar ("3", "#other-field"), a list ("[4, 20]") or an object
// ("{url: /api/check, mode: strict}"). List and object literals are parsed
// with YAML flow syntax, which tolerates the unquoted keys and relaxed
// quoting the declaration surface allows.
type Requirement struct {
	raw    string
	kind   ReqKind
	scalar string
	list   []string
	object map[string]any

	// Typed forms populated by Compile according to the validator's
	// declared requirement type.
	ints    []int
	nums    []float64
	pattern *regexp.Regexp
	boolean bool
}

// ParseRequirement parses a raw declaration string into its structural form.
// Malformed list/object literals are construction errors.
func ParseRequirement(raw string) (Requirement, error) {
	trimmed := strings.TrimSpace(raw)

	switch {
	case strings.HasPrefix(trimmed, "["):
		var items []any
		if err := yaml.Unmarshal([]byte(trimmed), &items); err != nil {
			return Requirement{}, fmt.Errorf("%w: malformed list literal %q: %w", ErrBadRequirement, raw, err)
		}
		list := make([]string, len(items))
		for i, item := range items {
			list[i] = strings.TrimSpace(fmt.Sprint(item))
		}
		return Requirement{raw: raw, kind: ReqList, list: list}, nil

	case strings.HasPrefix(trimmed, "{"):
		var obj map[string]any
		if err := yaml.Unmarshal([]byte(trimmed), &obj); err != nil {
			return Requirement{}, fmt.Errorf("%w: malformed object literal %q: %w", ErrBadRequirement, raw, err)
		}
		return Requirement{raw: raw, kind: ReqObject, object: obj}, nil

	default:
		return Requirement{raw: raw, kind: ReqScalar, scalar: trimmed}, nil
	}
}

// MustRequirement is a test and table-literal helper that panics on parse
// failure.
func MustRequirement(raw string) Requirement {
	req, err := ParseRequirement(raw)
	if err != nil {
		panic(err)
	}
	return req
}

// Compile checks the requirement against a validator's declared requirement
// type and caches the typed forms. A shape mismatch is a construction error:
// the engine fails fast instead of coercing at evaluation time.
func (r *Requirement) Compile(reqType string) error {
	switch reqType {
	case "", "string", "string|fieldref":
		// Any scalar is acceptable, including the empty string.
		return nil

	case "boolean":
		switch r.scalar {
		case "", "true":
			r.boolean = true
		case "false":
			r.boolean = false
		default:
			return fmt.Errorf("%w: expected boolean, got %q", ErrBadRequirement, r.raw)
		}
		return nil

	case "integer":
		if r.kind != ReqScalar {
			return fmt.Errorf("%w: expected integer, got %q", ErrBadRequirement, r.raw)
		}
		n, err := strconv.Atoi(r.scalar)
		if err != nil {
			return fmt.Errorf("%w: expected integer, got %q", ErrBadRequirement, r.raw)
		}
		r.ints = []int{n}
		return nil

	case "number":
		if r.kind != ReqScalar {
			return fmt.Errorf("%w: expected number, got %q", ErrBadRequirement, r.raw)
		}
		f, err := strconv.ParseFloat(r.scalar, 64)
		if err != nil {
			return fmt.Errorf("%w: expected number, got %q", ErrBadRequirement, r.raw)
		}
		r.nums = []float64{f}
		return nil

	case "regexp":
		if r.kind != ReqScalar || r.scalar == "" {
			return fmt.Errorf("%w: expected pattern, got %q", ErrBadRequirement, r.raw)
		}
		re, err := regexp.Compile(r.scalar)
		if err != nil {
			return fmt.Errorf("%w: invalid pattern %q: %w", ErrBadRequirement, r.raw, err)
		}
		r.pattern = re
		return nil

	case "[integer,integer]":
		if r.kind != ReqList || len(r.list) != 2 {
			return fmt.Errorf("%w: expected [integer, integer], got %q", ErrBadRequirement, r.raw)
		}
		r.ints = make([]int, 2)
		for i, item := range r.list {
			n, err := strconv.Atoi(item)
			if err != nil {
				return fmt.Errorf("%w: expected [integer, integer], got %q", ErrBadRequirement, r.raw)
			}
			r.ints[i] = n
		}
		return nil

	case "[number,number]":
		if r.kind != ReqList || len(r.list) != 2 {
			return fmt.Errorf("%w: expected [number, number], got %q", ErrBadRequirement, r.raw)
		}
		r.nums = make([]float64, 2)
		for i, item := range r.list {
			f, err := strconv.ParseFloat(item, 64)
			if err != nil {
				return fmt.Errorf("%w: expected [number, number], got %q", ErrBadRequirement, r.raw)
			}
			r.nums[i] = f
		}
		return nil

	case "object|string":
		if r.kind == ReqList {
			return fmt.Errorf("%w: expected object or string, got list %q", ErrBadRequirement, r.raw)
		}
		return nil

	default:
		return fmt.Errorf("%w: unknown requirement type %q", ErrBadRequirement, reqType)
	}
}

func (r Requirement) Raw() string    { return r.raw }
func (r Requirement) Kind() ReqKind  { return r.kind }
func (r Requirement) Scalar() string { return r.scalar }
func (r Requirement) List() []string { return r.list }
func (r Requirement) Bool() bool     { return r.boolean }

// Object returns the parsed object form, or nil for scalar/list requirements.
func (r Requirement) Object() map[string]any { return r.object }

// Int returns the i-th compiled integer; valid only after Compile succeeded
// with an integer-shaped requirement type.
func (r Requirement) Int(i int) int { return r.ints[i] }

// Num returns the i-th compiled number.
func (r Requirement) Num(i int) float64 { return r.nums[i] }

// Pattern returns the compiled regular expression.
func (r Requirement) Pattern() *regexp.Regexp { return r.pattern }

// Placeholders returns the requirement's display values in declaration
// order, used for positional %s substitution in message templates.
func (r Requirement) Placeholders() []string {
	switch r.kind {
	case ReqList:
		return r.list
	case ReqObject:
		return nil
	default:
		return []string{r.scalar}
	}
}

// combineDual merges two companion scalar requirements into the list literal
// the combined rule expects, e.g. minlength=2 + maxlength=5 into "[2, 5]".
func combineDual(low, high string) string {
	return fmt.Sprintf("[%s, %s]", strings.TrimSpace(low), strings.TrimSpace(high))
}
