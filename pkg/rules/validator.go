package rules

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Violation is the expected failure result of one constraint: the rule that
// did not pass plus a human-readable message. It is the normal "input is
// invalid" outcome, never a programming or infrastructure fault.
type Violation struct {
	Rule    string
	Message string
}

func (v *Violation) Error() string {
	if v.Message == "" {
		return fmt.Sprintf("rule %q not satisfied", v.Rule)
	}
	return fmt.Sprintf("%s: %s", v.Rule, v.Message)
}

// Fail builds a Violation for the given rule. The message is usually filled
// in later from the message catalog; remote rules may pre-fill it with a
// server-supplied message.
func Fail(rule string) *Violation {
	return &Violation{Rule: rule}
}

// AsViolation extracts a Violation from an error chain, distinguishing the
// expected rule-failure outcome from unexpected errors that must propagate.
func AsViolation(err error) (*Violation, bool) {
	var v *Violation
	if errors.As(err, &v) {
		return v, true
	}
	return nil, false
}

// Violations is an ordered collection of rule failures for one entity.
type Violations []*Violation

func (vs Violations) Error() string {
	if len(vs) == 0 {
		return "validation failed"
	}
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = v.Error()
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (vs Violations) Has(rule string) bool {
	for _, v := range vs {
		if v.Rule == rule {
			return true
		}
	}
	return false
}

func (vs Violations) Messages() []string {
	messages := make([]string, len(vs))
	for i, v := range vs {
		messages[i] = v.Message
	}
	return messages
}

// FieldContext is the narrow view of the owning entity a validator may
// inspect: its identifier, whether it is a composite, a peer-value lookup for
// cross-field rules, and the child snapshot for group-oriented remote rules.
type FieldContext struct {
	ID    string
	Group bool

	// Peer resolves another entity's current value by identifier.
	// Nil when the entity is not attached to a collection.
	Peer func(id string) (Value, bool)

	// Children returns the child identifier to value snapshot for
	// composites; nil for leaf fields.
	Children func() map[string]Value
}

// CheckFunc is the validator predicate contract. A nil error is a pass; the
// returned message, when non-empty, overrides the catalog success message
// (remote rules forward server-supplied messages through it). A *Violation
// error is the expected rule failure; any other error is unexpected and is
// propagated rather than rendered.
type CheckFunc func(ctx context.Context, value Value, req Requirement, fctx FieldContext) (string, error)

// DualPair declares a two-attribute pairing: when the named companion rule is
// declared on the same entity, both are replaced by the combined rule.
type DualPair struct {
	Companion string
	Combined  string
}

// Validator is a named, reusable rule implementation.
type Validator struct {
	Name          string
	Priority      int
	GroupOriented bool

	// RequirementType declares the shape the requirement must compile to,
	// e.g. "integer", "regexp", "[integer,integer]". Empty means any scalar.
	RequirementType string

	// Dual, when set, names the companion attribute and the combined rule
	// that replaces the pair.
	Dual *DualPair

	// Message is the validator's default failure template with %s-style
	// positional placeholders. Empty falls back to the catalog.
	Message string

	Check CheckFunc
}

// MessageKey returns the catalog key for this validator's failure message.
// The type rule is keyed per sub-kind ("type.email", "type.number", ...).
func (v Validator) MessageKey(req Requirement) string {
	if v.Name == RuleType {
		return RuleType + "." + req.Scalar()
	}
	return v.Name
}
