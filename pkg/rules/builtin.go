package rules

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"unicode/utf8"
)

// Built-in rule names.
const (
	RuleRequired    = "required"
	RuleType        = "type"
	RuleNotBlank    = "notblank"
	RulePattern     = "pattern"
	RuleMinLength   = "minlength"
	RuleMaxLength   = "maxlength"
	RuleLength      = "length"
	RuleMin         = "min"
	RuleMax         = "max"
	RuleRange       = "range"
	RuleEqualTo     = "equalto"
	RuleMinCheck    = "mincheck"
	RuleMaxCheck    = "maxcheck"
	RuleCheck       = "check"
	RuleMinRequired = "minrequired"
	RuleRemote      = "remote"
)

// Priorities order execution: required always first, remote always last so
// short-circuit runs skip the network round-trip whenever a cheaper rule
// already failed.
const (
	PriorityRequired   = 100
	PriorityType       = 90
	PriorityNotBlank   = 85
	PriorityPattern    = 80
	PriorityLength     = 70
	PriorityNumeric    = 60
	PriorityCrossField = 40
	PriorityCustom     = 35
	PriorityGroupCount = 30
	PriorityRemote     = 10
)

// Type sub-kind testers for the "type" rule. The requirement string must name
// one of these; resolution fails otherwise.
var (
	emailPattern    = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	digitsPattern   = regexp.MustCompile(`^[0-9]+$`)
	alphanumPattern = regexp.MustCompile(`^\w+$`)
)

var typeTesters = map[string]func(string) bool{
	"email": emailPattern.MatchString,
	"number": func(s string) bool {
		_, err := strconv.ParseFloat(s, 64)
		return err == nil
	},
	"integer": func(s string) bool {
		_, err := strconv.Atoi(s)
		return err == nil
	},
	"digits":   digitsPattern.MatchString,
	"alphanum": alphanumPattern.MatchString,
	"url": func(s string) bool {
		u, err := url.Parse(s)
		return err == nil && u.Scheme != "" && u.Host != ""
	},
}

// KnownType reports whether the type rule supports the given sub-kind.
func KnownType(sub string) bool {
	_, ok := typeTesters[sub]
	return ok
}

func standardValidators() []Validator {
	return []Validator{
		{
			Name:            RuleRequired,
			Priority:        PriorityRequired,
			RequirementType: "boolean",
			Check: func(_ context.Context, v Value, req Requirement, _ FieldContext) (string, error) {
				if !req.Bool() {
					return "", nil
				}
				if v.IsEmpty() {
					return "", Fail(RuleRequired)
				}
				return "", nil
			},
		},
		{
			Name:            RuleType,
			Priority:        PriorityType,
			RequirementType: "string",
			Check: func(_ context.Context, v Value, req Requirement, _ FieldContext) (string, error) {
				tester, ok := typeTesters[req.Scalar()]
				if !ok {
					return "", fmt.Errorf("%w: %q", ErrUnknownType, req.Scalar())
				}
				if !tester(v.Scalar()) {
					return "", Fail(RuleType)
				}
				return "", nil
			},
		},
		{
			Name:            RuleNotBlank,
			Priority:        PriorityNotBlank,
			RequirementType: "boolean",
			Check: func(_ context.Context, v Value, req Requirement, _ FieldContext) (string, error) {
				if !req.Bool() {
					return "", nil
				}
				if v.Trim().IsEmpty() {
					return "", Fail(RuleNotBlank)
				}
				return "", nil
			},
		},
		{
			Name:            RulePattern,
			Priority:        PriorityPattern,
			RequirementType: "regexp",
			Check: func(_ context.Context, v Value, req Requirement, _ FieldContext) (string, error) {
				if !req.Pattern().MatchString(v.Scalar()) {
					return "", Fail(RulePattern)
				}
				return "", nil
			},
		},
		{
			Name:            RuleMinLength,
			Priority:        PriorityLength,
			RequirementType: "integer",
			Dual:            &DualPair{Companion: RuleMaxLength, Combined: RuleLength},
			Check: func(_ context.Context, v Value, req Requirement, _ FieldContext) (string, error) {
				if utf8.RuneCountInString(v.Scalar()) < req.Int(0) {
					return "", Fail(RuleMinLength)
				}
				return "", nil
			},
		},
		{
			Name:            RuleMaxLength,
			Priority:        PriorityLength,
			RequirementType: "integer",
			Check: func(_ context.Context, v Value, req Requirement, _ FieldContext) (string, error) {
				if utf8.RuneCountInString(v.Scalar()) > req.Int(0) {
					return "", Fail(RuleMaxLength)
				}
				return "", nil
			},
		},
		{
			Name:            RuleLength,
			Priority:        PriorityLength,
			RequirementType: "[integer,integer]",
			Check: func(_ context.Context, v Value, req Requirement, _ FieldContext) (string, error) {
				n := utf8.RuneCountInString(v.Scalar())
				if n < req.Int(0) || n > req.Int(1) {
					return "", Fail(RuleLength)
				}
				return "", nil
			},
		},
		{
			Name:            RuleMin,
			Priority:        PriorityNumeric,
			RequirementType: "number",
			Dual:            &DualPair{Companion: RuleMax, Combined: RuleRange},
			Check: func(_ context.Context, v Value, req Requirement, _ FieldContext) (string, error) {
				f, err := strconv.ParseFloat(v.Scalar(), 64)
				if err != nil || f < req.Num(0) {
					return "", Fail(RuleMin)
				}
				return "", nil
			},
		},
		{
			Name:            RuleMax,
			Priority:        PriorityNumeric,
			RequirementType: "number",
			Check: func(_ context.Context, v Value, req Requirement, _ FieldContext) (string, error) {
				f, err := strconv.ParseFloat(v.Scalar(), 64)
				if err != nil || f > req.Num(0) {
					return "", Fail(RuleMax)
				}
				return "", nil
			},
		},
		{
			Name:            RuleRange,
			Priority:        PriorityNumeric,
			RequirementType: "[number,number]",
			Check: func(_ context.Context, v Value, req Requirement, _ FieldContext) (string, error) {
				f, err := strconv.ParseFloat(v.Scalar(), 64)
				if err != nil || f < req.Num(0) || f > req.Num(1) {
					return "", Fail(RuleRange)
				}
				return "", nil
			},
		},
		{
			Name:            RuleEqualTo,
			Priority:        PriorityCrossField,
			RequirementType: "string|fieldref",
			Check: func(_ context.Context, v Value, req Requirement, fctx FieldContext) (string, error) {
				if fctx.Peer == nil {
					return "", Fail(RuleEqualTo)
				}
				peer, ok := fctx.Peer(req.Scalar())
				if !ok || !v.Equal(peer) {
					return "", Fail(RuleEqualTo)
				}
				return "", nil
			},
		},
		{
			Name:            RuleMinCheck,
			Priority:        PriorityGroupCount,
			GroupOriented:   true,
			RequirementType: "integer",
			Dual:            &DualPair{Companion: RuleMaxCheck, Combined: RuleCheck},
			Check: func(_ context.Context, v Value, req Requirement, _ FieldContext) (string, error) {
				if v.Count() < req.Int(0) {
					return "", Fail(RuleMinCheck)
				}
				return "", nil
			},
		},
		{
			Name:            RuleMaxCheck,
			Priority:        PriorityGroupCount,
			GroupOriented:   true,
			RequirementType: "integer",
			Check: func(_ context.Context, v Value, req Requirement, _ FieldContext) (string, error) {
				if v.Count() > req.Int(0) {
					return "", Fail(RuleMaxCheck)
				}
				return "", nil
			},
		},
		{
			Name:            RuleCheck,
			Priority:        PriorityGroupCount,
			GroupOriented:   true,
			RequirementType: "[integer,integer]",
			Check: func(_ context.Context, v Value, req Requirement, _ FieldContext) (string, error) {
				n := v.Count()
				if n < req.Int(0) || n > req.Int(1) {
					return "", Fail(RuleCheck)
				}
				return "", nil
			},
		},
		{
			Name:            RuleMinRequired,
			Priority:        PriorityGroupCount,
			GroupOriented:   true,
			RequirementType: "integer",
			Check: func(_ context.Context, v Value, req Requirement, _ FieldContext) (string, error) {
				if v.NonEmptyCount() < req.Int(0) {
					return "", Fail(RuleMinRequired)
				}
				return "", nil
			},
		},
	}
}
