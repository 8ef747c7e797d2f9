package rules

import "errors"

var (
	// ErrUnknownRule is returned when resolving a rule name no tier knows.
	ErrUnknownRule = errors.New("rules: unknown rule")

	// ErrUnknownType is returned when the type rule is declared with a
	// sub-kind that has no registered tester.
	ErrUnknownType = errors.New("rules: unknown type tester")

	// ErrRuleExists is returned when registering a custom or remote rule
	// under a name already taken in that tier. Registration is a no-op.
	ErrRuleExists = errors.New("rules: rule already registered")

	// ErrInvalidRule is returned when a validator definition is unusable
	// (empty name or nil check).
	ErrInvalidRule = errors.New("rules: invalid rule definition")

	// ErrBadRequirement is returned when a declared requirement does not
	// match the shape the rule expects. This is a construction-time error.
	ErrBadRequirement = errors.New("rules: bad requirement")

	// ErrRemoteTransport wraps network-level and non-2xx failures of a
	// remote check. It is an infrastructure fault, never rendered as a
	// field-level message.
	ErrRemoteTransport = errors.New("rules: remote check transport failure")
)
