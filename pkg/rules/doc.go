// Package rules defines the validator model of the engine: named rule
// implementations, the registry that resolves declared rule names to
// executable validators, requirement parsing with fail-fast shape checking,
// the failure-message catalog with locale overrides, and the shared HTTP
// transport for network-backed rules.
//
// # Architecture
//
// Validators live in two tiers. The standard tier is the built-in table
// (required, type, pattern, length and numeric bounds, cross-field equality,
// group-count rules, remote) and may be shadowed by a same-named custom rule.
// The custom tier holds user-registered and remote rules; names there are
// unique and a collision is a logged no-op. Registration is a setup-phase
// call completed before evaluation begins.
//
// A validator's Check is the single predicate contract: nil error for a
// pass, *Violation for the expected "this rule did not pass" outcome, any
// other error for a programming or infrastructure fault that must propagate.
// Network-backed rules block inside Check on the shared Transport; the
// engine decides whether such checks run sequentially or concurrently.
//
// Requirements are declared as strings and parsed once at construction time:
// scalars stay as-is, list ("[2, 5]") and object ("{url: /check}") literals
// go through YAML flow parsing so the relaxed quoting of the declaration
// surface is tolerated. Compile then checks the parsed form against the
// validator's declared requirement type and caches typed views; a mismatch
// is a construction error, never a silent coercion.
//
// # Usage
//
//	reg := rules.NewRegistry()
//	_ = reg.Register(rules.Validator{
//	    Name: "vowel",
//	    Check: func(ctx context.Context, v rules.Value, req rules.Requirement, _ rules.FieldContext) (string, error) {
//	        if !strings.ContainsAny(v.Scalar(), "aeiou") {
//	            return "", rules.Fail("vowel")
//	        }
//	        return "", nil
//	    },
//	})
//	v, err := reg.Resolve("minlength", rules.MustRequirement("3"))
package rules
