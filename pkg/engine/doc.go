// Package engine orchestrates constraint validation over a tree of entities:
// leaf fields, composite groups and the root form.
//
// # Architecture
//
// An Entity is the validity unit. The variant set is closed: Field wraps a
// single value source, Group derives its value from an ordered list of child
// fields and gates its own constraints behind every child being valid. Both
// compose the same core (constraint set, tri-state cache, lifecycle state
// machine, conditional gate); neither extends the other.
//
// Evaluation follows a fixed protocol. An unchanged value returns the cached
// settled outcome with zero constraint executions. Discrete-choice inputs
// validated individually settle valid, as do entities whose conditional gate
// resolves false, entities with no constraints, and empty optional values
// (group-oriented count rules still run for composites). Everything else is
// handed to the orchestrator, which sorts constraints by descending priority
// and executes them under one of two strategies selected by
// Config.StopAtFirstError: strictly sequential with a stop at the first
// failure, or all-concurrent with every failure collected. Both strategies
// produce the same final verdict; they differ in latency and in which remote
// checks are actually issued.
//
// Settling is atomic from the caller's perspective: state, cached value and
// outcome move together, and listeners are notified exactly once per
// evaluation through the form's event surface. A result whose value snapshot
// went stale while a remote check was in flight is discarded.
//
// # Usage
//
//	form := engine.NewForm()
//	email, _ := form.AddField("email", engine.NewVar("a@b.co"), map[string]string{
//	    "required": "true",
//	    "type":     "email",
//	})
//	result, err := form.Validate(ctx)
//
// Validation errors are reported in the Result; the error return is reserved
// for construction and infrastructure faults.
package engine
