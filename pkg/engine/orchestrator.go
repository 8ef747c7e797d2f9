package engine

import (
	"context"
	"sort"

	"github.com/formcheck-go/formcheck/pkg/async"
	"github.com/formcheck-go/formcheck/pkg/rules"
)

// Outcome is an entity's settled evaluation result.
type Outcome struct {
	Valid bool

	// Blocked marks a composite rejected because of an invalid child; its
	// own constraints never ran and Errors is empty. Callers can thereby
	// distinguish "this group is blocked" from "this group's own rule
	// failed".
	Blocked bool

	Errors         rules.Violations
	SuccessMessage string
}

// step is one pending constraint evaluation bound to its inputs.
type step struct {
	constraint *Constraint
	run        func(ctx context.Context) (string, error)
}

// sortSteps orders steps by descending priority. The sort is stable so
// same-priority constraints keep declaration order.
func sortSteps(steps []step) {
	sort.SliceStable(steps, func(i, j int) bool {
		return steps[i].constraint.Priority() > steps[j].constraint.Priority()
	})
}

// runSteps executes the constraint set under the configured strategy. Both
// strategies yield the same final verdict for a given set and value; they
// differ only in latency and in whether lower-priority checks are skipped
// after an earlier failure.
func runSteps(ctx context.Context, cfg Config, steps []step) (Outcome, error) {
	sortSteps(steps)
	if cfg.StopAtFirstError {
		return runSequential(ctx, cfg, steps)
	}
	return runConcurrent(ctx, cfg, steps)
}

// runSequential runs steps strictly one at a time in priority order,
// stopping at the first expected failure.
func runSequential(ctx context.Context, cfg Config, steps []step) (Outcome, error) {
	var successMessage string
	for _, s := range steps {
		msg, err := s.run(ctx)
		if err != nil {
			if v, ok := rules.AsViolation(err); ok {
				return Outcome{Valid: false, Errors: foldViolations(cfg, rules.Violations{v})}, nil
			}
			return Outcome{}, err
		}
		if successMessage == "" {
			successMessage = msg
		}
	}
	return Outcome{Valid: true, SuccessMessage: successMessage}, nil
}

// runConcurrent starts every step together and waits for all to settle, so
// the commit still appears atomic to observers.
func runConcurrent(ctx context.Context, cfg Config, steps []step) (Outcome, error) {
	futures := make([]*async.Future[string], len(steps))
	for i, s := range steps {
		futures[i] = async.Go(ctx, s.run)
	}

	messages, errs := async.SettleAll(futures...)

	if errs != nil {
		var violations rules.Violations
		for _, err := range errs {
			if err == nil {
				continue
			}
			v, ok := rules.AsViolation(err)
			if !ok {
				return Outcome{}, err
			}
			violations = append(violations, v)
		}
		if len(violations) > 0 {
			return Outcome{Valid: false, Errors: foldViolations(cfg, violations)}, nil
		}
	}

	var successMessage string
	for _, msg := range messages {
		if msg != "" {
			successMessage = msg
			break
		}
	}
	return Outcome{Valid: true, SuccessMessage: successMessage}, nil
}

// foldViolations applies the single-error policy: with ShowMultipleErrors
// disabled only one violation is reported, and a required failure is folded
// to the front in preference to any other.
func foldViolations(cfg Config, violations rules.Violations) rules.Violations {
	if cfg.ShowMultipleErrors || len(violations) <= 1 {
		return violations
	}
	for _, v := range violations {
		if v.Rule == rules.RuleRequired {
			return rules.Violations{v}
		}
	}
	return violations[:1]
}
