package engine

import (
	"context"

	"github.com/formcheck-go/formcheck/pkg/async"
	"github.com/formcheck-go/formcheck/pkg/rules"
)

// Multiplicity determines how a composite derives its own value from its
// children.
type Multiplicity int

const (
	// Plain composites aggregate every child's value.
	Plain Multiplicity = iota
	// SingleSelect composites (radio groups) read the one selected choice.
	SingleSelect
	// MultiSelect composites (checkbox groups) collect all selected choices.
	MultiSelect
)

// Group is the composite entity: its value derives from an ordered list of
// child fields, and its own constraints only run once every child is valid.
type Group struct {
	core
	multiplicity Multiplicity
	children     []*Field
	reval        *debouncer
}

// Children returns the ordered child list.
func (g *Group) Children() []*Field { return g.children }

// Value returns the composite's derived value: the selected choice(s) for
// discrete groups, all child values for plain groups.
func (g *Group) Value() rules.Value { return g.derivedValue() }

func (g *Group) derivedValue() rules.Value {
	switch g.multiplicity {
	case SingleSelect:
		for _, child := range g.children {
			if cs, ok := child.source.(ChoiceSource); ok && cs.Selected() {
				return rules.Scalar(child.currentValue().Scalar())
			}
		}
		return rules.Scalar("")

	case MultiSelect:
		var items []string
		for _, child := range g.children {
			if cs, ok := child.source.(ChoiceSource); ok && cs.Selected() {
				items = append(items, child.currentValue().Scalar())
			}
		}
		return rules.List(items...)

	default:
		items := make([]string, len(g.children))
		for i, child := range g.children {
			items[i] = child.currentValue().Scalar()
		}
		return rules.List(items...)
	}
}

// Validate evaluates the composite: children first (gating), then the
// group's own constraints over the derived value. A known-invalid child
// blocks the group without touching its own constraints.
func (g *Group) Validate(ctx context.Context) (Outcome, error) {
	value := g.derivedValue()
	if out, ok := g.cached(value); ok {
		return out, nil
	}

	_ = g.lc.to(StateEvaluating)

	out, err := g.evaluate(ctx)
	if err != nil {
		_ = g.lc.to(StateUnknown)
		g.log.Error("group evaluation failed", "group", g.id, "error", err)
		return Outcome{}, err
	}

	g.commit(g, value, g.derivedValue(), out, nil)
	return out, nil
}

func (g *Group) evaluate(ctx context.Context) (Outcome, error) {
	if !g.shouldValidate(ctx) {
		return Outcome{Valid: true}, nil
	}

	blocked, err := g.preValidate(ctx)
	if err != nil {
		return Outcome{}, err
	}
	if blocked {
		return Outcome{Valid: false, Blocked: true}, nil
	}

	if g.constraintCount() == 0 {
		return Outcome{Valid: true}, nil
	}
	steps := g.buildSteps(g.derivedValue(), g.groupContext())
	if len(steps) == 0 {
		return Outcome{Valid: true}, nil
	}
	return runSteps(ctx, g.cfg, steps)
}

// preValidate is the child-gating step. A child whose cached state is
// already invalid blocks immediately; otherwise only children whose value
// changed (or who never ran) are re-evaluated, under the configured
// strategy. The group proceeds to its own constraints only when every child
// is valid.
func (g *Group) preValidate(ctx context.Context) (bool, error) {
	if len(g.children) == 0 {
		return false, nil
	}

	for _, child := range g.children {
		if child.State() == StateInvalid {
			return true, nil
		}
	}

	var pending []*Field
	for _, child := range g.children {
		if child.needsEvaluation() {
			pending = append(pending, child)
		}
	}

	if len(pending) == 0 {
		for _, child := range g.children {
			if child.State() != StateValid {
				return true, nil
			}
		}
		return false, nil
	}

	if g.cfg.StopAtFirstError {
		for _, child := range pending {
			out, err := child.Validate(ctx)
			if err != nil {
				return false, err
			}
			if !out.Valid {
				return true, nil
			}
		}
		return false, nil
	}

	futures := make([]*async.Future[Outcome], len(pending))
	for i, child := range pending {
		child := child
		futures[i] = async.Go(ctx, child.Validate)
	}
	outs, errs := async.SettleAll(futures...)
	for _, err := range errs {
		if err != nil {
			return false, err
		}
	}
	for _, out := range outs {
		if !out.Valid {
			return true, nil
		}
	}
	return false, nil
}

func (g *Group) groupContext() rules.FieldContext {
	return rules.FieldContext{
		ID:    g.id,
		Group: true,
		Peer:  g.peers,
		Children: func() map[string]rules.Value {
			values := make(map[string]rules.Value, len(g.children))
			for _, child := range g.children {
				values[child.id] = child.currentValue()
			}
			return values
		},
	}
}

// scheduleRevalidate is the child-to-parent notification: settling children
// coalesce into one pending group re-validation instead of re-running the
// group on every keystroke.
func (g *Group) scheduleRevalidate() {
	g.reval.Trigger()
}

// Reset clears the composite's cached verdict and every child's.
func (g *Group) Reset() {
	for _, child := range g.children {
		child.Reset()
	}
	g.reset()
}

func (g *Group) rebuild() error {
	for _, child := range g.children {
		if err := child.rebuild(); err != nil {
			return err
		}
	}
	if _, err := g.buildConstraints(g.rawDecls); err != nil {
		return err
	}
	g.reset()
	return nil
}

func (g *Group) destroy() {
	g.reval.Stop()
	for _, child := range g.children {
		child.destroy()
	}
	g.reset()
}
