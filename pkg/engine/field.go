package engine

import (
	"context"
	"unicode/utf8"

	"github.com/formcheck-go/formcheck/pkg/rules"
)

// InputKind classifies the input backing a leaf field. Discrete-choice kinds
// (checkbox/radio) are only meaningful inside a composite; validated
// individually they always settle valid.
type InputKind int

const (
	KindText InputKind = iota
	KindCheckbox
	KindRadio
	KindHidden
)

func (k InputKind) discrete() bool {
	return k == KindCheckbox || k == KindRadio
}

// Field is the leaf entity: one input, one constraint set, one tri-state
// cached verdict.
type Field struct {
	core
	kind   InputKind
	source Source
	notrim bool
	parent *Group
	reval  *debouncer
}

// Value returns the field's current (trimmed) value.
func (f *Field) Value() rules.Value { return f.currentValue() }

func (f *Field) currentValue() rules.Value {
	v := f.source.Value()
	if !f.notrim {
		v = v.Trim()
	}
	return v
}

// Validate evaluates the field against its constraint set and settles it.
// An unchanged value with a settled state returns the cached outcome without
// running any constraint. The returned error is reserved for unexpected
// faults; an invalid value is a normal Outcome.
func (f *Field) Validate(ctx context.Context) (Outcome, error) {
	value := f.currentValue()
	if out, ok := f.cached(value); ok {
		return out, nil
	}

	_ = f.lc.to(StateEvaluating)

	out, err := f.evaluate(ctx, value)
	if err != nil {
		_ = f.lc.to(StateUnknown)
		f.log.Error("field evaluation failed", "field", f.id, "error", err)
		return Outcome{}, err
	}

	f.commit(f, value, f.currentValue(), out, f.notifyParent)
	return out, nil
}

func (f *Field) evaluate(ctx context.Context, value rules.Value) (Outcome, error) {
	// A lone checkbox/radio carries no standalone meaning; only the
	// composite read of its group does.
	if f.kind.discrete() {
		return Outcome{Valid: true}, nil
	}
	if !f.shouldValidate(ctx) {
		return Outcome{Valid: true}, nil
	}
	if f.constraintCount() == 0 {
		return Outcome{Valid: true}, nil
	}
	if p, ok := f.source.(Presenter); ok && !p.Presentable() {
		return Outcome{Valid: true}, nil
	}

	steps := f.buildSteps(value, f.fieldContext())
	if len(steps) == 0 {
		return Outcome{Valid: true}, nil
	}
	return runSteps(ctx, f.cfg, steps)
}

func (f *Field) fieldContext() rules.FieldContext {
	return rules.FieldContext{ID: f.id, Peer: f.peers}
}

func (f *Field) notifyParent() {
	if f.parent != nil {
		f.parent.scheduleRevalidate()
	}
}

// NotifyChange is the host's signal that the underlying input changed. The
// re-validation is debounced so bursts of keystrokes collapse into one
// pending evaluation; before the first failure, inputs shorter than the
// validation threshold are left alone.
func (f *Field) NotifyChange() {
	if f.kind.discrete() {
		// Selection changes only matter to the composite.
		if f.parent != nil {
			f.parent.scheduleRevalidate()
		}
		return
	}

	if !f.HasFailedBefore() &&
		utf8.RuneCountInString(f.currentValue().Scalar()) < f.cfg.ValidationThreshold {
		return
	}
	f.reval.Trigger()
}

// needsEvaluation reports whether the composite gating step must re-run this
// child: never evaluated, reset, or its value moved since the last settle.
func (f *Field) needsEvaluation() bool {
	f.mu.Lock()
	evaluated := f.evaluated
	lastValue := f.lastValue
	f.mu.Unlock()

	if !evaluated || f.lc.Settled() == StateUnknown {
		return true
	}
	return !f.currentValue().Equal(lastValue)
}

// Reset clears the cached verdict and failure history; the next Validate
// runs the full constraint set again.
func (f *Field) Reset() { f.reset() }

func (f *Field) rebuild() error {
	decls := f.rawDecls
	if ds, ok := f.source.(DeclSource); ok {
		decls = ds.Decls()
		f.rawDecls = decls
	}
	notrim, err := f.buildConstraints(decls)
	if err != nil {
		return err
	}
	f.notrim = notrim
	f.reset()
	return nil
}

func (f *Field) destroy() {
	f.reval.Stop()
	f.reset()
}
