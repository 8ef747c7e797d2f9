package engine

import (
	"sync"

	"github.com/formcheck-go/formcheck/pkg/rules"
)

// Source is the narrow interface through which the engine reads an entity's
// current value. The adapter layer owning the actual input implements it;
// the engine never inspects anything beyond these methods.
type Source interface {
	Value() rules.Value
}

// ChoiceSource is a Source for discrete-choice inputs (checkbox/radio):
// Selected reports whether the choice is currently picked. An individual
// discrete input is never validated on its own; only its composite's
// aggregated read is meaningful.
type ChoiceSource interface {
	Source
	Selected() bool
}

// Presenter is an optional Source capability: a non-presentable entity
// settles valid without running constraints.
type Presenter interface {
	Presentable() bool
}

// DeclSource is an optional Source capability letting Rebuild re-scan the
// declared rules instead of reusing the construction-time set.
type DeclSource interface {
	Decls() map[string]string
}

// SourceFunc adapts a plain function into a Source.
type SourceFunc func() rules.Value

func (f SourceFunc) Value() rules.Value { return f() }

// Var is a mutable in-memory Source, convenient for hosts that push values
// into the engine and for tests.
type Var struct {
	mu    sync.RWMutex
	value rules.Value
}

func NewVar(value string) *Var {
	return &Var{value: rules.Scalar(value)}
}

func (v *Var) Set(value string) {
	v.mu.Lock()
	v.value = rules.Scalar(value)
	v.mu.Unlock()
}

func (v *Var) SetList(items ...string) {
	v.mu.Lock()
	v.value = rules.List(items...)
	v.mu.Unlock()
}

func (v *Var) Value() rules.Value {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.value
}

// Choice is a mutable discrete-choice Source.
type Choice struct {
	mu       sync.RWMutex
	value    string
	selected bool
}

func NewChoice(value string) *Choice {
	return &Choice{value: value}
}

func (c *Choice) Select(selected bool) {
	c.mu.Lock()
	c.selected = selected
	c.mu.Unlock()
}

func (c *Choice) Selected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.selected
}

func (c *Choice) Value() rules.Value {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return rules.Scalar(c.value)
}
