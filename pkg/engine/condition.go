package engine

import (
	"context"
	"fmt"
	"sync"
)

// Condition gates whether an entity is validated at all. Errors returned by
// Holds are treated as condition-false by the caller (skip rather than
// validate) and logged, never escalated.
type Condition interface {
	Holds(ctx context.Context) (bool, error)
}

// PredicateFunc adapts a function reference into a Condition.
type PredicateFunc func(ctx context.Context) (bool, error)

func (f PredicateFunc) Holds(ctx context.Context) (bool, error) { return f(ctx) }

// PredicateTable is a registry of named predicates hosts expose to rule
// declarations.
type PredicateTable struct {
	mu sync.RWMutex
	m  map[string]PredicateFunc
}

func NewPredicateTable() *PredicateTable {
	return &PredicateTable{m: make(map[string]PredicateFunc)}
}

func (t *PredicateTable) Register(name string, fn PredicateFunc) {
	if name == "" || fn == nil {
		return
	}
	t.mu.Lock()
	t.m[name] = fn
	t.mu.Unlock()
}

func (t *PredicateTable) lookup(name string) (PredicateFunc, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	fn, ok := t.m[name]
	return fn, ok
}

// Named builds a Condition resolving a predicate by name at evaluation time,
// so predicates registered after field construction are still found.
func Named(table *PredicateTable, name string) Condition {
	return PredicateFunc(func(ctx context.Context) (bool, error) {
		if table == nil {
			return false, fmt.Errorf("%w: %q (nil table)", ErrUnknownPredicate, name)
		}
		fn, ok := table.lookup(name)
		if !ok {
			return false, fmt.Errorf("%w: %q", ErrUnknownPredicate, name)
		}
		return fn(ctx)
	})
}

// LocatorResolver resolves a condition locator to an external input. The
// host supplies it; the engine only consumes the resolved Source.
type LocatorResolver interface {
	Resolve(locator string) (Source, bool)
}

// AtLocator builds a Condition that is true when the located input is
// selected (discrete targets) or carries a non-empty value (plain targets).
// A locator matching nothing yields condition-false with an error for the
// caller to log.
func AtLocator(resolver LocatorResolver, locator string) Condition {
	return PredicateFunc(func(ctx context.Context) (bool, error) {
		if resolver == nil {
			return false, fmt.Errorf("%w: %q (nil resolver)", ErrLocatorUnmatched, locator)
		}
		src, ok := resolver.Resolve(locator)
		if !ok || src == nil {
			return false, fmt.Errorf("%w: %q", ErrLocatorUnmatched, locator)
		}
		if choice, ok := src.(ChoiceSource); ok {
			return choice.Selected(), nil
		}
		return !src.Value().IsEmpty(), nil
	})
}
