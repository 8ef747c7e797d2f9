package engine

import "errors"

var (
	// ErrMixedGroup is returned when a composite mixes discrete-choice
	// children with free-form children, or its children disagree with the
	// declared multiplicity kind. Construction-time error.
	ErrMixedGroup = errors.New("engine: mixed child kinds in group")

	// ErrDuplicateEntity is returned when attaching an entity under an
	// identifier the form already tracks.
	ErrDuplicateEntity = errors.New("engine: duplicate entity id")

	// ErrFormClosed is returned when operating on a torn-down form.
	ErrFormClosed = errors.New("engine: form is closed")

	// ErrInvalidTransition signals an illegal entity state change. It
	// indicates a bug in the engine, not bad input.
	ErrInvalidTransition = errors.New("engine: invalid state transition")

	// ErrUnknownPredicate is returned by a named condition whose predicate
	// was never registered.
	ErrUnknownPredicate = errors.New("engine: unknown predicate")

	// ErrLocatorUnmatched is returned when a condition locator resolves to
	// nothing. The caller treats it as condition-false and logs it.
	ErrLocatorUnmatched = errors.New("engine: locator matched nothing")
)
