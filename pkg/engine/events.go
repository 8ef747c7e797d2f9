package engine

import (
	"sync"

	"github.com/formcheck-go/formcheck/pkg/rules"
)

// EventType identifies a notification the engine emits for the presentation
// layer to consume.
type EventType string

const (
	// Form-level events.
	EventInit           EventType = "init"
	EventBeforeValidate EventType = "before-validate"
	EventAllValid       EventType = "all-valid"
	EventHasErrors      EventType = "has-errors"
	EventBeforeCommit   EventType = "before-commit"
	EventRebuilt        EventType = "rebuilt"
	EventTornDown       EventType = "torn-down"

	// Entity-level events.
	EventFieldPassed  EventType = "field-passed"
	EventFieldFailed  EventType = "field-failed"
	EventFieldSettled EventType = "field-settled"
)

// Event carries the notification payload. Entity is nil for form-level
// events; Errors is populated for EventFieldFailed.
type Event struct {
	Type   EventType
	Entity Entity
	Valid  bool
	Errors rules.Violations
}

// Handler consumes an event. Handlers run synchronously on the settling
// goroutine and must not block.
type Handler func(Event)

type emitter struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler
}

func newEmitter() *emitter {
	return &emitter{handlers: make(map[EventType][]Handler)}
}

func (e *emitter) on(t EventType, h Handler) {
	if h == nil {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.handlers[t] = append(e.handlers[t], h)
}

func (e *emitter) emit(ev Event) {
	e.mu.RLock()
	handlers := e.handlers[ev.Type]
	e.mu.RUnlock()
	for _, h := range handlers {
		h(ev)
	}
}

func (e *emitter) clear() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.handlers = make(map[EventType][]Handler)
}
