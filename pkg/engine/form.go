package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/formcheck-go/formcheck/pkg/async"
	"github.com/formcheck-go/formcheck/pkg/logger"
	"github.com/formcheck-go/formcheck/pkg/rules"
)

// Result is the collection-level verdict.
type Result struct {
	Valid bool

	// Values holds every top-level entity's value; populated on a valid
	// verdict.
	Values map[string]rules.Value

	// Failed lists the entities that settled invalid.
	Failed []EntityFailure
}

// EntityFailure identifies one failed top-level entity. Blocked marks a
// composite rejected because of an invalid child rather than its own rules.
type EntityFailure struct {
	ID      string
	Blocked bool
	Errors  rules.Violations
}

// FormOption configures form construction.
type FormOption func(*Form)

func WithConfig(cfg Config) FormOption {
	return func(f *Form) { f.cfg = cfg }
}

func WithRegistry(reg *rules.Registry) FormOption {
	return func(f *Form) {
		if reg != nil {
			f.reg = reg
		}
	}
}

func WithFormLogger(log *slog.Logger) FormOption {
	return func(f *Form) {
		if log != nil {
			f.log = log
		}
	}
}

// WithHandler subscribes a handler during construction, before the init
// event fires. On can only attach handlers for later events.
func WithHandler(t EventType, h Handler) FormOption {
	return func(f *Form) { f.events.on(t, h) }
}

// FieldOption configures field and group construction.
type FieldOption func(*fieldOptions)

type fieldOptions struct {
	kind      InputKind
	include   Condition
	exclude   Condition
	overrides map[string]string
}

// WithKind sets the input kind backing a leaf field.
func WithKind(kind InputKind) FieldOption {
	return func(o *fieldOptions) { o.kind = kind }
}

// ValidateIf gates the entity on a condition: it is validated only while the
// condition holds.
func ValidateIf(cond Condition) FieldOption {
	return func(o *fieldOptions) { o.include = cond }
}

// ExcludeIf skips validation while the condition holds. Exclude wins over
// ValidateIf on conflict.
func ExcludeIf(cond Condition) FieldOption {
	return func(o *fieldOptions) { o.exclude = cond }
}

// WithMessage overrides the failure message template for one rule on this
// entity only.
func WithMessage(rule, template string) FieldOption {
	return func(o *fieldOptions) {
		if o.overrides == nil {
			o.overrides = make(map[string]string)
		}
		o.overrides[rule] = template
	}
}

// Form is the root composite: it owns the top-level entities, fans a global
// validate request out to all of them and aggregates the overall verdict.
type Form struct {
	cfg    Config
	reg    *rules.Registry
	log    *slog.Logger
	events *emitter

	mu       sync.Mutex
	entities []Entity
	index    map[string]Entity
	closed   bool
}

// NewForm creates an empty form. The init event fires after every option is
// applied, so handlers attached through WithHandler observe it.
func NewForm(opts ...FormOption) *Form {
	f := &Form{
		cfg:    DefaultConfig(),
		log:    logger.Discard(),
		events: newEmitter(),
		index:  make(map[string]Entity),
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.reg == nil {
		f.reg = rules.NewRegistry()
	}
	f.events.emit(Event{Type: EventInit})
	return f
}

// On subscribes a handler to an event type.
func (f *Form) On(t EventType, h Handler) { f.events.on(t, h) }

// Registry returns the rule registry the form resolves against.
func (f *Form) Registry() *rules.Registry { return f.reg }

// Config returns the form's configuration.
func (f *Form) Config() Config { return f.cfg }

func (f *Form) newCore(id string, decls map[string]string, o *fieldOptions) core {
	if id == "" {
		id = uuid.NewString()
	}
	return core{
		id:        id,
		reg:       f.reg,
		cfg:       f.cfg,
		log:       f.log,
		events:    f.events,
		rawDecls:  decls,
		overrides: o.overrides,
		include:   o.include,
		exclude:   o.exclude,
		peers:     f.peerValue,
		lc:        newLifecycle(),
	}
}

// NewField constructs an unattached leaf field, parsing and shape-checking
// its declared rules. Use it for group children; AddField attaches top-level
// fields directly.
func (f *Form) NewField(id string, source Source, decls map[string]string, opts ...FieldOption) (*Field, error) {
	if source == nil {
		return nil, fmt.Errorf("engine: field %q has no value source", id)
	}
	var o fieldOptions
	for _, opt := range opts {
		opt(&o)
	}

	fld := &Field{
		core:   f.newCore(id, decls, &o),
		kind:   o.kind,
		source: source,
	}
	notrim, err := fld.buildConstraints(decls)
	if err != nil {
		return nil, err
	}
	fld.notrim = notrim
	fld.reval = newDebouncer(f.cfg.debounce(), func() {
		_, _ = fld.Validate(context.Background())
	})
	return fld, nil
}

// AddField constructs a leaf field and attaches it as a top-level entity.
func (f *Form) AddField(id string, source Source, decls map[string]string, opts ...FieldOption) (*Field, error) {
	fld, err := f.NewField(id, source, decls, opts...)
	if err != nil {
		return nil, err
	}
	if err := f.attach(fld); err != nil {
		return nil, err
	}
	return fld, nil
}

// AddGroup constructs a composite over the given children and attaches it.
// Children must agree with the multiplicity kind: radio children for
// single-select, checkbox children for multi-select, free-form children for
// plain groups. Mixing is a construction error.
func (f *Form) AddGroup(id string, multiplicity Multiplicity, decls map[string]string, children []*Field, opts ...FieldOption) (*Group, error) {
	if err := checkChildKinds(multiplicity, children); err != nil {
		return nil, fmt.Errorf("group %q: %w", id, err)
	}
	var o fieldOptions
	for _, opt := range opts {
		opt(&o)
	}

	grp := &Group{
		core:         f.newCore(id, decls, &o),
		multiplicity: multiplicity,
		children:     children,
	}
	if _, err := grp.buildConstraints(decls); err != nil {
		return nil, err
	}
	grp.reval = newDebouncer(f.cfg.debounce(), func() {
		_, _ = grp.Validate(context.Background())
	})

	if err := f.attach(grp); err != nil {
		return nil, err
	}

	f.mu.Lock()
	for _, child := range children {
		child.parent = grp
		if _, exists := f.index[child.id]; !exists {
			f.index[child.id] = child
		}
	}
	f.mu.Unlock()

	return grp, nil
}

func checkChildKinds(multiplicity Multiplicity, children []*Field) error {
	for _, child := range children {
		switch multiplicity {
		case SingleSelect:
			if child.kind != KindRadio {
				return fmt.Errorf("%w: single-select groups take radio children", ErrMixedGroup)
			}
		case MultiSelect:
			if child.kind != KindCheckbox {
				return fmt.Errorf("%w: multi-select groups take checkbox children", ErrMixedGroup)
			}
		default:
			if child.kind.discrete() {
				return fmt.Errorf("%w: plain groups take free-form children", ErrMixedGroup)
			}
		}
	}
	return nil
}

func (f *Form) attach(e Entity) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return ErrFormClosed
	}
	if _, exists := f.index[e.ID()]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateEntity, e.ID())
	}
	f.entities = append(f.entities, e)
	f.index[e.ID()] = e
	return nil
}

// peerValue resolves another entity's current value by id, for cross-field
// rules. Group children are resolvable too.
func (f *Form) peerValue(id string) (rules.Value, bool) {
	f.mu.Lock()
	e, ok := f.index[id]
	f.mu.Unlock()
	if !ok {
		return rules.Value{}, false
	}
	return e.Value(), true
}

func (f *Form) topLevel() ([]Entity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return nil, ErrFormClosed
	}
	snapshot := make([]Entity, len(f.entities))
	copy(snapshot, f.entities)
	return snapshot, nil
}

// Validate fans a validation request out to every top-level entity
// concurrently, waits for all of them to settle and aggregates the verdict.
// The error is reserved for unexpected faults; failed entities are reported
// in the Result.
func (f *Form) Validate(ctx context.Context) (Result, error) {
	entities, err := f.topLevel()
	if err != nil {
		return Result{}, err
	}

	f.events.emit(Event{Type: EventBeforeValidate})

	futures := make([]*async.Future[Outcome], len(entities))
	for i, e := range entities {
		e := e
		futures[i] = async.Go(ctx, e.Validate)
	}
	outcomes, errs := async.SettleAll(futures...)
	for _, err := range errs {
		if err != nil {
			return Result{}, err
		}
	}

	var failed []EntityFailure
	for i, out := range outcomes {
		if !out.Valid {
			failed = append(failed, EntityFailure{
				ID:      entities[i].ID(),
				Blocked: out.Blocked,
				Errors:  out.Errors,
			})
		}
	}

	if len(failed) > 0 {
		f.events.emit(Event{Type: EventHasErrors})
		return Result{Valid: false, Failed: failed}, nil
	}

	f.events.emit(Event{Type: EventAllValid})
	return Result{Valid: true, Values: f.Values()}, nil
}

// Commit validates and, on an all-valid verdict, fires the before-commit
// event. Hosts hook submission side effects there.
func (f *Form) Commit(ctx context.Context) (Result, error) {
	result, err := f.Validate(ctx)
	if err != nil {
		return Result{}, err
	}
	if result.Valid {
		f.events.emit(Event{Type: EventBeforeCommit})
	}
	return result, nil
}

// Values returns the current value of every top-level entity.
func (f *Form) Values() map[string]rules.Value {
	f.mu.Lock()
	entities := make([]Entity, len(f.entities))
	copy(entities, f.entities)
	f.mu.Unlock()

	values := make(map[string]rules.Value, len(entities))
	for _, e := range entities {
		values[e.ID()] = e.Value()
	}
	return values
}

// Reset clears every entity's cached verdict.
func (f *Form) Reset() {
	entities, err := f.topLevel()
	if err != nil {
		return
	}
	for _, e := range entities {
		e.Reset()
	}
}

// Rebuild re-scans declared rules (through DeclSource where available),
// rebuilds every entity's constraint set and clears caches.
func (f *Form) Rebuild() error {
	entities, err := f.topLevel()
	if err != nil {
		return err
	}
	for _, e := range entities {
		if err := e.rebuild(); err != nil {
			return err
		}
	}
	f.events.emit(Event{Type: EventRebuilt})
	return nil
}

// Close tears the form down: listeners are released, caches cleared,
// debouncers stopped. The form is unusable afterwards.
func (f *Form) Close() {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return
	}
	f.closed = true
	entities := make([]Entity, len(f.entities))
	copy(entities, f.entities)
	f.mu.Unlock()

	f.events.emit(Event{Type: EventTornDown})
	for _, e := range entities {
		e.destroy()
	}
	f.events.clear()
}
