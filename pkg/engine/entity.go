package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/formcheck-go/formcheck/pkg/rules"
)

// Entity is the validity unit, either a leaf Field or a composite Group.
// The variant set is closed: the unexported methods keep implementations
// inside this package.
type Entity interface {
	ID() string
	State() State
	Value() rules.Value
	Validate(ctx context.Context) (Outcome, error)
	LastOutcome() (Outcome, bool)
	Reset()

	rebuild() error
	destroy()
}

// messageSuffix marks declaration keys carrying per-rule message overrides,
// e.g. "minlength-message".
const messageSuffix = "-message"

// noTrimKey is the declaration flag disabling whitespace trimming before the
// empty check.
const noTrimKey = "notrim"

// core carries the state and behavior shared by both entity variants:
// constraint set, tri-state cache, lifecycle, conditional gate and event
// emission. Field and Group compose it rather than one extending the other.
type core struct {
	id        string
	reg       *rules.Registry
	cfg       Config
	log       *slog.Logger
	events    *emitter
	rawDecls  map[string]string
	overrides map[string]string // programmatic per-rule message overrides
	include   Condition
	exclude   Condition
	peers     func(id string) (rules.Value, bool)

	mu          sync.Mutex
	constraints []*Constraint
	lc          lifecycle
	lastValue   rules.Value
	last        Outcome
	evaluated   bool
	hasFailed   bool
}

func (c *core) ID() string   { return c.id }
func (c *core) State() State { return c.lc.Settled() }

// LastOutcome returns the cached settled outcome and whether one exists.
func (c *core) LastOutcome() (Outcome, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.last, c.evaluated
}

// HasFailedBefore reports whether this entity ever settled invalid. The
// presentation layer uses it for its stricter re-trigger policy; the engine
// uses it to bypass the live-validation length threshold.
func (c *core) HasFailedBefore() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hasFailed
}

func splitDecls(decls map[string]string) (ruleDecls, overrides map[string]string, notrim bool) {
	ruleDecls = make(map[string]string, len(decls))
	overrides = make(map[string]string)
	for key, value := range decls {
		switch {
		case key == noTrimKey:
			notrim = true
		case strings.HasSuffix(key, messageSuffix):
			overrides[strings.TrimSuffix(key, messageSuffix)] = value
		default:
			ruleDecls[key] = value
		}
	}
	return ruleDecls, overrides, notrim
}

// buildConstraints parses the declared rules into the entity's constraint
// set: message-override keys are split off, companion pairs are merged into
// their combined rule, every requirement is shape-checked. Any failure is a
// construction error carrying the entity id.
func (c *core) buildConstraints(decls map[string]string) (notrim bool, err error) {
	ruleDecls, declOverrides, notrim := splitDecls(decls)
	for rule, template := range c.overrides {
		declOverrides[rule] = template
	}

	merged := c.reg.CombineDuals(ruleDecls)

	list := make([]*Constraint, 0, len(merged))
	for name, raw := range merged {
		ct, cerr := newConstraint(c.reg, name, raw, declOverrides[name])
		if cerr != nil {
			return notrim, fmt.Errorf("entity %q: %w", c.id, cerr)
		}
		list = append(list, ct)
	}
	// Deterministic execution order: descending priority, name as
	// tiebreaker since declarations arrive as an unordered map.
	sort.Slice(list, func(i, j int) bool {
		if list[i].Priority() != list[j].Priority() {
			return list[i].Priority() > list[j].Priority()
		}
		return list[i].Rule() < list[j].Rule()
	})

	c.mu.Lock()
	c.constraints = list
	c.mu.Unlock()
	return notrim, nil
}

func (c *core) constraintCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.constraints)
}

func (c *core) snapshotConstraints() []*Constraint {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.constraints
}

// conditionHolds evaluates one condition fail-safe: an error or a panic
// counts as condition-false and is logged, never escalated.
func (c *core) conditionHolds(ctx context.Context, cond Condition) (holds bool) {
	defer func() {
		if r := recover(); r != nil {
			c.log.Warn("condition panicked, treating as false", "entity", c.id, "panic", r)
			holds = false
		}
	}()

	ok, err := cond.Holds(ctx)
	if err != nil {
		c.log.Warn("condition not evaluable, treating as false", "entity", c.id, "error", err)
		return false
	}
	return ok
}

// shouldValidate applies the conditional gate: validate iff the include
// condition holds and the exclude condition does not. Exclude wins.
func (c *core) shouldValidate(ctx context.Context) bool {
	if c.include != nil && !c.conditionHolds(ctx, c.include) {
		return false
	}
	if c.exclude != nil && c.conditionHolds(ctx, c.exclude) {
		return false
	}
	return true
}

// buildSteps binds the constraint set to a value snapshot. An empty value
// runs only the positive required constraint and group-oriented rules:
// other rules never see empty input, so a blank required field fails
// required alone, an optional empty value passes outright, and an empty
// composite can still fail its own count rules.
func (c *core) buildSteps(value rules.Value, fctx rules.FieldContext) []step {
	constraints := c.snapshotConstraints()

	empty := value.IsEmpty()
	steps := make([]step, 0, len(constraints))
	for _, ct := range constraints {
		if empty && !ct.groupOriented() && !ct.demandsPresence() {
			continue
		}
		ct := ct
		steps = append(steps, step{constraint: ct, run: func(ctx context.Context) (string, error) {
			return ct.Evaluate(ctx, value, fctx, c.reg.Catalog())
		}})
	}
	return steps
}

// cached returns the settled outcome when the value is unchanged since the
// last evaluation, making repeat validation free.
func (c *core) cached(current rules.Value) (Outcome, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.evaluated && c.lc.Settled() != StateUnknown && current.Equal(c.lastValue) {
		return c.last, true
	}
	return Outcome{}, false
}

// commit atomically installs a settled outcome and notifies listeners
// exactly once. A result whose value snapshot no longer matches the current
// value is stale and discarded; the entity drops back to unknown so the next
// validation re-runs. Returns whether the outcome was committed.
func (c *core) commit(e Entity, evaluated, current rules.Value, out Outcome, parentNotify func()) bool {
	c.mu.Lock()
	if !current.Equal(evaluated) {
		_ = c.lc.to(StateUnknown)
		c.evaluated = false
		c.mu.Unlock()
		c.log.Debug("discarding stale evaluation", "entity", c.id)
		return false
	}

	prev := c.lc.Settled()
	if out.Valid {
		_ = c.lc.to(StateValid)
	} else {
		_ = c.lc.to(StateInvalid)
		c.hasFailed = true
	}
	c.lastValue = evaluated
	c.last = out
	c.evaluated = true
	changed := prev != c.lc.Settled()
	c.mu.Unlock()

	if out.Valid {
		c.events.emit(Event{Type: EventFieldPassed, Entity: e, Valid: true})
	} else {
		c.events.emit(Event{Type: EventFieldFailed, Entity: e, Errors: out.Errors})
	}
	c.events.emit(Event{Type: EventFieldSettled, Entity: e, Valid: out.Valid})

	if changed && parentNotify != nil {
		parentNotify()
	}
	return true
}

func (c *core) reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.lc.to(StateUnknown)
	c.evaluated = false
	c.last = Outcome{}
	c.lastValue = rules.Value{}
	c.hasFailed = false
}
