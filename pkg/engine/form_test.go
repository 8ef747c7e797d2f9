package engine_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/formcheck-go/formcheck/pkg/engine"
)

// eventRecorder captures emitted event types; entity events settle on worker
// goroutines, so appends are locked.
type eventRecorder struct {
	mu    sync.Mutex
	types []engine.EventType
}

func (r *eventRecorder) record(ev engine.Event) {
	r.mu.Lock()
	r.types = append(r.types, ev.Type)
	r.mu.Unlock()
}

func (r *eventRecorder) seen() []engine.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]engine.EventType, len(r.types))
	copy(out, r.types)
	return out
}

func subscribe(form *engine.Form, rec *eventRecorder, types ...engine.EventType) {
	for _, t := range types {
		form.On(t, rec.record)
	}
}

func TestFormInitEvent(t *testing.T) {
	t.Parallel()

	rec := &eventRecorder{}
	form := engine.NewForm(
		engine.WithConfig(syncConfig()),
		engine.WithHandler(engine.EventInit, rec.record),
	)
	assert.Equal(t, []engine.EventType{engine.EventInit}, rec.seen(),
		"construction-time handlers observe the init event")

	// Handlers attached afterwards only see later events.
	late := &eventRecorder{}
	form.On(engine.EventInit, late.record)
	assert.Empty(t, late.seen())
}

func TestFormValidateAggregates(t *testing.T) {
	t.Parallel()

	form := engine.NewForm(engine.WithConfig(syncConfig()))
	name := engine.NewVar("Ada")
	email := engine.NewVar("")

	_, err := form.AddField("name", name, map[string]string{"required": "true"})
	require.NoError(t, err)
	_, err = form.AddField("email", email, map[string]string{"required": "true", "type": "email"})
	require.NoError(t, err)

	result, err := form.Validate(context.Background())
	require.NoError(t, err)
	assert.False(t, result.Valid)
	require.Len(t, result.Failed, 1)
	assert.Equal(t, "email", result.Failed[0].ID)
	assert.True(t, result.Failed[0].Errors.Has("required"))

	email.Set("a@b.com")
	result, err = form.Validate(context.Background())
	require.NoError(t, err)
	assert.True(t, result.Valid)
	assert.Equal(t, "Ada", result.Values["name"].Scalar())
	assert.Equal(t, "a@b.com", result.Values["email"].Scalar())
}

func TestFormEvents(t *testing.T) {
	t.Parallel()

	form := engine.NewForm(engine.WithConfig(syncConfig()))
	rec := &eventRecorder{}
	subscribe(form, rec,
		engine.EventBeforeValidate, engine.EventAllValid, engine.EventHasErrors,
		engine.EventFieldFailed, engine.EventFieldPassed)

	src := engine.NewVar("")
	_, err := form.AddField("name", src, map[string]string{"required": "true"})
	require.NoError(t, err)

	_, err = form.Validate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []engine.EventType{
		engine.EventBeforeValidate,
		engine.EventFieldFailed,
		engine.EventHasErrors,
	}, rec.seen())

	src.Set("Ada")
	_, err = form.Validate(context.Background())
	require.NoError(t, err)
	seen := rec.seen()
	assert.Equal(t, engine.EventAllValid, seen[len(seen)-1])
	assert.Contains(t, seen, engine.EventFieldPassed)
}

func TestFormCommit(t *testing.T) {
	t.Parallel()

	form := engine.NewForm(engine.WithConfig(syncConfig()))
	rec := &eventRecorder{}
	subscribe(form, rec, engine.EventBeforeCommit)

	src := engine.NewVar("")
	_, err := form.AddField("name", src, map[string]string{"required": "true"})
	require.NoError(t, err)

	result, err := form.Commit(context.Background())
	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.Empty(t, rec.seen(), "an invalid form never reaches the commit hook")

	src.Set("Ada")
	result, err = form.Commit(context.Background())
	require.NoError(t, err)
	assert.True(t, result.Valid)
	assert.Equal(t, []engine.EventType{engine.EventBeforeCommit}, rec.seen())
}

func TestFormEqualToAcrossFields(t *testing.T) {
	t.Parallel()

	form := engine.NewForm(engine.WithConfig(syncConfig()))
	password := engine.NewVar("s3cret")
	confirm := engine.NewVar("typo")

	_, err := form.AddField("password", password, map[string]string{"required": "true"})
	require.NoError(t, err)
	confirmField, err := form.AddField("confirm", confirm, map[string]string{"equalto": "password"})
	require.NoError(t, err)

	out, err := confirmField.Validate(context.Background())
	require.NoError(t, err)
	assert.False(t, out.Valid)
	assert.True(t, out.Errors.Has("equalto"))

	confirm.Set("s3cret")
	out, err = confirmField.Validate(context.Background())
	require.NoError(t, err)
	assert.True(t, out.Valid)
}

func TestFormDuplicateID(t *testing.T) {
	t.Parallel()

	form := engine.NewForm(engine.WithConfig(syncConfig()))
	_, err := form.AddField("name", engine.NewVar(""), nil)
	require.NoError(t, err)

	_, err = form.AddField("name", engine.NewVar(""), nil)
	assert.ErrorIs(t, err, engine.ErrDuplicateEntity)
}

func TestFormGeneratedID(t *testing.T) {
	t.Parallel()

	form := engine.NewForm(engine.WithConfig(syncConfig()))
	fld, err := form.AddField("", engine.NewVar(""), nil)
	require.NoError(t, err)
	assert.NotEmpty(t, fld.ID())
}

func TestFormReset(t *testing.T) {
	t.Parallel()

	form := engine.NewForm(engine.WithConfig(syncConfig()))
	fld, err := form.AddField("name", engine.NewVar(""), map[string]string{"required": "true"})
	require.NoError(t, err)

	_, err = form.Validate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, engine.StateInvalid, fld.State())

	form.Reset()
	assert.Equal(t, engine.StateUnknown, fld.State())
}

// declVar serves a value plus a mutable rule declaration set, the way a host
// re-scanning its inputs would.
type declVar struct {
	*engine.Var
	mu    sync.Mutex
	decls map[string]string
}

func newDeclVar(value string, decls map[string]string) *declVar {
	return &declVar{Var: engine.NewVar(value), decls: decls}
}

func (s *declVar) Decls() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.decls
}

func (s *declVar) setDecls(decls map[string]string) {
	s.mu.Lock()
	s.decls = decls
	s.mu.Unlock()
}

func TestFormRebuild(t *testing.T) {
	t.Parallel()

	form := engine.NewForm(engine.WithConfig(syncConfig()))
	rec := &eventRecorder{}
	subscribe(form, rec, engine.EventRebuilt)

	src := newDeclVar("ab", map[string]string{"minlength": "5"})
	fld, err := form.AddField("nick", src, src.Decls())
	require.NoError(t, err)

	out, err := fld.Validate(context.Background())
	require.NoError(t, err)
	assert.False(t, out.Valid)

	// The host relaxes the declared rules; Rebuild picks them up.
	src.setDecls(map[string]string{"minlength": "2"})
	require.NoError(t, form.Rebuild())
	assert.Equal(t, []engine.EventType{engine.EventRebuilt}, rec.seen())
	assert.Equal(t, engine.StateUnknown, fld.State())

	out, err = fld.Validate(context.Background())
	require.NoError(t, err)
	assert.True(t, out.Valid)
}

func TestFormClose(t *testing.T) {
	t.Parallel()

	form := engine.NewForm(engine.WithConfig(syncConfig()))
	rec := &eventRecorder{}
	subscribe(form, rec, engine.EventTornDown)

	_, err := form.AddField("name", engine.NewVar("Ada"), nil)
	require.NoError(t, err)

	form.Close()
	assert.Equal(t, []engine.EventType{engine.EventTornDown}, rec.seen())

	_, err = form.Validate(context.Background())
	assert.ErrorIs(t, err, engine.ErrFormClosed)
	_, err = form.AddField("other", engine.NewVar(""), nil)
	assert.ErrorIs(t, err, engine.ErrFormClosed)

	// Closing twice is a no-op.
	form.Close()
}
