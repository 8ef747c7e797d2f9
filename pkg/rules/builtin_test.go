package rules_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/formcheck-go/formcheck/pkg/rules"
)

// checkRule resolves and runs one standard rule against a value.
func checkRule(t *testing.T, name, rawReq string, value rules.Value, fctx rules.FieldContext) error {
	t.Helper()
	reg := rules.NewRegistry()
	req := rules.MustRequirement(rawReq)
	v, err := reg.Resolve(name, req)
	require.NoError(t, err)
	require.NoError(t, req.Compile(v.RequirementType))
	_, err = v.Check(context.Background(), value, req, fctx)
	return err
}

func assertViolation(t *testing.T, err error, rule string) {
	t.Helper()
	v, ok := rules.AsViolation(err)
	require.True(t, ok, "expected a violation, got %v", err)
	assert.Equal(t, rule, v.Rule)
}

func TestRequiredRule(t *testing.T) {
	t.Parallel()

	assertViolation(t, checkRule(t, "required", "true", rules.Scalar(""), rules.FieldContext{}), "required")
	assert.NoError(t, checkRule(t, "required", "true", rules.Scalar("x"), rules.FieldContext{}))
	// A negative required never fails.
	assert.NoError(t, checkRule(t, "required", "false", rules.Scalar(""), rules.FieldContext{}))
}

func TestTypeRule(t *testing.T) {
	t.Parallel()

	cases := []struct {
		sub  string
		pass string
		fail string
	}{
		{"email", "a@b.com", "not-an-email"},
		{"number", "3.14", "abc"},
		{"integer", "-42", "4.2"},
		{"digits", "0042", "4x"},
		{"alphanum", "abc123", "a b"},
		{"url", "https://example.com/x", "nope"},
	}
	for _, tc := range cases {
		t.Run(tc.sub, func(t *testing.T) {
			assert.NoError(t, checkRule(t, "type", tc.sub, rules.Scalar(tc.pass), rules.FieldContext{}))
			assertViolation(t, checkRule(t, "type", tc.sub, rules.Scalar(tc.fail), rules.FieldContext{}), "type")
		})
	}
}

func TestLengthRules(t *testing.T) {
	t.Parallel()

	assertViolation(t, checkRule(t, "minlength", "3", rules.Scalar("ab"), rules.FieldContext{}), "minlength")
	assert.NoError(t, checkRule(t, "minlength", "3", rules.Scalar("abc"), rules.FieldContext{}))
	assertViolation(t, checkRule(t, "maxlength", "2", rules.Scalar("abc"), rules.FieldContext{}), "maxlength")
	assertViolation(t, checkRule(t, "length", "[2, 4]", rules.Scalar("abcde"), rules.FieldContext{}), "length")
	assert.NoError(t, checkRule(t, "length", "[2, 4]", rules.Scalar("abc"), rules.FieldContext{}))
}

func TestNumericRules(t *testing.T) {
	t.Parallel()

	assertViolation(t, checkRule(t, "min", "5", rules.Scalar("4"), rules.FieldContext{}), "min")
	assert.NoError(t, checkRule(t, "min", "5", rules.Scalar("5"), rules.FieldContext{}))
	assertViolation(t, checkRule(t, "max", "5", rules.Scalar("6"), rules.FieldContext{}), "max")
	assertViolation(t, checkRule(t, "range", "[1, 10]", rules.Scalar("11"), rules.FieldContext{}), "range")
	assert.NoError(t, checkRule(t, "range", "[1, 10]", rules.Scalar("7.5"), rules.FieldContext{}))
	// Non-numeric input fails the bound check rather than panicking.
	assertViolation(t, checkRule(t, "min", "5", rules.Scalar("abc"), rules.FieldContext{}), "min")
}

func TestEqualToRule(t *testing.T) {
	t.Parallel()

	peers := func(id string) (rules.Value, bool) {
		if id == "password" {
			return rules.Scalar("s3cret"), true
		}
		return rules.Value{}, false
	}
	fctx := rules.FieldContext{ID: "confirm", Peer: peers}

	assert.NoError(t, checkRule(t, "equalto", "password", rules.Scalar("s3cret"), fctx))
	assertViolation(t, checkRule(t, "equalto", "password", rules.Scalar("other"), fctx), "equalto")
	assertViolation(t, checkRule(t, "equalto", "missing", rules.Scalar("x"), fctx), "equalto")
}

func TestGroupCountRules(t *testing.T) {
	t.Parallel()

	two := rules.List("a", "b")
	assert.NoError(t, checkRule(t, "mincheck", "2", two, rules.FieldContext{}))
	assertViolation(t, checkRule(t, "mincheck", "3", two, rules.FieldContext{}), "mincheck")
	assertViolation(t, checkRule(t, "maxcheck", "1", two, rules.FieldContext{}), "maxcheck")
	assert.NoError(t, checkRule(t, "check", "[1, 2]", two, rules.FieldContext{}))
	assertViolation(t, checkRule(t, "check", "[3, 4]", two, rules.FieldContext{}), "check")

	assertViolation(t, checkRule(t, "minrequired", "1", rules.List("", ""), rules.FieldContext{}), "minrequired")
	assert.NoError(t, checkRule(t, "minrequired", "1", rules.List("", "x"), rules.FieldContext{}))
}

func TestNotBlankRule(t *testing.T) {
	t.Parallel()

	assertViolation(t, checkRule(t, "notblank", "true", rules.Scalar("   "), rules.FieldContext{}), "notblank")
	assert.NoError(t, checkRule(t, "notblank", "true", rules.Scalar(" x "), rules.FieldContext{}))
}
