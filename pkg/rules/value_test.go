package rules_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/formcheck-go/formcheck/pkg/rules"
)

func TestValueIsEmpty(t *testing.T) {
	t.Parallel()

	assert.True(t, rules.Scalar("").IsEmpty())
	assert.False(t, rules.Scalar("x").IsEmpty())
	assert.True(t, rules.List().IsEmpty())
	assert.True(t, rules.List("", "").IsEmpty())
	assert.False(t, rules.List("", "b").IsEmpty())
}

func TestValueEqual(t *testing.T) {
	t.Parallel()

	assert.True(t, rules.Scalar("a").Equal(rules.Scalar("a")))
	assert.False(t, rules.Scalar("a").Equal(rules.Scalar("b")))
	assert.False(t, rules.Scalar("a").Equal(rules.List("a")))
	assert.True(t, rules.List("a", "b").Equal(rules.List("a", "b")))
	assert.False(t, rules.List("a", "b").Equal(rules.List("b", "a")))
}

func TestValueCounts(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 2, rules.List("a", "b").Count())
	assert.Equal(t, 0, rules.Scalar("").Count())
	assert.Equal(t, 1, rules.Scalar("x").Count())
	assert.Equal(t, 1, rules.List("", "b", " ").NonEmptyCount())
}

func TestValueTrim(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "ab", rules.Scalar("  ab ").Trim().Scalar())
	assert.Equal(t, []string{"a", "b"}, rules.List(" a", "b ").Trim().List())
}
