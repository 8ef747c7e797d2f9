package rules_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/formcheck-go/formcheck/pkg/rules"
)

func passingValidator(name string) rules.Validator {
	return rules.Validator{
		Name: name,
		Check: func(context.Context, rules.Value, rules.Requirement, rules.FieldContext) (string, error) {
			return "", nil
		},
	}
}

func TestRegistryRegister(t *testing.T) {
	t.Parallel()

	t.Run("custom rule resolves", func(t *testing.T) {
		reg := rules.NewRegistry()
		require.NoError(t, reg.Register(passingValidator("vowel")))

		v, err := reg.Resolve("vowel", rules.MustRequirement(""))
		require.NoError(t, err)
		assert.Equal(t, "vowel", v.Name)
		assert.Equal(t, rules.PriorityCustom, v.Priority)
	})

	t.Run("collision in custom tier is a no-op", func(t *testing.T) {
		reg := rules.NewRegistry()
		first := passingValidator("dup")
		first.Priority = 77
		require.NoError(t, reg.Register(first))

		second := passingValidator("dup")
		second.Priority = 1
		assert.ErrorIs(t, reg.Register(second), rules.ErrRuleExists)

		v, err := reg.Resolve("dup", rules.MustRequirement(""))
		require.NoError(t, err)
		assert.Equal(t, 77, v.Priority)
	})

	t.Run("custom rule shadows standard", func(t *testing.T) {
		reg := rules.NewRegistry()
		shadow := passingValidator("required")
		shadow.Priority = 1
		require.NoError(t, reg.Register(shadow))

		v, err := reg.Resolve("required", rules.MustRequirement("true"))
		require.NoError(t, err)
		assert.Equal(t, 1, v.Priority)
	})

	t.Run("rejects unusable definitions", func(t *testing.T) {
		reg := rules.NewRegistry()
		assert.ErrorIs(t, reg.Register(rules.Validator{}), rules.ErrInvalidRule)
	})
}

func TestRegistryResolve(t *testing.T) {
	t.Parallel()

	reg := rules.NewRegistry()

	t.Run("unknown rule", func(t *testing.T) {
		_, err := reg.Resolve("levitation", rules.MustRequirement(""))
		assert.ErrorIs(t, err, rules.ErrUnknownRule)
	})

	t.Run("type requires a known tester", func(t *testing.T) {
		_, err := reg.Resolve("type", rules.MustRequirement("quaternion"))
		assert.ErrorIs(t, err, rules.ErrUnknownType)

		_, err = reg.Resolve("type", rules.MustRequirement("email"))
		assert.NoError(t, err)
	})

	t.Run("generic remote requires an endpoint", func(t *testing.T) {
		_, err := reg.Resolve("remote", rules.MustRequirement(""))
		assert.ErrorIs(t, err, rules.ErrBadRequirement)

		_, err = reg.Resolve("remote", rules.MustRequirement("/api/check"))
		assert.NoError(t, err)

		_, err = reg.Resolve("remote", rules.MustRequirement("{url: /api/check}"))
		assert.NoError(t, err)
	})
}

func TestCombineDuals(t *testing.T) {
	t.Parallel()

	reg := rules.NewRegistry()

	t.Run("minlength and maxlength merge into length", func(t *testing.T) {
		merged := reg.CombineDuals(map[string]string{
			"minlength": "2",
			"maxlength": "5",
			"required":  "true",
		})
		assert.Equal(t, map[string]string{
			"required": "true",
			"length":   "[2, 5]",
		}, merged)
	})

	t.Run("min and max merge into range", func(t *testing.T) {
		merged := reg.CombineDuals(map[string]string{"min": "1", "max": "10"})
		assert.Equal(t, map[string]string{"range": "[1, 10]"}, merged)
	})

	t.Run("mincheck and maxcheck merge into check", func(t *testing.T) {
		merged := reg.CombineDuals(map[string]string{"mincheck": "1", "maxcheck": "3"})
		assert.Equal(t, map[string]string{"check": "[1, 3]"}, merged)
	})

	t.Run("a lone companion stays single", func(t *testing.T) {
		merged := reg.CombineDuals(map[string]string{"minlength": "2"})
		assert.Equal(t, map[string]string{"minlength": "2"}, merged)
	})
}
