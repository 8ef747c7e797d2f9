package rules_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/text/language"

	"github.com/formcheck-go/formcheck/pkg/rules"
)

func TestFormat(t *testing.T) {
	t.Parallel()

	t.Run("single placeholder", func(t *testing.T) {
		msg := rules.Format("at least %s characters", rules.MustRequirement("3"))
		assert.Equal(t, "at least 3 characters", msg)
	})

	t.Run("positional substitution follows declaration order", func(t *testing.T) {
		msg := rules.Format("between %s and %s", rules.MustRequirement("[2, 5]"))
		assert.Equal(t, "between 2 and 5", msg)
	})

	t.Run("surplus placeholders stay visible", func(t *testing.T) {
		msg := rules.Format("between %s and %s", rules.MustRequirement("2"))
		assert.Equal(t, "between 2 and %s", msg)
	})
}

func TestCatalog(t *testing.T) {
	t.Parallel()

	t.Run("english defaults", func(t *testing.T) {
		c := rules.NewCatalog()
		assert.Equal(t, "This value is required.", c.Message("required"))
		assert.Equal(t, "This value should be a valid email.", c.Message("type.email"))
	})

	t.Run("unknown key falls back to generic default", func(t *testing.T) {
		c := rules.NewCatalog()
		assert.Equal(t, "This value seems to be invalid.", c.Message("no-such-rule"))
	})

	t.Run("locale override by rule name", func(t *testing.T) {
		c := rules.NewCatalog()
		c.AddLocale(language.French, map[string]string{
			"required": "Ce champ est requis.",
		})
		c.SetLocale(language.French)
		assert.Equal(t, "Ce champ est requis.", c.Message("required"))
		// Missing keys fall back to English.
		assert.Equal(t, "This value should be a valid email.", c.Message("type.email"))
	})

	t.Run("regional tag matches base locale", func(t *testing.T) {
		c := rules.NewCatalog()
		c.AddLocale(language.French, map[string]string{"required": "Ce champ est requis."})
		c.SetLocale(language.MustParse("fr-CA"))
		assert.Equal(t, "Ce champ est requis.", c.Message("required"))
	})

	t.Run("unknown locale falls back to english", func(t *testing.T) {
		c := rules.NewCatalog()
		c.SetLocale(language.Japanese)
		assert.Equal(t, "This value is required.", c.Message("required"))
	})

	t.Run("override in active locale", func(t *testing.T) {
		c := rules.NewCatalog()
		c.Override("required", "Fill this in.")
		assert.Equal(t, "Fill this in.", c.Message("required"))
	})
}
