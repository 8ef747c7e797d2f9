package rules

import (
	"strings"
	"sync"

	"golang.org/x/text/language"
)

// defaultKey is the catalog fallback for rules without a registered message.
const defaultKey = "default"

func defaultMessages() map[string]string {
	return map[string]string{
		defaultKey:      "This value seems to be invalid.",
		RuleRequired:    "This value is required.",
		RuleNotBlank:    "This value should not be blank.",
		RulePattern:     "This value seems to be invalid.",
		"type.email":    "This value should be a valid email.",
		"type.number":   "This value should be a valid number.",
		"type.integer":  "This value should be a valid integer.",
		"type.digits":   "This value should be digits.",
		"type.alphanum": "This value should be alphanumeric.",
		"type.url":      "This value should be a valid url.",
		RuleMinLength:   "This value is too short. It should have %s characters or more.",
		RuleMaxLength:   "This value is too long. It should have %s characters or fewer.",
		RuleLength:      "This value length is invalid. It should be between %s and %s characters long.",
		RuleMin:         "This value should be greater than or equal to %s.",
		RuleMax:         "This value should be lower than or equal to %s.",
		RuleRange:       "This value should be between %s and %s.",
		RuleEqualTo:     "This value should be the same.",
		RuleMinCheck:    "You must select at least %s choices.",
		RuleMaxCheck:    "You must select %s choices or fewer.",
		RuleCheck:       "You must select between %s and %s choices.",
		RuleMinRequired: "At least %s of these fields must be filled.",
		RuleRemote:      "This value seems to be invalid.",
	}
}

// Catalog resolves failure-message templates per rule name (and per sub-kind
// for the type rule), with locale overrides selected through a language
// matcher. The English defaults are always present as the final fallback.
type Catalog struct {
	mu      sync.RWMutex
	locales map[language.Tag]map[string]string
	tags    []language.Tag
	matcher language.Matcher
	current language.Tag
}

// NewCatalog builds a catalog seeded with the English default messages.
func NewCatalog() *Catalog {
	c := &Catalog{
		locales: map[language.Tag]map[string]string{
			language.English: defaultMessages(),
		},
		current: language.English,
	}
	c.rebuildMatcher()
	return c
}

func (c *Catalog) rebuildMatcher() {
	tags := make([]language.Tag, 0, len(c.locales))
	// English first so it wins as the matcher default.
	tags = append(tags, language.English)
	for tag := range c.locales {
		if tag != language.English {
			tags = append(tags, tag)
		}
	}
	c.tags = tags
	c.matcher = language.NewMatcher(tags)
}

// AddLocale registers or extends message templates for a locale. Existing
// keys for the same locale are overwritten, so it doubles as the per-rule
// override mechanism (add keys to the current locale).
func (c *Catalog) AddLocale(tag language.Tag, messages map[string]string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	existing, ok := c.locales[tag]
	if !ok {
		existing = make(map[string]string, len(messages))
		c.locales[tag] = existing
	}
	for key, template := range messages {
		existing[key] = template
	}
	c.rebuildMatcher()
}

// Override replaces the template for one rule in the active locale.
func (c *Catalog) Override(rule, template string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.locales[c.current][rule] = template
}

// SetLocale switches the active locale to the best match among registered
// ones; an unknown tag falls back to English.
func (c *Catalog) SetLocale(tag language.Tag) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, index, _ := c.matcher.Match(tag)
	c.current = c.tags[index]
}

// Locale returns the active locale tag.
func (c *Catalog) Locale() language.Tag {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current
}

// Message resolves the template for a catalog key in the active locale,
// falling back to English and then to the generic default message.
func (c *Catalog) Message(key string) string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if msgs, ok := c.locales[c.current]; ok {
		if template, ok := msgs[key]; ok {
			return template
		}
	}
	english := c.locales[language.English]
	if template, ok := english[key]; ok {
		return template
	}
	return english[defaultKey]
}

// Format substitutes %s placeholders in template positionally with the
// requirement's declared values. Surplus placeholders are left intact so a
// malformed override degrades visibly instead of panicking.
func Format(template string, req Requirement) string {
	values := req.Placeholders()
	var b strings.Builder
	rest := template
	for _, value := range values {
		i := strings.Index(rest, "%s")
		if i < 0 {
			break
		}
		b.WriteString(rest[:i])
		b.WriteString(value)
		rest = rest[i+2:]
	}
	b.WriteString(rest)
	return b.String()
}
