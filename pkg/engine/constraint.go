package engine

import (
	"context"
	"fmt"

	"github.com/formcheck-go/formcheck/pkg/rules"
)

// Constraint binds one resolved validator to one compiled requirement for
// one entity. Created when the entity's declared rules are parsed, immutable
// afterwards except for the message override.
type Constraint struct {
	rule            string
	validator       rules.Validator
	req             rules.Requirement
	messageOverride string
}

func newConstraint(reg *rules.Registry, name, raw, override string) (*Constraint, error) {
	req, err := rules.ParseRequirement(raw)
	if err != nil {
		return nil, fmt.Errorf("rule %q: %w", name, err)
	}
	validator, err := reg.Resolve(name, req)
	if err != nil {
		return nil, err
	}
	if err := req.Compile(validator.RequirementType); err != nil {
		return nil, fmt.Errorf("rule %q: %w", name, err)
	}
	return &Constraint{
		rule:            name,
		validator:       validator,
		req:             req,
		messageOverride: override,
	}, nil
}

func (c *Constraint) Rule() string  { return c.rule }
func (c *Constraint) Priority() int { return c.validator.Priority }

// demandsPresence reports whether this is a positively declared required
// constraint; it controls the optional-empty skip.
func (c *Constraint) demandsPresence() bool {
	return c.rule == rules.RuleRequired && c.req.Bool()
}

func (c *Constraint) groupOriented() bool { return c.validator.GroupOriented }

// Evaluate runs the predicate and normalizes the outcome: ("", nil) or a
// success message on pass, a fully-messaged *rules.Violation on an expected
// failure, any other error untouched so callers can tell infrastructure
// faults from invalid input. Message precedence: per-entity override, then
// validator template, then catalog; a message the violation already carries
// (server-declared) wins over all three.
func (c *Constraint) Evaluate(ctx context.Context, value rules.Value, fctx rules.FieldContext, catalog *rules.Catalog) (string, error) {
	msg, err := c.validator.Check(ctx, value, c.req, fctx)
	if err == nil {
		return msg, nil
	}

	v, ok := rules.AsViolation(err)
	if !ok {
		return "", err
	}

	if v.Rule == "" {
		v.Rule = c.rule
	}
	if v.Message == "" {
		template := c.messageOverride
		if template == "" {
			template = c.validator.Message
		}
		if template == "" {
			template = catalog.Message(c.validator.MessageKey(c.req))
		}
		v.Message = rules.Format(template, c.req)
	}
	return "", v
}
