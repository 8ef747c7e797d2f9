package rules

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/formcheck-go/formcheck/pkg/logger"
)

// Registry resolves rule names to executable validators across two tiers:
// the built-in standard table, which a same-named custom rule may shadow, and
// the custom/remote tier, where names are unique. Registration is a
// setup-phase operation; lookups during evaluation only take read locks.
type Registry struct {
	mu        sync.RWMutex
	standard  map[string]Validator
	custom    map[string]Validator
	catalog   *Catalog
	transport *Transport
	log       *slog.Logger
}

// RegistryOption configures registry construction.
type RegistryOption func(*Registry)

func WithCatalog(c *Catalog) RegistryOption {
	return func(r *Registry) {
		if c != nil {
			r.catalog = c
		}
	}
}

func WithTransport(t *Transport) RegistryOption {
	return func(r *Registry) {
		if t != nil {
			r.transport = t
		}
	}
}

func WithLogger(log *slog.Logger) RegistryOption {
	return func(r *Registry) {
		if log != nil {
			r.log = log
		}
	}
}

// NewRegistry creates a registry seeded with the standard rule table, a
// default message catalog and a default remote transport.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		standard: make(map[string]Validator),
		custom:   make(map[string]Validator),
		log:      logger.Discard(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.catalog == nil {
		r.catalog = NewCatalog()
	}
	if r.transport == nil {
		r.transport = NewTransport(WithTransportLogger(r.log))
	}

	for _, v := range standardValidators() {
		r.standard[v.Name] = v
	}
	// The generic remote rule is standard too: its endpoint comes entirely
	// from the declared requirement.
	r.standard[RuleRemote] = remoteValidator(RuleRemote, RemoteSpec{}, r.transport)

	return r
}

func (r *Registry) Catalog() *Catalog     { return r.catalog }
func (r *Registry) Transport() *Transport { return r.transport }

// Register adds a custom validator. Standard rules may be shadowed; a name
// collision within the custom tier is a logged no-op.
func (r *Registry) Register(v Validator) error {
	if v.Name == "" || v.Check == nil {
		return fmt.Errorf("%w: name and check are required", ErrInvalidRule)
	}
	if v.Priority == 0 {
		v.Priority = PriorityCustom
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.custom[v.Name]; exists {
		r.log.Warn("rule already registered, ignoring", "rule", v.Name)
		return fmt.Errorf("%w: %q", ErrRuleExists, v.Name)
	}
	r.custom[v.Name] = v
	return nil
}

// RegisterRemote adds a network-backed validator under the given name,
// sharing the registry's transport.
func (r *Registry) RegisterRemote(name string, spec RemoteSpec) error {
	return r.Register(remoteValidator(name, spec, r.transport))
}

// Resolve returns the validator for a rule name, custom tier first. For the
// type rule the requirement must name a known sub-kind tester; for the
// generic remote rule the requirement must carry an endpoint.
func (r *Registry) Resolve(name string, req Requirement) (Validator, error) {
	r.mu.RLock()
	v, fromCustom := r.custom[name]
	ok := fromCustom
	if !ok {
		v, ok = r.standard[name]
	}
	r.mu.RUnlock()

	if !ok {
		return Validator{}, fmt.Errorf("%w: %q", ErrUnknownRule, name)
	}

	if v.Name == RuleType {
		if !KnownType(req.Scalar()) {
			return Validator{}, fmt.Errorf("%w: %q", ErrUnknownType, req.Scalar())
		}
	}
	// The generic remote rule has no spec of its own, so the declaration
	// must provide the endpoint.
	if name == RuleRemote && !fromCustom && !remoteRequirementHasEndpoint(req) {
		return Validator{}, fmt.Errorf("%w: remote rule needs a url", ErrBadRequirement)
	}

	return v, nil
}

func remoteRequirementHasEndpoint(req Requirement) bool {
	switch req.Kind() {
	case ReqScalar:
		return req.Scalar() != ""
	case ReqObject:
		s, ok := req.Object()[remoteKeyURL].(string)
		return ok && s != ""
	default:
		return false
	}
}

// CombineDuals rewrites a declared rule set, replacing companion pairs with
// their combined rule: minlength+maxlength become length, min+max become
// range, mincheck+maxcheck become check. Only the combined rule executes when
// both companions are present.
func (r *Registry) CombineDuals(decls map[string]string) map[string]string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	combined := make(map[string]string, len(decls))
	for name, raw := range decls {
		combined[name] = raw
	}

	for name := range decls {
		v, ok := r.custom[name]
		if !ok {
			v, ok = r.standard[name]
		}
		if !ok || v.Dual == nil {
			continue
		}
		companion, declared := decls[v.Dual.Companion]
		if !declared {
			continue
		}
		delete(combined, name)
		delete(combined, v.Dual.Companion)
		combined[v.Dual.Combined] = combineDual(decls[name], companion)
	}

	return combined
}
