package extension

import (
	"errors"
	"fmt"
	"slices"
	"sync"
)

// ErrDuplicate is returned when a directive or role name is registered
// twice.
var ErrDuplicate = errors.New("duplicate registration")

type roleKey struct {
	domain string
	name   string
}

// Registry maps directive and role names to their implementations. Names
// are case-sensitive. Registration normally happens once at startup;
// lookups are safe from concurrent parsers.
type Registry struct {
	mu         sync.RWMutex
	directives map[string]Directive
	roles      map[roleKey]Role
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		directives: make(map[string]Directive),
		roles:      make(map[roleKey]Role),
	}
}

// RegisterDirective adds d under its name and aliases. Nothing is
// registered if any of them is already taken.
func (r *Registry) RegisterDirective(d Directive) error {
	spec := d.Spec()
	if spec.Name == "" {
		return errors.New("directive has no name")
	}
	names := append([]string{spec.Name}, spec.Aliases...)

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range names {
		if _, ok := r.directives[n]; ok {
			return fmt.Errorf("directive %q: %w", n, ErrDuplicate)
		}
	}
	for _, n := range names {
		r.directives[n] = d
	}
	return nil
}

// RegisterRole adds role under its domain, name and aliases.
func (r *Registry) RegisterRole(role Role) error {
	spec := role.Spec()
	if spec.Name == "" {
		return errors.New("role has no name")
	}
	keys := []roleKey{{spec.Domain, spec.Name}}
	for _, a := range spec.Aliases {
		keys = append(keys, roleKey{spec.Domain, a})
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, k := range keys {
		if _, ok := r.roles[k]; ok {
			return fmt.Errorf("role %q: %w", roleName(k), ErrDuplicate)
		}
	}
	for _, k := range keys {
		r.roles[k] = role
	}
	return nil
}

// MustRegisterDirective is RegisterDirective that panics on error.
func (r *Registry) MustRegisterDirective(d Directive) {
	if err := r.RegisterDirective(d); err != nil {
		panic(err)
	}
}

// MustRegisterRole is RegisterRole that panics on error.
func (r *Registry) MustRegisterRole(role Role) {
	if err := r.RegisterRole(role); err != nil {
		panic(err)
	}
}

// Directive looks up a directive by name or alias.
func (r *Registry) Directive(name string) (Directive, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.directives[name]
	return d, ok
}

// Role looks up a role. A domain role that is not registered falls back to
// the domain-less role of the same name.
func (r *Registry) Role(domain, name string) (Role, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if role, ok := r.roles[roleKey{domain, name}]; ok {
		return role, true
	}
	if domain != "" {
		role, ok := r.roles[roleKey{"", name}]
		return role, ok
	}
	return nil, false
}

// DirectiveNames lists every registered directive name and alias, sorted.
func (r *Registry) DirectiveNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.directives))
	for n := range r.directives {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

// RoleNames lists every registered role as "name" or "domain:name", sorted.
func (r *Registry) RoleNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.roles))
	for k := range r.roles {
		names = append(names, roleName(k))
	}
	slices.Sort(names)
	return names
}

func roleName(k roleKey) string {
	if k.domain == "" {
		return k.name
	}
	return k.domain + ":" + k.name
}
