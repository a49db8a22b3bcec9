// Package match implements the matcher registry: an ordered list of
// (selector, transform) pairs that turn one normalized node, plus the delta
// built from its children, into that node's delta.
//
// Resolution order for a node is fixed: built-in structural matchers first
// (most specific tag first), then the generic tag/class/style format
// matcher, then user matchers in registration order. Every transform
// receives the delta produced so far and returns a new one.
package match

import (
	"errors"
	"sync/atomic"

	"github.com/gaurav-prasanna/pastepipe/core/delta"
	"github.com/gaurav-prasanna/pastepipe/core/normalize"
)

// ErrWalkInProgress is returned when the registry is mutated while a
// conversion is using it.
var ErrWalkInProgress = errors.New("matcher registry is in use by an active conversion")

// Transform maps a node and the delta built so far to a new delta.
type Transform func(n *normalize.Node, d delta.Delta, s State) delta.Delta

// Matcher is one registry entry.
type Matcher struct {
	Name      string
	Selector  Selector
	Transform Transform
	Builtin   bool
}

// Registry holds built-in and user matchers plus the attribute scope table.
// Mutate it during setup only; conversions hold it read-only.
type Registry struct {
	builtins []Matcher
	user     []Matcher
	attrs    map[string]Scope
	embeds   map[string]Scope
	active   atomic.Int32
}

// NewRegistry returns a registry loaded with the built-in matchers.
func NewRegistry() *Registry {
	r := &Registry{
		attrs:  defaultAttributeScopes(),
		embeds: defaultEmbedScopes(),
	}
	r.builtins = builtinMatchers()
	return r
}

// Add registers a user transform. It runs after every built-in matcher and
// after previously added user matchers that select the same node.
func (r *Registry) Add(sel Selector, t Transform) error {
	return r.AddNamed(sel.String(), sel, t)
}

// AddNamed is Add with a name used in failure logs.
func (r *Registry) AddNamed(name string, sel Selector, t Transform) error {
	if r.active.Load() > 0 {
		return ErrWalkInProgress
	}
	r.user = append(r.user, Matcher{Name: name, Selector: sel, Transform: t})
	return nil
}

// RegisterAttribute declares the scope of a custom attribute. Unknown
// attributes are inline.
func (r *Registry) RegisterAttribute(name string, scope Scope) error {
	if r.active.Load() > 0 {
		return ErrWalkInProgress
	}
	r.attrs[name] = scope
	return nil
}

// RegisterEmbed declares whether an embed key is inline or block.
func (r *Registry) RegisterEmbed(key string, scope Scope) error {
	if r.active.Load() > 0 {
		return ErrWalkInProgress
	}
	r.embeds[key] = scope
	return nil
}

func (r *Registry) Scope(attr string) Scope {
	if s, ok := r.attrs[attr]; ok {
		return s
	}
	return ScopeInline
}

func (r *Registry) IsBlockEmbed(key string) bool {
	return r.embeds[key] == ScopeBlock
}

// Resolve lists the matchers that apply to n, in application order.
func (r *Registry) Resolve(n *normalize.Node) []Matcher {
	var out []Matcher
	for _, m := range r.builtins {
		if m.Selector.Match(n) {
			out = append(out, m)
		}
	}
	for _, m := range r.user {
		if m.Selector.Match(n) {
			out = append(out, m)
		}
	}
	return out
}

// Acquire marks the registry as in use; Release undoes it. The walker
// brackets each conversion with them.
func (r *Registry) Acquire() { r.active.Add(1) }
func (r *Registry) Release() { r.active.Add(-1) }
