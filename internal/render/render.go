// Package render turns compiled documents into output text. Renderers are
// registered per output format and node kind in a Registry; format
// packages such as render/html contribute them through their Register
// functions.
package render

import (
	"errors"
	"fmt"
	"slices"
	"sort"
	"sync"

	"github.com/dgallion1/guides/internal/doctree"
	"github.com/yuin/goldmark/util"
)

// ErrNoRenderer is returned when no registered renderer supports a node in
// the requested format. It means the registry is incomplete, not that the
// document is wrong.
var ErrNoRenderer = errors.New("no renderer")

// Renderer renders nodes of the kinds it was registered for.
type Renderer interface {
	Supports(n doctree.Node) bool
	Render(ctx *Context, n doctree.Node) (string, error)
}

// Func adapts a function to a Renderer that supports every node.
type Func func(ctx *Context, n doctree.Node) (string, error)

func (Func) Supports(doctree.Node) bool { return true }

func (f Func) Render(ctx *Context, n doctree.Node) (string, error) { return f(ctx, n) }

type conditional struct {
	pred func(doctree.Node) bool
	Func
}

func (c conditional) Supports(n doctree.Node) bool { return c.pred(n) }

// When returns a renderer that only supports nodes accepted by pred.
func When(pred func(doctree.Node) bool, f Func) Renderer {
	return conditional{pred: pred, Func: f}
}

type formatTable struct {
	exact    map[doctree.Kind]util.PrioritizedSlice
	fallback util.PrioritizedSlice
}

// Registry maps output formats and node kinds to renderers. It is safe for
// concurrent use; registration normally happens once at startup.
type Registry struct {
	mu      sync.RWMutex
	formats map[string]*formatTable
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{formats: map[string]*formatTable{}}
}

func (r *Registry) table(format string) *formatTable {
	t, ok := r.formats[format]
	if !ok {
		t = &formatTable{exact: map[doctree.Kind]util.PrioritizedSlice{}}
		r.formats[format] = t
	}
	return t
}

// byPriority orders higher priorities first and keeps registration order
// among equal priorities.
func byPriority(s util.PrioritizedSlice) {
	slices.SortStableFunc(s, func(a, b util.PrioritizedValue) int {
		return b.Priority - a.Priority
	})
}

// Register adds a renderer for one node kind in format.
func (r *Registry) Register(format string, kind doctree.Kind, rn Renderer, priority int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t := r.table(format)
	s := append(t.exact[kind], util.Prioritized(rn, priority))
	byPriority(s)
	t.exact[kind] = s
}

// RegisterFallback adds a renderer consulted for any kind after the
// kind-specific renderers of format.
func (r *Registry) RegisterFallback(format string, rn Renderer, priority int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t := r.table(format)
	t.fallback = append(t.fallback, util.Prioritized(rn, priority))
	byPriority(t.fallback)
}

// Lookup picks the renderer for n: kind-specific renderers before
// fallbacks, higher priority first, the first one supporting n.
func (r *Registry) Lookup(format string, n doctree.Node) (Renderer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.formats[format]
	if !ok {
		return nil, fmt.Errorf("%w: unknown format %q", ErrNoRenderer, format)
	}
	for _, s := range []util.PrioritizedSlice{t.exact[n.Kind()], t.fallback} {
		for _, v := range s {
			if rn := v.Value.(Renderer); rn.Supports(n) {
				return rn, nil
			}
		}
	}
	return nil, fmt.Errorf("%w: format %q, node %s", ErrNoRenderer, format, n.Kind())
}

// Formats returns the registered formats in sorted order.
func (r *Registry) Formats() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.formats))
	for f := range r.formats {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

// Has reports whether any renderer is registered for format.
func (r *Registry) Has(format string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.formats[format]
	return ok
}

// Missing returns the node kinds that have no kind-specific renderer in
// format and would rely on a fallback.
func (r *Registry) Missing(format string) []doctree.Kind {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t := r.formats[format]
	var out []doctree.Kind
	for _, k := range doctree.Kinds() {
		if t == nil || len(t.exact[k]) == 0 {
			out = append(out, k)
		}
	}
	return out
}
