// Package resolver turns cross-references into links. A Resolver holds an
// ordered list of strategies and hands each reference to the first one
// that supports it.
package resolver

import (
	"github.com/dgallion1/guides/internal/doctree"
)

// Context is what a strategy may consult while resolving a reference.
type Context struct {
	Document *doctree.Document // document containing the reference
	Index    *Index
}

// Strategy resolves one family of references, such as labels or documents.
type Strategy interface {
	Supports(ref *doctree.CrossReference) bool
	Resolve(ref *doctree.CrossReference, ctx Context) (doctree.Resolved, bool)
}

// Resolver dispatches references to strategies in registration order.
type Resolver struct {
	strategies []Strategy
}

// New returns a resolver trying strategies in the given order.
func New(strategies ...Strategy) *Resolver {
	return &Resolver{strategies: strategies}
}

// Default returns the standard strategy chain: interlinks into inventories,
// then documents, then labels and section titles.
func Default(inventories map[string]Inventory) *Resolver {
	return New(
		&InterlinkStrategy{Inventories: inventories},
		&DocStrategy{},
		&LabelStrategy{},
	)
}

// Resolve hands ref to the first strategy that supports it and returns that
// strategy's answer. Later strategies are not consulted even when the
// first one fails. With no supporting strategy there is no result.
func (r *Resolver) Resolve(ref *doctree.CrossReference, ctx Context) (doctree.Resolved, bool) {
	for _, s := range r.strategies {
		if s.Supports(ref) {
			return s.Resolve(ref, ctx)
		}
	}
	return doctree.Resolved{}, false
}
