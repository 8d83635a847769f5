package compiler

import "github.com/dgallion1/guides/internal/doctree"

// ShadowTree mirrors a document's node tree with parent links. Nodes live
// in one slice and refer to each other by index; index 0 is the document.
// The tree is read-only once built.
type ShadowTree struct {
	doc   *doctree.Document
	nodes []shadowNode
}

type shadowNode struct {
	node     doctree.Node
	parent   int // -1 for the root
	children []int
}

// BuildShadow walks doc depth-first and records every node in pre-order.
func BuildShadow(doc *doctree.Document) *ShadowTree {
	t := &ShadowTree{doc: doc}
	t.add(doc, -1)
	return t
}

func (t *ShadowTree) add(n doctree.Node, parent int) int {
	i := len(t.nodes)
	t.nodes = append(t.nodes, shadowNode{node: n, parent: parent})
	for _, c := range n.Children() {
		ci := t.add(c, i)
		t.nodes[i].children = append(t.nodes[i].children, ci)
	}
	return i
}

// Document returns the document the tree mirrors.
func (t *ShadowTree) Document() *doctree.Document { return t.doc }

// Len returns the number of nodes, including the document root.
func (t *ShadowTree) Len() int { return len(t.nodes) }

// Node returns the node at index i.
func (t *ShadowTree) Node(i int) doctree.Node { return t.nodes[i].node }

// Parent returns the index of the parent of i, or -1 for the root.
func (t *ShadowTree) Parent(i int) int { return t.nodes[i].parent }

// Children returns the indices of the children of i in document order.
func (t *ShadowTree) Children(i int) []int { return t.nodes[i].children }

// Walk calls fn for every index in pre-order, which is also index order.
func (t *ShadowTree) Walk(fn func(i int)) {
	for i := range t.nodes {
		fn(i)
	}
}

// Enclosing returns the index of the nearest strict ancestor of i whose
// kind is k, or -1.
func (t *ShadowTree) Enclosing(i int, k doctree.Kind) int {
	for p := t.nodes[i].parent; p >= 0; p = t.nodes[p].parent {
		if t.nodes[p].node.Kind() == k {
			return p
		}
	}
	return -1
}
