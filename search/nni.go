// Copyright © 2024 The SINDIR Authors.
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package search

import "github.com/js-arias/sindir/tree"

// An Edge names an internal branch eligible for nearest-neighbor
// interchange: Child is neither a leaf nor the tree's root, and
// Parent (Child's own parent) is not the root either (spec.md §4.5).
type Edge struct {
	Child, Parent int
}

// Edges lists every NNI-eligible edge of t.
func Edges(t *tree.Tree) []Edge {
	var edges []Edge
	for _, id := range t.Nodes() {
		if t.IsRoot(id) || t.IsLeaf(id) {
			continue
		}
		p := t.Parent(id)
		if t.IsRoot(p) {
			continue
		}
		edges = append(edges, Edge{Child: id, Parent: p})
	}
	return edges
}

// NNI performs a nearest-neighbor interchange on e: it swaps e.Child's
// change-th child with e.Parent's other child (the "uncle"), mutating
// t in place, and returns the two node IDs that were exchanged. The
// move is undone by calling t.SwapChildren on the same returned pair
// a second time.
func NNI(t *tree.Tree, e Edge, change int) (a, b int) {
	cc := t.Children(e.Child)
	a = cc[change]

	pc := t.Children(e.Parent)
	b = pc[0]
	if b == e.Child {
		b = pc[1]
	}

	t.SwapChildren(a, b)
	return a, b
}
