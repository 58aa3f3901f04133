// Copyright © 2024 The SINDIR Authors.
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package recon reconciles a gene tree against a fixed species tree:
// it maps every gene-tree node to the species-tree node it most
// plausibly descends from, labels the node as a speciation,
// duplication or leaf event, and counts the gene losses that
// reconciliation implies.
package recon

import (
	"fmt"

	"github.com/js-arias/sindir/tree"
)

// An Event classifies a gene-tree node under a reconciliation.
type Event int

const (
	// Leaf marks a gene-tree leaf (an observed gene copy).
	Leaf Event = iota
	// Spec marks a speciation: the node's two children map to two
	// different species-tree children.
	Spec
	// Dup marks a gene duplication: at least one child maps to the
	// same species-tree node as the node itself.
	Dup
)

func (e Event) String() string {
	switch e {
	case Leaf:
		return "leaf"
	case Spec:
		return "speciation"
	case Dup:
		return "duplication"
	default:
		return "unknown"
	}
}

// A Reconciliation is the result of mapping a gene tree onto a
// species tree: a total map from gene-tree node ID to species-tree
// node ID, and a total map from gene-tree node ID to its Event.
type Reconciliation struct {
	Gene    *tree.Tree
	Species *tree.Tree
	NodeMap map[int]int
	Events  map[int]Event

	depth map[int]int // species node ID -> depth from species root
}

// Reconcile maps every node of g onto a node of s, using toSpecies to
// translate a gene-tree leaf name into the name of the species-tree
// leaf it belongs to.
//
// The map is built bottom-up: a gene leaf maps to its species leaf,
// and an internal node maps to the lowest common ancestor, in s, of
// its children's images. A node is a duplication when its own image
// coincides with at least one child's image (the gene lineage
// branched without the species lineage branching); otherwise it is a
// speciation.
func Reconcile(g, s *tree.Tree, toSpecies func(geneName string) string) (*Reconciliation, error) {
	r := &Reconciliation{
		Gene:    g,
		Species: s,
		NodeMap: make(map[int]int, len(g.Nodes())),
		Events:  make(map[int]Event, len(g.Nodes())),
		depth:   speciesDepths(s),
	}

	parent := make(map[int]int, len(s.Nodes()))
	for _, id := range s.Nodes() {
		parent[id] = s.Parent(id)
	}

	var walk func(id int) error
	walk = func(id int) error {
		children := g.Children(id)
		for _, c := range children {
			if err := walk(c); err != nil {
				return err
			}
		}

		if g.IsLeaf(id) {
			name := toSpecies(g.NodeName(id))
			sid, ok := s.NodeByName(name)
			if !ok {
				return fmt.Errorf("recon: no species leaf named %q for gene %q", name, g.NodeName(id))
			}
			r.NodeMap[id] = sid
			r.Events[id] = Leaf
			return nil
		}

		img := r.NodeMap[children[0]]
		for _, c := range children[1:] {
			img = r.lca(img, r.NodeMap[c], parent)
		}
		r.NodeMap[id] = img

		dup := false
		for _, c := range children {
			if r.NodeMap[c] == img {
				dup = true
				break
			}
		}
		if dup {
			r.Events[id] = Dup
		} else {
			r.Events[id] = Spec
		}
		return nil
	}
	if err := walk(g.Root()); err != nil {
		return nil, err
	}
	return r, nil
}

// lca returns the lowest common ancestor, in the species tree, of a
// and b.
func (r *Reconciliation) lca(a, b int, parent map[int]int) int {
	anc := make(map[int]bool)
	for cur := a; cur != -1; cur = parent[cur] {
		anc[cur] = true
	}
	for cur := b; cur != -1; cur = parent[cur] {
		if anc[cur] {
			return cur
		}
	}
	return r.Species.Root()
}

// speciesDepths returns, for every node of s, its distance (in
// number of edges) from the species root.
func speciesDepths(s *tree.Tree) map[int]int {
	d := make(map[int]int, len(s.Nodes()))
	var walk func(id, depth int)
	walk = func(id, depth int) {
		d[id] = depth
		for _, c := range s.Children(id) {
			walk(c, depth+1)
		}
	}
	walk(s.Root(), 0)
	return d
}

// FindLoss counts the gene losses implied by r.
//
// For a non-root gene node whose image coincides with its parent's
// image, the branch stays on a single species lineage and implies no
// loss. Otherwise the branch spans the species-tree path from the
// parent's image down to the node's image: when the parent is a
// speciation, the first step of that path is the authentic
// speciation edge and is not a loss, so only the remaining steps
// count; when the parent is a duplication, no step of the path
// corresponds to an observed split, so every step is a loss.
func FindLoss(r *Reconciliation) int {
	losses := 0
	for _, id := range r.Gene.Nodes() {
		if r.Gene.IsRoot(id) {
			continue
		}
		p := r.Gene.Parent(id)
		s, sp := r.NodeMap[id], r.NodeMap[p]
		if s == sp {
			continue
		}
		steps := r.depth[s] - r.depth[sp]
		if r.Events[p] == Spec {
			steps--
		}
		losses += steps
	}
	return losses
}

// ExtraBranches returns the set of gene-tree node IDs that sit just
// below a duplication rooted at the species tree's root. Such
// branches reach a species the duplication's own lineage never
// actually entered independently, so they carry no information about
// the base substitution rate and are excluded from both the
// base-rate estimator and the likelihood's conditioning walk.
func ExtraBranches(r *Reconciliation) map[int]bool {
	speciesRoot := r.Species.Root()
	extra := make(map[int]bool)
	for _, id := range r.Gene.Nodes() {
		if r.Events[id] != Dup || r.NodeMap[id] != speciesRoot {
			continue
		}
		for _, c := range r.Gene.Children(id) {
			if r.NodeMap[c] != speciesRoot {
				extra[c] = true
			}
		}
	}
	return extra
}

// CountDup returns the number of duplication events recorded in r.
func CountDup(r *Reconciliation) int {
	n := 0
	for _, e := range r.Events {
		if e == Dup {
			n++
		}
	}
	return n
}

// Root searches every edge of g for the rerooting that minimizes the
// total duplication-plus-loss cost against s, and returns the
// rerooted tree together with its reconciliation. It is the strategy
// used to give an initial root to a gene tree (e.g. one freshly built
// by neighbor-joining) before reconciliation-aware scoring can run.
func Root(g, s *tree.Tree, toSpecies func(geneName string) string) (*tree.Tree, *Reconciliation, error) {
	best := g
	bestRecon, err := Reconcile(g, s, toSpecies)
	if err != nil {
		return nil, nil, err
	}
	bestCost := CountDup(bestRecon) + FindLoss(bestRecon)

	for _, id := range g.Nodes() {
		if g.IsRoot(id) {
			continue
		}
		candidate := g.Reroot(id)
		rc, err := Reconcile(candidate, s, toSpecies)
		if err != nil {
			return nil, nil, err
		}
		cost := CountDup(rc) + FindLoss(rc)
		if cost < bestCost {
			best = candidate
			bestRecon = rc
			bestCost = cost
		}
	}
	return best, bestRecon, nil
}
