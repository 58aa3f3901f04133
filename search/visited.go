// Copyright © 2024 The SINDIR Authors.
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package search

import (
	"math"

	"github.com/js-arias/sindir/tree"
)

// visitedEntry is one cached topology: its log-likelihood, a private
// copy of the fitted tree, and how many times a search driver has
// proposed it.
type visitedEntry struct {
	logl  float64
	tree  *tree.Tree
	count int
}

// A Visited cache lets every search driver reuse the (logl, tree)
// pair already computed for a topology, keyed by its canonical,
// reroot/sibling-order-invariant hash, instead of refitting and
// rescoring it again. It is shared across drivers and across the
// steps of a single driver (spec.md §4.6's "all drivers share a
// visited cache").
type Visited struct {
	m     map[string]*visitedEntry
	order []string
}

// NewVisited returns an empty cache.
func NewVisited() *Visited {
	return &Visited{m: make(map[string]*visitedEntry)}
}

// Len returns the number of distinct topologies recorded.
func (v *Visited) Len() int { return len(v.m) }

// Lookup returns the cached log-likelihood and tree for hash,
// incrementing its visit count, or ok=false if hash is not cached.
func (v *Visited) Lookup(hash string) (logl float64, t *tree.Tree, ok bool) {
	e, found := v.m[hash]
	if !found {
		return 0, nil, false
	}
	e.count++
	return e.logl, e.tree, true
}

// Add records t (by its canonical hash) with the given log-likelihood,
// storing a private copy. A resubmission under the same hash (e.g. a
// tree refit under a different rate) overwrites the cached logl and
// copy and increments the visit count.
func (v *Visited) Add(t *tree.Tree, logl float64) {
	h := t.Hash()
	if e, ok := v.m[h]; ok {
		e.logl = logl
		e.tree = t.Copy()
		e.count++
		return
	}
	v.m[h] = &visitedEntry{logl: logl, tree: t.Copy(), count: 1}
	v.order = append(v.order, h)
}

// Best returns the highest-logl tree recorded, and its logl. Ties are
// broken in favor of the topology added first, matching the original
// search's own argmax-over-insertion-order scan. Best returns
// (nil, -Inf) on an empty cache; callers follow the orchestrator's
// convention of checking Len first (spec.md §4.7's "no search or tree
// topologies given" error).
func (v *Visited) Best() (*tree.Tree, float64) {
	best := math.Inf(-1)
	var bestTree *tree.Tree
	for _, h := range v.order {
		e := v.m[h]
		if e.logl > best {
			best = e.logl
			bestTree = e.tree
		}
	}
	return bestTree, best
}
