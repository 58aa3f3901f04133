// Copyright © 2024 The SINDIR Authors.
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package tree

import (
	"sort"
	"strings"
)

// LeafSets returns, for every node of the tree, the sorted names of
// the leaves in its subtree. It is the basis of both the topology
// hash below and the edge-bipartition system the branch-length
// fitter solves against.
func (t *Tree) LeafSets() map[int][]string {
	sets := make(map[int][]string, len(t.nodes))
	var walk func(id int) []string
	walk = func(id int) []string {
		if t.IsLeaf(id) {
			leaf := []string{t.NodeName(id)}
			sets[id] = leaf
			return leaf
		}
		var all []string
		for _, c := range t.Children(id) {
			all = append(all, walk(c)...)
		}
		sort.Strings(all)
		sets[id] = all
		return all
	}
	walk(t.root)
	return sets
}

// Hash returns a canonical fingerprint of the tree's unrooted
// topology: its leaf set together with the set of non-trivial
// leaf-label bipartitions (both halves holding at least two leaves)
// induced by its edges. Two trees with the same leaf set and the same
// bipartition set hash identically, regardless of root choice or
// sibling order — the
// property the topology-search visited cache relies on to dedupe
// equivalent trees.
func (t *Tree) Hash() string {
	leafSets := t.LeafSets()
	full := append([]string(nil), leafSets[t.root]...)
	sort.Strings(full)

	splits := make(map[string]bool)
	for _, id := range t.Nodes() {
		if id == t.root || t.IsLeaf(id) {
			continue
		}
		side := leafSets[id]
		// A one-leaf half is a split every tree over full has, and
		// the root-adjacent edges of a rerooted tree produce one.
		if len(side) <= 1 || len(side) >= len(full)-1 {
			continue
		}
		splits[canonicalSplit(side, full)] = true
	}

	keys := make([]string, 0, len(splits))
	for k := range splits {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return strings.Join(full, ",") + "|" + strings.Join(keys, ";")
}

// canonicalSplit returns a bipartition key that is identical
// regardless of which of the two complementary leaf sets is passed
// in as side, by always reporting the half that excludes the
// lexicographically smallest leaf in full.
func canonicalSplit(side, full []string) string {
	inSide := make(map[string]bool, len(side))
	for _, s := range side {
		inSide[s] = true
	}

	ref := full[0]
	chosen := side
	if inSide[ref] {
		other := make([]string, 0, len(full)-len(side))
		for _, l := range full {
			if !inSide[l] {
				other = append(other, l)
			}
		}
		chosen = other
	}
	return strings.Join(chosen, ",")
}
