// Copyright © 2024 The SINDIR Authors.
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package search

import (
	"fmt"
	"math"

	"github.com/js-arias/sindir/tree"
)

// Greedy builds a gene tree by stepwise addition (spec.md §4.6):
// starting from the two-leaf tree on labels[0:2], it inserts each
// subsequent label at the best-scoring of every edge (and above the
// root), then runs bounded-depth exhaustive NNI on the tree over the
// leaf set seen so far before adding the next label. Only the last
// leaf's placement and NNI pass share visited with the caller; every
// earlier step scores into a private cache that is discarded once its
// winning tree is carried forward.
func Greedy(sc *Scorer, cfg Config, dist [][]float64, labels []string, visited *Visited) (*tree.Tree, float64, error) {
	if len(labels) < 2 {
		return nil, 0, fmt.Errorf("search: greedy stepwise addition needs at least 2 labels, got %d", len(labels))
	}

	t := tree.New("")
	t.AddChild(t.Root(), labels[0], 0)
	t.AddChild(t.Root(), labels[1], 0)

	var logl float64
	var err error
	for k := 2; k < len(labels); k++ {
		subDist := subMatrix(dist, k+1)
		subLabels := labels[:k+1]

		var best *tree.Tree
		bestLogl := math.Inf(-1)
		for _, id := range t.Nodes() {
			cand := t.Copy()
			cand.InsertSibling(id, labels[k], 0)

			l, serr := sc.Score(cand, subDist, subLabels)
			if serr != nil {
				return nil, 0, serr
			}
			if l >= bestLogl {
				bestLogl = l
				best = cand
			}
		}
		t, logl = best, bestLogl

		stepVisited := visited
		if k != len(labels)-1 {
			stepVisited = NewVisited()
		}
		stepVisited.Add(t, logl)

		t, logl, err = Exhaustive(sc, cfg, subDist, subLabels, t, stepVisited)
		if err != nil {
			return nil, 0, err
		}
	}
	return t, logl, nil
}
