// Copyright © 2024 The SINDIR Authors.
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package search

import "github.com/js-arias/sindir/tree"

// Exhaustive performs a bounded-depth NNI search starting from t
// (spec.md §4.6): every eligible edge, both change bits, applied,
// memoized (fit + score) if new, recursed into to depth-1, then
// undone. It returns the best-scoring tree recorded in visited (which
// may predate this call, since the cache is shared across steps and
// drivers).
func Exhaustive(sc *Scorer, cfg Config, dist [][]float64, labels []string, t *tree.Tree, visited *Visited) (*tree.Tree, float64, error) {
	if _, _, ok := visited.Lookup(t.Hash()); !ok {
		logl, err := sc.Score(t, dist, labels)
		if err != nil {
			return nil, 0, err
		}
		visited.Add(t, logl)
	}

	if err := exhaustiveStep(sc, cfg.Depth, dist, labels, t, visited); err != nil {
		return nil, 0, err
	}

	best, logl := visited.Best()
	return best, logl, nil
}

func exhaustiveStep(sc *Scorer, depth int, dist [][]float64, labels []string, t *tree.Tree, visited *Visited) error {
	for _, e := range Edges(t) {
		for change := 0; change < 2; change++ {
			a, b := NNI(t, e, change)

			if _, _, ok := visited.Lookup(t.Hash()); !ok {
				logl, err := sc.Score(t, dist, labels)
				if err != nil {
					t.SwapChildren(a, b)
					return err
				}
				visited.Add(t, logl)

				if depth > 1 {
					if err := exhaustiveStep(sc, depth-1, dist, labels, t, visited); err != nil {
						t.SwapChildren(a, b)
						return err
					}
				}
			}

			// undo: SwapChildren is its own inverse.
			t.SwapChildren(a, b)
		}
	}
	return nil
}
