// Copyright © 2024 The SINDIR Authors.
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package search

import (
	"math"
	"math/rand"

	"github.com/js-arias/sindir/tree"
)

// MCMC runs cfg.NChains independent Metropolis chains over topology
// space, starting every chain from a copy of init, for up to
// cfg.MaxIters round-robin steps or until visited holds at least
// cfg.Iters distinct topologies, and returns the best-ever scored
// tree (spec.md §4.6).
//
// The revisit penalty (nold, the count of consecutive proposals that
// landed on an already-cached topology) is tracked once, shared
// across every chain's step, not per chain: the original search this
// is grounded on resets and increments a single counter inside one
// proposal closure shared by all chains, rather than giving each
// chain its own count.
func MCMC(sc *Scorer, cfg Config, dist [][]float64, labels []string, init *tree.Tree, visited *Visited, rng *rand.Rand) (*tree.Tree, float64, error) {
	logl, err := sc.Score(init, dist, labels)
	if err != nil {
		return nil, 0, err
	}
	visited.Add(init, logl)

	top := init.Copy()
	topLogl := logl
	nold := 0

	states := make([]*tree.Tree, cfg.NChains)
	logls := make([]float64, cfg.NChains)
	for i := range states {
		states[i] = init.Copy()
		logls[i] = logl
	}

	for step := 1; step < cfg.MaxIters; step++ {
		if visited.Len() >= cfg.Iters {
			break
		}
		for i := range states {
			proposed := proposeTree(states[i], cfg, rng)

			var pLogl float64
			if cached, _, ok := visited.Lookup(proposed.Hash()); ok {
				pLogl = cached
				nold++
			} else {
				l, err := sc.Score(proposed, dist, labels)
				if err != nil {
					return nil, 0, err
				}
				pLogl = l
				nold = 0
				visited.Add(proposed, pLogl)
			}

			if pLogl > topLogl {
				top = proposed.Copy()
				topLogl = pLogl
			}

			// Metropolis acceptance, with a revisit penalty that
			// only influences which state the chain continues
			// from, never the score recorded in visited.
			accept := pLogl + cfg.Speedup*float64(nold)
			if accept > logls[i] || accept-logls[i] > math.Log(rng.Float64()) {
				states[i] = proposed
				logls[i] = pLogl
			}
		}
	}

	return top, topLogl, nil
}

// proposeTree applies one MCMC move to a copy of t (spec.md §4.6 step
// 1): with probability cfg.RerootProb, reroot at a uniformly random
// node; then apply an NNI at a uniformly random eligible edge with a
// uniformly random change bit.
func proposeTree(t *tree.Tree, cfg Config, rng *rand.Rand) *tree.Tree {
	t2 := t.Copy()
	if rng.Float64() < cfg.RerootProb {
		nodes := t2.Nodes()
		t2 = t2.Reroot(nodes[rng.Intn(len(nodes))])
	}

	edges := Edges(t2)
	if len(edges) == 0 {
		return t2
	}
	e := edges[rng.Intn(len(edges))]
	NNI(t2, e, rng.Intn(2))
	return t2
}
