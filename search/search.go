// Copyright © 2024 The SINDIR Authors.
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package search implements the topology search drivers that propose,
// fit, score and cache candidate gene-tree topologies: an NNI
// proposer, a shared visited cache, bounded-depth exhaustive search,
// greedy stepwise addition, and multi-chain MCMC.
package search

import (
	"github.com/js-arias/sindir/baserate"
	"github.com/js-arias/sindir/fit"
	"github.com/js-arias/sindir/likelihood"
	"github.com/js-arias/sindir/tree"
)

// Config holds the tunable parameters shared by every search driver.
type Config struct {
	// Depth bounds the recursion of the exhaustive NNI search.
	Depth int

	// RerootProb is the MCMC proposal's chance of rerooting before
	// applying an NNI.
	RerootProb float64

	// Speedup is the per-proposal penalty added to a revisited
	// topology's log-likelihood before the MCMC acceptance check,
	// discouraging the chains from dwelling on already-scored
	// topology.
	Speedup float64

	// NChains is the number of independent MCMC chains run in
	// round-robin.
	NChains int

	// MaxIters bounds the number of MCMC steps taken by each chain.
	MaxIters int

	// Iters stops the MCMC search early once the visited cache
	// holds at least this many distinct topologies.
	Iters int
}

// A Scorer bundles everything a search driver needs to turn a bare
// topology into a fitted, reconciliation-scored tree: the species
// tree and gene-to-species map a reconciliation is built against, the
// species-branch rate model, and the likelihood weights.
type Scorer struct {
	Species       *tree.Tree
	GeneToSpecies func(geneName string) string
	Params        baserate.Params
	Likelihood    likelihood.Config
}

// Score fits branch lengths for t against dist (indexed by position
// in names) and returns its reconciliation-aware log-likelihood,
// writing both the fit and likelihood diagnostics onto t. The base
// rate is always re-estimated from t itself, matching the search
// drivers' own scoring convention of never fixing the rate across
// topologies.
func (sc *Scorer) Score(t *tree.Tree, dist [][]float64, names []string) (float64, error) {
	if _, err := fit.Branches(t, dist, names); err != nil {
		return 0, err
	}
	return likelihood.TreeLogLikelihood(t, sc.Species, sc.GeneToSpecies, sc.Params, sc.Likelihood, nil)
}

// subMatrix returns the n×n leading submatrix of dist, sharing the
// underlying row storage (rows are only ever read, never mutated, by
// fit.Branches).
func subMatrix(dist [][]float64, n int) [][]float64 {
	out := make([][]float64, n)
	for i := 0; i < n; i++ {
		out[i] = dist[i][:n]
	}
	return out
}
