// Copyright © 2024 The SINDIR Authors.
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package sindir is the top-level orchestrator tying the distance
// matrix, the species-branch rate model, the topology search drivers
// and the reconciliation-aware likelihood engine together into a
// single run (spec.md §4.7).
package sindir

import (
	"fmt"
	"io"
	"log/slog"
	"math/rand"

	"github.com/js-arias/sindir/baserate"
	"github.com/js-arias/sindir/likelihood"
	"github.com/js-arias/sindir/nj"
	"github.com/js-arias/sindir/recon"
	"github.com/js-arias/sindir/search"
	"github.com/js-arias/sindir/tree"
)

// Config holds a run's orchestration-level settings: which search
// phases to execute, in order, and the parameters every phase and the
// final scoring pass share.
type Config struct {
	// Search lists the phases to run in order, each one of
	// "greedy", "exhaustive", "mcmc" or "none" (which stops the
	// search phases early, matching spec.md §4.7's own vocabulary
	// for conf.search).
	Search []string

	Drivers    search.Config
	Likelihood likelihood.Config
}

// A Result is the outcome of a Run: the best-scoring tree found
// across every phase and candidate, its log-likelihood, and the full
// set of distinct topologies visited along the way.
type Result struct {
	Tree    *tree.Tree
	Logl    float64
	Visited *search.Visited
}

// Run executes cfg.Search in order, threading the surviving best tree
// and a shared visited cache between phases; any candidates supplied
// by the caller (e.g. trees read from a file) are then fit, scored
// and inserted into the same cache. The final selection is the
// maximum-logl tree across every phase and candidate. debug receives
// structured log lines at the start and end of each phase, one per
// candidate, and a final summary line; rng drives
// every random choice the MCMC phase makes.
func Run(cfg Config, dist [][]float64, names []string, species *tree.Tree, g2s func(string) string, params baserate.Params, candidates []*tree.Tree, rng *rand.Rand, debug io.Writer) (Result, error) {
	log := slog.New(slog.NewTextHandler(debug, nil))

	sc := &search.Scorer{
		Species:       species,
		GeneToSpecies: g2s,
		Params:        params,
		Likelihood:    cfg.Likelihood,
	}

	visited := search.NewVisited()
	var current *tree.Tree
	var err error

phases:
	for _, phase := range cfg.Search {
		log.Info("starting search phase", "phase", phase)

		switch phase {
		case "greedy":
			current, _, err = search.Greedy(sc, cfg.Drivers, dist, names, visited)

		case "exhaustive":
			if current == nil {
				current, err = seedTree(sc, dist, names)
			}
			if err == nil {
				current, _, err = search.Exhaustive(sc, cfg.Drivers, dist, names, current, visited)
			}

		case "mcmc":
			if current == nil {
				current, err = seedTree(sc, dist, names)
			}
			if err == nil {
				current, _, err = search.MCMC(sc, cfg.Drivers, dist, names, current, visited, rng)
			}

		case "none":
			log.Info("search phases disabled")
			break phases

		default:
			err = fmt.Errorf("sindir: unknown search phase %q", phase)
		}

		if err != nil {
			return Result{}, err
		}
		log.Info("search phase complete", "phase", phase, "visited", visited.Len())
	}

	for i, cand := range candidates {
		logl, err := sc.Score(cand, dist, names)
		if err != nil {
			return Result{}, fmt.Errorf("sindir: scoring candidate tree %d: %w", i, err)
		}
		visited.Add(cand, logl)
		log.Info("scored candidate tree", "index", i, "logl", logl)
	}

	if visited.Len() == 0 {
		return Result{}, fmt.Errorf("sindir: no search or tree topologies given")
	}

	best, logl := visited.Best()
	log.Info("run complete", "visited", visited.Len(), "logl", logl)
	return Result{Tree: best, Logl: logl, Visited: visited}, nil
}

// seedTree builds the initial topology used by the exhaustive and
// MCMC phases when no earlier phase has yet produced one: a
// neighbor-joining topology (spec.md §2's "distance matrix + labels
// -> initial NJ topology" step), rerooted to the reconciliation that
// minimizes duplication+loss cost against the species tree.
func seedTree(sc *search.Scorer, dist [][]float64, names []string) (*tree.Tree, error) {
	t, err := nj.Build(dist, names)
	if err != nil {
		return nil, err
	}
	rooted, _, err := recon.Root(t, sc.Species, sc.GeneToSpecies)
	if err != nil {
		return nil, err
	}
	return rooted, nil
}
