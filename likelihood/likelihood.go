// Copyright © 2024 The SINDIR Authors.
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package likelihood computes the reconciliation-aware log-likelihood
// of a gene tree against a species-branch substitution-rate model,
// combining per-branch Gaussian densities across duplications with
// event (duplication/loss) log-priors and a fit-error penalty.
package likelihood

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/js-arias/sindir/baserate"
	"github.com/js-arias/sindir/recon"
	"github.com/js-arias/sindir/tree"
)

// Config holds the scoring weights that are fixed for a whole run:
// the prior probability of observing a duplication or a loss event,
// and the weight given to the branch-length fit error.
type Config struct {
	DupProb   float64
	LossProb  float64
	ErrorCost float64
}

// TreeLogLikelihood scores g against the species tree s under g2s
// (gene name -> species name) and the species-branch rate model
// params, writing the tree's and every node's diagnostic fields as it
// goes. If rate is nil, a per-tree rate is estimated from g
// itself (see the baserate package); otherwise the supplied value is
// used as-is (e.g. to score several candidate topologies under a rate
// fixed by the current best tree).
func TreeLogLikelihood(g, s *tree.Tree, g2s func(string) string, params baserate.Params, cfg Config, rate *float64) (float64, error) {
	g.ClearMemo()

	r, err := recon.Reconcile(g, s, g2s)
	if err != nil {
		return 0, err
	}

	br := 0.0
	if rate != nil {
		br = *rate
	} else {
		br, err = baserate.Estimate(r, params)
		if err != nil {
			return 0, err
		}
	}

	markUnfold(g, r)

	branchSum, err := branchLikelihoods(g, s, r, params, br)
	if err != nil {
		return 0, err
	}

	dupCount := recon.CountDup(r)
	lossCount := recon.FindLoss(r)
	eventLogl := float64(dupCount)*safeLog(cfg.DupProb) + float64(lossCount)*safeLog(cfg.LossProb)

	errorLogl := g.Attrs().Error * cfg.ErrorCost

	total := branchSum + eventLogl + errorLogl

	a := g.Attrs()
	a.Logl = total
	a.EventLogl = eventLogl
	a.ErrorLogl = errorLogl
	a.BaseRate = br

	return total, nil
}

// markUnfold flags, purely as a diagnostic, a gene-tree root that is
// itself a duplication rooted at the species root whose child does
// not stay at the species root: the top branch "unfolds" into two
// independent species-rooted subtrees.
func markUnfold(g *tree.Tree, r *recon.Reconciliation) {
	root := g.Root()
	speciesRoot := r.Species.Root()
	if r.NodeMap[root] != speciesRoot || r.Events[root] != recon.Dup {
		return
	}
	for _, c := range g.Children(root) {
		if r.NodeMap[c] != speciesRoot {
			g.NodeAttrs(c).Unfold = true
		}
	}
}

// branchLikelihoods sums subtreeLogL over every independent subtree
// hanging off a speciation node (or the gene-tree root itself): each
// such subtree may contain further duplications, but its leaves
// (true speciations or gene leaves) are otherwise unrelated paths
// through the species-rate model.
func branchLikelihoods(g, s *tree.Tree, r *recon.Reconciliation, params baserate.Params, rate float64) (float64, error) {
	extra := recon.ExtraBranches(r)
	total := 0.0
	for _, id := range g.Nodes() {
		if id != g.Root() && r.Events[id] != recon.Spec {
			continue
		}
		for _, c := range g.Children(id) {
			logl, err := subtreeLogL(g, s, r, params, rate, extra, c, r.NodeMap[id])
			if err != nil {
				return 0, err
			}
			total += logl
		}
	}
	return total, nil
}

// subtreeLogL descends from root through its duplication-only
// interior, scoring every non-duplication descendant ("subtree leaf")
// against the species branches between its image and sroot, and
// returns the summed log-likelihood of the whole subtree.
func subtreeLogL(g, s *tree.Tree, r *recon.Reconciliation, params baserate.Params, rate float64, extraSet map[int]bool, root, sroot int) (float64, error) {
	speciesRoot := r.Species.Root()
	rootImg := r.NodeMap[g.Root()]

	depths := map[int]float64{g.Parent(root): 0}
	marks := map[int]bool{g.Parent(root): true}

	total := 0.0
	var walkErr error

	var walk func(id, extra int)
	walk = func(id, extra int) {
		if walkErr != nil {
			return
		}
		parent := g.Parent(id)
		if r.NodeMap[id] != rootImg {
			depths[id] = depths[parent] + g.Dist(id)
		} else {
			depths[id] = depths[parent]
		}

		if extraSet[id] {
			extra = id
		}

		if r.Events[id] == recon.Dup {
			for _, c := range g.Children(id) {
				walk(c, extra)
			}
			return
		}

		img := r.NodeMap[id]
		if img == sroot {
			return
		}

		mu, sigma2 := 0.0, 0.0
		cur := img
		for cur != sroot && cur != speciesRoot {
			pm, ok := params[s.NodeName(cur)]
			if !ok {
				walkErr = fmt.Errorf("likelihood: no rate parameters for species %q", s.NodeName(cur))
				return
			}
			mu += pm.Mean
			sigma2 += pm.Sdev * pm.Sdev
			cur = s.Parent(cur)
		}
		if sigma2 <= 1e-8 {
			panic("likelihood: species-branch variance too small to condition on")
		}
		sigma := math.Sqrt(sigma2)

		ptr := id
		for !marks[ptr] {
			marks[ptr] = true
			ptr = g.Parent(ptr)
		}
		condDist := depths[ptr]

		dist := depths[id]
		if condDist > dist {
			dist = condDist
		}

		if extra != -1 {
			target := mu
			if d := dist / rate; d < target {
				target = d
			}
			if target < 0 {
				target = 0
			}
			target *= rate

			shrink := dist - target
			if bound := math.Max(g.Dist(extra), 0); shrink > bound {
				shrink = bound
			}
			if condDist > 0 {
				condDist -= shrink
			} else {
				dist -= shrink
			}
		}

		norm := distuv.Normal{Mu: mu, Sigma: sigma}
		lognom := norm.LogProb(dist / rate)
		logdenom := 0.0
		if condDist != 0 {
			logdenom = math.Log(1 - norm.CDF(condDist/rate))
		}

		logl := lognom - logdenom
		if math.IsInf(logdenom, -1) || math.IsInf(lognom, 1) {
			logl = math.Inf(-1)
		}
		total += logl

		na := g.NodeAttrs(id)
		na.Logl = logl
		na.HasLogl = true
		na.Extra = extraSet[id]
		na.Params = []tree.Param{{Mean: mu, Sdev: sigma}}
		na.Fracs = []float64{1}
		// A subtree leaf ends this descent: it is scored here, and
		// any nested speciations among its descendants are picked
		// up independently by branchLikelihoods' own traversal.
	}
	walk(root, -1)

	if walkErr != nil {
		return 0, walkErr
	}
	return total, nil
}

func safeLog(x float64) float64 {
	if x <= 0 {
		return math.Inf(-1)
	}
	return math.Log(x)
}
