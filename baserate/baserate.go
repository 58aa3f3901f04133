// Copyright © 2024 The SINDIR Authors.
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package baserate estimates a per-gene-tree scalar rate that
// rescales observed branch lengths into the units of the
// species-branch substitution-rate model, so that length/rate is
// distributed as the model's Gaussian(mean, sdev) for the species
// branches it crosses.
package baserate

import (
	"fmt"
	"math"

	"github.com/js-arias/sindir/recon"
	"github.com/js-arias/sindir/tree"
)

// Params maps a species-tree node name to the Gaussian statistics of
// its substitution rate.
type Params map[string]tree.Param

// observation is one subtree-leaf branch's contribution to the
// estimator: its gene-tree depth and the species-branch statistics
// it accumulated on the way.
type observation struct {
	length float64
	mean   float64
	sdev   float64
}

// Estimate walks r.Gene from each child of its root, accumulating one
// observation per subtree leaf (a speciation or gene leaf) whose image
// lies below sroot and which does not sit under an extra branch (see
// recon.ExtraBranches), and returns the
// closed-form ratio estimate
//
//	r̂ = Σ(ℓᵢ²/σᵢ²) / Σ(μᵢℓᵢ/σᵢ²)
//
// the maximum-likelihood base rate under fixed per-branch variances.
func Estimate(r *recon.Reconciliation, params Params) (float64, error) {
	obs, err := observations(r, params)
	if err != nil {
		return 0, err
	}
	if len(obs) == 0 {
		return 0, fmt.Errorf("baserate: no informative branches to estimate a rate from")
	}

	num, den := 0.0, 0.0
	for _, o := range obs {
		v := o.sdev * o.sdev
		num += o.length * o.length / v
		den += o.mean * o.length / v
	}
	if den == 0 {
		return 0, fmt.Errorf("baserate: degenerate estimator (zero denominator)")
	}
	return num / den, nil
}

func observations(r *recon.Reconciliation, params Params) ([]observation, error) {
	g, s := r.Gene, r.Species
	speciesRoot := s.Root()
	rootImg := r.NodeMap[g.Root()]
	extraSet := recon.ExtraBranches(r)

	var obs []observation
	var err error

	var walk func(id int, depth float64, sroot int, extra bool)
	walk = func(id int, depth float64, sroot int, extra bool) {
		if err != nil {
			return
		}
		if r.NodeMap[id] != rootImg {
			depth += g.Dist(id)
		}
		extra = extra || extraSet[id]

		if r.Events[id] == recon.Dup {
			for _, c := range g.Children(id) {
				walk(c, depth, sroot, extra)
			}
			return
		}

		img := r.NodeMap[id]
		if img != sroot && !extra {
			mu, sigma2 := 0.0, 0.0
			cur := img
			for cur != sroot && cur != speciesRoot {
				pm, ok := params[s.NodeName(cur)]
				if !ok {
					err = fmt.Errorf("baserate: no rate parameters for species %q", s.NodeName(cur))
					return
				}
				mu += pm.Mean
				sigma2 += pm.Sdev * pm.Sdev
				cur = s.Parent(cur)
			}
			if sigma2 > 1e-8 {
				obs = append(obs, observation{length: depth, mean: mu, sdev: math.Sqrt(sigma2)})
			}
		}

		for _, c := range g.Children(id) {
			walk(c, 0, img, false)
		}
	}

	for _, c := range g.Children(g.Root()) {
		walk(c, 0, rootImg, false)
	}
	if err != nil {
		return nil, err
	}
	return obs, nil
}
