// Copyright © 2024 The SINDIR Authors.
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package tree

// A Param is a pair of branch-length statistics (mean, standard
// deviation) accumulated for a node during a likelihood pass.
type Param struct {
	Mean float64
	Sdev float64
}

// NodeAttrs is the per-node memoization scratchpad written by the
// likelihood engine. It replaces the free-form attribute map of the
// original implementation with explicit fields.
type NodeAttrs struct {
	// Logl is the log-likelihood contribution of this node's
	// branch, if it was a subtree-leaf in the last likelihood
	// pass.
	Logl    float64
	HasLogl bool

	// Extra marks a branch below a duplication at the species
	// root: uninformative for base-rate estimation and eligible
	// for shrinking in the likelihood walk.
	Extra bool

	// Unfold is a diagnostic flag: the top branch of the tree is
	// a duplication whose children are not at the species root.
	Unfold bool

	// Params are the species-branch statistics accumulated along
	// the species-tree path from this node's image up to the
	// species root of its subtree.
	Params []Param

	// Fracs are the mixture weights matching Params (kept as a
	// parallel slice to mirror the original diagnostic layout;
	// SINDIR's likelihood walk always produces a single weight of
	// 1 per node).
	Fracs []float64
}

func (a NodeAttrs) clone() NodeAttrs {
	c := a
	if a.Params != nil {
		c.Params = append([]Param(nil), a.Params...)
	}
	if a.Fracs != nil {
		c.Fracs = append([]float64(nil), a.Fracs...)
	}
	return c
}

// Attrs is the per-tree attribute bag written by the likelihood
// engine and the branch-length fitter.
type Attrs struct {
	// Error is the normalized least-squares residual left by the
	// branch-length fitter.
	Error float64

	// Logl is the total log-likelihood of the tree.
	Logl float64

	// EventLogl is the event (duplication/loss) log-prior
	// component of Logl.
	EventLogl float64

	// ErrorLogl is the fit-error penalty component of Logl.
	ErrorLogl float64

	// BaseRate is the per-tree scalar rescaling branch lengths to
	// unit-rate units.
	BaseRate float64
}
