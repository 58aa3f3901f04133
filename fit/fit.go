// Copyright © 2024 The SINDIR Authors.
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package fit estimates branch lengths for a fixed gene-tree topology
// from a pairwise distance matrix, by least-squares regression
// against the tree's edge-induced leaf bipartitions.
package fit

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/js-arias/sindir/tree"
)

// A Result carries the outcome of a Branches call.
type Result struct {
	// Error is the normalized least-squares residual: the
	// Euclidean norm of the fit residual divided by the total
	// fitted tree length.
	Error float64
}

// Branches fits non-negative branch lengths onto every edge of t so
// that the path distances they imply best match dist in a
// least-squares sense, and writes the fitted Dist of every node.
//
// dist is a symmetric matrix indexed by position in names; names
// must list every leaf of t exactly once. The edges of the tree are
// taken to be its non-root nodes: each such node's own branch to its
// parent is one fitting variable, so the result is identical whether
// the tree's root happens to be bifurcating or (as for a freshly
// built, still-unrooted topology) a polytomy — no synthetic
// re-rooting is required to expose every edge.
func Branches(t *tree.Tree, dist [][]float64, names []string) (Result, error) {
	index := make(map[string]int, len(names))
	for i, n := range names {
		index[n] = i
	}
	n := len(names)
	if n < 2 {
		return Result{}, fmt.Errorf("fit: need at least 2 leaves, got %d", n)
	}

	leaves := t.Leaves()
	if len(leaves) != n {
		return Result{}, fmt.Errorf("fit: tree has %d leaves, distance matrix has %d", len(leaves), n)
	}
	for _, id := range leaves {
		name := t.NodeName(id)
		if _, ok := index[name]; !ok {
			return Result{}, fmt.Errorf("fit: tree leaf %q has no entry in the distance matrix", name)
		}
	}

	edges := make([]int, 0, len(t.Nodes())-1)
	for _, id := range t.Nodes() {
		if !t.IsRoot(id) {
			edges = append(edges, id)
		}
	}
	sort.Ints(edges)

	leafSets := t.LeafSets()

	npairs := n * (n - 1) / 2
	A := mat.NewDense(npairs, len(edges), nil)
	d := mat.NewVecDense(npairs, nil)

	row := func(i, j int) int {
		return i*n - i*(i+1)/2 + j - i - 1
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			d.SetVec(row(i, j), dist[i][j])
		}
	}

	for e, id := range edges {
		side := make(map[string]bool, len(leafSets[id]))
		for _, l := range leafSets[id] {
			side[l] = true
		}
		for i := 0; i < n; i++ {
			iIn := side[names[i]]
			for j := i + 1; j < n; j++ {
				if iIn != side[names[j]] {
					A.Set(row(i, j), e, 1)
				}
			}
		}
	}

	// A is structurally rank-deficient whenever the root has two
	// children and both sides have leaves: the two root-adjacent
	// edges' bipartitions are exact complements of each other, so
	// their columns coincide. SolveVec's LU/QR path requires full
	// column rank and fails on this, so solve via SVD instead,
	// which gives the minimum-norm solution for any rank.
	var svd mat.SVD
	if ok := svd.Factorize(A, mat.SVDThin); !ok {
		return Result{}, fmt.Errorf("fit: SVD factorization failed")
	}
	rank := svd.Rank(1e-12)
	if rank < 1 {
		rank = 1
	}
	var b mat.VecDense
	svd.SolveVecTo(&b, d, rank)

	total := 0.0
	for e, id := range edges {
		v := b.AtVec(e)
		if v < 0 {
			v = 0
		}
		t.SetDist(id, v)
		total += v
	}

	var resid mat.VecDense
	resid.MulVec(A, &b)
	resid.SubVec(&resid, d)
	sumsq := mat.Dot(&resid, &resid)

	res := Result{}
	if total > 0 {
		res.Error = math.Sqrt(sumsq) / total
	}
	t.Attrs().Error = res.Error
	return res, nil
}
