// Copyright © 2024 The SINDIR Authors.
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package nj builds an initial gene-tree topology from a distance
// matrix by neighbor-joining, the first step of SINDIR's data flow:
// "distance matrix + labels -> initial NJ topology -> LS-fit branch
// lengths -> likelihood -> search loop".
package nj

import (
	"fmt"
	"math"

	"github.com/js-arias/sindir/tree"
)

type adjEdge struct {
	to   string
	dist float64
}

// Build runs the neighbor-joining algorithm over dist (indexed by
// position in labels) and returns the resulting unrooted binary
// topology, rooted at an internal endpoint of its final join (for two
// labels, at a fresh node joining them), so every label is a leaf. The
// branch lengths Build assigns are the algorithm's own estimates and
// are expected to be replaced by a least-squares refit (see the fit
// package) once the tree has been given a working root (see
// recon.Root); only the topology Build produces is load-bearing.
func Build(dist [][]float64, labels []string) (*tree.Tree, error) {
	n := len(labels)
	if n < 2 {
		return nil, fmt.Errorf("nj: need at least 2 labels, got %d", n)
	}
	if len(dist) != n {
		return nil, fmt.Errorf("nj: distance matrix has %d rows, want %d", len(dist), n)
	}

	d := make(map[string]map[string]float64, n)
	active := make([]string, n)
	for i, li := range labels {
		if len(dist[i]) != n {
			return nil, fmt.Errorf("nj: distance matrix row %d has %d columns, want %d", i, len(dist[i]), n)
		}
		d[li] = make(map[string]float64, n)
		for j, lj := range labels {
			d[li][lj] = dist[i][j]
		}
		active[i] = li
	}

	adj := make(map[string][]adjEdge, 2*n)
	next := 0
	newName := func() string {
		next++
		return fmt.Sprintf("nj%d", next)
	}
	join := func(a, b string, da, db float64) string {
		u := newName()
		adj[u] = append(adj[u], adjEdge{a, da}, adjEdge{b, db})
		adj[a] = append(adj[a], adjEdge{u, da})
		adj[b] = append(adj[b], adjEdge{u, db})
		return u
	}

	for len(active) > 2 {
		m := len(active)
		r := make(map[string]float64, m)
		for _, i := range active {
			sum := 0.0
			for _, k := range active {
				if k != i {
					sum += d[i][k]
				}
			}
			r[i] = sum
		}

		best := math.Inf(1)
		var bi, bj string
		for ii := 0; ii < m; ii++ {
			for jj := ii + 1; jj < m; jj++ {
				i, j := active[ii], active[jj]
				q := float64(m-2)*d[i][j] - r[i] - r[j]
				if q < best {
					best = q
					bi, bj = i, j
				}
			}
		}

		di := 0.5*d[bi][bj] + (r[bi]-r[bj])/(2*float64(m-2))
		dj := d[bi][bj] - di
		u := join(bi, bj, di, dj)

		d[u] = make(map[string]float64, m-2)
		rest := make([]string, 0, m-2)
		for _, k := range active {
			if k == bi || k == bj {
				continue
			}
			nd := 0.5 * (d[bi][k] + d[bj][k] - d[bi][bj])
			d[u][k] = nd
			d[k][u] = nd
			rest = append(rest, k)
		}
		active = append(rest, u)
	}

	a, b := active[0], active[1]
	last := d[a][b]
	if n == 2 {
		// both endpoints are labels: join them under a fresh root
		return rootAt(adj, join(a, b, last/2, last/2)), nil
	}
	adj[a] = append(adj[a], adjEdge{b, last})
	adj[b] = append(adj[b], adjEdge{a, last})

	// rooting at a label would turn that leaf into an internal node
	root := a
	if len(adj[a]) == 1 {
		root = b
	}
	return rootAt(adj, root), nil
}

// rootAt turns the undirected adjacency graph adj into a tree.Tree by
// a depth-first walk from root.
func rootAt(adj map[string][]adjEdge, root string) *tree.Tree {
	t := tree.New(root)

	var walk func(name string, id int, from string)
	walk = func(name string, id int, from string) {
		for _, e := range adj[name] {
			if e.to == from {
				continue
			}
			cid := t.AddChild(id, e.to, e.dist)
			walk(e.to, cid, name)
		}
	}
	walk(root, t.Root(), "")
	return t
}
