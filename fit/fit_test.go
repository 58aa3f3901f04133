// Copyright © 2024 The SINDIR Authors.
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package fit

import (
	"math"
	"strings"
	"testing"

	"github.com/js-arias/sindir/tree"
)

func buildStar(names ...string) *tree.Tree {
	t := tree.New("root")
	for _, n := range names {
		t.AddChild(t.Root(), n, 0)
	}
	return t
}

func square(n int) [][]float64 {
	m := make([][]float64, n)
	for i := range m {
		m[i] = make([]float64, n)
	}
	return m
}

func TestBranchesStarUniformDistances(t *testing.T) {
	names := []string{"A", "B", "C", "D"}
	tr := buildStar(names...)

	dist := square(4)
	for i := range dist {
		for j := range dist[i] {
			if i != j {
				dist[i][j] = 2
			}
		}
	}

	res, err := Branches(tr, dist, names)
	if err != nil {
		t.Fatalf("Branches: %v", err)
	}
	if res.Error > 1e-6 {
		t.Errorf("fit error = %v, want ~0", res.Error)
	}

	for _, name := range names {
		id, ok := tr.NodeByName(name)
		if !ok {
			t.Fatalf("leaf %q not found", name)
		}
		if got := tr.Dist(id); math.Abs(got-1) > 1e-6 {
			t.Errorf("dist(%s) = %v, want 1", name, got)
		}
	}
}

func TestBranchesNonNegative(t *testing.T) {
	names := []string{"A", "B", "C", "D"}
	tr := buildStar(names...)

	// A pathological distance matrix that, unconstrained, would
	// drive a least-squares fit negative on some edge.
	dist := [][]float64{
		{0, 0.01, 5, 5},
		{0.01, 0, 5, 5},
		{5, 5, 0, 0.01},
		{5, 5, 0.01, 0},
	}

	if _, err := Branches(tr, dist, names); err != nil {
		t.Fatalf("Branches: %v", err)
	}
	for _, id := range tr.Nodes() {
		if tr.IsRoot(id) {
			continue
		}
		if d := tr.Dist(id); d < 0 {
			t.Errorf("node %d has negative dist %v", id, d)
		}
	}
}

func TestBranchesBifurcatingRootIsRankDeficient(t *testing.T) {
	// A root with two children makes the two root-adjacent edges'
	// bipartition columns identical (each is the complement of the
	// other), so the system is structurally rank-deficient. This
	// must still solve, via the minimum-norm SVD path.
	tr, err := tree.Parse(strings.NewReader("((a:1,b:1):1,(c:1,d:1):1);"))
	if err != nil {
		t.Fatalf("tree.Parse: %v", err)
	}
	names := []string{"a", "b", "c", "d"}
	dist := [][]float64{
		{0, 2, 4, 5},
		{2, 0, 4, 5},
		{4, 4, 0, 5},
		{5, 5, 5, 0},
	}

	res, err := Branches(tr, dist, names)
	if err != nil {
		t.Fatalf("Branches: %v", err)
	}
	if math.IsNaN(res.Error) || math.IsInf(res.Error, 0) {
		t.Errorf("fit error = %v, want a finite value", res.Error)
	}
	for _, id := range tr.Nodes() {
		if tr.IsRoot(id) {
			continue
		}
		if d := tr.Dist(id); d < 0 || math.IsNaN(d) || math.IsInf(d, 0) {
			t.Errorf("node %d has invalid dist %v", id, d)
		}
	}
}

func TestBranchesRejectsMismatchedLeafSet(t *testing.T) {
	tr := buildStar("A", "B", "C")
	dist := square(3)
	if _, err := Branches(tr, dist, []string{"A", "B", "X"}); err == nil {
		t.Fatal("expected an error for a name absent from the tree")
	}
}
