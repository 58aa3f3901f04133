// Copyright © 2024 The SINDIR Authors.
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package search

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/js-arias/sindir/baserate"
	"github.com/js-arias/sindir/likelihood"
	"github.com/js-arias/sindir/tree"
)

func parseTree(t *testing.T, nwk string) *tree.Tree {
	t.Helper()
	tr, err := tree.Parse(strings.NewReader(nwk))
	if err != nil {
		t.Fatalf("tree.Parse(%q): %v", nwk, err)
	}
	return tr
}

func upperSpecies(geneName string) string {
	return strings.ToUpper(geneName)
}

func fourSpeciesScorer() (*Scorer, [][]float64, []string) {
	stree, _ := tree.Parse(strings.NewReader("(((A:1,B:1)X:1,C:1)Y:1,D:1);"))
	sc := &Scorer{
		Species:       stree,
		GeneToSpecies: upperSpecies,
		Params: baserate.Params{
			"A": {Mean: 2, Sdev: 1},
			"B": {Mean: 2, Sdev: 1},
			"C": {Mean: 2, Sdev: 1},
			"D": {Mean: 2, Sdev: 1},
			"X": {Mean: 2, Sdev: 1},
			"Y": {Mean: 2, Sdev: 1},
		},
		Likelihood: likelihood.Config{DupProb: 0.5, LossProb: 0.1, ErrorCost: -1},
	}

	labels := []string{"a", "b", "c", "d"}
	dist := [][]float64{
		{0, 2, 4, 5},
		{2, 0, 4, 5},
		{4, 4, 0, 5},
		{5, 5, 5, 0},
	}
	return sc, dist, labels
}

func TestEdgesExcludesLeavesAndRootAdjacent(t *testing.T) {
	tr := parseTree(t, "(((a:1,b:1):1,c:1):1,d:1);")
	edges := Edges(tr)
	for _, e := range edges {
		if tr.IsLeaf(e.Child) {
			t.Errorf("edge child %d is a leaf", e.Child)
		}
		if tr.IsRoot(e.Child) {
			t.Errorf("edge child %d is the root", e.Child)
		}
		if tr.IsRoot(e.Parent) {
			t.Errorf("edge parent %d is the root, should be excluded", e.Parent)
		}
	}
	if len(edges) == 0 {
		t.Fatal("expected at least one NNI-eligible edge")
	}
}

func TestNNIIsSelfInverse(t *testing.T) {
	tr := parseTree(t, "(((a:1,b:1):1,c:1):1,d:1);")
	before := tr.Newick()

	edges := Edges(tr)
	if len(edges) == 0 {
		t.Fatal("no NNI-eligible edges found")
	}
	e := edges[0]

	a, b := NNI(tr, e, 0)
	if tr.Newick() == before {
		t.Error("NNI did not change the topology")
	}
	tr.SwapChildren(a, b)
	if tr.Newick() != before {
		t.Errorf("NNI applied twice did not restore the original topology: got %q, want %q", tr.Newick(), before)
	}
}

func TestVisitedCachesByHash(t *testing.T) {
	v := NewVisited()
	tr1 := parseTree(t, "(a:1,b:1);")
	v.Add(tr1, -5)
	if v.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", v.Len())
	}

	tr2 := parseTree(t, "(b:1,a:1);") // same topology, different order
	if tr1.Hash() != tr2.Hash() {
		t.Fatal("expected matching hashes for sibling-order variants")
	}
	logl, _, ok := v.Lookup(tr2.Hash())
	if !ok || logl != -5 {
		t.Errorf("Lookup = (%v, %v), want (-5, true)", logl, ok)
	}

	tr3 := parseTree(t, "((a:1,b:1):1,c:1);")
	v.Add(tr3, -2)
	best, logl := v.Best()
	if logl != -2 || best.Hash() != tr3.Hash() {
		t.Errorf("Best() = (%v, %v), want the higher-scoring tr3 entry", best.Hash(), logl)
	}
}

func TestExhaustiveNeverLosesToInitialTree(t *testing.T) {
	sc, dist, labels := fourSpeciesScorer()
	tr := parseTree(t, "((a:1,b:1):1,(c:1,d:1):1);")

	v := NewVisited()
	initLogl, err := sc.Score(tr.Copy(), dist, labels)
	if err != nil {
		t.Fatalf("Score: %v", err)
	}

	best, logl, err := Exhaustive(sc, Config{Depth: 2}, dist, labels, tr, v)
	if err != nil {
		t.Fatalf("Exhaustive: %v", err)
	}
	if best == nil {
		t.Fatal("Exhaustive returned a nil tree")
	}
	if logl < initLogl {
		t.Errorf("Exhaustive best logl %v is worse than the initial tree's %v", logl, initLogl)
	}
}

func TestGreedyBuildsFullLeafSet(t *testing.T) {
	sc, dist, labels := fourSpeciesScorer()
	v := NewVisited()

	best, _, err := Greedy(sc, Config{Depth: 1}, dist, labels, v)
	if err != nil {
		t.Fatalf("Greedy: %v", err)
	}
	if got, want := len(best.Leaves()), len(labels); got != want {
		t.Errorf("Greedy tree has %d leaves, want %d", got, want)
	}
	seen := make(map[string]bool)
	for _, id := range best.Leaves() {
		seen[best.NodeName(id)] = true
	}
	for _, l := range labels {
		if !seen[l] {
			t.Errorf("Greedy tree is missing leaf %q", l)
		}
	}
}

func TestMCMCIsDeterministicForAFixedSeed(t *testing.T) {
	sc, dist, labels := fourSpeciesScorer()

	run := func() (string, float64) {
		tr := parseTree(t, "((a:1,b:1):1,(c:1,d:1):1);")
		v := NewVisited()
		cfg := Config{RerootProb: 0.2, Speedup: -1, NChains: 2, MaxIters: 20, Iters: 1000}
		rng := rand.New(rand.NewSource(42))
		best, logl, err := MCMC(sc, cfg, dist, labels, tr, v, rng)
		if err != nil {
			t.Fatalf("MCMC: %v", err)
		}
		return best.Hash(), logl
	}

	h1, l1 := run()
	h2, l2 := run()
	if h1 != h2 || l1 != l2 {
		t.Errorf("MCMC with a fixed seed is not deterministic: (%v,%v) != (%v,%v)", h1, l1, h2, l2)
	}
}
