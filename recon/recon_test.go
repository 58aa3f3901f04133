// Copyright © 2024 The SINDIR Authors.
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package recon

import (
	"strings"
	"testing"

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

func identity(name string) string { return name }

func TestReconcileMatchingTopologyIsAllSpeciation(t *testing.T) {
	species := parseTree(t, "(A:1,B:1);")
	gene := parseTree(t, "(A:1,B:1);")

	r, err := Reconcile(gene, species, identity)
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}

	for id, ev := range r.Events {
		if gene.IsLeaf(id) {
			if ev != Leaf {
				t.Errorf("node %d: event = %v, want Leaf", id, ev)
			}
			continue
		}
		if ev != Spec {
			t.Errorf("node %d: event = %v, want Spec", id, ev)
		}
	}

	if got := CountDup(r); got != 0 {
		t.Errorf("CountDup = %d, want 0", got)
	}
	if got := FindLoss(r); got != 0 {
		t.Errorf("FindLoss = %d, want 0", got)
	}
}

func geneToSpecies(name string) string {
	// leaves are named a1, a2, b1, ... ; species is the first letter
	// upper-cased, matching spec.md's "leaves by first-letter→species"
	// convention.
	return strings.ToUpper(name[:1])
}

func TestReconcileDetectsDuplication(t *testing.T) {
	species := parseTree(t, "(A:1,B:1);")
	gene := parseTree(t, "((a1:1,a2:1):1,b:1);")

	r, err := Reconcile(gene, species, geneToSpecies)
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}

	root := gene.Root()
	children := gene.Children(root)
	var dupID int
	for _, c := range children {
		if !gene.IsLeaf(c) {
			dupID = c
		}
	}
	if r.Events[dupID] != Dup {
		t.Errorf("inner node event = %v, want Dup", r.Events[dupID])
	}
	if got := CountDup(r); got != 1 {
		t.Errorf("CountDup = %d, want 1", got)
	}
	if got := FindLoss(r); got != 0 {
		t.Errorf("FindLoss = %d, want 0 (no species branch is skipped)", got)
	}
}

func TestFindLossCountsMissingSpeciesDescendant(t *testing.T) {
	// species tree (A,(B,C)); gene tree only samples A and C: the
	// gene lineage on the B/C branch must have lost its B copy.
	species := parseTree(t, "(A:1,(B:1,C:1):1);")
	gene := parseTree(t, "(a:1,c:1);")

	toSpecies := func(name string) string { return strings.ToUpper(name) }
	r, err := Reconcile(gene, species, toSpecies)
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if got := FindLoss(r); got != 1 {
		t.Errorf("FindLoss = %d, want 1", got)
	}
}

func TestRootMinimizesDuplicationLossCost(t *testing.T) {
	species := parseTree(t, "(A:1,B:1);")
	// An unrooted unresolved trifurcation; whichever edge we start
	// on, Root must find the rooting that needs no duplications.
	gene := parseTree(t, "(a1:1,a2:1,b:1);")

	rooted, r, err := Root(gene, species, geneToSpecies)
	if err != nil {
		t.Fatalf("Root: %v", err)
	}
	if got := CountDup(r) + FindLoss(r); got != 0 {
		t.Errorf("best rooting cost = %d, want 0", got)
	}
	if len(rooted.Leaves()) != 3 {
		t.Errorf("rooted tree has %d leaves, want 3", len(rooted.Leaves()))
	}
}
