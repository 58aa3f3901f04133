// Copyright © 2024 The SINDIR Authors.
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package nj

import "testing"

func TestBuildRecoversAllLabels(t *testing.T) {
	labels := []string{"a", "b", "c", "d", "e"}
	dist := [][]float64{
		{0, 5, 9, 9, 8},
		{5, 0, 10, 10, 9},
		{9, 10, 0, 8, 7},
		{9, 10, 8, 0, 3},
		{8, 9, 7, 3, 0},
	}

	tr, err := Build(dist, labels)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	leaves := tr.Leaves()
	if len(leaves) != len(labels) {
		t.Fatalf("Build produced %d leaves, want %d", len(leaves), len(labels))
	}
	seen := make(map[string]bool, len(leaves))
	for _, id := range leaves {
		seen[tr.NodeName(id)] = true
	}
	for _, l := range labels {
		if !seen[l] {
			t.Errorf("Build tree is missing leaf %q", l)
		}
	}
}

func TestBuildTwoLabels(t *testing.T) {
	tr, err := Build([][]float64{{0, 4}, {4, 0}}, []string{"x", "y"})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(tr.Leaves()) != 2 {
		t.Fatalf("Build produced %d leaves, want 2", len(tr.Leaves()))
	}
}

func TestBuildRejectsMismatchedMatrix(t *testing.T) {
	_, err := Build([][]float64{{0, 1}}, []string{"x", "y"})
	if err == nil {
		t.Fatal("expected an error for a distance matrix shorter than labels")
	}
}
