// Copyright © 2024 The SINDIR Authors.
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package distmat

import (
	"bytes"
	"strings"
	"testing"
)

func TestReadWriteRoundTrip(t *testing.T) {
	src := "3\na 0 1 2\nb 1 0 3\nc 2 3 0\n"
	dist, names, err := Read(strings.NewReader(src))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	wantNames := []string{"a", "b", "c"}
	for i, n := range wantNames {
		if names[i] != n {
			t.Errorf("names[%d] = %q, want %q", i, names[i], n)
		}
	}
	if dist[0][2] != 2 || dist[1][2] != 3 {
		t.Errorf("unexpected distances: %v", dist)
	}

	var buf bytes.Buffer
	if err := Write(&buf, dist, names); err != nil {
		t.Fatalf("Write: %v", err)
	}
	dist2, names2, err := Read(&buf)
	if err != nil {
		t.Fatalf("Read after Write: %v", err)
	}
	for i := range names {
		if names2[i] != names[i] {
			t.Errorf("round trip names[%d] = %q, want %q", i, names2[i], names[i])
		}
		for j := range dist[i] {
			if dist2[i][j] != dist[i][j] {
				t.Errorf("round trip dist[%d][%d] = %v, want %v", i, j, dist2[i][j], dist[i][j])
			}
		}
	}
}

func TestReadRejectsRowColumnMismatch(t *testing.T) {
	_, _, err := Read(strings.NewReader("2\na 0 1\nb 1 0 5\n"))
	if err == nil {
		t.Fatal("expected an error for a row with the wrong number of fields")
	}
}
