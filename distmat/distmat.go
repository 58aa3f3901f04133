// Copyright © 2024 The SINDIR Authors.
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package distmat reads and writes the pairwise gene-distance matrix
// (spec.md §6): a Phylip square distance matrix, whose row and column
// labels must appear in the same order as the accompanying labels
// file.
package distmat

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Read parses a Phylip square distance matrix from r: a first line
// giving the number of taxa, followed by one line per taxon holding
// its label and that many distance values.
func Read(r io.Reader) (dist [][]float64, names []string, err error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	if !sc.Scan() {
		return nil, nil, fmt.Errorf("distmat: empty file")
	}
	n, err := strconv.Atoi(strings.TrimSpace(sc.Text()))
	if err != nil {
		return nil, nil, fmt.Errorf("distmat: invalid taxa count %q: %w", sc.Text(), err)
	}
	if n < 2 {
		return nil, nil, fmt.Errorf("distmat: need at least 2 taxa, got %d", n)
	}

	dist = make([][]float64, n)
	names = make([]string, n)
	for i := 0; i < n; i++ {
		if !sc.Scan() {
			return nil, nil, fmt.Errorf("distmat: expecting %d rows, got %d", n, i)
		}
		fields := strings.Fields(sc.Text())
		if len(fields) != n+1 {
			return nil, nil, fmt.Errorf("distmat: row %d: expecting a label and %d values, got %d fields", i, n, len(fields))
		}
		names[i] = fields[0]

		row := make([]float64, n)
		for j, f := range fields[1:] {
			v, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return nil, nil, fmt.Errorf("distmat: row %d, column %d: %w", i, j, err)
			}
			row[j] = v
		}
		dist[i] = row
	}
	if err := sc.Err(); err != nil {
		return nil, nil, fmt.Errorf("distmat: %w", err)
	}
	return dist, names, nil
}

// ReadFile opens and parses the distance matrix file at name.
func ReadFile(name string) (dist [][]float64, names []string, err error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	dist, names, err = Read(f)
	if err != nil {
		return nil, nil, fmt.Errorf("on file %q: %w", name, err)
	}
	return dist, names, nil
}

// Write writes dist and names to w as a Phylip square distance
// matrix.
func Write(w io.Writer, dist [][]float64, names []string) error {
	if len(dist) != len(names) {
		return fmt.Errorf("distmat: %d rows, %d names", len(dist), len(names))
	}
	n := len(names)

	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%d\n", n)
	for i, name := range names {
		if len(dist[i]) != n {
			return fmt.Errorf("distmat: row %d has %d columns, want %d", i, len(dist[i]), n)
		}
		fmt.Fprintf(bw, "%-10s", name)
		for _, v := range dist[i] {
			fmt.Fprintf(bw, " %s", strconv.FormatFloat(v, 'g', -1, 64))
		}
		fmt.Fprintln(bw)
	}
	return bw.Flush()
}

// WriteFile creates name and writes dist and names to it.
func WriteFile(name string, dist [][]float64, names []string) (err error) {
	f, err := os.Create(name)
	if err != nil {
		return err
	}
	defer func() {
		if e := f.Close(); err == nil && e != nil {
			err = e
		}
	}()

	if err := Write(f, dist, names); err != nil {
		return fmt.Errorf("on file %q: %w", name, err)
	}
	return nil
}
