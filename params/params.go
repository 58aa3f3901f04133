// Copyright © 2024 The SINDIR Authors.
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package params reads and writes the species-branch rate parameter
// file (spec.md §6): a tab-separated file with one record per line,
// `key TAB v1 TAB v2`. The key "baserate" carries the (alpha, beta)
// shape of the base-rate gamma prior; every other key is kept as a
// string and names a species-tree node by its label, carrying its
// substitution-rate (mean, sdev). Keys are matched against node labels
// only: a numeric key matches an internal node labeled with that
// number, and an unlabeled internal node is matched by no key.
package params

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"time"

	"github.com/js-arias/sindir/baserate"
	"github.com/js-arias/sindir/tree"
)

// baserateKey is the reserved key naming the base-rate gamma prior
// rather than a species node.
const baserateKey = "baserate"

// A Gamma is the (alpha, beta) shape/rate pair of the base-rate prior.
type Gamma struct {
	Alpha, Beta float64
}

// A File is the parsed contents of a parameter file.
type File struct {
	Baserate    Gamma
	HasBaserate bool
	Species     baserate.Params
}

// Read parses a parameter file from r.
func Read(r io.Reader) (*File, error) {
	tsv := csv.NewReader(r)
	tsv.Comma = '\t'
	tsv.Comment = '#'
	tsv.FieldsPerRecord = 3

	f := &File{Species: make(baserate.Params)}
	for {
		row, err := tsv.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("params: %w", err)
		}

		key := row[0]
		v1, err := strconv.ParseFloat(row[1], 64)
		if err != nil {
			return nil, fmt.Errorf("params: key %q: value 1: %w", key, err)
		}
		v2, err := strconv.ParseFloat(row[2], 64)
		if err != nil {
			return nil, fmt.Errorf("params: key %q: value 2: %w", key, err)
		}

		if key == baserateKey {
			f.Baserate = Gamma{Alpha: v1, Beta: v2}
			f.HasBaserate = true
			continue
		}
		f.Species[key] = tree.Param{Mean: v1, Sdev: v2}
	}
	return f, nil
}

// ReadFile opens and parses the parameter file at name.
func ReadFile(name string) (*File, error) {
	fh, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer fh.Close()

	f, err := Read(fh)
	if err != nil {
		return nil, fmt.Errorf("on file %q: %w", name, err)
	}
	return f, nil
}

// Write writes f as a parameter file to w, in the same `key TAB v1
// TAB v2` shape Read expects, preceded by a timestamped comment
// header. Species keys are written in sorted order for a
// deterministic file.
func Write(w io.Writer, f *File) error {
	fmt.Fprintf(w, "# sindir parameter file\n")
	fmt.Fprintf(w, "# data saved on: %s\n", time.Now().Format(time.RFC3339))

	tsv := csv.NewWriter(w)
	tsv.Comma = '\t'
	tsv.UseCRLF = true

	if f.HasBaserate {
		row := []string{
			baserateKey,
			strconv.FormatFloat(f.Baserate.Alpha, 'g', -1, 64),
			strconv.FormatFloat(f.Baserate.Beta, 'g', -1, 64),
		}
		if err := tsv.Write(row); err != nil {
			return fmt.Errorf("params: writing baserate: %w", err)
		}
	}

	keys := make([]string, 0, len(f.Species))
	for k := range f.Species {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		p := f.Species[k]
		row := []string{
			k,
			strconv.FormatFloat(p.Mean, 'g', -1, 64),
			strconv.FormatFloat(p.Sdev, 'g', -1, 64),
		}
		if err := tsv.Write(row); err != nil {
			return fmt.Errorf("params: writing %q: %w", k, err)
		}
	}

	tsv.Flush()
	if err := tsv.Error(); err != nil {
		return fmt.Errorf("params: %w", err)
	}
	return nil
}

// WriteFile creates name and writes f to it.
func WriteFile(name string, f *File) (err error) {
	fh, err := os.Create(name)
	if err != nil {
		return err
	}
	defer func() {
		if e := fh.Close(); err == nil && e != nil {
			err = e
		}
	}()

	bw := bufio.NewWriter(fh)
	if err := Write(bw, f); err != nil {
		return fmt.Errorf("on file %q: %w", name, err)
	}
	return bw.Flush()
}
