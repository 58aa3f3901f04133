// Copyright © 2024 The SINDIR Authors.
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package labels reads the gene-label list that gives a distance
// matrix's row and column order a name (spec.md §6): either a plain
// text file with one label per line, or a FASTA file whose record IDs
// are taken as the labels, selected by the file extension in
// {.fasta, .fa, .align}.
package labels

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// fastaExts is the set of extensions that select FASTA parsing over
// plain text.
var fastaExts = map[string]bool{
	".fasta": true,
	".fa":    true,
	".align": true,
}

// Read parses a label list from r as plain text: one label per line,
// blank lines skipped.
func Read(r io.Reader) ([]string, error) {
	var names []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		names = append(names, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("labels: %w", err)
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("labels: no labels found")
	}
	return names, nil
}

// ReadFasta parses a label list from r as FASTA: the labels are the
// record IDs, the token following '>' up to the first whitespace.
func ReadFasta(r io.Reader) ([]string, error) {
	var names []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if !strings.HasPrefix(line, ">") {
			continue
		}
		id := strings.TrimPrefix(line, ">")
		if fields := strings.Fields(id); len(fields) > 0 {
			id = fields[0]
		}
		if id == "" {
			return nil, fmt.Errorf("labels: FASTA record with an empty ID")
		}
		names = append(names, id)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("labels: %w", err)
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("labels: no FASTA records found")
	}
	return names, nil
}

// ReadFile reads the label file at name, selecting plain-text or
// FASTA parsing by its extension.
func ReadFile(name string) ([]string, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var names []string
	if fastaExts[strings.ToLower(filepath.Ext(name))] {
		names, err = ReadFasta(f)
	} else {
		names, err = Read(f)
	}
	if err != nil {
		return nil, fmt.Errorf("on file %q: %w", name, err)
	}
	return names, nil
}

// ReadGeneMap parses a gene-to-species map from r: a plain-text file
// with one `gene TAB species` record per line, blank lines skipped.
// This is the external collaborator spec.md §1 leaves unspecified
// (the gene→species mapping); a two-column TSV keeps it consistent
// with the rest of the module's tab-delimited file formats.
func ReadGeneMap(r io.Reader) (map[string]string, error) {
	m := make(map[string]string)
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) != 2 {
			return nil, fmt.Errorf("labels: malformed gene map record %q", line)
		}
		m[fields[0]] = fields[1]
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("labels: %w", err)
	}
	if len(m) == 0 {
		return nil, fmt.Errorf("labels: no gene map records found")
	}
	return m, nil
}

// ReadGeneMapFile reads the gene-to-species map file at name.
func ReadGeneMapFile(name string) (map[string]string, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	m, err := ReadGeneMap(f)
	if err != nil {
		return nil, fmt.Errorf("on file %q: %w", name, err)
	}
	return m, nil
}
