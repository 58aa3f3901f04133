// Copyright © 2024 The SINDIR Authors.
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package run implements the command that reconstructs a gene tree:
// it reads the distance matrix, labels, species tree, gene-to-species
// map and rate-parameter file, runs the configured search phases, and
// writes the best tree and a debug log.
package run

import (
	"bufio"
	"fmt"
	"math/rand"
	"os"
	"strings"
	"time"

	"github.com/js-arias/command"
	"github.com/js-arias/sindir"
	"github.com/js-arias/sindir/distmat"
	"github.com/js-arias/sindir/labels"
	"github.com/js-arias/sindir/likelihood"
	"github.com/js-arias/sindir/params"
	"github.com/js-arias/sindir/search"
	"github.com/js-arias/sindir/tree"
)

var Command = &command.Command{
	Usage: `run [--search <phases>] [--depth <number>]
	[--rerootprob <value>] [--speedup <value>]
	[--nchains <number>] [--maxiters <number>] [--iters <number>]
	[--dupprob <value>] [--lossprob <value>] [--errorcost <value>]
	[--tree <file>] [--seed <number>] [-o|--output <file>]
	--species <file> --gmap <file> --params <file>
	--labels <file> --dist <file>`,
	Short: "reconstruct a maximum-likelihood gene tree",
	Long: `
Command run reads a pairwise distance matrix, a label file giving the matrix
row/column order a name, a species tree, a gene-to-species map, and a
rate-parameter file, then searches for the maximum-likelihood gene tree
topology under a reconciliation-aware branch-rate model.

The flag --search sets the ordered, comma-separated sequence of search
phases to run, each one of "greedy", "exhaustive", "mcmc" or "none" (which
stops the search early). By default it runs "greedy,exhaustive".

The flag --tree adds one or more additional candidate trees (one Newick
string per line) that are fit, scored and considered alongside anything
found by the search phases.

Results are written to <output>.tree (the best tree, in Newick) and
<output>.debug (a log of the search progress). If --output is undefined,
"sindir" is used as the prefix.
	`,
	SetFlags: setFlags,
	Run:      run,
}

var speciesFile string
var gmapFile string
var paramsFile string
var labelsFile string
var distFile string
var treeFile string
var searchFlag string
var depth int
var rerootProb float64
var speedup float64
var nchains int
var maxiters int
var iters int
var dupProb float64
var lossProb float64
var errorCost float64
var seed int64
var output string

func setFlags(c *command.Command) {
	c.Flags().StringVar(&speciesFile, "species", "", "")
	c.Flags().StringVar(&gmapFile, "gmap", "", "")
	c.Flags().StringVar(&paramsFile, "params", "", "")
	c.Flags().StringVar(&labelsFile, "labels", "", "")
	c.Flags().StringVar(&distFile, "dist", "", "")
	c.Flags().StringVar(&treeFile, "tree", "", "")
	c.Flags().StringVar(&searchFlag, "search", "greedy,exhaustive", "")
	c.Flags().IntVar(&depth, "depth", 2, "")
	c.Flags().Float64Var(&rerootProb, "rerootprob", 0.2, "")
	c.Flags().Float64Var(&speedup, "speedup", -1, "")
	c.Flags().IntVar(&nchains, "nchains", 1, "")
	c.Flags().IntVar(&maxiters, "maxiters", 1000, "")
	c.Flags().IntVar(&iters, "iters", 1000, "")
	c.Flags().Float64Var(&dupProb, "dupprob", 0.5, "")
	c.Flags().Float64Var(&lossProb, "lossprob", 0.5, "")
	c.Flags().Float64Var(&errorCost, "errorcost", -1, "")
	c.Flags().Int64Var(&seed, "seed", 0, "")
	c.Flags().StringVar(&output, "output", "sindir", "")
	c.Flags().StringVar(&output, "o", "sindir", "")
}

func run(c *command.Command, args []string) (err error) {
	if speciesFile == "" {
		return c.UsageError("flag --species is required")
	}
	if gmapFile == "" {
		return c.UsageError("flag --gmap is required")
	}
	if paramsFile == "" {
		return c.UsageError("flag --params is required")
	}
	if labelsFile == "" {
		return c.UsageError("flag --labels is required")
	}
	if distFile == "" {
		return c.UsageError("flag --dist is required")
	}

	species, err := readSpeciesTree(speciesFile)
	if err != nil {
		return err
	}
	gmap, err := labels.ReadGeneMapFile(gmapFile)
	if err != nil {
		return err
	}
	pf, err := params.ReadFile(paramsFile)
	if err != nil {
		return err
	}
	names, err := labels.ReadFile(labelsFile)
	if err != nil {
		return err
	}
	dist, distNames, err := distmat.ReadFile(distFile)
	if err != nil {
		return err
	}
	if err := checkLabels(names, distNames); err != nil {
		return err
	}

	var candidates []*tree.Tree
	if treeFile != "" {
		candidates, err = readCandidateTrees(treeFile)
		if err != nil {
			return err
		}
	}

	cfg := sindir.Config{
		Search: parseSearch(searchFlag),
		Drivers: search.Config{
			Depth:      depth,
			RerootProb: rerootProb,
			Speedup:    speedup,
			NChains:    nchains,
			MaxIters:   maxiters,
			Iters:      iters,
		},
		Likelihood: likelihood.Config{
			DupProb:   dupProb,
			LossProb:  lossProb,
			ErrorCost: errorCost,
		},
	}

	g2s := func(gene string) string { return gmap[gene] }

	debugName := output + ".debug"
	df, err := os.Create(debugName)
	if err != nil {
		return err
	}
	defer func() {
		e := df.Close()
		if err == nil && e != nil {
			err = e
		}
	}()
	debug := bufio.NewWriter(df)

	rng := rand.New(rand.NewSource(rngSeed()))
	res, err := sindir.Run(cfg, dist, names, species, g2s, pf.Species, candidates, rng, debug)
	if err != nil {
		return err
	}
	if err := debug.Flush(); err != nil {
		return err
	}

	return writeTree(output+".tree", res)
}

func rngSeed() int64 {
	if seed != 0 {
		return seed
	}
	return time.Now().UnixNano()
}

func parseSearch(s string) []string {
	var phases []string
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			phases = append(phases, p)
		}
	}
	return phases
}

func checkLabels(names, distNames []string) error {
	if len(names) != len(distNames) {
		return fmt.Errorf("labels file has %d labels, distance matrix has %d", len(names), len(distNames))
	}
	for i, n := range names {
		if n != distNames[i] {
			return fmt.Errorf("labels file and distance matrix disagree at position %d: %q != %q", i, n, distNames[i])
		}
	}
	return nil
}

func readSpeciesTree(name string) (*tree.Tree, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	t, err := tree.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("on file %q: %w", name, err)
	}
	return t, nil
}

func readCandidateTrees(name string) ([]*tree.Tree, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var trees []*tree.Tree
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		t, err := tree.Parse(strings.NewReader(line))
		if err != nil {
			return nil, fmt.Errorf("on file %q: %w", name, err)
		}
		trees = append(trees, t)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("on file %q: %w", name, err)
	}
	return trees, nil
}

func writeTree(name string, res sindir.Result) (err error) {
	f, err := os.Create(name)
	if err != nil {
		return err
	}
	defer func() {
		e := f.Close()
		if err == nil && e != nil {
			err = e
		}
	}()

	fmt.Fprintf(f, "# sindir reconstruction, logLikelihood: %.6f\n", res.Logl)
	fmt.Fprintf(f, "# data saved on %s\n", time.Now().Format(time.RFC3339))
	_, err = fmt.Fprintln(f, res.Tree.Newick())
	return err
}
