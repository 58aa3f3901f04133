// Copyright © 2024 The SINDIR Authors.
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Sindir reconstructs a maximum-likelihood gene tree from a distance
// matrix, a species tree, a gene-to-species map and a pre-trained
// branch-rate model.
package main

import (
	"github.com/js-arias/command"
	"github.com/js-arias/sindir/cmd/sindir/run"
)

var app = &command.Command{
	Usage: "sindir <command> [<argument>...]",
	Short: "reconstruct a gene tree under a reconciliation-aware rate model",
}

func init() {
	app.Add(run.Command)
}

func main() {
	app.Main()
}
