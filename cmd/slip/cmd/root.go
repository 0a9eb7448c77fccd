// Copyright 2018 The CUE Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package cmd wires cmd/slip's subcommands against a fresh
// internal/eval.Engine, grounded on cmd/cue/cmd's cobra-based
// command-per-file structure (SPEC_FULL.md §A.4). The concrete SLIP
// grammar and parser are out of scope (spec §1), so every subcommand
// here reads the Transformer contract - a slip/ast.Code - from its
// documented JSON encoding (internal/astjson) rather than from SLIP
// source text.
package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/chrsbats/slip/internal/eval"
	"github.com/chrsbats/slip/internal/locator"
	slerr "github.com/chrsbats/slip/slip/errors"
)

// Command wraps a *cobra.Command the way cmd/cue's Command does,
// carrying the flags every subcommand needs to build its Engine.
type Command struct {
	*cobra.Command
	root *cobra.Command

	baseDir string
	homeDir string
}

// New builds the top-level `slip` command and registers its
// subcommands.
func New(args []string) *Command {
	root := &cobra.Command{
		Use:           "slip",
		Short:         "slip runs SLIP programs against the object-scope evaluator",
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	c := &Command{Command: root, root: root}
	root.PersistentFlags().StringVar(&c.baseDir, "base-dir", mustGetwd(), "base directory for file:// and fs:// locators")
	root.PersistentFlags().StringVar(&c.homeDir, "home-dir", "", "home directory for ~-relative locators (defaults to the OS home)")

	root.AddCommand(newRunCmd(c))
	root.AddCommand(newEvalCmd(c))
	root.AddCommand(newTestCmd(c))

	root.SetArgs(args)
	return c
}

// Main runs the slip tool and returns the process exit code.
func Main() int {
	c := New(os.Args[1:])
	if err := c.Execute(); err != nil {
		slerr.Print(os.Stderr, err, &slerr.Config{})
		return 1
	}
	return 0
}

func mustGetwd() string {
	wd, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(os.Stderr, "cannot get current directory: %v\n", err)
		os.Exit(1)
	}
	return wd
}

// newEngine builds an Engine with file://, fs://, and http(s) locators
// wired against the command's --base-dir/--home-dir flags (spec §6).
func (c *Command) newEngine(ctx context.Context) *eval.Engine {
	e := eval.NewEngine(ctx)
	fileAdapter := locator.NewFileAdapter(c.baseDir)
	fsAdapter := locator.NewFSAdapter(c.baseDir)
	httpAdapter := locator.NewHTTPAdapter(http.DefaultClient)
	if c.homeDir != "" {
		fileAdapter.HomeDir = c.homeDir
		fsAdapter.HomeDir = c.homeDir
	}
	e.Locators["file"] = fileAdapter
	e.Locators["fs"] = fsAdapter
	e.Locators["http"] = httpAdapter
	e.Locators["https"] = httpAdapter
	return e
}
