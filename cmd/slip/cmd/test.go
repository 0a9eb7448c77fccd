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

package cmd

import (
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/chrsbats/slip/internal/value"
	slerr "github.com/chrsbats/slip/slip/errors"
	"github.com/chrsbats/slip/slip/token"
)

// newTestCmd builds `slip test <file.json>`: runs a program whose
// top-level result is expected to be a `test-all` summary Scope
// (`internal/eval`'s registerMetaprogramming: {passed, failed, total,
// results}) and prints a `cue vet`-style localized pass/fail count,
// grounded on cmd/cue/cmd/vet.go's message.NewPrinter use.
func newTestCmd(c *Command) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "test <program.json>",
		Short: "run a SLIP test-all summary and report pass/fail counts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code, err := loadProgram(args[0])
			if err != nil {
				return err
			}
			e := c.newEngine(cmd.Context())
			ev := e.NewEvaluator(cmd.Context())
			scope := value.NewScope()
			if err := scope.Inherit(e.Root); err != nil {
				return err
			}
			result, err := ev.RunCode(scope, code)
			if err != nil {
				return err
			}
			summary, ok := result.(*value.Scope)
			if !ok {
				return slerr.TypeErrorf(token.NoPos, "slip test: program result is not a test-all summary scope")
			}
			return reportSummary(cmd, summary)
		},
	}
	return cmd
}

func reportSummary(cmd *cobra.Command, summary *value.Scope) error {
	p := message.NewPrinter(getLang())

	passed, _ := summary.OwnGet("passed")
	failed, _ := summary.OwnGet("failed")
	total, _ := summary.OwnGet("total")
	resultsV, _ := summary.OwnGet("results")

	if results, ok := resultsV.(*value.List); ok {
		for _, r := range results.Elems {
			rs, ok := r.(*value.Scope)
			if !ok {
				continue
			}
			name, _ := rs.OwnGet("name")
			status, _ := rs.OwnGet("status")
			p.Fprintf(cmd.OutOrStdout(), "%s: %s\n", pformatOf(name), pformatOf(status))
		}
	}

	p.Fprintf(cmd.OutOrStdout(), "%d passed, %d failed, %d total\n",
		intOf(passed), intOf(failed), intOf(total))

	if intOf(failed) > 0 {
		return slerr.RuntimeErrorf(token.NoPos, "%d test(s) failed", intOf(failed))
	}
	return nil
}

func pformatOf(v value.Value) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(value.String); ok {
		return string(s)
	}
	return v.Pformat()
}

func intOf(v value.Value) int64 {
	i, ok := v.(value.Int)
	if !ok {
		return 0
	}
	n, _ := i.Int64()
	return n
}

func getLang() language.Tag {
	loc := os.Getenv("LC_ALL")
	if loc == "" {
		loc = os.Getenv("LANG")
	}
	loc = strings.Split(loc, ".")[0]
	return language.Make(loc)
}
