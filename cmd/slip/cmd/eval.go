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
	"github.com/spf13/cobra"

	"github.com/chrsbats/slip/internal/value"
)

// newEvalCmd builds `slip eval <file.json>`: runs a Code document and
// prints its final value (spec §4.3: "evaluating a Code value yields
// the Code itself", but running its body yields the last expression's
// result), the same "one value out" contract `cue eval` exposes for a
// CUE file.
func newEvalCmd(c *Command) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "eval <program.json>",
		Short: "evaluate a SLIP program and print its result",
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
			cmd.Println(result.Pformat())
			return nil
		},
	}
	return cmd
}
