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

	"github.com/spf13/cobra"

	"github.com/chrsbats/slip/internal/astjson"
	"github.com/chrsbats/slip/internal/value"
)

// newRunCmd builds `slip run <file.json>`: loads a Code document and
// runs it against the Engine's root scope, discarding its result value
// but draining and printing any effects (spec §6's `emit` effects,
// the host-facing surface a runner cares about).
func newRunCmd(c *Command) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <program.json>",
		Short: "run a SLIP program (Transformer-contract JSON) against a fresh scope",
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
			if _, err := ev.RunCode(scope, code); err != nil {
				return err
			}
			for _, eff := range e.DrainEffects() {
				cmd.Println(eff.Pformat())
			}
			return nil
		},
	}
	return cmd
}

func loadProgram(path string) (*value.Code, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	body, err := astjson.Decode(data)
	if err != nil {
		return nil, err
	}
	return &value.Code{Body: body}, nil
}
