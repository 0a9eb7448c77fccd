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

package errors

import "github.com/chrsbats/slip/slip/token"

// Portable is a JSON-serializable rendering of an Error, used when an
// error crosses the host boundary: the top-level driver's `stderr`
// effect and the `outcome` binding (spec §7) both carry the formatted
// message, but a host embedding SLIP may want structured access too.
type Portable struct {
	Kind           Kind                     `json:"kind"`
	Position       token.PortablePosition   `json:"position"`
	InputPositions []token.PortablePosition `json:"input_positions"`
	Error          string                   `json:"error"`
	Path           []string                 `json:"path"`
	Msg            string                   `json:"msg"`
}

// ToPortable converts any Error into its serializable form.
func ToPortable(err Error) Portable {
	var kind Kind
	if se, ok := err.(*SlipError); ok {
		kind = se.Kind
	}
	inputs := Positions(err)
	ips := make([]token.PortablePosition, 0, len(inputs))
	for _, p := range inputs {
		ips = append(ips, p.ToPortable())
	}
	return Portable{
		Kind:           kind,
		Position:       err.Position().ToPortable(),
		InputPositions: ips,
		Error:          err.Error(),
		Path:           err.Path(),
		Msg:            String(err),
	}
}
