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

package token

// PortablePosition is a JSON-serializable Pos, used when an error crosses
// the host boundary (spec §6's side-effect channel, §7's stderr effect).
type PortablePosition struct {
	Filepath string `json:"filepath"`
	Offset   int    `json:"offset"`
}

// ToPortable converts p to a serializable form.
func (p Pos) ToPortable() PortablePosition {
	if p == NoPos {
		return PortablePosition{}
	}
	return PortablePosition{Filepath: p.file.name, Offset: p.offset}
}

// FromPortable reconstructs a Pos from its serializable form. The
// resulting Pos carries only a filename and offset; it has no line table
// and so cannot report Line/Column without re-reading the source.
func FromPortable(p PortablePosition) Pos {
	if p.Filepath == "" && p.Offset == 0 {
		return NoPos
	}
	return Pos{file: NewFile(p.Filepath, p.Offset+1), offset: p.Offset}
}
