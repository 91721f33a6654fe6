// Copyright 2026 Dagpilot Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package ide

import "fmt"

// Position is a 0-based line/character location in a file.
type Position struct {
	Line      int `json:"line"`
	Character int `json:"character"`
}

// Range is a half-open [Start, End) span of text.
type Range struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// RangeInFile pairs a range with the file it belongs to.
type RangeInFile struct {
	Filepath string `json:"filepath"`
	Range    Range  `json:"range"`
}

// NewRange builds a range from start line/char and end line/char shorthand.
func NewRange(startLine, startChar, endLine, endChar int) Range {
	return Range{
		Start: Position{Line: startLine, Character: startChar},
		End:   Position{Line: endLine, Character: endChar},
	}
}

func (r Range) String() string {
	return fmt.Sprintf("%d:%d-%d:%d", r.Start.Line, r.Start.Character, r.End.Line, r.End.Character)
}

// LineSpan returns the inclusive [first, last] 0-based lines the range
// covers. A range ending at character 0 stops before its end line.
func (r Range) LineSpan() (first, last int) {
	first = r.Start.Line
	last = r.End.Line
	if r.End.Character == 0 && last > first {
		last--
	}
	return first, last
}
