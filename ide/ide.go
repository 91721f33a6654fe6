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

// Package ide abstracts the operator-facing surface of a recipe run: the
// workspace location, code highlighting, free-text input, and messages.
// Two implementations exist: a plain terminal and a JSON-RPC remote for an
// attached editor.
package ide

import "context"

// HighlightColor is the default background for highlighted DAG ranges.
const HighlightColor = "#33993333"

// IDE is the operator surface a recipe talks to.
type IDE interface {
	// WorkspaceDirectory returns the project root path.
	WorkspaceDirectory(ctx context.Context) (string, error)

	// HighlightCode draws attention to a range in a file. color is a
	// #RRGGBBAA string; implementations may approximate it.
	HighlightCode(ctx context.Context, rif RangeInFile, color string) error

	// WaitForUserInput blocks until the operator supplies free text.
	WaitForUserInput(ctx context.Context, prompt string) (string, error)

	// ShowMessage displays a named informational message.
	ShowMessage(ctx context.Context, name, message string) error
}
