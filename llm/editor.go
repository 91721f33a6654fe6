/**
 * Copyright 2026 Dagpilot Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     https://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package llm

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/dagpilot/dagpilot/ide"
	"github.com/dagpilot/dagpilot/llm/prompt"
	"github.com/dagpilot/dagpilot/log"
)

// Editor rewrites files from natural-language instructions. When a range is
// given, only the covered lines are sent to the model and only they are
// replaced; the rest of the file is never touched.
type Editor struct {
	gen Generator
}

// NewEditor builds an editor over a chat model.
func NewEditor(model ChatModel, opts CallerOptions) *Editor {
	if opts.SysPrompt == nil {
		opts.SysPrompt = prompt.NewTextPrompt(prompt.PromptEditorSystem)
	}
	return &Editor{gen: NewCaller(model, opts)}
}

// NewEditorWithGenerator wires a prebuilt Generator, mainly for tests.
func NewEditorWithGenerator(gen Generator) *Editor {
	return &Editor{gen: gen}
}

type editRequestData struct {
	Instruction string
	Filepath    string
	Constrained bool
	FirstLine   int // 1-based, for the model
	LastLine    int
	Language    string
	Excerpt     string
}

// EditFile applies instruction to path. rng, when non-nil, constrains the
// edit to its line span (0-based, like ide ranges).
func (e *Editor) EditFile(ctx context.Context, path, instruction string, rng *ide.Range) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "edit %s", path)
	}
	lines := strings.Split(string(data), "\n")

	first, last := 0, len(lines)-1
	constrained := rng != nil
	if constrained {
		first, last = rng.LineSpan()
		if first < 0 || first >= len(lines) {
			return errors.Errorf("edit %s: range %s out of bounds (%d lines)", path, rng, len(lines))
		}
		if last >= len(lines) {
			last = len(lines) - 1
		}
	}
	excerpt := strings.Join(lines[first:last+1], "\n")

	req, err := prompt.NewTemplatePrompt("edit-request", prompt.PromptEditRequest, editRequestData{
		Instruction: instruction,
		Filepath:    path,
		Constrained: constrained,
		FirstLine:   first + 1,
		LastLine:    last + 1,
		Language:    languageOf(path),
		Excerpt:     excerpt,
	})
	if err != nil {
		return errors.Wrap(err, "edit request template")
	}

	reply, err := e.gen.Call(ctx, req.String())
	if err != nil {
		return errors.Wrapf(err, "edit %s", path)
	}

	edited, ok := extractCodeBlock(reply)
	if !ok {
		return errors.Errorf("edit %s: model reply contains no code block", path)
	}

	merged := append(append(append([]string{}, lines[:first]...),
		strings.Split(edited, "\n")...), lines[last+1:]...)
	if err := os.WriteFile(path, []byte(strings.Join(merged, "\n")), 0644); err != nil {
		return errors.Wrapf(err, "edit %s", path)
	}
	log.Info("edited %s (lines %d-%d)", path, first+1, last+1)
	return nil
}

// extractCodeBlock returns the contents of the first fenced code block.
func extractCodeBlock(reply string) (string, bool) {
	lines := strings.Split(reply, "\n")
	start := -1
	for i, l := range lines {
		if strings.HasPrefix(strings.TrimSpace(l), "```") {
			start = i
			break
		}
	}
	if start < 0 {
		return "", false
	}
	for j := start + 1; j < len(lines); j++ {
		if strings.TrimSpace(lines[j]) == "```" {
			return strings.Join(lines[start+1:j], "\n"), true
		}
	}
	return "", false
}

func languageOf(path string) string {
	switch filepath.Ext(path) {
	case ".py":
		return "python"
	case ".go":
		return "go"
	case ".yaml", ".yml":
		return "yaml"
	case ".json":
		return "json"
	case ".toml":
		return "toml"
	default:
		return ""
	}
}
