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
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dagpilot/dagpilot/ide"
)

// mockGenerator replies with a canned fenced block and records the input.
type mockGenerator struct {
	reply string
	input string
	err   error
}

func (m *mockGenerator) Call(ctx context.Context, input string) (string, error) {
	m.input = input
	if m.err != nil {
		return "", m.err
	}
	return m.reply, nil
}

func writeDAGFixture(t *testing.T) string {
	t.Helper()
	var sb strings.Builder
	for i := 0; i < 30; i++ {
		fmt.Fprintf(&sb, "line %d\n", i)
	}
	path := filepath.Join(t.TempDir(), "dag_chess_pipeline.py")
	if err := os.WriteFile(path, []byte(sb.String()), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestEditor_EditFile_ConstrainedRange(t *testing.T) {
	path := writeDAGFixture(t)
	gen := &mockGenerator{reply: "```python\nEDITED A\nEDITED B\n```"}
	editor := NewEditorWithGenerator(gen)

	rng := ide.NewRange(18, 0, 23, 0)
	if err := editor.EditFile(context.Background(), path, "change the schedule", &rng); err != nil {
		t.Fatalf("EditFile: %v", err)
	}

	// The model only sees the excerpt, not the whole file.
	if strings.Contains(gen.input, "line 0") || strings.Contains(gen.input, "line 29") {
		t.Error("prompt leaked lines outside the range")
	}
	if !strings.Contains(gen.input, "line 18") || !strings.Contains(gen.input, "line 22") {
		t.Error("prompt missing excerpt lines")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	got := strings.Split(string(data), "\n")
	if got[17] != "line 17" {
		t.Errorf("line before range changed: %q", got[17])
	}
	if got[18] != "EDITED A" || got[19] != "EDITED B" {
		t.Errorf("edit not spliced: %q %q", got[18], got[19])
	}
	// 5 excerpt lines replaced by 2; line 23 moves up.
	if got[20] != "line 23" {
		t.Errorf("line after range wrong: %q", got[20])
	}
}

func TestEditor_EditFile_NoCodeBlock(t *testing.T) {
	path := writeDAGFixture(t)
	gen := &mockGenerator{reply: "I cannot help with that."}
	editor := NewEditorWithGenerator(gen)

	rng := ide.NewRange(0, 0, 1, 0)
	if err := editor.EditFile(context.Background(), path, "x", &rng); err == nil {
		t.Fatal("expected error for reply without code block")
	}

	// File must be untouched on failure.
	data, _ := os.ReadFile(path)
	if !strings.HasPrefix(string(data), "line 0\n") {
		t.Error("file modified despite failed edit")
	}
}

func TestEditor_EditFile_RangeOutOfBounds(t *testing.T) {
	path := writeDAGFixture(t)
	editor := NewEditorWithGenerator(&mockGenerator{reply: "```\nx\n```"})
	rng := ide.NewRange(100, 0, 105, 0)
	if err := editor.EditFile(context.Background(), path, "x", &rng); err == nil {
		t.Fatal("expected error for out-of-bounds range")
	}
}

func TestExtractCodeBlock(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"```python\na = 1\n```", "a = 1", true},
		{"prose\n```\nx\ny\n```\nmore prose", "x\ny", true},
		{"no block at all", "", false},
		{"```python\nunterminated", "", false},
	}
	for _, c := range cases {
		got, ok := extractCodeBlock(c.in)
		if got != c.want || ok != c.ok {
			t.Errorf("extractCodeBlock(%q) = %q, %v", c.in, got, ok)
		}
	}
}
