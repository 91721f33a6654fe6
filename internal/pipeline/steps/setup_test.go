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

package steps

import (
	"context"
	"strings"
	"testing"

	"github.com/dagpilot/dagpilot/internal/pipeline"
)

func TestValidateSourceName(t *testing.T) {
	valid := []string{"chess", "pokemon", "google_sheets", "Source1"}
	for _, name := range valid {
		if err := ValidateSourceName(name); err != nil {
			t.Errorf("%s: %v", name, err)
		}
	}
	invalid := []string{"", "1chess", "chess pipeline", "a;rm -rf /", "a$b", "a-b"}
	for _, name := range invalid {
		if err := ValidateSourceName(name); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestSetupPipelineStep_Commands(t *testing.T) {
	s := &SetupPipelineStep{SourceName: "chess"}
	cmds := s.Commands()

	want := []string{
		"python3 -m venv env",
		". env/bin/activate",
		"pip install dlt",
		"dlt --non-interactive init chess duckdb",
		"pip install -r requirements.txt",
	}
	if len(cmds) != len(want) {
		t.Fatalf("got %d commands, want %d", len(cmds), len(want))
	}
	for i := range want {
		if cmds[i] != want[i] {
			t.Errorf("command %d: got %q, want %q", i, cmds[i], want[i])
		}
	}
}

func TestSetupPipelineStep_Describe(t *testing.T) {
	s := &SetupPipelineStep{SourceName: "pokemon"}
	desc := s.Describe()
	if !strings.Contains(desc, "dlt init pokemon duckdb") {
		t.Error("description missing interpolated init command")
	}
	if !strings.Contains(desc, "a new dlt pipeline called pokemon") {
		t.Error("description missing pipeline name")
	}
}

func TestSetupPipelineStep_Run_RejectsBadSource(t *testing.T) {
	s := &SetupPipelineStep{SourceName: "chess; rm -rf /"}
	res, err := s.Run(context.Background(), &pipeline.PipelineState{})
	if err == nil {
		t.Fatal("expected error")
	}
	if res.Recoverable {
		t.Error("bad source name must not be recoverable")
	}
}
