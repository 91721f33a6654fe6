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

// Package steps holds the units of the dlt-to-Airflow recipe: scaffold the
// pipeline, deploy it, rewrite the generated DAG, and collect the schedule.
package steps

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/dagpilot/dagpilot/internal/pipeline"
	"github.com/dagpilot/dagpilot/sdk"
)

// sourceNameRe restricts source names to what `dlt init` accepts. The name
// is interpolated into shell commands, so nothing else may pass.
var sourceNameRe = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_]*$`)

// ValidateSourceName rejects names that are not plain identifiers.
func ValidateSourceName(name string) error {
	if !sourceNameRe.MatchString(name) {
		return fmt.Errorf("invalid source name %q: must match %s", name, sourceNameRe)
	}
	return nil
}

// SetupPipelineStep scaffolds a dlt pipeline loading into local DuckDB:
// create a venv, install dlt, run `dlt init`, install the pipeline deps.
type SetupPipelineStep struct {
	SDK        *sdk.SDK
	SourceName string
}

// Name implements pipeline.Step.
func (s *SetupPipelineStep) Name() string { return "setup-dlt-pipeline" }

// Commands returns the ordered shell commands the step runs.
func (s *SetupPipelineStep) Commands() []string {
	return []string{
		"python3 -m venv env",
		". env/bin/activate",
		"pip install dlt",
		fmt.Sprintf("dlt --non-interactive init %s duckdb", s.SourceName),
		"pip install -r requirements.txt",
	}
}

// Describe implements pipeline.Describer.
func (s *SetupPipelineStep) Describe() string {
	var b strings.Builder
	b.WriteString("Running the following commands:\n")
	fmt.Fprintf(&b, "- `python3 -m venv env`: Create a Python virtual environment\n")
	fmt.Fprintf(&b, "- `. env/bin/activate`: Activate the virtual environment\n")
	fmt.Fprintf(&b, "- `pip install dlt`: Install dlt\n")
	fmt.Fprintf(&b, "- `dlt init %s duckdb`: Create a new dlt pipeline called %s that loads data into a local DuckDB instance\n",
		s.SourceName, s.SourceName)
	fmt.Fprintf(&b, "- `pip install -r requirements.txt`: Install the Python dependencies for the pipeline")
	return b.String()
}

// Run implements pipeline.Step.
func (s *SetupPipelineStep) Run(ctx context.Context, st *pipeline.PipelineState) (*pipeline.StepResult, error) {
	if err := ValidateSourceName(s.SourceName); err != nil {
		return &pipeline.StepResult{
			Status:      pipeline.StepFailed,
			Recoverable: false,
		}, err
	}

	// pip and dlt hit the network; those failures are worth a retry.
	if _, err := s.SDK.Run(ctx, s.Commands(), s.Describe(), "Setup Python environment"); err != nil {
		return &pipeline.StepResult{
			Status:      pipeline.StepFailed,
			Recoverable: true,
		}, err
	}

	return &pipeline.StepResult{Status: pipeline.StepOK}, nil
}
