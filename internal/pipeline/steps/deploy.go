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
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dagpilot/dagpilot/ide"
	"github.com/dagpilot/dagpilot/internal/pipeline"
	"github.com/dagpilot/dagpilot/log"
	"github.com/dagpilot/dagpilot/schedule"
	"github.com/dagpilot/dagpilot/sdk"
)

// SchedulePrompt is the question the operator answers before the DAG edit.
const SchedulePrompt = "When would you like this Airflow DAG to run? (e.g. every day, every Monday, every 1st of the month, etc.)"

// defaultArgsMessage follows the schedule edit; the generated DAG ships
// placeholder default_args.
const defaultArgsMessage = "Fill in the owner, email, and other default_args in the DAG file with your own personal information."

// editDAGRange covers the DAG declaration block of the generated file,
// where schedule_interval lives.
var editDAGRange = ide.NewRange(18, 0, 23, 0)

// DeployAirflowStep deploys the scaffolded pipeline to Airflow Composer and
// adapts the generated DAG file: rewrites the placeholder literals, asks the
// operator for a schedule, and applies it with an AI edit constrained to the
// DAG declaration block.
type DeployAirflowStep struct {
	SDK        *sdk.SDK
	SourceName string

	// DAGWaitTimeout bounds the wait for `dlt deploy` to materialize the
	// DAG file. Zero means 30 seconds.
	DAGWaitTimeout time.Duration
}

// Name implements pipeline.Step.
func (s *DeployAirflowStep) Name() string { return "deploy-airflow" }

// DAGPath returns where `dlt deploy` writes the generated DAG file.
func (s *DeployAirflowStep) DAGPath(workspaceDir string) string {
	return filepath.Join(workspaceDir, "dags", fmt.Sprintf("dag_%s_pipeline.py", s.SourceName))
}

// Replacements returns the literal substitutions applied to the DAG file.
func (s *DeployAirflowStep) Replacements() []FindAndReplaceStep {
	pipelineName := s.SourceName + "_pipeline"
	return []FindAndReplaceStep{
		{SDK: s.SDK, Pattern: "'pipeline_name'", Replacement: "'" + pipelineName + "'"},
		{SDK: s.SDK, Pattern: "'dataset_name'", Replacement: "'" + s.SourceName + "_data'"},
		{SDK: s.SDK, Pattern: "pipeline_or_source_script", Replacement: pipelineName},
	}
}

// Run implements pipeline.Step.
func (s *DeployAirflowStep) Run(ctx context.Context, st *pipeline.PipelineState) (*pipeline.StepResult, error) {
	if err := ValidateSourceName(s.SourceName); err != nil {
		return fail(false, err)
	}

	// Run dlt command to deploy pipeline to Airflow.
	deployCmd := fmt.Sprintf("dlt --non-interactive deploy %s_pipeline.py airflow-composer", s.SourceName)
	if _, err := s.SDK.Run(ctx, []string{deployCmd},
		"Running `dlt deploy airflow` to deploy the dlt pipeline to Airflow",
		"Deploy dlt pipeline to Airflow"); err != nil {
		return fail(true, err)
	}

	dagPath := s.DAGPath(st.WorkspaceDir)
	wait := s.DAGWaitTimeout
	if wait == 0 {
		wait = 30 * time.Second
	}
	if err := sdk.WaitForFile(ctx, dagPath, wait); err != nil {
		return fail(false, err)
	}
	st.DAGPath = dagPath

	// The file as dlt wrote it is the rollback point for everything below.
	pristine, err := pipeline.SnapshotFile(pipeline.SnapshotDAGFile, dagPath)
	if err != nil {
		return fail(false, err)
	}
	st.DAGFile = pristine

	// Replace the pipeline name, dataset name and script reference.
	for _, fr := range s.Replacements() {
		fr := fr
		fr.Filepath = dagPath
		if err := s.SDK.RunStep(ctx, &fr, st); err != nil {
			return fail(false, err)
		}
	}

	// Show the operator the block the schedule lives in before asking.
	rif := ide.RangeInFile{Filepath: dagPath, Range: editDAGRange}
	if err := s.SDK.IDE.HighlightCode(ctx, rif, ide.HighlightColor); err != nil {
		return fail(false, err)
	}
	if err := s.SDK.RunStep(ctx, &WaitForUserInputStep{SDK: s.SDK, Prompt: SchedulePrompt}, st); err != nil {
		return fail(false, err)
	}

	editPrompt := fmt.Sprintf("Edit the DAG so that it runs at the following schedule: '%s'", st.Schedule)
	rng := editDAGRange
	if err := s.SDK.EditFile(ctx, dagPath, editPrompt, &rng); err != nil {
		// LLM edits are retryable, but `dlt deploy` does not regenerate an
		// existing file: put the generated content back so a retry replays
		// the literal edits against what dlt actually wrote.
		if rerr := pristine.Restore(); rerr != nil {
			log.Warn("restore %s: %v", dagPath, rerr)
		}
		st.DAGFile = pristine
		return fail(true, err)
	}
	s.checkSchedule(dagPath)

	// Tell the user to fill in owner, email and the other default_args.
	if err := s.SDK.RunStep(ctx, &MessageStep{
		SDK:         s.SDK,
		MessageName: "Fill in default_args",
		Message:     defaultArgsMessage,
	}, st); err != nil {
		return fail(false, err)
	}

	snap, err := pipeline.SnapshotFile(pipeline.SnapshotDAGFile, dagPath)
	if err != nil {
		return fail(false, err)
	}
	return &pipeline.StepResult{Status: pipeline.StepOK, Snapshot: snap}, nil
}

// checkSchedule verifies the edited schedule_interval parses as a cron
// literal and logs the upcoming fire times. The operator may have asked for
// something cron cannot express, so problems only warn.
func (s *DeployAirflowStep) checkSchedule(dagPath string) {
	data, err := os.ReadFile(dagPath)
	if err != nil {
		log.Warn("schedule check: %v", err)
		return
	}
	expr := schedule.ExtractInterval(data)
	if expr == "" {
		log.Warn("schedule check: no schedule_interval literal found in %s", dagPath)
		return
	}
	if err := schedule.Validate(expr); err != nil {
		log.Warn("schedule check: %v", err)
		return
	}
	next, err := schedule.Preview(expr, time.Now(), 3)
	if err != nil || len(next) == 0 {
		return
	}
	log.Info("schedule %q: next runs %v", expr, next)
}

func fail(recoverable bool, err error) (*pipeline.StepResult, error) {
	return &pipeline.StepResult{
		Status:      pipeline.StepFailed,
		Recoverable: recoverable,
	}, err
}
