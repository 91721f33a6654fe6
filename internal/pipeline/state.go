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

package pipeline

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

// PipelineState is the single source of truth a run mutates. All intermediate
// results are carried as snapshots; rollback = restore a previous snapshot.
type PipelineState struct {
	RunID      string
	SourceName string // dlt verified-source name, e.g. "chess" or "pokemon"

	WorkspaceDir string // project root the recipe operates in
	DAGPath      string // generated dags/dag_<source>_pipeline.py, set by the deploy step

	Schedule string // free-text schedule supplied by the operator

	DAGFile *Snapshot // latest snapshot of the DAG file contents

	History []StepRecord
}

// StepRecord is an immutable log entry for one step execution.
type StepRecord struct {
	StepName string
	Attempt  int
	Status   StepStatus
	Error    string
	Time     time.Time
}

// StepStatus is the outcome of a step run.
type StepStatus string

const (
	StepOK     StepStatus = "ok"
	StepFailed StepStatus = "failed"
	StepRetry  StepStatus = "retry"
)

// NewPipelineState returns an initial state for one recipe run.
func NewPipelineState(runID, sourceName, workspaceDir string) *PipelineState {
	return &PipelineState{
		RunID:        runID,
		SourceName:   sourceName,
		WorkspaceDir: workspaceDir,
	}
}

// SaveToFile writes a JSON dump of the state (e.g. .dagpilot/run.json).
// For resume/inspection only.
func (s *PipelineState) SaveToFile(path string) error {
	if s == nil {
		return nil
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
