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
	"context"
	"os"
	"path/filepath"
	"testing"
)

// mockStepOK returns StepOK with an optional snapshot.
type mockStepOK struct {
	name string
	snap *Snapshot
}

func (m *mockStepOK) Name() string {
	if m.name != "" {
		return m.name
	}
	return "mock-ok"
}

func (m *mockStepOK) Run(ctx context.Context, st *PipelineState) (*StepResult, error) {
	if m.snap != nil {
		return &StepResult{Status: StepOK, Snapshot: m.snap}, nil
	}
	return &StepResult{Status: StepOK}, nil
}

// mockStepFail returns a failure with recoverable flag.
type mockStepFail struct {
	recoverable bool
}

func (m *mockStepFail) Name() string { return "mock-fail" }

func (m *mockStepFail) Run(ctx context.Context, st *PipelineState) (*StepResult, error) {
	return &StepResult{
		Status:      StepFailed,
		Recoverable: m.recoverable,
	}, nil
}

func TestPipeline_Run_Success(t *testing.T) {
	ctx := context.Background()
	st := NewPipelineState("run-1", "chess", t.TempDir())
	dagPath := filepath.Join(st.WorkspaceDir, "dags", "dag_chess_pipeline.py")
	snap := NewSnapshot(SnapshotDAGFile, dagPath, []byte("schedule_interval='@daily'"))

	pl := &Pipeline{
		Steps: []Step{&mockStepOK{name: "inject", snap: snap}},
		Agent: &DefaultAgent{MaxRetry: 1},
	}
	err := pl.Run(ctx, st)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if st.DAGFile == nil {
		t.Fatal("expected DAGFile to be set")
	}
	if st.DAGPath != dagPath {
		t.Errorf("DAGPath: got %s", st.DAGPath)
	}
	if len(st.History) != 1 {
		t.Errorf("expected 1 history record, got %d", len(st.History))
	}
	if st.History[0].Status != StepOK {
		t.Errorf("history status: got %s", st.History[0].Status)
	}
}

func TestPipeline_Run_AbortOnNonRecoverable(t *testing.T) {
	ctx := context.Background()
	st := &PipelineState{RunID: "run-1"}

	pl := &Pipeline{
		Steps: []Step{&mockStepFail{recoverable: false}},
		Agent: &DefaultAgent{MaxRetry: 3},
	}
	err := pl.Run(ctx, st)
	if err == nil {
		t.Fatal("expected error on non-recoverable failure")
	}
}

func TestPipeline_Run_AbortAfterRollback(t *testing.T) {
	// A step that always fails recoverably must not loop forever: retry up to
	// MaxRetry, rollback once, then abort.
	ctx := context.Background()
	st := &PipelineState{RunID: "run-1"}

	pl := &Pipeline{
		Steps: []Step{&mockStepFail{recoverable: true}},
		Agent: &DefaultAgent{MaxRetry: 2},
	}
	err := pl.Run(ctx, st)
	if err == nil {
		t.Fatal("expected error after retries exhausted")
	}
	if len(st.History) != 3 {
		t.Errorf("expected 3 history records, got %d", len(st.History))
	}
}

func TestDefaultAgent_OnStepFailure(t *testing.T) {
	ctx := context.Background()
	agent := &DefaultAgent{MaxRetry: 2}

	t.Run("abort when not recoverable", func(t *testing.T) {
		d := agent.OnStepFailure(ctx, nil, nil, &StepResult{Recoverable: false}, 1)
		if d != DecisionAbort {
			t.Errorf("got %s", d)
		}
	})

	t.Run("retry when recoverable and under max", func(t *testing.T) {
		d := agent.OnStepFailure(ctx, nil, nil, &StepResult{Recoverable: true}, 1)
		if d != DecisionRetry {
			t.Errorf("got %s", d)
		}
	})

	t.Run("rollback when recoverable and at max", func(t *testing.T) {
		d := agent.OnStepFailure(ctx, nil, nil, &StepResult{Recoverable: true}, 2)
		if d != DecisionRollback {
			t.Errorf("got %s", d)
		}
	})

	t.Run("abort when past max", func(t *testing.T) {
		d := agent.OnStepFailure(ctx, nil, nil, &StepResult{Recoverable: true}, 3)
		if d != DecisionAbort {
			t.Errorf("got %s", d)
		}
	})
}

func TestApplySnapshot(t *testing.T) {
	st := &PipelineState{}
	snap := NewSnapshot(SnapshotDAGFile, "/tmp/dag.py", []byte("x"))
	applySnapshot(st, snap)
	if st.DAGFile != snap {
		t.Error("DAGFile not set")
	}
	if st.DAGPath != "/tmp/dag.py" {
		t.Errorf("DAGPath: got %s", st.DAGPath)
	}
}

func TestRollback_RestoresFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dag.py")
	if err := os.WriteFile(path, []byte("original"), 0644); err != nil {
		t.Fatal(err)
	}
	prev, err := SnapshotFile(SnapshotDAGFile, path)
	if err != nil {
		t.Fatalf("SnapshotFile: %v", err)
	}

	// Simulate a bad edit, then rollback.
	if err := os.WriteFile(path, []byte("clobbered"), 0644); err != nil {
		t.Fatal(err)
	}
	st := &PipelineState{DAGFile: NewSnapshot(SnapshotDAGFile, path, []byte("clobbered"))}
	rollback(st, prev)

	if st.DAGFile != prev {
		t.Error("rollback did not restore state snapshot")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "original" {
		t.Errorf("file contents: got %q", data)
	}
}
