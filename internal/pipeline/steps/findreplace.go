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

	"github.com/dagpilot/dagpilot/internal/pipeline"
	"github.com/dagpilot/dagpilot/log"
	"github.com/dagpilot/dagpilot/sdk"
)

// FindAndReplaceStep replaces every literal occurrence of Pattern in a file.
// Zero occurrences means the file does not look like what the recipe
// expects, which is not something a retry can fix.
type FindAndReplaceStep struct {
	SDK         *sdk.SDK
	Filepath    string
	Pattern     string
	Replacement string
}

// Name implements pipeline.Step.
func (s *FindAndReplaceStep) Name() string { return "find-and-replace" }

// Run implements pipeline.Step.
func (s *FindAndReplaceStep) Run(ctx context.Context, st *pipeline.PipelineState) (*pipeline.StepResult, error) {
	replaced, count, err := s.SDK.FindAndReplace(s.Filepath, s.Pattern, s.Replacement)
	if err != nil {
		return &pipeline.StepResult{
			Status:      pipeline.StepFailed,
			Recoverable: false,
		}, err
	}
	log.Debug("replaced %d occurrence(s) of %q in %s", count, s.Pattern, s.Filepath)

	snap := pipeline.NewSnapshot(pipeline.SnapshotDAGFile, s.Filepath, replaced)
	return &pipeline.StepResult{
		Status:   pipeline.StepOK,
		Snapshot: snap,
	}, nil
}
