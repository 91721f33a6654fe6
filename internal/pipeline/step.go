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
)

// Step is one unit of work in the recipe. Each step reads and mutates the
// shared state. The Agent only schedules steps; it never edits files itself.
type Step interface {
	Name() string
	Run(ctx context.Context, st *PipelineState) (*StepResult, error)
}

// StepResult reports the outcome of one step run.
type StepResult struct {
	Status      StepStatus
	Recoverable bool      // whether the Agent may retry after failure
	Snapshot    *Snapshot // artifact produced by the step, applied to state on success
}

// Describer is implemented by steps that can explain what they are about to
// do, in terms an operator reads before the commands run.
type Describer interface {
	Describe() string
}
