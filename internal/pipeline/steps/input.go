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
	"errors"

	"github.com/dagpilot/dagpilot/internal/pipeline"
	"github.com/dagpilot/dagpilot/sdk"
)

// WaitForUserInputStep blocks the run until the operator answers Prompt,
// then stores the text in state.Schedule. An empty answer is recoverable,
// so the agent re-asks.
type WaitForUserInputStep struct {
	SDK    *sdk.SDK
	Prompt string
}

// Name implements pipeline.Step.
func (s *WaitForUserInputStep) Name() string { return "wait-for-user-input" }

// Run implements pipeline.Step.
func (s *WaitForUserInputStep) Run(ctx context.Context, st *pipeline.PipelineState) (*pipeline.StepResult, error) {
	text, err := s.SDK.IDE.WaitForUserInput(ctx, s.Prompt)
	if err != nil {
		return &pipeline.StepResult{
			Status:      pipeline.StepFailed,
			Recoverable: false,
		}, err
	}
	if text == "" {
		return &pipeline.StepResult{
			Status:      pipeline.StepFailed,
			Recoverable: true,
		}, errors.New("empty answer")
	}
	st.Schedule = text
	return &pipeline.StepResult{Status: pipeline.StepOK}, nil
}

// MessageStep shows a named message to the operator and always succeeds
// when the surface is reachable.
type MessageStep struct {
	SDK         *sdk.SDK
	MessageName string
	Message     string
}

// Name implements pipeline.Step.
func (s *MessageStep) Name() string { return "message" }

// Run implements pipeline.Step.
func (s *MessageStep) Run(ctx context.Context, st *pipeline.PipelineState) (*pipeline.StepResult, error) {
	if err := s.SDK.IDE.ShowMessage(ctx, s.MessageName, s.Message); err != nil {
		return &pipeline.StepResult{
			Status:      pipeline.StepFailed,
			Recoverable: false,
		}, err
	}
	return &pipeline.StepResult{Status: pipeline.StepOK}, nil
}
