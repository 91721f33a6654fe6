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

// Package sdk is the capability surface recipe steps run against: ordered
// shell execution, the operator IDE, and the AI file editor. Steps never
// touch os/exec or the LLM client directly.
package sdk

import (
	"context"

	"github.com/pkg/errors"

	"github.com/dagpilot/dagpilot/ide"
	"github.com/dagpilot/dagpilot/internal/pipeline"
	"github.com/dagpilot/dagpilot/log"
)

// Editor applies a natural-language edit to a file, optionally constrained
// to a line range. Implemented by llm.Editor.
type Editor interface {
	EditFile(ctx context.Context, path, prompt string, rng *ide.Range) error
}

// SDK wires the capabilities a step needs. One SDK serves one recipe run.
type SDK struct {
	IDE    ide.IDE
	Shell  *Shell
	Editor Editor
	Agent  pipeline.Agent // failure policy for nested steps; nil = default
}

// New builds an SDK rooted at the IDE's workspace directory.
func New(ctx context.Context, i ide.IDE, editor Editor) (*SDK, error) {
	dir, err := i.WorkspaceDirectory(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "workspace directory")
	}
	return &SDK{
		IDE:    i,
		Shell:  &Shell{Dir: dir},
		Editor: editor,
	}, nil
}

// Run executes an ordered list of shell commands in the workspace. desc, if
// set, is shown to the operator before the commands run; name labels the
// unit of work in logs.
func (s *SDK) Run(ctx context.Context, commands []string, desc, name string) (string, error) {
	if desc != "" {
		if err := s.IDE.ShowMessage(ctx, name, desc); err != nil {
			return "", err
		}
	}
	log.Info("running %q (%d commands)", name, len(commands))
	out, err := s.Shell.Run(ctx, commands)
	if err != nil {
		return out, errors.Wrapf(err, "%s", name)
	}
	return out, nil
}

// RunStep executes a nested step under the run's failure policy.
func (s *SDK) RunStep(ctx context.Context, step pipeline.Step, st *pipeline.PipelineState) error {
	p := &pipeline.Pipeline{Steps: []pipeline.Step{step}, Agent: s.Agent}
	return p.Run(ctx, st)
}

// EditFile asks the AI editor to modify path per prompt, constrained to rng
// when non-nil.
func (s *SDK) EditFile(ctx context.Context, path, prompt string, rng *ide.Range) error {
	if s.Editor == nil {
		return errors.New("no AI editor configured")
	}
	return s.Editor.EditFile(ctx, path, prompt, rng)
}
