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

package ide

import (
	"context"

	"github.com/pkg/errors"

	"github.com/dagpilot/dagpilot/log"
)

// Scripted is the IDE implementation for unattended runs (MCP tools, CI):
// input prompts are answered from a queue, highlights and messages go to
// the log instead of a screen.
type Scripted struct {
	Dir     string
	Answers []string // consumed in order by WaitForUserInput

	Messages []RecordedMessage // everything shown, for the caller to report
}

// RecordedMessage is one ShowMessage call captured by a Scripted IDE.
type RecordedMessage struct {
	Name    string `json:"name,omitempty"`
	Message string `json:"message"`
}

var _ IDE = (*Scripted)(nil)

func (s *Scripted) WorkspaceDirectory(ctx context.Context) (string, error) {
	if s.Dir == "" {
		return "", errors.New("scripted ide: no workspace directory configured")
	}
	return s.Dir, nil
}

func (s *Scripted) HighlightCode(ctx context.Context, rif RangeInFile, color string) error {
	log.Debug("highlight %s %s", rif.Filepath, rif.Range)
	return nil
}

func (s *Scripted) WaitForUserInput(ctx context.Context, prompt string) (string, error) {
	if len(s.Answers) == 0 {
		return "", errors.Errorf("no scripted answer for prompt: %s", prompt)
	}
	answer := s.Answers[0]
	s.Answers = s.Answers[1:]
	log.Debug("scripted answer %q for prompt %q", answer, prompt)
	return answer, nil
}

func (s *Scripted) ShowMessage(ctx context.Context, name, message string) error {
	s.Messages = append(s.Messages, RecordedMessage{Name: name, Message: message})
	log.Info("%s: %s", name, message)
	return nil
}
