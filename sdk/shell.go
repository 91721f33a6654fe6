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

package sdk

import (
	"bytes"
	"context"
	"os/exec"
	"strings"

	"github.com/pkg/errors"

	"github.com/dagpilot/dagpilot/log"
)

// Shell runs ordered command lists in a workspace directory. The whole list
// executes as one `sh -e` script, so `cd` and `. env/bin/activate` carry
// over to later commands and the first failing command aborts the rest.
type Shell struct {
	Dir string
	Env []string // extra environment, KEY=VALUE; nil keeps the process env
}

// Run executes commands in order and returns the combined output.
func (s *Shell) Run(ctx context.Context, commands []string) (string, error) {
	if len(commands) == 0 {
		return "", nil
	}
	script := "set -e\n" + strings.Join(commands, "\n")

	cmd := exec.CommandContext(ctx, "sh", "-c", script)
	cmd.Dir = s.Dir
	if len(s.Env) > 0 {
		cmd.Env = append(cmd.Environ(), s.Env...)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	log.Debug("shell: running %d commands in %s", len(commands), s.Dir)
	err := cmd.Run()

	output := stdout.String()
	if stderr.Len() > 0 {
		output += "\n--- stderr ---\n" + stderr.String()
	}
	if err != nil {
		return output, errors.Wrapf(err, "shell commands failed\noutput: %s", output)
	}
	return output, nil
}
