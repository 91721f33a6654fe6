/**
 * Copyright 2026 Dagpilot Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     https://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino/schema"

	"github.com/dagpilot/dagpilot/internal/utils"
	"github.com/dagpilot/dagpilot/llm/prompt"
	"github.com/dagpilot/dagpilot/log"
)

var _ Generator = (*Caller)(nil)

// Caller is a single-turn Generator over a chat model, with retry on
// transient transport errors.
type Caller struct {
	model     ChatModel
	sysPrompt prompt.Prompt
	retries   int           // Number of retries on failure
	timeout   time.Duration // Request timeout
}

type CallerOptions struct {
	SysPrompt prompt.Prompt
	Retries   int           // default: 3
	Timeout   time.Duration // default: 600s
}

func NewCaller(model ChatModel, opts CallerOptions) *Caller {
	retries := opts.Retries
	if retries == 0 {
		retries = 3
	}
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = 600 * time.Second
	}
	sys := opts.SysPrompt
	if sys == nil {
		sys = prompt.NewTextPrompt("")
	}
	return &Caller{
		model:     model,
		sysPrompt: sys,
		retries:   retries,
		timeout:   timeout,
	}
}

func (p *Caller) Call(ctx context.Context, input string) (string, error) {
	log.Debug("[User] %s", input)
	inputMsgs := []*schema.Message{schema.UserMessage(input)}
	if sys := p.sysPrompt.String(); sys != "" {
		inputMsgs = append([]*schema.Message{schema.SystemMessage(sys)}, inputMsgs...)
	}

	var lastErr error
	for attempt := 0; attempt <= p.retries; attempt++ {
		if attempt > 0 {
			log.Info("Retrying LLM call (attempt %d/%d)...", attempt+1, p.retries+1)
			// Exponential backoff: wait 1s, 2s, 4s...
			waitTime := time.Duration(1<<uint(attempt-1)) * time.Second
			if waitTime > 10*time.Second {
				waitTime = 10 * time.Second // Cap at 10 seconds
			}
			time.Sleep(waitTime)
		}

		attemptCtx, cancel := context.WithTimeout(ctx, p.timeout)
		out, err := p.model.Generate(attemptCtx, inputMsgs)
		cancel()
		if err == nil {
			log.Debug("[Assistant] %s", out.Content)
			return out.Content, nil
		}

		lastErr = err
		if !isRetryableErr(err) {
			log.Error("Non-retryable error occurred: %v", err)
			return "", utils.WrapError(err, "LLM call error")
		}

		log.Info("Retryable error occurred (attempt %d/%d): %v", attempt+1, p.retries+1, err)
	}

	// All retries exhausted
	return "", utils.WrapError(fmt.Errorf("failed after %d retries: %w", p.retries+1, lastErr), "LLM call error")
}

func isRetryableErr(err error) bool {
	errStr := err.Error()
	return strings.Contains(errStr, "timeout") ||
		strings.Contains(errStr, "connection reset") ||
		strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "operation timed out") ||
		strings.Contains(errStr, "context deadline exceeded") ||
		strings.Contains(errStr, "read tcp") ||
		strings.Contains(errStr, "write tcp")
}
