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
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
)

// Terminal is the IDE implementation for plain CLI runs: highlights are
// rendered with ANSI colors, input is read line-by-line from stdin.
type Terminal struct {
	Dir string // workspace root; defaults to the current directory

	In  io.Reader // defaults to os.Stdin
	Out io.Writer // defaults to os.Stdout

	// NoInput makes WaitForUserInput fail instead of blocking. Used for
	// unattended runs where a missing operator should abort the recipe.
	NoInput bool

	// The reader goroutine scans one line per request, so input is never
	// consumed ahead of a prompt. pending marks a request whose prompt was
	// abandoned on ctx cancel before the line arrived.
	reqs    chan struct{}
	lines   chan scannedLine
	pending bool
}

type scannedLine struct {
	text string
	err  error
}

var _ IDE = (*Terminal)(nil)

func (t *Terminal) WorkspaceDirectory(ctx context.Context) (string, error) {
	if t.Dir != "" {
		return t.Dir, nil
	}
	return os.Getwd()
}

const (
	ansiGreenBG = "\x1b[42;30m"
	ansiReset   = "\x1b[0m"
)

// HighlightCode prints the covered lines with a colored background and
// 1-based line numbers in the gutter. The exact color is approximated:
// a terminal has no alpha channel, so any #RRGGBBAA maps to plain green.
func (t *Terminal) HighlightCode(ctx context.Context, rif RangeInFile, color string) error {
	data, err := os.ReadFile(rif.Filepath)
	if err != nil {
		return errors.Wrapf(err, "highlight %s", rif.Filepath)
	}
	lines := strings.Split(string(data), "\n")
	first, last := rif.Range.LineSpan()
	if first >= len(lines) {
		return errors.Errorf("highlight %s: range %s starts past end of file (%d lines)",
			rif.Filepath, rif.Range, len(lines))
	}
	if last >= len(lines) {
		last = len(lines) - 1
	}

	out := t.out()
	fmt.Fprintf(out, "\n%s:\n", rif.Filepath)
	for i := first; i <= last; i++ {
		fmt.Fprintf(out, "%s%4d | %s%s\n", ansiGreenBG, i+1, lines[i], ansiReset)
	}
	return nil
}

func (t *Terminal) WaitForUserInput(ctx context.Context, prompt string) (string, error) {
	if t.NoInput {
		return "", errors.Errorf("input required but running with input disabled: %s", prompt)
	}

	t.startReader()

	if t.pending {
		// An abandoned prompt may have received its answer after we
		// stopped waiting; that line is not an answer to this prompt.
		select {
		case le := <-t.lines:
			if le.err != nil {
				return "", le.err
			}
			t.pending = false
		default:
			// Nothing arrived for the abandoned prompt, so its
			// outstanding read serves this one.
		}
	}

	fmt.Fprintf(t.out(), "\n%s\n> ", prompt)

	if !t.pending {
		t.reqs <- struct{}{}
		t.pending = true
	}

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case le := <-t.lines:
		t.pending = false
		if le.err != nil {
			return "", le.err
		}
		return strings.TrimSpace(le.text), nil
	}
}

func (t *Terminal) ShowMessage(ctx context.Context, name, message string) error {
	if name != "" {
		fmt.Fprintf(t.out(), "\n== %s ==\n%s\n", name, message)
		return nil
	}
	fmt.Fprintf(t.out(), "\n%s\n", message)
	return nil
}

func (t *Terminal) out() io.Writer {
	if t.Out != nil {
		return t.Out
	}
	return os.Stdout
}

// startReader lazily starts the goroutine that owns the input scanner. It
// scans one line per request on reqs and delivers it on lines; lines has
// room for one entry so a late answer to an abandoned prompt never blocks
// the reader.
func (t *Terminal) startReader() {
	if t.lines != nil {
		return
	}
	t.reqs = make(chan struct{})
	t.lines = make(chan scannedLine, 1)
	in := t.In
	if in == nil {
		in = os.Stdin
	}
	go func(sc *bufio.Scanner) {
		for range t.reqs {
			if sc.Scan() {
				t.lines <- scannedLine{text: sc.Text()}
				continue
			}
			err := sc.Err()
			if err == nil {
				err = io.EOF
			}
			t.lines <- scannedLine{err: err}
		}
	}(bufio.NewScanner(in))
}
