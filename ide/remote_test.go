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
	"encoding/json"
	"net"
	"testing"

	"github.com/sourcegraph/jsonrpc2"
)

// fakeHost serves the editor side of the protocol over one end of a pipe.
func fakeHost(ctx context.Context, t *testing.T, conn net.Conn, highlights *[]highlightParams) *jsonrpc2.Conn {
	t.Helper()
	handler := jsonrpc2.HandlerWithError(func(ctx context.Context, c *jsonrpc2.Conn, req *jsonrpc2.Request) (any, error) {
		switch req.Method {
		case MethodWorkspaceDirectory:
			return workspaceDirectoryResult{Directory: "/workspace/demo"}, nil
		case MethodHighlightCode:
			var p highlightParams
			if err := json.Unmarshal(*req.Params, &p); err != nil {
				return nil, err
			}
			*highlights = append(*highlights, p)
			return map[string]any{}, nil
		case MethodInputRequest:
			var p inputRequestParams
			if err := json.Unmarshal(*req.Params, &p); err != nil {
				return nil, err
			}
			if p.Prompt == "" {
				t.Error("empty prompt")
			}
			return inputRequestResult{Text: "every Monday"}, nil
		case MethodShowMessage:
			return nil, nil
		}
		return nil, &jsonrpc2.Error{Code: jsonrpc2.CodeMethodNotFound, Message: req.Method}
	})
	stream := jsonrpc2.NewBufferedStream(conn, jsonrpc2.VSCodeObjectCodec{})
	return jsonrpc2.NewConn(ctx, stream, handler)
}

func TestRemote_RoundTrip(t *testing.T) {
	ctx := context.Background()
	clientConn, hostConn := net.Pipe()

	var highlights []highlightParams
	host := fakeHost(ctx, t, hostConn, &highlights)
	defer host.Close()

	remote := NewRemote(ctx, clientConn)
	defer remote.Close()

	dir, err := remote.WorkspaceDirectory(ctx)
	if err != nil {
		t.Fatalf("WorkspaceDirectory: %v", err)
	}
	if dir != "/workspace/demo" {
		t.Errorf("dir: got %s", dir)
	}

	rif := RangeInFile{Filepath: "/workspace/demo/dags/dag_chess_pipeline.py", Range: NewRange(18, 0, 23, 0)}
	if err := remote.HighlightCode(ctx, rif, HighlightColor); err != nil {
		t.Fatalf("HighlightCode: %v", err)
	}
	if len(highlights) != 1 {
		t.Fatalf("expected 1 highlight, got %d", len(highlights))
	}
	if highlights[0].Color != HighlightColor {
		t.Errorf("color: got %s", highlights[0].Color)
	}
	if highlights[0].Range.Start.Line != 18 || highlights[0].Range.End.Line != 23 {
		t.Errorf("range: got %+v", highlights[0].Range)
	}

	text, err := remote.WaitForUserInput(ctx, "When would you like this Airflow DAG to run?")
	if err != nil {
		t.Fatalf("WaitForUserInput: %v", err)
	}
	if text != "every Monday" {
		t.Errorf("text: got %q", text)
	}

	if err := remote.ShowMessage(ctx, "Fill in default_args", "Fill in the owner."); err != nil {
		t.Fatalf("ShowMessage: %v", err)
	}
}
