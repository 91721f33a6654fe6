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

package mcp

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"log"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

func sendAndRecv(t *testing.T, request any, stdinWriter *io.PipeWriter, stdoutReader *io.PipeReader) map[string]any {
	requestBytes, err := json.Marshal(request)
	if err != nil {
		t.Fatal(err)
	}
	_, err = stdinWriter.Write(append(requestBytes, '\n'))
	if err != nil {
		t.Fatal(err)
	}

	scanner := bufio.NewScanner(stdoutReader)
	scanner.Buffer(make([]byte, 1024*1024), 1024*1024)
	if !scanner.Scan() {
		t.Fatal("failed to read response")
	}
	responseBytes := scanner.Bytes()

	var response map[string]any
	if err := json.Unmarshal(responseBytes, &response); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	return response
}

func TestRecipeServer(t *testing.T) {
	svr := NewServer(ServerOptions{
		ServerName:    "dagpilot",
		ServerVersion: "1.0.0",
		Workspace:     t.TempDir(),
	})

	stdinReader, stdinWriter := io.Pipe()
	stdoutReader, stdoutWriter := io.Pipe()

	stdioServer := server.NewStdioServer(svr.Server)
	stdioServer.SetErrorLogger(log.New(io.Discard, "", 0))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	serverErrCh := make(chan error, 1)
	go func() {
		err := stdioServer.Listen(ctx, stdinReader, stdoutWriter)
		if err != nil && err != io.EOF && err != context.Canceled {
			serverErrCh <- err
		}
		stdoutWriter.Close()
		close(serverErrCh)
	}()

	time.Sleep(100 * time.Millisecond)

	initRequest := map[string]any{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  "initialize",
		"params": map[string]any{
			"protocolVersion": "2024-11-05",
			"clientInfo": map[string]any{
				"name":    "test-client",
				"version": "1.0.0",
			},
		},
	}
	resp := sendAndRecv(t, initRequest, stdinWriter, stdoutReader)
	if resp["error"] != nil {
		t.Fatalf("initialize failed: %v", resp["error"])
	}

	listRequest := map[string]any{
		"jsonrpc": "2.0",
		"id":      2,
		"method":  "tools/list",
		"params":  map[string]any{},
	}
	resp = sendAndRecv(t, listRequest, stdinWriter, stdoutReader)
	raw, err := json.Marshal(resp["result"])
	if err != nil {
		t.Fatal(err)
	}
	var result struct {
		Tools []struct {
			Name string `json:"name"`
		} `json:"tools"`
	}
	if err := json.Unmarshal(raw, &result); err != nil {
		t.Fatalf("failed to unmarshal tools/list result: %v", err)
	}
	want := map[string]bool{ToolSetupPipeline: false, ToolDeployAirflow: false}
	for _, tool := range result.Tools {
		if _, ok := want[tool.Name]; ok {
			want[tool.Name] = true
		}
	}
	for name, seen := range want {
		if !seen {
			t.Errorf("tool %q not listed", name)
		}
	}

	cancel()
	stdinWriter.Close()

	if err := <-serverErrCh; err != nil {
		t.Errorf("unexpected server error: %v", err)
	}
}

func TestSchemasDescribeRequiredFields(t *testing.T) {
	for _, tc := range []struct {
		name   string
		schema json.RawMessage
		field  string
	}{
		{"setup_pipeline", SchemaSetupPipeline, "source_name"},
		{"deploy_airflow", SchemaDeployAirflow, "schedule"},
	} {
		var schema map[string]any
		if err := json.Unmarshal(tc.schema, &schema); err != nil {
			t.Fatalf("%s: invalid schema: %v", tc.name, err)
		}
		props, ok := schema["properties"].(map[string]any)
		if !ok {
			t.Fatalf("%s: schema has no properties", tc.name)
		}
		if _, ok := props[tc.field]; !ok {
			t.Errorf("%s: schema missing property %q", tc.name, tc.field)
		}
		required, _ := schema["required"].([]any)
		found := false
		for _, r := range required {
			if r == tc.field {
				found = true
			}
		}
		if !found {
			t.Errorf("%s: %q not required; required=%v", tc.name, tc.field, required)
		}
	}
}

// A failed run must still report its step history, so an AI client can tell
// where the recipe stopped instead of seeing a bare error string.
func TestFailedRunReportsStepHistory(t *testing.T) {
	svr := NewServer(ServerOptions{
		ServerName:    "dagpilot",
		ServerVersion: "1.0.0",
		Workspace:     t.TempDir(),
	})

	var setup *Tool
	for _, tool := range svr.recipeTools() {
		if tool.Tool.Name == ToolSetupPipeline {
			tool := tool
			setup = &tool
		}
	}
	if setup == nil {
		t.Fatal("setup_pipeline tool not registered")
	}

	var req mcp.CallToolRequest
	req.Params.Arguments = map[string]any{"source_name": "not a valid name"}
	res, err := setup.Handler(context.Background(), req)
	if err != nil {
		t.Fatalf("handler: %v", err)
	}
	if !res.IsError {
		t.Fatal("expected an error result")
	}
	if len(res.Content) != 1 {
		t.Fatalf("content items: got %d", len(res.Content))
	}
	text, ok := res.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("content type: %T", res.Content[0])
	}
	if !strings.Contains(text.Text, "invalid source name") {
		t.Errorf("result missing the failure cause: %q", text.Text)
	}
	if !strings.Contains(text.Text, `"steps"`) {
		t.Errorf("result missing the step history: %q", text.Text)
	}
}

func TestDeployAirflowRequiresSchedule(t *testing.T) {
	svr := NewServer(ServerOptions{
		ServerName:    "dagpilot",
		ServerVersion: "1.0.0",
		Workspace:     t.TempDir(),
	})
	_, err := svr.deployAirflow(context.Background(), deployAirflowRequest{SourceName: "chess"})
	if err == nil || !strings.Contains(err.Error(), "schedule") {
		t.Fatalf("expected schedule error, got %v", err)
	}
}
