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

// Package mcp exposes the pipeline recipe as MCP tools so that an agent
// host can drive setup and deployment over stdio.
package mcp

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/dagpilot/dagpilot/sdk"
)

type ServerOptions struct {
	ServerName    string
	ServerVersion string
	// Workspace is the default project directory for tool calls that do
	// not carry their own.
	Workspace string
	// Editor applies the schedule edit to the generated DAG. When nil the
	// deploy_airflow tool reports an error instead of editing.
	Editor sdk.Editor
}

type Server struct {
	Server *server.MCPServer
	opts   ServerOptions
}

func NewServer(opts ServerOptions) *Server {
	s := &Server{
		Server: server.NewMCPServer(opts.ServerName, opts.ServerVersion),
		opts:   opts,
	}
	for _, t := range s.recipeTools() {
		s.Server.AddTool(t.Tool, t.Handler)
	}
	return s
}

func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.Server)
}
