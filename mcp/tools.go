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
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/dagpilot/dagpilot/ide"
	"github.com/dagpilot/dagpilot/internal/pipeline"
	"github.com/dagpilot/dagpilot/internal/pipeline/steps"
	"github.com/dagpilot/dagpilot/sdk"
)

const (
	ToolSetupPipeline = "setup_pipeline"
	DescSetupPipeline = "Scaffold a dlt pipeline for a verified source in the workspace: create a virtual environment, install dlt, run `dlt init <source> duckdb`, and install the generated requirements."

	ToolDeployAirflow = "deploy_airflow"
	DescDeployAirflow = "Deploy a scaffolded dlt pipeline to Airflow Composer: run `dlt deploy`, rewrite the generated DAG file's placeholder names, and set its schedule."
)

var (
	SchemaSetupPipeline = mustSchema[setupPipelineRequest]()
	SchemaDeployAirflow = mustSchema[deployAirflowRequest]()
)

type setupPipelineRequest struct {
	SourceName string `json:"source_name" jsonschema:"description=Name of the verified dlt source to scaffold, e.g. 'chess' or 'github'"`
	Workspace  string `json:"workspace,omitempty" jsonschema:"description=Project directory to scaffold into; defaults to the server's workspace"`
}

type deployAirflowRequest struct {
	SourceName string `json:"source_name" jsonschema:"description=Name of the dlt source whose pipeline to deploy"`
	Workspace  string `json:"workspace,omitempty" jsonschema:"description=Project directory holding the scaffolded pipeline; defaults to the server's workspace"`
	Schedule   string `json:"schedule" jsonschema:"description=When the Airflow DAG should run, e.g. 'every day' or a cron expression"`
}

type stepRecord struct {
	Step    string `json:"step"`
	Attempt int    `json:"attempt"`
	Status  string `json:"status"`
	Error   string `json:"error,omitempty"`
}

type recipeResponse struct {
	SourceName string       `json:"source_name"`
	Workspace  string       `json:"workspace"`
	DAGPath    string       `json:"dag_path,omitempty"`
	Schedule   string       `json:"schedule,omitempty"`
	Messages   []string     `json:"messages,omitempty"`
	Steps      []stepRecord `json:"steps"`
}

func (s *Server) recipeTools() []Tool {
	return []Tool{
		NewTool(ToolSetupPipeline, DescSetupPipeline, SchemaSetupPipeline, s.setupPipeline),
		NewTool(ToolDeployAirflow, DescDeployAirflow, SchemaDeployAirflow, s.deployAirflow),
	}
}

func (s *Server) setupPipeline(ctx context.Context, req setupPipelineRequest) (*recipeResponse, error) {
	host := &ide.Scripted{Dir: s.workspace(req.Workspace)}
	kit, st, err := s.newRun(ctx, host, req.SourceName)
	if err != nil {
		return nil, err
	}
	setup := &steps.SetupPipelineStep{SDK: kit, SourceName: req.SourceName}
	runErr := kit.RunStep(ctx, setup, st)
	return response(req.SourceName, host, st), runErr
}

func (s *Server) deployAirflow(ctx context.Context, req deployAirflowRequest) (*recipeResponse, error) {
	if req.Schedule == "" {
		return nil, errors.New("schedule is required")
	}
	host := &ide.Scripted{
		Dir:     s.workspace(req.Workspace),
		Answers: []string{req.Schedule},
	}
	kit, st, err := s.newRun(ctx, host, req.SourceName)
	if err != nil {
		return nil, err
	}
	deploy := &steps.DeployAirflowStep{SDK: kit, SourceName: req.SourceName}
	runErr := kit.RunStep(ctx, deploy, st)
	return response(req.SourceName, host, st), runErr
}

func (s *Server) workspace(override string) string {
	if override != "" {
		return override
	}
	return s.opts.Workspace
}

func (s *Server) newRun(ctx context.Context, host ide.IDE, source string) (*sdk.SDK, *pipeline.PipelineState, error) {
	kit, err := sdk.New(ctx, host, s.opts.Editor)
	if err != nil {
		return nil, nil, err
	}
	runID := fmt.Sprintf("mcp-%d", time.Now().UnixNano())
	return kit, pipeline.NewPipelineState(runID, source, kit.Shell.Dir), nil
}

// response flattens the run state for the MCP client. It is returned even
// when the run failed so the client sees how far the recipe got.
func response(source string, host *ide.Scripted, st *pipeline.PipelineState) *recipeResponse {
	resp := &recipeResponse{
		SourceName: source,
		Workspace:  st.WorkspaceDir,
		DAGPath:    st.DAGPath,
		Schedule:   st.Schedule,
	}
	for _, m := range host.Messages {
		resp.Messages = append(resp.Messages, m.Name+": "+m.Message)
	}
	for _, r := range st.History {
		resp.Steps = append(resp.Steps, stepRecord{
			Step:    r.StepName,
			Attempt: r.Attempt,
			Status:  string(r.Status),
			Error:   r.Error,
		})
	}
	return resp
}
