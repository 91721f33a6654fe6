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

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/dagpilot/dagpilot/ide"
	"github.com/dagpilot/dagpilot/internal/pipeline"
	"github.com/dagpilot/dagpilot/internal/pipeline/steps"
	"github.com/dagpilot/dagpilot/llm"
	"github.com/dagpilot/dagpilot/log"
	"github.com/dagpilot/dagpilot/mcp"
	"github.com/dagpilot/dagpilot/sdk"
	"github.com/dagpilot/dagpilot/version"
)

const Usage = `dagpilot <Action> [Source] [Flags]
Action:
   init         scaffold a dlt pipeline for the verified source in the workspace
   deploy       deploy the scaffolded pipeline to Airflow Composer
   run          init then deploy in one pass
   mcp          run as a MCP server exposing the recipe as tools over stdio
   version      print the version of dagpilot
Source:
   name of a dlt verified source, e.g. chess or pokemon
`

func main() {
	flags := flag.NewFlagSet("dagpilot", flag.ExitOnError)

	flagHelp := flags.Bool("h", false, "Show help message.")
	flagVerbose := flags.Bool("verbose", false, "Verbose mode.")
	flagWorkspace := flags.String("w", "", "Workspace directory (default: current directory).")
	flagModel := flags.String("model", "", "Path to a model config JSON file (default: API_TYPE/API_KEY/MODEL_NAME env).")
	flagNoInput := flags.Bool("no-input", false, "Fail instead of prompting the operator for input.")
	flagIDE := flags.String("ide", "", "Address (host:port) of a remote IDE host; empty means terminal.")
	flagMaxRetry := flags.Int("max-retry", 2, "Attempts per step before rolling back.")

	flags.Usage = func() {
		fmt.Fprint(os.Stderr, Usage)
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flags.PrintDefaults()
	}

	// Model credentials commonly live in a project .env; missing file is fine.
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		flags.Usage()
		os.Exit(1)
	}
	action := strings.ToLower(os.Args[1])
	ctx := context.Background()

	switch action {
	case "version":
		fmt.Fprintf(os.Stdout, "%s\n", version.Version)

	case "init", "deploy", "run":
		source := parseArgsAndFlags(flags, flagHelp, flagVerbose)
		if err := steps.ValidateSourceName(source); err != nil {
			log.Error("%v\n", err)
			os.Exit(1)
		}

		host, closeHost, err := buildIDE(ctx, *flagIDE, *flagWorkspace, *flagNoInput)
		if err != nil {
			log.Error("Failed to connect IDE: %v\n", err)
			os.Exit(1)
		}
		defer closeHost()

		editor, err := buildEditor(ctx, *flagModel)
		if err != nil {
			log.Error("Failed to configure AI editor: %v\n", err)
			os.Exit(1)
		}
		if editor == nil && action != "init" {
			log.Warn("no model configured; the DAG schedule edit will fail without one\n")
		}

		kit, err := sdk.New(ctx, host, editor)
		if err != nil {
			log.Error("Failed to build SDK: %v\n", err)
			os.Exit(1)
		}
		kit.Agent = &pipeline.DefaultAgent{MaxRetry: *flagMaxRetry}

		var run []pipeline.Step
		if action == "init" || action == "run" {
			run = append(run, &steps.SetupPipelineStep{SDK: kit, SourceName: source})
		}
		if action == "deploy" || action == "run" {
			run = append(run, &steps.DeployAirflowStep{SDK: kit, SourceName: source})
		}

		st := pipeline.NewPipelineState(fmt.Sprintf("%d", time.Now().UnixNano()), source, kit.Shell.Dir)
		p := &pipeline.Pipeline{Steps: run, Agent: kit.Agent}
		runErr := p.Run(ctx, st)

		if err := st.SaveToFile(filepath.Join(kit.Shell.Dir, ".dagpilot", "run.json")); err != nil {
			log.Warn("Failed to save run state: %v\n", err)
		}
		if n := len(st.History); n > 0 {
			last := st.History[n-1]
			log.Info("Pipeline: last step=%s, attempt=%d, status=%s\n", last.StepName, last.Attempt, last.Status)
		}
		if runErr != nil {
			log.Error("Pipeline failed: %v\n", runErr)
			os.Exit(1)
		}

	case "mcp":
		if len(os.Args) > 2 {
			flags.Parse(os.Args[2:])
		}
		if *flagHelp {
			flags.Usage()
			os.Exit(0)
		}
		if *flagVerbose {
			log.SetLogLevel(log.DebugLevel)
		}

		editor, err := buildEditor(ctx, *flagModel)
		if err != nil {
			log.Error("Failed to configure AI editor: %v\n", err)
			os.Exit(1)
		}
		workspace := *flagWorkspace
		if workspace == "" {
			workspace, _ = os.Getwd()
		}

		svr := mcp.NewServer(mcp.ServerOptions{
			ServerName:    "dagpilot",
			ServerVersion: version.Version,
			Workspace:     workspace,
			Editor:        editor,
		})
		if err := svr.ServeStdio(); err != nil {
			log.Error("Failed to run MCP server: %v\n", err)
			os.Exit(1)
		}

	default:
		flags.Usage()
		os.Exit(1)
	}
}

func parseArgsAndFlags(flags *flag.FlagSet, flagHelp *bool, flagVerbose *bool) (source string) {
	if len(os.Args) < 3 {
		flags.Usage()
		os.Exit(1)
	}
	source = os.Args[2]
	if len(os.Args) > 3 {
		flags.Parse(os.Args[3:])
	}

	if flagHelp != nil && *flagHelp {
		flags.Usage()
		os.Exit(0)
	}
	if flagVerbose != nil && *flagVerbose {
		log.SetLogLevel(log.DebugLevel)
	}
	return source
}

// buildIDE picks the operator surface: a remote JSON-RPC host when addr is
// set, the terminal otherwise.
func buildIDE(ctx context.Context, addr, workspace string, noInput bool) (ide.IDE, func(), error) {
	if addr != "" {
		remote, err := ide.Dial(ctx, addr)
		if err != nil {
			return nil, nil, err
		}
		return remote, func() { remote.Close() }, nil
	}
	if workspace == "" {
		var err error
		workspace, err = os.Getwd()
		if err != nil {
			return nil, nil, err
		}
	}
	return &ide.Terminal{Dir: workspace, NoInput: noInput}, func() {}, nil
}

// buildEditor configures the AI editor from a config file or the
// API_TYPE/API_KEY/MODEL_NAME/BASE_URL environment. Returns nil when no
// model is configured at all.
func buildEditor(ctx context.Context, configPath string) (sdk.Editor, error) {
	var cfg llm.ModelConfig
	if configPath != "" {
		var err error
		cfg, err = llm.LoadModelConfig(configPath)
		if err != nil {
			return nil, err
		}
	} else {
		cfg = llm.ModelConfig{
			APIType:   llm.NewModelType(os.Getenv("API_TYPE")),
			APIKey:    os.Getenv("API_KEY"),
			ModelName: os.Getenv("MODEL_NAME"),
			BaseURL:   os.Getenv("BASE_URL"),
		}
		if cfg.APIType == llm.ModelTypeUnknown && cfg.ModelName == "" {
			return nil, nil
		}
	}
	model, err := llm.NewChatModel(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return llm.NewEditor(model, llm.CallerOptions{}), nil
}
