// Command maos-gate is the hook-dispatch security gate binary: one
// subcommand per hook event tag, each reading a single JSON document
// from stdin and exiting with the fixed exit-code contract.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/maos-gate/gate/internal/dispatch"
	"github.com/maos-gate/gate/internal/gateconfig"
	"github.com/maos-gate/gate/internal/gateerr"
	"github.com/maos-gate/gate/internal/hookevent"
	"github.com/maos-gate/gate/internal/metrics"
	"github.com/maos-gate/gate/internal/pathvalidator"
	"github.com/maos-gate/gate/internal/security"
	"github.com/maos-gate/gate/internal/stdinreader"
)

var rootCmd = &cobra.Command{
	Use:   "maos-gate",
	Short: "Hook-dispatch security gate for an LLM coding-tool host",
	Long: `maos-gate stands between a host LLM-driven coding tool and the tools it is
about to invoke. Each subcommand corresponds to one hook event; it reads
exactly one JSON document from stdin, validates it against a layered
security policy, and exits with a stable, meaningful code.`,
}

var configPath string
var overlayPath string

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to the JSON configuration document")
	rootCmd.PersistentFlags().StringVar(&overlayPath, "overlay", "", "path to an optional YAML configuration overlay")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("Error: %v", err))
		os.Exit(int(gateerr.GeneralError))
	}
}

// gateRuntime bundles the collaborators every subcommand needs: loaded
// configuration, the security orchestrator, the handler registry, the
// metrics collector, the resource-budget validator, and the dispatcher
// built over them.
type gateRuntime struct {
	cfg        *gateconfig.Config
	dispatcher *dispatch.Dispatcher
	resources  *security.ResourceValidator
}

func newGateRuntime() (*gateRuntime, error) {
	cfg, err := gateconfig.Load(configPath, overlayPath)
	if err != nil {
		return nil, err
	}

	var validator *pathvalidator.Validator
	if cfg.System.WorkspaceRoot != "" {
		validator, err = pathvalidator.New([]string{cfg.System.WorkspaceRoot}, cfg.Security.BlockedPaths)
		if err != nil {
			return nil, err
		}
	} else if len(cfg.Security.BlockedPaths) > 0 {
		validator, err = pathvalidator.New(nil, cfg.Security.BlockedPaths)
		if err != nil {
			return nil, err
		}
	}

	orchestrator := security.New(validator, cfg.System.WorkspaceRoot)
	collector := metrics.NewCollector()

	registry := dispatch.NewRegistry()
	registry.Register(hookevent.PreToolUse, &toolUseHandler{security: orchestrator})
	registry.Register(hookevent.PostToolUse, &toolUseHandler{security: orchestrator})
	registry.Register(hookevent.Notification, &notifyHandler{})
	registry.Register(hookevent.Stop, &stopHandler{chat: stopChat})
	registry.Register(hookevent.SubagentStop, &passthroughHandler{})
	registry.Register(hookevent.UserPromptSubmit, &userPromptSubmitHandler{
		sessions: dispatch.NoopSessionStore{},
		validate: userPromptSubmitValidate,
	})
	registry.Register(hookevent.PreCompact, &passthroughHandler{})
	registry.Register(hookevent.SessionStart, &passthroughHandler{})

	resources := security.NewResourceValidator(security.ResourceLimits{
		MaxMemoryBytes: cfg.System.MaxMemoryBytes,
		MaxExecutionMs: cfg.System.MaxExecutionTimeMs,
		MaxFileCount:   cfg.System.MaxFileCount,
	})

	return &gateRuntime{
		cfg:        cfg,
		dispatcher: dispatch.New(registry, collector),
		resources:  resources,
	}, nil
}

// fileCountForTag approximates the number of files a single hook
// invocation touches: the CLI dispatches exactly one tool call per
// invocation, and only the tool-use events carry a file-path parameter
// at all in this schema.
func fileCountForTag(tag hookevent.Tag) int {
	switch tag {
	case hookevent.PreToolUse, hookevent.PostToolUse:
		return 1
	default:
		return 0
	}
}

// runHook is the shared body every subcommand's RunE delegates to: build
// the runtime, dispatch against stdin, translate the result to a
// sanitised stderr message and the fixed exit code.
func runHook(tag hookevent.Tag) error {
	rt, err := newGateRuntime()
	if err != nil {
		exit(err)
		return nil
	}

	limits := stdinreader.Limits{
		MaxInputSizeMB:      rt.cfg.Hooks.MaxInputSizeMB,
		MaxJSONDepth:        rt.cfg.Hooks.MaxJSONDepth,
		StdinReadTimeoutMs:  rt.cfg.Hooks.StdinReadTimeoutMs,
		MaxProcessingTimeMs: rt.cfg.Hooks.MaxProcessingTimeMs,
	}
	reader := stdinreader.New(os.Stdin, limits)

	start := time.Now()
	output, dispatchErr := rt.dispatcher.Dispatch(context.Background(), tag, reader)
	if dispatchErr != nil {
		exit(dispatchErr)
		return nil
	}

	if err := rt.resources.ValidateExecutionTime(time.Since(start).Milliseconds()); err != nil {
		exit(err)
		return nil
	}
	if mem, ok := security.MemoryUsage(); ok {
		if err := rt.resources.ValidateMemory(mem); err != nil {
			exit(err)
			return nil
		}
	}
	if err := rt.resources.ValidateFileCount(fileCountForTag(tag)); err != nil {
		exit(err)
		return nil
	}

	if output != "" {
		fmt.Fprintln(os.Stdout, output)
	}
	os.Exit(int(gateerr.Success))
	return nil
}

// exit prints the sanitised message for err and terminates the process
// with its mapped exit code. It never returns.
func exit(err error) {
	fmt.Fprintln(os.Stderr, gateerr.Sanitized(err))
	os.Exit(int(gateerr.Code(err)))
}
