package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/dyluth/distforge/internal/config"
	"github.com/dyluth/distforge/internal/engine"
	"github.com/dyluth/distforge/internal/graph"
	"github.com/dyluth/distforge/internal/meta"
	"github.com/dyluth/distforge/internal/printer"
	"github.com/dyluth/distforge/internal/project"
	"github.com/dyluth/distforge/internal/release"
	"github.com/dyluth/distforge/internal/remote"
	"github.com/dyluth/distforge/internal/run"
	"github.com/dyluth/distforge/internal/vcs"
)

// loadConfig reads the configuration and applies command-line overrides.
// A missing default config file is not an error; built-in defaults apply.
func loadConfig() (*config.Config, error) {
	var cfg *config.Config
	var err error

	switch {
	case flagConfig != "":
		cfg, err = config.Load(flagConfig)
	default:
		if _, statErr := os.Stat("distforge.yml"); statErr == nil {
			cfg, err = config.Load("distforge.yml")
		} else {
			cfg = config.Default()
		}
	}
	if err != nil {
		return nil, printer.Error("Invalid configuration", err.Error(), nil)
	}

	if flagJobs > 0 {
		cfg.Jobs = flagJobs
	}
	if flagInterpreter != "" {
		cfg.Interpreter = flagInterpreter
	}
	if flagDestRoot != "" {
		cfg.DestRoot = flagDestRoot
	}
	if flagRemoteHost != "" {
		cfg.SetRemoteHost(flagRemoteHost)
	}
	return cfg, nil
}

// loadProject resolves metadata and wires the full target registry for one
// invocation.
func loadProject(ctx context.Context) (*project.Project, *config.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}

	root, err := os.Getwd()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get current directory: %w", err)
	}

	runner := run.NewExec()
	resolver := meta.NewResolver(runner, root, cfg.Interpreter, cfg.SetupScript)

	m, err := resolver.Resolve(ctx)
	if err != nil {
		return nil, nil, printer.Error("Failed to resolve project metadata", err.Error(), []string{
			"Check that the setup script exists and supports --name --version",
			"Check the configured interpreter is on PATH",
		})
	}

	manifest, ok := resolver.RegisterManifest(ctx, m)
	if !ok {
		printer.Warning("source manifest unavailable; format targets rebuild unconditionally\n")
		manifest = ""
	}

	var host remote.Host
	if cfg.Remote != nil {
		host = remote.NewSSHHost(runner, cfg.Remote.Host)
	}

	p, err := project.New(project.Options{
		Config:   cfg,
		Root:     root,
		Meta:     m,
		Manifest: manifest,
		Runner:   runner,
		Host:     host,
		Tree:     vcs.New(root),
		Logf:     printer.Step,
	})
	if err != nil {
		return nil, nil, printer.Error("Failed to build target graph", err.Error(), nil)
	}
	return p, cfg, nil
}

// runTarget resolves and executes one named target end to end.
func runTarget(name string) error {
	ctx := context.Background()

	p, cfg, err := loadProject(ctx)
	if err != nil {
		return err
	}

	nodes, err := p.Resolve(name)
	if err != nil {
		if graph.IsConfigurationError(err) {
			return printer.Error("Target graph configuration error", err.Error(), nil)
		}
		return err
	}

	eng := engine.New(cfg.Jobs)
	eng.Logf = printer.Step

	if err := eng.Run(ctx, nodes); err != nil {
		return reportRunError(err)
	}

	printer.Success("%s complete\n", name)
	return nil
}

func reportRunError(err error) error {
	if failure, ok := err.(*engine.ActionFailure); ok {
		if release.IsDirtyWorkingTreeError(failure.Err) {
			return printer.Error("Working tree is not clean", failure.Err.Error(), []string{
				"Commit or stash your changes, then re-run release",
			})
		}
		return printer.Error(
			fmt.Sprintf("Target '%s' failed", failure.Target),
			failure.Err.Error(),
			nil,
		)
	}
	return printer.Error("Build failed", err.Error(), nil)
}
