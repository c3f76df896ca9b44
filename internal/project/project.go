// Package project registers the standard target set against the build
// graph: the six distribution formats, the developer conveniences, and the
// release and publish pipelines.
package project

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"

	"github.com/dyluth/distforge/internal/config"
	"github.com/dyluth/distforge/internal/fsutil"
	"github.com/dyluth/distforge/internal/graph"
	"github.com/dyluth/distforge/internal/meta"
	"github.com/dyluth/distforge/internal/naming"
	"github.com/dyluth/distforge/internal/release"
	"github.com/dyluth/distforge/internal/remote"
	"github.com/dyluth/distforge/internal/run"
)

// Options carries the collaborators a Project wires together.
type Options struct {
	Config *config.Config
	Root   string
	Meta   meta.Metadata

	// Manifest is the source file manifest path, or empty when manifest
	// registration failed. Without it, format targets degrade to
	// always-stale.
	Manifest string

	Runner run.Runner

	// Host is the remote build host, nil unless configured. Only the msi
	// target needs it.
	Host remote.Host

	// Tree is the version-control collaborator for the release pipeline.
	Tree release.WorkingTree

	// Logf receives progress lines. Nil disables progress output.
	Logf func(format string, args ...any)
}

// Project is a fully wired target registry for one invocation.
type Project struct {
	Registry *graph.Registry

	cfg       *config.Config
	root      string
	meta      meta.Metadata
	manifest  string
	runner    run.Runner
	host      remote.Host
	tree      release.WorkingTree
	outputDir string
	logf      func(format string, args ...any)
}

// New builds the target registry for the project. Registration is complete
// before any action can run, so configuration errors surface up front.
func New(opts Options) (*Project, error) {
	p := &Project{
		Registry:  graph.NewRegistry(),
		cfg:       opts.Config,
		root:      opts.Root,
		meta:      opts.Meta,
		manifest:  opts.Manifest,
		runner:    opts.Runner,
		host:      opts.Host,
		tree:      opts.Tree,
		outputDir: filepath.Join(opts.Root, opts.Config.OutputDir),
		logf:      opts.Logf,
	}
	if err := p.register(); err != nil {
		return nil, err
	}
	return p, nil
}

// Resolve returns the executable closure for a named target.
func (p *Project) Resolve(name string) ([]*graph.BuildNode, error) {
	return p.Registry.Resolve(name)
}

// TargetNames returns every registered target name, sorted.
func (p *Project) TargetNames() []string {
	names := p.Registry.Names()
	sort.Strings(names)
	return names
}

// ArtifactPath returns the output path for a distribution format.
func (p *Project) ArtifactPath(f naming.Format) string {
	return naming.ArtifactPath(p.outputDir, p.meta, f)
}

func (p *Project) register() error {
	setup := p.setupCommand

	targets := []graph.Target{
		{Name: "install", Phony: true, Action: p.installAction()},
		{Name: "develop", Phony: true, Action: p.commandAction(setup("develop"))},
		{Name: "test", Phony: true, Action: p.commandAction(p.override(p.cfg.Commands.Test, setup("test")))},
		{Name: "doc", Phony: true, Action: p.commandAction(p.override(p.cfg.Commands.Doc, setup("build_sphinx")))},
		{Name: "clean", Phony: true, Action: p.cleanAction()},
	}

	builders := []struct {
		format  naming.Format
		command []string
	}{
		{naming.SourceTar, p.override(p.cfg.Commands.SourceTar, setup("sdist", "--formats=gztar", "--dist-dir"))},
		{naming.SourceZip, p.override(p.cfg.Commands.SourceZip, setup("sdist", "--formats=zip", "--dist-dir"))},
		{naming.Egg, p.override(p.cfg.Commands.Egg, setup("bdist_egg", "--dist-dir"))},
		{naming.RPM, p.override(p.cfg.Commands.RPM, setup("bdist_rpm", "--source-only", "--dist-dir"))},
		{naming.Deb, p.override(p.cfg.Commands.Deb, setup("--command-packages=stdeb.command", "bdist_deb", "--dist-dir"))},
	}

	var distDeps []string
	for _, b := range builders {
		artifact := p.ArtifactPath(b.format)
		targets = append(targets,
			graph.Target{
				Name:   artifact,
				Files:  p.sourceInputs(),
				Phony:  p.manifest == "",
				Action: p.builderAction(b.format, b.command),
			},
			// Short alias so the command surface can name the format.
			graph.Target{Name: b.format.String(), Phony: true, Deps: []string{artifact}},
		)
		distDeps = append(distDeps, artifact)
	}

	msiArtifact := p.ArtifactPath(naming.MSI)
	targets = append(targets,
		graph.Target{
			Name:   msiArtifact,
			Files:  p.sourceInputs(),
			Phony:  p.manifest == "",
			Action: p.msiAction(),
		},
		graph.Target{Name: naming.MSI.String(), Phony: true, Deps: []string{msiArtifact}},
	)
	distDeps = append(distDeps, msiArtifact)

	targets = append(targets,
		graph.Target{Name: "source", Phony: true, Deps: []string{p.ArtifactPath(naming.SourceTar), p.ArtifactPath(naming.SourceZip)}},
		graph.Target{Name: "dist", Phony: true, Deps: distDeps},
		graph.Target{Name: "release", Phony: true, Deps: []string{"clean"}, Action: p.releaseAction()},
		graph.Target{Name: "publish", Phony: true, Deps: []string{"dist"}, Action: p.publishAction()},
	)

	for _, t := range targets {
		if err := p.Registry.Register(t); err != nil {
			return err
		}
	}
	return nil
}

// setupCommand builds an interpreter invocation of the setup script.
func (p *Project) setupCommand(args ...string) []string {
	return append([]string{p.cfg.Interpreter, p.cfg.SetupScript}, args...)
}

// override prefers a configured command over the default one.
func (p *Project) override(configured, fallback []string) []string {
	if len(configured) > 0 {
		return configured
	}
	return fallback
}

// sourceInputs are the file prerequisites every format target shares: the
// setup script and, when registration succeeded, the source manifest.
func (p *Project) sourceInputs() []string {
	inputs := []string{filepath.Join(p.root, p.cfg.SetupScript)}
	if p.manifest != "" {
		inputs = append(inputs, p.manifest)
	}
	return inputs
}

// commandAction runs one external invocation in the project root.
func (p *Project) commandAction(argv []string) graph.Action {
	return func(ctx context.Context) error {
		return p.runner.Run(ctx, p.root, argv[0], argv[1:]...)
	}
}

func (p *Project) installAction() graph.Action {
	argv := p.setupCommand("install")
	if p.cfg.DestRoot != "" {
		argv = append(argv, "--root", p.cfg.DestRoot)
	}
	return p.commandAction(argv)
}

// builderAction invokes a package builder with a staging directory appended
// as its final argument, then promotes the expected artifact into the output
// directory with an atomic rename. The builder either fully produces its
// artifact or is considered to have not run.
func (p *Project) builderAction(f naming.Format, argv []string) graph.Action {
	return func(ctx context.Context) error {
		stage, err := fsutil.StageDir(p.outputDir)
		if err != nil {
			return err
		}
		defer os.RemoveAll(stage)

		args := append(append([]string(nil), argv[1:]...), stage)
		if err := p.runner.Run(ctx, p.root, argv[0], args...); err != nil {
			return err
		}

		staged := filepath.Join(stage, naming.ArtifactName(p.meta, f))
		if _, err := os.Stat(staged); err != nil {
			return fmt.Errorf("builder did not produce %s: %w", naming.ArtifactName(p.meta, f), err)
		}
		return fsutil.Promote(staged, p.ArtifactPath(f))
	}
}

// msiAction delegates the msi build to the remote host through a fresh
// session. The remote tree is wiped and resynced every time, so partial
// state from an interrupted run is never trusted.
func (p *Project) msiAction() graph.Action {
	return func(ctx context.Context) error {
		if p.host == nil || p.cfg.Remote == nil {
			return fmt.Errorf("msi target requires a remote host (set remote.host in distforge.yml)")
		}

		name := naming.ArtifactName(p.meta, naming.MSI)
		session := remote.NewSession(
			p.host,
			p.root,
			p.cfg.Remote.Dir,
			path.Join(p.cfg.Remote.Dir, "dist", name),
			p.ArtifactPath(naming.MSI),
		)
		return session.Execute(ctx, p.cfg.Remote.Commands)
	}
}

// cleanAction removes everything the build produces: the output directory,
// the build tree, and the registration metadata.
func (p *Project) cleanAction() graph.Action {
	return func(ctx context.Context) error {
		for _, dir := range []string{
			p.outputDir,
			filepath.Join(p.root, "build"),
			filepath.Join(p.root, p.meta.Name+".egg-info"),
		} {
			if err := os.RemoveAll(dir); err != nil {
				return fmt.Errorf("failed to remove %s: %w", dir, err)
			}
		}
		return nil
	}
}

func (p *Project) releaseAction() graph.Action {
	return func(ctx context.Context) error {
		if p.tree == nil {
			return fmt.Errorf("release requires a version-control client")
		}
		releaser := &release.Releaser{
			Tree:      p.tree,
			Changelog: filepath.Join(p.root, p.cfg.Changelog),
		}
		return releaser.Release(ctx, p.meta)
	}
}

func (p *Project) publishAction() graph.Action {
	return func(ctx context.Context) error {
		publisher := &release.Publisher{
			Runner:    p.runner,
			Root:      p.root,
			OutputDir: p.outputDir,
			Logf:      p.logf,
		}
		if p.cfg.Publish != nil {
			publisher.IndexCommand = p.cfg.Publish.IndexCommand
			publisher.PPACommand = p.cfg.Publish.PPACommand
			publisher.FileHost = p.cfg.Publish.FileHost
		}
		return publisher.Publish(ctx, p.meta)
	}
}
