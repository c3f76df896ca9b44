package release

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dyluth/distforge/internal/meta"
	"github.com/dyluth/distforge/internal/naming"
	"github.com/dyluth/distforge/internal/run"
)

// Publisher pushes built artifacts to their destinations: the language
// package index, the archive PPA, and a generic file host. Steps run in
// order and are independent; a failure partway through neither retries
// earlier steps nor rolls back artifacts already published. The operator
// re-runs the remaining steps.
type Publisher struct {
	Runner    run.Runner
	Root      string
	OutputDir string

	// IndexCommand uploads to the package index; artifact paths are
	// appended. Empty disables the step.
	IndexCommand []string

	// PPACommand uploads the deb to the archive PPA; the artifact path is
	// appended. Empty disables the step.
	PPACommand []string

	// FileHost is an scp destination root (user@host:/path) for the
	// generic file host. Empty disables the step.
	FileHost string

	// Logf receives progress lines. Nil disables progress output.
	Logf func(format string, args ...any)
}

// indexFormats go to the package index, ppaFormats to the archive PPA, and
// hostFormats to the generic file host with checksum side-files.
var (
	indexFormats = []naming.Format{naming.SourceTar, naming.Egg}
	ppaFormats   = []naming.Format{naming.Deb}
	hostFormats  = []naming.Format{naming.SourceTar, naming.SourceZip, naming.RPM, naming.MSI}
)

// Publish pushes every artifact for the resolved metadata. All artifacts
// must already exist; the caller builds them via the dist target first, so
// a build failure can never leave a destination half-updated.
func (p *Publisher) Publish(ctx context.Context, m meta.Metadata) error {
	if err := p.publishIndex(ctx, m); err != nil {
		return err
	}
	if err := p.publishPPA(ctx, m); err != nil {
		return err
	}
	return p.publishFileHost(ctx, m)
}

func (p *Publisher) publishIndex(ctx context.Context, m meta.Metadata) error {
	if len(p.IndexCommand) == 0 {
		p.logf("package index destination not configured, skipping")
		return nil
	}

	args := append([]string(nil), p.IndexCommand[1:]...)
	for _, f := range indexFormats {
		args = append(args, naming.ArtifactPath(p.OutputDir, m, f))
	}
	p.logf("uploading to package index")
	if err := p.Runner.Run(ctx, p.Root, p.IndexCommand[0], args...); err != nil {
		return fmt.Errorf("package index upload failed: %w", err)
	}
	return nil
}

func (p *Publisher) publishPPA(ctx context.Context, m meta.Metadata) error {
	if len(p.PPACommand) == 0 {
		p.logf("PPA destination not configured, skipping")
		return nil
	}

	args := append([]string(nil), p.PPACommand[1:]...)
	for _, f := range ppaFormats {
		args = append(args, naming.ArtifactPath(p.OutputDir, m, f))
	}
	p.logf("uploading to PPA")
	if err := p.Runner.Run(ctx, p.Root, p.PPACommand[0], args...); err != nil {
		return fmt.Errorf("PPA upload failed: %w", err)
	}
	return nil
}

// publishFileHost copies each artifact plus its two checksum side-files to
// the generic file host, then updates the latest-version pointer record.
func (p *Publisher) publishFileHost(ctx context.Context, m meta.Metadata) error {
	if p.FileHost == "" {
		p.logf("file host destination not configured, skipping")
		return nil
	}

	for _, f := range hostFormats {
		artifact := naming.ArtifactPath(p.OutputDir, m, f)
		sides, err := WriteChecksums(artifact)
		if err != nil {
			return err
		}
		p.logf("uploading %s", filepath.Base(artifact))
		for _, path := range append([]string{artifact}, sides...) {
			if err := p.upload(ctx, path); err != nil {
				return err
			}
		}
	}

	return p.updateLatestPointer(ctx, m)
}

// updateLatestPointer writes the "latest version" record and pushes it to
// the file host. The pointer is written last, after every artifact it could
// refer to has landed.
func (p *Publisher) updateLatestPointer(ctx context.Context, m meta.Metadata) error {
	pointer := filepath.Join(p.OutputDir, naming.LatestPointerName(m))
	if err := os.WriteFile(pointer, []byte(m.Version+"\n"), 0644); err != nil {
		return fmt.Errorf("failed to write latest pointer: %w", err)
	}
	p.logf("updating latest pointer to %s", m.Version)
	return p.upload(ctx, pointer)
}

func (p *Publisher) upload(ctx context.Context, localPath string) error {
	dest := p.FileHost + "/" + filepath.Base(localPath)
	if err := p.Runner.Run(ctx, p.Root, "scp", "-q", localPath, dest); err != nil {
		return fmt.Errorf("failed to upload %s: %w", localPath, err)
	}
	return nil
}

func (p *Publisher) logf(format string, args ...any) {
	if p.Logf != nil {
		p.Logf(format, args...)
	}
}
