// Package naming derives every artifact filename from resolved project
// metadata. The derivations are pure functions: any component that needs an
// output path recomputes it here instead of receiving it as passed state, so
// two components invoked independently can never disagree on a filename.
package naming

import (
	"fmt"
	"path/filepath"

	"github.com/dyluth/distforge/internal/meta"
)

// Format identifies one of the distribution formats the project ships in.
type Format int

const (
	SourceTar Format = iota
	SourceZip
	Egg
	RPM
	Deb
	MSI
)

// Formats returns all distribution formats in their canonical build order.
func Formats() []Format {
	return []Format{SourceTar, SourceZip, Egg, RPM, Deb, MSI}
}

// String returns the target name used for the format on the command surface.
func (f Format) String() string {
	switch f {
	case SourceTar:
		return "source-tar"
	case SourceZip:
		return "source-zip"
	case Egg:
		return "egg"
	case RPM:
		return "rpm"
	case Deb:
		return "deb"
	case MSI:
		return "msi"
	default:
		return fmt.Sprintf("format(%d)", int(f))
	}
}

// ArtifactName returns the filename for the given format.
func ArtifactName(m meta.Metadata, f Format) string {
	switch f {
	case SourceTar:
		return fmt.Sprintf("%s-%s.tar.gz", m.Name, m.Version)
	case SourceZip:
		return fmt.Sprintf("%s-%s.zip", m.Name, m.Version)
	case Egg:
		return fmt.Sprintf("%s-%s-%s.egg", m.Name, m.Version, m.PlatformTag)
	case RPM:
		return fmt.Sprintf("%s-%s-1.src.rpm", m.Name, m.Version)
	case Deb:
		return fmt.Sprintf("%s_%s-1~ppa1_all.deb", m.Name, m.Version)
	case MSI:
		return fmt.Sprintf("%s-%s.msi", m.Name, m.Version)
	default:
		panic(fmt.Sprintf("naming: unknown format %d", int(f)))
	}
}

// ArtifactPath returns the full output path for the given format.
func ArtifactPath(outputDir string, m meta.Metadata, f Format) string {
	return filepath.Join(outputDir, ArtifactName(m, f))
}

// ChecksumPath returns the side-file path for an artifact and a digest
// algorithm name (for example "md5" or "sha256").
func ChecksumPath(artifactPath, algorithm string) string {
	return artifactPath + "." + algorithm
}

// LatestPointerName returns the name of the destination record that points
// at the most recently published version.
func LatestPointerName(m meta.Metadata) string {
	return m.Name + ".latest"
}
