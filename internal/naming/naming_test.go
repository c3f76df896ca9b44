package naming

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dyluth/distforge/internal/meta"
)

var demo = meta.Metadata{Name: "demo", Version: "1.0", PlatformTag: "py2.7"}

func TestArtifactName_Table(t *testing.T) {
	tests := []struct {
		format Format
		want   string
	}{
		{SourceTar, "demo-1.0.tar.gz"},
		{SourceZip, "demo-1.0.zip"},
		{Egg, "demo-1.0-py2.7.egg"},
		{RPM, "demo-1.0-1.src.rpm"},
		{Deb, "demo_1.0-1~ppa1_all.deb"},
		{MSI, "demo-1.0.msi"},
	}

	for _, tt := range tests {
		t.Run(tt.format.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, ArtifactName(demo, tt.format))
		})
	}
}

func TestArtifactPath_Deterministic(t *testing.T) {
	// Two independent calls with identical inputs must yield byte-identical
	// paths; components recompute names instead of passing them around.
	for _, f := range Formats() {
		first := ArtifactPath("dist", demo, f)
		second := ArtifactPath("dist", demo, f)
		assert.Equal(t, first, second)
		assert.Equal(t, filepath.Join("dist", ArtifactName(demo, f)), first)
	}
}

func TestFormats_CoversAllSix(t *testing.T) {
	assert.Len(t, Formats(), 6)
}

func TestChecksumPath(t *testing.T) {
	assert.Equal(t, "dist/demo-1.0.zip.sha256", ChecksumPath("dist/demo-1.0.zip", "sha256"))
	assert.Equal(t, "dist/demo-1.0.zip.md5", ChecksumPath("dist/demo-1.0.zip", "md5"))
}

func TestLatestPointerName(t *testing.T) {
	assert.Equal(t, "demo.latest", LatestPointerName(demo))
}
