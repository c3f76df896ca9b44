package release

import (
	"crypto/md5"
	"crypto/sha256"
	"fmt"
	"hash"
	"io"
	"os"
	"path/filepath"

	"github.com/dyluth/distforge/internal/naming"
)

// checksumAlgorithms are the two digest algorithms published alongside each
// artifact on generic file hosts.
var checksumAlgorithms = []struct {
	name string
	new  func() hash.Hash
}{
	{"md5", md5.New},
	{"sha256", sha256.New},
}

// WriteChecksums computes the artifact's digest side-files next to the
// artifact and returns their paths. Each side-file holds one line in the
// conventional "digest  filename" form.
func WriteChecksums(artifactPath string) ([]string, error) {
	var sidePaths []string
	for _, algo := range checksumAlgorithms {
		digest, err := fileDigest(artifactPath, algo.new())
		if err != nil {
			return nil, fmt.Errorf("failed to digest %s: %w", artifactPath, err)
		}

		sidePath := naming.ChecksumPath(artifactPath, algo.name)
		line := fmt.Sprintf("%s  %s\n", digest, filepath.Base(artifactPath))
		if err := os.WriteFile(sidePath, []byte(line), 0644); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", sidePath, err)
		}
		sidePaths = append(sidePaths, sidePath)
	}
	return sidePaths, nil
}

func fileDigest(path string, h hash.Hash) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return fmt.Sprintf("%x", h.Sum(nil)), nil
}
