package release

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// UpdateChangelog ensures the changelog's top entry names version. If the
// entry already exists nothing is rewritten and changed is false, so release
// can be re-run safely after a partial failure. A missing changelog file is
// created.
func UpdateChangelog(path, version string, date time.Time) (changed bool, err error) {
	existing, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return false, fmt.Errorf("failed to read changelog: %w", err)
	}

	header := fmt.Sprintf("Release %s (%s)", version, date.Format("2006-01-02"))
	prefix := fmt.Sprintf("Release %s (", version)
	if strings.HasPrefix(strings.TrimSpace(string(existing)), prefix) {
		return false, nil
	}

	var content strings.Builder
	content.WriteString(header + "\n")
	content.WriteString(strings.Repeat("=", len(header)) + "\n\n")
	if len(existing) > 0 {
		content.WriteString(string(existing))
	}

	if err := os.WriteFile(path, []byte(content.String()), 0644); err != nil {
		return false, fmt.Errorf("failed to write changelog: %w", err)
	}
	return true, nil
}
