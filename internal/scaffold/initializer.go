package scaffold

import (
	"embed"
	"fmt"
	"os"

	"github.com/dyluth/distforge/internal/config"
)

//go:embed templates/*
var templatesFS embed.FS

// Initialize creates a starter distforge.yml in the current directory.
// If force is true, an existing distforge.yml is removed first.
func Initialize(force bool) error {
	if force {
		if _, err := os.Stat("distforge.yml"); err == nil {
			fmt.Println("⚠️  Removing existing distforge.yml...")
			if err := os.Remove("distforge.yml"); err != nil {
				return fmt.Errorf("failed to remove distforge.yml: %w", err)
			}
		}
	}

	if _, err := os.Stat("distforge.yml"); err == nil {
		return fmt.Errorf("distforge.yml already exists (use --force to replace it)")
	}

	content, err := templatesFS.ReadFile("templates/distforge.yml.tmpl")
	if err != nil {
		return fmt.Errorf("failed to read distforge.yml template: %w", err)
	}
	if err := os.WriteFile("distforge.yml", content, 0644); err != nil {
		return fmt.Errorf("failed to write distforge.yml: %w", err)
	}

	// The template must stay loadable; catch drift between the template
	// and the config schema immediately.
	if _, err := config.Load("distforge.yml"); err != nil {
		return fmt.Errorf("generated config is invalid: %w", err)
	}
	return nil
}
