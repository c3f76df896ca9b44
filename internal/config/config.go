package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config represents the top-level distforge.yml configuration. Every field
// has a sensible default; the file only needs to name what differs.
type Config struct {
	Version     string          `yaml:"version"`
	Interpreter string          `yaml:"interpreter,omitempty"` // Interpreter/tool selector for the setup script
	SetupScript string          `yaml:"setup_script,omitempty"`
	OutputDir   string          `yaml:"output_dir,omitempty"`
	Changelog   string          `yaml:"changelog,omitempty"`
	DestRoot    string          `yaml:"dest_root,omitempty"` // Destination-root override for install
	Jobs        int             `yaml:"jobs,omitempty"`      // Parallel worker bound for the build engine
	Commands    *CommandsConfig `yaml:"commands,omitempty"`
	Remote      *RemoteConfig   `yaml:"remote,omitempty"`
	Publish     *PublishConfig  `yaml:"publish,omitempty"`
}

// CommandsConfig overrides the external tool invocations for individual
// targets. Package-builder commands receive the staging directory as their
// final argument and must leave their artifact there under its computed
// name.
type CommandsConfig struct {
	Doc       []string `yaml:"doc,omitempty"`
	Test      []string `yaml:"test,omitempty"`
	SourceTar []string `yaml:"source_tar,omitempty"`
	SourceZip []string `yaml:"source_zip,omitempty"`
	Egg       []string `yaml:"egg,omitempty"`
	RPM       []string `yaml:"rpm,omitempty"`
	Deb       []string `yaml:"deb,omitempty"`
}

// RemoteConfig identifies the cross-platform build host for the msi target.
type RemoteConfig struct {
	Host     string   `yaml:"host"`               // ssh destination, e.g. user@winhost
	Dir      string   `yaml:"dir,omitempty"`      // Remote working directory
	Commands []string `yaml:"commands,omitempty"` // Remote build command sequence
}

// PublishConfig names the publish destinations. Empty entries disable the
// corresponding publish step.
type PublishConfig struct {
	IndexCommand []string `yaml:"index_command,omitempty"` // Package index uploader; artifact paths appended
	PPACommand   []string `yaml:"ppa_command,omitempty"`   // PPA uploader; deb path appended
	FileHost     string   `yaml:"file_host,omitempty"`     // scp destination root for the generic file host
}

// Default returns the configuration used when no distforge.yml exists.
func Default() *Config {
	cfg := &Config{Version: "1.0"}
	cfg.applyDefaults()
	return cfg
}

// Load reads and validates a distforge.yml file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return &cfg, nil
}

// Validate performs strict validation on the configuration.
func (c *Config) Validate() error {
	if c.Version != "1.0" {
		return fmt.Errorf("unsupported version: %s (expected: 1.0)", c.Version)
	}
	if c.Jobs < 0 {
		return fmt.Errorf("jobs cannot be negative: %d", c.Jobs)
	}
	if c.Remote != nil && c.Remote.Host == "" {
		return fmt.Errorf("remote section requires a host")
	}
	return nil
}

// SetRemoteHost overrides the remote build host, creating the remote
// section with defaults when the config had none.
func (c *Config) SetRemoteHost(host string) {
	if c.Remote == nil {
		c.Remote = &RemoteConfig{}
	}
	c.Remote.Host = host
	c.applyDefaults()
}

// applyDefaults fills in the standard tool selections for unset fields.
func (c *Config) applyDefaults() {
	if c.Interpreter == "" {
		c.Interpreter = "python"
	}
	if c.SetupScript == "" {
		c.SetupScript = "setup.py"
	}
	if c.OutputDir == "" {
		c.OutputDir = "dist"
	}
	if c.Changelog == "" {
		c.Changelog = "CHANGELOG.txt"
	}
	if c.Commands == nil {
		c.Commands = &CommandsConfig{}
	}
	if c.Remote != nil {
		if c.Remote.Dir == "" {
			c.Remote.Dir = "distforge-build"
		}
		if len(c.Remote.Commands) == 0 {
			c.Remote.Commands = []string{"python setup.py bdist_msi --dist-dir dist"}
		}
	}
}
