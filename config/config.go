// Package config defines the analyzer's tool configuration. Configuration
// is an explicit structure handed to the pieces that need it, not
// process-wide mutable state.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Config is the top-level tool configuration. Fields left out of the config
// file keep their defaults.
type Config struct {
	// Parallelism bounds the number of procedures analyzed concurrently.
	// Zero means one worker per CPU.
	Parallelism int `yaml:"parallelism"`

	// LogLevel is a logrus level name (panic..trace).
	LogLevel string `yaml:"log-level"`

	// NoColor disables colorized report output.
	NoColor bool `yaml:"no-color"`

	// Analyses selects the analyses to run by default (live, reaching,
	// pointer). Empty means all.
	Analyses []string `yaml:"analyses"`

	Reports Reports `yaml:"reports"`
}

// Reports configures report generation.
type Reports struct {
	// Dir is the directory DOT/image reports are written to.
	Dir string `yaml:"dir"`

	// DotFormat is the image format rendered from DOT output (svg, png).
	DotFormat string `yaml:"dot-format"`

	// Facts controls whether DOT nodes are annotated with analysis facts.
	Facts bool `yaml:"facts"`
}

// Default returns the configuration used when no config file is given.
func Default() Config {
	return Config{
		LogLevel: "info",
		Reports: Reports{
			DotFormat: "svg",
			Facts:     true,
		},
	}
}

// Load reads a YAML configuration file on top of the defaults. Unknown keys
// are rejected.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	if err := unmarshalStrict(data, &cfg); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// unmarshalStrict decodes YAML rejecting unknown keys. An empty file keeps
// the defaults.
func unmarshalStrict(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// Apply installs the logging and color settings described by the config.
func (c Config) Apply() error {
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return fmt.Errorf("log-level: %w", err)
	}
	logrus.SetLevel(level)
	color.NoColor = c.NoColor
	return nil
}
