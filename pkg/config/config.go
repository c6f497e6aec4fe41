// Package config loads assettool configuration.
//
// Configuration comes from a single YAML file named by the --config flag or
// the ASSETTOOL_CONFIG environment variable. Without either, Default is used.
// Command-line flags are applied on top by the caller.
package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/goopsie/assetdecode/pkg/mesh"
)

// EnvVar names the environment variable holding the config file path.
const EnvVar = "ASSETTOOL_CONFIG"

// Output formats for decoded trees.
const (
	OutputJSON = "json"
	OutputYAML = "yaml"
	OutputCBOR = "cbor"
)

// Config is the assettool configuration.
type Config struct {
	// Workers bounds concurrent decodes in batch mode.
	// Default: GOMAXPROCS
	Workers int `yaml:"workers"`

	// Output selects the encoding of decoded trees: json, yaml or cbor.
	// Default: json
	Output string `yaml:"output"`

	// LogLevel is one of debug, info, warn, error.
	// Default: warn
	LogLevel string `yaml:"log_level"`

	// Unwrap removes gzip and zstd transport envelopes before sniffing.
	// Default: true
	Unwrap bool `yaml:"unwrap"`

	Mesh MeshConfig `yaml:"mesh"`
}

// MeshConfig configures OBJ export.
type MeshConfig struct {
	// Precision is the number of decimal places per coordinate.
	// Default: 6
	Precision int `yaml:"precision"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Workers:  runtime.GOMAXPROCS(0),
		Output:   OutputJSON,
		LogLevel: "warn",
		Unwrap:   true,
		Mesh: MeshConfig{
			Precision: mesh.DefaultPrecision,
		},
	}
}

// Load loads the file named by path, or by ASSETTOOL_CONFIG when path is
// empty. With neither set it returns Default.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv(EnvVar)
	}
	if path == "" {
		return Default(), nil
	}
	return LoadFile(path)
}

// LoadFile loads configuration from a specific file. Fields the file omits
// keep their default values.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if c.Workers < 1 {
		errs = append(errs, fmt.Errorf("workers must be at least 1, got %d", c.Workers))
	}
	switch c.Output {
	case OutputJSON, OutputYAML, OutputCBOR:
	default:
		errs = append(errs, fmt.Errorf("invalid output: %q", c.Output))
	}
	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("invalid log_level: %w", err))
	}
	if c.Mesh.Precision < 0 || c.Mesh.Precision > 17 {
		errs = append(errs, fmt.Errorf("mesh.precision must be between 0 and 17, got %d", c.Mesh.Precision))
	}

	return errors.Join(errs...)
}

// NewLogger builds a console logger at the configured level writing to
// stderr.
func (c *Config) NewLogger() (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("parse log level: %w", err)
	}
	zc := zap.NewDevelopmentConfig()
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.DisableStacktrace = true
	zc.OutputPaths = []string{"stderr"}
	return zc.Build()
}
