// Package config provides a centralized entrypoint for the application parameters.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"go.yaml.in/yaml/v3"
)

// Runtime modes.
const (
	ModeLambda  = "lambda"
	ModeService = "service"
)

var (
	// Global is a struct that contains the global configuration.
	Global global
	// Gateway is a struct that contains the configuration for the event translation.
	Gateway gateway
	// Overlay is a struct that contains the configuration for the environ overlay.
	Overlay overlay
	// Archive is a struct that contains the configuration for the invocation archive.
	Archive archive
	// Service is a struct that contains the configuration for the service mode.
	Service service
)

type global struct {
	// Mode is the runtime mode of the application.
	Mode string `yaml:"mode,omitempty" default:"lambda" validate:"oneof=lambda service"`
	// Logging is a struct that contains the logging configuration.
	Logging struct {
		// Verbosity is the verbosity level of the application. It represents slog levels.
		Verbosity int `yaml:"verbosity,omitempty" validate:"min=0"`
		// CallerTrace is a flag that enables the caller trace in the logger.
		CallerTrace bool `yaml:"callerTrace,omitempty"`
	} `yaml:"logging,omitempty"`
}

type gateway struct {
	// BodyMode is either "first" (keep the first body chunk) or "all".
	BodyMode string `yaml:"bodyMode,omitempty" default:"first" validate:"oneof=first all FIRST ALL"`
	// DefaultHost seeds HTTP_HOST when the event has no Host header.
	DefaultHost string `yaml:"defaultHost,omitempty" default:"default" validate:"required"`
	// ForwardedAddrHeader is the client address fallback header.
	ForwardedAddrHeader string `yaml:"forwardedAddrHeader,omitempty" default:"X-Envoy-External-Address"`
	// Environ holds static variables seeded into every environ, e.g. SCRIPT_NAME.
	Environ map[string]string `yaml:"environ,omitempty"`
}

type overlay struct {
	// SSMKey is the SSM parameter holding a JSON object of extra environ variables.
	SSMKey string `yaml:"ssmKey,omitempty"`
	// TTL is the minimum interval between two parameter loads.
	TTL time.Duration `yaml:"ttl,omitempty" default:"5m" validate:"min=0"`
}

type archive struct {
	Enabled    bool   `yaml:"enabled,omitempty"`
	BucketName string `yaml:"bucketName,omitempty" validate:"required_if=Enabled true"`
	Prefix     string `yaml:"prefix,omitempty" default:"invocations/"`
}

type service struct {
	Path      string        `yaml:"path,omitempty" default:"/" validate:"startswith=/"`
	EventPath string        `yaml:"eventPath,omitempty" default:"/__gateway__" validate:"omitempty,startswith=/"`
	Addr      string        `yaml:"addr,omitempty"`
	Port      string        `yaml:"port,omitempty" default:"8080" validate:"required,numeric"`
	Timeout   time.Duration `yaml:"timeout,omitempty" default:"5s" validate:"min=0"`
}

// SetDefaults sets the default values for the configuration.
func SetDefaults() error {
	return errors.Join(
		defaults.Set(&Global),
		defaults.Set(&Gateway),
		defaults.Set(&Overlay),
		defaults.Set(&Archive),
		defaults.Set(&Service),
	)
}

// Validate checks the configuration against the constraints declared in its
// validate tags.
func Validate() error {
	v := validator.New()
	return errors.Join(
		v.Struct(Global),
		v.Struct(Gateway),
		v.Struct(Overlay),
		v.Struct(Archive),
		v.Struct(Service),
	)
}

// LoadFromFile loads the configuration from a file.
func LoadFromFile(path string) error {
	if len(path) == 0 {
		return nil
	}
	fstat, err := os.Stat(path)
	if err != nil {
		return nil //nolint:nilerr // If the file does not exist, we ignore it.
	}
	if fstat.IsDir() {
		return fmt.Errorf("configuration file %s is a directory", path)
	}
	if !fstat.Mode().IsRegular() {
		return fmt.Errorf("configuration file %s is not a regular file", path)
	}

	content, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("failed to read configuration file %s: %w", path, err)
	}
	type all struct {
		Global  global  `yaml:"global,omitempty"`
		Gateway gateway `yaml:"gateway,omitempty"`
		Overlay overlay `yaml:"overlay,omitempty"`
		Archive archive `yaml:"archive,omitempty"`
		Service service `yaml:"service,omitempty"`
	}
	var a all
	if err = yaml.Unmarshal(content, &a); err != nil {
		return fmt.Errorf("failed to unmarshal configuration file %s: %w", path, err)
	}
	Global = a.Global
	Gateway = a.Gateway
	Overlay = a.Overlay
	Archive = a.Archive
	Service = a.Service

	return nil
}
