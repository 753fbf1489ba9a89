// ABOUTME: Settings loading with global + project config merge
// ABOUTME: YAML-based configuration; env overrides applied after ${VAR} expansion

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults applied by WithDefaults.
const (
	DefaultModel         = "gemini-3-flash-preview"
	DefaultMaxIterations = 5
	DefaultTimeout       = 5 * time.Minute
)

// Settings holds the merged configuration.
type Settings struct {
	APIKey            string            `yaml:"api_key,omitempty"`
	BaseURL           string            `yaml:"base_url,omitempty"`
	Model             string            `yaml:"model,omitempty"`
	Agent             string            `yaml:"agent,omitempty"`
	SystemInstruction string            `yaml:"system_instruction,omitempty"`
	MaxIterations     int               `yaml:"max_iterations,omitempty"`
	Stream            *bool             `yaml:"stream,omitempty"`
	Store             *bool             `yaml:"store,omitempty"`
	Temperature       *float64          `yaml:"temperature,omitempty"`
	LogLevel          string            `yaml:"log_level,omitempty"`
	Timeout           time.Duration     `yaml:"timeout,omitempty"`
	Headers           map[string]string `yaml:"headers,omitempty"`
}

// Load reads and merges global and project-local settings, expands ${VAR}
// references and applies environment overrides. Project settings override
// global settings.
func Load(projectRoot string) (*Settings, error) {
	global, err := loadFile(GlobalConfigFile())
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading global config: %w", err)
	}

	project, err := loadFile(ProjectConfigFile(projectRoot))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading project config: %w", err)
	}

	merged := merge(global, project)
	ResolveEnvVars(merged)
	ApplyEnv(merged, os.Getenv)
	return merged, nil
}

// loadFile reads Settings from a YAML file. Returns zero Settings if the
// file does not exist.
func loadFile(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return &Settings{}, err
	}
	var s Settings
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &s, nil
}

// merge overlays project settings onto global settings.
// Non-zero project values override global values.
func merge(global, project *Settings) *Settings {
	if global == nil {
		global = &Settings{}
	}
	if project == nil {
		return global
	}

	result := *global

	overrideString(&result.APIKey, project.APIKey)
	overrideString(&result.BaseURL, project.BaseURL)
	overrideString(&result.Model, project.Model)
	overrideString(&result.Agent, project.Agent)
	overrideString(&result.SystemInstruction, project.SystemInstruction)
	overrideString(&result.LogLevel, project.LogLevel)

	if project.MaxIterations != 0 {
		result.MaxIterations = project.MaxIterations
	}
	if project.Timeout != 0 {
		result.Timeout = project.Timeout
	}
	if project.Stream != nil {
		result.Stream = project.Stream
	}
	if project.Store != nil {
		result.Store = project.Store
	}
	if project.Temperature != nil {
		result.Temperature = project.Temperature
	}

	if len(project.Headers) > 0 {
		headers := make(map[string]string, len(result.Headers)+len(project.Headers))
		for k, v := range result.Headers {
			headers[k] = v
		}
		for k, v := range project.Headers {
			headers[k] = v
		}
		result.Headers = headers
	}

	return &result
}

func overrideString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

// WithDefaults returns a copy with unset fields filled in. A configured agent
// suppresses the default model, since the two are mutually exclusive.
func (s Settings) WithDefaults() Settings {
	if s.Model == "" && s.Agent == "" {
		s.Model = DefaultModel
	}
	if s.MaxIterations <= 0 {
		s.MaxIterations = DefaultMaxIterations
	}
	if s.Timeout <= 0 {
		s.Timeout = DefaultTimeout
	}
	if s.LogLevel == "" {
		s.LogLevel = "warn"
	}
	return s
}

// StreamEnabled reports the stream setting, false when unset.
func (s *Settings) StreamEnabled() bool {
	return s.Stream != nil && *s.Stream
}
