// ABOUTME: Environment variable expansion and overrides for settings
// ABOUTME: Replaces ${VAR} patterns in string fields, then applies well-known env vars

package config

import (
	"os"
	"regexp"
)

// Environment variables that override file settings.
const (
	EnvAPIKey   = "GEMINI_API_KEY"
	EnvBaseURL  = "INTERACTIONS_BASE_URL"
	EnvModel    = "INTERACTIONS_MODEL"
	EnvLogLevel = "INTERACTIONS_LOG_LEVEL"
)

var envVarPattern = regexp.MustCompile(`\$\{(\w+)\}`)

// ResolveEnvVars expands ${VAR} patterns in string fields of Settings.
func ResolveEnvVars(s *Settings) {
	s.APIKey = expandEnv(s.APIKey)
	s.BaseURL = expandEnv(s.BaseURL)
	s.Model = expandEnv(s.Model)
	s.Agent = expandEnv(s.Agent)
	s.SystemInstruction = expandEnv(s.SystemInstruction)

	for k, v := range s.Headers {
		s.Headers[k] = expandEnv(v)
	}
}

// ApplyEnv overrides settings from the environment. getenv is os.Getenv
// outside tests; empty values leave the setting alone.
func ApplyEnv(s *Settings, getenv func(string) string) {
	overrideString(&s.APIKey, getenv(EnvAPIKey))
	overrideString(&s.BaseURL, getenv(EnvBaseURL))
	overrideString(&s.LogLevel, getenv(EnvLogLevel))
	if m := getenv(EnvModel); m != "" {
		s.Model = m
		s.Agent = ""
	}
}

// expandEnv replaces ${VAR} with os.Getenv(VAR). Unset vars become "".
func expandEnv(s string) string {
	if s == "" {
		return s
	}
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		varName := envVarPattern.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}
