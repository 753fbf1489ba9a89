// ABOUTME: CLI flag parsing using stdlib flag package
// ABOUTME: Flags override settings loaded from config files and the environment

package main

import (
	"flag"
	"io"
	"time"

	"github.com/mauromedda/genai-interactions-go/internal/config"
)

type cliArgs struct {
	model       string
	agent       string
	system      string
	baseURL     string
	logLevel    string
	format      string
	maxLoops    int
	concurrency int
	timeout     time.Duration
	stream      bool
	noStream    bool
	raw         bool
	metrics     bool
	version     bool
	prompt      []string
}

func parseFlags(args []string, stderr io.Writer) (cliArgs, error) {
	var a cliArgs
	fs := flag.NewFlagSet("interactions", flag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.StringVar(&a.model, "model", "", "Model to use (e.g., gemini-3-flash-preview)")
	fs.StringVar(&a.agent, "agent", "", "Agent to use instead of a model")
	fs.StringVar(&a.system, "system", "", "System instruction")
	fs.StringVar(&a.baseURL, "base-url", "", "Custom API base URL")
	fs.StringVar(&a.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	fs.StringVar(&a.format, "format", "text", "Output format: text, json, stream-json")
	fs.IntVar(&a.maxLoops, "max-loops", 0, "Maximum function-calling round trips")
	fs.IntVar(&a.concurrency, "concurrency", 0, "Maximum functions executed at once (0 = unlimited)")
	fs.DurationVar(&a.timeout, "timeout", 0, "Overall timeout for the run")
	fs.BoolVar(&a.stream, "stream", false, "Stream the response")
	fs.BoolVar(&a.noStream, "no-stream", false, "Disable streaming even if configured")
	fs.BoolVar(&a.raw, "raw", false, "Print plain text without markdown rendering")
	fs.BoolVar(&a.metrics, "metrics", false, "Print function metrics to stderr on exit")
	fs.BoolVar(&a.version, "version", false, "Show version and exit")

	if err := fs.Parse(args); err != nil {
		return cliArgs{}, err
	}
	a.prompt = fs.Args()
	return a, nil
}

// apply overlays explicitly set flags on s.
func (a cliArgs) apply(s *config.Settings) {
	if a.model != "" {
		s.Model = a.model
		s.Agent = ""
	}
	if a.agent != "" {
		s.Agent = a.agent
		s.Model = ""
	}
	if a.system != "" {
		s.SystemInstruction = a.system
	}
	if a.baseURL != "" {
		s.BaseURL = a.baseURL
	}
	if a.logLevel != "" {
		s.LogLevel = a.logLevel
	}
	if a.maxLoops > 0 {
		s.MaxIterations = a.maxLoops
	}
	if a.timeout > 0 {
		s.Timeout = a.timeout
	}
	switch {
	case a.noStream:
		off := false
		s.Stream = &off
	case a.stream:
		on := true
		s.Stream = &on
	}
}
