// ABOUTME: CLI entry point that sends a prompt through the auto-function loop
// ABOUTME: Loads config, builds the client and runner, renders buffered or streamed output

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/mauromedda/genai-interactions-go/internal/config"
	ilog "github.com/mauromedda/genai-interactions-go/internal/log"
	"github.com/mauromedda/genai-interactions-go/internal/output"
	"github.com/mauromedda/genai-interactions-go/pkg/interactions"
	"github.com/mauromedda/genai-interactions-go/pkg/interactions/autofunc"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := run(ctx, os.Args[1:], env{
		stdin:  os.Stdin,
		stdout: os.Stdout,
		stderr: os.Stderr,
		tty:    term.IsTerminal(int(os.Stdout.Fd())),
		width:  terminalWidth,
		now:    time.Now,
	})
	stop()

	switch {
	case err == nil:
	case errors.Is(err, flag.ErrHelp):
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// env carries the process surroundings so run can be driven from tests.
type env struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	tty    bool
	width  func() int
	now    func() time.Time
	// settings, when set, replaces config.Load.
	settings *config.Settings
}

func terminalWidth() int {
	w, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || w <= 0 {
		return 80
	}
	return w
}

// run performs the initialization sequence and executes one prompt.
func run(ctx context.Context, argv []string, e env) error {
	args, err := parseFlags(argv, e.stderr)
	if err != nil {
		return err
	}
	if args.version {
		fmt.Fprintf(e.stdout, "interactions %s (%s) built %s\n", version, commit, date)
		return nil
	}

	settings, err := loadSettings(e)
	if err != nil {
		return err
	}
	args.apply(settings)
	s := settings.WithDefaults()

	level, err := ilog.ParseLevel(s.LogLevel)
	if err != nil {
		return err
	}
	ilog.SetLevel(level)
	ilog.SetOutput(e.stderr)
	logger := ilog.L()

	format, err := output.ParseFormat(args.format)
	if err != nil {
		return err
	}

	prompt, err := readPrompt(args.prompt, e.stdin)
	if err != nil {
		return err
	}

	registry, err := builtinRegistry(e.now)
	if err != nil {
		return fmt.Errorf("registering functions: %w", err)
	}

	req, err := buildRequest(s, prompt)
	if err != nil {
		return err
	}

	client := interactions.NewClient(clientOptions(s, logger)...)
	metrics := prometheus.NewRegistry()
	runner := autofunc.New(client, registry,
		autofunc.WithMaxIterations(s.MaxIterations),
		autofunc.WithConcurrency(args.concurrency),
		autofunc.WithLogger(logger),
		autofunc.WithMetrics(metrics),
	)

	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	f := output.New(format, formatterOptions(e, args.raw))
	logger.Debug("running prompt",
		zap.String("model", s.Model),
		zap.String("agent", s.Agent),
		zap.Bool("stream", s.StreamEnabled()),
		zap.Strings("functions", registry.Names()),
	)

	if s.StreamEnabled() {
		_, err = output.Drive(runner.RunStream(ctx, req), f)
	} else {
		var res *autofunc.Result
		res, err = runner.Run(ctx, req)
		if err == nil {
			output.Report(res, f)
		} else {
			f.Error(err)
			f.End(nil)
		}
	}

	if args.metrics {
		if merr := dumpMetrics(metrics, e.stderr); merr != nil {
			logger.Warn("writing metrics", zap.Error(merr))
		}
	}
	return err
}

func loadSettings(e env) (*config.Settings, error) {
	if e.settings != nil {
		cp := *e.settings
		return &cp, nil
	}
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("getting working directory: %w", err)
	}
	s, err := config.Load(cwd)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return s, nil
}

// readPrompt joins positional arguments, falling back to stdin.
func readPrompt(args []string, stdin io.Reader) (string, error) {
	prompt := strings.TrimSpace(strings.Join(args, " "))
	if prompt != "" {
		return prompt, nil
	}
	if stdin == nil {
		return "", errors.New("no prompt given")
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("reading stdin: %w", err)
	}
	prompt = strings.TrimSpace(string(data))
	if prompt == "" {
		return "", errors.New("no prompt given")
	}
	return prompt, nil
}

func buildRequest(s config.Settings, prompt string) (*interactions.CreateInteractionRequest, error) {
	b := interactions.NewInteraction(s.Model).WithText(prompt)
	if s.Agent != "" {
		b = b.WithModel("").WithAgent(s.Agent)
	}
	if s.SystemInstruction != "" {
		b = b.WithSystemInstruction(s.SystemInstruction)
	}
	if s.Temperature != nil {
		b = b.WithTemperature(*s.Temperature)
	}
	if s.Store != nil {
		b = b.WithStore(*s.Store)
	}
	req, err := b.Build()
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	return req, nil
}

func clientOptions(s config.Settings, logger *zap.Logger) []interactions.ClientOption {
	opts := []interactions.ClientOption{
		interactions.WithAPIKey(s.APIKey),
		interactions.WithLogger(logger),
	}
	if s.BaseURL != "" {
		opts = append(opts, interactions.WithBaseURL(s.BaseURL))
	}
	for k, v := range s.Headers {
		opts = append(opts, interactions.WithHeader(k, v))
	}
	return opts
}

func formatterOptions(e env, raw bool) output.Options {
	opts := output.Options{Out: e.stdout, Trace: e.stderr, Styles: output.PlainStyles()}
	if e.tty {
		opts.Styles = output.DefaultStyles()
		if !raw {
			opts.Markdown = output.NewMarkdownRenderer()
		}
		if e.width != nil {
			opts.Width = e.width()
		}
	}
	return opts
}

func dumpMetrics(g prometheus.Gatherer, w io.Writer) error {
	families, err := g.Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}
