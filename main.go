package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/alecthomas/kong"

	"github.com/mcncl/jsondiff/internal/config"
	"github.com/mcncl/jsondiff/internal/errors"
	"github.com/mcncl/jsondiff/internal/models"
	"github.com/mcncl/jsondiff/internal/orchestrator"
	"github.com/mcncl/jsondiff/internal/reader"
	"github.com/mcncl/jsondiff/internal/report"
)

// CLI defines the command-line interface
var CLI struct {
	Left  string `arg:"" optional:"" help:"Path to the left (base) JSON document." type:"path"`
	Right string `arg:"" optional:"" help:"Path to the right JSON document." type:"path"`

	IgnoreKeyOrder   bool          `help:"Enumerate object members in sorted key order in the report." short:"k"`
	IgnoreArrayOrder bool          `help:"Compare arrays as multisets instead of positionally." short:"a"`
	MaxDiffs         uint32        `help:"Maximum number of differences to report (0 = unlimited)." default:"100"`
	JSON             bool          `help:"Emit the report as JSON." short:"j"`
	Quiet            bool          `help:"Suppress progress output." short:"q"`
	Timeout          time.Duration `help:"Abort the comparison after this duration (e.g. 30s)."`
	Config           string        `help:"Path to config file." short:"c" type:"path"`
	Version          bool          `help:"Show version information." short:"v"`
}

// Version information
const (
	Version = "0.1.0"
)

// Exit codes follow the diff convention: 0 identical, 1 different, 2 trouble.
const (
	exitIdentical = 0
	exitDifferent = 1
	exitError     = 2
)

func main() {
	parser := kong.Must(&CLI,
		kong.Name("jsondiff"),
		kong.Description("A tool to structurally compare two JSON documents"),
		kong.UsageOnError(),
	)

	if _, err := parser.Parse(os.Args[1:]); err != nil {
		// If there's an error parsing arguments, the usage will already be shown by kong.UsageOnError()
		os.Exit(exitError)
	}

	if CLI.Version {
		fmt.Printf("jsondiff version %s\n", Version)
		return
	}

	if CLI.Left == "" || CLI.Right == "" {
		fmt.Fprintln(os.Stderr, "Error: two JSON documents are required.")
		fmt.Fprintln(os.Stderr, "\nFor help, run: jsondiff --help")
		os.Exit(exitError)
	}

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", errors.UserFriendlyError(err))
		os.Exit(exitError)
	}

	identical, err := run(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", errors.UserFriendlyError(err))
		os.Exit(exitError)
	}
	if identical {
		os.Exit(exitIdentical)
	}
	os.Exit(exitDifferent)
}

// loadConfig resolves the effective configuration: file values first, then
// explicit CLI flags on top.
func loadConfig() (*config.Config, error) {
	path := CLI.Config
	if path == "" {
		path = config.FindConfigFile()
	}

	cfg := config.NewConfig()
	if path != "" {
		loaded, err := config.LoadConfig(path)
		if err != nil {
			return nil, errors.NewConfigError("could not load config", err)
		}
		cfg = loaded
	}

	if CLI.IgnoreKeyOrder {
		cfg.Compare.IgnoreKeyOrder = true
	}
	if CLI.IgnoreArrayOrder {
		cfg.Compare.IgnoreArrayOrder = true
	}
	if CLI.MaxDiffs != models.DefaultMaxDiffs {
		cfg.Compare.MaxDiffs = CLI.MaxDiffs
	}
	if CLI.JSON {
		cfg.Output.Format = "json"
	}
	if CLI.Quiet {
		cfg.Progress.Enabled = false
	}
	return cfg, nil
}

// run executes the main program logic
func run(cfg *config.Config) (identical bool, err error) {
	engine := newEngine(cfg)
	defer engine.Close()

	ctx := context.Background()
	if CLI.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, CLI.Timeout)
		defer cancel()
	}

	left, err := parseDocument(ctx, engine, cfg, CLI.Left)
	if err != nil {
		return false, err
	}
	right, err := parseDocument(ctx, engine, cfg, CLI.Right)
	if err != nil {
		return false, err
	}

	result, err := engine.Diff(ctx, left, right, cfg.Options())
	if err != nil {
		return false, err
	}

	if err := writeReport(cfg, result); err != nil {
		return false, err
	}
	return result.Identical, nil
}

// newEngine assembles the worker/orchestrator pair with progress wired to
// stderr when enabled.
func newEngine(cfg *config.Config) *orchestrator.Orchestrator {
	opts := []orchestrator.Option{
		orchestrator.WithProgressInterval(cfg.ProgressInterval()),
	}
	if cfg.Progress.Enabled {
		opts = append(opts, orchestrator.WithProgressHandler(func(ev models.ProgressEvent) {
			if ev.Fraction != nil {
				fmt.Fprintf(os.Stderr, "job %d: %3.0f%% %s\n", ev.ID, *ev.Fraction*100, ev.Message)
			} else if ev.Message != "" {
				fmt.Fprintf(os.Stderr, "job %d: %s\n", ev.ID, ev.Message)
			}
		}))
	}
	return orchestrator.NewEngine(opts...)
}

// parseDocument streams a file into memory and parses it through the engine.
// A syntax error in the document is reported and returned as an output
// error so the process exits with status 2.
func parseDocument(ctx context.Context, engine *orchestrator.Orchestrator, cfg *config.Config, path string) (models.Value, error) {
	text, err := loadFile(cfg, path)
	if err != nil {
		return models.Value{}, err
	}

	res, err := engine.Parse(ctx, text)
	if err != nil {
		return models.Value{}, err
	}
	if !res.Ok() {
		fmt.Fprintln(os.Stderr, report.ParseFailure(path, res.Err))
		return models.Value{}, errors.NewOutputError(fmt.Sprintf("%s is not valid JSON", path), res.Err)
	}
	return *res.Value, nil
}

// loadFile reads path through the streaming reader, printing throttled load
// progress to stderr.
func loadFile(cfg *config.Config, path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", errors.NewIOError(fmt.Sprintf("file '%s' not found", path), errors.ErrFileNotFound)
		}
		return "", errors.NewIOError(fmt.Sprintf("failed to open file '%s'", path), err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Error closing file: %v\n", err)
		}
	}()

	stat, err := file.Stat()
	if err != nil {
		return "", errors.NewIOError(fmt.Sprintf("failed to stat file '%s'", path), err)
	}

	var onProgress reader.ProgressFunc
	if cfg.Progress.Enabled {
		throttle := orchestrator.NewThrottle(cfg.ProgressInterval())
		onProgress = func(consumed, total int64) {
			if total <= 0 {
				return
			}
			if !throttle.Allow(consumed == total) {
				return
			}
			fmt.Fprintf(os.Stderr, "reading %s: %3.0f%%\n", path, float64(consumed)/float64(total)*100)
		}
	}

	return reader.New(file, stat.Size(), onProgress).ReadAll()
}

// writeReport renders the result to stdout in the configured format.
func writeReport(cfg *config.Config, result models.DiffResult) error {
	var out string
	if cfg.Output.Format == "json" {
		rendered, err := report.JSON(result)
		if err != nil {
			return err
		}
		out = rendered
	} else {
		out = report.Text(result)
	}

	if _, err := fmt.Println(strings.TrimSpace(out)); err != nil {
		return errors.NewOutputError("failed to write to stdout", err)
	}
	return nil
}
