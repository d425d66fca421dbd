// Package atf turns a test engine into an ATF test program.
//
// A test program built with this package answers the two requests an
// ATF-aware driver such as Kyua makes:
//
//	prog -l [-s srcdir]                      list test cases with metadata
//	prog [-r resfile] [-s srcdir] [-v k=v]... test_case
//
// Listing discovers every test case through the engine, maps its annotations
// to ATF properties and prints the listing on stdout. Running delegates one
// test case to the engine and writes its result line to the result file.
package atf

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/dkoosis/atfgo/internal/config"
	"github.com/dkoosis/atfgo/internal/logging"
	"github.com/dkoosis/atfgo/pkg/engine"
	"github.com/dkoosis/atfgo/pkg/marker"
	"github.com/dkoosis/atfgo/pkg/metadata"
)

// EngineFactory builds the engine once settings are known.
type EngineFactory func(settings *config.Settings) (engine.Engine, error)

// Program is an ATF test program wrapped around an engine.
type Program struct {
	// Name is used in usage text. Defaults to the executable name.
	Name      string
	NewEngine EngineFactory
	Stdout    io.Writer
	Stderr    io.Writer
	// Logger overrides the logger built from settings.
	Logger *slog.Logger
}

// Use returns a factory that always yields eng.
func Use(eng engine.Engine) EngineFactory {
	return func(*config.Settings) (engine.Engine, error) { return eng, nil }
}

// Main runs eng as a test program with the process arguments and exits.
func Main(eng engine.Engine) {
	MainWith(Use(eng))
}

// MainWith is Main for engines that depend on settings.
func MainWith(newEngine EngineFactory) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	p := &Program{NewEngine: newEngine, Stdout: os.Stdout, Stderr: os.Stderr}
	code := p.Run(ctx, os.Args[1:])
	stop()
	os.Exit(code)
}

// Run parses argv and executes the request. It returns the exit status.
func (p *Program) Run(ctx context.Context, argv []string) int {
	if argv == nil {
		argv = []string{} // cobra falls back to os.Args on nil
	}
	cmd := NewCommand(p)
	cmd.SetArgs(argv)
	return p.ExitCode(cmd, cmd.ExecuteContext(ctx))
}

// Execute serves already parsed arguments.
func (p *Program) Execute(ctx context.Context, args *Args) int {
	settings, err := config.Resolve(args.SrcDir)
	if err != nil {
		p.errorf("%v", err)
		return ExitUsage
	}
	log := p.logger(settings)
	log.Debug("arguments parsed",
		slog.Bool("list", args.List),
		slog.String("test_case", args.TestCase),
		slog.String("srcdir", args.SrcDir),
		slog.Int("vars", args.Vars.Len()),
		slog.String("config", settings.ConfigPath),
		slog.String("marker_policy", settings.MarkerPolicy.String()))

	if p.NewEngine == nil {
		p.errorf("no engine configured")
		return ExitFailure
	}
	eng, err := p.NewEngine(settings)
	if err != nil {
		p.errorf("creating engine: %v", err)
		return ExitFailure
	}
	for _, d := range marker.All() {
		eng.RegisterMarker(d.Name, d.Description)
	}

	if args.List {
		return p.list(ctx, eng, args, settings, log)
	}
	return p.runOne(ctx, eng, args, log)
}

func (p *Program) list(ctx context.Context, eng engine.Engine, args *Args, settings *config.Settings, log *slog.Logger) int {
	var tcs []engine.TestCase
	output, err := captureOutput(func() error {
		var derr error
		tcs, derr = eng.Discover(ctx, args.Env())
		return derr
	})
	if err != nil {
		p.errorf("%v", &DiscoveryError{Output: output, Err: err})
		return ExitFailure
	}
	if output != "" {
		log.Debug("suppressed discovery output", slog.Int("bytes", len(output)))
	}
	log.Debug("discovered test cases", slog.Int("count", len(tcs)))

	x := metadata.Extractor{Policy: settings.MarkerPolicy, Logger: logging.For(log, "extract")}
	records, err := x.ExtractAll(tcs)
	if err != nil {
		p.errorf("%v", err)
		return ExitFailure
	}
	if err := metadata.WriteListing(p.stdout(), records); err != nil {
		p.errorf("%v", err)
		return ExitFailure
	}
	return ExitOK
}

func (p *Program) runOne(ctx context.Context, eng engine.Engine, args *Args, log *slog.Logger) int {
	rep := NewReporter(args.Result)
	status, err := eng.Run(ctx, args.Env(), args.TestCase, rep.Observe)
	log.Debug("test case finished",
		slog.String("test_case", args.TestCase),
		slog.Int("status", status),
		slog.Int("reported", rep.Reported()))
	if err != nil {
		p.errorf("running %s: %v", args.TestCase, err)
		if status == ExitOK {
			status = ExitFailure
		}
		return status
	}
	if err := rep.Err(); err != nil {
		p.errorf("%v", err)
		return ExitFailure
	}
	return status
}

func (p *Program) logger(settings *config.Settings) *slog.Logger {
	if p.Logger != nil {
		return logging.For(p.Logger, "atf")
	}
	return logging.For(logging.New(p.stderr(), settings.LogLevel), "atf")
}

func (p *Program) errorf(format string, args ...any) {
	fmt.Fprintf(p.stderr(), "error: "+format+"\n", args...)
}

func (p *Program) name() string {
	if p.Name != "" {
		return p.Name
	}
	return filepath.Base(os.Args[0])
}

func (p *Program) stdout() io.Writer {
	if p.Stdout == nil {
		return os.Stdout
	}
	return p.Stdout
}

func (p *Program) stderr() io.Writer {
	if p.Stderr == nil {
		return os.Stderr
	}
	return p.Stderr
}

// isConfigError reports whether err should be answered with usage text.
func isConfigError(err error) bool {
	return errors.Is(err, ErrConfig)
}
