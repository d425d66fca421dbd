// Package gotest exposes the tests of a Go package as ATF test cases by
// driving the go tool.
//
// Discovery runs "go test -list" in the source directory and reads ATF
// metadata from a YAML sidecar next to the package, falling back to the
// test function's doc comment for the description. Running a test case runs
// "go test -json -run ^Name$" and turns the reported outcome into a result
// line.
package gotest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/dkoosis/atfgo/internal/logging"
	"github.com/dkoosis/atfgo/pkg/engine"
	"github.com/dkoosis/atfgo/pkg/testjson"
)

// ErrNoResult indicates go test finished without reporting the requested
// test, usually because the package failed to build.
var ErrNoResult = errors.New("gotest: no result reported")

// Environment variables set for the test binary.
const (
	EnvSrcDir    = "ATF_SRCDIR"
	EnvVarPrefix = "ATF_VAR_"
)

const listPattern = "^(Test|Example|Fuzz)"

var testName = regexp.MustCompile(`^(Test|Example|Fuzz)[\p{L}\p{N}_]*$`)

// CommandFunc builds the go tool process. It matches exec.CommandContext.
type CommandFunc func(ctx context.Context, name string, args ...string) *exec.Cmd

// Options configures an Engine.
type Options struct {
	// Go is the go tool to run. Defaults to "go".
	Go string
	// Sidecar is the metadata file name inside the source directory.
	// Defaults to "atf.yaml".
	Sidecar string
	// Flags are passed to go test before the package argument.
	Flags  []string
	Logger *slog.Logger
}

// Engine implements engine.Engine on top of go test.
type Engine struct {
	opts    Options
	markers map[string]string
	command CommandFunc
	log     *slog.Logger
}

var _ engine.Engine = (*Engine)(nil)

// New returns an Engine for opts.
func New(opts Options) *Engine {
	if opts.Go == "" {
		opts.Go = "go"
	}
	if opts.Sidecar == "" {
		opts.Sidecar = "atf.yaml"
	}
	return &Engine{
		opts:    opts,
		markers: make(map[string]string),
		command: exec.CommandContext,
		log:     logging.For(opts.Logger, "gotest"),
	}
}

func (e *Engine) RegisterMarker(name, description string) {
	e.markers[name] = description
}

// Discover lists the test functions of the package in env.SrcDir.
func (e *Engine) Discover(ctx context.Context, env engine.Env) ([]engine.TestCase, error) {
	args := append([]string{"test", "-list", listPattern}, e.opts.Flags...)
	cmd := e.goCommand(ctx, env, append(args, ".")...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return nil, fmt.Errorf("go test -list: %w\n%s", err, strings.TrimRight(string(out), "\n"))
	}

	var names []string
	for _, line := range strings.Split(string(out), "\n") {
		line = strings.TrimSpace(line)
		if testName.MatchString(line) {
			names = append(names, line)
		}
	}
	e.log.Debug("listed tests", slog.String("dir", env.SrcDir), slog.Int("count", len(names)))

	sc, err := LoadSidecar(filepath.Join(env.SrcDir, e.opts.Sidecar))
	if err != nil {
		return nil, err
	}
	docs, err := docComments(env.SrcDir)
	if err != nil {
		return nil, err
	}

	known := make(map[string]bool, len(names))
	tcs := make([]engine.TestCase, 0, len(names))
	for _, name := range names {
		known[name] = true
		entry := sc.Tests[name]
		marks, err := entry.Annotations()
		if err != nil {
			return nil, fmt.Errorf("%s: test %s: %w", e.opts.Sidecar, name, err)
		}
		for _, m := range marks {
			if _, ok := e.markers[m.Name]; !ok {
				return nil, fmt.Errorf("%w: %q on test %s", engine.ErrUnknownMarker, m.Name, name)
			}
		}
		descr := entry.Descr
		if descr == "" {
			descr = docs[name]
		}
		tcs = append(tcs, engine.Static{TestName: name, Marks: marks, DocString: descr})
	}
	for name := range sc.Tests {
		if !known[name] {
			e.log.Warn("sidecar names an unknown test", slog.String("test", name))
		}
	}
	return tcs, nil
}

// Run runs one test function and reports its outcome as a call event. The
// returned status is the exit status of go test.
func (e *Engine) Run(ctx context.Context, env engine.Env, name string, observe engine.Observer) (int, error) {
	if !testName.MatchString(name) {
		return 1, fmt.Errorf("%w: %s", engine.ErrNoSuchTest, name)
	}
	if observe == nil {
		observe = func(engine.Event) {}
	}

	args := []string{"test", "-json", "-count=1", "-run", "^" + name + "$"}
	args = append(args, e.opts.Flags...)
	cmd := e.goCommand(ctx, env, append(args, ".")...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return 1, fmt.Errorf("starting go test: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return 1, fmt.Errorf("starting go test: %w", err)
	}

	c := testjson.NewCollector()
	malformed, streamErr := testjson.Stream(ctx, stdout, c.Observe)
	if streamErr != nil {
		_, _ = io.Copy(io.Discard, stdout) // let the child exit before Wait
	}
	waitErr := cmd.Wait()
	if malformed > 0 {
		e.log.Debug("skipped malformed lines", slog.Int("count", malformed))
	}
	if streamErr != nil {
		return 1, fmt.Errorf("reading go test output: %w", streamErr)
	}

	status := 0
	if waitErr != nil {
		var exitErr *exec.ExitError
		if !errors.As(waitErr, &exitErr) {
			return 1, fmt.Errorf("running go test: %w", waitErr)
		}
		status = exitErr.ExitCode()
	}

	tr, ok := c.Result(name)
	if !ok {
		if status == 0 {
			status = 1
		}
		return status, noResult(name, c, stderr.String())
	}
	ev := engine.Event{Test: name, Phase: engine.PhaseCall, Outcome: outcome(tr.Action)}
	if ev.Outcome != engine.OutcomePassed {
		ev.Detail = strings.Join(tr.Output, "; ")
	}
	observe(ev)
	pkg := c.Package()
	e.log.Debug("test finished",
		slog.String("test", name),
		slog.String("action", string(tr.Action)),
		slog.Duration("elapsed", tr.Elapsed),
		slog.String("package", pkg.Name),
		slog.String("package_status", string(pkg.Status())),
		slog.Int("status", status))
	return status, nil
}

// goCommand prepares the go tool in env.SrcDir with the ATF environment
// appended to whatever the command already carries.
func (e *Engine) goCommand(ctx context.Context, env engine.Env, args ...string) *exec.Cmd {
	cmd := e.command(ctx, e.opts.Go, args...)
	cmd.Dir = env.SrcDir
	if cmd.Env == nil {
		cmd.Env = os.Environ()
	}
	cmd.Env = append(cmd.Env, EnvSrcDir+"="+env.SrcDir)
	for _, v := range env.Vars {
		cmd.Env = append(cmd.Env, EnvVarPrefix+v.Key+"="+v.Value)
	}
	e.log.Debug("exec", slog.String("go", e.opts.Go), slog.Any("args", args))
	return cmd
}

func outcome(a testjson.Action) engine.Outcome {
	switch a {
	case testjson.ActionPass:
		return engine.OutcomePassed
	case testjson.ActionSkip:
		return engine.OutcomeSkipped
	default:
		return engine.OutcomeFailed
	}
}

// noResult explains why go test reported nothing for name: a build failure
// carries the compiler output, anything else the package output.
func noResult(name string, c *testjson.Collector, stderr string) error {
	stderr = strings.TrimRight(stderr, "\n")
	pkg := c.Package()
	if pkg.BuildError != "" {
		return fmt.Errorf("%w for %s: %s failed to build\n%s", ErrNoResult, name, pkg.Name, pkg.BuildError)
	}
	var out []string
	for _, part := range []string{c.PackageOutput(), stderr} {
		if part != "" {
			out = append(out, part)
		}
	}
	return fmt.Errorf("%w for %s\n%s", ErrNoResult, name, strings.Join(out, "\n"))
}
