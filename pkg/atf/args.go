package atf

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"

	"github.com/dkoosis/atfgo/pkg/engine"
)

// Args is the parsed ATF command line. Exactly one of List and TestCase is
// set.
type Args struct {
	List     bool
	TestCase string
	// Result receives the result line of a run. Defaults to stdout.
	Result io.Writer
	// SrcDir is absolute. Defaults to the working directory.
	SrcDir string
	Vars   *Vars

	resultFile *os.File
}

// Env returns the engine view of the arguments.
func (a *Args) Env() engine.Env {
	return engine.Env{SrcDir: a.SrcDir, Vars: a.Vars.List()}
}

// Close closes the -r result file, if one was opened.
func (a *Args) Close() error {
	if a.resultFile == nil {
		return nil
	}
	f := a.resultFile
	a.resultFile = nil
	return f.Close()
}

// rawOptions receives flag values before validation.
type rawOptions struct {
	list    bool
	resfile string
	srcdir  string
	vars    []string
}

func bindFlags(fs *pflag.FlagSet, o *rawOptions) {
	fs.BoolVarP(&o.list, "list", "l", false,
		"list the test cases and their metadata")
	fs.StringVarP(&o.resfile, "resfile", "r", "",
		"file that receives the test case result (default stdout)")
	fs.StringVarP(&o.srcdir, "srcdir", "s", "",
		"directory holding the test program and its data files (default current directory)")
	fs.StringArrayVarP(&o.vars, "var", "v", nil,
		"set configuration variable, as var=value (repeatable)")
}

// ParseArgs interprets an ATF test program command line:
//
//	[-l | test_case] [-r resfile] [-s srcdir] [-v var=value]...
//
// Errors are *ConfigError. The caller must Close the returned Args.
func ParseArgs(argv []string) (*Args, error) {
	return parseArgs(argv, os.Stdout)
}

func parseArgs(argv []string, stdout io.Writer) (*Args, error) {
	fs := pflag.NewFlagSet("atf", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	var o rawOptions
	bindFlags(fs, &o)
	if err := fs.Parse(argv); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil, err
		}
		return nil, &ConfigError{Err: err}
	}
	return o.resolve(fs.Args(), stdout)
}

// resolve validates raw options against the positional arguments. Nothing
// is opened unless validation passes.
func (o *rawOptions) resolve(positional []string, stdout io.Writer) (*Args, error) {
	if len(positional) > 1 {
		return nil, configErrorf("only one test case may be given, got %d", len(positional))
	}
	var testCase string
	if len(positional) == 1 {
		testCase = positional[0]
	}

	switch {
	case !o.list && testCase == "":
		return nil, configErrorf("one of -l or test_case should be specified")
	case o.list && testCase != "":
		return nil, configErrorf("-l and test_case %q are mutually exclusive", testCase)
	}

	vars := &Vars{}
	for _, pair := range o.vars {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, configErrorf("-v %q: expected var=value", pair)
		}
		vars.Set(key, value)
	}

	srcDir := o.srcdir
	if srcDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, configErrorf("resolving source directory: %w", err)
		}
		srcDir = wd
	}
	srcDir, err := filepath.Abs(srcDir)
	if err != nil {
		return nil, configErrorf("-s %q: %w", o.srcdir, err)
	}

	args := &Args{
		List:     o.list,
		TestCase: testCase,
		Result:   stdout,
		SrcDir:   srcDir,
		Vars:     vars,
	}
	if o.resfile != "" {
		f, err := os.OpenFile(o.resfile, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
		if err != nil {
			return nil, configErrorf("-r: %w", err)
		}
		args.Result = f
		args.resultFile = f
	}
	return args, nil
}
