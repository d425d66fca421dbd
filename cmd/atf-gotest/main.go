// atf-gotest presents the tests of a Go package as an ATF test program, so
// that an ATF driver such as Kyua can list and run them.
//
// Usage:
//
//	atf-gotest -l -s ./pkg/foo
//	atf-gotest -s ./pkg/foo -r result.txt TestCopy
//	atf-gotest -s ./pkg/foo -v fixture=/data TestCopy
//
// Metadata comes from an atf.yaml file in the source directory; see package
// gotest. Settings are read from .atfgo.yaml and ATFGO_* variables.
package main

import (
	"context"
	"io"
	"os"
	"os/signal"

	"github.com/dkoosis/atfgo/internal/config"
	"github.com/dkoosis/atfgo/internal/logging"
	"github.com/dkoosis/atfgo/pkg/atf"
	"github.com/dkoosis/atfgo/pkg/engine"
	"github.com/dkoosis/atfgo/pkg/gotest"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	p := &atf.Program{
		Name:      "atf-gotest",
		NewEngine: newEngine(stderr),
		Stdout:    stdout,
		Stderr:    stderr,
	}
	return p.Run(ctx, args)
}

func newEngine(stderr io.Writer) atf.EngineFactory {
	return func(s *config.Settings) (engine.Engine, error) {
		return gotest.New(gotest.Options{
			Go:      s.GoTest.Go,
			Sidecar: s.GoTest.Sidecar,
			Flags:   s.GoTest.Flags,
			Logger:  logging.New(stderr, s.LogLevel),
		}), nil
	}
}
