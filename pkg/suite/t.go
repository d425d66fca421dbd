package suite

import (
	"context"
	"fmt"
	"strings"

	"github.com/dkoosis/atfgo/pkg/engine"
)

// T is handed to every phase of a running test case. Its methods mirror
// testing.T; FailNow and the Skip family stop the current phase.
type T struct {
	ctx  context.Context
	name string
	env  engine.Env

	failed     bool
	skipped    bool
	skipReason string
	output     []string
	cleanups   []func()
}

// failNow and skipNow unwind a phase; the runner recovers them.
type (
	failNow struct{}
	skipNow struct{}
)

func newT(ctx context.Context, name string, env engine.Env) *T {
	return &T{ctx: ctx, name: name, env: env}
}

// Name returns the test case name.
func (t *T) Name() string { return t.name }

// Context returns the context of the run.
func (t *T) Context() context.Context { return t.ctx }

// SrcDir returns the -s source directory.
func (t *T) SrcDir() string { return t.env.SrcDir }

// Config returns the -v configuration variable key.
func (t *T) Config(key string) (string, bool) { return t.env.Lookup(key) }

func (t *T) Log(args ...any) { t.log(fmt.Sprintln(args...)) }

func (t *T) Logf(format string, args ...any) { t.log(fmt.Sprintf(format, args...)) }

func (t *T) Error(args ...any) {
	t.Log(args...)
	t.Fail()
}

func (t *T) Errorf(format string, args ...any) {
	t.Logf(format, args...)
	t.Fail()
}

func (t *T) Fatal(args ...any) {
	t.Log(args...)
	t.FailNow()
}

func (t *T) Fatalf(format string, args ...any) {
	t.Logf(format, args...)
	t.FailNow()
}

// Fail marks the phase as failed and keeps running it.
func (t *T) Fail() { t.failed = true }

// FailNow marks the phase as failed and stops it.
func (t *T) FailNow() {
	t.Fail()
	panic(failNow{})
}

func (t *T) Failed() bool { return t.failed }

func (t *T) Skip(args ...any) {
	t.skipReason = strings.TrimSuffix(fmt.Sprintln(args...), "\n")
	t.SkipNow()
}

func (t *T) Skipf(format string, args ...any) {
	t.skipReason = fmt.Sprintf(format, args...)
	t.SkipNow()
}

// SkipNow marks the phase as skipped and stops it.
func (t *T) SkipNow() {
	t.skipped = true
	panic(skipNow{})
}

func (t *T) Skipped() bool { return t.skipped }

// Cleanup registers fn to run after teardown, last registered first.
func (t *T) Cleanup(fn func()) { t.cleanups = append(t.cleanups, fn) }

func (t *T) log(s string) {
	s = strings.TrimSuffix(s, "\n")
	t.output = append(t.output, strings.ReplaceAll(s, "\n", " "))
}

// reset clears per-phase state.
func (t *T) reset() {
	t.failed, t.skipped = false, false
	t.skipReason = ""
	t.output = nil
}

// outcome classifies the phase that just ran. Failure wins over skip. The
// detail is a single line: a result file holds exactly one.
func (t *T) outcome() (engine.Outcome, string) {
	switch {
	case t.failed:
		return engine.OutcomeFailed, strings.Join(t.output, "; ")
	case t.skipped:
		return engine.OutcomeSkipped, strings.ReplaceAll(t.skipReason, "\n", " ")
	default:
		return engine.OutcomePassed, ""
	}
}
