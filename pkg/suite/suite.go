// Package suite is an in-process test engine: a Go program declares its test
// cases with annotations and hands the suite to atf.Main.
//
//	s := suite.New()
//	s.Add("copies_files", testCopy,
//		suite.Doc("Copies a file with cp"),
//		suite.Progs("/bin/cp"),
//		suite.Timeout(30))
//	atf.Main(s)
package suite

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/dkoosis/atfgo/internal/logging"
	"github.com/dkoosis/atfgo/pkg/engine"
)

// Suite holds declared test cases in declaration order.
type Suite struct {
	cases   []*Case
	index   map[string]*Case
	markers map[string]string
	logger  *slog.Logger
}

var _ engine.Engine = (*Suite)(nil)

// SuiteOption configures a Suite.
type SuiteOption func(*Suite)

// WithLogger sets the logger used for phase diagnostics.
func WithLogger(l *slog.Logger) SuiteOption {
	return func(s *Suite) { s.logger = l }
}

// New returns an empty suite.
func New(opts ...SuiteOption) *Suite {
	s := &Suite{
		index:   make(map[string]*Case),
		markers: make(map[string]string),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = logging.For(s.logger, "suite")
	return s
}

// Add declares a test case. It panics on an empty or duplicate name, which
// are programming errors in the test program.
func (s *Suite) Add(name string, body Func, opts ...Option) *Suite {
	if name == "" {
		panic("suite: test case name must not be empty")
	}
	if _, dup := s.index[name]; dup {
		panic("suite: duplicate test case " + name)
	}
	if body == nil {
		panic("suite: test case " + name + " has no body")
	}
	c := &Case{name: name, body: body}
	for _, opt := range opts {
		opt(c)
	}
	s.cases = append(s.cases, c)
	s.index[name] = c
	return s
}

// RegisterMarker declares name as a valid annotation.
func (s *Suite) RegisterMarker(name, description string) {
	s.markers[name] = description
}

// Discover returns the declared cases, failing if any carries an annotation
// that was never registered.
func (s *Suite) Discover(_ context.Context, _ engine.Env) ([]engine.TestCase, error) {
	out := make([]engine.TestCase, 0, len(s.cases))
	for _, c := range s.cases {
		if err := s.validate(c); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// Run executes setup, body and teardown of one case, reporting each phase.
// A setup that fails or skips replaces the body with an error or skipped
// call event, as does a context cancelled before the body starts. Teardown
// and cleanups always run. The status is 0 when the body passed or was
// skipped and teardown passed, 1 otherwise.
func (s *Suite) Run(ctx context.Context, env engine.Env, name string, observe engine.Observer) (int, error) {
	c, ok := s.index[name]
	if !ok {
		return 1, fmt.Errorf("%w: %s", engine.ErrNoSuchTest, name)
	}
	if err := s.validate(c); err != nil {
		return 1, err
	}
	if observe == nil {
		observe = func(engine.Event) {}
	}

	t := newT(ctx, name, env)
	status := 0

	setupEv := s.phase(t, engine.PhaseSetup, c.setup)
	observe(setupEv)

	var callEv engine.Event
	cancelled := false
	switch {
	case setupEv.Outcome == engine.OutcomeSkipped:
		callEv = engine.Event{Test: name, Phase: engine.PhaseCall, Outcome: engine.OutcomeSkipped, Detail: setupEv.Detail}
	case setupEv.Outcome != engine.OutcomePassed:
		callEv = engine.Event{Test: name, Phase: engine.PhaseCall, Outcome: engine.OutcomeError,
			Detail: "setup failed: " + setupEv.Detail}
	case ctx.Err() != nil:
		cancelled = true
		callEv = engine.Event{Test: name, Phase: engine.PhaseCall, Outcome: engine.OutcomeError,
			Detail: "cancelled: " + ctx.Err().Error()}
	default:
		callEv = s.phase(t, engine.PhaseCall, c.body)
	}
	observe(callEv)
	if callEv.Outcome != engine.OutcomePassed && callEv.Outcome != engine.OutcomeSkipped {
		status = 1
	}

	teardownEv := s.phase(t, engine.PhaseTeardown, func(t *T) {
		if c.teardown != nil {
			s.protect(t, c.teardown)
		}
		for i := len(t.cleanups) - 1; i >= 0; i-- {
			fn := t.cleanups[i]
			s.protect(t, func(*T) { fn() })
		}
	})
	observe(teardownEv)
	if teardownEv.Outcome == engine.OutcomeFailed {
		status = 1
	}
	if cancelled {
		return status, ctx.Err()
	}
	return status, nil
}

func (s *Suite) phase(t *T, phase engine.Phase, fn Func) engine.Event {
	t.reset()
	if fn != nil {
		s.protect(t, fn)
	}
	outcome, detail := t.outcome()
	if outcome != engine.OutcomePassed {
		s.logger.Debug("phase did not pass",
			slog.String("test", t.name),
			slog.String("phase", string(phase)),
			slog.String("outcome", string(outcome)))
	}
	return engine.Event{Test: t.name, Phase: phase, Outcome: outcome, Detail: detail}
}

// protect runs fn, turning FailNow/SkipNow unwinding and panics into T state.
func (s *Suite) protect(t *T, fn Func) {
	defer func() {
		r := recover()
		switch r.(type) {
		case nil, failNow, skipNow:
		default:
			t.Fail()
			t.log(fmt.Sprintf("panic: %v", r))
			s.logger.Debug("recovered panic",
				slog.String("test", t.name),
				slog.String("stack", string(debug.Stack())))
		}
	}()
	fn(t)
}

func (s *Suite) validate(c *Case) error {
	for _, m := range c.marks {
		if _, ok := s.markers[m.Name]; !ok {
			return fmt.Errorf("%w: %q on test case %s", engine.ErrUnknownMarker, m.Name, c.name)
		}
	}
	return nil
}
