package suite

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkoosis/atfgo/pkg/engine"
	"github.com/dkoosis/atfgo/pkg/marker"
)

func registered(s *Suite) *Suite {
	for _, d := range marker.All() {
		s.RegisterMarker(d.Name, d.Description)
	}
	return s
}

func collect(t *testing.T, s *Suite, name string) ([]engine.Event, int) {
	t.Helper()
	var events []engine.Event
	status, err := s.Run(context.Background(), engine.Env{SrcDir: "/src"}, name, func(ev engine.Event) {
		events = append(events, ev)
	})
	require.NoError(t, err)
	return events, status
}

func TestDiscover_DeclarationOrder(t *testing.T) {
	s := registered(New()).
		Add("test1", func(*T) {}, Doc("first"), Files("/etc/passwd")).
		Add("test2", func(*T) {}).
		Add("test3", func(*T) {}, Timeout(250))

	tcs, err := s.Discover(context.Background(), engine.Env{})
	require.NoError(t, err)

	var names []string
	for _, tc := range tcs {
		names = append(names, tc.Name())
	}
	assert.Equal(t, []string{"test1", "test2", "test3"}, names)
	assert.Equal(t, "first", tcs[0].Doc())
	assert.Equal(t, []engine.Annotation{{Name: "files", Args: []any{[]string{"/etc/passwd"}}}}, tcs[0].Annotations())
}

func TestDiscover_UnregisteredMarker(t *testing.T) {
	s := New().Add("t", func(*T) {}, Mark("bogus"))
	s.RegisterMarker("timeout", "")

	_, err := s.Discover(context.Background(), engine.Env{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, engine.ErrUnknownMarker))
	assert.Contains(t, err.Error(), "bogus")
}

func TestAdd_PanicsOnDuplicate(t *testing.T) {
	s := New().Add("dup", func(*T) {})
	assert.Panics(t, func() { s.Add("dup", func(*T) {}) })
	assert.Panics(t, func() { s.Add("", func(*T) {}) })
	assert.Panics(t, func() { s.Add("nobody", nil) })
}

func TestAnnotations_ReturnsCopy(t *testing.T) {
	s := New().Add("t", func(*T) {}, Timeout(1))
	tc := s.cases[0]
	got := tc.Annotations()
	got[0].Name = "changed"
	assert.Equal(t, "timeout", tc.Annotations()[0].Name)
}

func TestRun_Phases(t *testing.T) {
	tests := []struct {
		name       string
		body       Func
		opts       []Option
		wantCall   engine.Event
		wantStatus int
	}{
		{
			name:       "pass",
			body:       func(t *T) { t.Log("not reported") },
			wantCall:   engine.Event{Test: "pass", Phase: engine.PhaseCall, Outcome: engine.OutcomePassed},
			wantStatus: 0,
		},
		{
			name: "fail",
			body: func(t *T) {
				t.Errorf("want %d", 1)
				t.Error("again")
			},
			wantCall:   engine.Event{Test: "fail", Phase: engine.PhaseCall, Outcome: engine.OutcomeFailed, Detail: "want 1; again"},
			wantStatus: 1,
		},
		{
			name: "fatal",
			body: func(t *T) {
				t.Fatal("stop")
				t.Log("unreachable")
			},
			wantCall:   engine.Event{Test: "fatal", Phase: engine.PhaseCall, Outcome: engine.OutcomeFailed, Detail: "stop"},
			wantStatus: 1,
		},
		{
			name:       "skip",
			body:       func(t *T) { t.Skipf("requires %s", "root") },
			wantCall:   engine.Event{Test: "skip", Phase: engine.PhaseCall, Outcome: engine.OutcomeSkipped, Detail: "requires root"},
			wantStatus: 0,
		},
		{
			name:       "setup_skip",
			body:       func(t *T) { t.Fatal("body must not run") },
			opts:       []Option{Setup(func(t *T) { t.Skip("no network") })},
			wantCall:   engine.Event{Test: "setup_skip", Phase: engine.PhaseCall, Outcome: engine.OutcomeSkipped, Detail: "no network"},
			wantStatus: 0,
		},
		{
			name:       "setup_fail",
			body:       func(t *T) { t.Fatal("body must not run") },
			opts:       []Option{Setup(func(t *T) { t.Fatal("no fixture") })},
			wantCall:   engine.Event{Test: "setup_fail", Phase: engine.PhaseCall, Outcome: engine.OutcomeError, Detail: "setup failed: no fixture"},
			wantStatus: 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := registered(New()).Add(tt.name, tt.body, tt.opts...)
			events, status := collect(t, s, tt.name)

			require.Len(t, events, 3)
			assert.Equal(t, engine.PhaseSetup, events[0].Phase)
			assert.Equal(t, engine.PhaseTeardown, events[2].Phase)
			if diff := cmp.Diff(tt.wantCall, events[1]); diff != "" {
				t.Errorf("call event mismatch (-want +got):\n%s", diff)
			}
			assert.Equal(t, tt.wantStatus, status)
		})
	}
}

func TestRun_PanicFailsBody(t *testing.T) {
	s := New().Add("boom", func(*T) { panic("kaboom") })
	events, status := collect(t, s, "boom")

	require.Len(t, events, 3)
	assert.Equal(t, engine.OutcomeFailed, events[1].Outcome)
	assert.Contains(t, events[1].Detail, "panic: kaboom")
	assert.Equal(t, 1, status)
}

func TestRun_TeardownAndCleanups(t *testing.T) {
	var order []string
	s := New().Add("t", func(t *T) {
		t.Cleanup(func() { order = append(order, "cleanup1") })
		t.Cleanup(func() { order = append(order, "cleanup2") })
		t.Fatal("body fails")
	}, Teardown(func(*T) { order = append(order, "teardown") }))

	events, status := collect(t, s, "t")
	assert.Equal(t, []string{"teardown", "cleanup2", "cleanup1"}, order)
	assert.Equal(t, engine.OutcomePassed, events[2].Outcome)
	assert.Equal(t, 1, status)
}

func TestRun_TeardownFailureSetsStatus(t *testing.T) {
	s := New().Add("t", func(*T) {}, Teardown(func(t *T) { t.Error("leak") }))
	events, status := collect(t, s, "t")

	assert.Equal(t, engine.OutcomePassed, events[1].Outcome)
	assert.Equal(t, engine.OutcomeFailed, events[2].Outcome)
	assert.Equal(t, 1, status)
}

func TestRun_SeesEnvironment(t *testing.T) {
	var srcDir, value string
	var found bool
	s := New().Add("env", func(t *T) {
		srcDir = t.SrcDir()
		value, found = t.Config("fake")
	})
	env := engine.Env{SrcDir: "/data", Vars: []engine.Var{{Key: "fake", Value: "alotof yes"}}}
	_, err := s.Run(context.Background(), env, "env", nil)
	require.NoError(t, err)

	assert.Equal(t, "/data", srcDir)
	assert.True(t, found)
	assert.Equal(t, "alotof yes", value)
}

func TestRun_UnknownTest(t *testing.T) {
	status, err := New().Run(context.Background(), engine.Env{}, "missing", nil)
	assert.ErrorIs(t, err, engine.ErrNoSuchTest)
	assert.Equal(t, 1, status)
}

func TestRun_CleanupsRunAfterFailingTeardown(t *testing.T) {
	var order []string
	s := New().Add("t", func(t *T) {
		t.Cleanup(func() { order = append(order, "cleanup1") })
		t.Cleanup(func() { order = append(order, "cleanup2") })
	}, Teardown(func(t *T) {
		order = append(order, "teardown")
		t.Fatal("teardown fails")
	}))

	events, status := collect(t, s, "t")
	assert.Equal(t, []string{"teardown", "cleanup2", "cleanup1"}, order)
	require.Len(t, events, 3)
	assert.Equal(t, engine.OutcomePassed, events[1].Outcome)
	assert.Equal(t, engine.Event{Test: "t", Phase: engine.PhaseTeardown, Outcome: engine.OutcomeFailed, Detail: "teardown fails"}, events[2])
	assert.Equal(t, 1, status)
}

func TestRun_PanickingTeardownAndCleanup(t *testing.T) {
	var order []string
	s := New().Add("t", func(t *T) {
		t.Cleanup(func() { order = append(order, "cleanup1") })
		t.Cleanup(func() { panic("cleanup boom") })
		t.Cleanup(func() { order = append(order, "cleanup3") })
	}, Teardown(func(*T) { panic("teardown boom") }))

	events, status := collect(t, s, "t")
	assert.Equal(t, []string{"cleanup3", "cleanup1"}, order)
	require.Len(t, events, 3)
	assert.Equal(t, engine.OutcomeFailed, events[2].Outcome)
	assert.Equal(t, "panic: teardown boom; panic: cleanup boom", events[2].Detail)
	assert.Equal(t, 1, status)
}

func TestRun_CancelledBeforeBody(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	var ran, tornDown, cleanedUp bool
	s := New().Add("t", func(*T) { ran = true },
		Setup(func(t *T) {
			t.Cleanup(func() { cleanedUp = true })
			cancel()
		}),
		Teardown(func(*T) { tornDown = true }))

	var events []engine.Event
	status, err := s.Run(ctx, engine.Env{}, "t", func(ev engine.Event) { events = append(events, ev) })
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, status)
	assert.False(t, ran)
	assert.True(t, tornDown)
	assert.True(t, cleanedUp)

	want := []engine.Event{
		{Test: "t", Phase: engine.PhaseSetup, Outcome: engine.OutcomePassed},
		{Test: "t", Phase: engine.PhaseCall, Outcome: engine.OutcomeError, Detail: "cancelled: context canceled"},
		{Test: "t", Phase: engine.PhaseTeardown, Outcome: engine.OutcomePassed},
	}
	if diff := cmp.Diff(want, events); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}
}
