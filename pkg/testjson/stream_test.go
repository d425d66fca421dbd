package testjson

import (
	"bufio"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStream_DecodesEveryEvent(t *testing.T) {
	input := strings.Join([]string{
		`{"Time":"2026-10-19T10:00:00Z","Action":"start","Package":"example.com/x"}`,
		`{"Action":"run","Package":"example.com/x","Test":"TestCopy"}`,
		`{"Action":"output","Package":"example.com/x","Test":"TestCopy","Output":"=== RUN   TestCopy\n"}`,
		`{"Action":"pass","Package":"example.com/x","Test":"TestCopy","Elapsed":0.01}`,
		``,
		`{"Action":"pass","Package":"example.com/x","Elapsed":0.5}`,
	}, "\n") + "\n"

	var events []TestEvent
	malformed, err := Stream(context.Background(), strings.NewReader(input), func(e TestEvent) {
		events = append(events, e)
	})
	require.NoError(t, err)
	assert.Zero(t, malformed)
	require.Len(t, events, 5)

	assert.Equal(t, ActionStart, events[0].Action)
	assert.Equal(t, time.Date(2026, 10, 19, 10, 0, 0, 0, time.UTC), events[0].Time)
	assert.Equal(t, "TestCopy", events[3].Test)
	assert.InDelta(t, 0.01, events[3].Elapsed, 1e-9)
	assert.True(t, events[3].Action.Terminal())
	assert.False(t, events[2].Action.Terminal())
}

func TestStream_CountsMalformedLines(t *testing.T) {
	input := "no json here\n" +
		`{"Action":"run","Package":"x","Test":"TestA"}` + "\n" +
		"{truncated\n" +
		`{"Action":"fail","Package":"x","Test":"TestA"}` + "\n"

	var actions []Action
	malformed, err := Stream(context.Background(), strings.NewReader(input), func(e TestEvent) {
		actions = append(actions, e.Action)
	})
	require.NoError(t, err)
	assert.Equal(t, 2, malformed)
	assert.Equal(t, []Action{ActionRun, ActionFail}, actions)
}

func TestStream_StopsOnCancel(t *testing.T) {
	input := strings.Repeat(`{"Action":"output","Package":"x","Output":"line\n"}`+"\n", 100)
	ctx, cancel := context.WithCancel(context.Background())

	var seen int
	_, err := Stream(ctx, strings.NewReader(input), func(TestEvent) {
		seen++
		cancel()
	})
	if err != nil {
		assert.ErrorIs(t, err, context.Canceled)
	}
	assert.Less(t, seen, 100)
}

func TestStream_LineTooLong(t *testing.T) {
	input := `{"Action":"output","Output":"` + strings.Repeat("x", maxLine) + `"}` + "\n"
	_, err := Stream(context.Background(), strings.NewReader(input), func(TestEvent) {})
	require.Error(t, err)
	assert.ErrorIs(t, err, bufio.ErrTooLong)
}

// stalledPipe blocks in Read until closed, like the stdout pipe of a hung
// go test process.
type stalledPipe struct {
	closed chan struct{}
}

func (p *stalledPipe) Read([]byte) (int, error) {
	<-p.closed
	return 0, io.ErrClosedPipe
}

func (p *stalledPipe) Close() error {
	select {
	case <-p.closed:
	default:
		close(p.closed)
	}
	return nil
}

func TestStream_CancelClosesStalledReader(t *testing.T) {
	pipe := &stalledPipe{closed: make(chan struct{})}
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		_, err := Stream(ctx, pipe, func(TestEvent) {})
		done <- err
	}()

	select {
	case err := <-done:
		assert.True(t, errors.Is(err, context.DeadlineExceeded), "got %v", err)
	case <-time.After(2 * time.Second):
		t.Fatal("Stream did not return after the deadline")
	}
	select {
	case <-pipe.closed:
	default:
		t.Error("Stream did not close the reader")
	}
}
