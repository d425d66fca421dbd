package atf

import (
	"fmt"
	"io"

	"github.com/dkoosis/atfgo/pkg/engine"
)

// Reporter writes one ATF result line per completed test body. Setup and
// teardown phases are not reported.
type Reporter struct {
	w        io.Writer
	err      error
	reported int
}

// NewReporter returns a Reporter writing to w.
func NewReporter(w io.Writer) *Reporter {
	return &Reporter{w: w}
}

// Observe is an engine.Observer. Lines are written as events arrive; after
// the first write error nothing more is written.
func (r *Reporter) Observe(ev engine.Event) {
	if ev.Phase != engine.PhaseCall || r.err != nil {
		return
	}
	if _, err := fmt.Fprintf(r.w, "%s: %s\n", ev.Outcome, ev.Detail); err != nil {
		r.err = fmt.Errorf("writing result of %s: %w", ev.Test, err)
		return
	}
	r.reported++
}

// Err returns the first write error.
func (r *Reporter) Err() error { return r.err }

// Reported returns how many result lines were written.
func (r *Reporter) Reported() int { return r.reported }
