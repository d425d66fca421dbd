package metadata

import (
	"fmt"
	"log/slog"

	"github.com/dkoosis/atfgo/pkg/engine"
	"github.com/dkoosis/atfgo/pkg/marker"
)

// Policy decides what happens when an annotation value does not match the
// shape its descriptor declares.
type Policy int

const (
	// PolicyLenient drops the offending property and keeps going.
	PolicyLenient Policy = iota
	// PolicyStrict fails the extraction with a *ShapeError.
	PolicyStrict
)

// ParsePolicy maps "lenient" and "strict" to a Policy.
func ParsePolicy(s string) (Policy, error) {
	switch s {
	case "", "lenient":
		return PolicyLenient, nil
	case "strict":
		return PolicyStrict, nil
	default:
		return PolicyLenient, fmt.Errorf("unknown marker policy %q (expected lenient or strict)", s)
	}
}

func (p Policy) String() string {
	if p == PolicyStrict {
		return "strict"
	}
	return "lenient"
}

// ShapeError reports an annotation whose arguments do not fit its descriptor.
type ShapeError struct {
	Test       string
	Annotation string
	Err        error
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("test %s: annotation %s: %v", e.Test, e.Annotation, e.Err)
}

func (e *ShapeError) Unwrap() error { return e.Err }

// Extractor turns discovered test cases into metadata records.
type Extractor struct {
	Policy Policy
	Logger *slog.Logger
}

// Extract builds the record for tc: ident first, then descr when the test
// is documented, then one property per known annotation in the order the
// engine iterates them. Unknown annotations are ignored; validating them is
// the engine's job. A repeated annotation keeps its first position and the
// value of its last occurrence.
func (x *Extractor) Extract(tc engine.TestCase) (*Record, error) {
	r := NewRecord(tc.Name())
	if doc := tc.Doc(); doc != "" {
		r.Set(KeyDescr, doc)
	}
	for _, a := range tc.Annotations() {
		d, ok := marker.Lookup(a.Name)
		if !ok {
			continue
		}
		v, err := d.Coerce(a.Args)
		if err != nil {
			if x.Policy == PolicyStrict {
				return nil, &ShapeError{Test: tc.Name(), Annotation: a.Name, Err: err}
			}
			x.logger().Debug("dropping property",
				slog.String("test", tc.Name()),
				slog.String("key", d.Key),
				slog.String("reason", err.Error()))
			continue
		}
		r.Set(d.Key, v)
	}
	return r, nil
}

// ExtractAll extracts every test case, stopping at the first error.
func (x *Extractor) ExtractAll(tcs []engine.TestCase) ([]*Record, error) {
	records := make([]*Record, 0, len(tcs))
	for _, tc := range tcs {
		r, err := x.Extract(tc)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, nil
}

func (x *Extractor) logger() *slog.Logger {
	if x.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return x.Logger
}
