package engine

// TestCase is a discovered test case. The adapter treats it as read only.
type TestCase interface {
	Name() string
	// Annotations returns the attached annotations in the engine's
	// iteration order.
	Annotations() []Annotation
	// Doc returns the documentation text, or "" when there is none.
	Doc() string
}

// Annotation is a declarative tag attached to a test case.
type Annotation struct {
	Name string
	Args []any
}

// Static is a plain TestCase value.
type Static struct {
	TestName  string
	Marks     []Annotation
	DocString string
}

var _ TestCase = Static{}

func (s Static) Name() string              { return s.TestName }
func (s Static) Annotations() []Annotation { return s.Marks }
func (s Static) Doc() string               { return s.DocString }

// Phase identifies which part of a test case an Event reports on.
type Phase string

const (
	PhaseSetup    Phase = "setup"
	PhaseCall     Phase = "call"
	PhaseTeardown Phase = "teardown"
)

// Outcome is the result of one phase.
type Outcome string

const (
	OutcomePassed  Outcome = "passed"
	OutcomeFailed  Outcome = "failed"
	OutcomeSkipped Outcome = "skipped"
	OutcomeError   Outcome = "error"
)

// Event reports the completion of one phase of a test case.
type Event struct {
	Test    string
	Phase   Phase
	Outcome Outcome
	// Detail explains the outcome on a single line. It is written to the
	// result file verbatim.
	Detail string
}

// Observer receives events synchronously, in completion order.
type Observer func(Event)
