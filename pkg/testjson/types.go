// Package testjson decodes the NDJSON event stream printed by go test -json.
package testjson

import (
	"strings"
	"time"
)

// Action is the kind of a TestEvent.
type Action string

const (
	ActionStart       Action = "start"
	ActionRun         Action = "run"
	ActionPause       Action = "pause"
	ActionCont        Action = "cont"
	ActionPass        Action = "pass"
	ActionFail        Action = "fail"
	ActionSkip        Action = "skip"
	ActionOutput      Action = "output"
	ActionBench       Action = "bench"
	ActionBuildOutput Action = "build-output"
	ActionBuildFail   Action = "build-fail"
)

// Terminal reports whether a ends a test or a package.
func (a Action) Terminal() bool {
	return a == ActionPass || a == ActionFail || a == ActionSkip
}

// TestEvent is one line of go test -json output.
type TestEvent struct {
	Time        time.Time `json:"Time"`
	Action      Action    `json:"Action"`
	Package     string    `json:"Package"`
	ImportPath  string    `json:"ImportPath,omitempty"`
	Test        string    `json:"Test"`
	Elapsed     float64   `json:"Elapsed"`
	Output      string    `json:"Output"`
	FailedBuild string    `json:"FailedBuild,omitempty"`
}

// RootTest returns the top-level test name of a possibly nested subtest.
func (e TestEvent) RootTest() string {
	name, _, _ := strings.Cut(e.Test, "/")
	return name
}

// ProcessFunc receives decoded events from Stream.
type ProcessFunc func(TestEvent)

// TestResult is the outcome of one top-level test.
type TestResult struct {
	Name    string
	Action  Action // pass, fail or skip
	Elapsed time.Duration
	// Output holds the test's own lines and those of its subtests, without
	// the === and --- framing lines.
	Output []string
}

// PackageResult aggregates one package.
type PackageResult struct {
	Name       string
	Passed     int
	Failed     int
	Skipped    int
	Elapsed    time.Duration
	Tests      []TestResult
	BuildError string // non-empty if the package failed to build
	Output     []string
}

// Status returns pass, fail or skip for the package as a whole.
func (r *PackageResult) Status() Action {
	if r.BuildError != "" || r.Failed > 0 {
		return ActionFail
	}
	if r.Passed == 0 && r.Skipped > 0 {
		return ActionSkip
	}
	return ActionPass
}
