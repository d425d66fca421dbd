package testjson

import (
	"strings"
	"time"
)

// Collector accumulates the events of one package run. Output of subtests
// is folded into their top-level test.
type Collector struct {
	pkg         string
	tests       map[string]*TestResult
	order       []string
	output      []string
	action      Action
	elapsed     time.Duration
	buildFailed bool
}

// NewCollector returns an empty Collector.
func NewCollector() *Collector {
	return &Collector{tests: make(map[string]*TestResult)}
}

// Observe is a ProcessFunc.
func (c *Collector) Observe(e TestEvent) {
	if c.pkg == "" {
		c.pkg = e.Package
		if c.pkg == "" {
			// build events carry "pkg [pkg.test]"
			c.pkg, _, _ = strings.Cut(e.ImportPath, " ")
		}
	}
	switch {
	case e.Action == ActionBuildOutput:
		if line := strings.TrimRight(e.Output, "\n"); line != "" {
			c.output = append(c.output, line)
		}
	case e.Action == ActionBuildFail:
		c.buildFailed = true
	case e.Test == "":
		c.observePackage(e)
	default:
		c.observeTest(e)
	}
}

func (c *Collector) observePackage(e TestEvent) {
	switch {
	case e.Action == ActionOutput:
		if line := strings.TrimRight(e.Output, "\n"); line != "" {
			c.output = append(c.output, line)
		}
	case e.Action.Terminal():
		c.action = e.Action
		c.elapsed = seconds(e.Elapsed)
		if e.FailedBuild != "" {
			c.buildFailed = true
		}
	}
}

func (c *Collector) observeTest(e TestEvent) {
	root := e.RootTest()
	tr, ok := c.tests[root]
	if !ok {
		tr = &TestResult{Name: root}
		c.tests[root] = tr
		c.order = append(c.order, root)
	}
	switch {
	case e.Action == ActionOutput:
		if line, keep := testLine(e.Output); keep {
			tr.Output = append(tr.Output, line)
		}
	case e.Action.Terminal() && e.Test == root:
		tr.Action = e.Action
		tr.Elapsed = seconds(e.Elapsed)
	}
}

// testLine strips indentation and drops the === and --- framing that go
// test prints around every test.
func testLine(output string) (string, bool) {
	line := strings.TrimSpace(output)
	switch {
	case line == "":
		return "", false
	case strings.HasPrefix(line, "=== "):
		return "", false
	case strings.HasPrefix(line, "--- PASS: "),
		strings.HasPrefix(line, "--- FAIL: "),
		strings.HasPrefix(line, "--- SKIP: "):
		return "", false
	}
	return line, true
}

// Result returns the outcome of the top-level test name. ok is false until
// a pass, fail or skip event for it was observed.
func (c *Collector) Result(name string) (TestResult, bool) {
	tr, ok := c.tests[name]
	if !ok || tr.Action == "" {
		return TestResult{}, false
	}
	out := *tr
	out.Output = append([]string(nil), tr.Output...)
	return out, true
}

// Results returns every finished top-level test in first-seen order.
func (c *Collector) Results() []TestResult {
	var out []TestResult
	for _, name := range c.order {
		if tr, ok := c.Result(name); ok {
			out = append(out, tr)
		}
	}
	return out
}

// PackageOutput returns the package-level and build output lines.
func (c *Collector) PackageOutput() string {
	return strings.Join(c.output, "\n")
}

// BuildFailed reports whether the package failed before any test finished.
func (c *Collector) BuildFailed() bool {
	if c.buildFailed {
		return true
	}
	return c.action == ActionFail && len(c.Results()) == 0
}

// Package summarises the run. The name is taken from the first event that
// carried one.
func (c *Collector) Package() PackageResult {
	r := PackageResult{
		Name:    c.pkg,
		Elapsed: c.elapsed,
		Tests:   c.Results(),
		Output:  append([]string(nil), c.output...),
	}
	for _, tr := range r.Tests {
		switch tr.Action {
		case ActionPass:
			r.Passed++
		case ActionFail:
			r.Failed++
		case ActionSkip:
			r.Skipped++
		}
	}
	if c.BuildFailed() {
		r.BuildError = c.PackageOutput()
		if r.BuildError == "" {
			r.BuildError = "build failed"
		}
	}
	return r
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
