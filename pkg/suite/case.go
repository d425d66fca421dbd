package suite

import (
	"github.com/dkoosis/atfgo/pkg/engine"
	"github.com/dkoosis/atfgo/pkg/marker"
)

// Func is the body, setup or teardown of a test case.
type Func func(t *T)

// Case is one declared test case.
type Case struct {
	name     string
	doc      string
	marks    []engine.Annotation
	body     Func
	setup    Func
	teardown Func
}

var _ engine.TestCase = (*Case)(nil)

func (c *Case) Name() string { return c.name }
func (c *Case) Doc() string  { return c.doc }

// Annotations returns the marks in declaration order.
func (c *Case) Annotations() []engine.Annotation {
	return append([]engine.Annotation(nil), c.marks...)
}

// Option configures a Case at declaration.
type Option func(*Case)

// Doc sets the description of the test case.
func Doc(text string) Option {
	return func(c *Case) { c.doc = text }
}

// Mark attaches an annotation with positional arguments.
func Mark(name string, args ...any) Option {
	return func(c *Case) {
		c.marks = append(c.marks, engine.Annotation{Name: name, Args: args})
	}
}

// Setup runs fn before the body. A failing or skipping setup prevents the
// body from running.
func Setup(fn Func) Option {
	return func(c *Case) { c.setup = fn }
}

// Teardown runs fn after the body, even when setup or body failed.
func Teardown(fn Func) Option {
	return func(c *Case) { c.teardown = fn }
}

func Timeout(seconds int) Option            { return Mark("timeout", seconds) }
func Arch(archs ...string) Option           { return Mark("arch", archs) }
func ConfigVariables(vars ...string) Option { return Mark("config_variables", vars) }
func Files(paths ...string) Option          { return Mark("files", paths) }
func Machine(machines ...string) Option     { return Mark("machine", machines) }
func Progs(progs ...string) Option          { return Mark("progs", progs) }
func User(u marker.User) Option             { return Mark("user", u) }

// Diskspace takes a byte count or a string with a K, M, G or T suffix.
func Diskspace(size any) Option { return Mark("diskspace", size) }

// Memory takes a byte count or a string with a K, M, G or T suffix.
func Memory(size any) Option { return Mark("memory", size) }
