// Package marker holds the fixed table of annotations understood by the ATF
// adapter and the ATF property each one maps to.
package marker

// Descriptor describes one annotation and the ATF property it emits.
type Descriptor struct {
	// Name is the annotation name used in test declarations.
	Name string
	// Key is the ATF metadata property the annotation emits.
	Key string
	// Description is also the text registered with the engine's marker
	// validation.
	Description string
	Shape       Shape
	// Values lists the accepted strings for Enum shapes.
	Values []string
}

var registry = []Descriptor{
	{
		Name: "timeout",
		Key:  "timeout",
		Description: "timeout(seconds): maximum run time of the test case in seconds. " +
			"Zero means the test case has no run-time limit, which is discouraged.",
		Shape: Integer,
	},
	{
		Name: "arch",
		Key:  "require.arch",
		Description: "arch(archs): architectures the test case can run under " +
			"without failing because of an architecture mismatch.",
		Shape: List,
	},
	{
		Name: "config_variables",
		Key:  "require.config",
		Description: "config_variables(vars): configuration variables that must be defined. " +
			"If any is undefined the test case is skipped.",
		Shape: List,
	},
	{
		Name: "diskspace",
		Key:  "require.diskspace",
		Description: "diskspace(size): minimum free disk space needed by the test case. " +
			"Accepts a K, M, G or T suffix.",
		Shape: Size,
	},
	{
		Name: "files",
		Key:  "require.files",
		Description: "files(files): absolute paths that must exist. " +
			"If any is missing the test case is skipped.",
		Shape: List,
	},
	{
		Name: "machine",
		Key:  "require.machine",
		Description: "machine(machines): machine types the test case can run under " +
			"without failing because of a machine type mismatch.",
		Shape: List,
	},
	{
		Name: "memory",
		Key:  "memory",
		Description: "memory(size): minimum physical memory needed by the test case. " +
			"Accepts a K, M, G or T suffix.",
		Shape: Size,
	},
	{
		Name: "progs",
		Key:  "require.progs",
		Description: "progs(programs): programs that must be available, as plain names " +
			"looked up in PATH or as absolute paths. If any is missing the test case is skipped.",
		Shape: List,
	},
	{
		Name: "user",
		Key:  "require.user",
		Description: "user(privilege): privileges needed by the test case, root or unprivileged. " +
			"A root test run by a regular user is skipped; an unprivileged test run as root " +
			"drops privileges when unprivileged-user is configured and is skipped otherwise.",
		Shape:  Enum,
		Values: []string{string(Root), string(Unprivileged)},
	},
}

var byName = func() map[string]int {
	m := make(map[string]int, len(registry))
	for i, d := range registry {
		if _, dup := m[d.Name]; dup {
			panic("marker: duplicate annotation " + d.Name)
		}
		m[d.Name] = i
	}
	return m
}()

// Lookup returns the descriptor registered for an annotation name.
func Lookup(name string) (Descriptor, bool) {
	i, ok := byName[name]
	if !ok {
		return Descriptor{}, false
	}
	return registry[i], true
}

// All returns every descriptor in registration order.
func All() []Descriptor {
	out := make([]Descriptor, len(registry))
	copy(out, registry)
	return out
}

// Names returns every annotation name in registration order.
func Names() []string {
	names := make([]string, len(registry))
	for i, d := range registry {
		names[i] = d.Name
	}
	return names
}
