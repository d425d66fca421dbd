package gotest

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/dkoosis/atfgo/pkg/engine"
)

// Sidecar is the per-directory file that attaches ATF metadata to Go test
// functions:
//
//	tests:
//	  TestCopy:
//	    descr: Copies files around
//	    markers:
//	      - files: [/bin/ls, /bin/cp]
//	      - timeout: 250
type Sidecar struct {
	Tests map[string]SidecarEntry `yaml:"tests"`
}

// SidecarEntry holds the metadata of one test function.
type SidecarEntry struct {
	Descr   string           `yaml:"descr"`
	Markers []map[string]any `yaml:"markers"`
}

// Annotations converts the markers list to annotations, keeping its order.
// A list value becomes the single argument of its annotation.
func (e SidecarEntry) Annotations() ([]engine.Annotation, error) {
	out := make([]engine.Annotation, 0, len(e.Markers))
	for i, m := range e.Markers {
		if len(m) != 1 {
			return nil, fmt.Errorf("markers[%d]: expected exactly one marker per item, got %d", i, len(m))
		}
		for name, value := range m {
			var args []any
			if value != nil {
				args = []any{value}
			}
			out = append(out, engine.Annotation{Name: name, Args: args})
		}
	}
	return out, nil
}

// LoadSidecar reads the sidecar at path. A missing file yields an empty
// Sidecar.
func LoadSidecar(path string) (*Sidecar, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is srcdir plus a configured base name
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &Sidecar{}, nil
		}
		return nil, fmt.Errorf("reading sidecar: %w", err)
	}
	var sc Sidecar
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", filepath.Base(path), err)
	}
	return &sc, nil
}
