package atf

import (
	"errors"
	"fmt"
	"strconv"
)

// Exit statuses used by the adapter itself. A delegated run ends with the
// engine's status instead.
const (
	ExitOK      = 0
	ExitFailure = 1
	ExitUsage   = 2
)

// ErrConfig is matched by every *ConfigError.
var ErrConfig = errors.New("atf: configuration error")

// ConfigError reports invalid or contradictory command-line arguments. It
// is raised before any discovery or execution happens.
type ConfigError struct {
	Err error
}

func configErrorf(format string, args ...any) *ConfigError {
	return &ConfigError{Err: fmt.Errorf(format, args...)}
}

func (e *ConfigError) Error() string { return e.Err.Error() }

func (e *ConfigError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrConfig) true for every ConfigError.
func (e *ConfigError) Is(target error) bool { return target == ErrConfig }

// DiscoveryError reports that the engine failed to collect test cases.
// Output holds whatever the engine printed while discovering, verbatim.
type DiscoveryError struct {
	Output string
	Err    error
}

func (e *DiscoveryError) Error() string {
	if e.Output != "" {
		return e.Output
	}
	return "discovering test cases: " + e.Err.Error()
}

func (e *DiscoveryError) Unwrap() error { return e.Err }

// ExitError carries a non-zero exit status out of a cobra command.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string { return "exit status " + strconv.Itoa(e.Code) }
