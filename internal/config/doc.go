// Package config resolves atfgo settings.
//
// # Resolution Order
//
// Values are resolved in the following order (highest to lowest priority):
//
//  1. Environment variables (ATFGO_MARKER_POLICY, ATFGO_LOG_LEVEL, ATFGO_DEBUG,
//     ATFGO_GO, ATFGO_SIDECAR)
//  2. YAML config file: .atfgo.yaml in the test program's source directory,
//     else $XDG_CONFIG_HOME/atfgo/config.yaml
//  3. Hardcoded defaults
//
// There is no command-line layer: the ATF command line is fixed by the
// protocol and has no room for adapter settings.
//
// # Settings
//
//   - marker_policy: lenient (default) drops annotation values that do not
//     match their shape, strict fails the listing instead
//   - log_level: debug, info, warn (default) or error; logs go to stderr
//   - debug: shorthand for log_level debug
//   - gotest.go: go tool used by the gotest engine (default "go")
//   - gotest.sidecar: annotation file name inside the source directory
//     (default "atf.yaml")
//   - gotest.flags: extra flags passed to go test
package config
