package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/dkoosis/atfgo/internal/logging"
	"github.com/dkoosis/atfgo/pkg/metadata"
)

// Source names where a resolved value came from.
const (
	SourceEnv     = "env"
	SourceFile    = "file"
	SourceDefault = "default"
)

// Settings is the fully resolved configuration.
type Settings struct {
	MarkerPolicy metadata.Policy
	LogLevel     slog.Level
	GoTest       GoTest

	// Resolution metadata (for debugging)
	ConfigPath         string
	MarkerPolicySource string
	LogLevelSource     string
	GoSource           string
	SidecarSource      string
}

// GoTest configures the gotest engine.
type GoTest struct {
	Go      string
	Sidecar string
	Flags   []string
}

// Defaults returns settings with every value at its hardcoded default.
func Defaults() *Settings {
	return &Settings{
		MarkerPolicy:       metadata.PolicyLenient,
		LogLevel:           slog.LevelWarn,
		GoTest:             GoTest{Go: DefaultGo, Sidecar: DefaultSidecar},
		MarkerPolicySource: SourceDefault,
		LogLevelSource:     SourceDefault,
		GoSource:           SourceDefault,
		SidecarSource:      SourceDefault,
	}
}

// Resolve loads the config file for srcDir and applies environment
// overrides on top of it.
func Resolve(srcDir string) (*Settings, error) {
	f, path, err := LoadFile(srcDir)
	if err != nil {
		return nil, err
	}
	s := Defaults()
	s.ConfigPath = path

	// Resolve MarkerPolicy with priority: ENV > file > default
	if v, src := pick(os.Getenv("ATFGO_MARKER_POLICY"), f.MarkerPolicy); src != "" {
		p, err := metadata.ParsePolicy(v)
		if err != nil {
			return nil, fmt.Errorf("marker_policy from %s: %w", src, err)
		}
		s.MarkerPolicy, s.MarkerPolicySource = p, src
	}

	// Resolve LogLevel with priority: ATFGO_DEBUG > ATFGO_LOG_LEVEL > file debug > file log_level
	switch {
	case getEnvBool("ATFGO_DEBUG"):
		s.LogLevel, s.LogLevelSource = slog.LevelDebug, SourceEnv
	case os.Getenv("ATFGO_LOG_LEVEL") != "":
		lvl, err := logging.ParseLevel(os.Getenv("ATFGO_LOG_LEVEL"))
		if err != nil {
			return nil, fmt.Errorf("log_level from %s: %w", SourceEnv, err)
		}
		s.LogLevel, s.LogLevelSource = lvl, SourceEnv
	case f.Debug:
		s.LogLevel, s.LogLevelSource = slog.LevelDebug, SourceFile
	case f.LogLevel != "":
		lvl, err := logging.ParseLevel(f.LogLevel)
		if err != nil {
			return nil, fmt.Errorf("log_level from %s: %w", SourceFile, err)
		}
		s.LogLevel, s.LogLevelSource = lvl, SourceFile
	}

	if v, src := pick(os.Getenv("ATFGO_GO"), f.GoTest.Go); src != "" {
		s.GoTest.Go, s.GoSource = v, src
	}
	if v, src := pick(os.Getenv("ATFGO_SIDECAR"), f.GoTest.Sidecar); src != "" {
		s.GoTest.Sidecar, s.SidecarSource = v, src
	}
	s.GoTest.Flags = append([]string(nil), f.GoTest.Flags...)

	if err := validate(s); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return s, nil
}

// pick returns the first non-empty value and its source.
func pick(env, file string) (string, string) {
	if env = strings.TrimSpace(env); env != "" {
		return env, SourceEnv
	}
	if file = strings.TrimSpace(file); file != "" {
		return file, SourceFile
	}
	return "", ""
}

// getEnvBool reports whether key holds a true boolean; unparsable values count as false.
func getEnvBool(key string) bool {
	b, err := strconv.ParseBool(os.Getenv(key))
	return err == nil && b
}

func validate(s *Settings) error {
	if strings.ContainsRune(s.GoTest.Sidecar, os.PathSeparator) {
		return fmt.Errorf("gotest.sidecar must be a file name, got %q", s.GoTest.Sidecar)
	}
	for _, flag := range s.GoTest.Flags {
		if strings.HasPrefix(flag, "-run") || strings.HasPrefix(flag, "-list") || strings.HasPrefix(flag, "-json") {
			return fmt.Errorf("gotest.flags must not set %s, the engine controls it", flag)
		}
	}
	return nil
}
