package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkoosis/atfgo/internal/config"
	"github.com/dkoosis/atfgo/pkg/atf"
	"github.com/dkoosis/atfgo/pkg/gotest"
)

func clearEnv(t *testing.T) {
	t.Helper()
	home := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", home)
	t.Setenv("HOME", home)
	for _, k := range []string{"ATFGO_MARKER_POLICY", "ATFGO_DEBUG", "ATFGO_LOG_LEVEL", "ATFGO_GO", "ATFGO_SIDECAR"} {
		t.Setenv(k, "")
	}
}

func TestRun_UsageErrors(t *testing.T) {
	clearEnv(t)
	tests := []struct {
		name string
		args []string
		want string
	}{
		{name: "no mode", args: nil, want: "one of -l or test_case should be specified"},
		{name: "both modes", args: []string{"-l", "TestA"}, want: "mutually exclusive"},
		{name: "unknown flag", args: []string{"--bogus"}, want: "unknown flag"},
		{name: "bad var", args: []string{"-v", "novalue", "TestA"}, want: "expected var=value"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			code := run(context.Background(), tt.args, &stdout, &stderr)

			assert.Equal(t, atf.ExitUsage, code)
			assert.Empty(t, stdout.String())
			assert.Contains(t, stderr.String(), tt.want)
			assert.Contains(t, stderr.String(), "atf-gotest")
		})
	}
}

func TestRun_Version(t *testing.T) {
	clearEnv(t)
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"--version"}, &stdout, &stderr)
	assert.Equal(t, atf.ExitOK, code)
	assert.True(t, strings.HasPrefix(stdout.String(), "atf-gotest version "), stdout.String())
}

func TestRun_BadConfigFile(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, config.FileName), []byte("marker_policy: sloppy\n"), 0o644))

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"-l", "-s", dir}, &stdout, &stderr)
	assert.Equal(t, atf.ExitUsage, code)
	assert.Contains(t, stderr.String(), "sloppy")
	assert.Empty(t, stdout.String())
}

func TestNewEngine_UsesSettings(t *testing.T) {
	s := config.Defaults()
	s.GoTest.Go = "/opt/go/bin/go"
	eng, err := newEngine(&bytes.Buffer{})(s)
	require.NoError(t, err)
	assert.IsType(t, &gotest.Engine{}, eng)
}
