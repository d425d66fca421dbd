package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// File is the on-disk shape of .atfgo.yaml.
type File struct {
	MarkerPolicy string     `yaml:"marker_policy,omitempty"`
	LogLevel     string     `yaml:"log_level,omitempty"`
	Debug        bool       `yaml:"debug,omitempty"`
	GoTest       GoTestFile `yaml:"gotest,omitempty"`
}

// GoTestFile holds the gotest engine section of the config file.
type GoTestFile struct {
	Go      string   `yaml:"go,omitempty"`
	Sidecar string   `yaml:"sidecar,omitempty"`
	Flags   []string `yaml:"flags,omitempty"`
}

// Constants for default values.
const (
	FileName       = ".atfgo.yaml"
	DefaultGo      = "go"
	DefaultSidecar = "atf.yaml"
)

// LoadFile reads the config file that applies to srcDir. It returns an
// empty File and "" when no file exists.
func LoadFile(srcDir string) (*File, string, error) {
	path := getConfigPath(srcDir)
	if path == "" {
		return &File{}, "", nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, path, fmt.Errorf("reading config file %s: %w", path, err)
	}
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, path, fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return &f, path, nil
}

// getConfigPath looks for .atfgo.yaml in srcDir, then in the user config
// directory.
func getConfigPath(srcDir string) string {
	if srcDir != "" {
		local := filepath.Join(srcDir, FileName)
		if _, err := os.Stat(local); err == nil {
			return local
		}
	}

	configHome, err := os.UserConfigDir()
	if err != nil || configHome == "" || configHome == "/" {
		return ""
	}
	xdgPath := filepath.Join(configHome, "atfgo", "config.yaml")
	if _, err := os.Stat(xdgPath); err == nil {
		return xdgPath
	} else if !errors.Is(err, os.ErrNotExist) {
		return xdgPath // let LoadFile report the real problem
	}
	return ""
}
