package magetasks

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/magefile/mage/sh"
)

// BuildAll builds every binary in Binaries with version information
// stamped in.
func BuildAll() error {
	PrintH2Header("Build")

	flags := Ldflags(gitVersion(), gitCommit(), time.Now().UTC().Format(time.RFC3339))
	names := make([]string, 0, len(Binaries))
	for name := range Binaries {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		out := filepath.Join(BinDir, name)
		fmt.Printf("Building %s...\n", name)
		if err := sh.RunV("go", "build", "-ldflags", flags, "-o", out, Binaries[name]); err != nil {
			PrintError("Build failed")
			return err
		}
		PrintSuccess("Built: " + out)
	}
	return nil
}

// Ldflags returns the linker flags that set internal/version.
func Ldflags(version, commit, date string) string {
	pkg := ModulePath + "/internal/version"
	return fmt.Sprintf("-s -w -X '%s.Version=%s' -X '%s.CommitHash=%s' -X '%s.BuildDate=%s'",
		pkg, version, pkg, commit, pkg, date)
}

// Clean removes build artifacts.
func Clean() error {
	PrintH2Header("Clean")
	if err := sh.Rm(BinDir); err != nil {
		return err
	}
	if err := sh.Rm("coverage.out"); err != nil {
		return err
	}
	PrintSuccess("Cleaned build artifacts")
	return nil
}

func gitVersion() string {
	out, err := sh.Output("git", "describe", "--tags", "--always", "--dirty", "--match=v*")
	if err != nil || out == "" {
		return "dev"
	}
	return strings.TrimSpace(out)
}

func gitCommit() string {
	out, err := sh.Output("git", "rev-parse", "--short", "HEAD")
	if err != nil || out == "" {
		return "unknown"
	}
	return strings.TrimSpace(out)
}
