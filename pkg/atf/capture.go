package atf

import (
	"fmt"
	"os"
)

// captureOutput runs fn with os.Stdout and os.Stderr pointing at a temporary
// file and returns what was written there. The original streams are put
// back on every exit path, panics included.
func captureOutput(fn func() error) (output string, err error) {
	f, err := os.CreateTemp("", "atfgo-discover-*")
	if err != nil {
		return "", fmt.Errorf("capturing discovery output: %w", err)
	}
	origOut, origErr := os.Stdout, os.Stderr
	os.Stdout, os.Stderr = f, f
	defer func() {
		os.Stdout, os.Stderr = origOut, origErr
		if data, readErr := os.ReadFile(f.Name()); readErr == nil {
			output = string(data)
		}
		_ = f.Close()
		_ = os.Remove(f.Name())
	}()
	return "", fn()
}
