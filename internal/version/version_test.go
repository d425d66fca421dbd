package version

import "testing"

func TestString(t *testing.T) {
	orig := [3]string{Version, CommitHash, BuildDate}
	t.Cleanup(func() { Version, CommitHash, BuildDate = orig[0], orig[1], orig[2] })

	Version, CommitHash, BuildDate = "v0.3.0", "1a2b3c4", "2026-10-01T00:00:00Z"
	if got, want := String(), "v0.3.0 (commit 1a2b3c4, built 2026-10-01T00:00:00Z)"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
