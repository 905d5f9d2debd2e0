package version

import (
	"testing"

	"github.com/fatih/color"
)

func TestVersion_DefaultValues(t *testing.T) {
	if Version == "" {
		t.Error("Version should have a default value")
	}
	if Pretty(Version) == "" {
		t.Error("Pretty(Version) should not be empty")
	}
}

func TestVersion_CanBeOverridden(t *testing.T) {
	origVersion, origCommit, origDate := Version, GitCommit, BuildDate
	t.Cleanup(func() {
		Version, GitCommit, BuildDate = origVersion, origCommit, origDate
	})

	Version = "1.2.3"
	GitCommit = "abc123def456"
	BuildDate = "2024-01-15T10:30:00Z"

	if Version != "1.2.3" {
		t.Errorf("Version = %q, want %q", Version, "1.2.3")
	}
	if GitCommit != "abc123def456" {
		t.Errorf("GitCommit = %q, want %q", GitCommit, "abc123def456")
	}
	if BuildDate != "2024-01-15T10:30:00Z" {
		t.Errorf("BuildDate = %q, want %q", BuildDate, "2024-01-15T10:30:00Z")
	}
}

func TestPretty(t *testing.T) {
	orig := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = orig })

	tests := []struct {
		in   string
		want string
	}{
		{"0.1.0", "0.1.0"},
		{"1.2.3-dev", "1.2.3-dev"},
		{"1.0.0-beta.1", "1.0.0-beta.1"},
		{"dev", "dev"},
		{"1.2", "1.2"},
		{"1.x.3", "1.x.3"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := Pretty(tt.in); got != tt.want {
				t.Errorf("Pretty(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestPrettyColors(t *testing.T) {
	orig := color.NoColor
	color.NoColor = false
	t.Cleanup(func() { color.NoColor = orig })

	got := Pretty("1.2.3")
	if got == "1.2.3" {
		t.Fatalf("Pretty(%q) was not colorized", "1.2.3")
	}
	if Pretty("not-a-version") != "not-a-version" {
		t.Errorf("non-semver input must pass through")
	}
}
