package version

import (
	"testing"

	"github.com/fatih/color"
)

func withVars(t *testing.T, v, commit, date string) {
	t.Helper()
	origVersion, origCommit, origDate, origNoColor := Version, GitCommit, BuildDate, color.NoColor
	Version, GitCommit, BuildDate = v, commit, date
	color.NoColor = true
	t.Cleanup(func() {
		Version, GitCommit, BuildDate, color.NoColor = origVersion, origCommit, origDate, origNoColor
	})
}

func TestVersion_DefaultValues(t *testing.T) {
	if Version == "" {
		t.Error("Version should have a default value")
	}
}

func TestString(t *testing.T) {
	tests := []struct {
		name    string
		version string
		commit  string
		date    string
		want    string
	}{
		{name: "bare", version: "1.2.3", want: "mulforge 1.2.3"},
		{name: "pre-release", version: "0.1.0-dev", want: "mulforge 0.1.0-dev"},
		{name: "not semver", version: "nightly", want: "mulforge nightly"},
		{
			name:    "commit is shortened",
			version: "1.2.3",
			commit:  "abc123def4567890",
			want:    "mulforge 1.2.3 (commit abc123def456)",
		},
		{
			name:    "commit and date",
			version: "1.2.3",
			commit:  "abc123",
			date:    "2024-01-15T10:30:00Z",
			want:    "mulforge 1.2.3 (commit abc123, built 2024-01-15T10:30:00Z)",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			withVars(t, tt.version, tt.commit, tt.date)
			if got := String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestColored(t *testing.T) {
	withVars(t, "2.0.1-rc1", "", "")
	color.NoColor = false
	got := Colored()
	if got == Version {
		t.Fatal("no colour applied")
	}
	color.NoColor = true
	if got := Colored(); got != "2.0.1-rc1" {
		t.Fatalf("Colored() = %q with colours disabled", got)
	}
}
