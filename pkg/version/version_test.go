package version

import (
	"strings"
	"testing"
)

func TestSummary(t *testing.T) {
	restoreVersion, restoreCommit := Version, Commit
	defer func() { Version, Commit = restoreVersion, restoreCommit }()

	tests := []struct {
		name    string
		version string
		commit  string
		want    string
	}{
		{name: "dev build", version: "dev", commit: "none", want: "dev"},
		{name: "empty version falls back", version: "", commit: "none", want: "dev"},
		{name: "release with commit", version: "1.2.0", commit: "abcdef1234567890", want: "1.2.0 (abcdef1)"},
		{name: "short commit kept whole", version: "1.2.0", commit: "abc", want: "1.2.0 (abc)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			Version, Commit = tt.version, tt.commit
			if got := Summary(); got != tt.want {
				t.Errorf("Summary() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPlatform(t *testing.T) {
	if !strings.Contains(Platform(), "/") {
		t.Errorf("Platform() = %q, want os/arch pair", Platform())
	}
}
