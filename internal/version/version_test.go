package version

import (
	"runtime/debug"
	"testing"
)

func withVersion(t *testing.T, v string, info *debug.BuildInfo) {
	t.Helper()
	oldV, oldRead := Version, readBuildInfo
	t.Cleanup(func() { Version, readBuildInfo = oldV, oldRead })
	Version = v
	readBuildInfo = func() (*debug.BuildInfo, bool) { return info, info != nil }
}

func TestGetVersion(t *testing.T) {
	tests := []struct {
		name    string
		version string
		info    *debug.BuildInfo
		want    string
	}{
		{"release", "v1.0.0", nil, "v1.0.0"},
		{"prerelease", "v0.1.0-beta.1", nil, "v0.1.0-beta.1"},
		{"dev without build info", "dev", nil, "dev"},
		{"dev with devel module", "dev", &debug.BuildInfo{Main: debug.Module{Version: "(devel)"}}, "dev"},
		{"go install", "dev", &debug.BuildInfo{Main: debug.Module{Version: "v0.4.2"}}, "v0.4.2"},
		{"empty", "", nil, "dev"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			withVersion(t, tt.version, tt.info)
			if got := GetVersion(); got != tt.want {
				t.Errorf("GetVersion() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestGetFullVersion(t *testing.T) {
	withVersion(t, "v1.2.3", nil)
	oldC, oldD := Commit, Date
	t.Cleanup(func() { Commit, Date = oldC, oldD })
	Commit, Date = "abc123", "2026-01-02T10:30:00Z"

	want := "v1.2.3 (commit: abc123, built: 2026-01-02T10:30:00Z)"
	if got := GetFullVersion(); got != want {
		t.Errorf("GetFullVersion() = %q, want %q", got, want)
	}
}

func TestGeneratorID(t *testing.T) {
	withVersion(t, "v0.9.0", nil)
	if got := GeneratorID(); got != "avrogen/v0.9.0" {
		t.Errorf("GeneratorID() = %q", got)
	}
}
