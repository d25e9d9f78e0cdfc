package common

import (
	"os"
	"path/filepath"
	"testing"
)

// resetBuild restores the link-time values after a test mutates them.
func resetBuild(t *testing.T, version, build, commit string) {
	t.Helper()
	saved := CurrentBuild()
	Version, Build, GitCommit = version, build, commit
	t.Cleanup(func() {
		Version, Build, GitCommit = saved.Version, saved.Build, saved.Commit
	})
}

func writeVersionFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".version")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestReadVersionFile(t *testing.T) {
	path := writeVersionFile(t, "# release\nversion: 1.2.0\nbuild: 2024-06-01T09:00:00Z\ncommit: 3f2a9c1\n")

	info, err := ReadVersionFile(path)
	if err != nil {
		t.Fatalf("ReadVersionFile: %v", err)
	}
	want := BuildInfo{Version: "1.2.0", Build: "2024-06-01T09:00:00Z", Commit: "3f2a9c1"}
	if info != want {
		t.Errorf("ReadVersionFile = %+v, want %+v", info, want)
	}
}

func TestReadVersionFile_Missing(t *testing.T) {
	info, err := ReadVersionFile(filepath.Join(t.TempDir(), "nope"))
	if err != nil || info != (BuildInfo{}) {
		t.Errorf("ReadVersionFile(missing) = %+v, %v", info, err)
	}
}

func TestReadVersionFile_Malformed(t *testing.T) {
	path := writeVersionFile(t, "version: [1.2\n")
	if _, err := ReadVersionFile(path); err == nil {
		t.Error("Expected parse error for malformed version file")
	}
}

func TestApplyVersionFile_FillsDefaultsOnly(t *testing.T) {
	resetBuild(t, "dev", "20240601", "unknown")
	path := writeVersionFile(t, "version: 1.2.0\nbuild: from-file\ncommit: 3f2a9c1\n")

	if err := ApplyVersionFile(path); err != nil {
		t.Fatalf("ApplyVersionFile: %v", err)
	}
	got := CurrentBuild()
	if got.Version != "1.2.0" || got.Commit != "3f2a9c1" {
		t.Errorf("CurrentBuild = %+v, want file version and commit", got)
	}
	if got.Build != "20240601" {
		t.Errorf("Build = %q, ldflags value should win", got.Build)
	}
	if got.String() != "1.2.0 (build: 20240601, commit: 3f2a9c1)" {
		t.Errorf("String = %q", got.String())
	}
}

func TestApplyVersionFile_EmptyPath(t *testing.T) {
	resetBuild(t, "dev", "unknown", "unknown")
	if err := ApplyVersionFile(""); err != nil {
		t.Fatalf("ApplyVersionFile: %v", err)
	}
	if CurrentBuild().Version != "dev" {
		t.Errorf("Version = %q", CurrentBuild().Version)
	}
}
