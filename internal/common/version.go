package common

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Build metadata set at link time:
//
//	go build -ldflags "-X github.com/bobmcallan/fundboard/internal/common.Version=1.2.0"
var (
	Version   = "dev"
	Build     = "unknown"
	GitCommit = "unknown"
)

// BuildInfo identifies the running binary. It is what /api/version serves.
type BuildInfo struct {
	Version string `json:"version" yaml:"version"`
	Build   string `json:"build" yaml:"build"`
	Commit  string `json:"commit" yaml:"commit"`
}

// CurrentBuild returns the build metadata in effect.
func CurrentBuild() BuildInfo {
	return BuildInfo{Version: Version, Build: Build, Commit: GitCommit}
}

func (b BuildInfo) String() string {
	return fmt.Sprintf("%s (build: %s, commit: %s)", b.Version, b.Build, b.Commit)
}

// ReadVersionFile parses a release .version file:
//
//	version: 1.2.0
//	build: 2024-06-01T09:00:00Z
//	commit: 3f2a9c1
//
// A missing file yields an empty BuildInfo.
func ReadVersionFile(path string) (BuildInfo, error) {
	var info BuildInfo
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return info, nil
	}
	if err != nil {
		return info, fmt.Errorf("failed to read version file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &info); err != nil {
		return info, fmt.Errorf("failed to parse version file %s: %w", path, err)
	}
	return info, nil
}

// ApplyVersionFile fills in the build values that ldflags left at their
// defaults from the file at path.
func ApplyVersionFile(path string) error {
	if path == "" {
		return nil
	}
	info, err := ReadVersionFile(path)
	if err != nil {
		return err
	}
	if Version == "dev" && info.Version != "" {
		Version = info.Version
	}
	if Build == "unknown" && info.Build != "" {
		Build = info.Build
	}
	if GitCommit == "unknown" && info.Commit != "" {
		GitCommit = info.Commit
	}
	return nil
}
