// Package pnpm parses pnpm's JSON CLI output. pnpm mirrors npm's JSON
// shapes closely enough that this package is a thin variant of
// internal/parsers/npm rather than a shared one, since the two tools drift
// independently between major versions.
package pnpm

import (
	"strings"
	"time"

	"github.com/manifoldpm/manifold/internal/model"
	"github.com/manifoldpm/manifold/internal/parsers/parseutil"
)

type listEntry struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Path    string `json:"path"`
}

// ParseListInstalled parses `pnpm list -g --json` output, an array of
// dependency-tree roots each carrying a "dependencies" map.
func ParseListInstalled(raw []byte) ([]model.PackageRecord, error) {
	var roots []struct {
		Dependencies map[string]listEntry `json:"dependencies"`
	}
	if err := parseutil.DecodeJSON(raw, &roots); err != nil {
		return nil, err
	}
	var out []model.PackageRecord
	for _, root := range roots {
		for name, entry := range root.Dependencies {
			out = append(out, model.PackageRecord{
				ManagerID:        "pnpm",
				Name:             name,
				InstalledVersion: entry.Version,
			})
		}
	}
	return out, nil
}

type outdatedEntry struct {
	Current string `json:"current"`
	Latest  string `json:"latest"`
}

// ParseListOutdated parses `pnpm outdated -g --format json` output, a JSON
// object keyed by package name.
func ParseListOutdated(raw []byte) ([]model.PackageRecord, error) {
	raw = []byte(strings.TrimSpace(string(raw)))
	if len(raw) == 0 {
		return nil, nil
	}
	var m map[string]outdatedEntry
	if err := parseutil.DecodeJSON(raw, &m); err != nil {
		return nil, err
	}
	var out []model.PackageRecord
	for name, entry := range m {
		out = append(out, model.PackageRecord{
			ManagerID:        "pnpm",
			Name:             name,
			InstalledVersion: entry.Current,
			LatestVersion:    entry.Latest,
		})
	}
	return out, nil
}

// ParseDetection parses `pnpm --version` output, a bare version string.
func ParseDetection(raw []byte) model.DetectionRecord {
	rec := model.DetectionRecord{ManagerID: "pnpm", DetectedAt: time.Now()}
	version := strings.TrimSpace(string(raw))
	if version == "" {
		return rec
	}
	rec.Installed = true
	rec.Version = version
	return rec
}
