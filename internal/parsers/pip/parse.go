// Package pip parses the output of Python's pip package manager.
package pip

import (
	"strings"
	"time"

	"github.com/manifoldpm/manifold/internal/model"
	"github.com/manifoldpm/manifold/internal/parsers/parseutil"
)

// ParseListInstalled parses `pip list --format=json` output:
//
//	[{"name": "requests", "version": "2.31.0"}]
func ParseListInstalled(raw []byte) ([]model.PackageRecord, error) {
	var entries []struct {
		Name    string `json:"name"`
		Version string `json:"version"`
	}
	if err := parseutil.DecodeJSON(raw, &entries); err != nil {
		return nil, err
	}
	out := make([]model.PackageRecord, 0, len(entries))
	for _, e := range entries {
		out = append(out, model.PackageRecord{ManagerID: "pip", Name: e.Name, InstalledVersion: e.Version})
	}
	return out, nil
}

// ParseListOutdated parses `pip list --outdated --format=json` output:
//
//	[{"name": "requests", "version": "2.30.0", "latest_version": "2.31.0"}]
func ParseListOutdated(raw []byte) ([]model.PackageRecord, error) {
	var entries []struct {
		Name          string `json:"name"`
		Version       string `json:"version"`
		LatestVersion string `json:"latest_version"`
	}
	if err := parseutil.DecodeJSON(raw, &entries); err != nil {
		return nil, err
	}
	out := make([]model.PackageRecord, 0, len(entries))
	for _, e := range entries {
		out = append(out, model.PackageRecord{
			ManagerID:        "pip",
			Name:             e.Name,
			InstalledVersion: e.Version,
			LatestVersion:    e.LatestVersion,
		})
	}
	return out, nil
}

// ParseSearch parses `pip index versions <query>` output:
//
//	requests (2.31.0)
//	Available versions: 2.31.0, 2.30.0, 2.29.0
func ParseSearch(query string, raw []byte) ([]model.SearchResult, error) {
	var out []model.SearchResult
	for _, line := range parseutil.Lines(raw) {
		name, rest, ok := strings.Cut(line, " (")
		if !ok || !strings.EqualFold(name, query) {
			continue
		}
		latest := strings.TrimSuffix(rest, ")")
		out = append(out, model.SearchResult{
			ManagerID:     "pip",
			Name:          name,
			LatestVersion: latest,
			Query:         query,
		})
	}
	return out, nil
}

// ParseDetection parses `pip --version` output, e.g.
// "pip 24.0 from /usr/lib/python3/dist-packages/pip (python 3.12)".
func ParseDetection(raw []byte) model.DetectionRecord {
	rec := model.DetectionRecord{ManagerID: "pip", DetectedAt: time.Now()}
	line := strings.TrimSpace(string(raw))
	if line == "" {
		return rec
	}
	fields := parseutil.Fields(line)
	rec.Installed = true
	if len(fields) >= 2 {
		rec.Version = fields[1]
	}
	return rec
}
