// Package npm parses the output of the npm JavaScript package manager.
package npm

import (
	"strings"
	"time"

	"github.com/manifoldpm/manifold/internal/model"
	"github.com/manifoldpm/manifold/internal/parsers/parseutil"
)

// ParseListInstalled parses `npm ls -g --json --depth=0` output:
//
//	{"dependencies": {"eslint": {"version": "8.56.0"}, ...}}
func ParseListInstalled(raw []byte) ([]model.PackageRecord, error) {
	var doc struct {
		Dependencies map[string]struct {
			Version string `json:"version"`
		} `json:"dependencies"`
	}
	if err := parseutil.DecodeJSON(raw, &doc); err != nil {
		return nil, err
	}
	out := make([]model.PackageRecord, 0, len(doc.Dependencies))
	for name, dep := range doc.Dependencies {
		out = append(out, model.PackageRecord{
			ManagerID:        "npm",
			Name:             name,
			InstalledVersion: dep.Version,
		})
	}
	return out, nil
}

// ParseListOutdated parses `npm outdated -g --json` output:
//
//	{"eslint": {"current": "8.56.0", "wanted": "8.57.0", "latest": "9.1.0"}}
func ParseListOutdated(raw []byte) ([]model.PackageRecord, error) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "{}" {
		return nil, nil
	}
	var doc map[string]struct {
		Current string `json:"current"`
		Latest  string `json:"latest"`
	}
	if err := parseutil.DecodeJSON(raw, &doc); err != nil {
		return nil, err
	}
	out := make([]model.PackageRecord, 0, len(doc))
	for name, v := range doc {
		out = append(out, model.PackageRecord{
			ManagerID:        "npm",
			Name:             name,
			InstalledVersion: v.Current,
			LatestVersion:    v.Latest,
		})
	}
	return out, nil
}

// ParseSearch parses `npm search --json <query>` output: an array of hits.
func ParseSearch(raw []byte, query string) ([]model.SearchResult, error) {
	var hits []struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		Version     string `json:"version"`
	}
	if err := parseutil.DecodeJSON(raw, &hits); err != nil {
		return nil, err
	}
	now := time.Now()
	out := make([]model.SearchResult, 0, len(hits))
	for _, h := range hits {
		out = append(out, model.SearchResult{
			ManagerID:     "npm",
			Name:          h.Name,
			Description:   h.Description,
			LatestVersion: h.Version,
			Query:         query,
			FetchedAt:     now,
		})
	}
	return out, nil
}

// ParseDetection parses `npm --version` output, e.g. "10.5.0".
func ParseDetection(raw []byte) model.DetectionRecord {
	rec := model.DetectionRecord{ManagerID: "npm", DetectedAt: time.Now()}
	version := strings.TrimSpace(string(raw))
	if version == "" {
		return rec
	}
	rec.Installed = true
	rec.Version = version
	return rec
}
