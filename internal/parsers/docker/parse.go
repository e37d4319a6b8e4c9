// Package docker parses Docker Engine's image listing and search output.
// docker has no ListOutdated capability: image tags are not versioned in a
// way the rest of the system can diff, so staleness is left to the user's
// own pull cadence.
package docker

import (
	"strings"
	"time"

	"github.com/manifoldpm/manifold/internal/model"
	"github.com/manifoldpm/manifold/internal/parsers/parseutil"
)

type imageEntry struct {
	Repository string `json:"Repository"`
	Tag        string `json:"Tag"`
}

// ParseListInstalled parses `docker image ls --format '{{json .}}'` output,
// one JSON object per line.
func ParseListInstalled(raw []byte) ([]model.PackageRecord, error) {
	var out []model.PackageRecord
	for _, line := range parseutil.Lines(raw) {
		var entry imageEntry
		if err := parseutil.DecodeJSON([]byte(line), &entry); err != nil {
			return nil, err
		}
		if entry.Repository == "<none>" {
			continue
		}
		out = append(out, model.PackageRecord{
			ManagerID:        "docker",
			Name:             entry.Repository,
			InstalledVersion: entry.Tag,
		})
	}
	return out, nil
}

type searchEntry struct {
	Name string `json:"Name"`
}

// ParseSearch parses `docker search --format '{{json .}}'` output.
func ParseSearch(raw []byte) ([]model.SearchResult, error) {
	var out []model.SearchResult
	for _, line := range parseutil.Lines(raw) {
		var entry searchEntry
		if err := parseutil.DecodeJSON([]byte(line), &entry); err != nil {
			return nil, err
		}
		out = append(out, model.SearchResult{ManagerID: "docker", Name: entry.Name})
	}
	return out, nil
}

// ParseDetection parses `docker --version` output, e.g.
// "Docker version 25.0.3, build 4debf41".
func ParseDetection(raw []byte) model.DetectionRecord {
	rec := model.DetectionRecord{ManagerID: "docker", DetectedAt: time.Now()}
	line := strings.TrimSpace(string(raw))
	if line == "" {
		return rec
	}
	fields := parseutil.Fields(line)
	rec.Installed = true
	if len(fields) >= 3 {
		rec.Version = strings.TrimSuffix(fields[2], ",")
	}
	return rec
}
