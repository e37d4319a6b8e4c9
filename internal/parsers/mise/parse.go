// Package mise parses the output of the mise (https://mise.jdx.dev) runtime
// version multiplexer, the reference authoritative toolchain manager.
package mise

import (
	"strings"
	"time"

	"github.com/manifoldpm/manifold/internal/model"
	"github.com/manifoldpm/manifold/internal/parsers/parseutil"
)

// ParseListInstalled parses `mise ls --json` output: a map of tool name to
// a list of installed version entries, the active one marked "active".
//
//	{"node": [{"version":"20.11.0","active":true,"installed":true}], "go": [...]}
func ParseListInstalled(raw []byte) ([]model.PackageRecord, error) {
	var doc map[string][]struct {
		Version   string `json:"version"`
		Active    bool   `json:"active"`
		Installed bool   `json:"installed"`
	}
	if err := parseutil.DecodeJSON(raw, &doc); err != nil {
		return nil, err
	}
	var out []model.PackageRecord
	for tool, versions := range doc {
		for _, v := range versions {
			if !v.Installed {
				continue
			}
			out = append(out, model.PackageRecord{
				ManagerID:        "mise",
				Name:             tool,
				InstalledVersion: v.Version,
			})
		}
	}
	return out, nil
}

// ParseListOutdated parses `mise outdated --json` output:
//
//	{"node": {"requested":"20","current":"20.11.0","latest":"20.12.0"}}
func ParseListOutdated(raw []byte) ([]model.PackageRecord, error) {
	var doc map[string]struct {
		Current string `json:"current"`
		Latest  string `json:"latest"`
	}
	if err := parseutil.DecodeJSON(raw, &doc); err != nil {
		return nil, err
	}
	var out []model.PackageRecord
	for tool, v := range doc {
		out = append(out, model.PackageRecord{
			ManagerID:        "mise",
			Name:             tool,
			InstalledVersion: v.Current,
			LatestVersion:    v.Latest,
		})
	}
	return out, nil
}

// ParseDetection parses `mise --version` output, e.g. "mise 2024.2.1 linux-x64".
func ParseDetection(raw []byte) model.DetectionRecord {
	rec := model.DetectionRecord{ManagerID: "mise", DetectedAt: time.Now()}
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
