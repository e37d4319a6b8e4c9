// Package homebrew parses the output of the Homebrew package manager, the
// reference guarded system manager (it can touch OS-level toolchains and
// libraries, hence safe-mode applies to it).
package homebrew

import (
	"strings"
	"time"

	"github.com/manifoldpm/manifold/internal/model"
	"github.com/manifoldpm/manifold/internal/parsers/parseutil"
)

// ParseListInstalled parses `brew list --versions` output, one line per
// formula: "name version [version...]". The last version on the line is
// the currently linked one.
func ParseListInstalled(raw []byte) ([]model.PackageRecord, error) {
	var out []model.PackageRecord
	for _, line := range parseutil.Lines(raw) {
		fields := parseutil.Fields(line)
		if len(fields) < 2 {
			continue
		}
		out = append(out, model.PackageRecord{
			ManagerID:        "homebrew",
			Name:             fields[0],
			InstalledVersion: fields[len(fields)-1],
		})
	}
	return out, nil
}

// ParseListOutdated parses `brew outdated --json=v2` output:
//
//	{"formulae": [{"name":"swiftformat","installed_versions":["0.53.0"],"current_version":"0.54.2"}], "casks": [...]}
//
// Brew's own "outdated" determination can include entries whose installed
// and current versions are equal (a quirk of its reinstall-recommended
// heuristics, e.g. for a formula rebuilt against a newer dependency); the
// caller is responsible for applying the has_update invariant before
// persisting, per spec.md §3.
func ParseListOutdated(raw []byte) ([]model.PackageRecord, error) {
	var doc struct {
		Formulae []struct {
			Name              string   `json:"name"`
			InstalledVersions []string `json:"installed_versions"`
			CurrentVersion    string   `json:"current_version"`
		} `json:"formulae"`
		Casks []struct {
			Name              string   `json:"name"`
			InstalledVersions []string `json:"installed_versions"`
			CurrentVersion    string   `json:"current_version"`
		} `json:"casks"`
	}
	if err := parseutil.DecodeJSON(raw, &doc); err != nil {
		return nil, err
	}
	var out []model.PackageRecord
	for _, f := range doc.Formulae {
		installed := ""
		if len(f.InstalledVersions) > 0 {
			installed = f.InstalledVersions[len(f.InstalledVersions)-1]
		}
		out = append(out, model.PackageRecord{
			ManagerID:        "homebrew",
			Name:             f.Name,
			InstalledVersion: installed,
			LatestVersion:    f.CurrentVersion,
		})
	}
	for _, c := range doc.Casks {
		installed := ""
		if len(c.InstalledVersions) > 0 {
			installed = c.InstalledVersions[len(c.InstalledVersions)-1]
		}
		out = append(out, model.PackageRecord{
			ManagerID:        "homebrew",
			Name:             c.Name,
			InstalledVersion: installed,
			LatestVersion:    c.CurrentVersion,
		})
	}
	return out, nil
}

// ParseSearch parses `brew search --formula --json <query>` output: a flat
// array of formula names (brew's search JSON carries no description).
func ParseSearch(raw []byte, query string) ([]model.SearchResult, error) {
	var names []string
	if err := parseutil.DecodeJSON(raw, &names); err != nil {
		return nil, err
	}
	now := time.Now()
	out := make([]model.SearchResult, 0, len(names))
	for _, n := range names {
		out = append(out, model.SearchResult{
			ManagerID: "homebrew",
			Name:      n,
			Query:     query,
			FetchedAt: now,
		})
	}
	return out, nil
}

// ParseDetection parses `brew --version` output, e.g. "Homebrew 4.2.10".
func ParseDetection(raw []byte) model.DetectionRecord {
	rec := model.DetectionRecord{ManagerID: "homebrew", DetectedAt: time.Now()}
	line := strings.TrimSpace(strings.SplitN(string(raw), "\n", 2)[0])
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
