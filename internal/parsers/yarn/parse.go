// Package yarn parses output from Yarn's global package manager (Yarn
// Classic's `--json` line-delimited object stream; Yarn Berry plugins vary
// enough that only Classic's shape is handled here).
package yarn

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/manifoldpm/manifold/internal/model"
	"github.com/manifoldpm/manifold/internal/pkgerr"
)

type infoLine struct {
	Type string `json:"type"`
	Data string `json:"data"`
}

// ParseListInstalled parses `yarn global list --json` output, one JSON
// object per line, filtering for "type":"info" lines carrying "name@version".
func ParseListInstalled(raw []byte) ([]model.PackageRecord, error) {
	var out []model.PackageRecord
	for _, line := range strings.Split(string(raw), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		var entry infoLine
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			return nil, pkgerr.Newf(pkgerr.KindParseUnexpectedFormat, "invalid yarn JSON line: %v", err)
		}
		if entry.Type != "info" || entry.Data == "" {
			continue
		}
		name, version := splitNameVersion(entry.Data)
		if version == "" {
			continue
		}
		out = append(out, model.PackageRecord{
			ManagerID:        "yarn",
			Name:             name,
			InstalledVersion: version,
		})
	}
	return out, nil
}

func splitNameVersion(nameAtVersion string) (string, string) {
	idx := strings.LastIndex(nameAtVersion, "@")
	if idx <= 0 {
		return nameAtVersion, ""
	}
	return nameAtVersion[:idx], nameAtVersion[idx+1:]
}

// ParseDetection parses `yarn --version` output, a bare version string.
func ParseDetection(raw []byte) model.DetectionRecord {
	rec := model.DetectionRecord{ManagerID: "yarn", DetectedAt: time.Now()}
	version := strings.TrimSpace(string(raw))
	if version == "" {
		return rec
	}
	rec.Installed = true
	rec.Version = version
	return rec
}
