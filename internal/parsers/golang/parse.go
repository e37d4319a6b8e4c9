// Package golang parses the output of `go install`-managed binaries via
// `go version -m`, the closest thing the Go toolchain has to a package
// manager's list-installed. Named golang (not go) to avoid shadowing the
// predeclared identifier space some tooling assumes for package "go".
package golang

import (
	"strings"
	"time"

	"github.com/manifoldpm/manifold/internal/model"
	"github.com/manifoldpm/manifold/internal/parsers/parseutil"
)

// ParseListInstalled parses the output of running `go version -m` against
// every binary in GOBIN, one binary's -m output per block:
//
//	/home/u/go/bin/gopls: go1.22.0
//	        path    golang.org/x/tools/gopls
//	        mod     golang.org/x/tools/gopls       v0.15.3 h1:...
func ParseListInstalled(raw []byte) ([]model.PackageRecord, error) {
	var out []model.PackageRecord
	var currentMod string
	for _, rawLine := range strings.Split(string(raw), "\n") {
		line := strings.TrimRight(rawLine, "\r")
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if !strings.HasPrefix(line, "\t") && !strings.HasPrefix(line, "        ") {
			currentMod = ""
			continue
		}
		fields := parseutil.Fields(trimmed)
		if len(fields) >= 3 && fields[0] == "mod" {
			currentMod = fields[1]
			out = append(out, model.PackageRecord{
				ManagerID:        "go",
				Name:             currentMod,
				InstalledVersion: fields[2],
			})
		}
	}
	return out, nil
}

// ParseDetection parses `go version` output, e.g. "go version go1.22.0 linux/amd64".
func ParseDetection(raw []byte) model.DetectionRecord {
	rec := model.DetectionRecord{ManagerID: "go", DetectedAt: time.Now()}
	line := strings.TrimSpace(string(raw))
	if line == "" {
		return rec
	}
	fields := parseutil.Fields(line)
	rec.Installed = true
	if len(fields) >= 3 {
		rec.Version = strings.TrimPrefix(fields[2], "go")
	}
	return rec
}
