// Package rustup parses the Rust toolchain installer's text output. rustup
// has no ListOutdated capability: `rustup update` always re-pulls the
// latest stable/beta/nightly channel snapshot, so there is no meaningful
// per-toolchain staleness diff to surface separately from Upgrade.
package rustup

import (
	"strings"
	"time"

	"github.com/manifoldpm/manifold/internal/model"
	"github.com/manifoldpm/manifold/internal/parsers/parseutil"
)

// ParseListInstalled parses `rustup toolchain list -v` output:
//
//	stable-aarch64-apple-darwin (default)	/Users/u/.rustup/toolchains/stable-...
//	nightly-aarch64-apple-darwin	/Users/u/.rustup/toolchains/nightly-...
func ParseListInstalled(raw []byte) ([]model.PackageRecord, error) {
	var out []model.PackageRecord
	for _, line := range parseutil.Lines(raw) {
		fields := strings.SplitN(line, "\t", 2)
		name := strings.TrimSpace(fields[0])
		name = strings.TrimSuffix(name, " (default)")
		if name == "" {
			continue
		}
		out = append(out, model.PackageRecord{
			ManagerID:        "rustup",
			Name:             name,
			InstalledVersion: name,
		})
	}
	return out, nil
}

// ParseDetection parses `rustup --version` output, e.g.
// "rustup 1.26.0 (5af9b9484 2023-04-05)".
func ParseDetection(raw []byte) model.DetectionRecord {
	rec := model.DetectionRecord{ManagerID: "rustup", DetectedAt: time.Now()}
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
