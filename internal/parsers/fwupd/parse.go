// Package fwupd parses the Linux Vendor Firmware Service client's JSON
// output. fwupd has no Search or Uninstall capability: firmware is tied to
// the physical device, not chosen from a catalog, and cannot be removed
// once flashed.
package fwupd

import (
	"time"

	"github.com/manifoldpm/manifold/internal/model"
	"github.com/manifoldpm/manifold/internal/parsers/parseutil"
)

type fwupdDevice struct {
	Name    string   `json:"Name"`
	Version string   `json:"Version"`
	Guid    []string `json:"Guid"`
}

type getDevicesOutput struct {
	Devices []fwupdDevice `json:"Devices"`
}

// ParseListInstalled parses `fwupdmgr get-devices --json` output.
func ParseListInstalled(raw []byte) ([]model.PackageRecord, error) {
	var out getDevicesOutput
	if err := parseutil.DecodeJSON(raw, &out); err != nil {
		return nil, err
	}
	recs := make([]model.PackageRecord, 0, len(out.Devices))
	for _, dev := range out.Devices {
		if dev.Version == "" {
			continue
		}
		recs = append(recs, model.PackageRecord{
			ManagerID:        "fwupd",
			Name:             dev.Name,
			InstalledVersion: dev.Version,
		})
	}
	return recs, nil
}

type fwupdRelease struct {
	Version string `json:"Version"`
}

type updatableDevice struct {
	Name     string         `json:"Name"`
	Version  string         `json:"Version"`
	Releases []fwupdRelease `json:"Releases"`
}

type getUpdatesOutput struct {
	Devices []updatableDevice `json:"Devices"`
}

// ParseListOutdated parses `fwupdmgr get-updates --json` output, where
// each device carries its current Version plus a Releases list whose first
// entry is the newest available firmware release.
func ParseListOutdated(raw []byte) ([]model.PackageRecord, error) {
	var out getUpdatesOutput
	if err := parseutil.DecodeJSON(raw, &out); err != nil {
		return nil, err
	}
	var recs []model.PackageRecord
	for _, dev := range out.Devices {
		if len(dev.Releases) == 0 {
			continue
		}
		recs = append(recs, model.PackageRecord{
			ManagerID:        "fwupd",
			Name:             dev.Name,
			InstalledVersion: dev.Version,
			LatestVersion:    dev.Releases[0].Version,
		})
	}
	return recs, nil
}

// ParseDetection parses `fwupdmgr --version --json` output.
func ParseDetection(raw []byte) model.DetectionRecord {
	rec := model.DetectionRecord{ManagerID: "fwupd", DetectedAt: time.Now()}
	var versions struct {
		Versions []struct {
			AppstreamID string `json:"AppstreamId"`
			Version     string `json:"Version"`
		} `json:"Versions"`
	}
	if err := parseutil.DecodeJSON(raw, &versions); err != nil {
		return rec
	}
	for _, v := range versions.Versions {
		if v.AppstreamID == "org.freedesktop.fwupd" {
			rec.Installed = true
			rec.Version = v.Version
			return rec
		}
	}
	return rec
}
