package facade

import (
	"time"

	"github.com/manifoldpm/manifold/internal/model"
	"github.com/manifoldpm/manifold/internal/store"
)

// The façade is the only place the engine serializes to JSON (spec.md
// §4.8); these DTOs exist so internal/model's types never need json
// struct tags of their own.

type packageDTO struct {
	ManagerID        string `json:"manager_id"`
	Name             string `json:"name"`
	InstalledVersion string `json:"installed_version"`
	LatestVersion    string `json:"latest_version,omitempty"`
	Pinned           bool   `json:"pinned"`
	HasUpdate        bool   `json:"has_update"`
	RestartRequired  bool   `json:"restart_required,omitempty"`
}

func toPackageDTO(p model.PackageRecord) packageDTO {
	return packageDTO{
		ManagerID:        p.ManagerID,
		Name:             p.Name,
		InstalledVersion: p.InstalledVersion,
		LatestVersion:    p.LatestVersion,
		Pinned:           p.Pinned,
		HasUpdate:        p.HasUpdate(),
		RestartRequired:  p.RestartRequired,
	}
}

func toPackageDTOs(recs []model.PackageRecord) []packageDTO {
	out := make([]packageDTO, len(recs))
	for i, r := range recs {
		out[i] = toPackageDTO(r)
	}
	return out
}

type taskDTO struct {
	ID        int64             `json:"id"`
	ManagerID string            `json:"manager_id"`
	Kind      string            `json:"kind"`
	Target    string            `json:"target,omitempty"`
	State     string            `json:"state"`
	CreatedAt time.Time         `json:"created_at"`
	StartedAt *time.Time        `json:"started_at,omitempty"`
	EndedAt   *time.Time        `json:"ended_at,omitempty"`
	ErrorKey  string            `json:"error_key,omitempty"`
	ErrorArgs map[string]string `json:"error_args,omitempty"`
}

func toTaskDTO(t model.Task) taskDTO {
	return taskDTO{
		ID:        t.ID,
		ManagerID: t.ManagerID,
		Kind:      string(t.Kind),
		Target:    t.Target,
		State:     string(t.State),
		CreatedAt: t.CreatedAt,
		StartedAt: t.StartedAt,
		EndedAt:   t.EndedAt,
		ErrorKey:  t.ErrorKey,
		ErrorArgs: t.ErrorArgs,
	}
}

func toTaskDTOs(tasks []model.Task) []taskDTO {
	out := make([]taskDTO, len(tasks))
	for i, t := range tasks {
		out[i] = toTaskDTO(t)
	}
	return out
}

type pinDTO struct {
	ManagerID     string `json:"manager_id"`
	Name          string `json:"name"`
	PinnedVersion string `json:"pinned_version,omitempty"`
}

func toPinDTOs(pins []model.Pin) []pinDTO {
	out := make([]pinDTO, len(pins))
	for i, p := range pins {
		out[i] = pinDTO{ManagerID: p.ManagerID, Name: p.Name, PinnedVersion: p.PinnedVersion}
	}
	return out
}

type kegPolicyDTO struct {
	ManagerID string `json:"manager_id"`
	Name      string `json:"name"`
	Mode      int    `json:"mode"`
}

func toKegPolicyDTOs(entries []store.KegPolicyEntry) []kegPolicyDTO {
	out := make([]kegPolicyDTO, len(entries))
	for i, e := range entries {
		out[i] = kegPolicyDTO{ManagerID: e.ManagerID, Name: e.Name, Mode: int(e.Mode)}
	}
	return out
}

type managerStatusDTO struct {
	ManagerID string `json:"manager_id"`
	Enabled   bool   `json:"enabled"`
	Installed bool   `json:"installed"`
	Version   string `json:"version,omitempty"`
	Health    string `json:"health"`
}

type searchResultDTO struct {
	ManagerID     string `json:"manager_id"`
	Name          string `json:"name"`
	Description   string `json:"description,omitempty"`
	LatestVersion string `json:"latest_version,omitempty"`
}

func toSearchResultDTOs(results []model.SearchResult) []searchResultDTO {
	out := make([]searchResultDTO, len(results))
	for i, r := range results {
		out[i] = searchResultDTO{ManagerID: r.ManagerID, Name: r.Name, Description: r.Description, LatestVersion: r.LatestVersion}
	}
	return out
}
