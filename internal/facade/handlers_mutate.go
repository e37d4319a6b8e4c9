package facade

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/manifoldpm/manifold/internal/model"
	"github.com/manifoldpm/manifold/internal/pkgerr"
)

// decodeBody JSON-decodes the request body into v, recording and
// reporting InvalidArgument on malformed input the same way any other
// validation failure is reported.
func (f *Facade) decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if r.Body == nil {
		f.fail("error.invalid_argument", nil)
		writeJSON(w, http.StatusOK, false)
		return false
	}
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		f.fail("error.invalid_argument", nil)
		writeJSON(w, http.StatusOK, false)
		return false
	}
	return true
}

// fail records a mutating-operation failure in the last-error-key slot,
// per spec.md §4.8 ("the Façade never throws; it returns sentinels and
// sets the last-error-key channel").
func (f *Facade) fail(key string, args map[string]string) {
	f.setLastError(key, args)
}

// failErr records a *pkgerr.Error's key/args, falling back to Unknown for
// a bare error an adapter or store call forgot to wrap.
func (f *Facade) failErr(err error) {
	key, args := pkgerr.KeyAndArgs(err)
	f.fail(key, args)
}

func (f *Facade) handleInit(w http.ResponseWriter, r *http.Request) {
	var req struct {
		DBPath string `json:"db_path"`
	}
	if !f.decodeBody(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, f.Init(r.Context(), req.DBPath))
}

func (f *Facade) handleTriggerRefresh(w http.ResponseWriter, r *http.Request) {
	// Fire-and-forget: trigger_refresh() only reports that the sweep
	// started, progress is observed via list_tasks/list_manager_status.
	go func() {
		if _, err := f.orch.Refresh(context.Background()); err != nil {
			f.log.Error("facade: trigger_refresh failed", "err", err)
		}
	}()
	writeJSON(w, http.StatusOK, true)
}

func (f *Facade) handleTriggerRemoteSearch(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Query string `json:"query"`
	}
	if !f.decodeBody(w, r, &req) {
		return
	}
	if req.Query == "" {
		f.fail("error.invalid_argument", nil)
		writeJSON(w, http.StatusOK, -1)
		return
	}
	t := model.Task{ManagerID: model.AllManagersID, Kind: model.TaskRemoteSearch, Target: req.Query}
	id, _, err := f.queue.Submit(r.Context(), t)
	if err != nil {
		f.failErr(err)
		writeJSON(w, http.StatusOK, -1)
		return
	}
	writeJSON(w, http.StatusOK, id)
}

func (f *Facade) handleCancelTask(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID int64 `json:"id"`
	}
	if !f.decodeBody(w, r, &req) {
		return
	}
	if err := f.queue.Cancel(r.Context(), req.ID); err != nil {
		f.failErr(err)
		writeJSON(w, http.StatusOK, false)
		return
	}
	writeJSON(w, http.StatusOK, true)
}

func (f *Facade) handleUpgradeAll(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IncludePinned  bool `json:"include_pinned"`
		AllowOSUpdates bool `json:"allow_os_updates"`
	}
	if !f.decodeBody(w, r, &req) {
		return
	}
	plan, excluded, err := f.gate.PlanUpgradeAll(r.Context(), req.IncludePinned, req.AllowOSUpdates)
	if err != nil {
		f.failErr(err)
		writeJSON(w, http.StatusOK, false)
		return
	}
	for _, p := range plan {
		t := model.Task{ManagerID: p.ManagerID, Kind: model.TaskUpgrade, Target: p.Name}
		if _, _, err := f.queue.Submit(r.Context(), t); err != nil {
			f.log.Warn("facade: upgrade_all failed to submit one task", "manager_id", p.ManagerID, "name", p.Name, "err", err)
		}
	}
	if f.notifier != nil {
		f.notifier.NotifyUpgradeAllExcluded(r.Context(), excluded)
	}
	writeJSON(w, http.StatusOK, true)
}

func (f *Facade) handleUpgradePackage(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ManagerID string `json:"manager_id"`
		Name      string `json:"name"`
	}
	if !f.decodeBody(w, r, &req) {
		return
	}
	f.submitMutation(w, r, req.ManagerID, model.TaskUpgrade, req.Name, true)
}

func (f *Facade) handleInstallManager(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ManagerID string `json:"manager_id"`
	}
	if !f.decodeBody(w, r, &req) {
		return
	}
	f.submitMutation(w, r, req.ManagerID, model.TaskInstall, "", false)
}

func (f *Facade) handleUpdateManager(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ManagerID string `json:"manager_id"`
	}
	if !f.decodeBody(w, r, &req) {
		return
	}
	f.submitMutation(w, r, req.ManagerID, model.TaskSelfUpdate, "", false)
}

func (f *Facade) handleUninstallManager(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ManagerID string `json:"manager_id"`
	}
	if !f.decodeBody(w, r, &req) {
		return
	}
	f.submitMutation(w, r, req.ManagerID, model.TaskUninstall, "", false)
}

// submitMutation validates the manager/package identifiers, runs the
// mutation through the policy gate, then submits the task, writing -1 and
// the failing key on any rejection. validateName controls whether an
// empty Target (the manager-wide Install/SelfUpdate/Uninstall case) is
// itself validated as a package identifier.
func (f *Facade) submitMutation(w http.ResponseWriter, r *http.Request, managerID string, kind model.TaskKind, target string, validateName bool) {
	if err := validateManagerID(managerID); err != nil {
		f.failErr(err)
		writeJSON(w, http.StatusOK, -1)
		return
	}
	if validateName {
		if err := validatePackageName(target); err != nil {
			f.failErr(err)
			writeJSON(w, http.StatusOK, -1)
			return
		}
	}

	t := model.Task{ManagerID: managerID, Kind: kind, Target: target}
	if err := f.gate.CheckMutation(r.Context(), t, false); err != nil {
		f.failErr(err)
		writeJSON(w, http.StatusOK, -1)
		return
	}

	id, _, err := f.queue.Submit(r.Context(), t)
	if err != nil {
		f.failErr(err)
		writeJSON(w, http.StatusOK, -1)
		return
	}
	writeJSON(w, http.StatusOK, id)
}

func (f *Facade) handlePinPackage(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ManagerID     string `json:"manager_id"`
		Name          string `json:"name"`
		PinnedVersion string `json:"pinned_version"`
	}
	if !f.decodeBody(w, r, &req) {
		return
	}
	if err := validateManagerID(req.ManagerID); err != nil {
		f.failErr(err)
		writeJSON(w, http.StatusOK, false)
		return
	}
	if err := validatePackageName(req.Name); err != nil {
		f.failErr(err)
		writeJSON(w, http.StatusOK, false)
		return
	}
	p := model.Pin{ManagerID: req.ManagerID, Name: req.Name, PinnedVersion: req.PinnedVersion}
	if err := f.store.Pin(r.Context(), p); err != nil {
		f.failErr(err)
		writeJSON(w, http.StatusOK, false)
		return
	}
	writeJSON(w, http.StatusOK, true)
}

func (f *Facade) handleUnpinPackage(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ManagerID string `json:"manager_id"`
		Name      string `json:"name"`
	}
	if !f.decodeBody(w, r, &req) {
		return
	}
	if err := f.store.Unpin(r.Context(), req.ManagerID, req.Name); err != nil {
		f.failErr(err)
		writeJSON(w, http.StatusOK, false)
		return
	}
	writeJSON(w, http.StatusOK, true)
}

func (f *Facade) handleSetManagerEnabled(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ManagerID string `json:"manager_id"`
		Enabled   bool   `json:"enabled"`
	}
	if !f.decodeBody(w, r, &req) {
		return
	}
	if err := validateManagerID(req.ManagerID); err != nil {
		f.failErr(err)
		writeJSON(w, http.StatusOK, false)
		return
	}
	if err := f.store.SetManagerEnabled(r.Context(), req.ManagerID, req.Enabled); err != nil {
		f.failErr(err)
		writeJSON(w, http.StatusOK, false)
		return
	}
	writeJSON(w, http.StatusOK, true)
}

func (f *Facade) handleSetSafeMode(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SafeMode bool `json:"safe_mode"`
	}
	if !f.decodeBody(w, r, &req) {
		return
	}
	if err := f.store.SetSafeMode(r.Context(), req.SafeMode); err != nil {
		f.failErr(err)
		writeJSON(w, http.StatusOK, false)
		return
	}
	writeJSON(w, http.StatusOK, true)
}

func (f *Facade) handleSetHomebrewKegAutoCleanup(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Enabled bool `json:"enabled"`
	}
	if !f.decodeBody(w, r, &req) {
		return
	}
	value := "false"
	if req.Enabled {
		value = "true"
	}
	if err := f.store.SetSetting(r.Context(), model.SettingHomebrewKegAutoCleanup, value); err != nil {
		f.failErr(err)
		writeJSON(w, http.StatusOK, false)
		return
	}
	writeJSON(w, http.StatusOK, true)
}

func (f *Facade) handleSetPackageKegPolicy(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ManagerID string `json:"manager_id"`
		Name      string `json:"name"`
		Mode      int    `json:"mode"`
	}
	if !f.decodeBody(w, r, &req) {
		return
	}
	if req.Mode < -1 || req.Mode > 1 {
		f.fail("error.invalid_argument", nil)
		writeJSON(w, http.StatusOK, false)
		return
	}
	if err := validateManagerID(req.ManagerID); err != nil {
		f.failErr(err)
		writeJSON(w, http.StatusOK, false)
		return
	}
	if err := validatePackageName(req.Name); err != nil {
		f.failErr(err)
		writeJSON(w, http.StatusOK, false)
		return
	}
	if err := f.store.SetKegPolicy(r.Context(), req.ManagerID, req.Name, model.KegPolicy(req.Mode)); err != nil {
		f.failErr(err)
		writeJSON(w, http.StatusOK, false)
		return
	}
	writeJSON(w, http.StatusOK, true)
}

func (f *Facade) handleResetDatabase(w http.ResponseWriter, r *http.Request) {
	if err := f.store.ResetDatabase(r.Context()); err != nil {
		f.failErr(err)
		writeJSON(w, http.StatusOK, false)
		return
	}
	f.mu.Lock()
	f.initialized = false
	f.mu.Unlock()
	writeJSON(w, http.StatusOK, true)
}
