package facade

import (
	"encoding/json"
	"net/http"

	"github.com/manifoldpm/manifold/internal/model"
)

// writeJSON is the façade's only JSON encode path, matching
// routes.go's ServeRoutesHandler-style "set content type, write status,
// encode, or 500 on failure" shape.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
	}
}

// writeEmpty satisfies spec.md's "read entry points return JSON or an
// empty/null marker on failure" contract.
func writeEmpty(w http.ResponseWriter) {
	writeJSON(w, http.StatusOK, nil)
}

func (f *Facade) handleListInstalledPackages(w http.ResponseWriter, r *http.Request) {
	managerID := r.URL.Query().Get("manager_id")
	if managerID == "" {
		writeEmpty(w)
		return
	}
	recs, err := f.store.ListInstalled(r.Context(), managerID)
	if err != nil {
		f.log.Error("facade: list_installed_packages failed", "manager_id", managerID, "err", err)
		writeEmpty(w)
		return
	}
	writeJSON(w, http.StatusOK, toPackageDTOs(recs))
}

func (f *Facade) handleListOutdatedPackages(w http.ResponseWriter, r *http.Request) {
	managerID := r.URL.Query().Get("manager_id")
	var (
		recs []model.PackageRecord
		err  error
	)
	if managerID == "" {
		recs, err = f.store.ListAllOutdated(r.Context())
	} else {
		recs, err = f.store.ListOutdated(r.Context(), managerID)
	}
	if err != nil {
		f.log.Error("facade: list_outdated_packages failed", "err", err)
		writeEmpty(w)
		return
	}
	writeJSON(w, http.StatusOK, toPackageDTOs(recs))
}

func (f *Facade) handleListTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := f.store.ListTasks(r.Context())
	if err != nil {
		f.log.Error("facade: list_tasks failed", "err", err)
		writeEmpty(w)
		return
	}
	writeJSON(w, http.StatusOK, toTaskDTOs(tasks))
}

func (f *Facade) handleListManagerStatus(w http.ResponseWriter, r *http.Request) {
	statuses, err := f.ListManagerStatus(r.Context())
	if err != nil {
		f.log.Error("facade: list_manager_status failed", "err", err)
		writeEmpty(w)
		return
	}
	writeJSON(w, http.StatusOK, statuses)
}

func (f *Facade) handleListPins(w http.ResponseWriter, r *http.Request) {
	pins, err := f.store.ListPins(r.Context())
	if err != nil {
		f.log.Error("facade: list_pins failed", "err", err)
		writeEmpty(w)
		return
	}
	writeJSON(w, http.StatusOK, toPinDTOs(pins))
}

func (f *Facade) handleListPackageKegPolicies(w http.ResponseWriter, r *http.Request) {
	policies, err := f.store.ListKegPolicies(r.Context())
	if err != nil {
		f.log.Error("facade: list_package_keg_policies failed", "err", err)
		writeEmpty(w)
		return
	}
	writeJSON(w, http.StatusOK, toKegPolicyDTOs(policies))
}

func (f *Facade) handleSearchLocal(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")
	if query == "" {
		writeEmpty(w)
		return
	}

	var out []searchResultDTO
	for _, a := range f.reg.All() {
		meta := a.Describe()
		if !meta.Capabilities.Has(model.CapSearch) {
			continue
		}
		results, ok, err := f.store.GetSearch(r.Context(), meta.ID, query)
		if err != nil || !ok {
			continue
		}
		out = append(out, toSearchResultDTOs(results)...)
	}
	writeJSON(w, http.StatusOK, out)
}

func (f *Facade) handleGetSafeMode(w http.ResponseWriter, r *http.Request) {
	safe, err := f.store.GetSafeMode(r.Context())
	if err != nil {
		f.log.Error("facade: get_safe_mode failed", "err", err)
		writeEmpty(w)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"safe_mode": safe})
}

func (f *Facade) handleGetHomebrewKegAutoCleanup(w http.ResponseWriter, r *http.Request) {
	v, ok, err := f.store.GetSetting(r.Context(), model.SettingHomebrewKegAutoCleanup)
	if err != nil {
		f.log.Error("facade: get_homebrew_keg_auto_cleanup failed", "err", err)
		writeEmpty(w)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"homebrew_keg_auto_cleanup": ok && v == "true"})
}

func (f *Facade) handleTakeLastErrorKey(w http.ResponseWriter, r *http.Request) {
	key, args := f.TakeLastErrorKey()
	writeJSON(w, http.StatusOK, map[string]any{"error_key": key, "error_args": args})
}
