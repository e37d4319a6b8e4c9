package facade

import (
	"context"

	"github.com/manifoldpm/manifold/internal/model"
)

// ListManagerStatus derives list_manager_status()'s per-manager health
// summary from the detection, outdated-package and task tables; none of
// this is persisted directly, it is computed fresh on every call.
func (f *Facade) ListManagerStatus(ctx context.Context) ([]managerStatusDTO, error) {
	tasks, err := f.store.ListTasks(ctx)
	if err != nil {
		return nil, err
	}
	running := make(map[string]bool)
	for _, t := range tasks {
		if !t.State.Terminal() {
			running[t.ManagerID] = true
		}
	}

	var out []managerStatusDTO
	for _, a := range f.reg.All() {
		meta := a.Describe()

		enabled, err := f.store.IsManagerEnabled(ctx, meta.ID)
		if err != nil {
			return nil, err
		}

		det, ok, err := f.store.GetDetection(ctx, meta.ID)
		if err != nil {
			return nil, err
		}

		health := f.deriveHealth(ctx, meta.ID, running[meta.ID], ok, det)

		out = append(out, managerStatusDTO{
			ManagerID: meta.ID,
			Enabled:   enabled,
			Installed: ok && det.Installed,
			Version:   det.Version,
			Health:    string(health),
		})
	}
	return out, nil
}

func (f *Facade) deriveHealth(ctx context.Context, managerID string, hasRunningTask, detected bool, det model.DetectionRecord) model.HealthStatus {
	if hasRunningTask {
		return model.HealthRunning
	}
	if !detected || !det.Installed {
		return model.HealthError
	}
	outdated, err := f.store.ListOutdated(ctx, managerID)
	if err != nil || len(outdated) == 0 {
		return model.HealthHealthy
	}
	return model.HealthAttention
}
