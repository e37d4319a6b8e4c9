package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/manifoldpm/manifold/internal/model"
	"github.com/manifoldpm/manifold/internal/pkgerr"
)

// InsertTask persists a newly submitted task in Queued state and returns
// its assigned autoincrement id, which is also the tie-break ordering key.
func (s *Store) InsertTask(ctx context.Context, t model.Task) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	labelArgs, err := json.Marshal(t.LabelArgs)
	if err != nil {
		return 0, pkgerr.New(pkgerr.KindPersistenceIO, err)
	}
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO tasks (manager_id, kind, target, label_key, label_args, state, created_at, error_args)
		VALUES (?, ?, ?, ?, ?, ?, ?, '{}')`,
		t.ManagerID, string(t.Kind), t.Target, t.LabelKey, string(labelArgs), string(model.TaskQueued), t.CreatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return 0, pkgerr.New(pkgerr.KindPersistenceIO, err)
	}
	return res.LastInsertId()
}

// TransitionTask moves a task to a new state, recording started_at on the
// Queued->Running edge and ended_at plus the error key/args on any
// terminal edge. This method only ever issues one UPDATE statement, with
// no transaction; for the terminal case the queue's transitionTerminal
// retries it with backoff.
func (s *Store) TransitionTask(ctx context.Context, id int64, newState model.TaskState, errKey string, errArgs map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC().Format(time.RFC3339Nano)
	argsJSON, err := json.Marshal(errArgs)
	if err != nil {
		return pkgerr.New(pkgerr.KindPersistenceIO, err)
	}

	switch newState {
	case model.TaskRunning:
		_, err = s.db.ExecContext(ctx, `UPDATE tasks SET state = ?, started_at = ? WHERE id = ?`, string(newState), now, id)
	case model.TaskCompleted, model.TaskFailed, model.TaskCanceled:
		_, err = s.db.ExecContext(ctx, `
			UPDATE tasks SET state = ?, ended_at = ?, error_key = ?, error_args = ? WHERE id = ?`,
			string(newState), now, errKey, string(argsJSON), id)
	default:
		_, err = s.db.ExecContext(ctx, `UPDATE tasks SET state = ? WHERE id = ?`, string(newState), id)
	}
	if err != nil {
		return pkgerr.New(pkgerr.KindPersistenceIO, err)
	}
	return nil
}

// GetTask returns one task by id.
func (s *Store) GetTask(ctx context.Context, id int64) (model.Task, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, manager_id, kind, target, label_key, label_args, state, created_at, started_at, ended_at, error_key, error_args
		FROM tasks WHERE id = ?`, id)
	t, err := scanTask(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return model.Task{}, pkgerr.Newf(pkgerr.KindPersistenceIO, "task %d not found", id)
		}
		return model.Task{}, err
	}
	return t, nil
}

// ListTasks returns every task, most recent first.
func (s *Store) ListTasks(ctx context.Context) ([]model.Task, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, manager_id, kind, target, label_key, label_args, state, created_at, started_at, ended_at, error_key, error_args
		FROM tasks ORDER BY id DESC`)
	if err != nil {
		return nil, pkgerr.New(pkgerr.KindPersistenceIO, err)
	}
	defer rows.Close()

	var out []model.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

// ListRunningTasks returns every task currently in the Running state,
// used by the queue's crash-recovery scan at startup.
func (s *Store) ListRunningTasks(ctx context.Context) ([]model.Task, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, manager_id, kind, target, label_key, label_args, state, created_at, started_at, ended_at, error_key, error_args
		FROM tasks WHERE state = ?`, string(model.TaskRunning))
	if err != nil {
		return nil, pkgerr.New(pkgerr.KindPersistenceIO, err)
	}
	defer rows.Close()

	var out []model.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

// ListTerminalTasksOlderThan returns every terminal task whose ended_at
// precedes cutoff, oldest first, for the Fleet History Archiver's batch
// drain (SPEC_FULL.md §6.4): it only ever reads rows already confirmed
// terminal, never one still Queued or Running.
func (s *Store) ListTerminalTasksOlderThan(ctx context.Context, cutoff time.Time) ([]model.Task, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, manager_id, kind, target, label_key, label_args, state, created_at, started_at, ended_at, error_key, error_args
		FROM tasks
		WHERE state IN (?, ?, ?) AND ended_at IS NOT NULL AND ended_at < ?
		ORDER BY ended_at ASC`,
		string(model.TaskCompleted), string(model.TaskFailed), string(model.TaskCanceled),
		cutoff.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return nil, pkgerr.New(pkgerr.KindPersistenceIO, err)
	}
	defer rows.Close()

	var out []model.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

// DeleteTasks removes the given task ids, used by the History Archiver
// once it has confirmed their upload to S3 succeeded.
func (s *Store) DeleteTasks(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return pkgerr.New(pkgerr.KindPersistenceIO, err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `DELETE FROM tasks WHERE id = ?`)
	if err != nil {
		return pkgerr.New(pkgerr.KindPersistenceIO, err)
	}
	defer stmt.Close()
	for _, id := range ids {
		if _, err := stmt.ExecContext(ctx, id); err != nil {
			return pkgerr.New(pkgerr.KindPersistenceIO, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return pkgerr.New(pkgerr.KindPersistenceIO, err)
	}
	return nil
}

// scanner is the common subset of *sql.Row and *sql.Rows this package needs.
type scanner interface {
	Scan(dest ...any) error
}

func scanTask(sc scanner) (model.Task, error) {
	var t model.Task
	var labelArgs, errArgs string
	var createdAt string
	var startedAt, endedAt sql.NullString

	if err := sc.Scan(&t.ID, &t.ManagerID, &t.Kind, &t.Target, &t.LabelKey, &labelArgs,
		&t.State, &createdAt, &startedAt, &endedAt, &t.ErrorKey, &errArgs); err != nil {
		return model.Task{}, pkgerr.New(pkgerr.KindPersistenceIO, err)
	}

	t.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	if startedAt.Valid {
		ts, _ := time.Parse(time.RFC3339Nano, startedAt.String)
		t.StartedAt = &ts
	}
	if endedAt.Valid {
		ts, _ := time.Parse(time.RFC3339Nano, endedAt.String)
		t.EndedAt = &ts
	}
	_ = json.Unmarshal([]byte(labelArgs), &t.LabelArgs)
	_ = json.Unmarshal([]byte(errArgs), &t.ErrorArgs)
	return t, nil
}

// SaveTaskRawOutput stores a task's raw adapter stdout for post-mortem
// debugging, compressing it when it's large enough to be worth it.
func (s *Store) SaveTaskRawOutput(ctx context.Context, taskID int64, stdout []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	payload, compressed, err := maybeCompress(stdout)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO task_raw_output (task_id, stdout, compressed) VALUES (?, ?, ?)
		ON CONFLICT(task_id) DO UPDATE SET stdout=excluded.stdout, compressed=excluded.compressed`,
		taskID, payload, compressed)
	if err != nil {
		return pkgerr.New(pkgerr.KindPersistenceIO, err)
	}
	return nil
}

// GetTaskRawOutput retrieves and decompresses a task's raw stdout, if kept.
func (s *Store) GetTaskRawOutput(ctx context.Context, taskID int64) ([]byte, bool, error) {
	var payload []byte
	var compressed bool
	row := s.db.QueryRowContext(ctx, `SELECT stdout, compressed FROM task_raw_output WHERE task_id = ?`, taskID)
	if err := row.Scan(&payload, &compressed); err != nil {
		if err == sql.ErrNoRows {
			return nil, false, nil
		}
		return nil, false, pkgerr.New(pkgerr.KindPersistenceIO, err)
	}
	out, err := maybeDecompress(payload, compressed)
	if err != nil {
		return nil, false, err
	}
	return out, true, nil
}
