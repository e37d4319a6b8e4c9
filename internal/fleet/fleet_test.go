package fleet

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/slack-go/slack"
	"github.com/stretchr/testify/require"

	"github.com/manifoldpm/manifold/internal/adapter"
	"github.com/manifoldpm/manifold/internal/model"
	"github.com/manifoldpm/manifold/internal/queue"
	"github.com/manifoldpm/manifold/internal/store"
)

func openTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "manifold.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

type stubAdapter struct {
	adapter.Base
}

func newStubAdapter(id string, authority model.Authority) stubAdapter {
	return stubAdapter{Base: adapter.Base{Meta: model.ManagerMeta{ID: id, Authority: authority}}}
}

type stubS3 struct {
	calls int
	fail  int // number of leading calls to fail before succeeding
}

func (s *stubS3) PutObject(ctx context.Context, in *awss3.PutObjectInput, optFns ...func(*awss3.Options)) (*awss3.PutObjectOutput, error) {
	s.calls++
	if s.calls <= s.fail {
		return nil, context.DeadlineExceeded
	}
	return &awss3.PutObjectOutput{}, nil
}

type stubSlack struct {
	posts []string
}

func (s *stubSlack) PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error) {
	s.posts = append(s.posts, channelID)
	return "C1", "123.456", nil
}

// mustInsertTerminalTask inserts a task and drives it to Completed.
// TransitionTask stamps ended_at with the current time, so a task's age is
// set by when this helper runs.
func mustInsertTerminalTask(t *testing.T, s *store.Store, managerID string) int64 {
	t.Helper()
	ctx := context.Background()
	id, err := s.InsertTask(ctx, model.Task{ManagerID: managerID, Kind: model.TaskUpgrade, Target: "pkg", CreatedAt: time.Now()})
	require.NoError(t, err)
	require.NoError(t, s.TransitionTask(ctx, id, model.TaskRunning, "", nil))
	require.NoError(t, s.TransitionTask(ctx, id, model.TaskCompleted, "", nil))
	return id
}

func TestArchiver_RunOnceUploadsAndPrunesOldTerminalTasks(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	oldID := mustInsertTerminalTask(t, s, "npm")
	time.Sleep(400 * time.Millisecond)
	freshID := mustInsertTerminalTask(t, s, "npm")

	stub := &stubS3{}
	a := newArchiverWithClient(stub, "bucket", "manifold", 200*time.Millisecond, s, nil)

	require.NoError(t, a.RunOnce(ctx))
	require.Equal(t, 1, stub.calls)

	_, err := s.GetTask(ctx, oldID)
	require.Error(t, err)

	got, err := s.GetTask(ctx, freshID)
	require.NoError(t, err)
	require.Equal(t, freshID, got.ID)
}

func TestArchiver_RunOnceNoOldTasksDoesNotUpload(t *testing.T) {
	s := openTestStore(t)
	mustInsertTerminalTask(t, s, "npm")

	stub := &stubS3{}
	a := newArchiverWithClient(stub, "bucket", "manifold", 24*time.Hour, s, nil)

	require.NoError(t, a.RunOnce(context.Background()))
	require.Equal(t, 0, stub.calls)
}

func TestNotifier_PostsOnlyForGuardedManagerFailure(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	reg := adapter.NewRegistry(
		newStubAdapter("homebrew", model.AuthorityGuarded),
		newStubAdapter("npm", model.AuthorityStandard),
	)

	id, err := s.InsertTask(ctx, model.Task{ManagerID: "homebrew", Kind: model.TaskUpgrade, Target: "swiftformat", CreatedAt: time.Now()})
	require.NoError(t, err)
	require.NoError(t, s.TransitionTask(ctx, id, model.TaskRunning, "", nil))
	require.NoError(t, s.TransitionTask(ctx, id, model.TaskFailed, "error.command_failed", nil))

	stub := &stubSlack{}
	n := newNotifierWithClient(stub, "#ops", s, reg, nil)

	events := make(chan queue.TaskEvent, 1)
	events <- queue.TaskEvent{TaskID: id, State: model.TaskFailed, At: time.Now()}
	close(events)
	n.Run(ctx, events)

	require.Len(t, stub.posts, 1)
	require.Equal(t, "#ops", stub.posts[0])
}

func TestNotifier_SkipsStandardManagerFailure(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	reg := adapter.NewRegistry(newStubAdapter("npm", model.AuthorityStandard))

	id, err := s.InsertTask(ctx, model.Task{ManagerID: "npm", Kind: model.TaskUpgrade, Target: "eslint", CreatedAt: time.Now()})
	require.NoError(t, err)
	require.NoError(t, s.TransitionTask(ctx, id, model.TaskRunning, "", nil))
	require.NoError(t, s.TransitionTask(ctx, id, model.TaskFailed, "error.command_failed", nil))

	stub := &stubSlack{}
	n := newNotifierWithClient(stub, "#ops", s, reg, nil)

	events := make(chan queue.TaskEvent, 1)
	events <- queue.TaskEvent{TaskID: id, State: model.TaskFailed, At: time.Now()}
	close(events)
	n.Run(ctx, events)

	require.Empty(t, stub.posts)
}

func TestNotifier_NotifyUpgradeAllExcludedSkipsZero(t *testing.T) {
	s := openTestStore(t)
	reg := adapter.NewRegistry(newStubAdapter("npm", model.AuthorityStandard))
	stub := &stubSlack{}
	n := newNotifierWithClient(stub, "#ops", s, reg, nil)

	n.NotifyUpgradeAllExcluded(context.Background(), 0)
	require.Empty(t, stub.posts)

	n.NotifyUpgradeAllExcluded(context.Background(), 3)
	require.Len(t, stub.posts, 1)
}
