// Package fleet holds the three optional operator-facing components
// SPEC_FULL.md §6.4 adds beyond the core engine: a one-way Postgres
// Exporter, a Slack Notifier, and an S3 History Archiver. Apart from
// Notifier.NotifyUpgradeAllExcluded, which upgrade_all calls
// synchronously, none of these sit on the Façade's call path; each
// subscribes to or polls the engine's already-persisted state.
package fleet

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/slack-go/slack"

	"github.com/manifoldpm/manifold/internal/adapter"
	"github.com/manifoldpm/manifold/internal/model"
	"github.com/manifoldpm/manifold/internal/queue"
	"github.com/manifoldpm/manifold/internal/store"
)

// slackPoster is the single slack-go method the Notifier needs, narrowed
// from *slack.Client so tests can substitute a stub instead of reaching
// the Slack API.
type slackPoster interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
}

// Notifier posts to Slack when a guarded manager's task fails, and
// summarizes how many packages the safe-mode and pin filters excluded from
// an upgrade_all call. Failures arrive through the Queue's internal
// TaskEvent stream; the exclusion summary is a synchronous call.
type Notifier struct {
	client  slackPoster
	channel string
	store   *store.Store
	reg     *adapter.Registry
	log     *slog.Logger
}

// NewNotifier builds a Notifier posting to channel with botToken.
func NewNotifier(botToken, channel string, s *store.Store, reg *adapter.Registry, log *slog.Logger) *Notifier {
	if log == nil {
		log = slog.Default()
	}
	return &Notifier{client: slack.New(botToken), channel: channel, store: s, reg: reg, log: log}
}

// newNotifierWithClient builds a Notifier against an arbitrary
// slackPoster, used by tests to avoid a real Slack endpoint.
func newNotifierWithClient(client slackPoster, channel string, s *store.Store, reg *adapter.Registry, log *slog.Logger) *Notifier {
	if log == nil {
		log = slog.Default()
	}
	return &Notifier{client: client, channel: channel, store: s, reg: reg, log: log}
}

// Run drains events until ctx is canceled, posting one message per
// guarded-manager task failure. Intended to run on its own goroutine for
// the lifetime of the daemon.
func (n *Notifier) Run(ctx context.Context, events <-chan queue.TaskEvent) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if ev.State != model.TaskFailed {
				continue
			}
			n.notifyFailure(ctx, ev)
		}
	}
}

func (n *Notifier) notifyFailure(ctx context.Context, ev queue.TaskEvent) {
	t, err := n.store.GetTask(ctx, ev.TaskID)
	if err != nil {
		n.log.Warn("fleet: notifier could not load failed task", "task_id", ev.TaskID, "err", err)
		return
	}
	a, err := n.reg.Get(t.ManagerID)
	if err != nil || a.Describe().Authority != model.AuthorityGuarded {
		return
	}

	msg := fmt.Sprintf(":warning: guarded manager `%s` task %s(%s) failed: %s", t.ManagerID, t.Kind, t.Target, t.ErrorKey)
	if _, _, err := n.client.PostMessageContext(ctx, n.channel, slack.MsgOptionText(msg, false)); err != nil {
		n.log.Warn("fleet: notifier failed to post to slack", "err", err)
	}
}

// NotifyUpgradeAllExcluded posts a one-line summary of how many packages
// the safe-mode and pin filters excluded from an upgrade_all call, called synchronously by
// the façade's upgrade_all handler right after planning (not via the
// event stream, since there is no per-exclusion task to key off of).
func (n *Notifier) NotifyUpgradeAllExcluded(ctx context.Context, excluded int) {
	if excluded == 0 {
		return
	}
	msg := fmt.Sprintf(":shield: safe mode and pins excluded %d package(s) from upgrade_all", excluded)
	if _, _, err := n.client.PostMessageContext(ctx, n.channel, slack.MsgOptionText(msg, false)); err != nil {
		n.log.Warn("fleet: notifier failed to post exclusion summary", "err", err)
	}
}
