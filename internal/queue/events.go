package queue

import (
	"time"

	"github.com/manifoldpm/manifold/internal/model"
)

// TaskEvent is a lifecycle notification emitted on every state transition.
// Internal only: never persisted beyond the task row it describes, and
// never read on the synchronous Façade call path; cmd/manifoldd subscribes
// the fleet Exporter and Notifier when they are configured.
type TaskEvent struct {
	TaskID int64
	State  model.TaskState
	At     time.Time
}

// Subscribe returns a channel that receives every TaskEvent from this
// point forward. The caller must keep draining it; a full channel drops
// events for that subscriber rather than blocking the queue.
func (q *Queue) Subscribe() <-chan TaskEvent {
	ch := make(chan TaskEvent, 64)
	q.mu.Lock()
	q.listeners = append(q.listeners, ch)
	q.mu.Unlock()
	return ch
}

func (q *Queue) broadcast(ev TaskEvent) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, ch := range q.listeners {
		select {
		case ch <- ev:
		default:
		}
	}
}
