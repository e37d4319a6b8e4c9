package queue

import (
	"container/list"
	"context"
	"sync"

	"github.com/manifoldpm/manifold/internal/model"
)

// managerFIFO serializes task execution for one manager: at most one task
// for this manager ever runs at a time, while the Queue's shared pond pool
// still bounds how many managers' FIFOs are active simultaneously.
type managerFIFO struct {
	managerID string
	q         *Queue

	mu      sync.Mutex
	pending *list.List // of model.Task, oldest first
	active  bool       // a worker is currently draining this FIFO
}

func newManagerFIFO(managerID string, q *Queue) *managerFIFO {
	return &managerFIFO{managerID: managerID, q: q, pending: list.New()}
}

// enqueue appends t and, if no worker is currently draining this FIFO,
// submits one to the pool.
func (f *managerFIFO) enqueue(t model.Task) {
	f.mu.Lock()
	f.pending.PushBack(t)
	needsWorker := !f.active
	if needsWorker {
		f.active = true
	}
	f.mu.Unlock()

	if needsWorker {
		f.q.pool.Submit(f.drain)
	}
}

// drain runs on a pool worker goroutine, executing queued tasks for this
// manager one at a time, FIFO, until the queue empties.
func (f *managerFIFO) drain() {
	for {
		f.mu.Lock()
		elem := f.pending.Front()
		if elem == nil {
			f.active = false
			f.mu.Unlock()
			return
		}
		f.pending.Remove(elem)
		f.mu.Unlock()

		t := elem.Value.(model.Task)
		f.q.runOne(context.Background(), t)
	}
}
