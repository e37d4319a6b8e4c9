package queue

import (
	"bytes"
	"context"
	"sync"

	"github.com/manifoldpm/manifold/internal/executor"
)

// outputCapture wraps the Queue's real Executor, recording every command's
// stdout run over one task's lifetime into a shared buffer. runOne hands a
// fresh capture to execute and, once the task reaches a terminal state,
// persists whatever it collected via store.SaveTaskRawOutput (SPEC_FULL.md
// §6.2: raw adapter stdout kept alongside parsed results for post-mortem
// debugging). A task whose adapter methods never call Run (Pin/Unpin, most
// post-verify ListInstalled/ListOutdated calls that short-circuit before
// spawning anything) simply yields an empty capture, and nothing is saved.
type outputCapture struct {
	exec executor.Executor
	mu   sync.Mutex
	buf  bytes.Buffer
}

func newOutputCapture(exec executor.Executor) *outputCapture {
	return &outputCapture{exec: exec}
}

func (c *outputCapture) Run(ctx context.Context, spec executor.CommandSpec) (*executor.Result, error) {
	res, err := c.exec.Run(ctx, spec)
	if res != nil && len(res.Stdout) > 0 {
		c.mu.Lock()
		c.buf.Write(res.Stdout)
		c.mu.Unlock()
	}
	return res, err
}

// Bytes returns everything captured so far.
func (c *outputCapture) Bytes() []byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]byte(nil), c.buf.Bytes()...)
}
