// Package executor runs structured command specs as child processes. It
// never accepts a shell string — every argv element is a literal — and it
// cancels strictly through the context passed to Run, so the task queue can
// kill one in-flight command (by canceling that task's own derived context)
// without disturbing unrelated work sharing a parent context.
//
// Grounded on lake/pkg/agent/tools/command_runner.go's CommandRunner
// interface, generalized from a single-shot Run to the full CommandSpec
// (env overlay, cwd, stdin, timeout, streaming) the spec requires.
package executor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"syscall"
	"time"

	"github.com/manifoldpm/manifold/internal/pkgerr"
)

// DefaultGraceWindow is the delay between SIGTERM and SIGKILL on
// cancellation, per spec.md §9 ("a value in [2s, 5s] is consistent with
// observed behavior").
const DefaultGraceWindow = 3 * time.Second

// CommandSpec is a structured, shell-free command invocation.
type CommandSpec struct {
	Program      string
	Args         []string
	EnvOverrides map[string]string
	Cwd          string
	Stdin        io.Reader
	Timeout      time.Duration // 0 means no timeout
	GraceWindow  time.Duration // 0 means DefaultGraceWindow

	// StdoutWriter/StderrWriter, when set, receive output as it streams in
	// addition to it being buffered into the Result (for adapters that want
	// to tee long-running output, e.g. SelfUpdate). Optional.
	StdoutWriter io.Writer
	StderrWriter io.Writer
}

// Result is what a command produced.
type Result struct {
	ExitCode int
	Stdout   []byte
	Stderr   []byte
	Duration time.Duration
	TimedOut bool
}

// Executor runs CommandSpecs as child processes.
type Executor interface {
	// Run executes spec to completion, cancellation, or timeout and
	// returns the Result gathered so far alongside any error. Cancellation
	// is cooperative: the caller cancels ctx, Run sends SIGTERM, then
	// escalates to SIGKILL after spec.GraceWindow.
	Run(ctx context.Context, spec CommandSpec) (*Result, error)
}

// Exec is the default Executor, backed by os/exec.
type Exec struct{}

// New returns the default os/exec-backed Executor.
func New() *Exec { return &Exec{} }

func (e *Exec) Run(ctx context.Context, spec CommandSpec) (*Result, error) {
	if spec.Program == "" {
		return nil, pkgerr.Newf(pkgerr.KindExecutionSpawn, "command spec has no program")
	}

	runCtx := ctx
	var cancelTimeout context.CancelFunc
	if spec.Timeout > 0 {
		runCtx, cancelTimeout = context.WithTimeout(ctx, spec.Timeout)
		defer cancelTimeout()
	}

	cmd := exec.Command(spec.Program, spec.Args...) //nolint:gosec // argv is always literal, never shell-interpolated
	if spec.Cwd != "" {
		cmd.Dir = spec.Cwd
	}
	cmd.Env = mergeEnv(os.Environ(), spec.EnvOverrides)
	if err := requirePATH(cmd.Env); err != nil {
		return nil, err
	}
	if spec.Stdin != nil {
		cmd.Stdin = spec.Stdin
	}

	var stdoutBuf, stderrBuf bytes.Buffer
	cmd.Stdout = teeWriter(&stdoutBuf, spec.StdoutWriter)
	cmd.Stderr = teeWriter(&stderrBuf, spec.StderrWriter)

	if err := cmd.Start(); err != nil {
		if errors.Is(err, exec.ErrNotFound) || os.IsNotExist(err) {
			return nil, pkgerr.New(pkgerr.KindExecutionSpawn, err)
		}
		return nil, pkgerr.New(pkgerr.KindExecutionSpawn, err)
	}

	waitErr := make(chan error, 1)
	go func() { waitErr <- cmd.Wait() }()

	grace := spec.GraceWindow
	if grace <= 0 {
		grace = DefaultGraceWindow
	}

	start := time.Now()
	var (
		err      error
		timedOut bool
	)
	select {
	case err = <-waitErr:
	case <-runCtx.Done():
		timedOut = errors.Is(runCtx.Err(), context.DeadlineExceeded)
		err = terminate(cmd, grace, waitErr)
	}
	duration := time.Since(start)

	result := &Result{
		Stdout:   stdoutBuf.Bytes(),
		Stderr:   stderrBuf.Bytes(),
		Duration: duration,
		TimedOut: timedOut,
	}
	if cmd.ProcessState != nil {
		result.ExitCode = cmd.ProcessState.ExitCode()
	}

	if timedOut {
		return result, pkgerr.Newf(pkgerr.KindExecutionTimeout, "command %q timed out after %s", spec.Program, spec.Timeout)
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			if status, ok := exitErr.Sys().(syscall.WaitStatus); ok && status.Signaled() {
				return result, pkgerr.Newf(pkgerr.KindExecutionSignal, "command %q terminated by signal %s", spec.Program, status.Signal())
			}
			return result, pkgerr.Newf(pkgerr.KindExecutionNonZeroExit, "command %q exited %d", spec.Program, exitErr.ExitCode())
		}
		return result, pkgerr.New(pkgerr.KindExecutionSpawn, err)
	}
	return result, nil
}

// terminate sends SIGTERM and escalates to SIGKILL after grace, but returns
// as soon as the process actually exits rather than always waiting out the
// full grace window.
func terminate(cmd *exec.Cmd, grace time.Duration, waitErr <-chan error) error {
	if cmd.Process == nil {
		return <-waitErr
	}
	_ = cmd.Process.Signal(syscall.SIGTERM)
	timer := time.NewTimer(grace)
	defer timer.Stop()
	select {
	case err := <-waitErr:
		return err
	case <-timer.C:
		_ = cmd.Process.Signal(syscall.SIGKILL)
		return <-waitErr
	}
}

func mergeEnv(base []string, overrides map[string]string) []string {
	if len(overrides) == 0 {
		return base
	}
	merged := make([]string, 0, len(base)+len(overrides))
	seen := make(map[string]bool, len(overrides))
	for k := range overrides {
		seen[k] = true
	}
	for _, kv := range base {
		key, _, _ := splitEnv(kv)
		if seen[key] {
			continue
		}
		merged = append(merged, kv)
	}
	for k, v := range overrides {
		merged = append(merged, k+"="+v)
	}
	return merged
}

func splitEnv(kv string) (key, value string, ok bool) {
	for i := 0; i < len(kv); i++ {
		if kv[i] == '=' {
			return kv[:i], kv[i+1:], true
		}
	}
	return kv, "", false
}

func requirePATH(env []string) error {
	for _, kv := range env {
		if key, _, ok := splitEnv(kv); ok && key == "PATH" {
			return nil
		}
	}
	return pkgerr.Newf(pkgerr.KindExecutionSpawn, "missing PATH in environment")
}

func teeWriter(buf io.Writer, extra io.Writer) io.Writer {
	if extra == nil {
		return buf
	}
	return io.MultiWriter(buf, extra)
}

// String renders a CommandSpec for logging, matching the corpus's habit of
// logging the argv before executing it (e2e/internal/docker/run.go).
func (c CommandSpec) String() string {
	return fmt.Sprintf("%s %v", c.Program, c.Args)
}
