package executor_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/manifoldpm/manifold/internal/executor"
)

func TestRun_CapturesStdout(t *testing.T) {
	e := executor.New()
	res, err := e.Run(context.Background(), executor.CommandSpec{
		Program: "echo",
		Args:    []string{"hello"},
	})
	require.NoError(t, err)
	require.Equal(t, "hello\n", string(res.Stdout))
	require.Equal(t, 0, res.ExitCode)
}

func TestRun_NonZeroExit(t *testing.T) {
	e := executor.New()
	_, err := e.Run(context.Background(), executor.CommandSpec{
		Program: "sh",
		Args:    []string{"-c", "exit 7"},
	})
	require.Error(t, err)
}

func TestRun_Timeout(t *testing.T) {
	e := executor.New()
	res, err := e.Run(context.Background(), executor.CommandSpec{
		Program:     "sleep",
		Args:        []string{"5"},
		Timeout:     50 * time.Millisecond,
		GraceWindow: 10 * time.Millisecond,
	})
	require.Error(t, err)
	require.NotNil(t, res)
	require.True(t, res.TimedOut)
}

func TestRun_NotFound(t *testing.T) {
	e := executor.New()
	_, err := e.Run(context.Background(), executor.CommandSpec{
		Program: "this-binary-does-not-exist-anywhere",
	})
	require.Error(t, err)
}

func TestRun_NoShellInterpolation(t *testing.T) {
	// argv is always literal: passing a string with shell metacharacters as
	// a single argument must not be interpreted by a shell.
	e := executor.New()
	res, err := e.Run(context.Background(), executor.CommandSpec{
		Program: "echo",
		Args:    []string{"$(echo pwned)"},
	})
	require.NoError(t, err)
	require.Equal(t, "$(echo pwned)\n", string(res.Stdout))
}
