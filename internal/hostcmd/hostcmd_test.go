package hostcmd

import (
	"context"
	"io"
	"log/slog"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRunnerSuccess(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires unix tools")
	}

	run := NewRunner(discard())
	out := run(context.Background(), "echo", "hello")
	require.True(t, out.Ok())
	assert.Equal(t, "hello\n", out.Stdout)
}

func TestRunnerNonZeroExit(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires unix tools")
	}

	run := NewRunner(discard())
	out := run(context.Background(), "false")
	assert.False(t, out.Ok())
	assert.Equal(t, 1, out.ExitCode)
}

func TestRunnerMissingBinary(t *testing.T) {
	run := NewRunner(discard())
	out := run(context.Background(), "definitely-not-a-real-binary-xyz")
	assert.Equal(t, -1, out.ExitCode)
	assert.NotEmpty(t, out.Stderr)
}
