package hostcmd

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os/exec"
	"strings"
)

// Outcome is the result of a single external invocation. It is produced by
// every hypervisor and guest command and is never retained beyond the call
// that produced it, except for logging.
type Outcome struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// Ok reports whether the command exited with status zero.
func (o Outcome) Ok() bool {
	return o.ExitCode == 0
}

// Runner executes an external command given as a structured argument list
// and returns its outcome. Components take a Runner instead of calling
// os/exec directly so tests can substitute a fake.
type Runner func(ctx context.Context, name string, args ...string) Outcome

// NewRunner returns the default Runner backed by os/exec. Every command is
// logged verbatim before execution for forensic traceability. Commands that
// cannot be started at all report exit code -1.
func NewRunner(logger *slog.Logger) Runner {
	return func(ctx context.Context, name string, args ...string) Outcome {
		logger.Info("exec", "cmd", name+" "+strings.Join(args, " "))

		var stdout, stderr bytes.Buffer
		cmd := exec.CommandContext(ctx, name, args...)
		cmd.Stdout = &stdout
		cmd.Stderr = &stderr

		err := cmd.Run()
		out := Outcome{
			Stdout: stdout.String(),
			Stderr: stderr.String(),
		}

		switch {
		case err == nil:
			out.ExitCode = 0
		default:
			var exitErr *exec.ExitError
			if errors.As(err, &exitErr) {
				out.ExitCode = exitErr.ExitCode()
			} else {
				out.ExitCode = -1
				out.Stderr = err.Error()
			}
		}
		return out
	}
}
