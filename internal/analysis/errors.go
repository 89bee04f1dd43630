package analysis

import (
	"fmt"
	"time"

	"github.com/safeboxlab/safebox/internal/hostcmd"
)

type ErrInvalidRequest struct {
	Field string
}

func (e ErrInvalidRequest) Error() string {
	return fmt.Sprintf("invalid request: %s is required", e.Field)
}

type ErrStart struct {
	VM      string
	Outcome hostcmd.Outcome
}

func (e ErrStart) Error() string {
	return fmt.Sprintf("start vm %s: exit %d: %s", e.VM, e.Outcome.ExitCode, e.Outcome.Stderr)
}

type ErrGuestTimeout struct {
	VM      string
	Timeout time.Duration
}

func (e ErrGuestTimeout) Error() string {
	return fmt.Sprintf("guest on vm %s not reachable within %v", e.VM, e.Timeout)
}

type ErrDeliver struct {
	File    string
	Outcome hostcmd.Outcome
}

func (e ErrDeliver) Error() string {
	return fmt.Sprintf("deliver %s: exit %d: %s", e.File, e.Outcome.ExitCode, e.Outcome.Stderr)
}

type ErrRevert struct {
	VM      string
	Outcome hostcmd.Outcome
}

func (e ErrRevert) Error() string {
	return fmt.Sprintf("revert vm %s: exit %d: %s", e.VM, e.Outcome.ExitCode, e.Outcome.Stderr)
}
