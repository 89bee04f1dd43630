// Package analysis sequences the hypervisor and guest operations into the
// full detonation workflow and owns the failure and cleanup policy.
package analysis

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/safeboxlab/safebox/internal/guest"
	"github.com/safeboxlab/safebox/internal/hostcmd"
	"github.com/safeboxlab/safebox/internal/hypervisor"
	"github.com/safeboxlab/safebox/internal/report"
)

// Driver is the VM lifecycle capability the orchestrator depends on.
// Satisfied by hypervisor.Driver.
type Driver interface {
	Start(ctx context.Context, vm string) hostcmd.Outcome
	Revert(ctx context.Context, vm string) hostcmd.Outcome
}

// Channel is the guest transport capability. Satisfied by guest.Channel.
type Channel interface {
	Upload(ctx context.Context, localPath, remotePath string) hostcmd.Outcome
	Trigger(ctx context.Context, filePath, outputDir string, timeoutSeconds int) hostcmd.Outcome
	Download(ctx context.Context, remoteDir, localDir string) hostcmd.Outcome
}

// Waiter blocks until the guest is reachable or the deadline passes.
// Satisfied by guest.Waiter.
type Waiter interface {
	Wait(ctx context.Context, timeout time.Duration) bool
}

// Runner detonates one file per invocation. Strictly sequential: each step
// completes before the next begins, and exactly one VM is managed per run.
type Runner struct {
	exec   hostcmd.Runner
	logger *slog.Logger
}

func NewRunner(exec hostcmd.Runner, logger *slog.Logger) *Runner {
	return &Runner{exec: exec, logger: logger}
}

// Detonate validates the request, wires the real hypervisor driver and guest
// channel, and runs the workflow.
func (r *Runner) Detonate(ctx context.Context, req Request) (*Result, error) {
	req.ApplyDefaults()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	driver, err := hypervisor.New(req.Backend, r.exec, r.logger)
	if err != nil {
		return nil, err
	}

	ch := guest.NewChannel(guest.Target{User: req.User, Port: req.SSHPort}, r.exec, r.logger)
	return r.Execute(ctx, req, driver, ch, guest.NewWaiter(ch, r.logger))
}

// Execute runs the state machine with explicit collaborators. Split from
// Detonate so tests can substitute fakes for the driver, channel and waiter.
//
// Failure policy: a start failure, a guest-readiness timeout and a delivery
// failure are fatal. On the latter two the VM is deliberately left running
// for post-mortem inspection; only the trigger/collect path reverts. A
// trigger or download failure is logged and the run proceeds, because a
// partially started agent may still have produced reports. Revert is always
// attempted once the delivery phase is passed, and a revert failure is the
// terminal, user-visible error.
func (r *Runner) Execute(ctx context.Context, req Request, driver Driver, ch Channel, w Waiter) (*Result, error) {
	res := &Result{
		ID:         "run-" + uuid.New().String()[:8],
		Backend:    req.Backend,
		VMName:     req.VMName,
		ReportsDir: req.ReportsDir,
		StartedAt:  time.Now().UTC(),
	}
	defer func() { res.FinishedAt = time.Now().UTC() }()

	sample, err := report.PrescanFile(req.FilePath)
	if err != nil {
		return nil, err
	}
	res.Sample = sample

	log := r.logger.With("run_id", res.ID, "vm", req.VMName, "backend", req.Backend)
	log.Info("analysis started", "sample", sample.File, "sha256", sample.SHA256)

	res.State = StateStarting
	if out := driver.Start(ctx, req.VMName); !out.Ok() {
		return r.fail(res, log, ErrStart{VM: req.VMName, Outcome: out})
	}

	res.State = StateAwaitingGuest
	log.Info("waiting for guest", "port", req.SSHPort, "timeout", req.BootTimeout)
	if !w.Wait(ctx, req.BootTimeout) {
		log.Warn("guest never became reachable, vm left running for inspection")
		return r.fail(res, log, ErrGuestTimeout{VM: req.VMName, Timeout: req.BootTimeout})
	}

	res.State = StateDelivering
	remotePath := req.IncomingPath(filepath.Base(req.FilePath))
	if out := ch.Upload(ctx, req.FilePath, remotePath); !out.Ok() {
		log.Warn("delivery failed, vm left running for inspection")
		return r.fail(res, log, ErrDeliver{File: req.FilePath, Outcome: out})
	}

	res.State = StateTriggering
	if out := ch.Trigger(ctx, remotePath, req.OutputDir(), int(req.AgentTimeout.Seconds())); !out.Ok() {
		// Not fatal: the agent may have partially started and reports may
		// still appear before the revert.
		log.Warn("agent trigger reported failure, continuing", "exit_code", out.ExitCode, "stderr", out.Stderr)
		res.TriggerFailed = true
	}

	res.State = StateCollecting
	if out := ch.Download(ctx, req.OutputDir(), req.ReportsDir); !out.Ok() {
		log.Warn("report download reported failure, continuing", "exit_code", out.ExitCode, "stderr", out.Stderr)
		res.DownloadFailed = true
	}

	res.State = StateReverting
	if out := driver.Revert(ctx, req.VMName); !out.Ok() {
		return r.fail(res, log, ErrRevert{VM: req.VMName, Outcome: out})
	}

	res.State = StateDone
	log.Info("analysis finished", "reports_dir", req.ReportsDir, "trigger_failed", res.TriggerFailed)
	return res, nil
}

func (r *Runner) fail(res *Result, log *slog.Logger, err error) (*Result, error) {
	res.Error = err.Error()
	log.Error("analysis failed", "state", res.State, "err", err)
	return res, err
}
