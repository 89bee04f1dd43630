// safebox-host detonates one sample in a disposable VM and exits with a code
// describing how far the run got:
//
//	0 success, 1 usage, 2 missing or invalid arguments, 3 VM start failure,
//	5 guest readiness timeout, 6 delivery failure, 7 revert failure.
package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/safeboxlab/safebox/internal/analysis"
	"github.com/safeboxlab/safebox/internal/config"
	"github.com/safeboxlab/safebox/internal/hostcmd"
	"github.com/safeboxlab/safebox/internal/hypervisor"
	"github.com/safeboxlab/safebox/internal/notify"
	"github.com/safeboxlab/safebox/internal/report"
)

type exitError struct {
	code int
	err  error
}

func (e exitError) Error() string { return e.err.Error() }

func main() {
	os.Exit(run())
}

func run() int {
	if err := newRootCmd().Execute(); err != nil {
		var xe exitError
		if errors.As(err, &xe) {
			return xe.code
		}
		return 1
	}
	return 0
}

func newRootCmd() *cobra.Command {
	var (
		backend      string
		vmName       string
		filePath     string
		user         string
		sshPort      int
		reportsDir   string
		bootTimeout  time.Duration
		agentTimeout time.Duration
	)

	cmd := &cobra.Command{
		Use:           "safebox-host --backend <virtualbox|kvm> --vm-name <name> --file <path>",
		Short:         "Detonate a file in a disposable analysis VM",
		Long:          "Boots the named VM from its clean snapshot, delivers the file over scp, triggers the in-guest agent, collects its reports and reverts the VM.",
		Version:       config.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if backend == "" || vmName == "" || filePath == "" {
				fmt.Fprintln(os.Stderr, "Missing required args: --backend, --vm-name and --file must be set.")
				return exitError{code: 2, err: errors.New("missing required args")}
			}

			cfg, err := config.Load()
			if err != nil {
				fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
				return exitError{code: 2, err: err}
			}

			logger, err := config.NewLogger(cfg, "safebox-host")
			if err != nil {
				fmt.Fprintf(os.Stderr, "logger error: %v\n", err)
				return exitError{code: 1, err: err}
			}

			req := analysis.Request{
				Backend:      backend,
				VMName:       vmName,
				FilePath:     filePath,
				User:         user,
				SSHPort:      sshPort,
				ReportsDir:   reportsDir,
				BootTimeout:  bootTimeout,
				AgentTimeout: agentTimeout,
			}
			if req.User == "" {
				req.User = cfg.GuestUser
			}
			if req.SSHPort == 0 {
				req.SSHPort = cfg.SSHPort
			}
			if req.ReportsDir == "" {
				req.ReportsDir = cfg.ReportsDir
			}
			if req.BootTimeout == 0 {
				req.BootTimeout = cfg.BootTimeout
			}
			if req.AgentTimeout == 0 {
				req.AgentTimeout = cfg.AgentTimeout
			}

			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			runner := analysis.NewRunner(hostcmd.NewRunner(logger), logger)
			res, runErr := runner.Detonate(ctx, req)

			if res != nil {
				store := report.NewStore(req.ReportsDir)
				if _, err := store.SaveSummary(res.ID, res); err != nil {
					logger.Error("failed to save run summary", "err", err)
				}
				notifier := notify.New(cfg.CallbackURL, logger)
				if err := notifier.Send(ctx, res); err != nil {
					logger.Warn("callback delivery failed", "err", err)
				}
			}

			if runErr != nil {
				fmt.Fprintf(os.Stderr, "%v\n", runErr)
				return exitError{code: exitCodeFor(runErr), err: runErr}
			}

			fmt.Printf("Analysis finished. Reports (if any) are in %s\n", req.ReportsDir)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&backend, "backend", "", "hypervisor backend: virtualbox or kvm")
	flags.StringVar(&vmName, "vm-name", "", "name of the analysis VM")
	flags.StringVar(&filePath, "file", "", "path to the sample to detonate")
	flags.StringVar(&user, "user", "", "guest account receiving the sample (default from SAFEBOX_GUEST_USER)")
	flags.IntVar(&sshPort, "ssh-port", 0, "host port forwarded to the guest SSH port (default from SAFEBOX_SSH_PORT)")
	flags.StringVar(&reportsDir, "reports-dir", "", "directory for collected reports (default from SAFEBOX_REPORTS_DIR)")
	flags.DurationVar(&bootTimeout, "boot-timeout", 0, "how long to wait for the guest after VM start")
	flags.DurationVar(&agentTimeout, "agent-timeout", 0, "time budget handed to the in-guest agent")

	return cmd
}

func exitCodeFor(err error) int {
	switch {
	case errors.As(err, &analysis.ErrInvalidRequest{}):
		return 2
	case errors.As(err, &hypervisor.ErrUnsupportedBackend{}),
		errors.As(err, &analysis.ErrStart{}):
		return 3
	case errors.As(err, &analysis.ErrGuestTimeout{}):
		return 5
	case errors.As(err, &analysis.ErrDeliver{}):
		return 6
	case errors.As(err, &analysis.ErrRevert{}):
		return 7
	default:
		return 1
	}
}
