// Package guest talks to the analysis VM over ssh/scp, port-forwarded to
// localhost. Host-key verification is disabled: guests are ephemeral and
// reverted to a clean snapshot after every run.
package guest

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/safeboxlab/safebox/internal/hostcmd"
)

// Host is the guest address as seen from the orchestrator. The VM network is
// assumed port-forwarded to the loopback interface.
const Host = "127.0.0.1"

// probeConnectTimeout bounds a single readiness probe attempt so one hung
// connection cannot stall the whole wait.
const probeConnectTimeout = 5

// Target identifies the guest endpoint for remote-shell and remote-copy
// operations. Computed once per analysis and never mutated.
type Target struct {
	User string
	Port int
}

// Endpoint returns the user@host form used by ssh and scp.
func (t Target) Endpoint() string {
	return t.User + "@" + Host
}

// Channel performs connectivity probing, file upload, agent triggering and
// report download against a single guest.
type Channel struct {
	target Target
	run    hostcmd.Runner
	logger *slog.Logger
}

func NewChannel(target Target, run hostcmd.Runner, logger *slog.Logger) *Channel {
	return &Channel{target: target, run: run, logger: logger}
}

func (c *Channel) Target() Target {
	return c.target
}

// Probe attempts a trivial remote command. The guest counts as reachable
// strictly when the command exits zero.
func (c *Channel) Probe(ctx context.Context) hostcmd.Outcome {
	args := c.sshOptions(probeConnectTimeout)
	args = append(args, "-p", strconv.Itoa(c.target.Port), c.target.Endpoint(), "true")
	return c.run(ctx, "ssh", args...)
}

// Upload copies exactly one local file to remotePath on the guest. The
// destination directory is assumed to exist on the guest image.
func (c *Channel) Upload(ctx context.Context, localPath, remotePath string) hostcmd.Outcome {
	args := c.scpOptions()
	args = append(args, localPath, fmt.Sprintf("%s:%s", c.target.Endpoint(), remotePath))
	return c.run(ctx, "scp", args...)
}

// Trigger launches the in-guest analysis agent and returns without waiting
// for it. The agent enforces its own timeout; its stdout/stderr goes to a
// log file inside outputDir on the guest, not back to us.
func (c *Channel) Trigger(ctx context.Context, filePath, outputDir string, timeoutSeconds int) hostcmd.Outcome {
	agentPath := fmt.Sprintf("/home/%s/agent/agent.py", c.target.User)
	remoteCmd := fmt.Sprintf(
		"nohup python3 %s --file %s --output %s --timeout %d > %s/agent-run.log 2>&1 &",
		agentPath, filePath, outputDir, timeoutSeconds, outputDir,
	)

	args := c.sshOptions(0)
	args = append(args, "-p", strconv.Itoa(c.target.Port), c.target.Endpoint(), remoteCmd)
	return c.run(ctx, "ssh", args...)
}

// Download copies every report artifact from remoteDir into localDir,
// creating localDir if absent. A run that produced no reports is reported by
// scp itself (no matches is a copy failure); we do not second-guess it.
func (c *Channel) Download(ctx context.Context, remoteDir, localDir string) hostcmd.Outcome {
	if err := os.MkdirAll(localDir, 0o755); err != nil {
		c.logger.Error("create reports dir failed", "dir", localDir, "err", err)
		return hostcmd.Outcome{ExitCode: -1, Stderr: err.Error()}
	}

	args := c.scpOptions()
	args = append(args,
		fmt.Sprintf("%s:%s/report-*.json", c.target.Endpoint(), remoteDir),
		localDir+"/",
	)
	return c.run(ctx, "scp", args...)
}

func (c *Channel) sshOptions(connectTimeout int) []string {
	args := []string{
		"-o", "StrictHostKeyChecking=no",
		"-o", "UserKnownHostsFile=/dev/null",
		"-o", "BatchMode=yes",
		"-o", "LogLevel=ERROR",
	}
	if connectTimeout > 0 {
		args = append(args, "-o", fmt.Sprintf("ConnectTimeout=%d", connectTimeout))
	}
	return args
}

func (c *Channel) scpOptions() []string {
	args := c.sshOptions(0)
	return append(args, "-P", strconv.Itoa(c.target.Port))
}
