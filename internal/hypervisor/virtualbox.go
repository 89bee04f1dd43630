package hypervisor

import (
	"context"
	"log/slog"

	"github.com/safeboxlab/safebox/internal/hostcmd"
)

// virtualBox drives VMs through the VBoxManage command-line frontend.
type virtualBox struct {
	run    hostcmd.Runner
	logger *slog.Logger
}

func (d *virtualBox) Start(ctx context.Context, vm string) hostcmd.Outcome {
	return d.run(ctx, "VBoxManage", "startvm", vm, "--type", "headless")
}

func (d *virtualBox) Revert(ctx context.Context, vm string) hostcmd.Outcome {
	out := d.run(ctx, "VBoxManage", "controlvm", vm, "poweroff")
	if !out.Ok() {
		d.logger.Warn("poweroff failed, skipping snapshot restore", "vm", vm, "exit_code", out.ExitCode)
		return out
	}
	return d.run(ctx, "VBoxManage", "snapshot", vm, "restore", SnapshotName)
}
