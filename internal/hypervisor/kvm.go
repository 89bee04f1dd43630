package hypervisor

import (
	"context"
	"log/slog"

	"github.com/safeboxlab/safebox/internal/hostcmd"
)

// kvm drives libvirt-managed VMs through virsh.
type kvm struct {
	run    hostcmd.Runner
	logger *slog.Logger
}

func (d *kvm) Start(ctx context.Context, vm string) hostcmd.Outcome {
	return d.run(ctx, "virsh", "start", vm)
}

func (d *kvm) Revert(ctx context.Context, vm string) hostcmd.Outcome {
	out := d.run(ctx, "virsh", "destroy", vm)
	if !out.Ok() {
		d.logger.Warn("destroy failed, skipping snapshot revert", "vm", vm, "exit_code", out.ExitCode)
		return out
	}
	return d.run(ctx, "virsh", "snapshot-revert", vm, SnapshotName)
}
