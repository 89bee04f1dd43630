// Package hypervisor maps abstract VM lifecycle operations onto the command
// sets of the supported hypervisor backends.
package hypervisor

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/safeboxlab/safebox/internal/hostcmd"
)

// Backend identifiers recognized by New.
const (
	BackendVirtualBox = "virtualbox"
	BackendKVM        = "kvm"
)

// SnapshotName is the snapshot every analysis VM is reverted to. The guest
// image must carry a snapshot with this exact name.
const SnapshotName = "clean"

// Driver starts a VM and reverts it to the clean snapshot. Both operations
// translate to hypervisor commands and surface the raw command outcome.
type Driver interface {
	// Start boots the VM headless.
	Start(ctx context.Context, vm string) hostcmd.Outcome

	// Revert forcefully stops the VM, then restores the clean snapshot.
	// The restore step is skipped when the stop fails: restoring over a VM
	// that refused to stop can leave the hypervisor in an inconsistent state.
	Revert(ctx context.Context, vm string) hostcmd.Outcome
}

// ErrUnsupportedBackend is returned by New for backend identifiers that map
// to no known command set. No external command is attempted.
type ErrUnsupportedBackend struct {
	Backend string
}

func (e ErrUnsupportedBackend) Error() string {
	return fmt.Sprintf("unsupported backend: %q (want %s or %s)", e.Backend, BackendVirtualBox, BackendKVM)
}

// New selects the driver for the given backend identifier.
func New(backend string, run hostcmd.Runner, logger *slog.Logger) (Driver, error) {
	switch backend {
	case BackendVirtualBox:
		return &virtualBox{run: run, logger: logger}, nil
	case BackendKVM:
		return &kvm{run: run, logger: logger}, nil
	default:
		return nil, ErrUnsupportedBackend{Backend: backend}
	}
}
