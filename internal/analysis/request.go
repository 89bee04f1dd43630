package analysis

import (
	"fmt"
	"time"

	"github.com/safeboxlab/safebox/internal/report"
)

// Defaults applied by Request.ApplyDefaults.
const (
	DefaultUser         = "safebox"
	DefaultSSHPort      = 2222
	DefaultReportsDir   = "./reports"
	DefaultBootTimeout  = 120 * time.Second
	DefaultAgentTimeout = 120 * time.Second
)

// Request describes one detonation. Immutable once validated.
type Request struct {
	Backend      string
	VMName       string
	FilePath     string
	User         string
	SSHPort      int
	ReportsDir   string
	BootTimeout  time.Duration
	AgentTimeout time.Duration
}

// ApplyDefaults fills the optional fields.
func (r *Request) ApplyDefaults() {
	if r.User == "" {
		r.User = DefaultUser
	}
	if r.SSHPort == 0 {
		r.SSHPort = DefaultSSHPort
	}
	if r.ReportsDir == "" {
		r.ReportsDir = DefaultReportsDir
	}
	if r.BootTimeout == 0 {
		r.BootTimeout = DefaultBootTimeout
	}
	if r.AgentTimeout == 0 {
		r.AgentTimeout = DefaultAgentTimeout
	}
}

// Validate rejects requests with missing required fields before any side
// effect.
func (r *Request) Validate() error {
	switch {
	case r.Backend == "":
		return ErrInvalidRequest{Field: "backend"}
	case r.VMName == "":
		return ErrInvalidRequest{Field: "vm-name"}
	case r.FilePath == "":
		return ErrInvalidRequest{Field: "file"}
	case r.User == "":
		return ErrInvalidRequest{Field: "user"}
	}
	return nil
}

// IncomingPath is where the sample lands on the guest, filename preserved.
func (r *Request) IncomingPath(filename string) string {
	return fmt.Sprintf("/home/%s/incoming/%s", r.User, filename)
}

// OutputDir is where the guest agent writes its reports.
func (r *Request) OutputDir() string {
	return fmt.Sprintf("/home/%s/out", r.User)
}

// State is the phase an analysis reached.
type State string

const (
	StateStarting      State = "starting"
	StateAwaitingGuest State = "awaiting_guest"
	StateDelivering    State = "delivering"
	StateTriggering    State = "triggering"
	StateCollecting    State = "collecting"
	StateReverting     State = "reverting"
	StateDone          State = "done"
)

// Result summarizes one run. Persisted next to the downloaded reports and
// returned by the HTTP API.
type Result struct {
	ID             string         `json:"id"`
	Backend        string         `json:"backend"`
	VMName         string         `json:"vm_name"`
	Sample         report.Prescan `json:"sample"`
	State          State          `json:"state"`
	TriggerFailed  bool           `json:"trigger_failed,omitempty"`
	DownloadFailed bool           `json:"download_failed,omitempty"`
	ReportsDir     string         `json:"reports_dir"`
	StartedAt      time.Time      `json:"started_at"`
	FinishedAt     time.Time      `json:"finished_at"`
	Error          string         `json:"error,omitempty"`
}
