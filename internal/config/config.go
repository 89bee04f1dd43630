package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Build-time variables injected via -ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

// Config holds host-side settings loaded from environment variables. The
// per-run parameters (backend, VM name, sample path) arrive via CLI flags or
// the HTTP API, not here.
type Config struct {
	// GuestUser is the account on the analysis VM that receives samples.
	GuestUser string

	// SSHPort is the host port forwarded to the guest's SSH port.
	SSHPort int

	// ReportsDir is where downloaded reports and run summaries land.
	ReportsDir string

	// BootTimeout bounds the wait for guest SSH after VM start.
	BootTimeout time.Duration

	// AgentTimeout is the time budget handed to the in-guest agent.
	AgentTimeout time.Duration

	// ListenPort is the HTTP control-plane port (safebox-server only).
	ListenPort int

	// APISecret guards the HTTP control plane.
	APISecret string

	// CallbackURL, when set, receives a POST with the run summary after
	// every analysis.
	CallbackURL string

	// LogDir is the directory for log files; empty logs to stderr.
	LogDir string

	// Debug enables verbose logging.
	Debug bool
}

// DefaultConfig returns a Config populated with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		GuestUser:    "safebox",
		SSHPort:      2222,
		ReportsDir:   "./reports",
		BootTimeout:  120 * time.Second,
		AgentTimeout: 120 * time.Second,
		ListenPort:   8900,
	}
}

// Load reads configuration from environment variables, applying defaults for
// anything not explicitly set.
func Load() (*Config, error) {
	cfg := DefaultConfig()

	if v := os.Getenv("SAFEBOX_GUEST_USER"); v != "" {
		cfg.GuestUser = v
	}

	if v := os.Getenv("SAFEBOX_SSH_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil || port <= 0 {
			return nil, fmt.Errorf("SAFEBOX_SSH_PORT: invalid port %q", v)
		}
		cfg.SSHPort = port
	}

	if v := os.Getenv("SAFEBOX_REPORTS_DIR"); v != "" {
		cfg.ReportsDir = v
	}

	if v := os.Getenv("SAFEBOX_BOOT_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("SAFEBOX_BOOT_TIMEOUT: %w", err)
		}
		cfg.BootTimeout = d
	}

	if v := os.Getenv("SAFEBOX_AGENT_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("SAFEBOX_AGENT_TIMEOUT: %w", err)
		}
		cfg.AgentTimeout = d
	}

	if v := os.Getenv("SAFEBOX_LISTEN_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil || port <= 0 {
			return nil, fmt.Errorf("SAFEBOX_LISTEN_PORT: invalid port %q", v)
		}
		cfg.ListenPort = port
	}

	cfg.APISecret = os.Getenv("SAFEBOX_API_SECRET")
	cfg.CallbackURL = os.Getenv("SAFEBOX_CALLBACK_URL")
	cfg.LogDir = os.Getenv("SAFEBOX_LOG_DIR")
	cfg.Debug = os.Getenv("SAFEBOX_DEBUG") == "true"

	return cfg, nil
}

// NewLogger creates a structured JSON logger. With LogDir set it appends to
// <LogDir>/<name>.log, otherwise it writes to stderr.
func NewLogger(cfg *Config, name string) (*slog.Logger, error) {
	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}

	out := os.Stderr
	if cfg.LogDir != "" {
		if err := os.MkdirAll(cfg.LogDir, 0o755); err != nil {
			return nil, fmt.Errorf("create log dir: %w", err)
		}
		file, err := os.OpenFile(filepath.Join(cfg.LogDir, name+".log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		out = file
	}

	return slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{Level: level})), nil
}
