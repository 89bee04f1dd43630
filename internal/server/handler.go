package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/safeboxlab/safebox/internal/analysis"
	"github.com/safeboxlab/safebox/internal/config"
	"github.com/safeboxlab/safebox/internal/hypervisor"
	"github.com/safeboxlab/safebox/internal/notify"
	"github.com/safeboxlab/safebox/internal/report"
)

// Detonator runs one analysis. Satisfied by *analysis.Runner.
type Detonator interface {
	Detonate(ctx context.Context, req analysis.Request) (*analysis.Result, error)
}

type Handler struct {
	runner   Detonator
	store    *report.Store
	notifier *notify.Notifier
	cfg      *config.Config
	logger   *slog.Logger
}

func NewHandler(runner Detonator, store *report.Store, notifier *notify.Notifier, cfg *config.Config, logger *slog.Logger) *Handler {
	return &Handler{
		runner:   runner,
		store:    store,
		notifier: notifier,
		cfg:      cfg,
		logger:   logger,
	}
}

func (h *Handler) Ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true, "data": gin.H{"version": config.Version}})
}

type analysisRequest struct {
	Backend             string `json:"backend" binding:"required"`
	VMName              string `json:"vm_name" binding:"required"`
	FilePath            string `json:"file_path" binding:"required"`
	User                string `json:"user"`
	SSHPort             int    `json:"ssh_port"`
	BootTimeoutSeconds  int    `json:"boot_timeout_seconds"`
	AgentTimeoutSeconds int    `json:"agent_timeout_seconds"`
}

// CreateAnalysis runs a detonation synchronously. One VM per server means one
// analysis at a time; callers are expected to serialize submissions.
func (h *Handler) CreateAnalysis(c *gin.Context) {
	var req analysisRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": err.Error()})
		return
	}

	run := analysis.Request{
		Backend:      req.Backend,
		VMName:       req.VMName,
		FilePath:     req.FilePath,
		User:         h.cfg.GuestUser,
		SSHPort:      h.cfg.SSHPort,
		ReportsDir:   h.cfg.ReportsDir,
		BootTimeout:  h.cfg.BootTimeout,
		AgentTimeout: h.cfg.AgentTimeout,
	}
	if req.User != "" {
		run.User = req.User
	}
	if req.SSHPort != 0 {
		run.SSHPort = req.SSHPort
	}
	if req.BootTimeoutSeconds != 0 {
		run.BootTimeout = time.Duration(req.BootTimeoutSeconds) * time.Second
	}
	if req.AgentTimeoutSeconds != 0 {
		run.AgentTimeout = time.Duration(req.AgentTimeoutSeconds) * time.Second
	}

	res, err := h.runner.Detonate(c.Request.Context(), run)
	if res != nil {
		if _, serr := h.store.SaveSummary(res.ID, res); serr != nil {
			h.logger.Error("failed to save run summary", "run_id", res.ID, "err", serr)
		}
		if nerr := h.notifier.Send(c.Request.Context(), res); nerr != nil {
			h.logger.Warn("callback delivery failed", "run_id", res.ID, "err", nerr)
		}
	}

	if err != nil {
		c.JSON(statusFor(err), gin.H{"ok": false, "error": err.Error(), "data": res})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "data": res})
}

func statusFor(err error) int {
	switch {
	case errors.As(err, &analysis.ErrInvalidRequest{}),
		errors.As(err, &hypervisor.ErrUnsupportedBackend{}):
		return http.StatusBadRequest
	case errors.As(err, &analysis.ErrGuestTimeout{}):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) GetAnalysis(c *gin.Context) {
	data, err := h.store.LoadSummary(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "unknown run id"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "data": json.RawMessage(data)})
}

func (h *Handler) ListReports(c *gin.Context) {
	artifacts, err := h.store.Artifacts()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "data": gin.H{"reports": artifacts}})
}

type prescanRequest struct {
	FilePath string `json:"file_path" binding:"required"`
}

// Prescan hashes a candidate sample without detonating it.
func (h *Handler) Prescan(c *gin.Context) {
	var req prescanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": err.Error()})
		return
	}

	scan, err := report.PrescanFile(req.FilePath)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "data": scan})
}
