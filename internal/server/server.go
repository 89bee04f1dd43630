// Package server is the HTTP control plane: submit analyses, fetch run
// summaries and list collected reports.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type Server struct {
	http *http.Server
}

// NewServer wires the router. The secret must be non-empty; the caller
// refuses to start without one.
func NewServer(port int, h *Handler, secret string, logger *slog.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(LoggingMiddleware(logger))

	router.GET("/ping", h.Ping)

	api := router.Group("/api/v1", AuthMiddleware(secret))
	api.POST("/analyses", h.CreateAnalysis)
	api.GET("/analyses/:id", h.GetAnalysis)
	api.GET("/reports", h.ListReports)
	api.POST("/prescan", h.Prescan)

	s := &http.Server{
		Addr:              fmt.Sprintf("0.0.0.0:%d", port),
		Handler:           router,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		// Detonations run synchronously inside the request and routinely
		// take minutes.
		WriteTimeout: 15 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{http: s}
}

func (s *Server) Run() error {
	return s.http.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}
