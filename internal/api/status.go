package api

import (
	"net/http"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/labstack/echo/v4"

	"github.com/anivibe/anivibe/internal/config"
	"github.com/anivibe/anivibe/internal/health"
)

// StatusResponse describes the running server.
type StatusResponse struct {
	Version   string        `json:"version"`
	StartTime string        `json:"startTime"`
	Uptime    string        `json:"uptime"`
	Sessions  int           `json:"sessions"`
	Backend   BackendStatus `json:"backend"`
}

// BackendStatus is the last known state of the metadata API.
type BackendStatus struct {
	URL         string `json:"url"`
	Healthy     bool   `json:"healthy"`
	Status      string `json:"status"`
	Message     string `json:"message,omitempty"`
	LastChecked string `json:"lastChecked,omitempty"`
	CheckedAgo  string `json:"checkedAgo,omitempty"`
}

// getStatus returns version, uptime, live session count and backend health.
// GET /api/status
func (s *Server) getStatus(c echo.Context) error {
	resp := StatusResponse{
		Version:   config.Version,
		StartTime: s.startTime.Format(time.RFC3339),
		Uptime:    humanize.RelTime(s.startTime, time.Now(), "", ""),
		Backend:   BackendStatus{URL: s.opts.Backend, Healthy: true, Status: string(health.StatusOK)},
	}
	if s.opts.Hub != nil {
		resp.Sessions = s.opts.Hub.ClientCount()
	}

	if svc := s.opts.Health; svc != nil {
		resp.Backend.Healthy = svc.IsHealthy(health.CategoryBackend, health.BackendItemID)
		if item := svc.GetItem(health.CategoryBackend, health.BackendItemID); item != nil {
			resp.Backend.Status = string(item.Status)
			resp.Backend.Message = item.Message
		}
		if at, ok := svc.LastChecked(health.CategoryBackend, health.BackendItemID); ok {
			resp.Backend.LastChecked = at.Format(time.RFC3339)
			resp.Backend.CheckedAgo = humanize.Time(at)
		}
	}

	return c.JSON(http.StatusOK, resp)
}
