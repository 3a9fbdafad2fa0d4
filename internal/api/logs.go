package api

import (
	"net/http"
	"os"

	"github.com/labstack/echo/v4"

	"github.com/anivibe/anivibe/internal/logger"
)

// LogsProvider exposes the in-memory log tail and the rotated log file.
type LogsProvider interface {
	RecentEntries() []logger.Entry
	FilePath() string
}

// LogsHandlers handles log-related HTTP endpoints.
type LogsHandlers struct {
	provider LogsProvider
}

// NewLogsHandlers creates a new logs handlers instance.
func NewLogsHandlers(provider LogsProvider) *LogsHandlers {
	return &LogsHandlers{provider: provider}
}

// RegisterRoutes registers log routes on the given group.
func (h *LogsHandlers) RegisterRoutes(g *echo.Group) {
	g.GET("", h.GetRecentLogs)
	g.GET("/download", h.DownloadLogFile)
}

// GetRecentLogs returns the buffered entries, oldest first. The optional
// level query keeps only entries at that level.
// GET /api/logs
func (h *LogsHandlers) GetRecentLogs(c echo.Context) error {
	entries := h.provider.RecentEntries()
	if level := c.QueryParam("level"); level != "" {
		filtered := entries[:0:0]
		for _, e := range entries {
			if e.Level == level {
				filtered = append(filtered, e)
			}
		}
		entries = filtered
	}
	if entries == nil {
		entries = []logger.Entry{}
	}
	return c.JSON(http.StatusOK, entries)
}

// DownloadLogFile serves the current log file for download.
// GET /api/logs/download
func (h *LogsHandlers) DownloadLogFile(c echo.Context) error {
	logPath := h.provider.FilePath()
	if logPath == "" {
		return echo.NewHTTPError(http.StatusNotFound, "no log file configured")
	}

	if _, err := os.Stat(logPath); os.IsNotExist(err) {
		return echo.NewHTTPError(http.StatusNotFound, "log file not found")
	}

	return c.Attachment(logPath, "anivibe.log")
}
