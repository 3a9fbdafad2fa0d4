// Package handlers holds API handlers that wrap a single service.
package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/anivibe/anivibe/internal/scheduler"
)

// SchedulerHandler exposes the background tasks.
type SchedulerHandler struct {
	scheduler *scheduler.Scheduler
}

// NewSchedulerHandler creates a new scheduler handler.
func NewSchedulerHandler(sched *scheduler.Scheduler) *SchedulerHandler {
	return &SchedulerHandler{
		scheduler: sched,
	}
}

// ListTasks returns all scheduled tasks.
// GET /api/tasks
func (h *SchedulerHandler) ListTasks(c echo.Context) error {
	return c.JSON(http.StatusOK, h.scheduler.ListTasks())
}

// GetTask returns one task with its last run and error.
// GET /api/tasks/:id
func (h *SchedulerHandler) GetTask(c echo.Context) error {
	task, err := h.scheduler.GetTask(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	return c.JSON(http.StatusOK, task)
}

// RunTask triggers a task outside its schedule. A task that is already
// running is a conflict.
// POST /api/tasks/:id/run
func (h *SchedulerHandler) RunTask(c echo.Context) error {
	taskID := c.Param("id")
	if _, err := h.scheduler.GetTask(taskID); err != nil {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	if err := h.scheduler.RunNow(taskID); err != nil {
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	}
	return c.JSON(http.StatusAccepted, map[string]string{
		"message": "Task started",
		"taskId":  taskID,
	})
}
