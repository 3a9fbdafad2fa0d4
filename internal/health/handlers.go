package health

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
)

// CheckFunc runs the checks of one category.
type CheckFunc func(ctx context.Context) error

// Handlers provides HTTP handlers for health endpoints.
type Handlers struct {
	health *Service
	checks map[HealthCategory]CheckFunc
}

// NewHandlers creates new health handlers with a check per category.
func NewHandlers(health *Service, checks map[HealthCategory]CheckFunc) *Handlers {
	return &Handlers{
		health: health,
		checks: checks,
	}
}

// RegisterRoutes registers health routes.
func (h *Handlers) RegisterRoutes(g *echo.Group) {
	g.GET("", h.GetAll)
	g.GET("/summary", h.GetSummary)
	g.GET("/:category", h.GetByCategory)
	g.POST("/:category/test", h.TestCategory)
}

// GetAll returns all health items grouped by category.
// GET /api/health
func (h *Handlers) GetAll(c echo.Context) error {
	return c.JSON(http.StatusOK, h.health.GetAll())
}

// GetSummary returns summary counts.
// GET /api/health/summary
func (h *Handlers) GetSummary(c echo.Context) error {
	return c.JSON(http.StatusOK, h.health.GetSummary())
}

// GetByCategory returns the items of a category.
// GET /api/health/:category
func (h *Handlers) GetByCategory(c echo.Context) error {
	category, ok := h.category(c)
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "unknown health category")
	}
	return c.JSON(http.StatusOK, h.health.GetByCategory(category))
}

// TestResponse is the result of an on-demand check.
type TestResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// TestCategory runs a category's checks now.
// POST /api/health/:category/test
func (h *Handlers) TestCategory(c echo.Context) error {
	category, ok := h.category(c)
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "unknown health category")
	}
	check, ok := h.checks[category]
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "category has no checks")
	}

	if err := check(c.Request().Context()); err != nil {
		return c.JSON(http.StatusOK, TestResponse{Success: false, Message: err.Error()})
	}
	return c.JSON(http.StatusOK, TestResponse{Success: true})
}

func (h *Handlers) category(c echo.Context) (HealthCategory, bool) {
	want := HealthCategory(c.Param("category"))
	for _, cat := range AllCategories() {
		if cat == want {
			return cat, true
		}
	}
	return "", false
}
