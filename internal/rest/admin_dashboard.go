package rest

import (
	"context"
	"net/http"
	"time"

	"techshop/domain"
	"techshop/internal/middleware"

	"github.com/AMFarhan21/fres"
	"github.com/labstack/echo/v4"
)

type DashboardService interface {
	Main(ctx context.Context) (domain.MainDashboard, error)
	Director(ctx context.Context) (domain.DirectorDashboard, error)
	Warehouse(ctx context.Context) (domain.WarehouseDashboard, error)
	Fulfillment(ctx context.Context) (domain.FulfillmentDashboard, error)
	Reports(ctx context.Context) (domain.ReportsDashboard, error)
}

type DashboardHandler struct {
	dashboardService DashboardService
	timeout          time.Duration
}

func NewDashboardHandler(dashboardService DashboardService, timeout time.Duration) *DashboardHandler {
	return &DashboardHandler{
		dashboardService: dashboardService,
		timeout:          timeout,
	}
}

func serve[T any](h *DashboardHandler, c echo.Context, name string, load func(context.Context) (T, error)) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	data, err := load(ctx)
	if err != nil {
		return respondError(c, err, "Failed to load "+name+" dashboard")
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(data))
}

func (h *DashboardHandler) Main(c echo.Context) error {
	return serve(h, c, "main", h.dashboardService.Main)
}

func (h *DashboardHandler) Director(c echo.Context) error {
	return serve(h, c, "director", h.dashboardService.Director)
}

func (h *DashboardHandler) Warehouse(c echo.Context) error {
	return serve(h, c, "warehouse", h.dashboardService.Warehouse)
}

func (h *DashboardHandler) Fulfillment(c echo.Context) error {
	return serve(h, c, "fulfillment", h.dashboardService.Fulfillment)
}

func (h *DashboardHandler) Reports(c echo.Context) error {
	return serve(h, c, "reports", h.dashboardService.Reports)
}

// Dashboards lists the dashboards the caller may open.
func (h *DashboardHandler) Dashboards(c echo.Context) error {
	profile, _ := middleware.Staff(c)

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message":    "successfully get dashboards",
		"role":       profile.Role,
		"dashboards": profile.VisibleDashboards(),
	})
}
