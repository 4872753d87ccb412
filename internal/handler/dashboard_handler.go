package handler

import (
	"net/http"
	"time"

	"formsly/internal/middleware"
	"formsly/internal/service"
	"formsly/pkg/response"

	"github.com/gin-gonic/gin"
)

type DashboardHandler struct {
	dashboardService service.DashboardService
}

func NewDashboardHandler(dashboardService service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

func (h *DashboardHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/teams/:id/dashboard", middleware.RequirePermission("dashboard.read"), h.GetDashboard)
}

// GetDashboard returns request counts, amount totals and top forms for a team
// @Summary      Team dashboard
// @Description  Aggregated request metrics for one team over a time range (defaults to the last 30 days)
// @Tags         dashboard
// @Produce      json
// @Security     BearerAuth
// @Param        id          path      string  true   "Team ID"
// @Param        start_date  query     string  false  "Range start (RFC3339)"
// @Param        end_date    query     string  false  "Range end (RFC3339)"
// @Success      200         {object}  response.Response{data=model.DashboardResponse}
// @Failure      400         {object}  response.Response
// @Router       /teams/{id}/dashboard [get]
func (h *DashboardHandler) GetDashboard(c *gin.Context) {
	endDate := time.Now()
	startDate := endDate.AddDate(0, 0, -30)

	if raw := c.Query("start_date"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid start_date, expected RFC3339"))
			return
		}
		startDate = t
	}
	if raw := c.Query("end_date"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid end_date, expected RFC3339"))
			return
		}
		endDate = t
	}

	dashboard, err := h.dashboardService.GetDashboard(c.Request.Context(), c.Param("id"), startDate, endDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, dashboard))
}
