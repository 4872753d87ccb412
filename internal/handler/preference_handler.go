package handler

import (
	"net/http"

	"formsly/internal/middleware"
	"formsly/internal/service"
	"formsly/pkg/response"

	"github.com/gin-gonic/gin"
)

type PreferenceHandler struct {
	preferenceService service.PreferenceService
}

func NewPreferenceHandler(preferenceService service.PreferenceService) *PreferenceHandler {
	return &PreferenceHandler{preferenceService: preferenceService}
}

func (h *PreferenceHandler) RegisterRoutes(router *gin.RouterGroup) {
	prefs := router.Group("/preferences", middleware.RequireRole("admin", "member"))
	{
		prefs.GET("/:viewKey", h.GetView)
		prefs.PUT("/:viewKey/columns", h.ToggleColumn)
		prefs.PUT("/:viewKey/filters", h.SaveFilterState)
	}
}

// GetView returns the acting user's saved settings for one spreadsheet view
// @Summary      Get view preference
// @Tags         preferences
// @Produce      json
// @Security     BearerAuth
// @Param        viewKey  path      string  true  "View key, e.g. requests"
// @Success      200      {object}  response.Response{data=service.ViewPreferenceResponse}
// @Failure      400      {object}  response.Response
// @Router       /preferences/{viewKey} [get]
func (h *PreferenceHandler) GetView(c *gin.Context) {
	userID := c.GetString("userID")
	pref, err := h.preferenceService.GetView(c.Request.Context(), userID, c.Param("viewKey"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, pref))
}

// ToggleColumn flips one column's visibility in the view
// @Summary      Toggle column visibility
// @Tags         preferences
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        viewKey  path      string                       true  "View key"
// @Param        payload  body      service.ToggleColumnRequest  true  "Column Toggle Payload"
// @Success      200      {object}  response.Response{data=service.ViewPreferenceResponse}
// @Failure      400      {object}  response.Response
// @Router       /preferences/{viewKey}/columns [put]
func (h *PreferenceHandler) ToggleColumn(c *gin.Context) {
	var req service.ToggleColumnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	userID := c.GetString("userID")
	pref, err := h.preferenceService.ToggleColumn(c.Request.Context(), userID, c.Param("viewKey"), req.ColumnKey)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, pref))
}

// SaveFilterState persists the view's filter state so it survives reloads
// @Summary      Save filter state
// @Tags         preferences
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        viewKey  path      string                          true  "View key"
// @Param        payload  body      service.SaveFilterStateRequest  true  "Filter State Payload"
// @Success      200      {object}  response.Response{data=service.ViewPreferenceResponse}
// @Failure      400      {object}  response.Response
// @Router       /preferences/{viewKey}/filters [put]
func (h *PreferenceHandler) SaveFilterState(c *gin.Context) {
	var req service.SaveFilterStateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	userID := c.GetString("userID")
	pref, err := h.preferenceService.SaveFilterState(c.Request.Context(), userID, c.Param("viewKey"), req.FilterState)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, pref))
}
