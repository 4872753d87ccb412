package handler

import (
	"net/http"

	"formsly/internal/middleware"
	"formsly/internal/service"
	"formsly/pkg/pagination"
	"formsly/pkg/response"

	"github.com/gin-gonic/gin"
)

type NotificationHandler struct {
	notificationService service.NotificationService
}

func NewNotificationHandler(notificationService service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

func (h *NotificationHandler) RegisterRoutes(router *gin.RouterGroup) {
	notifications := router.Group("/notifications", middleware.RequireRole("admin", "member"))
	{
		notifications.GET("", h.ListNotifications)
		notifications.GET("/unread-count", h.CountUnread)
		notifications.PUT("/:id/read", h.MarkRead)
		notifications.PUT("/read-all", h.MarkAllRead)
	}
}

// ListNotifications returns the acting user's notifications, newest first
// @Summary      List notifications
// @Tags         notifications
// @Produce      json
// @Security     BearerAuth
// @Param        unread_only  query     bool  false  "Only unread notifications"
// @Param        page         query     int   false  "Page number (default 1)"
// @Param        limit        query     int   false  "Number of items per page (default 20)"
// @Success      200          {object}  response.Response{data=object}
// @Router       /notifications [get]
func (h *NotificationHandler) ListNotifications(c *gin.Context) {
	params := pagination.Parse(c)
	unreadOnly := c.Query("unread_only") == "true"

	userID := c.GetString("userID")
	notifications, total, err := h.notificationService.ListNotifications(c.Request.Context(), userID, unreadOnly, params.Page, params.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Failed to fetch notifications"))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"notifications": notifications,
		"total":         total,
		"page":          params.Page,
		"limit":         params.Limit,
	}))
}

// CountUnread returns the acting user's unread notification count
// @Summary      Count unread notifications
// @Tags         notifications
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=object}
// @Router       /notifications/unread-count [get]
func (h *NotificationHandler) CountUnread(c *gin.Context) {
	userID := c.GetString("userID")
	count, err := h.notificationService.CountUnread(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Failed to count notifications"))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{"count": count}))
}

// MarkRead marks one of the acting user's notifications as read
// @Summary      Mark notification read
// @Tags         notifications
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Notification ID"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /notifications/{id}/read [put]
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	userID := c.GetString("userID")
	if err := h.notificationService.MarkRead(c.Request.Context(), c.Param("id"), userID); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Notification marked read"))
}

// MarkAllRead marks all of the acting user's notifications as read
// @Summary      Mark all notifications read
// @Tags         notifications
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response
// @Router       /notifications/read-all [put]
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	userID := c.GetString("userID")
	if err := h.notificationService.MarkAllRead(c.Request.Context(), userID); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, "All notifications marked read"))
}
