package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"formsly/internal/middleware"
	"formsly/internal/service"
	"formsly/pkg/pagination"
	"formsly/pkg/response"

	"github.com/gin-gonic/gin"
)

type RequestHandler struct {
	requestService service.RequestService
}

func NewRequestHandler(requestService service.RequestService) *RequestHandler {
	return &RequestHandler{requestService: requestService}
}

func (h *RequestHandler) RegisterRoutes(router *gin.RouterGroup) {
	teams := router.Group("/teams/:id/requests")
	{
		teams.GET("", middleware.RequirePermission("requests.read"), h.ListRequests)
		teams.POST("", middleware.RequirePermission("requests.write"), h.SubmitRequest)
	}

	requests := router.Group("/requests")
	{
		requests.GET("/:id", middleware.RequirePermission("requests.read"), h.GetRequest)
		requests.PUT("/:id/cancel", middleware.RequirePermission("requests.write"), h.CancelRequest)
	}

	router.PUT("/request-signers/:id/status", middleware.RequirePermission("requests.approve"), h.RecordDecision)
}

// SubmitRequest files a request against a form, instantiating its signer chain
// @Summary      Submit request
// @Description  Creates a PENDING request and one PENDING decision per configured signer
// @Tags         requests
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                    true  "Team ID"
// @Param        payload  body      service.SubmitRequestDTO  true  "Submit Request Payload"
// @Success      201      {object}  response.Response{data=service.RequestDetailResponse}
// @Failure      400      {object}  response.Response
// @Failure      403      {object}  response.Response
// @Router       /teams/{id}/requests [post]
func (h *RequestHandler) SubmitRequest(c *gin.Context) {
	var req service.SubmitRequestDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	userID := c.GetString("userID")
	result, err := h.requestService.SubmitRequest(c.Request.Context(), c.Param("id"), userID, req)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, service.ErrNotTeamMember) {
			status = http.StatusForbidden
		}
		c.JSON(status, response.Error(status, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, result))
}

// ListRequests serves the team's spreadsheet view of requests
// @Summary      List requests
// @Description  Filterable, sortable, paginated request listing for one team
// @Tags         requests
// @Produce      json
// @Security     BearerAuth
// @Param        id             path      string  true   "Team ID"
// @Param        statuses       query     string  false  "Comma-separated status filter (PENDING,APPROVED,REJECTED,CANCELED)"
// @Param        form_ids       query     string  false  "Comma-separated form ID filter"
// @Param        requester_ids  query     string  false  "Comma-separated requester user ID filter"
// @Param        search         query     string  false  "Substring match on request title"
// @Param        date_from      query     string  false  "Creation date lower bound (RFC3339)"
// @Param        date_to        query     string  false  "Creation date upper bound (RFC3339)"
// @Param        sort_by        query     string  false  "Sort column"
// @Param        sort_dir       query     string  false  "asc or desc (default desc)"
// @Param        page           query     int     false  "Page number (default 1)"
// @Param        limit          query     int     false  "Number of items per page (default 20)"
// @Success      200            {object}  response.Response{data=service.RequestPage}
// @Failure      400            {object}  response.Response
// @Router       /teams/{id}/requests [get]
func (h *RequestHandler) ListRequests(c *gin.Context) {
	params := pagination.Parse(c)
	sortColumn, sortDir := pagination.ParseSort(c)

	filter := service.RequestListFilter{
		Statuses:      splitParam(c.Query("statuses")),
		FormIDs:       splitParam(c.Query("form_ids")),
		RequesterIDs:  splitParam(c.Query("requester_ids")),
		Search:        c.Query("search"),
		Page:          params.Page,
		Limit:         params.Limit,
		SortColumn:    sortColumn,
		SortDirection: sortDir,
	}

	if from := c.Query("date_from"); from != "" {
		t, err := time.Parse(time.RFC3339, from)
		if err != nil {
			c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid date_from, expected RFC3339"))
			return
		}
		filter.DateFrom = &t
	}
	if to := c.Query("date_to"); to != "" {
		t, err := time.Parse(time.RFC3339, to)
		if err != nil {
			c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid date_to, expected RFC3339"))
			return
		}
		filter.DateTo = &t
	}

	page, err := h.requestService.ListRequests(c.Request.Context(), c.Param("id"), filter)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, page))
}

// GetRequest returns one request with its full decision chain
// @Summary      Get request
// @Tags         requests
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Request ID"
// @Success      200  {object}  response.Response{data=service.RequestDetailResponse}
// @Failure      404  {object}  response.Response
// @Router       /requests/{id} [get]
func (h *RequestHandler) GetRequest(c *gin.Context) {
	result, err := h.requestService.GetRequest(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// RecordDecision approves or rejects one signer's decision instance
// @Summary      Record decision
// @Description  Records APPROVED or REJECTED on a decision instance and recomputes the request's aggregate status
// @Tags         requests
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string               true  "Request Signer ID"
// @Param        payload  body      service.DecisionDTO  true  "Decision Payload"
// @Success      200      {object}  response.Response{data=service.RequestDetailResponse}
// @Failure      400      {object}  response.Response
// @Failure      403      {object}  response.Response
// @Router       /request-signers/{id}/status [put]
func (h *RequestHandler) RecordDecision(c *gin.Context) {
	var req service.DecisionDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	userID := c.GetString("userID")
	result, err := h.requestService.RecordDecision(c.Request.Context(), c.Param("id"), userID, req.Status)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, service.ErrNotAssignedSigner) {
			status = http.StatusForbidden
		}
		if errors.Is(err, service.ErrRequestFinalized) {
			status = http.StatusConflict
		}
		c.JSON(status, response.Error(status, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// CancelRequest cancels a pending request, requester only
// @Summary      Cancel request
// @Tags         requests
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Request ID"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Router       /requests/{id}/cancel [put]
func (h *RequestHandler) CancelRequest(c *gin.Context) {
	userID := c.GetString("userID")
	if err := h.requestService.CancelRequest(c.Request.Context(), c.Param("id"), userID); err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, service.ErrNotRequestOwner) {
			status = http.StatusForbidden
		}
		if errors.Is(err, service.ErrRequestNotPending) {
			status = http.StatusConflict
		}
		c.JSON(status, response.Error(status, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Request canceled"))
}

// splitParam splits a comma-separated query value, dropping empty entries
func splitParam(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
