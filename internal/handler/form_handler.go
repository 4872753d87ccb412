package handler

import (
	"errors"
	"net/http"

	"formsly/internal/middleware"
	"formsly/internal/service"
	"formsly/pkg/pagination"
	"formsly/pkg/response"

	"github.com/gin-gonic/gin"
)

type FormHandler struct {
	formService service.FormService
}

func NewFormHandler(formService service.FormService) *FormHandler {
	return &FormHandler{formService: formService}
}

func (h *FormHandler) RegisterRoutes(router *gin.RouterGroup) {
	teams := router.Group("/teams/:id/forms")
	{
		teams.GET("", middleware.RequirePermission("forms.read"), h.ListForms)
		teams.POST("", middleware.RequirePermission("forms.manage"), h.CreateForm)
	}

	forms := router.Group("/forms")
	{
		forms.GET("/:id", middleware.RequirePermission("forms.read"), h.GetForm)
		forms.PUT("/:id", middleware.RequirePermission("forms.manage"), h.UpdateForm)
		forms.DELETE("/:id", middleware.RequirePermission("forms.manage"), h.DisableForm)
		forms.GET("/:id/signers", middleware.RequirePermission("forms.read"), h.ListSigners)
		forms.PUT("/:id/signers", middleware.RequirePermission("forms.manage"), h.ConfigureSigners)
	}
}

// CreateForm creates a form inside a team
// @Summary      Create form
// @Tags         forms
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                     true  "Team ID"
// @Param        payload  body      service.CreateFormRequest  true  "Create Form Payload"
// @Success      201      {object}  response.Response{data=service.FormResponse}
// @Failure      400      {object}  response.Response
// @Failure      403      {object}  response.Response
// @Router       /teams/{id}/forms [post]
func (h *FormHandler) CreateForm(c *gin.Context) {
	var req service.CreateFormRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	userID := c.GetString("userID")
	form, err := h.formService.CreateForm(c.Request.Context(), c.Param("id"), userID, req)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, service.ErrNotAllowedToManage) {
			status = http.StatusForbidden
		}
		c.JSON(status, response.Error(status, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, form))
}

// GetForm fetches a single form by ID
// @Summary      Get form
// @Tags         forms
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Form ID"
// @Success      200  {object}  response.Response{data=service.FormResponse}
// @Failure      404  {object}  response.Response
// @Router       /forms/{id} [get]
func (h *FormHandler) GetForm(c *gin.Context) {
	form, err := h.formService.GetForm(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, form))
}

// ListForms retrieves a team's forms with search, sort and pagination
// @Summary      List forms
// @Tags         forms
// @Produce      json
// @Security     BearerAuth
// @Param        id              path      string  true   "Team ID"
// @Param        search          query     string  false  "Substring match on form name"
// @Param        include_hidden  query     bool    false  "Include disabled forms"
// @Param        sort_by         query     string  false  "Sort column"
// @Param        sort_dir        query     string  false  "asc or desc (default desc)"
// @Param        page            query     int     false  "Page number (default 1)"
// @Param        limit           query     int     false  "Number of items per page (default 20)"
// @Success      200             {object}  response.Response{data=object}
// @Router       /teams/{id}/forms [get]
func (h *FormHandler) ListForms(c *gin.Context) {
	params := pagination.Parse(c)
	sortColumn, sortDir := pagination.ParseSort(c)

	filter := service.FormListFilter{
		Search:        c.Query("search"),
		IncludeHidden: c.Query("include_hidden") == "true",
		Page:          params.Page,
		Limit:         params.Limit,
		SortColumn:    sortColumn,
		SortDirection: sortDir,
	}

	forms, total, err := h.formService.ListForms(c.Request.Context(), c.Param("id"), filter)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"forms": forms,
		"total": total,
		"page":  params.Page,
		"limit": params.Limit,
	}))
}

// UpdateForm updates a form's name, description or visibility
// @Summary      Update form
// @Tags         forms
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                     true  "Form ID"
// @Param        payload  body      service.UpdateFormRequest  true  "Update Form Payload"
// @Success      200      {object}  response.Response{data=service.FormResponse}
// @Failure      400      {object}  response.Response
// @Failure      403      {object}  response.Response
// @Router       /forms/{id} [put]
func (h *FormHandler) UpdateForm(c *gin.Context) {
	var req service.UpdateFormRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload"))
		return
	}

	userID := c.GetString("userID")
	form, err := h.formService.UpdateForm(c.Request.Context(), c.Param("id"), userID, req)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, service.ErrNotAllowedToManage) {
			status = http.StatusForbidden
		}
		c.JSON(status, response.Error(status, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, form))
}

// DisableForm soft-disables a form so no new requests can target it
// @Summary      Disable form
// @Tags         forms
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Form ID"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Router       /forms/{id} [delete]
func (h *FormHandler) DisableForm(c *gin.Context) {
	userID := c.GetString("userID")
	if err := h.formService.DisableForm(c.Request.Context(), c.Param("id"), userID); err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, service.ErrNotAllowedToManage) {
			status = http.StatusForbidden
		}
		c.JSON(status, response.Error(status, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Form disabled"))
}

// ListSigners returns the form's active signer chain in order
// @Summary      List form signers
// @Tags         forms
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Form ID"
// @Success      200  {object}  response.Response{data=[]service.SignerResponse}
// @Failure      400  {object}  response.Response
// @Router       /forms/{id}/signers [get]
func (h *FormHandler) ListSigners(c *gin.Context) {
	signers, err := h.formService.ListSigners(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, signers))
}

// ConfigureSigners replaces the form's signer chain atomically
// @Summary      Configure form signers
// @Description  Validates and replaces the entire signer chain. In-flight requests keep their original chain.
// @Tags         forms
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                          true  "Form ID"
// @Param        payload  body      service.ConfigureSignersRequest true  "Signer Chain Payload"
// @Success      200      {object}  response.Response{data=[]service.SignerResponse}
// @Failure      400      {object}  response.Response
// @Failure      403      {object}  response.Response
// @Router       /forms/{id}/signers [put]
func (h *FormHandler) ConfigureSigners(c *gin.Context) {
	var req service.ConfigureSignersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	userID := c.GetString("userID")
	signers, err := h.formService.ConfigureSigners(c.Request.Context(), c.Param("id"), userID, req)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, service.ErrNotAllowedToManage) {
			status = http.StatusForbidden
		}
		c.JSON(status, response.Error(status, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, signers))
}
