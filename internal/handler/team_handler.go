package handler

import (
	"net/http"

	"formsly/internal/middleware"
	"formsly/internal/service"
	"formsly/pkg/pagination"
	"formsly/pkg/response"

	"github.com/gin-gonic/gin"
)

type TeamHandler struct {
	teamService service.TeamService
}

func NewTeamHandler(teamService service.TeamService) *TeamHandler {
	return &TeamHandler{teamService: teamService}
}

func (h *TeamHandler) RegisterRoutes(router *gin.RouterGroup) {
	teams := router.Group("/teams")
	{
		teams.GET("", middleware.RequirePermission("teams.read"), h.ListTeams)
		teams.GET("/:id", middleware.RequirePermission("teams.read"), h.GetTeam)
		teams.POST("", middleware.RequirePermission("teams.manage"), h.CreateTeam)
		teams.GET("/:id/members", middleware.RequirePermission("teams.read"), h.ListMembers)
		teams.POST("/:id/members", middleware.RequirePermission("teams.read"), h.AddMember)
		teams.PUT("/:id/members/:memberID", middleware.RequirePermission("teams.read"), h.UpdateMemberRole)
		teams.DELETE("/:id/members/:memberID", middleware.RequirePermission("teams.read"), h.RemoveMember)
	}
}

// CreateTeam creates a team owned by the acting user
// @Summary      Create team
// @Description  Creates a team and enrolls the creator as OWNER
// @Tags         teams
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateTeamRequest  true  "Create Team Payload"
// @Success      201      {object}  response.Response{data=service.TeamResponse}
// @Failure      400      {object}  response.Response
// @Router       /teams [post]
func (h *TeamHandler) CreateTeam(c *gin.Context) {
	var req service.CreateTeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	userID := c.GetString("userID")
	team, err := h.teamService.CreateTeam(c.Request.Context(), userID, req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, team))
}

// GetTeam fetches a single team by ID
// @Summary      Get team
// @Tags         teams
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Team ID"
// @Success      200  {object}  response.Response{data=service.TeamResponse}
// @Failure      404  {object}  response.Response
// @Router       /teams/{id} [get]
func (h *TeamHandler) GetTeam(c *gin.Context) {
	team, err := h.teamService.GetTeam(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, team))
}

// ListTeams retrieves a paginated list of teams
// @Summary      List teams
// @Tags         teams
// @Produce      json
// @Security     BearerAuth
// @Param        page   query     int  false  "Page number (default 1)"
// @Param        limit  query     int  false  "Number of items per page (default 20)"
// @Success      200    {object}  response.Response{data=object}
// @Router       /teams [get]
func (h *TeamHandler) ListTeams(c *gin.Context) {
	params := pagination.Parse(c)

	teams, total, err := h.teamService.ListTeams(c.Request.Context(), params.Page, params.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Failed to fetch teams"))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"teams": teams,
		"total": total,
		"page":  params.Page,
		"limit": params.Limit,
	}))
}

// ListMembers retrieves a team's active members
// @Summary      List team members
// @Tags         teams
// @Produce      json
// @Security     BearerAuth
// @Param        id     path      string  true   "Team ID"
// @Param        page   query     int     false  "Page number (default 1)"
// @Param        limit  query     int     false  "Number of items per page (default 20)"
// @Success      200    {object}  response.Response{data=object}
// @Router       /teams/{id}/members [get]
func (h *TeamHandler) ListMembers(c *gin.Context) {
	params := pagination.Parse(c)

	members, total, err := h.teamService.ListMembers(c.Request.Context(), c.Param("id"), params.Page, params.Limit)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"members": members,
		"total":   total,
		"page":    params.Page,
		"limit":   params.Limit,
	}))
}

// AddMember enrolls a user into the team with a team-scoped role
// @Summary      Add team member
// @Tags         teams
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                        true  "Team ID"
// @Param        payload  body      service.AddTeamMemberRequest  true  "Add Member Payload"
// @Success      201      {object}  response.Response{data=service.TeamMemberResponse}
// @Failure      400      {object}  response.Response
// @Failure      403      {object}  response.Response
// @Router       /teams/{id}/members [post]
func (h *TeamHandler) AddMember(c *gin.Context) {
	var req service.AddTeamMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	userID := c.GetString("userID")
	member, err := h.teamService.AddMember(c.Request.Context(), c.Param("id"), userID, req)
	if err != nil {
		status := http.StatusBadRequest
		if err == service.ErrNotTeamAdmin {
			status = http.StatusForbidden
		}
		c.JSON(status, response.Error(status, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, member))
}

// UpdateMemberRole changes a member's team-scoped role
// @Summary      Update team member role
// @Tags         teams
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id        path      string                           true  "Team ID"
// @Param        memberID  path      string                           true  "Member ID"
// @Param        payload   body      service.UpdateTeamMemberRequest  true  "Update Member Payload"
// @Success      200       {object}  response.Response{data=service.TeamMemberResponse}
// @Failure      400       {object}  response.Response
// @Failure      403       {object}  response.Response
// @Router       /teams/{id}/members/{memberID} [put]
func (h *TeamHandler) UpdateMemberRole(c *gin.Context) {
	var req service.UpdateTeamMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	userID := c.GetString("userID")
	member, err := h.teamService.UpdateMemberRole(c.Request.Context(), c.Param("id"), c.Param("memberID"), userID, req)
	if err != nil {
		status := http.StatusBadRequest
		if err == service.ErrNotTeamAdmin {
			status = http.StatusForbidden
		}
		c.JSON(status, response.Error(status, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, member))
}

// RemoveMember soft-disables a team member
// @Summary      Remove team member
// @Tags         teams
// @Produce      json
// @Security     BearerAuth
// @Param        id        path      string  true  "Team ID"
// @Param        memberID  path      string  true  "Member ID"
// @Success      200       {object}  response.Response
// @Failure      400       {object}  response.Response
// @Failure      403       {object}  response.Response
// @Router       /teams/{id}/members/{memberID} [delete]
func (h *TeamHandler) RemoveMember(c *gin.Context) {
	userID := c.GetString("userID")
	if err := h.teamService.RemoveMember(c.Request.Context(), c.Param("id"), c.Param("memberID"), userID); err != nil {
		status := http.StatusBadRequest
		if err == service.ErrNotTeamAdmin {
			status = http.StatusForbidden
		}
		c.JSON(status, response.Error(status, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Member removed"))
}
