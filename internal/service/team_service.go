package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"formsly/internal/model"
	"formsly/internal/repository"

	"github.com/google/uuid"
)

var ErrNotTeamAdmin = errors.New("acting user may not manage this team")

// --- DTOs ---

type CreateTeamRequest struct {
	Name string `json:"name" binding:"required"`
}

type AddTeamMemberRequest struct {
	UserID string `json:"user_id" binding:"required"`
	Role   string `json:"role" binding:"required,oneof=OWNER ADMIN APPROVER MEMBER"`
}

type UpdateTeamMemberRequest struct {
	Role string `json:"role" binding:"required,oneof=OWNER ADMIN APPROVER MEMBER"`
}

type TeamResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	OwnerID   string `json:"owner_id"`
	OwnerName string `json:"owner_name,omitempty"`
	CreatedAt string `json:"created_at"`
}

type TeamMemberResponse struct {
	ID       string `json:"id"`
	UserID   string `json:"user_id"`
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
	Role     string `json:"role"`
}

// --- Interface ---

type TeamService interface {
	CreateTeam(ctx context.Context, actingUserID string, req CreateTeamRequest) (*TeamResponse, error)
	GetTeam(ctx context.Context, id string) (*TeamResponse, error)
	ListTeams(ctx context.Context, page, limit int) ([]TeamResponse, int64, error)
	ListMembers(ctx context.Context, teamID string, page, limit int) ([]TeamMemberResponse, int64, error)
	AddMember(ctx context.Context, teamID, actingUserID string, req AddTeamMemberRequest) (*TeamMemberResponse, error)
	UpdateMemberRole(ctx context.Context, teamID, memberID, actingUserID string, req UpdateTeamMemberRequest) (*TeamMemberResponse, error)
	RemoveMember(ctx context.Context, teamID, memberID, actingUserID string) error
}

type teamService struct {
	teamRepo  repository.TeamRepository
	auditRepo repository.AuditRepository
	txManager repository.TransactionManager
}

func NewTeamService(
	teamRepo repository.TeamRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
) TeamService {
	return &teamService{teamRepo: teamRepo, auditRepo: auditRepo, txManager: txManager}
}

// --- Implementation ---

// CreateTeam creates the team and enrolls the creator as its OWNER member in
// one transaction.
func (s *teamService) CreateTeam(ctx context.Context, actingUserID string, req CreateTeamRequest) (*TeamResponse, error) {
	userID, err := uuid.Parse(actingUserID)
	if err != nil {
		return nil, fmt.Errorf("invalid user id: %w", err)
	}

	team := model.Team{Name: req.Name, OwnerID: userID}
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.teamRepo.Create(txCtx, &team); err != nil {
			return fmt.Errorf("failed to create team: %w", err)
		}
		owner := model.TeamMember{
			TeamID: team.ID,
			UserID: userID,
			Role:   model.TeamRoleOwner,
		}
		if err := s.teamRepo.AddMember(txCtx, &owner); err != nil {
			return fmt.Errorf("failed to enroll owner: %w", err)
		}

		details, _ := json.Marshal(map[string]interface{}{"name": team.Name})
		entry := model.AuditLog{
			UserID:     &userID,
			TeamID:     &team.ID,
			Action:     model.ActionCreateTeam,
			EntityID:   team.ID.String(),
			EntityName: team.Name,
			Details:    string(details),
			CreatedAt:  time.Now(),
		}
		if err := s.auditRepo.Log(txCtx, &entry); err != nil {
			return fmt.Errorf("failed to write audit log: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.GetTeam(ctx, team.ID.String())
}

func (s *teamService) GetTeam(ctx context.Context, id string) (*TeamResponse, error) {
	teamID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid team id: %w", err)
	}
	team, err := s.teamRepo.FindByID(ctx, teamID)
	if err != nil {
		return nil, fmt.Errorf("team not found: %w", err)
	}
	resp := toTeamResponse(*team)
	return &resp, nil
}

func (s *teamService) ListTeams(ctx context.Context, page, limit int) ([]TeamResponse, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}

	teams, total, err := s.teamRepo.List(ctx, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch teams: %w", err)
	}

	result := make([]TeamResponse, 0, len(teams))
	for _, team := range teams {
		result = append(result, toTeamResponse(team))
	}
	return result, total, nil
}

func (s *teamService) ListMembers(ctx context.Context, teamID string, page, limit int) ([]TeamMemberResponse, int64, error) {
	tID, err := uuid.Parse(teamID)
	if err != nil {
		return nil, 0, fmt.Errorf("invalid team id: %w", err)
	}
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}

	members, total, err := s.teamRepo.ListMembers(ctx, tID, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch team members: %w", err)
	}

	result := make([]TeamMemberResponse, 0, len(members))
	for _, member := range members {
		result = append(result, toTeamMemberResponse(member))
	}
	return result, total, nil
}

func (s *teamService) AddMember(ctx context.Context, teamID, actingUserID string, req AddTeamMemberRequest) (*TeamMemberResponse, error) {
	tID, err := uuid.Parse(teamID)
	if err != nil {
		return nil, fmt.Errorf("invalid team id: %w", err)
	}
	actor, err := s.requireAdmin(ctx, tID, actingUserID)
	if err != nil {
		return nil, err
	}
	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		return nil, fmt.Errorf("invalid user id: %w", err)
	}

	member := model.TeamMember{TeamID: tID, UserID: userID, Role: req.Role}
	if err := s.teamRepo.AddMember(ctx, &member); err != nil {
		return nil, fmt.Errorf("failed to add team member: %w", err)
	}

	s.auditMember(ctx, actor, model.ActionAddTeamMember, member.ID.String(), req.Role)

	saved, err := s.teamRepo.FindMemberByID(ctx, member.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload team member: %w", err)
	}
	resp := toTeamMemberResponse(*saved)
	return &resp, nil
}

func (s *teamService) UpdateMemberRole(ctx context.Context, teamID, memberID, actingUserID string, req UpdateTeamMemberRequest) (*TeamMemberResponse, error) {
	tID, err := uuid.Parse(teamID)
	if err != nil {
		return nil, fmt.Errorf("invalid team id: %w", err)
	}
	actor, err := s.requireAdmin(ctx, tID, actingUserID)
	if err != nil {
		return nil, err
	}
	mID, err := uuid.Parse(memberID)
	if err != nil {
		return nil, fmt.Errorf("invalid member id: %w", err)
	}

	member, err := s.teamRepo.FindMemberByID(ctx, mID)
	if err != nil || member.TeamID != tID {
		return nil, fmt.Errorf("team member not found")
	}

	member.Role = req.Role
	if err := s.teamRepo.UpdateMember(ctx, member); err != nil {
		return nil, fmt.Errorf("failed to update team member: %w", err)
	}

	s.auditMember(ctx, actor, model.ActionAddTeamMember, member.ID.String(), req.Role)
	resp := toTeamMemberResponse(*member)
	return &resp, nil
}

func (s *teamService) RemoveMember(ctx context.Context, teamID, memberID, actingUserID string) error {
	tID, err := uuid.Parse(teamID)
	if err != nil {
		return fmt.Errorf("invalid team id: %w", err)
	}
	actor, err := s.requireAdmin(ctx, tID, actingUserID)
	if err != nil {
		return err
	}
	mID, err := uuid.Parse(memberID)
	if err != nil {
		return fmt.Errorf("invalid member id: %w", err)
	}

	member, err := s.teamRepo.FindMemberByID(ctx, mID)
	if err != nil || member.TeamID != tID {
		return fmt.Errorf("team member not found")
	}

	// Soft-disable so historical signer chains keep resolving
	member.IsDisabled = true
	if err := s.teamRepo.UpdateMember(ctx, member); err != nil {
		return fmt.Errorf("failed to remove team member: %w", err)
	}

	s.auditMember(ctx, actor, model.ActionRemoveTeamMember, member.ID.String(), member.Role)
	return nil
}

// --- Helpers ---

func (s *teamService) requireAdmin(ctx context.Context, teamID uuid.UUID, actingUserID string) (*model.TeamMember, error) {
	userID, err := uuid.Parse(actingUserID)
	if err != nil {
		return nil, fmt.Errorf("invalid user id: %w", err)
	}
	member, err := s.teamRepo.FindMemberByUser(ctx, teamID, userID)
	if err != nil {
		return nil, ErrNotTeamAdmin
	}
	if member.Role != model.TeamRoleOwner && member.Role != model.TeamRoleAdmin {
		return nil, ErrNotTeamAdmin
	}
	return member, nil
}

func (s *teamService) auditMember(ctx context.Context, actor *model.TeamMember, action, entityID, role string) {
	details, _ := json.Marshal(map[string]interface{}{"role": role})
	entry := model.AuditLog{
		UserID:    &actor.UserID,
		TeamID:    &actor.TeamID,
		Action:    action,
		EntityID:  entityID,
		Details:   string(details),
		CreatedAt: time.Now(),
	}
	_ = s.auditRepo.Log(ctx, &entry)
}

func toTeamResponse(team model.Team) TeamResponse {
	resp := TeamResponse{
		ID:        team.ID.String(),
		Name:      team.Name,
		OwnerID:   team.OwnerID.String(),
		CreatedAt: team.CreatedAt.Format(time.RFC3339),
	}
	if team.Owner != nil {
		resp.OwnerName = team.Owner.Username
	}
	return resp
}

func toTeamMemberResponse(member model.TeamMember) TeamMemberResponse {
	resp := TeamMemberResponse{
		ID:     member.ID.String(),
		UserID: member.UserID.String(),
		Role:   member.Role,
	}
	if member.User != nil {
		resp.Username = member.User.Username
		resp.Email = member.User.Email
	}
	return resp
}
