package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"formsly/internal/model"
	"formsly/internal/query"
	"formsly/internal/repository"

	"github.com/google/uuid"
)

// Signer chain validation errors, surfaced to the user before any write.
var (
	ErrNoPrimarySigner    = errors.New("signer list must include at least one primary signer")
	ErrDuplicateSigner    = errors.New("a team member may appear only once in the signer list")
	ErrEmptySignerList    = errors.New("signer list must not be empty")
	ErrSignerNotInTeam    = errors.New("signer is not an active member of the form's team")
	ErrFormHasNoSigners   = errors.New("form has no signer chain configured")
	ErrNotAllowedToManage = errors.New("acting user may not manage this form")
)

// --- DTOs ---

type CreateFormRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

type UpdateFormRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	IsHidden    *bool  `json:"is_hidden"`
}

type SignerInput struct {
	TeamMemberID string `json:"team_member_id" binding:"required"`
	Order        int    `json:"order" binding:"required,gte=1"`
	IsPrimary    bool   `json:"is_primary"`
	Action       string `json:"action"`
}

type ConfigureSignersRequest struct {
	Signers []SignerInput `json:"signers" binding:"required,dive"`
}

type FormListFilter struct {
	Search        string
	IncludeHidden bool
	Page          int
	Limit         int
	SortColumn    string
	SortDirection string
}

type SignerResponse struct {
	ID           string `json:"id"`
	TeamMemberID string `json:"team_member_id"`
	Username     string `json:"username"`
	Order        int    `json:"order"`
	IsPrimary    bool   `json:"is_primary"`
	Action       string `json:"action"`
}

type FormResponse struct {
	ID          string `json:"id"`
	TeamID      string `json:"team_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	CreatedBy   string `json:"created_by,omitempty"`
	CreatorName string `json:"creator_name,omitempty"`
	IsHidden    bool   `json:"is_hidden"`
	CreatedAt   string `json:"created_at"`
}

// --- Interface ---

type FormService interface {
	CreateForm(ctx context.Context, teamID, actingUserID string, req CreateFormRequest) (*FormResponse, error)
	GetForm(ctx context.Context, id string) (*FormResponse, error)
	ListForms(ctx context.Context, teamID string, filter FormListFilter) ([]FormResponse, int64, error)
	UpdateForm(ctx context.Context, id, actingUserID string, req UpdateFormRequest) (*FormResponse, error)
	DisableForm(ctx context.Context, id, actingUserID string) error
	ConfigureSigners(ctx context.Context, formID, actingUserID string, req ConfigureSignersRequest) ([]SignerResponse, error)
	ListSigners(ctx context.Context, formID string) ([]SignerResponse, error)
}

type formService struct {
	formRepo  repository.FormRepository
	teamRepo  repository.TeamRepository
	auditRepo repository.AuditRepository
	txManager repository.TransactionManager
}

func NewFormService(
	formRepo repository.FormRepository,
	teamRepo repository.TeamRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
) FormService {
	return &formService{
		formRepo:  formRepo,
		teamRepo:  teamRepo,
		auditRepo: auditRepo,
		txManager: txManager,
	}
}

// --- Implementation ---

func (s *formService) CreateForm(ctx context.Context, teamID, actingUserID string, req CreateFormRequest) (*FormResponse, error) {
	tID, err := uuid.Parse(teamID)
	if err != nil {
		return nil, fmt.Errorf("invalid team id: %w", err)
	}
	member, err := s.requireManager(ctx, tID, actingUserID)
	if err != nil {
		return nil, err
	}

	form := model.Form{
		TeamID:      tID,
		Name:        req.Name,
		Description: req.Description,
		CreatedBy:   &member.ID,
	}
	if err := s.formRepo.Create(ctx, &form); err != nil {
		return nil, fmt.Errorf("failed to create form: %w", err)
	}

	s.audit(ctx, member, model.ActionCreateForm, form.ID.String(), form.Name, map[string]interface{}{
		"name": form.Name,
	})

	return s.GetForm(ctx, form.ID.String())
}

func (s *formService) GetForm(ctx context.Context, id string) (*FormResponse, error) {
	formID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid form id: %w", err)
	}
	form, err := s.formRepo.FindByID(ctx, formID)
	if err != nil {
		return nil, fmt.Errorf("form not found: %w", err)
	}
	resp := toFormResponse(*form)
	return &resp, nil
}

func (s *formService) ListForms(ctx context.Context, teamID string, filter FormListFilter) ([]FormResponse, int64, error) {
	tID, err := uuid.Parse(teamID)
	if err != nil {
		return nil, 0, fmt.Errorf("invalid team id: %w", err)
	}

	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = 20
	}

	f := query.Filter{}
	if filter.Search != "" {
		f.Conditions = append(f.Conditions, query.Contains("name", filter.Search))
	}
	if !filter.IncludeHidden {
		f.Conditions = append(f.Conditions, query.Eq("is_hidden", false))
	}

	sort := query.Sort{Column: filter.SortColumn, Direction: query.Direction(filter.SortDirection)}

	forms, total, err := s.formRepo.List(ctx, tID, f, sort, filter.Page, filter.Limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch forms: %w", err)
	}

	result := make([]FormResponse, 0, len(forms))
	for _, form := range forms {
		result = append(result, toFormResponse(form))
	}
	return result, total, nil
}

func (s *formService) UpdateForm(ctx context.Context, id, actingUserID string, req UpdateFormRequest) (*FormResponse, error) {
	formID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid form id: %w", err)
	}
	form, err := s.formRepo.FindByID(ctx, formID)
	if err != nil {
		return nil, fmt.Errorf("form not found: %w", err)
	}
	member, err := s.requireManager(ctx, form.TeamID, actingUserID)
	if err != nil {
		return nil, err
	}

	if req.Name != "" {
		form.Name = req.Name
	}
	if req.Description != "" {
		form.Description = req.Description
	}
	if req.IsHidden != nil {
		form.IsHidden = *req.IsHidden
	}

	if err := s.formRepo.Update(ctx, form); err != nil {
		return nil, fmt.Errorf("failed to update form: %w", err)
	}

	s.audit(ctx, member, model.ActionUpdateForm, form.ID.String(), form.Name, map[string]interface{}{
		"name":      form.Name,
		"is_hidden": form.IsHidden,
	})

	resp := toFormResponse(*form)
	return &resp, nil
}

func (s *formService) DisableForm(ctx context.Context, id, actingUserID string) error {
	formID, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid form id: %w", err)
	}
	form, err := s.formRepo.FindByID(ctx, formID)
	if err != nil {
		return fmt.Errorf("form not found: %w", err)
	}
	member, err := s.requireManager(ctx, form.TeamID, actingUserID)
	if err != nil {
		return err
	}

	form.IsDisabled = true
	if err := s.formRepo.Update(ctx, form); err != nil {
		return fmt.Errorf("failed to disable form: %w", err)
	}

	s.audit(ctx, member, model.ActionDisableForm, form.ID.String(), form.Name, nil)
	return nil
}

// ConfigureSigners replaces a form's signer chain wholesale. Validation runs
// before any write, so a rejected list leaves the persisted chain untouched.
func (s *formService) ConfigureSigners(ctx context.Context, formID, actingUserID string, req ConfigureSignersRequest) ([]SignerResponse, error) {
	fID, err := uuid.Parse(formID)
	if err != nil {
		return nil, fmt.Errorf("invalid form id: %w", err)
	}
	form, err := s.formRepo.FindByID(ctx, fID)
	if err != nil {
		return nil, fmt.Errorf("form not found: %w", err)
	}
	member, err := s.requireManager(ctx, form.TeamID, actingUserID)
	if err != nil {
		return nil, err
	}

	if len(req.Signers) == 0 {
		return nil, ErrEmptySignerList
	}

	hasPrimary := false
	seen := map[string]bool{}
	signers := make([]model.Signer, 0, len(req.Signers))
	for _, input := range req.Signers {
		memberID, err := uuid.Parse(input.TeamMemberID)
		if err != nil {
			return nil, fmt.Errorf("invalid team member id '%s': %w", input.TeamMemberID, err)
		}
		if seen[input.TeamMemberID] {
			return nil, ErrDuplicateSigner
		}
		seen[input.TeamMemberID] = true

		signerMember, err := s.teamRepo.FindMemberByID(ctx, memberID)
		if err != nil || signerMember.TeamID != form.TeamID || signerMember.IsDisabled {
			return nil, ErrSignerNotInTeam
		}

		if input.IsPrimary {
			hasPrimary = true
		}
		action := input.Action
		if action == "" {
			action = "Approved"
		}
		signers = append(signers, model.Signer{
			TeamMemberID: memberID,
			Order:        input.Order,
			IsPrimary:    input.IsPrimary,
			Action:       action,
		})
	}

	if !hasPrimary {
		return nil, ErrNoPrimarySigner
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.formRepo.ReplaceSigners(txCtx, fID, signers); err != nil {
			return fmt.Errorf("failed to save signer chain: %w", err)
		}
		s.audit(txCtx, member, model.ActionConfigureSigners, fID.String(), form.Name, map[string]interface{}{
			"signer_count": len(signers),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.ListSigners(ctx, formID)
}

func (s *formService) ListSigners(ctx context.Context, formID string) ([]SignerResponse, error) {
	fID, err := uuid.Parse(formID)
	if err != nil {
		return nil, fmt.Errorf("invalid form id: %w", err)
	}
	signers, err := s.formRepo.ListActiveSigners(ctx, fID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch signers: %w", err)
	}

	result := make([]SignerResponse, 0, len(signers))
	for _, signer := range signers {
		resp := SignerResponse{
			ID:           signer.ID.String(),
			TeamMemberID: signer.TeamMemberID.String(),
			Order:        signer.Order,
			IsPrimary:    signer.IsPrimary,
			Action:       signer.Action,
		}
		if signer.TeamMember != nil && signer.TeamMember.User != nil {
			resp.Username = signer.TeamMember.User.Username
		}
		result = append(result, resp)
	}
	return result, nil
}

// requireManager resolves the acting user to an active team member allowed
// to manage forms (owner or admin).
func (s *formService) requireManager(ctx context.Context, teamID uuid.UUID, actingUserID string) (*model.TeamMember, error) {
	userID, err := uuid.Parse(actingUserID)
	if err != nil {
		return nil, fmt.Errorf("invalid user id: %w", err)
	}
	member, err := s.teamRepo.FindMemberByUser(ctx, teamID, userID)
	if err != nil {
		return nil, ErrNotAllowedToManage
	}
	if member.Role != model.TeamRoleOwner && member.Role != model.TeamRoleAdmin {
		return nil, ErrNotAllowedToManage
	}
	return member, nil
}

func (s *formService) audit(ctx context.Context, member *model.TeamMember, action, entityID, entityName string, details map[string]interface{}) {
	payload, _ := json.Marshal(details)
	entry := model.AuditLog{
		UserID:     &member.UserID,
		TeamID:     &member.TeamID,
		Action:     action,
		EntityID:   entityID,
		EntityName: entityName,
		Details:    string(payload),
		CreatedAt:  time.Now(),
	}
	if err := s.auditRepo.Log(ctx, &entry); err != nil {
		// Audit failure must not fail the user action outside a tx
		log.Printf("failed to write audit log: %v", err)
	}
}

func toFormResponse(form model.Form) FormResponse {
	resp := FormResponse{
		ID:          form.ID.String(),
		TeamID:      form.TeamID.String(),
		Name:        form.Name,
		Description: form.Description,
		IsHidden:    form.IsHidden,
		CreatedAt:   form.CreatedAt.Format(time.RFC3339),
	}
	if form.CreatedBy != nil {
		resp.CreatedBy = form.CreatedBy.String()
	}
	if form.Creator != nil && form.Creator.User != nil {
		resp.CreatorName = form.Creator.User.Username
	}
	return resp
}
