package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"formsly/internal/model"
	"formsly/internal/query"
	"formsly/internal/repository"
	"formsly/internal/workflow"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrNotAssignedSigner  = errors.New("acting user is not the assigned signer for this decision")
	ErrInvalidDecision    = errors.New("decision status must be APPROVED or REJECTED")
	ErrRequestFinalized   = errors.New("request is canceled and accepts no further decisions")
	ErrNotRequestOwner    = errors.New("only the requester may cancel this request")
	ErrRequestNotPending  = errors.New("only pending requests can be canceled")
	ErrNotTeamMember      = errors.New("acting user is not an active member of this team")
	ErrRequestHasNoSigner = ErrFormHasNoSigners
)

// --- DTOs ---

type SubmitRequestDTO struct {
	FormID       string `json:"form_id" binding:"required"`
	Title        string `json:"title" binding:"required"`
	ResponseData string `json:"response_data"` // JSON snapshot of the filled form
	Amount       string `json:"amount"`        // Optional requisition total
}

type DecisionDTO struct {
	Status string `json:"status" binding:"required,oneof=APPROVED REJECTED"`
}

// RequestListFilter carries the spreadsheet view's query parameters. Every
// field is optional; multi-select fields OR within themselves and AND with
// the rest.
type RequestListFilter struct {
	Statuses      []string
	FormIDs       []string
	RequesterIDs  []string
	Search        string
	DateFrom      *time.Time
	DateTo        *time.Time
	Page          int
	Limit         int
	SortColumn    string
	SortDirection string
}

type RequestResponse struct {
	ID                string  `json:"id"`
	FormID            string  `json:"form_id"`
	FormName          string  `json:"form_name,omitempty"`
	TeamID            string  `json:"team_id"`
	Title             string  `json:"title"`
	Status            string  `json:"status"`
	RequestedBy       *string `json:"requested_by"`
	RequesterName     string  `json:"requester_name,omitempty"`
	ResponseData      string  `json:"response_data,omitempty"`
	Amount            string  `json:"amount"`
	StatusDateUpdated *string `json:"status_date_updated"`
	CreatedAt         string  `json:"created_at"`
}

type DecisionResponse struct {
	ID                string `json:"id"`
	RequestID         string `json:"request_id"`
	SignerID          string `json:"signer_id"`
	TeamMemberID      string `json:"team_member_id"`
	SignerName        string `json:"signer_name,omitempty"`
	Order             int    `json:"order"`
	IsPrimary         bool   `json:"is_primary"`
	Action            string `json:"action"`
	Status            string `json:"status"`
	StatusDateUpdated string `json:"status_date_updated"`
}

type RequestDetailResponse struct {
	RequestResponse
	Decisions []DecisionResponse `json:"decisions"`
}

// RequestPage is one fetched page of the requests view. IsMax signals
// load-more clients that the dataset is exhausted.
type RequestPage struct {
	Rows       []RequestResponse `json:"rows"`
	TotalCount int64             `json:"total_count"`
	Page       int               `json:"page"`
	Limit      int               `json:"limit"`
	IsMax      bool              `json:"is_max"`
}

// --- Interface ---

type RequestService interface {
	SubmitRequest(ctx context.Context, teamID, actingUserID string, req SubmitRequestDTO) (*RequestDetailResponse, error)
	ListRequests(ctx context.Context, teamID string, filter RequestListFilter) (*RequestPage, error)
	GetRequest(ctx context.Context, id string) (*RequestDetailResponse, error)
	RecordDecision(ctx context.Context, requestSignerID, actingUserID, status string) (*RequestDetailResponse, error)
	CancelRequest(ctx context.Context, requestID, actingUserID string) error
}

type requestService struct {
	requestRepo      repository.RequestRepository
	decisionRepo     repository.RequestSignerRepository
	formRepo         repository.FormRepository
	teamRepo         repository.TeamRepository
	notificationRepo repository.NotificationRepository
	auditRepo        repository.AuditRepository
	txManager        repository.TransactionManager
	publisher        EventPublisher
}

func NewRequestService(
	requestRepo repository.RequestRepository,
	decisionRepo repository.RequestSignerRepository,
	formRepo repository.FormRepository,
	teamRepo repository.TeamRepository,
	notificationRepo repository.NotificationRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	publisher EventPublisher,
) RequestService {
	if publisher == nil {
		publisher = NoopPublisher()
	}
	return &requestService{
		requestRepo:      requestRepo,
		decisionRepo:     decisionRepo,
		formRepo:         formRepo,
		teamRepo:         teamRepo,
		notificationRepo: notificationRepo,
		auditRepo:        auditRepo,
		txManager:        txManager,
		publisher:        publisher,
	}
}

// --- Implementation ---

// SubmitRequest creates the request and instantiates one PENDING decision row
// per active signer in a single transaction, then notifies every signer.
func (s *requestService) SubmitRequest(ctx context.Context, teamID, actingUserID string, req SubmitRequestDTO) (*RequestDetailResponse, error) {
	tID, err := uuid.Parse(teamID)
	if err != nil {
		return nil, fmt.Errorf("invalid team id: %w", err)
	}
	userID, err := uuid.Parse(actingUserID)
	if err != nil {
		return nil, fmt.Errorf("invalid user id: %w", err)
	}
	formID, err := uuid.Parse(req.FormID)
	if err != nil {
		return nil, fmt.Errorf("invalid form id: %w", err)
	}

	member, err := s.teamRepo.FindMemberByUser(ctx, tID, userID)
	if err != nil {
		return nil, ErrNotTeamMember
	}

	form, err := s.formRepo.FindByID(ctx, formID)
	if err != nil {
		return nil, fmt.Errorf("form not found: %w", err)
	}
	if form.TeamID != tID || form.IsHidden {
		return nil, fmt.Errorf("form is not available for this team")
	}

	signers, err := s.formRepo.ListActiveSigners(ctx, formID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch signer chain: %w", err)
	}
	if len(signers) == 0 {
		return nil, ErrRequestHasNoSigner
	}

	amount := decimal.Zero
	if req.Amount != "" {
		if amount, err = decimal.NewFromString(req.Amount); err != nil {
			return nil, fmt.Errorf("invalid amount: %w", err)
		}
	}
	responseData := req.ResponseData
	if responseData == "" {
		responseData = "{}"
	}

	request := model.Request{
		FormID:       formID,
		TeamID:       tID,
		Title:        req.Title,
		Status:       model.StatusPending,
		RequestedBy:  &member.ID,
		ResponseData: responseData,
		Amount:       amount,
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.requestRepo.Create(txCtx, &request); err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}

		now := time.Now()
		decisions := make([]model.RequestSigner, 0, len(signers))
		for _, signer := range signers {
			decisions = append(decisions, model.RequestSigner{
				RequestID:         request.ID,
				SignerID:          signer.ID,
				Status:            model.StatusPending,
				StatusDateUpdated: now,
			})
		}
		if err := s.decisionRepo.CreateBatch(txCtx, decisions); err != nil {
			return fmt.Errorf("failed to instantiate decisions: %w", err)
		}

		for _, signer := range signers {
			if signer.TeamMember == nil {
				continue
			}
			notification := model.Notification{
				UserID:      signer.TeamMember.UserID,
				TeamID:      &tID,
				Type:        model.NotificationTypeRequestSubmitted,
				Title:       "Request awaiting your signature",
				Content:     fmt.Sprintf("%q requires your %s decision", request.Title, signer.Action),
				RedirectURL: "/requests/" + request.ID.String(),
			}
			if err := s.notificationRepo.Create(txCtx, &notification); err != nil {
				return fmt.Errorf("failed to create signer notification: %w", err)
			}
		}

		return s.auditTx(txCtx, member, model.ActionSubmitRequest, request.ID.String(), request.Title, map[string]interface{}{
			"form_id":      formID.String(),
			"signer_count": len(signers),
		})
	})
	if err != nil {
		return nil, err
	}

	s.publisher.Publish("request:"+request.ID.String(), model.NotificationTypeRequestSubmitted, map[string]interface{}{
		"request_id": request.ID.String(),
		"status":     request.Status,
	})
	for _, signer := range signers {
		if signer.TeamMember != nil {
			s.publisher.Publish("user:"+signer.TeamMember.UserID.String(), model.NotificationTypeRequestSubmitted, map[string]interface{}{
				"request_id": request.ID.String(),
			})
		}
	}

	return s.GetRequest(ctx, request.ID.String())
}

func (s *requestService) ListRequests(ctx context.Context, teamID string, filter RequestListFilter) (*RequestPage, error) {
	tID, err := uuid.Parse(teamID)
	if err != nil {
		return nil, fmt.Errorf("invalid team id: %w", err)
	}

	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = 20
	}

	f := query.Filter{}
	if len(filter.Statuses) > 0 {
		f.Conditions = append(f.Conditions, query.In("status", toAnySlice(filter.Statuses)...))
	}
	if len(filter.FormIDs) > 0 {
		ids, err := parseUUIDs(filter.FormIDs)
		if err != nil {
			return nil, fmt.Errorf("invalid form filter: %w", err)
		}
		f.Conditions = append(f.Conditions, query.In("form_id", ids...))
	}
	if len(filter.RequesterIDs) > 0 {
		ids, err := parseUUIDs(filter.RequesterIDs)
		if err != nil {
			return nil, fmt.Errorf("invalid requester filter: %w", err)
		}
		f.Conditions = append(f.Conditions, query.In("requested_by", ids...))
	}
	if filter.Search != "" {
		f.Conditions = append(f.Conditions, query.Contains("title", filter.Search))
	}
	if filter.DateFrom != nil {
		f.Conditions = append(f.Conditions, query.Gte("created_at", *filter.DateFrom))
	}
	if filter.DateTo != nil {
		f.Conditions = append(f.Conditions, query.Lte("created_at", *filter.DateTo))
	}

	sort := query.Sort{Column: filter.SortColumn, Direction: query.Direction(filter.SortDirection)}

	requests, total, err := s.requestRepo.List(ctx, tID, f, sort, filter.Page, filter.Limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch requests: %w", err)
	}

	rows := make([]RequestResponse, 0, len(requests))
	for _, request := range requests {
		rows = append(rows, toRequestResponse(request, false))
	}

	return &RequestPage{
		Rows:       rows,
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		IsMax:      len(rows) < filter.Limit,
	}, nil
}

func (s *requestService) GetRequest(ctx context.Context, id string) (*RequestDetailResponse, error) {
	requestID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid request id: %w", err)
	}
	request, err := s.requestRepo.FindByID(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("request not found: %w", err)
	}
	decisions, err := s.decisionRepo.ListByRequest(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch decisions: %w", err)
	}

	detail := RequestDetailResponse{
		RequestResponse: toRequestResponse(*request, true),
		Decisions:       make([]DecisionResponse, 0, len(decisions)),
	}
	for _, decision := range decisions {
		detail.Decisions = append(detail.Decisions, toDecisionResponse(decision))
	}
	return &detail, nil
}

// RecordDecision updates exactly one decision row, recomputes the aggregate
// request status through the shared workflow function, and notifies the
// requester. Concurrent calls on the same row are last-write-wins.
func (s *requestService) RecordDecision(ctx context.Context, requestSignerID, actingUserID, status string) (*RequestDetailResponse, error) {
	if !workflow.ValidDecision(status) {
		return nil, ErrInvalidDecision
	}
	decisionID, err := uuid.Parse(requestSignerID)
	if err != nil {
		return nil, fmt.Errorf("invalid decision id: %w", err)
	}
	userID, err := uuid.Parse(actingUserID)
	if err != nil {
		return nil, fmt.Errorf("invalid user id: %w", err)
	}

	decision, err := s.decisionRepo.FindByID(ctx, decisionID)
	if err != nil {
		return nil, fmt.Errorf("decision not found: %w", err)
	}
	if decision.Signer == nil || decision.Signer.TeamMember == nil || decision.Signer.TeamMember.UserID != userID {
		return nil, ErrNotAssignedSigner
	}

	request, err := s.requestRepo.FindByID(ctx, decision.RequestID)
	if err != nil {
		return nil, fmt.Errorf("request not found: %w", err)
	}
	if request.Status == model.StatusCanceled {
		return nil, ErrRequestFinalized
	}

	var aggregate string
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.decisionRepo.UpdateStatus(txCtx, decisionID, status); err != nil {
			return fmt.Errorf("failed to record decision: %w", err)
		}

		decisions, err := s.decisionRepo.ListByRequest(txCtx, decision.RequestID)
		if err != nil {
			return fmt.Errorf("failed to fetch decisions: %w", err)
		}
		aggregate = workflow.AggregateStatus(decisions)

		if err := s.requestRepo.UpdateStatus(txCtx, decision.RequestID, aggregate); err != nil {
			return fmt.Errorf("failed to update request status: %w", err)
		}

		if request.Requester != nil {
			notificationType := model.NotificationTypeDecisionRecorded
			switch aggregate {
			case model.StatusApproved:
				notificationType = model.NotificationTypeRequestApproved
			case model.StatusRejected:
				notificationType = model.NotificationTypeRequestRejected
			}
			notification := model.Notification{
				UserID:      request.Requester.UserID,
				TeamID:      &request.TeamID,
				Type:        notificationType,
				Title:       fmt.Sprintf("Request %s", aggregate),
				Content:     fmt.Sprintf("%q was marked %s by a signer", request.Title, status),
				RedirectURL: "/requests/" + request.ID.String(),
			}
			if err := s.notificationRepo.Create(txCtx, &notification); err != nil {
				return fmt.Errorf("failed to create requester notification: %w", err)
			}
		}

		return s.auditTx(txCtx, decision.Signer.TeamMember, model.ActionRecordDecision, decisionID.String(), request.Title, map[string]interface{}{
			"request_id": request.ID.String(),
			"status":     status,
			"aggregate":  aggregate,
		})
	})
	if err != nil {
		return nil, err
	}

	s.publisher.Publish("request:"+request.ID.String(), model.NotificationTypeDecisionRecorded, map[string]interface{}{
		"request_id":        request.ID.String(),
		"request_signer_id": decisionID.String(),
		"status":            status,
		"aggregate_status":  aggregate,
	})
	if request.Requester != nil {
		s.publisher.Publish("user:"+request.Requester.UserID.String(), model.NotificationTypeDecisionRecorded, map[string]interface{}{
			"request_id": request.ID.String(),
			"status":     aggregate,
		})
	}

	return s.GetRequest(ctx, request.ID.String())
}

// CancelRequest lets the requester withdraw a still-pending request. Every
// open decision row is marked CANCELED alongside the request itself.
func (s *requestService) CancelRequest(ctx context.Context, requestID, actingUserID string) error {
	rID, err := uuid.Parse(requestID)
	if err != nil {
		return fmt.Errorf("invalid request id: %w", err)
	}
	userID, err := uuid.Parse(actingUserID)
	if err != nil {
		return fmt.Errorf("invalid user id: %w", err)
	}

	request, err := s.requestRepo.FindByID(ctx, rID)
	if err != nil {
		return fmt.Errorf("request not found: %w", err)
	}
	if request.Requester == nil || request.Requester.UserID != userID {
		return ErrNotRequestOwner
	}
	if request.Status != model.StatusPending {
		return ErrRequestNotPending
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.decisionRepo.CancelPending(txCtx, rID); err != nil {
			return fmt.Errorf("failed to cancel decisions: %w", err)
		}
		if err := s.requestRepo.UpdateStatus(txCtx, rID, model.StatusCanceled); err != nil {
			return fmt.Errorf("failed to cancel request: %w", err)
		}
		return s.auditTx(txCtx, request.Requester, model.ActionCancelRequest, rID.String(), request.Title, nil)
	})
	if err != nil {
		return err
	}

	s.publisher.Publish("request:"+rID.String(), model.NotificationTypeRequestCanceled, map[string]interface{}{
		"request_id": rID.String(),
		"status":     model.StatusCanceled,
	})
	return nil
}

// --- Helpers ---

func (s *requestService) auditTx(ctx context.Context, member *model.TeamMember, action, entityID, entityName string, details map[string]interface{}) error {
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
		return fmt.Errorf("failed to write audit log: %w", err)
	}
	return nil
}

func toRequestResponse(request model.Request, includeData bool) RequestResponse {
	resp := RequestResponse{
		ID:        request.ID.String(),
		FormID:    request.FormID.String(),
		TeamID:    request.TeamID.String(),
		Title:     request.Title,
		Status:    request.Status,
		Amount:    request.Amount.String(),
		CreatedAt: request.CreatedAt.Format(time.RFC3339),
	}
	if includeData {
		resp.ResponseData = request.ResponseData
	}
	if request.Form != nil {
		resp.FormName = request.Form.Name
	}
	if request.RequestedBy != nil {
		id := request.RequestedBy.String()
		resp.RequestedBy = &id
	}
	if request.Requester != nil && request.Requester.User != nil {
		resp.RequesterName = request.Requester.User.Username
	}
	if request.StatusDateUpdated != nil {
		updated := request.StatusDateUpdated.Format(time.RFC3339)
		resp.StatusDateUpdated = &updated
	}
	return resp
}

func toDecisionResponse(decision model.RequestSigner) DecisionResponse {
	resp := DecisionResponse{
		ID:                decision.ID.String(),
		RequestID:         decision.RequestID.String(),
		SignerID:          decision.SignerID.String(),
		Status:            decision.Status,
		StatusDateUpdated: decision.StatusDateUpdated.Format(time.RFC3339),
	}
	if decision.Signer != nil {
		resp.TeamMemberID = decision.Signer.TeamMemberID.String()
		resp.Order = decision.Signer.Order
		resp.IsPrimary = decision.Signer.IsPrimary
		resp.Action = decision.Signer.Action
		if decision.Signer.TeamMember != nil && decision.Signer.TeamMember.User != nil {
			resp.SignerName = decision.Signer.TeamMember.User.Username
		}
	}
	return resp
}

func parseUUIDs(values []string) ([]interface{}, error) {
	result := make([]interface{}, 0, len(values))
	for _, v := range values {
		id, err := uuid.Parse(v)
		if err != nil {
			return nil, fmt.Errorf("invalid uuid '%s': %w", v, err)
		}
		result = append(result, id)
	}
	return result, nil
}

func toAnySlice(values []string) []interface{} {
	result := make([]interface{}, 0, len(values))
	for _, v := range values {
		result = append(result, v)
	}
	return result
}
