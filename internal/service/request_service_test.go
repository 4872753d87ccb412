package service

import (
	"context"
	"testing"

	"formsly/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type requestFixture struct {
	svc          RequestService
	requestRepo  *fakeRequestRepo
	decisionRepo *fakeDecisionRepo
	formRepo     *fakeFormRepo
	teamRepo     *fakeTeamRepo
	notifRepo    *fakeNotificationRepo
	audit        *fakeAuditRepo
	publisher    *fakePublisher

	teamID    uuid.UUID
	formID    uuid.UUID
	requester *model.TeamMember
	signers   []*model.Signer
}

// newRequestFixture builds a team with a requester plus n signer members and
// a form whose active chain contains those signers in order.
func newRequestFixture(t *testing.T, signerCount int) *requestFixture {
	t.Helper()

	teamRepo := newFakeTeamRepo()
	formRepo := newFakeFormRepo()
	requestRepo := newFakeRequestRepo()
	decisionRepo := newFakeDecisionRepo()
	notifRepo := &fakeNotificationRepo{}
	audit := &fakeAuditRepo{}
	publisher := &fakePublisher{}

	svc := NewRequestService(requestRepo, decisionRepo, formRepo, teamRepo, notifRepo, audit, &fakeTxManager{}, publisher)

	teamID := uuid.New()
	requester := &model.TeamMember{
		ID:     uuid.New(),
		TeamID: teamID,
		UserID: uuid.New(),
		Role:   model.TeamRoleMember,
	}
	require.NoError(t, teamRepo.AddMember(context.Background(), requester))

	form := &model.Form{TeamID: teamID, Name: "Requisition"}
	require.NoError(t, formRepo.Create(context.Background(), form))

	signers := []*model.Signer{}
	for i := 0; i < signerCount; i++ {
		member := &model.TeamMember{
			ID:     uuid.New(),
			TeamID: teamID,
			UserID: uuid.New(),
			Role:   model.TeamRoleApprover,
		}
		require.NoError(t, teamRepo.AddMember(context.Background(), member))

		signer := formRepo.addSigner(model.Signer{
			FormID:       form.ID,
			TeamMemberID: member.ID,
			TeamMember:   member,
			Order:        i + 1,
			IsPrimary:    i == 0,
			Action:       "Approved",
		})
		decisionRepo.signers[signer.ID] = signer
		signers = append(signers, signer)
	}

	return &requestFixture{
		svc:          svc,
		requestRepo:  requestRepo,
		decisionRepo: decisionRepo,
		formRepo:     formRepo,
		teamRepo:     teamRepo,
		notifRepo:    notifRepo,
		audit:        audit,
		publisher:    publisher,
		teamID:       teamID,
		formID:       form.ID,
		requester:    requester,
		signers:      signers,
	}
}

// submit files a request and hydrates the stored row's Requester the way the
// gorm preload would.
func (fx *requestFixture) submit(t *testing.T) *RequestDetailResponse {
	t.Helper()
	detail, err := fx.svc.SubmitRequest(context.Background(), fx.teamID.String(), fx.requester.UserID.String(), SubmitRequestDTO{
		FormID: fx.formID.String(),
		Title:  "Office chairs",
		Amount: "1250.50",
	})
	require.NoError(t, err)

	id := uuid.MustParse(detail.ID)
	fx.requestRepo.requests[id].Requester = fx.requester
	return detail
}

func TestSubmitRequestInstantiatesOneDecisionPerSigner(t *testing.T) {
	fx := newRequestFixture(t, 3)

	detail := fx.submit(t)

	assert.Equal(t, model.StatusPending, detail.Status)
	assert.Equal(t, "1250.5", detail.Amount)
	require.Len(t, detail.Decisions, 3)
	for i, decision := range detail.Decisions {
		assert.Equal(t, model.StatusPending, decision.Status)
		assert.Equal(t, i+1, decision.Order)
	}

	// Every signer got an in-app notification
	assert.Len(t, fx.notifRepo.notifications, 3)
	assert.Equal(t, model.ActionSubmitRequest, fx.audit.lastAction())

	// Feed events: one request topic plus one per signer user
	assert.Len(t, fx.publisher.events, 4)
	assert.Equal(t, "request:"+detail.ID, fx.publisher.events[0].Topic)
}

func TestSubmitRequestRequiresSignerChain(t *testing.T) {
	fx := newRequestFixture(t, 0)

	_, err := fx.svc.SubmitRequest(context.Background(), fx.teamID.String(), fx.requester.UserID.String(), SubmitRequestDTO{
		FormID: fx.formID.String(),
		Title:  "Office chairs",
	})
	assert.ErrorIs(t, err, ErrFormHasNoSigners)
}

func TestSubmitRequestRequiresTeamMembership(t *testing.T) {
	fx := newRequestFixture(t, 1)

	_, err := fx.svc.SubmitRequest(context.Background(), fx.teamID.String(), uuid.New().String(), SubmitRequestDTO{
		FormID: fx.formID.String(),
		Title:  "Office chairs",
	})
	assert.ErrorIs(t, err, ErrNotTeamMember)
}

func TestRecordDecisionRejectsInvalidStatus(t *testing.T) {
	fx := newRequestFixture(t, 1)
	detail := fx.submit(t)

	_, err := fx.svc.RecordDecision(context.Background(), detail.Decisions[0].ID, fx.signers[0].TeamMember.UserID.String(), model.StatusCanceled)
	assert.ErrorIs(t, err, ErrInvalidDecision)
}

func TestRecordDecisionRequiresAssignedSigner(t *testing.T) {
	fx := newRequestFixture(t, 2)
	detail := fx.submit(t)

	// Signer 2 tries to act on signer 1's decision instance
	_, err := fx.svc.RecordDecision(context.Background(), detail.Decisions[0].ID, fx.signers[1].TeamMember.UserID.String(), model.StatusApproved)
	assert.ErrorIs(t, err, ErrNotAssignedSigner)
}

func TestRecordDecisionKeepsRequestPendingUntilAllApprove(t *testing.T) {
	fx := newRequestFixture(t, 2)
	detail := fx.submit(t)

	updated, err := fx.svc.RecordDecision(context.Background(), detail.Decisions[0].ID, fx.signers[0].TeamMember.UserID.String(), model.StatusApproved)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, updated.Status)

	updated, err = fx.svc.RecordDecision(context.Background(), detail.Decisions[1].ID, fx.signers[1].TeamMember.UserID.String(), model.StatusApproved)
	require.NoError(t, err)
	assert.Equal(t, model.StatusApproved, updated.Status)
}

func TestRecordDecisionSingleRejectionRejectsRequest(t *testing.T) {
	fx := newRequestFixture(t, 3)
	detail := fx.submit(t)

	_, err := fx.svc.RecordDecision(context.Background(), detail.Decisions[0].ID, fx.signers[0].TeamMember.UserID.String(), model.StatusApproved)
	require.NoError(t, err)

	updated, err := fx.svc.RecordDecision(context.Background(), detail.Decisions[1].ID, fx.signers[1].TeamMember.UserID.String(), model.StatusRejected)
	require.NoError(t, err)
	assert.Equal(t, model.StatusRejected, updated.Status)

	// Requester was told about the rejection
	last := fx.notifRepo.notifications[len(fx.notifRepo.notifications)-1]
	assert.Equal(t, fx.requester.UserID, last.UserID)
	assert.Equal(t, model.NotificationTypeRequestRejected, last.Type)
}

func TestRecordDecisionIsLastWriteWins(t *testing.T) {
	fx := newRequestFixture(t, 1)
	detail := fx.submit(t)
	actor := fx.signers[0].TeamMember.UserID.String()

	updated, err := fx.svc.RecordDecision(context.Background(), detail.Decisions[0].ID, actor, model.StatusApproved)
	require.NoError(t, err)
	assert.Equal(t, model.StatusApproved, updated.Status)

	// The signer changes their mind; the row is rewritten, not duplicated
	updated, err = fx.svc.RecordDecision(context.Background(), detail.Decisions[0].ID, actor, model.StatusRejected)
	require.NoError(t, err)
	assert.Equal(t, model.StatusRejected, updated.Status)
	require.Len(t, updated.Decisions, 1)
}

func TestRecordDecisionBlockedOnCanceledRequest(t *testing.T) {
	fx := newRequestFixture(t, 1)
	detail := fx.submit(t)

	require.NoError(t, fx.svc.CancelRequest(context.Background(), detail.ID, fx.requester.UserID.String()))

	_, err := fx.svc.RecordDecision(context.Background(), detail.Decisions[0].ID, fx.signers[0].TeamMember.UserID.String(), model.StatusApproved)
	assert.ErrorIs(t, err, ErrRequestFinalized)
}

func TestCancelRequestRequesterOnly(t *testing.T) {
	fx := newRequestFixture(t, 1)
	detail := fx.submit(t)

	err := fx.svc.CancelRequest(context.Background(), detail.ID, fx.signers[0].TeamMember.UserID.String())
	assert.ErrorIs(t, err, ErrNotRequestOwner)
}

func TestCancelRequestCancelsOpenDecisions(t *testing.T) {
	fx := newRequestFixture(t, 2)
	detail := fx.submit(t)

	// One signer already approved; their row must keep its status
	_, err := fx.svc.RecordDecision(context.Background(), detail.Decisions[0].ID, fx.signers[0].TeamMember.UserID.String(), model.StatusApproved)
	require.NoError(t, err)

	require.NoError(t, fx.svc.CancelRequest(context.Background(), detail.ID, fx.requester.UserID.String()))

	after, err := fx.svc.GetRequest(context.Background(), detail.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCanceled, after.Status)
	assert.Equal(t, model.StatusApproved, after.Decisions[0].Status)
	assert.Equal(t, model.StatusCanceled, after.Decisions[1].Status)
}

func TestCancelRequestOnlyWhilePending(t *testing.T) {
	fx := newRequestFixture(t, 1)
	detail := fx.submit(t)

	_, err := fx.svc.RecordDecision(context.Background(), detail.Decisions[0].ID, fx.signers[0].TeamMember.UserID.String(), model.StatusApproved)
	require.NoError(t, err)

	err = fx.svc.CancelRequest(context.Background(), detail.ID, fx.requester.UserID.String())
	assert.ErrorIs(t, err, ErrRequestNotPending)
}

func TestListRequestsSignalsExhaustion(t *testing.T) {
	fx := newRequestFixture(t, 1)
	fx.submit(t)
	fx.submit(t)

	page, err := fx.svc.ListRequests(context.Background(), fx.teamID.String(), RequestListFilter{Page: 1, Limit: 5})
	require.NoError(t, err)
	assert.Len(t, page.Rows, 2)
	assert.Equal(t, int64(2), page.TotalCount)
	assert.True(t, page.IsMax)

	page, err = fx.svc.ListRequests(context.Background(), fx.teamID.String(), RequestListFilter{Page: 1, Limit: 2})
	require.NoError(t, err)
	assert.False(t, page.IsMax)
}
