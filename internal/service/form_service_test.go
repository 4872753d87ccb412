package service

import (
	"context"
	"testing"

	"formsly/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type formFixture struct {
	svc      FormService
	formRepo *fakeFormRepo
	teamRepo *fakeTeamRepo
	audit    *fakeAuditRepo
	teamID   uuid.UUID
	formID   uuid.UUID
	owner    *model.TeamMember
	members  []*model.TeamMember
}

// newFormFixture builds a team with one owner, n extra APPROVER members and
// one form owned by the team.
func newFormFixture(t *testing.T, extraMembers int) *formFixture {
	t.Helper()

	teamRepo := newFakeTeamRepo()
	formRepo := newFakeFormRepo()
	audit := &fakeAuditRepo{}
	svc := NewFormService(formRepo, teamRepo, audit, &fakeTxManager{})

	teamID := uuid.New()
	owner := &model.TeamMember{
		ID:     uuid.New(),
		TeamID: teamID,
		UserID: uuid.New(),
		Role:   model.TeamRoleOwner,
	}
	require.NoError(t, teamRepo.AddMember(context.Background(), owner))

	members := []*model.TeamMember{}
	for i := 0; i < extraMembers; i++ {
		member := &model.TeamMember{
			ID:     uuid.New(),
			TeamID: teamID,
			UserID: uuid.New(),
			Role:   model.TeamRoleApprover,
		}
		require.NoError(t, teamRepo.AddMember(context.Background(), member))
		members = append(members, member)
	}

	form := &model.Form{TeamID: teamID, Name: "Requisition"}
	require.NoError(t, formRepo.Create(context.Background(), form))

	return &formFixture{
		svc:      svc,
		formRepo: formRepo,
		teamRepo: teamRepo,
		audit:    audit,
		teamID:   teamID,
		formID:   form.ID,
		owner:    owner,
		members:  members,
	}
}

func TestConfigureSignersRejectsEmptyList(t *testing.T) {
	fx := newFormFixture(t, 0)

	_, err := fx.svc.ConfigureSigners(context.Background(), fx.formID.String(), fx.owner.UserID.String(), ConfigureSignersRequest{})
	assert.ErrorIs(t, err, ErrEmptySignerList)
}

func TestConfigureSignersRequiresPrimary(t *testing.T) {
	fx := newFormFixture(t, 2)

	// Seed an existing chain so we can prove a rejected save leaves it alone
	existing := fx.formRepo.addSigner(model.Signer{
		FormID:       fx.formID,
		TeamMemberID: fx.members[0].ID,
		Order:        1,
		IsPrimary:    true,
	})

	req := ConfigureSignersRequest{Signers: []SignerInput{
		{TeamMemberID: fx.members[0].ID.String(), Order: 1},
		{TeamMemberID: fx.members[1].ID.String(), Order: 2},
	}}
	_, err := fx.svc.ConfigureSigners(context.Background(), fx.formID.String(), fx.owner.UserID.String(), req)
	assert.ErrorIs(t, err, ErrNoPrimarySigner)

	// The persisted chain is untouched
	signers, listErr := fx.svc.ListSigners(context.Background(), fx.formID.String())
	require.NoError(t, listErr)
	require.Len(t, signers, 1)
	assert.Equal(t, existing.ID.String(), signers[0].ID)
}

func TestConfigureSignersRejectsDuplicateMember(t *testing.T) {
	fx := newFormFixture(t, 1)

	req := ConfigureSignersRequest{Signers: []SignerInput{
		{TeamMemberID: fx.members[0].ID.String(), Order: 1, IsPrimary: true},
		{TeamMemberID: fx.members[0].ID.String(), Order: 2},
	}}
	_, err := fx.svc.ConfigureSigners(context.Background(), fx.formID.String(), fx.owner.UserID.String(), req)
	assert.ErrorIs(t, err, ErrDuplicateSigner)
}

func TestConfigureSignersRejectsMemberOutsideTeam(t *testing.T) {
	fx := newFormFixture(t, 0)

	outsider := &model.TeamMember{
		ID:     uuid.New(),
		TeamID: uuid.New(), // different team
		UserID: uuid.New(),
		Role:   model.TeamRoleApprover,
	}
	require.NoError(t, fx.teamRepo.AddMember(context.Background(), outsider))

	req := ConfigureSignersRequest{Signers: []SignerInput{
		{TeamMemberID: outsider.ID.String(), Order: 1, IsPrimary: true},
	}}
	_, err := fx.svc.ConfigureSigners(context.Background(), fx.formID.String(), fx.owner.UserID.String(), req)
	assert.ErrorIs(t, err, ErrSignerNotInTeam)
}

func TestConfigureSignersRequiresManagerRole(t *testing.T) {
	fx := newFormFixture(t, 1)

	// APPROVER may sign but not manage the chain
	req := ConfigureSignersRequest{Signers: []SignerInput{
		{TeamMemberID: fx.members[0].ID.String(), Order: 1, IsPrimary: true},
	}}
	_, err := fx.svc.ConfigureSigners(context.Background(), fx.formID.String(), fx.members[0].UserID.String(), req)
	assert.ErrorIs(t, err, ErrNotAllowedToManage)
}

func TestConfigureSignersReplacesChainWholesale(t *testing.T) {
	fx := newFormFixture(t, 3)

	old := fx.formRepo.addSigner(model.Signer{
		FormID:       fx.formID,
		TeamMemberID: fx.members[0].ID,
		Order:        1,
		IsPrimary:    true,
	})

	req := ConfigureSignersRequest{Signers: []SignerInput{
		{TeamMemberID: fx.members[1].ID.String(), Order: 2, Action: "Noted"},
		{TeamMemberID: fx.members[2].ID.String(), Order: 1, IsPrimary: true},
	}}
	signers, err := fx.svc.ConfigureSigners(context.Background(), fx.formID.String(), fx.owner.UserID.String(), req)
	require.NoError(t, err)

	// New chain only, returned in order
	require.Len(t, signers, 2)
	assert.Equal(t, fx.members[2].ID.String(), signers[0].TeamMemberID)
	assert.True(t, signers[0].IsPrimary)
	assert.Equal(t, "Approved", signers[0].Action) // default action label
	assert.Equal(t, fx.members[1].ID.String(), signers[1].TeamMemberID)
	assert.Equal(t, "Noted", signers[1].Action)

	// Old row is soft-disabled, not gone
	assert.True(t, old.IsDisabled)
	assert.Equal(t, 2, fx.formRepo.activeSignerCount(fx.formID))

	assert.Equal(t, model.ActionConfigureSigners, fx.audit.lastAction())
}

func TestCreateFormRecordsCreatorAndAudit(t *testing.T) {
	fx := newFormFixture(t, 0)

	form, err := fx.svc.CreateForm(context.Background(), fx.teamID.String(), fx.owner.UserID.String(), CreateFormRequest{Name: "Asset Checkout"})
	require.NoError(t, err)
	assert.Equal(t, "Asset Checkout", form.Name)
	assert.Equal(t, fx.owner.ID.String(), form.CreatedBy)
	assert.Equal(t, model.ActionCreateForm, fx.audit.lastAction())
}

func TestDisableFormHidesItFromLookups(t *testing.T) {
	fx := newFormFixture(t, 0)

	require.NoError(t, fx.svc.DisableForm(context.Background(), fx.formID.String(), fx.owner.UserID.String()))

	_, err := fx.svc.GetForm(context.Background(), fx.formID.String())
	assert.Error(t, err)
}
