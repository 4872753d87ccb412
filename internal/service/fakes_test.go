package service

import (
	"context"
	"sort"
	"time"

	"formsly/internal/model"
	"formsly/internal/query"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// In-memory repository fakes. They honor the same contracts as the gorm
// implementations (soft-disable semantics, scoped single-row updates,
// conflict-ignoring batch inserts) so service behavior can be asserted
// without a database.

type fakeTxManager struct {
	calls int
}

func (m *fakeTxManager) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	m.calls++
	return fn(ctx)
}

// --- Teams ---

type fakeTeamRepo struct {
	teams   map[uuid.UUID]*model.Team
	members map[uuid.UUID]*model.TeamMember
}

func newFakeTeamRepo() *fakeTeamRepo {
	return &fakeTeamRepo{
		teams:   map[uuid.UUID]*model.Team{},
		members: map[uuid.UUID]*model.TeamMember{},
	}
}

func (r *fakeTeamRepo) Create(_ context.Context, team *model.Team) error {
	team.ID = uuid.New()
	r.teams[team.ID] = team
	return nil
}

func (r *fakeTeamRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Team, error) {
	team, ok := r.teams[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return team, nil
}

func (r *fakeTeamRepo) List(_ context.Context, _, _ int) ([]model.Team, int64, error) {
	out := make([]model.Team, 0, len(r.teams))
	for _, t := range r.teams {
		out = append(out, *t)
	}
	return out, int64(len(out)), nil
}

func (r *fakeTeamRepo) Update(_ context.Context, team *model.Team) error {
	r.teams[team.ID] = team
	return nil
}

func (r *fakeTeamRepo) AddMember(_ context.Context, member *model.TeamMember) error {
	if member.ID == uuid.Nil {
		member.ID = uuid.New()
	}
	r.members[member.ID] = member
	return nil
}

func (r *fakeTeamRepo) FindMemberByID(_ context.Context, id uuid.UUID) (*model.TeamMember, error) {
	member, ok := r.members[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return member, nil
}

func (r *fakeTeamRepo) FindMemberByUser(_ context.Context, teamID, userID uuid.UUID) (*model.TeamMember, error) {
	for _, member := range r.members {
		if member.TeamID == teamID && member.UserID == userID && !member.IsDisabled {
			return member, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeTeamRepo) ListMembers(_ context.Context, teamID uuid.UUID, _, _ int) ([]model.TeamMember, int64, error) {
	out := []model.TeamMember{}
	for _, member := range r.members {
		if member.TeamID == teamID && !member.IsDisabled {
			out = append(out, *member)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeTeamRepo) UpdateMember(_ context.Context, member *model.TeamMember) error {
	r.members[member.ID] = member
	return nil
}

// --- Forms and signers ---

type fakeFormRepo struct {
	forms   map[uuid.UUID]*model.Form
	signers []*model.Signer
}

func newFakeFormRepo() *fakeFormRepo {
	return &fakeFormRepo{forms: map[uuid.UUID]*model.Form{}}
}

func (r *fakeFormRepo) Create(_ context.Context, form *model.Form) error {
	form.ID = uuid.New()
	r.forms[form.ID] = form
	return nil
}

func (r *fakeFormRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Form, error) {
	form, ok := r.forms[id]
	if !ok || form.IsDisabled {
		return nil, gorm.ErrRecordNotFound
	}
	return form, nil
}

func (r *fakeFormRepo) List(_ context.Context, teamID uuid.UUID, _ query.Filter, _ query.Sort, _, _ int) ([]model.Form, int64, error) {
	out := []model.Form{}
	for _, form := range r.forms {
		if form.TeamID == teamID && !form.IsDisabled {
			out = append(out, *form)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeFormRepo) Update(_ context.Context, form *model.Form) error {
	r.forms[form.ID] = form
	return nil
}

func (r *fakeFormRepo) ListActiveSigners(_ context.Context, formID uuid.UUID) ([]model.Signer, error) {
	out := []model.Signer{}
	for _, signer := range r.signers {
		if signer.FormID == formID && !signer.IsDisabled {
			out = append(out, *signer)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out, nil
}

func (r *fakeFormRepo) ReplaceSigners(_ context.Context, formID uuid.UUID, signers []model.Signer) error {
	for _, existing := range r.signers {
		if existing.FormID == formID {
			existing.IsDisabled = true
		}
	}
	for i := range signers {
		s := signers[i]
		s.ID = uuid.New()
		s.FormID = formID
		s.IsDisabled = false
		r.signers = append(r.signers, &s)
	}
	return nil
}

// addSigner seeds an active signer row directly, bypassing validation.
func (r *fakeFormRepo) addSigner(s model.Signer) *model.Signer {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	stored := s
	r.signers = append(r.signers, &stored)
	return &stored
}

func (r *fakeFormRepo) activeSignerCount(formID uuid.UUID) int {
	n := 0
	for _, signer := range r.signers {
		if signer.FormID == formID && !signer.IsDisabled {
			n++
		}
	}
	return n
}

// --- Requests ---

type fakeRequestRepo struct {
	requests map[uuid.UUID]*model.Request
}

func newFakeRequestRepo() *fakeRequestRepo {
	return &fakeRequestRepo{requests: map[uuid.UUID]*model.Request{}}
}

func (r *fakeRequestRepo) Create(_ context.Context, request *model.Request) error {
	request.ID = uuid.New()
	r.requests[request.ID] = request
	return nil
}

func (r *fakeRequestRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Request, error) {
	request, ok := r.requests[id]
	if !ok || request.IsDisabled {
		return nil, gorm.ErrRecordNotFound
	}
	return request, nil
}

func (r *fakeRequestRepo) List(_ context.Context, teamID uuid.UUID, _ query.Filter, _ query.Sort, _, limit int) ([]model.Request, int64, error) {
	out := []model.Request{}
	for _, request := range r.requests {
		if request.TeamID == teamID && !request.IsDisabled {
			out = append(out, *request)
		}
	}
	total := int64(len(out))
	if len(out) > limit {
		out = out[:limit]
	}
	return out, total, nil
}

func (r *fakeRequestRepo) UpdateStatus(_ context.Context, id uuid.UUID, status string) error {
	request, ok := r.requests[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	now := time.Now()
	request.Status = status
	request.StatusDateUpdated = &now
	return nil
}

// --- Decision instances ---

type fakeDecisionRepo struct {
	decisions []*model.RequestSigner
	signers   map[uuid.UUID]*model.Signer // preload source for FindByID/ListByRequest
}

func newFakeDecisionRepo() *fakeDecisionRepo {
	return &fakeDecisionRepo{signers: map[uuid.UUID]*model.Signer{}}
}

func (r *fakeDecisionRepo) CreateBatch(_ context.Context, decisions []model.RequestSigner) error {
	for i := range decisions {
		d := decisions[i]
		if r.find(d.RequestID, d.SignerID) != nil {
			continue // unique (request_id, signer_id), conflicting insert ignored
		}
		d.ID = uuid.New()
		r.decisions = append(r.decisions, &d)
	}
	return nil
}

func (r *fakeDecisionRepo) FindByID(_ context.Context, id uuid.UUID) (*model.RequestSigner, error) {
	for _, d := range r.decisions {
		if d.ID == id {
			out := *d
			out.Signer = r.signers[d.SignerID]
			return &out, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeDecisionRepo) ListByRequest(_ context.Context, requestID uuid.UUID) ([]model.RequestSigner, error) {
	out := []model.RequestSigner{}
	for _, d := range r.decisions {
		if d.RequestID == requestID {
			row := *d
			row.Signer = r.signers[d.SignerID]
			out = append(out, row)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Signer != nil && out[j].Signer != nil {
			return out[i].Signer.Order < out[j].Signer.Order
		}
		return false
	})
	return out, nil
}

func (r *fakeDecisionRepo) UpdateStatus(_ context.Context, id uuid.UUID, status string) error {
	for _, d := range r.decisions {
		if d.ID == id {
			d.Status = status
			d.StatusDateUpdated = time.Now()
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *fakeDecisionRepo) CancelPending(_ context.Context, requestID uuid.UUID) error {
	for _, d := range r.decisions {
		if d.RequestID == requestID && d.Status == model.StatusPending {
			d.Status = model.StatusCanceled
			d.StatusDateUpdated = time.Now()
		}
	}
	return nil
}

func (r *fakeDecisionRepo) find(requestID, signerID uuid.UUID) *model.RequestSigner {
	for _, d := range r.decisions {
		if d.RequestID == requestID && d.SignerID == signerID {
			return d
		}
	}
	return nil
}

// --- Notifications ---

type fakeNotificationRepo struct {
	notifications []*model.Notification
}

func (r *fakeNotificationRepo) Create(_ context.Context, notification *model.Notification) error {
	notification.ID = uuid.New()
	r.notifications = append(r.notifications, notification)
	return nil
}

func (r *fakeNotificationRepo) List(_ context.Context, userID uuid.UUID, unreadOnly bool, _, _ int) ([]model.Notification, int64, error) {
	out := []model.Notification{}
	for _, n := range r.notifications {
		if n.UserID != userID {
			continue
		}
		if unreadOnly && n.IsRead {
			continue
		}
		out = append(out, *n)
	}
	return out, int64(len(out)), nil
}

func (r *fakeNotificationRepo) CountUnread(_ context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	for _, n := range r.notifications {
		if n.UserID == userID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (r *fakeNotificationRepo) MarkRead(_ context.Context, id, userID uuid.UUID) error {
	for _, n := range r.notifications {
		if n.ID == id && n.UserID == userID {
			n.IsRead = true
		}
	}
	return nil
}

func (r *fakeNotificationRepo) MarkAllRead(_ context.Context, userID uuid.UUID) error {
	for _, n := range r.notifications {
		if n.UserID == userID {
			n.IsRead = true
		}
	}
	return nil
}

// --- Audit ---

type fakeAuditRepo struct {
	entries []*model.AuditLog
}

func (r *fakeAuditRepo) Log(_ context.Context, entry *model.AuditLog) error {
	entry.ID = uuid.New()
	r.entries = append(r.entries, entry)
	return nil
}

func (r *fakeAuditRepo) List(_ context.Context, teamID uuid.UUID, _, _ int) ([]model.AuditLog, int64, error) {
	out := []model.AuditLog{}
	for _, e := range r.entries {
		if e.TeamID != nil && *e.TeamID == teamID {
			out = append(out, *e)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeAuditRepo) lastAction() string {
	if len(r.entries) == 0 {
		return ""
	}
	return r.entries[len(r.entries)-1].Action
}

// --- Preferences ---

type fakePreferenceRepo struct {
	prefs map[string]*model.ViewPreference
}

func newFakePreferenceRepo() *fakePreferenceRepo {
	return &fakePreferenceRepo{prefs: map[string]*model.ViewPreference{}}
}

func (r *fakePreferenceRepo) Get(_ context.Context, userID uuid.UUID, viewKey string) (*model.ViewPreference, error) {
	if pref, ok := r.prefs[userID.String()+"/"+viewKey]; ok {
		copied := *pref
		return &copied, nil
	}
	return &model.ViewPreference{
		UserID:        userID,
		ViewKey:       viewKey,
		HiddenColumns: "[]",
		FilterState:   "{}",
	}, nil
}

func (r *fakePreferenceRepo) Upsert(_ context.Context, pref *model.ViewPreference) error {
	copied := *pref
	r.prefs[pref.UserID.String()+"/"+pref.ViewKey] = &copied
	return nil
}

// --- Event capture ---

type capturedEvent struct {
	Topic string
	Type  string
}

type fakePublisher struct {
	events []capturedEvent
}

func (p *fakePublisher) Publish(topic, eventType string, _ any) {
	p.events = append(p.events, capturedEvent{Topic: topic, Type: eventType})
}
