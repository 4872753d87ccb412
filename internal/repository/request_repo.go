package repository

import (
	"context"
	"time"

	"formsly/internal/model"
	"formsly/internal/query"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// requestColumns whitelists the filterable/sortable columns of the requests
// spreadsheet view. Logical keys come from the client, physical columns go
// into the generated clause.
var requestColumns = map[string]string{
	"status":       "status",
	"form_id":      "form_id",
	"requested_by": "requested_by",
	"title":        "title",
	"amount":       "amount",
	"created_at":   "created_at",
}

type RequestRepository interface {
	Create(ctx context.Context, request *model.Request) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Request, error)
	List(ctx context.Context, teamID uuid.UUID, filter query.Filter, sort query.Sort, page, limit int) ([]model.Request, int64, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
}

type requestRepository struct {
	db *gorm.DB
}

func NewRequestRepository(db *gorm.DB) RequestRepository {
	return &requestRepository{db: db}
}

func (r *requestRepository) Create(ctx context.Context, request *model.Request) error {
	return GetDB(ctx, r.db).Create(request).Error
}

func (r *requestRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Request, error) {
	var request model.Request
	if err := GetDB(ctx, r.db).
		Preload("Form").
		Preload("Requester").Preload("Requester.User").
		First(&request, "id = ? AND is_disabled = ?", id, false).Error; err != nil {
		return nil, err
	}
	return &request, nil
}

func (r *requestRepository) List(ctx context.Context, teamID uuid.UUID, filter query.Filter, sort query.Sort, page, limit int) ([]model.Request, int64, error) {
	clause, args, err := filter.Build(requestColumns)
	if err != nil {
		return nil, 0, err
	}
	order, err := sort.OrderClause(requestColumns, "created_at desc")
	if err != nil {
		return nil, 0, err
	}

	db := GetDB(ctx, r.db)
	base := db.Model(&model.Request{}).Where("team_id = ? AND is_disabled = ?", teamID, false)
	if clause != "" {
		base = base.Where(clause, args...)
	}

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var requests []model.Request
	offset := (page - 1) * limit
	fetch := db.Preload("Form").Preload("Requester").Preload("Requester.User").
		Where("team_id = ? AND is_disabled = ?", teamID, false)
	if clause != "" {
		fetch = fetch.Where(clause, args...)
	}
	if err := fetch.Order(order).Offset(offset).Limit(limit).Find(&requests).Error; err != nil {
		return nil, 0, err
	}

	return requests, total, nil
}

// UpdateStatus writes the aggregate status as a scoped single-row update.
func (r *requestRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	now := time.Now()
	return GetDB(ctx, r.db).Model(&model.Request{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":              status,
			"status_date_updated": &now,
		}).Error
}
