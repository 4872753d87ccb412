package repository

import (
	"context"
	"time"

	"formsly/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RequestSignerRepository interface {
	CreateBatch(ctx context.Context, decisions []model.RequestSigner) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.RequestSigner, error)
	ListByRequest(ctx context.Context, requestID uuid.UUID) ([]model.RequestSigner, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
	CancelPending(ctx context.Context, requestID uuid.UUID) error
}

type requestSignerRepository struct {
	db *gorm.DB
}

func NewRequestSignerRepository(db *gorm.DB) RequestSignerRepository {
	return &requestSignerRepository{db: db}
}

// CreateBatch inserts one decision row per signer. The composite unique index
// on (request_id, signer_id) backs the exactly-once guarantee; a conflicting
// insert is ignored rather than duplicated.
func (r *requestSignerRepository) CreateBatch(ctx context.Context, decisions []model.RequestSigner) error {
	if len(decisions) == 0 {
		return nil
	}
	return GetDB(ctx, r.db).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "request_id"}, {Name: "signer_id"}},
			DoNothing: true,
		}).
		Create(&decisions).Error
}

func (r *requestSignerRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.RequestSigner, error) {
	var decision model.RequestSigner
	if err := GetDB(ctx, r.db).
		Preload("Signer").
		Preload("Signer.TeamMember").
		First(&decision, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &decision, nil
}

func (r *requestSignerRepository) ListByRequest(ctx context.Context, requestID uuid.UUID) ([]model.RequestSigner, error) {
	var decisions []model.RequestSigner
	if err := GetDB(ctx, r.db).
		Preload("Signer").
		Preload("Signer.TeamMember").
		Preload("Signer.TeamMember.User").
		Joins("JOIN signers ON signers.id = request_signers.signer_id").
		Where("request_signers.request_id = ?", requestID).
		Order(`signers."order" asc, request_signers.created_at asc`).
		Find(&decisions).Error; err != nil {
		return nil, err
	}
	return decisions, nil
}

// UpdateStatus mutates exactly one decision row. Concurrent calls on the same
// row resolve last-write-wins at the store; other rows are never touched.
func (r *requestSignerRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	return GetDB(ctx, r.db).Model(&model.RequestSigner{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":              status,
			"status_date_updated": time.Now(),
		}).Error
}

// CancelPending marks every still-pending decision of a request CANCELED,
// used when the requester withdraws.
func (r *requestSignerRepository) CancelPending(ctx context.Context, requestID uuid.UUID) error {
	return GetDB(ctx, r.db).Model(&model.RequestSigner{}).
		Where("request_id = ? AND status = ?", requestID, model.StatusPending).
		Updates(map[string]interface{}{
			"status":              model.StatusCanceled,
			"status_date_updated": time.Now(),
		}).Error
}
