package repository

import (
	"context"
	"errors"

	"formsly/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PreferenceRepository interface {
	Get(ctx context.Context, userID uuid.UUID, viewKey string) (*model.ViewPreference, error)
	Upsert(ctx context.Context, pref *model.ViewPreference) error
}

type preferenceRepository struct {
	db *gorm.DB
}

func NewPreferenceRepository(db *gorm.DB) PreferenceRepository {
	return &preferenceRepository{db: db}
}

// Get returns the stored preference, or an empty default when the user has
// never touched this view.
func (r *preferenceRepository) Get(ctx context.Context, userID uuid.UUID, viewKey string) (*model.ViewPreference, error) {
	var pref model.ViewPreference
	err := GetDB(ctx, r.db).First(&pref, "user_id = ? AND view_key = ?", userID, viewKey).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &model.ViewPreference{
			UserID:        userID,
			ViewKey:       viewKey,
			HiddenColumns: "[]",
			FilterState:   "{}",
		}, nil
	}
	if err != nil {
		return nil, err
	}
	return &pref, nil
}

func (r *preferenceRepository) Upsert(ctx context.Context, pref *model.ViewPreference) error {
	return GetDB(ctx, r.db).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "view_key"}},
			DoUpdates: clause.AssignmentColumns([]string{"hidden_columns", "filter_state", "updated_at"}),
		}).
		Create(pref).Error
}
