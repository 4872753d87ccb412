package repository

import (
	"context"

	"formsly/internal/model"
	"formsly/internal/query"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// formColumns whitelists the filterable/sortable columns of the forms view.
var formColumns = map[string]string{
	"name":       "name",
	"created_by": "created_by",
	"created_at": "created_at",
	"is_hidden":  "is_hidden",
}

type FormRepository interface {
	Create(ctx context.Context, form *model.Form) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Form, error)
	List(ctx context.Context, teamID uuid.UUID, filter query.Filter, sort query.Sort, page, limit int) ([]model.Form, int64, error)
	Update(ctx context.Context, form *model.Form) error

	ListActiveSigners(ctx context.Context, formID uuid.UUID) ([]model.Signer, error)
	ReplaceSigners(ctx context.Context, formID uuid.UUID, signers []model.Signer) error
}

type formRepository struct {
	db *gorm.DB
}

func NewFormRepository(db *gorm.DB) FormRepository {
	return &formRepository{db: db}
}

func (r *formRepository) Create(ctx context.Context, form *model.Form) error {
	return GetDB(ctx, r.db).Create(form).Error
}

func (r *formRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Form, error) {
	var form model.Form
	if err := GetDB(ctx, r.db).Preload("Creator").Preload("Creator.User").
		First(&form, "id = ? AND is_disabled = ?", id, false).Error; err != nil {
		return nil, err
	}
	return &form, nil
}

func (r *formRepository) List(ctx context.Context, teamID uuid.UUID, filter query.Filter, sort query.Sort, page, limit int) ([]model.Form, int64, error) {
	clause, args, err := filter.Build(formColumns)
	if err != nil {
		return nil, 0, err
	}
	order, err := sort.OrderClause(formColumns, "created_at desc")
	if err != nil {
		return nil, 0, err
	}

	db := GetDB(ctx, r.db)
	base := db.Model(&model.Form{}).Where("team_id = ? AND is_disabled = ?", teamID, false)
	if clause != "" {
		base = base.Where(clause, args...)
	}

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var forms []model.Form
	offset := (page - 1) * limit
	fetch := db.Preload("Creator").Preload("Creator.User").
		Where("team_id = ? AND is_disabled = ?", teamID, false)
	if clause != "" {
		fetch = fetch.Where(clause, args...)
	}
	if err := fetch.Order(order).Offset(offset).Limit(limit).Find(&forms).Error; err != nil {
		return nil, 0, err
	}

	return forms, total, nil
}

func (r *formRepository) Update(ctx context.Context, form *model.Form) error {
	return GetDB(ctx, r.db).Save(form).Error
}

func (r *formRepository) ListActiveSigners(ctx context.Context, formID uuid.UUID) ([]model.Signer, error) {
	var signers []model.Signer
	if err := GetDB(ctx, r.db).Preload("TeamMember").Preload("TeamMember.User").
		Where("form_id = ? AND is_disabled = ?", formID, false).
		Order(`"order" asc, created_at asc`).
		Find(&signers).Error; err != nil {
		return nil, err
	}
	return signers, nil
}

// ReplaceSigners implements the replace-on-save semantics of the signer
// chain: existing rows are soft-disabled, never deleted, so historical
// decision instances keep their references; the incoming set is inserted as
// fresh rows.
func (r *formRepository) ReplaceSigners(ctx context.Context, formID uuid.UUID, signers []model.Signer) error {
	db := GetDB(ctx, r.db)

	if err := db.Model(&model.Signer{}).
		Where("form_id = ? AND is_disabled = ?", formID, false).
		Update("is_disabled", true).Error; err != nil {
		return err
	}

	for i := range signers {
		signers[i].FormID = formID
		signers[i].IsDisabled = false
		if err := db.Create(&signers[i]).Error; err != nil {
			return err
		}
	}
	return nil
}
