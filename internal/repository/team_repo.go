package repository

import (
	"context"

	"formsly/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TeamRepository interface {
	Create(ctx context.Context, team *model.Team) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Team, error)
	List(ctx context.Context, page, limit int) ([]model.Team, int64, error)
	Update(ctx context.Context, team *model.Team) error

	AddMember(ctx context.Context, member *model.TeamMember) error
	FindMemberByID(ctx context.Context, id uuid.UUID) (*model.TeamMember, error)
	FindMemberByUser(ctx context.Context, teamID, userID uuid.UUID) (*model.TeamMember, error)
	ListMembers(ctx context.Context, teamID uuid.UUID, page, limit int) ([]model.TeamMember, int64, error)
	UpdateMember(ctx context.Context, member *model.TeamMember) error
}

type teamRepository struct {
	db *gorm.DB
}

func NewTeamRepository(db *gorm.DB) TeamRepository {
	return &teamRepository{db: db}
}

func (r *teamRepository) Create(ctx context.Context, team *model.Team) error {
	return GetDB(ctx, r.db).Create(team).Error
}

func (r *teamRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Team, error) {
	var team model.Team
	if err := GetDB(ctx, r.db).Preload("Owner").First(&team, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &team, nil
}

func (r *teamRepository) List(ctx context.Context, page, limit int) ([]model.Team, int64, error) {
	var teams []model.Team
	var total int64

	db := GetDB(ctx, r.db)
	query := db.Model(&model.Team{}).Where("is_disabled = ?", false)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := db.Where("is_disabled = ?", false).
		Order("created_at desc").Offset(offset).Limit(limit).Find(&teams).Error; err != nil {
		return nil, 0, err
	}

	return teams, total, nil
}

func (r *teamRepository) Update(ctx context.Context, team *model.Team) error {
	return GetDB(ctx, r.db).Save(team).Error
}

func (r *teamRepository) AddMember(ctx context.Context, member *model.TeamMember) error {
	return GetDB(ctx, r.db).Create(member).Error
}

func (r *teamRepository) FindMemberByID(ctx context.Context, id uuid.UUID) (*model.TeamMember, error) {
	var member model.TeamMember
	if err := GetDB(ctx, r.db).Preload("User").First(&member, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &member, nil
}

func (r *teamRepository) FindMemberByUser(ctx context.Context, teamID, userID uuid.UUID) (*model.TeamMember, error) {
	var member model.TeamMember
	if err := GetDB(ctx, r.db).
		First(&member, "team_id = ? AND user_id = ? AND is_disabled = ?", teamID, userID, false).Error; err != nil {
		return nil, err
	}
	return &member, nil
}

func (r *teamRepository) ListMembers(ctx context.Context, teamID uuid.UUID, page, limit int) ([]model.TeamMember, int64, error) {
	var members []model.TeamMember
	var total int64

	db := GetDB(ctx, r.db)
	query := db.Model(&model.TeamMember{}).Where("team_id = ? AND is_disabled = ?", teamID, false)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := db.Preload("User").
		Where("team_id = ? AND is_disabled = ?", teamID, false).
		Order("created_at asc").Offset(offset).Limit(limit).Find(&members).Error; err != nil {
		return nil, 0, err
	}

	return members, total, nil
}

func (r *teamRepository) UpdateMember(ctx context.Context, member *model.TeamMember) error {
	return GetDB(ctx, r.db).Save(member).Error
}
