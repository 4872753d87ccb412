package repository

import (
	"context"
	"fmt"
	"time"

	"formsly/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type statusCount struct {
	Status string
	Count  int64
}

type DashboardRepository interface {
	CountByStatus(ctx context.Context, teamID uuid.UUID, start, end time.Time) (map[string]int64, error)
	SumAmounts(ctx context.Context, teamID uuid.UUID, start, end time.Time) (total, approved string, err error)
	TopForms(ctx context.Context, teamID uuid.UUID, start, end time.Time, limit int) ([]model.FormRanking, error)
}

type dashboardRepository struct {
	db *gorm.DB
}

func NewDashboardRepository(db *gorm.DB) DashboardRepository {
	return &dashboardRepository{db: db}
}

func (r *dashboardRepository) CountByStatus(ctx context.Context, teamID uuid.UUID, start, end time.Time) (map[string]int64, error) {
	var rows []statusCount
	if err := GetDB(ctx, r.db).Table("requests").
		Select("requests.status as status, COUNT(requests.id) as count").
		Joins("JOIN forms ON forms.id = requests.form_id").
		Where("forms.team_id = ? AND requests.created_at >= ? AND requests.created_at <= ?", teamID, start, end).
		Group("requests.status").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to count requests by status: %w", err)
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

// SumAmounts returns the sums as text so the caller can parse them into
// exact decimals instead of going through float64.
func (r *dashboardRepository) SumAmounts(ctx context.Context, teamID uuid.UUID, start, end time.Time) (string, string, error) {
	var result struct {
		Total    string
		Approved string
	}
	if err := GetDB(ctx, r.db).Table("requests").
		Select("COALESCE(CAST(SUM(requests.amount) AS TEXT), '0') as total, "+
			"COALESCE(CAST(SUM(requests.amount) FILTER (WHERE requests.status = ?) AS TEXT), '0') as approved",
			model.StatusApproved).
		Joins("JOIN forms ON forms.id = requests.form_id").
		Where("forms.team_id = ? AND requests.created_at >= ? AND requests.created_at <= ?", teamID, start, end).
		Scan(&result).Error; err != nil {
		return "", "", fmt.Errorf("failed to sum request amounts: %w", err)
	}
	return result.Total, result.Approved, nil
}

func (r *dashboardRepository) TopForms(ctx context.Context, teamID uuid.UUID, start, end time.Time, limit int) ([]model.FormRanking, error) {
	var rankings []model.FormRanking
	if err := GetDB(ctx, r.db).Table("requests").
		Select("forms.id as form_id, forms.name as form_name, COUNT(requests.id) as request_count, COALESCE(SUM(requests.amount), 0) as total_amount").
		Joins("JOIN forms ON forms.id = requests.form_id").
		Where("forms.team_id = ? AND requests.created_at >= ? AND requests.created_at <= ?", teamID, start, end).
		Group("forms.id, forms.name").
		Order("request_count DESC").
		Limit(limit).
		Scan(&rankings).Error; err != nil {
		return nil, fmt.Errorf("failed to query top forms: %w", err)
	}
	return rankings, nil
}
