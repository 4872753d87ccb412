package service

import (
	"context"
	"fmt"
	"time"

	"formsly/internal/model"
	"formsly/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const topFormsLimit = 5

type DashboardService interface {
	GetDashboard(ctx context.Context, teamID string, startDate, endDate time.Time) (model.DashboardResponse, error)
}

type dashboardService struct {
	repo repository.DashboardRepository
}

func NewDashboardService(repo repository.DashboardRepository) DashboardService {
	return &dashboardService{repo: repo}
}

// GetDashboard aggregates request counts, amount totals and the busiest forms
// for one team over a time bracket.
func (s *dashboardService) GetDashboard(ctx context.Context, teamID string, startDate, endDate time.Time) (model.DashboardResponse, error) {
	var response model.DashboardResponse
	response.TimeRangeStartDate = startDate
	response.TimeRangeEndDate = endDate

	tID, err := uuid.Parse(teamID)
	if err != nil {
		return response, fmt.Errorf("invalid team id: %w", err)
	}

	counts, err := s.repo.CountByStatus(ctx, tID, startDate, endDate)
	if err != nil {
		return response, err
	}
	response.PendingCount = counts[model.StatusPending]
	response.ApprovedCount = counts[model.StatusApproved]
	response.RejectedCount = counts[model.StatusRejected]
	response.CanceledCount = counts[model.StatusCanceled]
	for _, c := range counts {
		response.TotalRequests += c
	}

	totalRaw, approvedRaw, err := s.repo.SumAmounts(ctx, tID, startDate, endDate)
	if err != nil {
		return response, err
	}
	total, err := decimal.NewFromString(totalRaw)
	if err != nil {
		return response, fmt.Errorf("failed to parse total amount: %w", err)
	}
	approved, err := decimal.NewFromString(approvedRaw)
	if err != nil {
		return response, fmt.Errorf("failed to parse approved amount: %w", err)
	}
	response.TotalAmount = total
	response.ApprovedAmount = approved

	topForms, err := s.repo.TopForms(ctx, tID, startDate, endDate, topFormsLimit)
	if err != nil {
		return response, err
	}
	response.TopForms = topForms

	return response, nil
}
