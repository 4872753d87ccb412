package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// DashboardResponse aggregates request counts and totals for one team
type DashboardResponse struct {
	TotalRequests      int64           `json:"total_requests"`
	PendingCount       int64           `json:"pending_count"`
	ApprovedCount      int64           `json:"approved_count"`
	RejectedCount      int64           `json:"rejected_count"`
	CanceledCount      int64           `json:"canceled_count"`
	TotalAmount        decimal.Decimal `json:"total_amount"`
	ApprovedAmount     decimal.Decimal `json:"approved_amount"`
	TopForms           []FormRanking   `json:"top_forms"`
	TimeRangeStartDate time.Time       `json:"time_range_start_date"`
	TimeRangeEndDate   time.Time       `json:"time_range_end_date"`
}

// FormRanking represents a form ranked by accumulated request volume
type FormRanking struct {
	FormID       string          `json:"form_id"`
	FormName     string          `json:"form_name"`
	RequestCount int64           `json:"request_count"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
}
