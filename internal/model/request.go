package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Request / decision status constants. The same enum is used for the request
// aggregate and for individual signer decisions.
const (
	StatusPending  = "PENDING"
	StatusApproved = "APPROVED"
	StatusRejected = "REJECTED"
	StatusCanceled = "CANCELED"
)

// Request is a submitted instance of a form, routed through the form's signer
// chain. Its status is an aggregate of the decision rows, recomputed whenever
// a signer acts.
type Request struct {
	ID                uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	FormID            uuid.UUID       `gorm:"type:uuid;not null;index" json:"form_id"`
	Form              *Form           `gorm:"foreignKey:FormID" json:"form,omitempty"`
	TeamID            uuid.UUID       `gorm:"type:uuid;not null;index" json:"team_id"`
	Title             string          `gorm:"type:varchar(255);not null" json:"title"`
	Status            string          `gorm:"type:varchar(20);not null;default:'PENDING';index" json:"status"`
	RequestedBy       *uuid.UUID      `gorm:"type:uuid;index" json:"requested_by"`
	Requester         *TeamMember     `gorm:"foreignKey:RequestedBy" json:"requester,omitempty"`
	ResponseData      string          `gorm:"type:jsonb;not null;default:'{}'" json:"response_data"` // Full snapshot of the filled form
	Amount            decimal.Decimal `gorm:"type:numeric(18,4);not null;default:0" json:"amount"`   // Requisition total, zero for non-monetary forms
	IsDisabled        bool            `gorm:"not null;default:false;index" json:"is_disabled"`
	StatusDateUpdated *time.Time      `json:"status_date_updated"`
	CreatedAt         time.Time       `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt         time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

// RequestSigner is one signer's decision instance on one request. Exactly one
// row exists per (request, signer) pair, enforced by the composite unique
// index; status updates are scoped single-row writes (last write wins).
type RequestSigner struct {
	ID                uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	RequestID         uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_request_signer" json:"request_id"`
	Request           *Request  `gorm:"foreignKey:RequestID" json:"request,omitempty"`
	SignerID          uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_request_signer" json:"signer_id"`
	Signer            *Signer   `gorm:"foreignKey:SignerID" json:"signer,omitempty"`
	Status            string    `gorm:"type:varchar(20);not null;default:'PENDING';index" json:"status"`
	StatusDateUpdated time.Time `gorm:"not null" json:"status_date_updated"`
	CreatedAt         time.Time `gorm:"autoCreateTime" json:"created_at"`
}
