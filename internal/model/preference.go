package model

import (
	"time"

	"github.com/google/uuid"
)

// ViewPreference stores per-user, per-view spreadsheet settings: the set of
// hidden column keys and the last used filter state. Toggling a column only
// touches this row, never the listed data.
type ViewPreference struct {
	ID            uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID        uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_user_view" json:"user_id"`
	ViewKey       string    `gorm:"type:varchar(100);not null;uniqueIndex:idx_user_view" json:"view_key"` // e.g. "requests", "forms"
	HiddenColumns string    `gorm:"type:jsonb;not null;default:'[]'" json:"hidden_columns"`               // JSON array of column keys
	FilterState   string    `gorm:"type:jsonb;not null;default:'{}'" json:"filter_state"`                 // Last used filters, restored on load
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
