package model

import (
	"time"

	"github.com/google/uuid"
)

// Form is a team-defined request template (requisition, interview, asset
// inventory, ...). Forms are never hard-deleted, only hidden.
type Form struct {
	ID          uuid.UUID   `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	TeamID      uuid.UUID   `gorm:"type:uuid;not null;index" json:"team_id"`
	Team        *Team       `gorm:"foreignKey:TeamID" json:"team,omitempty"`
	Name        string      `gorm:"type:varchar(255);not null" json:"name"`
	Description string      `gorm:"type:text" json:"description"`
	CreatedBy   *uuid.UUID  `gorm:"type:uuid;index" json:"created_by"`
	Creator     *TeamMember `gorm:"foreignKey:CreatedBy" json:"creator,omitempty"`
	IsDisabled  bool        `gorm:"not null;default:false;index" json:"is_disabled"`
	IsHidden    bool        `gorm:"not null;default:false" json:"is_hidden"`
	CreatedAt   time.Time   `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time   `gorm:"autoUpdateTime" json:"updated_at"`
}

// Signer is one required approver in a form's signer chain.
// Order determines evaluation sequence; signers sharing an order approve in
// parallel at that step. Every form must keep at least one primary signer.
// The chain is replaced wholesale on save: old rows are soft-disabled and the
// new set inserted, so decision instances keep valid signer references.
type Signer struct {
	ID           uuid.UUID   `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	FormID       uuid.UUID   `gorm:"type:uuid;not null;index" json:"form_id"`
	Form         *Form       `gorm:"foreignKey:FormID" json:"form,omitempty"`
	TeamMemberID uuid.UUID   `gorm:"type:uuid;not null;index" json:"team_member_id"`
	TeamMember   *TeamMember `gorm:"foreignKey:TeamMemberID" json:"team_member,omitempty"`
	Order        int         `gorm:"not null;default:1" json:"order"`
	IsPrimary    bool        `gorm:"not null;default:false" json:"is_primary"`
	Action       string      `gorm:"type:varchar(100);not null;default:'Approved'" json:"action"` // label shown on the signature line
	IsDisabled   bool        `gorm:"not null;default:false;index" json:"is_disabled"`
	CreatedAt    time.Time   `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time   `gorm:"autoUpdateTime" json:"updated_at"`
}
