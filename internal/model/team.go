package model

import (
	"time"

	"github.com/google/uuid"
)

// Team member role constants
const (
	TeamRoleOwner    = "OWNER"
	TeamRoleAdmin    = "ADMIN"
	TeamRoleApprover = "APPROVER"
	TeamRoleMember   = "MEMBER"
)

// Team represents a tenant. Every form, request and signer chain is scoped to one team.
type Team struct {
	ID         uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name       string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"name"`
	OwnerID    uuid.UUID `gorm:"type:uuid;not null" json:"owner_id"`
	Owner      *User     `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
	IsDisabled bool      `gorm:"not null;default:false;index" json:"is_disabled"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TeamMember links a user to a team with a team-scoped role.
// Signers reference team members, not users, so leaving a team disables
// the member without breaking historical signer chains.
type TeamMember struct {
	ID         uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	TeamID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_team_member" json:"team_id"`
	Team       *Team     `gorm:"foreignKey:TeamID" json:"team,omitempty"`
	UserID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_team_member" json:"user_id"`
	User       *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Role       string    `gorm:"type:varchar(20);not null;default:'MEMBER'" json:"role"` // OWNER, ADMIN, APPROVER, MEMBER
	IsDisabled bool      `gorm:"not null;default:false;index" json:"is_disabled"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
