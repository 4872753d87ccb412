package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	NotificationTypeRequestSubmitted = "REQUEST_SUBMITTED"
	NotificationTypeRequestApproved  = "REQUEST_APPROVED"
	NotificationTypeRequestRejected  = "REQUEST_REJECTED"
	NotificationTypeRequestCanceled  = "REQUEST_CANCELED"
	NotificationTypeDecisionRecorded = "DECISION_RECORDED"
)

// Notification is an in-app message for one user. Delivery is a plain insert
// plus a hub event; reading and dismissing are row updates.
type Notification struct {
	ID          uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID      uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	TeamID      *uuid.UUID `gorm:"type:uuid;index" json:"team_id"`
	Type        string     `gorm:"type:varchar(50);not null;index" json:"type"`
	Title       string     `gorm:"type:varchar(255);not null" json:"title"`
	Content     string     `gorm:"type:text" json:"content"`
	RedirectURL string     `gorm:"type:varchar(255)" json:"redirect_url"`
	IsRead      bool       `gorm:"not null;default:false;index" json:"is_read"`
	CreatedAt   time.Time  `gorm:"autoCreateTime;index" json:"created_at"`
}
