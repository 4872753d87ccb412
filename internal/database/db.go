package database

import (
	"log"

	"formsly/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// NewConnection initializes a new connection pool using GORM
func NewConnection(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	// Auto-migrate core models
	err = db.AutoMigrate(
		&model.User{},
		&model.RefreshToken{},
		&model.Team{},
		&model.TeamMember{},
		&model.Form{},
		&model.Signer{},
		&model.Request{},
		&model.RequestSigner{},
		&model.Notification{},
		&model.ViewPreference{},
		&model.AuditLog{},
		&model.Role{},
		&model.Permission{},
	)
	if err != nil {
		log.Println("WARNING: Failed to auto-migrate models:", err)
	}

	return db, nil
}
