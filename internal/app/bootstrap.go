package app

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/adsmith-studio/adsmith-backend/internal/config"
	"github.com/adsmith-studio/adsmith-backend/internal/models"
	"github.com/adsmith-studio/adsmith-backend/internal/security"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// ConfigExists reports whether the config file exists at the path.
func ConfigExists(configPath string) bool {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return false
	}
	return true
}

// ensureAdminUser creates the initial admin account from the
// ADMIN_EMAIL and ADMIN_PASSWORD environment variables. It is a no-op
// when the variables are unset or the account already exists.
func ensureAdminUser(conn *gorm.DB) error {
	email := strings.ToLower(strings.TrimSpace(os.Getenv(config.EnvAdminEmail)))
	password := strings.TrimSpace(os.Getenv(config.EnvAdminPassword))
	if email == "" || password == "" {
		return nil
	}

	var existing models.User
	errFind := conn.Where("email = ?", email).First(&existing).Error
	if errFind == nil {
		if !existing.IsAdmin {
			return conn.Model(&existing).Update("is_admin", true).Error
		}
		return nil
	}
	if !errors.Is(errFind, gorm.ErrRecordNotFound) {
		return errFind
	}

	hash, errHash := security.HashPassword(password)
	if errHash != nil {
		return errHash
	}
	now := time.Now().UTC()
	admin := models.User{
		Email:     email,
		Name:      "Administrator",
		Password:  hash,
		IsAdmin:   true,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if errCreate := conn.Create(&admin).Error; errCreate != nil {
		return errCreate
	}
	log.WithField("email", email).Info("created admin account")
	return nil
}
