package models

import "time"

// User represents an end-user account stored in the database.
type User struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	Email    string `gorm:"type:text;not null;uniqueIndex"` // Unique login email.
	Name     string `gorm:"type:text"`                      // Display name.
	Password string `gorm:"type:text;not null"`             // Hashed password.

	IsAdmin bool `gorm:"not null;default:false"` // Whether the user can access admin endpoints.
	Active  bool `gorm:"not null;default:true"`  // Whether the user can sign in.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}
