package model

import "time"

type User struct {
	ID           string `gorm:"primaryKey" json:"id"`
	Name         string `gorm:"not null" json:"name"`
	Email        string `gorm:"uniqueIndex; not null" json:"email"`
	PasswordHash string `gorm:"not null" json:"-"`

	// Both are set while a password reset is pending, both are
	// cleared on reset or on a failed reset mail. Never one
	// without the other.
	ResetTokenHash      *string    `gorm:"index" json:"-"`
	ResetTokenExpiresAt *time.Time `json:"-"`

	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`

	Books []Book `gorm:"foreignKey:OwnerID" json:"-"`
}
