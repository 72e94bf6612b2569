package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is an account; in practice exactly one admin account exists. The OTP
// secret is only committed after a successful verify-setup exchange.
type User struct {
	ID           uuid.UUID `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Username     string    `gorm:"column:username;not null;uniqueIndex" json:"username"`
	PasswordHash string    `gorm:"column:password_hash;not null" json:"-"`
	Email        *string   `gorm:"column:email" json:"email,omitempty"`
	Phone        *string   `gorm:"column:phone" json:"phone,omitempty"`
	OTPSecret    *string   `gorm:"column:otp_secret" json:"-"`
	OTPEnabled   bool      `gorm:"column:otp_enabled;not null;default:false" json:"otp_enabled"`
	IsAdmin      bool      `gorm:"column:is_admin;not null;default:false" json:"is_admin"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (u *User) BeforeCreate(_ *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
