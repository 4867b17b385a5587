package models

import (
	"time"

	"github.com/smartfertilizer/backend/internal/domain/identity"
)

// UserModel is the persistence model for the User domain entity.
type UserModel struct {
	BaseModel
	Name                string  `gorm:"type:varchar(100);not null"`
	Email               string  `gorm:"type:varchar(200);not null;uniqueIndex"`
	PasswordHash        string  `gorm:"type:varchar(255);not null"`
	Role                string  `gorm:"type:varchar(20);not null;default:'user'"`
	ResetTokenHash      *string `gorm:"type:varchar(64);index"`
	ResetTokenExpiresAt *time.Time
	PasswordChangedAt   *time.Time
}

// TableName returns the table name for GORM
func (UserModel) TableName() string {
	return "users"
}

// ToDomain converts the persistence model to a domain User entity.
func (m *UserModel) ToDomain() *identity.User {
	user := &identity.User{
		BaseEntity:          m.BaseModel.ToDomain(),
		Name:                m.Name,
		Email:               m.Email,
		PasswordHash:        m.PasswordHash,
		Role:                identity.Role(m.Role),
		ResetTokenExpiresAt: m.ResetTokenExpiresAt,
		PasswordChangedAt:   m.PasswordChangedAt,
	}
	if m.ResetTokenHash != nil {
		user.ResetTokenHash = *m.ResetTokenHash
	}
	return user
}

// UserModelFromDomain creates a persistence model from a domain User entity.
func UserModelFromDomain(u *identity.User) *UserModel {
	m := &UserModel{
		Name:                u.Name,
		Email:               u.Email,
		PasswordHash:        u.PasswordHash,
		Role:                string(u.Role),
		ResetTokenExpiresAt: u.ResetTokenExpiresAt,
		PasswordChangedAt:   u.PasswordChangedAt,
	}
	m.FromDomainBaseEntity(u.BaseEntity)
	if u.ResetTokenHash != "" {
		hash := u.ResetTokenHash
		m.ResetTokenHash = &hash
	}
	if m.Role == "" {
		m.Role = string(identity.RoleUser)
	}
	return m
}
