package users

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RoleUser     = "USER"
	RoleLandlord = "LANDLORD"
	RoleAdmin    = "ADMIN"
)

type Role struct {
	ID   string `gorm:"type:uuid;primaryKey" json:"id"`
	Code string `gorm:"type:varchar(20);uniqueIndex;not null" json:"code"`
	Name string `gorm:"not null" json:"name"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (r *Role) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

type User struct {
	ID     string `gorm:"type:uuid;primaryKey" json:"id"`
	RoleID string `gorm:"type:uuid;not null;index" json:"-"`
	Role   *Role  `gorm:"foreignKey:RoleID" json:"role,omitempty"`

	Email        string  `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash *string `gorm:"column:password_hash" json:"-"`
	FullName     string  `gorm:"not null" json:"full_name"`
	PhoneNumber  string  `json:"phone_number"`
	Gender       string  `gorm:"type:varchar(10)" json:"gender"`
	Avatar       string  `json:"avatar"`

	// Set for OAuth signups, nil for local accounts.
	Provider       *string `gorm:"type:varchar(20)" json:"-"`
	ProviderUserID *string `json:"-"`

	Status string `gorm:"type:varchar(20);not null;default:'Active'" json:"status"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}
