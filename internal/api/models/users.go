package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role values stored in users.role. Moderators can edit or remove any
// review/comment but have no access to catalog writes or user management.
const (
	RoleUser      = "user"
	RoleModerator = "moderator"
	RoleAdmin     = "admin"
)

type User struct {
	ID          string     `gorm:"primaryKey;type:uuid" json:"-"`
	Username    string     `gorm:"uniqueIndex;size:150;not null" json:"username"`
	Email       string     `gorm:"uniqueIndex;size:254;not null" json:"email"`
	FirstName   string     `gorm:"size:150" json:"first_name"`
	LastName    string     `gorm:"size:150" json:"last_name"`
	Bio         string     `gorm:"type:text" json:"bio"`
	Role        string     `gorm:"size:9;default:'user';not null" json:"role"`
	IsSuperuser bool       `gorm:"not null;default:false" json:"-"`
	IsStaff     bool       `gorm:"not null;default:false" json:"-"`
	LastLogin   *time.Time `json:"-"`
	CreatedAt   time.Time  `json:"-"`
	UpdatedAt   time.Time  `json:"-"`
}

// BeforeCreate hook to set UUID before creating a User
func (user *User) BeforeCreate(tx *gorm.DB) (err error) {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	return
}

func (User) TableName() string {
	return "users"
}

// IsAdmin reports whether the user may manage catalog entries and accounts.
// Superuser/staff accounts created outside the signup flow count as admin
// regardless of role.
func (user *User) IsAdmin() bool {
	return user.Role == RoleAdmin || user.IsSuperuser || user.IsStaff
}

func (user *User) IsModerator() bool {
	return user.Role == RoleModerator
}

func (user *User) IsUser() bool {
	return user.Role == RoleUser
}

// ValidRole reports whether s is one of the assignable role values.
func ValidRole(s string) bool {
	return s == RoleUser || s == RoleModerator || s == RoleAdmin
}
