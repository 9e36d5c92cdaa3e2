package model

import (
	"time"
)

type UserRole string

const (
	RoleUser      UserRole = "user"
	RoleModerator UserRole = "moderator"
	RoleAdmin     UserRole = "admin"
	RoleSudo      UserRole = "sudo"
)

func (r UserRole) Valid() bool {
	switch r {
	case RoleUser, RoleModerator, RoleAdmin, RoleSudo:
		return true
	}
	return false
}

// IsAdmin admin 与 sudo 通过所有角色校验
func (r UserRole) IsAdmin() bool {
	return r == RoleAdmin || r == RoleSudo
}

func (r UserRole) IsModerator() bool {
	return r == RoleModerator || r.IsAdmin()
}

// swagger:model User
type User struct {
	BaseModel
	Username       string     `gorm:"size:32;uniqueIndex;not null" json:"username"`
	FirstName      string     `gorm:"size:64" json:"firstName"`
	LastName       string     `gorm:"size:64" json:"lastName"`
	Email          string     `gorm:"size:128;uniqueIndex;not null" json:"email"`
	Password       string     `gorm:"size:100;not null" json:"-"`
	Role           UserRole   `gorm:"size:16;default:'user'" json:"role"`
	EmailConfirmed bool       `gorm:"default:false" json:"emailConfirmed"`
	Locked         bool       `gorm:"default:false" json:"locked"`
	UniversityID   uint       `gorm:"index" json:"universityId"`
	LastSeen       *time.Time `json:"lastSeen,omitempty"`
}

func (User) TableName() string {
	return "users"
}

type TokenPurpose string

const (
	TokenConfirmEmail  TokenPurpose = "confirm-email"
	TokenPasswordReset TokenPurpose = "password-reset"
)

// UserToken 邮箱确认与密码重置令牌
type UserToken struct {
	ID        uint         `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    uint         `gorm:"index;not null" json:"userId"`
	Token     string       `gorm:"size:36;uniqueIndex;not null" json:"-"`
	Purpose   TokenPurpose `gorm:"size:32;not null" json:"purpose"`
	ExpiresAt time.Time    `json:"expiresAt"`
	CreatedAt time.Time    `json:"createdAt"`
}

func (UserToken) TableName() string {
	return "user_tokens"
}
