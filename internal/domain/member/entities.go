package member

import (
	"time"

	"community-lending/internal/domain/apperr"
)

var ErrNotFound = apperr.New(apperr.KindNotFound, "member_not_found", "member not found")

type Role string

const (
	RoleMember Role = "member"
	RoleAdmin  Role = "admin"
)

type User struct {
	ID        uint64    `gorm:"primaryKey;column:id" json:"-"`
	UserID    string    `gorm:"size:32;uniqueIndex:ux_users_user_id" json:"user_id"`
	FullName  string    `gorm:"size:255" json:"full_name"`
	Email     string    `gorm:"size:255" json:"email"`
	Role      Role      `gorm:"type:enum('member','admin');default:'member';index:idx_users_role_active" json:"role"`
	IsActive  bool      `gorm:"not null;index:idx_users_role_active" json:"is_active"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (User) TableName() string { return "users" }

// DisplayName falls back to the id for members without a name on file.
func (u *User) DisplayName() string {
	if u.FullName != "" {
		return u.FullName
	}
	return u.UserID
}
