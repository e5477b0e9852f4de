package mysql

import (
	"context"

	"gorm.io/gorm"

	memberDomain "community-lending/internal/domain/member"
)

type MemberRepository struct{ db *gorm.DB }

func NewMemberRepository(db *gorm.DB) *MemberRepository { return &MemberRepository{db: db} }

func (r *MemberRepository) Create(ctx context.Context, u *memberDomain.User) error {
	return translate(r.db.WithContext(ctx).Create(u).Error, memberDomain.ErrNotFound, "users: create")
}

func (r *MemberRepository) GetByUserID(ctx context.Context, userID string) (*memberDomain.User, error) {
	var out memberDomain.User
	res := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&out)
	if res.Error != nil {
		return nil, translate(res.Error, memberDomain.ErrNotFound, "users: get by user id")
	}
	return &out, nil
}

func (r *MemberRepository) ListActiveAdmins(ctx context.Context) ([]memberDomain.User, error) {
	var out []memberDomain.User
	err := r.db.WithContext(ctx).
		Where("role = ? AND is_active = ?", memberDomain.RoleAdmin, true).
		Order("id ASC").
		Find(&out).Error
	return out, translate(err, memberDomain.ErrNotFound, "users: list active admins")
}
