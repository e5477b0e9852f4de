package mysql

import (
	"context"

	"gorm.io/gorm"

	"community-lending/internal/domain/apperr"
	notificationDomain "community-lending/internal/domain/notification"
	"community-lending/pkg/id"
)

var errNotificationNotFound = apperr.New(apperr.KindNotFound, "notification_not_found", "notification not found")

type NotificationRepository struct{ db *gorm.DB }

func NewNotificationRepository(db *gorm.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) Create(ctx context.Context, n *notificationDomain.Notification) (string, error) {
	if n.NotificationID == "" {
		n.NotificationID = id.NewID32()
	}
	if err := r.db.WithContext(ctx).Create(n).Error; err != nil {
		return "", translate(err, errNotificationNotFound, "notifications: create")
	}
	return n.NotificationID, nil
}

func (r *NotificationRepository) ListByUserID(ctx context.Context, userID string) ([]notificationDomain.Notification, error) {
	var out []notificationDomain.Notification
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&out).Error
	return out, translate(err, errNotificationNotFound, "notifications: list by user")
}
