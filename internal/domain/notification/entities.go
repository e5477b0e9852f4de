package notification

import "time"

type Type string

const (
	TypeInfo    Type = "info"
	TypeSuccess Type = "success"
	TypeWarning Type = "warning"
)

const EntityLoan = "loan"

type Notification struct {
	ID                uint64    `gorm:"primaryKey;column:id" json:"-"`
	NotificationID    string    `gorm:"size:32;uniqueIndex:ux_notifications_notification_id" json:"notification_id"`
	UserID            string    `gorm:"size:32;index:idx_notifications_user" json:"user_id"`
	Title             string    `gorm:"size:255" json:"title"`
	Message           string    `gorm:"type:text" json:"message"`
	Type              Type      `gorm:"type:enum('info','success','warning');default:'info'" json:"type"`
	RelatedEntityType string    `gorm:"size:32" json:"related_entity_type"`
	RelatedEntityID   string    `gorm:"size:32" json:"related_entity_id"`
	IsRead            bool      `gorm:"default:false" json:"is_read"`
	CreatedAt         time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Notification) TableName() string { return "notifications" }
