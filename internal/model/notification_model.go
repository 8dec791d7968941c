package model

import (
	"time"

	"gorm.io/datatypes"
)

// Notification is one recipient-addressed event. (recipient, type, related id)
// is unique so repeated emits of the same event collapse into one row.
type Notification struct {
	ID            uint           `gorm:"primaryKey;autoIncrement"`
	RecipientType string         `gorm:"type:varchar(20);not null;uniqueIndex:uniq_notifications_dedup,priority:1;index:idx_notifications_recipient_status,priority:1"`
	RecipientID   uint           `gorm:"not null;uniqueIndex:uniq_notifications_dedup,priority:2;index:idx_notifications_recipient_status,priority:2"`
	Type          string         `gorm:"type:varchar(50);not null;uniqueIndex:uniq_notifications_dedup,priority:3"`
	RelatedID     uint           `gorm:"not null;uniqueIndex:uniq_notifications_dedup,priority:4"`
	Status        string         `gorm:"type:varchar(10);not null;index:idx_notifications_recipient_status,priority:3"`
	Metadata      datatypes.JSON `gorm:"type:json"`
	CreatedAt     time.Time      `gorm:"not null;index:idx_notifications_created"`
	ReadAt        *time.Time
}

func (Notification) TableName() string {
	return "notifications"
}
