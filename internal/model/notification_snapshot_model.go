package model

import (
	"time"

	"gorm.io/datatypes"
)

// NotificationSnapshot records what the last fetch showed a recipient. There is
// at most one row per recipient; each fetch replaces it and a clear consumes it.
type NotificationSnapshot struct {
	ID              uint           `gorm:"primaryKey;autoIncrement"`
	RecipientType   string         `gorm:"type:varchar(20);not null;uniqueIndex:uniq_notification_snapshots_recipient,priority:1"`
	RecipientID     uint           `gorm:"not null;uniqueIndex:uniq_notification_snapshots_recipient,priority:2"`
	NotificationIDs datatypes.JSON `gorm:"type:json"`
	AnnouncementIDs datatypes.JSON `gorm:"type:json"`
	TakenAt         time.Time      `gorm:"not null"`
}

func (NotificationSnapshot) TableName() string {
	return "notification_snapshots"
}
