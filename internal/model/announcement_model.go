package model

import "time"

type Announcement struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"`
	Audience  string    `gorm:"type:varchar(20);not null;index:idx_announcements_audience"`
	Title     string    `gorm:"type:varchar(200);not null"`
	Message   string    `gorm:"type:text;not null"`
	CreatedAt time.Time `gorm:"not null;index:idx_announcements_created"`
}

func (Announcement) TableName() string {
	return "announcements"
}
