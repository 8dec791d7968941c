package model

import "time"

// VideoSession is a provisioned room. The partial unique index on active rows
// per participant lives in database.Migrate since GORM tags cannot express it.
type VideoSession struct {
	ID            uint      `gorm:"primaryKey;autoIncrement"`
	BookingID     *uint     `gorm:"index:idx_video_sessions_booking"`
	ConsultantID  uint      `gorm:"not null;index:idx_video_sessions_consultant"`
	ParticipantID uint      `gorm:"not null;index:idx_video_sessions_participant_status,priority:1"`
	RoomName      string    `gorm:"type:varchar(100);not null;uniqueIndex:uniq_video_sessions_room"`
	Status        string    `gorm:"type:varchar(20);not null;index:idx_video_sessions_participant_status,priority:2"`
	CreatedAt     time.Time `gorm:"not null;index:idx_video_sessions_created"`
	UsedAt        *time.Time
}

func (VideoSession) TableName() string {
	return "video_sessions"
}
