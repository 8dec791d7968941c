package model

import "time"

type Booking struct {
	ID                    uint      `gorm:"primaryKey;autoIncrement"`
	RequesterID           uint      `gorm:"not null;index:idx_bookings_requester"`
	RequestedConsultantID *uint     `gorm:"index:idx_bookings_requested_consultant"`
	ConsultantID          *uint     `gorm:"index:idx_bookings_consultant_status,priority:1"`
	ScheduledAt           time.Time `gorm:"not null"`
	Status                string    `gorm:"type:varchar(20);not null;index:idx_bookings_status;index:idx_bookings_consultant_status,priority:2"`
	CreatedAt             time.Time `gorm:"not null"`
	AcceptedAt            *time.Time
	CompletedAt           *time.Time
}

func (Booking) TableName() string {
	return "bookings"
}
