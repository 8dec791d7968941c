package entity

import "time"

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusAccepted  BookingStatus = "accepted"
	BookingStatusCompleted BookingStatus = "completed"
)

type Booking struct {
	Id                    uint
	RequesterId           uint
	RequestedConsultantId *uint
	ConsultantId          *uint // nil until accepted
	ScheduledAt           time.Time
	Status                BookingStatus
	CreatedAt             time.Time
	AcceptedAt            *time.Time
	CompletedAt           *time.Time
}
