package dto

import "time"

type CreateBookingRequest struct {
	ConsultantId  uint   `json:"consultant_id" validate:"required"`
	PreferredDate string `json:"preferred_date" validate:"required,date_ymd"`
	PreferredTime string `json:"preferred_time" validate:"required,clock_hm"`
}

type CreateBookingResponse struct {
	BookingId uint `json:"booking_id"`
}

type BookingResponse struct {
	Id                    uint       `json:"id"`
	RequesterId           uint       `json:"requester_id"`
	RequestedConsultantId *uint      `json:"requested_consultant_id"`
	ConsultantId          *uint      `json:"consultant_id"`
	ScheduledAt           time.Time  `json:"scheduled_at"`
	Status                string     `json:"status"`
	CreatedAt             time.Time  `json:"created_at"`
	AcceptedAt            *time.Time `json:"accepted_at,omitempty"`
	CompletedAt           *time.Time `json:"completed_at,omitempty"`
}
