package dto

import "time"

type ProvisionSessionRequest struct {
	ParticipantId uint  `json:"participant_id" validate:"required"`
	BookingId     *uint `json:"booking_id"`
}

type ProvisionSessionResponse struct {
	SessionId uint   `json:"session_id"`
	RoomName  string `json:"room_name"`
}

type SessionTokenRequest struct {
	RoomName string `json:"room_name" validate:"required,max=100"`
	// Role is publisher or subscriber; empty means publisher.
	Role string `json:"role" validate:"omitempty,oneof=publisher subscriber"`
}

type SessionTokenResponse struct {
	Token     string    `json:"token"`
	AppId     string    `json:"app_id"`
	RoomName  string    `json:"room_name"`
	Uid       string    `json:"uid"`
	ExpiresAt time.Time `json:"expires_at"`
}

type ExpireSessionResponse struct {
	Expired bool `json:"expired"`
}

type VideoSessionResponse struct {
	Id            uint       `json:"id"`
	BookingId     *uint      `json:"booking_id"`
	ConsultantId  uint       `json:"consultant_id"`
	ParticipantId uint       `json:"participant_id"`
	RoomName      string     `json:"room_name"`
	Status        string     `json:"status"`
	CreatedAt     time.Time  `json:"created_at"`
	UsedAt        *time.Time `json:"used_at,omitempty"`
}
