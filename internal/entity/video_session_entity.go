package entity

import "time"

type VideoSessionStatus string

const (
	VideoSessionStatusActive    VideoSessionStatus = "active"
	VideoSessionStatusExpired   VideoSessionStatus = "expired"
	VideoSessionStatusCompleted VideoSessionStatus = "completed"
)

type VideoSession struct {
	Id            uint
	BookingId     *uint
	ConsultantId  uint
	ParticipantId uint
	RoomName      string
	Status        VideoSessionStatus
	CreatedAt     time.Time
	UsedAt        *time.Time
}

func (s *VideoSession) IsTerminal() bool {
	return s.Status != VideoSessionStatusActive
}
