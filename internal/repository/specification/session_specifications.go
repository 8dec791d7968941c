package specification

import (
	"companion-counselling-be/internal/entity"

	"gorm.io/gorm"
)

type ByParticipant struct {
	ParticipantID uint
}

func (s ByParticipant) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("participant_id = ?", s.ParticipantID)
}

type ByRoomName struct {
	RoomName string
}

func (s ByRoomName) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("room_name = ?", s.RoomName)
}

type BySessionStatus struct {
	Statuses []entity.VideoSessionStatus
}

func (s BySessionStatus) Apply(db *gorm.DB) *gorm.DB {
	values := make([]string, len(s.Statuses))
	for i, st := range s.Statuses {
		values[i] = string(st)
	}
	return db.Where("status IN ?", values)
}
