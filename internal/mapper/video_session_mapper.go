package mapper

import (
	"companion-counselling-be/internal/entity"
	"companion-counselling-be/internal/model"
)

type VideoSessionMapper struct{}

func NewVideoSessionMapper() *VideoSessionMapper {
	return &VideoSessionMapper{}
}

func (m *VideoSessionMapper) ToEntity(s *model.VideoSession) *entity.VideoSession {
	if s == nil {
		return nil
	}
	return &entity.VideoSession{
		Id:            s.ID,
		BookingId:     s.BookingID,
		ConsultantId:  s.ConsultantID,
		ParticipantId: s.ParticipantID,
		RoomName:      s.RoomName,
		Status:        entity.VideoSessionStatus(s.Status),
		CreatedAt:     s.CreatedAt,
		UsedAt:        s.UsedAt,
	}
}

func (m *VideoSessionMapper) ToModel(s *entity.VideoSession) *model.VideoSession {
	if s == nil {
		return nil
	}
	return &model.VideoSession{
		ID:            s.Id,
		BookingID:     s.BookingId,
		ConsultantID:  s.ConsultantId,
		ParticipantID: s.ParticipantId,
		RoomName:      s.RoomName,
		Status:        string(s.Status),
		CreatedAt:     s.CreatedAt,
		UsedAt:        s.UsedAt,
	}
}

func (m *VideoSessionMapper) ToEntities(sessions []*model.VideoSession) []*entity.VideoSession {
	entities := make([]*entity.VideoSession, len(sessions))
	for i, s := range sessions {
		entities[i] = m.ToEntity(s)
	}
	return entities
}
