package mapper

import (
	"companion-counselling-be/internal/entity"
	"companion-counselling-be/internal/model"
)

type AnnouncementMapper struct{}

func NewAnnouncementMapper() *AnnouncementMapper {
	return &AnnouncementMapper{}
}

func (m *AnnouncementMapper) ToEntity(a *model.Announcement) *entity.Announcement {
	if a == nil {
		return nil
	}
	return &entity.Announcement{
		Id:        a.ID,
		Audience:  entity.Audience(a.Audience),
		Title:     a.Title,
		Message:   a.Message,
		CreatedAt: a.CreatedAt,
	}
}

func (m *AnnouncementMapper) ToModel(a *entity.Announcement) *model.Announcement {
	if a == nil {
		return nil
	}
	return &model.Announcement{
		ID:        a.Id,
		Audience:  string(a.Audience),
		Title:     a.Title,
		Message:   a.Message,
		CreatedAt: a.CreatedAt,
	}
}

func (m *AnnouncementMapper) ToEntities(announcements []*model.Announcement) []*entity.Announcement {
	entities := make([]*entity.Announcement, len(announcements))
	for i, a := range announcements {
		entities[i] = m.ToEntity(a)
	}
	return entities
}
