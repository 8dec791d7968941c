package mapper

import (
	"companion-counselling-be/internal/entity"
	"companion-counselling-be/internal/model"
)

type BookingMapper struct{}

func NewBookingMapper() *BookingMapper {
	return &BookingMapper{}
}

func (m *BookingMapper) ToEntity(b *model.Booking) *entity.Booking {
	if b == nil {
		return nil
	}
	return &entity.Booking{
		Id:                    b.ID,
		RequesterId:           b.RequesterID,
		RequestedConsultantId: b.RequestedConsultantID,
		ConsultantId:          b.ConsultantID,
		ScheduledAt:           b.ScheduledAt,
		Status:                entity.BookingStatus(b.Status),
		CreatedAt:             b.CreatedAt,
		AcceptedAt:            b.AcceptedAt,
		CompletedAt:           b.CompletedAt,
	}
}

func (m *BookingMapper) ToModel(b *entity.Booking) *model.Booking {
	if b == nil {
		return nil
	}
	return &model.Booking{
		ID:                    b.Id,
		RequesterID:           b.RequesterId,
		RequestedConsultantID: b.RequestedConsultantId,
		ConsultantID:          b.ConsultantId,
		ScheduledAt:           b.ScheduledAt,
		Status:                string(b.Status),
		CreatedAt:             b.CreatedAt,
		AcceptedAt:            b.AcceptedAt,
		CompletedAt:           b.CompletedAt,
	}
}

func (m *BookingMapper) ToEntities(bookings []*model.Booking) []*entity.Booking {
	entities := make([]*entity.Booking, len(bookings))
	for i, b := range bookings {
		entities[i] = m.ToEntity(b)
	}
	return entities
}
