package mapper

import (
	"companion-counselling-be/internal/entity"
	"companion-counselling-be/internal/model"
)

type ConsultantMapper struct{}

func NewConsultantMapper() *ConsultantMapper {
	return &ConsultantMapper{}
}

func (m *ConsultantMapper) ToEntity(c *model.Consultant) *entity.Consultant {
	if c == nil {
		return nil
	}
	return &entity.Consultant{
		Id:        c.ID,
		FirstName: c.FirstName,
		LastName:  c.LastName,
		Email:     c.Email,
	}
}
