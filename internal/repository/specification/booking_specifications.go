package specification

import (
	"companion-counselling-be/internal/entity"

	"gorm.io/gorm"
)

type ByBookingStatus struct {
	Status entity.BookingStatus
}

func (s ByBookingStatus) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("status = ?", string(s.Status))
}

type ByRequester struct {
	RequesterID uint
}

func (s ByRequester) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("requester_id = ?", s.RequesterID)
}

type AssignedTo struct {
	ConsultantID uint
}

func (s AssignedTo) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("consultant_id = ?", s.ConsultantID)
}

// OpenToConsultant matches requests with no preference or a preference for ConsultantID.
type OpenToConsultant struct {
	ConsultantID uint
}

func (s OpenToConsultant) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("(requested_consultant_id IS NULL OR requested_consultant_id = ?)", s.ConsultantID)
}
