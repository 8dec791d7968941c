package specification

import (
	"companion-counselling-be/internal/entity"

	"gorm.io/gorm"
)

type ForRecipient struct {
	Recipient entity.Recipient
}

func (s ForRecipient) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("recipient_type = ? AND recipient_id = ?", string(s.Recipient.Type), s.Recipient.Id)
}

type ByNotificationStatus struct {
	Status entity.NotificationStatus
}

func (s ByNotificationStatus) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("status = ?", string(s.Status))
}

type ForAudiences struct {
	Audiences []entity.Audience
}

func (s ForAudiences) Apply(db *gorm.DB) *gorm.DB {
	values := make([]string, len(s.Audiences))
	for i, a := range s.Audiences {
		values[i] = string(a)
	}
	return db.Where("audience IN ?", values)
}
