package mapper

import (
	"encoding/json"

	"companion-counselling-be/internal/entity"
	"companion-counselling-be/internal/model"

	"gorm.io/datatypes"
)

type NotificationMapper struct{}

func NewNotificationMapper() *NotificationMapper {
	return &NotificationMapper{}
}

func (m *NotificationMapper) ToEntity(n *model.Notification) *entity.Notification {
	if n == nil {
		return nil
	}

	// Metadata is auxiliary; a corrupt blob should not hide the notification.
	var meta map[string]interface{}
	if len(n.Metadata) > 0 {
		_ = json.Unmarshal(n.Metadata, &meta)
	}

	return &entity.Notification{
		Id:        n.ID,
		Recipient: entity.Recipient{Type: entity.RecipientType(n.RecipientType), Id: n.RecipientID},
		Type:      entity.NotificationType(n.Type),
		RelatedId: n.RelatedID,
		Status:    entity.NotificationStatus(n.Status),
		Metadata:  meta,
		CreatedAt: n.CreatedAt,
		ReadAt:    n.ReadAt,
	}
}

func (m *NotificationMapper) ToModel(n *entity.Notification) *model.Notification {
	if n == nil {
		return nil
	}

	var meta datatypes.JSON
	if len(n.Metadata) > 0 {
		if raw, err := json.Marshal(n.Metadata); err == nil {
			meta = datatypes.JSON(raw)
		}
	}

	return &model.Notification{
		ID:            n.Id,
		RecipientType: string(n.Recipient.Type),
		RecipientID:   n.Recipient.Id,
		Type:          string(n.Type),
		RelatedID:     n.RelatedId,
		Status:        string(n.Status),
		Metadata:      meta,
		CreatedAt:     n.CreatedAt,
		ReadAt:        n.ReadAt,
	}
}

func (m *NotificationMapper) ToEntities(notifications []*model.Notification) []*entity.Notification {
	entities := make([]*entity.Notification, len(notifications))
	for i, n := range notifications {
		entities[i] = m.ToEntity(n)
	}
	return entities
}

func (m *NotificationMapper) ToModels(notifications []*entity.Notification) []*model.Notification {
	models := make([]*model.Notification, len(notifications))
	for i, n := range notifications {
		models[i] = m.ToModel(n)
	}
	return models
}
