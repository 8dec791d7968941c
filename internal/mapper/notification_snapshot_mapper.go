package mapper

import (
	"encoding/json"

	"companion-counselling-be/internal/entity"
	"companion-counselling-be/internal/model"

	"gorm.io/datatypes"
)

type NotificationSnapshotMapper struct{}

func NewNotificationSnapshotMapper() *NotificationSnapshotMapper {
	return &NotificationSnapshotMapper{}
}

func (m *NotificationSnapshotMapper) ToEntity(s *model.NotificationSnapshot) (*entity.NotificationSnapshot, error) {
	if s == nil {
		return nil, nil
	}

	snapshot := &entity.NotificationSnapshot{
		Recipient: entity.Recipient{Type: entity.RecipientType(s.RecipientType), Id: s.RecipientID},
		TakenAt:   s.TakenAt,
	}
	if err := decodeIds(s.NotificationIDs, &snapshot.NotificationIds); err != nil {
		return nil, err
	}
	if err := decodeIds(s.AnnouncementIDs, &snapshot.AnnouncementIds); err != nil {
		return nil, err
	}
	return snapshot, nil
}

func (m *NotificationSnapshotMapper) ToModel(s *entity.NotificationSnapshot) (*model.NotificationSnapshot, error) {
	if s == nil {
		return nil, nil
	}

	notificationIds, err := encodeIds(s.NotificationIds)
	if err != nil {
		return nil, err
	}
	announcementIds, err := encodeIds(s.AnnouncementIds)
	if err != nil {
		return nil, err
	}

	return &model.NotificationSnapshot{
		RecipientType:   string(s.Recipient.Type),
		RecipientID:     s.Recipient.Id,
		NotificationIDs: notificationIds,
		AnnouncementIDs: announcementIds,
		TakenAt:         s.TakenAt,
	}, nil
}

func encodeIds(ids []uint) (datatypes.JSON, error) {
	if ids == nil {
		ids = []uint{}
	}
	raw, err := json.Marshal(ids)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(raw), nil
}

func decodeIds(raw datatypes.JSON, ids *[]uint) error {
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, ids)
}
