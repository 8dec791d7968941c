package implementation

import (
	"context"
	"errors"

	"companion-counselling-be/internal/entity"
	"companion-counselling-be/internal/mapper"
	"companion-counselling-be/internal/model"
	"companion-counselling-be/internal/repository/contract"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type NotificationSnapshotRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.NotificationSnapshotMapper
}

func NewNotificationSnapshotRepository(db *gorm.DB) contract.NotificationSnapshotRepository {
	return &NotificationSnapshotRepositoryImpl{
		db:     db,
		mapper: mapper.NewNotificationSnapshotMapper(),
	}
}

func (r *NotificationSnapshotRepositoryImpl) Save(ctx context.Context, snapshot *entity.NotificationSnapshot) error {
	m, err := r.mapper.ToModel(snapshot)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "recipient_type"}, {Name: "recipient_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"notification_ids", "announcement_ids", "taken_at"}),
		}).
		Create(m).Error
}

func (r *NotificationSnapshotRepositoryImpl) FindByRecipient(ctx context.Context, recipient entity.Recipient) (*entity.NotificationSnapshot, error) {
	var m model.NotificationSnapshot
	err := r.db.WithContext(ctx).
		Where("recipient_type = ? AND recipient_id = ?", string(recipient.Type), recipient.Id).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m)
}

func (r *NotificationSnapshotRepositoryImpl) DeleteByRecipient(ctx context.Context, recipient entity.Recipient) error {
	return r.db.WithContext(ctx).
		Where("recipient_type = ? AND recipient_id = ?", string(recipient.Type), recipient.Id).
		Delete(&model.NotificationSnapshot{}).Error
}
