package implementation

import (
	"context"
	"time"

	"companion-counselling-be/internal/entity"
	"companion-counselling-be/internal/mapper"
	"companion-counselling-be/internal/model"
	"companion-counselling-be/internal/repository/contract"
	"companion-counselling-be/internal/repository/specification"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const notificationBatchSize = 500

type NotificationRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.NotificationMapper
}

func NewNotificationRepository(db *gorm.DB) contract.NotificationRepository {
	return &NotificationRepositoryImpl{
		db:     db,
		mapper: mapper.NewNotificationMapper(),
	}
}

func (r *NotificationRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *NotificationRepositoryImpl) Create(ctx context.Context, notification *entity.Notification) (bool, error) {
	m := r.mapper.ToModel(notification)
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(m)
	if result.Error != nil {
		return false, result.Error
	}
	if result.RowsAffected == 0 {
		return false, nil
	}
	*notification = *r.mapper.ToEntity(m)
	return true, nil
}

func (r *NotificationRepositoryImpl) CreateBulk(ctx context.Context, notifications []*entity.Notification) (int64, error) {
	if len(notifications) == 0 {
		return 0, nil
	}
	models := r.mapper.ToModels(notifications)
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		CreateInBatches(models, notificationBatchSize)
	return result.RowsAffected, result.Error
}

func (r *NotificationRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Notification, error) {
	var models []*model.Notification
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *NotificationRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.Notification{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *NotificationRepositoryImpl) MarkRead(ctx context.Context, recipient entity.Recipient, ids []uint, at time.Time) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	result := r.db.WithContext(ctx).
		Model(&model.Notification{}).
		Where("recipient_type = ? AND recipient_id = ?", string(recipient.Type), recipient.Id).
		Where("id IN ? AND status = ?", ids, string(entity.NotificationUnread)).
		Updates(map[string]interface{}{
			"status":  string(entity.NotificationRead),
			"read_at": at,
		})
	return result.RowsAffected, result.Error
}
