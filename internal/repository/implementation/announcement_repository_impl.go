package implementation

import (
	"context"
	"errors"

	"companion-counselling-be/internal/entity"
	"companion-counselling-be/internal/mapper"
	"companion-counselling-be/internal/model"
	"companion-counselling-be/internal/repository/contract"
	"companion-counselling-be/internal/repository/scope"
	"companion-counselling-be/internal/repository/specification"

	"gorm.io/gorm"
)

type AnnouncementRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.AnnouncementMapper
}

func NewAnnouncementRepository(db *gorm.DB) contract.AnnouncementRepository {
	return &AnnouncementRepositoryImpl{
		db:     db,
		mapper: mapper.NewAnnouncementMapper(),
	}
}

func (r *AnnouncementRepositoryImpl) Create(ctx context.Context, announcement *entity.Announcement) error {
	m := r.mapper.ToModel(announcement)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*announcement = *r.mapper.ToEntity(m)
	return nil
}

func (r *AnnouncementRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Announcement, error) {
	var m model.Announcement
	query := r.db.WithContext(ctx)
	for _, spec := range specs {
		query = spec.Apply(query)
	}
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *AnnouncementRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Announcement, error) {
	var models []*model.Announcement
	query := r.db.WithContext(ctx)
	for _, spec := range specs {
		query = spec.Apply(query)
	}
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *AnnouncementRepositoryImpl) FindUnmaterialized(ctx context.Context, recipient entity.Recipient, audiences []entity.Audience, limit int) ([]*entity.Announcement, error) {
	materialized := r.db.Model(&model.Notification{}).
		Select("related_id").
		Where("recipient_type = ? AND recipient_id = ? AND type = ?",
			string(recipient.Type), recipient.Id, string(entity.NotificationAnnouncement))

	var models []*model.Announcement
	query := specification.ForAudiences{Audiences: audiences}.Apply(r.db.WithContext(ctx))
	err := query.
		Where("id NOT IN (?)", materialized).
		Scopes(scope.OrderByNewest).
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}
