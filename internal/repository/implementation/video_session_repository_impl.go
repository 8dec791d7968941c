package implementation

import (
	"context"
	"errors"
	"time"

	"companion-counselling-be/internal/entity"
	"companion-counselling-be/internal/mapper"
	"companion-counselling-be/internal/model"
	"companion-counselling-be/internal/repository/contract"
	"companion-counselling-be/internal/repository/specification"

	"gorm.io/gorm"
)

type VideoSessionRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.VideoSessionMapper
}

func NewVideoSessionRepository(db *gorm.DB) contract.VideoSessionRepository {
	return &VideoSessionRepositoryImpl{
		db:     db,
		mapper: mapper.NewVideoSessionMapper(),
	}
}

func (r *VideoSessionRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *VideoSessionRepositoryImpl) Create(ctx context.Context, session *entity.VideoSession) error {
	m := r.mapper.ToModel(session)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*session = *r.mapper.ToEntity(m)
	return nil
}

func (r *VideoSessionRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.VideoSession, error) {
	var m model.VideoSession
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *VideoSessionRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.VideoSession, error) {
	var models []*model.VideoSession
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *VideoSessionRepositoryImpl) ExpireAllActiveForParticipant(ctx context.Context, participantId uint, at time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&model.VideoSession{}).
		Where("participant_id = ? AND status = ?", participantId, string(entity.VideoSessionStatusActive)).
		Updates(map[string]interface{}{
			"status":  string(entity.VideoSessionStatusExpired),
			"used_at": at,
		})
	return result.RowsAffected, result.Error
}

func (r *VideoSessionRepositoryImpl) ExpireMostRecentActive(ctx context.Context, participantId uint, at time.Time) (bool, error) {
	newest := r.db.Model(&model.VideoSession{}).
		Select("id").
		Where("participant_id = ? AND status = ?", participantId, string(entity.VideoSessionStatusActive)).
		Order("created_at DESC").
		Order("id DESC").
		Limit(1)

	// The outer status guard keeps a concurrent expire from touching a row twice.
	result := r.db.WithContext(ctx).
		Model(&model.VideoSession{}).
		Where("id = (?) AND status = ?", newest, string(entity.VideoSessionStatusActive)).
		Updates(map[string]interface{}{
			"status":  string(entity.VideoSessionStatusExpired),
			"used_at": at,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *VideoSessionRepositoryImpl) CompleteIfOwnedActive(ctx context.Context, id, consultantId uint, at time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&model.VideoSession{}).
		Where("id = ? AND consultant_id = ? AND status = ?", id, consultantId, string(entity.VideoSessionStatusActive)).
		Updates(map[string]interface{}{
			"status":  string(entity.VideoSessionStatusCompleted),
			"used_at": at,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *VideoSessionRepositoryImpl) ExpireActiveCreatedBefore(ctx context.Context, cutoff, at time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&model.VideoSession{}).
		Where("status = ? AND created_at < ?", string(entity.VideoSessionStatusActive), cutoff).
		Updates(map[string]interface{}{
			"status":  string(entity.VideoSessionStatusExpired),
			"used_at": at,
		})
	return result.RowsAffected, result.Error
}
