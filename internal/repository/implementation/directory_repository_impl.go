package implementation

import (
	"context"
	"errors"

	"companion-counselling-be/internal/entity"
	"companion-counselling-be/internal/mapper"
	"companion-counselling-be/internal/model"
	"companion-counselling-be/internal/repository/contract"

	"gorm.io/gorm"
)

type DirectoryRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ConsultantMapper
}

func NewDirectoryRepository(db *gorm.DB) contract.DirectoryRepository {
	return &DirectoryRepositoryImpl{
		db:     db,
		mapper: mapper.NewConsultantMapper(),
	}
}

func (r *DirectoryRepositoryImpl) ListUserIds(ctx context.Context) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).Model(&model.User{}).Order("id ASC").Pluck("id", &ids).Error
	return ids, err
}

func (r *DirectoryRepositoryImpl) ListConsultantIds(ctx context.Context) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).Model(&model.Consultant{}).Order("id ASC").Pluck("id", &ids).Error
	return ids, err
}

func (r *DirectoryRepositoryImpl) FindConsultant(ctx context.Context, id uint) (*entity.Consultant, error) {
	var m model.Consultant
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}
