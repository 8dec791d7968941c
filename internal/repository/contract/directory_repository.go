package contract

import (
	"context"

	"companion-counselling-be/internal/entity"
)

// DirectoryRepository reads the account tables owned by the auth service.
type DirectoryRepository interface {
	ListUserIds(ctx context.Context) ([]uint, error)
	ListConsultantIds(ctx context.Context) ([]uint, error)
	FindConsultant(ctx context.Context, id uint) (*entity.Consultant, error)
}
