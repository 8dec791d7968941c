package contract

import (
	"context"

	"companion-counselling-be/internal/entity"
	"companion-counselling-be/internal/repository/specification"
)

type AnnouncementRepository interface {
	Create(ctx context.Context, announcement *entity.Announcement) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Announcement, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Announcement, error)
	// FindUnmaterialized returns announcements for the audiences that have no
	// notification row for recipient yet, newest first.
	FindUnmaterialized(ctx context.Context, recipient entity.Recipient, audiences []entity.Audience, limit int) ([]*entity.Announcement, error)
}
