package contract

import (
	"context"
	"time"

	"companion-counselling-be/internal/entity"
	"companion-counselling-be/internal/repository/specification"
)

type NotificationRepository interface {
	// Create inserts the notification unless its dedup key already exists.
	// It reports whether a row was written.
	Create(ctx context.Context, notification *entity.Notification) (bool, error)
	CreateBulk(ctx context.Context, notifications []*entity.Notification) (int64, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Notification, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	// MarkRead flips the listed unread notifications of recipient to read.
	MarkRead(ctx context.Context, recipient entity.Recipient, ids []uint, at time.Time) (int64, error)
}
