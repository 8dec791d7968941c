package contract

import (
	"context"
	"time"

	"companion-counselling-be/internal/entity"
	"companion-counselling-be/internal/repository/specification"
)

type BookingRepository interface {
	Create(ctx context.Context, booking *entity.Booking) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Booking, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Booking, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)

	// AcceptIfPending assigns consultantId only while the row is still pending.
	// It reports false when another caller got there first or the row is gone.
	AcceptIfPending(ctx context.Context, id, consultantId uint, at time.Time) (bool, error)
	// CompleteIfAccepted moves an accepted booking owned by consultantId to completed.
	CompleteIfAccepted(ctx context.Context, id, consultantId uint, at time.Time) (bool, error)
}
