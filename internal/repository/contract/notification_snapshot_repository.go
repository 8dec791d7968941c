package contract

import (
	"context"

	"companion-counselling-be/internal/entity"
)

type NotificationSnapshotRepository interface {
	// Save replaces the recipient's snapshot.
	Save(ctx context.Context, snapshot *entity.NotificationSnapshot) error
	// FindByRecipient returns nil when the recipient has no snapshot.
	FindByRecipient(ctx context.Context, recipient entity.Recipient) (*entity.NotificationSnapshot, error)
	DeleteByRecipient(ctx context.Context, recipient entity.Recipient) error
}
