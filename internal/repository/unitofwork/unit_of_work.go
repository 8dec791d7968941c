package unitofwork

import (
	"context"

	"companion-counselling-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	BookingRepository() contract.BookingRepository
	VideoSessionRepository() contract.VideoSessionRepository
	NotificationRepository() contract.NotificationRepository
	AnnouncementRepository() contract.AnnouncementRepository
	DirectoryRepository() contract.DirectoryRepository
	NotificationSnapshotRepository() contract.NotificationSnapshotRepository
}
