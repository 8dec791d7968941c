package service

import (
	"context"

	"companion-counselling-be/internal/entity"
	"companion-counselling-be/internal/pkg/apperror"
	"companion-counselling-be/internal/pkg/logger"
	"companion-counselling-be/pkg/events"
)

// IIngestService turns events published by other services into notifications.
type IIngestService interface {
	HandlePostApproved(ctx context.Context, event events.BaseEvent) error
}

type ingestService struct {
	notifications INotificationService
	logger        logger.ILogger
}

func NewIngestService(notifications INotificationService, log logger.ILogger) IIngestService {
	return &ingestService{notifications: notifications, logger: log}
}

// HandlePostApproved expects user_id and post_id, and optionally title.
// Malformed events are dropped; only persistence errors ask for redelivery.
func (s *ingestService) HandlePostApproved(ctx context.Context, event events.BaseEvent) error {
	userId, okUser := event.Uint("user_id")
	postId, okPost := event.Uint("post_id")
	if !okUser || !okPost || userId == 0 || postId == 0 {
		s.logger.Warn("IngestService", "Dropping malformed POST_APPROVED event", map[string]interface{}{"data": event.Data})
		return nil
	}

	var metadata map[string]interface{}
	if title := event.String("title"); title != "" {
		metadata = map[string]interface{}{"title": title}
	}

	notification := &entity.Notification{
		Recipient: entity.Recipient{Type: entity.RecipientUser, Id: userId},
		Type:      entity.NotificationPostApproved,
		RelatedId: postId,
		Metadata:  metadata,
	}
	if !event.Timestamp().IsZero() {
		notification.CreatedAt = event.Timestamp().UTC()
	}

	if _, err := s.notifications.Notify(ctx, events.PostApproved, notification); err != nil {
		if apperror.KindOf(err) == apperror.KindValidation {
			return nil
		}
		return err
	}
	return nil
}
