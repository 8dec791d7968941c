package service

import (
	"context"
	"sort"
	"time"

	"companion-counselling-be/internal/dto"
	"companion-counselling-be/internal/entity"
	"companion-counselling-be/internal/pkg/apperror"
	"companion-counselling-be/internal/pkg/logger"
	"companion-counselling-be/internal/repository/specification"
	"companion-counselling-be/internal/repository/unitofwork"
	"companion-counselling-be/pkg/events"
)

const (
	maxFetchedNotifications = 50
	maxFetchedAnnouncements = 10
)

type INotificationService interface {
	Fetch(ctx context.Context, recipient entity.Recipient) (*dto.FetchNotificationsResponse, error)
	Clear(ctx context.Context, recipient entity.Recipient) (*dto.ClearNotificationsResponse, error)
	CreateAnnouncement(ctx context.Context, actor entity.Actor, req *dto.CreateAnnouncementRequest) (*dto.CreateAnnouncementResponse, error)
	// Notify stores a notification produced outside the lifecycle, such as a
	// moderated forum post. It reports false when the event was already stored.
	Notify(ctx context.Context, eventType string, notification *entity.Notification) (bool, error)
}

type notificationService struct {
	uowFactory unitofwork.RepositoryFactory
	publisher  IPublisherService
	now        Clock
	logger     logger.ILogger
}

func NewNotificationService(
	uowFactory unitofwork.RepositoryFactory,
	publisher IPublisherService,
	clock Clock,
	log logger.ILogger,
) INotificationService {
	return &notificationService{
		uowFactory: uowFactory,
		publisher:  publisher,
		now:        clockOrDefault(clock),
		logger:     log,
	}
}

type feedItem struct {
	notification *entity.Notification
	announcement *entity.Announcement
	at           time.Time
}

// collect gathers what a fetch shows: unread rows plus announcements the
// recipient has no row for yet, newest first, capped.
func (s *notificationService) collect(ctx context.Context, uow unitofwork.UnitOfWork, recipient entity.Recipient) ([]feedItem, error) {
	notifications, err := uow.NotificationRepository().FindAll(ctx,
		specification.ForRecipient{Recipient: recipient},
		specification.ByNotificationStatus{Status: entity.NotificationUnread},
		specification.NewestFirst{},
		specification.Pagination{Limit: maxFetchedNotifications},
	)
	if err != nil {
		return nil, err
	}

	announcements, err := uow.AnnouncementRepository().FindUnmaterialized(ctx,
		recipient, entity.AudiencesFor(recipient.Type), maxFetchedAnnouncements)
	if err != nil {
		return nil, err
	}

	items := make([]feedItem, 0, len(notifications)+len(announcements))
	for _, n := range notifications {
		items = append(items, feedItem{notification: n, at: n.CreatedAt})
	}
	for _, a := range announcements {
		items = append(items, feedItem{announcement: a, at: a.CreatedAt})
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].at.After(items[j].at)
	})
	if len(items) > maxFetchedNotifications {
		items = items[:maxFetchedNotifications]
	}
	return items, nil
}

func snapshotOf(recipient entity.Recipient, items []feedItem, at time.Time) *entity.NotificationSnapshot {
	snap := &entity.NotificationSnapshot{Recipient: recipient, TakenAt: at}
	for _, item := range items {
		if item.notification != nil {
			snap.NotificationIds = append(snap.NotificationIds, item.notification.Id)
		} else {
			snap.AnnouncementIds = append(snap.AnnouncementIds, item.announcement.Id)
		}
	}
	return snap
}

func (s *notificationService) loadTemplateData(ctx context.Context, uow unitofwork.UnitOfWork, items []feedItem) (templateData, error) {
	data := templateData{
		bookings:      map[uint]*entity.Booking{},
		announcements: map[uint]*entity.Announcement{},
	}

	var bookingIds, announcementIds []uint
	for _, item := range items {
		n := item.notification
		if n == nil {
			continue
		}
		switch n.Type {
		case entity.NotificationSessionApproved, entity.NotificationBookingRequested:
			bookingIds = append(bookingIds, n.RelatedId)
		case entity.NotificationAnnouncement:
			announcementIds = append(announcementIds, n.RelatedId)
		}
	}

	if len(bookingIds) > 0 {
		bookings, err := uow.BookingRepository().FindAll(ctx, specification.ByIDs{IDs: bookingIds})
		if err != nil {
			return data, err
		}
		for _, b := range bookings {
			data.bookings[b.Id] = b
		}
	}
	if len(announcementIds) > 0 {
		announcements, err := uow.AnnouncementRepository().FindAll(ctx, specification.ByIDs{IDs: announcementIds})
		if err != nil {
			return data, err
		}
		for _, a := range announcements {
			data.announcements[a.Id] = a
		}
	}
	return data, nil
}

func (s *notificationService) Fetch(ctx context.Context, recipient entity.Recipient) (*dto.FetchNotificationsResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	items, err := s.collect(ctx, uow, recipient)
	if err != nil {
		return nil, apperror.Persistence(err)
	}
	data, err := s.loadTemplateData(ctx, uow, items)
	if err != nil {
		return nil, apperror.Persistence(err)
	}

	result := make([]dto.NotificationItem, 0, len(items))
	for _, item := range items {
		var message string
		if item.notification != nil {
			message = renderNotification(item.notification, data)
		} else {
			message = renderAnnouncement(item.announcement)
		}
		result = append(result, dto.NotificationItem{
			Message:   message,
			Timestamp: formatTimestamp(item.at),
		})
	}

	// Stored in the database so a clear served by any instance sees it.
	if err := uow.NotificationSnapshotRepository().Save(ctx, snapshotOf(recipient, items, s.now())); err != nil {
		return nil, apperror.Persistence(err)
	}

	return &dto.FetchNotificationsResponse{Notifications: result}, nil
}

func (s *notificationService) Clear(ctx context.Context, recipient entity.Recipient) (*dto.ClearNotificationsResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	now := s.now()

	if err := uow.Begin(ctx); err != nil {
		return nil, apperror.Persistence(err)
	}
	defer uow.Rollback()

	snap, err := uow.NotificationSnapshotRepository().FindByRecipient(ctx, recipient)
	if err != nil {
		return nil, apperror.Persistence(err)
	}
	if snap == nil {
		items, err := s.collect(ctx, uow, recipient)
		if err != nil {
			return nil, apperror.Persistence(err)
		}
		snap = snapshotOf(recipient, items, now)
	}

	marked, err := uow.NotificationRepository().MarkRead(ctx, recipient, snap.NotificationIds, now)
	if err != nil {
		return nil, apperror.Persistence(err)
	}

	rows := make([]*entity.Notification, 0, len(snap.AnnouncementIds))
	for _, id := range snap.AnnouncementIds {
		readAt := now
		rows = append(rows, &entity.Notification{
			Recipient: recipient,
			Type:      entity.NotificationAnnouncement,
			RelatedId: id,
			Status:    entity.NotificationRead,
			CreatedAt: now,
			ReadAt:    &readAt,
		})
	}
	materialized, err := uow.NotificationRepository().CreateBulk(ctx, rows)
	if err != nil {
		return nil, apperror.Persistence(err)
	}

	if err := uow.NotificationSnapshotRepository().DeleteByRecipient(ctx, recipient); err != nil {
		return nil, apperror.Persistence(err)
	}

	if err := uow.Commit(); err != nil {
		return nil, apperror.Persistence(err)
	}

	return &dto.ClearNotificationsResponse{Cleared: marked + materialized}, nil
}

func (s *notificationService) CreateAnnouncement(ctx context.Context, actor entity.Actor, req *dto.CreateAnnouncementRequest) (*dto.CreateAnnouncementResponse, error) {
	if err := requireRole(actor, entity.RoleAdmin); err != nil {
		return nil, err
	}

	audience := entity.Audience(req.Audience)
	var classes []entity.RecipientType
	switch audience {
	case entity.AudienceUser:
		classes = []entity.RecipientType{entity.RecipientUser}
	case entity.AudienceConsultant:
		classes = []entity.RecipientType{entity.RecipientConsultant}
	case entity.AudienceBoth:
		classes = []entity.RecipientType{entity.RecipientUser, entity.RecipientConsultant}
	default:
		return nil, apperror.ValidationFields(map[string]string{"audience": "oneof"})
	}
	if req.Title == "" || req.Message == "" {
		return nil, apperror.Validation("title and message are required")
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	now := s.now()

	if err := uow.Begin(ctx); err != nil {
		return nil, apperror.Persistence(err)
	}
	defer uow.Rollback()

	announcement := entity.Announcement{
		Audience:  audience,
		Title:     req.Title,
		Message:   req.Message,
		CreatedAt: now,
	}
	if err := uow.AnnouncementRepository().Create(ctx, &announcement); err != nil {
		return nil, apperror.Persistence(err)
	}

	var rows []*entity.Notification
	for _, class := range classes {
		var ids []uint
		var err error
		if class == entity.RecipientUser {
			ids, err = uow.DirectoryRepository().ListUserIds(ctx)
		} else {
			ids, err = uow.DirectoryRepository().ListConsultantIds(ctx)
		}
		if err != nil {
			return nil, apperror.Persistence(err)
		}
		for _, id := range ids {
			rows = append(rows, &entity.Notification{
				Recipient: entity.Recipient{Type: class, Id: id},
				Type:      entity.NotificationAnnouncement,
				RelatedId: announcement.Id,
				Status:    entity.NotificationUnread,
				CreatedAt: now,
			})
		}
	}

	fannedOut, err := uow.NotificationRepository().CreateBulk(ctx, rows)
	if err != nil {
		return nil, apperror.Persistence(err)
	}

	if err := uow.Commit(); err != nil {
		return nil, apperror.Persistence(err)
	}

	s.logger.Info("NotificationService", "Announcement published", map[string]interface{}{
		"announcement_id": announcement.Id,
		"audience":        string(audience),
		"recipients":      fannedOut,
	})

	if s.publisher != nil {
		classNames := make([]interface{}, len(classes))
		for i, c := range classes {
			classNames[i] = string(c)
		}
		evt := events.New(events.AnnouncementPublished, map[string]interface{}{
			"announcement_id": announcement.Id,
			"audience":        string(audience),
			"classes":         classNames,
			"message":         renderAnnouncement(&announcement),
		}, now)
		if err := s.publisher.Publish(ctx, evt); err != nil {
			s.logger.Warn("NotificationService", "Failed to publish event", map[string]interface{}{
				"type":  evt.Type,
				"error": err.Error(),
			})
		}
	}

	return &dto.CreateAnnouncementResponse{AnnouncementId: announcement.Id, Recipients: fannedOut}, nil
}

func (s *notificationService) Notify(ctx context.Context, eventType string, notification *entity.Notification) (bool, error) {
	if notification.Recipient.Id == 0 || notification.Type == "" {
		return false, apperror.Validation("notification needs a recipient and a type")
	}
	if notification.Status == "" {
		notification.Status = entity.NotificationUnread
	}
	if notification.CreatedAt.IsZero() {
		notification.CreatedAt = s.now()
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	created, err := uow.NotificationRepository().Create(ctx, notification)
	if err != nil {
		return false, apperror.Persistence(err)
	}
	if !created || s.publisher == nil {
		return created, nil
	}

	evt := notificationEvent(eventType, notification, renderNotification(notification, templateData{}))
	evt.Data["origin"] = originExternal
	if err := s.publisher.Publish(ctx, evt); err != nil {
		s.logger.Warn("NotificationService", "Failed to publish event", map[string]interface{}{
			"type":  eventType,
			"error": err.Error(),
		})
	}
	return true, nil
}
