package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"companion-counselling-be/internal/dto"
	"companion-counselling-be/internal/entity"
	"companion-counselling-be/internal/pkg/apperror"
	"companion-counselling-be/internal/pkg/logger"
	"companion-counselling-be/internal/repository/specification"
	"companion-counselling-be/internal/repository/unitofwork"
	"companion-counselling-be/pkg/events"
	"companion-counselling-be/pkg/videotoken"

	"gorm.io/gorm"
)

const listLimit = 100

type ILifecycleService interface {
	CreateBooking(ctx context.Context, actor entity.Actor, req *dto.CreateBookingRequest) (*dto.CreateBookingResponse, error)
	AcceptBooking(ctx context.Context, actor entity.Actor, bookingId uint) error
	CompleteBooking(ctx context.Context, actor entity.Actor, bookingId uint) error
	ListPendingBookings(ctx context.Context, actor entity.Actor) ([]*dto.BookingResponse, error)
	ListMyBookings(ctx context.Context, actor entity.Actor) ([]*dto.BookingResponse, error)

	ProvisionVideoRoom(ctx context.Context, actor entity.Actor, req *dto.ProvisionSessionRequest) (*dto.ProvisionSessionResponse, error)
	IssueSessionToken(ctx context.Context, actor entity.Actor, req *dto.SessionTokenRequest) (*dto.SessionTokenResponse, error)
	EndSession(ctx context.Context, actor entity.Actor, sessionId uint) error
	ExpireMostRecentActiveSession(ctx context.Context, actor entity.Actor) (*dto.ExpireSessionResponse, error)
	ActiveSession(ctx context.Context, actor entity.Actor) (*dto.VideoSessionResponse, error)
	SessionHistory(ctx context.Context, actor entity.Actor) ([]*dto.VideoSessionResponse, error)
}

// TokenIssuer is satisfied by *videotoken.Issuer.
type TokenIssuer interface {
	AppID() string
	Issue(roomName, participantID string, role videotoken.Role) (string, time.Time, error)
}

type lifecycleService struct {
	uowFactory unitofwork.RepositoryFactory
	issuer     TokenIssuer
	rooms      RoomIDGenerator
	publisher  IPublisherService
	now        Clock
	logger     logger.ILogger
}

func NewLifecycleService(
	uowFactory unitofwork.RepositoryFactory,
	issuer TokenIssuer,
	rooms RoomIDGenerator,
	publisher IPublisherService,
	clock Clock,
	log logger.ILogger,
) ILifecycleService {
	if rooms == nil {
		rooms = NewRandomRoomIDGenerator()
	}
	return &lifecycleService{
		uowFactory: uowFactory,
		issuer:     issuer,
		rooms:      rooms,
		publisher:  publisher,
		now:        clockOrDefault(clock),
		logger:     log,
	}
}

func requireRole(actor entity.Actor, role entity.Role) error {
	if actor.ID == 0 || actor.Role != role {
		return apperror.Authorization(fmt.Sprintf("only a %s can do this", role))
	}
	return nil
}

// publish runs after commit. Realtime delivery is best effort; the stored
// notification is the source of truth.
func (s *lifecycleService) publish(ctx context.Context, event events.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("LifecycleService", "Failed to publish event", map[string]interface{}{
			"type":  event.EventType(),
			"error": err.Error(),
		})
	}
}

func parseSchedule(date, clock string) (time.Time, error) {
	fields := map[string]string{}
	if date == "" {
		fields["preferredDate"] = "required"
	}
	if clock == "" {
		fields["preferredTime"] = "required"
	}
	if len(fields) > 0 {
		return time.Time{}, apperror.ValidationFields(fields)
	}

	at, err := time.ParseInLocation("2006-01-02 15:04", date+" "+clock, time.UTC)
	if err != nil {
		return time.Time{}, apperror.Validation("preferred date must be YYYY-MM-DD and time HH:MM")
	}
	return at, nil
}

func (s *lifecycleService) CreateBooking(ctx context.Context, actor entity.Actor, req *dto.CreateBookingRequest) (*dto.CreateBookingResponse, error) {
	if err := requireRole(actor, entity.RoleUser); err != nil {
		return nil, err
	}
	if req.ConsultantId == 0 {
		return nil, apperror.ValidationFields(map[string]string{"consultantId": "required"})
	}
	scheduledAt, err := parseSchedule(req.PreferredDate, req.PreferredTime)
	if err != nil {
		return nil, err
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)

	consultant, err := uow.DirectoryRepository().FindConsultant(ctx, req.ConsultantId)
	if err != nil {
		return nil, apperror.Persistence(err)
	}
	if consultant == nil {
		return nil, apperror.ValidationFields(map[string]string{"consultantId": "unknown consultant"})
	}

	now := s.now()
	consultantId := req.ConsultantId
	booking := entity.Booking{
		RequesterId:           actor.ID,
		RequestedConsultantId: &consultantId,
		ScheduledAt:           scheduledAt,
		Status:                entity.BookingStatusPending,
		CreatedAt:             now,
	}

	if err := uow.Begin(ctx); err != nil {
		return nil, apperror.Persistence(err)
	}
	defer uow.Rollback()

	if err := uow.BookingRepository().Create(ctx, &booking); err != nil {
		return nil, apperror.Persistence(err)
	}

	notification := &entity.Notification{
		Recipient: entity.Recipient{Type: entity.RecipientConsultant, Id: consultantId},
		Type:      entity.NotificationBookingRequested,
		RelatedId: booking.Id,
		Status:    entity.NotificationUnread,
		Metadata:  map[string]interface{}{"scheduled_at": scheduledAt.Format(time.RFC3339)},
		CreatedAt: now,
	}
	created, err := uow.NotificationRepository().Create(ctx, notification)
	if err != nil {
		return nil, apperror.Persistence(err)
	}

	if err := uow.Commit(); err != nil {
		return nil, apperror.Persistence(err)
	}

	s.logger.Info("LifecycleService", "Booking requested", map[string]interface{}{
		"booking_id":    booking.Id,
		"requester_id":  actor.ID,
		"consultant_id": consultantId,
	})

	if created {
		message := renderNotification(notification, templateData{bookings: map[uint]*entity.Booking{booking.Id: &booking}})
		evt := notificationEvent(events.BookingRequested, notification, message)
		evt.Data["booking_id"] = booking.Id
		evt.Data["scheduled_at"] = scheduledAt.Format(time.RFC3339)
		s.publish(ctx, evt)
	}

	return &dto.CreateBookingResponse{BookingId: booking.Id}, nil
}

func (s *lifecycleService) AcceptBooking(ctx context.Context, actor entity.Actor, bookingId uint) error {
	if err := requireRole(actor, entity.RoleConsultant); err != nil {
		return err
	}

	// The requester's preference only orders the pending queue; any consultant may take the booking.
	uow := s.uowFactory.NewUnitOfWork(ctx)
	now := s.now()

	if err := uow.Begin(ctx); err != nil {
		return apperror.Persistence(err)
	}
	defer uow.Rollback()

	accepted, err := uow.BookingRepository().AcceptIfPending(ctx, bookingId, actor.ID, now)
	if err != nil {
		return apperror.Persistence(err)
	}
	if !accepted {
		return apperror.AlreadyHandled("booking has already been handled")
	}

	booking, err := uow.BookingRepository().FindOne(ctx, specification.ByID{ID: bookingId})
	if err != nil {
		return apperror.Persistence(err)
	}
	if booking == nil {
		return apperror.Persistence(errors.New("accepted booking vanished"))
	}

	notification := &entity.Notification{
		Recipient: entity.Recipient{Type: entity.RecipientUser, Id: booking.RequesterId},
		Type:      entity.NotificationSessionApproved,
		RelatedId: booking.Id,
		Status:    entity.NotificationUnread,
		Metadata:  map[string]interface{}{"consultant_id": actor.ID},
		CreatedAt: now,
	}
	created, err := uow.NotificationRepository().Create(ctx, notification)
	if err != nil {
		return apperror.Persistence(err)
	}

	if err := uow.Commit(); err != nil {
		return apperror.Persistence(err)
	}

	s.logger.Info("LifecycleService", "Booking accepted", map[string]interface{}{
		"booking_id":    booking.Id,
		"consultant_id": actor.ID,
	})

	if created {
		message := renderNotification(notification, templateData{bookings: map[uint]*entity.Booking{booking.Id: booking}})
		evt := notificationEvent(events.SessionApproved, notification, message)
		evt.Data["booking_id"] = booking.Id
		s.publish(ctx, evt)
	}
	return nil
}

func (s *lifecycleService) CompleteBooking(ctx context.Context, actor entity.Actor, bookingId uint) error {
	if err := requireRole(actor, entity.RoleConsultant); err != nil {
		return err
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	done, err := uow.BookingRepository().CompleteIfAccepted(ctx, bookingId, actor.ID, s.now())
	if err != nil {
		return apperror.Persistence(err)
	}
	if done {
		return nil
	}

	booking, err := uow.BookingRepository().FindOne(ctx, specification.ByID{ID: bookingId})
	if err != nil {
		return apperror.Persistence(err)
	}
	switch {
	case booking == nil:
		return apperror.NotFound("booking not found")
	case booking.ConsultantId == nil:
		return apperror.Validation("booking has not been accepted")
	case *booking.ConsultantId != actor.ID:
		return apperror.Authorization("booking belongs to another consultant")
	default:
		return apperror.AlreadyHandled("booking has already been completed")
	}
}

func (s *lifecycleService) ListPendingBookings(ctx context.Context, actor entity.Actor) ([]*dto.BookingResponse, error) {
	if err := requireRole(actor, entity.RoleConsultant); err != nil {
		return nil, err
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	bookings, err := uow.BookingRepository().FindAll(ctx,
		specification.ByBookingStatus{Status: entity.BookingStatusPending},
		specification.OpenToConsultant{ConsultantID: actor.ID},
		specification.NewestFirst{},
		specification.Pagination{Limit: listLimit},
	)
	if err != nil {
		return nil, apperror.Persistence(err)
	}
	return toBookingResponses(bookings), nil
}

func (s *lifecycleService) ListMyBookings(ctx context.Context, actor entity.Actor) ([]*dto.BookingResponse, error) {
	var owner specification.Specification
	switch actor.Role {
	case entity.RoleUser:
		owner = specification.ByRequester{RequesterID: actor.ID}
	case entity.RoleConsultant:
		owner = specification.AssignedTo{ConsultantID: actor.ID}
	default:
		return nil, apperror.Authorization("only users and consultants have bookings")
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	bookings, err := uow.BookingRepository().FindAll(ctx,
		owner,
		specification.NewestFirst{},
		specification.Pagination{Limit: listLimit},
	)
	if err != nil {
		return nil, apperror.Persistence(err)
	}
	return toBookingResponses(bookings), nil
}

func (s *lifecycleService) ProvisionVideoRoom(ctx context.Context, actor entity.Actor, req *dto.ProvisionSessionRequest) (*dto.ProvisionSessionResponse, error) {
	if err := requireRole(actor, entity.RoleConsultant); err != nil {
		return nil, err
	}
	if req.ParticipantId == 0 {
		return nil, apperror.ValidationFields(map[string]string{"participantId": "required"})
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)

	if req.BookingId != nil {
		booking, err := uow.BookingRepository().FindOne(ctx, specification.ByID{ID: *req.BookingId})
		if err != nil {
			return nil, apperror.Persistence(err)
		}
		switch {
		case booking == nil:
			return nil, apperror.NotFound("booking not found")
		case booking.Status != entity.BookingStatusAccepted:
			return nil, apperror.Validation("booking is not accepted")
		case booking.ConsultantId == nil || *booking.ConsultantId != actor.ID:
			return nil, apperror.Authorization("booking belongs to another consultant")
		case booking.RequesterId != req.ParticipantId:
			return nil, apperror.Validation("participant did not request this booking")
		}
	}

	roomName, err := s.rooms.NewRoomID()
	if err != nil {
		return nil, apperror.Persistence(fmt.Errorf("generate room id: %w", err))
	}

	now := s.now()
	session := entity.VideoSession{
		BookingId:     req.BookingId,
		ConsultantId:  actor.ID,
		ParticipantId: req.ParticipantId,
		RoomName:      roomName,
		Status:        entity.VideoSessionStatusActive,
		CreatedAt:     now,
	}

	if err := uow.Begin(ctx); err != nil {
		return nil, apperror.Persistence(err)
	}
	defer uow.Rollback()

	retired, err := uow.VideoSessionRepository().ExpireAllActiveForParticipant(ctx, req.ParticipantId, now)
	if err != nil {
		return nil, apperror.Persistence(err)
	}

	if err := uow.VideoSessionRepository().Create(ctx, &session); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperror.AlreadyHandled("another room is being provisioned for this participant")
		}
		return nil, apperror.Persistence(err)
	}

	notification := &entity.Notification{
		Recipient: entity.Recipient{Type: entity.RecipientUser, Id: req.ParticipantId},
		Type:      entity.NotificationSessionReady,
		RelatedId: session.Id,
		Status:    entity.NotificationUnread,
		Metadata:  map[string]interface{}{"room_name": roomName},
		CreatedAt: now,
	}
	created, err := uow.NotificationRepository().Create(ctx, notification)
	if err != nil {
		return nil, apperror.Persistence(err)
	}

	if err := uow.Commit(); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperror.AlreadyHandled("another room is being provisioned for this participant")
		}
		return nil, apperror.Persistence(err)
	}

	s.logger.Info("LifecycleService", "Video room provisioned", map[string]interface{}{
		"session_id":     session.Id,
		"consultant_id":  actor.ID,
		"participant_id": req.ParticipantId,
		"retired":        retired,
	})

	if created {
		evt := notificationEvent(events.SessionReady, notification, renderNotification(notification, templateData{}))
		evt.Data["session_id"] = session.Id
		evt.Data["room_name"] = roomName
		s.publish(ctx, evt)
	}

	return &dto.ProvisionSessionResponse{SessionId: session.Id, RoomName: roomName}, nil
}

// participantUID keeps user and consultant ids apart inside one room.
func participantUID(actor entity.Actor) string {
	return fmt.Sprintf("%s-%d", actor.Role, actor.ID)
}

func (s *lifecycleService) IssueSessionToken(ctx context.Context, actor entity.Actor, req *dto.SessionTokenRequest) (*dto.SessionTokenResponse, error) {
	if req.RoomName == "" {
		return nil, apperror.ValidationFields(map[string]string{"roomName": "required"})
	}
	role := videotoken.RolePublisher
	if req.Role != "" {
		parsed, err := videotoken.ParseRole(req.Role)
		if err != nil {
			return nil, err
		}
		role = parsed
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	session, err := uow.VideoSessionRepository().FindOne(ctx, specification.ByRoomName{RoomName: req.RoomName})
	if err != nil {
		return nil, apperror.Persistence(err)
	}
	if session == nil {
		return nil, apperror.NotFound("session not found")
	}

	isParty := (actor.Role == entity.RoleConsultant && actor.ID == session.ConsultantId) ||
		(actor.Role == entity.RoleUser && actor.ID == session.ParticipantId)
	if !isParty {
		return nil, apperror.Authorization("not a party to this session")
	}
	if session.IsTerminal() {
		return nil, apperror.Validation("session is no longer active")
	}

	uid := participantUID(actor)
	token, expiresAt, err := s.issuer.Issue(session.RoomName, uid, role)
	if err != nil {
		return nil, err
	}

	return &dto.SessionTokenResponse{
		Token:     token,
		AppId:     s.issuer.AppID(),
		RoomName:  session.RoomName,
		Uid:       uid,
		ExpiresAt: expiresAt,
	}, nil
}

func (s *lifecycleService) EndSession(ctx context.Context, actor entity.Actor, sessionId uint) error {
	if err := requireRole(actor, entity.RoleConsultant); err != nil {
		return err
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	ended, err := uow.VideoSessionRepository().CompleteIfOwnedActive(ctx, sessionId, actor.ID, s.now())
	if err != nil {
		return apperror.Persistence(err)
	}
	if ended {
		s.logger.Info("LifecycleService", "Session ended", map[string]interface{}{
			"session_id":    sessionId,
			"consultant_id": actor.ID,
		})
		return nil
	}

	session, err := uow.VideoSessionRepository().FindOne(ctx, specification.ByID{ID: sessionId})
	if err != nil {
		return apperror.Persistence(err)
	}
	switch {
	case session == nil:
		return apperror.NotFound("session not found")
	case session.ConsultantId != actor.ID:
		return apperror.Authorization("session belongs to another consultant")
	default:
		return apperror.AlreadyHandled("session has already ended")
	}
}

func (s *lifecycleService) ExpireMostRecentActiveSession(ctx context.Context, actor entity.Actor) (*dto.ExpireSessionResponse, error) {
	if err := requireRole(actor, entity.RoleUser); err != nil {
		return nil, err
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	expired, err := uow.VideoSessionRepository().ExpireMostRecentActive(ctx, actor.ID, s.now())
	if err != nil {
		return nil, apperror.Persistence(err)
	}
	return &dto.ExpireSessionResponse{Expired: expired}, nil
}

func (s *lifecycleService) ActiveSession(ctx context.Context, actor entity.Actor) (*dto.VideoSessionResponse, error) {
	if err := requireRole(actor, entity.RoleUser); err != nil {
		return nil, err
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	session, err := uow.VideoSessionRepository().FindOne(ctx,
		specification.ByParticipant{ParticipantID: actor.ID},
		specification.BySessionStatus{Statuses: []entity.VideoSessionStatus{entity.VideoSessionStatusActive}},
		specification.NewestFirst{},
	)
	if err != nil {
		return nil, apperror.Persistence(err)
	}
	if session == nil {
		return nil, nil
	}
	return toSessionResponse(session), nil
}

func (s *lifecycleService) SessionHistory(ctx context.Context, actor entity.Actor) ([]*dto.VideoSessionResponse, error) {
	if err := requireRole(actor, entity.RoleUser); err != nil {
		return nil, err
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	sessions, err := uow.VideoSessionRepository().FindAll(ctx,
		specification.ByParticipant{ParticipantID: actor.ID},
		specification.BySessionStatus{Statuses: []entity.VideoSessionStatus{
			entity.VideoSessionStatusExpired,
			entity.VideoSessionStatusCompleted,
		}},
		specification.NewestFirst{},
		specification.Pagination{Limit: listLimit},
	)
	if err != nil {
		return nil, apperror.Persistence(err)
	}

	result := make([]*dto.VideoSessionResponse, 0, len(sessions))
	for _, session := range sessions {
		result = append(result, toSessionResponse(session))
	}
	return result, nil
}

func toBookingResponses(bookings []*entity.Booking) []*dto.BookingResponse {
	result := make([]*dto.BookingResponse, 0, len(bookings))
	for _, b := range bookings {
		result = append(result, &dto.BookingResponse{
			Id:                    b.Id,
			RequesterId:           b.RequesterId,
			RequestedConsultantId: b.RequestedConsultantId,
			ConsultantId:          b.ConsultantId,
			ScheduledAt:           b.ScheduledAt,
			Status:                string(b.Status),
			CreatedAt:             b.CreatedAt,
			AcceptedAt:            b.AcceptedAt,
			CompletedAt:           b.CompletedAt,
		})
	}
	return result
}

func toSessionResponse(s *entity.VideoSession) *dto.VideoSessionResponse {
	return &dto.VideoSessionResponse{
		Id:            s.Id,
		BookingId:     s.BookingId,
		ConsultantId:  s.ConsultantId,
		ParticipantId: s.ParticipantId,
		RoomName:      s.RoomName,
		Status:        string(s.Status),
		CreatedAt:     s.CreatedAt,
		UsedAt:        s.UsedAt,
	}
}
