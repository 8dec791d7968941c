package service

import (
	"context"
	"time"

	"companion-counselling-be/internal/entity"
	"companion-counselling-be/internal/pkg/logger"
	"companion-counselling-be/internal/pkg/mailer"
	"companion-counselling-be/internal/repository/unitofwork"
	"companion-counselling-be/internal/websocket"
	"companion-counselling-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill/message"
)

// originExternal marks events that arrived from NATS so they are not forwarded back.
const originExternal = "external"

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// Pusher is satisfied by *websocket.Hub.
type Pusher interface {
	SendTo(ctx context.Context, recipient entity.Recipient, push websocket.Push)
	BroadcastTo(ctx context.Context, classes []entity.RecipientType, push websocket.Push)
}

// EventForwarder is satisfied by *nats.Publisher.
type EventForwarder interface {
	Publish(ctx context.Context, event events.Event) error
}

type consumerService struct {
	subscriber message.Subscriber
	topicName  string
	uowFactory unitofwork.RepositoryFactory
	pusher     Pusher
	forwarder  EventForwarder
	mailer     mailer.IEmailService
	logger     logger.ILogger
}

// NewConsumerService wires the delivery channels. pusher, forwarder and
// mailer may each be nil.
func NewConsumerService(
	subscriber message.Subscriber,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
	pusher Pusher,
	forwarder EventForwarder,
	mail mailer.IEmailService,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		subscriber: subscriber,
		topicName:  topicName,
		uowFactory: uowFactory,
		pusher:     pusher,
		forwarder:  forwarder,
		mailer:     mail,
		logger:     log,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.subscriber.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

// processMessage always acks. Every channel here is an accelerator over the
// stored notification, so a failed delivery is logged and dropped.
func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	defer msg.Ack()

	event, err := events.Decode(msg.Payload)
	if err != nil {
		cs.logger.Error("ConsumerService", "Failed to decode event", map[string]interface{}{
			"message_id": msg.UUID,
			"error":      err.Error(),
		})
		return
	}

	cs.push(ctx, event)

	if event.EventType() == events.BookingRequested {
		cs.mailConsultant(ctx, event)
	}

	if cs.forwarder != nil && event.String("origin") != originExternal {
		if err := cs.forwarder.Publish(ctx, event); err != nil {
			cs.logger.Warn("ConsumerService", "Failed to forward event", map[string]interface{}{
				"type":  event.EventType(),
				"error": err.Error(),
			})
		}
	}
}

func (cs *consumerService) push(ctx context.Context, event events.BaseEvent) {
	if cs.pusher == nil {
		return
	}

	push := websocket.Push{
		Kind:      entity.NotificationType(event.String("notification_type")),
		Message:   event.String("message"),
		Timestamp: event.Timestamp(),
	}

	if event.EventType() == events.AnnouncementPublished {
		push.Kind = entity.NotificationAnnouncement
		var classes []entity.RecipientType
		if raw, ok := event.Data["classes"].([]interface{}); ok {
			for _, c := range raw {
				if s, ok := c.(string); ok {
					classes = append(classes, entity.RecipientType(s))
				}
			}
		}
		cs.pusher.BroadcastTo(ctx, classes, push)
		return
	}

	id, ok := event.Uint("recipient_id")
	recipientType := entity.RecipientType(event.String("recipient_type"))
	if !ok || recipientType == "" {
		cs.logger.Warn("ConsumerService", "Event has no recipient", map[string]interface{}{"type": event.EventType()})
		return
	}
	cs.pusher.SendTo(ctx, entity.Recipient{Type: recipientType, Id: id}, push)
}

func (cs *consumerService) mailConsultant(ctx context.Context, event events.BaseEvent) {
	if cs.mailer == nil {
		return
	}
	consultantId, ok := event.Uint("recipient_id")
	if !ok {
		return
	}
	scheduledAt, err := time.Parse(time.RFC3339, event.String("scheduled_at"))
	if err != nil {
		cs.logger.Warn("ConsumerService", "Booking event without schedule", map[string]interface{}{"error": err.Error()})
		return
	}

	uow := cs.uowFactory.NewUnitOfWork(ctx)
	consultant, err := uow.DirectoryRepository().FindConsultant(ctx, consultantId)
	if err != nil {
		cs.logger.Error("ConsumerService", "Failed to load consultant", map[string]interface{}{
			"consultant_id": consultantId,
			"error":         err.Error(),
		})
		return
	}
	if consultant == nil || consultant.Email == "" {
		return
	}

	// The mailer logs its own failures.
	_ = cs.mailer.SendBookingRequested(consultant.Email, consultant.DisplayName(), scheduledAt)
}
