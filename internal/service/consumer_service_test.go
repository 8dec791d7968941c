package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"companion-counselling-be/internal/dto"
	"companion-counselling-be/internal/entity"
	"companion-counselling-be/internal/pkg/logger"
	"companion-counselling-be/internal/websocket"
	"companion-counselling-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sent struct {
	recipient *entity.Recipient
	classes   []entity.RecipientType
	push      websocket.Push
}

type fakePusher struct {
	mu   sync.Mutex
	sent []sent
}

func (p *fakePusher) SendTo(_ context.Context, recipient entity.Recipient, push websocket.Push) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sent = append(p.sent, sent{recipient: &recipient, push: push})
}

func (p *fakePusher) BroadcastTo(_ context.Context, classes []entity.RecipientType, push websocket.Push) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sent = append(p.sent, sent{classes: classes, push: push})
}

func (p *fakePusher) snapshot() []sent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]sent(nil), p.sent...)
}

type fakeMailer struct {
	mu    sync.Mutex
	to    []string
	names []string
}

func (m *fakeMailer) SendBookingRequested(to, name string, _ time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.to = append(m.to, to)
	m.names = append(m.names, name)
	return nil
}

func (m *fakeMailer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.to)
}

type consumerFixture struct {
	h         *harness
	pusher    *fakePusher
	forwarder *recordingPublisher
	mailer    *fakeMailer
}

// newConsumerFixture routes the services' events through a real in-process
// bus into the consumer.
func newConsumerFixture(t *testing.T) *consumerFixture {
	t.Helper()

	h := newHarness(t)
	seedDirectory(t, h)

	pubSub := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 64}, watermill.NopLogger{})
	t.Cleanup(func() { _ = pubSub.Close() })

	f := &consumerFixture{
		h:         h,
		pusher:    &fakePusher{},
		forwarder: &recordingPublisher{},
		mailer:    &fakeMailer{},
	}

	const topic = "session.events"
	log := logger.NewNopLogger()
	consumer := NewConsumerService(pubSub, topic, h.factory, f.pusher, f.forwarder, f.mailer, log)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	require.NoError(t, consumer.Consume(ctx))

	bus := NewPublisherService(topic, pubSub)
	h.lifecycle = NewLifecycleService(h.factory, h.issuer, &sequentialRooms{}, bus, h.clock.Now, log)
	h.notifications = NewNotificationService(h.factory, bus, h.clock.Now, log)
	return f
}

func TestConsumerDeliversBookingRequest(t *testing.T) {
	f := newConsumerFixture(t)

	bookingId := book(t, f.h, user3, 7)
	require.NotZero(t, bookingId)

	require.Eventually(t, func() bool { return len(f.pusher.snapshot()) == 1 }, time.Second, 10*time.Millisecond)
	got := f.pusher.snapshot()[0]
	require.NotNil(t, got.recipient)
	assert.Equal(t, entity.Recipient{Type: entity.RecipientConsultant, Id: 7}, *got.recipient)
	assert.Equal(t, entity.NotificationBookingRequested, got.push.Kind)
	assert.Equal(t, "New session request for Mar 16, 2025 14:00.", got.push.Message)

	require.Eventually(t, func() bool { return f.mailer.count() == 1 }, time.Second, 10*time.Millisecond)
	assert.Equal(t, []string{"ada@companion.test"}, f.mailer.to)
	assert.Equal(t, []string{"Ada Lovelace"}, f.mailer.names)

	require.Eventually(t, func() bool { return len(f.forwarder.Types()) == 1 }, time.Second, 10*time.Millisecond)
	assert.Equal(t, []string{events.BookingRequested}, f.forwarder.Types())
}

func TestConsumerBroadcastsAnnouncements(t *testing.T) {
	f := newConsumerFixture(t)

	_, err := f.h.notifications.CreateAnnouncement(context.Background(), admin, &dto.CreateAnnouncementRequest{
		Audience: "consultant",
		Title:    "Rota",
		Message:  "Updated",
	})
	require.NoError(t, err)

	require.Eventually(t, func() bool { return len(f.pusher.snapshot()) == 1 }, time.Second, 10*time.Millisecond)
	got := f.pusher.snapshot()[0]
	assert.Nil(t, got.recipient)
	assert.Equal(t, []entity.RecipientType{entity.RecipientConsultant}, got.classes)
	assert.Equal(t, "Rota: Updated", got.push.Message)
	assert.Equal(t, 0, f.mailer.count())
}

func TestConsumerDoesNotForwardExternalEvents(t *testing.T) {
	f := newConsumerFixture(t)

	_, err := f.h.notifications.Notify(context.Background(), events.PostApproved, postApproved(3, 11, "Hi"))
	require.NoError(t, err)

	require.Eventually(t, func() bool { return len(f.pusher.snapshot()) == 1 }, time.Second, 10*time.Millisecond)
	assert.Equal(t, "Your post 'Hi' has been approved.", f.pusher.snapshot()[0].push.Message)

	// Give the consumer a moment to (wrongly) forward.
	time.Sleep(50 * time.Millisecond)
	assert.Empty(t, f.forwarder.Types())
}

type failingForwarder struct{}

func (failingForwarder) Publish(context.Context, events.Event) error {
	return errors.New("nats down")
}

func TestConsumerSurvivesForwardFailure(t *testing.T) {
	h := newHarness(t)
	pusher := &fakePusher{}
	cs := NewConsumerService(nil, "", h.factory, pusher, failingForwarder{}, nil, logger.NewNopLogger()).(*consumerService)

	evt := events.New(events.SessionReady, map[string]interface{}{
		"recipient_type":    "user",
		"recipient_id":      3,
		"notification_type": "session_ready",
		"message":           "ready",
	}, baseTime)
	payload, err := events.Encode(evt)
	require.NoError(t, err)

	msg := newMessage(payload)
	cs.processMessage(context.Background(), msg)

	select {
	case <-msg.Acked():
	default:
		t.Fatal("message was not acked")
	}
	require.Len(t, pusher.snapshot(), 1)
	assert.Equal(t, entity.Recipient{Type: entity.RecipientUser, Id: 3}, *pusher.snapshot()[0].recipient)

	garbage := newMessage([]byte("{not json"))
	cs.processMessage(context.Background(), garbage)
	select {
	case <-garbage.Acked():
	default:
		t.Fatal("malformed message was not acked")
	}
	assert.Len(t, pusher.snapshot(), 1)
}
