package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"companion-counselling-be/internal/pkg/logger"
	"companion-counselling-be/internal/repository/unitofwork"
	"companion-counselling-be/internal/testutil"
	"companion-counselling-be/pkg/events"
	"companion-counselling-be/pkg/videotoken"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var baseTime = time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)

type manualClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, event events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) Types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	types := make([]string, 0, len(p.events))
	for _, e := range p.events {
		types = append(types, e.EventType())
	}
	return types
}

func (p *recordingPublisher) Last() events.BaseEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.events[len(p.events)-1].(events.BaseEvent)
}

type sequentialRooms struct {
	mu sync.Mutex
	n  int
}

func (g *sequentialRooms) NewRoomID() (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("session_%04d", g.n), nil
}

type harness struct {
	db            *gorm.DB
	factory       unitofwork.RepositoryFactory
	clock         *manualClock
	publisher     *recordingPublisher
	issuer        *videotoken.Issuer
	lifecycle     ILifecycleService
	notifications INotificationService
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	db := testutil.NewSQLite(t)
	h := &harness{
		db:        db,
		factory:   unitofwork.NewRepositoryFactory(db),
		clock:     &manualClock{now: baseTime},
		publisher: &recordingPublisher{},
	}

	issuer, err := videotoken.NewIssuer("app-test", "secret-test", time.Hour)
	require.NoError(t, err)
	h.issuer = issuer

	log := logger.NewNopLogger()
	h.lifecycle = NewLifecycleService(h.factory, issuer, &sequentialRooms{}, h.publisher, h.clock.Now, log)
	h.notifications = NewNotificationService(h.factory, h.publisher, h.clock.Now, log)
	return h
}
