package implementation

import (
	"context"
	"sync"
	"testing"
	"time"

	"companion-counselling-be/internal/entity"
	"companion-counselling-be/internal/repository/specification"
	"companion-counselling-be/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var baseTime = time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)

func newPendingBooking(t *testing.T, repo interface {
	Create(context.Context, *entity.Booking) error
}, requester uint, at time.Time) *entity.Booking {
	t.Helper()
	b := &entity.Booking{
		RequesterId: requester,
		ScheduledAt: at.Add(48 * time.Hour),
		Status:      entity.BookingStatusPending,
		CreatedAt:   at,
	}
	require.NoError(t, repo.Create(context.Background(), b))
	require.NotZero(t, b.Id)
	return b
}

func TestAcceptIfPendingHasExactlyOneWinner(t *testing.T) {
	db := testutil.NewSQLite(t)
	repo := NewBookingRepository(db)
	ctx := context.Background()
	booking := newPendingBooking(t, repo, 1, baseTime)

	const contenders = 10
	var wg sync.WaitGroup
	results := make([]bool, contenders)
	errs := make([]error, contenders)
	for i := 0; i < contenders; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = repo.AcceptIfPending(ctx, booking.Id, uint(100+i), baseTime)
		}(i)
	}
	wg.Wait()

	winners := 0
	var winner uint
	for i, ok := range results {
		require.NoError(t, errs[i])
		if ok {
			winners++
			winner = uint(100 + i)
		}
	}
	assert.Equal(t, 1, winners)

	stored, err := repo.FindOne(ctx, specification.ByID{ID: booking.Id})
	require.NoError(t, err)
	assert.Equal(t, entity.BookingStatusAccepted, stored.Status)
	require.NotNil(t, stored.ConsultantId)
	assert.Equal(t, winner, *stored.ConsultantId)
	require.NotNil(t, stored.AcceptedAt)
}

func TestAcceptIfPendingMissingBooking(t *testing.T) {
	repo := NewBookingRepository(testutil.NewSQLite(t))
	ok, err := repo.AcceptIfPending(context.Background(), 999, 1, baseTime)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCompleteIfAccepted(t *testing.T) {
	repo := NewBookingRepository(testutil.NewSQLite(t))
	ctx := context.Background()
	booking := newPendingBooking(t, repo, 1, baseTime)

	ok, err := repo.CompleteIfAccepted(ctx, booking.Id, 5, baseTime)
	require.NoError(t, err)
	assert.False(t, ok, "pending bookings cannot complete")

	ok, err = repo.AcceptIfPending(ctx, booking.Id, 5, baseTime)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = repo.CompleteIfAccepted(ctx, booking.Id, 6, baseTime)
	require.NoError(t, err)
	assert.False(t, ok, "only the assigned consultant completes")

	ok, err = repo.CompleteIfAccepted(ctx, booking.Id, 5, baseTime)
	require.NoError(t, err)
	assert.True(t, ok)

	stored, err := repo.FindOne(ctx, specification.ByID{ID: booking.Id})
	require.NoError(t, err)
	assert.Equal(t, entity.BookingStatusCompleted, stored.Status)
	assert.NotNil(t, stored.CompletedAt)
}

func TestPendingQueueRespectsPreference(t *testing.T) {
	repo := NewBookingRepository(testutil.NewSQLite(t))
	ctx := context.Background()

	seven, eight := uint(7), uint(8)
	open := newPendingBooking(t, repo, 1, baseTime)
	forSeven := &entity.Booking{RequesterId: 2, RequestedConsultantId: &seven, ScheduledAt: baseTime, Status: entity.BookingStatusPending, CreatedAt: baseTime.Add(time.Minute)}
	forEight := &entity.Booking{RequesterId: 3, RequestedConsultantId: &eight, ScheduledAt: baseTime, Status: entity.BookingStatusPending, CreatedAt: baseTime.Add(2 * time.Minute)}
	require.NoError(t, repo.Create(ctx, forSeven))
	require.NoError(t, repo.Create(ctx, forEight))

	queue, err := repo.FindAll(ctx,
		specification.ByBookingStatus{Status: entity.BookingStatusPending},
		specification.OpenToConsultant{ConsultantID: 7},
		specification.NewestFirst{},
	)
	require.NoError(t, err)
	require.Len(t, queue, 2)
	assert.Equal(t, forSeven.Id, queue[0].Id)
	assert.Equal(t, open.Id, queue[1].Id)

	count, err := repo.Count(ctx, specification.ByBookingStatus{Status: entity.BookingStatusPending})
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
}
