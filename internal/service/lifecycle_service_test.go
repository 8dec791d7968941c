package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"companion-counselling-be/internal/dto"
	"companion-counselling-be/internal/entity"
	"companion-counselling-be/internal/pkg/apperror"
	"companion-counselling-be/internal/testutil"
	"companion-counselling-be/pkg/events"
	"companion-counselling-be/pkg/videotoken"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	user3       = entity.Actor{ID: 3, Role: entity.RoleUser}
	consultant7 = entity.Actor{ID: 7, Role: entity.RoleConsultant}
	consultant8 = entity.Actor{ID: 8, Role: entity.RoleConsultant}
)

func seedDirectory(t *testing.T, h *harness) {
	t.Helper()
	testutil.SeedUsers(t, h.db, 3, 4)
	testutil.SeedConsultant(t, h.db, 7, "Ada", "Lovelace", "ada@companion.test")
	testutil.SeedConsultant(t, h.db, 8, "Alan", "Turing", "alan@companion.test")
}

func book(t *testing.T, h *harness, actor entity.Actor, consultant uint) uint {
	t.Helper()
	resp, err := h.lifecycle.CreateBooking(context.Background(), actor, &dto.CreateBookingRequest{
		ConsultantId:  consultant,
		PreferredDate: "2025-03-16",
		PreferredTime: "14:00",
	})
	require.NoError(t, err)
	return resp.BookingId
}

func TestBookingToVideoSessionFlow(t *testing.T) {
	h := newHarness(t)
	seedDirectory(t, h)
	ctx := context.Background()
	userInbox := entity.Recipient{Type: entity.RecipientUser, Id: 3}

	bookingId := book(t, h, user3, 7)
	assert.Equal(t, []string{events.BookingRequested}, h.publisher.Types())
	requested := h.publisher.Last()
	assert.Equal(t, "consultant", requested.String("recipient_type"))
	assert.Equal(t, "New session request for Mar 16, 2025 14:00.", requested.String("message"))

	pending, err := h.lifecycle.ListPendingBookings(ctx, consultant7)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, bookingId, pending[0].Id)

	others, err := h.lifecycle.ListPendingBookings(ctx, consultant8)
	require.NoError(t, err)
	assert.Empty(t, others)

	h.clock.Advance(time.Minute)
	require.NoError(t, h.lifecycle.AcceptBooking(ctx, consultant7, bookingId))
	assert.Equal(t, events.SessionApproved, h.publisher.Last().EventType())

	err = h.lifecycle.AcceptBooking(ctx, consultant8, bookingId)
	assert.Equal(t, apperror.KindAlreadyHandled, apperror.KindOf(err))
	assert.Len(t, h.publisher.Types(), 2)

	h.clock.Advance(time.Minute)
	provisioned, err := h.lifecycle.ProvisionVideoRoom(ctx, consultant7, &dto.ProvisionSessionRequest{
		ParticipantId: 3,
		BookingId:     &bookingId,
	})
	require.NoError(t, err)
	assert.Equal(t, "session_0001", provisioned.RoomName)
	assert.Equal(t, events.SessionReady, h.publisher.Last().EventType())

	token, err := h.lifecycle.IssueSessionToken(ctx, user3, &dto.SessionTokenRequest{RoomName: provisioned.RoomName})
	require.NoError(t, err)
	assert.Equal(t, "user-3", token.Uid)
	assert.Equal(t, "app-test", token.AppId)
	claims, err := h.issuer.Verify(token.Token)
	require.NoError(t, err)
	assert.Equal(t, provisioned.RoomName, claims.RoomName)
	assert.Equal(t, videotoken.RolePublisher, claims.Role)

	active, err := h.lifecycle.ActiveSession(ctx, user3)
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, provisioned.SessionId, active.Id)

	h.clock.Advance(30 * time.Minute)
	require.NoError(t, h.lifecycle.EndSession(ctx, consultant7, provisioned.SessionId))

	active, err = h.lifecycle.ActiveSession(ctx, user3)
	require.NoError(t, err)
	assert.Nil(t, active)

	history, err := h.lifecycle.SessionHistory(ctx, user3)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, string(entity.VideoSessionStatusCompleted), history[0].Status)

	_, err = h.lifecycle.IssueSessionToken(ctx, user3, &dto.SessionTokenRequest{RoomName: provisioned.RoomName})
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))

	feed, err := h.notifications.Fetch(ctx, userInbox)
	require.NoError(t, err)
	require.Len(t, feed.Notifications, 2)
	assert.Equal(t, "Your video session is ready. Join it from your dashboard.", feed.Notifications[0].Message)
	assert.Equal(t, "Mar 14, 2025 09:02", feed.Notifications[0].Timestamp)
	assert.Equal(t, "Your session scheduled for Mar 16, 2025 14:00 has been approved.", feed.Notifications[1].Message)
	assert.Equal(t, "Mar 14, 2025 09:01", feed.Notifications[1].Timestamp)

	cleared, err := h.notifications.Clear(ctx, userInbox)
	require.NoError(t, err)
	assert.Equal(t, int64(2), cleared.Cleared)

	feed, err = h.notifications.Fetch(ctx, userInbox)
	require.NoError(t, err)
	assert.Empty(t, feed.Notifications)

	require.NoError(t, h.lifecycle.CompleteBooking(ctx, consultant7, bookingId))
	mine, err := h.lifecycle.ListMyBookings(ctx, user3)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, string(entity.BookingStatusCompleted), mine[0].Status)
}

func TestExpireMostRecentActiveSession(t *testing.T) {
	h := newHarness(t)
	seedDirectory(t, h)
	ctx := context.Background()

	room, err := h.lifecycle.ProvisionVideoRoom(ctx, consultant7, &dto.ProvisionSessionRequest{ParticipantId: 3})
	require.NoError(t, err)

	_, err = h.lifecycle.ExpireMostRecentActiveSession(ctx, consultant7)
	assert.Equal(t, apperror.KindAuthorization, apperror.KindOf(err))

	expired, err := h.lifecycle.ExpireMostRecentActiveSession(ctx, user3)
	require.NoError(t, err)
	assert.True(t, expired.Expired)

	expired, err = h.lifecycle.ExpireMostRecentActiveSession(ctx, user3)
	require.NoError(t, err)
	assert.False(t, expired.Expired)

	history, err := h.lifecycle.SessionHistory(ctx, user3)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, room.SessionId, history[0].Id)
	assert.Equal(t, string(entity.VideoSessionStatusExpired), history[0].Status)

	err = h.lifecycle.EndSession(ctx, consultant7, room.SessionId)
	assert.Equal(t, apperror.KindAlreadyHandled, apperror.KindOf(err))
}

func TestCreateBookingValidation(t *testing.T) {
	h := newHarness(t)
	seedDirectory(t, h)
	ctx := context.Background()

	cases := []struct {
		name  string
		actor entity.Actor
		req   dto.CreateBookingRequest
		kind  apperror.Kind
	}{
		{"consultant cannot book", consultant7, dto.CreateBookingRequest{ConsultantId: 7, PreferredDate: "2025-03-16", PreferredTime: "14:00"}, apperror.KindAuthorization},
		{"missing date", user3, dto.CreateBookingRequest{ConsultantId: 7, PreferredTime: "14:00"}, apperror.KindValidation},
		{"bad time", user3, dto.CreateBookingRequest{ConsultantId: 7, PreferredDate: "2025-03-16", PreferredTime: "2pm"}, apperror.KindValidation},
		{"unknown consultant", user3, dto.CreateBookingRequest{ConsultantId: 99, PreferredDate: "2025-03-16", PreferredTime: "14:00"}, apperror.KindValidation},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := tc.req
			_, err := h.lifecycle.CreateBooking(ctx, tc.actor, &req)
			assert.Equal(t, tc.kind, apperror.KindOf(err))
		})
	}
	assert.Empty(t, h.publisher.Types())
}

func TestAcceptBookingOutcomes(t *testing.T) {
	h := newHarness(t)
	seedDirectory(t, h)
	ctx := context.Background()
	bookingId := book(t, h, user3, 7)

	err := h.lifecycle.AcceptBooking(ctx, user3, bookingId)
	assert.Equal(t, apperror.KindAuthorization, apperror.KindOf(err))

	// Consultant 8 was not the one requested but may still take the booking.
	require.NoError(t, h.lifecycle.AcceptBooking(ctx, consultant8, bookingId))

	err = h.lifecycle.AcceptBooking(ctx, consultant7, bookingId)
	assert.Equal(t, apperror.KindAlreadyHandled, apperror.KindOf(err))

	err = h.lifecycle.AcceptBooking(ctx, consultant8, bookingId)
	assert.Equal(t, apperror.KindAlreadyHandled, apperror.KindOf(err))

	err = h.lifecycle.AcceptBooking(ctx, consultant7, 4040)
	assert.Equal(t, apperror.KindAlreadyHandled, apperror.KindOf(err))

	var approved int64
	require.NoError(t, h.db.Table("notifications").
		Where("type = ? AND recipient_id = ?", string(entity.NotificationSessionApproved), 3).
		Count(&approved).Error)
	assert.Equal(t, int64(1), approved)
}

func TestConcurrentAcceptNotifiesOnce(t *testing.T) {
	h := newHarness(t)
	seedDirectory(t, h)
	ctx := context.Background()
	for id := uint(9); id <= 16; id++ {
		testutil.SeedConsultant(t, h.db, id, "Consultant", "No", "")
	}

	bookingId := book(t, h, user3, 7)

	const contenders = 10
	var wg sync.WaitGroup
	errs := make([]error, contenders)
	for i := 0; i < contenders; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			actor := entity.Actor{ID: uint(7 + i), Role: entity.RoleConsultant}
			errs[i] = h.lifecycle.AcceptBooking(ctx, actor, bookingId)
		}(i)
	}
	wg.Wait()

	successes := 0
	for _, err := range errs {
		if err == nil {
			successes++
			continue
		}
		assert.Equal(t, apperror.KindAlreadyHandled, apperror.KindOf(err))
	}
	assert.Equal(t, 1, successes)
	assert.Equal(t, []string{events.BookingRequested, events.SessionApproved}, h.publisher.Types())

	var approved int64
	require.NoError(t, h.db.Table("notifications").
		Where("type = ? AND recipient_id = ?", string(entity.NotificationSessionApproved), 3).
		Count(&approved).Error)
	assert.Equal(t, int64(1), approved)
}

func TestCompleteBookingOutcomes(t *testing.T) {
	h := newHarness(t)
	seedDirectory(t, h)
	ctx := context.Background()
	bookingId := book(t, h, user3, 7)

	err := h.lifecycle.CompleteBooking(ctx, consultant7, bookingId)
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))

	require.NoError(t, h.lifecycle.AcceptBooking(ctx, consultant7, bookingId))

	err = h.lifecycle.CompleteBooking(ctx, consultant8, bookingId)
	assert.Equal(t, apperror.KindAuthorization, apperror.KindOf(err))

	require.NoError(t, h.lifecycle.CompleteBooking(ctx, consultant7, bookingId))

	err = h.lifecycle.CompleteBooking(ctx, consultant7, bookingId)
	assert.Equal(t, apperror.KindAlreadyHandled, apperror.KindOf(err))

	err = h.lifecycle.CompleteBooking(ctx, consultant7, 4040)
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
}

func TestProvisionRetiresPreviousRoom(t *testing.T) {
	h := newHarness(t)
	seedDirectory(t, h)
	ctx := context.Background()

	first, err := h.lifecycle.ProvisionVideoRoom(ctx, consultant7, &dto.ProvisionSessionRequest{ParticipantId: 3})
	require.NoError(t, err)
	h.clock.Advance(time.Minute)
	second, err := h.lifecycle.ProvisionVideoRoom(ctx, consultant8, &dto.ProvisionSessionRequest{ParticipantId: 3})
	require.NoError(t, err)
	assert.NotEqual(t, first.RoomName, second.RoomName)

	active, err := h.lifecycle.ActiveSession(ctx, user3)
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, second.SessionId, active.Id)

	_, err = h.lifecycle.IssueSessionToken(ctx, user3, &dto.SessionTokenRequest{RoomName: first.RoomName})
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))

	_, err = h.lifecycle.IssueSessionToken(ctx, consultant7, &dto.SessionTokenRequest{RoomName: second.RoomName})
	assert.Equal(t, apperror.KindAuthorization, apperror.KindOf(err))

	_, err = h.lifecycle.IssueSessionToken(ctx, user3, &dto.SessionTokenRequest{RoomName: second.RoomName, Role: "owner"})
	assert.Equal(t, apperror.KindInvalidRole, apperror.KindOf(err))

	resp, err := h.lifecycle.IssueSessionToken(ctx, consultant8, &dto.SessionTokenRequest{RoomName: second.RoomName, Role: "subscriber"})
	require.NoError(t, err)
	assert.Equal(t, "consultant-8", resp.Uid)
}

func TestProvisionChecksBooking(t *testing.T) {
	h := newHarness(t)
	seedDirectory(t, h)
	ctx := context.Background()
	bookingId := book(t, h, user3, 7)

	_, err := h.lifecycle.ProvisionVideoRoom(ctx, consultant7, &dto.ProvisionSessionRequest{ParticipantId: 3, BookingId: &bookingId})
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err), "pending bookings have no room")

	require.NoError(t, h.lifecycle.AcceptBooking(ctx, consultant7, bookingId))

	_, err = h.lifecycle.ProvisionVideoRoom(ctx, consultant8, &dto.ProvisionSessionRequest{ParticipantId: 3, BookingId: &bookingId})
	assert.Equal(t, apperror.KindAuthorization, apperror.KindOf(err))

	_, err = h.lifecycle.ProvisionVideoRoom(ctx, consultant7, &dto.ProvisionSessionRequest{ParticipantId: 4, BookingId: &bookingId})
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))

	missing := uint(4040)
	_, err = h.lifecycle.ProvisionVideoRoom(ctx, consultant7, &dto.ProvisionSessionRequest{ParticipantId: 3, BookingId: &missing})
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
}

func TestEndSessionOutcomes(t *testing.T) {
	h := newHarness(t)
	seedDirectory(t, h)
	ctx := context.Background()

	room, err := h.lifecycle.ProvisionVideoRoom(ctx, consultant7, &dto.ProvisionSessionRequest{ParticipantId: 3})
	require.NoError(t, err)

	err = h.lifecycle.EndSession(ctx, consultant8, room.SessionId)
	assert.Equal(t, apperror.KindAuthorization, apperror.KindOf(err))

	require.NoError(t, h.lifecycle.EndSession(ctx, consultant7, room.SessionId))

	err = h.lifecycle.EndSession(ctx, consultant7, room.SessionId)
	assert.Equal(t, apperror.KindAlreadyHandled, apperror.KindOf(err))

	err = h.lifecycle.EndSession(ctx, consultant7, 4040)
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))

	expired, err := h.lifecycle.ExpireMostRecentActiveSession(ctx, user3)
	require.NoError(t, err)
	assert.False(t, expired.Expired)
}
