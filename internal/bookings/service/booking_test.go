package service

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"classbook/internal/bookings/events"
	"classbook/internal/bookings/repository"
	"classbook/internal/bookings/validator"
	roomsrepo "classbook/internal/rooms/repository"
	"classbook/pkg/config"
	apperrors "classbook/pkg/errors"
	"classbook/pkg/logger"
	"classbook/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []string
}

func (p *recordingPublisher) Publish(_ context.Context, eventType string, booking *model.Booking) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, eventType+":"+booking.ID)
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		eventType, _, _ := strings.Cut(e, ":")
		out = append(out, eventType)
	}
	return out
}

type fixture struct {
	svc       BookingService
	repo      repository.BookingRepository
	locks     repository.RoomLockRepository
	publisher *recordingPublisher
}

func ts(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

func newFixture(t *testing.T, seed ...*model.Booking) *fixture {
	t.Helper()
	cfg := &config.Config{
		Log:               logger.Nop(),
		LockTTL:           5 * time.Second,
		LockWaitTimeout:   2 * time.Second,
		LockRetryInterval: time.Millisecond,
	}
	rooms := roomsrepo.NewMemoryRoomRepository([]*model.Room{
		{ID: "r101", Name: "Room 101", Building: "A", Capacity: 30, Active: true},
		{ID: "r201", Name: "Room 201", Building: "B", Capacity: 40, Active: true},
		{ID: "closed", Name: "Closed", Building: "Z", Capacity: 10, Active: false},
	})
	f := &fixture{
		repo:      repository.NewMemoryBookingRepository(seed),
		locks:     repository.NewMemoryRoomLockRepository(),
		publisher: &recordingPublisher{},
	}
	f.svc = NewBookingService(f.repo, f.locks, rooms, validator.NewBookingValidator(logger.Nop()), f.publisher, cfg)
	return f
}

func request(room, start, end string) *model.BookingRequest {
	return &model.BookingRequest{
		RoomID:         room,
		RequesterEmail: "jane.smith@college.edu",
		RequesterName:  "Jane Smith",
		Purpose:        "Workshop on AI/ML",
		StartTime:      start,
		EndTime:        end,
	}
}

func approvedBooking(id, room, start, end string) *model.Booking {
	return &model.Booking{ID: id, RoomID: room, Status: model.StatusApproved, StartTime: ts(start), EndTime: ts(end)}
}

func pendingBooking(id, room, start, end string) *model.Booking {
	return &model.Booking{ID: id, RoomID: room, Status: model.StatusPending, StartTime: ts(start), EndTime: ts(end)}
}

func TestCreate_Success(t *testing.T) {
	f := newFixture(t)
	req := request(" r101 ", "2025-11-05T12:00:00+02:00", "2025-11-05T12:00:00Z")
	req.RequesterEmail = "Jane.Smith@College.edu"

	b, err := f.svc.Create(context.Background(), req)
	require.NoError(t, err)

	assert.NotEmpty(t, b.ID)
	assert.Equal(t, "r101", b.RoomID)
	assert.Equal(t, "jane.smith@college.edu", b.RequesterEmail)
	assert.Equal(t, model.StatusPending, b.Status)
	assert.Equal(t, ts("2025-11-05T10:00:00Z"), b.StartTime)
	assert.False(t, b.CreatedAt.IsZero())
	assert.Equal(t, []string{events.BookingCreated}, f.publisher.types())

	stored, err := f.repo.FindByID(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, stored.Status)
}

func TestCreate_ValidationErrorsAreEnumerated(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(context.Background(), &model.BookingRequest{StartTime: "2025-11-05T12:00:00Z", EndTime: "2025-11-05T10:00:00Z"})

	require.Error(t, err)
	appErr := apperrors.AsAppError(err)
	assert.Equal(t, 400, appErr.StatusCode())
	errs, ok := appErr.Details["errors"].(validator.ValidationErrors)
	require.True(t, ok)
	assert.Equal(t, []string{"room_id", "requester_email", "requester_name", "purpose", "start_time"}, errs.Fields())
	assert.Empty(t, f.publisher.types())
}

func TestCreate_UnknownRoom(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(context.Background(), request("r999", "2025-11-05T10:00:00Z", "2025-11-05T11:00:00Z"))

	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))
}

func TestCreate_InactiveRoom(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(context.Background(), request("closed", "2025-11-05T10:00:00Z", "2025-11-05T11:00:00Z"))

	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))
}

func TestCreate_ConflictWithApproved(t *testing.T) {
	f := newFixture(t, approvedBooking("b001", "r101", "2025-11-05T10:00:00Z", "2025-11-05T12:00:00Z"))

	_, err := f.svc.Create(context.Background(), request("r101", "2025-11-05T11:00:00Z", "2025-11-05T13:00:00Z"))

	require.Error(t, err)
	appErr := apperrors.AsAppError(err)
	assert.Equal(t, 409, appErr.StatusCode())
	assert.Equal(t, "b001", appErr.Details["conflicting_booking_id"])

	n, _ := f.repo.Count(context.Background())
	assert.Equal(t, int64(1), n)
}

func TestCreate_TouchingAndPendingDoNotConflict(t *testing.T) {
	f := newFixture(t,
		approvedBooking("b001", "r101", "2025-11-05T10:00:00Z", "2025-11-05T12:00:00Z"),
		pendingBooking("p001", "r101", "2025-11-05T12:00:00Z", "2025-11-05T14:00:00Z"),
		approvedBooking("b002", "r201", "2025-11-05T12:00:00Z", "2025-11-05T14:00:00Z"),
	)

	_, err := f.svc.Create(context.Background(), request("r101", "2025-11-05T12:00:00Z", "2025-11-05T14:00:00Z"))

	assert.NoError(t, err)
}

func TestCreate_LockHeldTooLong(t *testing.T) {
	f := newFixture(t)
	f.svc.(*bookingService).cfg.LockWaitTimeout = 20 * time.Millisecond
	require.NoError(t, f.locks.TryAcquire(context.Background(), "r101", "someone-else", time.Minute))

	_, err := f.svc.Create(context.Background(), request("r101", "2025-11-05T10:00:00Z", "2025-11-05T11:00:00Z"))

	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeConflict))
	assert.Contains(t, err.Error(), "currently being booked")
}

func TestCreate_WaitsForLockRelease(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.locks.TryAcquire(ctx, "r101", "someone-else", time.Minute))

	go func() {
		time.Sleep(20 * time.Millisecond)
		_ = f.locks.Release(ctx, "r101", "someone-else")
	}()

	_, err := f.svc.Create(ctx, request("r101", "2025-11-05T10:00:00Z", "2025-11-05T11:00:00Z"))
	assert.NoError(t, err)
}

func TestApprove(t *testing.T) {
	f := newFixture(t, pendingBooking("p001", "r101", "2025-11-05T10:00:00Z", "2025-11-05T12:00:00Z"))

	b, err := f.svc.Approve(context.Background(), "p001")
	require.NoError(t, err)
	assert.Equal(t, model.StatusApproved, b.Status)
	assert.NotNil(t, b.ApprovedAt)
	assert.Equal(t, []string{events.BookingApproved}, f.publisher.types())

	_, err = f.svc.Approve(context.Background(), "p001")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeConflict), "second decision is rejected")

	_, err = f.svc.Deny(context.Background(), "p001")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeConflict))
}

func TestApprove_ConflictWithApproved(t *testing.T) {
	f := newFixture(t,
		approvedBooking("b001", "r101", "2025-11-05T10:00:00Z", "2025-11-05T12:00:00Z"),
		pendingBooking("p001", "r101", "2025-11-05T11:30:00Z", "2025-11-05T12:30:00Z"),
	)

	_, err := f.svc.Approve(context.Background(), "p001")

	require.Error(t, err)
	appErr := apperrors.AsAppError(err)
	assert.Equal(t, 409, appErr.StatusCode())
	assert.Equal(t, "b001", appErr.Details["conflicting_booking_id"])

	stored, _ := f.repo.FindByID(context.Background(), "p001")
	assert.Equal(t, model.StatusPending, stored.Status)
}

func TestApprove_NotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Approve(context.Background(), "missing")

	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))
}

func TestApprove_ConcurrentOverlappingPendingOnlyOneWins(t *testing.T) {
	const n = 8
	var seed []*model.Booking
	for i := 0; i < n; i++ {
		seed = append(seed, pendingBooking(string(rune('a'+i)), "r101", "2025-11-05T10:00:00Z", "2025-11-05T12:00:00Z"))
	}
	f := newFixture(t, seed...)

	var wg sync.WaitGroup
	var mu sync.Mutex
	approved := 0
	for _, b := range seed {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			if _, err := f.svc.Approve(context.Background(), id); err == nil {
				mu.Lock()
				approved++
				mu.Unlock()
			}
		}(b.ID)
	}
	wg.Wait()

	assert.Equal(t, 1, approved)
	all, err := f.repo.Find(context.Background(), model.BookingFilter{RoomID: "r101", Status: model.StatusApproved})
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestDeny(t *testing.T) {
	f := newFixture(t, pendingBooking("p001", "r101", "2025-11-05T10:00:00Z", "2025-11-05T12:00:00Z"))

	b, err := f.svc.Deny(context.Background(), "p001")
	require.NoError(t, err)
	assert.Equal(t, model.StatusDenied, b.Status)
	assert.NotNil(t, b.DeniedAt)
	assert.Nil(t, b.ApprovedAt)
	assert.Equal(t, []string{events.BookingDenied}, f.publisher.types())

	_, err = f.svc.Approve(context.Background(), "p001")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeConflict))

	_, err = f.svc.Deny(context.Background(), "missing")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))
}

func TestList(t *testing.T) {
	f := newFixture(t,
		approvedBooking("late", "r101", "2025-11-05T15:00:00Z", "2025-11-05T16:00:00Z"),
		approvedBooking("early", "r101", "2025-11-05T08:00:00Z", "2025-11-05T09:00:00Z"),
		pendingBooking("overnight", "r201", "2025-11-04T23:00:00Z", "2025-11-05T01:00:00Z"),
		pendingBooking("other-day", "r201", "2025-11-06T08:00:00Z", "2025-11-06T09:00:00Z"),
	)
	ctx := context.Background()

	tests := []struct {
		name  string
		query ListQuery
		want  []string
	}{
		{"by date ascending start", ListQuery{Date: "2025-11-05"}, []string{"overnight", "early", "late"}},
		{"by room and date", ListQuery{RoomID: "r101", Date: "2025-11-05"}, []string{"early", "late"}},
		{"by status", ListQuery{Status: "Pending"}, []string{"overnight", "other-day"}},
		{"empty day", ListQuery{Date: "2025-12-25"}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := f.svc.List(ctx, tt.query)
			require.NoError(t, err)
			ids := make([]string, 0, len(got))
			for _, b := range got {
				ids = append(ids, b.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestList_InvalidParameters(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.List(context.Background(), ListQuery{Date: "05/11/2025"})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidInput))

	_, err = f.svc.List(context.Background(), ListQuery{Status: "cancelled"})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidInput))
}

func TestDayWindow(t *testing.T) {
	w, err := DayWindow("2025-11-05")
	require.NoError(t, err)

	assert.Equal(t, ts("2025-11-05T00:00:00Z"), w.Start)
	assert.Equal(t, ts("2025-11-06T00:00:00Z"), w.End)
	assert.True(t, w.Contains(ts("2025-11-05T23:59:59Z")))
	assert.False(t, w.Contains(ts("2025-11-06T00:00:00Z")))
}
