package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"classbook/internal/rooms/recommender"
	"classbook/internal/rooms/repository"
	"classbook/internal/rooms/validator"
	"classbook/pkg/config"
	apperrors "classbook/pkg/errors"
	"classbook/pkg/logger"
	"classbook/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubBookings struct {
	bookings []*model.Booking
	filters  []model.BookingFilter
	err      error
}

func (s *stubBookings) Find(_ context.Context, filter model.BookingFilter) ([]*model.Booking, error) {
	s.filters = append(s.filters, filter)
	return s.bookings, s.err
}

type countingRepo struct {
	repository.RoomRepository
	findAll int
}

func (r *countingRepo) FindAll(ctx context.Context, activeOnly bool) ([]*model.Room, error) {
	r.findAll++
	return r.RoomRepository.FindAll(ctx, activeOnly)
}

func testConfig() *config.Config {
	return &config.Config{Log: logger.Nop(), RoomCacheTTL: time.Minute}
}

func rooms() []*model.Room {
	return []*model.Room{
		{ID: "a101", Building: "A", Name: "101", Capacity: 30, Active: true},
		{ID: "b100", Building: "B", Name: "100", Capacity: 30, Features: []string{"projector"}, Active: true},
		{ID: "old", Building: "Z", Name: "Old", Capacity: 300, Features: []string{"projector"}, Active: false},
	}
}

func newService(bookings *stubBookings) (RoomService, *countingRepo) {
	repo := &countingRepo{RoomRepository: repository.NewMemoryRoomRepository(rooms())}
	return NewRoomService(repo, bookings, validator.NewSuggestionValidator(logger.Nop()), testConfig()), repo
}

func TestList_CachesCatalog(t *testing.T) {
	svc, repo := newService(&stubBookings{})
	ctx := context.Background()

	first, err := svc.List(ctx, true)
	require.NoError(t, err)
	require.Len(t, first, 2)

	_, err = svc.List(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, 1, repo.findAll)

	all, err := svc.List(ctx, false)
	require.NoError(t, err)
	assert.Len(t, all, 3)
	assert.Equal(t, 2, repo.findAll)
}

func TestGetByID(t *testing.T) {
	svc, _ := newService(&stubBookings{})

	room, err := svc.GetByID(context.Background(), " b100 ")
	require.NoError(t, err)
	assert.Equal(t, "B-100", room.Label())

	_, err = svc.GetByID(context.Background(), "nope")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))

	_, err = svc.GetByID(context.Background(), "")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidInput))
}

func TestSuggest_PrefersProjectorForLecture(t *testing.T) {
	bookings := &stubBookings{}
	svc, _ := newService(bookings)

	got, err := svc.Suggest(context.Background(), &model.SuggestionRequest{
		Date: "2025-11-05", Time: "10:00", Capacity: 20, Purpose: "  Guest   Lecture ",
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"B-100"}, got.SuggestedRooms)
	assert.Equal(t, recommender.ReasonProjector, got.Reason)

	require.Len(t, bookings.filters, 1)
	f := bookings.filters[0]
	assert.Equal(t, model.StatusApproved, f.Status)
	require.NotNil(t, f.Window)
	assert.Equal(t, time.Date(2025, 11, 5, 0, 0, 0, 0, time.UTC), f.Window.Start)
	assert.Equal(t, time.Date(2025, 11, 6, 0, 0, 0, 0, time.UTC), f.Window.End)
}

func TestSuggest_InactiveRoomsNeverSuggested(t *testing.T) {
	svc, _ := newService(&stubBookings{})

	got, err := svc.Suggest(context.Background(), &model.SuggestionRequest{
		Date: "2025-11-05", Time: "10:00", Capacity: 100, Purpose: "Seminar",
	})
	require.NoError(t, err)

	assert.Empty(t, got.SuggestedRooms)
	assert.Equal(t, recommender.ReasonAlternatives, got.Reason)
}

func TestSuggest_OccupiedRoomsFallBack(t *testing.T) {
	start := time.Date(2025, 11, 5, 9, 0, 0, 0, time.UTC)
	svc, _ := newService(&stubBookings{bookings: []*model.Booking{
		{ID: "x", RoomID: "a101", Status: model.StatusApproved, StartTime: start, EndTime: start.Add(2 * time.Hour)},
		{ID: "y", RoomID: "b100", Status: model.StatusApproved, StartTime: start, EndTime: start.Add(2 * time.Hour)},
	}})

	got, err := svc.Suggest(context.Background(), &model.SuggestionRequest{
		Date: "2025-11-05", Time: "10:00", Capacity: 10, Purpose: "Exam",
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"A-101", "B-100"}, got.SuggestedRooms)
	assert.Equal(t, recommender.ReasonAlternatives, got.Reason)
}

func TestSuggest_Validation(t *testing.T) {
	svc, _ := newService(&stubBookings{})

	_, err := svc.Suggest(context.Background(), &model.SuggestionRequest{Date: "tomorrow"})

	require.Error(t, err)
	appErr := apperrors.AsAppError(err)
	assert.Equal(t, 400, appErr.StatusCode())
	errs, ok := appErr.Details["errors"].(validator.ValidationErrors)
	require.True(t, ok)
	assert.Len(t, errs, 4)
}

func TestSuggest_BookingStoreFailure(t *testing.T) {
	svc, _ := newService(&stubBookings{err: errors.New("db down")})

	_, err := svc.Suggest(context.Background(), &model.SuggestionRequest{
		Date: "2025-11-05", Time: "10:00", Capacity: 10, Purpose: "Exam",
	})

	assert.True(t, apperrors.HasCode(err, apperrors.CodeInternal))
}
