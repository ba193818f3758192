package recommender

import (
	"testing"
	"time"

	"classbook/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustInstant(t *testing.T, date, clock string) time.Time {
	t.Helper()
	at, err := RequestedInstant(date, clock)
	require.NoError(t, err)
	return at
}

func approved(roomID, start, end string) *model.Booking {
	s, _ := time.Parse(time.RFC3339, start)
	e, _ := time.Parse(time.RFC3339, end)
	return &model.Booking{ID: "b-" + roomID, RoomID: roomID, StartTime: s, EndTime: e, Status: model.StatusApproved}
}

func twoRooms() []*model.Room {
	return []*model.Room{
		{ID: "b100", Building: "B", Name: "100", Capacity: 30, Features: []string{"projector"}, Active: true},
		{ID: "a101", Building: "A", Name: "101", Capacity: 30, Active: true},
	}
}

func TestRequestedInstant(t *testing.T) {
	at := mustInstant(t, "2025-11-05", "10:30")
	assert.Equal(t, time.Date(2025, 11, 5, 10, 30, 0, 0, time.UTC), at)

	_, err := RequestedInstant("2025-11-05", "25:00")
	assert.Error(t, err)
	_, err = RequestedInstant("05/11/2025", "10:00")
	assert.Error(t, err)
}

func TestSuggest_LecturePrefersProjector(t *testing.T) {
	at := mustInstant(t, "2025-11-05", "10:00")

	got := Suggest(at, 20, "Guest Lecture", twoRooms(), nil)

	assert.Equal(t, []string{"B-100"}, got.SuggestedRooms)
	assert.Equal(t, ReasonProjector, got.Reason)
	assert.Contains(t, got.Reason, "projector")
}

func TestSuggest_SeminarKeywordIsCaseInsensitive(t *testing.T) {
	at := mustInstant(t, "2025-11-05", "10:00")

	got := Suggest(at, 20, "Research SEMINAR", twoRooms(), nil)

	assert.Equal(t, ReasonProjector, got.Reason)
}

func TestSuggest_FullyBookedShowsAlternatives(t *testing.T) {
	at := mustInstant(t, "2025-11-05", "10:00")
	bookings := []*model.Booking{
		approved("b100", "2025-11-05T09:00:00Z", "2025-11-05T11:00:00Z"),
		approved("a101", "2025-11-05T10:00:00Z", "2025-11-05T12:00:00Z"),
	}

	got := Suggest(at, 20, "Guest Lecture", twoRooms(), bookings)

	assert.Equal(t, []string{"B-100", "A-101"}, got.SuggestedRooms)
	assert.Equal(t, ReasonAlternatives, got.Reason)
	assert.Contains(t, got.Reason, "alternative rooms")
}

func TestSuggest_CapacityFilterAppliesToFallback(t *testing.T) {
	rooms := []*model.Room{
		{ID: "small", Building: "A", Name: "Small", Capacity: 10, Active: true},
		{ID: "big", Building: "A", Name: "Big", Capacity: 60, Active: true},
	}
	at := mustInstant(t, "2025-11-05", "10:00")
	bookings := []*model.Booking{approved("big", "2025-11-05T10:00:00Z", "2025-11-05T11:00:00Z")}

	got := Suggest(at, 40, "Exam", rooms, bookings)

	assert.Equal(t, []string{"A-Big"}, got.SuggestedRooms)
	assert.Equal(t, ReasonAlternatives, got.Reason)
}

func TestSuggest_NoSuitableRooms(t *testing.T) {
	at := mustInstant(t, "2025-11-05", "10:00")

	got := Suggest(at, 500, "Exam", twoRooms(), nil)

	assert.Empty(t, got.SuggestedRooms)
	assert.Equal(t, ReasonAlternatives, got.Reason)
}

func TestSuggest_HalfOpenBoundaries(t *testing.T) {
	rooms := []*model.Room{{ID: "a101", Building: "A", Name: "101", Capacity: 30, Active: true}}
	bookings := []*model.Booking{approved("a101", "2025-11-05T10:00:00Z", "2025-11-05T12:00:00Z")}

	atStart := Suggest(mustInstant(t, "2025-11-05", "10:00"), 1, "Meeting", rooms, bookings)
	assert.Equal(t, ReasonAlternatives, atStart.Reason, "booking start is occupied")

	atEnd := Suggest(mustInstant(t, "2025-11-05", "12:00"), 1, "Meeting", rooms, bookings)
	assert.Equal(t, ReasonBestFit, atEnd.Reason, "booking end is free")
	assert.Equal(t, []string{"A-101"}, atEnd.SuggestedRooms)
}

func TestSuggest_PendingBookingsDoNotOccupy(t *testing.T) {
	at := mustInstant(t, "2025-11-05", "10:00")
	pending := approved("b100", "2025-11-05T09:00:00Z", "2025-11-05T11:00:00Z")
	pending.Status = model.StatusPending

	got := Suggest(at, 20, "Guest Lecture", twoRooms(), []*model.Booking{pending})

	assert.Equal(t, []string{"B-100"}, got.SuggestedRooms)
}

func TestSuggest_LectureWithoutProjectorFallsBackToAvailable(t *testing.T) {
	rooms := []*model.Room{
		{ID: "1", Building: "C", Name: "One", Capacity: 30},
		{ID: "2", Building: "C", Name: "Two", Capacity: 30, Features: []string{"whiteboard"}},
		{ID: "3", Building: "C", Name: "Three", Capacity: 30},
	}

	got := Suggest(mustInstant(t, "2025-11-05", "10:00"), 10, "Lecture", rooms, nil)

	assert.Equal(t, []string{"C-One", "C-Two"}, got.SuggestedRooms)
	assert.Equal(t, ReasonBestFit, got.Reason)
}

func TestSuggest_NonPresentationTakesFirstTwoAvailable(t *testing.T) {
	rooms := append(twoRooms(), &model.Room{ID: "c1", Building: "C", Name: "Lab", Capacity: 35, Features: []string{"projector"}})
	bookings := []*model.Booking{approved("b100", "2025-11-05T09:00:00Z", "2025-11-05T11:00:00Z")}

	got := Suggest(mustInstant(t, "2025-11-05", "10:00"), 20, "Team meeting", rooms, bookings)

	assert.Equal(t, []string{"A-101", "C-Lab"}, got.SuggestedRooms)
	assert.Equal(t, ReasonBestFit, got.Reason)
}

func TestSuggest_AtMostTwo(t *testing.T) {
	var rooms []*model.Room
	for _, name := range []string{"1", "2", "3", "4"} {
		rooms = append(rooms, &model.Room{ID: name, Building: "D", Name: name, Capacity: 10, Features: []string{"projector"}})
	}

	got := Suggest(mustInstant(t, "2025-11-05", "10:00"), 1, "Seminar", rooms, nil)

	assert.Len(t, got.SuggestedRooms, MaxSuggestions)
	assert.Equal(t, []string{"D-1", "D-2"}, got.SuggestedRooms)
}
