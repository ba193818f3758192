// Package recommender picks up to two rooms for a requested instant.
package recommender

import (
	"fmt"
	"strings"
	"time"

	"classbook/pkg/model"
)

const (
	MaxSuggestions = 2

	FeatureProjector = "projector"

	ReasonAlternatives = "No rooms available at requested time. Showing alternative rooms with sufficient capacity."
	ReasonProjector    = "Recommended rooms with projector facilities for presentations. Available at requested time."
	ReasonBestFit      = "Best-fit rooms based on capacity and availability at requested time."
)

var presentationKeywords = []string{"lecture", "seminar"}

// RequestedInstant combines a calendar date and a wall-clock time into a UTC instant.
func RequestedInstant(date, clock string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, fmt.Sprintf("%sT%s:00Z", date, clock))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date/time %q %q: %w", date, clock, err)
	}
	return t.UTC(), nil
}

// Suggest returns at most MaxSuggestions room labels for the instant at.
// Rooms keep their input order. Rooms below minCapacity are never suggested.
// A room is occupied when an approved booking for it contains at.
func Suggest(at time.Time, minCapacity int, purpose string, rooms []*model.Room, approved []*model.Booking) model.Suggestion {
	suitable := make([]*model.Room, 0, len(rooms))
	for _, r := range rooms {
		if r != nil && r.Capacity >= minCapacity {
			suitable = append(suitable, r)
		}
	}

	occupied := occupiedRooms(at, approved)

	available := make([]*model.Room, 0, len(suitable))
	for _, r := range suitable {
		if !occupied[r.ID] {
			available = append(available, r)
		}
	}

	if len(available) == 0 {
		return model.Suggestion{SuggestedRooms: labels(suitable), Reason: ReasonAlternatives}
	}

	if isPresentation(purpose) {
		var withProjector []*model.Room
		for _, r := range available {
			if r.HasFeature(FeatureProjector) {
				withProjector = append(withProjector, r)
			}
		}
		if len(withProjector) > 0 {
			return model.Suggestion{SuggestedRooms: labels(withProjector), Reason: ReasonProjector}
		}
	}

	return model.Suggestion{SuggestedRooms: labels(available), Reason: ReasonBestFit}
}

func occupiedRooms(at time.Time, bookings []*model.Booking) map[string]bool {
	occupied := make(map[string]bool)
	for _, b := range bookings {
		if b == nil || !b.IsApproved() {
			continue
		}
		if b.Range().Contains(at) {
			occupied[b.RoomID] = true
		}
	}
	return occupied
}

func isPresentation(purpose string) bool {
	lower := strings.ToLower(purpose)
	for _, kw := range presentationKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

func labels(rooms []*model.Room) []string {
	n := len(rooms)
	if n > MaxSuggestions {
		n = MaxSuggestions
	}
	out := make([]string, 0, n)
	for _, r := range rooms[:n] {
		out = append(out, r.Label())
	}
	return out
}
