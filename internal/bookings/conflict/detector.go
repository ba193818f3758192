// Package conflict decides whether a candidate time range collides with the
// approved bookings of a room.
package conflict

import "classbook/pkg/model"

// FindConflict returns the first approved booking, in input order, whose range
// overlaps the candidate. Pending and denied bookings never block.
// The caller is responsible for scoping existing to a single room.
func FindConflict(candidate model.TimeRange, existing []*model.Booking) (*model.Booking, bool) {
	for _, b := range existing {
		if b == nil || !b.IsApproved() {
			continue
		}
		if candidate.Overlaps(b.Range()) {
			return b, true
		}
	}
	return nil, false
}

// ExcludeBooking returns existing without the booking identified by id.
// Used when re-checking a booking against its own room on approval.
func ExcludeBooking(existing []*model.Booking, id string) []*model.Booking {
	out := make([]*model.Booking, 0, len(existing))
	for _, b := range existing {
		if b != nil && b.ID == id {
			continue
		}
		out = append(out, b)
	}
	return out
}
