package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	bookingserrors "classbook/internal/bookings/errors"
	mongotx "classbook/pkg/db/mongo"
	"classbook/pkg/model"
)

type memoryBookingRepository struct {
	mu       sync.RWMutex
	bookings map[string]*model.Booking
}

// NewMemoryBookingRepository keeps bookings in process memory. Stored values
// are copied on the way in and out.
func NewMemoryBookingRepository(seed []*model.Booking) BookingRepository {
	r := &memoryBookingRepository{bookings: make(map[string]*model.Booking, len(seed))}
	for _, b := range seed {
		r.bookings[b.ID] = cloneBooking(b)
	}
	return r
}

func (r *memoryBookingRepository) Create(_ context.Context, booking *model.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if booking.CreatedAt.IsZero() {
		booking.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	}
	r.bookings[booking.ID] = cloneBooking(booking)
	return nil
}

func (r *memoryBookingRepository) FindByID(_ context.Context, id string) (*model.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	b, ok := r.bookings[id]
	if !ok {
		return nil, bookingserrors.ErrNotFound
	}
	return cloneBooking(b), nil
}

func (r *memoryBookingRepository) Find(_ context.Context, filter model.BookingFilter) ([]*model.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []*model.Booking{}
	for _, b := range r.bookings {
		if filter.RoomID != "" && b.RoomID != filter.RoomID {
			continue
		}
		if filter.Status != "" && b.Status != filter.Status {
			continue
		}
		if filter.Window != nil && !filter.Window.Overlaps(b.Range()) {
			continue
		}
		out = append(out, cloneBooking(b))
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].StartTime.Equal(out[j].StartTime) {
			return out[i].ID < out[j].ID
		}
		return out[i].StartTime.Before(out[j].StartTime)
	})
	return out, nil
}

func (r *memoryBookingRepository) UpdateStatus(_ context.Context, id string, from, to model.BookingStatus, at time.Time) (*model.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.bookings[id]
	if !ok {
		return nil, bookingserrors.ErrNotFound
	}
	if b.Status != from {
		return nil, bookingserrors.ErrStatusChanged
	}

	b.Status = to
	stamp := at
	switch to {
	case model.StatusApproved:
		b.ApprovedAt = &stamp
	case model.StatusDenied:
		b.DeniedAt = &stamp
	}
	return cloneBooking(b), nil
}

func (r *memoryBookingRepository) Count(_ context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.bookings)), nil
}

// ExecuteTransaction runs fn directly. Atomicity across calls comes from the
// room lock held by the caller.
func (r *memoryBookingRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return fn(ctx)
}

func cloneBooking(b *model.Booking) *model.Booking {
	c := *b
	if b.ApprovedAt != nil {
		t := *b.ApprovedAt
		c.ApprovedAt = &t
	}
	if b.DeniedAt != nil {
		t := *b.DeniedAt
		c.DeniedAt = &t
	}
	return &c
}
