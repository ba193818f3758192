package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"classbook/internal/bookings/conflict"
	bookingserrors "classbook/internal/bookings/errors"
	"classbook/internal/bookings/events"
	"classbook/internal/bookings/repository"
	"classbook/internal/bookings/validator"
	roomserrors "classbook/internal/rooms/errors"
	"classbook/pkg/config"
	apperrors "classbook/pkg/errors"
	"classbook/pkg/model"
	"classbook/pkg/sanitizer"

	"github.com/google/uuid"
	"github.com/jinzhu/now"
)

const DateLayout = "2006-01-02"

type BookingService interface {
	Create(ctx context.Context, req *model.BookingRequest) (*model.Booking, error)
	GetByID(ctx context.Context, id string) (*model.Booking, error)
	List(ctx context.Context, query ListQuery) ([]*model.Booking, error)
	Approve(ctx context.Context, id string) (*model.Booking, error)
	Deny(ctx context.Context, id string) (*model.Booking, error)
}

// ListQuery holds the raw list filters. Date is a UTC calendar day.
type ListQuery struct {
	RoomID string
	Date   string
	Status string
}

// RoomFinder resolves the room a booking refers to.
type RoomFinder interface {
	FindByID(ctx context.Context, id string) (*model.Room, error)
}

type bookingService struct {
	repo      repository.BookingRepository
	lockRepo  repository.RoomLockRepository
	rooms     RoomFinder
	validator *validator.BookingValidator
	publisher events.Publisher
	cfg       *config.Config
	now       func() time.Time
}

func NewBookingService(
	repo repository.BookingRepository,
	lockRepo repository.RoomLockRepository,
	rooms RoomFinder,
	validator *validator.BookingValidator,
	publisher events.Publisher,
	cfg *config.Config,
) BookingService {
	return &bookingService{
		repo:      repo,
		lockRepo:  lockRepo,
		rooms:     rooms,
		validator: validator,
		publisher: publisher,
		cfg:       cfg,
		now:       func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
	}
}

func (s *bookingService) Create(ctx context.Context, req *model.BookingRequest) (*model.Booking, error) {
	s.sanitize(req)

	if errs := s.validator.Validate(req); len(errs) > 0 {
		s.cfg.Log.Warn("Booking validation failed", "error", errs)
		return nil, apperrors.Validation("Booking validation failed", map[string]any{"errors": errs})
	}

	timeRange, err := validator.ParseRange(req)
	if err != nil {
		return nil, apperrors.InvalidInput("Invalid booking time range")
	}

	room, err := s.rooms.FindByID(ctx, req.RoomID)
	if err != nil {
		if errors.Is(err, roomserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Room", req.RoomID)
		}
		return nil, apperrors.Internal("Failed to retrieve room", err)
	}
	if !room.Active {
		return nil, apperrors.Validation("Booking validation failed", map[string]any{
			"errors": validator.ValidationErrors{{Field: "room_id", Message: "room_id refers to an inactive room"}},
		})
	}

	booking := &model.Booking{
		ID:             uuid.NewString(),
		RoomID:         req.RoomID,
		RequesterEmail: req.RequesterEmail,
		RequesterName:  req.RequesterName,
		Purpose:        req.Purpose,
		StartTime:      timeRange.Start,
		EndTime:        timeRange.End,
		Status:         model.StatusPending,
		CreatedAt:      s.now(),
	}

	err = s.withRoomLock(ctx, booking.RoomID, func() error {
		return s.repo.ExecuteTransaction(ctx, func(txCtx context.Context) error {
			if err := s.verifyNoConflict(txCtx, booking); err != nil {
				return err
			}
			if err := s.repo.Create(txCtx, booking); err != nil {
				return apperrors.Internal("Failed to create booking", err)
			}
			return nil
		})
	})
	if err != nil {
		s.logFailure("Failed to create booking", err, "room_id", booking.RoomID)
		return nil, err
	}

	s.cfg.Log.Info("Booking created successfully",
		"id", booking.ID,
		"room_id", booking.RoomID,
		"start_time", booking.StartTime,
		"end_time", booking.EndTime,
	)
	s.publisher.Publish(ctx, events.BookingCreated, booking)
	return booking, nil
}

func (s *bookingService) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	id = sanitizer.SanitizeID(id)
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapRepoError(err, id, "Failed to retrieve booking")
	}
	return booking, nil
}

func (s *bookingService) List(ctx context.Context, query ListQuery) ([]*model.Booking, error) {
	filter := model.BookingFilter{
		RoomID: sanitizer.SanitizeID(query.RoomID),
		Status: model.BookingStatus(strings.ToLower(strings.TrimSpace(query.Status))),
	}

	if filter.Status != "" && !filter.Status.Valid() {
		return nil, apperrors.InvalidInput(fmt.Sprintf("invalid status parameter: %s", query.Status))
	}

	if query.Date != "" {
		window, err := DayWindow(query.Date)
		if err != nil {
			return nil, apperrors.InvalidInput(fmt.Sprintf("invalid date parameter: %s", query.Date))
		}
		filter.Window = &window
	}

	bookings, err := s.repo.Find(ctx, filter)
	if err != nil {
		s.cfg.Log.Error("Failed to list bookings", "room_id", filter.RoomID, "date", query.Date, "error", err)
		return nil, apperrors.Internal("Failed to retrieve bookings", err)
	}

	s.cfg.Log.Debug("Booking list completed",
		"room_id", filter.RoomID,
		"status", filter.Status,
		"date", query.Date,
		"count", len(bookings),
	)
	return bookings, nil
}

// DayWindow returns the UTC day [00:00, next 00:00) for a YYYY-MM-DD date.
func DayWindow(date string) (model.TimeRange, error) {
	t, err := time.ParseInLocation(DateLayout, date, time.UTC)
	if err != nil {
		return model.TimeRange{}, err
	}
	start := now.With(t).BeginningOfDay()
	return model.NewTimeRange(start, start.AddDate(0, 0, 1)), nil
}

// Approve re-runs conflict detection under the room lock so two pending
// bookings for the same slot can never both become approved.
func (s *bookingService) Approve(ctx context.Context, id string) (*model.Booking, error) {
	current, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Status != model.StatusPending {
		return nil, alreadyDecided(current)
	}

	var approved *model.Booking
	err = s.withRoomLock(ctx, current.RoomID, func() error {
		return s.repo.ExecuteTransaction(ctx, func(txCtx context.Context) error {
			booking, err := s.repo.FindByID(txCtx, current.ID)
			if err != nil {
				return s.mapRepoError(err, current.ID, "Failed to retrieve booking")
			}
			if booking.Status != model.StatusPending {
				return alreadyDecided(booking)
			}
			if err := s.verifyNoConflict(txCtx, booking); err != nil {
				return err
			}

			approved, err = s.repo.UpdateStatus(txCtx, booking.ID, model.StatusPending, model.StatusApproved, s.now())
			if err != nil {
				return s.mapRepoError(err, booking.ID, "Failed to approve booking")
			}
			return nil
		})
	})
	if err != nil {
		s.logFailure("Failed to approve booking", err, "id", current.ID)
		return nil, err
	}

	s.cfg.Log.Info("Booking approved", "id", approved.ID, "room_id", approved.RoomID)
	s.publisher.Publish(ctx, events.BookingApproved, approved)
	return approved, nil
}

// Deny cannot create an overlap, so it relies on the conditional update alone.
func (s *bookingService) Deny(ctx context.Context, id string) (*model.Booking, error) {
	id = sanitizer.SanitizeID(id)
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	denied, err := s.repo.UpdateStatus(ctx, id, model.StatusPending, model.StatusDenied, s.now())
	if err != nil {
		if errors.Is(err, bookingserrors.ErrStatusChanged) {
			if current, findErr := s.repo.FindByID(ctx, id); findErr == nil {
				return nil, alreadyDecided(current)
			}
		}
		mapped := s.mapRepoError(err, id, "Failed to deny booking")
		s.logFailure("Failed to deny booking", mapped, "id", id)
		return nil, mapped
	}

	s.cfg.Log.Info("Booking denied", "id", denied.ID, "room_id", denied.RoomID)
	s.publisher.Publish(ctx, events.BookingDenied, denied)
	return denied, nil
}

// --- Helpers ---

func (s *bookingService) sanitize(req *model.BookingRequest) {
	req.RoomID = sanitizer.SanitizeID(req.RoomID)
	req.RequesterEmail = sanitizer.SanitizeEmail(req.RequesterEmail)
	req.RequesterName = sanitizer.SanitizeText(req.RequesterName)
	req.Purpose = sanitizer.SanitizeText(req.Purpose)
	req.StartTime = sanitizer.SanitizeID(req.StartTime)
	req.EndTime = sanitizer.SanitizeID(req.EndTime)
}

// verifyNoConflict checks booking against the approved bookings of its room.
// It must run while the room lock is held.
func (s *bookingService) verifyNoConflict(ctx context.Context, booking *model.Booking) error {
	candidate := booking.Range()
	existing, err := s.repo.Find(ctx, model.BookingFilter{
		RoomID: booking.RoomID,
		Status: model.StatusApproved,
		Window: &candidate,
	})
	if err != nil {
		return apperrors.Internal("Failed to check existing bookings", err)
	}

	other, found := conflict.FindConflict(candidate, conflict.ExcludeBooking(existing, booking.ID))
	if !found {
		return nil
	}

	return apperrors.Conflict(fmt.Sprintf(
		"Booking time overlaps with approved booking %s (%s - %s)",
		other.ID,
		other.StartTime.Format(time.RFC3339),
		other.EndTime.Format(time.RFC3339),
	)).WithDetails(map[string]any{
		"conflicting_booking_id": other.ID,
		"conflicting_start_time": other.StartTime,
		"conflicting_end_time":   other.EndTime,
	})
}

// withRoomLock runs fn while holding the advisory lock of roomID, polling
// until LockWaitTimeout when another request holds it.
func (s *bookingService) withRoomLock(ctx context.Context, roomID string, fn func() error) error {
	owner := uuid.NewString()
	deadline := time.Now().Add(s.cfg.LockWaitTimeout)

	for {
		err := s.lockRepo.TryAcquire(ctx, roomID, owner, s.cfg.LockTTL)
		if err == nil {
			break
		}
		if !errors.Is(err, bookingserrors.ErrLockHeld) {
			return apperrors.Internal("Failed to acquire room lock", err)
		}
		if !time.Now().Before(deadline) {
			return apperrors.Conflict("Room is currently being booked by another request. Please try again.")
		}

		select {
		case <-ctx.Done():
			return apperrors.Timeout("Timed out waiting for room lock")
		case <-time.After(s.cfg.LockRetryInterval):
		}
	}

	defer func() {
		if err := s.lockRepo.Release(context.WithoutCancel(ctx), roomID, owner); err != nil {
			s.cfg.Log.Warn("Failed to release room lock", "room_id", roomID, "error", err)
		}
	}()

	return fn()
}

func (s *bookingService) mapRepoError(err error, id, message string) error {
	switch {
	case apperrors.IsAppError(err):
		return err
	case errors.Is(err, bookingserrors.ErrNotFound):
		return apperrors.NotFoundWithID("Booking", id)
	case errors.Is(err, bookingserrors.ErrStatusChanged):
		return apperrors.Conflict("Booking has already been decided")
	default:
		return apperrors.Internal(message, err)
	}
}

func (s *bookingService) logFailure(msg string, err error, keyvals ...any) {
	args := append(keyvals, "error", err)
	if apperrors.HasCode(err, apperrors.CodeInternal) {
		s.cfg.Log.Error(msg, args...)
		return
	}
	s.cfg.Log.Warn(msg, args...)
}

func alreadyDecided(b *model.Booking) error {
	return apperrors.Conflict(fmt.Sprintf("Booking has already been %s", b.Status)).
		WithDetails(map[string]any{"status": b.Status})
}
