package service

import (
	"context"
	"errors"
	"fmt"

	roomserrors "classbook/internal/rooms/errors"
	"classbook/internal/rooms/recommender"
	"classbook/internal/rooms/repository"
	"classbook/internal/rooms/validator"
	"classbook/pkg/config"
	apperrors "classbook/pkg/errors"
	"classbook/pkg/model"
	"classbook/pkg/sanitizer"

	"github.com/jinzhu/now"
	"github.com/patrickmn/go-cache"
)

const (
	cacheKeyAll    = "rooms:all"
	cacheKeyActive = "rooms:active"
)

// BookingReader is the read side of the booking store the recommender needs.
type BookingReader interface {
	Find(ctx context.Context, filter model.BookingFilter) ([]*model.Booking, error)
}

type RoomService interface {
	List(ctx context.Context, activeOnly bool) ([]*model.Room, error)
	GetByID(ctx context.Context, id string) (*model.Room, error)
	Suggest(ctx context.Context, req *model.SuggestionRequest) (*model.Suggestion, error)
}

type roomService struct {
	repo      repository.RoomRepository
	bookings  BookingReader
	validator *validator.SuggestionValidator
	cache     *cache.Cache
	cfg       *config.Config
}

func NewRoomService(
	repo repository.RoomRepository,
	bookings BookingReader,
	validator *validator.SuggestionValidator,
	cfg *config.Config,
) RoomService {
	return &roomService{
		repo:      repo,
		bookings:  bookings,
		validator: validator,
		cache:     cache.New(cfg.RoomCacheTTL, 2*cfg.RoomCacheTTL),
		cfg:       cfg,
	}
}

func (s *roomService) List(ctx context.Context, activeOnly bool) ([]*model.Room, error) {
	key := cacheKeyAll
	if activeOnly {
		key = cacheKeyActive
	}

	if cached, ok := s.cache.Get(key); ok {
		return cached.([]*model.Room), nil
	}

	rooms, err := s.repo.FindAll(ctx, activeOnly)
	if err != nil {
		s.cfg.Log.Error("Failed to list rooms", "active_only", activeOnly, "error", err)
		return nil, apperrors.Internal("Failed to retrieve rooms", err)
	}

	s.cache.SetDefault(key, rooms)
	return rooms, nil
}

func (s *roomService) GetByID(ctx context.Context, id string) (*model.Room, error) {
	id = sanitizer.SanitizeID(id)
	if id == "" {
		return nil, apperrors.InvalidInput("Room ID cannot be empty")
	}

	room, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, roomserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Room", id)
		}
		s.cfg.Log.Error("Failed to retrieve room", "id", id, "error", err)
		return nil, apperrors.Internal("Failed to retrieve room", err)
	}

	return room, nil
}

// Suggest never writes: it reads the active catalog and the approved bookings
// of the requested day, then delegates to the recommender.
func (s *roomService) Suggest(ctx context.Context, req *model.SuggestionRequest) (*model.Suggestion, error) {
	req.Purpose = sanitizer.SanitizeText(req.Purpose)

	if errs := s.validator.Validate(req); len(errs) > 0 {
		s.cfg.Log.Warn("Suggestion request validation failed", "error", errs)
		return nil, apperrors.Validation("Suggestion request validation failed", map[string]any{"errors": errs})
	}

	at, err := recommender.RequestedInstant(req.Date, req.Time)
	if err != nil {
		return nil, apperrors.Validation("Suggestion request validation failed", map[string]any{
			"errors": validator.ValidationErrors{{Field: "date", Message: err.Error()}},
		})
	}

	rooms, err := s.List(ctx, true)
	if err != nil {
		return nil, err
	}

	day := now.With(at).BeginningOfDay()
	window := model.NewTimeRange(day, day.AddDate(0, 0, 1))
	approved, err := s.bookings.Find(ctx, model.BookingFilter{
		Status: model.StatusApproved,
		Window: &window,
	})
	if err != nil {
		s.cfg.Log.Error("Failed to load approved bookings", "date", req.Date, "error", err)
		return nil, apperrors.Internal("Failed to retrieve bookings", fmt.Errorf("suggest: %w", err))
	}

	suggestion := recommender.Suggest(at, req.Capacity, req.Purpose, rooms, approved)

	s.cfg.Log.Debug("Room suggestion computed",
		"date", req.Date,
		"time", req.Time,
		"capacity", req.Capacity,
		"suggested", suggestion.SuggestedRooms,
	)
	return &suggestion, nil
}
