package testutil

import (
	"net/http/httptest"
	"testing"
	"time"

	"classbook/internal/bookings/events"
	bookingshandler "classbook/internal/bookings/handler"
	bookingsrepository "classbook/internal/bookings/repository"
	bookingsservice "classbook/internal/bookings/service"
	bookingsvalidator "classbook/internal/bookings/validator"
	roomshandler "classbook/internal/rooms/handler"
	roomsrepository "classbook/internal/rooms/repository"
	roomsservice "classbook/internal/rooms/service"
	roomsvalidator "classbook/internal/rooms/validator"
	"classbook/pkg/app"
	"classbook/pkg/client"
	"classbook/pkg/config"
	"classbook/pkg/logger"
	"classbook/pkg/seed"
)

const AdminKey = "integration-admin-key"

// Stack is the whole service running on in-memory stores seeded from the
// embedded catalog.
type Stack struct {
	Server   *httptest.Server
	Client   *Client
	Bookings bookingsrepository.BookingRepository
}

func NewStack(t *testing.T) *Stack {
	t.Helper()

	cfg := &config.Config{
		StorageBackend:    config.BackendMemory,
		LockBackend:       config.BackendMemory,
		Port:              "0",
		AdminKey:          AdminKey,
		RateLimitRequests: 1000,
		RateLimitWindow:   time.Minute,
		RequestTimeout:    5 * time.Second,
		IdempotencyTTL:    time.Minute,
		MaxRequestSize:    1 << 20,
		ShutdownTimeout:   time.Second,
		LockTTL:           5 * time.Second,
		LockWaitTimeout:   2 * time.Second,
		LockRetryInterval: time.Millisecond,
		RoomCacheTTL:      time.Minute,
		Log:               logger.Nop(),
		Client:            client.NewClient(),
	}

	catalog, err := seed.Load("")
	if err != nil {
		t.Fatalf("failed to load catalog: %v", err)
	}

	rooms := roomsrepository.NewMemoryRoomRepository(catalog.Rooms)
	bookings := bookingsrepository.NewMemoryBookingRepository(catalog.Bookings)
	locks := bookingsrepository.NewMemoryRoomLockRepository()

	roomService := roomsservice.NewRoomService(rooms, bookings, roomsvalidator.NewSuggestionValidator(cfg.Log), cfg)
	bookingService := bookingsservice.NewBookingService(
		bookings,
		locks,
		rooms,
		bookingsvalidator.NewBookingValidator(cfg.Log),
		events.NewNoopPublisher(),
		cfg,
	)

	a := app.NewApplication(cfg)
	a.SetApp(
		bookingshandler.NewHealthHandler(rooms, cfg.Log),
		bookingshandler.NewBookingHandler(bookingService, cfg.AdminKey, cfg.Log),
		roomshandler.NewRoomHandler(roomService, cfg.Log),
	)

	server := httptest.NewServer(a.Handler())
	t.Cleanup(server.Close)

	return &Stack{
		Server:   server,
		Client:   NewClient(server.URL),
		Bookings: bookings,
	}
}
