package main

import (
	"classbook/internal/bookings/events"
	"classbook/internal/bookings/handler"
	"classbook/internal/bookings/repository"
	"classbook/internal/bookings/service"
	"classbook/internal/bookings/validator"
	roomshandler "classbook/internal/rooms/handler"
	roomsrepository "classbook/internal/rooms/repository"
	roomsservice "classbook/internal/rooms/service"
	roomsvalidator "classbook/internal/rooms/validator"
	"classbook/pkg/app"
	"classbook/pkg/config"
	"classbook/pkg/kafka"
	kafka_config "classbook/pkg/kafka/config"
	kafka_middleware "classbook/pkg/kafka/middleware"
	"classbook/pkg/seed"
)

const ServiceName = "bookings"

type stores struct {
	rooms    roomsrepository.RoomRepository
	bookings repository.BookingRepository
	locks    repository.RoomLockRepository
}

func main() {
	cfg := config.Load(ServiceName)

	if err := cfg.Validate(); err != nil {
		cfg.Log.Fatal("Invalid configuration", "error", err)
	}
	cfg.LogConfiguration()

	cfg.Log.Info("Starting Bookings service")
	s := initStores(cfg)
	publisher := initPublisher(cfg)

	roomService := roomsservice.NewRoomService(
		s.rooms,
		s.bookings,
		roomsvalidator.NewSuggestionValidator(cfg.Log),
		cfg,
	)
	bookingService := service.NewBookingService(
		s.bookings,
		s.locks,
		s.rooms,
		validator.NewBookingValidator(cfg.Log),
		publisher,
		cfg,
	)

	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(
		handler.NewHealthHandler(s.rooms, cfg.Log),
		handler.NewBookingHandler(bookingService, cfg.AdminKey, cfg.Log),
		roomshandler.NewRoomHandler(roomService, cfg.Log),
	)
	serverApp.OnShutdown(func() {
		if err := publisher.Close(); err != nil {
			cfg.Log.Error("Failed to close event publisher", "error", err)
		}
	})
	serverApp.Run()
}

func initStores(cfg *config.Config) stores {
	var s stores

	switch cfg.StorageBackend {
	case config.BackendMongo:
		cfg.SetMongo()
		s.rooms = roomsrepository.NewMongoRoomRepository(cfg)
		s.bookings = repository.NewMongoBookingRepository(cfg)
	default:
		catalog, err := seed.Load(cfg.SeedFile)
		if err != nil {
			cfg.Log.Fatal("Failed to load seed catalog", "error", err)
		}
		s.rooms = roomsrepository.NewMemoryRoomRepository(catalog.Rooms)
		s.bookings = repository.NewMemoryBookingRepository(catalog.Bookings)
		cfg.Log.Info("In-memory stores seeded",
			"rooms", len(catalog.Rooms),
			"bookings", len(catalog.Bookings),
		)
	}

	switch cfg.LockBackend {
	case config.BackendMongo:
		s.locks = repository.NewMongoRoomLockRepository(cfg)
	case config.BackendRedis:
		cfg.SetRedis()
		s.locks = repository.NewRedisRoomLockRepository(cfg.Client.Redis)
	default:
		s.locks = repository.NewMemoryRoomLockRepository()
	}

	cfg.Log.Info("Stores initialized",
		"storage_backend", cfg.StorageBackend,
		"lock_backend", cfg.LockBackend,
	)
	return s
}

func initPublisher(cfg *config.Config) events.Publisher {
	if !cfg.KafkaEnabled {
		cfg.Log.Info("Kafka disabled, booking events are not published")
		return events.NewNoopPublisher()
	}

	kafkaCfg, err := kafka_config.Load()
	if err != nil {
		cfg.Log.Fatal("Failed to load Kafka configuration", "error", err)
	}
	kafkaCfg.LogConfiguration(cfg.Log.Info)

	producer, err := kafka.NewProducer(kafkaCfg, cfg.Log, cfg.KafkaBookingTopic, cfg.KafkaDLQTopic)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka producer", "error", err)
	}
	if kafkaCfg.EnableMiddleware {
		producer.Use(kafka_middleware.LoggingProducerMiddleware(cfg.Log))
	}

	return events.NewKafkaPublisher(producer, ServiceName, cfg.Log)
}
