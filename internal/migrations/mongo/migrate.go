package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	bookingsrepository "classbook/internal/bookings/repository"
	"classbook/internal/migrations/mongo/validators"
	roomsrepository "classbook/internal/rooms/repository"
	"classbook/pkg/logger"
	"classbook/pkg/seed"
)

var (
	RoomsIndexes = []mongo.IndexModel{
		{Keys: bson.D{{Key: "active", Value: 1}}},
	}

	BookingsIndexes = []mongo.IndexModel{
		{Keys: bson.D{
			{Key: "room_id", Value: 1},
			{Key: "status", Value: 1},
			{Key: "start_time", Value: 1},
			{Key: "end_time", Value: 1},
		}},
		{Keys: bson.D{
			{Key: "status", Value: 1},
			{Key: "start_time", Value: 1},
		}},
	}

	// Expired locks are also taken over on acquire; the TTL index only keeps
	// the collection small.
	RoomLocksIndexes = []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0),
		},
	}
)

type collectionDef struct {
	Name      string
	Indexes   []mongo.IndexModel
	Validator bson.M
}

func collections() []collectionDef {
	return []collectionDef{
		{Name: roomsrepository.CollectionName, Indexes: RoomsIndexes, Validator: validators.RoomValidator},
		{Name: bookingsrepository.CollectionName, Indexes: BookingsIndexes, Validator: validators.BookingValidator},
		{Name: bookingsrepository.LockCollectionName, Indexes: RoomLocksIndexes, Validator: validators.RoomLockValidator},
	}
}

// RunMigration ensures collections, validators and indexes, then upserts the
// catalog when one is given.
func RunMigration(ctx context.Context, db *mongo.Database, catalog *seed.Catalog, log *logger.Logger) error {
	log.Info("Running Mongo migrations", "database", db.Name())

	for _, def := range collections() {
		if err := ensureCollection(ctx, db, def.Name, def.Validator, log); err != nil {
			return fmt.Errorf("failed to ensure collection %s: %w", def.Name, err)
		}
		if err := ensureIndexes(ctx, db, def.Name, def.Indexes, log); err != nil {
			return fmt.Errorf("failed to ensure indexes for %s: %w", def.Name, err)
		}
	}

	if catalog != nil {
		if err := seedCatalog(ctx, db, catalog, log); err != nil {
			return fmt.Errorf("failed to seed catalog: %w", err)
		}
	}

	log.Info("All migrations applied successfully")
	return nil
}

func ensureCollection(ctx context.Context, db *mongo.Database, name string, validator bson.M, log *logger.Logger) error {
	existing, err := db.ListCollectionNames(ctx, bson.D{{Key: "name", Value: name}})
	if err != nil {
		return err
	}

	if len(existing) == 0 {
		log.Info("Creating collection", "collection", name)
		opts := options.CreateCollection().SetValidator(validator)
		if err := db.CreateCollection(ctx, name, opts); err != nil {
			return fmt.Errorf("failed creating %s: %w", name, err)
		}
		return nil
	}

	log.Info("Collection already exists, updating validator", "collection", name)
	command := bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: validator},
	}
	if err := db.RunCommand(ctx, command).Err(); err != nil {
		log.Warn("Failed updating validator", "collection", name, "error", err)
	}
	return nil
}

func ensureIndexes(ctx context.Context, db *mongo.Database, name string, models []mongo.IndexModel, log *logger.Logger) error {
	if len(models) == 0 {
		return nil
	}
	if _, err := db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
		return err
	}
	log.Info("Ensured indexes", "collection", name, "count", len(models))
	return nil
}

// seedCatalog upserts by _id so reruns converge on the catalog content.
// Bookings that already exist are left alone to keep decisions made since.
func seedCatalog(ctx context.Context, db *mongo.Database, catalog *seed.Catalog, log *logger.Logger) error {
	rooms := db.Collection(roomsrepository.CollectionName)
	for _, room := range catalog.Rooms {
		_, err := rooms.ReplaceOne(ctx, bson.M{"_id": room.ID}, room, options.Replace().SetUpsert(true))
		if err != nil {
			return fmt.Errorf("room %s: %w", room.ID, err)
		}
	}

	bookings := db.Collection(bookingsrepository.CollectionName)
	inserted := 0
	for _, booking := range catalog.Bookings {
		res, err := bookings.UpdateOne(ctx,
			bson.M{"_id": booking.ID},
			bson.M{"$setOnInsert": booking},
			options.Update().SetUpsert(true),
		)
		if err != nil {
			return fmt.Errorf("booking %s: %w", booking.ID, err)
		}
		if res.UpsertedCount > 0 {
			inserted++
		}
	}

	log.Info("Catalog seeded", "rooms", len(catalog.Rooms), "bookings_inserted", inserted)
	return nil
}
