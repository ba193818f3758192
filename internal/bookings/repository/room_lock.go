package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	bookingserrors "classbook/internal/bookings/errors"
	"classbook/pkg/config"
	"classbook/pkg/model"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	LockCollectionName = "Room_locks"
)

// RoomLockRepository provides advisory locks that serialize writes per room.
type RoomLockRepository interface {
	// TryAcquire takes the lock for roomID or returns ErrLockHeld.
	TryAcquire(ctx context.Context, roomID, owner string, ttl time.Duration) error
	// Release drops the lock only while owner still holds it.
	Release(ctx context.Context, roomID, owner string) error
}

type mongoRoomLockRepository struct {
	collection *mongo.Collection
}

func NewMongoRoomLockRepository(cfg *config.Config) RoomLockRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoRoomLockRepository{
		collection: db.Collection(LockCollectionName),
	}
}

// TryAcquire relies on the unique _id. Expired locks are removed here as well
// since the TTL monitor only runs once a minute.
func (r *mongoRoomLockRepository) TryAcquire(ctx context.Context, roomID, owner string, ttl time.Duration) error {
	now := time.Now().UTC()
	lock := &model.RoomLock{
		ID:        model.RoomLockID(roomID),
		RoomID:    roomID,
		Owner:     owner,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	}

	_, err := r.collection.InsertOne(ctx, lock)
	if err == nil {
		return nil
	}
	if !mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("failed to acquire room lock: %w", err)
	}

	res, err := r.collection.DeleteOne(ctx, bson.M{
		"_id":        lock.ID,
		"expires_at": bson.M{"$lte": now},
	})
	if err != nil {
		return fmt.Errorf("failed to clear expired room lock: %w", err)
	}
	if res.DeletedCount == 0 {
		return bookingserrors.ErrLockHeld
	}

	if _, err = r.collection.InsertOne(ctx, lock); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return bookingserrors.ErrLockHeld
		}
		return fmt.Errorf("failed to acquire room lock: %w", err)
	}
	return nil
}

func (r *mongoRoomLockRepository) Release(ctx context.Context, roomID, owner string) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": model.RoomLockID(roomID), "owner": owner})
	return err
}

// releaseScript deletes the key only when it still carries the caller's token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type redisRoomLockRepository struct {
	client *redis.Client
}

func NewRedisRoomLockRepository(client *redis.Client) RoomLockRepository {
	return &redisRoomLockRepository{client: client}
}

func (r *redisRoomLockRepository) TryAcquire(ctx context.Context, roomID, owner string, ttl time.Duration) error {
	ok, err := r.client.SetNX(ctx, model.RoomLockID(roomID), owner, ttl).Result()
	if err != nil {
		return fmt.Errorf("failed to acquire room lock: %w", err)
	}
	if !ok {
		return bookingserrors.ErrLockHeld
	}
	return nil
}

func (r *redisRoomLockRepository) Release(ctx context.Context, roomID, owner string) error {
	err := releaseScript.Run(ctx, r.client, []string{model.RoomLockID(roomID)}, owner).Err()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("failed to release room lock: %w", err)
	}
	return nil
}

type memoryLock struct {
	owner     string
	expiresAt time.Time
}

type memoryRoomLockRepository struct {
	mu    sync.Mutex
	locks map[string]memoryLock
	now   func() time.Time
}

func NewMemoryRoomLockRepository() RoomLockRepository {
	return &memoryRoomLockRepository{
		locks: make(map[string]memoryLock),
		now:   time.Now,
	}
}

func (r *memoryRoomLockRepository) TryAcquire(_ context.Context, roomID, owner string, ttl time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	if held, ok := r.locks[roomID]; ok && now.Before(held.expiresAt) {
		return bookingserrors.ErrLockHeld
	}
	r.locks[roomID] = memoryLock{owner: owner, expiresAt: now.Add(ttl)}
	return nil
}

func (r *memoryRoomLockRepository) Release(_ context.Context, roomID, owner string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if held, ok := r.locks[roomID]; ok && held.owner == owner {
		delete(r.locks, roomID)
	}
	return nil
}
