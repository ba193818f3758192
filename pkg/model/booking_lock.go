package model

import "time"

// RoomLock is an advisory lock serializing read-check-write sequences on one room.
type RoomLock struct {
	ID        string    `bson:"_id" json:"id"`
	RoomID    string    `bson:"room_id" json:"room_id"`
	Owner     string    `bson:"owner" json:"owner"`
	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

func RoomLockID(roomID string) string {
	return "room_lock_" + roomID
}
