package repository

import (
	"context"

	roomserrors "classbook/internal/rooms/errors"
	"classbook/pkg/model"
)

// memoryRoomRepository serves a fixed catalog. Rooms are never written after
// construction so no locking is needed.
type memoryRoomRepository struct {
	rooms []*model.Room
	byID  map[string]*model.Room
}

func NewMemoryRoomRepository(rooms []*model.Room) RoomRepository {
	r := &memoryRoomRepository{byID: make(map[string]*model.Room, len(rooms))}
	for _, room := range rooms {
		c := cloneRoom(room)
		r.rooms = append(r.rooms, c)
		r.byID[c.ID] = c
	}
	return r
}

func (r *memoryRoomRepository) FindAll(_ context.Context, activeOnly bool) ([]*model.Room, error) {
	out := make([]*model.Room, 0, len(r.rooms))
	for _, room := range r.rooms {
		if activeOnly && !room.Active {
			continue
		}
		out = append(out, cloneRoom(room))
	}
	return out, nil
}

func (r *memoryRoomRepository) FindByID(_ context.Context, id string) (*model.Room, error) {
	room, ok := r.byID[id]
	if !ok {
		return nil, roomserrors.ErrNotFound
	}
	return cloneRoom(room), nil
}

func (r *memoryRoomRepository) Ping(context.Context) error {
	return nil
}

func cloneRoom(room *model.Room) *model.Room {
	c := *room
	c.Features = append([]string(nil), room.Features...)
	return &c
}
