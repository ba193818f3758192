package seed

import (
	"os"
	"path/filepath"
	"testing"

	"classbook/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultCatalog(t *testing.T) {
	c, err := Load("")
	require.NoError(t, err)

	require.Len(t, c.Rooms, 5)
	assert.Equal(t, "A-Room 101", c.Rooms[0].Label())
	assert.Equal(t, []string{"projector", "whiteboard", "smart-board"}, c.Rooms[2].Features)

	require.Len(t, c.Bookings, 2)
	b001 := c.Bookings[0]
	assert.Equal(t, model.StatusApproved, b001.Status)
	require.NotNil(t, b001.ApprovedAt)
	assert.Equal(t, 10, b001.StartTime.Hour())
	assert.Equal(t, model.StatusPending, c.Bookings[1].Status)
	assert.Nil(t, c.Bookings[1].ApprovedAt)
}

func TestLoad_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
rooms:
  - {id: x1, name: Hall, building: Z, capacity: 200, active: true}
`), 0o600))

	c, err := Load(path)
	require.NoError(t, err)
	require.Len(t, c.Rooms, 1)
	assert.Empty(t, c.Bookings)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestParse_RejectsInvalidCatalogs(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{
			name: "unknown field",
			yaml: "rooms:\n  - {id: a, capacity: 1, colour: red}\n",
			want: "colour",
		},
		{
			name: "duplicate room",
			yaml: "rooms:\n  - {id: a, capacity: 1}\n  - {id: a, capacity: 2}\n",
			want: "duplicate",
		},
		{
			name: "unknown room",
			yaml: "rooms:\n  - {id: a, capacity: 1}\nbookings:\n  - {id: b, room_id: z, status: pending, start_time: 2025-11-05T10:00:00Z, end_time: 2025-11-05T11:00:00Z}\n",
			want: "unknown room",
		},
		{
			name: "empty range",
			yaml: "rooms:\n  - {id: a, capacity: 1}\nbookings:\n  - {id: b, room_id: a, status: pending, start_time: 2025-11-05T10:00:00Z, end_time: 2025-11-05T10:00:00Z}\n",
			want: "precede",
		},
		{
			name: "overlapping approved",
			yaml: "rooms:\n  - {id: a, capacity: 1}\nbookings:\n" +
				"  - {id: b1, room_id: a, status: approved, start_time: 2025-11-05T10:00:00Z, end_time: 2025-11-05T12:00:00Z}\n" +
				"  - {id: b2, room_id: a, status: approved, start_time: 2025-11-05T11:00:00Z, end_time: 2025-11-05T13:00:00Z}\n",
			want: "overlaps approved booking b1",
		},
		{
			name: "bad status",
			yaml: "rooms:\n  - {id: a, capacity: 1}\nbookings:\n  - {id: b, room_id: a, status: maybe, start_time: 2025-11-05T10:00:00Z, end_time: 2025-11-05T11:00:00Z}\n",
			want: "invalid status",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestParse_TouchingApprovedBookingsAreAccepted(t *testing.T) {
	_, err := Parse([]byte("rooms:\n  - {id: a, capacity: 1}\nbookings:\n" +
		"  - {id: b1, room_id: a, status: approved, start_time: 2025-11-05T10:00:00Z, end_time: 2025-11-05T12:00:00Z}\n" +
		"  - {id: b2, room_id: a, status: approved, start_time: 2025-11-05T12:00:00Z, end_time: 2025-11-05T14:00:00Z}\n"))
	assert.NoError(t, err)
}

func TestParse_NormalizesRoomFeatures(t *testing.T) {
	c, err := Parse([]byte(`
rooms:
  - {id: " x1 ", name: "Main  Hall", building: Z, capacity: 80, active: true, features: [" Projector", "Smart Board", projector]}
`))
	require.NoError(t, err)

	room := c.Rooms[0]
	assert.Equal(t, "x1", room.ID)
	assert.Equal(t, "Main Hall", room.Name)
	assert.Equal(t, []string{"projector", "smart-board"}, room.Features)
	assert.True(t, room.HasFeature("projector"))
}
