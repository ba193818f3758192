// Package seed loads the room catalog and sample bookings used to initialise
// a store.
package seed

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"

	"classbook/internal/bookings/conflict"
	"classbook/pkg/model"
	"classbook/pkg/sanitizer"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalog []byte

type Catalog struct {
	Rooms    []*model.Room    `yaml:"rooms"`
	Bookings []*model.Booking `yaml:"bookings"`
}

// Load reads the catalog at path, or the embedded default when path is empty.
func Load(path string) (*Catalog, error) {
	data := defaultCatalog
	if path != "" {
		var err error
		if data, err = os.ReadFile(path); err != nil {
			return nil, fmt.Errorf("failed to read seed file: %w", err)
		}
	}
	return Parse(data)
}

func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil {
		return nil, fmt.Errorf("failed to parse seed catalog: %w", err)
	}
	c.normalize()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate rejects catalogs that would break store invariants: duplicate ids,
// bookings for unknown rooms, empty ranges, and overlapping approved bookings.
func (c *Catalog) Validate() error {
	rooms := make(map[string]bool, len(c.Rooms))
	for i, r := range c.Rooms {
		if r == nil || r.ID == "" {
			return fmt.Errorf("room %d: id is required", i)
		}
		if rooms[r.ID] {
			return fmt.Errorf("room %s: duplicate id", r.ID)
		}
		if r.Capacity < 1 {
			return fmt.Errorf("room %s: capacity must be positive", r.ID)
		}
		rooms[r.ID] = true
	}

	ids := make(map[string]bool, len(c.Bookings))
	approvedByRoom := make(map[string][]*model.Booking)
	for i, b := range c.Bookings {
		if b == nil || b.ID == "" {
			return fmt.Errorf("booking %d: id is required", i)
		}
		if ids[b.ID] {
			return fmt.Errorf("booking %s: duplicate id", b.ID)
		}
		ids[b.ID] = true
		if !rooms[b.RoomID] {
			return fmt.Errorf("booking %s: unknown room %q", b.ID, b.RoomID)
		}
		if !b.Status.Valid() {
			return fmt.Errorf("booking %s: invalid status %q", b.ID, b.Status)
		}
		if !b.Range().Valid() {
			return fmt.Errorf("booking %s: start_time must precede end_time", b.ID)
		}
		if b.IsApproved() {
			if other, found := conflict.FindConflict(b.Range(), approvedByRoom[b.RoomID]); found {
				return fmt.Errorf("booking %s: overlaps approved booking %s", b.ID, other.ID)
			}
			approvedByRoom[b.RoomID] = append(approvedByRoom[b.RoomID], b)
		}
	}
	return nil
}

func (c *Catalog) normalize() {
	for _, r := range c.Rooms {
		if r == nil {
			continue
		}
		r.ID = sanitizer.SanitizeID(r.ID)
		r.Name = sanitizer.SanitizeText(r.Name)
		r.Building = sanitizer.SanitizeText(r.Building)
		r.Features = sanitizer.SanitizeSlice(r.Features, sanitizer.SanitizeFeature)
	}
	for _, b := range c.Bookings {
		if b == nil {
			continue
		}
		b.RoomID = sanitizer.SanitizeID(b.RoomID)
		b.StartTime = b.StartTime.UTC()
		b.EndTime = b.EndTime.UTC()
		b.CreatedAt = b.CreatedAt.UTC()
	}
}
