package model

import (
	"time"
)

type BookingStatus string

const (
	StatusPending  BookingStatus = "pending"
	StatusApproved BookingStatus = "approved"
	StatusDenied   BookingStatus = "denied"
)

func (s BookingStatus) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusDenied:
		return true
	}
	return false
}

type Booking struct {
	ID             string        `json:"id" bson:"_id" yaml:"id"`
	RoomID         string        `json:"room_id" bson:"room_id" yaml:"room_id"`
	RequesterEmail string        `json:"requester_email" bson:"requester_email" yaml:"requester_email"`
	RequesterName  string        `json:"requester_name" bson:"requester_name" yaml:"requester_name"`
	Purpose        string        `json:"purpose" bson:"purpose" yaml:"purpose"`
	StartTime      time.Time     `json:"start_time" bson:"start_time" yaml:"start_time"`
	EndTime        time.Time     `json:"end_time" bson:"end_time" yaml:"end_time"`
	Status         BookingStatus `json:"status" bson:"status" yaml:"status"`
	CreatedAt      time.Time     `json:"created_at" bson:"created_at" yaml:"created_at"`
	ApprovedAt     *time.Time    `json:"approved_at,omitempty" bson:"approved_at,omitempty" yaml:"approved_at,omitempty"`
	DeniedAt       *time.Time    `json:"denied_at,omitempty" bson:"denied_at,omitempty" yaml:"denied_at,omitempty"`
}

func (b *Booking) Range() TimeRange {
	return NewTimeRange(b.StartTime, b.EndTime)
}

func (b *Booking) IsApproved() bool {
	return b.Status == StatusApproved
}

// BookingRequest is the raw candidate submitted by a requester.
// Times stay strings until validation so unparsable values can be reported per field.
type BookingRequest struct {
	RoomID         string `json:"room_id" validate:"required"`
	RequesterEmail string `json:"requester_email" validate:"required,booking_email"`
	RequesterName  string `json:"requester_name" validate:"required"`
	Purpose        string `json:"purpose" validate:"required"`
	StartTime      string `json:"start_time" validate:"required"`
	EndTime        string `json:"end_time" validate:"required"`
}

// BookingFilter narrows booking queries. Zero values mean "any".
type BookingFilter struct {
	RoomID string
	Status BookingStatus
	Window *TimeRange
}
