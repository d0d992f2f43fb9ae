package models

import (
	"time"

	"github.com/google/uuid"
)

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingRejected  BookingStatus = "rejected"
)

// Active reports whether the booking still occupies its schedule.
func (s BookingStatus) Active() bool {
	return s == BookingPending || s == BookingConfirmed
}

type Booking struct {
	ID         uuid.UUID     `json:"id"`
	ClientID   uuid.UUID     `json:"client_id"`
	ScheduleID uuid.UUID     `json:"schedule_id"`
	Status     BookingStatus `json:"status"`
	CreatedAt  time.Time     `json:"created_at"`
}

type BookingDetail struct {
	Booking
	Client   *User     `json:"client_details,omitempty"`
	Schedule *Schedule `json:"schedule_details,omitempty"`
}
