package models

import "github.com/google/uuid"

// Schedule is a psychologist-published bookable time slot. Date and TimeSlot
// are carried in their wire forms (YYYY-MM-DD, HH:MM); the repository formats
// them at the SQL boundary.
type Schedule struct {
	ID             uuid.UUID `json:"id"`
	PsychologistID uuid.UUID `json:"psychologist_id"`
	Date           string    `json:"date"`
	TimeSlot       string    `json:"time_slot"`
	IsBooked       bool      `json:"is_booked"`
}

type ScheduleDetail struct {
	Schedule
	Psychologist   *User    `json:"psychologist_details,omitempty"`
	CurrentBooking *Booking `json:"current_booking,omitempty"`
}
