package models

import "github.com/google/uuid"

// PsychologistProfile is the discovery projection: the public user fields
// plus the unbooked upcoming schedules. Rating aggregates are only computed
// for the detail view and stay null in listings.
type PsychologistProfile struct {
	ID                 uuid.UUID  `json:"id"`
	Username           string     `json:"username"`
	Email              string     `json:"email"`
	Role               Role       `json:"role"`
	AverageRating      *float64   `json:"average_rating"`
	TotalReviews       int        `json:"total_reviews"`
	AvailableSchedules []Schedule `json:"available_schedules"`
}

type PsychologistDetail struct {
	PsychologistProfile
	Reviews []Review `json:"reviews"`
}
