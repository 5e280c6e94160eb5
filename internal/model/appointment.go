package model

import "time"

// Appointment is a scheduled bank visit.  Only the bank branch accepts
// appointments.  Date and Time are stored as the client sent them.
type Appointment struct {
	ID        uint64    `json:"id"`         // appointments.id
	OwnerID   uint64    `json:"owner_id"`   // appointments.owner_id
	Branch    string    `json:"branch"`     // appointments.branch
	Date      string    `json:"date"`       // appointments.date
	Time      string    `json:"time"`       // appointments.time
	Purpose   string    `json:"purpose"`    // appointments.purpose
	Notes     string    `json:"notes"`      // appointments.notes
	CreatedAt time.Time `json:"created_at"` // appointments.created_at
}
