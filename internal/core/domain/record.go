package domain

import "time"

// Record is a criminal record. Records are append-only.
type Record struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Age         int       `json:"age"`
	DateOfBirth time.Time `json:"date_of_birth"`
	Description string    `json:"description"`
	ConnectedTo string    `json:"connected_to"`
	CreatedAt   time.Time `json:"created_at"`
}
