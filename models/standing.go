package models

import "time"

// Standing is one row of the final ranking snapshot persisted when a
// tournament completes. Rank is 1-based and shared by every participant
// in the same score tier.
type Standing struct {
	ID           int       `json:"id" db:"id"`
	TournamentID int       `json:"tournament_id" db:"tournament_id"`
	Handle       string    `json:"handle" db:"handle"`
	Rank         int       `json:"rank" db:"rank"`
	Points       float64   `json:"points" db:"points"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}
