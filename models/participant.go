package models

import "time"

type ParticipantStatus string

const (
	ParticipantActive       ParticipantStatus = "active"
	ParticipantDone         ParticipantStatus = "done"
	ParticipantDisqualified ParticipantStatus = "disqualified"
)

// Participant is the host-level record of a roster entry. The handle is
// the opaque identity the engine schedules by.
type Participant struct {
	ID           int               `json:"id" db:"id"`
	TournamentID int               `json:"tournament_id" db:"tournament_id"`
	Handle       string            `json:"handle" db:"handle"`
	Status       ParticipantStatus `json:"status" db:"status"`
	CreatedAt    time.Time         `json:"created_at" db:"created_at"`
}
