package models

import "time"

// TournamentStatus mirrors the engine lifecycle: the roster is open
// during registration, the bracket runs while active, and completed is
// terminal.
type TournamentStatus string

const (
	StatusRegistration TournamentStatus = "registration"
	StatusActive       TournamentStatus = "active"
	StatusCompleted    TournamentStatus = "completed"
)

type Tournament struct {
	ID          int              `json:"id" db:"id"`
	Name        string           `json:"name" db:"name"`
	Doubles     bool             `json:"doubles" db:"doubles"`
	OrganizerID int              `json:"organizer_id" db:"organizer_id"`
	Status      TournamentStatus `json:"status" db:"status"`
	ArchiveURL  *string          `json:"archive_url,omitempty" db:"archive_url"`
	CreatedAt   time.Time        `json:"created_at" db:"created_at"`

	// Related records, populated by the service layer.
	Participants []Participant `json:"participants,omitempty" db:"-"`
	Results      []MatchRecord `json:"results,omitempty" db:"-"`
}
