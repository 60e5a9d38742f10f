package models

import "time"

// MatchRecord is the append-only log row written when a match finishes.
// Row/Col scores hold the literal score as submitted; the aggregate
// standings always derive from the virtual win/loss/draw points, so the
// two may legitimately differ.
type MatchRecord struct {
	ID           int       `json:"id" db:"id"`
	TournamentID int       `json:"tournament_id" db:"tournament_id"`
	RowHandle    string    `json:"row_handle" db:"row_handle"`
	ColHandle    string    `json:"col_handle" db:"col_handle"`
	Result       string    `json:"result" db:"result"`
	RowScore     float64   `json:"row_score" db:"row_score"`
	ColScore     float64   `json:"col_score" db:"col_score"`
	Forfeited    bool      `json:"forfeited" db:"forfeited"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}
