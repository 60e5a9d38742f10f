package models

import "time"

const (
	RoleOrganizer = "organizer"
	RolePlayer    = "player"
)

type User struct {
	ID           int       `json:"id" db:"id"`
	Nickname     string    `json:"nickname" db:"nickname"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Role         string    `json:"role" db:"role"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}
