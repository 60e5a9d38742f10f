package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/sparkychildcharlie/tournament-engine/models"
)

var (
	ErrParticipantNotFound = errors.New("participant not found")
	ErrParticipantConflict = errors.New("participant already registered for this tournament")
)

type ParticipantRepository interface {
	Create(ctx context.Context, participant *models.Participant) error
	ListByTournament(ctx context.Context, tournamentID int) ([]models.Participant, error)
	UpdateStatus(ctx context.Context, tournamentID int, handle string, status models.ParticipantStatus) error
	Rename(ctx context.Context, tournamentID int, oldHandle, newHandle string) error
	Delete(ctx context.Context, tournamentID int, handle string) error
}

type postgresParticipantRepository struct {
	db *sql.DB
}

func NewPostgresParticipantRepository(db *sql.DB) ParticipantRepository {
	return &postgresParticipantRepository{db: db}
}

func (r *postgresParticipantRepository) Create(ctx context.Context, p *models.Participant) error {
	query := `
		INSERT INTO tournament_participants (tournament_id, handle, status)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		p.TournamentID,
		p.Handle,
		p.Status,
	).Scan(&p.ID, &p.CreatedAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return ErrParticipantConflict
		}
		return err
	}
	return nil
}

func (r *postgresParticipantRepository) ListByTournament(ctx context.Context, tournamentID int) ([]models.Participant, error) {
	query := `
		SELECT id, tournament_id, handle, status, created_at
		FROM tournament_participants
		WHERE tournament_id = $1
		ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants for tournament %d: %w", tournamentID, err)
	}
	defer rows.Close()

	participants := []models.Participant{}
	for rows.Next() {
		var p models.Participant
		if err := rows.Scan(&p.ID, &p.TournamentID, &p.Handle, &p.Status, &p.CreatedAt); err != nil {
			return nil, err
		}
		participants = append(participants, p)
	}
	return participants, rows.Err()
}

func (r *postgresParticipantRepository) UpdateStatus(ctx context.Context, tournamentID int, handle string, status models.ParticipantStatus) error {
	query := `
		UPDATE tournament_participants
		SET status = $1
		WHERE tournament_id = $2 AND handle = $3`

	result, err := r.db.ExecContext(ctx, query, status, tournamentID, handle)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrParticipantNotFound)
}

func (r *postgresParticipantRepository) Rename(ctx context.Context, tournamentID int, oldHandle, newHandle string) error {
	query := `
		UPDATE tournament_participants
		SET handle = $1
		WHERE tournament_id = $2 AND handle = $3`

	result, err := r.db.ExecContext(ctx, query, newHandle, tournamentID, oldHandle)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return ErrParticipantConflict
		}
		return err
	}
	return checkAffectedRows(result, ErrParticipantNotFound)
}

func (r *postgresParticipantRepository) Delete(ctx context.Context, tournamentID int, handle string) error {
	query := `
		DELETE FROM tournament_participants
		WHERE tournament_id = $1 AND handle = $2`

	result, err := r.db.ExecContext(ctx, query, tournamentID, handle)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrParticipantNotFound)
}
