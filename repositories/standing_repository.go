package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sparkychildcharlie/tournament-engine/models"
)

type StandingRepository interface {
	CreateBatch(ctx context.Context, exec SQLExecutor, standings []models.Standing) error
	ListByTournament(ctx context.Context, tournamentID int) ([]models.Standing, error)
}

type postgresStandingRepository struct {
	db *sql.DB
}

func NewPostgresStandingRepository(db *sql.DB) StandingRepository {
	return &postgresStandingRepository{db: db}
}

func (r *postgresStandingRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresStandingRepository) CreateBatch(ctx context.Context, exec SQLExecutor, standings []models.Standing) error {
	query := `
		INSERT INTO standings (tournament_id, handle, rank, points)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	executor := r.getExecutor(exec)
	for i := range standings {
		s := &standings[i]
		err := executor.QueryRowContext(ctx, query,
			s.TournamentID,
			s.Handle,
			s.Rank,
			s.Points,
		).Scan(&s.ID, &s.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert standing for %q: %w", s.Handle, err)
		}
	}
	return nil
}

func (r *postgresStandingRepository) ListByTournament(ctx context.Context, tournamentID int) ([]models.Standing, error) {
	query := `
		SELECT id, tournament_id, handle, rank, points, created_at
		FROM standings
		WHERE tournament_id = $1
		ORDER BY rank, id`

	rows, err := r.db.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list standings for tournament %d: %w", tournamentID, err)
	}
	defer rows.Close()

	standings := []models.Standing{}
	for rows.Next() {
		var s models.Standing
		if err := rows.Scan(&s.ID, &s.TournamentID, &s.Handle, &s.Rank, &s.Points, &s.CreatedAt); err != nil {
			return nil, err
		}
		standings = append(standings, s)
	}
	return standings, rows.Err()
}
