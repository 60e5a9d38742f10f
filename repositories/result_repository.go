package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sparkychildcharlie/tournament-engine/models"
)

type ResultRepository interface {
	Create(ctx context.Context, exec SQLExecutor, record *models.MatchRecord) error
	ListByTournament(ctx context.Context, tournamentID int) ([]models.MatchRecord, error)
}

type postgresResultRepository struct {
	db *sql.DB
}

func NewPostgresResultRepository(db *sql.DB) ResultRepository {
	return &postgresResultRepository{db: db}
}

func (r *postgresResultRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresResultRepository) Create(ctx context.Context, exec SQLExecutor, record *models.MatchRecord) error {
	query := `
		INSERT INTO match_results
			(tournament_id, row_handle, col_handle, result, row_score, col_score, forfeited)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`

	err := r.getExecutor(exec).QueryRowContext(ctx, query,
		record.TournamentID,
		record.RowHandle,
		record.ColHandle,
		record.Result,
		record.RowScore,
		record.ColScore,
		record.Forfeited,
	).Scan(&record.ID, &record.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert match result: %w", err)
	}
	return nil
}

func (r *postgresResultRepository) ListByTournament(ctx context.Context, tournamentID int) ([]models.MatchRecord, error) {
	query := `
		SELECT id, tournament_id, row_handle, col_handle, result, row_score, col_score, forfeited, created_at
		FROM match_results
		WHERE tournament_id = $1
		ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list match results for tournament %d: %w", tournamentID, err)
	}
	defer rows.Close()

	records := []models.MatchRecord{}
	for rows.Next() {
		var rec models.MatchRecord
		if err := rows.Scan(
			&rec.ID,
			&rec.TournamentID,
			&rec.RowHandle,
			&rec.ColHandle,
			&rec.Result,
			&rec.RowScore,
			&rec.ColScore,
			&rec.Forfeited,
			&rec.CreatedAt,
		); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
