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
	ErrTournamentNotFound     = errors.New("tournament not found")
	ErrTournamentNameConflict = errors.New("tournament name conflict for this organizer")
)

type ListTournamentsFilter struct {
	OrganizerID *int
	Status      *models.TournamentStatus
	Limit       int
	Offset      int
}

type TournamentRepository interface {
	Create(ctx context.Context, tournament *models.Tournament) error
	GetByID(ctx context.Context, id int) (*models.Tournament, error)
	List(ctx context.Context, filter ListTournamentsFilter) ([]models.Tournament, error)
	UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.TournamentStatus) error
	UpdateArchiveURL(ctx context.Context, id int, archiveURL *string) error
}

type postgresTournamentRepository struct {
	db *sql.DB
}

func NewPostgresTournamentRepository(db *sql.DB) TournamentRepository {
	return &postgresTournamentRepository{db: db}
}

func (r *postgresTournamentRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresTournamentRepository) Create(ctx context.Context, t *models.Tournament) error {
	query := `
		INSERT INTO tournaments (name, doubles, organizer_id, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		t.Name,
		t.Doubles,
		t.OrganizerID,
		t.Status,
	).Scan(&t.ID, &t.CreatedAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			if pqErr.Constraint == "tournaments_organizer_id_name_key" {
				return ErrTournamentNameConflict
			}
		}
		return err
	}
	return nil
}

func (r *postgresTournamentRepository) GetByID(ctx context.Context, id int) (*models.Tournament, error) {
	query := `
		SELECT id, name, doubles, organizer_id, status, archive_url, created_at
		FROM tournaments
		WHERE id = $1`

	t := &models.Tournament{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&t.ID,
		&t.Name,
		&t.Doubles,
		&t.OrganizerID,
		&t.Status,
		&t.ArchiveURL,
		&t.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	return t, nil
}

func (r *postgresTournamentRepository) List(ctx context.Context, filter ListTournamentsFilter) ([]models.Tournament, error) {
	query := `
		SELECT id, name, doubles, organizer_id, status, archive_url, created_at
		FROM tournaments
		WHERE ($1::int IS NULL OR organizer_id = $1)
		  AND ($2::text IS NULL OR status = $2)
		ORDER BY created_at DESC, id DESC
		LIMIT $3 OFFSET $4`

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}

	var status *string
	if filter.Status != nil {
		s := string(*filter.Status)
		status = &s
	}

	rows, err := r.db.QueryContext(ctx, query, filter.OrganizerID, status, limit, filter.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list tournaments: %w", err)
	}
	defer rows.Close()

	tournaments := []models.Tournament{}
	for rows.Next() {
		var t models.Tournament
		if err := rows.Scan(
			&t.ID,
			&t.Name,
			&t.Doubles,
			&t.OrganizerID,
			&t.Status,
			&t.ArchiveURL,
			&t.CreatedAt,
		); err != nil {
			return nil, err
		}
		tournaments = append(tournaments, t)
	}
	return tournaments, rows.Err()
}

func (r *postgresTournamentRepository) UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.TournamentStatus) error {
	query := `UPDATE tournaments SET status = $1 WHERE id = $2`

	result, err := r.getExecutor(exec).ExecContext(ctx, query, status, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) UpdateArchiveURL(ctx context.Context, id int, archiveURL *string) error {
	query := `UPDATE tournaments SET archive_url = $1 WHERE id = $2`

	result, err := r.db.ExecContext(ctx, query, archiveURL, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}
