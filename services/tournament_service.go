package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/sparkychildcharlie/tournament-engine/brackets"
	"github.com/sparkychildcharlie/tournament-engine/models"
	"github.com/sparkychildcharlie/tournament-engine/repositories"
	"golang.org/x/sync/errgroup"
)

type CreateTournamentInput struct {
	Name        string `json:"name"`
	Doubles     bool   `json:"doubles"`
	OrganizerID int    `json:"-"`
}

type SubmitResultInput struct {
	RowHandle string          `json:"row_handle"`
	ColHandle string          `json:"col_handle"`
	Result    brackets.Result `json:"result"`
	Score     *brackets.Score `json:"score,omitempty"`
}

type TournamentService interface {
	Create(ctx context.Context, input CreateTournamentInput) (*models.Tournament, error)
	List(ctx context.Context, filter repositories.ListTournamentsFilter) ([]models.Tournament, error)
	GetWithDetails(ctx context.Context, tournamentID int) (*models.Tournament, error)

	AddParticipant(ctx context.Context, tournamentID int, handle string) (*models.Participant, error)
	RemoveParticipant(ctx context.Context, tournamentID int, handle string) error
	SubstituteParticipant(ctx context.Context, tournamentID int, oldHandle, newHandle string) error

	Freeze(ctx context.Context, tournamentID int) error
	AvailableMatches(ctx context.Context, tournamentID int) ([][2]string, error)
	SetParticipantBusy(ctx context.Context, tournamentID int, handle string, busy bool) error
	SubmitResult(ctx context.Context, tournamentID int, input SubmitResultInput) error
	Disqualify(ctx context.Context, tournamentID int, handle string) error

	BracketData(ctx context.Context, tournamentID int) (*brackets.BracketData, error)
	Standings(ctx context.Context, tournamentID int) ([][]string, error)
}

// tournamentService drives live round-robin brackets. The engine itself
// is unsynchronised and the HTTP layer is not, so every engine access
// goes through the service mutex. The database keeps the host-level
// record; engines are never rehydrated from it.
type tournamentService struct {
	db              *sql.DB
	tournamentRepo  repositories.TournamentRepository
	participantRepo repositories.ParticipantRepository
	resultRepo      repositories.ResultRepository
	standingRepo    repositories.StandingRepository
	archive         *ArchiveService
	hub             *brackets.Hub
	logger          *slog.Logger

	mu      sync.Mutex
	engines map[int]*brackets.RoundRobin
}

func NewTournamentService(
	db *sql.DB,
	tournamentRepo repositories.TournamentRepository,
	participantRepo repositories.ParticipantRepository,
	resultRepo repositories.ResultRepository,
	standingRepo repositories.StandingRepository,
	archive *ArchiveService,
	hub *brackets.Hub,
	logger *slog.Logger,
) TournamentService {
	return &tournamentService{
		db:              db,
		tournamentRepo:  tournamentRepo,
		participantRepo: participantRepo,
		resultRepo:      resultRepo,
		standingRepo:    standingRepo,
		archive:         archive,
		hub:             hub,
		logger:          logger,
		engines:         make(map[int]*brackets.RoundRobin),
	}
}

func roomID(tournamentID int) string {
	return fmt.Sprintf("tournament_%d", tournamentID)
}

// engine returns the live bracket for a tournament. Callers must hold
// s.mu.
func (s *tournamentService) engine(tournamentID int) (*brackets.RoundRobin, error) {
	if eng, ok := s.engines[tournamentID]; ok {
		return eng, nil
	}
	return nil, ErrTournamentNotRunning
}

// exhaustedHook is installed into each engine. It fires while the
// service mutex is held, so it must not call back into engine-guarded
// service methods.
func (s *tournamentService) exhaustedHook(tournamentID int) brackets.ExhaustedHook {
	return func(participant string) {
		if err := s.participantRepo.UpdateStatus(context.Background(), tournamentID, participant, models.ParticipantDone); err != nil {
			s.logger.Error("failed to mark participant done",
				slog.Int("tournament_id", tournamentID),
				slog.String("handle", participant),
				slog.Any("error", err))
		}
		s.hub.BroadcastToRoom(roomID(tournamentID), brackets.Event{
			Type:    brackets.EventParticipantDone,
			Payload: participant,
		})
	}
}

func (s *tournamentService) Create(ctx context.Context, input CreateTournamentInput) (*models.Tournament, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrTournamentNameRequired
	}

	tournament := &models.Tournament{
		Name:        name,
		Doubles:     input.Doubles,
		OrganizerID: input.OrganizerID,
		Status:      models.StatusRegistration,
	}
	if err := s.tournamentRepo.Create(ctx, tournament); err != nil {
		if errors.Is(err, repositories.ErrTournamentNameConflict) {
			return nil, ErrTournamentNameConflict
		}
		return nil, fmt.Errorf("failed to create tournament: %w", err)
	}

	s.mu.Lock()
	s.engines[tournament.ID] = brackets.NewRoundRobin(input.Doubles, s.exhaustedHook(tournament.ID))
	s.mu.Unlock()

	return tournament, nil
}

func (s *tournamentService) List(ctx context.Context, filter repositories.ListTournamentsFilter) ([]models.Tournament, error) {
	tournaments, err := s.tournamentRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list tournaments: %w", err)
	}
	return tournaments, nil
}

// GetWithDetails loads the tournament row plus its participants and
// result log in parallel.
func (s *tournamentService) GetWithDetails(ctx context.Context, tournamentID int) (*models.Tournament, error) {
	var tournament *models.Tournament

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		t, err := s.tournamentRepo.GetByID(gCtx, tournamentID)
		if err != nil {
			if errors.Is(err, repositories.ErrTournamentNotFound) {
				return ErrTournamentNotFound
			}
			return fmt.Errorf("failed to fetch tournament %d: %w", tournamentID, err)
		}
		tournament = t
		return nil
	})

	var participants []models.Participant
	g.Go(func() error {
		list, err := s.participantRepo.ListByTournament(gCtx, tournamentID)
		if err != nil {
			return fmt.Errorf("failed to fetch participants for tournament %d: %w", tournamentID, err)
		}
		participants = list
		return nil
	})

	var results []models.MatchRecord
	g.Go(func() error {
		list, err := s.resultRepo.ListByTournament(gCtx, tournamentID)
		if err != nil {
			return fmt.Errorf("failed to fetch results for tournament %d: %w", tournamentID, err)
		}
		results = list
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	tournament.Participants = participants
	tournament.Results = results
	return tournament, nil
}

func (s *tournamentService) AddParticipant(ctx context.Context, tournamentID int, handle string) (*models.Participant, error) {
	handle = strings.TrimSpace(handle)
	if handle == "" {
		return nil, ErrHandleRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	eng, err := s.engine(tournamentID)
	if err != nil {
		return nil, err
	}
	if eng.Frozen() {
		return nil, brackets.ErrBracketFrozen
	}

	// The engine trusts callers on uniqueness; the registration table's
	// unique constraint is that guarantee, so insert before mutating.
	participant := &models.Participant{
		TournamentID: tournamentID,
		Handle:       handle,
		Status:       models.ParticipantActive,
	}
	if err := s.participantRepo.Create(ctx, participant); err != nil {
		if errors.Is(err, repositories.ErrParticipantConflict) {
			return nil, ErrParticipantConflict
		}
		return nil, fmt.Errorf("failed to register participant: %w", err)
	}

	if err := eng.AddParticipant(handle); err != nil {
		return nil, err
	}
	return participant, nil
}

func (s *tournamentService) RemoveParticipant(ctx context.Context, tournamentID int, handle string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	eng, err := s.engine(tournamentID)
	if err != nil {
		return err
	}
	if eng.Frozen() {
		return brackets.ErrBracketFrozen
	}

	// Registration row first: a rejected removal must leave the engine
	// roster untouched.
	if err := s.participantRepo.Delete(ctx, tournamentID, handle); err != nil {
		if errors.Is(err, repositories.ErrParticipantNotFound) {
			return ErrParticipantNotFound
		}
		return fmt.Errorf("failed to remove participant: %w", err)
	}
	return eng.RemoveParticipant(handle)
}

func (s *tournamentService) SubstituteParticipant(ctx context.Context, tournamentID int, oldHandle, newHandle string) error {
	newHandle = strings.TrimSpace(newHandle)
	if newHandle == "" {
		return ErrHandleRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	eng, err := s.engine(tournamentID)
	if err != nil {
		return err
	}
	if eng.TournamentEnded() {
		return ErrTournamentCompleted
	}

	// The engine trusts callers on handle uniqueness, so both its
	// membership check and the registry's unique constraint must pass
	// before the roster mutates; a rejected substitution changes
	// nothing.
	if !rosterContains(eng.Roster(), oldHandle) {
		return brackets.ErrUserNotAdded
	}

	if err := s.participantRepo.Rename(ctx, tournamentID, oldHandle, newHandle); err != nil {
		switch {
		case errors.Is(err, repositories.ErrParticipantConflict):
			return ErrParticipantConflict
		case errors.Is(err, repositories.ErrParticipantNotFound):
			return ErrParticipantNotFound
		default:
			return fmt.Errorf("failed to rename participant: %w", err)
		}
	}
	return eng.SubstituteParticipant(oldHandle, newHandle)
}

func rosterContains(roster []string, handle string) bool {
	for _, h := range roster {
		if h == handle {
			return true
		}
	}
	return false
}

func (s *tournamentService) Freeze(ctx context.Context, tournamentID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	eng, err := s.engine(tournamentID)
	if err != nil {
		return err
	}
	if err := eng.FreezeBracket(); err != nil {
		return err
	}

	if err := s.tournamentRepo.UpdateStatus(ctx, nil, tournamentID, models.StatusActive); err != nil {
		s.logger.Error("failed to mark tournament active",
			slog.Int("tournament_id", tournamentID), slog.Any("error", err))
	}

	s.hub.BroadcastToRoom(roomID(tournamentID), brackets.Event{
		Type:    brackets.EventBracketFrozen,
		Payload: eng.BracketData(),
	})
	return nil
}

func (s *tournamentService) AvailableMatches(ctx context.Context, tournamentID int) ([][2]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	eng, err := s.engine(tournamentID)
	if err != nil {
		return nil, err
	}
	return eng.AvailableMatches()
}

func (s *tournamentService) SetParticipantBusy(ctx context.Context, tournamentID int, handle string, busy bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	eng, err := s.engine(tournamentID)
	if err != nil {
		return err
	}
	return eng.SetUserBusy(handle, busy)
}

func (s *tournamentService) SubmitResult(ctx context.Context, tournamentID int, input SubmitResultInput) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	eng, err := s.engine(tournamentID)
	if err != nil {
		return err
	}
	if err := eng.SetMatchResult(input.RowHandle, input.ColHandle, input.Result, input.Score); err != nil {
		return err
	}

	literal := input.Result.VirtualScore()
	if input.Score != nil {
		literal = *input.Score
	}
	record := &models.MatchRecord{
		TournamentID: tournamentID,
		RowHandle:    input.RowHandle,
		ColHandle:    input.ColHandle,
		Result:       string(input.Result),
		RowScore:     literal[0],
		ColScore:     literal[1],
	}
	// The engine state is authoritative; the result log is best-effort
	// record keeping.
	if err := s.resultRepo.Create(ctx, nil, record); err != nil {
		s.logger.Error("failed to persist match result",
			slog.Int("tournament_id", tournamentID), slog.Any("error", err))
	}

	s.hub.BroadcastToRoom(roomID(tournamentID), brackets.Event{
		Type:    brackets.EventMatchFinished,
		Payload: record,
	})

	if eng.TournamentEnded() {
		s.finalize(ctx, tournamentID, eng)
	}
	return nil
}

func (s *tournamentService) Disqualify(ctx context.Context, tournamentID int, handle string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	eng, err := s.engine(tournamentID)
	if err != nil {
		return err
	}
	// Finalization already ran; a second disqualification would replay
	// it and duplicate the standings snapshot.
	if eng.TournamentEnded() {
		return ErrTournamentCompleted
	}

	before := eng.BracketData()
	if err := eng.DisqualifyUser(handle); err != nil {
		return err
	}
	after := eng.BracketData()

	// Log every match the disqualification force-finished.
	for row := range after.Cells {
		for col := range after.Cells[row] {
			cell := after.Cells[row][col]
			if cell == nil || cell.State != brackets.MatchFinished {
				continue
			}
			if prev := before.Cells[row][col]; prev != nil && prev.State == brackets.MatchFinished {
				continue
			}
			record := &models.MatchRecord{
				TournamentID: tournamentID,
				RowHandle:    after.Participants[row],
				ColHandle:    after.Participants[col],
				Result:       string(cell.Result),
				RowScore:     cell.Score[0],
				ColScore:     cell.Score[1],
				Forfeited:    true,
			}
			if err := s.resultRepo.Create(ctx, nil, record); err != nil {
				s.logger.Error("failed to persist forfeit result",
					slog.Int("tournament_id", tournamentID), slog.Any("error", err))
			}
		}
	}

	// The exhausted hook marked the participant done; disqualification
	// is the stronger terminal status.
	if err := s.participantRepo.UpdateStatus(ctx, tournamentID, handle, models.ParticipantDisqualified); err != nil {
		s.logger.Error("failed to mark participant disqualified",
			slog.Int("tournament_id", tournamentID),
			slog.String("handle", handle),
			slog.Any("error", err))
	}

	s.hub.BroadcastToRoom(roomID(tournamentID), brackets.Event{
		Type:    brackets.EventParticipantDisqualified,
		Payload: handle,
	})

	if eng.TournamentEnded() {
		s.finalize(ctx, tournamentID, eng)
	}
	return nil
}

func (s *tournamentService) BracketData(ctx context.Context, tournamentID int) (*brackets.BracketData, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	eng, err := s.engine(tournamentID)
	if err != nil {
		return nil, err
	}
	return eng.BracketData(), nil
}

func (s *tournamentService) Standings(ctx context.Context, tournamentID int) ([][]string, error) {
	s.mu.Lock()
	eng, err := s.engine(tournamentID)
	s.mu.Unlock()
	if err == nil {
		return eng.Results()
	}

	// No live bracket (for instance after a restart): fall back to the
	// persisted snapshot.
	standings, listErr := s.standingRepo.ListByTournament(ctx, tournamentID)
	if listErr != nil {
		return nil, fmt.Errorf("failed to load standings for tournament %d: %w", tournamentID, listErr)
	}
	if len(standings) == 0 {
		return nil, err
	}

	tiers := [][]string{}
	lastRank := -1
	for _, row := range standings {
		if row.Rank != lastRank {
			tiers = append(tiers, []string{})
			lastRank = row.Rank
		}
		tiers[len(tiers)-1] = append(tiers[len(tiers)-1], row.Handle)
	}
	return tiers, nil
}

// finalize runs once the last match has finished: it snapshots the
// ranking, marks the tournament completed, and publishes the archive.
// Called with s.mu held.
func (s *tournamentService) finalize(ctx context.Context, tournamentID int, eng *brackets.RoundRobin) {
	tiers, err := eng.Results()
	if err != nil {
		s.logger.Error("finalize called before tournament end",
			slog.Int("tournament_id", tournamentID), slog.Any("error", err))
		return
	}

	data := eng.BracketData()
	points := make(map[string]float64, len(data.Participants))
	for i, handle := range data.Participants {
		points[handle] = data.Scores[i]
	}

	standings := []models.Standing{}
	rank := 1
	for _, tier := range tiers {
		for _, handle := range tier {
			standings = append(standings, models.Standing{
				TournamentID: tournamentID,
				Handle:       handle,
				Rank:         rank,
				Points:       points[handle],
			})
		}
		rank += len(tier)
	}

	if err := s.persistFinalState(ctx, tournamentID, standings); err != nil {
		s.logger.Error("failed to persist final state",
			slog.Int("tournament_id", tournamentID), slog.Any("error", err))
	}

	if s.archive != nil {
		if url, err := s.archive.UploadStandings(ctx, tournamentID, standings); err != nil {
			s.logger.Error("failed to archive standings",
				slog.Int("tournament_id", tournamentID), slog.Any("error", err))
		} else if err := s.tournamentRepo.UpdateArchiveURL(ctx, tournamentID, &url); err != nil {
			s.logger.Error("failed to store archive url",
				slog.Int("tournament_id", tournamentID), slog.Any("error", err))
		}
	}

	s.hub.BroadcastToRoom(roomID(tournamentID), brackets.Event{
		Type:    brackets.EventTournamentCompleted,
		Payload: tiers,
	})

	s.logger.Info("tournament completed",
		slog.Int("tournament_id", tournamentID),
		slog.Int("participants", len(standings)))
}

// persistFinalState writes the completed status and the standings
// snapshot in one transaction.
func (s *tournamentService) persistFinalState(ctx context.Context, tournamentID int, standings []models.Standing) error {
	if s.db == nil {
		// Repositories backed by something other than *sql.DB (as in
		// tests) skip transactional grouping.
		if err := s.tournamentRepo.UpdateStatus(ctx, nil, tournamentID, models.StatusCompleted); err != nil {
			return err
		}
		return s.standingRepo.CreateBatch(ctx, nil, standings)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := s.tournamentRepo.UpdateStatus(ctx, tx, tournamentID, models.StatusCompleted); err != nil {
		tx.Rollback()
		return err
	}
	if err := s.standingRepo.CreateBatch(ctx, tx, standings); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit final state: %w", err)
	}
	return nil
}
