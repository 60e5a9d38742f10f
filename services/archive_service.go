package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sparkychildcharlie/tournament-engine/models"
	"github.com/sparkychildcharlie/tournament-engine/storage"
)

// ArchiveService serialises the final standings of a completed
// tournament and publishes them to object storage.
type ArchiveService struct {
	uploader storage.FileUploader
}

func NewArchiveService(uploader storage.FileUploader) *ArchiveService {
	return &ArchiveService{uploader: uploader}
}

type standingsArchive struct {
	TournamentID int               `json:"tournament_id"`
	ArchivedAt   time.Time         `json:"archived_at"`
	Standings    []models.Standing `json:"standings"`
}

// UploadStandings uploads the standings snapshot under a per-tournament
// key and returns the public URL of the archive.
func (s *ArchiveService) UploadStandings(ctx context.Context, tournamentID int, standings []models.Standing) (string, error) {
	payload := standingsArchive{
		TournamentID: tournamentID,
		ArchivedAt:   time.Now().UTC(),
		Standings:    standings,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal standings archive: %w", err)
	}

	key := fmt.Sprintf("tournaments/%d/standings.json", tournamentID)
	result, err := s.uploader.Upload(ctx, key, "application/json", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to upload standings archive: %w", err)
	}
	return result.Location, nil
}
