package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Dosada05/swiss-pairings/models"
	"github.com/Dosada05/swiss-pairings/storage"
	"github.com/google/uuid"
)

// archiveTimeout bounds the upload so a slow bucket does not hold the request.
const archiveTimeout = 10 * time.Second

// TournamentArchive is the document stored for a finished tournament.
type TournamentArchive struct {
	Tournament *models.Tournament   `json:"tournament"`
	Standing   []models.Performance `json:"standing"`
	ArchivedAt time.Time            `json:"archived_at"`
}

// Archiver uploads final results of finished tournaments to object storage.
type Archiver struct {
	uploader storage.FileUploader
	now      func() time.Time
}

func NewArchiver(uploader storage.FileUploader) *Archiver {
	return &Archiver{uploader: uploader, now: time.Now}
}

func ArchiveKey(tournamentID int, id uuid.UUID) string {
	return fmt.Sprintf("tournaments/%d/final-%s.json", tournamentID, id)
}

func (a *Archiver) Archive(ctx context.Context, t *models.Tournament, standing []models.Performance) (*storage.UploadResult, error) {
	body, err := json.Marshal(TournamentArchive{
		Tournament: t,
		Standing:   standing,
		ArchivedAt: a.now().UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("encoding archive of tournament %d: %w", t.ID, err)
	}

	ctx, cancel := context.WithTimeout(ctx, archiveTimeout)
	defer cancel()
	return a.uploader.Upload(ctx, ArchiveKey(t.ID, uuid.New()), "application/json", bytes.NewReader(body))
}
