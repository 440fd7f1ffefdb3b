package services

import (
	"errors"
	"fmt"

	"github.com/Dosada05/swiss-pairings/repositories"
)

// Общие ошибки, используемые в разных сервисах и маппинге HTTP.
var (
	ErrNotFound = errors.New("requested resource not found")

	// Ошибки валидации
	ErrValidationFailed       = errors.New("validation failed")
	ErrTournamentNameRequired = errors.New("tournament name is required")

	// Ошибки конфликтов
	ErrTournamentNameConflict = errors.New("tournament name already exists")
	ErrConcurrentUpdate       = errors.New("tournament was changed concurrently, retry the request")

	// Ошибки, специфичные для сущностей
	ErrTournamentNotFound = errors.New("tournament not found")
	ErrCompetitorNotFound = errors.New("competitor not found")
)

// translateRepoError maps repository sentinels onto service sentinels and keeps
// everything else, engine errors included, as is.
func translateRepoError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repositories.ErrTournamentNotFound):
		return fmt.Errorf("%w: %w", ErrTournamentNotFound, err)
	case errors.Is(err, repositories.ErrTournamentNameConflict):
		return fmt.Errorf("%w: %w", ErrTournamentNameConflict, err)
	case errors.Is(err, repositories.ErrRoundConflict):
		return fmt.Errorf("%w: %w", ErrConcurrentUpdate, err)
	case errors.Is(err, repositories.ErrCompetitorNotFound):
		return fmt.Errorf("%w: %w", ErrCompetitorNotFound, err)
	case errors.Is(err, repositories.ErrDuelNotFound),
		errors.Is(err, repositories.ErrRoundNotFound):
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	case errors.Is(err, repositories.ErrCompetitorUnknown),
		errors.Is(err, repositories.ErrDuelInvalidResult):
		return fmt.Errorf("%w: %w", ErrValidationFailed, err)
	}
	return err
}
