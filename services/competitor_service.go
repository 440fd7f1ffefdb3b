package services

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/Dosada05/swiss-pairings/brackets"
	"github.com/Dosada05/swiss-pairings/models"
	"github.com/Dosada05/swiss-pairings/repositories"
)

type CompetitorService interface {
	// AllTimeStanding sums the standing of every tournament per competitor.
	AllTimeStanding(ctx context.Context) ([]models.Performance, error)
	// AllTimeRanking rates every competitor over all duels ever played.
	AllTimeRanking(ctx context.Context) ([]brackets.Ranked, error)
	History(ctx context.Context, name string) ([]models.HistoryEntry, error)
}

type competitorService struct {
	tx             repositories.Transactor
	tournamentRepo repositories.TournamentRepository
	competitorRepo repositories.CompetitorRepository
	duelRepo       repositories.DuelRepository
	engine         *brackets.Engine
	logger         *slog.Logger
}

func NewCompetitorService(
	tx repositories.Transactor,
	tournamentRepo repositories.TournamentRepository,
	competitorRepo repositories.CompetitorRepository,
	duelRepo repositories.DuelRepository,
	engine *brackets.Engine,
	logger *slog.Logger,
) CompetitorService {
	return &competitorService{
		tx:             tx,
		tournamentRepo: tournamentRepo,
		competitorRepo: competitorRepo,
		duelRepo:       duelRepo,
		engine:         engine,
		logger:         logger,
	}
}

func (s *competitorService) AllTimeStanding(ctx context.Context) ([]models.Performance, error) {
	var (
		competitors map[int][]models.Competitor
		duels       map[int][]models.Duel
	)
	err := s.tx.WithinReadTx(ctx, func(exec repositories.SQLExecutor) error {
		var err error
		competitors, err = s.tournamentRepo.ListAllCompetitors(ctx, exec)
		if err != nil {
			return fmt.Errorf("loading tournament competitors: %w", err)
		}
		duels, err = s.duelRepo.ListAll(ctx, exec)
		if err != nil {
			return fmt.Errorf("loading duels: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	ids := make([]int, 0, len(competitors))
	for id := range competitors {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	winsNeeded := s.engine.Config().WinsNeeded
	perTournament := make([][]models.Performance, 0, len(ids))
	for _, id := range ids {
		perTournament = append(perTournament, brackets.Standing(duels[id], competitors[id], winsNeeded))
	}
	standing, err := brackets.AllTimeStanding(perTournament)
	if err != nil {
		return nil, fmt.Errorf("combining standings: %w", err)
	}
	return standing, nil
}

func (s *competitorService) AllTimeRanking(ctx context.Context) ([]brackets.Ranked, error) {
	byTournament, err := s.duelRepo.ListAll(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("loading duels: %w", err)
	}
	ids := make([]int, 0, len(byTournament))
	for id := range byTournament {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	var duels []models.Duel
	for _, id := range ids {
		duels = append(duels, byTournament[id]...)
	}

	ratings, err := s.engine.RankAll(duels)
	if err != nil {
		s.logger.Error("all-time ranking failed", slog.Int("duels", len(duels)), slog.Any("error", err))
		return nil, err
	}
	return brackets.SortedRatings(ratings), nil
}

func (s *competitorService) History(ctx context.Context, name string) ([]models.HistoryEntry, error) {
	if name == "" || name == s.engine.Config().Bye.Name {
		return nil, ErrCompetitorNotFound
	}
	var entries []models.HistoryEntry
	err := s.tx.WithinReadTx(ctx, func(exec repositories.SQLExecutor) error {
		exists, err := s.competitorRepo.Exists(ctx, exec, name)
		if err != nil {
			return fmt.Errorf("looking up competitor %q: %w", name, err)
		}
		if !exists {
			return fmt.Errorf("%w: %q", ErrCompetitorNotFound, name)
		}
		entries, err = s.competitorRepo.History(ctx, exec, name)
		if err != nil {
			return fmt.Errorf("loading history of %q: %w", name, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}
