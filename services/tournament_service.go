package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Dosada05/swiss-pairings/brackets"
	"github.com/Dosada05/swiss-pairings/models"
	"github.com/Dosada05/swiss-pairings/repositories"
	"golang.org/x/sync/errgroup"
)

// Publisher delivers live events to the subscribers of a tournament.
type Publisher interface {
	Publish(tournamentID int, eventType string, payload any)
}

type CreateTournamentInput struct {
	Name        string   `json:"name"`
	Competitors []string `json:"competitors,omitempty"`
}

// DuelResult is one line of a batch results submission.
type DuelResult struct {
	DuelID int `json:"duel_id"`
	AWins  int `json:"a_wins"`
	BWins  int `json:"b_wins"`
}

// TournamentView is a tournament with everything derived from its duels.
type TournamentView struct {
	Tournament *models.Tournament      `json:"tournament"`
	Status     models.TournamentStatus `json:"status"`
	Standing   []models.Performance    `json:"standing"`
	Ranking    []brackets.Ranked       `json:"ranking"`
}

type TournamentService interface {
	Create(ctx context.Context, input CreateTournamentInput) (*models.Tournament, error)
	List(ctx context.Context, filter repositories.ListTournamentsFilter) ([]models.Tournament, error)
	Get(ctx context.Context, id int) (*TournamentView, error)
	SetCompetitors(ctx context.Context, id int, names []string) (*models.Round, error)
	RecordResult(ctx context.Context, id, duelID int, competitor string, wins int) (*models.Duel, error)
	RecordResults(ctx context.Context, id int, results []DuelResult) ([]models.Duel, error)
	Advance(ctx context.Context, id int) (*brackets.AdvanceResult, error)
	Finish(ctx context.Context, id int) ([]models.Performance, error)
	Standing(ctx context.Context, id int) ([]models.Performance, error)
	Ranking(ctx context.Context, id int) ([]brackets.Ranked, error)
}

type tournamentService struct {
	tx             repositories.Transactor
	tournamentRepo repositories.TournamentRepository
	competitorRepo repositories.CompetitorRepository
	roundRepo      repositories.RoundRepository
	duelRepo       repositories.DuelRepository
	engine         *brackets.Engine
	publisher      Publisher
	archiver       *Archiver
	logger         *slog.Logger
}

func NewTournamentService(
	tx repositories.Transactor,
	tournamentRepo repositories.TournamentRepository,
	competitorRepo repositories.CompetitorRepository,
	roundRepo repositories.RoundRepository,
	duelRepo repositories.DuelRepository,
	engine *brackets.Engine,
	publisher Publisher,
	archiver *Archiver,
	logger *slog.Logger,
) TournamentService {
	return &tournamentService{
		tx:             tx,
		tournamentRepo: tournamentRepo,
		competitorRepo: competitorRepo,
		roundRepo:      roundRepo,
		duelRepo:       duelRepo,
		engine:         engine,
		publisher:      publisher,
		archiver:       archiver,
		logger:         logger,
	}
}

func (s *tournamentService) Create(ctx context.Context, input CreateTournamentInput) (*models.Tournament, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrTournamentNameRequired
	}

	t := &models.Tournament{Name: name}
	var round *models.Round
	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		if err := s.tournamentRepo.Create(ctx, exec, t); err != nil {
			return err
		}
		if len(input.Competitors) == 0 {
			return nil
		}
		var err error
		round, err = s.setCompetitors(ctx, exec, t, input.Competitors)
		return err
	})
	if err != nil {
		return nil, s.fail("create tournament", 0, err)
	}

	s.logger.Info("tournament created", slog.Int("tournament_id", t.ID), slog.String("name", t.Name))
	if round != nil {
		s.publisher.Publish(t.ID, brackets.EventCompetitorsSet, round)
	}
	return t, nil
}

func (s *tournamentService) List(ctx context.Context, filter repositories.ListTournamentsFilter) ([]models.Tournament, error) {
	tournaments, err := s.tournamentRepo.List(ctx, nil, filter)
	if err != nil {
		return nil, fmt.Errorf("listing tournaments: %w", translateRepoError(err))
	}
	return tournaments, nil
}

func (s *tournamentService) Get(ctx context.Context, id int) (*TournamentView, error) {
	t, err := s.read(ctx, id)
	if err != nil {
		return nil, err
	}

	view := &TournamentView{Tournament: t, Status: s.engine.Status(t)}
	g := new(errgroup.Group)
	g.Go(func() error {
		view.Standing = s.engine.Standing(t)
		return nil
	})
	g.Go(func() error {
		ratings, err := s.engine.Ranking(t)
		if err != nil {
			return err
		}
		view.Ranking = brackets.SortedRatings(ratings)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, s.fail("view tournament", id, err)
	}
	return view, nil
}

func (s *tournamentService) SetCompetitors(ctx context.Context, id int, names []string) (*models.Round, error) {
	var round *models.Round
	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		t, err := s.load(ctx, exec, id, true)
		if err != nil {
			return err
		}
		round, err = s.setCompetitors(ctx, exec, t, names)
		return err
	})
	if err != nil {
		return nil, s.fail("set competitors", id, err)
	}

	s.publisher.Publish(id, brackets.EventCompetitorsSet, round)
	return round, nil
}

// setCompetitors stores the competitor set and round 1 of t inside the caller's transaction.
func (s *tournamentService) setCompetitors(ctx context.Context, exec repositories.SQLExecutor, t *models.Tournament, names []string) (*models.Round, error) {
	competitors := make([]models.Competitor, len(names))
	for i, name := range names {
		competitors[i] = models.Competitor{Name: strings.TrimSpace(name)}
	}
	if err := s.engine.ValidateCompetitors(competitors); err != nil {
		return nil, err
	}
	if err := s.competitorRepo.Ensure(ctx, exec, competitors); err != nil {
		return nil, err
	}
	history, err := s.duelRepo.ListHistory(ctx, exec, competitors, t.ID)
	if err != nil {
		return nil, fmt.Errorf("loading competitor history: %w", err)
	}

	round, err := s.engine.SetCompetitors(t, competitors, history)
	if err != nil {
		return nil, err
	}
	if err := s.tournamentRepo.AddCompetitors(ctx, exec, t.ID, competitors); err != nil {
		return nil, err
	}
	if err := s.persistRound(ctx, exec, round); err != nil {
		return nil, err
	}
	return round, nil
}

func (s *tournamentService) RecordResult(ctx context.Context, id, duelID int, competitor string, wins int) (*models.Duel, error) {
	var duel models.Duel
	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		t, err := s.load(ctx, exec, id, true)
		if err != nil {
			return err
		}
		d, err := s.engine.RecordResult(t, duelID, models.Competitor{Name: competitor}, wins)
		if err != nil {
			return err
		}
		duel = *d
		return s.duelRepo.UpdateResult(ctx, exec, d)
	})
	if err != nil {
		return nil, s.fail("record result", id, err)
	}

	s.publisher.Publish(id, brackets.EventResultRecorded, duel)
	return &duel, nil
}

func (s *tournamentService) RecordResults(ctx context.Context, id int, results []DuelResult) ([]models.Duel, error) {
	if len(results) == 0 {
		return nil, fmt.Errorf("%w: no results given", ErrValidationFailed)
	}

	duels := make([]models.Duel, 0, len(results))
	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		t, err := s.load(ctx, exec, id, true)
		if err != nil {
			return err
		}
		for _, r := range results {
			d, err := s.engine.RecordDuel(t, r.DuelID, r.AWins, r.BWins)
			if err != nil {
				return fmt.Errorf("duel %d: %w", r.DuelID, err)
			}
			if err := s.duelRepo.UpdateResult(ctx, exec, d); err != nil {
				return err
			}
			duels = append(duels, *d)
		}
		return nil
	})
	if err != nil {
		return nil, s.fail("record results", id, err)
	}

	for _, d := range duels {
		s.publisher.Publish(id, brackets.EventResultRecorded, d)
	}
	return duels, nil
}

func (s *tournamentService) Advance(ctx context.Context, id int) (*brackets.AdvanceResult, error) {
	var (
		res brackets.AdvanceResult
		t   *models.Tournament
	)
	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		var err error
		t, err = s.load(ctx, exec, id, true)
		if err != nil {
			return err
		}
		res, err = s.engine.Advance(t)
		if err != nil {
			return err
		}
		if res.Finished {
			return s.tournamentRepo.SetFinished(ctx, exec, id)
		}
		return s.persistRound(ctx, exec, res.Round)
	})
	if err != nil {
		return nil, s.fail("advance tournament", id, err)
	}

	if res.Finished {
		s.finished(ctx, t, res.Standing)
	} else {
		s.publisher.Publish(id, brackets.EventRoundCreated, res.Round)
	}
	return &res, nil
}

func (s *tournamentService) Finish(ctx context.Context, id int) ([]models.Performance, error) {
	var t *models.Tournament
	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		var err error
		t, err = s.load(ctx, exec, id, true)
		if err != nil {
			return err
		}
		if err := s.engine.Finish(t); err != nil {
			return err
		}
		return s.tournamentRepo.SetFinished(ctx, exec, id)
	})
	if err != nil {
		return nil, s.fail("finish tournament", id, err)
	}

	standing := s.engine.Standing(t)
	s.finished(ctx, t, standing)
	return standing, nil
}

func (s *tournamentService) Standing(ctx context.Context, id int) ([]models.Performance, error) {
	t, err := s.read(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.engine.Standing(t), nil
}

func (s *tournamentService) Ranking(ctx context.Context, id int) ([]brackets.Ranked, error) {
	t, err := s.read(ctx, id)
	if err != nil {
		return nil, err
	}
	ratings, err := s.engine.Ranking(t)
	if err != nil {
		return nil, s.fail("rank tournament", id, err)
	}
	return brackets.SortedRatings(ratings), nil
}

// finished runs the post-commit side effects of a finished tournament.
func (s *tournamentService) finished(ctx context.Context, t *models.Tournament, standing []models.Performance) {
	s.logger.Info("tournament finished", slog.Int("tournament_id", t.ID), slog.Int("rounds", len(t.Rounds)))
	payload := map[string]any{"standing": standing}
	if s.archiver != nil {
		if res, err := s.archiver.Archive(ctx, t, standing); err != nil {
			s.logger.Error("archiving finished tournament failed", slog.Int("tournament_id", t.ID), slog.Any("error", err))
		} else {
			payload["archive"] = res
		}
	}
	s.publisher.Publish(t.ID, brackets.EventTournamentFinished, payload)
}

func (s *tournamentService) read(ctx context.Context, id int) (*models.Tournament, error) {
	var t *models.Tournament
	err := s.tx.WithinReadTx(ctx, func(exec repositories.SQLExecutor) error {
		var err error
		t, err = s.load(ctx, exec, id, false)
		return err
	})
	if err != nil {
		return nil, s.fail("load tournament", id, err)
	}
	return t, nil
}

// load assembles the tournament with its competitors, rounds and duels.
// With lock set the tournament row stays locked until the transaction ends.
func (s *tournamentService) load(ctx context.Context, exec repositories.SQLExecutor, id int, lock bool) (*models.Tournament, error) {
	get := s.tournamentRepo.GetByID
	if lock {
		get = s.tournamentRepo.GetForUpdate
	}
	t, err := get(ctx, exec, id)
	if err != nil {
		return nil, err
	}
	if t.Competitors, err = s.tournamentRepo.ListCompetitors(ctx, exec, id); err != nil {
		return nil, fmt.Errorf("loading competitors: %w", err)
	}
	rounds, err := s.roundRepo.ListByTournament(ctx, exec, id)
	if err != nil {
		return nil, fmt.Errorf("loading rounds: %w", err)
	}
	duels, err := s.duelRepo.ListByTournament(ctx, exec, id)
	if err != nil {
		return nil, fmt.Errorf("loading duels: %w", err)
	}

	index := make(map[int]int, len(rounds))
	for i := range rounds {
		index[rounds[i].ID] = i
		rounds[i].Duels = []models.Duel{}
	}
	for _, d := range duels {
		i, ok := index[d.RoundID]
		if !ok {
			return nil, fmt.Errorf("%w: duel %d references unknown round %d", brackets.ErrInvariantViolation, d.ID, d.RoundID)
		}
		rounds[i].Duels = append(rounds[i].Duels, d)
	}
	t.Rounds = rounds
	return t, nil
}

func (s *tournamentService) persistRound(ctx context.Context, exec repositories.SQLExecutor, round *models.Round) error {
	if err := s.roundRepo.Create(ctx, exec, round); err != nil {
		return err
	}
	if err := s.duelRepo.CreateBatch(ctx, exec, round.ID, round.Duels); err != nil {
		return fmt.Errorf("storing duels of round %d: %w", round.Number, err)
	}
	return nil
}

// fail translates err for the caller and logs what the caller cannot fix.
func (s *tournamentService) fail(op string, id int, err error) error {
	err = translateRepoError(err)
	if errors.Is(err, brackets.ErrInvariantViolation) || errors.Is(err, brackets.ErrRankingDidNotConverge) {
		s.logger.Error(op+" failed", slog.Int("tournament_id", id), slog.Any("error", err))
	}
	return fmt.Errorf("%s: %w", op, err)
}
