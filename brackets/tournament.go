package brackets

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Dosada05/swiss-pairings/models"
)

// EngineConfig holds the tunables of the pairing engine. Zero fields take defaults.
type EngineConfig struct {
	WinsNeeded int
	Damping    float64
	Bye        models.Competitor
	ByeRating  float64
}

func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		WinsNeeded: models.DefaultWinsNeeded,
		Damping:    DefaultDamping,
		Bye:        models.DefaultBye,
		ByeRating:  DefaultByeRating,
	}
}

func (c EngineConfig) withDefaults() EngineConfig {
	def := DefaultEngineConfig()
	if c.WinsNeeded <= 0 {
		c.WinsNeeded = def.WinsNeeded
	}
	if c.Damping <= 0 || c.Damping >= 1 {
		c.Damping = def.Damping
	}
	if c.Bye.Name == "" {
		c.Bye = def.Bye
	}
	if c.ByeRating == 0 {
		c.ByeRating = def.ByeRating
	}
	return c
}

// AdvanceResult is either a new round or the end of the tournament.
type AdvanceResult struct {
	Round    *models.Round        `json:"round,omitempty"`
	Finished bool                 `json:"finished"`
	Standing []models.Performance `json:"standing"`
}

// Engine drives a tournament through NotStarted -> InProgress -> Finished.
// It works on in-memory records only; callers persist what it returns.
type Engine struct {
	cfg    EngineConfig
	pairer *SwissPairer
	logger *slog.Logger
}

func NewEngine(cfg EngineConfig, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	cfg = cfg.withDefaults()
	return &Engine{
		cfg:    cfg,
		pairer: NewSwissPairer(cfg),
		logger: logger,
	}
}

func (e *Engine) Config() EngineConfig {
	return e.cfg
}

func (e *Engine) Status(t *models.Tournament) models.TournamentStatus {
	switch {
	case t.Finished:
		return models.StatusFinished
	case len(t.Rounds) == 0:
		return models.StatusNotStarted
	default:
		return models.StatusInProgress
	}
}

// ValidateCompetitors checks a competitor list before it is attached to a tournament.
func (e *Engine) ValidateCompetitors(competitors []models.Competitor) error {
	if len(competitors) < 2 {
		return fmt.Errorf("%w: got %d", ErrNotEnoughCompetitors, len(competitors))
	}
	seen := make(map[models.Competitor]bool, len(competitors))
	for _, c := range competitors {
		if strings.TrimSpace(c.Name) == "" {
			return fmt.Errorf("%w: empty name", ErrInvalidCompetitor)
		}
		if c == e.cfg.Bye {
			return fmt.Errorf("%w: %q is reserved for byes", ErrInvalidCompetitor, c.Name)
		}
		if seen[c] {
			return fmt.Errorf("%w: %q", ErrDuplicateCompetitor, c.Name)
		}
		seen[c] = true
	}
	return nil
}

// SetCompetitors fixes the competitor set and starts the tournament with round 1.
// history holds the competitors' duels from other tournaments and only biases round 1.
func (e *Engine) SetCompetitors(t *models.Tournament, competitors []models.Competitor, history []models.Duel) (*models.Round, error) {
	if t.Finished {
		return nil, ErrTournamentFinished
	}
	if len(t.Rounds) > 0 {
		return nil, ErrTournamentStarted
	}
	if err := e.ValidateCompetitors(competitors); err != nil {
		return nil, err
	}

	duels, err := e.pairer.PairFirstRound(competitors, history)
	if err != nil {
		return nil, fmt.Errorf("pairing round 1: %w", err)
	}
	round := models.Round{TournamentID: t.ID, Number: 1, Duels: duels}
	if err := e.validateRound(competitors, &round); err != nil {
		return nil, err
	}

	t.Competitors = append([]models.Competitor(nil), competitors...)
	t.Rounds = append(t.Rounds, round)
	e.logger.Info("tournament started",
		slog.Int("tournament_id", t.ID),
		slog.Int("competitors", len(competitors)),
		slog.Int("duels", len(round.Duels)))
	return &t.Rounds[len(t.Rounds)-1], nil
}

// currentDuel finds the duel to record into. duelID 0 selects the current-round duel of c.
func (e *Engine) currentDuel(t *models.Tournament, duelID int, c models.Competitor) (*models.Duel, error) {
	if t.Finished {
		return nil, ErrTournamentFinished
	}
	current := t.CurrentRound()
	if current == nil {
		return nil, ErrTournamentNotStarted
	}

	if duelID == 0 {
		d, ok := current.DuelFor(c)
		if !ok {
			return nil, fmt.Errorf("%w: %q has no duel in round %d", ErrNotParticipant, c.Name, current.Number)
		}
		return d, nil
	}
	if d, ok := current.DuelByID(duelID); ok {
		return d, nil
	}
	for i := range t.Rounds {
		if _, ok := t.Rounds[i].DuelByID(duelID); ok {
			return nil, fmt.Errorf("%w: duel %d is in round %d", ErrRoundClosed, duelID, t.Rounds[i].Number)
		}
	}
	return nil, fmt.Errorf("%w: id %d", ErrDuelNotFound, duelID)
}

func (e *Engine) checkWins(wins int) error {
	if wins < 0 || wins > e.cfg.WinsNeeded {
		return fmt.Errorf("%w: %d not in [0, %d]", ErrInvalidWinCount, wins, e.cfg.WinsNeeded)
	}
	return nil
}

// RecordResult sets the game wins of one competitor in a duel of the current round.
// It never advances the tournament.
func (e *Engine) RecordResult(t *models.Tournament, duelID int, c models.Competitor, wins int) (*models.Duel, error) {
	d, err := e.currentDuel(t, duelID, c)
	if err != nil {
		return nil, err
	}
	if !d.Involves(c) {
		return nil, fmt.Errorf("%w: %q in duel %s vs %s", ErrNotParticipant, c.Name, d.A.Name, d.B.Name)
	}
	aWins, bWins := d.AWins, d.BWins
	if c == d.A {
		aWins = wins
	} else {
		bWins = wins
	}
	return e.applyResult(d, aWins, bWins)
}

// RecordDuel sets both sides of a duel of the current round at once.
func (e *Engine) RecordDuel(t *models.Tournament, duelID int, aWins, bWins int) (*models.Duel, error) {
	if duelID == 0 {
		return nil, fmt.Errorf("%w: id is required", ErrDuelNotFound)
	}
	d, err := e.currentDuel(t, duelID, models.Competitor{})
	if err != nil {
		return nil, err
	}
	return e.applyResult(d, aWins, bWins)
}

func (e *Engine) applyResult(d *models.Duel, aWins, bWins int) (*models.Duel, error) {
	if d.IsBye(e.cfg.Bye) {
		if aWins == d.AWins && bWins == d.BWins {
			return d, nil
		}
		return nil, ErrByeDuelImmutable
	}
	if err := e.checkWins(aWins); err != nil {
		return nil, err
	}
	if err := e.checkWins(bWins); err != nil {
		return nil, err
	}
	if aWins == e.cfg.WinsNeeded && bWins == e.cfg.WinsNeeded {
		return nil, fmt.Errorf("%w: %s %d - %d %s", ErrDuelTwoWinners, d.A.Name, aWins, bWins, d.B.Name)
	}
	d.AWins, d.BWins = aWins, bWins
	return d, nil
}

// Advance creates the next round once every duel of the current one is decided.
// When no valid pairing is left the tournament finishes instead.
func (e *Engine) Advance(t *models.Tournament) (AdvanceResult, error) {
	if t.Finished {
		return AdvanceResult{}, ErrTournamentFinished
	}
	current := t.CurrentRound()
	if current == nil {
		return AdvanceResult{}, ErrTournamentNotStarted
	}
	var open []string
	for _, d := range current.Duels {
		if !d.Decided(e.cfg.WinsNeeded) {
			open = append(open, d.A.Name+" vs "+d.B.Name)
		}
	}
	if len(open) > 0 {
		return AdvanceResult{}, fmt.Errorf("%w: round %d: %s", ErrRoundNotDecided, current.Number, strings.Join(open, ", "))
	}

	duels := t.Duels()
	standing := Standing(duels, t.Competitors, e.cfg.WinsNeeded)
	ratings, err := e.rank(duels, t.Competitors, standing)
	if err != nil {
		return AdvanceResult{}, err
	}

	nextNumber := current.Number + 1
	next, err := e.pairer.PairNextRound(t.Competitors, duels, ratings)
	if errors.Is(err, ErrPairingExhausted) {
		t.Finished = true
		e.logger.Info("tournament finished, no pairing left",
			slog.Int("tournament_id", t.ID),
			slog.Int("rounds", current.Number),
			slog.String("reason", err.Error()))
		return AdvanceResult{Finished: true, Standing: standing}, nil
	}
	if err != nil {
		return AdvanceResult{}, fmt.Errorf("pairing round %d: %w", nextNumber, err)
	}
	for i := range next {
		next[i].RoundNumber = nextNumber
	}

	round := models.Round{TournamentID: t.ID, Number: nextNumber, Duels: next}
	if err := e.validateRound(t.Competitors, &round); err != nil {
		return AdvanceResult{}, err
	}
	t.Rounds = append(t.Rounds, round)
	e.logger.Info("round created",
		slog.Int("tournament_id", t.ID),
		slog.Int("round", nextNumber),
		slog.Int("duels", len(next)))
	return AdvanceResult{Round: &t.Rounds[len(t.Rounds)-1], Standing: standing}, nil
}

// Finish ends a started tournament without another pairing attempt.
func (e *Engine) Finish(t *models.Tournament) error {
	if t.Finished {
		return ErrTournamentFinished
	}
	if len(t.Rounds) == 0 {
		return ErrTournamentNotStarted
	}
	t.Finished = true
	return nil
}

func (e *Engine) Standing(t *models.Tournament) []models.Performance {
	return Standing(t.Duels(), t.Competitors, e.cfg.WinsNeeded)
}

// Ranking rates the tournament's competitors, biased toward the current standing.
func (e *Engine) Ranking(t *models.Tournament) (map[models.Competitor]float64, error) {
	duels := t.Duels()
	return e.rank(duels, t.Competitors, Standing(duels, t.Competitors, e.cfg.WinsNeeded))
}

// RankAll rates competitors over any set of duels without personalization.
func (e *Engine) RankAll(duels []models.Duel) (map[models.Competitor]float64, error) {
	return Rank(duels, nil, nil, RankOptions{Damping: e.cfg.Damping, Bye: e.cfg.Bye})
}

func (e *Engine) rank(duels []models.Duel, competitors []models.Competitor, standing []models.Performance) (map[models.Competitor]float64, error) {
	return Rank(duels, competitors, StandingPersonalization(standing), RankOptions{Damping: e.cfg.Damping, Bye: e.cfg.Bye})
}

// validateRound checks that every competitor plays exactly once and the bye only fills an odd field.
func (e *Engine) validateRound(competitors []models.Competitor, round *models.Round) error {
	expected := make(map[models.Competitor]bool, len(competitors)+1)
	for _, c := range competitors {
		expected[c] = true
	}
	if len(competitors)%2 == 1 {
		expected[e.cfg.Bye] = true
	}

	seen := make(map[models.Competitor]bool, len(expected))
	for _, d := range round.Duels {
		for _, c := range [2]models.Competitor{d.A, d.B} {
			if !expected[c] {
				return fmt.Errorf("%w: round %d: unexpected competitor %q", ErrInvariantViolation, round.Number, c.Name)
			}
			if seen[c] {
				return fmt.Errorf("%w: round %d: %q plays twice", ErrInvariantViolation, round.Number, c.Name)
			}
			seen[c] = true
		}
	}
	if len(seen) != len(expected) {
		return fmt.Errorf("%w: round %d covers %d of %d competitors", ErrInvariantViolation, round.Number, len(seen), len(expected))
	}
	return nil
}
