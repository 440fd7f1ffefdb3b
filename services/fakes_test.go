package services

import (
	"context"
	"io"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/Dosada05/swiss-pairings/brackets"
	"github.com/Dosada05/swiss-pairings/models"
	"github.com/Dosada05/swiss-pairings/repositories"
	"github.com/Dosada05/swiss-pairings/storage"
)

// memStore is an in-memory stand-in for the Postgres schema.
type memStore struct {
	mu sync.Mutex

	nextID                int
	tournaments           map[int]models.Tournament
	competitors           map[string]bool
	tournamentCompetitors map[int][]models.Competitor
	rounds                []models.Round
	duels                 []models.Duel

	// looseReads counts pool-level reads made outside a read snapshot.
	looseReads int
}

func newMemStore() *memStore {
	return &memStore{
		tournaments:           make(map[int]models.Tournament),
		competitors:           map[string]bool{models.DefaultBye.Name: true},
		tournamentCompetitors: make(map[int][]models.Competitor),
	}
}

func (s *memStore) id() int {
	s.nextID++
	return s.nextID
}

type memSnapshot struct {
	nextID                int
	tournaments           map[int]models.Tournament
	competitors           map[string]bool
	tournamentCompetitors map[int][]models.Competitor
	rounds                []models.Round
	duels                 []models.Duel
}

func (s *memStore) snapshot() memSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := memSnapshot{
		nextID:                s.nextID,
		tournaments:           make(map[int]models.Tournament, len(s.tournaments)),
		competitors:           make(map[string]bool, len(s.competitors)),
		tournamentCompetitors: make(map[int][]models.Competitor, len(s.tournamentCompetitors)),
		rounds:                slices.Clone(s.rounds),
		duels:                 slices.Clone(s.duels),
	}
	for k, v := range s.tournaments {
		snap.tournaments[k] = v
	}
	for k, v := range s.competitors {
		snap.competitors[k] = v
	}
	for k, v := range s.tournamentCompetitors {
		snap.tournamentCompetitors[k] = slices.Clone(v)
	}
	return snap
}

func (s *memStore) restore(snap memSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID = snap.nextID
	s.tournaments = snap.tournaments
	s.competitors = snap.competitors
	s.tournamentCompetitors = snap.tournamentCompetitors
	s.rounds = snap.rounds
	s.duels = snap.duels
}

func (s *memStore) roundOf(roundID int) (models.Round, bool) {
	for _, r := range s.rounds {
		if r.ID == roundID {
			return r, true
		}
	}
	return models.Round{}, false
}

// fakeTx runs the unit of work directly and restores the store when it fails.
type fakeTx struct {
	store *memStore
	reads int
}

func (f *fakeTx) WithinTx(_ context.Context, fn func(exec repositories.SQLExecutor) error) error {
	snap := f.store.snapshot()
	if err := fn(nil); err != nil {
		f.store.restore(snap)
		return err
	}
	return nil
}

// readSnapshot marks the executor handed out by WithinReadTx.
type readSnapshot struct{ repositories.SQLExecutor }

func (f *fakeTx) WithinReadTx(_ context.Context, fn func(exec repositories.SQLExecutor) error) error {
	f.reads++
	return fn(readSnapshot{})
}

func (s *memStore) noteRead(exec repositories.SQLExecutor) {
	if _, ok := exec.(readSnapshot); !ok {
		s.looseReads++
	}
}

type fakeTournamentRepo struct{ s *memStore }

func (r fakeTournamentRepo) Create(_ context.Context, _ repositories.SQLExecutor, t *models.Tournament) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.tournaments {
		if existing.Name == t.Name {
			return repositories.ErrTournamentNameConflict
		}
	}
	t.ID = r.s.id()
	t.CreatedAt = time.Date(2024, 1, 1, 0, 0, t.ID, 0, time.UTC)
	r.s.tournaments[t.ID] = models.Tournament{ID: t.ID, Name: t.Name, Finished: t.Finished, CreatedAt: t.CreatedAt}
	return nil
}

func (r fakeTournamentRepo) GetByID(_ context.Context, _ repositories.SQLExecutor, id int) (*models.Tournament, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.tournaments[id]
	if !ok {
		return nil, repositories.ErrTournamentNotFound
	}
	return &t, nil
}

func (r fakeTournamentRepo) GetForUpdate(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.Tournament, error) {
	return r.GetByID(ctx, exec, id)
}

func (r fakeTournamentRepo) List(_ context.Context, _ repositories.SQLExecutor, filter repositories.ListTournamentsFilter) ([]models.Tournament, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]models.Tournament, 0)
	for _, t := range r.s.tournaments {
		if filter.Finished != nil && t.Finished != *filter.Finished {
			continue
		}
		out = append(out, t)
	}
	slices.SortFunc(out, func(a, b models.Tournament) int { return b.ID - a.ID })
	return out, nil
}

func (r fakeTournamentRepo) SetFinished(_ context.Context, _ repositories.SQLExecutor, id int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.tournaments[id]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	t.Finished = true
	r.s.tournaments[id] = t
	return nil
}

func (r fakeTournamentRepo) AddCompetitors(_ context.Context, _ repositories.SQLExecutor, id int, competitors []models.Competitor) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, c := range competitors {
		if !r.s.competitors[c.Name] {
			return repositories.ErrCompetitorUnknown
		}
	}
	r.s.tournamentCompetitors[id] = append(r.s.tournamentCompetitors[id], competitors...)
	return nil
}

func (r fakeTournamentRepo) ListCompetitors(_ context.Context, _ repositories.SQLExecutor, id int) ([]models.Competitor, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return slices.Clone(r.s.tournamentCompetitors[id]), nil
}

func (r fakeTournamentRepo) ListAllCompetitors(_ context.Context, exec repositories.SQLExecutor) (map[int][]models.Competitor, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.noteRead(exec)
	out := make(map[int][]models.Competitor, len(r.s.tournamentCompetitors))
	for id, cs := range r.s.tournamentCompetitors {
		out[id] = slices.Clone(cs)
	}
	return out, nil
}

type fakeCompetitorRepo struct{ s *memStore }

func (r fakeCompetitorRepo) Ensure(_ context.Context, _ repositories.SQLExecutor, competitors []models.Competitor) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, c := range competitors {
		r.s.competitors[c.Name] = true
	}
	return nil
}

func (r fakeCompetitorRepo) Exists(_ context.Context, exec repositories.SQLExecutor, name string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.noteRead(exec)
	return r.s.competitors[name], nil
}

func (r fakeCompetitorRepo) History(_ context.Context, exec repositories.SQLExecutor, name string) ([]models.HistoryEntry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.noteRead(exec)
	c := models.Competitor{Name: name}
	entries := make([]models.HistoryEntry, 0)
	for _, d := range r.s.duels {
		opponent, ok := d.Opponent(c)
		if !ok {
			continue
		}
		round, _ := r.s.roundOf(d.RoundID)
		entries = append(entries, models.HistoryEntry{
			TournamentID:   round.TournamentID,
			TournamentName: r.s.tournaments[round.TournamentID].Name,
			RoundNumber:    round.Number,
			DuelID:         d.ID,
			Opponent:       opponent,
			Wins:           d.WinsOf(c),
			Losses:         d.LossesOf(c),
		})
	}
	return entries, nil
}

type fakeRoundRepo struct{ s *memStore }

func (r fakeRoundRepo) Create(_ context.Context, _ repositories.SQLExecutor, round *models.Round) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.rounds {
		if existing.TournamentID == round.TournamentID && existing.Number == round.Number {
			return repositories.ErrRoundConflict
		}
	}
	round.ID = r.s.id()
	r.s.rounds = append(r.s.rounds, models.Round{ID: round.ID, TournamentID: round.TournamentID, Number: round.Number})
	return nil
}

func (r fakeRoundRepo) ListByTournament(_ context.Context, _ repositories.SQLExecutor, tournamentID int) ([]models.Round, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]models.Round, 0)
	for _, round := range r.s.rounds {
		if round.TournamentID == tournamentID {
			out = append(out, round)
		}
	}
	slices.SortFunc(out, func(a, b models.Round) int { return a.Number - b.Number })
	return out, nil
}

type fakeDuelRepo struct{ s *memStore }

func (r fakeDuelRepo) CreateBatch(_ context.Context, _ repositories.SQLExecutor, roundID int, duels []models.Duel) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	round, ok := r.s.roundOf(roundID)
	if !ok {
		return repositories.ErrRoundNotFound
	}
	for i := range duels {
		duels[i].ID = r.s.id()
		duels[i].RoundID = roundID
		duels[i].RoundNumber = round.Number
		r.s.duels = append(r.s.duels, duels[i])
	}
	return nil
}

func (r fakeDuelRepo) UpdateResult(_ context.Context, _ repositories.SQLExecutor, d *models.Duel) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.duels {
		if r.s.duels[i].ID == d.ID {
			r.s.duels[i].AWins, r.s.duels[i].BWins = d.AWins, d.BWins
			return nil
		}
	}
	return repositories.ErrDuelNotFound
}

func (r fakeDuelRepo) byTournament() map[int][]models.Duel {
	out := make(map[int][]models.Duel)
	for _, d := range r.s.duels {
		round, _ := r.s.roundOf(d.RoundID)
		out[round.TournamentID] = append(out[round.TournamentID], d)
	}
	return out
}

func (r fakeDuelRepo) ListByTournament(_ context.Context, _ repositories.SQLExecutor, tournamentID int) ([]models.Duel, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := r.byTournament()[tournamentID]
	if out == nil {
		out = []models.Duel{}
	}
	return out, nil
}

func (r fakeDuelRepo) ListHistory(_ context.Context, _ repositories.SQLExecutor, competitors []models.Competitor, excludeTournamentID int) ([]models.Duel, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []models.Duel
	for id, duels := range r.byTournament() {
		if id == excludeTournamentID {
			continue
		}
		for _, d := range duels {
			if slices.Contains(competitors, d.A) || slices.Contains(competitors, d.B) {
				out = append(out, d)
			}
		}
	}
	return out, nil
}

func (r fakeDuelRepo) ListAll(_ context.Context, exec repositories.SQLExecutor) (map[int][]models.Duel, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.noteRead(exec)
	return r.byTournament(), nil
}

type publishedEvent struct {
	TournamentID int
	Type         string
	Payload      any
}

type fakePublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (p *fakePublisher) Publish(tournamentID int, eventType string, payload any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{TournamentID: tournamentID, Type: eventType, Payload: payload})
}

func (p *fakePublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}

type fakeUploader struct {
	mu      sync.Mutex
	objects map[string][]byte
	err     error
}

func (u *fakeUploader) Upload(_ context.Context, key string, _ string, reader io.Reader) (*storage.UploadResult, error) {
	if u.err != nil {
		return nil, u.err
	}
	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	u.objects[key] = body
	return &storage.UploadResult{Key: key, Location: u.GetPublicURL(key)}, nil
}

func (u *fakeUploader) GetPublicURL(key string) string {
	return "https://cdn.example/" + key
}

type testEnv struct {
	store       *memStore
	tx          *fakeTx
	publisher   *fakePublisher
	uploader    *fakeUploader
	tournaments TournamentService
	competitors CompetitorService
}

func newTestEnv() *testEnv {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := newMemStore()
	env := &testEnv{
		store:     store,
		tx:        &fakeTx{store: store},
		publisher: &fakePublisher{},
		uploader:  &fakeUploader{objects: make(map[string][]byte)},
	}
	engine := brackets.NewEngine(brackets.EngineConfig{}, logger)
	env.tournaments = NewTournamentService(
		env.tx,
		fakeTournamentRepo{store},
		fakeCompetitorRepo{store},
		fakeRoundRepo{store},
		fakeDuelRepo{store},
		engine,
		env.publisher,
		NewArchiver(env.uploader),
		logger,
	)
	env.competitors = NewCompetitorService(env.tx, fakeTournamentRepo{store}, fakeCompetitorRepo{store}, fakeDuelRepo{store}, engine, logger)
	return env
}
