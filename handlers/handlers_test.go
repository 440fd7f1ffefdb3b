package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/swiss-pairings/brackets"
	"github.com/Dosada05/swiss-pairings/models"
	"github.com/Dosada05/swiss-pairings/repositories"
	"github.com/Dosada05/swiss-pairings/services"
)

// stubTournamentService answers with the configured values and records its inputs.
type stubTournamentService struct {
	err error

	created       services.CreateTournamentInput
	filter        repositories.ListTournamentsFilter
	recordedDuel  int
	recordedName  string
	recordedWins  int
	batch         []services.DuelResult
	advanceResult *brackets.AdvanceResult
}

func (s *stubTournamentService) Create(_ context.Context, input services.CreateTournamentInput) (*models.Tournament, error) {
	s.created = input
	if s.err != nil {
		return nil, s.err
	}
	return &models.Tournament{ID: 1, Name: input.Name}, nil
}

func (s *stubTournamentService) List(_ context.Context, filter repositories.ListTournamentsFilter) ([]models.Tournament, error) {
	s.filter = filter
	return []models.Tournament{{ID: 1, Name: "Spring"}}, s.err
}

func (s *stubTournamentService) Get(_ context.Context, id int) (*services.TournamentView, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &services.TournamentView{Tournament: &models.Tournament{ID: id}, Status: models.StatusInProgress}, nil
}

func (s *stubTournamentService) SetCompetitors(_ context.Context, id int, names []string) (*models.Round, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &models.Round{TournamentID: id, Number: 1}, nil
}

func (s *stubTournamentService) RecordResult(_ context.Context, _ int, duelID int, competitor string, wins int) (*models.Duel, error) {
	s.recordedDuel, s.recordedName, s.recordedWins = duelID, competitor, wins
	if s.err != nil {
		return nil, s.err
	}
	return &models.Duel{ID: 5, A: models.Competitor{Name: competitor}, AWins: wins}, nil
}

func (s *stubTournamentService) RecordResults(_ context.Context, _ int, results []services.DuelResult) ([]models.Duel, error) {
	s.batch = results
	return nil, s.err
}

func (s *stubTournamentService) Advance(context.Context, int) (*brackets.AdvanceResult, error) {
	return s.advanceResult, s.err
}

func (s *stubTournamentService) Finish(context.Context, int) ([]models.Performance, error) {
	return []models.Performance{}, s.err
}

func (s *stubTournamentService) Standing(context.Context, int) ([]models.Performance, error) {
	return []models.Performance{}, s.err
}

func (s *stubTournamentService) Ranking(context.Context, int) ([]brackets.Ranked, error) {
	return []brackets.Ranked{}, s.err
}

type stubCompetitorService struct {
	err error
}

func (s stubCompetitorService) AllTimeStanding(context.Context) ([]models.Performance, error) {
	return []models.Performance{}, s.err
}

func (s stubCompetitorService) AllTimeRanking(context.Context) ([]brackets.Ranked, error) {
	return []brackets.Ranked{}, s.err
}

func (s stubCompetitorService) History(_ context.Context, name string) ([]models.HistoryEntry, error) {
	if s.err != nil {
		return nil, s.err
	}
	return []models.HistoryEntry{{Opponent: models.Competitor{Name: name + "-rival"}}}, nil
}

func newTestRouter(ts services.TournamentService, cs services.CompetitorService) *chi.Mux {
	th := NewTournamentHandler(ts)
	ch := NewCompetitorHandler(cs)
	r := chi.NewRouter()
	r.Get("/tournaments", th.ListHandler)
	r.Post("/tournaments", th.CreateHandler)
	r.Get("/tournaments/{tournamentID}", th.GetByIDHandler)
	r.Put("/tournaments/{tournamentID}/competitors", th.SetCompetitorsHandler)
	r.Patch("/tournaments/{tournamentID}/duels/{duelID}", th.RecordResultHandler)
	r.Post("/tournaments/{tournamentID}/results", th.RecordResultsHandler)
	r.Post("/tournaments/{tournamentID}/rounds", th.AdvanceHandler)
	r.Post("/tournaments/{tournamentID}/finish", th.FinishHandler)
	r.Get("/competitors", ch.AllTimeStandingHandler)
	r.Get("/competitors/ranking", ch.AllTimeRankingHandler)
	r.Get("/competitors/{name}", ch.HistoryHandler)
	return r
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestTournamentHandler_Create(t *testing.T) {
	svc := &stubTournamentService{}
	router := newTestRouter(svc, stubCompetitorService{})

	rec := do(t, router, http.MethodPost, "/tournaments", `{"name":"Spring","competitors":["alice","bob"]}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, []string{"alice", "bob"}, svc.created.Competitors)

	var body struct {
		Tournament models.Tournament `json:"tournament"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Spring", body.Tournament.Name)

	rec = do(t, router, http.MethodPost, "/tournaments", `{"name":"Spring","extra":1}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, router, http.MethodPost, "/tournaments", ``)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTournamentHandler_List(t *testing.T) {
	svc := &stubTournamentService{}
	router := newTestRouter(svc, stubCompetitorService{})

	rec := do(t, router, http.MethodGet, "/tournaments?finished=true&limit=5&offset=10", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, svc.filter.Finished)
	assert.True(t, *svc.filter.Finished)
	assert.Equal(t, 5, svc.filter.Limit)
	assert.Equal(t, 10, svc.filter.Offset)

	rec = do(t, router, http.MethodGet, "/tournaments", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, svc.filter.Finished)
	assert.Equal(t, defaultListLimit, svc.filter.Limit)

	for _, q := range []string{"finished=maybe", "limit=0", "offset=-1"} {
		rec = do(t, router, http.MethodGet, "/tournaments?"+q, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code, q)
	}
}

func TestTournamentHandler_RecordResult(t *testing.T) {
	svc := &stubTournamentService{}
	router := newTestRouter(svc, stubCompetitorService{})

	rec := do(t, router, http.MethodPatch, "/tournaments/3/duels/0", `{"competitor":"alice","wins":2}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, svc.recordedDuel)
	assert.Equal(t, "alice", svc.recordedName)
	assert.Equal(t, 2, svc.recordedWins)

	rec = do(t, router, http.MethodPatch, "/tournaments/3/duels/abc", `{"competitor":"alice","wins":2}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, router, http.MethodPatch, "/tournaments/3/duels/1", `{"wins":2}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = do(t, router, http.MethodPatch, "/tournaments/0/duels/1", `{"competitor":"alice","wins":2}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTournamentHandler_RecordResults(t *testing.T) {
	svc := &stubTournamentService{}
	router := newTestRouter(svc, stubCompetitorService{})

	rec := do(t, router, http.MethodPost, "/tournaments/3/results", `{"results":[{"duel_id":4,"a_wins":2,"b_wins":1}]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []services.DuelResult{{DuelID: 4, AWins: 2, BWins: 1}}, svc.batch)
}

func TestTournamentHandler_Advance(t *testing.T) {
	svc := &stubTournamentService{advanceResult: &brackets.AdvanceResult{Round: &models.Round{Number: 2}}}
	router := newTestRouter(svc, stubCompetitorService{})

	rec := do(t, router, http.MethodPost, "/tournaments/3/rounds", "")
	assert.Equal(t, http.StatusCreated, rec.Code)

	svc.advanceResult = &brackets.AdvanceResult{Finished: true, Standing: []models.Performance{}}
	rec = do(t, router, http.MethodPost, "/tournaments/3/rounds", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var body brackets.AdvanceResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Finished)
	assert.Nil(t, body.Round)
}

func TestMapServiceErrorToHTTP(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("get: %w", services.ErrTournamentNotFound), http.StatusNotFound},
		{services.ErrCompetitorNotFound, http.StatusNotFound},
		{brackets.ErrDuelNotFound, http.StatusNotFound},
		{services.ErrTournamentNameConflict, http.StatusConflict},
		{services.ErrConcurrentUpdate, http.StatusConflict},
		{brackets.ErrTournamentStarted, http.StatusConflict},
		{brackets.ErrTournamentFinished, http.StatusConflict},
		{brackets.ErrRoundClosed, http.StatusConflict},
		{brackets.ErrRoundNotDecided, http.StatusConflict},
		{brackets.ErrByeDuelImmutable, http.StatusConflict},
		{services.ErrTournamentNameRequired, http.StatusUnprocessableEntity},
		{brackets.ErrInvalidWinCount, http.StatusUnprocessableEntity},
		{brackets.ErrDuelTwoWinners, http.StatusUnprocessableEntity},
		{brackets.ErrDuplicateCompetitor, http.StatusUnprocessableEntity},
		{brackets.ErrNotParticipant, http.StatusUnprocessableEntity},
		{brackets.ErrInvariantViolation, http.StatusInternalServerError},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			svc := &stubTournamentService{err: tt.err}
			rec := do(t, newTestRouter(svc, stubCompetitorService{}), http.MethodGet, "/tournaments/1", "")
			assert.Equal(t, tt.want, rec.Code)

			var body map[string]any
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Contains(t, body, "error")
		})
	}
}

func TestCompetitorHandler(t *testing.T) {
	router := newTestRouter(&stubTournamentService{}, stubCompetitorService{})

	rec := do(t, router, http.MethodGet, "/competitors", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = do(t, router, http.MethodGet, "/competitors/ranking", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, router, http.MethodGet, "/competitors/mary%20ann", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Competitor string                `json:"competitor"`
		History    []models.HistoryEntry `json:"history"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "mary ann", body.Competitor)
	require.Len(t, body.History, 1)
	assert.Equal(t, "mary ann-rival", body.History[0].Opponent.Name)

	router = newTestRouter(&stubTournamentService{}, stubCompetitorService{err: services.ErrCompetitorNotFound})
	rec = do(t, router, http.MethodGet, "/competitors/nobody", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
