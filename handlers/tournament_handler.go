package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/Dosada05/swiss-pairings/repositories"
	"github.com/Dosada05/swiss-pairings/services"
)

const defaultListLimit = 20

type TournamentHandler struct {
	tournamentService services.TournamentService
}

func NewTournamentHandler(ts services.TournamentService) *TournamentHandler {
	return &TournamentHandler{
		tournamentService: ts,
	}
}

type setCompetitorsRequest struct {
	Competitors []string `json:"competitors"`
}

type recordResultRequest struct {
	Competitor string `json:"competitor"`
	Wins       int    `json:"wins"`
}

type recordResultsRequest struct {
	Results []services.DuelResult `json:"results"`
}

// CreateHandler godoc
// @Summary		Create a tournament
// @Description	Creates a tournament. When competitors are given round 1 is paired right away.
// @Tags		tournaments
// @Accept		json
// @Produce		json
// @Param		tournament	body		services.CreateTournamentInput	true	"name and optional competitors"
// @Success		201			{object}	models.Tournament
// @Failure		409			{object}	map[string]string
// @Failure		422			{object}	map[string]string
// @Security	BearerAuth
// @Router		/tournaments [post]
func (h *TournamentHandler) CreateHandler(w http.ResponseWriter, r *http.Request) {
	var input services.CreateTournamentInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	tournament, err := h.tournamentService.Create(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"tournament": tournament}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListHandler godoc
// @Summary		List tournaments
// @Tags		tournaments
// @Produce		json
// @Param		finished	query		bool	false	"only finished or only running tournaments"
// @Param		limit		query		int		false	"page size"	default(20)
// @Param		offset		query		int		false	"page offset"
// @Success		200			{array}		models.Tournament
// @Router		/tournaments [get]
func (h *TournamentHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	filter := repositories.ListTournamentsFilter{Limit: defaultListLimit}
	query := r.URL.Query()

	if finishedStr := query.Get("finished"); finishedStr != "" {
		finished, err := strconv.ParseBool(finishedStr)
		if err != nil {
			badRequestResponse(w, r, errors.New("invalid finished query parameter"))
			return
		}
		filter.Finished = &finished
	}
	if limitStr := query.Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil && limit > 0 {
			filter.Limit = limit
		} else {
			badRequestResponse(w, r, errors.New("invalid limit query parameter"))
			return
		}
	}
	if offsetStr := query.Get("offset"); offsetStr != "" {
		if offset, err := strconv.Atoi(offsetStr); err == nil && offset >= 0 {
			filter.Offset = offset
		} else {
			badRequestResponse(w, r, errors.New("invalid offset query parameter"))
			return
		}
	}

	tournaments, err := h.tournamentService.List(r.Context(), filter)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournaments": tournaments}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetByIDHandler godoc
// @Summary		Get a tournament with rounds, standing and ranking
// @Tags		tournaments
// @Produce		json
// @Param		tournamentID	path		int	true	"tournament id"
// @Success		200				{object}	services.TournamentView
// @Failure		404				{object}	map[string]string
// @Router		/tournaments/{tournamentID} [get]
func (h *TournamentHandler) GetByIDHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	view, err := h.tournamentService.Get(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, view, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// SetCompetitorsHandler godoc
// @Summary		Set competitors and pair round 1
// @Tags		tournaments
// @Accept		json
// @Produce		json
// @Param		tournamentID	path		int						true	"tournament id"
// @Param		competitors		body		setCompetitorsRequest	true	"competitor names"
// @Success		201				{object}	models.Round
// @Failure		409				{object}	map[string]string
// @Failure		422				{object}	map[string]string
// @Security	BearerAuth
// @Router		/tournaments/{tournamentID}/competitors [put]
func (h *TournamentHandler) SetCompetitorsHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	var input setCompetitorsRequest
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	round, err := h.tournamentService.SetCompetitors(r.Context(), id, input.Competitors)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"round": round}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// RecordResultHandler godoc
// @Summary		Record the game wins of one competitor
// @Description	duelID 0 selects the competitor's duel in the current round.
// @Tags		duels
// @Accept		json
// @Produce		json
// @Param		tournamentID	path		int					true	"tournament id"
// @Param		duelID			path		int					true	"duel id or 0"
// @Param		result			body		recordResultRequest	true	"competitor and wins"
// @Success		200				{object}	models.Duel
// @Failure		409				{object}	map[string]string
// @Failure		422				{object}	map[string]string
// @Security	BearerAuth
// @Router		/tournaments/{tournamentID}/duels/{duelID} [patch]
func (h *TournamentHandler) RecordResultHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	duelID, err := strconv.Atoi(chi.URLParam(r, "duelID"))
	if err != nil || duelID < 0 {
		badRequestResponse(w, r, fmt.Errorf("invalid duelID parameter: %q", chi.URLParam(r, "duelID")))
		return
	}
	var input recordResultRequest
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if input.Competitor == "" {
		failedValidationResponse(w, r, errors.New("competitor is required"))
		return
	}

	duel, err := h.tournamentService.RecordResult(r.Context(), id, duelID, input.Competitor, input.Wins)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"duel": duel}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// RecordResultsHandler godoc
// @Summary		Record several duel results at once
// @Description	Either every result is stored or none is.
// @Tags		duels
// @Accept		json
// @Produce		json
// @Param		tournamentID	path		int						true	"tournament id"
// @Param		results			body		recordResultsRequest	true	"duel results"
// @Success		200				{array}		models.Duel
// @Failure		409				{object}	map[string]string
// @Failure		422				{object}	map[string]string
// @Security	BearerAuth
// @Router		/tournaments/{tournamentID}/results [post]
func (h *TournamentHandler) RecordResultsHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	var input recordResultsRequest
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	duels, err := h.tournamentService.RecordResults(r.Context(), id, input.Results)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"duels": duels}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// AdvanceHandler godoc
// @Summary		Pair the next round
// @Description	Returns 201 with the new round, or 200 with the final standing when no pairing is left.
// @Tags		rounds
// @Produce		json
// @Param		tournamentID	path		int	true	"tournament id"
// @Success		200				{object}	brackets.AdvanceResult
// @Success		201				{object}	brackets.AdvanceResult
// @Failure		409				{object}	map[string]string
// @Security	BearerAuth
// @Router		/tournaments/{tournamentID}/rounds [post]
func (h *TournamentHandler) AdvanceHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	res, err := h.tournamentService.Advance(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	status := http.StatusCreated
	if res.Finished {
		status = http.StatusOK
	}
	if err := writeJSON(w, status, res, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// FinishHandler godoc
// @Summary		Finish a tournament
// @Tags		tournaments
// @Produce		json
// @Param		tournamentID	path		int	true	"tournament id"
// @Success		200				{array}		models.Performance
// @Failure		409				{object}	map[string]string
// @Security	BearerAuth
// @Router		/tournaments/{tournamentID}/finish [post]
func (h *TournamentHandler) FinishHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	standing, err := h.tournamentService.Finish(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"finished": true, "standing": standing}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// StandingHandler godoc
// @Summary		Tournament standing
// @Tags		tournaments
// @Produce		json
// @Param		tournamentID	path		int	true	"tournament id"
// @Success		200				{array}		models.Performance
// @Failure		404				{object}	map[string]string
// @Router		/tournaments/{tournamentID}/standing [get]
func (h *TournamentHandler) StandingHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	standing, err := h.tournamentService.Standing(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"standing": standing}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// RankingHandler godoc
// @Summary		Tournament ranking biased toward the standing
// @Tags		tournaments
// @Produce		json
// @Param		tournamentID	path		int	true	"tournament id"
// @Success		200				{array}		brackets.Ranked
// @Failure		404				{object}	map[string]string
// @Router		/tournaments/{tournamentID}/ranking [get]
func (h *TournamentHandler) RankingHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	ranking, err := h.tournamentService.Ranking(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"ranking": ranking}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
