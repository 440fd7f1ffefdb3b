package handlers

import (
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/Dosada05/swiss-pairings/services"
)

type CompetitorHandler struct {
	competitorService services.CompetitorService
}

func NewCompetitorHandler(cs services.CompetitorService) *CompetitorHandler {
	return &CompetitorHandler{competitorService: cs}
}

// AllTimeStandingHandler godoc
// @Summary		All-time standing over every tournament
// @Tags		competitors
// @Produce		json
// @Success		200	{array}	models.Performance
// @Router		/competitors [get]
func (h *CompetitorHandler) AllTimeStandingHandler(w http.ResponseWriter, r *http.Request) {
	standing, err := h.competitorService.AllTimeStanding(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"standing": standing}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// AllTimeRankingHandler godoc
// @Summary		All-time ranking over every duel ever played
// @Tags		competitors
// @Produce		json
// @Success		200	{array}	brackets.Ranked
// @Router		/competitors/ranking [get]
func (h *CompetitorHandler) AllTimeRankingHandler(w http.ResponseWriter, r *http.Request) {
	ranking, err := h.competitorService.AllTimeRanking(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"ranking": ranking}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// HistoryHandler godoc
// @Summary		Duel history of a competitor
// @Tags		competitors
// @Produce		json
// @Param		name	path		string	true	"competitor name"
// @Success		200		{array}		models.HistoryEntry
// @Failure		404		{object}	map[string]string
// @Router		/competitors/{name} [get]
func (h *CompetitorHandler) HistoryHandler(w http.ResponseWriter, r *http.Request) {
	name, err := url.PathUnescape(chi.URLParam(r, "name"))
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	history, err := h.competitorService.History(r.Context(), name)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"competitor": name, "history": history}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
