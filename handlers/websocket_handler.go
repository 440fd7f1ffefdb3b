package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/Dosada05/swiss-pairings/brackets"
	"github.com/Dosada05/swiss-pairings/services"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Origin проверяется CORS-политикой роутера, сюда доходят только разрешённые клиенты.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// tournamentViewer is the part of the tournament service the websocket handler needs.
type tournamentViewer interface {
	Get(ctx context.Context, id int) (*services.TournamentView, error)
}

type WebSocketHandler struct {
	hub         *brackets.Hub
	tournaments tournamentViewer
	logger      *slog.Logger
}

func NewWebSocketHandler(hub *brackets.Hub, ts tournamentViewer, logger *slog.Logger) *WebSocketHandler {
	return &WebSocketHandler{hub: hub, tournaments: ts, logger: logger}
}

// ServeWs godoc
// @Summary		Live events of a tournament
// @Description	Upgrades to a websocket. The first message is TOURNAMENT_STATE with the current view.
// @Tags		live
// @Param		tournamentID	path	int	true	"tournament id"
// @Success		101
// @Failure		404	{object}	map[string]string
// @Router		/ws/tournaments/{tournamentID} [get]
func (h *WebSocketHandler) ServeWs(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	// турнир должен существовать до открытия комнаты
	view, err := h.tournaments.Get(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	room := brackets.RoomForTournament(id)
	state, err := json.Marshal(brackets.WebSocketMessage{
		Type:    brackets.EventTournamentState,
		Payload: view,
		RoomID:  room,
		EventID: uuid.NewString(),
	})
	if err != nil {
		serverErrorResponse(w, r, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade сам отправляет HTTP ошибку клиенту
		h.logger.Warn("websocket upgrade failed", slog.Int("tournament_id", id), slog.Any("error", err))
		return
	}

	client := h.hub.NewClient(conn, room)
	client.Send <- state
	if !h.hub.Subscribe(client) {
		h.logger.Info("websocket hub stopped, connection refused", slog.Int("tournament_id", id))
		conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
		conn.Close()
		return
	}

	go client.WritePump()
	go client.ReadPump()

	h.logger.Debug("websocket client subscribed", slog.Int("tournament_id", id), slog.String("room", room))
}
