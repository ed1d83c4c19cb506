package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/aidosbek/tournament-hub/brackets"
	"github.com/aidosbek/tournament-hub/services"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Origin is enforced by the CORS layer for the REST API; the
		// socket is read-only so any origin may subscribe.
		return true
	},
}

type WebSocketHandler struct {
	hub               *brackets.Hub
	tournamentService services.TournamentService
}

func NewWebSocketHandler(hub *brackets.Hub, ts services.TournamentService) *WebSocketHandler {
	return &WebSocketHandler{hub: hub, tournamentService: ts}
}

// ServeWs подключает клиента к комнате турнира: GET /ws/tournaments/{tournamentID}
func (h *WebSocketHandler) ServeWs(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	// Reject subscriptions to tournaments that do not exist.
	if _, err := h.tournamentService.GetTournamentByID(r.Context(), id); err != nil {
		if errors.Is(err, services.ErrTournamentNotFound) {
			notFoundResponse(w, r)
			return
		}
		serverErrorResponse(w, r, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written an HTTP error to the client.
		slog.Warn("websocket upgrade failed", slog.Int("tournament_id", id), slog.Any("error", err))
		return
	}

	client := &brackets.Client{
		Hub:          h.hub,
		Conn:         conn,
		Send:         make(chan []byte, 256),
		TournamentID: id,
	}
	client.Hub.Register <- client

	go client.WritePump()
	go client.ReadPump()
}
