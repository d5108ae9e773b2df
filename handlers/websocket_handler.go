package handlers

import (
	"log/slog"
	"net/http"
	"slices"

	"github.com/Dosada05/pool-tournament-manager/events"
	"github.com/gorilla/websocket"
)

type WebSocketHandler struct {
	hub      *events.Hub
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// NewWebSocketHandler accepts connections from the given origins. Requests without an
// Origin header (non-browser clients) are always accepted.
func NewWebSocketHandler(hub *events.Hub, allowedOrigins []string, logger *slog.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || slices.Contains(allowedOrigins, origin)
			},
		},
		logger: logger,
	}
}

// ServeWs обрабатывает GET /ws/matches. С ?tournamentId= клиент получает только события турнира.
func (h *WebSocketHandler) ServeWs(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := parseUUIDQuery(r, "tournamentId")
	if err != nil {
		badRequestResponse(w, r, h.logger, err)
		return
	}

	room := events.AllMatchesRoom
	if tournamentID != nil {
		room = events.TournamentRoom(*tournamentID)
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade уже отправил HTTP ошибку клиенту.
		h.logger.Warn("Failed to upgrade websocket connection", slog.String("room", room), slog.Any("error", err))
		return
	}

	client := events.NewClient(h.hub, conn, room)
	if !h.hub.Attach(client) {
		_ = conn.Close()
		return
	}
	h.logger.Debug("Websocket client attached", slog.String("room", room))

	go client.WritePump()
	go client.ReadPump()
}
