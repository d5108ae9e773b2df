package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/Dosada05/pool-tournament-manager/models"
	"github.com/google/uuid"
)

// AllMatchesRoom receives every match event. Tournament rooms receive only their own.
const AllMatchesRoom = "matches"

func TournamentRoom(id uuid.UUID) string {
	return "tournament:" + id.String()
}

type MatchEventType string

const (
	MatchCreated MatchEventType = "MATCH_CREATED"
	MatchUpdated MatchEventType = "MATCH_UPDATED"
	MatchDeleted MatchEventType = "MATCH_DELETED"
)

type MatchEvent struct {
	Type         MatchEventType
	MatchID      uuid.UUID
	TournamentID *uuid.UUID
	Match        *models.Match // nil for deletions
}

type WebSocketMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
	RoomID  string      `json:"roomId,omitempty"`
}

type Hub struct {
	Register   chan *Client
	Unregister chan *Client

	rooms  map[string]map[*Client]bool
	mu     sync.RWMutex
	done   chan struct{}
	logger *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		rooms:      make(map[string]map[*Client]bool),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

// Run processes registrations until ctx is cancelled, then closes every client.
func (h *Hub) Run(ctx context.Context) {
	defer h.shutdown()
	for {
		select {
		case <-ctx.Done():
			return

		case client := <-h.Register:
			h.mu.Lock()
			if _, ok := h.rooms[client.Room]; !ok {
				h.rooms[client.Room] = make(map[*Client]bool)
			}
			h.rooms[client.Room][client] = true
			h.logger.Debug("Client registered", slog.String("room", client.Room), slog.Int("clients", len(h.rooms[client.Room])))
			h.mu.Unlock()

		case client := <-h.Unregister:
			h.mu.Lock()
			if _, ok := h.rooms[client.Room][client]; ok {
				client.close()
				delete(h.rooms[client.Room], client)
				if len(h.rooms[client.Room]) == 0 {
					delete(h.rooms, client.Room)
				}
				h.logger.Debug("Client unregistered", slog.String("room", client.Room))
			}
			h.mu.Unlock()
		}
	}
}

func (h *Hub) shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for room, clients := range h.rooms {
		for client := range clients {
			client.close()
		}
		delete(h.rooms, room)
	}
	close(h.done)
}

// ClientCount returns the number of clients currently in room.
func (h *Hub) ClientCount(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}

// BroadcastToRoom sends message to every client in the room. Slow clients miss the message.
func (h *Hub) BroadcastToRoom(roomID string, message interface{}) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	roomClients, ok := h.rooms[roomID]
	if !ok {
		return
	}

	messageBytes, err := json.Marshal(message)
	if err != nil {
		h.logger.Error("Failed to marshal websocket message", slog.String("room", roomID), slog.Any("error", err))
		return
	}

	for client := range roomClients {
		if !client.trySend(messageBytes) {
			h.logger.Warn("Client send buffer full, message dropped", slog.String("room", roomID))
		}
	}
}

// PublishMatchEvent fans the event out to the global room and, if set, the tournament's room.
func (h *Hub) PublishMatchEvent(evt MatchEvent) {
	var payload interface{} = evt.Match
	if evt.Match == nil {
		payload = map[string]interface{}{"id": evt.MatchID, "tournamentId": evt.TournamentID}
	}

	h.BroadcastToRoom(AllMatchesRoom, WebSocketMessage{Type: string(evt.Type), Payload: payload, RoomID: AllMatchesRoom})
	if evt.TournamentID != nil {
		room := TournamentRoom(*evt.TournamentID)
		h.BroadcastToRoom(room, WebSocketMessage{Type: string(evt.Type), Payload: payload, RoomID: room})
	}
}

// Attach registers the client. It returns false once the hub has stopped.
func (h *Hub) Attach(client *Client) bool {
	select {
	case h.Register <- client:
		return true
	case <-h.done:
		return false
	}
}
