package brackets

import (
	"encoding/json"
	"log/slog"
	"sync"
)

// Event types broadcast to tournament rooms.
const (
	EventBracketFrozen           = "BRACKET_FROZEN"
	EventMatchFinished           = "MATCH_FINISHED"
	EventParticipantDone         = "PARTICIPANT_DONE"
	EventParticipantDisqualified = "PARTICIPANT_DISQUALIFIED"
	EventTournamentCompleted     = "TOURNAMENT_COMPLETED"
)

// Event is the envelope pushed to websocket subscribers of a
// tournament room.
type Event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
	RoomID  string      `json:"room_id,omitempty"`
}

// Hub fans events out to websocket clients grouped into per-tournament
// rooms.
type Hub struct {
	Register   chan *Client
	Unregister chan *Client

	rooms map[string]map[*Client]bool
	mu    sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		rooms:      make(map[string]map[*Client]bool),
	}
}

// Run processes client registration until the process exits. Meant to
// be started once, in its own goroutine.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.mu.Lock()
			if _, ok := h.rooms[client.Room]; !ok {
				h.rooms[client.Room] = make(map[*Client]bool)
			}
			h.rooms[client.Room][client] = true
			slog.Debug("ws client registered", slog.String("room", client.Room), slog.Int("clients", len(h.rooms[client.Room])))
			h.mu.Unlock()

		case client := <-h.Unregister:
			h.mu.Lock()
			if clients, ok := h.rooms[client.Room]; ok {
				if _, okClient := clients[client]; okClient {
					client.closeSend()
					delete(clients, client)
					if len(clients) == 0 {
						delete(h.rooms, client.Room)
					}
					slog.Debug("ws client unregistered", slog.String("room", client.Room))
				}
			}
			h.mu.Unlock()
		}
	}
}

// BroadcastToRoom marshals the event and sends it to every client in
// the room. Clients with a full send buffer are skipped rather than
// blocking the caller.
func (h *Hub) BroadcastToRoom(roomID string, event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	clients, ok := h.rooms[roomID]
	if !ok {
		return
	}

	event.RoomID = roomID
	messageBytes, err := json.Marshal(event)
	if err != nil {
		slog.Error("ws marshal failed", slog.String("room", roomID), slog.Any("error", err))
		return
	}

	for client := range clients {
		client.send(messageBytes)
	}
}
