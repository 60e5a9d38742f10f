package handlers

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/sparkychildcharlie/tournament-engine/brackets"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Origin checks are delegated to the CORS layer.
	CheckOrigin: func(r *http.Request) bool { return true },
}

type WebSocketHandler struct {
	hub *brackets.Hub
}

func NewWebSocketHandler(hub *brackets.Hub) *WebSocketHandler {
	return &WebSocketHandler{hub: hub}
}

// Subscribe upgrades the connection and joins the tournament's event
// room.
func (h *WebSocketHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	id, err := tournamentIDParam(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("websocket upgrade failed", slog.Any("error", err))
		return
	}

	client := &brackets.Client{
		Hub:  h.hub,
		Conn: conn,
		Send: make(chan []byte, 256),
		Room: fmt.Sprintf("tournament_%d", id),
	}
	h.hub.Register <- client

	go client.WritePump()
	go client.ReadPump()
}
