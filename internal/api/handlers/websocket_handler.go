package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/isdelr/glossary-be/internal/services"
	ws "github.com/isdelr/glossary-be/internal/websocket"
	"github.com/rs/zerolog/log"
)

// WebSocketHandler upgrades HTTP connections to read-only glossary feeds.
type WebSocketHandler struct {
	hub      *ws.Hub
	upgrader websocket.Upgrader
}

// NewWebSocketHandler creates a new WebSocketHandler. An empty allowedOrigins
// accepts every origin.
func NewWebSocketHandler(hub *ws.Hub, allowedOrigins []string) *WebSocketHandler {
	origins := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		origins[o] = true
	}

	return &WebSocketHandler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return len(origins) == 0 || origin == "" || origins["*"] || origins[origin]
			},
		},
	}
}

// Serve handles /ws for every change and /ws/terms/{id} for a single term.
func (h *WebSocketHandler) Serve(w http.ResponseWriter, r *http.Request) {
	topic := ws.GlobalTopic
	if idParam := chi.URLParam(r, "id"); idParam != "" {
		termID, err := strconv.ParseInt(idParam, 10, 64)
		if err != nil || termID <= 0 {
			respondError(w, http.StatusBadRequest, "Invalid term id")
			return
		}
		topic = services.TermTopic(termID)
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("Failed to upgrade websocket connection")
		return
	}

	client := ws.NewClient(conn, topic)
	if !h.hub.Subscribe(client) {
		conn.Close()
		return
	}

	go client.WritePump()
	go func() {
		client.ReadPump(nil)
		// Unsubscribing closes Send, which ends WritePump.
		h.hub.Unsubscribe(client)
		log.Debug().Str("topic", topic).Msg("Websocket client finished")
	}()
}
