package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"cryptocheckout/internal/logger"
	"cryptocheckout/internal/session"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// StreamEvents bridges a browser websocket onto the order session: ticks,
// record updates, alerts and navigation all flow through as JSON events. A
// client disconnect only detaches this subscriber; the session keeps running
// for other views of the same order.
func (h *Handler) StreamEvents(w http.ResponseWriter, r *http.Request) {
	identifier := chi.URLParam(r, "identifier")
	if identifier == "" {
		writeError(w, http.StatusBadRequest, "missing order identifier")
		return
	}

	s := h.Sessions.Acquire(r.Context(), identifier)
	events, cancel := s.Subscribe()
	defer cancel()

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Log.Warn("ws upgrade failed",
			zap.String("order", identifier),
			zap.Error(err))
		return
	}
	defer conn.Close()

	// Give a late joiner the current state before streaming deltas.
	if record, remaining := s.Snapshot(); record != nil {
		_ = conn.WriteJSON(session.Event{Kind: session.EventRecord, Record: record})
		_ = conn.WriteJSON(session.Event{
			Kind:      session.EventTick,
			Remaining: remaining,
			Display:   session.FormatRemaining(remaining),
		})
	}

	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-gone:
			return
		case ev, open := <-events:
			if !open {
				return
			}
			if err := conn.WriteJSON(ev); err != nil {
				return
			}
		}
	}
}
