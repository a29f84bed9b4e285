package handler

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"go-wbs-tracker/internal/event"
)

// EventsHandler serves the server-sent-events stream. Each connection
// is one bus subscription; there is no replay, so a reconnecting
// client has missed whatever happened while it was away.
type EventsHandler struct {
	bus event.Bus
}

func NewEventsHandler(bus event.Bus) *EventsHandler {
	return &EventsHandler{bus: bus}
}

func (h *EventsHandler) Stream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Streaming unsupported"})
		return
	}

	// Subscribe before the headers go out, so a client that has seen
	// the 200 is guaranteed to receive every event published after it.
	events, unsubscribe := h.bus.Subscribe()
	defer unsubscribe()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case e, open := <-events:
			if !open {
				return
			}

			data, err := json.Marshal(e.Payload)
			if err != nil {
				slog.Error("failed to marshal event payload", "type", e.Type, "error", err)
				continue
			}

			// A failed write means the client is gone; returning
			// unsubscribes this listener without touching the rest.
			if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", e.Type, data); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
