package utils

import (
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"
)

// SetupSSEHeaders sets the response headers for a Server-Sent Events stream.
func SetupSSEHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
}

// WriteSSEEvent writes one event with its id so clients can checkpoint it via
// Last-Event-ID.
func WriteSSEEvent(w http.ResponseWriter, flusher http.Flusher, id string, data []byte) {
	if _, err := fmt.Fprintf(w, "id: %s\ndata: %s\n\n", id, data); err != nil {
		log.Error().Err(err).Msg("failed to write sse event")
		return
	}
	flusher.Flush()
}

// WriteSSEComment writes a comment line, used as a heartbeat.
func WriteSSEComment(w http.ResponseWriter, flusher http.Flusher, comment string) {
	if _, err := fmt.Fprintf(w, ": %s\n\n", comment); err != nil {
		log.Error().Err(err).Msg("failed to write sse comment")
		return
	}
	flusher.Flush()
}
