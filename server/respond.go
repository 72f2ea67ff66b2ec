package server

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"
)

// statusResponse is the envelope every non-proxied response uses.
type statusResponse struct {
	Status      string `json:"status"`
	Message     string `json:"message,omitempty"`
	BearerToken string `json:"bearerToken,omitempty"`
	SessionID   string `json:"jolokia-session-id,omitempty"`
}

func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Err(err).Msg("failed to write response")
	}
}

// writeFailed writes the standard failure envelope.
func writeFailed(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, statusResponse{Status: "failed", Message: message})
}

// writeInternalError hides upstream detail from the caller; the cause is
// logged server-side.
func writeInternalError(w http.ResponseWriter, err error) {
	log.Err(err).Msg("internal server error")
	writeJSON(w, http.StatusInternalServerError, statusResponse{Status: "error", Message: "Internal Server Error"})
}

// writeValue forwards a raw JSON payload from the bridge.
func writeValue(w http.ResponseWriter, value json.RawMessage) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(value); err != nil {
		log.Err(err).Msg("failed to write response")
	}
}
