package server

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/swiftconvert/server/pkg/utils"
)

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// writeError maps the error taxonomy onto HTTP statuses and emits the
// message as-is; failure messages are user-facing and must stay precise.
func writeError(w http.ResponseWriter, log zerolog.Logger, err error) {
	status := utils.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Msg("request failed")
	} else {
		log.Warn().Err(err).Msg("request rejected")
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
