package api

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	"parkhub/internal/apperr"
)

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			log.Error().Err(err).Msg("encoding response failed")
		}
	}
}

// writeError maps an error to its status via the apperr taxonomy and answers
// with a stable kind plus a human message. Internal details stay in the log.
func writeError(w http.ResponseWriter, err error) {
	status := apperr.Status(err)
	kind := apperr.KindOf(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		log.Error().Err(err).Msg("request failed")
		msg = "internal error"
	}
	writeJSON(w, status, map[string]string{"error": string(kind), "msg": msg})
}
