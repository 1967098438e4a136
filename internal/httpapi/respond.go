package httpapi

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/mcdev12/partytrivia/internal/apperr"
	"github.com/mcdev12/partytrivia/internal/models"
)

// headerSessionToken carries the opaque guest session token on every play
// request.
const headerSessionToken = "X-Session-Token"

// headerHostKey carries the shared secret for the host surface.
const headerHostKey = "X-Host-Key"

func respondJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}

// respondError maps app-layer sentinels to HTTP statuses. Anything unmatched
// is a 500 with the detail kept out of the response body.
func respondError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, apperr.ErrInvalidInput), errors.Is(err, apperr.ErrInvalidOption):
		status = http.StatusBadRequest
	case errors.Is(err, apperr.ErrUnauthorized):
		status = http.StatusUnauthorized
	case errors.Is(err, apperr.ErrPermissionDenied):
		status = http.StatusForbidden
	case errors.Is(err, apperr.ErrNotFound), errors.Is(err, sql.ErrNoRows):
		status = http.StatusNotFound
	case errors.Is(err, apperr.ErrDuplicateOption):
		status = http.StatusConflict
	}

	message := err.Error()
	if status == http.StatusInternalServerError {
		log.Error().Err(err).Msg("request failed")
		message = "internal error"
	}
	respondJSON(w, status, map[string]interface{}{
		"success": false,
		"error":   message,
	})
}

func errInvalidID() error {
	return fmt.Errorf("invalid id: %w", apperr.ErrInvalidInput)
}

func decodeBody(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return errors.Join(apperr.ErrInvalidInput, err)
	}
	return nil
}

type participantHandler func(w http.ResponseWriter, r *http.Request, p *models.Participant)

// withParticipant authenticates the session token before running the handler.
func (s *Server) withParticipant(next participantHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := r.Header.Get(headerSessionToken)
		participant, err := s.participants.Authenticate(r.Context(), token)
		if err != nil {
			respondError(w, err)
			return
		}
		next(w, r, participant)
	}
}

// withHostKey gates the host surface behind the shared host secret.
func (s *Server) withHostKey(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.hostKey == "" || r.Header.Get(headerHostKey) != s.hostKey {
			respondError(w, apperr.ErrUnauthorized)
			return
		}
		next(w, r)
	}
}
