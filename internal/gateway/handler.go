package gateway

import (
	"context"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/mcdev12/partytrivia/internal/models"
)

// Authenticator resolves a session token to its participant.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.Participant, error)
}

// GameResolver finds the game a new connection should join.
type GameResolver interface {
	GetActiveGame(ctx context.Context) (*models.Game, error)
}

// Handler upgrades authenticated HTTP requests to WebSocket connections
// scoped to the active game.
type Handler struct {
	cm    *ConnectionManager
	auth  Authenticator
	games GameResolver
}

// NewHandler creates a new WebSocket upgrade handler.
func NewHandler(cm *ConnectionManager, auth Authenticator, games GameResolver) *Handler {
	return &Handler{cm: cm, auth: auth, games: games}
}

// ServeHTTP authenticates the session token and upgrades the connection. The
// token travels in the query string because browser WebSocket clients cannot
// set request headers.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	participant, err := h.auth.Authenticate(r.Context(), token)
	if err != nil {
		log.Warn().Err(err).Msg("rejected WebSocket connection")
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	game, err := h.games.GetActiveGame(r.Context())
	if err != nil {
		log.Warn().Err(err).Msg("no active game for WebSocket connection")
		http.Error(w, "no active game", http.StatusNotFound)
		return
	}

	if err := h.cm.UpgradeConnection(w, r, participant.ID.String(), game.ID); err != nil {
		// Upgrade already wrote the error response
		return
	}
}
