// Package handlers implements the JSON HTTP handlers for the bagelfunds API.
// Handlers decode requests, call into the service layer, and map service
// errors to HTTP statuses; business rules live in internal/service.
package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/seetoh/bagelfunds/internal/auth"
	"github.com/seetoh/bagelfunds/internal/httputil"
	"github.com/seetoh/bagelfunds/internal/service"
	"github.com/seetoh/bagelfunds/internal/storage"
)

// Handler bundles the dependencies the route handlers need.
type Handler struct {
	authn      auth.Authenticator
	jwt        *auth.JWTManager
	cycles     *service.CycleService
	invites    *service.InviteService
	store      storage.Store
	sessionTTL time.Duration
}

// New creates a Handler.
func New(authn auth.Authenticator, jwt *auth.JWTManager, store storage.Store, sessionTTL time.Duration) *Handler {
	return &Handler{
		authn:      authn,
		jwt:        jwt,
		cycles:     service.NewCycleService(store),
		invites:    service.NewInviteService(store),
		store:      store,
		sessionTTL: sessionTTL,
	}
}

// NotFound is the catch-all handler.
func NotFound(w http.ResponseWriter, r *http.Request) {
	httputil.WriteError(w, http.StatusNotFound, "page not found")
}

// Health reports process liveness.
func Health(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// writeServiceError maps a service error to an HTTP response.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		httputil.WriteError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrNotHost),
		errors.Is(err, service.ErrNotInvitee):
		httputil.WriteError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, service.ErrTooFewMembers),
		errors.Is(err, service.ErrNoEligibleMembers):
		httputil.WriteError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrSelfInvite),
		errors.Is(err, service.ErrAlreadyMember),
		errors.Is(err, service.ErrAlreadyInvited),
		errors.Is(err, service.ErrCycleStarted),
		errors.Is(err, service.ErrWinnerDrawn):
		httputil.WriteError(w, http.StatusConflict, err.Error())
	default:
		httputil.WriteError(w, http.StatusInternalServerError, "internal error")
	}
}
