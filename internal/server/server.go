// Package server assembles the HTTP router.
package server

import (
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/seetoh/bagelfunds/internal/auth"
	"github.com/seetoh/bagelfunds/internal/handlers"
	"github.com/seetoh/bagelfunds/internal/middleware"
	"github.com/seetoh/bagelfunds/internal/storage"
)

// New builds the router: public auth routes, session-gated user routes, and
// membership-gated cycle routes.
func New(h *handlers.Handler, jwtManager *auth.JWTManager, store storage.Store) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.Logging)
	r.Use(middleware.Metrics)

	authed := middleware.RequireAuth(jwtManager)
	member := middleware.RequireMember(store)

	r.Get("/", h.Landing)
	r.Get("/health", handlers.Health)
	r.Handle("/metrics", promhttp.Handler())

	r.Post("/signup", h.Signup)
	r.Post("/login", h.Login)
	r.Get("/logout", h.Logout)

	r.With(authed).Get("/profile", h.Profile)
	r.With(authed).Put("/profile/{id}", h.UpdateProfile)
	r.With(authed).Get("/notifications", h.Notifications)
	r.With(authed).Post("/create", h.CreateCycle)
	r.With(authed).Post("/handle/{inviteID}", h.AcceptInvite)
	r.With(authed).Delete("/handle/{inviteID}", h.DeclineInvite)

	r.With(authed, member).Get("/overview/{cycleID}", h.Overview)
	r.With(authed, member).Post("/invite/{cycleID}", h.Invite)
	r.With(authed, member).Put("/start/{cycleID}", h.StartCycle)
	r.With(authed, member).Put("/pay/{cycleID}/{sessionID}/{paymentID}", h.VerifyPayment)
	r.With(authed, member).Put("/randomize/{cycleID}/{sessionID}", h.RandomizeWinner)
	r.With(authed, member).Delete("/cancel/{cycleID}", h.CancelCycle)

	r.NotFound(handlers.NotFound)

	return r
}
