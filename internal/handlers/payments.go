package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/seetoh/bagelfunds/internal/httputil"
	"github.com/seetoh/bagelfunds/internal/middleware"
)

// VerifyPayment marks one payment as paid. Host only.
func (h *Handler) VerifyPayment(w http.ResponseWriter, r *http.Request) {
	err := h.cycles.VerifyPayment(
		r.Context(),
		middleware.GetUserID(r.Context()),
		chi.URLParam(r, "cycleID"),
		chi.URLParam(r, "sessionID"),
		chi.URLParam(r, "paymentID"),
	)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "verified"})
}

// RandomizeWinner draws the session's winner among members who have not won
// before. Host only.
func (h *Handler) RandomizeWinner(w http.ResponseWriter, r *http.Request) {
	winner, err := h.cycles.RandomizeWinner(
		r.Context(),
		middleware.GetUserID(r.Context()),
		chi.URLParam(r, "cycleID"),
		chi.URLParam(r, "sessionID"),
	)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]string{
		"membership_id": winner.Membership.ID,
		"user_id":       winner.Membership.UserID,
		"username":      winner.Username,
	})
}
