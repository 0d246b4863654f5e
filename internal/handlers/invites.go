package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/seetoh/bagelfunds/internal/httputil"
	"github.com/seetoh/bagelfunds/internal/middleware"
)

type inviteRequest struct {
	Username string `json:"username"`
}

// Invite offers a user a seat in the cycle, addressed by username.
func (h *Handler) Invite(w http.ResponseWriter, r *http.Request) {
	var req inviteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Username == "" {
		httputil.WriteError(w, http.StatusBadRequest, "username is required")
		return
	}

	invite, err := h.invites.Invite(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "cycleID"), req.Username)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, map[string]string{"invite_id": invite.ID})
}

// AcceptInvite accepts the caller's invite, creating their membership.
func (h *Handler) AcceptInvite(w http.ResponseWriter, r *http.Request) {
	membership, err := h.invites.Accept(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "inviteID"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]string{
		"membership_id": membership.ID,
		"cycle_id":      membership.CycleID,
	})
}

// DeclineInvite deletes the caller's invite.
func (h *Handler) DeclineInvite(w http.ResponseWriter, r *http.Request) {
	if err := h.invites.Decline(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "inviteID")); err != nil {
		writeServiceError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "declined"})
}

type notificationResponse struct {
	InviteID      string  `json:"invite_id"`
	CycleID       string  `json:"cycle_id"`
	CycleName     string  `json:"cycle_name"`
	HostUsername  string  `json:"host_username"`
	PaymentAmount float64 `json:"payment_amount"`
	FrequencyDays int     `json:"frequency_days"`
}

// Notifications lists the caller's pending invites.
func (h *Handler) Notifications(w http.ResponseWriter, r *http.Request) {
	notifications, err := h.invites.Notifications(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	out := make([]notificationResponse, len(notifications))
	for i, n := range notifications {
		out[i] = notificationResponse{
			InviteID:      n.Invite.ID,
			CycleID:       n.Invite.CycleID,
			CycleName:     n.CycleName,
			HostUsername:  n.HostUsername,
			PaymentAmount: n.PaymentAmount,
			FrequencyDays: n.FrequencyDays,
		}
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"invites": out})
}
