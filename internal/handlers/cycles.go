package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/seetoh/bagelfunds/internal/httputil"
	"github.com/seetoh/bagelfunds/internal/middleware"
	"github.com/seetoh/bagelfunds/internal/models"
)

type createCycleRequest struct {
	Name          string  `json:"name"`
	FrequencyDays int     `json:"frequency_days"`
	PaymentAmount float64 `json:"payment_amount"`
}

type cycleResponse struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	HostID        string  `json:"host_id"`
	FrequencyDays int     `json:"frequency_days"`
	PaymentAmount float64 `json:"payment_amount"`
	StartDate     int64   `json:"start_date,omitempty"`
	HasStarted    bool    `json:"has_started"`
	HasEnded      bool    `json:"has_ended"`
}

func toCycleResponse(c *models.Cycle) cycleResponse {
	return cycleResponse{
		ID:            c.ID,
		Name:          c.Name,
		HostID:        c.HostID,
		FrequencyDays: c.FrequencyDays,
		PaymentAmount: c.PaymentAmount,
		StartDate:     c.StartDate,
		HasStarted:    c.HasStarted,
		HasEnded:      c.HasEnded,
	}
}

// Landing serves the root route: a service banner for anonymous callers, the
// caller's dashboard (profile plus cycles) when signed in.
func (h *Handler) Landing(w http.ResponseWriter, r *http.Request) {
	userID := h.optionalUserID(r)
	if userID == "" {
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"service": "bagelfunds"})
		return
	}

	dashboard, err := h.cycles.Dashboard(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	cycles := make([]cycleResponse, len(dashboard.Cycles))
	for i, c := range dashboard.Cycles {
		cycles[i] = toCycleResponse(c)
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"user":   toUserResponse(dashboard.User),
		"cycles": cycles,
	})
}

// CreateCycle creates a cycle hosted by the caller.
func (h *Handler) CreateCycle(w http.ResponseWriter, r *http.Request) {
	var req createCycleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	cycle, err := h.cycles.Create(r.Context(), middleware.GetUserID(r.Context()), req.Name, req.FrequencyDays, req.PaymentAmount)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, toCycleResponse(cycle))
}

type memberResponse struct {
	MembershipID string `json:"membership_id"`
	UserID       string `json:"user_id"`
	Username     string `json:"username"`
	HasReceived  bool   `json:"has_received"`
}

type paymentResponse struct {
	ID           string `json:"id"`
	MembershipID string `json:"membership_id"`
	HasPaid      bool   `json:"has_paid"`
}

type sessionResponse struct {
	ID       string            `json:"id"`
	DueDate  int64             `json:"due_date"`
	WinnerID string            `json:"winner_id,omitempty"`
	Settled  bool              `json:"settled"`
	Payments []paymentResponse `json:"payments"`
}

// Overview serves the member-facing view of one cycle.
func (h *Handler) Overview(w http.ResponseWriter, r *http.Request) {
	overview, err := h.cycles.Overview(r.Context(), chi.URLParam(r, "cycleID"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	members := make([]memberResponse, len(overview.Members))
	for i, m := range overview.Members {
		members[i] = memberResponse{
			MembershipID: m.Membership.ID,
			UserID:       m.Membership.UserID,
			Username:     m.Username,
			HasReceived:  m.Membership.HasReceived,
		}
	}

	sessions := make([]sessionResponse, len(overview.Sessions))
	for i, detail := range overview.Sessions {
		payments := make([]paymentResponse, len(detail.Payments))
		for j, p := range detail.Payments {
			payments[j] = paymentResponse{ID: p.ID, MembershipID: p.MembershipID, HasPaid: p.HasPaid}
		}
		sessions[i] = sessionResponse{
			ID:       detail.Session.ID,
			DueDate:  detail.Session.DueDate,
			WinnerID: detail.Session.WinnerID,
			Settled:  detail.Session.Settled,
			Payments: payments,
		}
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"cycle":    toCycleResponse(overview.Cycle),
		"members":  members,
		"sessions": sessions,
	})
}

// StartCycle starts the cycle, creating its sessions and payments.
func (h *Handler) StartCycle(w http.ResponseWriter, r *http.Request) {
	cycleID := chi.URLParam(r, "cycleID")
	if err := h.cycles.Start(r.Context(), middleware.GetUserID(r.Context()), cycleID); err != nil {
		writeServiceError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "started"})
}

// CancelCycle deletes the cycle and everything hanging off it.
func (h *Handler) CancelCycle(w http.ResponseWriter, r *http.Request) {
	cycleID := chi.URLParam(r, "cycleID")
	if err := h.cycles.Cancel(r.Context(), middleware.GetUserID(r.Context()), cycleID); err != nil {
		writeServiceError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "cancelled"})
}

// optionalUserID returns the caller's user id when a valid session token is
// present, or empty. Used by routes that serve both signed-in and anonymous
// callers. Reads the token the same way RequireAuth does, so cookie and
// Bearer sessions agree.
func (h *Handler) optionalUserID(r *http.Request) string {
	token := middleware.TokenFromRequest(r)
	if token == "" {
		return ""
	}
	claims, err := h.jwt.Validate(token)
	if err != nil {
		return ""
	}
	return claims.UserID
}
