package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/seetoh/bagelfunds/internal/auth"
	"github.com/seetoh/bagelfunds/internal/httputil"
	"github.com/seetoh/bagelfunds/internal/middleware"
	"github.com/seetoh/bagelfunds/internal/models"
)

type signupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type userResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	ImageURL string `json:"image_url,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Twitter  string `json:"twitter,omitempty"`
}

func toUserResponse(u *models.User) userResponse {
	return userResponse{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		ImageURL: u.ImageURL,
		Phone:    u.Phone,
		Twitter:  u.Twitter,
	}
}

// Signup registers a new account.
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Username == "" || req.Email == "" {
		httputil.WriteError(w, http.StatusBadRequest, "username and email are required")
		return
	}

	user, err := h.authn.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrUsernameTaken), errors.Is(err, auth.ErrEmailExists):
			httputil.WriteError(w, http.StatusConflict, err.Error())
		case errors.Is(err, auth.ErrWeakPassword):
			httputil.WriteError(w, http.StatusBadRequest, err.Error())
		default:
			slog.Error("signup failed", "username", req.Username, "error", err)
			httputil.WriteError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, toUserResponse(user))
}

// Login authenticates by username and sets the session cookie.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Username == "" || req.Password == "" {
		httputil.WriteError(w, http.StatusBadRequest, "username and password are required")
		return
	}

	user, err := h.authn.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		httputil.WriteError(w, http.StatusUnauthorized, auth.ErrInvalidCredentials.Error())
		return
	}

	token, err := h.jwt.Generate(user)
	if err != nil {
		slog.Error("failed to generate session token", "user_id", user.ID, "error", err)
		httputil.WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}

	h.setSessionCookie(w, token, h.sessionTTL)
	httputil.WriteJSON(w, http.StatusOK, toUserResponse(user))
}

// Logout clears the session cookie. With stateless tokens there is nothing
// to invalidate server-side.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	h.setSessionCookie(w, "", -time.Hour)
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}

// Profile returns the caller's own profile.
func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	user, err := h.store.GetUserByID(r.Context(), userID)
	if err != nil {
		slog.Error("failed to load profile", "user_id", userID, "error", err)
		httputil.WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if user == nil {
		httputil.WriteError(w, http.StatusNotFound, "user not found")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, toUserResponse(user))
}

type updateProfileRequest struct {
	Phone   string `json:"phone"`
	Twitter string `json:"twitter"`
}

// UpdateProfile edits the caller's phone and twitter handle. A path id that
// is not the caller's own is treated as a forged request and invalidates the
// session.
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if chi.URLParam(r, "id") != userID {
		h.setSessionCookie(w, "", -time.Hour)
		httputil.WriteError(w, http.StatusUnauthorized, "session mismatch")
		return
	}

	var req updateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.store.UpdateUserProfile(r.Context(), userID, req.Phone, req.Twitter); err != nil {
		slog.Error("failed to update profile", "user_id", userID, "error", err)
		httputil.WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}

	user, err := h.store.GetUserByID(r.Context(), userID)
	if err != nil || user == nil {
		httputil.WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, toUserResponse(user))
}

func (h *Handler) setSessionCookie(w http.ResponseWriter, token string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(ttl),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
