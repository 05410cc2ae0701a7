package api

import (
	"net/http"
	"strings"
)

// Login handles POST /api/auth/login. The static admin pair is checked
// first and never reaches the identity delegate; delegate rejections are
// surfaced with the service's own message.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Email == "" || req.Password == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("email and password are required"))
		return
	}

	user, err := h.authn.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	token, err := h.sessions.Issue(user)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, LoginResponse{Token: token, User: user})
}

// Logout handles POST /api/auth/logout: the presented token is revoked
// until its natural expiry. Sign-out never fails.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		h.sessions.Revoke(strings.TrimPrefix(header, "Bearer "))
	}
	w.WriteHeader(http.StatusNoContent)
}

// Session handles GET /api/auth/session (observe current session).
func (h *Handler) Session(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorBody("unauthorized"))
		return
	}
	writeJSON(w, http.StatusOK, SessionResponse{User: user})
}
