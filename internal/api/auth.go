package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/Thaaan184/admin-dashboard-publicver/internal/audit"
	"github.com/Thaaan184/admin-dashboard-publicver/internal/auth"
)

// loginRequest is the request body for POST /auth/login.
type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// loginResponse is the response body for POST /auth/login.
type loginResponse struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	ExpiresIn   int          `json:"expires_in"`
	User        userResponse `json:"user"`
}

// userResponse is the public shape of a user in API responses.
type userResponse struct {
	ID       string    `json:"id"`
	Username string    `json:"username"`
	Name     string    `json:"name"`
	Role     string    `json:"role"`
	Activity time.Time `json:"activity"`
}

func toUserResponse(u *auth.User) userResponse {
	return userResponse{
		ID:       u.ID,
		Username: u.Username,
		Name:     u.Name,
		Role:     string(u.Role),
		Activity: u.Activity,
	}
}

// handleLogin authenticates a user against the user store and returns a JWT.
// Unknown usernames and wrong passwords both map to the same 401 response.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if req.Username == "" || req.Password == "" {
		writeBadRequest(w, "username and password are required")
		return
	}

	user, err := s.users.GetByUsername(r.Context(), req.Username)
	if err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			writeUnauthorized(w, "invalid credentials")
			return
		}
		s.logger.Error("failed to look up user", "error", err)
		writeInternalError(w, "login failed")
		return
	}

	ok, err := auth.VerifyPassword(req.Password, user.PasswordHash)
	if err != nil {
		s.logger.Error("password verification failed", "user_id", user.ID, "error", err)
		writeInternalError(w, "login failed")
		return
	}
	if !ok {
		writeUnauthorized(w, "invalid credentials")
		return
	}

	ttl := s.secCfg.JWT.AccessTokenTTL
	if ttl <= 0 {
		ttl = 60 //nolint:mnd // default one-hour TTL, matching token generation
	}

	token, err := auth.GenerateToken(user, s.secCfg.JWT.Secret, ttl)
	if err != nil {
		s.logger.Error("failed to generate token", "user_id", user.ID, "error", err)
		writeInternalError(w, "failed to generate token")
		return
	}

	if err := s.users.TouchActivity(r.Context(), user.ID); err != nil {
		s.logger.Warn("failed to update activity", "user_id", user.ID, "error", err)
	}

	s.auditLog(audit.ActionLogin, audit.EntityUser, user.ID, &Session{
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
	}, nil)

	writeJSON(w, http.StatusOK, loginResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   ttl * 60, // seconds
		User:        toUserResponse(user),
	})
}
