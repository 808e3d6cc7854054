package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Thaaan184/admin-dashboard-publicver/internal/audit"
	"github.com/Thaaan184/admin-dashboard-publicver/internal/auth"
)

// minPasswordLength applies to new accounts and password changes.
const minPasswordLength = 8

type createUserRequest struct {
	Username string    `json:"username"`
	Name     string    `json:"name"`
	Password string    `json:"password"`
	Role     auth.Role `json:"role"`
}

type updateUserRequest struct {
	Username *string    `json:"username,omitempty"`
	Name     *string    `json:"name,omitempty"`
	Password *string    `json:"password,omitempty"`
	Role     *auth.Role `json:"role,omitempty"`
}

type updateProfileRequest struct {
	Name     *string `json:"name,omitempty"`
	Password *string `json:"password,omitempty"`
}

// handleListUsers returns all user accounts.
func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.users.List(r.Context())
	if err != nil {
		s.logger.Error("list users failed", "error", err)
		writeInternalError(w, "failed to list users")
		return
	}

	out := make([]userResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResponse(u))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"users": out,
		"count": len(out),
	})
}

// handleGetUser returns a single user account by ID.
func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	user, err := s.users.GetByID(r.Context(), id)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toUserResponse(user))
}

// handleCreateUser creates a new user account.
func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	if req.Username == "" || req.Password == "" || req.Name == "" {
		writeBadRequest(w, "username, password, and name are required")
		return
	}
	if len(req.Password) < minPasswordLength {
		writeBadRequest(w, "password must be at least 8 characters")
		return
	}
	if req.Role == "" {
		req.Role = auth.RoleOperator
	}
	if !req.Role.Valid() {
		writeBadRequest(w, "invalid role: must be admin or operator")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		s.logger.Error("hash password failed", "error", err)
		writeInternalError(w, "failed to create user")
		return
	}

	user := &auth.User{
		Username:     req.Username,
		Name:         req.Name,
		PasswordHash: hash,
		Role:         req.Role,
	}

	if err := s.users.Create(r.Context(), user); err != nil {
		s.writeDomainError(w, err)
		return
	}

	sess := sessionFrom(r.Context())
	s.logger.Info("user created", "user_id", user.ID, "username", user.Username, "role", user.Role)
	s.auditLog(audit.ActionCreate, audit.EntityUser, user.ID, sess, map[string]any{
		"username": user.Username,
		"role":     user.Role,
	})

	writeJSON(w, http.StatusCreated, toUserResponse(user))
}

// handleUpdateUser modifies a user's mutable fields, including the password
// when one is supplied.
func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	sess := sessionFrom(r.Context())

	var req updateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	user, err := s.users.GetByID(r.Context(), id)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	// Self-protection: cannot demote yourself
	if req.Role != nil && sess != nil && id == sess.UserID && *req.Role != sess.Role {
		writeForbidden(w, "cannot change your own role")
		return
	}
	if req.Role != nil && !req.Role.Valid() {
		writeBadRequest(w, "invalid role: must be admin or operator")
		return
	}

	// Validate and hash the password before any write so a rejected
	// password leaves the account untouched.
	var newHash string
	if req.Password != nil && *req.Password != "" {
		if len(*req.Password) < minPasswordLength {
			writeBadRequest(w, "password must be at least 8 characters")
			return
		}
		hash, err := auth.HashPassword(*req.Password)
		if err != nil {
			s.logger.Error("hash password failed", "error", err)
			writeInternalError(w, "failed to update password")
			return
		}
		newHash = hash
	}

	if req.Username != nil {
		user.Username = *req.Username
	}
	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Role != nil {
		user.Role = *req.Role
	}

	if err := s.users.Update(r.Context(), user); err != nil {
		s.writeDomainError(w, err)
		return
	}

	if newHash != "" {
		if err := s.users.UpdatePassword(r.Context(), id, newHash); err != nil {
			s.writeDomainError(w, err)
			return
		}
	}

	s.logger.Info("user updated", "user_id", id)
	s.auditLog(audit.ActionUpdate, audit.EntityUser, id, sess, nil)

	writeJSON(w, http.StatusOK, toUserResponse(user))
}

// handleDeleteUser removes a single user account.
func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	sess := sessionFrom(r.Context())

	// Cannot delete yourself
	if sess != nil && id == sess.UserID {
		writeForbidden(w, "cannot delete your own account")
		return
	}

	user, err := s.users.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			writeNotFound(w, "user not found")
			return
		}
		s.logger.Error("get user for delete failed", "error", err)
		writeInternalError(w, "failed to delete user")
		return
	}

	if err := s.users.Delete(r.Context(), id); err != nil {
		s.writeDomainError(w, err)
		return
	}

	s.logger.Info("user deleted", "user_id", id)
	s.auditLog(audit.ActionDelete, audit.EntityUser, id, sess, map[string]any{
		"username": user.Username,
	})

	writeJSON(w, http.StatusOK, map[string]any{"deleted": 1})
}

// handleBulkDeleteUsers removes a batch of user accounts in one transaction.
// If any target holds the admin role the whole batch is rejected.
func (s *Server) handleBulkDeleteUsers(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IDs []string `json:"ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if len(req.IDs) == 0 {
		writeBadRequest(w, "ids is required")
		return
	}

	sess := sessionFrom(r.Context())
	for _, id := range req.IDs {
		if sess != nil && id == sess.UserID {
			writeForbidden(w, "cannot delete your own account")
			return
		}
	}

	// Resolve usernames before the delete so the audit trail names
	// the removed accounts, not just opaque IDs.
	var usernames []string
	if targets, err := s.users.ListByIDs(r.Context(), req.IDs); err != nil {
		s.logger.Warn("resolve users for bulk delete failed", "error", err)
	} else {
		for _, u := range targets {
			usernames = append(usernames, u.Username)
		}
	}

	deleted, err := s.users.DeleteMany(r.Context(), req.IDs)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	s.logger.Info("users bulk deleted", "count", deleted)
	s.auditLog(audit.ActionBulkDelete, audit.EntityUser, "", sess, map[string]any{
		"requested": len(req.IDs),
		"deleted":   deleted,
		"usernames": usernames,
	})

	writeJSON(w, http.StatusOK, map[string]any{"deleted": deleted})
}

// handleGetProfile returns the authenticated user's own account.
func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	if sess == nil {
		writeUnauthorized(w, "authentication required")
		return
	}

	user, err := s.users.GetByID(r.Context(), sess.UserID)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toUserResponse(user))
}

// handleUpdateProfile lets the authenticated user change their own name
// and password. Role and username are not self-serviceable.
func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	if sess == nil {
		writeUnauthorized(w, "authentication required")
		return
	}

	var req updateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	user, err := s.users.GetByID(r.Context(), sess.UserID)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	// Validate and hash the password before any write so a rejected
	// password leaves the account untouched.
	var newHash string
	if req.Password != nil && *req.Password != "" {
		if len(*req.Password) < minPasswordLength {
			writeBadRequest(w, "password must be at least 8 characters")
			return
		}
		hash, err := auth.HashPassword(*req.Password)
		if err != nil {
			s.logger.Error("hash password failed", "error", err)
			writeInternalError(w, "failed to update password")
			return
		}
		newHash = hash
	}

	if req.Name != nil && *req.Name != "" {
		user.Name = *req.Name
		if err := s.users.Update(r.Context(), user); err != nil {
			s.writeDomainError(w, err)
			return
		}
	}

	if newHash != "" {
		if err := s.users.UpdatePassword(r.Context(), user.ID, newHash); err != nil {
			s.writeDomainError(w, err)
			return
		}
	}

	s.auditLog(audit.ActionUpdate, audit.EntityUser, user.ID, sess, map[string]any{
		"profile": true,
	})

	writeJSON(w, http.StatusOK, toUserResponse(user))
}
