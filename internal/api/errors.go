package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Thaaan184/admin-dashboard-publicver/internal/asset"
	"github.com/Thaaan184/admin-dashboard-publicver/internal/auth"
	"github.com/Thaaan184/admin-dashboard-publicver/internal/device"
	"github.com/Thaaan184/admin-dashboard-publicver/internal/infrastructure/storage"
)

// Error represents a structured error response.
type Error struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Common error codes.
const (
	ErrCodeBadRequest   = "bad_request"
	ErrCodeNotFound     = "not_found"
	ErrCodeUnauthorized = "unauthorised"
	ErrCodeForbidden    = "forbidden"
	ErrCodeConflict     = "conflict"
	ErrCodeInternal     = "internal_error"
)

// writeJSON writes a JSON response with the given status code and payload.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		//nolint:errcheck // Best-effort write; connection may be closed
		json.NewEncoder(w).Encode(v)
	}
}

// writeError writes a structured error response.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, Error{
		Status:  status,
		Code:    code,
		Message: message,
	})
}

func writeBadRequest(w http.ResponseWriter, message string) {
	writeError(w, http.StatusBadRequest, ErrCodeBadRequest, message)
}

func writeNotFound(w http.ResponseWriter, message string) {
	writeError(w, http.StatusNotFound, ErrCodeNotFound, message)
}

func writeUnauthorized(w http.ResponseWriter, message string) {
	writeError(w, http.StatusUnauthorized, ErrCodeUnauthorized, message)
}

func writeForbidden(w http.ResponseWriter, message string) {
	writeError(w, http.StatusForbidden, ErrCodeForbidden, message)
}

func writeInternalError(w http.ResponseWriter, message string) {
	writeError(w, http.StatusInternalServerError, ErrCodeInternal, message)
}

// writeDomainError maps sentinel errors from the domain layers onto
// HTTP responses. Unknown errors become a generic 500; the underlying
// cause is logged by the caller, never sent to the client.
func (s *Server) writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, device.ErrMissingFields),
		errors.Is(err, device.ErrInvalidRack),
		errors.Is(err, device.ErrInvalidSlot),
		errors.Is(err, auth.ErrMissingFields),
		errors.Is(err, auth.ErrInvalidRole),
		errors.Is(err, asset.ErrInvalidExtension),
		errors.Is(err, asset.ErrTooLarge):
		writeBadRequest(w, err.Error())

	case errors.Is(err, device.ErrRackFull),
		errors.Is(err, device.ErrSlotOccupied),
		errors.Is(err, asset.ErrNameTaken),
		errors.Is(err, auth.ErrUsernameTaken):
		writeError(w, http.StatusBadRequest, ErrCodeConflict, err.Error())

	case errors.Is(err, device.ErrDeviceNotFound),
		errors.Is(err, auth.ErrUserNotFound),
		errors.Is(err, asset.ErrAssetNotFound),
		errors.Is(err, storage.ErrObjectNotFound):
		writeNotFound(w, err.Error())

	case errors.Is(err, auth.ErrAdminProtected):
		writeForbidden(w, err.Error())

	case errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrTokenInvalid):
		writeUnauthorized(w, "invalid credentials")

	default:
		s.logger.Error("unhandled error in request", "error", err)
		writeInternalError(w, "internal server error")
	}
}
