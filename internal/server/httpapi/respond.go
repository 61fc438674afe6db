package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/accordai/gateway/internal/common"
)

type errResp struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps service errors onto HTTP statuses. Anything unrecognized is
// a 500 with no detail leaked to the client.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, common.ErrValidation):
		writeJSON(w, http.StatusBadRequest, errResp{Error: "validation_error"})
	case errors.Is(err, common.ErrorUnauthorized),
		errors.Is(err, common.ErrTokenExpired),
		errors.Is(err, common.ErrInvalidTokenSignature),
		errors.Is(err, common.ErrTokenMalformed):
		writeJSON(w, http.StatusUnauthorized, errResp{Error: "invalid_credentials"})
	case errors.Is(err, common.ErrUserInactive):
		writeJSON(w, http.StatusForbidden, errResp{Error: "user_inactive"})
	case errors.Is(err, common.ErrorNotFound):
		writeJSON(w, http.StatusNotFound, errResp{Error: "not_found"})
	case errors.Is(err, common.ErrJobNotCancellable):
		writeJSON(w, http.StatusConflict, errResp{Error: "job_not_cancellable"})
	case errors.Is(err, common.ErrorAlreadyExists):
		writeJSON(w, http.StatusConflict, errResp{Error: "already_exists"})
	case errors.Is(err, common.ErrFileTooLarge):
		writeJSON(w, http.StatusRequestEntityTooLarge, errResp{Error: "file_too_large"})
	case errors.Is(err, common.ErrUpstreamUnavailable):
		writeJSON(w, http.StatusBadGateway, errResp{Error: "upstream_unavailable"})
	default:
		writeJSON(w, http.StatusInternalServerError, errResp{Error: "internal_error"})
	}
}
