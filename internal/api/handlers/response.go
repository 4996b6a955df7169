package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/isdelr/weight-tracker-be/internal/auth"
	"github.com/isdelr/weight-tracker-be/internal/models"
	"github.com/isdelr/weight-tracker-be/internal/services"
	"github.com/rs/zerolog/hlog"
)

// errorResponse is the body of every failed request.
type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}

// writeError maps service errors to status codes. Anything unrecognised is
// logged and answered with a generic 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, services.ErrUnauthorized):
		status = http.StatusUnauthorized
	case errors.Is(err, services.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, services.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, services.ErrConflict):
		status = http.StatusConflict
	}

	if status == http.StatusInternalServerError {
		hlog.FromRequest(r).Error().Err(err).Msg("Request failed")
		writeJSON(w, status, errorResponse{Error: "Internal server error"})
		return
	}

	message := http.StatusText(status)
	var svcErr *services.Error
	if errors.As(err, &svcErr) {
		message = svcErr.Error()
		if cause := svcErr.Cause(); cause != nil {
			hlog.FromRequest(r).Debug().Err(cause).Int("status", status).Msg(message)
		}
	}
	writeJSON(w, status, errorResponse{Error: message})
}

// decodeJSON reads the request body into dst, answering 400 on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		hlog.FromRequest(r).Debug().Err(err).Msg("Invalid request body")
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid request body"})
		return false
	}
	return true
}

// pathID parses a positive integer URL parameter. Anything else is answered
// with 404, since no record can have that id.
func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "Not found"})
		return 0, false
	}
	return id, true
}

// callerFrom returns the authenticated caller. Routes using it must sit
// behind auth.RequireAuthentication.
func callerFrom(w http.ResponseWriter, r *http.Request) (models.Caller, bool) {
	caller, ok := auth.CallerFrom(r.Context())
	if !ok {
		hlog.FromRequest(r).Error().Msg("Could not retrieve caller from context")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Internal server error"})
	}
	return caller, ok
}
