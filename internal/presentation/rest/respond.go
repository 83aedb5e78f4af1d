package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/greystone/lending-api/internal/application/dto"
	"github.com/greystone/lending-api/internal/domain/model"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Detail string `json:"detail"`
	Field  string `json:"field,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v) //nolint:errcheck
}

// writeError maps domain errors onto HTTP statuses. Unexpected errors are
// logged and reported with a generic detail.
func writeError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	var invalid *model.InvalidInputError
	switch {
	case errors.As(err, &invalid):
		writeJSON(w, http.StatusUnprocessableEntity, errorBody{Detail: invalid.Error(), Field: invalid.Field})
	case errors.Is(err, model.ErrUserNotFound):
		writeJSON(w, http.StatusNotFound, errorBody{Detail: "User not found"})
	case errors.Is(err, model.ErrLoanNotFound):
		writeJSON(w, http.StatusNotFound, errorBody{Detail: "Loan not found"})
	case errors.Is(err, model.ErrEmailAlreadyRegistered):
		writeJSON(w, http.StatusBadRequest, errorBody{Detail: "Email already registered"})
	default:
		logger.ErrorContext(r.Context(), "request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
		writeJSON(w, http.StatusInternalServerError, errorBody{Detail: "Internal server error"})
	}
}

// decodeJSON reads a single JSON object, rejecting unknown fields and
// trailing data.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return &model.InvalidInputError{Field: "body", Reason: err.Error()}
	}
	if dec.More() {
		return &model.InvalidInputError{Field: "body", Reason: "must contain a single JSON object"}
	}
	return nil
}

func pathID(r *http.Request, name, field string) (uuid.UUID, error) {
	id, err := uuid.Parse(mux.Vars(r)[name])
	if err != nil {
		return uuid.Nil, &model.InvalidInputError{Field: field, Reason: "must be a valid UUID"}
	}
	return id, nil
}

func listRequest(r *http.Request) (dto.ListRequest, error) {
	var req dto.ListRequest
	q := r.URL.Query()
	for _, p := range []struct {
		name string
		dst  *int
	}{{"skip", &req.Skip}, {"limit", &req.Limit}} {
		raw := q.Get(p.name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return dto.ListRequest{}, &model.InvalidInputError{Field: p.name, Reason: fmt.Sprintf("must be an integer, got %q", raw)}
		}
		*p.dst = n
	}
	if q.Get("limit") != "" && req.Limit == 0 {
		return dto.ListRequest{}, &model.InvalidInputError{Field: "limit", Reason: "must be between 1 and 1000"}
	}
	return req, nil
}
