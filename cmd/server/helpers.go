package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/Simplici0/propostas-ti/internal/domain"
	"github.com/Simplici0/propostas-ti/internal/printer"
)

const maxBodyBytes = 1 << 20

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// decodeJSON reads the request body into dst. Unknown fields are rejected
// and an empty body leaves dst untouched.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return &domain.ErrValidation{Field: "body", Message: fmt.Sprintf("invalid JSON: %v", err)}
	}
	return nil
}

type field struct {
	name  string
	value float64
}

// nonNegative rejects the first negative amount or rate.
func nonNegative(fields ...field) error {
	for _, f := range fields {
		if f.value < 0 {
			return &domain.ErrValidation{Field: f.name, Message: "must be zero or positive"}
		}
	}
	return nil
}

// handleServiceError maps domain errors to HTTP responses.
func handleServiceError(w http.ResponseWriter, err error, logger *zap.Logger) {
	var notFound *domain.ErrNotFound
	var validation *domain.ErrValidation
	var notReady *domain.ErrConfigNotReady
	var transition *domain.ErrInvalidTransition
	var conflict *domain.ErrConflict
	var undefined *printer.UndefinedRateError

	switch {
	case errors.As(err, &notReady):
		logger.Warn("configuration not ready", zap.Strings("missing", notReady.Missing))
		writeError(w, http.StatusServiceUnavailable, domain.ConfigNotReadyMessage)
	case errors.As(err, &notFound):
		logger.Debug("not found", zap.String("error", err.Error()))
		writeError(w, http.StatusNotFound, err.Error())
	case errors.As(err, &validation):
		logger.Debug("validation error", zap.String("error", err.Error()))
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &transition):
		logger.Debug("invalid transition", zap.String("from", transition.From), zap.String("to", transition.To))
		writeError(w, http.StatusConflict, err.Error())
	case errors.As(err, &conflict):
		logger.Debug("conflict", zap.String("error", err.Error()))
		writeError(w, http.StatusConflict, err.Error())
	case errors.As(err, &undefined):
		logger.Debug("undefined rate", zap.String("component", undefined.Component))
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		logger.Error("unhandled error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
