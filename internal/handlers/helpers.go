package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/benvon/smart-journal/internal/database"
	"github.com/benvon/smart-journal/internal/ledger"
	logpkg "github.com/benvon/smart-journal/internal/logger"
	"github.com/benvon/smart-journal/internal/recurrence"
	"github.com/benvon/smart-journal/internal/request"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// maxClientMessageLength bounds error messages echoed to clients
const maxClientMessageLength = 200

// msgInvalidRule is the client message for malformed recurrence rules
const msgInvalidRule = "recurrence rule format invalid"

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	response := map[string]any{
		"success":   true,
		"data":      data,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// sanitizeErrorMessage strips control characters and truncates messages sent to clients
func sanitizeErrorMessage(message string) string {
	return logpkg.SanitizeString(message, maxClientMessageLength)
}

// respondJSONError sends an error JSON response with a sanitized message
func respondJSONError(w http.ResponseWriter, status int, errorType, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	response := map[string]any{
		"success":   false,
		"error":     errorType,
		"message":   sanitizeErrorMessage(message),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// respondError maps engine and repository errors to HTTP responses.
// Unexpected errors are logged and reported without detail.
func respondError(w http.ResponseWriter, r *http.Request, logger *zap.Logger, err error, fallback string) {
	var validationErrs validator.ValidationErrors
	switch {
	case errors.Is(err, recurrence.ErrInvalidRuleFormat):
		respondJSONError(w, http.StatusBadRequest, "Bad Request", msgInvalidRule)
	case errors.Is(err, request.ErrInvalidWindow),
		errors.Is(err, ledger.ErrInvalidSummaryType),
		errors.Is(err, ledger.ErrInvalidFrequency),
		errors.As(err, &validationErrs):
		respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
	case errors.Is(err, database.ErrNotFound):
		respondJSONError(w, http.StatusNotFound, "Not Found", "Template not found")
	default:
		logger.Error("request_failed",
			zap.String("path", logpkg.SanitizePath(r.URL.Path)),
			zap.String("error", logpkg.SanitizeError(err)),
		)
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", fallback)
	}
}
