package handler

import (
	"encoding/json"
	"net/http"

	"github.com/damon-houk/lkr-exchange-tools/internal/infrastructure/logger"
)

func writeJSON(w http.ResponseWriter, log logger.Logger, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error("Failed to encode response", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

// sendErrorResponse sends a standardized error response
func sendErrorResponse(w http.ResponseWriter, log logger.Logger, message, kind string, statusCode int, requestID string) {
	log.Debug("Sending error response", map[string]interface{}{
		"request_id":  requestID,
		"status_code": statusCode,
		"message":     message,
	})

	writeJSON(w, log, statusCode, ErrorResponse{
		Error:       http.StatusText(statusCode),
		Kind:        kind,
		Status:      statusCode,
		Description: message,
		RequestID:   requestID,
	})
}
