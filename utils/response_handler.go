package utils

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"opsdesk/schemas"
)

func SendResponse(w http.ResponseWriter, statusCode int, message string, data any, internalErrorCode int) {
	if internalErrorCode != 0 {
		writeJSON(w, statusCode, schemas.ApiResponse{
			Message: SendInternalError(internalErrorCode),
		})
		return
	}

	if (message == "") && (data == nil) {
		w.WriteHeader(statusCode)
		return
	}

	writeJSON(w, statusCode, schemas.ApiResponse{
		Data:    data,
		Message: message,
	})
}

// SendError writes err as a JSON error body. AppErrors keep their message and
// status; anything else becomes a generic 500. Internal failures are logged.
func SendError(w http.ResponseWriter, logger *slog.Logger, err error) {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		appErr = NewInternalError(0, err)
	}

	if appErr.Kind == KindInternal && logger != nil {
		logger.Error("request failed", "error", err, "code", appErr.Code)
	}

	writeJSON(w, appErr.Kind.Status(), schemas.ApiResponse{Message: appErr.Message})
}

func writeJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(body)
}
