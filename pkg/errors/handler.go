package errors

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"
)

// ErrorHandler translates application errors into HTTP responses
type ErrorHandler struct {
	logger *zap.Logger
}

// NewErrorHandler creates a new error handler
func NewErrorHandler(logger *zap.Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// errorResponse is the JSON body written for failed requests
type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Handle writes an error response with a status code derived from the error type
func (h *ErrorHandler) Handle(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	errType := ErrorTypeInternal
	message := "Internal server error"

	var appErr *AppError
	if errors.As(err, &appErr) {
		errType = appErr.Type
		message = appErr.Message
		switch appErr.Type {
		case ErrorTypeValidation:
			status = http.StatusBadRequest
		case ErrorTypeNotFound:
			status = http.StatusNotFound
		case ErrorTypeUpstream:
			status = http.StatusBadGateway
		}
	}

	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if encodeErr := json.NewEncoder(w).Encode(errorResponse{
		Error:   string(errType),
		Message: message,
	}); encodeErr != nil {
		h.logger.Error("failed to encode error response", zap.Error(encodeErr))
	}
}
