package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/geocoder89/taskhub/internal/domain"
	"github.com/geocoder89/taskhub/internal/domain/task"
	"github.com/geocoder89/taskhub/internal/domain/user"
	"github.com/geocoder89/taskhub/internal/http/middlewares"
	"github.com/geocoder89/taskhub/internal/service"
	"github.com/gin-gonic/gin"
)

const (
	msgInvalidInput       = "Invalid input"
	msgInvalidCredentials = "Invalid credentials"
	msgNotFound           = "Not found"
	msgInternal           = "Internal server error"
)

// APIError is the body of every error response. Error carries the human
// message, the other fields are for programs and support.
type APIError struct {
	Error     string      `json:"error"`
	Code      string      `json:"code"`
	RequestID string      `json:"requestId,omitempty"`
	Details   interface{} `json:"details,omitempty"`
}

func requestIDFrom(ctx *gin.Context) string {
	if s := ctx.GetString(middlewares.CtxRequestID); s != "" {
		return s
	}

	// fallback header
	return ctx.GetHeader("X-Request-Id")
}

func RespondError(ctx *gin.Context, status int, code, message string, details interface{}) {
	ctx.JSON(status, APIError{
		Error:     message,
		Code:      code,
		RequestID: requestIDFrom(ctx),
		Details:   details,
	})
}

func RespondBadRequest(ctx *gin.Context, message string, details interface{}) {
	RespondError(ctx, http.StatusBadRequest, "invalid_request", message, details)
}

func RespondUnauthorized(ctx *gin.Context, code, message string) {
	RespondError(ctx, http.StatusUnauthorized, code, message, nil)
}

func RespondNotFound(ctx *gin.Context) {
	RespondError(ctx, http.StatusNotFound, "not_found", msgNotFound, nil)
}

func RespondConflict(ctx *gin.Context, code, message string) {
	RespondError(ctx, http.StatusConflict, code, message, nil)
}

// RespondInternal logs err with the request id and sends the generic message.
func RespondInternal(ctx *gin.Context, log *slog.Logger, err error) {
	if log == nil {
		log = slog.Default()
	}
	log.ErrorContext(ctx.Request.Context(), "request failed",
		"err", err,
		"route", ctx.FullPath(),
		"request_id", requestIDFrom(ctx),
	)
	RespondError(ctx, http.StatusInternalServerError, "internal_error", msgInternal, nil)
}

// respondServiceError maps service and domain errors onto status codes.
func respondServiceError(ctx *gin.Context, log *slog.Logger, err error) {
	var ve *domain.ValidationError

	switch {
	case errors.As(err, &ve):
		RespondBadRequest(ctx, msgInvalidInput, gin.H{"fields": ve.Fields})
	case errors.Is(err, service.ErrInvalidCredentials):
		RespondUnauthorized(ctx, "invalid_credentials", msgInvalidCredentials)
	case errors.Is(err, user.ErrEmailTaken):
		RespondConflict(ctx, "email_taken", "Email already registered")
	case errors.Is(err, user.ErrNotFound), errors.Is(err, task.ErrNotFound):
		RespondNotFound(ctx)
	default:
		RespondInternal(ctx, log, err)
	}
}

// currentUserID returns the identity bound by the auth gate. A missing id means
// the route was mounted without the gate.
func currentUserID(ctx *gin.Context) (string, bool) {
	id, ok := middlewares.UserIDFromContext(ctx)
	if !ok {
		RespondUnauthorized(ctx, "unauthorized", "Unauthorized")
		return "", false
	}
	return id, true
}
