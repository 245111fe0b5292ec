package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/ahmetkoprulu/rtrp/arcade/internal/game"
	"github.com/ahmetkoprulu/rtrp/arcade/internal/services"
	"github.com/gin-gonic/gin"
)

// AppError represents a custom application error
type AppError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *AppError) Error() string {
	return e.Message
}

func NewAppError(code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

var ErrNotFound = NewAppError(http.StatusNotFound, "resource not found")

type ErrorResponse struct {
	Error string             `json:"error"`
	Kind  services.ErrorKind `json:"kind,omitempty"`
	State interface{}        `json:"state,omitempty"`
}

// ErrorMiddleware writes the last error a handler attached to the context.
// Handlers may stash the current game state under "state" to ship it along.
func ErrorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		state, _ := c.Get("state")
		c.JSON(StatusOf(err), ErrorResponse{
			Error: err.Error(),
			Kind:  services.KindOf(err),
			State: state,
		})
	}
}

// StatusOf maps an error to the HTTP status the host answers with.
func StatusOf(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}

	if errors.Is(err, game.ErrInvalidDirection) {
		return http.StatusBadRequest
	}
	if errors.Is(err, services.ErrBusy) || game.IsGameError(err) {
		return http.StatusConflict
	}

	switch services.KindOf(err) {
	case services.KindValidation:
		return http.StatusBadRequest
	case services.KindApprovalDenied:
		return http.StatusForbidden
	case services.KindPaymentDenied:
		return http.StatusPaymentRequired
	case services.KindAuthFailure:
		return http.StatusBadGateway
	case services.KindNetworkOrServer:
		if errors.Is(err, context.DeadlineExceeded) {
			return http.StatusGatewayTimeout
		}
		return http.StatusBadGateway
	}

	return http.StatusInternalServerError
}
