package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/promanhq/proman/internal/application"
	"github.com/promanhq/proman/pkg/llm"
	"github.com/promanhq/proman/pkg/response"
)

// respondErr maps domain errors onto HTTP statuses and writes the error
// envelope. Unknown errors become a 500 without leaking details.
func respondErr(c *gin.Context, err error) {
	var rl *application.ErrChatRateLimited
	if errors.As(err, &rl) {
		c.Header("Retry-After", strconv.Itoa(rl.RetryAfterSeconds))
		response.Error[any](c, http.StatusTooManyRequests, rl.Error(), gin.H{
			"retryAfterSeconds": rl.RetryAfterSeconds,
		})
		return
	}

	switch {
	case errors.Is(err, application.ErrEmailExists):
		response.Error[any](c, http.StatusConflict, err.Error(), nil)
	case errors.Is(err, application.ErrUserNotFound),
		errors.Is(err, application.ErrTaskNotFound),
		errors.Is(err, application.ErrConversationNotFound):
		response.Error[any](c, http.StatusNotFound, err.Error(), nil)
	case errors.Is(err, application.ErrAlreadyVerified),
		errors.Is(err, application.ErrInvalidOTP),
		errors.Is(err, application.ErrOTPExpired):
		response.Error[any](c, http.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, application.ErrInvalidCredentials),
		errors.Is(err, application.ErrNotVerified),
		errors.Is(err, application.ErrDeactivated):
		response.Error[any](c, http.StatusUnauthorized, err.Error(), nil)
	case errors.Is(err, application.ErrForbidden):
		response.Error[any](c, http.StatusForbidden, err.Error(), nil)
	case errors.Is(err, application.ErrEmailDelivery):
		response.Error[any](c, http.StatusServiceUnavailable, err.Error(), nil)
	case errors.Is(err, llm.ErrUnauthorized):
		response.Error[any](c, http.StatusServiceUnavailable, "invalid API key configuration", nil)
	case errors.Is(err, llm.ErrRateLimited):
		response.Error[any](c, http.StatusTooManyRequests, "chatbot API rate limit exceeded", nil)
	case errors.Is(err, llm.ErrTimeout):
		response.Error[any](c, http.StatusGatewayTimeout, "chatbot response timed out", nil)
	case errors.Is(err, llm.ErrUpstream):
		response.Error[any](c, http.StatusBadGateway, "failed to get response from chatbot", nil)
	default:
		response.Error[any](c, http.StatusInternalServerError, "internal error", nil)
	}
}
