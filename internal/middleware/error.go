package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	apperrors "github.com/jwalitptl/patient-registry/pkg/errors"
	"github.com/jwalitptl/patient-registry/pkg/httputil"
)

// ErrorHandler logs the errors a request collected and renders the last one
// as the response envelope unless a response was already written.
// exposeInternal reveals the cause of 500s and is meant for development.
func ErrorHandler(exposeInternal bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		lastErr := c.Errors.Last().Err
		status := http.StatusInternalServerError
		if appErr, ok := apperrors.As(lastErr); ok {
			status = appErr.StatusCode()
		}

		logger := zerolog.Ctx(c.Request.Context())
		event := logger.Warn()
		if status >= http.StatusInternalServerError {
			event = logger.Error()
		}
		event.Err(lastErr).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Msg("request error")

		if c.Writer.Written() {
			return
		}
		httputil.RespondWithError(c, lastErr, exposeInternal)
	}
}
