package middleware

import (
	"log/slog"
	"net/http"

	"go-recruitment-platform/internal/delivery/http/response"
	"go-recruitment-platform/pkg/apperror"

	"github.com/gin-gonic/gin"
)

func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		appErr := apperror.As(err)
		if appErr.Code >= http.StatusInternalServerError {
			// Never expose internal error details to clients
			slog.ErrorContext(c.Request.Context(), "Request failed",
				"status", appErr.Code,
				"method", c.Request.Method,
				"path", c.FullPath(),
				"error", err,
			)
		}

		var details interface{}
		if appErr.Code < http.StatusInternalServerError {
			details = appErr.Message
		}
		response.Error(c, appErr.Code, appErr.Message, details)
	}
}
