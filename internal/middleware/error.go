package middleware

import (
	"github.com/GoPolymarket/kylingate/internal/pkg/apperrors"
	"github.com/GoPolymarket/kylingate/internal/pkg/logger"
	"github.com/gin-gonic/gin"
)

// ErrorHandler renders the last error pushed with c.Error as an AppError body.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		appErr := apperrors.Wrap(c.Errors.Last().Err)

		logFields := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"code", appErr.Type,
			"client_ip", c.ClientIP(),
			"request_id", c.GetString(ContextRequestID),
		}

		if appErr.HTTPStatus >= 500 {
			logger.LogError(c.Request.Context(), appErr, "request failed", logFields...)
		} else {
			logger.Warn(appErr.Message, logFields...)
		}

		c.JSON(appErr.HTTPStatus, appErr)
	}
}
