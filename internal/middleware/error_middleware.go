package middleware

import (
	"net/http"

	"ripple-chat/internal/auth"
	"ripple-chat/internal/transport/httpdto"
	"ripple-chat/pkg/logger"

	"github.com/gin-gonic/gin"
)

// ErrorHandler converts errors deferred onto the gin context into the uniform
// error envelope. Handlers that already wrote a response are left alone.
func ErrorHandler(l *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		if l != nil {
			l.Errorf("request error: %s", err.Error())
		}

		status := auth.HTTPStatus(err)
		code := "INTERNAL_ERROR"
		if status != http.StatusInternalServerError {
			code = "REQUEST_FAILED"
		}
		c.JSON(status, httpdto.NewErrorResponse(err.Error(), code))
	}
}
