package middleware

import (
	"time"

	"ripple-chat/pkg/logger"

	"github.com/gin-gonic/gin"
)

func LoggingMiddleware(l *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		log := l
		if log == nil {
			log = logger.GetGlobalLogger()
		}
		if log == nil {
			return
		}

		requestID, _ := c.Request.Context().Value(logger.RequestIdKey).(string)
		if userID := UserID(c); userID != "" {
			log.Infof("%s %s %d %s rid=%s uid=%s", method, path, status, latency.String(), requestID, userID)
			return
		}
		log.Infof("%s %s %d %s rid=%s", method, path, status, latency.String(), requestID)
	}
}
