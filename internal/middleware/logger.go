package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/BruksfildServices01/salon-booking/internal/logging"
)

const HeaderRequestID = "X-Request-ID"

// RequestLogger tags each request with an id, stores a request-scoped
// entry in the context and logs one line when the request completes.
func RequestLogger(base *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(HeaderRequestID)
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Header(HeaderRequestID, rid)

		entry := base.WithFields(logrus.Fields{
			"request_id": rid,
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"remote_ip":  c.ClientIP(),
		})
		c.Request = c.Request.WithContext(logging.IntoContext(c.Request.Context(), entry))

		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		fields := logrus.Fields{
			"status":      status,
			"duration_ms": time.Since(start).Milliseconds(),
		}
		if uid, ok := UserID(c); ok {
			fields["user_id"] = uid
		}
		done := entry.WithFields(fields)

		switch {
		case status >= 500:
			done.WithField("errors", c.Errors.String()).Error("request completed")
		case status >= 400:
			done.Warn("request completed")
		default:
			done.Info("request completed")
		}
	}
}
