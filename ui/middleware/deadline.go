package middleware

import (
	"context"
	"time"

	"tablesense/internal"

	"github.com/gin-gonic/gin"
)

var logger = internal.DefaultLogger.WithPrefix("Deadline")

// Deadline bounds every request's context so long table scans are cancelled
// cooperatively. A non-positive d disables it.
func Deadline(d time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if d <= 0 {
			c.Next()
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), d)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		if ctx.Err() == context.DeadlineExceeded {
			logger.Warn("%s %s exceeded %s", c.Request.Method, c.Request.URL.Path, d)
		}
	}
}
