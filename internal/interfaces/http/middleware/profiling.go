package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/restaurant/backend/internal/infrastructure/telemetry"
)

// Profiling labels each request's profile samples with its route pattern and
// method. Unmatched routes are left unlabeled.
func Profiling() gin.HandlerFunc {
	return func(c *gin.Context) {
		route := c.FullPath()
		if route == "" {
			c.Next()
			return
		}
		labels := map[string]string{
			telemetry.ProfilingLabelRoute:  route,
			telemetry.ProfilingLabelMethod: c.Request.Method,
		}
		telemetry.WithProfilingLabels(c.Request.Context(), labels, func(ctx context.Context) {
			c.Request = c.Request.WithContext(ctx)
			c.Next()
		})
	}
}
