package middleware

import (
	"errors"
	"net/http"
	"time"

	"github.com/farellandr/influencehub/internal/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const RequestIDHeader = "X-Request-Id"

// RequestLogger tags each request with a request id and logs its outcome.
func RequestLogger(logg *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header(RequestIDHeader, requestID)

		ctx := logg.WithRequestID(c.Request.Context(), requestID)
		ctx = logg.WithFields(ctx, map[string]any{
			"method": c.Request.Method,
			"path":   c.FullPath(),
		})
		c.Request = c.Request.WithContext(ctx)
		logg.Info(ctx, "request.start")

		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		ctx = logg.WithFields(c.Request.Context(), map[string]any{
			"status":      status,
			"duration_ms": time.Since(start).Milliseconds(),
		})
		if caller, ok := CallerFromContext(c); ok {
			ctx = logg.WithUserID(ctx, caller.ID.String())
		}

		if status >= http.StatusInternalServerError {
			err := c.Errors.Last()
			if err != nil {
				logg.Error(ctx, "request.complete", err.Err)
			} else {
				logg.Error(ctx, "request.complete", errors.New(http.StatusText(status)))
			}
			return
		}
		logg.Info(ctx, "request.complete")
	}
}
