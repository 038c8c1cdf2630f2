package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/voyplan/voyplan-backend/internal/platform/ctxutil"
)

const requestIDHeader = "X-Request-ID"

// RequestTrace assigns every request an id, honoring one supplied by the
// caller, and records it with the active trace id in the request context.
// Runs before RequestLogger so the log line carries both.
func RequestTrace() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := strings.TrimSpace(c.GetHeader(requestIDHeader))
		if requestID == "" {
			requestID = uuid.NewString()
		}

		td := &ctxutil.TraceData{RequestID: requestID}
		if sc := trace.SpanContextFromContext(c.Request.Context()); sc.HasTraceID() {
			td.TraceID = sc.TraceID().String()
		}

		c.Request = c.Request.WithContext(ctxutil.WithTraceData(c.Request.Context(), td))
		c.Writer.Header().Set(requestIDHeader, requestID)
		c.Next()
	}
}
