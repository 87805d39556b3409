package middleware

import (
	"github.com/GoPolymarket/kylingate/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	HeaderRequestID  = "X-Request-ID"
	ContextRequestID = "request_id"
)

// RequestID assigns every request a uuid, reusing a well-formed inbound X-Request-ID.
// The id is echoed in the response and attached to the request context; audit records keep it as their correlation id.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		reqID := c.GetHeader(HeaderRequestID)
		if _, err := uuid.Parse(reqID); err != nil {
			reqID = uuid.New().String()
		}
		c.Header(HeaderRequestID, reqID)
		c.Set(ContextRequestID, reqID)
		c.Request = c.Request.WithContext(service.WithRequestID(c.Request.Context(), reqID))
		c.Next()
	}
}
