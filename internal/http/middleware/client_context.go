package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/you/rakshasetu/domain"
)

// ClientContext attaches the caller's IP and user agent to the request context
// so audit events can carry them.
func ClientContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		cc := &domain.ClientContext{
			IPAddress: c.ClientIP(),
			UserAgent: c.Request.UserAgent(),
		}
		c.Request = c.Request.WithContext(domain.WithClientContext(c.Request.Context(), cc))
		c.Next()
	}
}
