package httpx

import (
	"github.com/gin-gonic/gin"
	"github.com/you/rakshasetu/internal/http/handlers"
	"github.com/you/rakshasetu/internal/http/middleware"
)

func BuildRouter(ah *handlers.AuthHandlers, jwtmw *middleware.AuthMW) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery(), middleware.ClientContext())

	r.GET("/health", func(c *gin.Context) { c.JSON(200, gin.H{"ok": true}) })

	auth := r.Group("/auth")
	auth.POST("/signup", ah.Signup)
	auth.POST("/login", ah.Login)
	auth.POST("/otp/issue", ah.IssueOTP)
	auth.POST("/otp/verify", ah.VerifyOTP)

	v := r.Group("/").Use(jwtmw.WithJWT())
	v.GET("/auth/me", ah.Me)
	v.GET("/protected", ah.Protected)

	return r
}
