package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/desinetwork/classifieds/internal/application"
	"github.com/desinetwork/classifieds/internal/container"
	handlers "github.com/desinetwork/classifieds/internal/interface/http"
	"github.com/desinetwork/classifieds/internal/interface/middleware"
)

// AuthModule wires the auth routes.
// Public: register, login, verify-email, forgot-password, reset-password.
// Protected: me, resend-verification.
type AuthModule struct {
	Handler *handlers.AuthHandler
	Auth    *application.AuthService
}

func NewAuthModule(h *handlers.AuthHandler, auth *application.AuthService) *AuthModule {
	return &AuthModule{Handler: h, Auth: auth}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	rdb := container.GetRedis()
	// The OTP endpoints get the tightest budget: six digits brute-force in
	// a 15 minute window is the thing to price out.
	credsLimiter := middleware.RateLimit(rdb, 10, time.Minute, middleware.KeyByIPAndPath())
	otpLimiter := middleware.RateLimit(rdb, 6, time.Minute, middleware.KeyByIPAndPath())

	g := rg.Group("/auth")
	g.POST("/register", credsLimiter, m.Handler.Register)
	g.POST("/login", credsLimiter, m.Handler.Login)
	g.POST("/verify-email", otpLimiter, m.Handler.VerifyEmail)
	g.POST("/forgot-password", otpLimiter, m.Handler.ForgotPassword)
	g.POST("/reset-password", otpLimiter, m.Handler.ResetPassword)

	authed := g.Group("/")
	authed.Use(middleware.Auth(m.Auth))
	{
		authed.GET("/me", m.Handler.Me)
		authed.POST("/resend-verification", otpLimiter, m.Handler.ResendVerification)
	}
}
