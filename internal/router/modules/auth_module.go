package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/promanhq/proman/internal/container"
	handlers "github.com/promanhq/proman/internal/interface/http"
	"github.com/promanhq/proman/internal/interface/middleware"
)

// AuthModule wires the account endpoints under /api/user.
// Public: POST /api/user/register, /verify-otp, /resend-otp, /login
// Protected: POST /api/user/logout
type AuthModule struct {
	Handler *handlers.AuthHandler
}

func NewAuthModule(h *handlers.AuthHandler) *AuthModule {
	return &AuthModule{Handler: h}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	// Per-IP abuse limits on the endpoints that send email or take guesses.
	registerLimiter := middleware.RateLimit(container.GetRedis(), 10, time.Minute, middleware.KeyByIP(), middleware.AllowPrivateIP())
	otpLimiter := middleware.RateLimit(container.GetRedis(), 30, time.Minute, middleware.KeyByIPAndPath(), middleware.AllowPrivateIP())
	loginLimiter := middleware.RateLimit(container.GetRedis(), 20, time.Minute, middleware.KeyByIP(), middleware.AllowPrivateIP())

	g := rg.Group("/user")
	g.POST("/register", registerLimiter, m.Handler.Register)
	g.POST("/verify-otp", otpLimiter, m.Handler.VerifyOTP)
	g.POST("/resend-otp", otpLimiter, m.Handler.ResendOTP)
	g.POST("/login", loginLimiter, m.Handler.Login)

	auth := g.Group("/")
	auth.Use(middleware.Auth(container.GetJWT(), container.GetUserRepo()))
	auth.POST("/logout", m.Handler.Logout)
}
