package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/interviewhub/interviewhub-api/internal/interface/http"
)

type AuthModule struct {
	Handler *handlers.AuthHandler
}

func NewAuthModule(h *handlers.AuthHandler) *AuthModule {
	return &AuthModule{Handler: h}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	rg.POST("/login", m.Handler.Login)
	rg.POST("/register", m.Handler.Register)
	rg.POST("/forgot-password", m.Handler.ForgotPassword)
	rg.POST("/reset-password/:token", m.Handler.ResetPassword)
	rg.GET("/verify-email/:token", m.Handler.VerifyEmail)
	rg.POST("/logout", m.Handler.Logout)
	rg.GET("/session-status", m.Handler.SessionStatus)
}
