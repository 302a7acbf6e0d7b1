package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/interviewhub/interviewhub-api/internal/interface/http"
	"github.com/interviewhub/interviewhub-api/internal/interface/middleware"
	"github.com/interviewhub/interviewhub-api/pkg/helpers"
)

type AccountModule struct {
	Handler *handlers.AccountHandler
	Codec   *helpers.TokenCodec
	Cookies *helpers.Manager
}

func NewAccountModule(h *handlers.AccountHandler, codec *helpers.TokenCodec, cookies *helpers.Manager) *AccountModule {
	return &AccountModule{Handler: h, Codec: codec, Cookies: cookies}
}

func (m *AccountModule) Register(rg *gin.RouterGroup) {
	// Any authenticated account
	user := rg.Group("/")
	user.Use(middleware.RequireUser(m.Codec))
	{
		user.GET("/profile", m.Handler.Profile)
	}

	// Admin-gated
	admin := rg.Group("/")
	admin.Use(middleware.RequireAdmin(m.Codec, m.Cookies))
	{
		admin.DELETE("/account", m.Handler.Delete)
		admin.GET("/accounts/search", m.Handler.SearchAccounts)
	}
}
