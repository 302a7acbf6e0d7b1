package router

import (
	"github.com/interviewhub/interviewhub-api/internal/application"
	"github.com/interviewhub/interviewhub-api/internal/container"
	"github.com/interviewhub/interviewhub-api/internal/infrastructure/notification"
	pginfra "github.com/interviewhub/interviewhub-api/internal/infrastructure/postgres"
	handlers "github.com/interviewhub/interviewhub-api/internal/interface/http"
	"github.com/interviewhub/interviewhub-api/internal/router/modules"
	"github.com/interviewhub/interviewhub-api/pkg/helpers"
)

type AuthModuleDeps struct {
	Service        *application.AuthService
	Search         *application.SearchService
	AuthHandler    *handlers.AuthHandler
	AccountHandler *handlers.AccountHandler
}

func buildAuthDeps() AuthModuleDeps {
	cfg := container.GetConfig()
	logger := container.GetLogger()

	repo := pginfra.NewAccountRepository(container.GetPGPool())
	search := application.NewSearchService(container.GetES(), cfg.ESAccountsIndex, logger)
	notifier := notification.NewRabbitNotifier(container.GetRabbitPub(), cfg, logger)

	service := application.NewAuthService(
		repo,
		container.GetTokenCodec(),
		container.GetHasher(),
		notifier,
		search,
		logger,
	)

	return AuthModuleDeps{
		Service:        service,
		Search:         search,
		AuthHandler:    handlers.NewAuthHandler(service, cfg, logger),
		AccountHandler: handlers.NewAccountHandler(service, search, logger),
	}
}

// InitModules initializes all application modules and registers them with the router registry.
// This function should be called once during application startup to wire up all modules.
func InitModules(r *Registry) {
	deps := buildAuthDeps()
	cfg := container.GetConfig()
	cookies := helpers.NewCookie(cfg.CookieDomain, cfg.CookieSecure)

	r.Add(modules.NewAuthModule(deps.AuthHandler))
	r.Add(modules.NewAccountModule(deps.AccountHandler, container.GetTokenCodec(), cookies))
}
