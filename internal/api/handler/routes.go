package handler

import (
	"net/http"

	"github.com/vfg2006/pos-backend-api/infrastructure/database/sqlite"
	"github.com/vfg2006/pos-backend-api/internal/api/handler/router"
	"github.com/vfg2006/pos-backend-api/internal/config"
	"github.com/vfg2006/pos-backend-api/internal/usecases/authenticating"
	"github.com/vfg2006/pos-backend-api/internal/usecases/selling"
	"github.com/vfg2006/pos-backend-api/pkg/middleware"
)

func Healthcheck(conn *sqlite.Connection) []router.Route {
	return []router.Route{
		{
			Path:    "/",
			Method:  http.MethodGet,
			Handler: RootHandler(),
		},
		{
			Path:    "/health",
			Method:  http.MethodGet,
			Handler: HealthcheckHandler(conn),
		},
	}
}

func Authentication(service authenticating.Authenticator) []router.Route {
	return []router.Route{
		{
			Path:    "/api/signup",
			Method:  http.MethodPost,
			Handler: Signup(service),
		},
		{
			Path:    "/api/login",
			Method:  http.MethodPost,
			Handler: Login(service),
		},
	}
}

// User monta as rotas de gestão de usuários. A criação é admin-only por
// padrão; ALLOW_PUBLIC_USER_CREATE reabre a variante sem autenticação para
// instalações que dependiam dela.
func User(service authenticating.Authenticator, cfg *config.Config) []router.Route {
	createMiddlewares := []func(http.Handler) http.Handler{middleware.AdminOnly()}
	if cfg.Users.AllowPublicCreate {
		createMiddlewares = nil
	}

	return []router.Route{
		{
			Path:        "/api/users",
			Method:      http.MethodGet,
			Handler:     ListUsers(service),
			Middlewares: []func(http.Handler) http.Handler{middleware.AdminOnly()},
		},
		{
			Path:        "/api/users",
			Method:      http.MethodPost,
			Handler:     CreateUser(service),
			Middlewares: createMiddlewares,
		},
		{
			Path:        "/api/users/:id",
			Method:      http.MethodDelete,
			Handler:     DeleteUser(service),
			Middlewares: []func(http.Handler) http.Handler{middleware.AdminOnly()},
		},
	}
}

func Sales(service selling.SaleService) []router.Route {
	return []router.Route{
		{
			Path:        "/api/sales",
			Method:      http.MethodPost,
			Handler:     RecordSale(service),
			Middlewares: []func(http.Handler) http.Handler{middleware.SellerRoles()},
		},
		{
			Path:    "/api/sales",
			Method:  http.MethodGet,
			Handler: ListSales(service),
		},
		{
			Path:        "/api/sales/:id",
			Method:      http.MethodDelete,
			Handler:     DeleteSale(service),
			Middlewares: []func(http.Handler) http.Handler{middleware.AdminOnly()},
		},
	}
}
