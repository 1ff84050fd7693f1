package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/vfg2006/pos-backend-api/internal/config"
	"github.com/vfg2006/pos-backend-api/internal/usecases/authenticating"
	"github.com/vfg2006/pos-backend-api/pkg/apiErrors"
)

type contextKey string

const (
	ContextKeyUser contextKey = "user"
)

// Rotas que dispensam token: raiz, health e o par signup/login.
var publicPaths = map[string]bool{
	"/":           true,
	"/health":     true,
	"/api/signup": true,
	"/api/login":  true,
}

// AuthMiddleware valida o bearer token e injeta as claims no contexto da
// requisição. Qualquer problema com o token resulta no mesmo 401.
func AuthMiddleware(authService authenticating.Authenticator, cfg *config.Config) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if publicPaths[r.URL.Path] || r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			// Postura configurável: instalações que dependiam da criação
			// aberta de usuários liberam só este par método/rota.
			if cfg.Users.AllowPublicCreate && r.Method == http.MethodPost && r.URL.Path == "/api/users" {
				next.ServeHTTP(w, r)
				return
			}

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				apiErrors.WriteError(w, apiErrors.ErrInvalidToken, "Não autorizado")
				return
			}

			tokenString := strings.TrimPrefix(authHeader, "Bearer ")
			if tokenString == authHeader {
				apiErrors.WriteError(w, apiErrors.ErrInvalidToken, "Não autorizado")
				return
			}

			claims, err := authService.ValidateToken(tokenString)
			if err != nil {
				apiErrors.WriteError(w, apiErrors.ErrInvalidToken, "Não autorizado")
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyUser, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
