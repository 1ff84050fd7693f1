package middleware

import (
	"net/http"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/pos-backend-api/internal/domain"
	"github.com/vfg2006/pos-backend-api/pkg/apiErrors"
)

// RoleMiddleware restringe o acesso aos roles listados. Pressupõe que o
// AuthMiddleware já colocou as claims no contexto.
func RoleMiddleware(allowedRoles []string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userClaims, ok := r.Context().Value(ContextKeyUser).(*domain.Claims)
			if !ok {
				logrus.Warning("Tentativa de acesso sem autenticação")
				apiErrors.WriteError(w, apiErrors.ErrInvalidToken, "Não autorizado")
				return
			}

			isAllowed := false
			for _, role := range allowedRoles {
				if userClaims.UserRole == role {
					isAllowed = true
					break
				}
			}

			if !isAllowed {
				logrus.Warningf("Acesso negado para usuário %s, role=%s", userClaims.UserID, userClaims.UserRole)
				apiErrors.WriteError(w, apiErrors.ErrInsufficientPrivilege, "Acesso negado")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// AdminOnly permite apenas administradores (da empresa ou globais).
func AdminOnly() func(http.Handler) http.Handler {
	return RoleMiddleware([]string{domain.RoleSuperAdmin, domain.RoleAdmin})
}

// SellerRoles permite quem pode registrar vendas; as duas grafias de caixa
// são aceitas.
func SellerRoles() func(http.Handler) http.Handler {
	return RoleMiddleware([]string{
		domain.RoleSuperAdmin,
		domain.RoleAdmin,
		domain.RoleCaissier,
		domain.RoleCashier,
	})
}
