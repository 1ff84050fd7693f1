package domain

import (
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// Roles conhecidos pelo sistema. "caissier" é a grafia histórica de
// "cashier" e precisa continuar sendo aceita.
const (
	RoleSuperAdmin = "super_admin"
	RoleAdmin      = "admin"
	RoleCashier    = "cashier"
	RoleCaissier   = "caissier"
	RoleClient     = "client"
	RoleUser       = "user"
)

type User struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
	Role         string `json:"role"`
	Company      string `json:"company"`
	Agencies     string `json:"agencies"`
	CreatedAt    string `json:"created_at,omitempty"`
}

// SessionUser é a projeção do usuário devolvida no login e embutida no token.
type SessionUser struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	Company  string `json:"company"`
	Agencies string `json:"agencies"`
}

type Claims struct {
	UserID       string `json:"id"`
	UserEmail    string `json:"email"`
	UserRole     string `json:"role"`
	UserCompany  string `json:"company"`
	UserAgencies string `json:"agencies"`
	jwt.RegisteredClaims
}

// AgencyList converte o campo agencies (nomes separados por vírgula) em um
// conjunto de nomes, descartando entradas vazias.
func (c *Claims) AgencyList() []string {
	return SplitAgencies(c.UserAgencies)
}

func (c *Claims) SessionUser() *SessionUser {
	return &SessionUser{
		ID:       c.UserID,
		Email:    c.UserEmail,
		Role:     c.UserRole,
		Company:  c.UserCompany,
		Agencies: c.UserAgencies,
	}
}

func SplitAgencies(agencies string) []string {
	parts := strings.Split(agencies, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
