package handler

import (
	"net/http"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/pos-backend-api/internal/domain"
	"github.com/vfg2006/pos-backend-api/internal/usecases/authenticating"
	"github.com/vfg2006/pos-backend-api/pkg/apiErrors"
)

type SignupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Agencies string `json:"agencies"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	OK    bool                `json:"ok"`
	Token string              `json:"token"`
	User  *domain.SessionUser `json:"user"`
}

type OKResponse struct {
	OK bool `json:"ok"`
}

// Signup é o cadastro público de autoatendimento.
func Signup(service authenticating.Authenticator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req SignupRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, "Formato de requisição inválido")
			return
		}

		if err := service.SignupUser(req.Email, req.Password, req.Agencies); err != nil {
			handleAuthError(w, err)
			return
		}

		writeOK(w)
	}
}

func Login(service authenticating.Authenticator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, "Formato de requisição inválido")
			return
		}

		token, user, err := service.LoginUser(req.Email, req.Password)
		if err != nil {
			handleAuthError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(LoginResponse{
			OK:    true,
			Token: token,
			User:  user,
		})
	}
}

// handleAuthError traduz erros do usecase para o envelope HTTP. AuthError já
// carrega o código; o detalhe completo fica apenas no log do servidor.
func handleAuthError(w http.ResponseWriter, err error) {
	logrus.Error(err)

	var authErr *authenticating.AuthError
	if errors.As(err, &authErr) {
		message := authErr.Err.Error()

		// Falhas de infraestrutura saem genéricas; o detalhe já está no log.
		if authErr.Code == apiErrors.ErrDatabaseOperation || authErr.Code == apiErrors.ErrInternalServer {
			message = "Erro interno do servidor"
		}

		apiErrors.WriteError(w, authErr.Code, message)
		return
	}

	apiErrors.WriteError(w, apiErrors.ErrInternalServer, "Erro interno do servidor")
}

func writeOK(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(OKResponse{OK: true})
}
