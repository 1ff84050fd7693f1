package handler

import (
	"net/http"
	"strings"

	"github.com/julienschmidt/httprouter"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/pos-backend-api/internal/domain"
	"github.com/vfg2006/pos-backend-api/internal/usecases/authenticating"
	"github.com/vfg2006/pos-backend-api/pkg/apiErrors"
)

type CreateUserRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
	Company  string `json:"company"`
	Agencies string `json:"agencies"`
}

type ListUsersResponse struct {
	OK    bool           `json:"ok"`
	Users []*domain.User `json:"users"`
}

// ListUsers devolve todos os usuários, sem hash de senha.
func ListUsers(service authenticating.Authenticator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		users, err := service.ListUsers()
		if err != nil {
			logrus.Error(err)
			apiErrors.WriteError(w, apiErrors.ErrDatabaseOperation, "Erro ao buscar usuários")
			return
		}

		if users == nil {
			users = []*domain.User{}
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(ListUsersResponse{OK: true, Users: users})
	}
}

func CreateUser(service authenticating.Authenticator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateUserRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, "Formato de requisição inválido")
			return
		}

		user := &domain.User{
			Email:    req.Email,
			Role:     req.Role,
			Company:  req.Company,
			Agencies: req.Agencies,
		}

		if err := service.CreateUser(user, req.Password); err != nil {
			handleAuthError(w, err)
			return
		}

		writeOK(w)
	}
}

// DeleteUser remove por id. A remoção é idempotente: id inexistente ainda
// responde {ok:true}.
func DeleteUser(service authenticating.Authenticator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(httprouter.ParamsFromContext(r.Context()).ByName("id"))
		if id == "" {
			apiErrors.WriteError(w, apiErrors.ErrMissingRequiredData, "ID do usuário não fornecido")
			return
		}

		if err := service.DeleteUser(id); err != nil {
			logrus.Error(err)
			apiErrors.WriteError(w, apiErrors.ErrDatabaseOperation, "Erro ao remover usuário")
			return
		}

		writeOK(w)
	}
}
