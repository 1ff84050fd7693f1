package authenticating

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/pos-backend-api/infrastructure/repository"
	"github.com/vfg2006/pos-backend-api/internal/config"
	"github.com/vfg2006/pos-backend-api/internal/domain"
	"github.com/vfg2006/pos-backend-api/pkg/apiErrors"
	"golang.org/x/crypto/bcrypt"
)

const defaultTokenTTL = 12 * time.Hour

type Authenticator interface {
	SignupUser(email, password, agencies string) error
	CreateUser(user *domain.User, password string) error
	LoginUser(email, password string) (string, *domain.SessionUser, error)
	ValidateToken(tokenString string) (*domain.Claims, error)
	ListUsers() ([]*domain.User, error)
	DeleteUser(id string) error
	EnsureBootstrapAdmin() error
}

type Service struct {
	userRepo repository.UserRepository
	cfg      *config.Config
}

func NewService(userRepo repository.UserRepository, cfg *config.Config) Authenticator {
	return &Service{
		userRepo: userRepo,
		cfg:      cfg,
	}
}

// SignupUser cria uma conta de autoatendimento: role fixo "client" e empresa
// padrão da instalação.
func (s *Service) SignupUser(email, password, agencies string) error {
	if email == "" || password == "" {
		return NewAuthError(ErrMissingRequiredData, apiErrors.ErrMissingRequiredData, "Email e senha são obrigatórios")
	}

	return s.insertUser(&domain.User{
		Email:    email,
		Role:     domain.RoleClient,
		Company:  s.cfg.Company.DefaultName,
		Agencies: agencies,
	}, password)
}

// CreateUser é a variante administrativa: role e empresa podem vir na
// requisição, com fallbacks para os padrões da instalação.
func (s *Service) CreateUser(user *domain.User, password string) error {
	if user.Email == "" || password == "" {
		return NewAuthError(ErrMissingRequiredData, apiErrors.ErrMissingRequiredData, "Email e senha são obrigatórios")
	}

	if user.Role == "" {
		user.Role = domain.RoleUser
	}

	if user.Company == "" {
		user.Company = s.cfg.Company.DefaultName
	}

	return s.insertUser(user, password)
}

func (s *Service) insertUser(user *domain.User, password string) error {
	user.Email = handleEmail(user.Email)

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user.PasswordHash = string(hashedPassword)

	if _, err := s.userRepo.CreateUser(user); err != nil {
		// A constraint UNIQUE do banco é a fonte de verdade para
		// duplicidade; não há janela de corrida entre consulta e insert.
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return NewAuthError(ErrUserAlreadyExists, apiErrors.ErrUserAlreadyExists, "Email já cadastrado")
		}
		return NewAuthError(err, apiErrors.ErrDatabaseOperation, "Erro ao criar usuário")
	}

	return nil
}

func handleEmail(s string) string {
	email := strings.ToLower(s)
	email = strings.TrimSpace(email)
	email = strings.ReplaceAll(email, " ", "")
	return email
}

// LoginUser autentica por email/senha e devolve o token com a projeção do
// usuário. Usuário inexistente e senha incorreta produzem exatamente o mesmo
// erro.
func (s *Service) LoginUser(email, password string) (string, *domain.SessionUser, error) {
	if email == "" || password == "" {
		return "", nil, NewAuthError(ErrMissingRequiredData, apiErrors.ErrMissingRequiredData, "Email e senha são obrigatórios")
	}

	email = handleEmail(email)

	user, err := s.userRepo.GetUserByEmail(email)
	if err != nil {
		return "", nil, NewAuthError(err, apiErrors.ErrDatabaseOperation, "Erro ao consultar usuário no banco de dados")
	}

	if user == nil {
		return "", nil, NewAuthError(ErrInvalidCredentials, apiErrors.ErrInvalidCredentials, "Credenciais inválidas")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, NewAuthError(ErrInvalidCredentials, apiErrors.ErrInvalidCredentials, "Credenciais inválidas")
	}

	token, err := s.generateJWT(user)
	if err != nil {
		return "", nil, NewAuthError(err, apiErrors.ErrInternalServer, "Erro ao gerar token de autenticação")
	}

	sessionUser := &domain.SessionUser{
		ID:       user.ID,
		Email:    user.Email,
		Role:     user.Role,
		Company:  user.Company,
		Agencies: user.Agencies,
	}

	return token, sessionUser, nil
}

func (s *Service) generateJWT(user *domain.User) (string, error) {
	ttl := s.cfg.Auth.TokenTTL
	if ttl == 0 {
		ttl = defaultTokenTTL
	}

	claims := domain.Claims{
		UserID:       user.ID,
		UserEmail:    user.Email,
		UserRole:     user.Role,
		UserCompany:  user.Company,
		UserAgencies: user.Agencies,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.Auth.Secret))
}

// ValidateToken rejeita tokens expirados ou adulterados sempre com
// ErrInvalidToken; nunca propaga panic do parser.
func (s *Service) ValidateToken(tokenString string) (*domain.Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &domain.Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.cfg.Auth.Secret), nil
	})
	if err != nil {
		return nil, NewAuthError(ErrInvalidToken, apiErrors.ErrInvalidToken, err.Error())
	}

	claims, ok := token.Claims.(*domain.Claims)
	if !ok || !token.Valid {
		return nil, NewAuthError(ErrInvalidToken, apiErrors.ErrInvalidToken, "claims inválidas")
	}

	return claims, nil
}

func (s *Service) ListUsers() ([]*domain.User, error) {
	users, err := s.userRepo.ListUsers()
	if err != nil {
		return nil, err
	}

	return users, nil
}

func (s *Service) DeleteUser(id string) error {
	return s.userRepo.DeleteUser(id)
}

// EnsureBootstrapAdmin semeia a conta super_admin de primeiro acesso quando
// habilitada e ausente. É uma conveniência de deployment; as credenciais vêm
// da configuração.
func (s *Service) EnsureBootstrapAdmin() error {
	if !s.cfg.Bootstrap.Enabled {
		return nil
	}

	email := handleEmail(s.cfg.Bootstrap.AdminEmail)

	existing, err := s.userRepo.GetUserByEmail(email)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}

	err = s.insertUser(&domain.User{
		Email:    email,
		Role:     domain.RoleSuperAdmin,
		Company:  s.cfg.Bootstrap.AdminCompany,
		Agencies: s.cfg.Bootstrap.AdminAgencies,
	}, s.cfg.Bootstrap.AdminPassword)
	if err != nil {
		// Outro processo pode ter semeado primeiro; duplicidade aqui não é
		// falha de boot.
		if errors.Is(err, ErrUserAlreadyExists) {
			return nil
		}
		return err
	}

	logrus.Infof("Conta administradora de bootstrap criada: %s", email)
	return nil
}
