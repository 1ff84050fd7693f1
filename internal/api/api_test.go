package api_test

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vfg2006/pos-backend-api/infrastructure/database/sqlite"
	"github.com/vfg2006/pos-backend-api/infrastructure/repository"
	"github.com/vfg2006/pos-backend-api/internal/api"
	"github.com/vfg2006/pos-backend-api/internal/config"
	"github.com/vfg2006/pos-backend-api/internal/domain"
	"github.com/vfg2006/pos-backend-api/internal/usecases/authenticating"
	"github.com/vfg2006/pos-backend-api/internal/usecases/selling"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type testServer struct {
	server        *httptest.Server
	authenticator authenticating.Authenticator
}

func newTestServer(t *testing.T, mutate func(cfg *config.Config)) *testServer {
	t.Helper()

	cfg := &config.Config{}
	cfg.Auth.Secret = "segredo-de-teste"
	cfg.Auth.TokenTTL = time.Hour
	cfg.Company.DefaultName = "THEFLISS"
	if mutate != nil {
		mutate(cfg)
	}

	conn, err := sqlite.NewConnection(context.Background(), config.Database{
		Path: filepath.Join(t.TempDir(), "pos.sqlite"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	require.NoError(t, sqlite.InitSchema(context.Background(), conn))

	userRepo := repository.NewUserRepository(conn)
	saleRepo := repository.NewSaleRepository(conn)

	authenticator := authenticating.NewService(userRepo, cfg)
	saleService := selling.NewService(saleRepo, cfg)

	server := httptest.NewServer(api.NewHandler(cfg, conn, authenticator, saleService))
	t.Cleanup(server.Close)

	return &testServer{server: server, authenticator: authenticator}
}

func (ts *testServer) request(t *testing.T, method, path, token string, body any) (*http.Response, map[string]any) {
	t.Helper()

	var reqBody *bytes.Buffer
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reqBody = bytes.NewBuffer(raw)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req, err := http.NewRequest(method, ts.server.URL+path, reqBody)
	require.NoError(t, err)

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := ts.server.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var decoded map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))

	return resp, decoded
}

// createUser semeia uma conta direto pelo usecase e devolve o token de login.
func (ts *testServer) createUser(t *testing.T, email, password, role, agencies string) string {
	t.Helper()

	require.NoError(t, ts.authenticator.CreateUser(&domain.User{
		Email:    email,
		Role:     role,
		Company:  "THEFLISS",
		Agencies: agencies,
	}, password))

	token, _, err := ts.authenticator.LoginUser(email, password)
	require.NoError(t, err)
	return token
}

func TestHealthEndpoints(t *testing.T) {
	ts := newTestServer(t, nil)

	resp, body := ts.request(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["ok"])
	assert.Equal(t, "sqlite", body["db"])
}

func TestSignupAndLogin(t *testing.T) {
	ts := newTestServer(t, nil)

	t.Run("cadastro e login de autoatendimento", func(t *testing.T) {
		resp, body := ts.request(t, http.MethodPost, "/api/signup", "", map[string]any{
			"email":    "Cliente@THEFLISS.com",
			"password": "senha123",
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, true, body["ok"])

		// O email é normalizado no cadastro, então o login em minúsculas
		// funciona.
		resp, body = ts.request(t, http.MethodPost, "/api/login", "", map[string]any{
			"email":    "cliente@thefliss.com",
			"password": "senha123",
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, true, body["ok"])
		assert.NotEmpty(t, body["token"])

		user, ok := body["user"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "client", user["role"])
		assert.Equal(t, "THEFLISS", user["company"])
		assert.NotContains(t, user, "password_hash")
	})

	t.Run("email duplicado responde 409", func(t *testing.T) {
		resp, body := ts.request(t, http.MethodPost, "/api/signup", "", map[string]any{
			"email":    "cliente@thefliss.com",
			"password": "outra-senha",
		})
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
		assert.Equal(t, false, body["ok"])
	})

	t.Run("credenciais inválidas produzem respostas indistinguíveis", func(t *testing.T) {
		respWrong, bodyWrong := ts.request(t, http.MethodPost, "/api/login", "", map[string]any{
			"email":    "cliente@thefliss.com",
			"password": "senha-errada",
		})
		respUnknown, bodyUnknown := ts.request(t, http.MethodPost, "/api/login", "", map[string]any{
			"email":    "fantasma@thefliss.com",
			"password": "senha123",
		})

		assert.Equal(t, http.StatusUnauthorized, respWrong.StatusCode)
		assert.Equal(t, http.StatusUnauthorized, respUnknown.StatusCode)
		assert.Equal(t, bodyWrong, bodyUnknown)
	})
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	ts := newTestServer(t, nil)

	for _, tc := range []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/users"},
		{http.MethodPost, "/api/users"},
		{http.MethodGet, "/api/sales"},
		{http.MethodPost, "/api/sales"},
		{http.MethodDelete, "/api/sales/v1"},
	} {
		resp, body := ts.request(t, tc.method, tc.path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, "%s %s", tc.method, tc.path)
		assert.Equal(t, false, body["ok"])
	}

	t.Run("token adulterado também é 401", func(t *testing.T) {
		token := ts.createUser(t, "admin@thefliss.com", "senha123", domain.RoleAdmin, "")
		resp, _ := ts.request(t, http.MethodGet, "/api/users", token+"x", nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}

func TestUserManagement(t *testing.T) {
	ts := newTestServer(t, nil)

	adminToken := ts.createUser(t, "admin@thefliss.com", "senha123", domain.RoleAdmin, "")
	clientToken := ts.createUser(t, "cliente@thefliss.com", "senha123", domain.RoleClient, "")

	t.Run("admin cria e lista usuários", func(t *testing.T) {
		resp, body := ts.request(t, http.MethodPost, "/api/users", adminToken, map[string]any{
			"email":    "caixa@thefliss.com",
			"password": "senha123",
			"role":     "cashier",
			"agencies": "Valence",
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, true, body["ok"])

		resp, body = ts.request(t, http.MethodGet, "/api/users", adminToken, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		users, ok := body["users"].([]any)
		require.True(t, ok)
		assert.Len(t, users, 3)
	})

	t.Run("cliente autenticado não cria usuários", func(t *testing.T) {
		resp, _ := ts.request(t, http.MethodPost, "/api/users", clientToken, map[string]any{
			"email":    "intruso@thefliss.com",
			"password": "senha123",
		})
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("remoção de usuário é idempotente", func(t *testing.T) {
		resp, body := ts.request(t, http.MethodDelete, "/api/users/id-que-nao-existe", adminToken, nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, true, body["ok"])
	})
}

func TestPublicUserCreatePolicy(t *testing.T) {
	ts := newTestServer(t, func(cfg *config.Config) {
		cfg.Users.AllowPublicCreate = true
	})

	// Com a chave ligada, POST /api/users dispensa token.
	resp, body := ts.request(t, http.MethodPost, "/api/users", "", map[string]any{
		"email":    "aberto@thefliss.com",
		"password": "senha123",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["ok"])

	// As demais rotas continuam protegidas.
	resp, _ = ts.request(t, http.MethodGet, "/api/users", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestSalesLifecycle(t *testing.T) {
	ts := newTestServer(t, nil)

	adminToken := ts.createUser(t, "admin@thefliss.com", "senha123", domain.RoleAdmin, "Valence,Pierrelatte")
	cashierToken := ts.createUser(t, "caixa@thefliss.com", "senha123", domain.RoleCashier, "Valence")
	clientToken := ts.createUser(t, "cliente@thefliss.com", "senha123", domain.RoleClient, "")

	t.Run("registro, reenvio e mesclagem do snapshot", func(t *testing.T) {
		resp, body := ts.request(t, http.MethodPost, "/api/sales", cashierToken, map[string]any{
			"id":         "v1",
			"agency":     "Valence",
			"total":      12.5,
			"observacao": "primeira via",
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, true, body["ok"])
		assert.Equal(t, "v1", body["id"])

		_, body = ts.request(t, http.MethodGet, "/api/sales", cashierToken, nil)
		sales, ok := body["sales"].([]any)
		require.True(t, ok)
		require.Len(t, sales, 1)

		first := sales[0].(map[string]any)
		assert.Equal(t, "v1", first["id"])
		assert.Equal(t, "THEFLISS", first["company"])
		assert.Equal(t, "caixa@thefliss.com", first["seller"])
		assert.EqualValues(t, 1250, first["total_cents"])
		assert.Equal(t, "primeira via", first["observacao"])

		createdAt, ok := first["created_at"].(string)
		require.True(t, ok)
		require.NotEmpty(t, createdAt)

		// Reenviar a mesma venda atualiza o total mas preserva created_at.
		resp, _ = ts.request(t, http.MethodPost, "/api/sales", cashierToken, map[string]any{
			"id":     "v1",
			"agency": "Valence",
			"total":  20,
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)

		_, body = ts.request(t, http.MethodGet, "/api/sales", cashierToken, nil)
		sales = body["sales"].([]any)
		require.Len(t, sales, 1)

		resent := sales[0].(map[string]any)
		assert.EqualValues(t, 2000, resent["total_cents"])
		assert.Equal(t, createdAt, resent["created_at"])
	})

	t.Run("venda sem id é 400", func(t *testing.T) {
		resp, body := ts.request(t, http.MethodPost, "/api/sales", cashierToken, map[string]any{
			"total": 10,
		})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, false, body["ok"])
	})

	t.Run("cliente não registra venda", func(t *testing.T) {
		resp, _ := ts.request(t, http.MethodPost, "/api/sales", clientToken, map[string]any{
			"id": "v-cliente",
		})
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("escopo de agência fecha por padrão", func(t *testing.T) {
		// Venda fora do conjunto do caixa, registrada pelo admin.
		resp, _ := ts.request(t, http.MethodPost, "/api/sales", adminToken, map[string]any{
			"id":     "v2",
			"agency": "Pierrelatte",
			"total":  5,
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)

		// O caixa de Valence não enxerga a venda de Pierrelatte.
		_, body := ts.request(t, http.MethodGet, "/api/sales", cashierToken, nil)
		sales := body["sales"].([]any)
		require.Len(t, sales, 1)
		assert.Equal(t, "v1", sales[0].(map[string]any)["id"])

		// Pedir a agência proibida explicitamente devolve zero linhas.
		_, body = ts.request(t, http.MethodGet, "/api/sales?agency=Pierrelatte", cashierToken, nil)
		assert.Empty(t, body["sales"])

		// O cliente sem agências também não enxerga nada.
		_, body = ts.request(t, http.MethodGet, "/api/sales", clientToken, nil)
		assert.Empty(t, body["sales"])

		// O admin com as duas agências vê as duas vendas.
		_, body = ts.request(t, http.MethodGet, "/api/sales", adminToken, nil)
		assert.Len(t, body["sales"], 2)
	})

	t.Run("remoção de venda exige admin e é idempotente", func(t *testing.T) {
		resp, _ := ts.request(t, http.MethodDelete, "/api/sales/v1", cashierToken, nil)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)

		resp, body := ts.request(t, http.MethodDelete, "/api/sales/v1", adminToken, nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, true, body["ok"])

		// Repetir a remoção continua {ok:true}.
		resp, body = ts.request(t, http.MethodDelete, "/api/sales/v1", adminToken, nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, true, body["ok"])

		_, body = ts.request(t, http.MethodGet, "/api/sales", adminToken, nil)
		assert.Len(t, body["sales"], 1)
	})
}
