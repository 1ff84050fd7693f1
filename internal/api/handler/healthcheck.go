package handler

import (
	"net/http"

	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/pos-backend-api/infrastructure/database/sqlite"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type HealthResponse struct {
	OK   bool   `json:"ok"`
	DB   string `json:"db"`
	Path string `json:"path"`
}

// RootHandler responde em texto puro, usado por probes simples.
func RootHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte("pos-backend OK")); err != nil {
			logrus.WithError(err).Warn("erro ao responder liveness")
		}
	})
}

// HealthcheckHandler verifica o banco e informa o arquivo em uso.
func HealthcheckHandler(conn *sqlite.Connection) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ok := conn.Ping(r.Context()) == nil

		w.Header().Set("Content-Type", "application/json")
		if !ok {
			w.WriteHeader(http.StatusServiceUnavailable)
		}

		_ = json.NewEncoder(w).Encode(HealthResponse{
			OK:   ok,
			DB:   "sqlite",
			Path: conn.Path,
		})
	})
}
