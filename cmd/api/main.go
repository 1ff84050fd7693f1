package main

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/pos-backend-api/infrastructure/database/sqlite"
	"github.com/vfg2006/pos-backend-api/infrastructure/repository"
	"github.com/vfg2006/pos-backend-api/internal/api"
	"github.com/vfg2006/pos-backend-api/internal/config"
	"github.com/vfg2006/pos-backend-api/internal/usecases/authenticating"
	"github.com/vfg2006/pos-backend-api/internal/usecases/selling"
)

func main() {
	configureLogger()

	cfg, err := config.NewConfig()
	if err != nil {
		logrus.Fatal(err)
	}

	logLevel, err := logrus.ParseLevel(cfg.App.LogLevel)
	if err != nil {
		logrus.Warnf("Nível de log inválido: %s, usando 'info'", cfg.App.LogLevel)
		logLevel = logrus.InfoLevel
	}
	logrus.SetLevel(logLevel)

	if cfg.Auth.Secret == config.DefaultJWTSecret {
		logrus.Warn("JWT_SECRET está com o placeholder de desenvolvimento; defina um segredo próprio em produção")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	conn := sqliteConn(ctx, cfg.Database)
	defer conn.Close()

	if err := sqlite.InitSchema(ctx, conn); err != nil {
		logrus.WithError(err).Fatal("Erro ao inicializar o schema")
	}

	userRepo := repository.NewUserRepository(conn)
	saleRepo := repository.NewSaleRepository(conn)

	authenticator := authenticating.NewService(userRepo, cfg)
	saleService := selling.NewService(saleRepo, cfg)

	if err := authenticator.EnsureBootstrapAdmin(); err != nil {
		logrus.WithError(err).Fatal("Erro ao semear a conta administradora de bootstrap")
	}

	server, err := api.New(cfg, conn, authenticator, saleService)
	if err != nil {
		logrus.Fatal(err)
	}

	if err := server.Run(ctx); err != nil {
		logrus.Error(err)
	}
}

func configureLogger() {
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})
}

func sqliteConn(ctx context.Context, dbConfig config.Database) *sqlite.Connection {
	conn, err := sqlite.NewConnection(ctx, dbConfig)
	if err != nil {
		logrus.WithError(err).Fatal("Erro ao abrir o banco SQLite")
	}

	if err := conn.Ping(ctx); err != nil {
		logrus.WithError(err).Fatal("Erro ao testar a conexão com o SQLite")
	}

	logrus.WithField("path", dbConfig.Path).Info("Banco SQLite aberto com sucesso")
	return conn
}
