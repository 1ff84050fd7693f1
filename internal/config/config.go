package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// DefaultJWTSecret é o placeholder de desenvolvimento. Deploys de produção
// precisam definir JWT_SECRET; o main emite um aviso quando o placeholder
// continua em uso.
const DefaultJWTSecret = "POS_DEV_SECRET_CHANGE_ME"

type Config struct {
	App       App       `mapstructure:",squash"`
	Server    Server    `mapstructure:",squash"`
	Database  Database  `mapstructure:",squash"`
	Auth      Auth      `mapstructure:",squash"`
	Company   Company   `mapstructure:",squash"`
	Bootstrap Bootstrap `mapstructure:",squash"`
	Users     Users     `mapstructure:",squash"`
}

type Server struct {
	Host string `mapstructure:"host"`
	Port string `mapstructure:"port"`
}

type Database struct {
	Path string `mapstructure:"database_path"`
}

type Auth struct {
	Secret   string        `mapstructure:"jwt_secret"`
	TokenTTL time.Duration `mapstructure:"token_ttl"`
}

type App struct {
	LogLevel string `mapstructure:"log_level"`
}

type Company struct {
	DefaultName string `mapstructure:"default_company"`
}

// Bootstrap controla a conta administradora semeada no primeiro boot.
// Credenciais fixas em código seriam um passivo de segurança, então tudo
// aqui vem do ambiente.
type Bootstrap struct {
	Enabled       bool   `mapstructure:"bootstrap_admin_enabled"`
	AdminEmail    string `mapstructure:"bootstrap_admin_email"`
	AdminPassword string `mapstructure:"bootstrap_admin_password"`
	AdminCompany  string `mapstructure:"bootstrap_admin_company"`
	AdminAgencies string `mapstructure:"bootstrap_admin_agencies"`
}

// Users carrega a decisão de política sobre POST /api/users: por padrão a
// rota exige admin, mas deploys que dependiam da variante aberta podem
// reativá-la explicitamente.
type Users struct {
	AllowPublicCreate bool `mapstructure:"allow_public_user_create"`
}

func SetDefaults() {
	viper.SetDefault("HOST", "")
	viper.SetDefault("PORT", "10000")

	viper.SetDefault("DATABASE_PATH", "data/pos.sqlite")

	viper.SetDefault("JWT_SECRET", DefaultJWTSecret)
	viper.SetDefault("TOKEN_TTL", "12h")

	viper.SetDefault("DEFAULT_COMPANY", "THEFLISS")

	viper.SetDefault("BOOTSTRAP_ADMIN_ENABLED", true)
	viper.SetDefault("BOOTSTRAP_ADMIN_EMAIL", "admin@thefliss.com")
	viper.SetDefault("BOOTSTRAP_ADMIN_PASSWORD", "ChangeMe123!")
	viper.SetDefault("BOOTSTRAP_ADMIN_COMPANY", "THEFLISS")
	viper.SetDefault("BOOTSTRAP_ADMIN_AGENCIES", "")

	viper.SetDefault("ALLOW_PUBLIC_USER_CREATE", false)

	viper.SetDefault("LOG_LEVEL", "info")
}

func NewConfig() (*Config, error) {
	loadEnvFile()

	config := &Config{}

	SetDefaults()

	viper.SetConfigType("env")
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		logrus.Debug("Arquivo .env não lido pelo viper, usando ambiente: ", err)
	}

	err := viper.Unmarshal(&config, viper.DecodeHook(
		mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	))
	if err != nil {
		return nil, err
	}

	return config, nil
}

// loadEnvFile tenta carregar o .env do diretório atual ou do diretório pai.
func loadEnvFile() {
	cwd, err := os.Getwd()
	if err != nil {
		return
	}

	locations := []string{
		filepath.Join(cwd, ".env"),
		filepath.Join(filepath.Dir(cwd), ".env"),
	}

	for _, location := range locations {
		if err := godotenv.Load(location); err == nil {
			logrus.Info("Arquivo .env carregado de: ", location)
			return
		}
	}
}
