package config

import (
	"os"

	"destinydeck-server/internal/util"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config provides configuration for Destiny Deck
type Config struct {
	loaded         bool
	Host           string `yaml:"host" envconfig:"host"`
	PGDSN          string `yaml:"pgDsn" envconfig:"pg_dsn"`
	MigrationsPath string `yaml:"migrationsPath" envconfig:"migrations_path"`
	JWT            struct {
		PublicKey  string `yaml:"publicKey" envconfig:"public_key"`
		PrivateKey string `yaml:"privateKey" envconfig:"private_key"`
	}
	RecaptchaSecret string `yaml:"recaptchaSecret" envconfig:"recaptcha_secret"`
	Duel            struct {
		TurnTimeLimit  int `yaml:"turnTimeLimit" envconfig:"turn_time_limit"`
		ReadyTimeout   int `yaml:"readyTimeout" envconfig:"ready_timeout"`
		ReconnectGrace int `yaml:"reconnectGrace" envconfig:"reconnect_grace"`
	}
	Email struct {
		From, Sender, Username, Password, Host string
	}
	Log struct {
		Level             string `yaml:"level" envconfig:"level"`
		DisableAccessLogs bool   `yaml:"disableAccessLogs" envconfig:"disable_access_logs"`
	}
}

var config Config

// DefaultConfig returns a config suitable for local development
func DefaultConfig() Config {
	cfg := Config{
		Host:           "http://localhost:8080",
		PGDSN:          "postgres://postgres@localhost:5432/destinydeck?sslmode=disable",
		MigrationsPath: "./sql",
	}
	cfg.JWT.PublicKey = "jwt/public.pem"
	cfg.JWT.PrivateKey = "jwt/private.key"
	cfg.Duel.TurnTimeLimit = 30
	cfg.Duel.ReadyTimeout = 30
	cfg.Duel.ReconnectGrace = 60
	return cfg
}

// Instance returns a singleton instance
// If the config hasn't been loaded, it will be loaded
func Instance() Config {
	if !config.loaded {
		if err := Load(); err != nil {
			panic(err)
		}
	}

	return config
}

// Load will load the configuration
func Load() error {
	configFile := util.Getenv("DD_CONFIG_FILE", "config.yaml")
	file, err := os.Open(configFile)
	if err != nil {
		return err
	}
	defer file.Close()

	config = Config{}
	if err := yaml.NewDecoder(file).Decode(&config); err != nil {
		return err
	}

	if err := envconfig.Process("dd", &config); err != nil {
		return err
	}

	config.loaded = true
	return nil
}
