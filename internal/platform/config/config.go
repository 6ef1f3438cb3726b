package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config del servicio. Se carga una vez en main y se pasa explícitamente.
type Config struct {
	Port      string `mapstructure:"PORT"`
	Env       string `mapstructure:"ENV"`
	AppName   string `mapstructure:"APP_NAME"`
	LogLevel  string `mapstructure:"LOG_LEVEL"`
	LogFormat string `mapstructure:"LOG_FORMAT"`

	// Opcional: si viene, usa Postgres. Si no, in-memory.
	DBDSN string `mapstructure:"DB_DSN"`
	// Opcional: si viene, las sesiones emitidas viven en Redis.
	RedisURL string `mapstructure:"REDIS_URL"`

	JWTSecret string        `mapstructure:"JWT_SECRET"`
	JWTIssuer string        `mapstructure:"JWT_ISSUER"`
	TokenTTL  time.Duration `mapstructure:"TOKEN_TTL"`

	LoginRatePerMin int `mapstructure:"LOGIN_RATE_PER_MIN"`

	// DevAuth habilita X-Debug-User-ID (solo desarrollo).
	DevAuth bool `mapstructure:"DEV_AUTH"`
}

var ErrMissingSecret = errors.New("config: JWT_SECRET required outside development")

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("APP_NAME", "advogados-solidarios")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "text")
	v.SetDefault("DB_DSN", "")
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("JWT_ISSUER", "advogados-solidarios")
	v.SetDefault("TOKEN_TTL", "24h")
	v.SetDefault("LOGIN_RATE_PER_MIN", 20)
	v.SetDefault("DEV_AUTH", false)
}

// Load lee config.yaml (., ./config) si existe y luego variables de entorno.
func Load() (Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	return load(v, true)
}

// FromMap arma la config desde valores explícitos (tests).
func FromMap(values map[string]any) (Config, error) {
	v := viper.New()
	for k, val := range values {
		v.Set(k, val)
	}
	return load(v, false)
}

func load(v *viper.Viper, readFile bool) (Config, error) {
	setDefaults(v)
	v.AutomaticEnv()

	if readFile {
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("config: read file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: unmarshal: %w", err)
	}

	cfg.Env = strings.ToLower(strings.TrimSpace(cfg.Env))
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = 24 * time.Hour
	}
	if cfg.LoginRatePerMin <= 0 {
		cfg.LoginRatePerMin = 20
	}

	if strings.TrimSpace(cfg.JWTSecret) == "" {
		if cfg.IsProduction() {
			return Config{}, ErrMissingSecret
		}
		cfg.JWTSecret = "dev-secret-change-me"
	}

	return cfg, nil
}

func (c Config) IsProduction() bool {
	return c.Env == "production"
}

func (c Config) Addr() string {
	return ":" + strings.TrimPrefix(c.Port, ":")
}
