package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Port                   string
	AllowedOrigin          string
	DatabaseURL            string
	DatabaseMigrate        bool
	RedisAddr              string
	RedisPassword          string
	RedisDB                int
	ReportCacheTTLSeconds  int
	SaleTxTimeoutSeconds   int
	StoreLockTimeoutMS     int
	AuthSecret             string
	AccessTokenTTLMinutes  int
	LoginRatePerMinute     int
	BootstrapAdminUsername string
	BootstrapAdminPassword string
	LogLevel               string
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first when present; real environment variables win.
func Load() Config {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("PORT", "8080")
	v.SetDefault("ALLOWED_ORIGIN", "http://127.0.0.1:3000")
	v.SetDefault("DATABASE_MIGRATE", true)
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("REPORT_CACHE_TTL_SECONDS", 30)
	v.SetDefault("SALE_TX_TIMEOUT_SECONDS", 5)
	v.SetDefault("STORE_LOCK_TIMEOUT_MS", 2000)
	v.SetDefault("ACCESS_TOKEN_TTL_MINUTES", 480)
	v.SetDefault("LOGIN_RATE_PER_MINUTE", 5)
	v.SetDefault("BOOTSTRAP_ADMIN_USERNAME", "admin")
	v.SetDefault("LOG_LEVEL", "info")

	return Config{
		Port:                   v.GetString("PORT"),
		AllowedOrigin:          v.GetString("ALLOWED_ORIGIN"),
		DatabaseURL:            strings.TrimSpace(v.GetString("DATABASE_URL")),
		DatabaseMigrate:        v.GetBool("DATABASE_MIGRATE"),
		RedisAddr:              strings.TrimSpace(v.GetString("REDIS_ADDR")),
		RedisPassword:          v.GetString("REDIS_PASSWORD"),
		RedisDB:                v.GetInt("REDIS_DB"),
		ReportCacheTTLSeconds:  positiveOr(v.GetInt("REPORT_CACHE_TTL_SECONDS"), 30),
		SaleTxTimeoutSeconds:   positiveOr(v.GetInt("SALE_TX_TIMEOUT_SECONDS"), 5),
		StoreLockTimeoutMS:     positiveOr(v.GetInt("STORE_LOCK_TIMEOUT_MS"), 2000),
		AuthSecret:             strings.TrimSpace(v.GetString("AUTH_SECRET")),
		AccessTokenTTLMinutes:  positiveOr(v.GetInt("ACCESS_TOKEN_TTL_MINUTES"), 480),
		LoginRatePerMinute:     positiveOr(v.GetInt("LOGIN_RATE_PER_MINUTE"), 5),
		BootstrapAdminUsername: strings.TrimSpace(v.GetString("BOOTSTRAP_ADMIN_USERNAME")),
		BootstrapAdminPassword: v.GetString("BOOTSTRAP_ADMIN_PASSWORD"),
		LogLevel:               strings.ToLower(strings.TrimSpace(v.GetString("LOG_LEVEL"))),
	}
}

func (c Config) Address() string {
	return fmt.Sprintf(":%s", c.Port)
}

func (c Config) SaleTxTimeout() time.Duration {
	return time.Duration(c.SaleTxTimeoutSeconds) * time.Second
}

func (c Config) StoreLockTimeout() time.Duration {
	return time.Duration(c.StoreLockTimeoutMS) * time.Millisecond
}

func (c Config) ReportCacheTTL() time.Duration {
	return time.Duration(c.ReportCacheTTLSeconds) * time.Second
}

func (c Config) AccessTokenTTL() time.Duration {
	return time.Duration(c.AccessTokenTTLMinutes) * time.Minute
}

func positiveOr(val int, fallback int) int {
	if val < 1 {
		return fallback
	}
	return val
}
