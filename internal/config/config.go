package config

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Env               string        `mapstructure:"ENV"`
	Port              string        `mapstructure:"PORT"`
	APIBase           string        `mapstructure:"API_BASE"`
	UpstreamMock      bool          `mapstructure:"UPSTREAM_MOCK"`
	UpstreamPageSize  int           `mapstructure:"UPSTREAM_PAGE_SIZE"`
	RequestTimeout    time.Duration `mapstructure:"REQUEST_TIMEOUT"`
	CacheBackend      string        `mapstructure:"CACHE_BACKEND"`
	RedisAddr         string        `mapstructure:"REDIS_ADDR"`
	CacheTTL          time.Duration `mapstructure:"CACHE_TTL"`
	BoardPeriod       time.Duration `mapstructure:"BOARD_REFRESH_PERIOD"`
	PerformancePeriod time.Duration `mapstructure:"PERFORMANCE_REFRESH_PERIOD"`
	FallbackMode      string        `mapstructure:"FALLBACK_MODE"`
	AdminKey          string        `mapstructure:"ADMIN_KEY"`
	CORSAllowed       string        `mapstructure:"CORS_ALLOWED_ORIGINS"`
	LogLevel          string        `mapstructure:"LOG_LEVEL"`
}

func Load() (Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	_ = v.ReadInConfig()

	v.SetDefault("ENV", "dev")
	v.SetDefault("PORT", "8080")
	// Dev default matches the backend's local port; production deployments
	// set API_BASE explicitly instead of sniffing hostnames.
	v.SetDefault("API_BASE", "http://localhost:8085/api")
	v.SetDefault("UPSTREAM_MOCK", false)
	v.SetDefault("UPSTREAM_PAGE_SIZE", 200)
	v.SetDefault("REQUEST_TIMEOUT", "10s")
	v.SetDefault("CACHE_BACKEND", "memory")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("CACHE_TTL", "45s")
	v.SetDefault("BOARD_REFRESH_PERIOD", "30s")
	v.SetDefault("PERFORMANCE_REFRESH_PERIOD", "60s")
	v.SetDefault("FALLBACK_MODE", "sample")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	v.SetDefault("LOG_LEVEL", "info")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
