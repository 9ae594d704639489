package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvLocal = "local"
	EnvDev   = "dev"
	EnvProd  = "prod"
)

const envPrefix = "FOODGRAM"

type PsqlConfig struct {
	User     string `mapstructure:"user" validate:"required"`
	Password string `mapstructure:"password"`
	Host     string `mapstructure:"host" validate:"required"`
	Port     int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Database string `mapstructure:"database" validate:"required"`
	Sslmode  string `mapstructure:"sslmode" validate:"required"`
}

type HTTPConfig struct {
	Env                string        `mapstructure:"env" validate:"required,oneof=local dev prod"`
	Port               int           `mapstructure:"port" validate:"required,min=1,max=65535"`
	BaseURL            string        `mapstructure:"base_url" validate:"required,url"`
	ReadTimeout        time.Duration `mapstructure:"read_timeout"`
	WriteTimeout       time.Duration `mapstructure:"write_timeout"`
	IdleTimeout        time.Duration `mapstructure:"idle_timeout"`
	CORSAllowedOrigins []string      `mapstructure:"cors_allowed_origins"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr" validate:"required"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db" validate:"min=0"`
}

type JWTConfig struct {
	Secret string        `mapstructure:"secret" validate:"required,min=16"`
	Issuer string        `mapstructure:"issuer" validate:"required"`
	TTL    time.Duration `mapstructure:"ttl" validate:"required"`
}

type ShortCodeConfig struct {
	Length      int `mapstructure:"length" validate:"min=1,max=32"`
	MaxAttempts int `mapstructure:"max_attempts" validate:"min=1"`
	CacheSize   int `mapstructure:"cache_size" validate:"min=1"`
}

type ShoppingListConfig struct {
	Timezone string `mapstructure:"timezone" validate:"required"`
}

type RateLimitConfig struct {
	LoginRequests int           `mapstructure:"login_requests" validate:"min=1"`
	LoginWindow   time.Duration `mapstructure:"login_window" validate:"required"`
}

type Config struct {
	HTTP         HTTPConfig         `mapstructure:"http"`
	Psql         PsqlConfig         `mapstructure:"psql_conn"`
	Redis        RedisConfig        `mapstructure:"redis"`
	JWT          JWTConfig          `mapstructure:"jwt"`
	ShortCode    ShortCodeConfig    `mapstructure:"short_code"`
	ShoppingList ShoppingListConfig `mapstructure:"shopping_list"`
	RateLimit    RateLimitConfig    `mapstructure:"rate_limit"`
}

// Load reads config.yaml (or the file named by CONFIG_PATH), then applies
// FOODGRAM_* environment overrides, e.g. FOODGRAM_HTTP_PORT.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("Error loading .env file, %s\n", err)
		return nil, err
	}

	v := viper.New()
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		log.Printf("Error reading config file, %s\n", err)
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		log.Printf("Unable to decode into struct, %v\n", err)
		return nil, err
	}

	if err := validator.New().Struct(cfg); err != nil {
		log.Printf("Invalid config, %v\n", err)
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("http.env", EnvLocal)
	v.SetDefault("http.port", 8080)
	v.SetDefault("http.base_url", "http://localhost:8080")
	v.SetDefault("http.read_timeout", 10*time.Second)
	v.SetDefault("http.write_timeout", 30*time.Second)
	v.SetDefault("http.idle_timeout", 60*time.Second)
	v.SetDefault("http.cors_allowed_origins", []string{})

	v.SetDefault("psql_conn.user", "")
	v.SetDefault("psql_conn.password", "")
	v.SetDefault("psql_conn.host", "localhost")
	v.SetDefault("psql_conn.port", 5432)
	v.SetDefault("psql_conn.database", "foodgram")
	v.SetDefault("psql_conn.sslmode", "disable")

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.issuer", "foodgram")
	v.SetDefault("jwt.ttl", 24*time.Hour)

	v.SetDefault("short_code.length", 6)
	v.SetDefault("short_code.max_attempts", 30)
	v.SetDefault("short_code.cache_size", 1024)

	v.SetDefault("shopping_list.timezone", "UTC")

	v.SetDefault("rate_limit.login_requests", 10)
	v.SetDefault("rate_limit.login_window", time.Minute)
}

func (c *Config) ConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Psql.User, c.Psql.Password, c.Psql.Host, c.Psql.Port, c.Psql.Database, c.Psql.Sslmode)
}

// Location resolves the time zone used for shopping list timestamps.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.ShoppingList.Timezone)
	if err != nil {
		return nil, fmt.Errorf("config.Location: %w", err)
	}
	return loc, nil
}
