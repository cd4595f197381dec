/*
Package config loads the server configuration.

SOURCES (later wins):
  1. Defaults (setDefaults)
  2. config/config.yaml, or the file passed with -config
  3. .env in the working directory (loaded into the environment)
  4. Environment variables prefixed CABIN_, e.g. CABIN_SERVER_PORT=9090,
     CABIN_STORE_DRIVER=postgres, CABIN_KAFKA_BROKERS=k1:9092,k2:9092
  5. Command-line flags applied by cmd/server

SEE ALSO:
  - config/config.yaml: Annotated sample
  - cmd/server/main.go: Flag overrides
*/
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"github.com/warp/cabin-engine/generic"
)

const EnvPrefix = "CABIN"

type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Log     LogConfig     `mapstructure:"log"`
	Store   StoreConfig   `mapstructure:"store"`
	Redis   RedisConfig   `mapstructure:"redis"`
	Kafka   KafkaConfig   `mapstructure:"kafka"`
	Auth    AuthConfig    `mapstructure:"auth"`
	Booking BookingConfig `mapstructure:"booking"`
}

type ServerConfig struct {
	Host           string        `mapstructure:"host"`
	Port           int           `mapstructure:"port" validate:"min=1,max=65535"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	IdleTimeout    time.Duration `mapstructure:"idle_timeout"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	AllowedOrigins []string      `mapstructure:"allowed_origins"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=trace debug info warn warning error fatal panic"`
	Format string `mapstructure:"format" validate:"oneof=json text"`
}

type StoreConfig struct {
	Driver   string         `mapstructure:"driver" validate:"oneof=sqlite postgres memory"`
	SQLite   SQLiteConfig   `mapstructure:"sqlite"`
	Postgres PostgresConfig `mapstructure:"postgres"`
}

type SQLiteConfig struct {
	Path string `mapstructure:"path"`
}

type PostgresConfig struct {
	DSN             string        `mapstructure:"dsn"`
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// ConnString returns DSN when set, otherwise builds one from the parts.
func (p PostgresConfig) ConnString() string {
	if p.DSN != "" {
		return p.DSN
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.DBName, p.SSLMode)
}

type RedisConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Addr     string        `mapstructure:"addr" validate:"required_if=Enabled true"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

type KafkaConfig struct {
	Enabled bool     `mapstructure:"enabled"`
	Brokers []string `mapstructure:"brokers" validate:"required_if=Enabled true"`
	Topic   string   `mapstructure:"topic" validate:"required_if=Enabled true"`
}

type AuthConfig struct {
	JWTSecret string        `mapstructure:"jwt_secret" validate:"required,min=16"`
	TokenTTL  time.Duration `mapstructure:"token_ttl"`
	// DevTokens enables POST /api/auth/token, which issues a token for any
	// known guest email. Never enable in production.
	DevTokens bool `mapstructure:"dev_tokens"`
}

type BookingConfig struct {
	MinNights      int    `mapstructure:"min_nights" validate:"min=1"`
	MaxNights      int    `mapstructure:"max_nights" validate:"gtefield=MinNights"`
	BreakfastPrice string `mapstructure:"breakfast_price" validate:"required"`
	Currency       string `mapstructure:"currency" validate:"len=3"`
}

// Settings converts the booking section to the engine's settings.
func (b BookingConfig) Settings() (generic.BookingSettings, error) {
	price, err := generic.ParseMoney(b.BreakfastPrice)
	if err != nil {
		return generic.BookingSettings{}, fmt.Errorf("booking.breakfast_price: %w", err)
	}
	return generic.BookingSettings{
		MinNights:      b.MinNights,
		MaxNights:      b.MaxNights,
		BreakfastPrice: price,
	}, nil
}

func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// Load reads the configuration. path may be empty to use ./config/config.yaml
// when present.
func Load(path string) (*Config, error) {
	// .env is optional
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath("./config")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

var validate = validator.New()

// Validate checks field rules and that the booking settings parse.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if _, err := c.Booking.Settings(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	// Server
	v.SetDefault("server.host", "")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 15*time.Second)
	v.SetDefault("server.idle_timeout", 60*time.Second)
	v.SetDefault("server.request_timeout", 10*time.Second)
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000", "http://localhost:5173"})

	// Log
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Store
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.sqlite.path", "./data/cabins.db")
	v.SetDefault("store.postgres.dsn", "")
	v.SetDefault("store.postgres.host", "localhost")
	v.SetDefault("store.postgres.port", 5432)
	v.SetDefault("store.postgres.user", "cabins")
	v.SetDefault("store.postgres.password", "")
	v.SetDefault("store.postgres.dbname", "cabins")
	v.SetDefault("store.postgres.sslmode", "disable")
	v.SetDefault("store.postgres.max_open_conns", 25)
	v.SetDefault("store.postgres.max_idle_conns", 5)
	v.SetDefault("store.postgres.conn_max_lifetime", 5*time.Minute)

	// Redis
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.cache_ttl", 10*time.Minute)

	// Kafka
	v.SetDefault("kafka.enabled", false)
	v.SetDefault("kafka.brokers", []string{"localhost:9092"})
	v.SetDefault("kafka.topic", "cabin.bookings.audit")

	// Auth
	v.SetDefault("auth.jwt_secret", "dev-secret-change-me-in-production")
	v.SetDefault("auth.token_ttl", 24*time.Hour)
	v.SetDefault("auth.dev_tokens", false)

	// Booking
	v.SetDefault("booking.min_nights", 1)
	v.SetDefault("booking.max_nights", 90)
	v.SetDefault("booking.breakfast_price", "15.00")
	v.SetDefault("booking.currency", "EUR")
}
