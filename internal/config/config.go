// Package config loads the service configuration from the environment.
//
// Variables are read with the RENTALS_ prefix (an optional `.env` file is
// loaded first), mapped onto the Config struct through koanf and validated
// with go-playground/validator so the process fails fast on bad input.
//
// Nesting is expressed with a double underscore:
//
//	RENTALS_SERVER__PORT=8080        -> server.port
//	RENTALS_STORE__DRIVER=mongo      -> store.driver
//	RENTALS_MONGO__URI=mongodb://... -> mongo.uri
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	_ "github.com/joho/godotenv/autoload"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is the prefix every configuration variable must carry.
const EnvPrefix = "RENTALS_"

// Config is the root configuration object.
//
// Blocks that only matter for one store driver carry no `required` tags at
// the root; Validate checks them against the selected driver instead.
type Config struct {
	Primary       Primary              `koanf:"primary" validate:"required"`
	Server        ServerConfig         `koanf:"server" validate:"required"`
	Store         StoreConfig          `koanf:"store"`
	Database      DatabaseConfig       `koanf:"database" validate:"-"`
	Mongo         MongoConfig          `koanf:"mongo" validate:"-"`
	Redis         RedisConfig          `koanf:"redis"`
	Integration   IntegrationConfig    `koanf:"integration"`
	Notifications NotificationsConfig  `koanf:"notifications"`
	RateLimit     RateLimitConfig      `koanf:"rate_limit"`
	Observability *ObservabilityConfig `koanf:"observability"`
}

// Primary holds top-level information about the runtime environment.
type Primary struct {
	Env string `koanf:"env" validate:"required"`
}

// ServerConfig groups HTTP listener settings. Timeouts are in seconds.
type ServerConfig struct {
	Port               string   `koanf:"port" validate:"required"`
	ReadTimeout        int      `koanf:"read_timeout" validate:"required"`
	WriteTimeout       int      `koanf:"write_timeout" validate:"required"`
	IdleTimeout        int      `koanf:"idle_timeout" validate:"required"`
	CORSAllowedOrigins []string `koanf:"cors_allowed_origins" validate:"required"`

	// StaticDir holds openapi.html and other files served under /static.
	StaticDir string `koanf:"static_dir"`
}

// Store drivers.
const (
	DriverMemory   = "memory"
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
)

// StoreConfig selects the document store backend.
type StoreConfig struct {
	Driver string `koanf:"driver" validate:"required,oneof=memory mongo postgres redis"`

	// OperationTimeout bounds every single store round trip.
	OperationTimeout time.Duration `koanf:"operation_timeout" validate:"min=0"`
}

// DatabaseConfig contains PostgreSQL connection parameters and pool tuning.
// Only used when the store driver is "postgres".
type DatabaseConfig struct {
	Host            string `koanf:"host" validate:"required"`
	Port            int    `koanf:"port" validate:"required"`
	User            string `koanf:"user" validate:"required"`
	Password        string `koanf:"password" validate:"required"`
	Name            string `koanf:"name" validate:"required"`
	SSLMode         string `koanf:"ssl_mode" validate:"required"`
	MaxOpenConns    int    `koanf:"max_open_conns" validate:"required"`
	MaxIdleConns    int    `koanf:"max_idle_conns" validate:"required"`
	ConnMaxLifetime int    `koanf:"conn_max_lifetime" validate:"required"`
	ConnMaxIdleTime int    `koanf:"conn_max_idle_time" validate:"required"`
}

// MongoConfig contains MongoDB connection details. Only used when the store
// driver is "mongo".
type MongoConfig struct {
	URI            string        `koanf:"uri" validate:"required"`
	Database       string        `koanf:"database" validate:"required"`
	ConnectTimeout time.Duration `koanf:"connect_timeout" validate:"min=0"`
}

// RedisConfig contains Redis connection details. Address is "host:port".
// Redis is required by the "redis" store driver and by notifications.
type RedisConfig struct {
	Address  string `koanf:"address"`
	Password string `koanf:"password"`
	DB       int    `koanf:"db" validate:"min=0"`
}

// IntegrationConfig holds third-party API credentials.
type IntegrationConfig struct {
	ResendAPIKey string `koanf:"resend_api_key"`
}

// NotificationsConfig controls the welcome email sent when a user is created.
type NotificationsConfig struct {
	Enabled      bool   `koanf:"enabled"`
	FromAddress  string `koanf:"from_address"`
	TemplatesDir string `koanf:"templates_dir"`
}

// RateLimitConfig configures the per-IP request limiter.
type RateLimitConfig struct {
	Enabled   bool          `koanf:"enabled"`
	Rate      float64       `koanf:"rate" validate:"min=0"`
	Burst     int           `koanf:"burst" validate:"min=0"`
	ExpiresIn time.Duration `koanf:"expires_in" validate:"min=0"`
}

// envKey maps RENTALS_SERVER__READ_TIMEOUT to server.read_timeout.
func envKey(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "__", ".")
}

// listKeys are parsed as comma separated lists.
var listKeys = map[string]bool{
	"server.cors_allowed_origins":        true,
	"observability.health_checks.checks": true,
}

func envValue(s, v string) (string, interface{}) {
	key := envKey(s)
	if listKeys[key] {
		parts := strings.Split(v, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return key, parts
	}
	return key, v
}

// LoadConfig reads RENTALS_* environment variables, applies defaults for the
// optional blocks and validates the result.
func LoadConfig() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(env.ProviderWithValue(EnvPrefix, ".", envValue), nil); err != nil {
		return nil, fmt.Errorf("could not load env variables: %w", err)
	}

	mainConfig := &Config{}
	if err := k.Unmarshal("", mainConfig); err != nil {
		return nil, fmt.Errorf("could not unmarshal config: %w", err)
	}

	mainConfig.applyDefaults()

	if err := mainConfig.Validate(); err != nil {
		return nil, err
	}

	return mainConfig, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == "" {
		c.Server.Port = "8080"
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 30
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 30
	}
	if c.Server.IdleTimeout == 0 {
		c.Server.IdleTimeout = 60
	}
	if len(c.Server.CORSAllowedOrigins) == 0 {
		c.Server.CORSAllowedOrigins = []string{"*"}
	}
	if c.Server.StaticDir == "" {
		c.Server.StaticDir = "static"
	}

	if c.Store.Driver == "" {
		c.Store.Driver = DriverMemory
	}
	if c.Store.OperationTimeout == 0 {
		c.Store.OperationTimeout = 10 * time.Second
	}

	if c.Mongo.Database == "" {
		c.Mongo.Database = "rentals"
	}
	if c.Mongo.ConnectTimeout == 0 {
		c.Mongo.ConnectTimeout = 10 * time.Second
	}

	if c.Notifications.TemplatesDir == "" {
		c.Notifications.TemplatesDir = "templates/emails"
	}
	if c.Notifications.FromAddress == "" {
		c.Notifications.FromAddress = "Rentals <onboarding@resend.dev>"
	}

	if c.RateLimit.Rate == 0 {
		c.RateLimit.Rate = 20
	}
	if c.RateLimit.Burst == 0 {
		c.RateLimit.Burst = 40
	}
	if c.RateLimit.ExpiresIn == 0 {
		c.RateLimit.ExpiresIn = 3 * time.Minute
	}

	if c.Observability == nil {
		c.Observability = DefaultObservabilityConfig()
	}
	c.Observability.ServiceName = ServiceName
	c.Observability.Environment = c.Primary.Env
	if c.Observability.Logging.Format == "" {
		c.Observability.Logging.Format = "json"
	}
	if c.Observability.HealthChecks.Timeout == 0 {
		c.Observability.HealthChecks.Timeout = 5 * time.Second
	}
	if c.Observability.HealthChecks.Interval == 0 {
		c.Observability.HealthChecks.Interval = 30 * time.Second
	}
	if len(c.Observability.HealthChecks.Checks) == 0 {
		c.Observability.HealthChecks.Checks = []string{"store", "redis"}
	}
}

// Validate checks struct tags and the rules that depend on the selected
// store driver.
func (c *Config) Validate() error {
	validate := validator.New()

	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	switch c.Store.Driver {
	case DriverPostgres:
		if err := validate.Struct(c.Database); err != nil {
			return fmt.Errorf("database config required for postgres store: %w", err)
		}
	case DriverMongo:
		if err := validate.Struct(c.Mongo); err != nil {
			return fmt.Errorf("mongo config required for mongo store: %w", err)
		}
	case DriverRedis:
		if c.Redis.Address == "" {
			return fmt.Errorf("redis.address is required for redis store")
		}
	}

	if c.Notifications.Enabled {
		if c.Redis.Address == "" {
			return fmt.Errorf("redis.address is required when notifications are enabled")
		}
		if c.Integration.ResendAPIKey == "" {
			return fmt.Errorf("integration.resend_api_key is required when notifications are enabled")
		}
	}

	if err := c.Observability.Validate(); err != nil {
		return fmt.Errorf("invalid observability config: %w", err)
	}

	return nil
}

// RedisRequired reports whether some component needs a Redis connection.
func (c *Config) RedisRequired() bool {
	return c.Store.Driver == DriverRedis || c.Notifications.Enabled
}
