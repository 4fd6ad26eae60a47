package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	HTTP          HTTPConfig          `yaml:"http"`
	Database      DatabaseConfig      `yaml:"database"`
	Redis         RedisConfig         `yaml:"redis"`
	Kafka         KafkaConfig         `yaml:"kafka"`
	Auth          AuthConfig          `yaml:"auth"`
	Booking       BookingConfig       `yaml:"booking"`
	Notifications NotificationsConfig `yaml:"notifications"`
}

type HTTPConfig struct {
	Address         string `yaml:"address"`
	SwaggerDir      string `yaml:"swagger_dir"`
	ShutdownSeconds int    `yaml:"shutdown_seconds"`
}

type DatabaseConfig struct {
	// DSN, when set, wins over the individual fields.
	DSN      string `yaml:"dsn"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"ssl_mode"`
}

func (d DatabaseConfig) ConnString() string {
	if d.DSN != "" {
		return d.DSN
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s", d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type KafkaConfig struct {
	Brokers            []string `yaml:"brokers"`
	EventsTopic        string   `yaml:"events_topic"`
	NotificationsTopic string   `yaml:"notifications_topic"`
	GroupID            string   `yaml:"group_id"`
}

type AuthConfig struct {
	JWTSecret string `yaml:"jwt_secret"`
	Issuer    string `yaml:"issuer"`
	TokenTTL  int    `yaml:"token_ttl_minutes"`
}

type BookingConfig struct {
	// CloseMissionOnConfirm moves a mission to ASSIGNED on its first confirmed
	// booking, which stops further applications. Off by default.
	CloseMissionOnConfirm  bool `yaml:"close_mission_on_confirm"`
	MissionsCacheTTLSecond int  `yaml:"missions_cache_ttl_seconds"`
	MaxPageSize            int  `yaml:"max_page_size"`
	// SideEffectTimeoutMillis bounds each notification, event and cache call
	// made after a write has committed.
	SideEffectTimeoutMillis int `yaml:"side_effect_timeout_ms"`
}

type NotificationsConfig struct {
	InboxSize     int `yaml:"inbox_size"`
	InboxTTLHours int `yaml:"inbox_ttl_hours"`
}

func (c BookingConfig) MissionsCacheTTL() time.Duration {
	return time.Duration(c.MissionsCacheTTLSecond) * time.Second
}

func (c BookingConfig) SideEffectTimeout() time.Duration {
	return time.Duration(c.SideEffectTimeoutMillis) * time.Millisecond
}

func (c AuthConfig) TTL() time.Duration {
	return time.Duration(c.TokenTTL) * time.Minute
}

func (c NotificationsConfig) InboxTTL() time.Duration {
	return time.Duration(c.InboxTTLHours) * time.Hour
}

func (c HTTPConfig) ShutdownTimeout() time.Duration {
	return time.Duration(c.ShutdownSeconds) * time.Second
}

// LoadConfig reads .env (if present), then the YAML file at path, then
// applies environment overrides and defaults.
func LoadConfig(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnv()
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Path returns CONFIG_PATH or config.yaml.
func Path() string {
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		return p
	}
	return "config.yaml"
}

func (c *Config) applyEnv() {
	if v := os.Getenv("JWT_SECRET"); v != "" {
		c.Auth.JWTSecret = v
	}
	if v := os.Getenv("DATABASE_DSN"); v != "" {
		c.Database.DSN = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
	}
}

func (c *Config) applyDefaults() {
	if c.HTTP.Address == "" {
		c.HTTP.Address = ":8080"
	}
	if c.HTTP.ShutdownSeconds <= 0 {
		c.HTTP.ShutdownSeconds = 5
	}
	if c.Auth.Issuer == "" {
		c.Auth.Issuer = "carestaff"
	}
	if c.Auth.TokenTTL <= 0 {
		c.Auth.TokenTTL = 60
	}
	if c.Booking.MissionsCacheTTLSecond <= 0 {
		c.Booking.MissionsCacheTTLSecond = 30
	}
	if c.Booking.MaxPageSize <= 0 {
		c.Booking.MaxPageSize = 100
	}
	if c.Booking.SideEffectTimeoutMillis <= 0 {
		c.Booking.SideEffectTimeoutMillis = 2000
	}
	if c.Kafka.EventsTopic == "" {
		c.Kafka.EventsTopic = "booking-events"
	}
	if c.Kafka.NotificationsTopic == "" {
		c.Kafka.NotificationsTopic = "notifications"
	}
	if c.Kafka.GroupID == "" {
		c.Kafka.GroupID = "carestaff-worker"
	}
	if c.Notifications.InboxSize <= 0 {
		c.Notifications.InboxSize = 100
	}
}

func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return errors.New("auth.jwt_secret (or JWT_SECRET) is required")
	}
	if c.Database.DSN == "" && c.Database.Host == "" {
		return errors.New("database.dsn or database.host is required")
	}
	return nil
}
