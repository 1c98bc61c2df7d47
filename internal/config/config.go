package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the site server.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Session  SessionConfig  `mapstructure:"session"`
	Admin    AdminConfig    `mapstructure:"admin"`
	Mail     MailConfig     `mapstructure:"mail"`
	NATS     NATSConfig     `mapstructure:"nats"`
	Game     GameConfig     `mapstructure:"game"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	Host        string        `mapstructure:"host"`
	Port        int           `mapstructure:"port"`
	PublicURL   string        `mapstructure:"public_url"`
	AppURL      string        `mapstructure:"app_url"`
	CORSOrigins []string      `mapstructure:"cors_origins"`
	StaticDir   string        `mapstructure:"static_dir"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// DatabaseConfig holds PostgreSQL configuration. An empty DSN keeps
// everything in memory.
type DatabaseConfig struct {
	DSN      string `mapstructure:"dsn"`
	MaxConns int32  `mapstructure:"max_conns"`
	MinConns int32  `mapstructure:"min_conns"`
}

// RedisConfig holds Redis configuration. An empty address keeps sessions
// in memory.
type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type SessionConfig struct {
	CookieName string        `mapstructure:"cookie_name"`
	TTL        time.Duration `mapstructure:"ttl"`
	Secure     bool          `mapstructure:"secure"`
}

type AdminConfig struct {
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	Email    string `mapstructure:"email"`
}

type MailConfig struct {
	Driver   string `mapstructure:"driver"` // log, smtp or nats
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
	To       string `mapstructure:"to"`
}

type NATSConfig struct {
	URL           string        `mapstructure:"url"`
	Subject       string        `mapstructure:"subject"`
	MaxReconnects int           `mapstructure:"max_reconnects"`
	ReconnectWait time.Duration `mapstructure:"reconnect_wait"`
}

type GameConfig struct {
	ThinkDelay time.Duration `mapstructure:"think_delay"`
	AckDelay   time.Duration `mapstructure:"ack_delay"`
	WinPoints  int           `mapstructure:"win_points"`
	MaxTables  int           `mapstructure:"max_tables"`
	IdleTTL    time.Duration `mapstructure:"idle_ttl"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

var defaults = map[string]any{
	"server.host":         "0.0.0.0",
	"server.port":         5000,
	"server.public_url":   "http://localhost:5000",
	"server.app_url":      "",
	"server.cors_origins": []string{},
	"server.static_dir":   "",
	"server.timeout":      30 * time.Second,

	"database.dsn":       "",
	"database.max_conns": 10,
	"database.min_conns": 1,

	"redis.address":  "",
	"redis.password": "",
	"redis.db":       0,

	"session.cookie_name": "essayons.sid",
	"session.ttl":         24 * time.Hour,
	"session.secure":      false,

	"admin.username": "admin",
	"admin.password": "admin123",
	"admin.email":    "admin@essayons.com",

	"mail.driver":   "log",
	"mail.host":     "",
	"mail.port":     587,
	"mail.username": "",
	"mail.password": "",
	"mail.from":     "noreply@essayons.com",
	"mail.to":       "info@essayons.com",

	"nats.url":            "",
	"nats.subject":        "essayons.contact",
	"nats.max_reconnects": 10,
	"nats.reconnect_wait": 2 * time.Second,

	"game.think_delay": 1500 * time.Millisecond,
	"game.ack_delay":   2 * time.Second,
	"game.win_points":  15,
	"game.max_tables":  500,
	"game.idle_ttl":    2 * time.Hour,

	"log.level":  "info",
	"log.format": "json",
}

// Load reads defaults, then the optional YAML file at path, then environment
// variables. Keys map to variables by upper-casing and replacing dots with
// underscores, so server.port is SERVER_PORT.
func Load(path string) (*Config, error) {
	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.Server.CORSOrigins = splitList(cfg.Server.CORSOrigins)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

// Validate checks the values that would make the server misbehave.
func (c *Config) Validate() error {
	var errs []error
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("invalid server port: %d", c.Server.Port))
	}
	switch c.Mail.Driver {
	case "log":
	case "smtp":
		if c.Mail.Host == "" {
			errs = append(errs, errors.New("mail.host is required for the smtp driver"))
		}
	case "nats":
		if c.NATS.URL == "" {
			errs = append(errs, errors.New("nats.url is required for the nats mail driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown mail driver %q", c.Mail.Driver))
	}
	if c.Game.ThinkDelay < 0 || c.Game.AckDelay < 0 {
		errs = append(errs, errors.New("game delays must not be negative"))
	}
	if c.Game.WinPoints < 1 {
		errs = append(errs, fmt.Errorf("invalid win points: %d", c.Game.WinPoints))
	}
	if c.Session.TTL <= 0 {
		errs = append(errs, errors.New("session.ttl must be positive"))
	}
	if c.Admin.Username == "" || c.Admin.Password == "" {
		errs = append(errs, errors.New("admin username and password are required"))
	}
	return errors.Join(errs...)
}

// Addr is the listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// splitList accepts both YAML lists and a single comma separated
// environment value.
func splitList(in []string) []string {
	var out []string
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}
