package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"mdnotes-server/internal/domain"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Notes     NotesConfig     `yaml:"notes"`
	WebSocket WebSocketConfig `yaml:"websocket"`
	CORS      CORSConfig      `yaml:"cors"`
	Logging   LoggingConfig   `yaml:"logging"`
}

type ServerConfig struct {
	Port            string        `yaml:"port" validate:"required,numeric"`
	Host            string        `yaml:"host"`
	Env             string        `yaml:"env" validate:"required"`
	ReadTimeout     time.Duration `yaml:"read_timeout" validate:"gt=0"`
	WriteTimeout    time.Duration `yaml:"write_timeout" validate:"gt=0"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" validate:"gt=0"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" validate:"gt=0"`
}

type NotesConfig struct {
	Dir          string `yaml:"dir" validate:"required"`
	Pattern      string `yaml:"pattern" validate:"required"`
	SeedName     string `yaml:"seed_name" validate:"required"`
	MaxBodyBytes int64  `yaml:"max_body_bytes" validate:"gt=0"`
}

type WebSocketConfig struct {
	MaxConnections int           `yaml:"max_connections" validate:"gte=0"`
	MaxMessageSize int64         `yaml:"max_message_size" validate:"gt=0"`
	WriteWait      time.Duration `yaml:"write_wait" validate:"gt=0"`
	PongWait       time.Duration `yaml:"pong_wait" validate:"gt=0"`
	PingPeriod     time.Duration `yaml:"ping_period" validate:"gt=0,ltfield=PongWait"`
}

type CORSConfig struct {
	AllowedOrigins string `yaml:"allowed_origins"`
	AllowedMethods string `yaml:"allowed_methods"`
	AllowedHeaders string `yaml:"allowed_headers"`
}

type LoggingConfig struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" validate:"omitempty,oneof=console json"`
}

// Load builds the configuration from defaults, an optional YAML file at path
// and the environment (a .env file is honoured when present), in that order
// of increasing precedence.
func Load(path string) (*Config, error) {
	godotenv.Load()

	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            "8000",
			Host:            "0.0.0.0",
			Env:             "development",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
		},
		Notes: NotesConfig{
			Dir:          "notes",
			Pattern:      "*.md",
			SeedName:     "welcome.md",
			MaxBodyBytes: 10 << 20,
		},
		WebSocket: WebSocketConfig{
			MaxConnections: 100,
			MaxMessageSize: 4096,
			WriteWait:      10 * time.Second,
			PongWait:       60 * time.Second,
			PingPeriod:     54 * time.Second,
		},
		CORS: CORSConfig{
			AllowedOrigins: "*",
			AllowedMethods: "GET,POST,DELETE,OPTIONS",
			AllowedHeaders: "Content-Type,X-Request-ID",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

func (c *Config) applyEnv() error {
	c.Server.Port = getEnv("PORT", c.Server.Port)
	c.Server.Host = getEnv("HOST", c.Server.Host)
	c.Server.Env = getEnv("ENV", c.Server.Env)

	var err error
	if c.Server.ReadTimeout, err = getEnvAsDuration("READ_TIMEOUT", c.Server.ReadTimeout); err != nil {
		return err
	}
	if c.Server.WriteTimeout, err = getEnvAsDuration("WRITE_TIMEOUT", c.Server.WriteTimeout); err != nil {
		return err
	}
	if c.Server.IdleTimeout, err = getEnvAsDuration("IDLE_TIMEOUT", c.Server.IdleTimeout); err != nil {
		return err
	}
	if c.Server.ShutdownTimeout, err = getEnvAsDuration("SHUTDOWN_TIMEOUT", c.Server.ShutdownTimeout); err != nil {
		return err
	}

	c.Notes.Dir = getEnv("NOTES_DIR", c.Notes.Dir)
	c.Notes.Pattern = getEnv("NOTES_PATTERN", c.Notes.Pattern)
	c.Notes.SeedName = getEnv("NOTES_SEED_NAME", c.Notes.SeedName)
	if c.Notes.MaxBodyBytes, err = getEnvAsInt64("NOTES_MAX_BODY_BYTES", c.Notes.MaxBodyBytes); err != nil {
		return err
	}

	maxConns, err := getEnvAsInt64("WS_MAX_CONNECTIONS", int64(c.WebSocket.MaxConnections))
	if err != nil {
		return err
	}
	c.WebSocket.MaxConnections = int(maxConns)
	if c.WebSocket.MaxMessageSize, err = getEnvAsInt64("WS_MAX_MESSAGE_SIZE", c.WebSocket.MaxMessageSize); err != nil {
		return err
	}

	c.CORS.AllowedOrigins = getEnv("CORS_ALLOWED_ORIGINS", c.CORS.AllowedOrigins)
	c.CORS.AllowedMethods = getEnv("CORS_ALLOWED_METHODS", c.CORS.AllowedMethods)
	c.CORS.AllowedHeaders = getEnv("CORS_ALLOWED_HEADERS", c.CORS.AllowedHeaders)

	c.Logging.Level = getEnv("LOG_LEVEL", c.Logging.Level)
	c.Logging.Format = getEnv("LOG_FORMAT", c.Logging.Format)

	return nil
}

// Validate checks the final configuration, after command line overrides.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	// Saves always store "<name>.md", so the listing pattern must cover them.
	sample := "note" + domain.NoteExtension
	if ok, err := doublestar.Match(c.Notes.Pattern, sample); err != nil || !ok {
		return fmt.Errorf("invalid configuration: notes pattern %q does not match %s files", c.Notes.Pattern, domain.NoteExtension)
	}
	return nil
}

func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%s", c.Server.Host, c.Server.Port)
}

func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) (int64, error) {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue, nil
	}
	value, err := strconv.ParseInt(valueStr, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return value, nil
}

func getEnvAsDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue, nil
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return value, nil
}
