package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/codefionn/chatwire/internal/consts"
)

// Config represents chat service configuration. The zero value is not
// usable; start from DefaultConfig or Load.
type Config struct {
	// ListenHost is the address the server binds to, without the port.
	// The port always comes from the command line.
	ListenHost string `json:"listen_host"`

	// FrameLimitBytes is the maximum length of one encoded wire frame
	FrameLimitBytes int `json:"frame_limit_bytes"`

	// QueueWaitSeconds is the bounded wait of a delivery-queue consumer
	QueueWaitSeconds int `json:"queue_wait_seconds"`

	// MaxConns limits concurrent client connections; 0 means unlimited
	MaxConns int `json:"max_conns"`

	// HTTPAddr enables the websocket gateway when non-empty, e.g. ":8936"
	HTTPAddr string `json:"http_addr,omitempty"`

	LogLevel string `json:"log_level"` // debug, info, warn, error, none
	LogPath  string `json:"log_path,omitempty"`
}

// DefaultConfig returns configuration with documented defaults. The frame
// limit and queue wait defaults match the historical protocol constants.
func DefaultConfig() *Config {
	return &Config{
		ListenHost:       "",
		FrameLimitBytes:  consts.DefaultFrameLimit,
		QueueWaitSeconds: int(consts.DefaultQueueWait / time.Second),
		MaxConns:         0,
		LogLevel:         "info",
	}
}

// QueueWait returns the queue wait as a duration
func (c *Config) QueueWait() time.Duration {
	if c.QueueWaitSeconds <= 0 {
		return consts.DefaultQueueWait
	}
	return time.Duration(c.QueueWaitSeconds) * time.Second
}

// Load reads configuration from path, falling back to defaults when the
// file does not exist, then applies .env and environment overrides.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := json.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
			}
		case os.IsNotExist(err):
			// no config file is fine, keep defaults
		default:
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	// .env in the working directory, if present, feeds the env overrides
	_ = godotenv.Load()

	cfg.applyEnv()

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration as indented JSON
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	if v := strings.TrimSpace(os.Getenv("CHATWIRE_LISTEN_HOST")); v != "" {
		c.ListenHost = v
	}
	if v := strings.TrimSpace(os.Getenv("CHATWIRE_FRAME_LIMIT")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.FrameLimitBytes = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("CHATWIRE_QUEUE_WAIT")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.QueueWaitSeconds = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("CHATWIRE_MAX_CONNS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			c.MaxConns = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("CHATWIRE_HTTP_ADDR")); v != "" {
		c.HTTPAddr = v
	}
	if v := strings.TrimSpace(os.Getenv("CHATWIRE_LOG_LEVEL")); v != "" {
		c.LogLevel = v
	}
	if v := strings.TrimSpace(os.Getenv("CHATWIRE_LOG_PATH")); v != "" {
		c.LogPath = v
	}
}

func (c *Config) validate() error {
	// a frame must at least hold a tag, the separator and the terminator
	if c.FrameLimitBytes < 16 {
		return fmt.Errorf("frame_limit_bytes must be at least 16, got %d", c.FrameLimitBytes)
	}
	if c.QueueWaitSeconds < 0 {
		return fmt.Errorf("queue_wait_seconds must not be negative, got %d", c.QueueWaitSeconds)
	}
	if c.MaxConns < 0 {
		return fmt.Errorf("max_conns must not be negative, got %d", c.MaxConns)
	}
	return nil
}
