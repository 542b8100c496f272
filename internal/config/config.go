package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// ServerConfig holds server configuration
type ServerConfig struct {
	Port          string `json:"port"`
	MongoURI      string `json:"mongo_uri"`
	MongoDatabase string `json:"mongo_database"`

	// Session settings
	JWTSecret  string        `json:"jwt_secret"`
	SessionTTL time.Duration `json:"session_ttl"`

	// Connection settings
	ReadTimeout       time.Duration `json:"read_timeout"`
	WriteTimeout      time.Duration `json:"write_timeout"`
	PongTimeout       time.Duration `json:"pong_timeout"`
	HeartbeatInterval time.Duration `json:"heartbeat_interval"`
	SendBuffer        int           `json:"send_buffer"`
	MaxConnections    int           `json:"max_connections"`

	// Security settings
	MaxMessageLength  int           `json:"max_message_length"`
	MaxUsernameLength int           `json:"max_username_length"`
	MaxRoomNameLength int           `json:"max_room_name_length"`
	RateLimitMessages int           `json:"rate_limit_messages"`
	RateLimitWindow   time.Duration `json:"rate_limit_window"`
	EnableRateLimit   bool          `json:"enable_rate_limit"`
}

// DefaultServerConfig returns default server configuration
func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		Port:          ":9090",
		MongoURI:      "", // ว่าง = ใช้ in-memory user store
		MongoDatabase: "online_chat",

		JWTSecret:  "change-me-in-production",
		SessionTTL: 24 * time.Hour,

		ReadTimeout:       60 * time.Second,
		WriteTimeout:      10 * time.Second,
		PongTimeout:       60 * time.Second,
		HeartbeatInterval: 54 * time.Second,
		SendBuffer:        256,
		MaxConnections:    1000,

		MaxMessageLength:  1000,
		MaxUsernameLength: 50,
		MaxRoomNameLength: 50,
		RateLimitMessages: 10,
		RateLimitWindow:   1 * time.Minute,
		EnableRateLimit:   true,
	}
}

// LoadConfig loads configuration from an optional JSON file and applies
// environment variable overrides on top of it.
func LoadConfig(path string) (*ServerConfig, error) {
	cfg := DefaultServerConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %v", err)
		}
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %v", err)
		}
	}

	// Env overrides สำหรับค่าที่ต่างกันในแต่ละ environment
	if port := os.Getenv("PORT"); port != "" {
		if port[0] != ':' {
			port = ":" + port
		}
		cfg.Port = port
	}
	if uri := os.Getenv("MONGO_URI"); uri != "" {
		cfg.MongoURI = uri
	}
	if db := os.Getenv("MONGO_DATABASE"); db != "" {
		cfg.MongoDatabase = db
	}
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		cfg.JWTSecret = secret
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %v", err)
	}

	return cfg, nil
}

// Validate checks configuration values
func (c *ServerConfig) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("port is required")
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("jwt secret is required")
	}
	if c.SendBuffer <= 0 {
		return fmt.Errorf("send buffer must be positive")
	}
	if c.MaxMessageLength <= 0 || c.MaxUsernameLength <= 0 || c.MaxRoomNameLength <= 0 {
		return fmt.Errorf("length limits must be positive")
	}
	return nil
}
