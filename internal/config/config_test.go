package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Port != ":9090" {
		t.Errorf("Port = %q, want :9090", cfg.Port)
	}
	if !cfg.EnableRateLimit {
		t.Error("EnableRateLimit = false, want true by default")
	}
}

func TestLoadConfig_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"port": ":8080", "max_message_length": 500}`), 0o644); err != nil {
		t.Fatalf("write config file: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Port != ":8080" {
		t.Errorf("Port = %q, want :8080", cfg.Port)
	}
	if cfg.MaxMessageLength != 500 {
		t.Errorf("MaxMessageLength = %d, want 500", cfg.MaxMessageLength)
	}
	// ค่าอื่นยังเป็น default
	if cfg.MaxUsernameLength != 50 {
		t.Errorf("MaxUsernameLength = %d, want default 50", cfg.MaxUsernameLength)
	}
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "7070")
	t.Setenv("JWT_SECRET", "env-secret")

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Port != ":7070" {
		t.Errorf("Port = %q, want :7070 (colon added)", cfg.Port)
	}
	if cfg.JWTSecret != "env-secret" {
		t.Errorf("JWTSecret = %q, want env-secret", cfg.JWTSecret)
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	if _, err := LoadConfig("/does/not/exist.json"); err == nil {
		t.Error("LoadConfig() = nil error for missing file")
	}
}

func TestRateLimiter(t *testing.T) {
	cfg := DefaultServerConfig()
	cfg.RateLimitMessages = 2
	cfg.RateLimitWindow = time.Hour
	rl := NewRateLimiter(cfg)

	if !rl.Allow("conn-1") || !rl.Allow("conn-1") {
		t.Fatal("Allow() = false within limit")
	}
	if rl.Allow("conn-1") {
		t.Error("Allow() = true past limit")
	}

	// Connection อื่นมี window ของตัวเอง
	if !rl.Allow("conn-2") {
		t.Error("Allow(conn-2) = false, want independent window")
	}

	rl.Forget("conn-1")
	if !rl.Allow("conn-1") {
		t.Error("Allow() = false after Forget")
	}
}

func TestRateLimiter_Disabled(t *testing.T) {
	cfg := DefaultServerConfig()
	cfg.EnableRateLimit = false
	cfg.RateLimitMessages = 1
	rl := NewRateLimiter(cfg)

	for i := 0; i < 5; i++ {
		if !rl.Allow("conn-1") {
			t.Fatal("Allow() = false with rate limiting disabled")
		}
	}
}

func TestServerMetrics(t *testing.T) {
	m := NewServerMetrics()

	m.IncrementConnections()
	m.IncrementConnections()
	m.DecrementConnections()
	m.IncrementUsers()
	m.IncrementMessages()
	m.IncrementRooms()

	snap := m.Snapshot()
	if snap.TotalConnections != 2 {
		t.Errorf("TotalConnections = %d, want 2", snap.TotalConnections)
	}
	if snap.ActiveConnections != 1 {
		t.Errorf("ActiveConnections = %d, want 1", snap.ActiveConnections)
	}
	if snap.OnlineUsers != 1 {
		t.Errorf("OnlineUsers = %d, want 1", snap.OnlineUsers)
	}
	if snap.TotalMessages != 1 {
		t.Errorf("TotalMessages = %d, want 1", snap.TotalMessages)
	}
	if snap.TotalRooms != 1 {
		t.Errorf("TotalRooms = %d, want 1", snap.TotalRooms)
	}
}
