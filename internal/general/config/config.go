package config

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

// Config holds every knob the simulator's ambient stack needs. Only
// Simulation has to resolve to something usable; the rest of the sections
// are opt-in collaborators (a database, a broker, an admin API) and are
// left disabled (port zero) unless the file sets them.
type Config struct {
	Simulation struct {
		DayStartMinutes   int
		DayEndMinutes     int
		TickMinutes       int
		LockWindowMinutes int
		InstantSeed       int64
		PaceMS            int
	}
	Database struct {
		Host     string
		Port     int
		User     string
		Password string
		Name     string // YAML key: "database"
	}
	RabbitMQ struct {
		Host     string
		Port     int
		User     string
		Password string
	}
	WebSocket struct {
		Port int
	}
	Admin struct {
		Port int
	}
	JWT struct {
		SecretKey string `yaml:"secret_key"`
	}
}

// LoadFromFile loads config from a YAML file to a Config struct, applies defaults, and validates required fields.
func LoadFromFile(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	var cfg Config
	if err := parseYAML(file, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyDefaults(&cfg)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// Default returns a Config with every simulation default applied and every
// optional collaborator left disabled, for runs with no --config flag.
func Default() *Config {
	var cfg Config
	applyDefaults(&cfg)
	return &cfg
}

// applyDefaults sets safe defaults for some fields.
func applyDefaults(cfg *Config) {
	if cfg.Simulation.DayStartMinutes == 0 {
		cfg.Simulation.DayStartMinutes = 6 * 60
	}
	if cfg.Simulation.DayEndMinutes == 0 {
		cfg.Simulation.DayEndMinutes = 19 * 60
	}
	if cfg.Simulation.TickMinutes == 0 {
		cfg.Simulation.TickMinutes = 30
	}
	if cfg.Simulation.LockWindowMinutes == 0 {
		cfg.Simulation.LockWindowMinutes = 120
	}
	if cfg.Simulation.InstantSeed == 0 {
		cfg.Simulation.InstantSeed = 1
	}

	// Database, RabbitMQ, WebSocket and Admin stay disabled (port 0) unless
	// the config file opts in; only fill in a host so a later dial has
	// something sane to try.
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.RabbitMQ.Host == "" {
		cfg.RabbitMQ.Host = "localhost"
	}

	if cfg.JWT.SecretKey == "" {
		key := make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			// fallback: time-based bytes
			key = []byte(fmt.Sprintf("%d", time.Now().UnixNano()))
		}
		cfg.JWT.SecretKey = base64.StdEncoding.EncodeToString(key)
	}
}

// validate checks ranges on whatever sections are actually enabled. A
// section with port 0 is considered switched off and is not validated.
func (c *Config) validate() error {
	var problems []string

	if c.Simulation.DayStartMinutes < 0 || c.Simulation.DayEndMinutes <= c.Simulation.DayStartMinutes {
		problems = append(problems, "simulation.day_end must be after simulation.day_start")
	}
	if c.Simulation.TickMinutes <= 0 {
		problems = append(problems, "simulation.tick_minutes must be positive")
	}
	if c.Simulation.LockWindowMinutes < 0 {
		problems = append(problems, "simulation.lock_window_minutes cannot be negative")
	}

	if c.Database.Port != 0 {
		if c.Database.Port < 0 || c.Database.Port > 65535 {
			problems = append(problems, "database.port must be in 1..65535")
		}
		if c.Database.User == "" {
			problems = append(problems, "database.user is required when database.port is set")
		}
		if c.Database.Name == "" {
			problems = append(problems, "database.name is required when database.port is set")
		}
	}

	if c.RabbitMQ.Port != 0 && (c.RabbitMQ.Port < 0 || c.RabbitMQ.Port > 65535) {
		problems = append(problems, "rabbitmq.port must be in 1..65535")
	}

	if c.WebSocket.Port != 0 && (c.WebSocket.Port < 0 || c.WebSocket.Port > 65535) {
		problems = append(problems, "websocket.port must be in 1..65535")
	}

	if c.Admin.Port != 0 && (c.Admin.Port < 0 || c.Admin.Port > 65535) {
		problems = append(problems, "admin.port must be in 1..65535")
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}
