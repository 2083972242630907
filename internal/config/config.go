// Package config loads runtime configuration from the environment.
// Defaults are chosen so the server runs with no configuration at all:
// an embedded SQLite file next to the binary and the built-in attendance
// windows.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/kozaktomas/face-attendance/internal/attendance"
)

type Config struct {
	Server     ServerConfig
	Store      StoreConfig
	Matching   MatchingConfig
	Attendance AttendanceConfig
}

type ServerConfig struct {
	Host string
	Port int
}

type StoreConfig struct {
	Driver       string // "sqlite" (default) or "postgres"
	SQLitePath   string // database file for the sqlite backend
	DatabaseURL  string // connection URL for the postgres backend
	EmbeddingDim int    // fixed vector dimension for this deployment
}

// MatchingConfig carries the two ordered tier cut points. Both boundaries
// are deployment tuning, not engine constants.
type MatchingConfig struct {
	HighThreshold   float64
	MediumThreshold float64
}

type AttendanceConfig struct {
	WindowsFile string // optional YAML override for the hour windows
	Windows     attendance.Windows
}

// envStr reads an environment variable with a default.
func envStr(key, defaultVal string) string {
	if s := os.Getenv(key); s != "" {
		return s
	}
	return defaultVal
}

// envInt reads an environment variable and parses it as a positive integer.
// Returns the default value if the env var is unset, empty, or invalid.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return defaultVal
}

// envFloat reads an environment variable and parses it as a float.
// Returns the default value if the env var is unset, empty, or invalid.
func envFloat(key string, defaultVal float64) float64 {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return defaultVal
}

// Load builds the configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host: envStr("SERVER_HOST", "0.0.0.0"),
			Port: envInt("SERVER_PORT", 8000),
		},
		Store: StoreConfig{
			Driver:       envStr("STORE_DRIVER", "sqlite"),
			SQLitePath:   envStr("SQLITE_PATH", "attendance.db"),
			DatabaseURL:  os.Getenv("DATABASE_URL"),
			EmbeddingDim: envInt("EMBEDDING_DIM", 512),
		},
		Matching: MatchingConfig{
			HighThreshold:   envFloat("MATCH_HIGH_THRESHOLD", 0.75),
			MediumThreshold: envFloat("MATCH_MEDIUM_THRESHOLD", 0.5),
		},
		Attendance: AttendanceConfig{
			WindowsFile: os.Getenv("ATTENDANCE_WINDOWS_FILE"),
		},
	}

	if cfg.Attendance.WindowsFile != "" {
		windows, err := attendance.LoadWindows(cfg.Attendance.WindowsFile)
		if err != nil {
			return nil, fmt.Errorf("loading attendance windows: %w", err)
		}
		cfg.Attendance.Windows = windows
	} else {
		cfg.Attendance.Windows = attendance.DefaultWindows()
	}

	if cfg.Matching.MediumThreshold >= cfg.Matching.HighThreshold {
		return nil, fmt.Errorf("MATCH_MEDIUM_THRESHOLD (%v) must be below MATCH_HIGH_THRESHOLD (%v)",
			cfg.Matching.MediumThreshold, cfg.Matching.HighThreshold)
	}

	return cfg, nil
}
