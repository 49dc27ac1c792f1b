package conf

import (
	"os"
	"path/filepath"
	"strings"
)

// Config represents application configuration
type Config struct {
	// OwnerJID is the bot owner, always treated as an admin
	OwnerJID string

	// AdminJIDs are additional admins supplied via environment
	AdminJIDs []string

	// DataDir is the root for videos, logs, backups and config documents
	DataDir string

	// SessionDBPath is the WhatsApp session database
	SessionDBPath string

	// Debug mode
	Debug bool
}

// LoadFromEnv loads configuration from environment variables
func LoadFromEnv() *Config {
	dataDir := os.Getenv("DATA_DIR")
	if dataDir == "" {
		dataDir = "."
	}

	sessionDBPath := os.Getenv("SESSION_DB_PATH")
	if sessionDBPath == "" {
		sessionDBPath = filepath.Join(dataDir, "session", "wpvdbot.db")
	}

	var admins []string
	if val := os.Getenv("ADMIN_JIDS"); val != "" {
		for _, part := range strings.Split(val, ",") {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				admins = append(admins, trimmed)
			}
		}
	}

	return &Config{
		OwnerJID:      os.Getenv("OWNER_JID"),
		AdminJIDs:     admins,
		DataDir:       dataDir,
		SessionDBPath: sessionDBPath,
		Debug:         os.Getenv("DEBUG") == "true",
	}
}

// VideosDir is the working directory for downloaded media
func (c *Config) VideosDir() string {
	return filepath.Join(c.DataDir, "videos")
}

// LogsDir holds the per-day message logs
func (c *Config) LogsDir() string {
	return filepath.Join(c.DataDir, "logs")
}

// BackupsDir holds dated backup archives
func (c *Config) BackupsDir() string {
	return filepath.Join(c.DataDir, "backups")
}

// SessionDir is the directory containing the session database
func (c *Config) SessionDir() string {
	return filepath.Dir(c.SessionDBPath)
}

// SettingsPath is the persisted settings document
func (c *Config) SettingsPath() string {
	return filepath.Join(c.DataDir, "settings.json")
}

// BlacklistPath is the persisted blacklist document
func (c *Config) BlacklistPath() string {
	return filepath.Join(c.DataDir, "blacklist.json")
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.OwnerJID == "" {
		return &ConfigError{Field: "OWNER_JID", Message: "required"}
	}
	return nil
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Field + ": " + e.Message
}
