// Package store owns the durable configuration documents of the bot: the
// settings object and the chat blacklist. Both persist to JSON files on
// every mutation and fall back to in-memory defaults when the files are
// missing or unreadable.
package store

import (
	"encoding/json"
	"errors"
	"os"
	"sync"

	"github.com/rs/zerolog"
)

// DefaultMaxFileSizeMB is applied when no settings document exists.
const DefaultMaxFileSizeMB = 50

type settingsData struct {
	MaxFileSizeMB int      `json:"maxFileSizeMB"`
	AdminJIDs     []string `json:"adminJids,omitempty"`
}

// Settings manages the persisted settings document
type Settings struct {
	log  zerolog.Logger
	path string

	mu   sync.Mutex
	data settingsData
}

// LoadSettings reads the settings document, applying defaults for missing
// fields. A missing or corrupt file is logged and replaced by defaults.
func LoadSettings(log zerolog.Logger, path string) *Settings {
	s := &Settings{
		log:  log.With().Str("component", "settings").Logger(),
		path: path,
		data: settingsData{MaxFileSizeMB: DefaultMaxFileSizeMB},
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.log.Warn().Err(err).Str("path", path).Msg("Failed to load settings, using defaults")
		}
		return s
	}
	var data settingsData
	if err = json.Unmarshal(raw, &data); err != nil {
		s.log.Warn().Err(err).Str("path", path).Msg("Failed to parse settings, using defaults")
		return s
	}
	if data.MaxFileSizeMB <= 0 {
		data.MaxFileSizeMB = DefaultMaxFileSizeMB
	}
	s.data = data
	return s
}

// MaxFileSizeMB returns the configured download size ceiling in megabytes.
func (s *Settings) MaxFileSizeMB() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.MaxFileSizeMB
}

// SetMaxFileSizeMB updates the size ceiling and persists the document.
// The value must be positive.
func (s *Settings) SetMaxFileSizeMB(mb int) error {
	if mb <= 0 {
		return errors.New("max file size must be positive")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.MaxFileSizeMB = mb
	s.save()
	return nil
}

// AdminJIDs returns a copy of the configured admin list.
func (s *Settings) AdminJIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.data.AdminJIDs))
	copy(out, s.data.AdminJIDs)
	return out
}

// save writes the document. Persistence failures are logged, never fatal.
// Callers must hold s.mu.
func (s *Settings) save() {
	raw, err := json.MarshalIndent(s.data, "", "  ")
	if err == nil {
		err = os.WriteFile(s.path, raw, 0644)
	}
	if err != nil {
		s.log.Error().Err(err).Str("path", s.path).Msg("Failed to save settings")
	}
}
