// Package msglog appends one JSON line per inbound message to a per-day
// log file. The log is write-only; nothing in the bot reads it back.
package msglog

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
)

// Entry is one message log record.
type Entry struct {
	Timestamp time.Time
	ID        string
	From      string
	Author    string // set for group messages, empty otherwise
	Body      string
	Type      string
}

// Logger writes entries under a logs directory, one file per day.
type Logger struct {
	dir string
}

// New creates a message logger writing into dir.
func New(dir string) *Logger {
	return &Logger{dir: dir}
}

// Append writes the entry to the day's file. Failures are returned so the
// caller can log them; they must never abort message routing.
func (l *Logger) Append(e Entry) error {
	day := e.Timestamp.UTC().Format("2006-01-02")
	path := filepath.Join(l.dir, day+".log")
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open message log: %w", err)
	}
	defer f.Close()

	logger := zerolog.New(f)
	logger.Log().
		Str("timestamp", e.Timestamp.UTC().Format(time.RFC3339)).
		Str("id", e.ID).
		Str("from", e.From).
		Str("author", e.Author).
		Str("body", e.Body).
		Str("type", e.Type).
		Send()
	return nil
}
