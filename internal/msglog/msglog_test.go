package msglog

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLogger_Append_DayFileAndFields(t *testing.T) {
	dir := t.TempDir()
	l := New(dir)

	ts := time.Date(2026, 8, 30, 14, 5, 0, 0, time.UTC)
	err := l.Append(Entry{
		Timestamp: ts,
		ID:        "3EB0ABCDEF",
		From:      "120363401359968775@g.us",
		Author:    "905551234567@s.whatsapp.net",
		Body:      "merhaba",
		Type:      "text",
	})
	if err != nil {
		t.Fatal(err)
	}

	raw, err := os.ReadFile(filepath.Join(dir, "2026-08-30.log"))
	if err != nil {
		t.Fatalf("day file was not written: %v", err)
	}
	var rec map[string]string
	if err = json.Unmarshal(raw, &rec); err != nil {
		t.Fatalf("log line is not valid JSON: %v", err)
	}
	if rec["id"] != "3EB0ABCDEF" || rec["from"] != "120363401359968775@g.us" ||
		rec["author"] != "905551234567@s.whatsapp.net" || rec["body"] != "merhaba" || rec["type"] != "text" {
		t.Errorf("unexpected record: %v", rec)
	}
	if rec["timestamp"] != "2026-08-30T14:05:00Z" {
		t.Errorf("timestamp = %q, want RFC3339 UTC", rec["timestamp"])
	}
}

func TestLogger_Append_AppendsLines(t *testing.T) {
	dir := t.TempDir()
	l := New(dir)
	ts := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)

	for _, id := range []string{"A", "B"} {
		if err := l.Append(Entry{Timestamp: ts, ID: id, Type: "text"}); err != nil {
			t.Fatal(err)
		}
	}
	raw, err := os.ReadFile(filepath.Join(dir, "2026-08-30.log"))
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	if len(lines) != 2 {
		t.Errorf("got %d lines, want 2", len(lines))
	}
}
