package store

import (
	"encoding/json"
	"os"
	"slices"
	"sync"

	"github.com/rs/zerolog"
)

// Blacklist manages the persisted set of blocked chat identities. Entries
// are canonical JID strings; the canon function maps raw document entries
// to canonical form on load and drops the ones it can't resolve.
type Blacklist struct {
	log  zerolog.Logger
	path string

	mu      sync.Mutex
	entries []string
}

// LoadBlacklist reads the blacklist document. Entries are passed through
// canon; duplicates and unresolvable entries are dropped.
func LoadBlacklist(log zerolog.Logger, path string, canon func(string) (string, bool)) *Blacklist {
	b := &Blacklist{
		log:  log.With().Str("component", "blacklist").Logger(),
		path: path,
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			b.log.Warn().Err(err).Str("path", path).Msg("Failed to load blacklist, starting empty")
		}
		return b
	}
	var entries []string
	if err = json.Unmarshal(raw, &entries); err != nil {
		b.log.Warn().Err(err).Str("path", path).Msg("Failed to parse blacklist, starting empty")
		return b
	}
	for _, entry := range entries {
		if canon != nil {
			var ok bool
			if entry, ok = canon(entry); !ok {
				continue
			}
		}
		if !slices.Contains(b.entries, entry) {
			b.entries = append(b.entries, entry)
		}
	}
	return b
}

// Contains reports whether the canonical identity is blacklisted.
func (b *Blacklist) Contains(jid string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Contains(b.entries, jid)
}

// Add inserts an identity and persists the document. Returns false if the
// identity was already present, in which case nothing is written.
func (b *Blacklist) Add(jid string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if slices.Contains(b.entries, jid) {
		return false
	}
	b.entries = append(b.entries, jid)
	b.save()
	return true
}

// Remove deletes an identity and persists the document. Returns false if
// the identity was not present, in which case nothing is written.
func (b *Blacklist) Remove(jid string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	idx := slices.Index(b.entries, jid)
	if idx < 0 {
		return false
	}
	b.entries = slices.Delete(b.entries, idx, idx+1)
	b.save()
	return true
}

// Entries returns a copy of the current membership set.
func (b *Blacklist) Entries() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, len(b.entries))
	copy(out, b.entries)
	return out
}

// save writes the document. Persistence failures are logged, never fatal.
// Callers must hold b.mu.
func (b *Blacklist) save() {
	entries := b.entries
	if entries == nil {
		entries = []string{}
	}
	raw, err := json.MarshalIndent(entries, "", "  ")
	if err == nil {
		err = os.WriteFile(b.path, raw, 0644)
	}
	if err != nil {
		b.log.Error().Err(err).Str("path", b.path).Msg("Failed to save blacklist")
	}
}
