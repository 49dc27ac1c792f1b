// Package downloader runs the external yt-dlp tool and admits the result
// against the configured size ceiling. The size hint passed to yt-dlp is an
// optimization only; the authoritative check is the post-download stat.
package downloader

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// DefaultBinary is the yt-dlp executable looked up on PATH.
const DefaultBinary = "yt-dlp"

// ErrNoFile is returned when yt-dlp exits without producing a file, which
// usually means the link is private, removed or region-locked.
var ErrNoFile = errors.New("no downloaded file found")

// SizeHinter supplies the current size ceiling in megabytes.
type SizeHinter interface {
	MaxFileSizeMB() int
}

// Downloader fetches remote videos into a working directory.
type Downloader struct {
	log      zerolog.Logger
	dir      string
	binary   string
	settings SizeHinter
}

// New creates a downloader writing into dir.
func New(log zerolog.Logger, dir string, settings SizeHinter) *Downloader {
	return &Downloader{
		log:      log.With().Str("component", "downloader").Logger(),
		dir:      dir,
		binary:   DefaultBinary,
		settings: settings,
	}
}

// Fetch downloads the given URL and returns the local file path. Exactly
// one file is produced per successful call; the caller owns its removal.
func (d *Downloader) Fetch(ctx context.Context, url, platform string) (string, error) {
	stem := fmt.Sprintf("%s_%d", platform, time.Now().UnixMilli())
	template := filepath.Join(d.dir, stem+".%(ext)s")

	d.log.Info().Str("platform", platform).Str("url", url).Msg("Downloading video")
	args := []string{
		"-o", template,
		// 720p cap keeps the output WhatsApp-friendly
		"-f", "best[height<=720]/best",
		"--max-filesize", fmt.Sprintf("%dM", d.settings.MaxFileSizeMB()),
		url,
	}
	cmd := exec.CommandContext(ctx, d.binary, args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		d.log.Error().Err(err).Str("platform", platform).Str("output", tail(string(out), 400)).Msg("yt-dlp failed")
		return "", fmt.Errorf("yt-dlp: %w", err)
	}

	path, err := d.findDownloaded(stem)
	if err != nil {
		return "", err
	}
	return path, nil
}

// findDownloaded locates the produced file by its name stem; the extension
// is chosen by yt-dlp and not known up front.
func (d *Downloader) findDownloaded(stem string) (string, error) {
	entries, err := os.ReadDir(d.dir)
	if err != nil {
		return "", fmt.Errorf("failed to scan download dir: %w", err)
	}
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasPrefix(entry.Name(), stem) {
			return filepath.Join(d.dir, entry.Name()), nil
		}
	}
	return "", ErrNoFile
}

// FileSizeMB stats the file and returns its size in megabytes.
func FileSizeMB(path string) (float64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, fmt.Errorf("failed to stat download: %w", err)
	}
	return float64(info.Size()) / (1024 * 1024), nil
}

func tail(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
