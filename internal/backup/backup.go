// Package backup bundles the bot's durable state (session, logs, media
// working dir) into dated zip archives, on a weekly schedule or on demand.
package backup

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// ErrBackupRunning is returned when a run is requested while another one is
// still writing. Manual and scheduled runs share the same destination name,
// so they are never allowed to overlap.
var ErrBackupRunning = errors.New("backup already running")

// Source is one directory to include in the archive.
type Source struct {
	Path string // directory on disk
	Name string // top-level name inside the archive
}

// Archiver produces dated backup archives.
type Archiver struct {
	log     zerolog.Logger
	outDir  string
	sources []Source

	mu sync.Mutex // run-in-progress guard
}

// NewArchiver creates an archiver writing into outDir.
func NewArchiver(log zerolog.Logger, outDir string, sources []Source) *Archiver {
	return &Archiver{
		log:     log.With().Str("component", "backup").Logger(),
		outDir:  outDir,
		sources: sources,
	}
}

// Run creates backup-YYYY-MM-DD.zip in the output directory and returns its
// path. Source directories that do not exist are skipped. A second run on
// the same day overwrites the previous archive.
func (a *Archiver) Run() (string, error) {
	if !a.mu.TryLock() {
		return "", ErrBackupRunning
	}
	defer a.mu.Unlock()

	name := fmt.Sprintf("backup-%s.zip", time.Now().Format("2006-01-02"))
	outPath := filepath.Join(a.outDir, name)

	f, err := os.Create(outPath)
	if err != nil {
		return "", fmt.Errorf("failed to create archive: %w", err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	for _, src := range a.sources {
		info, err := os.Stat(src.Path)
		if err != nil || !info.IsDir() {
			continue
		}
		if err = addDir(zw, src.Path, src.Name); err != nil {
			zw.Close()
			return "", fmt.Errorf("failed to archive %s: %w", src.Path, err)
		}
	}
	if err = zw.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize archive: %w", err)
	}
	a.log.Info().Str("path", outPath).Msg("Backup created")
	return outPath, nil
}

func addDir(zw *zip.Writer, root, prefix string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		w, err := zw.Create(filepath.ToSlash(filepath.Join(prefix, rel)))
		if err != nil {
			return err
		}
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		_, err = io.Copy(w, f)
		return err
	})
}
