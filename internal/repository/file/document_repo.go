package file

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/dafibh/homebudget/homebudget-backend/internal/domain"
	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// Editors and our own rename-based saves produce several events per change
const watchDebounce = 100 * time.Millisecond

// DocumentRepository implements domain.DocumentRepository with a JSON file on disk
type DocumentRepository struct {
	path   string
	logger zerolog.Logger

	mu        sync.Mutex
	lastWrite [sha256.Size]byte
	written   bool
}

// NewDocumentRepository creates a repository backed by the file at path
func NewDocumentRepository(path string, logger zerolog.Logger) *DocumentRepository {
	return &DocumentRepository{
		path:   path,
		logger: logger.With().Str("component", "file_repository").Str("path", path).Logger(),
	}
}

// Path returns the document file path
func (r *DocumentRepository) Path() string {
	return r.path
}

// Load reads and decodes the document. A missing file is an empty document.
func (r *DocumentRepository) Load(ctx context.Context) (*domain.Document, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			r.logger.Info().Msg("No document file yet, starting empty")
			return domain.NewDocument(), nil
		}
		return nil, fmt.Errorf("read document: %w", err)
	}

	doc, warnings, err := domain.DecodeDocument(data)
	if err != nil {
		return nil, err
	}
	for _, w := range warnings {
		r.logger.Warn().Str("section", w.Section).Str("category", w.Category).Err(w.Err).Msg("Reset malformed document section")
	}
	return doc, nil
}

// Save writes the document atomically: a temp file in the same directory is renamed over the target
func (r *DocumentRepository) Save(ctx context.Context, doc *domain.Document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}

	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(r.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if err := os.Rename(tmpName, r.path); err != nil {
		return fmt.Errorf("replace document: %w", err)
	}
	r.lastWrite = sha256.Sum256(data)
	r.written = true
	return nil
}

// Watch calls onChange after the file is changed by another process. Changes whose
// content matches this repository's last save are ignored. Watching stops when ctx is done.
func (r *DocumentRepository) Watch(ctx context.Context, onChange func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}

	// Watch the directory: rename-based saves replace the file's inode
	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		watcher.Close()
		return fmt.Errorf("create data directory: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	go r.runWatcher(ctx, watcher, onChange)
	r.logger.Info().Msg("Watching document file for external changes")
	return nil
}

func (r *DocumentRepository) runWatcher(ctx context.Context, watcher *fsnotify.Watcher, onChange func()) {
	var debounceTimer *time.Timer
	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
		_ = watcher.Close()
	}()

	target := filepath.Clean(r.path)

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}

			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(watchDebounce, func() {
				if ctx.Err() != nil {
					return
				}
				if r.ownWrite() {
					return
				}
				r.logger.Info().Msg("Document changed on disk")
				onChange()
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			r.logger.Error().Err(err).Msg("File watcher error")
		}
	}
}

// ownWrite reports whether the file content is what this repository last saved
func (r *DocumentRepository) ownWrite() bool {
	data, err := os.ReadFile(r.path)
	if err != nil {
		// Removed or mid-replace; the follow-up create event decides
		return true
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.written {
		return false
	}
	sum := sha256.Sum256(data)
	return bytes.Equal(sum[:], r.lastWrite[:])
}
