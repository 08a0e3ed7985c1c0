package persist

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/mini-world/internal/migrate"
)

// SaveStats counts save-request outcomes (Section 4.B: "statistics
// (counts of immediate/debounced/errors) are exposed for observability").
// Immediate and Debounced count calls to SaveWorld by kind, not the
// number of writes actually reaching disk — a burst of debounced calls
// coalesces into one write but still counts as many debounced requests.
type SaveStats struct {
	Immediate int64
	Debounced int64
	Errors    int64
}

// Store is the persistence façade (Section 4.B): the only authorized path
// to the document file, plus a secondary SQLite archive for events and
// stats history. Grounded on the teacher's internal/persistence/db.go for
// the archive half (table shape; each write is a single statement, with no
// explicit transaction); the debounced
// document half implements the spec's §4.B contract directly, since the
// teacher persists everything straight to SQLite and has no document-file
// debounce mechanism to borrow.
type Store struct {
	path           string
	debounceWindow time.Duration

	mu      sync.Mutex
	doc     *Document
	pending *time.Timer

	archive *sqlx.DB

	statsMu sync.Mutex
	stats   SaveStats
}

// Open loads or creates the document at docPath (applying migrations) and
// opens the archival SQLite store at archivePath.
func Open(docPath, archivePath string, debounceWindow time.Duration) (*Store, error) {
	archive, err := sqlx.Open("sqlite", archivePath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	if err := ensureArchiveSchema(archive); err != nil {
		archive.Close()
		return nil, fmt.Errorf("migrate archive: %w", err)
	}

	doc, err := loadDocument(docPath)
	if err != nil {
		archive.Close()
		return nil, err
	}

	return &Store{
		path:           docPath,
		debounceWindow: debounceWindow,
		doc:            doc,
		archive:        archive,
	}, nil
}

// Close flushes any pending write and closes the archive connection.
func (s *Store) Close() error {
	s.FlushAllSaves()
	return s.archive.Close()
}

// Document returns the live, mutable document. Callers must respect the
// world-mutation invariant described in Section 5 (Store itself holds no
// lock across a caller's mutation — only around its own write/debounce
// bookkeeping).
func (s *Store) Document() *Document {
	return s.doc
}

// loadDocument reads the document file, migrating it to the current
// schema version. A missing file yields a fresh Document (Section 4.A).
func loadDocument(path string) (*Document, error) {
	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return NewDocument(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}

	var raw map[string]any
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}

	migrated, version, err := migrate.Run(raw)
	if err != nil {
		return nil, fmt.Errorf("migrate document: %w", err)
	}

	mb, err := json.Marshal(migrated)
	if err != nil {
		return nil, fmt.Errorf("remarshal migrated document: %w", err)
	}
	var doc Document
	if err := json.Unmarshal(mb, &doc); err != nil {
		return nil, fmt.Errorf("decode migrated document: %w", err)
	}
	slog.Info("document loaded", "path", path, "schema_version", version)
	return &doc, nil
}

// SaveWorld implements the Section 4.B save_world(world, path, debounced)
// entry point. debounced=false forces an immediate write; debounced=true
// (re)schedules a write after the debounce window, coalescing with any
// already-pending write.
func (s *Store) SaveWorld(debounced bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !debounced {
		s.statsMu.Lock()
		s.stats.Immediate++
		s.statsMu.Unlock()
		if s.pending != nil {
			s.pending.Stop()
			s.pending = nil
		}
		s.writeLocked()
		return
	}

	s.statsMu.Lock()
	s.stats.Debounced++
	s.statsMu.Unlock()
	if s.pending != nil {
		s.pending.Stop()
	}
	s.pending = time.AfterFunc(s.debounceWindow, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.writeLocked()
		s.pending = nil
	})
}

// FlushAllSaves implements flush_all_saves(): blocks briefly to emit any
// pending debounced write. Used on shutdown and at critical moments
// (account creation, logout, purge).
func (s *Store) FlushAllSaves() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending != nil {
		s.pending.Stop()
		s.pending = nil
		s.writeLocked()
	}
}

// writeLocked performs the atomic write. Must be called with s.mu held.
// Save failures are best-effort (Section 4.B: "logged, not propagated").
func (s *Store) writeLocked() {
	if err := atomicWriteJSON(s.path, s.doc); err != nil {
		s.statsMu.Lock()
		s.stats.Errors++
		s.statsMu.Unlock()
		slog.Error("world save failed", "path", s.path, "error", err)
	}
}

// Stats returns a snapshot of the save counters.
func (s *Store) Stats() SaveStats {
	s.statsMu.Lock()
	defer s.statsMu.Unlock()
	return s.stats
}

// atomicWriteJSON writes v to path via write-temp-then-rename (Section
// 6.3: "Write is atomic (temp-file + rename)").
func atomicWriteJSON(path string, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if dir == "" {
		dir = "."
	}
	tmp, err := os.CreateTemp(dir, ".tinymud-save-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return os.Rename(tmpPath, path)
}
