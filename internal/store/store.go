package store

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// Store defines the interface for trained model persistence.
type Store interface {
	// Init opens the database and runs migrations.
	Init() error

	// SaveModel atomically replaces the owner's model slot.
	SaveModel(rec ModelRecord) error

	// LoadModel retrieves the model for an owner. Returns ErrNoModel when
	// the slot is empty.
	LoadModel(owner string) (*ModelRecord, error)

	// ListModels returns metadata for all stored models, newest first.
	ListModels() ([]ModelInfo, error)

	// Cleanup removes models older than the retention period.
	Cleanup(retention time.Duration) error

	// Close closes the database connection.
	Close() error
}

// SQLiteStore implements Store using SQLite (modernc.org/sqlite, pure Go).
//
// Multiple worker processes open the same database file concurrently, so the
// connection enables WAL and a busy timeout: writers replace a model slot in
// a single transaction and readers snapshot-read, which means a predict call
// never observes a partially written model.
type SQLiteStore struct {
	db       *sql.DB
	dbPath   string
	enabled  bool
	mu       sync.Mutex
	initOnce sync.Once
}

// NewStore creates a store backed by the database at dbPath. The parent
// directory is created on Init if missing.
func NewStore(dbPath string) *SQLiteStore {
	return &SQLiteStore{
		dbPath:  dbPath,
		enabled: true,
	}
}

// Init opens the database and runs migrations.
//
// If initialization fails the store is disabled: loads report ErrNoModel so
// prediction degrades to its fallback scoring, while saves fail loudly so a
// train call never pretends to have persisted anything.
func (s *SQLiteStore) Init() error {
	if !s.enabled {
		return nil
	}

	var initErr error
	s.initOnce.Do(func() {
		dbDir := filepath.Dir(s.dbPath)
		if err := os.MkdirAll(dbDir, 0755); err != nil {
			initErr = fmt.Errorf("failed to create db directory: %w", err)
			s.enabled = false
			return
		}

		dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", s.dbPath)
		db, err := sql.Open("sqlite", dsn)
		if err != nil {
			initErr = fmt.Errorf("failed to open database: %w", err)
			s.enabled = false
			log.Printf("Warning: %v", initErr)
			return
		}
		s.db = db

		if err := db.Ping(); err != nil {
			initErr = fmt.Errorf("failed to ping database: %w", err)
			s.enabled = false
			log.Printf("Warning: %v", initErr)
			return
		}

		if err := s.runMigrations(); err != nil {
			initErr = fmt.Errorf("failed to run migrations: %w", err)
			s.enabled = false
			log.Printf("Warning: %v", initErr)
			return
		}
	})

	return initErr
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if !s.enabled || s.db == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	s.db = nil
	return nil
}
