// Package storage provides the SQLite-backed rule store for the
// classification pipeline.
package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/finwell-app/finwell/internal/model"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteStore implements the service.RuleStore interface using SQLite.
type SQLiteStore struct {
	db        *sql.DB
	dbPath    string
	ruleCache map[string][]model.ClassificationRule
	cacheMu   sync.RWMutex
}

// NewSQLiteStore creates a new SQLite rule store at the given path.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if err := validateString(dbPath, "dbPath"); err != nil {
		return nil, err
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite doesn't benefit from multiple connections.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &SQLiteStore{
		db:        db,
		dbPath:    dbPath,
		ruleCache: make(map[string][]model.ClassificationRule),
	}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// InvalidateRules drops the cached rule list for a user. Called after any
// rule write so the next read goes through to the database.
func (s *SQLiteStore) InvalidateRules(userID string) {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	delete(s.ruleCache, userID)
}

func (s *SQLiteStore) cachedRules(userID string) ([]model.ClassificationRule, bool) {
	s.cacheMu.RLock()
	defer s.cacheMu.RUnlock()
	rules, ok := s.ruleCache[userID]
	return rules, ok
}

func (s *SQLiteStore) cacheRules(userID string, rules []model.ClassificationRule) {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	s.ruleCache[userID] = rules
}
