// Package duckdb persists workflow result tables to a DuckDB database so
// they can be queried after the run. The analysis itself stays in memory;
// the store is an output artifact like the exported diagrams.
package duckdb

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/marcboeker/go-duckdb"
)

// Store manages a DuckDB connection for workflow results.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens or creates a DuckDB database at the given path.
// Use an empty string for an in-memory database.
func Open(path string) (*Store, error) {
	if path != "" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create results directory: %w", err)
		}
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}

	s := &Store{db: db, path: path}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for direct access.
func (s *Store) DB() *sql.DB {
	return s.db
}

// ensureSchema creates tables if they don't exist.
func (s *Store) ensureSchema() error {
	if _, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS module_overlap (
		cohort_a VARCHAR,
		module_a INTEGER,
		cohort_b VARCHAR,
		module_b INTEGER,
		genes VARCHAR,
		p_value DOUBLE,
		fdr DOUBLE,
		PRIMARY KEY (cohort_a, module_a, cohort_b, module_b)
	)`); err != nil {
		return err
	}
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS pathway_enrichment (
		group_name VARCHAR,
		pathway VARCHAR,
		p_value DOUBLE,
		fdr DOUBLE,
		PRIMARY KEY (group_name, pathway)
	)`)
	return err
}
