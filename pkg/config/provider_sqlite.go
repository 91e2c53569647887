package config

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"
)

// SQLiteProvider implements PlanProvider for plans kept in a run archive. Every archived
// run carries the plan it was simulated from, so any run can be planned again.
type SQLiteProvider struct {
	db     *sql.DB
	dbPath string
	runID  string
}

// NewSQLiteProvider opens the archive at dbPath. runID selects the run whose plan is
// loaded; empty means the newest run.
func NewSQLiteProvider(dbPath, runID string) (*SQLiteProvider, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping SQLite database: %w", err)
	}

	return &SQLiteProvider{
		db:     db,
		dbPath: dbPath,
		runID:  runID,
	}, nil
}

// LoadPlan reads the archived plan and validates it
func (s *SQLiteProvider) LoadPlan() (*PlanData, error) {
	var (
		planYAML string
		err      error
	)
	if s.runID == "" {
		err = s.db.QueryRow("SELECT plan FROM runs ORDER BY created_at DESC, rowid DESC LIMIT 1").Scan(&planYAML)
	} else {
		err = s.db.QueryRow("SELECT plan FROM runs WHERE id = ?", s.runID).Scan(&planYAML)
	}
	if errors.Is(err, sql.ErrNoRows) {
		if s.runID == "" {
			return nil, fmt.Errorf("archive %s has no runs", s.dbPath)
		}
		return nil, fmt.Errorf("archive %s has no run %s", s.dbPath, s.runID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query archived plan: %w", err)
	}

	plan, err := DecodeYAML(strings.NewReader(planYAML))
	if err != nil {
		return nil, fmt.Errorf("archived plan: %w", err)
	}
	return plan, nil
}

// IsReadOnly returns true; plans are written by the archive when a run is saved
func (s *SQLiteProvider) IsReadOnly() bool {
	return true
}

// Close closes the database connection
func (s *SQLiteProvider) Close() error {
	return s.db.Close()
}
