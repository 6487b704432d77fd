package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/ferndock-labs/kbsync-cli/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/ferndock-labs/kbsync-cli/internal/core/domain"
	"github.com/ferndock-labs/kbsync-cli/internal/core/ports/driven"
)

// Store is a SQLite-based storage that provides access to the metadata
// store interfaces through wrapper types.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.kbsync/data/metadata.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".kbsync", "data")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "metadata.db")

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	// Run migrations
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// PendingJobStore returns a PendingJobStore interface backed by this
// store.
func (s *Store) PendingJobStore() driven.PendingJobStore {
	return &pendingJobStore{store: s}
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	// Ensure schema_migrations table exists
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	// Find all up migrations
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	// Sort and run migrations
	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		// Read and execute migration
		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(
			"INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// ==================== Pending Job Store ====================

// pendingJobStore implements driven.PendingJobStore.
type pendingJobStore struct {
	store *Store
}

var _ driven.PendingJobStore = (*pendingJobStore)(nil)

// pendingJobPayload is the JSON row representation of a PendingJobSet.
type pendingJobPayload struct {
	PollingFiles []string             `json:"polling_files"`
	RequestTimes map[string]time.Time `json:"request_times"`
}

// Get retrieves the tenant's pending job set. A tenant with no saved
// row gets an empty set.
func (s *pendingJobStore) Get(ctx context.Context, tenantID string) (domain.PendingJobSet, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT payload FROM pending_jobs WHERE tenant_id = ?
	`, tenantID)

	var payloadJSON string
	if err := row.Scan(&payloadJSON); err != nil {
		if err == sql.ErrNoRows {
			return domain.NewPendingJobSet(), nil
		}
		return domain.PendingJobSet{}, fmt.Errorf("scanning pending jobs: %w", err)
	}

	var payload pendingJobPayload
	if err := json.Unmarshal([]byte(payloadJSON), &payload); err != nil {
		return domain.PendingJobSet{}, fmt.Errorf("unmarshaling pending jobs: %w", err)
	}

	set := domain.NewPendingJobSet()
	for _, fileName := range payload.PollingFiles {
		set.Add(fileName, payload.RequestTimes[fileName])
	}
	return set, nil
}

// Set replaces the tenant's pending job set in one write.
func (s *pendingJobStore) Set(ctx context.Context, tenantID string, set domain.PendingJobSet) error {
	payloadJSON, err := json.Marshal(pendingJobPayload{
		PollingFiles: set.PollingFiles,
		RequestTimes: set.RequestTimes,
	})
	if err != nil {
		return fmt.Errorf("marshalling pending jobs: %w", err)
	}

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO pending_jobs (tenant_id, payload, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(tenant_id) DO UPDATE SET
			payload = excluded.payload,
			updated_at = excluded.updated_at
	`, tenantID, string(payloadJSON), time.Now().UTC())

	if err != nil {
		return fmt.Errorf("saving pending jobs: %w", err)
	}
	return nil
}
