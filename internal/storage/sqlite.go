package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/hyperjump/dialname/internal/contacts"
	"github.com/hyperjump/dialname/internal/models"
)

// SQLiteStorage implements Storage using SQLite.
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage opens or creates a SQLite database at dbPath and initializes the schema.
// Parent directories are created if they do not exist.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteStorage{db: db}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS contacts (
		id TEXT PRIMARY KEY,
		display_name TEXT NOT NULL,
		number TEXT NOT NULL,
		normalized_number TEXT NOT NULL,
		type INTEGER NOT NULL DEFAULT 2,
		label TEXT NOT NULL DEFAULT '',
		source TEXT NOT NULL DEFAULT '',
		source_mtime INTEGER NOT NULL DEFAULT 0,
		source_size INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_contacts_display_name ON contacts(display_name COLLATE NOCASE);
	CREATE INDEX IF NOT EXISTS idx_contacts_normalized_number ON contacts(normalized_number);
	CREATE INDEX IF NOT EXISTS idx_contacts_source ON contacts(source);
	`
	_, err := db.Exec(schema)
	return err
}

const contactColumns = `id, display_name, number, normalized_number, type, label,
	source, source_mtime, source_size, created_at, updated_at`

// Contacts come back in display-name order; rowid keeps insertion order among equal names.
const contactOrder = `ORDER BY display_name COLLATE NOCASE, display_name, rowid`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanContact(row rowScanner) (*models.ContactRecord, error) {
	var c models.ContactRecord
	err := row.Scan(&c.ID, &c.DisplayName, &c.Number, &c.NormalizedNumber, &c.Type, &c.Label,
		&c.Source, &c.SourceMtime, &c.SourceSize, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func scanContacts(rows *sql.Rows) ([]*models.ContactRecord, error) {
	defer rows.Close()
	var out []*models.ContactRecord
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// prepare fills the ID, normalized number and timestamps of a new record.
func prepare(c *models.ContactRecord, now time.Time) {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	c.NormalizedNumber = contacts.NormalizeNumber(c.Number)
	c.CreatedAt = now
	c.UpdatedAt = now
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertContact(ctx context.Context, db execer, c *models.ContactRecord) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO contacts (`+contactColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.DisplayName, c.Number, c.NormalizedNumber, c.Type, c.Label,
		c.Source, c.SourceMtime, c.SourceSize, c.CreatedAt, c.UpdatedAt,
	)
	return err
}

// CreateContact inserts a contact. A UUID is assigned when ID is empty.
func (s *SQLiteStorage) CreateContact(ctx context.Context, c *models.ContactRecord) error {
	prepare(c, time.Now())
	if err := insertContact(ctx, s.db, c); err != nil {
		return fmt.Errorf("failed to insert contact: %w", err)
	}
	return nil
}

// GetContact returns a contact by ID.
func (s *SQLiteStorage) GetContact(ctx context.Context, id string) (*models.ContactRecord, error) {
	c, err := scanContact(s.db.QueryRowContext(ctx,
		`SELECT `+contactColumns+` FROM contacts WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// UpdateContact updates name, number, type and label of an existing contact.
func (s *SQLiteStorage) UpdateContact(ctx context.Context, c *models.ContactRecord) error {
	c.NormalizedNumber = contacts.NormalizeNumber(c.Number)
	c.UpdatedAt = time.Now()

	result, err := s.db.ExecContext(ctx,
		`UPDATE contacts SET display_name = ?, number = ?, normalized_number = ?, type = ?, label = ?, updated_at = ?
		 WHERE id = ?`,
		c.DisplayName, c.Number, c.NormalizedNumber, c.Type, c.Label, c.UpdatedAt, c.ID,
	)
	if err != nil {
		return err
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, c.ID)
	}
	return nil
}

// DeleteContact removes a contact by ID.
func (s *SQLiteStorage) DeleteContact(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM contacts WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

// ListContacts returns contacts ordered by display name with offset and limit.
func (s *SQLiteStorage) ListContacts(ctx context.Context, offset, limit int) ([]*models.ContactRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+contactColumns+` FROM contacts `+contactOrder+` LIMIT ? OFFSET ?`,
		limit, offset,
	)
	if err != nil {
		return nil, err
	}
	return scanContacts(rows)
}

// AllContacts returns every contact ordered by display name.
func (s *SQLiteStorage) AllContacts(ctx context.Context) ([]*models.ContactRecord, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+contactColumns+` FROM contacts `+contactOrder)
	if err != nil {
		return nil, err
	}
	return scanContacts(rows)
}

// FindByNumber returns contacts whose normalized number equals the normalized form of number.
func (s *SQLiteStorage) FindByNumber(ctx context.Context, number string) ([]*models.ContactRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+contactColumns+` FROM contacts WHERE normalized_number = ? `+contactOrder,
		contacts.NormalizeNumber(number),
	)
	if err != nil {
		return nil, err
	}
	return scanContacts(rows)
}

// ContactsBySource returns every contact imported from source.
func (s *SQLiteStorage) ContactsBySource(ctx context.Context, source string) ([]*models.ContactRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+contactColumns+` FROM contacts WHERE source = ? `+contactOrder, source)
	if err != nil {
		return nil, err
	}
	return scanContacts(rows)
}

// ReplaceSource swaps every record of source for records in one transaction.
func (s *SQLiteStorage) ReplaceSource(ctx context.Context, source string, records []*models.ContactRecord) error {
	if source == "" {
		return errors.New("source is required")
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM contacts WHERE source = ?`, source); err != nil {
		return fmt.Errorf("failed to clear source: %w", err)
	}
	now := time.Now()
	for _, c := range records {
		c.Source = source
		prepare(c, now)
		if err := insertContact(ctx, tx, c); err != nil {
			return fmt.Errorf("failed to insert contact %q: %w", c.DisplayName, err)
		}
	}
	return tx.Commit()
}

// DeleteBySource removes every contact imported from source and returns how many were removed.
func (s *SQLiteStorage) DeleteBySource(ctx context.Context, source string) (int64, error) {
	if source == "" {
		return 0, errors.New("source is required")
	}
	result, err := s.db.ExecContext(ctx, `DELETE FROM contacts WHERE source = ?`, source)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// SourceInfo returns the recorded state of source, or ErrNotFound when nothing
// was imported from it.
func (s *SQLiteStorage) SourceInfo(ctx context.Context, source string) (*SourceState, error) {
	var st SourceState
	var mtime, size sql.NullInt64
	err := s.db.QueryRowContext(ctx,
		`SELECT MAX(source_mtime), MAX(source_size), COUNT(*) FROM contacts WHERE source = ?`, source,
	).Scan(&mtime, &size, &st.Count)
	if err != nil {
		return nil, err
	}
	if st.Count == 0 {
		return nil, fmt.Errorf("%w: source %s", ErrNotFound, source)
	}
	st.Mtime, st.Size = mtime.Int64, size.Int64
	return &st, nil
}

// CountContacts returns the number of distinct display names.
func (s *SQLiteStorage) CountContacts(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(DISTINCT display_name) FROM contacts`).Scan(&count)
	return count, err
}

// CountNumbers returns the total number of stored contact rows.
func (s *SQLiteStorage) CountNumbers(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM contacts`).Scan(&count)
	return count, err
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}
