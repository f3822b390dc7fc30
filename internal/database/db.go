package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jgoulah/callcharts/pkg/models"
	_ "modernc.org/sqlite"
)

const timeLayout = time.RFC3339Nano

// DB wraps the database connection
type DB struct {
	conn *sql.DB
}

// New creates a new database connection and initializes the schema
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.initSchema(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}

	return db, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}

// initSchema creates the necessary tables
func (db *DB) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS user_chart_values (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		email TEXT NOT NULL,
		chart_id TEXT NOT NULL,
		chart_values TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		published INTEGER DEFAULT 0,
		UNIQUE(email, chart_id)
	);
	CREATE INDEX IF NOT EXISTS idx_chart_values_email ON user_chart_values(email);
	CREATE INDEX IF NOT EXISTS idx_chart_values_published ON user_chart_values(published);
	`

	_, err := db.conn.Exec(schema)
	return err
}

// Get returns the saved entry for (email, chart), or nil if there is none
func (db *DB) Get(ctx context.Context, email string, chart models.ChartID) (*models.SavedEntry, error) {
	query := `
	SELECT id, email, chart_id, chart_values, updated_at, published
	FROM user_chart_values
	WHERE email = ? AND chart_id = ?
	`

	entry, err := scanEntry(db.conn.QueryRowContext(ctx, query, email, string(chart)))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying chart values: %w", err)
	}
	return entry, nil
}

// Upsert inserts the entry or replaces the values stored for the same
// (email, chart). Replacing an entry marks it unpublished again.
func (db *DB) Upsert(ctx context.Context, entry *models.SavedEntry) error {
	query := `
	INSERT INTO user_chart_values (email, chart_id, chart_values, updated_at, published)
	VALUES (?, ?, ?, ?, 0)
	ON CONFLICT(email, chart_id) DO UPDATE SET
		chart_values = excluded.chart_values,
		updated_at = excluded.updated_at,
		published = 0
	`

	values, err := json.Marshal(entry.Values)
	if err != nil {
		return fmt.Errorf("encoding chart values: %w", err)
	}

	updatedAt := entry.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now()
	}

	_, err = db.conn.ExecContext(ctx, query, entry.Email, string(entry.ChartID), string(values), updatedAt.UTC().Format(timeLayout))
	if err != nil {
		return fmt.Errorf("upserting chart values: %w", err)
	}

	return nil
}

// ListEntries retrieves saved entries, optionally filtered by email, newest first
func (db *DB) ListEntries(ctx context.Context, email string) ([]models.SavedEntry, error) {
	query := `
	SELECT id, email, chart_id, chart_values, updated_at, published
	FROM user_chart_values
	WHERE (? = '' OR email = ?)
	ORDER BY updated_at DESC, id DESC
	`
	return db.queryEntries(ctx, query, email, email)
}

// ListUnpublished retrieves entries not yet published, oldest first
func (db *DB) ListUnpublished(ctx context.Context) ([]models.SavedEntry, error) {
	query := `
	SELECT id, email, chart_id, chart_values, updated_at, published
	FROM user_chart_values
	WHERE published = 0
	ORDER BY updated_at ASC, id ASC
	`
	return db.queryEntries(ctx, query)
}

// MarkPublished marks an entry as published
func (db *DB) MarkPublished(ctx context.Context, id int) error {
	query := `UPDATE user_chart_values SET published = 1 WHERE id = ?`
	_, err := db.conn.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("marking entry as published: %w", err)
	}
	return nil
}

func (db *DB) queryEntries(ctx context.Context, query string, args ...any) ([]models.SavedEntry, error) {
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying chart values: %w", err)
	}
	defer rows.Close()

	var results []models.SavedEntry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		results = append(results, *entry)
	}

	return results, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (*models.SavedEntry, error) {
	var entry models.SavedEntry
	var chartID, values, updatedAt string
	var published int

	if err := row.Scan(&entry.ID, &entry.Email, &chartID, &values, &updatedAt, &published); err != nil {
		return nil, err
	}

	entry.ChartID = models.ChartID(chartID)
	entry.Published = published != 0

	if err := json.Unmarshal([]byte(values), &entry.Values); err != nil {
		return nil, fmt.Errorf("decoding chart values: %w", err)
	}

	var err error
	entry.UpdatedAt, err = time.Parse(timeLayout, updatedAt)
	if err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}

	return &entry, nil
}
