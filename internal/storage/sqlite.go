package storage

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// DB wraps a SQLite database connection holding the conversion index.
// The index is a cache: it can always be rebuilt from the JSONL file.
type DB struct {
	db *sql.DB
}

const selectRecordFields = `source, hash, title, succession, ref_count, converted_at, output`

// OpenDB opens or creates a SQLite database at the given path.
func OpenDB(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite doesn't support concurrent writes

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &DB{db: db}, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

func createSchema(db *sql.DB) error {
	schema := `
		CREATE TABLE IF NOT EXISTS conversions (
			source TEXT PRIMARY KEY,
			hash TEXT NOT NULL,
			title TEXT NOT NULL,
			succession TEXT,
			ref_count INTEGER NOT NULL,
			converted_at TEXT NOT NULL,
			output TEXT
		);

		CREATE INDEX IF NOT EXISTS idx_conversions_succession
			ON conversions(succession) WHERE succession IS NOT NULL AND succession != '';
	`

	_, err := db.Exec(schema)
	return err
}

// RebuildFromJSONL clears the database and rebuilds it from a JSONL file.
// Later records win when a source was converted more than once.
func (d *DB) RebuildFromJSONL(jsonlPath string) (int, error) {
	records, err := ReadAll(jsonlPath)
	if err != nil {
		return 0, fmt.Errorf("reading JSONL: %w", err)
	}

	if _, err := d.db.Exec("DELETE FROM conversions"); err != nil {
		return 0, fmt.Errorf("clearing conversions table: %w", err)
	}

	stmt, err := d.db.Prepare(`
		INSERT INTO conversions (source, hash, title, succession, ref_count, converted_at, output)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(source) DO UPDATE SET
			hash = excluded.hash,
			title = excluded.title,
			succession = excluded.succession,
			ref_count = excluded.ref_count,
			converted_at = excluded.converted_at,
			output = excluded.output
	`)
	if err != nil {
		return 0, fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range records {
		_, err := stmt.Exec(
			rec.Source, rec.Hash, rec.Title, rec.Succession,
			rec.References, rec.ConvertedAt, rec.Output,
		)
		if err != nil {
			return 0, fmt.Errorf("inserting record %s: %w", rec.Source, err)
		}
	}

	return len(records), nil
}

// GetBySource retrieves the record for a source path, or nil if absent.
func (d *DB) GetBySource(source string) (*Record, error) {
	row := d.db.QueryRow(`SELECT `+selectRecordFields+` FROM conversions WHERE source = ?`, source)
	rec, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying record: %w", err)
	}
	return rec, nil
}

// List returns all records ordered by conversion time, newest first.
func (d *DB) List() ([]Record, error) {
	rows, err := d.db.Query(`SELECT ` + selectRecordFields + ` FROM conversions ORDER BY converted_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("querying conversions: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning record: %w", err)
		}
		records = append(records, *rec)
	}
	return records, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*Record, error) {
	var rec Record
	var succession, output sql.NullString
	err := row.Scan(&rec.Source, &rec.Hash, &rec.Title, &succession, &rec.References, &rec.ConvertedAt, &output)
	if err != nil {
		return nil, err
	}
	rec.Succession = succession.String
	rec.Output = output.String
	return &rec, nil
}
