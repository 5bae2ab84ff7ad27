package docstore

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/goccy/go-json"

	"github.com/nerrad567/gray-logic-sensing/internal/infrastructure/database"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Document is one stored record.
type Document struct {
	Collection string
	ID         string
	Body       json.RawMessage
	UpdatedAt  time.Time
}

// Decode unmarshals the document body into out.
func (d Document) Decode(out any) error {
	if err := json.Unmarshal(d.Body, out); err != nil {
		return fmt.Errorf("%w: %s/%s: %w", ErrInvalidDocument, d.Collection, d.ID, err)
	}
	return nil
}

// Store is a SQLite-backed store of JSON documents grouped into collections.
type Store struct {
	db  *database.DB
	url string
}

// Open opens the store at url, creating the database on first use.
//
// An existing database is opened as-is; a missing one is created and the
// schema applied. See ResolvePath for accepted URL forms.
func Open(ctx context.Context, url string) (*Store, error) {
	path, err := ResolvePath(url)
	if err != nil {
		return nil, err
	}

	db, err := database.Open(ctx, database.Config{
		Path:    path,
		WALMode: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening document store %s: %w", url, err)
	}

	schema, err := fs.Sub(migrationsFS, "migrations")
	if err != nil {
		db.Close() //nolint:errcheck // Best effort cleanup on error path
		return nil, fmt.Errorf("loading document store schema: %w", err)
	}
	if err := db.Migrate(ctx, schema); err != nil {
		db.Close() //nolint:errcheck // Best effort cleanup on error path
		return nil, fmt.Errorf("migrating document store %s: %w", url, err)
	}

	return &Store{db: db, url: url}, nil
}

// URL returns the URL the store was opened with.
func (s *Store) URL() string {
	return s.url
}

// Close closes the underlying database.
func (s *Store) Close() error {
	if s == nil {
		return nil
	}
	return s.db.Close()
}

// HealthCheck confirms the database is reachable.
func (s *Store) HealthCheck(ctx context.Context) error {
	return s.db.HealthCheck(ctx)
}

// Put inserts or replaces the document for collection and id.
func (s *Store) Put(ctx context.Context, collection, id string, doc any) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("%w: %s/%s: %w", ErrInvalidDocument, collection, id, err)
	}

	const query = `INSERT INTO documents (collection, id, body) VALUES (?, ?, ?)
		ON CONFLICT (collection, id) DO UPDATE SET
			body = excluded.body,
			updated_at = strftime('%Y-%m-%dT%H:%M:%SZ', 'now')`
	if _, err := s.db.ExecContext(ctx, query, collection, id, string(body)); err != nil {
		return fmt.Errorf("storing %s/%s: %w", collection, id, err)
	}
	return nil
}

// Get decodes the document for collection and id into out.
// Returns ErrNotFound if there is none.
func (s *Store) Get(ctx context.Context, collection, id string, out any) error {
	const query = `SELECT collection, id, body, updated_at FROM documents
		WHERE collection = ? AND id = ?`
	doc, err := scanDocument(s.db.QueryRowContext(ctx, query, collection, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: %s/%s", ErrNotFound, collection, id)
		}
		return err
	}
	return doc.Decode(out)
}

// List returns every document in a collection ordered by id.
func (s *Store) List(ctx context.Context, collection string) ([]Document, error) {
	const query = `SELECT collection, id, body, updated_at FROM documents
		WHERE collection = ? ORDER BY id`
	rows, err := s.db.QueryContext(ctx, query, collection)
	if err != nil {
		return nil, fmt.Errorf("querying %s: %w", collection, err)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating %s: %w", collection, err)
	}
	return docs, nil
}

// Delete removes one document. Returns ErrNotFound if there is none.
func (s *Store) Delete(ctx context.Context, collection, id string) error {
	result, err := s.db.ExecContext(ctx,
		"DELETE FROM documents WHERE collection = ? AND id = ?", collection, id)
	if err != nil {
		return fmt.Errorf("deleting %s/%s: %w", collection, id, err)
	}
	n, _ := result.RowsAffected() //nolint:errcheck // SQLite always supports RowsAffected
	if n == 0 {
		return fmt.Errorf("%w: %s/%s", ErrNotFound, collection, id)
	}
	return nil
}

// Count returns the number of documents in a collection.
func (s *Store) Count(ctx context.Context, collection string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM documents WHERE collection = ?", collection).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting %s: %w", collection, err)
	}
	return n, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanDocument(row scanner) (Document, error) {
	var doc Document
	var body, updatedAt string
	if err := row.Scan(&doc.Collection, &doc.ID, &body, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Document{}, err
		}
		return Document{}, fmt.Errorf("scanning document: %w", err)
	}
	doc.Body = json.RawMessage(body)
	doc.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt) //nolint:errcheck // Format is schema-controlled
	return doc, nil
}
