package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	apperr "github.com/bookmind/bookmind/internal/errors"
)

// CreateDocument records an uploaded file.
func (d *DB) CreateDocument(ctx context.Context, doc Document) (Document, error) {
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now().UTC()
	}

	res, err := d.db.ExecContext(ctx, `
		INSERT INTO documents (filename, stored_path, content_type, size_bytes, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, doc.Filename, doc.StoredPath, doc.ContentType, doc.SizeBytes,
		doc.CreatedAt.Format(time.RFC3339Nano))
	if err != nil {
		return Document{}, fmt.Errorf("inserting document: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return Document{}, fmt.Errorf("reading document id: %w", err)
	}
	doc.ID = id
	return doc, nil
}

// GetDocument retrieves a document record by ID.
func (d *DB) GetDocument(ctx context.Context, id int64) (Document, error) {
	row := d.db.QueryRowContext(ctx, `
		SELECT id, filename, stored_path, content_type, size_bytes, created_at
		FROM documents WHERE id = ?
	`, id)

	var doc Document
	var createdAt string
	err := row.Scan(&doc.ID, &doc.Filename, &doc.StoredPath, &doc.ContentType, &doc.SizeBytes, &createdAt)
	if err == sql.ErrNoRows {
		return Document{}, apperr.NotFound(fmt.Sprintf("document %d not found", id))
	}
	if err != nil {
		return Document{}, fmt.Errorf("scanning document %d: %w", id, err)
	}
	doc.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return Document{}, fmt.Errorf("parsing document timestamp: %w", err)
	}
	return doc, nil
}

// ListDocuments returns all document records ordered by ID.
func (d *DB) ListDocuments(ctx context.Context) ([]Document, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT id, filename, stored_path, content_type, size_bytes, created_at
		FROM documents ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var doc Document
		var createdAt string
		if err := rows.Scan(&doc.ID, &doc.Filename, &doc.StoredPath, &doc.ContentType, &doc.SizeBytes, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning document: %w", err)
		}
		doc.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			return nil, fmt.Errorf("parsing document timestamp: %w", err)
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// DeleteDocument removes a document record.
func (d *DB) DeleteDocument(ctx context.Context, id int64) error {
	res, err := d.db.ExecContext(ctx, "DELETE FROM documents WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting document %d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return apperr.NotFound(fmt.Sprintf("document %d not found", id))
	}
	return nil
}
