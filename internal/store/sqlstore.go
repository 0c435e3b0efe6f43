/*
Copyright (c) BlackBelt Technology
Distributed under the terms of the Apache License, Version 2.0
*/

package store

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"
)

// SQL stores blobs in a single RDBMS table, one row per file with the data
// in a BLOB column. The schema is created on construction when missing.
// Works against SQLite, MySQL and PostgreSQL; the caller owns the *sql.DB.
type SQL struct {
	db       *sql.DB
	postgres bool
	logger   *slog.Logger
}

// NewSQL bootstraps the schema and returns the store. driver is the
// database/sql driver name the DB was opened with.
func NewSQL(ctx context.Context, db *sql.DB, driver string, logger *slog.Logger) (*SQL, error) {
	s := &SQL{
		db:       db,
		postgres: driver == "postgres",
		logger:   logger,
	}
	blobType := "BLOB"
	if s.postgres {
		blobType = "BYTEA"
	}
	schema := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS filestore (
		id VARCHAR(64) PRIMARY KEY,
		filename VARCHAR(512) NOT NULL,
		mimetype VARCHAR(255) NOT NULL,
		size BIGINT NOT NULL,
		create_time TIMESTAMP NOT NULL,
		data %s NOT NULL
	)`, blobType)
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return nil, fmt.Errorf("unable to create filestore table: %w", err)
	}
	return s, nil
}

// Put stores the data and returns the newly assigned file identity.
func (s *SQL) Put(ctx context.Context, data io.Reader, fileName, mimeType string) (string, error) {
	fileID := newFileID()
	fileName, mimeType = resolveNameAndType(fileID, fileName, mimeType)

	blob, err := io.ReadAll(data)
	if err != nil {
		return "", err
	}

	_, err = s.db.ExecContext(ctx,
		s.rebind(`INSERT INTO filestore (id, filename, mimetype, size, create_time, data) VALUES (?, ?, ?, ?, ?, ?)`),
		fileID, fileName, mimeType, int64(len(blob)), time.Now().UTC(), blob)
	if err != nil {
		return "", fmt.Errorf("unable to store file: %w", err)
	}

	s.logger.Debug("Stored file", "fileId", fileID, "name", fileName, "mimeType", mimeType, "size", len(blob))
	return fileID, nil
}

// Get returns the stored bytes for the identity.
func (s *SQL) Get(ctx context.Context, fileID string) (io.ReadCloser, error) {
	var blob []byte
	err := s.db.QueryRowContext(ctx,
		s.rebind(`SELECT data FROM filestore WHERE id = ?`), fileID).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return io.NopCloser(bytes.NewReader(blob)), nil
}

// Exists reports whether the identity has a stored row.
func (s *SQL) Exists(ctx context.Context, fileID string) bool {
	var one int
	err := s.db.QueryRowContext(ctx,
		s.rebind(`SELECT 1 FROM filestore WHERE id = ?`), fileID).Scan(&one)
	return err == nil
}

// Metadata returns the stored file's metadata.
func (s *SQL) Metadata(ctx context.Context, fileID string) (Metadata, error) {
	var md Metadata
	err := s.db.QueryRowContext(ctx,
		s.rebind(`SELECT filename, mimetype, size, create_time FROM filestore WHERE id = ?`), fileID).
		Scan(&md.Name, &md.MimeType, &md.Size, &md.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Metadata{}, ErrNotFound
	}
	if err != nil {
		return Metadata{}, err
	}
	return md, nil
}

// rebind rewrites ? placeholders to $n for PostgreSQL.
func (s *SQL) rebind(query string) string {
	if !s.postgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, c := range query {
		if c == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(c)
	}
	return b.String()
}
