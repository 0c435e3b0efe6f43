/*
Copyright (c) BlackBelt Technology
Distributed under the terms of the Apache License, Version 2.0
*/

package store

import (
	"context"
	"database/sql"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func newTestSQL(t *testing.T) *SQL {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "filestore.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	s, err := NewSQL(context.Background(), db, "sqlite", testLogger())
	require.NoError(t, err)
	return s
}

func TestSQLPutGetRoundTrip(t *testing.T) {
	s := newTestSQL(t)
	ctx := context.Background()

	fileID, err := s.Put(ctx, strings.NewReader("stored in a blob column"), "sample.txt", "text/plain")
	require.NoError(t, err)
	require.Len(t, fileID, 32)

	require.True(t, s.Exists(ctx, fileID))

	md, err := s.Metadata(ctx, fileID)
	require.NoError(t, err)
	assert.Equal(t, "sample.txt", md.Name)
	assert.Equal(t, "text/plain", md.MimeType)
	assert.Equal(t, int64(23), md.Size)
	assert.False(t, md.CreatedAt.IsZero())

	r, err := s.Get(ctx, fileID)
	require.NoError(t, err)
	defer r.Close()
	content, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "stored in a blob column", string(content))
}

func TestSQLDefaultsNameAndMimeType(t *testing.T) {
	s := newTestSQL(t)
	ctx := context.Background()

	fileID, err := s.Put(ctx, strings.NewReader("x"), "", "")
	require.NoError(t, err)

	md, err := s.Metadata(ctx, fileID)
	require.NoError(t, err)
	assert.Equal(t, "application/octet-stream", md.MimeType)
	assert.Equal(t, fileID+".bin", md.Name)
}

func TestSQLUnknownID(t *testing.T) {
	s := newTestSQL(t)
	ctx := context.Background()

	assert.False(t, s.Exists(ctx, "missing"))

	_, err := s.Metadata(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLRebindPostgres(t *testing.T) {
	s := &SQL{postgres: true}
	assert.Equal(t,
		"SELECT data FROM filestore WHERE id = $1 AND size > $2",
		s.rebind("SELECT data FROM filestore WHERE id = ? AND size > ?"))

	plain := &SQL{}
	assert.Equal(t, "WHERE id = ?", plain.rebind("WHERE id = ?"))
}
