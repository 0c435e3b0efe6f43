/*
Copyright (c) BlackBelt Technology
Distributed under the terms of the Apache License, Version 2.0
*/

package store

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const (
	metadataFileName  = "file.json"
	metadataCacheSize = 10000
)

// FileSystem stores blobs under a root directory, fanned out over two
// levels of the file identity to keep directory sizes bounded. Each file
// lives in its own directory next to a JSON metadata sidecar.
type FileSystem struct {
	root   string
	logger *slog.Logger

	mu    sync.RWMutex
	cache map[string]Metadata
}

// NewFileSystem creates the root directory if needed and returns the store.
func NewFileSystem(root string, logger *slog.Logger) (*FileSystem, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("unable to create store directory %s: %w", root, err)
	}
	return &FileSystem{
		root:   root,
		logger: logger,
		cache:  make(map[string]Metadata),
	}, nil
}

// Put stores the data and returns the newly assigned file identity.
func (s *FileSystem) Put(ctx context.Context, data io.Reader, fileName, mimeType string) (string, error) {
	fileID := newFileID()
	// Strip any client-supplied path. Base of an empty name is ".", which
	// must stay empty for the defaulting to kick in.
	if fileName != "" {
		fileName = filepath.Base(fileName)
		if fileName == "." || fileName == string(filepath.Separator) {
			fileName = ""
		}
	}
	fileName, mimeType = resolveNameAndType(fileID, fileName, mimeType)
	if fileName == metadataFileName {
		// Would collide with the metadata sidecar.
		fileName = fileID + ".json"
	}

	dir := s.fileDir(fileID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("unable to create file directory: %w", err)
	}

	// Write through a temp file and rename, so a crashed upload never
	// leaves a partially written blob under a valid identity.
	tmp, err := os.CreateTemp(s.root, "pending-")
	if err != nil {
		return "", fmt.Errorf("unable to create temp file: %w", err)
	}
	size, err := io.Copy(tmp, data)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(tmp.Name())
		return "", err
	}
	if err := os.Rename(tmp.Name(), filepath.Join(dir, fileName)); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("unable to store file: %w", err)
	}

	md := Metadata{
		Name:      fileName,
		MimeType:  mimeType,
		Size:      size,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.writeMetadata(fileID, md); err != nil {
		return "", err
	}
	s.cacheMetadata(fileID, md)

	s.logger.Debug("Stored file", "fileId", fileID, "name", fileName, "mimeType", mimeType, "size", size)
	return fileID, nil
}

// Get returns the stored bytes for the identity.
func (s *FileSystem) Get(ctx context.Context, fileID string) (io.ReadCloser, error) {
	md, err := s.Metadata(ctx, fileID)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(filepath.Join(s.fileDir(fileID), md.Name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return f, nil
}

// Exists reports whether the identity has a stored representation.
func (s *FileSystem) Exists(ctx context.Context, fileID string) bool {
	_, err := s.Metadata(ctx, fileID)
	return err == nil
}

// Metadata returns the stored file's metadata, via a bounded read-through
// cache.
func (s *FileSystem) Metadata(ctx context.Context, fileID string) (Metadata, error) {
	if !validFileID(fileID) {
		return Metadata{}, ErrNotFound
	}
	s.mu.RLock()
	md, ok := s.cache[fileID]
	s.mu.RUnlock()
	if ok {
		return md, nil
	}

	data, err := os.ReadFile(filepath.Join(s.fileDir(fileID), metadataFileName))
	if err != nil {
		if os.IsNotExist(err) {
			return Metadata{}, ErrNotFound
		}
		return Metadata{}, err
	}
	if err := json.Unmarshal(data, &md); err != nil {
		return Metadata{}, fmt.Errorf("corrupt metadata for %s: %w", fileID, err)
	}
	s.cacheMetadata(fileID, md)
	return md, nil
}

func (s *FileSystem) writeMetadata(fileID string, md Metadata) error {
	data, err := json.Marshal(md)
	if err != nil {
		return err
	}
	path := filepath.Join(s.fileDir(fileID), metadataFileName)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("unable to write metadata: %w", err)
	}
	return nil
}

func (s *FileSystem) cacheMetadata(fileID string, md Metadata) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.cache) >= metadataCacheSize {
		for id := range s.cache {
			delete(s.cache, id)
			break
		}
	}
	s.cache[fileID] = md
}

// fileDir fans the identity out over two directory levels.
func (s *FileSystem) fileDir(fileID string) string {
	return filepath.Join(s.root, fileID[:2], fileID[2:4], fileID)
}

// validFileID rejects anything that is not a generated identity, which also
// keeps request-supplied ids from escaping the store root.
func validFileID(fileID string) bool {
	if len(fileID) != 32 {
		return false
	}
	for _, c := range fileID {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}
