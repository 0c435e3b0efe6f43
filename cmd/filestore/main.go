/*
Copyright (c) BlackBelt Technology
Distributed under the terms of the Apache License, Version 2.0
*/

// Package main provides the entry point for the filestore service that
// stores uploaded files and serves them back under JWT authorization.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/blackbelt-technology/filestore-go/internal/config"
	"github.com/blackbelt-technology/filestore-go/internal/httpserver"
	"github.com/blackbelt-technology/filestore-go/internal/store"
	"github.com/blackbelt-technology/filestore-go/internal/token"
	"github.com/blackbelt-technology/filestore-go/internal/transfer"
)

func main() {
	// Initialize logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	// Load configuration
	cfg, err := config.NewConfig()
	if err != nil {
		logger.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Create the token key material
	keys, err := token.NewKeyProvider(token.KeyConfig{
		Algorithm: cfg.TokenAlgorithm,
		Secret:    cfg.TokenSecret,
		Keys:      cfg.TokenKeys,
		KeyFile:   cfg.TokenKeyFile,
	}, logger)
	if err != nil {
		logger.Error("Failed to create key provider", "error", err)
		os.Exit(1)
	}

	tokenCfg := token.Config{
		Algorithm:         cfg.TokenAlgorithm,
		Issuers:           cfg.TokenIssuers,
		AudiencePrefix:    cfg.TokenAudiencePrefix,
		ExpirationMinutes: cfg.TokenExpiration,
	}
	issuer := token.NewIssuer(keys, tokenCfg)
	validator := token.NewValidator(keys, tokenCfg, logger)

	// Create the file store
	fileStore, err := newStore(cfg, logger)
	if err != nil {
		logger.Error("Failed to create file store", "error", err)
		os.Exit(1)
	}

	// Create the transfer services and start the server
	uploads := transfer.NewUploadService(validator, issuer, fileStore, cfg.TokenRequired, logger)
	downloads := transfer.NewDownloadService(validator, fileStore, cfg.TokenRequired, logger)

	server := httpserver.NewServer(cfg, uploads, downloads, issuer, logger)
	if err := server.Start(); err != nil {
		logger.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

func newStore(cfg *config.Config, logger *slog.Logger) (store.Store, error) {
	switch cfg.StoreBackend {
	case config.StoreBackendFilesystem:
		return store.NewFileSystem(cfg.StoreDirectory, logger)
	case config.StoreBackendSQL:
		db, err := sql.Open(cfg.StoreDriver, cfg.StoreDSN)
		if err != nil {
			return nil, fmt.Errorf("opening database: %w", err)
		}
		return store.NewSQL(context.Background(), db, cfg.StoreDriver, logger)
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}
