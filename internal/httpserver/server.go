/*
Copyright (c) BlackBelt Technology
Distributed under the terms of the Apache License, Version 2.0
*/

// Package httpserver exposes the filestore over HTTP: multipart uploads,
// token-addressed downloads, token issuance and a health probe.
package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/blackbelt-technology/filestore-go/internal/config"
	"github.com/blackbelt-technology/filestore-go/internal/store"
	"github.com/blackbelt-technology/filestore-go/internal/token"
	"github.com/blackbelt-technology/filestore-go/internal/transfer"
)

// Server is the HTTP front of the filestore service.
type Server struct {
	config     *config.Config
	uploads    *transfer.UploadService
	downloads  *transfer.DownloadService
	issuer     *token.Issuer
	cors       *CORS
	logger     *slog.Logger
	httpServer *http.Server
}

// NewServer creates a server instance around the transfer services.
func NewServer(cfg *config.Config, uploads *transfer.UploadService, downloads *transfer.DownloadService, issuer *token.Issuer, logger *slog.Logger) *Server {
	return &Server{
		config:    cfg,
		uploads:   uploads,
		downloads: downloads,
		issuer:    issuer,
		cors:      NewCORS(cfg.CORSAllowOrigins, cfg.CORSAllowCredentials, cfg.CORSAllowHeaders, cfg.CORSExposeHeaders, cfg.CORSMaxAge, logger),
		logger:    logger,
	}
}

// Handler builds the route table. Exposed separately so tests can drive the
// server through httptest without binding a port.
func (s *Server) Handler() http.Handler {
	router := http.NewServeMux()
	router.HandleFunc("/upload", s.handleUpload)
	router.HandleFunc("/download", s.handleDownload)
	router.HandleFunc("/token", s.handleToken)
	router.HandleFunc("/health", s.handleHealth)
	return router
}

// Start initializes and starts the HTTP server.
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.Handler(),
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	idleConnsClosed := make(chan struct{})
	go s.handleShutdown(idleConnsClosed)

	s.logger.Info("Starting filestore service", "port", s.config.Port)
	if err := s.httpServer.ListenAndServe(); err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}

	<-idleConnsClosed
	s.logger.Info("Server stopped")
	return nil
}

// handleShutdown handles graceful server shutdown
func (s *Server) handleShutdown(idleConnsClosed chan struct{}) {
	sigint := make(chan os.Signal, 1)
	signal.Notify(sigint, syscall.SIGINT, syscall.SIGTERM)
	<-sigint

	s.logger.Info("Received shutdown signal")

	ctx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error("Server shutdown error", "error", err)
	}

	close(idleConnsClosed)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error("Failed to encode response", "error", err)
	}
}

// writeError maps service errors onto the HTTP error surface. Per-file
// upload failures are reported inside the body instead and never reach here.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	message := "internal server error"
	switch {
	case errors.Is(err, transfer.ErrTokenRequired):
		status, message = http.StatusForbidden, err.Error()
	case errors.Is(err, token.ErrInvalidToken):
		status, message = http.StatusForbidden, err.Error()
	case errors.Is(err, transfer.ErrMissingParameter):
		status, message = http.StatusBadRequest, err.Error()
	case errors.Is(err, store.ErrNotFound):
		status, message = http.StatusNotFound, err.Error()
	default:
		s.logger.Error("Request failed", "error", err)
	}
	s.writeJSON(w, status, map[string]string{"error": message})
}

// requestToken extracts the JWT from the request. The dedicated token header
// wins, an Authorization bearer token is accepted as a fallback.
func requestToken(r *http.Request) string {
	if t := r.Header.Get(HeaderToken); t != "" {
		return t
	}
	const prefix = "Bearer "
	if auth := r.Header.Get("Authorization"); len(auth) > len(prefix) && auth[:len(prefix)] == prefix {
		return auth[len(prefix):]
	}
	return ""
}
