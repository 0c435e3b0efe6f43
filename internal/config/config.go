/*
Copyright (c) BlackBelt Technology
Distributed under the terms of the Apache License, Version 2.0
*/

// Package config loads the filestore service configuration from environment
// variables, with defaults for everything that can reasonably have one.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Environment variable names
const (
	// Server configuration
	EnvPort            = "FILESTORE_PORT"
	EnvReadTimeout     = "FILESTORE_READ_TIMEOUT"
	EnvWriteTimeout    = "FILESTORE_WRITE_TIMEOUT"
	EnvShutdownTimeout = "FILESTORE_SHUTDOWN_TIMEOUT"

	// Token service configuration
	EnvTokenAlgorithm      = "FILESTORE_TOKEN_ALGORITHM"
	EnvTokenSecret         = "FILESTORE_TOKEN_SECRET"
	EnvTokenKeys           = "FILESTORE_TOKEN_KEYS"
	EnvTokenKeyFile        = "FILESTORE_TOKEN_KEY_FILE"
	EnvTokenIssuers        = "FILESTORE_TOKEN_ISSUERS"
	EnvTokenAudiencePrefix = "FILESTORE_TOKEN_AUDIENCE_PREFIX"
	EnvTokenExpiration     = "FILESTORE_TOKEN_EXPIRATION_MINUTES"
	EnvTokenRequired       = "FILESTORE_TOKEN_REQUIRED"
	EnvIssueSecret         = "FILESTORE_ISSUE_SECRET"

	// Store configuration
	EnvStoreBackend   = "FILESTORE_STORE_BACKEND"
	EnvStoreDirectory = "FILESTORE_STORE_DIRECTORY"
	EnvStoreDriver    = "FILESTORE_STORE_DRIVER"
	EnvStoreDSN       = "FILESTORE_STORE_DSN"

	// CORS configuration
	EnvCORSAllowOrigins     = "FILESTORE_CORS_ALLOW_ORIGINS"
	EnvCORSAllowCredentials = "FILESTORE_CORS_ALLOW_CREDENTIALS"
	EnvCORSAllowHeaders     = "FILESTORE_CORS_ALLOW_HEADERS"
	EnvCORSExposeHeaders    = "FILESTORE_CORS_EXPOSE_HEADERS"
	EnvCORSMaxAge           = "FILESTORE_CORS_MAX_AGE"
)

// Store backends
const (
	StoreBackendFilesystem = "filesystem"
	StoreBackendSQL        = "sql"
)

// Default values
const (
	// Server defaults
	DefaultPort            = 8080
	DefaultReadTimeout     = 30 * time.Second
	DefaultWriteTimeout    = 30 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	// Token defaults
	DefaultTokenAlgorithm  = "HS512"
	DefaultTokenExpiration = 0 // non-expiring
	DefaultTokenRequired   = false

	// Store defaults
	DefaultStoreBackend = StoreBackendFilesystem
	DefaultStoreDriver  = "sqlite"

	// CORS defaults
	DefaultCORSAllowOrigins     = "*"
	DefaultCORSAllowCredentials = true
	DefaultCORSAllowHeaders     = "Content-Type,Origin,Accept,Authorization"
	DefaultCORSExposeHeaders    = "Content-Type"
	DefaultCORSMaxAge           = -1
)

// Config is the process configuration, passed explicitly into constructors.
type Config struct {
	// Server configuration
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration

	// Token service configuration
	TokenAlgorithm      string
	TokenSecret         string // base64 HMAC secret
	TokenKeys           string // base64 JWK pair
	TokenKeyFile        string // persistence for generated keys
	TokenIssuers        string // comma-separated
	TokenAudiencePrefix string
	TokenExpiration     int // minutes, 0 = non-expiring
	TokenRequired       bool
	IssueSecret         string // shared secret guarding the /token endpoint

	// Store configuration
	StoreBackend   string
	StoreDirectory string
	StoreDriver    string
	StoreDSN       string

	// CORS configuration
	CORSAllowOrigins     []string
	CORSAllowCredentials bool
	CORSAllowHeaders     []string
	CORSExposeHeaders    []string
	CORSMaxAge           int
}

// NewConfig creates a Config from environment variables, falling back to
// defaults for anything unset.
func NewConfig() (*Config, error) {
	config := createDefaultConfig()

	if err := applyServerConfig(config); err != nil {
		return nil, err
	}
	if err := applyTokenConfig(config); err != nil {
		return nil, err
	}
	if err := applyStoreConfig(config); err != nil {
		return nil, err
	}
	if err := applyCORSConfig(config); err != nil {
		return nil, err
	}
	return config, nil
}

func createDefaultConfig() *Config {
	return &Config{
		Port:            DefaultPort,
		ReadTimeout:     DefaultReadTimeout,
		WriteTimeout:    DefaultWriteTimeout,
		ShutdownTimeout: DefaultShutdownTimeout,

		TokenAlgorithm:  DefaultTokenAlgorithm,
		TokenExpiration: DefaultTokenExpiration,
		TokenRequired:   DefaultTokenRequired,

		StoreBackend:   DefaultStoreBackend,
		StoreDirectory: defaultStoreDirectory(),
		StoreDriver:    DefaultStoreDriver,

		CORSAllowOrigins:     splitList(DefaultCORSAllowOrigins),
		CORSAllowCredentials: DefaultCORSAllowCredentials,
		CORSAllowHeaders:     splitList(DefaultCORSAllowHeaders),
		CORSExposeHeaders:    splitList(DefaultCORSExposeHeaders),
		CORSMaxAge:           DefaultCORSMaxAge,
	}
}

func defaultStoreDirectory() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "file-store"
	}
	return home + "/file-store"
}

func applyServerConfig(config *Config) error {
	if err := intFromEnv(EnvPort, &config.Port); err != nil {
		return err
	}
	if err := durationFromEnv(EnvReadTimeout, &config.ReadTimeout); err != nil {
		return err
	}
	if err := durationFromEnv(EnvWriteTimeout, &config.WriteTimeout); err != nil {
		return err
	}
	return durationFromEnv(EnvShutdownTimeout, &config.ShutdownTimeout)
}

func applyTokenConfig(config *Config) error {
	stringFromEnv(EnvTokenAlgorithm, &config.TokenAlgorithm)
	stringFromEnv(EnvTokenSecret, &config.TokenSecret)
	stringFromEnv(EnvTokenKeys, &config.TokenKeys)
	stringFromEnv(EnvTokenKeyFile, &config.TokenKeyFile)
	stringFromEnv(EnvTokenIssuers, &config.TokenIssuers)
	stringFromEnv(EnvTokenAudiencePrefix, &config.TokenAudiencePrefix)
	stringFromEnv(EnvIssueSecret, &config.IssueSecret)
	if err := intFromEnv(EnvTokenExpiration, &config.TokenExpiration); err != nil {
		return err
	}
	if config.TokenExpiration < 0 {
		return fmt.Errorf("invalid %s: must not be negative", EnvTokenExpiration)
	}
	return boolFromEnv(EnvTokenRequired, &config.TokenRequired)
}

func applyStoreConfig(config *Config) error {
	stringFromEnv(EnvStoreBackend, &config.StoreBackend)
	stringFromEnv(EnvStoreDirectory, &config.StoreDirectory)
	stringFromEnv(EnvStoreDriver, &config.StoreDriver)
	stringFromEnv(EnvStoreDSN, &config.StoreDSN)

	switch config.StoreBackend {
	case StoreBackendFilesystem, StoreBackendSQL:
	default:
		return fmt.Errorf("invalid %s: %q", EnvStoreBackend, config.StoreBackend)
	}
	if config.StoreBackend == StoreBackendSQL && config.StoreDSN == "" {
		return fmt.Errorf("%s is required for the %s backend", EnvStoreDSN, StoreBackendSQL)
	}
	return nil
}

func applyCORSConfig(config *Config) error {
	if v := os.Getenv(EnvCORSAllowOrigins); v != "" {
		config.CORSAllowOrigins = splitList(v)
	}
	if v := os.Getenv(EnvCORSAllowHeaders); v != "" {
		config.CORSAllowHeaders = splitList(v)
	}
	if v := os.Getenv(EnvCORSExposeHeaders); v != "" {
		config.CORSExposeHeaders = splitList(v)
	}
	if err := boolFromEnv(EnvCORSAllowCredentials, &config.CORSAllowCredentials); err != nil {
		return err
	}
	return intFromEnv(EnvCORSMaxAge, &config.CORSMaxAge)
}

func stringFromEnv(name string, out *string) {
	if v := os.Getenv(name); v != "" {
		*out = v
	}
}

func intFromEnv(name string, out *int) error {
	v := os.Getenv(name)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", name, err)
	}
	*out = n
	return nil
}

func boolFromEnv(name string, out *bool) error {
	v := os.Getenv(name)
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", name, err)
	}
	*out = b
	return nil
}

func durationFromEnv(name string, out *time.Duration) error {
	v := os.Getenv(name)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", name, err)
	}
	*out = d
	return nil
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
