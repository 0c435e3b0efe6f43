/*
Copyright (c) BlackBelt Technology
Distributed under the terms of the Apache License, Version 2.0
*/

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigDefaults(t *testing.T) {
	cfg, err := NewConfig()
	require.NoError(t, err)

	assert.Equal(t, DefaultPort, cfg.Port)
	assert.Equal(t, DefaultReadTimeout, cfg.ReadTimeout)
	assert.Equal(t, "HS512", cfg.TokenAlgorithm)
	assert.Equal(t, 0, cfg.TokenExpiration)
	assert.False(t, cfg.TokenRequired)
	assert.Equal(t, StoreBackendFilesystem, cfg.StoreBackend)
	assert.NotEmpty(t, cfg.StoreDirectory)
	assert.Equal(t, []string{"*"}, cfg.CORSAllowOrigins)
	assert.True(t, cfg.CORSAllowCredentials)
}

func TestNewConfigFromEnvironment(t *testing.T) {
	t.Setenv(EnvPort, "9090")
	t.Setenv(EnvReadTimeout, "5s")
	t.Setenv(EnvTokenAlgorithm, "RS256")
	t.Setenv(EnvTokenIssuers, "judo, legacy")
	t.Setenv(EnvTokenExpiration, "30")
	t.Setenv(EnvTokenRequired, "true")
	t.Setenv(EnvStoreBackend, StoreBackendSQL)
	t.Setenv(EnvStoreDriver, "postgres")
	t.Setenv(EnvStoreDSN, "postgres://filestore@localhost/filestore")
	t.Setenv(EnvCORSAllowOrigins, "https://a.example, https://b.example")

	cfg, err := NewConfig()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, 5*time.Second, cfg.ReadTimeout)
	assert.Equal(t, "RS256", cfg.TokenAlgorithm)
	assert.Equal(t, "judo, legacy", cfg.TokenIssuers)
	assert.Equal(t, 30, cfg.TokenExpiration)
	assert.True(t, cfg.TokenRequired)
	assert.Equal(t, StoreBackendSQL, cfg.StoreBackend)
	assert.Equal(t, "postgres", cfg.StoreDriver)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowOrigins)
}

func TestNewConfigRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		env   string
		value string
	}{
		{name: "bad port", env: EnvPort, value: "not-a-number"},
		{name: "bad timeout", env: EnvReadTimeout, value: "soon"},
		{name: "negative expiration", env: EnvTokenExpiration, value: "-5"},
		{name: "bad token required", env: EnvTokenRequired, value: "maybe"},
		{name: "unknown backend", env: EnvStoreBackend, value: "tape"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.env, tt.value)
			_, err := NewConfig()
			assert.Error(t, err)
		})
	}
}

func TestNewConfigSQLBackendRequiresDSN(t *testing.T) {
	t.Setenv(EnvStoreBackend, StoreBackendSQL)
	_, err := NewConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), EnvStoreDSN)
}
