package config

import (
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(nil, io.Discard)
	require.NoError(t, err)

	assert.Empty(t, cfg.Command)
	assert.Equal(t, "file", cfg.Store)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.Equal(t, ":3333", cfg.Addr)
}

func TestLoadFlagsAroundCommand(t *testing.T) {
	cfg, err := Load([]string{"-url", "http://api.test", "delete", "-id", "42"}, io.Discard)
	require.NoError(t, err)

	assert.Equal(t, "delete", cfg.Command)
	assert.Equal(t, "http://api.test", cfg.BaseURL)
	assert.Equal(t, int64(42), cfg.ID)
}

func TestLoadEnvFallback(t *testing.T) {
	t.Setenv("POSTSCTL_STORE", "sqlite")
	t.Setenv("POSTSCTL_TIMEOUT", "5s")
	t.Setenv("POSTSCTL_DEBUG", "true")
	t.Setenv("POSTSCTL_URL", "http://env.test")

	cfg, err := Load([]string{"load"}, io.Discard)
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.True(t, cfg.Debug)
	assert.Equal(t, "http://env.test", cfg.BaseURL)

	cfg, err = Load([]string{"-url", "http://flag.test", "load"}, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, "http://flag.test", cfg.BaseURL, "flags win over the environment")
}

func TestLoadBadEnvIgnored(t *testing.T) {
	t.Setenv("POSTSCTL_TIMEOUT", "soon")
	t.Setenv("POSTSCTL_ROUTES", "maybe")

	cfg, err := Load(nil, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.False(t, cfg.Routes)
}

func TestLoadRejectsExtraArgs(t *testing.T) {
	_, err := Load([]string{"load", "extra"}, io.Discard)
	assert.Error(t, err)

	_, err = Load([]string{"-nope"}, io.Discard)
	assert.Error(t, err)
}
