package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, `
server:
  addr: ":8080"
payments:
  base_url: "https://payments.example.com/api/v1"
  feed_url: "wss://payments.example.com/ws"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 900, cfg.Checkout.CountdownSeconds)
	assert.Equal(t, "info", cfg.Checkout.LogLevel)
}

func TestLoadEnvOverride(t *testing.T) {
	path := writeConfig(t, `
server:
  addr: ":8080"
payments:
  base_url: "https://payments.example.com/api/v1"
  feed_url: "wss://payments.example.com/ws"
checkout:
  countdown_seconds: 900
`)
	t.Setenv("COUNTDOWN_SECONDS", "300")
	t.Setenv("PAYMENTS_DEVICE_ID", "device-42")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 300, cfg.Checkout.CountdownSeconds)
	assert.Equal(t, "device-42", cfg.Payments.DeviceID)
}

func TestLoadIncomplete(t *testing.T) {
	path := writeConfig(t, `
server:
  addr: ":8080"
`)
	_, err := Load(path)
	assert.Error(t, err)
}
