package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsWithoutFile(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "localhost:8080", cfg.Server.Addr())
	assert.Equal(t, 30*time.Second, cfg.Fetch.Timeout)
	assert.Equal(t, 10*time.Second, cfg.Fetch.EnterpriseAttemptTimeout)
	assert.Equal(t, 5, cfg.Fetch.MaxRedirects)
	assert.Equal(t, "bolt", cfg.Store.Backend)
	assert.Equal(t, "excelUrl", cfg.Store.Key)
	assert.Equal(t, "Rs.", cfg.Cart.Currency)
	assert.Equal(t, 0.0, cfg.Cart.TaxRate)
	assert.Contains(t, cfg.Catalog.StaleMarkers, "excel.cloud.microsoft")
	assert.Contains(t, cfg.Catalog.DefaultURL, "1L4iygFD3mB7jlJNAh97eeBfxkC7VBVYdwkH6Rb7SCMQ")
}

func TestLoadFileAndEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	yaml := []byte("server:\n  port: 9090\ncart:\n  tax_rate: 0.1\nfetch:\n  timeout: 5s\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), yaml, 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("CART_CURRENCY=PKR\n"), 0o600))
	t.Setenv("SERVER_HOST", "0.0.0.0")
	t.Cleanup(func() { os.Unsetenv("CART_CURRENCY") })

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:9090", cfg.Server.Addr())
	assert.Equal(t, 0.1, cfg.Cart.TaxRate)
	assert.Equal(t, 5*time.Second, cfg.Fetch.Timeout)
	assert.Equal(t, "PKR", cfg.Cart.Currency)
}

func TestLoadRejectsUnknownBackend(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("STORE_BACKEND", "etcd")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported store backend")
}
