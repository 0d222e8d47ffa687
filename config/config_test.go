package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadCreatesDefaultFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bridge.toml")
	cfg, err := Load(path)
	require.NoError(t, err)
	require.FileExists(t, path)
	require.Equal(t, ":8547", cfg.ListenAddress)
	require.Equal(t, "leveldb", cfg.Database)
	require.Equal(t, "bridge-token", cfg.ContractAccount)

	timeout, err := cfg.ProverTimeoutDuration()
	require.NoError(t, err)
	require.Equal(t, 30*time.Second, timeout)
}

func TestLoadExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bridge.toml")
	contents := `
ListenAddress = ":9000"
Database = "memory"
ContractAccount = "my-bridge"
ProverEndpoint = "http://prover:8548"
ProverTimeout = "5s"
`
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, ":9000", cfg.ListenAddress)
	require.Equal(t, "memory", cfg.Database)
	require.Equal(t, "my-bridge", cfg.ContractAccount)
	require.Equal(t, 600.0, cfg.RateLimitPerMinute)
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bridge.toml")
	contents := `
ContractAccount = "my-bridge"
ProverEndpoint = "http://prover:8548"
NotARealSetting = true
`
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
	_, err := Load(path)
	require.ErrorContains(t, err, "unknown key")
}

func TestLoadRejectsBadBackend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bridge.toml")
	contents := `
Database = "postgres"
ContractAccount = "my-bridge"
ProverEndpoint = "http://prover:8548"
`
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
	_, err := Load(path)
	require.ErrorContains(t, err, "unsupported database backend")
}

func TestLoadRejectsBadTimeout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bridge.toml")
	contents := `
ContractAccount = "my-bridge"
ProverEndpoint = "http://prover:8548"
ProverTimeout = "soon"
`
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
	_, err := Load(path)
	require.ErrorContains(t, err, "invalid ProverTimeout")
}
