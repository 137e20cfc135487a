package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shandysiswandi/seedauth/internal/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testYAML = `
app:
  server:
    http:
      address: ":9090"
    cors: "https://a.example, ,https://b.example"
twofa:
  totp:
    window: 2
  code_log:
    interval_seconds: 15
  hmac_key: "c2VjcmV0"
instrument:
  log_mask_fields:
    - seed
    - " code "
`

func TestNewViperFromBytes(t *testing.T) {
	t.Parallel()

	cfg, err := config.NewViperFromBytes("yaml", []byte(testYAML))
	require.NoError(t, err)
	defer cfg.Close()

	assert.Equal(t, ":9090", cfg.GetString("app.server.http.address"))
	assert.Equal(t, uint(2), cfg.GetUint("twofa.totp.window"))
	assert.Equal(t, 15*time.Second, cfg.GetSecond("twofa.code_log.interval_seconds"))
	assert.Equal(t, []byte("secret"), cfg.GetBinary("twofa.hmac_key"))
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.GetArray("app.server.cors"))
	assert.Equal(t, []string{"seed", "code"}, cfg.GetArray("instrument.log_mask_fields"))
	assert.Empty(t, cfg.GetArray("does.not.exist"))
}

func TestNewViperFromBytes_Defaults(t *testing.T) {
	t.Parallel()

	cfg, err := config.NewViperFromBytes("yaml", []byte("app: {}"))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.GetString("app.server.http.address"))
	assert.Equal(t, "file", cfg.GetString("twofa.seed.driver"))
	assert.Equal(t, uint(1), cfg.GetUint("twofa.totp.window"))
	assert.Equal(t, time.Minute, cfg.GetSecond("twofa.code_log.interval_seconds"))
	assert.True(t, cfg.GetBool("modules.twofa.enabled"))
	assert.Equal(t, []string{"encrypted_seed", "seed", "code", "private_key"}, cfg.GetArray("instrument.log_mask_fields"))
}

func TestNewViperFromBytes_Invalid(t *testing.T) {
	t.Parallel()

	_, err := config.NewViperFromBytes("", []byte("a: b"))
	assert.Error(t, err)

	_, err = config.NewViperFromBytes("yaml", []byte("a: [b"))
	assert.Error(t, err)
}

func TestViper_EnvOverride(t *testing.T) {
	t.Setenv("SEEDAUTH_TWOFA_SEED_PATH", "/tmp/override.txt")

	cfg, err := config.NewViperFromBytes("yaml", []byte(testYAML))
	require.NoError(t, err)

	assert.Equal(t, "/tmp/override.txt", cfg.GetString("twofa.seed.path"))
}

func TestNewViper(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testYAML), 0o600))

	cfg, err := config.NewViper(path)
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.GetString("app.server.http.address"))

	_, err = config.NewViper(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}
