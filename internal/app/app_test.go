package app

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shandysiswandi/seedauth/internal/pkg/rsacrypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func doJSON(t *testing.T, method, url string, payload any) (int, map[string]any) {
	t.Helper()

	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, url, body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := (&http.Client{Timeout: 5 * time.Second}).Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	out := map[string]any{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func TestApp(t *testing.T) {
	// Arrange
	dir := t.TempDir()
	keyPath := filepath.Join(dir, "student_private.pem")
	require.NoError(t, os.WriteFile(keyPath, []byte(rsacrypto.TestPrivateKeyPEM), 0o600))

	cfg := fmt.Sprintf(`
instrument:
  enabled: false
messaging:
  driver: memory
twofa:
  private_key: %q
  seed:
    driver: file
    path: %q
  code_log:
    enabled: false
`, keyPath, filepath.Join(dir, "data", "seed.txt"))
	cfgPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0o600))
	t.Setenv("CONFIG_PATH", cfgPath)

	application := New()

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	serveErr := application.Serve(l)
	base := "http://" + l.Addr().String()

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		application.Stop(ctx)
		assert.ErrorIs(t, <-serveErr, http.ErrServerClosed)
	})

	// Act & Assert
	status, body := doJSON(t, http.MethodGet, base+"/health", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "empty", body["seed"])

	status, body = doJSON(t, http.MethodGet, base+"/generate-2fa", nil)
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "Seed not decrypted yet", body["error"])

	ct, err := rsacrypto.EncryptOAEP(&rsacrypto.MustTestKey().PublicKey,
		[]byte("00112233445566778899aabbccddeeff00112233445566778899aabbccddeeff"))
	require.NoError(t, err)
	status, body = doJSON(t, http.MethodPost, base+"/decrypt-seed", map[string]string{
		"encrypted_seed": base64.StdEncoding.EncodeToString(ct),
	})
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", body["status"])

	status, body = doJSON(t, http.MethodGet, base+"/generate-2fa", nil)
	require.Equal(t, http.StatusOK, status)
	code, ok := body["code"].(string)
	require.True(t, ok)
	assert.Len(t, code, 6)

	status, body = doJSON(t, http.MethodPost, base+"/verify-2fa", map[string]string{"code": code})
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["valid"])

	status, body = doJSON(t, http.MethodPost, base+"/decrypt-seed", map[string]string{"encrypted_seed": "!!"})
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, map[string]any{"error": "Decryption failed"}, body)
}
