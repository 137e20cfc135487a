package main

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sethvargo/go-retry"
	"github.com/shandysiswandi/seedauth/internal/pkg/otp"
	"github.com/shandysiswandi/seedauth/internal/pkg/rsacrypto"
	"github.com/shandysiswandi/seedauth/internal/pkg/seed"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSeedHex = "00112233445566778899aabbccddeeff00112233445566778899aabbccddeeff"

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func encryptSeed(t *testing.T, hex string) string {
	t.Helper()
	ct, err := rsacrypto.EncryptOAEP(&rsacrypto.MustTestKey().PublicKey, []byte(hex))
	require.NoError(t, err)
	return base64.StdEncoding.EncodeToString(ct)
}

func TestRun(t *testing.T) {
	t.Run("NoArgs", func(t *testing.T) {
		err := run(context.Background(), nil, &bytes.Buffer{})
		assert.ErrorIs(t, err, errUsage)
	})

	t.Run("UnknownCommand", func(t *testing.T) {
		err := run(context.Background(), []string{"nope"}, &bytes.Buffer{})
		assert.ErrorIs(t, err, errUsage)
	})
}

func TestKeygen(t *testing.T) {
	t.Run("WritesKeyPair", func(t *testing.T) {
		// Arrange
		dir := t.TempDir()
		priv := filepath.Join(dir, "keys", "private.pem")
		pub := filepath.Join(dir, "keys", "public.pem")

		// Act
		err := run(context.Background(), []string{"keygen", "-bits", "2048", "-private", priv, "-public", pub, "-public-format", "pkcs1"}, &bytes.Buffer{})

		// Assert
		require.NoError(t, err)

		key, err := rsacrypto.ParsePrivateKey(priv)
		require.NoError(t, err)
		assert.Equal(t, 2048, key.N.BitLen())

		raw, err := os.ReadFile(pub)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(string(raw), "-----BEGIN RSA PUBLIC KEY-----"))

		pk, err := rsacrypto.ParsePublicKey(pub)
		require.NoError(t, err)
		assert.True(t, key.PublicKey.Equal(pk))

		info, err := os.Stat(priv)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
	})

	t.Run("RejectsSmallKeys", func(t *testing.T) {
		dir := t.TempDir()
		err := run(context.Background(), []string{"keygen", "-bits", "1024", "-private", filepath.Join(dir, "a"), "-public", filepath.Join(dir, "b")}, &bytes.Buffer{})
		assert.Error(t, err)
		assert.NoFileExists(t, filepath.Join(dir, "a"))
	})

	t.Run("RejectsUnknownFormat", func(t *testing.T) {
		dir := t.TempDir()
		err := run(context.Background(), []string{"keygen", "-bits", "2048", "-private", filepath.Join(dir, "a"), "-public", filepath.Join(dir, "b"), "-public-format", "der"}, &bytes.Buffer{})
		assert.ErrorIs(t, err, rsacrypto.ErrUnknownFormat)
	})
}

func TestRequest(t *testing.T) {
	noBackoff := func() retry.Backoff {
		return retry.WithMaxRetries(2, retry.NewConstant(time.Millisecond))
	}
	orig := requestBackoff
	requestBackoff = noBackoff
	t.Cleanup(func() { requestBackoff = orig })

	t.Run("SavesEncryptedSeed", func(t *testing.T) {
		// Arrange
		dir := t.TempDir()
		pub := writeFile(t, dir, "pub.pem", rsacrypto.TestPublicKeyPEM)
		out := filepath.Join(dir, "encrypted_seed.txt")

		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if calls.Add(1) == 1 {
				w.WriteHeader(http.StatusBadGateway)
				return
			}

			var in seedRequest
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&in))
			assert.Equal(t, "S1", in.StudentID)
			assert.Equal(t, "https://github.com/x/y", in.GithubRepoURL)
			assert.Equal(t, rsacrypto.TestPublicKeyPEM, in.PublicKey)
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

			_ = json.NewEncoder(w).Encode(seedResponse{Status: "success", EncryptedSeed: "Y2lwaGVy"})
		}))
		defer srv.Close()

		// Act
		err := run(context.Background(), []string{"request", "-student-id", "S1", "-repo", "https://github.com/x/y", "-api", srv.URL, "-public", pub, "-out", out}, &bytes.Buffer{})

		// Assert
		require.NoError(t, err)
		assert.Equal(t, int32(2), calls.Load())
		raw, err := os.ReadFile(out)
		require.NoError(t, err)
		assert.Equal(t, "Y2lwaGVy", string(raw))
	})

	t.Run("ClientErrorIsNotRetried", func(t *testing.T) {
		dir := t.TempDir()
		pub := writeFile(t, dir, "pub.pem", rsacrypto.TestPublicKeyPEM)

		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			calls.Add(1)
			http.Error(w, "bad student", http.StatusBadRequest)
		}))
		defer srv.Close()

		err := run(context.Background(), []string{"request", "-student-id", "S1", "-repo", "r", "-api", srv.URL, "-public", pub, "-out", filepath.Join(dir, "o")}, &bytes.Buffer{})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "api error 400")
		assert.Equal(t, int32(1), calls.Load())
	})

	t.Run("MissingField", func(t *testing.T) {
		dir := t.TempDir()
		pub := writeFile(t, dir, "pub.pem", rsacrypto.TestPublicKeyPEM)

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"status":"success"}`))
		}))
		defer srv.Close()

		err := run(context.Background(), []string{"request", "-student-id", "S1", "-repo", "r", "-api", srv.URL, "-public", pub, "-out", filepath.Join(dir, "o")}, &bytes.Buffer{})

		assert.ErrorIs(t, err, errMissingEncryptedSeed)
	})

	t.Run("RequiredFlags", func(t *testing.T) {
		err := run(context.Background(), []string{"request", "-api", "http://localhost"}, &bytes.Buffer{})
		assert.Error(t, err)
	})
}

func TestDecryptAndCode(t *testing.T) {
	orig := now
	now = func() time.Time { return time.Unix(1_700_000_000, 0) }
	t.Cleanup(func() { now = orig })

	t.Run("DecryptThenLogCode", func(t *testing.T) {
		// Arrange
		dir := t.TempDir()
		key := writeFile(t, dir, "priv.pem", rsacrypto.TestPrivateKeyPEM)
		in := writeFile(t, dir, "encrypted_seed.txt", encryptSeed(t, strings.ToUpper(testSeedHex))+"\n")
		seedPath := filepath.Join(dir, "data", "seed.txt")
		logPath := filepath.Join(dir, "cron", "last_code.txt")

		// Act
		err := run(context.Background(), []string{"decrypt", "-private-key", key, "-in", in, "-seed", seedPath}, &bytes.Buffer{})
		require.NoError(t, err)

		var out bytes.Buffer
		err = run(context.Background(), []string{"code", "-seed", seedPath, "-out", logPath}, &out)
		require.NoError(t, err)

		// Assert
		stored, err := os.ReadFile(seedPath)
		require.NoError(t, err)
		assert.Equal(t, testSeedHex, strings.TrimSpace(string(stored)))

		sd, err := seed.Parse(testSeedHex)
		require.NoError(t, err)
		want, err := otp.Generate(string(sd.Encoded()), otp.TimeStep(now()))
		require.NoError(t, err)

		line, err := os.ReadFile(logPath)
		require.NoError(t, err)
		assert.Equal(t, "2023-11-14 22:13:20 - 2FA Code: "+want, string(line))
		assert.Equal(t, string(line)+"\n", out.String())
	})

	t.Run("DecryptRejectsGarbage", func(t *testing.T) {
		dir := t.TempDir()
		key := writeFile(t, dir, "priv.pem", rsacrypto.TestPrivateKeyPEM)
		in := writeFile(t, dir, "encrypted_seed.txt", "not base64!")
		seedPath := filepath.Join(dir, "seed.txt")

		err := run(context.Background(), []string{"decrypt", "-private-key", key, "-in", in, "-seed", seedPath}, &bytes.Buffer{})

		assert.ErrorIs(t, err, seed.ErrDecryptionFailed)
		assert.NoFileExists(t, seedPath)
	})

	t.Run("CodeSkipsWithoutSeed", func(t *testing.T) {
		dir := t.TempDir()
		logPath := filepath.Join(dir, "last_code.txt")

		var out bytes.Buffer
		err := run(context.Background(), []string{"code", "-seed", filepath.Join(dir, "missing.txt"), "-out", logPath}, &out)

		require.NoError(t, err)
		assert.NoFileExists(t, logPath)
		assert.Contains(t, out.String(), "skipping")
	})
}

func TestProof(t *testing.T) {
	const commit = "0123456789abcdef0123456789abcdef01234567"

	t.Run("SignsAndEncryptsCommit", func(t *testing.T) {
		// Arrange
		dir := t.TempDir()
		studentKey := writeFile(t, dir, "student.pem", rsacrypto.TestPrivateKeyPEM)

		instructor, err := rsacrypto.GenerateKey(3072)
		require.NoError(t, err)
		instructorPEM, err := rsacrypto.EncodePublicKeyPEM(&instructor.PublicKey, rsacrypto.PublicFormatSPKI)
		require.NoError(t, err)
		instructorPath := writeFile(t, dir, "instructor.pem", string(instructorPEM))
		outPath := filepath.Join(dir, "proof.txt")

		// Act
		err = run(context.Background(), []string{"proof", "-private-key", studentKey, "-instructor-key", instructorPath, "-commit", commit, "-out", outPath}, &bytes.Buffer{})

		// Assert
		require.NoError(t, err)

		raw, err := os.ReadFile(outPath)
		require.NoError(t, err)
		ct, err := base64.StdEncoding.DecodeString(string(raw))
		require.NoError(t, err)
		sig, err := rsacrypto.DecryptOAEP(instructor, ct)
		require.NoError(t, err)
		assert.NoError(t, rsacrypto.VerifyPSS(&rsacrypto.MustTestKey().PublicKey, []byte(commit), sig))
	})

	t.Run("SignatureTooLargeForInstructorKey", func(t *testing.T) {
		dir := t.TempDir()
		studentKey := writeFile(t, dir, "student.pem", rsacrypto.TestPrivateKeyPEM)
		instructorPath := writeFile(t, dir, "instructor.pem", rsacrypto.TestPublicKeyPEM)

		err := run(context.Background(), []string{"proof", "-private-key", studentKey, "-instructor-key", instructorPath, "-commit", commit, "-out", ""}, &bytes.Buffer{})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "encrypt signature")
	})

	t.Run("InvalidCommit", func(t *testing.T) {
		err := run(context.Background(), []string{"proof", "-commit", "HEAD"}, &bytes.Buffer{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid commit hash")
	})
}
