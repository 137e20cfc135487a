package instrument

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	return line
}

func TestHandler_MasksConfiguredFields(t *testing.T) {
	t.Parallel()

	buf := &bytes.Buffer{}
	logger := slog.New(newHandler(buf, "seedauth", nil, []string{"Seed", "code"}, slog.LevelInfo))

	logger.Info("decrypted",
		"seed", "0123456789abcdef",
		"fingerprint", "abc",
		"body", `{"code":"123456","valid_for":12}`,
		slog.Group("req", slog.String("code", "654321")),
		"headers", map[string]string{"CODE": "x", "accept": "json"},
	)

	line := decodeLine(t, buf)
	assert.Equal(t, MaskedValue, line["seed"])
	assert.Equal(t, "abc", line["fingerprint"])
	assert.JSONEq(t, `{"code":"***","valid_for":12}`, line["body"].(string))
	assert.Equal(t, map[string]any{"code": MaskedValue}, line["req"])
	assert.Equal(t, map[string]any{"CODE": MaskedValue, "accept": "json"}, line["headers"])
	assert.Equal(t, "seedauth", line["service"])
	assert.Equal(t, "INFO", line["severity"])
	assert.Contains(t, line, "ts")
}

func TestHandler_MasksWithAttrs(t *testing.T) {
	t.Parallel()

	buf := &bytes.Buffer{}
	logger := slog.New(newHandler(buf, "", nil, []string{"private_key"}, slog.LevelInfo)).
		With("private_key", "-----BEGIN")

	logger.Info("loaded")

	line := decodeLine(t, buf)
	assert.Equal(t, MaskedValue, line["private_key"])
	assert.NotContains(t, line, "service")
}

func TestHandler_CorrelationID(t *testing.T) {
	t.Parallel()

	buf := &bytes.Buffer{}
	logger := slog.New(newHandler(buf, "seedauth", nil, nil, slog.LevelInfo))

	ctx := SetCorrelationID(context.Background(), "cid-1")
	logger.InfoContext(ctx, "hello")

	assert.Equal(t, "cid-1", decodeLine(t, buf)["_cID"])
	assert.Equal(t, "cid-1", GetCorrelationID(ctx))
	assert.Empty(t, GetCorrelationID(context.Background()))
}

func TestHandler_Level(t *testing.T) {
	t.Parallel()

	buf := &bytes.Buffer{}
	logger := slog.New(newHandler(buf, "", nil, nil, parseLevel("warn")))

	logger.Info("dropped")
	assert.Zero(t, buf.Len())

	logger.Warn("kept")
	assert.NotZero(t, buf.Len())
	assert.Equal(t, slog.LevelInfo, parseLevel("nonsense"))
}

func TestMask(t *testing.T) {
	t.Parallel()

	keys := MaskKeys([]string{" encrypted_seed ", ""})
	got := Mask(map[string]any{
		"encrypted_seed": "abc",
		"nested":         []any{map[string]any{"Encrypted_Seed": "def", "ok": 1.0}},
	}, keys)

	assert.Equal(t, map[string]any{
		"encrypted_seed": MaskedValue,
		"nested":         []any{map[string]any{"Encrypted_Seed": MaskedValue, "ok": 1.0}},
	}, got)
	assert.Equal(t, "plain", Mask("plain", keys))
}
