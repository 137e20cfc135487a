package router

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shandysiswandi/seedauth/internal/pkg/config"
	"github.com/shandysiswandi/seedauth/internal/pkg/goerror"
	"github.com/shandysiswandi/seedauth/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedID string

func (f fixedID) Generate() string { return string(f) }

type created struct {
	ID string `json:"id"`
}

func (created) StatusCode() int { return http.StatusCreated }

func newTestRouter(t *testing.T, yaml string) *Router {
	t.Helper()

	cfg, err := config.NewViperFromBytes("yaml", []byte(yaml))
	require.NoError(t, err)

	return NewRouter(Config{Config: cfg, UUID: fixedID("cid-1")})
}

func serve(r http.Handler, method, target, body string, headers ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestRouter_Responses(t *testing.T) {
	r := newTestRouter(t, "instrument:\n  enabled: false\n")
	r.GET("/ok", func(*Request) (any, error) { return map[string]string{"status": "ok"}, nil })
	r.POST("/created", func(*Request) (any, error) { return created{ID: "1"}, nil })
	r.GET("/empty", func(*Request) (any, error) { return nil, nil })
	r.GET("/server", func(*Request) (any, error) {
		return nil, goerror.NewServerMsg(errors.New("disk on fire"), "Decryption failed")
	})
	r.GET("/plain", func(*Request) (any, error) { return nil, errors.New("raw") })
	r.GET("/invalid", func(*Request) (any, error) {
		return nil, goerror.NewInvalidFormat("Missing code")
	})
	r.GET("/wrapped-validation", func(*Request) (any, error) {
		return nil, goerror.NewServerMsg(validator.V10ValidationError{"encrypted_seed": "required"}, "Decryption failed")
	})
	r.GET("/panic", func(*Request) (any, error) { panic("boom") })

	tests := []struct {
		name   string
		method string
		path   string
		status int
		want   map[string]any
	}{
		{name: "ok", method: http.MethodGet, path: "/ok", status: 200, want: map[string]any{"status": "ok"}},
		{name: "custom status", method: http.MethodPost, path: "/created", status: 201, want: map[string]any{"id": "1"}},
		{name: "server error hides cause", method: http.MethodGet, path: "/server", status: 500, want: map[string]any{"error": "Decryption failed"}},
		{name: "unclassified error", method: http.MethodGet, path: "/plain", status: 500, want: map[string]any{"error": "Internal server error"}},
		{name: "invalid format", method: http.MethodGet, path: "/invalid", status: 400, want: map[string]any{"error": "Missing code"}},
		{name: "validation cause stays hidden", method: http.MethodGet, path: "/wrapped-validation", status: 500, want: map[string]any{"error": "Decryption failed"}},
		{name: "panic", method: http.MethodGet, path: "/panic", status: 500, want: map[string]any{"error": "Internal server error"}},
		{name: "not found", method: http.MethodGet, path: "/nope", status: 404, want: map[string]any{"error": "endpoint not found"}},
		{name: "method not allowed", method: http.MethodDelete, path: "/ok", status: 405, want: map[string]any{"error": "method not allowed"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(r, tt.method, tt.path, "")
			assert.Equal(t, tt.status, rec.Code)
			assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")
			assert.Equal(t, tt.want, decode(t, rec))
			assert.NotContains(t, rec.Body.String(), "disk on fire")
		})
	}

	rec := serve(r, http.MethodGet, "/empty", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestRouter_CorrelationID(t *testing.T) {
	r := newTestRouter(t, "instrument:\n  enabled: false\n")
	r.GET("/ok", func(*Request) (any, error) { return map[string]string{}, nil })

	rec := serve(r, http.MethodGet, "/ok", "")
	assert.Equal(t, "cid-1", rec.Header().Get(HeaderCorrelationID))

	rec = serve(r, http.MethodGet, "/ok", "", HeaderCorrelationID, "from-client")
	assert.Equal(t, "from-client", rec.Header().Get(HeaderCorrelationID))

	rec = serve(r, http.MethodGet, "/ok", "", HeaderRequestID, "from-proxy")
	assert.Equal(t, "from-proxy", rec.Header().Get(HeaderCorrelationID))
}

func TestRouter_Maintenance(t *testing.T) {
	r := newTestRouter(t, "app:\n  maintenance:\n    endpoints:\n      - /down\n")
	r.GET("/down", func(*Request) (any, error) { return map[string]string{}, nil })
	r.GET("/up", func(*Request) (any, error) { return map[string]string{}, nil })

	rec := serve(r, http.MethodGet, "/down", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, map[string]any{"error": "service is under maintenance"}, decode(t, rec))

	rec = serve(r, http.MethodGet, "/up", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequest_DecodeBody(t *testing.T) {
	type payload struct {
		Code string `json:"code"`
	}

	tests := []struct {
		name    string
		body    string
		want    string
		wantErr bool
	}{
		{name: "valid", body: `{"code":"123456"}`, want: "123456"},
		{name: "unknown fields ignored", body: `{"code":"1","extra":true}`, want: "1"},
		{name: "empty body", body: ""},
		{name: "malformed", body: `{"code":`, wantErr: true},
		{name: "trailing data", body: `{"code":"1"} {}`, wantErr: true},
		{name: "wrong type", body: `{"code":123456}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := &Request{Request: httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))}

			var got payload
			err := req.DecodeBody(&got)
			if tt.wantErr {
				var gerr *goerror.Error
				require.ErrorAs(t, err, &gerr)
				assert.Equal(t, http.StatusBadRequest, gerr.StatusCode())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Code)
		})
	}
}

func TestSanitizeCorrelationID(t *testing.T) {
	assert.Equal(t, "abc", sanitizeCorrelationID("  abc "))
	assert.Empty(t, sanitizeCorrelationID("a\r\nb"))
	assert.Len(t, sanitizeCorrelationID(strings.Repeat("x", 300)), maxCorrelationIDLen)
}

func TestLoggableBody_MasksFields(t *testing.T) {
	keys := map[string]struct{}{"encrypted_seed": {}}

	got := loggableBody([]byte(`{"encrypted_seed":"secret","other":"x"}`), false, keys)
	assert.Equal(t, map[string]any{"encrypted_seed": "***", "other": "x"}, got)

	assert.Nil(t, loggableBody(nil, false, keys))
	assert.Equal(t, "plain", loggableBody([]byte("plain"), false, keys))
	assert.Equal(t, map[string]any{"body": "plain", "truncated": true}, loggableBody([]byte("plain"), true, keys))
}
