package webapi_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rohmanhakim/site-parser/internal/logging"
	"github.com/rohmanhakim/site-parser/internal/webapi"
)

func newTestServer(t *testing.T) *webapi.Server {
	t.Helper()
	t.Setenv("SITE_PARSER_TRUSTED_HOSTS", "*")
	return webapi.NewServer(zap.NewNop(), logging.NewBuffer())
}

func postJSON(t *testing.T, server *webapi.Server, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	server := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestParseRequiresURL(t *testing.T) {
	server := newTestServer(t)
	rec := postJSON(t, server, "/api/parse", map[string]any{"url": "   "})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestParseRejectsUnsupportedOverride(t *testing.T) {
	server := newTestServer(t)
	rec := postJSON(t, server, "/api/parse", map[string]any{
		"url":       "http://example.com/",
		"overrides": map[string]any{"warp_speed": true},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "unsupported override")
}

func TestParseRejectsOutOfBoundsOverride(t *testing.T) {
	server := newTestServer(t)
	rec := postJSON(t, server, "/api/parse", map[string]any{
		"url":       "http://example.com/",
		"overrides": map[string]any{"max_pages": 100000},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "max_pages")
}

func TestParseRejectsMissingConfigFile(t *testing.T) {
	server := newTestServer(t)
	rec := postJSON(t, server, "/api/parse", map[string]any{
		"url":    "http://example.com/",
		"config": "/no/such/config.json",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "config file not found")
}

func TestParseRejectsInvalidStartURL(t *testing.T) {
	server := newTestServer(t)
	rec := postJSON(t, server, "/api/parse", map[string]any{
		"url": "ftp://example.com/",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestParseRunsCrawl(t *testing.T) {
	target := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, `<html><body>hello@example.com</body></html>`)
	}))
	defer target.Close()

	server := newTestServer(t)
	rec := postJSON(t, server, "/api/parse", map[string]any{
		"url": target.URL + "/",
		"overrides": map[string]any{
			"max_pages":   1,
			"max_depth":   0,
			"max_seconds": 5,
			"retry_total": 0,
		},
		"diagnostics": true,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var result struct {
		URL         string         `json:"url"`
		Emails      []string       `json:"emails"`
		Phones      []string       `json:"phones"`
		Diagnostics map[string]any `json:"diagnostics"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, target.URL, result.URL)
	assert.Equal(t, []string{"hello@example.com"}, result.Emails)
	assert.NotNil(t, result.Diagnostics)
}

func TestLogsEndpoint(t *testing.T) {
	t.Setenv("SITE_PARSER_TRUSTED_HOSTS", "*")
	logger, buffer, err := logging.NewLogger("INFO")
	require.NoError(t, err)
	server := webapi.NewServer(zap.NewNop(), buffer)

	logger.Info("first")
	logger.Info("second")

	req := httptest.NewRequest(http.MethodGet, "/api/logs?after=0&limit=1", nil)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var payload struct {
		Entries []logging.Entry `json:"entries"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	require.Len(t, payload.Entries, 1)
	assert.Contains(t, payload.Entries[0].Message, "first")
}

func TestTrustedHostRejection(t *testing.T) {
	t.Setenv("SITE_PARSER_TRUSTED_HOSTS", "allowed.example")
	server := webapi.NewServer(zap.NewNop(), logging.NewBuffer())

	req := httptest.NewRequest(http.MethodGet, "http://evil.example/api/health", nil)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "http://allowed.example/api/health", nil)
	rec = httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCORSPreflight(t *testing.T) {
	t.Setenv("SITE_PARSER_TRUSTED_HOSTS", "*")
	t.Setenv("SITE_PARSER_CORS_ORIGINS", "http://ui.example")
	server := webapi.NewServer(zap.NewNop(), logging.NewBuffer())

	req := httptest.NewRequest(http.MethodOptions, "/api/parse", nil)
	req.Header.Set("Origin", "http://ui.example")
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://ui.example", rec.Header().Get("Access-Control-Allow-Origin"))
}
