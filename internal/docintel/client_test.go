package docintel

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testClient(endpoint string) *Client {
	return NewClient(Config{
		Endpoint:     endpoint,
		APIKey:       "test-key",
		PollInterval: time.Millisecond,
		Timeout:      time.Second,
	}, testLogger())
}

func TestClientAnalyze(t *testing.T) {
	t.Parallel()

	var polls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.Header.Get("Ocp-Apim-Subscription-Key"))
		switch r.Method {
		case http.MethodPost:
			assert.Equal(t, "/formrecognizer/documentModels/prebuilt-invoice:analyze", r.URL.Path)
			assert.Equal(t, "2023-07-31", r.URL.Query().Get("api-version"))
			assert.Equal(t, "application/pdf", r.Header.Get("Content-Type"))
			w.Header().Set("Operation-Location", "http://"+r.Host+"/op/1")
			w.WriteHeader(http.StatusAccepted)
		case http.MethodGet:
			if polls.Add(1) < 2 {
				_ = json.NewEncoder(w).Encode(map[string]any{"status": "running"})
				return
			}
			_ = json.NewEncoder(w).Encode(map[string]any{
				"status": "succeeded",
				"analyzeResult": map[string]any{
					"content": "FACTURA",
					"documents": []map[string]any{{
						"confidence": 0.9,
						"fields": map[string]any{
							"InvoiceId": map[string]any{"content": "FE-1", "confidence": 0.95},
						},
					}},
				},
			})
		}
	}))
	defer srv.Close()

	res, err := testClient(srv.URL).Analyze(context.Background(), "prebuilt-invoice", []byte("%PDF"))
	require.NoError(t, err)
	require.Len(t, res.Documents, 1)
	assert.Equal(t, "FACTURA", res.Content)
	assert.Equal(t, "FE-1", res.Documents[0].Fields["InvoiceId"].Content)
	assert.GreaterOrEqual(t, polls.Load(), int32(2))
}

func TestClientAnalyzeErrors(t *testing.T) {
	t.Parallel()

	t.Run("submit rejected carries status", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusForbidden)
			_ = json.NewEncoder(w).Encode(map[string]any{
				"error": map[string]any{"code": "Unauthorized", "message": "key rejected"},
			})
		}))
		defer srv.Close()

		_, err := testClient(srv.URL).Analyze(context.Background(), "prebuilt-invoice", nil)
		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)
		assert.Contains(t, apiErr.Message, "key rejected")
	})

	t.Run("missing operation location", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusAccepted)
		}))
		defer srv.Close()

		_, err := testClient(srv.URL).Analyze(context.Background(), "prebuilt-invoice", nil)
		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Contains(t, apiErr.Message, "Operation-Location")
	})

	t.Run("failed operation reports service error", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodPost {
				w.Header().Set("Operation-Location", "http://"+r.Host+"/op/1")
				w.WriteHeader(http.StatusAccepted)
				return
			}
			_ = json.NewEncoder(w).Encode(map[string]any{
				"status": "failed",
				"error":  map[string]any{"code": "InvalidContent", "message": "corrupt pdf"},
			})
		}))
		defer srv.Close()

		_, err := testClient(srv.URL).Analyze(context.Background(), "prebuilt-invoice", nil)
		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Zero(t, apiErr.StatusCode)
		assert.Contains(t, apiErr.Message, "InvalidContent")
	})

	t.Run("deadline exceeded while polling", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodPost {
				w.Header().Set("Operation-Location", "http://"+r.Host+"/op/1")
				w.WriteHeader(http.StatusAccepted)
				return
			}
			_ = json.NewEncoder(w).Encode(map[string]any{"status": "running"})
		}))
		defer srv.Close()

		c := NewClient(Config{
			Endpoint:     srv.URL,
			APIKey:       "test-key",
			PollInterval: 5 * time.Millisecond,
			Timeout:      30 * time.Millisecond,
		}, testLogger())
		_, err := c.Analyze(context.Background(), "prebuilt-invoice", nil)
		require.Error(t, err)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})
}

func TestAnalyzeResultText(t *testing.T) {
	t.Parallel()

	t.Run("content wins", func(t *testing.T) {
		t.Parallel()
		r := &AnalyzeResult{Content: "whole text", Pages: []Page{{Lines: []Line{{Content: "line"}}}}}
		assert.Equal(t, "whole text", r.Text())
	})

	t.Run("page lines joined", func(t *testing.T) {
		t.Parallel()
		r := &AnalyzeResult{Pages: []Page{
			{Lines: []Line{{Content: "uno"}, {Content: "dos"}}},
			{Lines: []Line{{Content: "tres"}}},
		}}
		assert.Equal(t, "uno\ndos\ntres", r.Text())
	})

	t.Run("empty result", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "", (&AnalyzeResult{}).Text())
	})
}
