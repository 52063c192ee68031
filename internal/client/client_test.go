package client

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"puma/crawler/internal/config"
	"puma/crawler/internal/domain"

	"github.com/stretchr/testify/require"
)

func testConfig() config.ClientConfig {
	return config.ClientConfig{
		Timeout:         5,
		MaxRetries:      0,
		UserAgent:       "crawler-test/1.0",
		DownloadDelayMs: 1,
	}
}

func TestFetchPost(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "crawler-test/1.0", r.Header.Get("User-Agent"))
		require.Equal(t, domain.ContentTypeJSON, r.Header.Get("Content-Type"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.JSONEq(t, `{"page":1}`, string(body))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"code":"0"}`))
	}))
	defer server.Close()

	req := &domain.Request{
		Method:   http.MethodPost,
		URL:      server.URL + "/list",
		Headers:  map[string]string{"Content-Type": domain.ContentTypeJSON},
		Body:     []byte(`{"page":1}`),
		Callback: domain.CallbackListing,
	}

	resp, err := NewClient(testConfig(), nil).Fetch(context.Background(), req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, req.URL, resp.URL)
	require.Same(t, req, resp.Request)
	require.JSONEq(t, `{"code":"0"}`, string(resp.Body))
}

func TestFetchGet(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		_, _ = w.Write([]byte(`<html><script>window.__INITIAL_STATE__={}</script></html>`))
	}))
	defer server.Close()

	resp, err := NewClient(testConfig(), nil).Fetch(context.Background(), &domain.Request{Method: http.MethodGet, URL: server.URL})
	require.NoError(t, err)
	require.Contains(t, string(resp.Body), "__INITIAL_STATE__")
}

func TestFetchHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	_, err := NewClient(testConfig(), nil).Fetch(context.Background(), &domain.Request{Method: http.MethodGet, URL: server.URL})
	require.ErrorContains(t, err, "503")
}

func TestFetchCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewClient(testConfig(), nil).Fetch(ctx, &domain.Request{Method: http.MethodGet, URL: "http://127.0.0.1:1"})
	require.ErrorContains(t, err, "cancelled")
}

func TestFetchRetriesPost(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.JSONEq(t, `{"page":3}`, string(body))

		if hits.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"code":"0"}`))
	}))
	defer server.Close()

	cfg := testConfig()
	cfg.MaxRetries = 2
	cfg.RetryWaitMs = 10

	resp, err := NewClient(cfg, nil).Fetch(context.Background(), &domain.Request{
		Method:   http.MethodPost,
		URL:      server.URL,
		Headers:  map[string]string{"Content-Type": domain.ContentTypeJSON},
		Body:     []byte(`{"page":3}`),
		Callback: domain.CallbackListing,
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.EqualValues(t, 2, hits.Load())
}
