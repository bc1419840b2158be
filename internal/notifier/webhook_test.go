package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignDeterministic(t *testing.T) {
	// Signature over a known timestamp and secret must be stable.
	a := sign("SEC123", 1700000000000)
	b := sign("SEC123", 1700000000000)
	assert.Equal(t, a, b)
	assert.NotEmpty(t, a)

	// Different timestamps or secrets change the signature.
	assert.NotEqual(t, a, sign("SEC123", 1700000000001))
	assert.NotEqual(t, a, sign("other", 1700000000000))
}

func TestSendMarkdownSignsRequest(t *testing.T) {
	fixed := time.UnixMilli(1700000000000)
	var gotPath string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.String()
		assert.Equal(t, "1700000000000", r.URL.Query().Get("timestamp"))
		assert.NotEmpty(t, r.URL.Query().Get("sign"))

		var payload map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "markdown", payload["msgtype"])

		fmt.Fprint(w, `{"errcode":0,"errmsg":"ok"}`)
	}))
	defer srv.Close()

	n := NewWebhookNotifier(srv.URL, "SEC123", "", zerolog.Nop())
	n.now = func() time.Time { return fixed }

	require.NoError(t, n.SendMarkdown("daily plan", "**hello**"))
	assert.Contains(t, gotPath, "timestamp=")
	assert.Contains(t, gotPath, "sign=")
}

func TestSendWithoutSecretOmitsSignature(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.URL.Query().Get("sign"))
		fmt.Fprint(w, `{"errcode":0,"errmsg":"ok"}`)
	}))
	defer srv.Close()

	n := NewWebhookNotifier(srv.URL, "", "", zerolog.Nop())
	require.NoError(t, n.SendText("plain message"))
}

func TestSendSurfacesErrcode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"errcode":310000,"errmsg":"sign not match"}`)
	}))
	defer srv.Close()

	n := NewWebhookNotifier(srv.URL, "SEC123", "", zerolog.Nop())
	err := n.SendMarkdown("t", "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "310000")
}

func TestSendMarkdownWithRetryRecovers(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		if calls == 1 {
			http.Error(w, "flaky", http.StatusBadGateway)
			return
		}
		fmt.Fprint(w, `{"errcode":0,"errmsg":"ok"}`)
	}))
	defer srv.Close()

	n := NewWebhookNotifier(srv.URL, "", "", zerolog.Nop())
	err := n.SendMarkdownWithRetry(context.Background(), "t", "x", 2)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestSendMarkdownWithRetryExhaustedReturnsPromptly(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		http.Error(w, "down", http.StatusBadGateway)
	}))
	defer srv.Close()

	n := NewWebhookNotifier(srv.URL, "", "", zerolog.Nop())

	start := time.Now()
	err := n.SendMarkdownWithRetry(context.Background(), "t", "x", 0)
	require.Error(t, err)
	assert.Equal(t, 1, calls)
	// No backoff sleep remains once the attempt budget is spent.
	assert.Less(t, time.Since(start), time.Second)
	assert.Contains(t, err.Error(), "retries exhausted")
}

func TestImageHostUpload(t *testing.T) {
	dir := t.TempDir()
	imgPath := filepath.Join(dir, "chart.png")
	require.NoError(t, os.WriteFile(imgPath, []byte("png-bytes"), 0o644))

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Contains(t, r.URL.Path, "/repos/owner/charts/contents/report_")

		var payload map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "token", payload["access_token"])
		assert.Equal(t, "cG5nLWJ5dGVz", payload["content"]) // base64("png-bytes")

		w.WriteHeader(http.StatusCreated)
		fmt.Fprint(w, `{"content":{"download_url":"https://example.com/report.png"}}`)
	}))
	defer srv.Close()

	h := NewImageHost(srv.URL, "owner", "charts", "token")
	url, err := h.Upload(context.Background(), imgPath)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/report.png", url)
}

func TestImageHostUploadRejected(t *testing.T) {
	dir := t.TempDir()
	imgPath := filepath.Join(dir, "chart.png")
	require.NoError(t, os.WriteFile(imgPath, []byte("png-bytes"), 0o644))

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "bad token", http.StatusUnauthorized)
	}))
	defer srv.Close()

	h := NewImageHost(srv.URL, "owner", "charts", "bad")
	_, err := h.Upload(context.Background(), imgPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 401")
}
