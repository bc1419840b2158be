// Package notifier delivers advisory reports to a signed group webhook
// and hosts chart images on a git-based image host.
package notifier

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog"
)

// WebhookNotifier sends markdown messages to a DingTalk-style group
// webhook, signing each request with the shared secret.
type WebhookNotifier struct {
	WebhookURL string
	Secret     string
	Client     *http.Client
	log        zerolog.Logger

	// now is swappable for deterministic signature tests.
	now func() time.Time
}

// NewWebhookNotifier creates a notifier with optional proxy support.
func NewWebhookNotifier(webhookURL, secret, proxyURL string, log zerolog.Logger) *WebhookNotifier {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &WebhookNotifier{
		WebhookURL: webhookURL,
		Secret:     secret,
		Client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
		log: log.With().Str("component", "notifier").Logger(),
		now: time.Now,
	}
}

// sign computes the webhook signature: the millisecond timestamp joined
// with the secret by a newline, HMAC-SHA256 under the secret, base64,
// then URL-encoded.
func sign(secret string, timestampMillis int64) string {
	payload := strconv.FormatInt(timestampMillis, 10) + "\n" + secret
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(payload))
	return url.QueryEscape(base64.StdEncoding.EncodeToString(mac.Sum(nil)))
}

// signedURL appends timestamp and sign query parameters when a secret is
// configured; without one the bare webhook URL is used.
func (n *WebhookNotifier) signedURL() string {
	if n.Secret == "" {
		return n.WebhookURL
	}
	ts := n.now().UnixMilli()
	sep := "?"
	if u, err := url.Parse(n.WebhookURL); err == nil && u.RawQuery != "" {
		sep = "&"
	}
	return fmt.Sprintf("%s%stimestamp=%d&sign=%s", n.WebhookURL, sep, ts, sign(n.Secret, ts))
}

// SendMarkdown posts a markdown card with the given title.
func (n *WebhookNotifier) SendMarkdown(title, text string) error {
	payload := map[string]any{
		"msgtype": "markdown",
		"markdown": map[string]string{
			"title": title,
			"text":  text,
		},
	}
	return n.post(payload)
}

// SendText posts a plain text message.
func (n *WebhookNotifier) SendText(text string) error {
	payload := map[string]any{
		"msgtype": "text",
		"text":    map[string]string{"content": text},
	}
	return n.post(payload)
}

func (n *WebhookNotifier) post(payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	resp, err := n.Client.Post(n.signedURL(), "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("webhook error: status %d, body: %s", resp.StatusCode, string(respBody))
	}

	var result struct {
		ErrCode int    `json:"errcode"`
		ErrMsg  string `json:"errmsg"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if result.ErrCode != 0 {
		return fmt.Errorf("webhook rejected message: errcode %d, errmsg %s", result.ErrCode, result.ErrMsg)
	}
	return nil
}

// SendMarkdownWithRetry sends a markdown card with exponential backoff.
func (n *WebhookNotifier) SendMarkdownWithRetry(ctx context.Context, title, text string, maxRetries int) error {
	var lastErr error
	for i := 0; i <= maxRetries; i++ {
		if err := n.SendMarkdown(title, text); err != nil {
			lastErr = err
			if i == maxRetries {
				break
			}
			backoff := time.Duration(1<<uint(i)) * time.Second
			n.log.Warn().Err(err).
				Int("attempt", i+1).
				Int("max", maxRetries+1).
				Dur("backoff", backoff).
				Msg("webhook send failed, retrying")
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
				continue
			}
		}
		return nil
	}
	return fmt.Errorf("all %d retries exhausted: %w", maxRetries+1, lastErr)
}
