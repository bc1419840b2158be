package notifier

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

// ImageHost uploads chart images to a git-hosting contents API so the
// webhook markdown can embed them by URL.
type ImageHost struct {
	BaseURL     string // API root, e.g. https://gitee.com/api/v5
	Owner       string
	Repo        string
	AccessToken string
	Client      *http.Client

	now func() time.Time
}

// NewImageHost creates an image host client.
func NewImageHost(baseURL, owner, repo, accessToken string) *ImageHost {
	return &ImageHost{
		BaseURL:     baseURL,
		Owner:       owner,
		Repo:        repo,
		AccessToken: accessToken,
		Client:      &http.Client{Timeout: 30 * time.Second},
		now:         time.Now,
	}
}

// Upload pushes the file at path to the repository as a new object and
// returns its public download URL. The remote filename carries a Unix
// timestamp so repeated runs never collide.
func (h *ImageHost) Upload(ctx context.Context, path string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read image: %w", err)
	}

	remoteName := fmt.Sprintf("report_%d.png", h.now().Unix())
	endpoint := fmt.Sprintf("%s/repos/%s/%s/contents/%s", h.BaseURL, h.Owner, h.Repo, remoteName)

	payload := map[string]string{
		"access_token": h.AccessToken,
		"content":      base64.StdEncoding.EncodeToString(raw),
		"message":      "Upload advisory report chart",
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("upload image: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		respBody, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("upload image: status %d, body: %s", resp.StatusCode, string(respBody))
	}

	var result struct {
		Content struct {
			DownloadURL string `json:"download_url"`
		} `json:"content"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decode upload response: %w", err)
	}
	if result.Content.DownloadURL == "" {
		return "", fmt.Errorf("upload response missing download_url")
	}
	return result.Content.DownloadURL, nil
}
