package imagehost

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/artem13815/jobtrack/pkg/uploader"
)

// Client is a minimal client for an imgbb-compatible image hosting API.
type Client struct {
	APIKey  string
	BaseURL string
	httpDo  *http.Client
}

func New(apiKey, baseURL string) *Client {
	if baseURL == "" {
		baseURL = "https://api.imgbb.com/1/upload"
	}
	return &Client{
		APIKey:  apiKey,
		BaseURL: baseURL,
		httpDo: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type uploadResponse struct {
	Data struct {
		URL        string `json:"url"`
		DisplayURL string `json:"display_url"`
	} `json:"data"`
	Success bool `json:"success"`
	Status  int  `json:"status"`
}

func (c *Client) UploadImage(ctx context.Context, filename, contentType string, data []byte) (string, error) {
	if c.APIKey == "" {
		return "", uploader.ErrNotConfigured
	}
	if len(data) > uploader.MaxImageSize {
		return "", uploader.ErrTooLarge
	}
	if !strings.HasPrefix(contentType, "image/") {
		return "", uploader.ErrNotAnImage
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("image", filename)
	if err != nil {
		return "", err
	}
	if _, err := fw.Write(data); err != nil {
		return "", err
	}
	if err := mw.Close(); err != nil {
		return "", err
	}

	endpoint := fmt.Sprintf("%s?key=%s", c.BaseURL, c.APIKey)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &body)
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.httpDo.Do(httpReq)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errMap map[string]any
		_ = json.NewDecoder(resp.Body).Decode(&errMap)
		return "", fmt.Errorf("image host http %d: %v", resp.StatusCode, errMap)
	}
	var out uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	if !out.Success || out.Data.URL == "" {
		return "", fmt.Errorf("image host rejected the upload (status %d)", out.Status)
	}
	return out.Data.URL, nil
}
