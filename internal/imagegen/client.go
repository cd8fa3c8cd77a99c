package imagegen

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ErrEmptyResult means the provider answered successfully but produced no
// image (typically a content-policy rejection). Callers treat it as
// terminal: the same prompt will be rejected again.
var ErrEmptyResult = errors.New("image provider returned no result")

// Client talks to an OpenAI-compatible image generation API. Generated
// images are returned as temporary URLs that expire; callers must download
// and re-host them.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

type GenerateRequest struct {
	Model   string `json:"model,omitempty"`
	Prompt  string `json:"prompt"`
	N       int    `json:"n"`
	Size    string `json:"size,omitempty"`
	Quality string `json:"quality,omitempty"`
	Style   string `json:"style,omitempty"`
}

type GenerateResponse struct {
	Data []struct {
		URL           string `json:"url"`
		RevisedPrompt string `json:"revised_prompt,omitempty"`
	} `json:"data"`
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 90 * time.Second,
		},
	}
}

// Generate requests one image and returns its temporary URL. The context
// bounds the call; pass a per-attempt deadline.
func (c *Client) Generate(ctx context.Context, genReq GenerateRequest) (string, error) {
	if genReq.N == 0 {
		genReq.N = 1
	}

	jsonData, err := json.Marshal(genReq)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	url := strings.TrimSuffix(c.baseURL, "/") + "/images/generations"
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode == http.StatusBadRequest {
		// Content-policy rejections come back as 400 with no image.
		return "", fmt.Errorf("%w: status 400, body: %s", ErrEmptyResult, string(body))
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to generate image: status %d, body: %s", resp.StatusCode, string(body))
	}

	var result GenerateResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("failed to decode response: %w, body: %s", err, string(body))
	}

	if len(result.Data) == 0 || result.Data[0].URL == "" {
		return "", ErrEmptyResult
	}

	return result.Data[0].URL, nil
}

// Download fetches the temporary image URL. The request is built with the
// context so cancellation aborts the transfer promptly.
func (c *Client) Download(ctx context.Context, downloadURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", downloadURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("failed to download image: status %d, body: %s", resp.StatusCode, string(body))
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return data, nil
}
