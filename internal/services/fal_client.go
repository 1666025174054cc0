package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/yungbote/mindpalace-backend/internal/logger"
)

// FalClient isolates a single object from a room photo by running an
// image-to-image edit on the provider's queue API. Jobs are submitted,
// then polled until COMPLETED or the deadline passes.
type FalClient interface {
	ExtractObjectImage(ctx context.Context, imageURL string, objectName string) (string, error)
}

type falClient struct {
	log        *logger.Logger
	apiKey     string
	queueURL   string
	httpClient *http.Client

	pollInterval time.Duration
	maxWait      time.Duration
}

func NewFalClient(log *logger.Logger) (FalClient, error) {
	apiKey := os.Getenv("FAL_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("missing FAL_KEY")
	}

	queueURL := os.Getenv("FAL_QUEUE_URL")
	if queueURL == "" {
		queueURL = "https://queue.fal.run/fal-ai/qwen-image-edit/image-to-image"
	}

	maxWaitSec := 120
	if v := os.Getenv("FAL_MAX_WAIT_SECONDS"); v != "" {
		if parsed, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && parsed > 0 {
			maxWaitSec = parsed
		}
	}

	return &falClient{
		log:          log.With("service", "FalClient"),
		apiKey:       apiKey,
		queueURL:     queueURL,
		httpClient:   &http.Client{Timeout: 30 * time.Second},
		pollInterval: 2 * time.Second,
		maxWait:      time.Duration(maxWaitSec) * time.Second,
	}, nil
}

type falSubmitResponse struct {
	RequestID   string `json:"request_id"`
	StatusURL   string `json:"status_url"`
	ResponseURL string `json:"response_url"`
}

type falStatusResponse struct {
	Status string `json:"status"` // IN_QUEUE | IN_PROGRESS | COMPLETED
}

type falResultResponse struct {
	Images []struct {
		URL string `json:"url"`
	} `json:"images"`
}

func (c *falClient) ExtractObjectImage(ctx context.Context, imageURL string, objectName string) (string, error) {
	prompt := fmt.Sprintf(
		"Extract only the %s from this image. Place it centered on a clean white background. Remove everything else.",
		objectName,
	)
	payload := map[string]any{
		"image_url": imageURL,
		"prompt":    prompt,
	}

	submit, err := c.postJSON(ctx, c.queueURL, payload)
	if err != nil {
		return "", fmt.Errorf("fal submit: %w", err)
	}
	var sub falSubmitResponse
	if err := json.Unmarshal(submit, &sub); err != nil {
		return "", fmt.Errorf("fal submit decode: %w", err)
	}
	if sub.StatusURL == "" || sub.ResponseURL == "" {
		return "", fmt.Errorf("fal submit: missing status/response urls")
	}

	deadline := time.Now().Add(c.maxWait)
	for {
		if time.Now().After(deadline) {
			return "", fmt.Errorf("fal job %s timed out after %s", sub.RequestID, c.maxWait)
		}
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(c.pollInterval):
		}

		raw, err := c.getJSON(ctx, sub.StatusURL)
		if err != nil {
			return "", fmt.Errorf("fal status: %w", err)
		}
		var status falStatusResponse
		if err := json.Unmarshal(raw, &status); err != nil {
			return "", fmt.Errorf("fal status decode: %w", err)
		}
		if status.Status == "COMPLETED" {
			break
		}
	}

	raw, err := c.getJSON(ctx, sub.ResponseURL)
	if err != nil {
		return "", fmt.Errorf("fal result: %w", err)
	}
	var result falResultResponse
	if err := json.Unmarshal(raw, &result); err != nil {
		return "", fmt.Errorf("fal result decode: %w", err)
	}
	if len(result.Images) == 0 || result.Images[0].URL == "" {
		return "", fmt.Errorf("fal job %s returned no images", sub.RequestID)
	}
	return result.Images[0].URL, nil
}

func (c *falClient) postJSON(ctx context.Context, url string, body any) ([]byte, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Key "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	return c.send(req)
}

func (c *falClient) getJSON(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Key "+c.apiKey)
	return c.send(req)
}

func (c *falClient) send(req *http.Request) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	raw, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return nil, readErr
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("fal http %d: %s", resp.StatusCode, string(raw))
	}
	return raw, nil
}
