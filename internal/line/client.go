package line

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ReplyDispatcher sends a text reply bound to a webhook reply token.
type ReplyDispatcher interface {
	Reply(ctx context.Context, replyToken, text string) error
}

// Client calls the reply API over HTTP.
type Client struct {
	endpoint    string
	accessToken string
	httpClient  *http.Client
}

// NewClient creates a reply API client authenticated with the channel
// access token.
func NewClient(endpoint, accessToken string, timeout time.Duration) *Client {
	return &Client{
		endpoint:    endpoint,
		accessToken: accessToken,
		httpClient:  &http.Client{Timeout: timeout},
	}
}

type replyRequest struct {
	ReplyToken string        `json:"replyToken"`
	Messages   []replyObject `json:"messages"`
}

type replyObject struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Reply sends a single text message for the given reply token.
func (c *Client) Reply(ctx context.Context, replyToken, text string) error {
	payload, err := json.Marshal(replyRequest{
		ReplyToken: replyToken,
		Messages:   []replyObject{{Type: "text", Text: text}},
	})
	if err != nil {
		return fmt.Errorf("failed to marshal reply payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build reply request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call reply API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("reply API returned status %d: %s", resp.StatusCode, string(detail))
	}
	return nil
}
