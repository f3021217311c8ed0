// Package slack posts operational notices to a Slack incoming webhook.
package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

type doer interface {
	Do(req *http.Request) (*http.Response, error)
}

type Client struct {
	webhookURL string
	channel    string
	httpClient doer
}

// NewClient returns a client posting to webhookURL. channel is used by NotifyFallback.
func NewClient(webhookURL, channel string, httpClient doer) *Client {
	return &Client{
		webhookURL: webhookURL,
		channel:    channel,
		httpClient: httpClient,
	}
}

func (c *Client) PostMessage(ctx context.Context, channel string, message string) error {
	payload, err := json.Marshal(map[string]any{
		"channel":  channel,
		"text":     message,
		"username": "recipe-agent",
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.webhookURL, bytes.NewReader(payload))
	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("failed to post message: %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}

	return nil
}

// NotifyFallback reports that a recipe list was served from the fallback catalog.
func (c *Client) NotifyFallback(ctx context.Context, ingredients []string, cause error) error {
	return c.PostMessage(ctx, c.channel, FallbackMessage(ingredients, cause))
}

// FallbackMessage formats the notice sent when fallback recipes were served.
func FallbackMessage(ingredients []string, cause error) string {
	reason := "unknown"
	if cause != nil {
		reason = cause.Error()
	}
	const maxReason = 300
	if r := []rune(reason); len(r) > maxReason {
		reason = string(r[:maxReason-3]) + "..."
	}
	return fmt.Sprintf(":warning: Served fallback recipes for [%s]\n>%s", strings.Join(ingredients, ", "), reason)
}
