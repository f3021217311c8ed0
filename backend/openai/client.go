// Package openai implements a Generator over an OpenAI-compatible
// chat-completions endpoint.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"recipeagent"
)

const defaultModel = "gpt-4o-mini"

type Client struct {
	endpoint   string
	apiKey     string
	model      string
	httpClient recipeagent.HTTPClient
}

type ClientOpts struct {
	BaseURL    string
	APIKey     string
	Model      string
	HTTPClient recipeagent.HTTPClient
}

func NewClient(opts ClientOpts) (*Client, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, fmt.Errorf("openai: missing API key")
	}
	if opts.BaseURL == "" {
		return nil, fmt.Errorf("openai: missing base URL")
	}
	if opts.HTTPClient == nil {
		return nil, fmt.Errorf("openai: missing HTTP client")
	}
	if opts.Model == "" {
		opts.Model = defaultModel
	}

	return &Client{
		endpoint:   strings.TrimRight(opts.BaseURL, "/") + "/chat/completions",
		apiKey:     opts.APIKey,
		model:      opts.Model,
		httpClient: opts.HTTPClient,
	}, nil
}

type wireMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type wireRequest struct {
	Model       string        `json:"model"`
	Messages    []wireMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type wireResponse struct {
	Choices []struct {
		Message wireMessage `json:"message"`
	} `json:"choices"`
}

func (c *Client) Name() string {
	return "openai"
}

// Generate sends the prompt as a system and a user message and returns the first choice's content.
func (c *Client) Generate(ctx context.Context, prompt recipeagent.Prompt) (string, error) {
	slog.Info("LLM_CLIENT: Invoked", "backend", c.Name(), "model", c.model)

	messages := make([]wireMessage, 0, 2)
	if sp := strings.TrimSpace(prompt.System); sp != "" {
		messages = append(messages, wireMessage{Role: "system", Content: sp})
	}
	messages = append(messages, wireMessage{Role: "user", Content: prompt.User})

	reqBytes, err := json.Marshal(wireRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: prompt.Temperature,
		MaxTokens:   prompt.MaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", recipeagent.ErrBackendUnavailable, c.Name(), err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(reqBytes))
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", recipeagent.ErrBackendUnavailable, c.Name(), err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", recipeagent.ErrBackendUnavailable, c.Name(), err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: %s: %s: %s", recipeagent.ErrBackendUnavailable, c.Name(), resp.Status, string(body))
	}

	var wr wireResponse
	if err := json.Unmarshal(body, &wr); err != nil {
		return "", fmt.Errorf("%w: %s: decode response: %v", recipeagent.ErrBackendUnavailable, c.Name(), err)
	}
	if len(wr.Choices) == 0 || strings.TrimSpace(wr.Choices[0].Message.Content) == "" {
		return "", fmt.Errorf("%w: %s: empty completion", recipeagent.ErrBackendUnavailable, c.Name())
	}

	return wr.Choices[0].Message.Content, nil
}
