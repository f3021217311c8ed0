// Package ollama implements a Generator over a local or remote Ollama server.
package ollama

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

type options struct {
	Temperature   float64 `json:"temperature,omitempty"`
	TopP          float64 `json:"top_p,omitempty"`
	RepeatPenalty float64 `json:"repeat_penalty,omitempty"`
	NumCtx        int     `json:"num_ctx,omitempty"`
	NumPredict    int     `json:"num_predict,omitempty"`
}

type Client struct {
	endpoint   string
	model      string
	httpClient recipeagent.HTTPClient
	options    options
}

type ClientOpts struct {
	BaseEndpoint string
	ModelID      string
	HTTPClient   recipeagent.HTTPClient
}

func NewClient(opts ClientOpts) (*Client, error) {
	if opts.BaseEndpoint == "" || opts.ModelID == "" {
		return nil, fmt.Errorf("ollama: base endpoint and model id are required")
	}
	if opts.HTTPClient == nil {
		return nil, fmt.Errorf("ollama: missing HTTP client")
	}

	return &Client{
		model:      opts.ModelID,
		httpClient: opts.HTTPClient,
		endpoint:   strings.TrimRight(opts.BaseEndpoint, "/") + "/api/chat",
		options: options{
			TopP:          0.9,
			RepeatPenalty: 1.05,
			NumCtx:        8192,
		},
	}, nil
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type wireResponse struct {
	Message message `json:"message"`
	// other metadata omitted but available
}

type wireRequest struct {
	Model    string    `json:"model"`
	Messages []message `json:"messages"`
	Stream   bool      `json:"stream"`
	Format   string    `json:"format,omitempty"`
	Options  options   `json:"options,omitempty"`
}

func (c *Client) Name() string {
	return "ollama"
}

// Generate sends a single-turn chat to Ollama and returns the assistant content verbatim.
func (c *Client) Generate(ctx context.Context, prompt recipeagent.Prompt) (string, error) {
	slog.Info("LLM_CLIENT: Invoked", "backend", c.Name(), "model", c.model)

	opts := c.options
	opts.Temperature = prompt.Temperature
	opts.NumPredict = prompt.MaxTokens

	reqBytes, err := json.Marshal(wireRequest{
		Model:    c.model,
		Messages: buildMessages(prompt),
		Stream:   false,
		Format:   "json",
		Options:  opts,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", recipeagent.ErrBackendUnavailable, c.Name(), err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewBuffer(reqBytes))
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", recipeagent.ErrBackendUnavailable, c.Name(), err)
	}
	req.Header.Set("Content-Type", "application/json")

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
		slog.Warn("LLM_CLIENT: decode failed", "backend", c.Name(), "err", err, "body_len", len(body))
		return "", fmt.Errorf("%w: %s: failed to decode response: %v", recipeagent.ErrBackendUnavailable, c.Name(), err)
	}

	if strings.TrimSpace(wr.Message.Content) == "" {
		return "", fmt.Errorf("%w: %s: empty completion", recipeagent.ErrBackendUnavailable, c.Name())
	}

	return wr.Message.Content, nil
}

// buildMessages converts the prompt into Ollama chat messages, system first when present.
func buildMessages(prompt recipeagent.Prompt) []message {
	messages := make([]message, 0, 2)
	if sp := strings.TrimSpace(prompt.System); sp != "" {
		messages = append(messages, message{Role: "system", Content: sp})
	}
	return append(messages, message{Role: "user", Content: prompt.User})
}
