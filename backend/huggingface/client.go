// Package huggingface implements a Generator over a hosted instruction-style
// text-generation inference endpoint.
package huggingface

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
	"recipeagent/prompt"
)

type Client struct {
	endpoint   string
	token      string
	httpClient recipeagent.HTTPClient
}

type ClientOpts struct {
	BaseURL    string
	ModelID    string
	APIToken   string
	HTTPClient recipeagent.HTTPClient
}

func NewClient(opts ClientOpts) (*Client, error) {
	if strings.TrimSpace(opts.APIToken) == "" {
		return nil, fmt.Errorf("huggingface: missing API token")
	}
	if opts.BaseURL == "" || opts.ModelID == "" {
		return nil, fmt.Errorf("huggingface: base URL and model id are required")
	}
	if opts.HTTPClient == nil {
		return nil, fmt.Errorf("huggingface: missing HTTP client")
	}

	return &Client{
		endpoint:   strings.TrimRight(opts.BaseURL, "/") + "/models/" + strings.Trim(opts.ModelID, "/"),
		token:      opts.APIToken,
		httpClient: opts.HTTPClient,
	}, nil
}

type parameters struct {
	Temperature    float64 `json:"temperature,omitempty"`
	MaxNewTokens   int     `json:"max_new_tokens,omitempty"`
	ReturnFullText bool    `json:"return_full_text"`
}

type wireRequest struct {
	Inputs     string     `json:"inputs"`
	Parameters parameters `json:"parameters"`
}

type wireGeneration struct {
	GeneratedText string `json:"generated_text"`
}

func (c *Client) Name() string {
	return "huggingface"
}

// Generate flattens the prompt into a single instruction and returns the generated text.
func (c *Client) Generate(ctx context.Context, p recipeagent.Prompt) (string, error) {
	slog.Info("LLM_CLIENT: Invoked", "backend", c.Name(), "endpoint", c.endpoint)

	reqBytes, err := json.Marshal(wireRequest{
		Inputs: prompt.Flatten(p),
		Parameters: parameters{
			Temperature:    p.Temperature,
			MaxNewTokens:   p.MaxTokens,
			ReturnFullText: false,
		},
	})
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", recipeagent.ErrBackendUnavailable, c.Name(), err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(reqBytes))
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", recipeagent.ErrBackendUnavailable, c.Name(), err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", recipeagent.ErrBackendUnavailable, c.Name(), err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: %s: %s: %s", recipeagent.ErrBackendUnavailable, c.Name(), resp.Status, string(body))
	}

	var generations []wireGeneration
	if err := json.Unmarshal(body, &generations); err != nil {
		// Some deployments answer with a single object instead of a list.
		var single wireGeneration
		if err2 := json.Unmarshal(body, &single); err2 != nil {
			return "", fmt.Errorf("%w: %s: decode response: %v", recipeagent.ErrBackendUnavailable, c.Name(), err)
		}
		generations = []wireGeneration{single}
	}

	if len(generations) == 0 || strings.TrimSpace(generations[0].GeneratedText) == "" {
		return "", fmt.Errorf("%w: %s: empty completion", recipeagent.ErrBackendUnavailable, c.Name())
	}

	return generations[0].GeneratedText, nil
}
