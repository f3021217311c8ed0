package openai

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"recipeagent"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockHTTPClient struct {
	response *http.Response
	err      error
	request  *http.Request
	body     []byte
}

func (m *mockHTTPClient) Do(req *http.Request) (*http.Response, error) {
	m.request = req
	if req.Body != nil {
		m.body, _ = io.ReadAll(req.Body)
	}
	return m.response, m.err
}

func createMockResponse(statusCode int, body string) *http.Response {
	return &http.Response{
		StatusCode: statusCode,
		Status:     http.StatusText(statusCode),
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     make(http.Header),
	}
}

func TestNewClient(t *testing.T) {
	tests := []struct {
		name    string
		opts    ClientOpts
		wantErr string
	}{
		{name: "valid", opts: ClientOpts{BaseURL: "https://api.openai.com/v1/", APIKey: "sk-test", HTTPClient: &mockHTTPClient{}}},
		{name: "missing key", opts: ClientOpts{BaseURL: "https://api.openai.com/v1", HTTPClient: &mockHTTPClient{}}, wantErr: "missing API key"},
		{name: "missing base url", opts: ClientOpts{APIKey: "sk-test", HTTPClient: &mockHTTPClient{}}, wantErr: "missing base URL"},
		{name: "missing http client", opts: ClientOpts{BaseURL: "https://api.openai.com/v1", APIKey: "sk-test"}, wantErr: "missing HTTP client"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewClient(tt.opts)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "https://api.openai.com/v1/chat/completions", got.endpoint)
			assert.Equal(t, defaultModel, got.model)
		})
	}
}

func TestClient_Generate(t *testing.T) {
	prompt := recipeagent.Prompt{System: "You are a recipe discovery agent.", User: "User ingredients:\n- egg", Temperature: 0.4, MaxTokens: 256}

	tests := []struct {
		name        string
		response    *http.Response
		err         error
		want        string
		errContains string
	}{
		{
			name:     "successful completion",
			response: createMockResponse(200, `{"choices": [{"message": {"role": "assistant", "content": "{\"recipes\": []}"}}]}`),
			want:     `{"recipes": []}`,
		},
		{
			name:        "non-200 status",
			response:    createMockResponse(429, `{"error": "rate limited"}`),
			errContains: "rate limited",
		},
		{
			name:        "network error",
			err:         errors.New("connection refused"),
			errContains: "connection refused",
		},
		{
			name:        "no choices",
			response:    createMockResponse(200, `{"choices": []}`),
			errContains: "empty completion",
		},
		{
			name:        "invalid body",
			response:    createMockResponse(200, `not json`),
			errContains: "decode response",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			httpClient := &mockHTTPClient{response: tt.response, err: tt.err}
			client, err := NewClient(ClientOpts{BaseURL: "https://api.openai.com/v1", APIKey: "sk-test", Model: "gpt-4o-mini", HTTPClient: httpClient})
			require.NoError(t, err)

			got, err := client.Generate(context.Background(), prompt)
			if tt.errContains != "" {
				require.Error(t, err)
				assert.ErrorIs(t, err, recipeagent.ErrBackendUnavailable)
				assert.Contains(t, err.Error(), tt.errContains)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			assert.Equal(t, "Bearer sk-test", httpClient.request.Header.Get("Authorization"))
			assert.Equal(t, http.MethodPost, httpClient.request.Method)

			var sent wireRequest
			require.NoError(t, json.Unmarshal(httpClient.body, &sent))
			assert.Equal(t, "gpt-4o-mini", sent.Model)
			assert.Equal(t, 0.4, sent.Temperature)
			assert.Equal(t, 256, sent.MaxTokens)
			require.Len(t, sent.Messages, 2)
			assert.Equal(t, "system", sent.Messages[0].Role)
			assert.Equal(t, "user", sent.Messages[1].Role)
		})
	}
}
