package bootstrap

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"recipeagent"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingHTTPClient struct{}

func (failingHTTPClient) Do(*http.Request) (*http.Response, error) {
	return nil, errors.New("connection refused")
}

func baseConfig(backends ...string) recipeagent.Config {
	return recipeagent.Config{
		Agent: recipeagent.AgentConfig{
			Backends:          backends,
			RecipeCount:       5,
			ListTemperature:   0.4,
			DetailTemperature: 0.5,
			MaxTokens:         512,
			HTTPTimeout:       time.Second,
			FallbackEnabled:   true,
			AttemptLog:        "none",
		},
		OpenAI:      recipeagent.OpenAIConfig{BaseURL: "http://openai.invalid/v1", Model: "gpt-4o-mini"},
		HuggingFace: recipeagent.HuggingFaceConfig{BaseURL: "http://hf.invalid", ModelID: "m/x"},
		Ollama:      recipeagent.OllamaConfig{BaseEndpoint: "http://ollama.invalid", Model: "llama3.2"},
		Notify:      recipeagent.NotifyConfig{SlackChannel: "#recipe-agent"},
	}
}

func staticAWS(ctx context.Context) (aws.Config, error) {
	return aws.Config{Region: "us-east-1"}, nil
}

func TestBuild_MockBackend(t *testing.T) {
	app, err := Build(context.Background(), baseConfig("mock"), Deps{HTTPClient: failingHTTPClient{}})
	require.NoError(t, err)
	defer app.Close()

	assert.Equal(t, []string{"mock"}, app.Backends)

	list, err := app.Service.ListRecipes(context.Background(), []string{"chicken"})
	require.NoError(t, err)
	assert.Equal(t, recipeagent.SourceModel, list.Source)
	require.Len(t, list.Recipes, 2)
	assert.Equal(t, "mock_skillet", list.Recipes[0].ID)

	detail, err := app.Service.RecipeDetails(context.Background(), "mock_skillet", []string{"chicken"})
	require.NoError(t, err)
	assert.NotEmpty(t, detail.Steps)
}

func TestBuild_SkipsBackendWithoutCredentials(t *testing.T) {
	t.Run("no credentials at all", func(t *testing.T) {
		app, err := Build(context.Background(), baseConfig("openai", "huggingface"), Deps{HTTPClient: failingHTTPClient{}})
		require.NoError(t, err)
		defer app.Close()
		assert.Empty(t, app.Backends)
	})

	cfg := baseConfig("openai", "huggingface")
	cfg.HuggingFace.APIToken = "hf_test"
	app, err := Build(context.Background(), cfg, Deps{HTTPClient: failingHTTPClient{}})
	require.NoError(t, err)
	defer app.Close()

	assert.Equal(t, []string{"huggingface"}, app.Backends)

	list, err := app.Service.ListRecipes(context.Background(), []string{"chicken"})
	require.NoError(t, err)
	assert.Equal(t, recipeagent.SourceFallback, list.Source)
	assert.Equal(t, "protein_stir_fry", list.Recipes[0].ID)
}

func TestBuild_Errors(t *testing.T) {
	tests := []struct {
		name string
		cfg  func() recipeagent.Config
	}{
		{
			name: "unknown backend",
			cfg:  func() recipeagent.Config { return baseConfig("gemini") },
		},
		{
			name: "no backends and fallback disabled",
			cfg: func() recipeagent.Config {
				c := baseConfig("openai")
				c.Agent.FallbackEnabled = false
				return c
			},
		},
		{
			name: "unknown attempt log mode",
			cfg: func() recipeagent.Config {
				c := baseConfig("mock")
				c.Agent.AttemptLog = "syslog"
				return c
			},
		},
		{
			name: "missing catalog file",
			cfg: func() recipeagent.Config {
				c := baseConfig("mock")
				c.Agent.CatalogPath = filepath.Join(os.TempDir(), "does-not-exist", "catalog.json")
				return c
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Build(context.Background(), tt.cfg(), Deps{HTTPClient: failingHTTPClient{}, LoadAWSConfig: staticAWS})
			assert.Error(t, err)
		})
	}
}

func TestBuild_NoBackendsWithFallback(t *testing.T) {
	app, err := Build(context.Background(), baseConfig(), Deps{HTTPClient: failingHTTPClient{}})
	require.NoError(t, err)
	defer app.Close()

	assert.Empty(t, app.Backends)
	list, err := app.Service.ListRecipes(context.Background(), []string{"glue"})
	require.NoError(t, err)
	assert.Equal(t, recipeagent.SourceFallback, list.Source)
	assert.Len(t, list.Recipes, 10)
}

func TestBuild_Bedrock(t *testing.T) {
	t.Run("uses loaded AWS config", func(t *testing.T) {
		app, err := Build(context.Background(), baseConfig("bedrock", "mock"), Deps{LoadAWSConfig: staticAWS})
		require.NoError(t, err)
		defer app.Close()
		assert.Equal(t, []string{"bedrock", "mock"}, app.Backends)
	})

	t.Run("skipped when AWS config fails", func(t *testing.T) {
		failing := func(context.Context) (aws.Config, error) { return aws.Config{}, errors.New("no credentials") }
		app, err := Build(context.Background(), baseConfig("bedrock", "mock"), Deps{LoadAWSConfig: failing})
		require.NoError(t, err)
		defer app.Close()
		assert.Equal(t, []string{"mock"}, app.Backends)
	})
}

func TestBuild_CatalogFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	catalog := `{
  "categories": [
    {"name": "tofu", "keywords": ["tofu"], "templates": [
      {"id": "tofu_scramble", "title": "{ingredient} Scramble", "missing": ["turmeric"], "reason": "Quick breakfast."}
    ]}
  ],
  "generic": [
    {"id": "generic_plate", "title": "{ingredients} Plate", "missing": [], "reason": "Simple."}
  ]
}`
	require.NoError(t, os.WriteFile(path, []byte(catalog), 0o644))

	cfg := baseConfig()
	cfg.Agent.CatalogPath = path
	app, err := Build(context.Background(), cfg, Deps{HTTPClient: failingHTTPClient{}})
	require.NoError(t, err)
	defer app.Close()

	list, err := app.Service.ListRecipes(context.Background(), []string{"tofu"})
	require.NoError(t, err)
	require.Len(t, list.Recipes, 1)
	assert.Equal(t, "tofu_scramble", list.Recipes[0].ID)
	assert.Equal(t, "Tofu Scramble", list.Recipes[0].Title)
}

func TestBuild_CatalogFromS3NeedsAWS(t *testing.T) {
	cfg := baseConfig("mock")
	cfg.Agent.CatalogS3Bucket = "bucket"
	cfg.Agent.CatalogS3Key = "catalog.json"
	failing := func(context.Context) (aws.Config, error) { return aws.Config{}, errors.New("no credentials") }

	_, err := Build(context.Background(), cfg, Deps{LoadAWSConfig: failing})
	assert.ErrorContains(t, err, "failed to load AWS config")
}

func TestBuild_FileAttemptLog(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	cfg := baseConfig("mock")
	cfg.Agent.AttemptLog = "file"
	app, err := Build(context.Background(), cfg, Deps{})
	require.NoError(t, err)

	_, err = app.Service.ListRecipes(context.Background(), []string{"egg"})
	require.NoError(t, err)
	require.NoError(t, app.Close())

	matches, err := filepath.Glob(filepath.Join(dir, "logs", "*.mock.json"))
	require.NoError(t, err)
	require.Len(t, matches, 1)

	data, err := os.ReadFile(matches[0])
	require.NoError(t, err)
	assert.Contains(t, string(data), "generation_session")
	assert.Contains(t, string(data), `"backend": "mock"`)
}
