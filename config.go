package recipeagent

import (
	"errors"
	"strings"
	"time"

	"github.com/joeshaw/envdecode"
)

// ServerConfig controls the HTTP surface. List values are separated with ';'.
type ServerConfig struct {
	Port               int           `env:"PORT,default=8000"`
	CORSAllowedOrigins []string      `env:"CORS_ALLOWED_ORIGINS,default=*"`
	RateLimit          float64       `env:"RATE_LIMIT,default=20"`
	RateLimitBurst     int           `env:"RATE_LIMIT_BURST,default=40"`
	ShutdownTimeout    time.Duration `env:"SHUTDOWN_TIMEOUT,default=10s"`
}

type AgentConfig struct {
	Backends          []string      `env:"BACKENDS,default=openai;huggingface"`
	RecipeCount       int           `env:"RECIPE_COUNT,default=5"`
	ListTemperature   float64       `env:"LIST_TEMPERATURE,default=0.4"`
	DetailTemperature float64       `env:"DETAIL_TEMPERATURE,default=0.5"`
	MaxTokens         int           `env:"MAX_TOKENS,default=1024"`
	HTTPTimeout       time.Duration `env:"HTTP_TIMEOUT,default=15s"`
	FallbackEnabled   bool          `env:"FALLBACK_ENABLED,default=true"`
	CatalogPath       string        `env:"FALLBACK_CATALOG_PATH"`
	CatalogS3Bucket   string        `env:"FALLBACK_CATALOG_S3_BUCKET"`
	CatalogS3Key      string        `env:"FALLBACK_CATALOG_S3_KEY"`
	AttemptLog        string        `env:"ATTEMPT_LOG,default=none"`
}

// BackendNames returns the configured backend order, lower-cased.
func (c AgentConfig) BackendNames() []string {
	names := make([]string, 0, len(c.Backends))
	for _, n := range c.Backends {
		if n = strings.ToLower(strings.TrimSpace(n)); n != "" {
			names = append(names, n)
		}
	}
	return names
}

type OpenAIConfig struct {
	APIKey  string `env:"OPENAI_API_KEY"`
	BaseURL string `env:"OPENAI_BASE_URL,default=https://api.openai.com/v1"`
	Model   string `env:"OPENAI_MODEL,default=gpt-4o-mini"`
}

type HuggingFaceConfig struct {
	APIToken string `env:"HF_API_TOKEN"`
	BaseURL  string `env:"HF_BASE_URL,default=https://api-inference.huggingface.co"`
	ModelID  string `env:"HF_MODEL_ID,default=mistralai/Mistral-7B-Instruct-v0.3"`
}

type OllamaConfig struct {
	BaseEndpoint string `env:"BASE_OLLAMA_ENDPOINT,default=http://localhost:11434"`
	Model        string `env:"OLLAMA_MODEL,default=llama3.2"`
}

type BedrockConfig struct {
	ModelID string  `env:"BEDROCK_MODEL_ID"`
	TopP    float32 `env:"BEDROCK_TOP_P,default=0.9"`
}

type NotifyConfig struct {
	SlackWebhookURL string `env:"SLACK_WEBHOOK_URL"`
	SlackChannel    string `env:"SLACK_CHANNEL,default=#recipe-agent"`
}

// Config aggregates every environment-driven setting of the service.
type Config struct {
	Server      ServerConfig
	Agent       AgentConfig
	OpenAI      OpenAIConfig
	HuggingFace HuggingFaceConfig
	Ollama      OllamaConfig
	Bedrock     BedrockConfig
	Notify      NotifyConfig
}

// LoadConfig decodes every config section from the environment.
func LoadConfig() (Config, error) {
	var cfg Config
	for _, section := range []any{
		&cfg.Server,
		&cfg.Agent,
		&cfg.OpenAI,
		&cfg.HuggingFace,
		&cfg.Ollama,
		&cfg.Bedrock,
		&cfg.Notify,
	} {
		if err := envdecode.Decode(section); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
			return Config{}, err
		}
	}
	return cfg, nil
}
