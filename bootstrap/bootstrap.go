// Package bootstrap wires configuration into a ready recipe service.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"recipeagent"
	"recipeagent/agent"
	"recipeagent/backend"
	"recipeagent/backend/bedrock"
	"recipeagent/backend/huggingface"
	"recipeagent/backend/mock"
	"recipeagent/backend/ollama"
	"recipeagent/backend/openai"
	"recipeagent/fallback"
	"recipeagent/reconcile"
	"recipeagent/slack"
	"recipeagent/storage"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Deps are the process-level clients shared by every backend. Zero values are
// replaced with production defaults.
type Deps struct {
	HTTPClient    recipeagent.HTTPClient
	LoadAWSConfig func(ctx context.Context) (aws.Config, error)
}

// App is the wired service together with the resources it owns.
type App struct {
	Service  *agent.Service
	Backends []string

	closers []func() error
}

// Close releases resources such as the attempt log file.
func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c())
	}
	return errors.Join(errs...)
}

// Build constructs the backend chain, reconciler, fallback catalog and service.
func Build(ctx context.Context, cfg recipeagent.Config, deps Deps) (*App, error) {
	if deps.HTTPClient == nil {
		deps.HTTPClient = &http.Client{Timeout: cfg.Agent.HTTPTimeout}
	}
	if deps.LoadAWSConfig == nil {
		deps.LoadAWSConfig = loadAWSConfig
	}
	awsCfgs := &awsConfigOnce{load: deps.LoadAWSConfig}

	app := &App{}

	generators, err := newGenerators(ctx, cfg, deps.HTTPClient, awsCfgs)
	if err != nil {
		return nil, err
	}
	if len(generators) == 0 && !cfg.Agent.FallbackEnabled {
		return nil, fmt.Errorf("no usable backends configured and fallback is disabled")
	}

	names := make([]string, 0, len(generators))
	for _, g := range generators {
		names = append(names, g.Name())
	}
	app.Backends = names

	attemptLogger, closeLog, err := newAttemptLogger(cfg.Agent.AttemptLog, names)
	if err != nil {
		return nil, err
	}
	app.closers = append(app.closers, closeLog)

	reconciler, err := reconcile.New()
	if err != nil {
		return nil, errors.Join(err, app.Close())
	}

	opts := agent.ServiceOpts{
		Generator:  backend.NewChain(attemptLogger, generators...),
		Reconciler: reconciler,
		Options: agent.Options{
			RecipeCount:       cfg.Agent.RecipeCount,
			ListTemperature:   cfg.Agent.ListTemperature,
			DetailTemperature: cfg.Agent.DetailTemperature,
			MaxTokens:         cfg.Agent.MaxTokens,
		},
	}

	if cfg.Agent.FallbackEnabled {
		catalog, err := loadCatalog(ctx, cfg.Agent, awsCfgs)
		if err != nil {
			return nil, errors.Join(err, app.Close())
		}
		opts.Fallback = fallback.New(catalog)
	}

	if cfg.Notify.SlackWebhookURL != "" {
		opts.Notifier = slack.NewClient(cfg.Notify.SlackWebhookURL, cfg.Notify.SlackChannel, deps.HTTPClient)
		slog.Info("SETUP: Slack fallback notices enabled", "channel", cfg.Notify.SlackChannel)
	}

	svc, err := agent.NewService(opts)
	if err != nil {
		return nil, errors.Join(err, app.Close())
	}
	app.Service = svc

	slog.Info("SETUP: Recipe service ready",
		"backends", names,
		"fallback_enabled", cfg.Agent.FallbackEnabled,
	)
	return app, nil
}

// newGenerators builds backends in configured order. A backend missing its
// credentials is skipped with a warning; an unknown name is an error.
func newGenerators(ctx context.Context, cfg recipeagent.Config, httpClient recipeagent.HTTPClient, awsCfgs *awsConfigOnce) ([]recipeagent.Generator, error) {
	var generators []recipeagent.Generator
	for _, name := range cfg.Agent.BackendNames() {
		var (
			g   recipeagent.Generator
			err error
		)
		switch name {
		case "openai":
			g, err = openai.NewClient(openai.ClientOpts{
				BaseURL:    cfg.OpenAI.BaseURL,
				APIKey:     cfg.OpenAI.APIKey,
				Model:      cfg.OpenAI.Model,
				HTTPClient: httpClient,
			})
		case "huggingface":
			g, err = huggingface.NewClient(huggingface.ClientOpts{
				BaseURL:    cfg.HuggingFace.BaseURL,
				ModelID:    cfg.HuggingFace.ModelID,
				APIToken:   cfg.HuggingFace.APIToken,
				HTTPClient: httpClient,
			})
		case "ollama":
			g, err = ollama.NewClient(ollama.ClientOpts{
				BaseEndpoint: cfg.Ollama.BaseEndpoint,
				ModelID:      cfg.Ollama.Model,
				HTTPClient:   httpClient,
			})
		case "bedrock":
			var awsCfg aws.Config
			if awsCfg, err = awsCfgs.get(ctx); err == nil {
				g = bedrock.NewLLMClient(bedrockruntime.NewFromConfig(awsCfg), bedrock.LLMOptions{
					ModelID:   cfg.Bedrock.ModelID,
					MaxTokens: int32(cfg.Agent.MaxTokens),
					TopP:      cfg.Bedrock.TopP,
				})
			}
		case "mock":
			g = mock.NewClient()
		default:
			return nil, fmt.Errorf("unknown backend %q", name)
		}

		if err != nil {
			slog.Warn("SETUP: Skipping backend", "backend", name, "error", err)
			continue
		}
		generators = append(generators, g)
	}
	return generators, nil
}

func newAttemptLogger(mode string, backends []string) (recipeagent.AttemptLogger, func() error, error) {
	noop := func() error { return nil }
	switch mode {
	case "", "none":
		return recipeagent.NewNoOpAttemptLogger(), noop, nil
	case "stdout":
		return recipeagent.NewStdoutAttemptLogger(), noop, nil
	case "file":
		path := recipeagent.NewAttemptLogFilePath(backends)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, noop, fmt.Errorf("failed to create attempt log dir: %w", err)
		}
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
		if err != nil {
			return nil, noop, fmt.Errorf("failed to open attempt log file: %w", err)
		}
		logger := recipeagent.NewFileAttemptLogger(f)
		slog.Info("SETUP: Attempt log enabled", "path", path)
		return logger, func() error {
			return errors.Join(logger.Flush(), f.Close())
		}, nil
	default:
		return nil, noop, fmt.Errorf("unknown attempt log mode %q", mode)
	}
}

func loadCatalog(ctx context.Context, cfg recipeagent.AgentConfig, awsCfgs *awsConfigOnce) (fallback.Catalog, error) {
	var state storage.State
	switch {
	case cfg.CatalogPath != "":
		state = storage.NewFileState(cfg.CatalogPath)
	case cfg.CatalogS3Bucket != "" && cfg.CatalogS3Key != "":
		awsCfg, err := awsCfgs.get(ctx)
		if err != nil {
			return fallback.Catalog{}, err
		}
		state = storage.NewS3State(s3.NewFromConfig(awsCfg), cfg.CatalogS3Bucket, cfg.CatalogS3Key)
	default:
		return fallback.DefaultCatalog(), nil
	}

	catalog, err := fallback.LoadCatalog(ctx, state)
	if err != nil {
		return fallback.Catalog{}, fmt.Errorf("failed to load fallback catalog: %w", err)
	}
	slog.Info("SETUP: Fallback catalog loaded", "categories", len(catalog.Categories), "generic", len(catalog.Generic))
	return catalog, nil
}

func loadAWSConfig(ctx context.Context) (aws.Config, error) {
	return config.LoadDefaultConfig(ctx, config.WithRetryMaxAttempts(5))
}

// awsConfigOnce loads the AWS config at most once, shared by Bedrock and S3.
type awsConfigOnce struct {
	load   func(ctx context.Context) (aws.Config, error)
	cfg    aws.Config
	err    error
	loaded bool
}

func (a *awsConfigOnce) get(ctx context.Context) (aws.Config, error) {
	if !a.loaded {
		a.cfg, a.err = a.load(ctx)
		a.loaded = true
		if a.err != nil {
			a.err = fmt.Errorf("failed to load AWS config: %w", a.err)
		}
	}
	return a.cfg, a.err
}
