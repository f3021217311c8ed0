package main

import (
	"context"
	"log"
	"log/slog"

	"recipeagent"
	"recipeagent/bootstrap"
	"recipeagent/server"

	"github.com/aws/aws-lambda-go/lambda"
)

func main() {
	ctx := context.Background()

	cfg, err := recipeagent.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to decode: %s", err)
	}

	// Lambda has no writable working directory for file attempt logs.
	if cfg.Agent.AttemptLog == "file" {
		cfg.Agent.AttemptLog = "stdout"
	}

	otelShutdown, err := recipeagent.InitOtel(ctx)
	if err != nil {
		log.Fatalf("Failed to initialize OpenTelemetry: %s", err)
	}
	defer func() {
		if err := otelShutdown(ctx); err != nil {
			slog.Error("SETUP: Failed to shutdown OpenTelemetry", "error", err)
		}
	}()

	app, err := bootstrap.Build(ctx, cfg, bootstrap.Deps{})
	if err != nil {
		log.Fatalf("Failed to build service: %s", err)
	}

	srv, err := server.New(cfg.Server, app.Service, server.Info{Version: "1.0.0", Backends: app.Backends})
	if err != nil {
		log.Fatalf("Failed to create server: %s", err)
	}

	lambda.Start(srv.LambdaHandler)
}
