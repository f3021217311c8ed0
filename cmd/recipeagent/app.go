package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"recipeagent"
	"recipeagent/bootstrap"
	"recipeagent/server"

	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"
)

const (
	appName = "recipeagent"
	version = "1.0.0"
)

func newApp(out io.Writer) *cli.Command {
	return &cli.Command{
		Name:    appName,
		Usage:   "Suggest recipes for the ingredients you have",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "log level (debug, info, warn, error)",
				Sources: cli.EnvVars("LOG_LEVEL"),
				Value:   "info",
			},
		},
		Commands: []*cli.Command{
			serveCmd(),
			recipesCmd(out),
			detailsCmd(out),
		},
	}
}

func serveCmd() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the HTTP API",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return withApp(ctx, cmd, func(ctx context.Context, cfg recipeagent.Config, app *bootstrap.App) error {
				srv, err := server.New(cfg.Server, app.Service, server.Info{Version: version, Backends: app.Backends})
				if err != nil {
					return err
				}

				g, gctx := errgroup.WithContext(ctx)
				g.Go(func() error {
					return srv.Start(gctx)
				})
				return g.Wait()
			})
		},
	}
}

func recipesCmd(out io.Writer) *cli.Command {
	return &cli.Command{
		Name:      "recipes",
		Usage:     "Suggest recipes for the given ingredients",
		ArgsUsage: "<ingredient>...",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			ingredients := cmd.Args().Slice()
			return withApp(ctx, cmd, func(ctx context.Context, _ recipeagent.Config, app *bootstrap.App) error {
				list, err := app.Service.ListRecipes(ctx, ingredients)
				if err != nil {
					return fmt.Errorf("failed to list recipes: %w", err)
				}
				slog.Info("RESULT: Recipes", "source", list.Source, "count", len(list.Recipes))
				return writeJSON(out, list)
			})
		},
	}
}

func detailsCmd(out io.Writer) *cli.Command {
	return &cli.Command{
		Name:      "details",
		Usage:     "Expand a suggested recipe into full instructions",
		ArgsUsage: "<ingredient>...",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "id",
				Usage:    "recipe id returned by the recipes command",
				Required: true,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			id := cmd.String("id")
			ingredients := cmd.Args().Slice()
			return withApp(ctx, cmd, func(ctx context.Context, _ recipeagent.Config, app *bootstrap.App) error {
				detail, err := app.Service.RecipeDetails(ctx, id, ingredients)
				if err != nil {
					return fmt.Errorf("failed to get recipe details: %w", err)
				}
				return writeJSON(out, detail)
			})
		},
	}
}

// withApp loads configuration, sets up logging and telemetry, builds the
// service and tears everything down after fn returns.
func withApp(ctx context.Context, cmd *cli.Command, fn func(context.Context, recipeagent.Config, *bootstrap.App) error) error {
	setLogger(cmd.String("log-level"))

	cfg, err := recipeagent.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	otelShutdown, err := recipeagent.InitOtel(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}
	defer func() {
		if err := otelShutdown(context.WithoutCancel(ctx)); err != nil {
			slog.Error("SETUP: Failed to shutdown OpenTelemetry", "error", err)
		}
	}()

	app, err := bootstrap.Build(ctx, cfg, bootstrap.Deps{})
	if err != nil {
		return fmt.Errorf("failed to build service: %w", err)
	}
	defer func() {
		if err := app.Close(); err != nil {
			slog.Error("SETUP: Failed to close resources", "error", err)
		}
	}()

	return fn(ctx, cfg, app)
}

func setLogger(level string) {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: parseLevel(level),
	})).With("module", appName, "version", version))
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
