// Package agent implements the recipe operations: validate the request, ask the
// backend chain, reconcile the answer and, for lists, fall back to templates.
package agent

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"recipeagent"
	"recipeagent/prompt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

type reconciler interface {
	RecipeList(raw string) (recipeagent.RecipeList, error)
	RecipeDetail(raw string) (recipeagent.RecipeDetail, error)
}

// acceptingGenerator tries further backends when an output is rejected.
type acceptingGenerator interface {
	GenerateAccepted(ctx context.Context, prompt recipeagent.Prompt, accept func(raw string) error) (string, error)
}

type fallbackGenerator interface {
	Recipes(ingredients []string) []recipeagent.RecipeSummary
}

type fallbackNotifier interface {
	NotifyFallback(ctx context.Context, ingredients []string, cause error) error
}

const notifyTimeout = 5 * time.Second

// Options are the per-call tunables taken from configuration.
type Options struct {
	RecipeCount       int
	ListTemperature   float64
	DetailTemperature float64
	MaxTokens         int
}

// Service is created once at startup and is safe for concurrent use.
type Service struct {
	generator  recipeagent.Generator
	reconciler reconciler
	fallback   fallbackGenerator
	notifier   fallbackNotifier
	opts       Options
	tracer     trace.Tracer

	requests  metric.Int64Counter
	fallbacks metric.Int64Counter
}

// ServiceOpts wires a Service. Fallback and Notifier are optional.
type ServiceOpts struct {
	Generator  recipeagent.Generator
	Reconciler reconciler
	Fallback   fallbackGenerator
	Notifier   fallbackNotifier
	Options    Options
}

func NewService(opts ServiceOpts) (*Service, error) {
	if opts.Generator == nil {
		return nil, fmt.Errorf("agent: generator is required")
	}
	if opts.Reconciler == nil {
		return nil, fmt.Errorf("agent: reconciler is required")
	}

	meter := otel.Meter(recipeagent.TracerNameService)
	requests, _ := meter.Int64Counter("recipe_requests_total",
		metric.WithDescription("Total number of recipe operations by outcome"))
	fallbacks, _ := meter.Int64Counter("recipe_fallbacks_total",
		metric.WithDescription("Total number of recipe lists served from the fallback catalog"))

	return &Service{
		generator:  opts.Generator,
		reconciler: opts.Reconciler,
		fallback:   opts.Fallback,
		notifier:   opts.Notifier,
		opts:       opts.Options,
		tracer:     otel.Tracer(recipeagent.TracerNameService),
		requests:   requests,
		fallbacks:  fallbacks,
	}, nil
}

// FallbackEnabled reports whether list failures are recovered locally.
func (s *Service) FallbackEnabled() bool {
	return s.fallback != nil
}

// ListRecipes suggests recipes for the given ingredients.
func (s *Service) ListRecipes(ctx context.Context, ingredients []string) (recipeagent.RecipeList, error) {
	ctx, span := s.tracer.Start(ctx, "Service.ListRecipes")
	defer span.End()

	ingredients = CleanIngredients(ingredients)
	if len(ingredients) == 0 {
		s.record(ctx, "list", "invalid")
		return recipeagent.RecipeList{}, fmt.Errorf("%w: ingredients list cannot be empty", recipeagent.ErrInvalidInput)
	}
	span.SetAttributes(attribute.Int("ingredients.count", len(ingredients)))

	slog.Info("SERVICE: Listing recipes", "ingredients", len(ingredients))

	p := prompt.List(ingredients, prompt.Options{
		RecipeCount: s.opts.RecipeCount,
		Temperature: s.opts.ListTemperature,
		MaxTokens:   s.opts.MaxTokens,
	})

	list, err := s.listFromModel(ctx, p)
	if err == nil {
		s.record(ctx, "list", "model")
		slog.Info("SERVICE: Recipes from model", "count", len(list.Recipes))
		return list, nil
	}

	span.RecordError(err)

	if s.fallback == nil {
		s.record(ctx, "list", "error")
		span.SetStatus(codes.Error, err.Error())
		return recipeagent.RecipeList{}, err
	}

	recipes := s.fallback.Recipes(ingredients)
	s.fallbacks.Add(ctx, 1)
	s.record(ctx, "list", "fallback")
	span.SetAttributes(attribute.Bool("recipes.fallback", true))
	slog.Warn("SERVICE: Serving fallback recipes", "error", err, "count", len(recipes))
	s.notify(ctx, ingredients, err)

	return recipeagent.RecipeList{Recipes: recipes, Source: recipeagent.SourceFallback}, nil
}

func (s *Service) listFromModel(ctx context.Context, p recipeagent.Prompt) (recipeagent.RecipeList, error) {
	var list recipeagent.RecipeList
	err := s.generate(ctx, p, func(raw string) error {
		var err error
		list, err = s.reconciler.RecipeList(raw)
		return err
	})
	return list, err
}

// generate runs the prompt and reconciles the answer with accept. Against a
// chain, an answer that fails to reconcile moves on to the next backend.
func (s *Service) generate(ctx context.Context, p recipeagent.Prompt, accept func(raw string) error) error {
	if g, ok := s.generator.(acceptingGenerator); ok {
		_, err := g.GenerateAccepted(ctx, p, accept)
		return err
	}
	raw, err := s.generator.Generate(ctx, p)
	if err != nil {
		return err
	}
	return accept(raw)
}

// RecipeDetails expands a previously suggested recipe. The id is opaque and
// only passed to the model as context.
func (s *Service) RecipeDetails(ctx context.Context, recipeID string, ingredients []string) (recipeagent.RecipeDetail, error) {
	ctx, span := s.tracer.Start(ctx, "Service.RecipeDetails")
	defer span.End()

	recipeID = strings.TrimSpace(recipeID)
	if recipeID == "" {
		s.record(ctx, "detail", "invalid")
		return recipeagent.RecipeDetail{}, fmt.Errorf("%w: recipe ID cannot be empty", recipeagent.ErrInvalidInput)
	}
	ingredients = CleanIngredients(ingredients)
	if len(ingredients) == 0 {
		s.record(ctx, "detail", "invalid")
		return recipeagent.RecipeDetail{}, fmt.Errorf("%w: ingredients list cannot be empty", recipeagent.ErrInvalidInput)
	}
	span.SetAttributes(
		attribute.String("recipe.id", recipeID),
		attribute.Int("ingredients.count", len(ingredients)),
	)

	slog.Info("SERVICE: Generating recipe details", "recipe_id", recipeID, "ingredients", len(ingredients))

	p := prompt.Detail(recipeID, ingredients, prompt.Options{
		Temperature: s.opts.DetailTemperature,
		MaxTokens:   s.opts.MaxTokens,
	})

	var detail recipeagent.RecipeDetail
	err := s.generate(ctx, p, func(raw string) error {
		var err error
		detail, err = s.reconciler.RecipeDetail(raw)
		return err
	})
	if err == nil {
		s.record(ctx, "detail", "model")
		return detail, nil
	}

	s.record(ctx, "detail", "error")
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	slog.Error("SERVICE: Recipe details failed", "recipe_id", recipeID, "error", err)
	return recipeagent.RecipeDetail{}, err
}

func (s *Service) notify(ctx context.Context, ingredients []string, cause error) {
	if s.notifier == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
	defer cancel()
	if err := s.notifier.NotifyFallback(ctx, ingredients, cause); err != nil {
		slog.Error("SERVICE: Failed to send fallback notice", "error", err)
	}
}

func (s *Service) record(ctx context.Context, op, outcome string) {
	s.requests.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operation", op),
		attribute.String("outcome", outcome),
	))
}

// CleanIngredients trims each ingredient and drops blank entries, keeping order.
func CleanIngredients(ingredients []string) []string {
	out := make([]string, 0, len(ingredients))
	for _, ing := range ingredients {
		if ing = strings.TrimSpace(ing); ing != "" {
			out = append(out, ing)
		}
	}
	return out
}
