// Package backend composes generation backends into an ordered chain.
package backend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"recipeagent"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Chain tries each generator in order and returns the first success. A chain
// is itself a recipeagent.Generator.
type Chain struct {
	generators []recipeagent.Generator
	logger     recipeagent.AttemptLogger
	tracer     trace.Tracer

	attempts metric.Int64Counter
	failures metric.Int64Counter
	latency  metric.Float64Histogram
}

// NewChain builds a chain over the given generators. A nil logger discards attempts.
func NewChain(logger recipeagent.AttemptLogger, generators ...recipeagent.Generator) *Chain {
	if logger == nil {
		logger = recipeagent.NewNoOpAttemptLogger()
	}
	meter := otel.Meter(recipeagent.TracerNameChain)

	attempts, _ := meter.Int64Counter("backend_attempts_total",
		metric.WithDescription("Total number of generation attempts per backend"))
	failures, _ := meter.Int64Counter("backend_failures_total",
		metric.WithDescription("Total number of failed generation attempts per backend"))
	latency, _ := meter.Float64Histogram("backend_latency_seconds",
		metric.WithDescription("Time taken by a backend to answer in seconds"))

	return &Chain{
		generators: generators,
		logger:     logger,
		tracer:     otel.Tracer(recipeagent.TracerNameChain),
		attempts:   attempts,
		failures:   failures,
		latency:    latency,
	}
}

func (c *Chain) Name() string {
	return "chain"
}

// Names lists the chained backends in order.
func (c *Chain) Names() []string {
	names := make([]string, len(c.generators))
	for i, g := range c.generators {
		names[i] = g.Name()
	}
	return names
}

// Generate returns the first successful completion. When every backend fails
// the last error is returned wrapped in ErrBackendUnavailable.
func (c *Chain) Generate(ctx context.Context, prompt recipeagent.Prompt) (string, error) {
	return c.GenerateAccepted(ctx, prompt, nil)
}

// GenerateAccepted is Generate with an acceptance check run on each backend's
// output. A rejected output counts as a failed attempt and the next backend is
// tried. A nil accept takes any output.
func (c *Chain) GenerateAccepted(ctx context.Context, prompt recipeagent.Prompt, accept func(raw string) error) (string, error) {
	ctx, span := c.tracer.Start(ctx, "Chain.Generate", trace.WithAttributes(
		attribute.Int("chain.length", len(c.generators)),
	))
	defer span.End()

	if len(c.generators) == 0 {
		err := fmt.Errorf("%w: no backends configured", recipeagent.ErrBackendUnavailable)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}

	var lastErr error
	for i, g := range c.generators {
		if err := ctx.Err(); err != nil {
			lastErr = err
			break
		}

		name := g.Name()
		backendAttr := metric.WithAttributes(attribute.String("backend", name))
		attempt := recipeagent.AttemptLog{Backend: name, Attempt: i + 1, Timestamp: time.Now(), Prompt: prompt}

		slog.Info("CHAIN: Trying backend", "backend", name, "attempt", i+1, "of", len(c.generators))
		c.attempts.Add(ctx, 1, backendAttr)

		start := time.Now()
		out, err := g.Generate(ctx, prompt)
		elapsed := time.Since(start)
		c.latency.Record(ctx, elapsed.Seconds(), backendAttr)
		attempt.DurationMS = elapsed.Milliseconds()

		if err == nil && accept != nil {
			if err = accept(out); err != nil {
				attempt.Output = out
				err = fmt.Errorf("%s: output rejected: %w", name, err)
			}
		}

		if err != nil {
			lastErr = err
			attempt.Error = err.Error()
			c.failures.Add(ctx, 1, backendAttr)
			span.AddEvent("backend failed", trace.WithAttributes(
				attribute.String("backend", name),
				attribute.String("error", err.Error()),
			))
			slog.Warn("CHAIN: Backend failed", "backend", name, "error", err, "elapsed_ms", elapsed.Milliseconds())
			c.logAttempt(attempt)
			continue
		}

		attempt.Output = out
		c.logAttempt(attempt)
		span.SetAttributes(attribute.String("chain.backend", name))
		slog.Info("CHAIN: Backend succeeded", "backend", name, "output_len", len(out), "elapsed_ms", elapsed.Milliseconds())
		return out, nil
	}

	span.RecordError(lastErr)
	span.SetStatus(codes.Error, "all backends failed")

	if errors.Is(lastErr, recipeagent.ErrBackendUnavailable) {
		return "", fmt.Errorf("all backends failed: %w", lastErr)
	}
	return "", fmt.Errorf("%w: all backends failed: %w", recipeagent.ErrBackendUnavailable, lastErr)
}

func (c *Chain) logAttempt(attempt recipeagent.AttemptLog) {
	if err := c.logger.LogAttempt(attempt); err != nil {
		slog.Error("CHAIN: Failed to log attempt", "error", err, "backend", attempt.Backend)
	}
}
