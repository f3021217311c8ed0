// Package reconcile extracts, parses and validates the JSON object embedded in
// free-form model output. Reconciliation is all-or-nothing.
package reconcile

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"recipeagent"

	"github.com/google/jsonschema-go/jsonschema"
)

// Reconciler holds the resolved schemas for each call type. It is safe for concurrent use.
type Reconciler struct {
	list   *jsonschema.Resolved
	detail *jsonschema.Resolved
}

func New() (*Reconciler, error) {
	list, err := listSchema().Resolve(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve recipe list schema: %w", err)
	}
	detail, err := detailSchema().Resolve(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve recipe detail schema: %w", err)
	}
	return &Reconciler{list: list, detail: detail}, nil
}

// ExtractJSON returns the text between the first '{' and the last '}' inclusive.
func ExtractJSON(raw string) (string, error) {
	start := strings.Index(raw, "{")
	if start < 0 {
		return "", fmt.Errorf("%w: no '{' in model output", recipeagent.ErrMalformedOutput)
	}
	end := strings.LastIndex(raw, "}")
	if end < 0 {
		return "", fmt.Errorf("%w: no '}' in model output", recipeagent.ErrMalformedOutput)
	}
	if end < start {
		return "", fmt.Errorf("%w: last '}' precedes first '{'", recipeagent.ErrMalformedOutput)
	}
	return raw[start : end+1], nil
}

type wireSummary struct {
	ID      string   `json:"id"`
	Title   string   `json:"title"`
	Missing []string `json:"missing"`
	Reason  *string  `json:"reason"`
}

type wireList struct {
	Recipes []wireSummary `json:"recipes"`
}

type wireIngredient struct {
	Name     string `json:"name"`
	Required *bool  `json:"required"`
}

type wireDetail struct {
	Title       string           `json:"title"`
	Ingredients []wireIngredient `json:"ingredients"`
	Steps       []string         `json:"steps"`
	Tips        []string         `json:"tips"`
}

// RecipeList reconciles raw model text into a recipe list.
func (r *Reconciler) RecipeList(raw string) (recipeagent.RecipeList, error) {
	var wl wireList
	if err := r.reconcile(raw, r.list, &wl); err != nil {
		return recipeagent.RecipeList{}, err
	}

	recipes := make([]recipeagent.RecipeSummary, 0, len(wl.Recipes))
	for _, s := range wl.Recipes {
		missing := s.Missing
		if missing == nil {
			missing = []string{}
		}
		var reason string
		if s.Reason != nil {
			reason = *s.Reason
		}
		recipes = append(recipes, recipeagent.RecipeSummary{
			ID:      s.ID,
			Title:   s.Title,
			Missing: missing,
			Reason:  reason,
		})
	}

	return recipeagent.RecipeList{Recipes: recipes, Source: recipeagent.SourceModel}, nil
}

// RecipeDetail reconciles raw model text into a recipe detail.
func (r *Reconciler) RecipeDetail(raw string) (recipeagent.RecipeDetail, error) {
	var wd wireDetail
	if err := r.reconcile(raw, r.detail, &wd); err != nil {
		return recipeagent.RecipeDetail{}, err
	}

	lines := make([]recipeagent.IngredientLine, 0, len(wd.Ingredients))
	for _, ing := range wd.Ingredients {
		required := true
		if ing.Required != nil {
			required = *ing.Required
		}
		lines = append(lines, recipeagent.IngredientLine{Name: ing.Name, Required: required})
	}

	tips := wd.Tips
	if tips == nil {
		tips = []string{}
	}

	return recipeagent.RecipeDetail{
		Title:       wd.Title,
		Ingredients: lines,
		Steps:       wd.Steps,
		Tips:        tips,
		Source:      recipeagent.SourceModel,
	}, nil
}

func (r *Reconciler) reconcile(raw string, schema *jsonschema.Resolved, out any) error {
	payload, err := ExtractJSON(raw)
	if err != nil {
		slog.Warn("RECONCILER: No JSON object in model output", "raw_len", len(raw), "error", err)
		return err
	}

	if slog.Default().Enabled(context.Background(), slog.LevelDebug) {
		slog.Debug("RECONCILER: Extracted payload", "dump", recipeagent.Sdump(payload))
	}

	var instance any
	if err := json.Unmarshal([]byte(payload), &instance); err != nil {
		return fmt.Errorf("%w: %v", recipeagent.ErrMalformedOutput, err)
	}

	if err := schema.Validate(instance); err != nil {
		slog.Warn("RECONCILER: Schema validation failed", "error", err)
		return fmt.Errorf("%w: %v", recipeagent.ErrSchemaViolation, err)
	}

	if err := json.Unmarshal([]byte(payload), out); err != nil {
		return fmt.Errorf("%w: %v", recipeagent.ErrMalformedOutput, err)
	}
	return nil
}
