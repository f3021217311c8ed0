package recipeagent

import (
	"context"
	"net/http"
)

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Prompt is a backend-neutral instruction for a single completion.
type Prompt struct {
	System      string  `json:"system"`
	User        string  `json:"user"`
	Temperature float64 `json:"temperature"`
	MaxTokens   int     `json:"max_tokens"`
}

// Generator turns a prompt into raw model text. Every failure wraps ErrBackendUnavailable.
type Generator interface {
	Name() string
	Generate(ctx context.Context, prompt Prompt) (string, error)
}

// Source tells whether a result came from a model or the local fallback.
type Source string

const (
	SourceModel    Source = "model"
	SourceFallback Source = "fallback"
)

// RecipeSummary is one candidate recipe in a list response.
type RecipeSummary struct {
	ID      string   `json:"id"`
	Title   string   `json:"title"`
	Missing []string `json:"missing"`
	Reason  string   `json:"reason"`
}

// RecipeList preserves the order in which recipes were produced.
type RecipeList struct {
	Recipes []RecipeSummary `json:"recipes"`
	Source  Source          `json:"-"`
}

type IngredientLine struct {
	Name     string `json:"name"`
	Required bool   `json:"required"`
}

// RecipeDetail is the full recipe for a chosen candidate.
type RecipeDetail struct {
	Title       string           `json:"title"`
	Ingredients []IngredientLine `json:"ingredients"`
	Steps       []string         `json:"steps"`
	Tips        []string         `json:"tips"`
	Source      Source           `json:"-"`
}

// IngredientRequest is the body of a recipe list request.
type IngredientRequest struct {
	Ingredients []string `json:"ingredients"`
}

// RecipeDetailRequest is the body of a recipe detail request.
type RecipeDetailRequest struct {
	RecipeID    string   `json:"recipe_id"`
	Ingredients []string `json:"ingredients"`
}
