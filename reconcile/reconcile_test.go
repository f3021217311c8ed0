package reconcile

import (
	"testing"

	"recipeagent"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr error
	}{
		{name: "surrounding prose", raw: `Sure! {"recipes":[]} Hope that helps!`, want: `{"recipes":[]}`},
		{name: "nested objects keep last brace", raw: "```json\n{\"a\":{\"b\":1}}\n```", want: `{"a":{"b":1}}`},
		{name: "no opening brace", raw: "I could not think of anything", wantErr: recipeagent.ErrMalformedOutput},
		{name: "no closing brace", raw: `{"recipes": [`, wantErr: recipeagent.ErrMalformedOutput},
		{name: "closing before opening", raw: `} oops {`, wantErr: recipeagent.ErrMalformedOutput},
		{name: "empty", raw: "", wantErr: recipeagent.ErrMalformedOutput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractJSON(tt.raw)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReconciler_RecipeList(t *testing.T) {
	r, err := New()
	require.NoError(t, err)

	tests := []struct {
		name    string
		raw     string
		want    []recipeagent.RecipeSummary
		wantErr error
	}{
		{
			name: "empty list with prose",
			raw:  `Sure! {"recipes":[]} Hope that helps!`,
			want: []recipeagent.RecipeSummary{},
		},
		{
			name: "order preserved and defaults applied",
			raw: `Here you go:
{"recipes": [
  {"id": "fried_rice", "title": "Egg Fried Rice", "missing": ["soy sauce"], "reason": "Uses rice and eggs"},
  {"id": "omelet", "title": "Cheese Omelet", "reason": "Quick"},
  {"id": "toast", "title": "French Toast", "missing": null, "reason": null}
]}`,
			want: []recipeagent.RecipeSummary{
				{ID: "fried_rice", Title: "Egg Fried Rice", Missing: []string{"soy sauce"}, Reason: "Uses rice and eggs"},
				{ID: "omelet", Title: "Cheese Omelet", Missing: []string{}, Reason: "Quick"},
				{ID: "toast", Title: "French Toast", Missing: []string{}},
			},
		},
		{
			name:    "missing recipes field",
			raw:     `{"dishes": []}`,
			wantErr: recipeagent.ErrSchemaViolation,
		},
		{
			name:    "recipe without id",
			raw:     `{"recipes": [{"title": "Soup"}]}`,
			wantErr: recipeagent.ErrSchemaViolation,
		},
		{
			name:    "recipes is not an array",
			raw:     `{"recipes": "none"}`,
			wantErr: recipeagent.ErrSchemaViolation,
		},
		{
			name:    "parse error",
			raw:     `{"recipes": [,]}`,
			wantErr: recipeagent.ErrMalformedOutput,
		},
		{
			name:    "no json at all",
			raw:     "Sorry, I cannot help with that.",
			wantErr: recipeagent.ErrMalformedOutput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.RecipeList(tt.raw)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Recipes)
			assert.Equal(t, recipeagent.SourceModel, got.Source)
		})
	}
}

func TestReconciler_RecipeDetail(t *testing.T) {
	r, err := New()
	require.NoError(t, err)

	t.Run("defaults for required and tips", func(t *testing.T) {
		raw := `Enjoy! {
  "title": "Chicken Stir Fry",
  "ingredients": [
    {"name": "chicken"},
    {"name": "scallions", "required": false}
  ],
  "steps": ["Slice the chicken.", "Stir fry for 6 minutes."]
}`
		got, err := r.RecipeDetail(raw)
		require.NoError(t, err)

		assert.Equal(t, "Chicken Stir Fry", got.Title)
		assert.Equal(t, []recipeagent.IngredientLine{
			{Name: "chicken", Required: true},
			{Name: "scallions", Required: false},
		}, got.Ingredients)
		assert.Equal(t, []string{"Slice the chicken.", "Stir fry for 6 minutes."}, got.Steps)
		assert.NotNil(t, got.Tips)
		assert.Empty(t, got.Tips)
	})

	t.Run("tips kept", func(t *testing.T) {
		got, err := r.RecipeDetail(`{"title": "Toast", "ingredients": [], "steps": ["Toast it."], "tips": ["Use stale bread."]}`)
		require.NoError(t, err)
		assert.Equal(t, []string{"Use stale bread."}, got.Tips)
	})

	failures := []struct {
		name    string
		raw     string
		wantErr error
	}{
		{name: "missing steps", raw: `{"title": "Toast", "ingredients": []}`, wantErr: recipeagent.ErrSchemaViolation},
		{name: "ingredient without name", raw: `{"title": "Toast", "ingredients": [{"required": true}], "steps": []}`, wantErr: recipeagent.ErrSchemaViolation},
		{name: "step is not a string", raw: `{"title": "Toast", "ingredients": [], "steps": [1]}`, wantErr: recipeagent.ErrSchemaViolation},
		{name: "truncated output", raw: `{"title": "Toast", "ingredients": [} `, wantErr: recipeagent.ErrMalformedOutput},
	}

	for _, tt := range failures {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.RecipeDetail(tt.raw)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
