package mock

import (
	"context"
	"testing"

	"recipeagent"
	"recipeagent/prompt"
	"recipeagent/reconcile"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_GenerateReconciles(t *testing.T) {
	r, err := reconcile.New()
	require.NoError(t, err)
	client := NewClient()

	t.Run("list", func(t *testing.T) {
		raw, err := client.Generate(context.Background(), prompt.List([]string{"lentils", "carrots"}, prompt.Options{}))
		require.NoError(t, err)

		list, err := r.RecipeList(raw)
		require.NoError(t, err)
		require.Len(t, list.Recipes, 2)
		assert.Equal(t, "lentils skillet", list.Recipes[0].Title)
	})

	t.Run("detail", func(t *testing.T) {
		raw, err := client.Generate(context.Background(), prompt.Detail("mock_soup", []string{"lentils"}, prompt.Options{}))
		require.NoError(t, err)

		detail, err := r.RecipeDetail(raw)
		require.NoError(t, err)
		assert.Equal(t, "mock soup", detail.Title)
		assert.Equal(t, []recipeagent.IngredientLine{{Name: "lentils", Required: true}}, detail.Ingredients)
		assert.Len(t, detail.Steps, 3)
	})
}

func TestClient_GenerateCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewClient().Generate(ctx, recipeagent.Prompt{User: "x"})
	assert.ErrorIs(t, err, recipeagent.ErrBackendUnavailable)
}
