package fallback

import (
	"context"
	"sync"
	"testing"

	"recipeagent/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ids(g *Generator, ingredients ...string) []string {
	var out []string
	for _, r := range g.Recipes(ingredients) {
		out = append(out, r.ID)
	}
	return out
}

func TestRecipes_WellFormed(t *testing.T) {
	g := New(DefaultCatalog())

	inputs := [][]string{
		{"chicken"},
		{"glue", "sand"},
		{"chicken", "pasta", "rice", "eggs", "broccoli", "salmon", "bread"},
		{"  TOFU "},
		{"x"},
		{"penne", "spinach"},
	}

	for _, in := range inputs {
		got := g.Recipes(in)
		require.NotEmpty(t, got, "input %v", in)
		assert.LessOrEqual(t, len(got), MaxRecipes, "input %v", in)
		for _, r := range got {
			assert.NotEmpty(t, r.ID)
			assert.NotEmpty(t, r.Title)
			assert.NotEmpty(t, r.Reason)
			assert.NotNil(t, r.Missing)
			assert.NotContains(t, r.Title, "{")
		}
	}
}

func TestRecipes_Chicken(t *testing.T) {
	g := New(DefaultCatalog())

	got := g.Recipes([]string{"Chicken", "rice"})
	require.NotEmpty(t, got)
	assert.Equal(t, "protein_stir_fry", got[0].ID)
	assert.Equal(t, "Chicken Stir Fry", got[0].Title)
	assert.Contains(t, ids(g, "chicken"), "protein_stir_fry")
}

func TestRecipes_CategoryOrder(t *testing.T) {
	g := New(DefaultCatalog())

	// Input order must not change category order.
	got := ids(g, "bread", "eggs", "spaghetti", "beef")
	assert.Equal(t, []string{
		"protein_stir_fry", "protein_roast", "protein_skewers",
		"pasta_aglio_olio", "pasta_tomato_basil", "pasta_bake",
		"egg_scramble", "egg_frittata", "egg_shakshuka",
		"bread_loaded_toast",
	}, got)
}

func TestRecipes_TruncatesToTen(t *testing.T) {
	g := New(DefaultCatalog())

	got := g.Recipes([]string{"chicken", "pasta", "rice", "eggs", "broccoli", "salmon", "bread"})
	assert.Len(t, got, MaxRecipes)
	assert.Equal(t, "protein_stir_fry", got[0].ID)
}

func TestRecipes_TitleUsesFirstMatchingIngredient(t *testing.T) {
	g := New(DefaultCatalog())

	got := g.Recipes([]string{"glue", "ground beef", "chicken"})
	require.NotEmpty(t, got)
	assert.Equal(t, "Ground Beef Stir Fry", got[0].Title)
}

func TestRecipes_Generic(t *testing.T) {
	g := New(DefaultCatalog())

	got := g.Recipes([]string{"glue", "sand"})
	require.Len(t, got, 10)

	var gotIDs []string
	for _, r := range got {
		gotIDs = append(gotIDs, r.ID)
	}
	assert.Equal(t, []string{
		"generic_saute",
		"generic_stew",
		"generic_casserole",
		"generic_bowl",
		"generic_wrap",
		"generic_skillet",
		"generic_mediterranean_plate",
		"generic_tacos",
		"generic_grain_bowl",
		"generic_pizza",
	}, gotIDs)
	assert.Equal(t, "Glue & Sand Sauté", got[0].Title)
}

func TestRecipes_GenericTitleUsesFirstThree(t *testing.T) {
	g := New(DefaultCatalog())

	got := g.Recipes([]string{"glue", "sand", "chalk", "string"})
	require.NotEmpty(t, got)
	assert.Equal(t, "Glue & Sand & Chalk Bowl", got[3].Title)
}

func TestRecipes_DoesNotShareTemplateSlices(t *testing.T) {
	g := New(DefaultCatalog())

	first := g.Recipes([]string{"chicken"})
	first[0].Missing[0] = "mutated"

	second := g.Recipes([]string{"chicken"})
	assert.Equal(t, "soy sauce", second[0].Missing[0])
}

func TestRecipes_Concurrent(t *testing.T) {
	g := New(DefaultCatalog())

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.Equal(t, "Salmon Tacos", g.Recipes([]string{"salmon"})[1].Title)
		}()
	}
	wg.Wait()
}

func TestLoadCatalog(t *testing.T) {
	tests := []struct {
		name    string
		state   storage.State
		wantErr string
	}{
		{
			name: "valid catalog",
			state: storage.NewStaticState([]byte(`{
				"categories": [{"name": "legume", "keywords": ["lentils"], "templates": [{"id": "legume_dal", "title": "{ingredient} Dal", "reason": "Cheap and filling."}]}],
				"generic": [{"id": "generic_soup", "title": "{ingredients} Soup", "reason": "Works with anything."}]
			}`)),
		},
		{name: "load error", state: storage.NewStaticStateWithError(), wantErr: "failed to load fallback catalog"},
		{name: "bad json", state: storage.NewStaticState([]byte(`{`)), wantErr: "failed to decode fallback catalog"},
		{name: "no generic templates", state: storage.NewStaticState([]byte(`{"categories": []}`)), wantErr: "no generic templates"},
		{
			name:    "template without reason",
			state:   storage.NewStaticState([]byte(`{"generic": [{"id": "generic_soup", "title": "Soup"}]}`)),
			wantErr: "needs id, title and reason",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := LoadCatalog(context.Background(), tt.state)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)

			g := New(c)
			assert.Equal(t, "Lentils Dal", g.Recipes([]string{"lentils"})[0].Title)
			assert.Equal(t, "generic_soup", g.Recipes([]string{"glue"})[0].ID)
		})
	}
}

func TestDefaultCatalog_Valid(t *testing.T) {
	require.NoError(t, DefaultCatalog().Validate())
}
