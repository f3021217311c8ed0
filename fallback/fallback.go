// Package fallback produces deterministic recipe suggestions from static
// templates keyed by ingredient keywords. It is used when no backend yields a
// usable recipe list.
package fallback

import (
	"strings"

	"recipeagent"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// MaxRecipes caps the number of suggestions returned.
const MaxRecipes = 10

// genericTitleIngredients is how many ingredients name a generic template.
const genericTitleIngredients = 3

type category struct {
	name      string
	keywords  map[string]struct{}
	templates []Template
}

// Generator is read-only after construction and safe for concurrent use.
type Generator struct {
	categories []category
	generic    []Template
}

// New indexes the catalog's keyword sets.
func New(c Catalog) *Generator {
	g := &Generator{generic: c.Generic}
	for _, cat := range c.Categories {
		kw := make(map[string]struct{}, len(cat.Keywords))
		for _, k := range cat.Keywords {
			kw[normalize(k)] = struct{}{}
		}
		g.categories = append(g.categories, category{name: cat.Name, keywords: kw, templates: cat.Templates})
	}
	return g
}

// Recipes returns between 1 and MaxRecipes suggestions for a non-empty ingredient list.
func (g *Generator) Recipes(ingredients []string) []recipeagent.RecipeSummary {
	// Casers keep internal state and must not be shared across goroutines.
	title := cases.Title(language.English)

	normalized := make([]string, len(ingredients))
	for i, ing := range ingredients {
		normalized[i] = normalize(ing)
	}

	var out []recipeagent.RecipeSummary
	for _, cat := range g.categories {
		first, ok := cat.firstMatch(normalized)
		if !ok {
			continue
		}
		name := title.String(first)
		for _, t := range cat.templates {
			out = append(out, summary(t, strings.ReplaceAll(t.Title, placeholderIngredient, name)))
		}
	}

	if len(out) == 0 {
		name := genericName(normalized, title)
		for _, t := range g.generic {
			out = append(out, summary(t, strings.ReplaceAll(t.Title, placeholderIngredients, name)))
		}
	}

	if len(out) > MaxRecipes {
		out = out[:MaxRecipes]
	}
	return out
}

func (c category) firstMatch(ingredients []string) (string, bool) {
	for _, ing := range ingredients {
		if _, ok := c.keywords[ing]; ok {
			return ing, true
		}
	}
	return "", false
}

func genericName(ingredients []string, title cases.Caser) string {
	names := make([]string, 0, genericTitleIngredients)
	for _, ing := range ingredients {
		if ing == "" {
			continue
		}
		names = append(names, title.String(ing))
		if len(names) == genericTitleIngredients {
			break
		}
	}
	if len(names) == 0 {
		return "Pantry"
	}
	return strings.Join(names, " & ")
}

func summary(t Template, title string) recipeagent.RecipeSummary {
	missing := make([]string, len(t.Missing))
	copy(missing, t.Missing)
	return recipeagent.RecipeSummary{
		ID:      t.ID,
		Title:   title,
		Missing: missing,
		Reason:  t.Reason,
	}
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
