// Package mock provides a deterministic offline Generator. It answers like a
// chatty model, wrapping JSON in prose, and is selected with BACKENDS=mock.
package mock

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"recipeagent"
)

type Client struct{}

func NewClient() *Client {
	return &Client{}
}

func (m *Client) Name() string {
	return "mock"
}

// Generate answers detail prompts (those carrying a recipe id) with a detail
// object and every other prompt with a recipe list.
func (m *Client) Generate(ctx context.Context, prompt recipeagent.Prompt) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("%w: %s: %v", recipeagent.ErrBackendUnavailable, m.Name(), err)
	}

	ingredients := ingredientsFrom(prompt.User)
	slog.Info("LLM_CLIENT: Invoked", "backend", m.Name(), "ingredients", len(ingredients))

	var payload any
	if id, ok := recipeIDFrom(prompt.User); ok {
		payload = detailFor(id, ingredients)
	} else {
		payload = listFor(ingredients)
	}

	b, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", recipeagent.ErrBackendUnavailable, m.Name(), err)
	}
	return "Here is what I came up with:\n" + string(b) + "\nEnjoy!", nil
}

func listFor(ingredients []string) map[string]any {
	main := "Pantry"
	if len(ingredients) > 0 {
		main = ingredients[0]
	}
	return map[string]any{
		"recipes": []map[string]any{
			{"id": "mock_skillet", "title": main + " skillet", "missing": []string{"olive oil"}, "reason": "Uses what you already have."},
			{"id": "mock_soup", "title": main + " soup", "missing": []string{"broth"}, "reason": "Simple and warming."},
		},
	}
}

func detailFor(id string, ingredients []string) map[string]any {
	lines := make([]map[string]any, 0, len(ingredients))
	for _, ing := range ingredients {
		lines = append(lines, map[string]any{"name": ing, "required": true})
	}
	return map[string]any{
		"title":       strings.ReplaceAll(id, "_", " "),
		"ingredients": lines,
		"steps":       []string{"Prepare the ingredients.", "Cook until done.", "Serve warm."},
	}
}

// ingredientsFrom reads the "- name" lines of a prompt.
func ingredientsFrom(user string) []string {
	var out []string
	for _, line := range strings.Split(user, "\n") {
		if name, ok := strings.CutPrefix(strings.TrimSpace(line), "- "); ok {
			out = append(out, name)
		}
	}
	return out
}

func recipeIDFrom(user string) (string, bool) {
	_, rest, ok := strings.Cut(user, "Recipe ID:\n")
	if !ok {
		return "", false
	}
	id, _, _ := strings.Cut(rest, "\n")
	id = strings.TrimSpace(id)
	return id, id != ""
}
