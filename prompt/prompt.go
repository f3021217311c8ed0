// Package prompt builds the instructions sent to generation backends.
package prompt

import (
	"fmt"
	"strings"

	"recipeagent"
)

// Options tune the prompts built for one request.
type Options struct {
	RecipeCount int
	Temperature float64
	MaxTokens   int
}

// List builds the recipe discovery prompt for the given ingredients.
func List(ingredients []string, opts Options) recipeagent.Prompt {
	count := opts.RecipeCount
	if count <= 0 {
		count = 5
	}
	return recipeagent.Prompt{
		System:      fmt.Sprintf(listSystemPrompt, count),
		User:        fmt.Sprintf(listUserPrompt, formatIngredients(ingredients), listExample),
		Temperature: opts.Temperature,
		MaxTokens:   opts.MaxTokens,
	}
}

// Detail builds the recipe detail prompt for a previously suggested recipe id.
func Detail(recipeID string, ingredients []string, opts Options) recipeagent.Prompt {
	return recipeagent.Prompt{
		System:      detailSystemPrompt,
		User:        fmt.Sprintf(detailUserPrompt, recipeID, formatIngredients(ingredients), detailExample),
		Temperature: opts.Temperature,
		MaxTokens:   opts.MaxTokens,
	}
}

// Flatten renders a prompt as one instruction string for single-prompt backends.
func Flatten(p recipeagent.Prompt) string {
	var b strings.Builder
	if s := strings.TrimSpace(p.System); s != "" {
		b.WriteString(s)
		b.WriteString("\n\n")
	}
	b.WriteString(strings.TrimSpace(p.User))
	return b.String()
}

func formatIngredients(ingredients []string) string {
	lines := make([]string, len(ingredients))
	for i, ing := range ingredients {
		lines[i] = "- " + ing
	}
	return strings.Join(lines, "\n")
}

const listSystemPrompt = `You are a recipe discovery agent.

RULES
- Suggest %d realistic recipes.
- Use mostly the provided ingredients and avoid exotic ones.
- Do NOT include cooking steps.
- Keep titles concise.

OUTPUT CONTRACT
- Respond with ONE valid JSON object only (no extra text, no markdown, no code fences). Start with '{' and end with '}'.
- "id" is a short stable snake_case token, unique within the response.
- "missing" lists ingredients the user does not have; use [] when nothing is missing.`

const listUserPrompt = `User ingredients:
%s

Return format:
%s`

const listExample = `{
  "recipes": [
    {
      "id": "short_stable_id",
      "title": "",
      "missing": [],
      "reason": ""
    }
  ]
}`

const detailSystemPrompt = `You are a cooking assistant.

RULES
- Generate a complete, realistic recipe with step-by-step instructions.
- Prefer the user's ingredients and mention substitutions when needed.

OUTPUT CONTRACT
- Respond with ONE valid JSON object only (no extra text, no markdown, no code fences). Start with '{' and end with '}'.
- Mark an ingredient "required": false only when the dish works without it.`

const detailUserPrompt = `Recipe ID:
%s

User ingredients:
%s

Return format:
%s`

const detailExample = `{
  "title": "",
  "ingredients": [
    { "name": "", "required": true }
  ],
  "steps": [
    "Step 1...",
    "Step 2..."
  ],
  "tips": []
}`
