package reconcile

import (
	"github.com/google/jsonschema-go/jsonschema"
)

func stringSchema() *jsonschema.Schema {
	return &jsonschema.Schema{Type: "string"}
}

// optionalStrings accepts a string array or null; null is normalized to empty later.
func optionalStrings() *jsonschema.Schema {
	return &jsonschema.Schema{Types: []string{"array", "null"}, Items: stringSchema()}
}

// listSchema describes {"recipes": [{id, title, missing, reason}]}.
func listSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type:     "object",
		Required: []string{"recipes"},
		Properties: map[string]*jsonschema.Schema{
			"recipes": {
				Type: "array",
				Items: &jsonschema.Schema{
					Type:     "object",
					Required: []string{"id", "title"},
					Properties: map[string]*jsonschema.Schema{
						"id":      stringSchema(),
						"title":   stringSchema(),
						"missing": optionalStrings(),
						"reason":  {Types: []string{"string", "null"}},
					},
				},
			},
		},
	}
}

// detailSchema describes {title, ingredients: [{name, required}], steps, tips}.
func detailSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type:     "object",
		Required: []string{"title", "ingredients", "steps"},
		Properties: map[string]*jsonschema.Schema{
			"title": stringSchema(),
			"ingredients": {
				Type: "array",
				Items: &jsonschema.Schema{
					Type:     "object",
					Required: []string{"name"},
					Properties: map[string]*jsonschema.Schema{
						"name":     stringSchema(),
						"required": {Types: []string{"boolean", "null"}},
					},
				},
			},
			"steps": {Type: "array", Items: stringSchema()},
			"tips":  optionalStrings(),
		},
	}
}
