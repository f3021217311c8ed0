package fallback

import (
	"context"
	"encoding/json"
	"fmt"

	"recipeagent/storage"
)

// Placeholders substituted into template titles.
const (
	placeholderIngredient  = "{ingredient}"
	placeholderIngredients = "{ingredients}"
)

// Template is a static recipe suggestion. Title may contain a placeholder.
type Template struct {
	ID      string   `json:"id"`
	Title   string   `json:"title"`
	Missing []string `json:"missing"`
	Reason  string   `json:"reason"`
}

// Category is a keyword set and the templates it contributes when matched.
type Category struct {
	Name      string     `json:"name"`
	Keywords  []string   `json:"keywords"`
	Templates []Template `json:"templates"`
}

// Catalog is the full fallback template set. Categories are evaluated in order.
type Catalog struct {
	Categories []Category `json:"categories"`
	Generic    []Template `json:"generic"`
}

// Validate checks that every template can produce a well-formed summary.
func (c Catalog) Validate() error {
	if len(c.Generic) == 0 {
		return fmt.Errorf("catalog has no generic templates")
	}
	check := func(where string, t Template) error {
		if t.ID == "" || t.Title == "" || t.Reason == "" {
			return fmt.Errorf("%s: template %q needs id, title and reason", where, t.ID)
		}
		return nil
	}
	for _, cat := range c.Categories {
		if len(cat.Keywords) == 0 || len(cat.Templates) == 0 {
			return fmt.Errorf("category %q needs keywords and templates", cat.Name)
		}
		for _, t := range cat.Templates {
			if err := check(cat.Name, t); err != nil {
				return err
			}
		}
	}
	for _, t := range c.Generic {
		if err := check("generic", t); err != nil {
			return err
		}
	}
	return nil
}

// LoadCatalog reads and validates a JSON catalog from the given state.
func LoadCatalog(ctx context.Context, state storage.State) (Catalog, error) {
	data, err := state.Load(ctx)
	if err != nil {
		return Catalog{}, fmt.Errorf("failed to load fallback catalog: %w", err)
	}

	var c Catalog
	if err := json.Unmarshal(data, &c); err != nil {
		return Catalog{}, fmt.Errorf("failed to decode fallback catalog: %w", err)
	}

	if err := c.Validate(); err != nil {
		return Catalog{}, fmt.Errorf("invalid fallback catalog: %w", err)
	}
	return c, nil
}

// DefaultCatalog returns the built-in catalog.
func DefaultCatalog() Catalog {
	return Catalog{
		Categories: []Category{
			{
				Name:     "protein",
				Keywords: []string{"chicken", "chicken breast", "chicken thighs", "beef", "ground beef", "steak", "pork", "pork chops", "turkey", "lamb", "tofu", "tempeh", "sausage", "bacon", "ham"},
				Templates: []Template{
					{ID: "protein_stir_fry", Title: "{ingredient} Stir Fry", Missing: []string{"soy sauce", "garlic"}, Reason: "A quick high-heat dish built around your protein."},
					{ID: "protein_roast", Title: "Herb Roasted {ingredient}", Missing: []string{"rosemary", "olive oil"}, Reason: "Hands-off oven cooking with pantry herbs."},
					{ID: "protein_skewers", Title: "Grilled {ingredient} Skewers", Missing: []string{"bell pepper", "lemon"}, Reason: "Easy to portion and great for sharing."},
				},
			},
			{
				Name:     "pasta",
				Keywords: []string{"pasta", "spaghetti", "penne", "macaroni", "fettuccine", "linguine", "rigatoni", "lasagna", "noodles"},
				Templates: []Template{
					{ID: "pasta_aglio_olio", Title: "{ingredient} Aglio e Olio", Missing: []string{"garlic", "olive oil", "chili flakes"}, Reason: "Needs only a few staples on top of the pasta."},
					{ID: "pasta_tomato_basil", Title: "{ingredient} with Tomato Basil Sauce", Missing: []string{"canned tomatoes", "basil"}, Reason: "A classic sauce that comes together while the pasta boils."},
					{ID: "pasta_bake", Title: "Baked {ingredient}", Missing: []string{"mozzarella"}, Reason: "Turns leftovers into a comforting casserole."},
				},
			},
			{
				Name:     "grain",
				Keywords: []string{"rice", "brown rice", "quinoa", "couscous", "barley", "bulgur", "farro", "oats"},
				Templates: []Template{
					{ID: "grain_fried", Title: "Vegetable Fried {ingredient}", Missing: []string{"soy sauce", "peas"}, Reason: "Works best with cooked, day-old grains."},
					{ID: "grain_pilaf", Title: "{ingredient} Pilaf", Missing: []string{"onion", "broth"}, Reason: "A simple side that soaks up flavor from the broth."},
				},
			},
			{
				Name:     "egg",
				Keywords: []string{"egg", "eggs"},
				Templates: []Template{
					{ID: "egg_scramble", Title: "Soft Scrambled {ingredient}", Missing: []string{"butter", "chives"}, Reason: "Ready in five minutes."},
					{ID: "egg_frittata", Title: "Baked {ingredient} Frittata", Missing: []string{"cheese"}, Reason: "Uses up odds and ends from the fridge."},
					{ID: "egg_shakshuka", Title: "{ingredient} Shakshuka", Missing: []string{"canned tomatoes", "cumin"}, Reason: "Eggs poached in a spiced tomato sauce."},
				},
			},
			{
				Name:     "vegetable",
				Keywords: []string{"tomato", "tomatoes", "potato", "potatoes", "carrot", "carrots", "broccoli", "spinach", "onion", "onions", "bell pepper", "zucchini", "mushroom", "mushrooms", "cabbage", "cauliflower", "kale", "eggplant", "corn", "peas"},
				Templates: []Template{
					{ID: "vegetable_roasted", Title: "Roasted {ingredient}", Missing: []string{"olive oil"}, Reason: "Roasting brings out natural sweetness."},
					{ID: "vegetable_soup", Title: "Creamy {ingredient} Soup", Missing: []string{"broth", "cream"}, Reason: "A good way to use vegetables past their prime."},
					{ID: "vegetable_gratin", Title: "{ingredient} Gratin", Missing: []string{"cheese", "breadcrumbs"}, Reason: "A crisp-topped bake that works as a main or a side."},
				},
			},
			{
				Name:     "seafood",
				Keywords: []string{"fish", "salmon", "tuna", "cod", "tilapia", "shrimp", "prawns", "crab", "scallops", "mussels"},
				Templates: []Template{
					{ID: "seafood_pan_seared", Title: "Pan-Seared {ingredient}", Missing: []string{"lemon", "butter"}, Reason: "Seafood cooks in minutes in a hot pan."},
					{ID: "seafood_tacos", Title: "{ingredient} Tacos", Missing: []string{"tortillas", "cabbage", "lime"}, Reason: "Light and fresh with crunchy toppings."},
					{ID: "seafood_curry", Title: "Coconut {ingredient} Curry", Missing: []string{"coconut milk", "curry paste"}, Reason: "A rich sauce that pairs well with rice."},
				},
			},
			{
				Name:     "bread",
				Keywords: []string{"bread", "sourdough", "baguette", "pita", "naan", "tortilla", "tortillas", "buns"},
				Templates: []Template{
					{ID: "bread_loaded_toast", Title: "Loaded {ingredient} Toast", Missing: []string{"avocado"}, Reason: "Quick to assemble from whatever is on hand."},
					{ID: "bread_melt", Title: "{ingredient} Melt Sandwich", Missing: []string{"cheese"}, Reason: "A warm, crisp sandwich in one pan."},
				},
			},
		},
		Generic: []Template{
			{ID: "generic_saute", Title: "{ingredients} Sauté", Missing: []string{"olive oil", "garlic"}, Reason: "A simple pan sauté works with almost any ingredients."},
			{ID: "generic_stew", Title: "Hearty {ingredients} Stew", Missing: []string{"broth", "onion"}, Reason: "Slow simmering brings everything together."},
			{ID: "generic_casserole", Title: "{ingredients} Casserole", Missing: []string{"cheese", "breadcrumbs"}, Reason: "Layer and bake for an easy family meal."},
			{ID: "generic_bowl", Title: "{ingredients} Bowl", Missing: []string{"rice", "sesame seeds"}, Reason: "Build a balanced bowl around what you have."},
			{ID: "generic_wrap", Title: "{ingredients} Wrap", Missing: []string{"tortillas", "lettuce"}, Reason: "Portable and quick to assemble."},
			{ID: "generic_skillet", Title: "One-Pan {ingredients} Skillet", Missing: []string{"butter"}, Reason: "Minimal cleanup with everything cooked in one pan."},
			{ID: "generic_mediterranean_plate", Title: "Mediterranean {ingredients} Plate", Missing: []string{"hummus", "olives", "pita"}, Reason: "Fresh flavors with little cooking required."},
			{ID: "generic_tacos", Title: "{ingredients} Tacos", Missing: []string{"tortillas", "salsa"}, Reason: "Almost anything works as a taco filling."},
			{ID: "generic_grain_bowl", Title: "{ingredients} Grain Bowl", Missing: []string{"quinoa", "lemon"}, Reason: "A filling base of grains keeps it satisfying."},
			{ID: "generic_pizza", Title: "{ingredients} Flatbread Pizza", Missing: []string{"flatbread", "mozzarella", "tomato sauce"}, Reason: "Use your ingredients as toppings."},
		},
	}
}
