package graph

import (
	"testing"

	"csao_engine/internal/model"
)

func testGraph() *Graph {
	return New(Config{
		CategoryFlow: map[string][]string{
			"Main Course": {"Sides", "Beverages"},
			"Sides":       {"Beverages", "Dessert"},
			"Dessert":     {"Beverages"},
		},
		ItemRules: map[string][]string{
			"Biryani": {"Raita", "Salan", "Coke", "Gulab Jamun"},
			"Burger":  {"Fries", "Wings", "Pepsi", "Large Coke"},
		},
		GlobalPopular: []string{"Coke", "Pepsi", "Fries"},
		CategorySuggestions: map[string][]string{
			"Beverages": {"Coke", "Pepsi"},
			"Dessert":   {"Gulab Jamun"},
		},
	})
}

func TestRelatedItems(t *testing.T) {
	g := testGraph()

	// Known item, no exclusions: rule order must be preserved
	related := g.RelatedItems("Biryani", nil)
	expected := []string{"Raita", "Salan", "Coke", "Gulab Jamun"}
	if len(related) != len(expected) {
		t.Fatalf("expected %d items, got %d", len(expected), len(related))
	}
	for i, name := range expected {
		if related[i] != name {
			t.Errorf("position %d: expected %s, got %s", i, name, related[i])
		}
	}

	// Exclusion set removes names already in cart
	exclude := map[string]struct{}{"Salan": {}, "Coke": {}}
	related = g.RelatedItems("Biryani", exclude)
	if len(related) != 2 {
		t.Fatalf("expected 2 items after exclusion, got %d", len(related))
	}
	if related[0] != "Raita" || related[1] != "Gulab Jamun" {
		t.Errorf("unexpected result after exclusion: %v", related)
	}
}

func TestRelatedItemsUnknown(t *testing.T) {
	g := testGraph()

	// Unknown item returns an empty list, never an error
	related := g.RelatedItems("UnknownItem123", nil)
	if len(related) != 0 {
		t.Errorf("expected empty list for unknown item, got %v", related)
	}
}

func TestMissingCategories(t *testing.T) {
	g := testGraph()

	// Main Course + Sides both flow into Beverages; result must be deduplicated
	needs := g.MissingCategories([]model.Category{model.CategoryMainCourse, model.CategorySides})

	seen := make(map[model.Category]int)
	for _, cat := range needs {
		seen[cat]++
	}
	if seen[model.CategoryBeverages] != 1 {
		t.Errorf("expected Beverages exactly once, got %d", seen[model.CategoryBeverages])
	}
	if seen[model.CategorySides] != 1 {
		t.Errorf("expected Sides exactly once, got %d", seen[model.CategorySides])
	}
	if seen[model.CategoryDessert] != 1 {
		t.Errorf("expected Dessert exactly once, got %d", seen[model.CategoryDessert])
	}

	// First-seen order: Main Course's targets come before Sides' new target
	if len(needs) != 3 || needs[0] != model.CategorySides || needs[1] != model.CategoryBeverages || needs[2] != model.CategoryDessert {
		t.Errorf("unexpected order: %v", needs)
	}

	// Unknown category contributes nothing
	needs = g.MissingCategories([]model.Category{model.CategoryGeneral})
	if len(needs) != 0 {
		t.Errorf("expected no needs for General, got %v", needs)
	}
}

func TestGlobalPopular(t *testing.T) {
	g := testGraph()

	pop := g.GlobalPopular(map[string]struct{}{"Coke": {}})
	if len(pop) != 2 {
		t.Fatalf("expected 2 items, got %d", len(pop))
	}
	if pop[0] != "Pepsi" || pop[1] != "Fries" {
		t.Errorf("unexpected popular list: %v", pop)
	}
}

func TestCategorySuggestions(t *testing.T) {
	g := testGraph()

	sugg := g.CategorySuggestions(
		[]model.Category{model.CategoryBeverages, model.CategoryDessert},
		map[string]struct{}{"Pepsi": {}},
	)
	if len(sugg) != 2 {
		t.Fatalf("expected 2 suggestions, got %d: %v", len(sugg), sugg)
	}
	if sugg[0] != "Coke" || sugg[1] != "Gulab Jamun" {
		t.Errorf("unexpected suggestions: %v", sugg)
	}
}
