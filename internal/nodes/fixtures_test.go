package nodes

import (
	"context"

	"csao_engine/internal/feature"
	"csao_engine/internal/graph"
	"csao_engine/internal/model"
	"csao_engine/internal/workflow"
)

// 共享测试数据：和 configs/ 下的演示配置保持同一套菜品
func testGraph() *graph.Graph {
	return graph.New(graph.Config{
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
			"Dessert":   {"Gulab Jamun", "Choco Lava Cake"},
		},
	})
}

func testItems() map[string]*model.Item {
	return map[string]*model.Item{
		"Coke":            {Name: "Coke", Category: model.CategoryBeverages, Price: 45, IsVeg: true, Popularity: 0.95},
		"Pepsi":           {Name: "Pepsi", Category: model.CategoryBeverages, Price: 40, IsVeg: true, Popularity: 0.92},
		"Fries":           {Name: "Fries", Category: model.CategorySides, Price: 95, IsVeg: true, Popularity: 0.88},
		"Raita":           {Name: "Raita", Category: model.CategorySides, Price: 30, IsVeg: true, Popularity: 0.85},
		"Salan":           {Name: "Salan", Category: model.CategorySides, Price: 0, IsVeg: true, Popularity: 0.82},
		"Gulab Jamun":     {Name: "Gulab Jamun", Category: model.CategoryDessert, Price: 60, IsVeg: true, Popularity: 0.89},
		"Garlic Bread":    {Name: "Garlic Bread", Category: model.CategorySides, Price: 120, IsVeg: true, Popularity: 0.91},
		"Choco Lava Cake": {Name: "Choco Lava Cake", Category: model.CategoryDessert, Price: 110, IsVeg: true, Popularity: 0.93},
		"Biryani":         {Name: "Biryani", Category: model.CategoryMainCourse, Price: 250, IsVeg: false, Popularity: 0.9},
	}
}

func testProvider() feature.Provider {
	return feature.NewStaticProviderFromData(testItems(), map[string]*model.UserContext{
		"u_premium": {IsPremium: true, DessertAffinity: 0.75},
	})
}

func newTestContext(cart []string, user *model.UserContext, meal model.MealTime) *workflow.Context {
	ctx := workflow.NewContext(context.Background(), "guest", cart)
	ctx.User = user
	ctx.MealTime = meal
	ctx.Config = map[string]interface{}{"scene": "cart_addon"}
	return ctx
}
