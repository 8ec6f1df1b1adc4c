package csao

import (
	"context"
	"testing"
	"time"

	"csao_engine/internal/feature"
	"csao_engine/internal/graph"
	"csao_engine/internal/model"
	"csao_engine/internal/nodes"
	"csao_engine/internal/workflow"
)

// fixedMealProvider 固定用餐时段的特征提供者，保证测试结果可复现
type fixedMealProvider struct {
	feature.Provider
	meal model.MealTime
}

func (p fixedMealProvider) TemporalContext(t time.Time) model.MealTime { return p.meal }

func testOrchestrator(t *testing.T, meal model.MealTime) *Orchestrator {
	t.Helper()

	g := graph.New(graph.Config{
		CategoryFlow: map[string][]string{
			"Main Course": {"Sides", "Beverages"},
			"Sides":       {"Beverages", "Dessert"},
		},
		ItemRules: map[string][]string{
			"Biryani": {"Raita", "Salan", "Coke", "Gulab Jamun"},
			"Burger":  {"Fries", "Wings", "Pepsi", "Large Coke"},
		},
		GlobalPopular: []string{"Coke", "Pepsi", "Fries"},
	})

	static := feature.NewStaticProviderFromData(map[string]*model.Item{
		"Coke":        {Name: "Coke", Category: model.CategoryBeverages, Price: 45, IsVeg: true, Popularity: 0.95},
		"Pepsi":       {Name: "Pepsi", Category: model.CategoryBeverages, Price: 40, IsVeg: true, Popularity: 0.92},
		"Fries":       {Name: "Fries", Category: model.CategorySides, Price: 95, IsVeg: true, Popularity: 0.88},
		"Raita":       {Name: "Raita", Category: model.CategorySides, Price: 30, IsVeg: true, Popularity: 0.85},
		"Salan":       {Name: "Salan", Category: model.CategorySides, Price: 0, IsVeg: true, Popularity: 0.82},
		"Gulab Jamun": {Name: "Gulab Jamun", Category: model.CategoryDessert, Price: 60, IsVeg: true, Popularity: 0.89},
	}, map[string]*model.UserContext{
		"u_premium": {IsPremium: true, DessertAffinity: 0.75},
	})
	fp := fixedMealProvider{Provider: static, meal: meal}

	registry := workflow.NewRegistry()
	registry.Register("recall_complementarity", func(cfg workflow.NodeConfig) (workflow.Node, error) {
		return nodes.NewComplementarityRecallNode(cfg, g)
	})
	registry.Register("recall_popular", func(cfg workflow.NodeConfig) (workflow.Node, error) {
		return nodes.NewPopularRecallNode(cfg, g)
	})
	registry.Register("filter_cart", nodes.NewCartFilterNode)
	registry.Register("rank_weighted", func(cfg workflow.NodeConfig) (workflow.Node, error) {
		return nodes.NewWeightedRankNode(cfg, fp)
	})

	engine, err := workflow.NewEngineFromConfig(workflow.GlobalConfig{
		Pipelines: map[string]workflow.PipelineConfig{
			"cart_addon": {
				TimeoutMs: 300,
				Nodes: []workflow.NodeConfig{
					{
						Name: "recall_fanout",
						Type: "parallel",
						Nodes: []workflow.NodeConfig{
							{Name: "complementarity", Type: "recall_complementarity"},
							{Name: "global_popular", Type: "recall_popular"},
						},
					},
					{
						Name: "cart_filter",
						Type: "filter_cart",
						Config: map[string]interface{}{
							"source_priority": []interface{}{"complementarity", "global_popular"},
						},
					},
					{Name: "weighted_rank", Type: "rank_weighted"},
				},
			},
		},
	}, registry)
	if err != nil {
		t.Fatalf("failed to build engine: %v", err)
	}

	return New(engine, fp, false)
}

func TestRecommendBiryaniCart(t *testing.T) {
	o := testOrchestrator(t, model.MealDinner)

	resp, err := o.Recommend(context.Background(), DefaultScene, []string{"Biryani"}, "guest", DefaultTopN)
	if err != nil {
		t.Fatalf("Recommend failed: %v", err)
	}

	names := make(map[string]bool)
	for _, rec := range resp.Recommendations {
		names[rec.Name] = true
	}

	// 规则候选 + 热门兜底都要在
	for _, want := range []string{"Raita", "Salan", "Coke", "Gulab Jamun", "Pepsi", "Fries"} {
		if !names[want] {
			t.Errorf("expected %s in recommendations", want)
		}
	}
	if names["Biryani"] {
		t.Error("cart item must never be recommended")
	}

	// 第一名是全场最高分 (晚餐甜品加成下是 Gulab Jamun)
	if resp.Recommendations[0].Name != "Gulab Jamun" {
		t.Errorf("expected Gulab Jamun first, got %s", resp.Recommendations[0].Name)
	}
	for i := 1; i < len(resp.Recommendations); i++ {
		if resp.Recommendations[i-1].Score < resp.Recommendations[i].Score {
			t.Errorf("output not sorted descending at %d", i)
		}
	}

	if resp.CartContext.Size != 1 {
		t.Errorf("expected cart size 1, got %d", resp.CartContext.Size)
	}
	if resp.RequestID == "" {
		t.Error("expected a request id")
	}
}

func TestRecommendExcludesAllCartItems(t *testing.T) {
	o := testOrchestrator(t, model.MealDinner)

	resp, err := o.Recommend(context.Background(), DefaultScene, []string{"Biryani", "Salan"}, "guest", DefaultTopN)
	if err != nil {
		t.Fatalf("Recommend failed: %v", err)
	}

	foundRaita := false
	for _, rec := range resp.Recommendations {
		if rec.Name == "Salan" || rec.Name == "Biryani" {
			t.Errorf("cart item %s appeared in output", rec.Name)
		}
		if rec.Name == "Raita" {
			foundRaita = true
		}
	}
	if !foundRaita {
		t.Error("Raita should remain eligible")
	}
}

func TestRecommendDeterministic(t *testing.T) {
	o := testOrchestrator(t, model.MealLunch)

	first, err := o.Recommend(context.Background(), DefaultScene, []string{"Biryani"}, "guest", DefaultTopN)
	if err != nil {
		t.Fatalf("Recommend failed: %v", err)
	}
	second, err := o.Recommend(context.Background(), DefaultScene, []string{"Biryani"}, "guest", DefaultTopN)
	if err != nil {
		t.Fatalf("Recommend failed: %v", err)
	}

	if len(first.Recommendations) != len(second.Recommendations) {
		t.Fatalf("result sizes differ: %d vs %d", len(first.Recommendations), len(second.Recommendations))
	}
	for i := range first.Recommendations {
		if first.Recommendations[i].Name != second.Recommendations[i].Name {
			t.Errorf("position %d differs: %s vs %s", i, first.Recommendations[i].Name, second.Recommendations[i].Name)
		}
		if first.Recommendations[i].Score != second.Recommendations[i].Score {
			t.Errorf("score at %d differs: %v vs %v", i, first.Recommendations[i].Score, second.Recommendations[i].Score)
		}
	}
}

func TestRecommendTopN(t *testing.T) {
	o := testOrchestrator(t, model.MealSnack)

	// 截断到 topN
	resp, err := o.Recommend(context.Background(), DefaultScene, []string{"Biryani"}, "guest", 2)
	if err != nil {
		t.Fatalf("Recommend failed: %v", err)
	}
	if len(resp.Recommendations) != 2 {
		t.Errorf("expected 2 recommendations, got %d", len(resp.Recommendations))
	}

	// topN == 0: 空列表不报错，信封字段照常填
	resp, err = o.Recommend(context.Background(), DefaultScene, []string{"Biryani"}, "guest", 0)
	if err != nil {
		t.Fatalf("top_n 0 must not fail: %v", err)
	}
	if len(resp.Recommendations) != 0 {
		t.Errorf("expected empty recommendations, got %d", len(resp.Recommendations))
	}
	if resp.LatencyMs < 0 {
		t.Error("latency must be populated")
	}

	// topN < 0: 调用方错误
	if _, err := o.Recommend(context.Background(), DefaultScene, []string{"Biryani"}, "guest", -1); err == nil {
		t.Error("negative top_n must be rejected")
	}

	// topN 比候选多: 全量返回
	resp, err = o.Recommend(context.Background(), DefaultScene, []string{"Biryani"}, "guest", 100)
	if err != nil {
		t.Fatalf("Recommend failed: %v", err)
	}
	if len(resp.Recommendations) == 0 || len(resp.Recommendations) > 100 {
		t.Errorf("unexpected result size %d", len(resp.Recommendations))
	}
}

func TestRecommendEmptyCart(t *testing.T) {
	o := testOrchestrator(t, model.MealSnack)

	resp, err := o.Recommend(context.Background(), DefaultScene, nil, "", DefaultTopN)
	if err != nil {
		t.Fatalf("Recommend failed: %v", err)
	}

	// 空购物车只有热门兜底
	if len(resp.Recommendations) != 3 {
		t.Fatalf("expected 3 fallback recommendations, got %d", len(resp.Recommendations))
	}
	if resp.CartContext.Size != 0 {
		t.Errorf("expected cart size 0, got %d", resp.CartContext.Size)
	}
}

func TestRecommendUnknownCartItemFallback(t *testing.T) {
	o := testOrchestrator(t, model.MealSnack)

	// 规则表覆盖不到的购物车也必须有候选
	resp, err := o.Recommend(context.Background(), DefaultScene, []string{"UnknownItem123"}, "guest", DefaultTopN)
	if err != nil {
		t.Fatalf("Recommend failed: %v", err)
	}
	if len(resp.Recommendations) != 3 {
		t.Errorf("expected the 3 global-popular fallback items, got %d", len(resp.Recommendations))
	}
}

func TestRecommendUnknownScene(t *testing.T) {
	o := testOrchestrator(t, model.MealSnack)

	if _, err := o.Recommend(context.Background(), "no_such_scene", nil, "guest", DefaultTopN); err == nil {
		t.Error("unknown scene must fail")
	}
	if o.HasScene("no_such_scene") {
		t.Error("HasScene must be false for unknown scenes")
	}
	if !o.HasScene(DefaultScene) {
		t.Error("HasScene must be true for the default scene")
	}
}

func TestRecommendLatencyBudget(t *testing.T) {
	o := testOrchestrator(t, model.MealDinner)

	// 内存特征源下整条流水线远低于 300ms (回归护栏，不是硬实时断言)
	resp, err := o.Recommend(context.Background(), DefaultScene, []string{"Biryani", "Burger"}, "guest", DefaultTopN)
	if err != nil {
		t.Fatalf("Recommend failed: %v", err)
	}
	if resp.LatencyMs >= 300 {
		t.Errorf("pipeline took %.2fms, expected well under 300ms", resp.LatencyMs)
	}
}

func TestRecommendPremiumUserScores(t *testing.T) {
	o := testOrchestrator(t, model.MealDinner)

	// 会员 + 甜品偏好 0.75：Gulab Jamun = 8.9 + 3.0 + 3.0 = 14.9
	resp, err := o.Recommend(context.Background(), DefaultScene, []string{"Biryani"}, "u_premium", DefaultTopN)
	if err != nil {
		t.Fatalf("Recommend failed: %v", err)
	}
	for _, rec := range resp.Recommendations {
		if rec.Name == "Gulab Jamun" {
			if rec.Score != 14.9 {
				t.Errorf("expected 14.9 for Gulab Jamun, got %v", rec.Score)
			}
			return
		}
	}
	t.Error("Gulab Jamun not found in recommendations")
}
