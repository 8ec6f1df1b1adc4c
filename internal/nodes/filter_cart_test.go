package nodes

import (
	"testing"

	"csao_engine/internal/model"
	"csao_engine/internal/workflow"
)

func TestCartFilterMergeOrder(t *testing.T) {
	node, err := NewCartFilterNode(workflow.NodeConfig{
		Name: "cart_filter",
		Config: map[string]interface{}{
			"source_priority": []interface{}{"complementarity", "global_popular"},
		},
	})
	if err != nil {
		t.Fatalf("failed to create node: %v", err)
	}

	ctx := newTestContext([]string{"Biryani"}, nil, "")
	// 模拟并行召回以任意顺序写入
	ctx.SetRecallResult("global_popular", []*model.Candidate{
		{Name: "Coke", Source: "global_popular"},
		{Name: "Pepsi", Source: "global_popular"},
		{Name: "Fries", Source: "global_popular"},
	})
	ctx.SetRecallResult("complementarity", []*model.Candidate{
		{Name: "Raita", Source: "complementarity"},
		{Name: "Salan", Source: "complementarity"},
		{Name: "Coke", Source: "complementarity"},
		{Name: "Gulab Jamun", Source: "complementarity"},
	})

	if err := node.Execute(ctx); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	got := ctx.GetCandidates()
	// 优先级高的源先进结果；Coke 被去重，保留 complementarity 那份
	expected := []string{"Raita", "Salan", "Coke", "Gulab Jamun", "Pepsi", "Fries"}
	if len(got) != len(expected) {
		t.Fatalf("expected %d candidates, got %d: %v", len(expected), len(got), got)
	}
	for i, name := range expected {
		if got[i].Name != name {
			t.Errorf("position %d: expected %s, got %s", i, name, got[i].Name)
		}
	}
	if got[2].Source != "complementarity" {
		t.Errorf("deduplication must keep the higher-priority source, got %q", got[2].Source)
	}
}

func TestCartFilterRemovesCartItems(t *testing.T) {
	node, _ := NewCartFilterNode(workflow.NodeConfig{
		Name:   "cart_filter",
		Config: map[string]interface{}{"source_priority": []interface{}{"a"}},
	})

	ctx := newTestContext([]string{"Coke"}, nil, "")
	ctx.SetRecallResult("a", []*model.Candidate{
		{Name: "Coke", Source: "a"},
		{Name: "Fries", Source: "a"},
	})

	if err := node.Execute(ctx); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	got := ctx.GetCandidates()
	if len(got) != 1 || got[0].Name != "Fries" {
		t.Errorf("expected only Fries to survive, got %v", got)
	}
}

func TestCartFilterUnlistedSourcesDeterministic(t *testing.T) {
	// 没配 source_priority 时按源名字排序兜底，两次执行结果一致
	node, _ := NewCartFilterNode(workflow.NodeConfig{Name: "cart_filter"})

	run := func() []string {
		ctx := newTestContext(nil, nil, "")
		ctx.SetRecallResult("zeta", []*model.Candidate{{Name: "Pepsi", Source: "zeta"}})
		ctx.SetRecallResult("alpha", []*model.Candidate{{Name: "Coke", Source: "alpha"}})
		if err := node.Execute(ctx); err != nil {
			t.Fatalf("Execute failed: %v", err)
		}
		var names []string
		for _, c := range ctx.GetCandidates() {
			names = append(names, c.Name)
		}
		return names
	}

	first := run()
	second := run()
	if len(first) != 2 || first[0] != "Coke" || first[1] != "Pepsi" {
		t.Fatalf("unexpected merge order: %v", first)
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("merge order not deterministic: %v vs %v", first, second)
		}
	}
}
