package nodes

import (
	"fmt"
	"sort"

	"csao_engine/internal/model"
	"csao_engine/internal/workflow"
)

// CartFilterNode 把多路召回的结果重建成确定性的候选序列
// 三件事：按配置的召回源优先级合并、按名字去重、剔除已在购物车里的菜品。
// 并行召回的写入顺序不可预测，这里的重建保证相同输入得到相同的候选顺序，
// 后续排序的同分项因此是可复现的
type CartFilterNode struct {
	name           string
	sourcePriority []string
}

// NewCartFilterNode 工厂函数
// config.source_priority 指定召回源的合并顺序；没列出的源排在后面，按名字排序兜底
func NewCartFilterNode(cfg workflow.NodeConfig) (workflow.Node, error) {
	var priority []string
	if raw, ok := cfg.Config["source_priority"].([]interface{}); ok {
		for _, v := range raw {
			if s, ok := v.(string); ok {
				priority = append(priority, s)
			}
		}
	}

	return &CartFilterNode{
		name:           cfg.Name,
		sourcePriority: priority,
	}, nil
}

func (n *CartFilterNode) Name() string { return n.name }
func (n *CartFilterNode) Type() string { return "filter" }

func (n *CartFilterNode) Execute(ctx *workflow.Context) error {
	// 1. 确定召回源的遍历顺序：先按配置优先级，再补上未列出的源 (名字序)
	ordered := make([]string, 0, len(n.sourcePriority))
	listed := make(map[string]struct{}, len(n.sourcePriority))
	for _, source := range n.sourcePriority {
		ordered = append(ordered, source)
		listed[source] = struct{}{}
	}

	var rest []string
	for _, source := range ctx.RecallSources() {
		if _, ok := listed[source]; !ok {
			rest = append(rest, source)
		}
	}
	sort.Strings(rest)
	ordered = append(ordered, rest...)

	// 2. 按序合并并去重，同时剔除购物车里的菜品
	seen := make(map[string]struct{})
	var merged []*model.Candidate
	removedCart := 0
	removedDup := 0

	for _, source := range ordered {
		for _, item := range ctx.GetRecallResult(source) {
			if ctx.InCart(item.Name) {
				removedCart++
				continue
			}
			if _, dup := seen[item.Name]; dup {
				removedDup++
				continue
			}
			seen[item.Name] = struct{}{}
			merged = append(merged, item)
		}
	}

	ctx.UpdateCandidates(merged)
	ctx.AddLog(fmt.Sprintf("Cart filter (%s) merged %d sources: kept %d, removed %d in-cart, %d duplicates",
		n.name, len(ordered), len(merged), removedCart, removedDup))
	return nil
}
