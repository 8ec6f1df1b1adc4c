package nodes

import (
	"fmt"

	"csao_engine/internal/impressions"
	"csao_engine/internal/model"
	"csao_engine/internal/workflow"
)

// ImpressionsFilterNode 压制最近已经展示过的候选
// 只在 "fresh" 类流水线里启用；曝光存储读失败时降级为不过滤
type ImpressionsFilterNode struct {
	name         string
	store        impressions.Store
	lookbackDays int
}

// NewImpressionsFilterNode 工厂函数，store 由闭包注入
func NewImpressionsFilterNode(cfg workflow.NodeConfig, store impressions.Store) (workflow.Node, error) {
	days, ok := cfg.Config["lookback_days"].(float64)
	if !ok {
		days = 1 // default
	}

	return &ImpressionsFilterNode{
		name:         cfg.Name,
		store:        store,
		lookbackDays: int(days),
	}, nil
}

func (n *ImpressionsFilterNode) Name() string { return n.name }
func (n *ImpressionsFilterNode) Type() string { return "filter" }

func (n *ImpressionsFilterNode) Execute(ctx *workflow.Context) error {
	candidates := ctx.GetCandidates()
	if len(candidates) == 0 {
		return nil
	}

	scene := "cart_addon" // default
	if s, ok := ctx.Config["scene"].(string); ok {
		scene = s
	}

	shown, err := n.store.Recent(ctx.UserID, scene, n.lookbackDays)
	if err != nil {
		// 曝光记录拿不到不阻断流程，降级为不压制
		ctx.AddLog(fmt.Sprintf("Impressions filter (%s) degraded, store error: %v", n.name, err))
		return nil
	}

	shownSet := make(map[string]struct{}, len(shown))
	for _, item := range shown {
		shownSet[item] = struct{}{}
	}

	var kept []*model.Candidate
	filteredCount := 0
	for _, item := range candidates {
		if _, exists := shownSet[item.Name]; !exists {
			kept = append(kept, item)
		} else {
			filteredCount++
		}
	}

	// 全部被压掉就保留原候选，兜底召回的保证不能被新鲜度规则打穿
	if len(kept) == 0 && filteredCount > 0 {
		ctx.AddLog(fmt.Sprintf("Impressions filter (%s) would remove all %d candidates, skipping suppression", n.name, filteredCount))
		return nil
	}

	ctx.UpdateCandidates(kept)
	ctx.AddLog(fmt.Sprintf("Impressions filter (%s) removed %d items, kept %d", n.name, filteredCount, len(kept)))
	return nil
}
