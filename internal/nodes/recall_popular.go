package nodes

import (
	"fmt"

	"csao_engine/internal/graph"
	"csao_engine/internal/model"
	"csao_engine/internal/workflow"
)

// PopularRecallNode 全局热门兜底召回
// 保证购物车里全是规则表覆盖不到的菜品时，候选集也不会为空 (冷启动保底)
type PopularRecallNode struct {
	name  string
	graph *graph.Graph
}

// NewPopularRecallNode 工厂函数，graph 由外部注入
func NewPopularRecallNode(cfg workflow.NodeConfig, g *graph.Graph) (workflow.Node, error) {
	if g == nil {
		return nil, fmt.Errorf("popular recall node '%s' requires a graph", cfg.Name)
	}
	return &PopularRecallNode{
		name:  cfg.Name,
		graph: g,
	}, nil
}

func (n *PopularRecallNode) Name() string { return n.name }
func (n *PopularRecallNode) Type() string { return "recall" }

func (n *PopularRecallNode) Execute(ctx *workflow.Context) error {
	var items []*model.Candidate
	for _, name := range n.graph.GlobalPopular(ctx.CartSet) {
		items = append(items, &model.Candidate{
			Name:   name,
			Source: n.name,
		})
	}

	ctx.SetRecallResult(n.name, items)
	ctx.AddLog(fmt.Sprintf("Popular recall (%s) returned %d items", n.name, len(items)))
	return nil
}
