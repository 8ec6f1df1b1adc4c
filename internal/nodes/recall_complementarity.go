package nodes

import (
	"fmt"

	"csao_engine/internal/graph"
	"csao_engine/internal/model"
	"csao_engine/internal/workflow"
)

// ComplementarityRecallNode 基于单品互补规则的召回
// 对购物车里的每个菜品查一次规则表，结果按购物车顺序拼接、去重，
// 已在购物车里的菜品不会进入候选集
type ComplementarityRecallNode struct {
	name  string
	graph *graph.Graph
}

// NewComplementarityRecallNode 工厂函数，graph 由外部注入
func NewComplementarityRecallNode(cfg workflow.NodeConfig, g *graph.Graph) (workflow.Node, error) {
	if g == nil {
		return nil, fmt.Errorf("complementarity recall node '%s' requires a graph", cfg.Name)
	}
	return &ComplementarityRecallNode{
		name:  cfg.Name,
		graph: g,
	}, nil
}

func (n *ComplementarityRecallNode) Name() string { return n.name }
func (n *ComplementarityRecallNode) Type() string { return "recall" }

func (n *ComplementarityRecallNode) Execute(ctx *workflow.Context) error {
	if len(ctx.Cart) == 0 {
		ctx.AddLog(fmt.Sprintf("Complementarity recall (%s): empty cart, nothing to do", n.name))
		return nil
	}

	seen := make(map[string]struct{})
	var items []*model.Candidate

	// 纯内存 map 查表，单次请求的查表次数受购物车大小约束
	for _, cartItem := range ctx.Cart {
		for _, name := range n.graph.RelatedItems(cartItem, ctx.CartSet) {
			if _, dup := seen[name]; dup {
				continue
			}
			seen[name] = struct{}{}
			items = append(items, &model.Candidate{
				Name:   name,
				Source: n.name,
			})
		}
	}

	ctx.SetRecallResult(n.name, items)
	ctx.AddLog(fmt.Sprintf("Complementarity recall (%s) returned %d items", n.name, len(items)))
	return nil
}
