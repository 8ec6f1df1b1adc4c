package nodes

import (
	"fmt"

	"csao_engine/internal/feature"
	"csao_engine/internal/graph"
	"csao_engine/internal/model"
	"csao_engine/internal/workflow"
)

// CategoryRecallNode 基于类目流转的二级召回 (多样性信号)
// 先查购物车菜品的类目，推导餐单里还缺什么类目，
// 再从配置的类目代表单品里补候选。特征读取失败只会让这一路召回变弱
type CategoryRecallNode struct {
	name     string
	graph    *graph.Graph
	features feature.Provider
}

// NewCategoryRecallNode 工厂函数，graph 和特征提供者由外部注入
func NewCategoryRecallNode(cfg workflow.NodeConfig, g *graph.Graph, fp feature.Provider) (workflow.Node, error) {
	if g == nil || fp == nil {
		return nil, fmt.Errorf("category recall node '%s' requires a graph and a feature provider", cfg.Name)
	}
	return &CategoryRecallNode{
		name:     cfg.Name,
		graph:    g,
		features: fp,
	}, nil
}

func (n *CategoryRecallNode) Name() string { return n.name }
func (n *CategoryRecallNode) Type() string { return "recall" }

func (n *CategoryRecallNode) Execute(ctx *workflow.Context) error {
	if len(ctx.Cart) == 0 {
		ctx.AddLog(fmt.Sprintf("Category recall (%s): empty cart, nothing to do", n.name))
		return nil
	}

	// 查表次数与购物车大小一致，不会无界放大
	cartCategories := make([]model.Category, 0, len(ctx.Cart))
	for _, cartItem := range ctx.Cart {
		item, err := n.features.ItemFeatures(ctx.Ctx, cartItem)
		if err != nil || item == nil {
			item = model.DefaultItem(cartItem)
		}
		cartCategories = append(cartCategories, item.Category)
	}

	missing := n.graph.MissingCategories(cartCategories)
	if len(missing) == 0 {
		ctx.AddLog(fmt.Sprintf("Category recall (%s): no missing categories", n.name))
		return nil
	}

	var items []*model.Candidate
	for _, name := range n.graph.CategorySuggestions(missing, ctx.CartSet) {
		items = append(items, &model.Candidate{
			Name:   name,
			Source: n.name,
		})
	}

	ctx.SetRecallResult(n.name, items)
	ctx.AddLog(fmt.Sprintf("Category recall (%s) returned %d items for %d missing categories", n.name, len(items), len(missing)))
	return nil
}
