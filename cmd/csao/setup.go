package main

import (
	"csao_engine/internal/feature"
	"csao_engine/internal/graph"
	"csao_engine/internal/impressions"
	"csao_engine/internal/nodes"
	"csao_engine/internal/workflow"
)

// RegisterNodes 注册所有可用的 Workflow 节点
// graph / 特征提供者 / 曝光存储通过闭包注入到各个工厂函数
func RegisterNodes(g *graph.Graph, fp feature.Provider, store impressions.Store) *workflow.Registry {
	registry := workflow.NewRegistry()

	// 召回
	registry.Register("recall_complementarity", func(cfg workflow.NodeConfig) (workflow.Node, error) {
		return nodes.NewComplementarityRecallNode(cfg, g)
	})
	registry.Register("recall_popular", func(cfg workflow.NodeConfig) (workflow.Node, error) {
		return nodes.NewPopularRecallNode(cfg, g)
	})
	registry.Register("recall_category", func(cfg workflow.NodeConfig) (workflow.Node, error) {
		return nodes.NewCategoryRecallNode(cfg, g, fp)
	})

	// 过滤
	registry.Register("filter_cart", nodes.NewCartFilterNode)
	registry.Register("filter_impressions", func(cfg workflow.NodeConfig) (workflow.Node, error) {
		return nodes.NewImpressionsFilterNode(cfg, store)
	})

	// 排序
	registry.Register("rank_weighted", func(cfg workflow.NodeConfig) (workflow.Node, error) {
		return nodes.NewWeightedRankNode(cfg, fp)
	})

	return registry
}
