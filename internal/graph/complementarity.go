package graph

import (
	"fmt"
	"os"

	"csao_engine/internal/model"

	"gopkg.in/yaml.v3"
)

// Config 互补关系图的静态配置 (yaml 格式)
// 新增规则只需要改配置文件，不需要改代码
type Config struct {
	// 类目流转：主类目 -> 典型的后续加购类目 (有序)
	CategoryFlow map[string][]string `yaml:"category_flow"`
	// 单品规则：具体菜品 -> 高置信度的搭配菜品 (有序，运营人工维护的优先级)
	ItemRules map[string][]string `yaml:"item_rules"`
	// 全局热门兜底列表 (冷启动保底)
	GlobalPopular []string `yaml:"global_popular"`
	// 类目 -> 代表性单品，用于补齐餐单缺口的二级召回
	CategorySuggestions map[string][]string `yaml:"category_suggestions"`
}

// Graph 菜品互补关系图
// 进程内只读常量，启动时加载一次，之后可被任意并发读取
type Graph struct {
	categoryFlow map[model.Category][]model.Category
	itemRules    map[string][]string
	globalPop    []string
	categorySugg map[model.Category][]string
}

// Load 从 yaml 配置文件加载互补关系图
func Load(path string) (*Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read complementarity config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse complementarity config: %w", err)
	}

	return New(cfg), nil
}

// New 用配置构建互补关系图
func New(cfg Config) *Graph {
	g := &Graph{
		categoryFlow: make(map[model.Category][]model.Category),
		itemRules:    make(map[string][]string),
		categorySugg: make(map[model.Category][]string),
	}

	for cat, targets := range cfg.CategoryFlow {
		flow := make([]model.Category, 0, len(targets))
		for _, t := range targets {
			flow = append(flow, model.Category(t))
		}
		g.categoryFlow[model.Category(cat)] = flow
	}

	for item, related := range cfg.ItemRules {
		rule := make([]string, len(related))
		copy(rule, related)
		g.itemRules[item] = rule
	}

	g.globalPop = make([]string, len(cfg.GlobalPopular))
	copy(g.globalPop, cfg.GlobalPopular)

	for cat, items := range cfg.CategorySuggestions {
		sugg := make([]string, len(items))
		copy(sugg, items)
		g.categorySugg[model.Category(cat)] = sugg
	}

	return g
}

// RelatedItems 返回指定菜品的搭配菜品列表
// 未知菜品返回空列表 (不报错)；exclude 集合内的名字会被过滤掉；
// 返回顺序保持规则定义的顺序 (运营优先级，排序在后续阶段才发生)
func (g *Graph) RelatedItems(itemName string, exclude map[string]struct{}) []string {
	rule, ok := g.itemRules[itemName]
	if !ok {
		return nil
	}

	result := make([]string, 0, len(rule))
	for _, name := range rule {
		if _, skip := exclude[name]; skip {
			continue
		}
		result = append(result, name)
	}
	return result
}

// MissingCategories 根据购物车内已有的类目，推导餐单里还缺什么类目
// 结果去重，保持首次出现的顺序以保证确定性
func (g *Graph) MissingCategories(cartCategories []model.Category) []model.Category {
	seen := make(map[model.Category]struct{})
	var needs []model.Category

	for _, cat := range cartCategories {
		for _, target := range g.categoryFlow[cat] {
			if _, dup := seen[target]; dup {
				continue
			}
			seen[target] = struct{}{}
			needs = append(needs, target)
		}
	}
	return needs
}

// GlobalPopular 返回全局热门兜底列表，过滤掉 exclude 集合内的名字
func (g *Graph) GlobalPopular(exclude map[string]struct{}) []string {
	result := make([]string, 0, len(g.globalPop))
	for _, name := range g.globalPop {
		if _, skip := exclude[name]; skip {
			continue
		}
		result = append(result, name)
	}
	return result
}

// CategorySuggestions 返回一组类目的代表性单品，按类目顺序拼接并去重
func (g *Graph) CategorySuggestions(categories []model.Category, exclude map[string]struct{}) []string {
	seen := make(map[string]struct{})
	var result []string

	for _, cat := range categories {
		for _, name := range g.categorySugg[cat] {
			if _, skip := exclude[name]; skip {
				continue
			}
			if _, dup := seen[name]; dup {
				continue
			}
			seen[name] = struct{}{}
			result = append(result, name)
		}
	}
	return result
}
