package nodes

import (
	"fmt"
	"math"
	"sort"
	"sync"

	"csao_engine/internal/feature"
	"csao_engine/internal/model"
	"csao_engine/internal/workflow"
)

// WeightedRankNode 加权打分排序
// 每个候选的特征读取相互独立，并发发出；排序前等齐所有读取 (或它们的超时)，
// 这是流程里唯一的同步点。单个候选读特征失败只会让它用默认特征打分，
// 不会丢弃候选，更不会让整个请求失败
type WeightedRankNode struct {
	name     string
	limit    int
	features feature.Provider
}

// NewWeightedRankNode 工厂函数，特征提供者由外部注入
func NewWeightedRankNode(cfg workflow.NodeConfig, fp feature.Provider) (workflow.Node, error) {
	if fp == nil {
		return nil, fmt.Errorf("weighted rank node '%s' requires a feature provider", cfg.Name)
	}

	limit, _ := cfg.Config["limit"].(float64)

	return &WeightedRankNode{
		name:     cfg.Name,
		limit:    int(limit),
		features: fp,
	}, nil
}

func (n *WeightedRankNode) Name() string { return n.name }
func (n *WeightedRankNode) Type() string { return "rank" }

func (n *WeightedRankNode) Execute(ctx *workflow.Context) error {
	candidates := ctx.GetCandidates()
	if len(candidates) == 0 {
		ctx.AddLog(fmt.Sprintf("Weighted rank (%s): no candidates to score", n.name))
		return nil
	}

	// 1. 并发拉取所有候选的特征，按下标写入避免加锁
	feats := make([]*model.Item, len(candidates))
	var wg sync.WaitGroup
	for i, c := range candidates {
		wg.Add(1)
		go func(idx int, name string) {
			defer wg.Done()
			item, err := n.features.ItemFeatures(ctx.Ctx, name)
			if err != nil || item == nil {
				item = model.DefaultItem(name)
			}
			feats[idx] = item
		}(i, c.Name)
	}
	wg.Wait()

	user := ctx.User
	if user == nil {
		user = model.DefaultUserContext()
	}

	// 2. 逐个打分
	for i, c := range candidates {
		c.Features = feats[i]
		c.Score = scoreCandidate(feats[i], user, ctx.MealTime)
	}

	// 3. 按分数降序排序
	// 稳定排序：同分保持召回产出的顺序，相同输入得到相同输出
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})

	// 4. 截断 (可选，流水线级别的粗截断；Top-N 截断在编排层做)
	if n.limit > 0 && len(candidates) > n.limit {
		candidates = candidates[:n.limit]
	}

	ctx.UpdateCandidates(candidates)
	ctx.AddLog(fmt.Sprintf("Weighted rank (%s) scored %d candidates, meal time: %s", n.name, len(candidates), ctx.MealTime))
	return nil
}

// scoreCandidate 计算单个候选的分数
// 基础分是流行度，叠加时段/偏好加成和预算惩罚，最后保留两位小数，
// 避免浮点尾数在不同平台上干扰同分判定
func scoreCandidate(item *model.Item, user *model.UserContext, mealTime model.MealTime) float64 {
	// 基础分：流行度
	score := item.Popularity * 10.0

	// 加成 1：时段相关性
	if (mealTime == model.MealLunch || mealTime == model.MealDinner) && item.Category == model.CategoryBeverages {
		score += 2.0
	}
	if mealTime == model.MealDinner && item.Category == model.CategoryDessert {
		score += 3.0
	}

	// 加成 2：用户甜品偏好
	if item.Category == model.CategoryDessert {
		score += user.DessertAffinity * 4.0
	}

	// 惩罚：非会员用户对高价加购敏感
	if !user.IsPremium && item.Price > 100 {
		score -= 1.0
	}

	return math.Round(score*100) / 100
}
