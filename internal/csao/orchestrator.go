package csao

import (
	"context"
	"fmt"
	"math"
	"time"

	"csao_engine/internal/feature"
	"csao_engine/internal/logger"
	"csao_engine/internal/model"
	"csao_engine/internal/workflow"

	"github.com/google/uuid"
)

// DefaultTopN 调用方不指定时返回的推荐条数
const DefaultTopN = 8

// DefaultScene 默认的加购推荐流水线
const DefaultScene = "cart_addon"

// Recommendation 响应中的单条推荐
type Recommendation struct {
	Name     string         `json:"name"`
	Score    float64        `json:"score"`
	Category model.Category `json:"category"`
	Price    float64        `json:"price"`
	IsVeg    bool           `json:"is_veg"`
}

// CartContext 响应中回显的购物车信息
type CartContext struct {
	Size int `json:"size"`
}

// Response 一次加购推荐的响应信封
type Response struct {
	RequestID       string           `json:"request_id"`
	Recommendations []Recommendation `json:"recommendations"`
	LatencyMs       float64          `json:"latency_ms"`
	CartContext     CartContext      `json:"cart_context"`
	TraceLog        []string         `json:"trace_log,omitempty"` // debug 模式才回传
}

// Orchestrator 加购推荐的编排入口
// 自身不持有任何跨请求状态：每次调用完全自包含，没有候选集缓存。
// 部署上如果要加缓存，应该在外层按 (cartHash, userID, timeBucket) 包一层
type Orchestrator struct {
	engine       *workflow.Engine
	features     feature.Provider
	includeTrace bool
}

// New 创建编排器
func New(engine *workflow.Engine, features feature.Provider, includeTrace bool) *Orchestrator {
	return &Orchestrator{
		engine:       engine,
		features:     features,
		includeTrace: includeTrace,
	}
}

// HasScene 判断场景流水线是否存在
func (o *Orchestrator) HasScene(scene string) bool {
	return o.engine.HasScene(scene)
}

// Recommend 生成加购推荐
// cart 可以为空；userID 可以是游客哨兵值；topN 必须非负，0 表示只要信封不要条目。
// 只有调用方输入错误会返回 error，内部组件的失败都在节点边界降级消化
func (o *Orchestrator) Recommend(ctx context.Context, scene string, cart []string, userID string, topN int) (*Response, error) {
	if topN < 0 {
		return nil, fmt.Errorf("top_n must be non-negative, got %d", topN)
	}
	if scene == "" {
		scene = DefaultScene
	}
	if userID == "" {
		userID = model.GuestUserID
	}

	start := time.Now()

	// 用户上下文和用餐时段在进流水线之前取好，排序节点直接消费
	user, err := o.features.UserContext(ctx, userID)
	if err != nil || user == nil {
		logger.Warn("user context degraded for '%s': %v", userID, err)
		user = model.DefaultUserContext()
	}

	wfCtx := workflow.NewContext(ctx, userID, cart)
	wfCtx.RequestID = uuid.NewString()
	wfCtx.User = user
	wfCtx.MealTime = o.features.TemporalContext(time.Now())
	wfCtx.Config = map[string]interface{}{
		"scene": scene,
	}

	if err := o.engine.Run(wfCtx, scene); err != nil {
		return nil, err
	}

	candidates := wfCtx.GetCandidates()
	if topN > len(candidates) {
		topN = len(candidates)
	}

	recs := make([]Recommendation, 0, topN)
	for _, c := range candidates[:topN] {
		features := c.Features
		if features == nil {
			features = model.DefaultItem(c.Name)
		}
		recs = append(recs, Recommendation{
			Name:     c.Name,
			Score:    c.Score,
			Category: features.Category,
			Price:    features.Price,
			IsVeg:    features.IsVeg,
		})
	}

	resp := &Response{
		RequestID:       wfCtx.RequestID,
		Recommendations: recs,
		LatencyMs:       roundMs(time.Since(start)),
		CartContext:     CartContext{Size: len(cart)},
	}
	if o.includeTrace {
		resp.TraceLog = wfCtx.GetTraceLog()
	}
	return resp, nil
}

// roundMs 把耗时换算成毫秒并保留两位小数
func roundMs(d time.Duration) float64 {
	ms := float64(d.Microseconds()) / 1000.0
	return math.Round(ms*100) / 100
}
