package workflow

import (
	"context"
	"sync"

	"csao_engine/internal/model"
)

// Context 承载一次加购推荐请求的所有状态信息
// 它是并发安全的，支持多路召回并行写入
type Context struct {
	Ctx       context.Context
	RequestID string
	UserID    string
	Cart      []string            // 请求时刻的购物车快照 (调用方所有，这里只读)
	CartSet   map[string]struct{} // 购物车名字集合，召回/过滤用
	User      *model.UserContext
	MealTime  model.MealTime
	Config    map[string]interface{}

	// 数据流转区 (需要锁保护)
	mu            sync.RWMutex
	Candidates    []*model.Candidate            // 当前的主候选集
	RecallResults map[string][]*model.Candidate // 各路召回的原始结果 key: source_name
	TraceLog      []string                      // 执行日志
}

// NewContext 创建一个新的工作流上下文
func NewContext(ctx context.Context, userID string, cart []string) *Context {
	cartSet := make(map[string]struct{}, len(cart))
	for _, name := range cart {
		cartSet[name] = struct{}{}
	}

	return &Context{
		Ctx:           ctx,
		UserID:        userID,
		Cart:          cart,
		CartSet:       cartSet,
		RecallResults: make(map[string][]*model.Candidate),
		Candidates:    make([]*model.Candidate, 0),
		TraceLog:      make([]string, 0),
	}
}

// InCart 判断某个菜品是否已经在购物车里
func (c *Context) InCart(name string) bool {
	_, ok := c.CartSet[name]
	return ok
}

// AddCandidates 向候选集中添加条目 (线程安全)
func (c *Context) AddCandidates(items []*model.Candidate) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Candidates = append(c.Candidates, items...)
}

// SetRecallResult 记录特定召回源的结果 (线程安全)
func (c *Context) SetRecallResult(source string, items []*model.Candidate) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.RecallResults[source] = items
	// 召回结果同时合并到 Candidates，后续过滤节点会做确定性的重建
	c.Candidates = append(c.Candidates, items...)
}

// GetRecallResult 获取指定召回源的结果 (线程安全)
func (c *Context) GetRecallResult(source string) []*model.Candidate {
	c.mu.RLock()
	defer c.mu.RUnlock()
	items := c.RecallResults[source]
	result := make([]*model.Candidate, len(items))
	copy(result, items)
	return result
}

// RecallSources 返回当前已有结果的召回源名字 (线程安全，顺序不保证)
func (c *Context) RecallSources() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	sources := make([]string, 0, len(c.RecallResults))
	for source := range c.RecallResults {
		sources = append(sources, source)
	}
	return sources
}

// GetCandidates 获取当前候选集的副本 (线程安全)
func (c *Context) GetCandidates() []*model.Candidate {
	c.mu.RLock()
	defer c.mu.RUnlock()
	result := make([]*model.Candidate, len(c.Candidates))
	copy(result, c.Candidates)
	return result
}

// UpdateCandidates 更新整个候选集 (线程安全)
// 通常用于过滤或排序阶段
func (c *Context) UpdateCandidates(items []*model.Candidate) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Candidates = items
}

// AddLog 添加追踪日志
func (c *Context) AddLog(msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.TraceLog = append(c.TraceLog, msg)
}

// GetTraceLog 获取执行日志的副本 (线程安全)
func (c *Context) GetTraceLog() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	result := make([]string, len(c.TraceLog))
	copy(result, c.TraceLog)
	return result
}

// Node 定义工作流中的执行节点
type Node interface {
	Name() string
	Type() string // e.g., "recall", "filter", "rank", "parallel"
	Execute(ctx *Context) error
}
