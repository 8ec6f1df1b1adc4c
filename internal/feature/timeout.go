package feature

import (
	"context"
	"time"

	"csao_engine/internal/logger"
	"csao_engine/internal/model"
)

// TimeoutProvider 为底层特征源加上单次调用的硬超时
// 超时或出错时降级为默认值：慢的特征库只会削弱排序信号，不会拖垮请求。
// 单个请求内不做重试 (重试会吃掉延迟预算，由更外层决定是否整体重试)
type TimeoutProvider struct {
	inner   Provider
	timeout time.Duration
}

// WithTimeout 包装一个特征提供者，给每次读取加上超时预算
func WithTimeout(inner Provider, timeout time.Duration) *TimeoutProvider {
	return &TimeoutProvider{
		inner:   inner,
		timeout: timeout,
	}
}

// ItemFeatures 带超时的菜品特征读取，降级时返回默认特征
func (p *TimeoutProvider) ItemFeatures(ctx context.Context, name string) (*model.Item, error) {
	type result struct {
		item *model.Item
		err  error
	}

	// buffered channel: 超时放弃后，慢调用返回时不会阻塞 goroutine
	ch := make(chan result, 1)
	go func() {
		item, err := p.inner.ItemFeatures(ctx, name)
		ch <- result{item, err}
	}()

	timer := time.NewTimer(p.timeout)
	defer timer.Stop()

	select {
	case r := <-ch:
		if r.err != nil {
			logger.Warn("item feature lookup degraded for '%s': %v", name, r.err)
			return model.DefaultItem(name), nil
		}
		return r.item, nil
	case <-timer.C:
		logger.Warn("item feature lookup timed out for '%s' after %v", name, p.timeout)
		return model.DefaultItem(name), nil
	case <-ctx.Done():
		logger.Warn("item feature lookup abandoned for '%s': %v", name, ctx.Err())
		return model.DefaultItem(name), nil
	}
}

// UserContext 带超时的用户上下文读取，降级时返回中性默认值
func (p *TimeoutProvider) UserContext(ctx context.Context, userID string) (*model.UserContext, error) {
	type result struct {
		user *model.UserContext
		err  error
	}

	ch := make(chan result, 1)
	go func() {
		user, err := p.inner.UserContext(ctx, userID)
		ch <- result{user, err}
	}()

	timer := time.NewTimer(p.timeout)
	defer timer.Stop()

	select {
	case r := <-ch:
		if r.err != nil {
			logger.Warn("user context lookup degraded for '%s': %v", userID, r.err)
			return model.DefaultUserContext(), nil
		}
		return r.user, nil
	case <-timer.C:
		logger.Warn("user context lookup timed out for '%s' after %v", userID, p.timeout)
		return model.DefaultUserContext(), nil
	case <-ctx.Done():
		logger.Warn("user context lookup abandoned for '%s': %v", userID, ctx.Err())
		return model.DefaultUserContext(), nil
	}
}

// TemporalContext 纯函数，直接透传
func (p *TimeoutProvider) TemporalContext(t time.Time) model.MealTime {
	return p.inner.TemporalContext(t)
}
