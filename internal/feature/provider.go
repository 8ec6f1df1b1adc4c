package feature

import (
	"context"
	"time"

	"csao_engine/internal/model"
)

// Provider 定义特征读取的能力接口
// 真实实现可能访问缓存或远端特征库，核心流程只依赖这个接口，
// 三个操作各自独立可调用、各自独立可失败
type Provider interface {
	// ItemFeatures 获取菜品特征；未知菜品必须返回默认值而不是报错
	ItemFeatures(ctx context.Context, name string) (*model.Item, error)
	// UserContext 获取用户上下文；游客/未知用户返回中性默认值
	UserContext(ctx context.Context, userID string) (*model.UserContext, error)
	// TemporalContext 根据墙上时间推导用餐时段 (纯函数)
	TemporalContext(t time.Time) model.MealTime
}

// MealTimeOf 按固定的小时边界划分用餐时段
// [5,11)=Breakfast [11,16)=Lunch [16,19)=Snack [19,23)=Dinner 其余=Late Night
func MealTimeOf(t time.Time) model.MealTime {
	hour := t.Hour()
	switch {
	case hour >= 5 && hour < 11:
		return model.MealBreakfast
	case hour >= 11 && hour < 16:
		return model.MealLunch
	case hour >= 16 && hour < 19:
		return model.MealSnack
	case hour >= 19 && hour < 23:
		return model.MealDinner
	default:
		return model.MealLateNight
	}
}
