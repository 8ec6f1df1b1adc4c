package model

// UserContext 请求粒度的用户上下文信号
// 每次请求由 Feature Provider 重新产出，核心流程只读不缓存
type UserContext struct {
	IsPremium       bool    `json:"is_premium" yaml:"is_premium"`
	VegPreference   bool    `json:"veg_preference" yaml:"veg_preference"`
	AvgOrderValue   float64 `json:"avg_order_value" yaml:"avg_order_value"`
	DessertAffinity float64 `json:"dessert_affinity" yaml:"dessert_affinity"` // [0,1]
}

// DefaultUserContext 游客/未知用户的兜底上下文：所有加成中性，非会员
func DefaultUserContext() *UserContext {
	return &UserContext{
		IsPremium:       false,
		VegPreference:   false,
		AvgOrderValue:   0,
		DessertAffinity: 0,
	}
}

// GuestUserID 未登录用户的哨兵值
const GuestUserID = "guest"
