package feature

import (
	"context"
	"fmt"
	"os"
	"time"

	"csao_engine/internal/model"

	"gopkg.in/yaml.v3"
)

// StaticProvider 基于静态配置文件实现的特征提供者
// 用于测试/演示，也是没有接入远端特征库时的默认实现
type StaticProvider struct {
	items map[string]*model.Item
	users map[string]*model.UserContext
}

type staticUser struct {
	ID                string `yaml:"id"`
	model.UserContext `yaml:",inline"`
}

type staticConfig struct {
	Items []model.Item `yaml:"items"`
	Users []staticUser `yaml:"users"`
}

// NewStaticProvider 从 yaml 配置文件加载菜品目录和用户画像
func NewStaticProvider(configPath string) (*StaticProvider, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog config file: %w", err)
	}

	var config staticConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse catalog config: %w", err)
	}

	itemMap := make(map[string]*model.Item)
	for i := range config.Items {
		itemMap[config.Items[i].Name] = &config.Items[i]
	}

	userMap := make(map[string]*model.UserContext)
	for i := range config.Users {
		userMap[config.Users[i].ID] = &config.Users[i].UserContext
	}

	return &StaticProvider{
		items: itemMap,
		users: userMap,
	}, nil
}

// NewStaticProviderFromData 直接用内存数据构造，方便单测注入
func NewStaticProviderFromData(items map[string]*model.Item, users map[string]*model.UserContext) *StaticProvider {
	if items == nil {
		items = make(map[string]*model.Item)
	}
	if users == nil {
		users = make(map[string]*model.UserContext)
	}
	return &StaticProvider{items: items, users: users}
}

// ItemFeatures 返回菜品特征；目录里没有的菜品返回默认特征
func (p *StaticProvider) ItemFeatures(_ context.Context, name string) (*model.Item, error) {
	if item, ok := p.items[name]; ok {
		return item, nil
	}
	return model.DefaultItem(name), nil
}

// UserContext 返回用户上下文；游客或未知用户返回中性默认值
func (p *StaticProvider) UserContext(_ context.Context, userID string) (*model.UserContext, error) {
	if ctx, ok := p.users[userID]; ok {
		return ctx, nil
	}
	return model.DefaultUserContext(), nil
}

// TemporalContext 按固定小时边界推导用餐时段
func (p *StaticProvider) TemporalContext(t time.Time) model.MealTime {
	return MealTimeOf(t)
}
