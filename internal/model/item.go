package model

// Category 菜品类目
type Category string

const (
	CategoryMainCourse Category = "Main Course"
	CategorySides      Category = "Sides"
	CategoryBeverages  Category = "Beverages"
	CategoryDessert    Category = "Dessert"
	CategoryGeneral    Category = "General"
)

// Item 代表一个菜品的只读特征数据 (来自 Feature Provider)
type Item struct {
	Name       string   `json:"name" yaml:"name"`
	Category   Category `json:"category" yaml:"category"`
	Price      float64  `json:"price" yaml:"price"`
	IsVeg      bool     `json:"is_veg" yaml:"is_veg"`
	Popularity float64  `json:"popularity" yaml:"popularity"` // [0,1] 越高代表点单频率越高
}

// DefaultItem 返回未知菜品的兜底特征
// 契约：目录里查不到的菜品永远返回默认值而不是报错，
// 保证召回/排序不依赖目录的完整性
func DefaultItem(name string) *Item {
	return &Item{
		Name:       name,
		Category:   CategoryGeneral,
		Price:      50,
		IsVeg:      true,
		Popularity: 0.5,
	}
}

// Candidate 一次请求内的候选条目
// 仅在单次请求内存活，响应格式化之后即丢弃
type Candidate struct {
	Name     string  `json:"name"`
	Score    float64 `json:"score"`
	Source   string  `json:"source,omitempty"` // 召回源标记 (e.g., "complementarity", "global_popular")
	Features *Item   `json:"-"`
}
