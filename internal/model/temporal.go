package model

// MealTime 用餐时段，由墙上时钟推导，核心流程视为不透明输入
type MealTime string

const (
	MealBreakfast MealTime = "Breakfast"
	MealLunch     MealTime = "Lunch"
	MealSnack     MealTime = "Snack"
	MealDinner    MealTime = "Dinner"
	MealLateNight MealTime = "Late Night"
)
