// Package model 定义排班约束引擎的核心数据模型
package model

import (
	"time"
)

// Employee 员工
// 引擎只读，所有字段由外部系统导入
type Employee struct {
	BaseModel
	Name   string `json:"name" db:"name"`
	Active bool   `json:"active" db:"active"`

	// 资质
	Skills         map[string]SkillLevel `json:"skills,omitempty" db:"skills"`
	Certifications []string              `json:"certifications,omitempty" db:"certifications"`

	// 工时与休息限制
	MaxHoursPerDay  float64 `json:"max_hours_per_day" db:"max_hours_per_day"`
	MaxHoursPerWeek float64 `json:"max_hours_per_week" db:"max_hours_per_week"`
	MinRestHours    float64 `json:"min_rest_hours" db:"min_rest_hours"`

	// 可用性
	AvailableDays    []time.Weekday `json:"available_days,omitempty" db:"available_days"`
	UnavailableDates []string       `json:"unavailable_dates,omitempty" db:"unavailable_dates"` // YYYY-MM-DD

	// 偏好（按优先顺序排列）
	PreferredShiftTypes []ShiftType `json:"preferred_shift_types,omitempty" db:"preferred_shift_types"`

	// 用餐休息要求
	RequiresMealBreak bool `json:"requires_meal_break" db:"requires_meal_break"`
	MealBreakMinutes  int  `json:"meal_break_minutes,omitempty" db:"meal_break_minutes"`
}

// SkillLevelOf 返回员工某技能的等级
func (e *Employee) SkillLevelOf(skill string) (SkillLevel, bool) {
	level, ok := e.Skills[skill]
	return level, ok
}

// HasCertification 检查员工是否持有某证书
func (e *Employee) HasCertification(cert string) bool {
	for _, c := range e.Certifications {
		if c == cert {
			return true
		}
	}
	return false
}

// WorksOnWeekday 检查员工在某星期几是否可排班
func (e *Employee) WorksOnWeekday(day time.Weekday) bool {
	for _, d := range e.AvailableDays {
		if d == day {
			return true
		}
	}
	return false
}

// UnavailableOn 检查员工在某具体日期是否标记为不可用
func (e *Employee) UnavailableOn(date string) bool {
	for _, d := range e.UnavailableDates {
		if d == date {
			return true
		}
	}
	return false
}

// PrefersShiftType 检查班次类型是否在员工偏好列表中
func (e *Employee) PrefersShiftType(t ShiftType) bool {
	for _, p := range e.PreferredShiftTypes {
		if p == t {
			return true
		}
	}
	return false
}
