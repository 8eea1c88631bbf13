// Package model 定义排班约束引擎的核心数据模型
package model

import (
	"time"

	"github.com/google/uuid"
)

// 日期和时间格式
const (
	DateLayout  = "2006-01-02" // YYYY-MM-DD
	ClockLayout = "15:04"      // HH:MM
)

// SkillLevel 技能等级（有序）
type SkillLevel int

const (
	SkillBeginner     SkillLevel = iota + 1 // 入门
	SkillIntermediate                       // 中级
	SkillAdvanced                           // 高级
	SkillExpert                             // 专家
)

// String 返回技能等级名称
func (l SkillLevel) String() string {
	switch l {
	case SkillBeginner:
		return "beginner"
	case SkillIntermediate:
		return "intermediate"
	case SkillAdvanced:
		return "advanced"
	case SkillExpert:
		return "expert"
	default:
		return "unknown"
	}
}

// ParseSkillLevel 解析技能等级名称
func ParseSkillLevel(s string) (SkillLevel, bool) {
	switch s {
	case "beginner":
		return SkillBeginner, true
	case "intermediate":
		return SkillIntermediate, true
	case "advanced":
		return SkillAdvanced, true
	case "expert":
		return SkillExpert, true
	default:
		return 0, false
	}
}

// ShiftType 班次类型
type ShiftType string

const (
	ShiftMorning   ShiftType = "morning"   // 早班
	ShiftAfternoon ShiftType = "afternoon" // 午班
	ShiftEvening   ShiftType = "evening"   // 晚班
	ShiftNight     ShiftType = "night"     // 夜班
)

// WorkConstraintType 自定义工作约束类型（封闭枚举，校验器中穷举处理）
type WorkConstraintType string

const (
	ConstraintMaxHoursPerDay        WorkConstraintType = "max_hours_per_day"        // 每日最大工时
	ConstraintMaxHoursPerWeek       WorkConstraintType = "max_hours_per_week"       // 每周最大工时
	ConstraintMinHoursBetweenShifts WorkConstraintType = "min_hours_between_shifts" // 班次间最小间隔
	ConstraintMaxConsecutiveDays    WorkConstraintType = "max_consecutive_days"     // 最大连续工作天数
)

// Valid 判断是否为已知的约束类型
func (t WorkConstraintType) Valid() bool {
	switch t {
	case ConstraintMaxHoursPerDay, ConstraintMaxHoursPerWeek,
		ConstraintMinHoursBetweenShifts, ConstraintMaxConsecutiveDays:
		return true
	}
	return false
}

// BaseModel 基础模型（包含通用字段）
type BaseModel struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt *time.Time `json:"-" db:"deleted_at"`
}

// NewBaseModel 创建新的基础模型
func NewBaseModel() BaseModel {
	now := time.Now()
	return BaseModel{
		ID:        uuid.New(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// ParseDate 解析 YYYY-MM-DD 日期
func ParseDate(date string) (time.Time, error) {
	return time.Parse(DateLayout, date)
}

// WeekStart 返回日期所在 ISO 周的开始日期（周一）
func WeekStart(date string) string {
	t, err := time.Parse(DateLayout, date)
	if err != nil {
		return date
	}
	offset := (int(t.Weekday()) + 6) % 7 // 周一偏移为0
	return t.AddDate(0, 0, -offset).Format(DateLayout)
}

// WeekEnd 返回日期所在 ISO 周的结束日期（周日）
func WeekEnd(date string) string {
	start, err := time.Parse(DateLayout, WeekStart(date))
	if err != nil {
		return date
	}
	return start.AddDate(0, 0, 6).Format(DateLayout)
}

// PreviousDate 获取前一天日期
func PreviousDate(date string) string {
	t, err := time.Parse(DateLayout, date)
	if err != nil {
		return ""
	}
	return t.AddDate(0, 0, -1).Format(DateLayout)
}

// NextDate 获取后一天日期
func NextDate(date string) string {
	t, err := time.Parse(DateLayout, date)
	if err != nil {
		return ""
	}
	return t.AddDate(0, 0, 1).Format(DateLayout)
}
