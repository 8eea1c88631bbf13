// Package model 定义排班约束引擎的核心数据模型
package model

import (
	"time"

	"github.com/google/uuid"
)

// Shift 班次（一个可排班的时间槽）
// AssignedEmployees 只能通过 Schedule.CommitAssignment 修改
type Shift struct {
	BaseModel
	Date       string    `json:"date" db:"date"`             // YYYY-MM-DD
	StartTime  string    `json:"start_time" db:"start_time"` // HH:MM
	EndTime    string    `json:"end_time" db:"end_time"`     // HH:MM，早于开始时间表示跨日班次
	RoleID     uuid.UUID `json:"role_id" db:"role_id"`
	Location   string    `json:"location,omitempty" db:"location"`
	Department string    `json:"department,omitempty" db:"department"`
	Type       ShiftType `json:"type" db:"type"`

	RequiredEmployees int `json:"required_employees" db:"required_employees"` // 满员下限
	MaxEmployees      int `json:"max_employees" db:"max_employees"`           // 硬容量上限
	Priority          int `json:"priority" db:"priority"`                     // 仅用于排序，不是约束

	AssignedEmployees []uuid.UUID `json:"assigned_employees" db:"-"`
}

// StartAt 返回班次的绝对开始时间
func (s *Shift) StartAt() time.Time {
	return clockOnDate(s.Date, s.StartTime)
}

// EndAt 返回班次的绝对结束时间（跨日班次 +24h）
func (s *Shift) EndAt() time.Time {
	end := clockOnDate(s.Date, s.EndTime)
	if !end.After(s.StartAt()) {
		end = end.Add(24 * time.Hour)
	}
	return end
}

// DurationHours 返回班次时长（小时）
func (s *Shift) DurationHours() float64 {
	return s.EndAt().Sub(s.StartAt()).Hours()
}

// Weekday 返回班次日期对应的星期几
func (s *Shift) Weekday() time.Weekday {
	t, err := time.Parse(DateLayout, s.Date)
	if err != nil {
		return time.Sunday
	}
	return t.Weekday()
}

// Overlaps 检查两个班次的时间段是否重叠（按绝对时间，自动覆盖跨日场景）
func (s *Shift) Overlaps(other *Shift) bool {
	return s.StartAt().Before(other.EndAt()) && other.StartAt().Before(s.EndAt())
}

// IsFull 检查班次是否达到硬容量上限
func (s *Shift) IsFull() bool {
	return len(s.AssignedEmployees) >= s.MaxEmployees
}

// IsFullyStaffed 检查班次是否满员
func (s *Shift) IsFullyStaffed() bool {
	return len(s.AssignedEmployees) >= s.RequiredEmployees
}

// OpenSlots 返回距离满员还缺的人数
func (s *Shift) OpenSlots() int {
	open := s.RequiredEmployees - len(s.AssignedEmployees)
	if open < 0 {
		return 0
	}
	return open
}

// HasEmployee 检查员工是否已分配到该班次
func (s *Shift) HasEmployee(empID uuid.UUID) bool {
	for _, id := range s.AssignedEmployees {
		if id == empID {
			return true
		}
	}
	return false
}

// clockOnDate 在指定日期上解析 HH:MM 时刻
func clockOnDate(date, clock string) time.Time {
	d, err := time.Parse(DateLayout, date)
	if err != nil {
		return time.Time{}
	}
	t, err := time.Parse(ClockLayout, clock)
	if err != nil {
		return d
	}
	return time.Date(d.Year(), d.Month(), d.Day(), t.Hour(), t.Minute(), 0, 0, d.Location())
}
