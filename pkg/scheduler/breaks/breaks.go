// Package breaks 提供休息策略推导和合规审计
package breaks

import (
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/zhiban/zhiban/pkg/model"
)

// Rule 一条休息策略：班次时长达到阈值即要求该休息
type Rule struct {
	Name          string  `yaml:"name" json:"name"`
	MinShiftHours float64 `yaml:"min_shift_hours" json:"min_shift_hours"`
	BreakHours    float64 `yaml:"break_hours" json:"break_hours"`
}

// Policy 休息策略表
// 阈值是策略数据而非引擎逻辑，可通过策略文件整体替换
type Policy struct {
	Rules              []Rule  `yaml:"rules" json:"rules"`
	MinProductiveHours float64 `yaml:"min_productive_hours" json:"min_productive_hours"`
}

// DefaultPolicy 返回默认休息策略表
func DefaultPolicy() *Policy {
	return &Policy{
		Rules: []Rule{
			{Name: "工间休息", MinShiftHours: 4, BreakHours: 0.25},
			{Name: "用餐休息", MinShiftHours: 6, BreakHours: 0.5},
			{Name: "加长休息", MinShiftHours: 10, BreakHours: 0.5},
		},
		MinProductiveHours: 4,
	}
}

// Enforcer 休息策略执行器
// 独立的合规审计工具，不参与校验器的通过/否决判定
type Enforcer struct {
	policy *Policy
}

// NewEnforcer 创建休息策略执行器
func NewEnforcer(policy *Policy) *Enforcer {
	if policy == nil {
		policy = DefaultPolicy()
	}
	return &Enforcer{policy: policy}
}

// RequiredBreaks 根据班次时长推导必需的休息
func (e *Enforcer) RequiredBreaks(shift *model.Shift) map[string]float64 {
	duration := shift.DurationHours()
	required := make(map[string]float64)
	for _, rule := range e.policy.Rules {
		if duration >= rule.MinShiftHours {
			required[rule.Name] = rule.BreakHours
		}
	}
	return required
}

// TotalBreakHours 返回班次必需休息的总时长
func (e *Enforcer) TotalBreakHours(shift *model.Shift) float64 {
	var total float64
	for _, hours := range e.RequiredBreaks(shift) {
		total += hours
	}
	return total
}

// ValidateCompliance 审计员工的全部已分配班次
// 扣除必需休息后有效工作时间低于最低产出时长的班次视为违规：
// 班次太短，装不下自己要求的休息
func (e *Enforcer) ValidateCompliance(s *model.Schedule, employeeID uuid.UUID) []string {
	emp := s.Employee(employeeID)
	if emp == nil {
		return []string{fmt.Sprintf("员工 '%s' 不在排班计划中", employeeID)}
	}

	shifts := s.ShiftsForEmployee(employeeID)
	sort.Slice(shifts, func(i, j int) bool {
		if shifts[i].Date != shifts[j].Date {
			return shifts[i].Date < shifts[j].Date
		}
		return shifts[i].StartTime < shifts[j].StartTime
	})

	var violations []string
	for _, shift := range shifts {
		duration := shift.DurationHours()
		breakTotal := e.TotalBreakHours(shift)
		effective := duration - breakTotal

		if effective < e.policy.MinProductiveHours {
			violations = append(violations, fmt.Sprintf(
				"员工 %s 在 %s 的班次（%s-%s）时长 %.1f 小时，扣除必需休息 %.2f 小时后有效工作仅 %.2f 小时，低于最低产出时长 %.1f 小时",
				emp.Name, shift.Date, shift.StartTime, shift.EndTime,
				duration, breakTotal, effective, e.policy.MinProductiveHours,
			))
		}
	}
	return violations
}
