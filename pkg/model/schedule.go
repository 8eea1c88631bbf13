// Package model 定义排班约束引擎的核心数据模型
package model

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
)

// Schedule 排班计划（一个排班周期的聚合根）
// 持有本周期内的全部员工、岗位、班次和自定义约束，并拥有
// 班次分配状态的唯一写入权。同一 Schedule 上的 Optimize/Validate
// 调用需要调用方保证互斥，不同 Schedule 之间可以并行。
type Schedule struct {
	BaseModel
	Name      string `json:"name" db:"name"`
	StartDate string `json:"start_date" db:"start_date"`
	EndDate   string `json:"end_date" db:"end_date"`

	Employees   []*Employee       `json:"employees"`
	Roles       []*Role           `json:"roles"`
	Shifts      []*Shift          `json:"shifts"`
	Constraints []*WorkConstraint `json:"constraints,omitempty"`

	// 索引缓存
	employeeMap map[uuid.UUID]*Employee
	roleMap     map[uuid.UUID]*Role
	shiftMap    map[uuid.UUID]*Shift
}

// NewSchedule 创建新的排班计划
func NewSchedule(name, startDate, endDate string) *Schedule {
	return &Schedule{
		BaseModel:   NewBaseModel(),
		Name:        name,
		StartDate:   startDate,
		EndDate:     endDate,
		Employees:   make([]*Employee, 0),
		Roles:       make([]*Role, 0),
		Shifts:      make([]*Shift, 0),
		Constraints: make([]*WorkConstraint, 0),
		employeeMap: make(map[uuid.UUID]*Employee),
		roleMap:     make(map[uuid.UUID]*Role),
		shiftMap:    make(map[uuid.UUID]*Shift),
	}
}

// SetEmployees 设置员工列表
func (s *Schedule) SetEmployees(employees []*Employee) {
	s.Employees = employees
	s.employeeMap = make(map[uuid.UUID]*Employee, len(employees))
	for _, e := range employees {
		s.employeeMap[e.ID] = e
	}
}

// SetRoles 设置岗位列表
func (s *Schedule) SetRoles(roles []*Role) {
	s.Roles = roles
	s.roleMap = make(map[uuid.UUID]*Role, len(roles))
	for _, r := range roles {
		s.roleMap[r.ID] = r
	}
}

// SetShifts 设置班次列表
func (s *Schedule) SetShifts(shifts []*Shift) {
	s.Shifts = shifts
	s.shiftMap = make(map[uuid.UUID]*Shift, len(shifts))
	for _, sh := range shifts {
		s.shiftMap[sh.ID] = sh
	}
}

// SetConstraints 设置自定义约束列表
func (s *Schedule) SetConstraints(constraints []*WorkConstraint) {
	s.Constraints = constraints
}

// Reindex 重建索引缓存（反序列化后调用）
func (s *Schedule) Reindex() {
	s.SetEmployees(s.Employees)
	s.SetRoles(s.Roles)
	s.SetShifts(s.Shifts)
}

// Employee 按ID获取员工
func (s *Schedule) Employee(id uuid.UUID) *Employee {
	return s.employeeMap[id]
}

// Role 按ID获取岗位
func (s *Schedule) Role(id uuid.UUID) *Role {
	return s.roleMap[id]
}

// Shift 按ID获取班次
func (s *Schedule) Shift(id uuid.UUID) *Shift {
	return s.shiftMap[id]
}

// ShiftsForEmployee 获取员工已分配的所有班次
func (s *Schedule) ShiftsForEmployee(empID uuid.UUID) []*Shift {
	var result []*Shift
	for _, sh := range s.Shifts {
		if sh.HasEmployee(empID) {
			result = append(result, sh)
		}
	}
	return result
}

// ShiftsOnDate 获取某日期的所有班次
func (s *Schedule) ShiftsOnDate(date string) []*Shift {
	var result []*Shift
	for _, sh := range s.Shifts {
		if sh.Date == date {
			result = append(result, sh)
		}
	}
	return result
}

// AssignedHoursOnDate 获取员工某天已分配的工时
func (s *Schedule) AssignedHoursOnDate(empID uuid.UUID, date string) float64 {
	var hours float64
	for _, sh := range s.ShiftsForEmployee(empID) {
		if sh.Date == date {
			hours += sh.DurationHours()
		}
	}
	return hours
}

// AssignedHoursInWeek 获取员工在日期所在 ISO 周（周一起始）已分配的工时
func (s *Schedule) AssignedHoursInWeek(empID uuid.UUID, date string) float64 {
	weekStart := WeekStart(date)
	weekEnd := WeekEnd(date)

	var hours float64
	for _, sh := range s.ShiftsForEmployee(empID) {
		if sh.Date >= weekStart && sh.Date <= weekEnd {
			hours += sh.DurationHours()
		}
	}
	return hours
}

// AssignedHoursTotal 获取员工在整个排班周期内已分配的工时
func (s *Schedule) AssignedHoursTotal(empID uuid.UUID) float64 {
	var hours float64
	for _, sh := range s.ShiftsForEmployee(empID) {
		hours += sh.DurationHours()
	}
	return hours
}

// AssignedDates 获取员工已分配班次的日期集合
func (s *Schedule) AssignedDates(empID uuid.UUID) map[string]bool {
	dates := make(map[string]bool)
	for _, sh := range s.ShiftsForEmployee(empID) {
		dates[sh.Date] = true
	}
	return dates
}

// ConsecutiveRunAround 计算以目标日期为中心的连续工作天数
// 从目标日期向前、向后遍历员工已分配日期直到出现空档，
// 返回前后连续天数之和（调用方 +1 即为包含目标日期的总连续天数）。
// 只统计本排班周期生成的班次日期，周期开始之前的历史不计入。
func (s *Schedule) ConsecutiveRunAround(empID uuid.UUID, targetDate string) int {
	dates := s.AssignedDates(empID)

	countBefore := 0
	current := PreviousDate(targetDate)
	for dates[current] {
		countBefore++
		current = PreviousDate(current)
		if countBefore > 60 { // 防止异常数据导致死循环
			break
		}
	}

	countAfter := 0
	current = NextDate(targetDate)
	for dates[current] {
		countAfter++
		current = NextDate(current)
		if countAfter > 60 {
			break
		}
	}

	return countBefore + countAfter
}

// ConstraintsFor 获取对某员工在某日期生效的自定义约束
func (s *Schedule) ConstraintsFor(empID uuid.UUID, date string) []*WorkConstraint {
	var result []*WorkConstraint
	for _, c := range s.Constraints {
		if c.EmployeeID == empID && c.AppliesOn(date) {
			result = append(result, c)
		}
	}
	return result
}

// CommitAssignment 提交一个分配
// 这是班次分配状态唯一的修改入口，保证容量上限不被突破
func (s *Schedule) CommitAssignment(shiftID, empID uuid.UUID) error {
	sh := s.Shift(shiftID)
	if sh == nil {
		return fmt.Errorf("班次 %s 不存在", shiftID)
	}
	if s.Employee(empID) == nil {
		return fmt.Errorf("员工 %s 不存在", empID)
	}
	if sh.IsFull() {
		return fmt.Errorf("班次 %s 已满: 已分配 %d 人，上限 %d 人", shiftID, len(sh.AssignedEmployees), sh.MaxEmployees)
	}
	if sh.HasEmployee(empID) {
		return fmt.Errorf("员工 %s 已分配到班次 %s", empID, shiftID)
	}

	sh.AssignedEmployees = append(sh.AssignedEmployees, empID)
	return nil
}

// RevokeAssignment 撤销一个分配（换班推荐的模拟过程使用）
func (s *Schedule) RevokeAssignment(shiftID, empID uuid.UUID) error {
	sh := s.Shift(shiftID)
	if sh == nil {
		return fmt.Errorf("班次 %s 不存在", shiftID)
	}
	for i, id := range sh.AssignedEmployees {
		if id == empID {
			sh.AssignedEmployees = append(sh.AssignedEmployees[:i], sh.AssignedEmployees[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("员工 %s 未分配到班次 %s", empID, shiftID)
}

// SortedShiftIDs 返回按优先级降序、日期和开始时间升序排列的班次ID
// 优化器以此作为确定性的提交顺序
func (s *Schedule) SortedShiftIDs() []uuid.UUID {
	shifts := make([]*Shift, len(s.Shifts))
	copy(shifts, s.Shifts)
	sort.Slice(shifts, func(i, j int) bool {
		if shifts[i].Priority != shifts[j].Priority {
			return shifts[i].Priority > shifts[j].Priority // 高优先级在前
		}
		if shifts[i].Date != shifts[j].Date {
			return shifts[i].Date < shifts[j].Date // 早日期在前
		}
		if shifts[i].StartTime != shifts[j].StartTime {
			return shifts[i].StartTime < shifts[j].StartTime
		}
		return shifts[i].ID.String() < shifts[j].ID.String()
	})

	ids := make([]uuid.UUID, len(shifts))
	for i, sh := range shifts {
		ids[i] = sh.ID
	}
	return ids
}
