// Package validator 提供排班计划的整体审计
package validator

import (
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/zhiban/zhiban/pkg/model"
)

// ConflictType 冲突类型
type ConflictType string

const (
	ConflictOverlap     ConflictType = "overlap"     // 时间重叠
	ConflictRestTime    ConflictType = "rest_time"   // 休息时间不足
	ConflictMaxHours    ConflictType = "max_hours"   // 超过最大工时
	ConflictConsecutive ConflictType = "consecutive" // 连续天数过多
	ConflictDangling    ConflictType = "dangling"    // 引用缺失
)

// Conflict 冲突信息
type Conflict struct {
	Type       ConflictType `json:"type"`
	Severity   string       `json:"severity"` // error/warning
	EmployeeID uuid.UUID    `json:"employee_id"`
	Date       string       `json:"date"`
	Message    string       `json:"message"`
	ShiftIDs   []uuid.UUID  `json:"shift_ids,omitempty"` // 相关的班次ID
}

// ConflictDetector 对已有分配做事后审计
// 逐次分配的校验走 scheduler/validator，这里检查整个计划的既成状态，
// 用于审计外部导入或人工修改过的排班数据
type ConflictDetector struct{}

// NewConflictDetector 创建冲突检测器
func NewConflictDetector() *ConflictDetector {
	return &ConflictDetector{}
}

// DetectAll 检测排班计划中的所有冲突，结果按员工ID和日期排序
func (d *ConflictDetector) DetectAll(s *model.Schedule) []Conflict {
	var conflicts []Conflict

	conflicts = append(conflicts, d.detectDanglingReferences(s)...)

	empIDs := make([]uuid.UUID, 0, len(s.Employees))
	for _, emp := range s.Employees {
		empIDs = append(empIDs, emp.ID)
	}
	sort.Slice(empIDs, func(i, j int) bool {
		return empIDs[i].String() < empIDs[j].String()
	})

	for _, empID := range empIDs {
		emp := s.Employee(empID)
		shifts := sortedShifts(s.ShiftsForEmployee(empID))

		conflicts = append(conflicts, d.detectOverlaps(emp, shifts)...)
		conflicts = append(conflicts, d.detectRestViolations(emp, shifts)...)
		conflicts = append(conflicts, d.detectHourViolations(s, emp, shifts)...)
		conflicts = append(conflicts, d.detectConsecutiveViolations(s, emp, shifts)...)
	}

	return conflicts
}

// detectDanglingReferences 检测班次引用的缺失员工和岗位
func (d *ConflictDetector) detectDanglingReferences(s *model.Schedule) []Conflict {
	var conflicts []Conflict

	for _, shiftID := range s.SortedShiftIDs() {
		shift := s.Shift(shiftID)
		if s.Role(shift.RoleID) == nil {
			conflicts = append(conflicts, Conflict{
				Type:     ConflictDangling,
				Severity: "error",
				Date:     shift.Date,
				Message:  fmt.Sprintf("班次引用的岗位 '%s' 不在排班计划中", shift.RoleID),
				ShiftIDs: []uuid.UUID{shift.ID},
			})
		}
		for _, empID := range shift.AssignedEmployees {
			if s.Employee(empID) == nil {
				conflicts = append(conflicts, Conflict{
					Type:       ConflictDangling,
					Severity:   "error",
					EmployeeID: empID,
					Date:       shift.Date,
					Message:    fmt.Sprintf("班次引用的员工 '%s' 不在排班计划中", empID),
					ShiftIDs:   []uuid.UUID{shift.ID},
				})
			}
		}
	}

	return conflicts
}

// detectOverlaps 检测同一员工时间重叠的班次
func (d *ConflictDetector) detectOverlaps(emp *model.Employee, shifts []*model.Shift) []Conflict {
	var conflicts []Conflict

	for i := 0; i < len(shifts); i++ {
		for j := i + 1; j < len(shifts); j++ {
			if shifts[i].Overlaps(shifts[j]) {
				conflicts = append(conflicts, Conflict{
					Type:       ConflictOverlap,
					Severity:   "error",
					EmployeeID: emp.ID,
					Date:       shifts[i].Date,
					Message:    fmt.Sprintf("员工 %s 在 %s 存在时间重叠的班次", emp.Name, shifts[i].Date),
					ShiftIDs:   []uuid.UUID{shifts[i].ID, shifts[j].ID},
				})
			}
		}
	}

	return conflicts
}

// detectRestViolations 检测相邻班次间休息不足
func (d *ConflictDetector) detectRestViolations(emp *model.Employee, shifts []*model.Shift) []Conflict {
	var conflicts []Conflict

	if emp.MinRestHours <= 0 || len(shifts) < 2 {
		return conflicts
	}

	for i := 0; i < len(shifts)-1; i++ {
		current := shifts[i]
		next := shifts[i+1]
		if current.Overlaps(next) {
			continue // 重叠单独上报
		}
		rest := next.StartAt().Sub(current.EndAt()).Hours()
		if rest >= 0 && rest < emp.MinRestHours {
			conflicts = append(conflicts, Conflict{
				Type:       ConflictRestTime,
				Severity:   "error",
				EmployeeID: emp.ID,
				Date:       next.Date,
				Message:    fmt.Sprintf("员工 %s 班次间休息仅 %.1f 小时，少于要求的 %.1f 小时", emp.Name, rest, emp.MinRestHours),
				ShiftIDs:   []uuid.UUID{current.ID, next.ID},
			})
		}
	}

	return conflicts
}

// detectHourViolations 检测日工时和周工时超限
func (d *ConflictDetector) detectHourViolations(s *model.Schedule, emp *model.Employee, shifts []*model.Shift) []Conflict {
	var conflicts []Conflict

	dates := make(map[string]struct{})
	weeks := make(map[string]struct{})
	for _, shift := range shifts {
		dates[shift.Date] = struct{}{}
		weeks[model.WeekStart(shift.Date)] = struct{}{}
	}

	if emp.MaxHoursPerDay > 0 {
		for date := range dates {
			hours := s.AssignedHoursOnDate(emp.ID, date)
			if hours > emp.MaxHoursPerDay {
				conflicts = append(conflicts, Conflict{
					Type:       ConflictMaxHours,
					Severity:   "error",
					EmployeeID: emp.ID,
					Date:       date,
					Message:    fmt.Sprintf("员工 %s 在 %s 工作 %.1f 小时，超过每日上限 %.1f 小时", emp.Name, date, hours, emp.MaxHoursPerDay),
				})
			}
		}
	}

	if emp.MaxHoursPerWeek > 0 {
		for week := range weeks {
			hours := s.AssignedHoursInWeek(emp.ID, week)
			if hours > emp.MaxHoursPerWeek {
				conflicts = append(conflicts, Conflict{
					Type:       ConflictMaxHours,
					Severity:   "error",
					EmployeeID: emp.ID,
					Date:       week,
					Message:    fmt.Sprintf("员工 %s 在 %s 起始的一周工作 %.1f 小时，超过每周上限 %.1f 小时", emp.Name, week, hours, emp.MaxHoursPerWeek),
				})
			}
		}
	}

	sort.Slice(conflicts, func(i, j int) bool {
		return conflicts[i].Date < conflicts[j].Date
	})
	return conflicts
}

// detectConsecutiveViolations 根据员工的自定义约束检测连续工作天数
func (d *ConflictDetector) detectConsecutiveViolations(s *model.Schedule, emp *model.Employee, shifts []*model.Shift) []Conflict {
	maxDays := 0.0
	for _, c := range s.Constraints {
		if c.EmployeeID == emp.ID && c.Active && c.Type == model.ConstraintMaxConsecutiveDays && c.Value > maxDays {
			maxDays = c.Value
		}
	}
	if maxDays <= 0 || len(shifts) == 0 {
		return nil
	}

	dateSet := make(map[string]struct{})
	for _, shift := range shifts {
		dateSet[shift.Date] = struct{}{}
	}
	dates := make([]string, 0, len(dateSet))
	for date := range dateSet {
		dates = append(dates, date)
	}
	sort.Strings(dates)

	var conflicts []Conflict
	run := 1
	runStart := dates[0]
	reported := false

	for i := 1; i < len(dates); i++ {
		if model.NextDate(dates[i-1]) == dates[i] {
			run++
		} else {
			run = 1
			runStart = dates[i]
			reported = false
		}
		if float64(run) > maxDays && !reported {
			conflicts = append(conflicts, Conflict{
				Type:       ConflictConsecutive,
				Severity:   "error",
				EmployeeID: emp.ID,
				Date:       runStart,
				Message:    fmt.Sprintf("员工 %s 自 %s 起连续工作超过 %.0f 天", emp.Name, runStart, maxDays),
			})
			reported = true
		}
	}

	return conflicts
}

// sortedShifts 按日期和开始时间排序
func sortedShifts(shifts []*model.Shift) []*model.Shift {
	sorted := make([]*model.Shift, len(shifts))
	copy(sorted, shifts)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Date != sorted[j].Date {
			return sorted[i].Date < sorted[j].Date
		}
		if sorted[i].StartTime != sorted[j].StartTime {
			return sorted[i].StartTime < sorted[j].StartTime
		}
		return sorted[i].ID.String() < sorted[j].ID.String()
	})
	return sorted
}
