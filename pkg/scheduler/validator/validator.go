// Package validator 提供单次分配的可行性校验
package validator

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/zhiban/zhiban/pkg/logger"
	"github.com/zhiban/zhiban/pkg/model"
)

// 用餐休息提示阈值（小时），超过则在员工要求用餐休息时给出提示
const mealBreakAdviceHours = 6.0

// Validator 约束校验器
// 只读判断一个（员工，班次）配对是否可行，从不修改排班计划。
// 所有检查全部执行，以便一次性返回完整的违规列表。
type Validator struct {
	logger *logger.SchedulerLogger
}

// New 创建约束校验器
func New() *Validator {
	return &Validator{logger: logger.NewSchedulerLogger()}
}

// Validate 校验一个（员工，班次）配对
// 未知的员工/班次/岗位ID按输入错误处理：返回单条违规，不panic不报错
func (v *Validator) Validate(s *model.Schedule, employeeID, shiftID uuid.UUID) *model.ShiftAssignmentResult {
	result := &model.ShiftAssignmentResult{
		ShiftID:    shiftID,
		EmployeeID: employeeID,
	}

	emp := s.Employee(employeeID)
	if emp == nil {
		result.Violations = append(result.Violations, fmt.Sprintf("员工 '%s' 不在排班计划中", employeeID))
		result.Message = "输入无效"
		return result
	}

	shift := s.Shift(shiftID)
	if shift == nil {
		result.Violations = append(result.Violations, fmt.Sprintf("班次 '%s' 不在排班计划中", shiftID))
		result.Message = "输入无效"
		return result
	}

	// 七项检查按固定顺序执行，互不短路
	v.checkCapacity(emp, shift, result)
	v.checkAvailability(emp, shift, result)
	v.checkQualification(s, emp, shift, result)
	v.checkHourLimits(s, emp, shift, emp.MaxHoursPerDay, emp.MaxHoursPerWeek, "", result)
	v.checkRestSpacing(s, emp, shift, emp.MinRestHours, "", result)
	v.checkOverlap(s, emp, shift, result)
	v.checkCustomConstraints(s, emp, shift, result)

	result.Success = len(result.Violations) == 0
	if result.Success {
		result.Message = "分配可行"
	} else {
		result.Message = fmt.Sprintf("存在 %d 条违规", len(result.Violations))
		for _, viol := range result.Violations {
			v.logger.ConstraintViolation("validate", viol)
		}
	}
	return result
}

// checkCapacity 检查1：容量上限
// 已占用本班次名额的员工复查自身配对时不计为新增占用
func (v *Validator) checkCapacity(emp *model.Employee, shift *model.Shift, result *model.ShiftAssignmentResult) {
	if shift.HasEmployee(emp.ID) {
		return
	}
	if shift.IsFull() {
		result.Violations = append(result.Violations, fmt.Sprintf(
			"班次已满: 已分配 %d 人，上限 %d 人",
			len(shift.AssignedEmployees), shift.MaxEmployees,
		))
	}
}

// checkAvailability 检查2：员工可用性
// 班次类型不在偏好列表只产生提示，不构成违规
func (v *Validator) checkAvailability(emp *model.Employee, shift *model.Shift, result *model.ShiftAssignmentResult) {
	if !emp.Active {
		result.Violations = append(result.Violations, fmt.Sprintf("员工 %s 已停用", emp.Name))
	}

	if !emp.WorksOnWeekday(shift.Weekday()) {
		result.Violations = append(result.Violations, fmt.Sprintf(
			"员工 %s 在%s不可排班", emp.Name, weekdayName(shift.Weekday()),
		))
	}

	if emp.UnavailableOn(shift.Date) {
		result.Violations = append(result.Violations, fmt.Sprintf(
			"员工 %s 在 %s 标记为不可用", emp.Name, shift.Date,
		))
	}

	if !emp.PrefersShiftType(shift.Type) {
		result.Warnings = append(result.Warnings, fmt.Sprintf(
			"班次类型 %s 不在员工 %s 的偏好列表中", shift.Type, emp.Name,
		))
	}
}

// checkQualification 检查3：岗位资质
// 悬空的岗位引用按输入错误处理，违规信息指明缺失的岗位ID
func (v *Validator) checkQualification(s *model.Schedule, emp *model.Employee, shift *model.Shift, result *model.ShiftAssignmentResult) {
	role := s.Role(shift.RoleID)
	if role == nil {
		result.Violations = append(result.Violations, fmt.Sprintf(
			"班次引用的岗位 '%s' 不在排班计划中", shift.RoleID,
		))
		return
	}

	for _, gap := range role.MissingSkills(emp) {
		if gap.Held == 0 {
			result.Violations = append(result.Violations, fmt.Sprintf(
				"岗位 %s 要求技能 %s（%s 级），员工 %s 不具备该技能",
				role.Name, gap.Skill, gap.Required, emp.Name,
			))
		} else {
			result.Violations = append(result.Violations, fmt.Sprintf(
				"岗位 %s 要求技能 %s 达到 %s 级，员工 %s 仅为 %s 级",
				role.Name, gap.Skill, gap.Required, emp.Name, gap.Held,
			))
		}
	}

	for _, cert := range role.MissingCertifications(emp) {
		result.Violations = append(result.Violations, fmt.Sprintf(
			"员工 %s 缺少岗位 %s 必需的证书: %s", emp.Name, role.Name, cert,
		))
	}
}

// checkHourLimits 检查4：每日/每周工时上限
// source 非空时表示来自自定义约束的收紧值
func (v *Validator) checkHourLimits(s *model.Schedule, emp *model.Employee, shift *model.Shift, maxPerDay, maxPerWeek float64, source string, result *model.ShiftAssignmentResult) {
	// 已提交的配对其时长已计入工时合计，不再叠加
	duration := shift.DurationHours()
	if shift.HasEmployee(emp.ID) {
		duration = 0
	}

	if maxPerDay > 0 {
		dayHours := s.AssignedHoursOnDate(emp.ID, shift.Date) + duration
		if dayHours > maxPerDay {
			result.Violations = append(result.Violations, fmt.Sprintf(
				"员工 %s 在 %s 的工时将达 %.1f 小时，超过%s限制 %.1f 小时",
				emp.Name, shift.Date, dayHours, source, maxPerDay,
			))
		}
	}

	if maxPerWeek > 0 {
		weekHours := s.AssignedHoursInWeek(emp.ID, shift.Date) + duration
		if weekHours > maxPerWeek {
			result.Violations = append(result.Violations, fmt.Sprintf(
				"员工 %s 在 %s 所在周的工时将达 %.1f 小时，超过%s限制 %.1f 小时",
				emp.Name, shift.Date, weekHours, source, maxPerWeek,
			))
		}
	}
}

// checkRestSpacing 检查5：班次间休息间隔
// 对每个已分配班次计算较早班次结束到较晚班次开始的间隔（跨日班次结束时间已 +24h）。
// 超过6小时的班次且员工要求用餐休息时给出提示（强制审计见 breaks 包）。
func (v *Validator) checkRestSpacing(s *model.Schedule, emp *model.Employee, shift *model.Shift, minRest float64, source string, result *model.ShiftAssignmentResult) {
	if minRest > 0 {
		for _, other := range s.ShiftsForEmployee(emp.ID) {
			if other.ID == shift.ID {
				continue
			}

			var gap float64
			if !other.EndAt().After(shift.StartAt()) {
				gap = shift.StartAt().Sub(other.EndAt()).Hours()
			} else if !shift.EndAt().After(other.StartAt()) {
				gap = other.StartAt().Sub(shift.EndAt()).Hours()
			} else {
				// 时间重叠由检查6报告，这里按零间隔处理
				gap = 0
			}

			if gap < minRest {
				result.Violations = append(result.Violations, fmt.Sprintf(
					"员工 %s 与已分配班次的间隔仅 %.1f 小时，少于%s要求的 %.1f 小时",
					emp.Name, gap, source, minRest,
				))
			}
		}
	}

	// 仅在未收紧检查时给出用餐休息提示，避免自定义约束复查时重复提示
	if source == "" && emp.RequiresMealBreak && shift.DurationHours() > mealBreakAdviceHours {
		result.Warnings = append(result.Warnings, fmt.Sprintf(
			"班次时长 %.1f 小时，员工 %s 需要安排用餐休息", shift.DurationHours(), emp.Name,
		))
	}
}

// checkOverlap 检查6：时间冲突
func (v *Validator) checkOverlap(s *model.Schedule, emp *model.Employee, shift *model.Shift, result *model.ShiftAssignmentResult) {
	for _, other := range s.ShiftsForEmployee(emp.ID) {
		if other.ID == shift.ID {
			continue
		}
		if shift.Overlaps(other) {
			result.Violations = append(result.Violations, fmt.Sprintf(
				"与员工 %s 已分配的班次（%s %s-%s）时间重叠",
				emp.Name, other.Date, other.StartTime, other.EndTime,
			))
		}
	}
}

// checkCustomConstraints 检查7：自定义约束
// 封闭枚举上的穷举分支：工时/间隔类按收紧值复查检查4-5，
// 最大连续天数需要统计包含候选日期的连续工作天数
func (v *Validator) checkCustomConstraints(s *model.Schedule, emp *model.Employee, shift *model.Shift, result *model.ShiftAssignmentResult) {
	for _, c := range s.ConstraintsFor(emp.ID, shift.Date) {
		switch c.Type {
		case model.ConstraintMaxHoursPerDay:
			v.checkHourLimits(s, emp, shift, c.Value, 0, "自定义约束", result)

		case model.ConstraintMaxHoursPerWeek:
			v.checkHourLimits(s, emp, shift, 0, c.Value, "自定义约束", result)

		case model.ConstraintMinHoursBetweenShifts:
			v.checkRestSpacing(s, emp, shift, c.Value, "自定义约束", result)

		case model.ConstraintMaxConsecutiveDays:
			run := s.ConsecutiveRunAround(emp.ID, shift.Date) + 1
			if float64(run) > c.Value {
				result.Violations = append(result.Violations, fmt.Sprintf(
					"员工 %s 将连续工作 %d 天，超过自定义约束限制 %.0f 天",
					emp.Name, run, c.Value,
				))
			}

		default:
			result.Violations = append(result.Violations, fmt.Sprintf(
				"未知的自定义约束类型: %s", c.Type,
			))
		}
	}
}

// weekdayName 返回星期几的中文名
func weekdayName(d time.Weekday) string {
	switch d {
	case time.Monday:
		return "周一"
	case time.Tuesday:
		return "周二"
	case time.Wednesday:
		return "周三"
	case time.Thursday:
		return "周四"
	case time.Friday:
		return "周五"
	case time.Saturday:
		return "周六"
	case time.Sunday:
		return "周日"
	default:
		return d.String()
	}
}
