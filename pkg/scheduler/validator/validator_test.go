package validator

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/zhiban/zhiban/pkg/model"
)

// 构造一个含单员工单岗位的基础排班计划，各用例在其上叠加场景
func newFixture() (*model.Schedule, *model.Employee, *model.Role) {
	emp := &model.Employee{
		BaseModel:       model.NewBaseModel(),
		Name:            "陈静",
		Active:          true,
		Skills:          map[string]model.SkillLevel{"cashier": model.SkillIntermediate},
		MaxHoursPerDay:  8,
		MaxHoursPerWeek: 40,
		MinRestHours:    12,
		AvailableDays: []time.Weekday{
			time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday,
		},
		PreferredShiftTypes: []model.ShiftType{model.ShiftMorning},
	}

	role := &model.Role{
		BaseModel:      model.NewBaseModel(),
		Name:           "收银员",
		RequiredSkills: map[string]model.SkillLevel{"cashier": model.SkillIntermediate},
	}

	s := model.NewSchedule("校验测试", "2026-03-02", "2026-03-08")
	s.SetEmployees([]*model.Employee{emp})
	s.SetRoles([]*model.Role{role})
	return s, emp, role
}

func addShift(s *model.Schedule, role *model.Role, date, start, end string, typ model.ShiftType) *model.Shift {
	sh := &model.Shift{
		BaseModel:         model.NewBaseModel(),
		Date:              date,
		StartTime:         start,
		EndTime:           end,
		RoleID:            role.ID,
		Type:              typ,
		RequiredEmployees: 1,
		MaxEmployees:      2,
	}
	s.SetShifts(append(s.Shifts, sh))
	return sh
}

func hasViolation(result *model.ShiftAssignmentResult, substr string) bool {
	for _, v := range result.Violations {
		if strings.Contains(v, substr) {
			return true
		}
	}
	return false
}

func hasWarning(result *model.ShiftAssignmentResult, substr string) bool {
	for _, w := range result.Warnings {
		if strings.Contains(w, substr) {
			return true
		}
	}
	return false
}

func TestValidate_Feasible(t *testing.T) {
	s, emp, role := newFixture()
	sh := addShift(s, role, "2026-03-02", "09:00", "17:00", model.ShiftMorning)

	v := New()
	result := v.Validate(s, emp.ID, sh.ID)

	if !result.Success {
		t.Fatalf("应当可行, violations=%v", result.Violations)
	}
	if result.Message != "分配可行" {
		t.Errorf("Message = %q", result.Message)
	}
	if len(result.Warnings) != 0 {
		t.Errorf("不应有提示: %v", result.Warnings)
	}
}

func TestValidate_UnknownIDs(t *testing.T) {
	s, emp, role := newFixture()
	sh := addShift(s, role, "2026-03-02", "09:00", "17:00", model.ShiftMorning)

	v := New()

	result := v.Validate(s, uuid.New(), sh.ID)
	if result.Success || !hasViolation(result, "不在排班计划中") {
		t.Errorf("未知员工应返回单条违规: %v", result.Violations)
	}

	result = v.Validate(s, emp.ID, uuid.New())
	if result.Success || !hasViolation(result, "不在排班计划中") {
		t.Errorf("未知班次应返回单条违规: %v", result.Violations)
	}
}

func TestValidate_Capacity(t *testing.T) {
	s, emp, role := newFixture()
	sh := addShift(s, role, "2026-03-02", "09:00", "17:00", model.ShiftMorning)
	sh.MaxEmployees = 1

	// 占满班次
	filler := &model.Employee{BaseModel: model.NewBaseModel(), Name: "占位", Active: true}
	s.SetEmployees([]*model.Employee{emp, filler})
	if err := s.CommitAssignment(sh.ID, filler.ID); err != nil {
		t.Fatalf("预置分配失败: %v", err)
	}

	v := New()
	result := v.Validate(s, emp.ID, sh.ID)
	if result.Success || !hasViolation(result, "班次已满") {
		t.Errorf("满员班次应违规: %v", result.Violations)
	}
}

func TestValidate_Availability(t *testing.T) {
	v := New()

	t.Run("停用员工", func(t *testing.T) {
		s, emp, role := newFixture()
		sh := addShift(s, role, "2026-03-02", "09:00", "17:00", model.ShiftMorning)
		emp.Active = false

		result := v.Validate(s, emp.ID, sh.ID)
		if !hasViolation(result, "已停用") {
			t.Errorf("violations=%v", result.Violations)
		}
	})

	t.Run("星期几不可排班", func(t *testing.T) {
		s, emp, role := newFixture()
		// 2026-03-07 是周六
		sh := addShift(s, role, "2026-03-07", "09:00", "17:00", model.ShiftMorning)

		result := v.Validate(s, emp.ID, sh.ID)
		if !hasViolation(result, "周六不可排班") {
			t.Errorf("violations=%v", result.Violations)
		}
	})

	t.Run("指定日期不可用", func(t *testing.T) {
		s, emp, role := newFixture()
		sh := addShift(s, role, "2026-03-03", "09:00", "17:00", model.ShiftMorning)
		emp.UnavailableDates = []string{"2026-03-03"}

		result := v.Validate(s, emp.ID, sh.ID)
		if !hasViolation(result, "标记为不可用") {
			t.Errorf("violations=%v", result.Violations)
		}
	})

	t.Run("班次类型不在偏好只提示", func(t *testing.T) {
		s, emp, role := newFixture()
		sh := addShift(s, role, "2026-03-02", "14:00", "22:00", model.ShiftEvening)

		result := v.Validate(s, emp.ID, sh.ID)
		if !result.Success {
			t.Fatalf("偏好不匹配不应阻断: %v", result.Violations)
		}
		if !hasWarning(result, "偏好列表") {
			t.Errorf("warnings=%v", result.Warnings)
		}
	})
}

func TestValidate_Qualification(t *testing.T) {
	v := New()

	t.Run("悬空岗位引用", func(t *testing.T) {
		s, emp, role := newFixture()
		sh := addShift(s, role, "2026-03-02", "09:00", "17:00", model.ShiftMorning)
		sh.RoleID = uuid.New()
		s.Reindex()

		result := v.Validate(s, emp.ID, sh.ID)
		if !hasViolation(result, "引用的岗位") {
			t.Errorf("violations=%v", result.Violations)
		}
	})

	t.Run("技能等级不足", func(t *testing.T) {
		s, emp, role := newFixture()
		role.RequiredSkills["cashier"] = model.SkillExpert
		sh := addShift(s, role, "2026-03-02", "09:00", "17:00", model.ShiftMorning)

		result := v.Validate(s, emp.ID, sh.ID)
		if !hasViolation(result, "仅为 intermediate 级") {
			t.Errorf("violations=%v", result.Violations)
		}
	})

	t.Run("完全不具备技能", func(t *testing.T) {
		s, emp, role := newFixture()
		role.RequiredSkills["forklift"] = model.SkillBeginner
		sh := addShift(s, role, "2026-03-02", "09:00", "17:00", model.ShiftMorning)

		result := v.Validate(s, emp.ID, sh.ID)
		if !hasViolation(result, "不具备该技能") {
			t.Errorf("violations=%v", result.Violations)
		}
	})

	t.Run("缺少证书", func(t *testing.T) {
		s, emp, role := newFixture()
		role.RequiredCertifications = []string{"食品安全证"}
		sh := addShift(s, role, "2026-03-02", "09:00", "17:00", model.ShiftMorning)

		result := v.Validate(s, emp.ID, sh.ID)
		if !hasViolation(result, "缺少岗位") || !hasViolation(result, "食品安全证") {
			t.Errorf("violations=%v", result.Violations)
		}
	})
}

func TestValidate_HourLimits(t *testing.T) {
	v := New()

	t.Run("每日工时超限", func(t *testing.T) {
		s, emp, role := newFixture()
		existing := addShift(s, role, "2026-03-02", "06:00", "12:00", model.ShiftMorning)
		if err := s.CommitAssignment(existing.ID, emp.ID); err != nil {
			t.Fatalf("预置分配失败: %v", err)
		}
		// 已有6小时，再加4小时超过8小时上限
		candidate := addShift(s, role, "2026-03-02", "18:00", "22:00", model.ShiftEvening)

		result := v.Validate(s, emp.ID, candidate.ID)
		if !hasViolation(result, "超过限制 8.0 小时") {
			t.Errorf("violations=%v", result.Violations)
		}
	})

	t.Run("每周工时超限", func(t *testing.T) {
		s, emp, role := newFixture()
		emp.MaxHoursPerDay = 24 // 放开日限以单测周限
		emp.MinRestHours = 0
		// 周一到周五每天8小时共40小时
		for _, date := range []string{"2026-03-02", "2026-03-03", "2026-03-04", "2026-03-05", "2026-03-06"} {
			sh := addShift(s, role, date, "09:00", "17:00", model.ShiftMorning)
			if err := s.CommitAssignment(sh.ID, emp.ID); err != nil {
				t.Fatalf("预置分配失败: %v", err)
			}
		}
		candidate := addShift(s, role, "2026-03-06", "18:00", "20:00", model.ShiftEvening)

		result := v.Validate(s, emp.ID, candidate.ID)
		if !hasViolation(result, "所在周的工时将达 42.0 小时") {
			t.Errorf("violations=%v", result.Violations)
		}
	})

	t.Run("下周工时独立计算", func(t *testing.T) {
		s, emp, role := newFixture()
		emp.MinRestHours = 0
		s.EndDate = "2026-03-15"
		for _, date := range []string{"2026-03-02", "2026-03-03", "2026-03-04", "2026-03-05", "2026-03-06"} {
			sh := addShift(s, role, date, "09:00", "17:00", model.ShiftMorning)
			if err := s.CommitAssignment(sh.ID, emp.ID); err != nil {
				t.Fatalf("预置分配失败: %v", err)
			}
		}
		// 下周一的班次不受上周40小时影响
		candidate := addShift(s, role, "2026-03-09", "09:00", "17:00", model.ShiftMorning)

		result := v.Validate(s, emp.ID, candidate.ID)
		if !result.Success {
			t.Errorf("下周班次应可行: %v", result.Violations)
		}
	})
}

func TestValidate_RestSpacing(t *testing.T) {
	v := New()

	t.Run("休息不足", func(t *testing.T) {
		s, emp, role := newFixture()
		existing := addShift(s, role, "2026-03-02", "09:00", "17:00", model.ShiftMorning)
		if err := s.CommitAssignment(existing.ID, emp.ID); err != nil {
			t.Fatalf("预置分配失败: %v", err)
		}
		// 17:00结束，21:00开始，仅4小时 < 12小时
		candidate := addShift(s, role, "2026-03-02", "21:00", "23:00", model.ShiftEvening)
		emp.MaxHoursPerDay = 24

		result := v.Validate(s, emp.ID, candidate.ID)
		if !hasViolation(result, "间隔仅 4.0 小时") {
			t.Errorf("violations=%v", result.Violations)
		}
	})

	t.Run("候选班次在前的间隔", func(t *testing.T) {
		s, emp, role := newFixture()
		existing := addShift(s, role, "2026-03-03", "09:00", "17:00", model.ShiftMorning)
		if err := s.CommitAssignment(existing.ID, emp.ID); err != nil {
			t.Fatalf("预置分配失败: %v", err)
		}
		// 前一天22:00-02:00结束，到次日09:00仅7小时
		candidate := addShift(s, role, "2026-03-02", "22:00", "02:00", model.ShiftNight)
		emp.PreferredShiftTypes = append(emp.PreferredShiftTypes, model.ShiftNight)

		result := v.Validate(s, emp.ID, candidate.ID)
		if !hasViolation(result, "间隔仅 7.0 小时") {
			t.Errorf("violations=%v", result.Violations)
		}
	})

	t.Run("用餐休息提示", func(t *testing.T) {
		s, emp, role := newFixture()
		emp.RequiresMealBreak = true
		sh := addShift(s, role, "2026-03-02", "09:00", "17:00", model.ShiftMorning)

		result := v.Validate(s, emp.ID, sh.ID)
		if !result.Success {
			t.Fatalf("用餐休息只提示不阻断: %v", result.Violations)
		}
		if !hasWarning(result, "用餐休息") {
			t.Errorf("warnings=%v", result.Warnings)
		}
	})
}

func TestValidate_Overlap(t *testing.T) {
	s, emp, role := newFixture()
	emp.MaxHoursPerDay = 24
	emp.MinRestHours = 0
	existing := addShift(s, role, "2026-03-02", "09:00", "17:00", model.ShiftMorning)
	if err := s.CommitAssignment(existing.ID, emp.ID); err != nil {
		t.Fatalf("预置分配失败: %v", err)
	}
	candidate := addShift(s, role, "2026-03-02", "16:00", "20:00", model.ShiftEvening)

	v := New()
	result := v.Validate(s, emp.ID, candidate.ID)
	if !hasViolation(result, "时间重叠") {
		t.Errorf("violations=%v", result.Violations)
	}
}

func TestValidate_CustomConstraints(t *testing.T) {
	v := New()

	t.Run("自定义每日工时收紧", func(t *testing.T) {
		s, emp, role := newFixture()
		sh := addShift(s, role, "2026-03-02", "09:00", "17:00", model.ShiftMorning)
		s.SetConstraints([]*model.WorkConstraint{{
			BaseModel:  model.NewBaseModel(),
			EmployeeID: emp.ID,
			Type:       model.ConstraintMaxHoursPerDay,
			Value:      6,
			Active:     true,
		}})

		result := v.Validate(s, emp.ID, sh.ID)
		if !hasViolation(result, "超过自定义约束限制 6.0 小时") {
			t.Errorf("violations=%v", result.Violations)
		}
	})

	t.Run("过期约束不生效", func(t *testing.T) {
		s, emp, role := newFixture()
		sh := addShift(s, role, "2026-03-02", "09:00", "17:00", model.ShiftMorning)
		s.SetConstraints([]*model.WorkConstraint{{
			BaseModel:  model.NewBaseModel(),
			EmployeeID: emp.ID,
			Type:       model.ConstraintMaxHoursPerDay,
			Value:      6,
			ExpiresOn:  "2026-03-01",
			Active:     true,
		}})

		result := v.Validate(s, emp.ID, sh.ID)
		if !result.Success {
			t.Errorf("过期约束不应生效: %v", result.Violations)
		}
	})

	t.Run("最大连续工作天数", func(t *testing.T) {
		s, emp, role := newFixture()
		emp.MinRestHours = 0
		for _, date := range []string{"2026-03-02", "2026-03-03", "2026-03-04"} {
			sh := addShift(s, role, date, "09:00", "13:00", model.ShiftMorning)
			if err := s.CommitAssignment(sh.ID, emp.ID); err != nil {
				t.Fatalf("预置分配失败: %v", err)
			}
		}
		candidate := addShift(s, role, "2026-03-05", "09:00", "13:00", model.ShiftMorning)
		s.SetConstraints([]*model.WorkConstraint{{
			BaseModel:  model.NewBaseModel(),
			EmployeeID: emp.ID,
			Type:       model.ConstraintMaxConsecutiveDays,
			Value:      3,
			Active:     true,
		}})

		result := v.Validate(s, emp.ID, candidate.ID)
		if !hasViolation(result, "将连续工作 4 天") {
			t.Errorf("violations=%v", result.Violations)
		}
	})

	t.Run("未知约束类型", func(t *testing.T) {
		s, emp, role := newFixture()
		sh := addShift(s, role, "2026-03-02", "09:00", "17:00", model.ShiftMorning)
		s.SetConstraints([]*model.WorkConstraint{{
			BaseModel:  model.NewBaseModel(),
			EmployeeID: emp.ID,
			Type:       model.WorkConstraintType("lunar_phase"),
			Value:      1,
			Active:     true,
		}})

		result := v.Validate(s, emp.ID, sh.ID)
		if !hasViolation(result, "未知的自定义约束类型") {
			t.Errorf("violations=%v", result.Violations)
		}
	})
}

// 所有检查全部执行，每个失败的检查都要出现在违规列表里
func TestValidate_AllChecksRun(t *testing.T) {
	s, emp, role := newFixture()
	emp.Active = false
	role.RequiredCertifications = []string{"上岗证"}
	// 周六 + 停用 + 缺证书，三类违规并存
	sh := addShift(s, role, "2026-03-07", "09:00", "17:00", model.ShiftMorning)
	emp.UnavailableDates = []string{"2026-03-07"}

	v := New()
	result := v.Validate(s, emp.ID, sh.ID)

	if result.Success {
		t.Fatal("应当不可行")
	}
	if len(result.Violations) < 3 {
		t.Errorf("应收集全部违规而非短路, got %d: %v", len(result.Violations), result.Violations)
	}
	if !strings.Contains(result.Message, "条违规") {
		t.Errorf("Message = %q", result.Message)
	}
}

// 校验是只读操作，连续两次调用结果一致且不改变排班状态
func TestValidate_Idempotent(t *testing.T) {
	s, emp, role := newFixture()
	sh := addShift(s, role, "2026-03-02", "09:00", "17:00", model.ShiftMorning)

	v := New()
	first := v.Validate(s, emp.ID, sh.ID)
	second := v.Validate(s, emp.ID, sh.ID)

	if first.Success != second.Success || len(first.Violations) != len(second.Violations) {
		t.Error("重复校验结果不一致")
	}
	if len(sh.AssignedEmployees) != 0 {
		t.Error("校验不得修改分配状态")
	}
}

// 已提交的配对复查必须依旧可行：自身占用的名额和工时不重复计算
func TestValidate_CommittedPairing(t *testing.T) {
	s, emp, role := newFixture()
	sh := addShift(s, role, "2026-03-02", "09:00", "17:00", model.ShiftMorning)
	sh.MaxEmployees = 1 // 满员状态下复查自身

	if err := s.CommitAssignment(sh.ID, emp.ID); err != nil {
		t.Fatalf("提交分配失败: %v", err)
	}

	v := New()
	result := v.Validate(s, emp.ID, sh.ID)

	if !result.Success {
		t.Fatalf("已提交配对复查应当可行, violations=%v", result.Violations)
	}
	if hasViolation(result, "班次已满") {
		t.Error("自身占用的名额不应计为班次已满")
	}
	if hasViolation(result, "超过限制") {
		t.Error("自身班次时长不应重复计入工时")
	}
}

// 他人复查满员班次时容量违规照常报告
func TestValidate_CommittedPairing_OtherStillBlocked(t *testing.T) {
	s, emp, role := newFixture()
	other := &model.Employee{
		BaseModel:       model.NewBaseModel(),
		Name:            "李明",
		Active:          true,
		Skills:          map[string]model.SkillLevel{"cashier": model.SkillIntermediate},
		MaxHoursPerDay:  8,
		MaxHoursPerWeek: 40,
		AvailableDays: []time.Weekday{
			time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday,
		},
		PreferredShiftTypes: []model.ShiftType{model.ShiftMorning},
	}
	s.SetEmployees([]*model.Employee{emp, other})

	sh := addShift(s, role, "2026-03-02", "09:00", "17:00", model.ShiftMorning)
	sh.MaxEmployees = 1

	if err := s.CommitAssignment(sh.ID, emp.ID); err != nil {
		t.Fatalf("提交分配失败: %v", err)
	}

	v := New()
	result := v.Validate(s, other.ID, sh.ID)

	if result.Success {
		t.Fatal("未占用名额的员工应受容量限制")
	}
	if !hasViolation(result, "班次已满") {
		t.Errorf("应报告班次已满, violations=%v", result.Violations)
	}
}
