// 端到端测试：一周餐厅排班从优化到审计的完整流程
package e2e

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/zhiban/zhiban/pkg/model"
	"github.com/zhiban/zhiban/pkg/scheduler/breaks"
	"github.com/zhiban/zhiban/pkg/scheduler/optimizer"
	schedvalidator "github.com/zhiban/zhiban/pkg/scheduler/validator"
	"github.com/zhiban/zhiban/pkg/stats"
	auditvalidator "github.com/zhiban/zhiban/pkg/validator"
)

// 固定种子生成ID，保证跨运行可复现
func seededID(seed byte) uuid.UUID {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte{seed})
}

func buildRestaurantWeek() *model.Schedule {
	weekdays := []time.Weekday{
		time.Monday, time.Tuesday, time.Wednesday, time.Thursday,
		time.Friday, time.Saturday, time.Sunday,
	}

	chef := &model.Role{
		BaseModel:      model.BaseModel{ID: seededID(1)},
		Name:           "厨师",
		RequiredSkills: map[string]model.SkillLevel{"cooking": model.SkillIntermediate},
	}
	waiter := &model.Role{
		BaseModel: model.BaseModel{ID: seededID(2)},
		Name:      "服务员",
	}

	mkEmployee := func(seed byte, name string, skills map[string]model.SkillLevel, prefs []model.ShiftType) *model.Employee {
		return &model.Employee{
			BaseModel:           model.BaseModel{ID: seededID(seed)},
			Name:                name,
			Active:              true,
			Skills:              skills,
			MaxHoursPerDay:      10,
			MaxHoursPerWeek:     40,
			MinRestHours:        10,
			AvailableDays:       weekdays,
			PreferredShiftTypes: prefs,
		}
	}

	employees := []*model.Employee{
		mkEmployee(10, "大厨", map[string]model.SkillLevel{"cooking": model.SkillExpert}, []model.ShiftType{model.ShiftMorning}),
		mkEmployee(11, "二厨", map[string]model.SkillLevel{"cooking": model.SkillIntermediate}, []model.ShiftType{model.ShiftEvening}),
		mkEmployee(12, "服务员甲", nil, []model.ShiftType{model.ShiftMorning}),
		mkEmployee(13, "服务员乙", nil, []model.ShiftType{model.ShiftEvening}),
		mkEmployee(14, "服务员丙", nil, nil),
	}

	var shifts []*model.Shift
	seed := byte(100)
	for day := 0; day < 7; day++ {
		date := time.Date(2026, 3, 2+day, 0, 0, 0, 0, time.UTC).Format("2006-01-02")

		shifts = append(shifts, &model.Shift{
			BaseModel:         model.BaseModel{ID: seededID(seed)},
			Date:              date,
			StartTime:         "10:00",
			EndTime:           "16:00",
			RoleID:            chef.ID,
			Type:              model.ShiftMorning,
			RequiredEmployees: 1,
			MaxEmployees:      1,
			Priority:          5,
		})
		seed++
		shifts = append(shifts, &model.Shift{
			BaseModel:         model.BaseModel{ID: seededID(seed)},
			Date:              date,
			StartTime:         "11:00",
			EndTime:           "16:00",
			RoleID:            waiter.ID,
			Type:              model.ShiftMorning,
			RequiredEmployees: 1,
			MaxEmployees:      2,
			Priority:          3,
		})
		seed++
	}

	s := model.NewSchedule("餐厅一周排班", "2026-03-02", "2026-03-08")
	s.SetEmployees(employees)
	s.SetRoles([]*model.Role{chef, waiter})
	s.SetShifts(shifts)
	return s
}

func TestFullScheduleLifecycle(t *testing.T) {
	s := buildRestaurantWeek()

	v := schedvalidator.New()
	o := optimizer.New(v, nil)

	result := o.Optimize(context.Background(), s, 10000)

	if result.AssignmentsMade == 0 {
		t.Fatal("优化应产生分配")
	}
	if result.OptimizationScore <= 0 || result.OptimizationScore > 1 {
		t.Errorf("OptimizationScore = %v", result.OptimizationScore)
	}

	// 不变式1：没有班次超过硬容量上限
	for _, sh := range s.Shifts {
		if len(sh.AssignedEmployees) > sh.MaxEmployees {
			t.Errorf("班次 %s %s 超过容量上限", sh.Date, sh.StartTime)
		}
	}

	// 不变式2：优化产出的每个分配在事后审计中都不构成冲突
	conflicts := auditvalidator.NewConflictDetector().DetectAll(s)
	if len(conflicts) != 0 {
		t.Errorf("优化结果不应含冲突: %+v", conflicts)
	}

	// 不变式3：已提交的配对直接复检均应可行
	for _, sh := range s.Shifts {
		for _, empID := range sh.AssignedEmployees {
			res := v.Validate(s, empID, sh.ID)
			if !res.Success {
				t.Errorf("已提交的分配复检失败: %v", res.Violations)
			}
		}
	}

	// 休息策略审计：6 小时厨师班触发工间与用餐休息，仍满足最低产出
	enforcer := breaks.NewEnforcer(nil)
	for _, emp := range s.Employees {
		if violations := enforcer.ValidateCompliance(s, emp.ID); len(violations) != 0 {
			t.Errorf("员工 %s 休息审计失败: %v", emp.Name, violations)
		}
	}

	// 统计口径与优化结果一致
	coverage := stats.NewCoverageAnalyzer().Analyze(s)
	if result.Success && coverage.OverallCoverage != 100 {
		t.Errorf("满编时覆盖率应为 100, got %v", coverage.OverallCoverage)
	}
	if !result.Success && len(coverage.Understaffed) != len(result.UnassignedShifts) {
		t.Errorf("缺员清单不一致: %d vs %d", len(coverage.Understaffed), len(result.UnassignedShifts))
	}

	fairness := stats.NewFairnessAnalyzer().Analyze(s)
	if fairness.OverallFairnessScore < 0 || fairness.OverallFairnessScore > 100 {
		t.Errorf("公平性评分越界: %v", fairness.OverallFairnessScore)
	}
}

func TestFullScheduleDeterminism(t *testing.T) {
	snapshot := func() map[uuid.UUID][]uuid.UUID {
		s := buildRestaurantWeek()
		o := optimizer.New(nil, nil)
		o.Optimize(context.Background(), s, 10000)

		assigned := make(map[uuid.UUID][]uuid.UUID, len(s.Shifts))
		for _, sh := range s.Shifts {
			assigned[sh.ID] = append([]uuid.UUID{}, sh.AssignedEmployees...)
		}
		return assigned
	}

	first := snapshot()
	for run := 0; run < 3; run++ {
		again := snapshot()
		if len(again) != len(first) {
			t.Fatal("班次数量不一致")
		}
		for shiftID, want := range first {
			got := again[shiftID]
			if len(got) != len(want) {
				t.Fatalf("班次 %s 分配人数不一致", shiftID)
			}
			for i := range want {
				if got[i] != want[i] {
					t.Fatal("相同输入必须产生相同的分配序列")
				}
			}
		}
	}
}
