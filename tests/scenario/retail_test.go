// 场景测试：零售门店兼职员工的周工时上限
package scenario

import (
	"strings"
	"testing"
	"time"

	"github.com/zhiban/zhiban/pkg/model"
	"github.com/zhiban/zhiban/pkg/scheduler/validator"
)

func TestPartTimerWeeklyHourLimit(t *testing.T) {
	cashierRole := &model.Role{BaseModel: model.NewBaseModel(), Name: "收银员"}

	// 兼职每周最多 20 小时
	partTimer := &model.Employee{
		BaseModel:       model.NewBaseModel(),
		Name:            "兼职学生",
		Active:          true,
		MaxHoursPerDay:  8,
		MaxHoursPerWeek: 20,
		MinRestHours:    10,
		AvailableDays: []time.Weekday{
			time.Monday, time.Wednesday, time.Friday, time.Saturday,
		},
	}

	mkShift := func(date string) *model.Shift {
		return &model.Shift{
			BaseModel:         model.NewBaseModel(),
			Date:              date,
			StartTime:         "12:00",
			EndTime:           "18:00",
			RoleID:            cashierRole.ID,
			Type:              model.ShiftAfternoon,
			RequiredEmployees: 1,
			MaxEmployees:      1,
		}
	}
	// 周一、周三各 6 小时
	monday := mkShift("2026-03-02")
	wednesday := mkShift("2026-03-04")
	friday := mkShift("2026-03-06")

	s := model.NewSchedule("门店周排班", "2026-03-02", "2026-03-08")
	s.SetEmployees([]*model.Employee{partTimer})
	s.SetRoles([]*model.Role{cashierRole})
	s.SetShifts([]*model.Shift{monday, wednesday, friday})

	for _, sh := range []*model.Shift{monday, wednesday} {
		if err := s.CommitAssignment(sh.ID, partTimer.ID); err != nil {
			t.Fatalf("预置分配失败: %v", err)
		}
	}

	// 已有 12 小时，再加 6 小时 = 18 仍在限内
	v := validator.New()
	res := v.Validate(s, partTimer.ID, friday.ID)
	if !res.Success {
		t.Fatalf("18 小时未超 20 小时上限: %v", res.Violations)
	}

	// 收紧为自定义约束 15 小时后应被拦下
	s.SetConstraints([]*model.WorkConstraint{{
		BaseModel:   model.NewBaseModel(),
		EmployeeID:  partTimer.ID,
		Type:        model.ConstraintMaxHoursPerWeek,
		Value:       15,
		Description: "考试周减班",
		Active:      true,
	}})

	res = v.Validate(s, partTimer.ID, friday.ID)
	if res.Success {
		t.Fatal("自定义周上限 15 小时应拦截第 18 小时")
	}
	found := false
	for _, viol := range res.Violations {
		if strings.Contains(viol, "自定义约束") && strings.Contains(viol, "15.0") {
			found = true
		}
	}
	if !found {
		t.Errorf("违规信息应指明自定义约束来源: %v", res.Violations)
	}
}
