// 场景测试：医院护士夜班后的最小休息间隔
package scenario

import (
	"strings"
	"testing"

	"github.com/zhiban/zhiban/pkg/model"
	"github.com/zhiban/zhiban/pkg/scheduler/validator"
)

func TestNurseRestAfterNightShift(t *testing.T) {
	nurseRole := &model.Role{
		BaseModel:              model.NewBaseModel(),
		Name:                   "值班护士",
		RequiredCertifications: []string{"护士执业证"},
	}

	nurse := &model.Employee{
		BaseModel:       model.NewBaseModel(),
		Name:            "夜班护士",
		Active:          true,
		Certifications:  []string{"护士执业证"},
		MaxHoursPerDay:  12,
		MaxHoursPerWeek: 48,
		MinRestHours:    12,
		AvailableDays:   allWeek(),
		PreferredShiftTypes: []model.ShiftType{
			model.ShiftNight, model.ShiftMorning,
		},
	}

	// 周一 22:00 - 周二 06:00 的跨日夜班
	nightShift := &model.Shift{
		BaseModel:         model.NewBaseModel(),
		Date:              "2026-03-02",
		StartTime:         "22:00",
		EndTime:           "06:00",
		RoleID:            nurseRole.ID,
		Type:              model.ShiftNight,
		RequiredEmployees: 1,
		MaxEmployees:      1,
	}
	// 周二 10:00 的早班，距夜班结束仅 4 小时
	morningShift := &model.Shift{
		BaseModel:         model.NewBaseModel(),
		Date:              "2026-03-03",
		StartTime:         "10:00",
		EndTime:           "16:00",
		RoleID:            nurseRole.ID,
		Type:              model.ShiftMorning,
		RequiredEmployees: 1,
		MaxEmployees:      1,
	}
	// 周二 20:00 的晚班，间隔 14 小时满足要求
	eveningShift := &model.Shift{
		BaseModel:         model.NewBaseModel(),
		Date:              "2026-03-03",
		StartTime:         "20:00",
		EndTime:           "23:00",
		RoleID:            nurseRole.ID,
		Type:              model.ShiftEvening,
		RequiredEmployees: 1,
		MaxEmployees:      1,
	}

	s := model.NewSchedule("病房排班", "2026-03-02", "2026-03-08")
	s.SetEmployees([]*model.Employee{nurse})
	s.SetRoles([]*model.Role{nurseRole})
	s.SetShifts([]*model.Shift{nightShift, morningShift, eveningShift})

	if err := s.CommitAssignment(nightShift.ID, nurse.ID); err != nil {
		t.Fatalf("预置分配失败: %v", err)
	}

	v := validator.New()

	// 跨日班次的结束时间按次日计算，间隔 4 小时 < 12 小时
	res := v.Validate(s, nurse.ID, morningShift.ID)
	if res.Success {
		t.Fatal("夜班后 4 小时的早班应被拦截")
	}
	found := false
	for _, viol := range res.Violations {
		if strings.Contains(viol, "间隔仅 4.0 小时") {
			found = true
		}
	}
	if !found {
		t.Errorf("违规信息应给出实际间隔: %v", res.Violations)
	}

	// 14 小时间隔的晚班可行
	res = v.Validate(s, nurse.ID, eveningShift.ID)
	if !res.Success {
		t.Errorf("14 小时间隔应当可行: %v", res.Violations)
	}
}
