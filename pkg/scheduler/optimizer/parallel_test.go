package optimizer

import (
	"context"
	"testing"

	"github.com/zhiban/zhiban/pkg/model"
)

func batchJob(name string) BatchJob {
	role := &model.Role{BaseModel: model.NewBaseModel(), Name: "通用岗"}
	s := model.NewSchedule(name, "2026-03-02", "2026-03-08")
	s.SetEmployees([]*model.Employee{newEmployee("甲"), newEmployee("乙")})
	s.SetRoles([]*model.Role{role})
	s.SetShifts([]*model.Shift{
		newShift(role.ID, "2026-03-02", "09:00", "17:00", 1),
		newShift(role.ID, "2026-03-03", "09:00", "17:00", 1),
	})
	return BatchJob{Schedule: s, MaxIterations: 100}
}

func TestRunBatch(t *testing.T) {
	o := New(nil, nil)
	runner := NewBatchRunner(o, 3)

	jobs := []BatchJob{batchJob("计划A"), batchJob("计划B"), batchJob("计划C"), batchJob("计划D")}
	results := runner.RunBatch(context.Background(), jobs)

	if len(results) != len(jobs) {
		t.Fatalf("len(results) = %d, want %d", len(results), len(jobs))
	}
	// 结果顺序与输入一致
	for i, r := range results {
		if r.Index != i {
			t.Errorf("results[%d].Index = %d", i, r.Index)
		}
		if r.ScheduleID != jobs[i].Schedule.ID.String() {
			t.Errorf("results[%d] 对应的计划ID不符", i)
		}
		if r.Result == nil || !r.Result.Success {
			t.Errorf("计划 %d 未能满编: %+v", i, r.Result)
		}
	}
}

func TestRunBatch_Empty(t *testing.T) {
	runner := NewBatchRunner(New(nil, nil), 0)
	if got := runner.RunBatch(context.Background(), nil); got != nil {
		t.Errorf("空任务列表应返回 nil, got %v", got)
	}
}
