// Package swap 提供换班推荐功能
package swap

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/zhiban/zhiban/pkg/errors"
	"github.com/zhiban/zhiban/pkg/model"
	"github.com/zhiban/zhiban/pkg/scheduler/optimizer"
	"github.com/zhiban/zhiban/pkg/scheduler/validator"
)

// Recommendation 换班推荐
type Recommendation struct {
	ShiftID        uuid.UUID `json:"shift_id"`
	FromEmployeeID uuid.UUID `json:"from_employee_id"`
	ToEmployeeID   uuid.UUID `json:"to_employee_id"`
	ToEmployeeName string    `json:"to_employee_name"`
	Score          float64   `json:"score"`
	Reason         string    `json:"reason"`
	Rank           int       `json:"rank"`
}

// Recommender 换班推荐器
// 通过撤销-校验-恢复的模拟判断接替是否可行，不会遗留对排班计划的修改
type Recommender struct {
	validator *validator.Validator
	optimizer *optimizer.Optimizer
}

// NewRecommender 创建换班推荐器
func NewRecommender(v *validator.Validator, o *optimizer.Optimizer) *Recommender {
	if v == nil {
		v = validator.New()
	}
	if o == nil {
		o = optimizer.New(v, nil)
	}
	return &Recommender{validator: v, optimizer: o}
}

// RecommendTakeOver 为某员工的某班次推荐可行的接替者
// 未知班次或员工未持有该班次按输入错误返回。limit <= 0 表示不限数量
func (r *Recommender) RecommendTakeOver(s *model.Schedule, shiftID, fromEmployeeID uuid.UUID, limit int) ([]Recommendation, error) {
	shift := s.Shift(shiftID)
	if shift == nil {
		return nil, errors.NotFound("班次", shiftID.String())
	}
	if !shift.HasEmployee(fromEmployeeID) {
		return nil, errors.InvalidInput("from_employee_id",
			fmt.Sprintf("员工 '%s' 未分配到该班次", fromEmployeeID))
	}

	// 先撤销原分配再逐一校验候选人，结束后恢复原状
	if err := s.RevokeAssignment(shiftID, fromEmployeeID); err != nil {
		return nil, err
	}
	defer func() {
		_ = s.CommitAssignment(shiftID, fromEmployeeID)
	}()

	var recommendations []Recommendation
	for _, candidate := range r.optimizer.FindCandidates(s, shiftID, 0) {
		if candidate.EmployeeID == fromEmployeeID {
			continue
		}
		emp := s.Employee(candidate.EmployeeID)
		res := r.validator.Validate(s, candidate.EmployeeID, shiftID)

		recommendations = append(recommendations, Recommendation{
			ShiftID:        shiftID,
			FromEmployeeID: fromEmployeeID,
			ToEmployeeID:   candidate.EmployeeID,
			ToEmployeeName: emp.Name,
			Score:          candidate.TotalScore,
			Reason:         takeOverReason(res),
		})
	}

	if limit > 0 && len(recommendations) > limit {
		recommendations = recommendations[:limit]
	}
	for i := range recommendations {
		recommendations[i].Rank = i + 1
	}
	return recommendations, nil
}

// takeOverReason 根据校验结果生成推荐原因
func takeOverReason(res *model.ShiftAssignmentResult) string {
	if len(res.Warnings) == 0 {
		return "无约束冲突，可直接接替"
	}
	return "可接替，但有软性提醒: " + res.Warnings[0]
}
