// Package optimizer 提供贪心排班优化算法
package optimizer

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/zhiban/zhiban/pkg/logger"
	"github.com/zhiban/zhiban/pkg/model"
	"github.com/zhiban/zhiban/pkg/scheduler/validator"
)

// Weights 候选人评分与方案评分的权重配置
type Weights struct {
	Skill        float64 `yaml:"skill" json:"skill"`                 // 技能匹配权重
	Preference   float64 `yaml:"preference" json:"preference"`       // 班次偏好权重
	Workload     float64 `yaml:"workload" json:"workload"`           // 工作量均衡权重
	NonPreferred float64 `yaml:"non_preferred" json:"non_preferred"` // 非偏好班次的偏好得分
	FillRate     float64 `yaml:"fill_rate" json:"fill_rate"`         // 方案评分中填充率权重
	Quality      float64 `yaml:"quality" json:"quality"`             // 方案评分中分配质量权重
}

// DefaultWeights 返回默认评分权重
func DefaultWeights() *Weights {
	return &Weights{
		Skill:        0.5,
		Preference:   0.2,
		Workload:     0.3,
		NonPreferred: 0.4,
		FillRate:     0.7,
		Quality:      0.3,
	}
}

// Optimizer 贪心排班优化器
// 按优先级逐班次填充，每个空缺选择当前可行候选人中得分最高者。
// 算法是确定性的：相同输入产生相同分配序列
type Optimizer struct {
	validator *validator.Validator
	weights   *Weights
	log       *logger.SchedulerLogger
}

// New 创建优化器
func New(v *validator.Validator, weights *Weights) *Optimizer {
	if v == nil {
		v = validator.New()
	}
	if weights == nil {
		weights = DefaultWeights()
	}
	return &Optimizer{
		validator: v,
		weights:   weights,
		log:       logger.NewSchedulerLogger(),
	}
}

// Optimize 对排班计划执行贪心填充
// maxIterations 限制分配提交总次数，ctx 超时或取消视为预算耗尽，
// 两种情况都返回已完成的部分结果而非错误
func (o *Optimizer) Optimize(ctx context.Context, s *model.Schedule, maxIterations int) *model.OptimizationResult {
	start := time.Now()
	result := &model.OptimizationResult{}

	o.log.StartOptimize(s.ID.String(), len(s.Employees), len(s.Shifts), maxIterations)

	iterations := 0
	budgetExhausted := false
	violationSet := make(map[string]struct{})

	for _, shiftID := range s.SortedShiftIDs() {
		if budgetExhausted {
			break
		}
		shift := s.Shift(shiftID)

		for len(shift.AssignedEmployees) < shift.RequiredEmployees {
			select {
			case <-ctx.Done():
				budgetExhausted = true
			default:
			}
			if budgetExhausted || (maxIterations > 0 && iterations >= maxIterations) {
				budgetExhausted = true
				break
			}

			best, violations := o.bestCandidate(s, shift)
			if best == nil {
				// 当前没有可行候选人，记录原因后放弃该班次剩余空缺
				for _, v := range violations {
					violationSet[v] = struct{}{}
				}
				break
			}

			if err := s.CommitAssignment(shift.ID, best.EmployeeID); err != nil {
				violationSet[err.Error()] = struct{}{}
				break
			}
			iterations++
			result.AssignmentsMade++
		}

		if len(shift.AssignedEmployees) < shift.RequiredEmployees {
			o.log.ShiftUnassigned(shift.ID.String(), shift.RequiredEmployees-len(shift.AssignedEmployees))
			result.UnassignedShifts = append(result.UnassignedShifts, shift.ID)
		}
	}

	// 预算耗尽时剩余未处理的班次也要计入未满编清单
	if budgetExhausted {
		seen := make(map[uuid.UUID]struct{}, len(result.UnassignedShifts))
		for _, id := range result.UnassignedShifts {
			seen[id] = struct{}{}
		}
		for _, shiftID := range s.SortedShiftIDs() {
			shift := s.Shift(shiftID)
			if _, ok := seen[shiftID]; ok {
				continue
			}
			if len(shift.AssignedEmployees) < shift.RequiredEmployees {
				result.UnassignedShifts = append(result.UnassignedShifts, shiftID)
			}
		}
	}

	for v := range violationSet {
		result.ConstraintViolations = append(result.ConstraintViolations, v)
	}
	sort.Strings(result.ConstraintViolations)

	result.Iterations = iterations
	result.Success = len(result.UnassignedShifts) == 0
	result.OptimizationScore = o.scoreSchedule(s)
	result.ExecutionTime = time.Since(start)
	if result.Success {
		result.Message = fmt.Sprintf("全部班次满编，共分配 %d 人次", result.AssignmentsMade)
	} else {
		result.Message = fmt.Sprintf("完成 %d 人次分配，%d 个班次未满编", result.AssignmentsMade, len(result.UnassignedShifts))
	}

	o.log.OptimizeComplete(s.ID.String(), result.ExecutionTime, result.OptimizationScore, len(result.UnassignedShifts))
	return result
}

// FindCandidates 返回某班次的可行候选人排名
// 每个候选人先通过完整约束校验，不可行者直接剔除。
// limit <= 0 表示不限数量
func (o *Optimizer) FindCandidates(s *model.Schedule, shiftID uuid.UUID, limit int) []*model.CandidateScore {
	shift := s.Shift(shiftID)
	if shift == nil {
		return nil
	}

	candidates := make([]*model.CandidateScore, 0, len(s.Employees))
	for _, emp := range s.Employees {
		if shift.HasEmployee(emp.ID) {
			continue
		}
		res := o.validator.Validate(s, emp.ID, shift.ID)
		if !res.Success {
			continue
		}
		candidates = append(candidates, o.scoreCandidate(s, emp, shift))
	}

	sortCandidates(candidates)
	if limit > 0 && len(candidates) > limit {
		candidates = candidates[:limit]
	}
	return candidates
}

// bestCandidate 评估全部员工，返回得分最高的可行候选人。
// 同时返回不可行候选人的约束违规，供未满编时归因
func (o *Optimizer) bestCandidate(s *model.Schedule, shift *model.Shift) (*model.CandidateScore, []string) {
	var best *model.CandidateScore
	var violations []string

	for _, emp := range s.Employees {
		if shift.HasEmployee(emp.ID) {
			continue
		}

		res := o.validator.Validate(s, emp.ID, shift.ID)
		if !res.Success {
			violations = append(violations, res.Violations...)
			continue
		}

		score := o.scoreCandidate(s, emp, shift)
		if best == nil || betterCandidate(score, best) {
			best = score
		}
	}
	return best, violations
}

// scoreCandidate 计算候选人三维得分
func (o *Optimizer) scoreCandidate(s *model.Schedule, emp *model.Employee, shift *model.Shift) *model.CandidateScore {
	score := &model.CandidateScore{
		EmployeeID:      emp.ID,
		SkillMatchScore: o.skillScore(s, emp, shift),
		PreferenceScore: o.preferenceScore(emp, shift),
		WorkloadScore:   o.workloadScore(s, emp),
	}
	score.TotalScore = o.weights.Skill*score.SkillMatchScore +
		o.weights.Preference*score.PreferenceScore +
		o.weights.Workload*score.WorkloadScore
	return score
}

// skillScore 技能匹配得分
// 基础分为满足的必需技能比例，超出要求的技能等级余量提供少量加分
func (o *Optimizer) skillScore(s *model.Schedule, emp *model.Employee, shift *model.Shift) float64 {
	role := s.Role(shift.RoleID)
	if role == nil || len(role.RequiredSkills) == 0 {
		return 1.0
	}

	met := 0
	var marginSum float64
	for skill, required := range role.RequiredSkills {
		held, ok := emp.SkillLevelOf(skill)
		if ok && held >= required {
			met++
			marginSum += float64(held - required)
		}
	}
	n := float64(len(role.RequiredSkills))
	avgMargin := marginSum / n
	// 等级余量最多 3 级（初级到专家），归一化到 [0,1]
	return 0.75*(float64(met)/n) + 0.25*(avgMargin/3.0)
}

// preferenceScore 班次类型偏好得分
func (o *Optimizer) preferenceScore(emp *model.Employee, shift *model.Shift) float64 {
	if emp.PrefersShiftType(shift.Type) {
		return 1.0
	}
	return o.weights.NonPreferred
}

// workloadScore 工作量均衡得分，已分配时间越少得分越高
func (o *Optimizer) workloadScore(s *model.Schedule, emp *model.Employee) float64 {
	if emp.MaxHoursPerWeek <= 0 {
		return 1.0
	}
	utilization := s.AssignedHoursTotal(emp.ID) / emp.MaxHoursPerWeek
	if utilization > 1.0 {
		utilization = 1.0
	}
	return 1.0 - utilization
}

// scoreSchedule 计算整体方案得分：填充率与分配质量的加权和
func (o *Optimizer) scoreSchedule(s *model.Schedule) float64 {
	if len(s.Shifts) == 0 {
		return 0
	}

	var requiredTotal, filledTotal int
	var qualitySum float64
	var qualityCount int

	for _, shift := range s.Shifts {
		requiredTotal += shift.RequiredEmployees
		filled := len(shift.AssignedEmployees)
		if filled > shift.RequiredEmployees {
			filled = shift.RequiredEmployees
		}
		filledTotal += filled

		for _, empID := range shift.AssignedEmployees {
			emp := s.Employee(empID)
			if emp == nil {
				continue
			}
			qualitySum += o.scoreCandidate(s, emp, shift).TotalScore
			qualityCount++
		}
	}

	fillRate := 1.0
	if requiredTotal > 0 {
		fillRate = float64(filledTotal) / float64(requiredTotal)
	}
	quality := 0.0
	if qualityCount > 0 {
		quality = qualitySum / float64(qualityCount)
	}
	return o.weights.FillRate*fillRate + o.weights.Quality*quality
}

// betterCandidate 判断 a 是否优于 b，得分相同时按员工ID字典序保证确定性
func betterCandidate(a, b *model.CandidateScore) bool {
	if a.TotalScore != b.TotalScore {
		return a.TotalScore > b.TotalScore
	}
	return a.EmployeeID.String() < b.EmployeeID.String()
}

// sortCandidates 按得分降序排序，平局按员工ID字典序
func sortCandidates(candidates []*model.CandidateScore) {
	sort.Slice(candidates, func(i, j int) bool {
		return betterCandidate(candidates[i], candidates[j])
	})
}
