// Package model 定义排班约束引擎的核心数据模型
package model

import (
	"time"

	"github.com/google/uuid"
)

// ShiftAssignmentResult 单次分配校验的结果
// Violations 为阻断性违规（任意一条即 Success=false），
// Warnings 为提示性信息，不影响判定
type ShiftAssignmentResult struct {
	Success    bool      `json:"success"`
	ShiftID    uuid.UUID `json:"shift_id"`
	EmployeeID uuid.UUID `json:"employee_id"`
	Message    string    `json:"message"`
	Violations []string  `json:"violations,omitempty"`
	Warnings   []string  `json:"warnings,omitempty"`
}

// CandidateScore 候选员工的评分明细
type CandidateScore struct {
	EmployeeID      uuid.UUID `json:"employee_id"`
	SkillMatchScore float64   `json:"skill_match_score"`
	PreferenceScore float64   `json:"preference_score"`
	WorkloadScore   float64   `json:"workload_score"`
	TotalScore      float64   `json:"total_score"`
}

// OptimizationResult 一次完整排班运行的结果
// 岗位排不满不是错误：UnassignedShifts 如实列出缺员班次，
// 已提交的分配依然有效可用
type OptimizationResult struct {
	Success              bool          `json:"success"` // 所有班次均满员
	Message              string        `json:"message,omitempty"`
	ExecutionTime        time.Duration `json:"execution_time"`
	OptimizationScore    float64       `json:"optimization_score"` // 0-1
	AssignmentsMade      int           `json:"assignments_made"`
	Iterations           int           `json:"iterations"`
	UnassignedShifts     []uuid.UUID   `json:"unassigned_shifts,omitempty"`
	ConstraintViolations []string      `json:"constraint_violations,omitempty"`
}
