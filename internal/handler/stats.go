package handler

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/zhiban/zhiban/internal/constraints"
	"github.com/zhiban/zhiban/internal/metrics"
	"github.com/zhiban/zhiban/pkg/errors"
	"github.com/zhiban/zhiban/pkg/scheduler/breaks"
	"github.com/zhiban/zhiban/pkg/stats"
	"github.com/zhiban/zhiban/pkg/swap"
	"github.com/zhiban/zhiban/pkg/validator"
)

// StatsHandler 统计与审计处理器
type StatsHandler struct {
	detector    *validator.ConflictDetector
	coverage    *stats.CoverageAnalyzer
	fairness    *stats.FairnessAnalyzer
	enforcer    *breaks.Enforcer
	recommender *swap.Recommender
}

// NewStatsHandler 创建统计处理器
// enforcer 为 nil 时使用默认休息策略
func NewStatsHandler(recommender *swap.Recommender, enforcer *breaks.Enforcer) *StatsHandler {
	if enforcer == nil {
		enforcer = breaks.NewEnforcer(nil)
	}
	return &StatsHandler{
		detector:    validator.NewConflictDetector(),
		coverage:    stats.NewCoverageAnalyzer(),
		fairness:    stats.NewFairnessAnalyzer(),
		enforcer:    enforcer,
		recommender: recommender,
	}
}

// AuditRequest 审计请求
type AuditRequest struct {
	Schedule ScheduleInput `json:"schedule"`
}

// AuditResponse 审计响应
type AuditResponse struct {
	Conflicts       []validator.Conflict   `json:"conflicts"`
	BreakViolations []string               `json:"break_violations"`
	Coverage        *stats.CoverageMetrics `json:"coverage"`
	Fairness        *stats.FairnessMetrics `json:"fairness"`
}

// Audit 对排班计划做整体审计：冲突检测、休息合规、覆盖率和公平性分析
func (h *StatsHandler) Audit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持POST方法"))
		return
	}

	var req AuditRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "解析请求失败"))
		return
	}

	s, appErr := buildSchedule(&req.Schedule)
	if appErr != nil {
		respondError(w, appErr)
		return
	}

	conflicts := h.detector.DetectAll(s)
	if conflicts == nil {
		conflicts = []validator.Conflict{}
	}

	breakViolations := []string{}
	for _, emp := range s.Employees {
		breakViolations = append(breakViolations, h.enforcer.ValidateCompliance(s, emp.ID)...)
	}

	coverage := h.coverage.Analyze(s)
	fairness := h.fairness.Analyze(s)

	metrics.SetCoverageRate(coverage.OverallCoverage)
	metrics.SetFairnessGini("workload", fairness.WorkloadGini)

	respondJSON(w, http.StatusOK, AuditResponse{
		Conflicts:       conflicts,
		BreakViolations: breakViolations,
		Coverage:        coverage,
		Fairness:        fairness,
	})
}

// SwapRequest 换班推荐请求
type SwapRequest struct {
	Schedule   ScheduleInput `json:"schedule"`
	ShiftID    string        `json:"shift_id"`
	EmployeeID string        `json:"employee_id"`
	Limit      int           `json:"limit,omitempty"`
}

// SwapResponse 换班推荐响应
type SwapResponse struct {
	Recommendations []swap.Recommendation `json:"recommendations"`
}

// RecommendSwap 为某员工的某班次推荐接替者
func (h *StatsHandler) RecommendSwap(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持POST方法"))
		return
	}

	var req SwapRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "解析请求失败"))
		return
	}

	shiftID, err := uuid.Parse(req.ShiftID)
	if err != nil {
		respondError(w, errors.InvalidInput("shift_id", "无效的班次ID格式"))
		return
	}
	empID, err := uuid.Parse(req.EmployeeID)
	if err != nil {
		respondError(w, errors.InvalidInput("employee_id", "无效的员工ID格式"))
		return
	}

	s, appErr := buildSchedule(&req.Schedule)
	if appErr != nil {
		respondError(w, appErr)
		return
	}

	recommendations, err := h.recommender.RecommendTakeOver(s, shiftID, empID, req.Limit)
	if err != nil {
		respondError(w, errors.FromError(err))
		return
	}
	if recommendations == nil {
		recommendations = []swap.Recommendation{}
	}

	respondJSON(w, http.StatusOK, SwapResponse{Recommendations: recommendations})
}

// ConstraintLibrary 返回支持的自定义约束类型目录
func (h *StatsHandler) ConstraintLibrary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持GET方法"))
		return
	}

	respondJSON(w, http.StatusOK, constraints.LibraryResponse{
		Library: constraints.GetLibrary(),
	})
}
