// Package handler 提供HTTP请求处理器
package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/zhiban/zhiban/internal/metrics"
	"github.com/zhiban/zhiban/pkg/errors"
	"github.com/zhiban/zhiban/pkg/model"
	"github.com/zhiban/zhiban/pkg/scheduler/optimizer"
	"github.com/zhiban/zhiban/pkg/scheduler/validator"
)

// ScheduleHandler 排班处理器
type ScheduleHandler struct {
	validator     *validator.Validator
	optimizer     *optimizer.Optimizer
	maxIterations int
	timeout       time.Duration
}

// NewScheduleHandler 创建排班处理器
func NewScheduleHandler(v *validator.Validator, o *optimizer.Optimizer, maxIterations int, timeout time.Duration) *ScheduleHandler {
	if maxIterations <= 0 {
		maxIterations = 1000
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &ScheduleHandler{
		validator:     v,
		optimizer:     o,
		maxIterations: maxIterations,
		timeout:       timeout,
	}
}

// ScheduleInput 排班计划输入
type ScheduleInput struct {
	Name        string                  `json:"name,omitempty"`
	StartDate   string                  `json:"start_date,omitempty"`
	EndDate     string                  `json:"end_date,omitempty"`
	Employees   []*model.Employee       `json:"employees"`
	Roles       []*model.Role           `json:"roles"`
	Shifts      []*model.Shift          `json:"shifts"`
	Constraints []*model.WorkConstraint `json:"constraints,omitempty"`
}

// buildSchedule 从输入构建排班计划聚合
func buildSchedule(in *ScheduleInput) (*model.Schedule, *errors.AppError) {
	if len(in.Employees) == 0 {
		return nil, errors.InvalidInput("employees", "员工列表不能为空")
	}
	if len(in.Shifts) == 0 {
		return nil, errors.InvalidInput("shifts", "班次列表不能为空")
	}
	for _, sh := range in.Shifts {
		if _, err := model.ParseDate(sh.Date); err != nil {
			return nil, errors.InvalidInput("shifts", "日期格式无效，应为YYYY-MM-DD: "+sh.Date)
		}
	}

	s := model.NewSchedule(in.Name, in.StartDate, in.EndDate)
	s.SetEmployees(in.Employees)
	s.SetRoles(in.Roles)
	s.SetShifts(in.Shifts)
	s.SetConstraints(in.Constraints)
	return s, nil
}

// ValidateRequest 分配校验请求
type ValidateRequest struct {
	Schedule   ScheduleInput `json:"schedule"`
	EmployeeID string        `json:"employee_id"`
	ShiftID    string        `json:"shift_id"`
}

// Validate 校验一次候选分配
func (h *ScheduleHandler) Validate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持POST方法"))
		return
	}

	var req ValidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "解析请求失败"))
		return
	}

	empID, err := uuid.Parse(req.EmployeeID)
	if err != nil {
		respondError(w, errors.InvalidInput("employee_id", "无效的员工ID格式"))
		return
	}
	shiftID, err := uuid.Parse(req.ShiftID)
	if err != nil {
		respondError(w, errors.InvalidInput("shift_id", "无效的班次ID格式"))
		return
	}

	s, appErr := buildSchedule(&req.Schedule)
	if appErr != nil {
		respondError(w, appErr)
		return
	}

	result := h.validator.Validate(s, empID, shiftID)
	metrics.RecordValidation(result.Success)

	respondJSON(w, http.StatusOK, result)
}

// OptimizeRequest 优化请求
type OptimizeRequest struct {
	Schedule      ScheduleInput `json:"schedule"`
	MaxIterations int           `json:"max_iterations,omitempty"`
	TimeoutSecs   int           `json:"timeout_seconds,omitempty"`
}

// OptimizeResponse 优化响应
type OptimizeResponse struct {
	Result *model.OptimizationResult `json:"result"`
	Shifts []*model.Shift            `json:"shifts"`
}

// Optimize 对排班计划执行贪心填充
func (h *ScheduleHandler) Optimize(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持POST方法"))
		return
	}

	var req OptimizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "解析请求失败"))
		return
	}

	s, appErr := buildSchedule(&req.Schedule)
	if appErr != nil {
		respondError(w, appErr)
		return
	}

	maxIterations := req.MaxIterations
	if maxIterations <= 0 {
		maxIterations = h.maxIterations
	}
	timeout := h.timeout
	if req.TimeoutSecs > 0 {
		timeout = time.Duration(req.TimeoutSecs) * time.Second
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeout)
	defer cancel()

	result := h.optimizer.Optimize(ctx, s, maxIterations)
	metrics.RecordOptimize(result.Success, result.ExecutionTime, result.Iterations, result.OptimizationScore)

	respondJSON(w, http.StatusOK, OptimizeResponse{
		Result: result,
		Shifts: s.Shifts,
	})
}

// CandidatesRequest 候选人查询请求
type CandidatesRequest struct {
	Schedule ScheduleInput `json:"schedule"`
	ShiftID  string        `json:"shift_id"`
	Limit    int           `json:"limit,omitempty"`
}

// CandidatesResponse 候选人查询响应
type CandidatesResponse struct {
	ShiftID    string                 `json:"shift_id"`
	Candidates []*model.CandidateScore `json:"candidates"`
}

// Candidates 返回某班次的可行候选人排名
func (h *ScheduleHandler) Candidates(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持POST方法"))
		return
	}

	var req CandidatesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "解析请求失败"))
		return
	}

	shiftID, err := uuid.Parse(req.ShiftID)
	if err != nil {
		respondError(w, errors.InvalidInput("shift_id", "无效的班次ID格式"))
		return
	}

	s, appErr := buildSchedule(&req.Schedule)
	if appErr != nil {
		respondError(w, appErr)
		return
	}
	if s.Shift(shiftID) == nil {
		respondError(w, errors.NotFound("班次", shiftID.String()))
		return
	}

	candidates := h.optimizer.FindCandidates(s, shiftID, req.Limit)
	if candidates == nil {
		candidates = []*model.CandidateScore{}
	}

	respondJSON(w, http.StatusOK, CandidatesResponse{
		ShiftID:    shiftID.String(),
		Candidates: candidates,
	})
}

// respondJSON 返回JSON响应
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError 返回错误响应
func respondError(w http.ResponseWriter, err *errors.AppError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(err.HTTPStatus)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"error":   true,
		"code":    err.Code,
		"message": err.Message,
		"details": err.Details,
	})
}
