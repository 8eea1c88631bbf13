package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/zhiban/zhiban/internal/repository"
	"github.com/zhiban/zhiban/pkg/errors"
	"github.com/zhiban/zhiban/pkg/logger"
	"github.com/zhiban/zhiban/pkg/model"
)

// StoreHandler 持久化处理器
// 引擎本身无状态，计划和主数据的读写全部经由这里的仓储完成
type StoreHandler struct {
	schedules   *repository.ScheduleRepository
	employees   *repository.EmployeeRepository
	roles       *repository.RoleRepository
	constraints *repository.ConstraintRepository
}

// NewStoreHandler 创建持久化处理器
func NewStoreHandler(db repository.DB) *StoreHandler {
	return &StoreHandler{
		schedules:   repository.NewScheduleRepository(db),
		employees:   repository.NewEmployeeRepository(db),
		roles:       repository.NewRoleRepository(db),
		constraints: repository.NewConstraintRepository(db),
	}
}

// SaveScheduleResponse 保存排班计划响应
type SaveScheduleResponse struct {
	ID         uuid.UUID `json:"id"`
	ShiftCount int       `json:"shift_count"`
}

// Schedules 处理 /api/v1/schedules：GET 列表，POST 保存
func (h *StoreHandler) Schedules(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.listSchedules(w, r)
	case http.MethodPost:
		h.saveSchedule(w, r)
	default:
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持GET/POST方法"))
	}
}

func (h *StoreHandler) listSchedules(w http.ResponseWriter, r *http.Request) {
	filter := repository.DefaultListFilter()
	if v := r.URL.Query().Get("start_date"); v != "" {
		filter.StartDate = v
	}
	if v := r.URL.Query().Get("end_date"); v != "" {
		filter.EndDate = v
	}

	schedules, total, err := h.schedules.List(r.Context(), filter)
	if err != nil {
		respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "查询排班计划列表失败"))
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"schedules": schedules,
		"total":     total,
	})
}

func (h *StoreHandler) saveSchedule(w http.ResponseWriter, r *http.Request) {
	var in ScheduleInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "解析请求失败"))
		return
	}

	s, appErr := buildSchedule(&in)
	if appErr != nil {
		respondError(w, appErr)
		return
	}

	ctx := r.Context()
	if err := h.schedules.Create(ctx, s); err != nil {
		respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "保存排班计划失败"))
		return
	}
	if err := h.schedules.SaveShifts(ctx, s.ID, s.Shifts); err != nil {
		respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "保存班次失败"))
		return
	}

	logger.Info().
		Str("schedule_id", s.ID.String()).
		Int("shifts", len(s.Shifts)).
		Msg("排班计划已保存")

	respondJSON(w, http.StatusCreated, SaveScheduleResponse{
		ID:         s.ID,
		ShiftCount: len(s.Shifts),
	})
}

// ScheduleByID 处理 /api/v1/schedules/{id}：GET 加载完整聚合，DELETE 软删除
// 加载时附带当前在职员工、全部岗位和生效约束，组装出可直接送入引擎的计划
func (h *StoreHandler) ScheduleByID(w http.ResponseWriter, r *http.Request) {
	idStr := strings.TrimPrefix(r.URL.Path, "/api/v1/schedules/")
	id, err := uuid.Parse(idStr)
	if err != nil {
		respondError(w, errors.InvalidInput("id", "无效的计划ID格式"))
		return
	}

	ctx := r.Context()

	switch r.Method {
	case http.MethodGet:
		s, err := h.schedules.GetByID(ctx, id)
		if err != nil {
			respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "加载排班计划失败"))
			return
		}
		if s == nil {
			respondError(w, errors.NotFound("排班计划", id.String()))
			return
		}

		emps, err := h.employees.ListActive(ctx)
		if err != nil {
			respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "加载员工失败"))
			return
		}
		roles, err := h.roles.ListAll(ctx)
		if err != nil {
			respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "加载岗位失败"))
			return
		}
		cons, err := h.constraints.ListActive(ctx)
		if err != nil {
			respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "加载约束失败"))
			return
		}

		s.SetEmployees(emps)
		s.SetRoles(roles)
		s.SetConstraints(cons)

		respondJSON(w, http.StatusOK, s)

	case http.MethodDelete:
		if err := h.schedules.Delete(ctx, id); err != nil {
			respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "删除排班计划失败"))
			return
		}
		respondJSON(w, http.StatusOK, map[string]interface{}{"deleted": id})

	default:
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持GET/DELETE方法"))
	}
}

// Employees 处理 /api/v1/employees：GET 在职列表，POST 创建
func (h *StoreHandler) Employees(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	switch r.Method {
	case http.MethodGet:
		emps, err := h.employees.ListActive(ctx)
		if err != nil {
			respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "查询员工列表失败"))
			return
		}
		respondJSON(w, http.StatusOK, map[string]interface{}{"employees": emps})

	case http.MethodPost:
		var emp model.Employee
		if err := json.NewDecoder(r.Body).Decode(&emp); err != nil {
			respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "解析请求失败"))
			return
		}
		if emp.Name == "" {
			respondError(w, errors.InvalidInput("name", "员工姓名不能为空"))
			return
		}
		if err := h.employees.Create(ctx, &emp); err != nil {
			respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "创建员工失败"))
			return
		}
		respondJSON(w, http.StatusCreated, &emp)

	default:
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持GET/POST方法"))
	}
}

// Roles 处理 /api/v1/roles：GET 列表，POST 创建
func (h *StoreHandler) Roles(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	switch r.Method {
	case http.MethodGet:
		roles, err := h.roles.ListAll(ctx)
		if err != nil {
			respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "查询岗位列表失败"))
			return
		}
		respondJSON(w, http.StatusOK, map[string]interface{}{"roles": roles})

	case http.MethodPost:
		var role model.Role
		if err := json.NewDecoder(r.Body).Decode(&role); err != nil {
			respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "解析请求失败"))
			return
		}
		if role.Name == "" {
			respondError(w, errors.InvalidInput("name", "岗位名称不能为空"))
			return
		}
		if err := h.roles.Create(ctx, &role); err != nil {
			respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "创建岗位失败"))
			return
		}
		respondJSON(w, http.StatusCreated, &role)

	default:
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持GET/POST方法"))
	}
}

// Constraints 处理 /api/v1/constraints：GET 生效列表，POST 创建
func (h *StoreHandler) Constraints(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	switch r.Method {
	case http.MethodGet:
		cons, err := h.constraints.ListActive(ctx)
		if err != nil {
			respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "查询约束列表失败"))
			return
		}
		respondJSON(w, http.StatusOK, map[string]interface{}{"constraints": cons})

	case http.MethodPost:
		var c model.WorkConstraint
		if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
			respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "解析请求失败"))
			return
		}
		if !c.Type.Valid() {
			respondError(w, errors.InvalidInput("type", "未知的约束类型: "+string(c.Type)))
			return
		}
		if err := h.constraints.Create(ctx, &c); err != nil {
			respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "创建约束失败"))
			return
		}
		respondJSON(w, http.StatusCreated, &c)

	default:
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持GET/POST方法"))
	}
}
