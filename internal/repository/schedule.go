package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/zhiban/zhiban/pkg/model"
)

// ScheduleRepository 排班计划仓储
// 班次及其分配随计划整体读写，分配顺序持久化后保持不变
type ScheduleRepository struct {
	db DB
}

// NewScheduleRepository 创建排班计划仓储
func NewScheduleRepository(db DB) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

// Create 创建排班计划（不含班次）
func (r *ScheduleRepository) Create(ctx context.Context, s *model.Schedule) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	now := time.Now()
	s.CreatedAt = now
	s.UpdatedAt = now

	query := `
		INSERT INTO schedules (id, name, start_date, end_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.ExecContext(ctx, query, s.ID, s.Name, s.StartDate, s.EndDate, s.CreatedAt, s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("创建排班计划失败: %w", err)
	}

	return nil
}

// GetByID 根据ID获取排班计划（含班次和分配），不存在时返回 nil
func (r *ScheduleRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Schedule, error) {
	query := `
		SELECT id, name, start_date, end_date, created_at, updated_at
		FROM schedules
		WHERE id = $1 AND deleted_at IS NULL
	`

	s := &model.Schedule{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&s.ID, &s.Name, &s.StartDate, &s.EndDate, &s.CreatedAt, &s.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("扫描排班计划失败: %w", err)
	}

	shifts, err := r.loadShifts(ctx, id)
	if err != nil {
		return nil, err
	}
	s.SetShifts(shifts)

	return s, nil
}

// SaveShifts 保存计划的全部班次和分配，整体替换
func (r *ScheduleRepository) SaveShifts(ctx context.Context, scheduleID uuid.UUID, shifts []*model.Shift) error {
	if _, err := r.db.ExecContext(ctx,
		`DELETE FROM shift_assignments WHERE shift_id IN (SELECT id FROM shifts WHERE schedule_id = $1)`,
		scheduleID); err != nil {
		return fmt.Errorf("清除班次分配失败: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, `DELETE FROM shifts WHERE schedule_id = $1`, scheduleID); err != nil {
		return fmt.Errorf("清除班次失败: %w", err)
	}

	now := time.Now()
	for _, sh := range shifts {
		if sh.ID == uuid.Nil {
			sh.ID = uuid.New()
		}
		if sh.CreatedAt.IsZero() {
			sh.CreatedAt = now
		}
		sh.UpdatedAt = now

		query := `
			INSERT INTO shifts (
				id, schedule_id, date, start_time, end_time, role_id,
				location, department, type, required_employees, max_employees,
				priority, created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		`
		if _, err := r.db.ExecContext(ctx, query,
			sh.ID, scheduleID, sh.Date, sh.StartTime, sh.EndTime, sh.RoleID,
			sh.Location, sh.Department, sh.Type, sh.RequiredEmployees, sh.MaxEmployees,
			sh.Priority, sh.CreatedAt, sh.UpdatedAt,
		); err != nil {
			return fmt.Errorf("保存班次失败: %w", err)
		}

		for pos, empID := range sh.AssignedEmployees {
			if _, err := r.db.ExecContext(ctx,
				`INSERT INTO shift_assignments (shift_id, employee_id, position, created_at)
				 VALUES ($1, $2, $3, $4)`,
				sh.ID, empID, pos, now,
			); err != nil {
				return fmt.Errorf("保存班次分配失败: %w", err)
			}
		}
	}

	if _, err := r.db.ExecContext(ctx,
		`UPDATE schedules SET updated_at = $2 WHERE id = $1`, scheduleID, now); err != nil {
		return fmt.Errorf("更新排班计划失败: %w", err)
	}

	return nil
}

// Delete 软删除排班计划
func (r *ScheduleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE schedules SET deleted_at = $2 WHERE id = $1 AND deleted_at IS NULL`

	result, err := r.db.ExecContext(ctx, query, id, time.Now())
	if err != nil {
		return fmt.Errorf("删除排班计划失败: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("排班计划不存在")
	}

	return nil
}

// List 查询排班计划列表（不加载班次）
func (r *ScheduleRepository) List(ctx context.Context, filter ListFilter) ([]*model.Schedule, int, error) {
	whereClause := "deleted_at IS NULL"
	var args []interface{}
	argIndex := 1

	if filter.StartDate != "" {
		whereClause += fmt.Sprintf(" AND end_date >= $%d", argIndex)
		args = append(args, filter.StartDate)
		argIndex++
	}
	if filter.EndDate != "" {
		whereClause += fmt.Sprintf(" AND start_date <= $%d", argIndex)
		args = append(args, filter.EndDate)
		argIndex++
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM schedules WHERE %s", whereClause)
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("查询总数失败: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT id, name, start_date, end_date, created_at, updated_at
		FROM schedules
		WHERE %s
		ORDER BY start_date DESC
		LIMIT $%d OFFSET $%d
	`, whereClause, argIndex, argIndex+1)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("查询列表失败: %w", err)
	}
	defer rows.Close()

	var schedules []*model.Schedule
	for rows.Next() {
		s := &model.Schedule{}
		if err := rows.Scan(&s.ID, &s.Name, &s.StartDate, &s.EndDate, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("扫描排班计划失败: %w", err)
		}
		schedules = append(schedules, s)
	}

	return schedules, total, nil
}

// loadShifts 加载计划的全部班次和分配
func (r *ScheduleRepository) loadShifts(ctx context.Context, scheduleID uuid.UUID) ([]*model.Shift, error) {
	query := `
		SELECT id, date, start_time, end_time, role_id,
			location, department, type, required_employees, max_employees,
			priority, created_at, updated_at
		FROM shifts
		WHERE schedule_id = $1
		ORDER BY date, start_time, id
	`

	rows, err := r.db.QueryContext(ctx, query, scheduleID)
	if err != nil {
		return nil, fmt.Errorf("查询班次失败: %w", err)
	}
	defer rows.Close()

	var shifts []*model.Shift
	shiftIDs := make([]uuid.UUID, 0)
	byID := make(map[uuid.UUID]*model.Shift)

	for rows.Next() {
		sh := &model.Shift{}
		if err := rows.Scan(
			&sh.ID, &sh.Date, &sh.StartTime, &sh.EndTime, &sh.RoleID,
			&sh.Location, &sh.Department, &sh.Type, &sh.RequiredEmployees, &sh.MaxEmployees,
			&sh.Priority, &sh.CreatedAt, &sh.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("扫描班次失败: %w", err)
		}
		shifts = append(shifts, sh)
		shiftIDs = append(shiftIDs, sh.ID)
		byID[sh.ID] = sh
	}
	if len(shifts) == 0 {
		return shifts, nil
	}

	// 分配按提交顺序恢复
	assignQuery := `
		SELECT shift_id, employee_id
		FROM shift_assignments
		WHERE shift_id = ANY($1)
		ORDER BY shift_id, position
	`
	assignRows, err := r.db.QueryContext(ctx, assignQuery, pq.Array(shiftIDs))
	if err != nil {
		return nil, fmt.Errorf("查询班次分配失败: %w", err)
	}
	defer assignRows.Close()

	for assignRows.Next() {
		var shiftID, empID uuid.UUID
		if err := assignRows.Scan(&shiftID, &empID); err != nil {
			return nil, fmt.Errorf("扫描班次分配失败: %w", err)
		}
		if sh := byID[shiftID]; sh != nil {
			sh.AssignedEmployees = append(sh.AssignedEmployees, empID)
		}
	}

	return shifts, nil
}
