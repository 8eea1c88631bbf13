package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/zhiban/zhiban/pkg/model"
)

const employeeColumns = `id, name, active, skills, certifications,
	max_hours_per_day, max_hours_per_week, min_rest_hours,
	available_days, unavailable_dates, preferred_shift_types,
	requires_meal_break, meal_break_minutes, created_at, updated_at`

// EmployeeRepository 员工仓储
type EmployeeRepository struct {
	db DB
}

// NewEmployeeRepository 创建员工仓储
func NewEmployeeRepository(db DB) *EmployeeRepository {
	return &EmployeeRepository{db: db}
}

// Create 创建员工
func (r *EmployeeRepository) Create(ctx context.Context, emp *model.Employee) error {
	if emp.ID == uuid.Nil {
		emp.ID = uuid.New()
	}
	now := time.Now()
	emp.CreatedAt = now
	emp.UpdatedAt = now

	skillsJSON, _ := json.Marshal(emp.Skills)
	certsJSON, _ := json.Marshal(emp.Certifications)
	daysJSON, _ := json.Marshal(emp.AvailableDays)
	datesJSON, _ := json.Marshal(emp.UnavailableDates)
	prefsJSON, _ := json.Marshal(emp.PreferredShiftTypes)

	query := fmt.Sprintf(`INSERT INTO employees (%s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`, employeeColumns)

	_, err := r.db.ExecContext(ctx, query,
		emp.ID, emp.Name, emp.Active, skillsJSON, certsJSON,
		emp.MaxHoursPerDay, emp.MaxHoursPerWeek, emp.MinRestHours,
		daysJSON, datesJSON, prefsJSON,
		emp.RequiresMealBreak, emp.MealBreakMinutes, emp.CreatedAt, emp.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("创建员工失败: %w", err)
	}

	return nil
}

// GetByID 根据ID获取员工，不存在时返回 nil
func (r *EmployeeRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Employee, error) {
	query := fmt.Sprintf(`SELECT %s FROM employees WHERE id = $1 AND deleted_at IS NULL`, employeeColumns)
	return scanEmployee(r.db.QueryRowContext(ctx, query, id))
}

// Update 更新员工
func (r *EmployeeRepository) Update(ctx context.Context, emp *model.Employee) error {
	emp.UpdatedAt = time.Now()

	skillsJSON, _ := json.Marshal(emp.Skills)
	certsJSON, _ := json.Marshal(emp.Certifications)
	daysJSON, _ := json.Marshal(emp.AvailableDays)
	datesJSON, _ := json.Marshal(emp.UnavailableDates)
	prefsJSON, _ := json.Marshal(emp.PreferredShiftTypes)

	query := `
		UPDATE employees SET
			name = $2, active = $3, skills = $4, certifications = $5,
			max_hours_per_day = $6, max_hours_per_week = $7, min_rest_hours = $8,
			available_days = $9, unavailable_dates = $10, preferred_shift_types = $11,
			requires_meal_break = $12, meal_break_minutes = $13, updated_at = $14
		WHERE id = $1 AND deleted_at IS NULL
	`

	result, err := r.db.ExecContext(ctx, query,
		emp.ID, emp.Name, emp.Active, skillsJSON, certsJSON,
		emp.MaxHoursPerDay, emp.MaxHoursPerWeek, emp.MinRestHours,
		daysJSON, datesJSON, prefsJSON,
		emp.RequiresMealBreak, emp.MealBreakMinutes, emp.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("更新员工失败: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("员工不存在")
	}

	return nil
}

// Delete 软删除员工
func (r *EmployeeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE employees SET deleted_at = $2 WHERE id = $1 AND deleted_at IS NULL`

	result, err := r.db.ExecContext(ctx, query, id, time.Now())
	if err != nil {
		return fmt.Errorf("删除员工失败: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("员工不存在")
	}

	return nil
}

// List 查询员工列表
func (r *EmployeeRepository) List(ctx context.Context, filter ListFilter) ([]*model.Employee, int, error) {
	var conditions []string
	var args []interface{}
	argIndex := 1

	conditions = append(conditions, "deleted_at IS NULL")

	if filter.Active != nil {
		conditions = append(conditions, fmt.Sprintf("active = $%d", argIndex))
		args = append(args, *filter.Active)
		argIndex++
	}

	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("name ILIKE $%d", argIndex))
		args = append(args, "%"+filter.Search+"%")
		argIndex++
	}

	whereClause := strings.Join(conditions, " AND ")

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM employees WHERE %s", whereClause)
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("查询总数失败: %w", err)
	}

	orderBy := filter.OrderBy
	if orderBy == "" {
		orderBy = "created_at"
	}
	orderDir := filter.OrderDir
	if orderDir == "" {
		orderDir = "desc"
	}

	query := fmt.Sprintf(`SELECT %s FROM employees WHERE %s ORDER BY %s %s LIMIT $%d OFFSET $%d`,
		employeeColumns, whereClause, orderBy, orderDir, argIndex, argIndex+1)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("查询列表失败: %w", err)
	}
	defer rows.Close()

	var employees []*model.Employee
	for rows.Next() {
		emp, err := scanEmployeeRow(rows)
		if err != nil {
			return nil, 0, err
		}
		employees = append(employees, emp)
	}

	return employees, total, nil
}

// ListActive 获取所有活跃员工
func (r *EmployeeRepository) ListActive(ctx context.Context) ([]*model.Employee, error) {
	employees, _, err := r.List(ctx, DefaultListFilter().WithActive(true).WithLimit(10000))
	return employees, err
}

func scanEmployee(row *sql.Row) (*model.Employee, error) {
	emp, err := scanEmployeeRow(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return emp, err
}

func scanEmployeeRow(s Scanner) (*model.Employee, error) {
	emp := &model.Employee{}
	var skillsJSON, certsJSON, daysJSON, datesJSON, prefsJSON []byte

	err := s.Scan(
		&emp.ID, &emp.Name, &emp.Active, &skillsJSON, &certsJSON,
		&emp.MaxHoursPerDay, &emp.MaxHoursPerWeek, &emp.MinRestHours,
		&daysJSON, &datesJSON, &prefsJSON,
		&emp.RequiresMealBreak, &emp.MealBreakMinutes, &emp.CreatedAt, &emp.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("扫描员工数据失败: %w", err)
	}

	json.Unmarshal(skillsJSON, &emp.Skills)
	json.Unmarshal(certsJSON, &emp.Certifications)
	json.Unmarshal(daysJSON, &emp.AvailableDays)
	json.Unmarshal(datesJSON, &emp.UnavailableDates)
	json.Unmarshal(prefsJSON, &emp.PreferredShiftTypes)

	return emp, nil
}
