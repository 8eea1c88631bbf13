package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/zhiban/zhiban/pkg/model"
)

// ConstraintRepository 自定义约束仓储
type ConstraintRepository struct {
	db DB
}

// NewConstraintRepository 创建约束仓储
func NewConstraintRepository(db DB) *ConstraintRepository {
	return &ConstraintRepository{db: db}
}

// Create 创建约束
func (r *ConstraintRepository) Create(ctx context.Context, c *model.WorkConstraint) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	now := time.Now()
	c.CreatedAt = now
	c.UpdatedAt = now

	query := `
		INSERT INTO work_constraints (
			id, employee_id, type, value, description,
			effective_from, expires_on, active, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.db.ExecContext(ctx, query,
		c.ID, c.EmployeeID, c.Type, c.Value, c.Description,
		c.EffectiveFrom, c.ExpiresOn, c.Active, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("创建约束失败: %w", err)
	}

	return nil
}

// GetByID 根据ID获取约束，不存在时返回 nil
func (r *ConstraintRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.WorkConstraint, error) {
	query := `
		SELECT id, employee_id, type, value, description,
			effective_from, expires_on, active, created_at, updated_at
		FROM work_constraints
		WHERE id = $1 AND deleted_at IS NULL
	`

	c, err := scanConstraint(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return c, err
}

// Update 更新约束
func (r *ConstraintRepository) Update(ctx context.Context, c *model.WorkConstraint) error {
	c.UpdatedAt = time.Now()

	query := `
		UPDATE work_constraints SET
			type = $2, value = $3, description = $4,
			effective_from = $5, expires_on = $6, active = $7, updated_at = $8
		WHERE id = $1 AND deleted_at IS NULL
	`

	result, err := r.db.ExecContext(ctx, query,
		c.ID, c.Type, c.Value, c.Description,
		c.EffectiveFrom, c.ExpiresOn, c.Active, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("更新约束失败: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("约束不存在")
	}

	return nil
}

// Delete 软删除约束
func (r *ConstraintRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE work_constraints SET deleted_at = $2 WHERE id = $1 AND deleted_at IS NULL`

	result, err := r.db.ExecContext(ctx, query, id, time.Now())
	if err != nil {
		return fmt.Errorf("删除约束失败: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("约束不存在")
	}

	return nil
}

// ListByEmployee 获取某员工的全部约束
func (r *ConstraintRepository) ListByEmployee(ctx context.Context, employeeID uuid.UUID) ([]*model.WorkConstraint, error) {
	query := `
		SELECT id, employee_id, type, value, description,
			effective_from, expires_on, active, created_at, updated_at
		FROM work_constraints
		WHERE employee_id = $1 AND deleted_at IS NULL
		ORDER BY created_at
	`

	rows, err := r.db.QueryContext(ctx, query, employeeID)
	if err != nil {
		return nil, fmt.Errorf("查询约束列表失败: %w", err)
	}
	defer rows.Close()

	var constraints []*model.WorkConstraint
	for rows.Next() {
		c, err := scanConstraint(rows)
		if err != nil {
			return nil, err
		}
		constraints = append(constraints, c)
	}

	return constraints, nil
}

// ListActive 获取全部启用的约束
func (r *ConstraintRepository) ListActive(ctx context.Context) ([]*model.WorkConstraint, error) {
	query := `
		SELECT id, employee_id, type, value, description,
			effective_from, expires_on, active, created_at, updated_at
		FROM work_constraints
		WHERE active AND deleted_at IS NULL
		ORDER BY created_at
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("查询约束列表失败: %w", err)
	}
	defer rows.Close()

	var constraints []*model.WorkConstraint
	for rows.Next() {
		c, err := scanConstraint(rows)
		if err != nil {
			return nil, err
		}
		constraints = append(constraints, c)
	}

	return constraints, nil
}

func scanConstraint(s Scanner) (*model.WorkConstraint, error) {
	c := &model.WorkConstraint{}

	err := s.Scan(
		&c.ID, &c.EmployeeID, &c.Type, &c.Value, &c.Description,
		&c.EffectiveFrom, &c.ExpiresOn, &c.Active, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("扫描约束数据失败: %w", err)
	}

	return c, nil
}
