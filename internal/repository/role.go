package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/zhiban/zhiban/pkg/model"
)

// RoleRepository 岗位仓储
type RoleRepository struct {
	db DB
}

// NewRoleRepository 创建岗位仓储
func NewRoleRepository(db DB) *RoleRepository {
	return &RoleRepository{db: db}
}

// Create 创建岗位
func (r *RoleRepository) Create(ctx context.Context, role *model.Role) error {
	if role.ID == uuid.Nil {
		role.ID = uuid.New()
	}
	now := time.Now()
	role.CreatedAt = now
	role.UpdatedAt = now

	skillsJSON, _ := json.Marshal(role.RequiredSkills)
	certsJSON, _ := json.Marshal(role.RequiredCertifications)

	query := `
		INSERT INTO roles (id, name, required_skills, required_certifications, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.ExecContext(ctx, query,
		role.ID, role.Name, skillsJSON, certsJSON, role.CreatedAt, role.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("创建岗位失败: %w", err)
	}

	return nil
}

// GetByID 根据ID获取岗位，不存在时返回 nil
func (r *RoleRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Role, error) {
	query := `
		SELECT id, name, required_skills, required_certifications, created_at, updated_at
		FROM roles
		WHERE id = $1 AND deleted_at IS NULL
	`

	role, err := scanRole(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return role, err
}

// Update 更新岗位
func (r *RoleRepository) Update(ctx context.Context, role *model.Role) error {
	role.UpdatedAt = time.Now()

	skillsJSON, _ := json.Marshal(role.RequiredSkills)
	certsJSON, _ := json.Marshal(role.RequiredCertifications)

	query := `
		UPDATE roles SET name = $2, required_skills = $3, required_certifications = $4, updated_at = $5
		WHERE id = $1 AND deleted_at IS NULL
	`

	result, err := r.db.ExecContext(ctx, query, role.ID, role.Name, skillsJSON, certsJSON, role.UpdatedAt)
	if err != nil {
		return fmt.Errorf("更新岗位失败: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("岗位不存在")
	}

	return nil
}

// Delete 软删除岗位
func (r *RoleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE roles SET deleted_at = $2 WHERE id = $1 AND deleted_at IS NULL`

	result, err := r.db.ExecContext(ctx, query, id, time.Now())
	if err != nil {
		return fmt.Errorf("删除岗位失败: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("岗位不存在")
	}

	return nil
}

// ListAll 获取全部岗位
func (r *RoleRepository) ListAll(ctx context.Context) ([]*model.Role, error) {
	query := `
		SELECT id, name, required_skills, required_certifications, created_at, updated_at
		FROM roles
		WHERE deleted_at IS NULL
		ORDER BY name
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("查询岗位列表失败: %w", err)
	}
	defer rows.Close()

	var roles []*model.Role
	for rows.Next() {
		role, err := scanRole(rows)
		if err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}

	return roles, nil
}

func scanRole(s Scanner) (*model.Role, error) {
	role := &model.Role{}
	var skillsJSON, certsJSON []byte

	err := s.Scan(&role.ID, &role.Name, &skillsJSON, &certsJSON, &role.CreatedAt, &role.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("扫描岗位数据失败: %w", err)
	}

	json.Unmarshal(skillsJSON, &role.RequiredSkills)
	json.Unmarshal(certsJSON, &role.RequiredCertifications)

	return role, nil
}
