// Package model 定义排班约束引擎的核心数据模型
package model

import (
	"github.com/google/uuid"
)

// WorkConstraint 针对单个员工的自定义约束
// 在员工自身限制之上叠加的收紧规则，仅在生效窗口内且 Active 时适用
type WorkConstraint struct {
	BaseModel
	EmployeeID  uuid.UUID          `json:"employee_id" db:"employee_id"`
	Type        WorkConstraintType `json:"type" db:"type"`
	Value       float64            `json:"value" db:"value"`
	Description string             `json:"description,omitempty" db:"description"`

	// 生效窗口（可选，YYYY-MM-DD，空表示不限）
	EffectiveFrom string `json:"effective_from,omitempty" db:"effective_from"`
	ExpiresOn     string `json:"expires_on,omitempty" db:"expires_on"`

	Active bool `json:"active" db:"active"`
}

// AppliesOn 检查约束在某日期是否生效
func (c *WorkConstraint) AppliesOn(date string) bool {
	if !c.Active {
		return false
	}
	if c.EffectiveFrom != "" && date < c.EffectiveFrom {
		return false
	}
	if c.ExpiresOn != "" && date > c.ExpiresOn {
		return false
	}
	return true
}
