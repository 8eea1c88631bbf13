// Package constraints 约束类型目录
package constraints

import "github.com/zhiban/zhiban/pkg/model"

// ConstraintParam 约束参数定义
type ConstraintParam struct {
	Name        string `json:"name"`
	Type        string `json:"type"` // int, float
	Description string `json:"description"`
	Default     string `json:"default,omitempty"`
	Min         string `json:"min,omitempty"`
	Max         string `json:"max,omitempty"`
}

// ConstraintDefinition 约束定义
type ConstraintDefinition struct {
	Name        model.WorkConstraintType `json:"name"`
	DisplayName string                   `json:"display_name"`
	Category    string                   `json:"category"`
	Description string                   `json:"description"`
	Params      []ConstraintParam        `json:"params"`
}

// LibraryResponse 约束库响应
type LibraryResponse struct {
	Library []ConstraintDefinition `json:"library"`
}

// GetLibrary 返回引擎支持的全部自定义约束类型
// 类型集合是封闭的，新增约束类型需要同步扩展校验器的分支
func GetLibrary() []ConstraintDefinition {
	return []ConstraintDefinition{
		{
			Name:        model.ConstraintMaxHoursPerDay,
			DisplayName: "每日最大工时",
			Category:    "工时限制",
			Description: "覆盖员工默认的每日工时上限，加上候选班次后超过则分配无效。",
			Params: []ConstraintParam{
				{Name: "value", Type: "float", Description: "最大工时(小时)", Default: "10", Min: "1", Max: "24"},
			},
		},
		{
			Name:        model.ConstraintMaxHoursPerWeek,
			DisplayName: "每周最大工时",
			Category:    "工时限制",
			Description: "覆盖员工默认的每周工时上限，周按 ISO 周一起算。",
			Params: []ConstraintParam{
				{Name: "value", Type: "float", Description: "最大工时(小时)", Default: "44", Min: "1", Max: "168"},
			},
		},
		{
			Name:        model.ConstraintMinHoursBetweenShifts,
			DisplayName: "班次间最小休息时间",
			Category:    "休息保障",
			Description: "覆盖员工默认的班次间休息要求，与任一已有班次间隔不足则分配无效。",
			Params: []ConstraintParam{
				{Name: "value", Type: "float", Description: "最小休息时间(小时)", Default: "12", Min: "0", Max: "48"},
			},
		},
		{
			Name:        model.ConstraintMaxConsecutiveDays,
			DisplayName: "最大连续工作天数",
			Category:    "休息保障",
			Description: "限制包含候选班次在内的连续出勤天数。",
			Params: []ConstraintParam{
				{Name: "value", Type: "float", Description: "最大连续天数", Default: "6", Min: "1", Max: "14"},
			},
		},
	}
}

// Lookup 按类型查找约束定义，未知类型返回 nil
func Lookup(t model.WorkConstraintType) *ConstraintDefinition {
	for _, def := range GetLibrary() {
		if def.Name == t {
			return &def
		}
	}
	return nil
}
