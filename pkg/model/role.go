// Package model 定义排班约束引擎的核心数据模型
package model

import "sort"

// Role 岗位（带资质要求）
type Role struct {
	BaseModel
	Name                   string                `json:"name" db:"name"`
	RequiredSkills         map[string]SkillLevel `json:"required_skills,omitempty" db:"required_skills"`
	RequiredCertifications []string              `json:"required_certifications,omitempty" db:"required_certifications"`
}

// SkillGap 技能差距
// Held 为 0 表示员工完全不具备该技能
type SkillGap struct {
	Skill    string     `json:"skill"`
	Held     SkillLevel `json:"held"`
	Required SkillLevel `json:"required"`
}

// Qualifies 检查员工是否满足岗位的全部技能和证书要求
func (r *Role) Qualifies(e *Employee) bool {
	return len(r.MissingSkills(e)) == 0 && len(r.MissingCertifications(e)) == 0
}

// MissingSkills 返回员工未达标的技能列表
func (r *Role) MissingSkills(e *Employee) []SkillGap {
	skills := make([]string, 0, len(r.RequiredSkills))
	for skill := range r.RequiredSkills {
		skills = append(skills, skill)
	}
	sort.Strings(skills)

	var gaps []SkillGap
	for _, skill := range skills {
		required := r.RequiredSkills[skill]
		held, ok := e.SkillLevelOf(skill)
		if !ok {
			gaps = append(gaps, SkillGap{Skill: skill, Held: 0, Required: required})
			continue
		}
		if held < required {
			gaps = append(gaps, SkillGap{Skill: skill, Held: held, Required: required})
		}
	}
	return gaps
}

// MissingCertifications 返回员工缺少的证书列表
func (r *Role) MissingCertifications(e *Employee) []string {
	var missing []string
	for _, cert := range r.RequiredCertifications {
		if !e.HasCertification(cert) {
			missing = append(missing, cert)
		}
	}
	return missing
}
