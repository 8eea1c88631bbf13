// Package stats 提供排班统计分析功能
package stats

import (
	"sort"

	"github.com/zhiban/zhiban/pkg/model"
)

// CoverageMetrics 覆盖率指标
type CoverageMetrics struct {
	TotalSlots      int     `json:"total_slots"`      // 总需求人次
	FilledSlots     int     `json:"filled_slots"`     // 已填充人次
	OverallCoverage float64 `json:"overall_coverage"` // 整体覆盖率 (%)

	DailyCoverage     map[string]DayCoverage `json:"daily_coverage"`      // 每日覆盖情况
	ShiftTypeCoverage map[string]float64     `json:"shift_type_coverage"` // 按班次类型覆盖率

	Understaffed []UnderstaffedShift `json:"understaffed"` // 未满编班次
}

// DayCoverage 每日覆盖情况
type DayCoverage struct {
	Date         string  `json:"date"`
	TotalSlots   int     `json:"total_slots"`
	FilledSlots  int     `json:"filled_slots"`
	CoverageRate float64 `json:"coverage_rate"`
	TotalHours   float64 `json:"total_hours"`
}

// UnderstaffedShift 未满编班次
type UnderstaffedShift struct {
	ShiftID   string `json:"shift_id"`
	Date      string `json:"date"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Type      string `json:"type"`
	Required  int    `json:"required"`
	Assigned  int    `json:"assigned"`
	Shortage  int    `json:"shortage"`
}

// CoverageAnalyzer 覆盖率分析器
type CoverageAnalyzer struct{}

// NewCoverageAnalyzer 创建覆盖率分析器
func NewCoverageAnalyzer() *CoverageAnalyzer {
	return &CoverageAnalyzer{}
}

// Analyze 分析排班计划的覆盖率
// 人次按需求人数计，超编人员不计入覆盖率
func (c *CoverageAnalyzer) Analyze(s *model.Schedule) *CoverageMetrics {
	metrics := &CoverageMetrics{
		DailyCoverage:     make(map[string]DayCoverage),
		ShiftTypeCoverage: make(map[string]float64),
	}
	if len(s.Shifts) == 0 {
		metrics.OverallCoverage = 100
		return metrics
	}

	dailyStats := make(map[string]*DayCoverage)
	typeTotals := make(map[string]int)
	typeFilled := make(map[string]int)

	for _, shiftID := range s.SortedShiftIDs() {
		shift := s.Shift(shiftID)
		filled := len(shift.AssignedEmployees)
		if filled > shift.RequiredEmployees {
			filled = shift.RequiredEmployees
		}

		metrics.TotalSlots += shift.RequiredEmployees
		metrics.FilledSlots += filled

		day, exists := dailyStats[shift.Date]
		if !exists {
			day = &DayCoverage{Date: shift.Date}
			dailyStats[shift.Date] = day
		}
		day.TotalSlots += shift.RequiredEmployees
		day.FilledSlots += filled
		day.TotalHours += shift.DurationHours() * float64(len(shift.AssignedEmployees))

		typeTotals[string(shift.Type)] += shift.RequiredEmployees
		typeFilled[string(shift.Type)] += filled

		if len(shift.AssignedEmployees) < shift.RequiredEmployees {
			metrics.Understaffed = append(metrics.Understaffed, UnderstaffedShift{
				ShiftID:   shift.ID.String(),
				Date:      shift.Date,
				StartTime: shift.StartTime,
				EndTime:   shift.EndTime,
				Type:      string(shift.Type),
				Required:  shift.RequiredEmployees,
				Assigned:  len(shift.AssignedEmployees),
				Shortage:  shift.RequiredEmployees - len(shift.AssignedEmployees),
			})
		}
	}

	if metrics.TotalSlots > 0 {
		metrics.OverallCoverage = float64(metrics.FilledSlots) / float64(metrics.TotalSlots) * 100
	} else {
		metrics.OverallCoverage = 100
	}

	for date, day := range dailyStats {
		if day.TotalSlots > 0 {
			day.CoverageRate = float64(day.FilledSlots) / float64(day.TotalSlots) * 100
		}
		metrics.DailyCoverage[date] = *day
	}

	for shiftType, total := range typeTotals {
		if total > 0 {
			metrics.ShiftTypeCoverage[shiftType] = float64(typeFilled[shiftType]) / float64(total) * 100
		}
	}

	sort.Slice(metrics.Understaffed, func(i, j int) bool {
		if metrics.Understaffed[i].Date != metrics.Understaffed[j].Date {
			return metrics.Understaffed[i].Date < metrics.Understaffed[j].Date
		}
		return metrics.Understaffed[i].ShiftID < metrics.Understaffed[j].ShiftID
	})

	return metrics
}
