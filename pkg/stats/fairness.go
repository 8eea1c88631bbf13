package stats

import (
	"math"
	"sort"
	"time"

	"github.com/zhiban/zhiban/pkg/model"
)

// FairnessMetrics 公平性指标
type FairnessMetrics struct {
	WorkloadGini        float64 `json:"workload_gini"`          // 工时基尼系数 (0=完全公平, 1=完全不公平)
	WorkloadVariance    float64 `json:"workload_variance"`      // 工时方差
	WorkloadStdDev      float64 `json:"workload_std_dev"`       // 工时标准差
	AvgHoursPerEmployee float64 `json:"avg_hours_per_employee"` // 人均工时
	MaxHours            float64 `json:"max_hours"`              // 最大工时
	MinHours            float64 `json:"min_hours"`              // 最小工时
	HoursRange          float64 `json:"hours_range"`            // 工时极差

	NightShiftGini   float64 `json:"night_shift_gini"`   // 夜班分配基尼系数
	WeekendShiftGini float64 `json:"weekend_shift_gini"` // 周末班分配基尼系数

	EmployeeStats []EmployeeStat `json:"employee_stats"` // 员工统计

	OverallFairnessScore float64 `json:"overall_fairness_score"` // 综合公平性评分 (0-100)
}

// EmployeeStat 员工统计
type EmployeeStat struct {
	EmployeeID    string  `json:"employee_id"`
	EmployeeName  string  `json:"employee_name"`
	TotalHours    float64 `json:"total_hours"`
	ShiftCount    int     `json:"shift_count"`
	NightShifts   int     `json:"night_shifts"`
	WeekendShifts int     `json:"weekend_shifts"`
	Deviation     float64 `json:"deviation"` // 与平均工时的偏差百分比
}

// FairnessAnalyzer 公平性分析器
// 只统计活跃员工，非活跃员工的历史分配不影响公平性评分
type FairnessAnalyzer struct{}

// NewFairnessAnalyzer 创建公平性分析器
func NewFairnessAnalyzer() *FairnessAnalyzer {
	return &FairnessAnalyzer{}
}

// Analyze 分析排班计划的公平性
func (f *FairnessAnalyzer) Analyze(s *model.Schedule) *FairnessMetrics {
	stats := f.collectEmployeeStats(s)
	if len(stats) == 0 {
		return &FairnessMetrics{OverallFairnessScore: 100}
	}

	hours := make([]float64, len(stats))
	nightShifts := make([]float64, len(stats))
	weekendShifts := make([]float64, len(stats))
	for i, stat := range stats {
		hours[i] = stat.TotalHours
		nightShifts[i] = float64(stat.NightShifts)
		weekendShifts[i] = float64(stat.WeekendShifts)
	}

	avg := mean(hours)
	variance := varianceOf(hours, avg)
	stdDev := math.Sqrt(variance)
	maxHours, minHours := rangeOf(hours)

	for i := range stats {
		if avg > 0 {
			stats[i].Deviation = (stats[i].TotalHours - avg) / avg * 100
		}
	}

	workloadGini := gini(hours)
	nightGini := gini(nightShifts)
	weekendGini := gini(weekendShifts)

	return &FairnessMetrics{
		WorkloadGini:         workloadGini,
		WorkloadVariance:     variance,
		WorkloadStdDev:       stdDev,
		AvgHoursPerEmployee:  avg,
		MaxHours:             maxHours,
		MinHours:             minHours,
		HoursRange:           maxHours - minHours,
		NightShiftGini:       nightGini,
		WeekendShiftGini:     weekendGini,
		EmployeeStats:        stats,
		OverallFairnessScore: overallScore(workloadGini, nightGini, weekendGini),
	}
}

// collectEmployeeStats 汇总每个活跃员工的分配数据
func (f *FairnessAnalyzer) collectEmployeeStats(s *model.Schedule) []EmployeeStat {
	var stats []EmployeeStat

	for _, emp := range s.Employees {
		if !emp.Active {
			continue
		}
		stat := EmployeeStat{
			EmployeeID:   emp.ID.String(),
			EmployeeName: emp.Name,
		}
		for _, shift := range s.ShiftsForEmployee(emp.ID) {
			stat.TotalHours += shift.DurationHours()
			stat.ShiftCount++
			if shift.Type == model.ShiftNight {
				stat.NightShifts++
			}
			if isWeekend(shift.Date) {
				stat.WeekendShifts++
			}
		}
		stats = append(stats, stat)
	}

	sort.Slice(stats, func(i, j int) bool {
		if stats[i].TotalHours != stats[j].TotalHours {
			return stats[i].TotalHours > stats[j].TotalHours
		}
		return stats[i].EmployeeID < stats[j].EmployeeID
	})
	return stats
}

// overallScore 综合公平性评分
// 工时分布占一半权重，夜班和周末班分布各占四分之一
func overallScore(workloadGini, nightGini, weekendGini float64) float64 {
	score := 100 - 50*workloadGini - 25*nightGini - 25*weekendGini
	if score < 0 {
		return 0
	}
	return score
}

// isWeekend 判断日期是否周末
func isWeekend(dateStr string) bool {
	date, err := model.ParseDate(dateStr)
	if err != nil {
		return false
	}
	weekday := date.Weekday()
	return weekday == time.Saturday || weekday == time.Sunday
}

// mean 计算平均值
func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// varianceOf 计算方差
func varianceOf(values []float64, mean float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sumSquares := 0.0
	for _, v := range values {
		diff := v - mean
		sumSquares += diff * diff
	}
	return sumSquares / float64(len(values))
}

// rangeOf 计算极值
func rangeOf(values []float64) (max, min float64) {
	if len(values) == 0 {
		return 0, 0
	}
	max, min = values[0], values[0]
	for _, v := range values[1:] {
		if v > max {
			max = v
		}
		if v < min {
			min = v
		}
	}
	return
}

// gini 计算基尼系数
func gini(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	sum := 0.0
	for _, v := range sorted {
		sum += v
	}
	if sum == 0 {
		return 0
	}

	g := 0.0
	for i, v := range sorted {
		g += (2*float64(i+1) - float64(n) - 1) * v
	}
	g = g / (float64(n) * sum)
	return math.Max(0, math.Min(1, g))
}
