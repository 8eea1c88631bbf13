package model

import (
	"testing"
	"time"
)

func TestShift_DurationHours(t *testing.T) {
	tests := []struct {
		name  string
		start string
		end   string
		want  float64
	}{
		{"普通白班", "09:00", "17:00", 8},
		{"半小时粒度", "09:00", "13:30", 4.5},
		{"跨日夜班", "22:00", "06:00", 8},
		{"结束等于开始按24小时", "08:00", "08:00", 24},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &Shift{Date: "2026-03-02", StartTime: tt.start, EndTime: tt.end}
			if got := s.DurationHours(); got != tt.want {
				t.Errorf("DurationHours() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestShift_Overlaps(t *testing.T) {
	tests := []struct {
		name string
		a    *Shift
		b    *Shift
		want bool
	}{
		{
			"同日时间重叠",
			&Shift{Date: "2026-03-02", StartTime: "09:00", EndTime: "17:00"},
			&Shift{Date: "2026-03-02", StartTime: "16:00", EndTime: "22:00"},
			true,
		},
		{
			"首尾相接不算重叠",
			&Shift{Date: "2026-03-02", StartTime: "09:00", EndTime: "17:00"},
			&Shift{Date: "2026-03-02", StartTime: "17:00", EndTime: "22:00"},
			false,
		},
		{
			"跨日夜班与次日早班重叠",
			&Shift{Date: "2026-03-02", StartTime: "22:00", EndTime: "07:00"},
			&Shift{Date: "2026-03-03", StartTime: "06:00", EndTime: "14:00"},
			true,
		},
		{
			"跨日夜班与次日午班不重叠",
			&Shift{Date: "2026-03-02", StartTime: "22:00", EndTime: "06:00"},
			&Shift{Date: "2026-03-03", StartTime: "08:00", EndTime: "16:00"},
			false,
		},
		{
			"不同日期不重叠",
			&Shift{Date: "2026-03-02", StartTime: "09:00", EndTime: "17:00"},
			&Shift{Date: "2026-03-03", StartTime: "09:00", EndTime: "17:00"},
			false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Overlaps(tt.b); got != tt.want {
				t.Errorf("Overlaps() = %v, want %v", got, tt.want)
			}
			// 重叠关系应当对称
			if got := tt.b.Overlaps(tt.a); got != tt.want {
				t.Errorf("Overlaps() 反向 = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestShift_EndAt_Overnight(t *testing.T) {
	s := &Shift{Date: "2026-03-02", StartTime: "22:00", EndTime: "06:00"}

	end := s.EndAt()
	if end.Day() != 3 {
		t.Errorf("跨日班次结束时间应落在次日, got %v", end)
	}
	if !end.After(s.StartAt()) {
		t.Error("结束时间必须晚于开始时间")
	}
}

func TestShift_Capacity(t *testing.T) {
	s := &Shift{RequiredEmployees: 2, MaxEmployees: 3}

	if s.IsFullyStaffed() {
		t.Error("空班次不应满员")
	}
	if s.OpenSlots() != 2 {
		t.Errorf("OpenSlots() = %d, want 2", s.OpenSlots())
	}

	s.AssignedEmployees = append(s.AssignedEmployees, NewBaseModel().ID, NewBaseModel().ID)
	if !s.IsFullyStaffed() {
		t.Error("达到下限应视为满员")
	}
	if s.IsFull() {
		t.Error("未达硬上限不应为满")
	}

	s.AssignedEmployees = append(s.AssignedEmployees, NewBaseModel().ID)
	if !s.IsFull() {
		t.Error("达到硬上限应为满")
	}
	if s.OpenSlots() != 0 {
		t.Errorf("超编时 OpenSlots() = %d, want 0", s.OpenSlots())
	}
}

func TestWeekStart(t *testing.T) {
	tests := []struct {
		name string
		date string
		want string
	}{
		{"周一返回自身", "2026-03-02", "2026-03-02"},
		{"周三回到周一", "2026-03-04", "2026-03-02"},
		{"周日回到周一", "2026-03-08", "2026-03-02"},
		{"跨月回退", "2026-03-01", "2026-02-23"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := WeekStart(tt.date); got != tt.want {
				t.Errorf("WeekStart(%s) = %s, want %s", tt.date, got, tt.want)
			}
		})
	}
}

func TestWeekEnd(t *testing.T) {
	if got := WeekEnd("2026-03-04"); got != "2026-03-08" {
		t.Errorf("WeekEnd() = %s, want 2026-03-08", got)
	}
}

func TestShift_Weekday(t *testing.T) {
	s := &Shift{Date: "2026-03-07"}
	if s.Weekday() != time.Saturday {
		t.Errorf("Weekday() = %v, want Saturday", s.Weekday())
	}
}
