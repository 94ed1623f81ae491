package model

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestDuty_TimeRangeOn(t *testing.T) {
	tests := []struct {
		name      string
		start     string
		end       string
		wantHours float64
		overnight bool
	}{
		{"日间勤务", "08:00", "16:00", 8, false},
		{"跨日勤务结束时间顺延", "22:00", "06:00", 8, true},
		{"起止相同视为24小时", "06:00", "06:00", 24, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := &Duty{StartTime: tt.start, EndTime: tt.end}
			tr := d.TimeRangeOn("2026-03-01")
			if got := tr.Duration().Hours(); got != tt.wantHours {
				t.Errorf("Duration = %.1f小时, want %.1f", got, tt.wantHours)
			}
			if tt.overnight && tr.End.Day() == tr.Start.Day() {
				t.Error("跨日勤务的结束时间应落在次日")
			}
		})
	}
}

func TestAssignment_Overlaps(t *testing.T) {
	base := time.Date(2026, 3, 1, 8, 0, 0, 0, time.Local)
	mk := func(startOffset, endOffset time.Duration) *Assignment {
		return &Assignment{StartTime: base.Add(startOffset), EndTime: base.Add(endOffset)}
	}

	tests := []struct {
		name string
		a, b *Assignment
		want bool
	}{
		{"部分重叠", mk(0, 4*time.Hour), mk(2*time.Hour, 6*time.Hour), true},
		{"完全包含", mk(0, 8*time.Hour), mk(2*time.Hour, 4*time.Hour), true},
		{"首尾相接不算重叠", mk(0, 4*time.Hour), mk(4*time.Hour, 8*time.Hour), false},
		{"完全分离", mk(0, 2*time.Hour), mk(4*time.Hour, 6*time.Hour), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Overlaps(tt.b); got != tt.want {
				t.Errorf("Overlaps = %v, want %v", got, tt.want)
			}
			if got := tt.b.Overlaps(tt.a); got != tt.want {
				t.Errorf("反向 Overlaps = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDiversityHistory(t *testing.T) {
	emp1, emp2 := uuid.New(), uuid.New()
	duty1, duty2 := uuid.New(), uuid.New()

	h := NewDiversityHistory()
	if h.Has(emp1, duty1) {
		t.Error("空历史不应包含任何记录")
	}

	h.Record(emp1, duty1)
	h.Record(emp1, duty1) // 重复记录不增加计数
	h.Record(emp1, duty2)

	if !h.Has(emp1, duty1) {
		t.Error("记录后应能查到")
	}
	if h.Count(emp1) != 2 {
		t.Errorf("Count = %d, want 2", h.Count(emp1))
	}
	if h.Count(emp2) != 0 {
		t.Errorf("未记录员工的 Count = %d, want 0", h.Count(emp2))
	}

	other := NewDiversityHistory()
	other.Record(emp2, duty1)
	h.Merge(other)
	if !h.Has(emp2, duty1) {
		t.Error("合并后应包含另一份历史的记录")
	}

	clone := h.Clone()
	clone.Record(emp2, duty2)
	if h.Has(emp2, duty2) {
		t.Error("修改副本不应影响原历史")
	}
}

func TestIncompatiblePair_Matches(t *testing.T) {
	a, b, c := uuid.New(), uuid.New(), uuid.New()
	p := &IncompatiblePair{EmployeeA: a, EmployeeB: b}

	if !p.Matches(a, b) {
		t.Error("正序应命中")
	}
	if !p.Matches(b, a) {
		t.Error("逆序应命中")
	}
	if p.Matches(a, c) {
		t.Error("不相关员工不应命中")
	}
}
