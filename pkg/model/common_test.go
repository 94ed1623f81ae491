package model

import (
	"testing"
)

func TestSeverityFor(t *testing.T) {
	tests := []struct {
		name  string
		level EnforcementLevel
		want  Severity
	}{
		{"强制约束映射为严重", LevelMandatory, SeverityCritical},
		{"严格约束映射为警告", LevelStrict, SeverityWarning},
		{"灵活约束映射为提示", LevelFlexible, SeverityInfo},
		{"未知级别按提示处理", EnforcementLevel("other"), SeverityInfo},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SeverityFor(tt.level); got != tt.want {
				t.Errorf("SeverityFor(%s) = %s, want %s", tt.level, got, tt.want)
			}
		})
	}
}

func TestDateRange_Dates(t *testing.T) {
	tests := []struct {
		name      string
		dr        DateRange
		wantCount int
		wantFirst string
		wantLast  string
	}{
		{
			name:      "三天范围含两端",
			dr:        DateRange{StartDate: "2026-03-01", EndDate: "2026-03-03"},
			wantCount: 3,
			wantFirst: "2026-03-01",
			wantLast:  "2026-03-03",
		},
		{
			name:      "单日范围",
			dr:        DateRange{StartDate: "2026-03-01", EndDate: "2026-03-01"},
			wantCount: 1,
			wantFirst: "2026-03-01",
			wantLast:  "2026-03-01",
		},
		{
			name:      "跨月范围",
			dr:        DateRange{StartDate: "2026-02-27", EndDate: "2026-03-02"},
			wantCount: 4,
			wantFirst: "2026-02-27",
			wantLast:  "2026-03-02",
		},
		{
			name:      "结束早于开始，返回空",
			dr:        DateRange{StartDate: "2026-03-03", EndDate: "2026-03-01"},
			wantCount: 0,
		},
		{
			name:      "格式非法，返回空",
			dr:        DateRange{StartDate: "03/01/2026", EndDate: "2026-03-03"},
			wantCount: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dates := tt.dr.Dates()
			if len(dates) != tt.wantCount {
				t.Fatalf("len(Dates()) = %d, want %d", len(dates), tt.wantCount)
			}
			if tt.wantCount == 0 {
				return
			}
			if dates[0] != tt.wantFirst {
				t.Errorf("首日 = %s, want %s", dates[0], tt.wantFirst)
			}
			if dates[len(dates)-1] != tt.wantLast {
				t.Errorf("末日 = %s, want %s", dates[len(dates)-1], tt.wantLast)
			}
		})
	}
}

func TestIsConsecutiveDate(t *testing.T) {
	tests := []struct {
		name  string
		date1 string
		date2 string
		want  bool
	}{
		{"相邻两天", "2026-03-01", "2026-03-02", true},
		{"跨月相邻", "2026-02-28", "2026-03-01", true},
		{"隔一天", "2026-03-01", "2026-03-03", false},
		{"逆序不算相邻", "2026-03-02", "2026-03-01", false},
		{"同一天", "2026-03-01", "2026-03-01", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsConsecutiveDate(tt.date1, tt.date2); got != tt.want {
				t.Errorf("IsConsecutiveDate(%s, %s) = %v, want %v", tt.date1, tt.date2, got, tt.want)
			}
		})
	}
}
