package restperiod

import (
	"testing"
	"time"
)

func at(hour int) time.Time {
	return time.Date(2026, 1, 11, hour, 0, 0, 0, time.Local)
}

func period(startHour, endHour int) Period {
	return Period{Start: at(startHour), End: at(endHour)}
}

func TestValidate_Continuous(t *testing.T) {
	tests := []struct {
		name      string
		prevEnd   time.Time
		nextStart time.Time
		wantValid bool
		wantType  Type
	}{
		{
			name:      "恰好11小时连续休息，应合法",
			prevEnd:   at(20),
			nextStart: time.Date(2026, 1, 12, 7, 0, 0, 0, time.Local),
			wantValid: true,
			wantType:  TypeContinuous,
		},
		{
			name:      "12小时连续休息，应合法",
			prevEnd:   at(19),
			nextStart: time.Date(2026, 1, 12, 7, 0, 0, 0, time.Local),
			wantValid: true,
			wantType:  TypeContinuous,
		},
		{
			name:      "10小时连续休息，应不合法",
			prevEnd:   at(21),
			nextStart: time.Date(2026, 1, 12, 7, 0, 0, 0, time.Local),
			wantValid: false,
			wantType:  TypeInvalid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Validate(tt.prevEnd, tt.nextStart, nil)
			if result.IsValid != tt.wantValid {
				t.Errorf("IsValid = %v, want %v", result.IsValid, tt.wantValid)
			}
			if result.Type != tt.wantType {
				t.Errorf("Type = %v, want %v", result.Type, tt.wantType)
			}
			if !tt.wantValid && len(result.Violations) == 0 {
				t.Error("不合法结果应包含违规说明")
			}
		})
	}
}

func TestValidate_Split(t *testing.T) {
	tests := []struct {
		name           string
		periods        []Period
		wantValid      bool
		wantType       Type
		wantViolations int
	}{
		{
			name:      "5小时+6小时分割休息，应合法",
			periods:   []Period{period(10, 15), period(18, 24)},
			wantValid: true,
			wantType:  TypeSplit,
		},
		{
			name:           "3小时+8小时分割休息，单段不足4小时应不合法",
			periods:        []Period{period(10, 13), period(15, 23)},
			wantValid:      false,
			wantType:       TypeInvalid,
			wantViolations: 1,
		},
		{
			name:           "2小时+3小时分割休息，两段均不足且合计不足",
			periods:        []Period{period(10, 12), period(14, 17)},
			wantValid:      false,
			wantType:       TypeInvalid,
			wantViolations: 3,
		},
		{
			name:           "三段合计12小时，段数超限应不合法",
			periods:        []Period{period(8, 12), period(13, 17), period(18, 22)},
			wantValid:      false,
			wantType:       TypeInvalid,
			wantViolations: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Validate(time.Time{}, time.Time{}, tt.periods)
			if result.IsValid != tt.wantValid {
				t.Errorf("IsValid = %v, want %v", result.IsValid, tt.wantValid)
			}
			if result.Type != tt.wantType {
				t.Errorf("Type = %v, want %v", result.Type, tt.wantType)
			}
			if tt.wantViolations > 0 && len(result.Violations) != tt.wantViolations {
				t.Errorf("违规条数 = %d, want %d: %v", len(result.Violations), tt.wantViolations, result.Violations)
			}
		})
	}
}

func TestValidate_SinglePeriod(t *testing.T) {
	// 单段显式传入按连续休息处理
	result := Validate(time.Time{}, time.Time{}, []Period{period(8, 20)})
	if !result.IsValid || result.Type != TypeContinuous {
		t.Errorf("12小时单段休息应合法，got valid=%v type=%v", result.IsValid, result.Type)
	}
	if result.TotalHours != 12.0 {
		t.Errorf("TotalHours = %v, want 12", result.TotalHours)
	}
}

func TestCheckMonthlySplitRestLimit(t *testing.T) {
	tests := []struct {
		name        string
		splitCount  int
		totalShifts int
		wantLimit   int
		wantWithin  bool
	}{
		{"10班6次分割，超过配额5次", 6, 10, 5, false},
		{"10班5次分割，恰好达到配额", 5, 10, 5, true},
		{"11班5次分割，配额向下取整为5", 5, 11, 5, true},
		{"无班次时配额为0", 1, 0, 0, false},
		{"未使用分割休息", 0, 8, 4, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CheckMonthlySplitRestLimit(tt.splitCount, tt.totalShifts)
			if result.Limit != tt.wantLimit {
				t.Errorf("Limit = %d, want %d", result.Limit, tt.wantLimit)
			}
			if result.IsWithinLimit != tt.wantWithin {
				t.Errorf("IsWithinLimit = %v, want %v", result.IsWithinLimit, tt.wantWithin)
			}
		})
	}
}
