package checker

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/chengwu/chengwu/pkg/model"
)

func employee(name string, canRollCall bool) *model.Employee {
	return &model.Employee{
		BaseModel:   model.BaseModel{ID: uuid.New()},
		Name:        name,
		Status:      "active",
		CanRollCall: canRollCall,
	}
}

func assign(empID, dutyID uuid.UUID, date string, startHour, endHour int) *model.Assignment {
	day, _ := time.Parse("2006-01-02", date)
	return &model.Assignment{
		BaseModel:  model.BaseModel{ID: uuid.New()},
		EmployeeID: empID,
		DutyID:     dutyID,
		Date:       date,
		StartTime:  day.Add(time.Duration(startHour) * time.Hour),
		EndTime:    day.Add(time.Duration(endHour) * time.Hour),
		Status:     "scheduled",
	}
}

func countByName(violations []model.ConstraintViolation, name string) int {
	n := 0
	for _, v := range violations {
		if v.ConstraintName == name {
			n++
		}
	}
	return n
}

func noRollCall() *Config {
	cfg := DefaultConfig()
	cfg.CheckRollCall = false
	return cfg
}

func TestCheckAll_Overlap(t *testing.T) {
	emp := employee("张伟", false)
	duty := uuid.New()

	assignments := []*model.Assignment{
		assign(emp.ID, duty, "2026-03-02", 8, 16),
		assign(emp.ID, duty, "2026-03-02", 12, 20),
	}

	result := NewChecker(noRollCall()).CheckAll(assignments, []*model.Employee{emp}, nil)
	if countByName(result.Violations, "时间重叠") != 1 {
		t.Errorf("应检出1条时间重叠, got %d", countByName(result.Violations, "时间重叠"))
	}
	if result.ErrorCount == 0 {
		t.Error("时间重叠应计为严重违规")
	}
}

func TestCheckAll_RestTime(t *testing.T) {
	emp := employee("李娜", false)
	duty := uuid.New()

	tests := []struct {
		name        string
		assignments []*model.Assignment
		wantRest    int // "休息时间" 违规条数
	}{
		{
			name: "夜间连续休息10小时，不合法",
			assignments: []*model.Assignment{
				assign(emp.ID, duty, "2026-03-02", 14, 22),
				assign(emp.ID, duty, "2026-03-03", 8, 16),
			},
			wantRest: 1,
		},
		{
			name: "夜间连续休息12小时，合法",
			assignments: []*model.Assignment{
				assign(emp.ID, duty, "2026-03-02", 12, 20),
				assign(emp.ID, duty, "2026-03-03", 8, 16),
			},
			wantRest: 0,
		},
		{
			name: "分割休息 5小时+11小时，合法",
			assignments: []*model.Assignment{
				assign(emp.ID, duty, "2026-03-02", 8, 12),
				assign(emp.ID, duty, "2026-03-02", 17, 21),
				assign(emp.ID, duty, "2026-03-03", 8, 16),
			},
			wantRest: 0,
		},
		{
			name: "分割休息 3小时+12小时，单段不足4小时",
			assignments: []*model.Assignment{
				assign(emp.ID, duty, "2026-03-02", 8, 17),
				assign(emp.ID, duty, "2026-03-02", 20, 21),
				assign(emp.ID, duty, "2026-03-03", 9, 16),
			},
			wantRest: 1,
		},
		{
			name: "休息被分割为三段，无论时长均不合法",
			assignments: []*model.Assignment{
				assign(emp.ID, duty, "2026-03-02", 6, 8),
				assign(emp.ID, duty, "2026-03-02", 12, 14),
				assign(emp.ID, duty, "2026-03-02", 18, 20),
				assign(emp.ID, duty, "2026-03-03", 7, 15),
			},
			wantRest: 1,
		},
		{
			name: "最后一个工作日之后无需校验休息窗口",
			assignments: []*model.Assignment{
				assign(emp.ID, duty, "2026-03-02", 8, 12),
				assign(emp.ID, duty, "2026-03-02", 14, 18),
			},
			wantRest: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := NewChecker(noRollCall()).CheckAll(tt.assignments, []*model.Employee{emp}, nil)
			if got := countByName(result.Violations, "休息时间"); got != tt.wantRest {
				t.Errorf("休息时间违规 = %d, want %d: %+v", got, tt.wantRest, result.Violations)
			}
		})
	}
}

func TestCheckAll_ConsecutiveDays(t *testing.T) {
	emp := employee("王芳", false)
	duty := uuid.New()

	var assignments []*model.Assignment
	for _, date := range (model.DateRange{StartDate: "2026-03-02", EndDate: "2026-03-08"}).Dates() {
		assignments = append(assignments, assign(emp.ID, duty, date, 8, 16))
	}

	result := NewChecker(noRollCall()).CheckAll(assignments, []*model.Employee{emp}, nil)
	if got := countByName(result.Violations, "最大连续工作天数"); got != 1 {
		t.Errorf("连续7天应检出1条违规, got %d", got)
	}
}

func TestCheckAll_RollCallCoverage(t *testing.T) {
	capable := employee("有资格", true)
	incapable := employee("无资格", false)

	rollCallDuty := &model.Duty{
		BaseModel:  model.BaseModel{ID: uuid.New()},
		Name:       "早点名",
		IsRollCall: true,
		IsActive:   true,
	}
	normalDuty := &model.Duty{
		BaseModel: model.BaseModel{ID: uuid.New()},
		Name:      "日勤",
		IsActive:  true,
	}
	employees := []*model.Employee{capable, incapable}
	duties := []*model.Duty{rollCallDuty, normalDuty}

	t.Run("当日无点名勤务分配", func(t *testing.T) {
		assignments := []*model.Assignment{
			assign(capable.ID, normalDuty.ID, "2026-03-02", 8, 16),
		}
		result := NewChecker(nil).CheckAll(assignments, employees, duties)
		if got := countByName(result.Violations, "点名勤务覆盖"); got != 1 {
			t.Errorf("缺少点名勤务应检出1条违规, got %d", got)
		}
	})

	t.Run("点名勤务由无资格员工承担", func(t *testing.T) {
		assignments := []*model.Assignment{
			assign(incapable.ID, rollCallDuty.ID, "2026-03-02", 6, 7),
		}
		result := NewChecker(nil).CheckAll(assignments, employees, duties)
		if got := countByName(result.Violations, "点名勤务资格"); got != 1 {
			t.Errorf("无资格承担点名应检出1条违规, got %d", got)
		}
		if got := countByName(result.Violations, "点名勤务覆盖"); got != 1 {
			t.Errorf("无合格点名时覆盖同样违规, got %d", got)
		}
	})

	t.Run("合格点名通过", func(t *testing.T) {
		assignments := []*model.Assignment{
			assign(capable.ID, rollCallDuty.ID, "2026-03-02", 6, 7),
		}
		result := NewChecker(nil).CheckAll(assignments, employees, duties)
		if result.TotalViolations != 0 {
			t.Errorf("合格点名不应产生违规, got %+v", result.Violations)
		}
	})

	t.Run("关闭点名检查", func(t *testing.T) {
		assignments := []*model.Assignment{
			assign(capable.ID, normalDuty.ID, "2026-03-02", 8, 16),
		}
		result := NewChecker(noRollCall()).CheckAll(assignments, employees, duties)
		if got := countByName(result.Violations, "点名勤务覆盖"); got != 0 {
			t.Errorf("关闭点名检查后不应报告覆盖违规, got %d", got)
		}
	})
}

func TestCheckAll_Counts(t *testing.T) {
	emp := employee("赵强", false)
	duty := uuid.New()

	// 一条严重违规（重叠）加一条严重违规（休息不足）
	assignments := []*model.Assignment{
		assign(emp.ID, duty, "2026-03-02", 8, 16),
		assign(emp.ID, duty, "2026-03-02", 12, 23),
		assign(emp.ID, duty, "2026-03-03", 8, 16),
	}

	result := NewChecker(noRollCall()).CheckAll(assignments, []*model.Employee{emp}, nil)
	if result.TotalViolations != result.ErrorCount+result.WarningCount {
		t.Errorf("违规总数应等于严重数与警告数之和: %d != %d + %d",
			result.TotalViolations, result.ErrorCount, result.WarningCount)
	}
	if result.ErrorCount == 0 {
		t.Error("应存在严重违规")
	}
}
