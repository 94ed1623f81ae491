package constraint

import (
	"reflect"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/chengwu/chengwu/pkg/model"
)

func testEmployee(name string) *model.Employee {
	return &model.Employee{
		BaseModel: model.BaseModel{ID: uuid.New()},
		Name:      name,
		Status:    "active",
	}
}

func testAssignment(empID uuid.UUID, date string, startHour, endHour int) *model.Assignment {
	day, _ := time.Parse("2006-01-02", date)
	return &model.Assignment{
		BaseModel:  model.BaseModel{ID: uuid.New()},
		EmployeeID: empID,
		DutyID:     uuid.New(),
		Date:       date,
		StartTime:  day.Add(time.Duration(startHour) * time.Hour),
		EndTime:    day.Add(time.Duration(endHour) * time.Hour),
		Status:     "scheduled",
	}
}

func testConstraint(typ model.ConstraintType, threshold float64, level model.EnforcementLevel) *model.Constraint {
	return &model.Constraint{
		BaseModel: model.NewBaseModel(),
		Name:      string(typ),
		Type:      typ,
		Threshold: threshold,
		Level:     level,
		IsActive:  true,
	}
}

func TestRegistry_UnknownCalc(t *testing.T) {
	emp := testEmployee("张伟")
	ctx := NewContext("东京营业所", "2026-03-01", "2026-03-01")
	ctx.SetEmployees([]*model.Employee{emp})
	ctx.AddAssignment(testAssignment(emp.ID, "2026-03-01", 8, 16))

	c := testConstraint(model.ConstraintMaxShiftsPerDay, 0, model.LevelMandatory)
	c.CalcName = "nonexistent_calc"

	registry := NewRegistry()
	if unbound := registry.ValidateConstraints([]*model.Constraint{c}); len(unbound) != 1 {
		t.Errorf("未注册的计算函数应在校验阶段报告, got %v", unbound)
	}

	// 评估阶段宽松放行：不产生违规，不中断
	e := NewEvaluator([]*model.Constraint{c}, registry)
	result := e.EvaluateAll(ctx)
	if result.Total() != 0 {
		t.Errorf("未注册计算函数的约束应被跳过, got %d 条违规", result.Total())
	}
}

func TestRegistry_CustomCalc(t *testing.T) {
	emp := testEmployee("李娜")
	ctx := NewContext("东京营业所", "2026-03-01", "2026-03-01")
	ctx.SetEmployees([]*model.Employee{emp})

	registry := NewRegistry()
	registry.Register("always_one", func(ctx *Context, c *model.Constraint) []Measurement {
		return []Measurement{{EmployeeID: emp.ID, Date: "2026-03-01", Actual: 1}}
	})

	c := testConstraint(model.ConstraintMaxShiftsPerDay, 0, model.LevelMandatory)
	c.CalcName = "always_one"
	c.Operator = "<="

	e := NewEvaluator([]*model.Constraint{c}, registry)
	result := e.EvaluateAll(ctx)
	if len(result.Violations) != 1 {
		t.Fatalf("自定义计算函数应参与评估, got %d 条违规", len(result.Violations))
	}
	if result.Violations[0].Actual != 1 {
		t.Errorf("Actual = %.1f, want 1", result.Violations[0].Actual)
	}
}

func TestCompare_UnknownOperator(t *testing.T) {
	tests := []struct {
		name          string
		operator      string
		actual        float64
		threshold     float64
		wantSatisfied bool
		wantKnown     bool
	}{
		{"大于等于满足", ">=", 11, 11, true, true},
		{"大于等于不满足", ">=", 10, 11, false, true},
		{"小于等于满足", "<=", 3, 3, true, true},
		{"小于不满足", "<", 5, 5, false, true},
		{"等于", "==", 2, 2, true, true},
		{"不等于", "!=", 2, 2, false, true},
		{"未知运算符按满足处理", "~=", 99, 1, true, false},
		{"空运算符同样未知", "", 99, 1, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			satisfied, known := Compare(tt.actual, tt.threshold, tt.operator)
			if satisfied != tt.wantSatisfied || known != tt.wantKnown {
				t.Errorf("Compare(%.0f, %.0f, %q) = (%v, %v), want (%v, %v)",
					tt.actual, tt.threshold, tt.operator, satisfied, known, tt.wantSatisfied, tt.wantKnown)
			}
		})
	}
}

func TestEvaluate_UnknownOperatorSkipsConstraint(t *testing.T) {
	emp := testEmployee("王芳")
	ctx := NewContext("东京营业所", "2026-03-01", "2026-03-01")
	ctx.SetEmployees([]*model.Employee{emp})
	ctx.AddAssignment(testAssignment(emp.ID, "2026-03-01", 8, 16))
	ctx.AddAssignment(testAssignment(emp.ID, "2026-03-01", 17, 20))

	c := testConstraint(model.ConstraintMaxShiftsPerDay, 1, model.LevelMandatory)
	c.Operator = "~="

	e := NewEvaluator([]*model.Constraint{c}, NewRegistry())
	if violations := e.Evaluate(c, ctx); violations != nil {
		t.Errorf("未知运算符的约束应整体跳过, got %v", violations)
	}
}

func TestEvaluate_ConsecutiveDays(t *testing.T) {
	emp := testEmployee("赵强")
	ctx := NewContext("东京营业所", "2026-03-01", "2026-03-07")
	ctx.SetEmployees([]*model.Employee{emp})
	for _, date := range (model.DateRange{StartDate: "2026-03-01", EndDate: "2026-03-07"}).Dates() {
		ctx.AddAssignment(testAssignment(emp.ID, date, 8, 16))
	}

	c := testConstraint(model.ConstraintMaxConsecutiveDays, 6, model.LevelMandatory)
	e := NewEvaluator([]*model.Constraint{c}, NewRegistry())

	violations := e.Evaluate(c, ctx)
	if len(violations) != 1 {
		t.Fatalf("连续7天超过限制6天应恰好产生1条违规, got %d", len(violations))
	}
	if violations[0].Date != "2026-03-07" {
		t.Errorf("违规日期 = %s, want 2026-03-07", violations[0].Date)
	}
	if violations[0].Actual != 7 {
		t.Errorf("Actual = %.0f, want 7", violations[0].Actual)
	}
	if violations[0].Severity != model.SeverityCritical {
		t.Errorf("Severity = %s, want critical", violations[0].Severity)
	}
}

func TestEvaluate_ConsecutiveDaysResetOnGap(t *testing.T) {
	emp := testEmployee("孙敏")
	ctx := NewContext("东京营业所", "2026-03-01", "2026-03-10")
	ctx.SetEmployees([]*model.Employee{emp})
	// 3月1日至4日连续，休一天后5日至8日再连续
	for _, date := range []string{"2026-03-01", "2026-03-02", "2026-03-03", "2026-03-04",
		"2026-03-06", "2026-03-07", "2026-03-08"} {
		ctx.AddAssignment(testAssignment(emp.ID, date, 8, 16))
	}

	c := testConstraint(model.ConstraintMaxConsecutiveDays, 6, model.LevelMandatory)
	e := NewEvaluator([]*model.Constraint{c}, NewRegistry())

	if violations := e.Evaluate(c, ctx); len(violations) != 0 {
		t.Errorf("休息日重置连续计数后不应违规, got %d", len(violations))
	}
}

func TestEvaluate_DailyCoverage(t *testing.T) {
	emp1, emp2 := testEmployee("甲"), testEmployee("乙")
	ctx := NewContext("东京营业所", "2026-03-01", "2026-03-02")
	ctx.SetEmployees([]*model.Employee{emp1, emp2})
	ctx.SpecialDays = map[string]bool{"2026-03-02": true}

	// 两天各一人出勤
	ctx.AddAssignment(testAssignment(emp1.ID, "2026-03-01", 8, 16))
	ctx.AddAssignment(testAssignment(emp2.ID, "2026-03-02", 8, 16))

	c := testConstraint(model.ConstraintDailyCoverage, 1, model.LevelMandatory)
	c.Params = model.JSONMap{"special_day_min": float64(2)}

	e := NewEvaluator([]*model.Constraint{c}, NewRegistry())
	violations := e.Evaluate(c, ctx)

	// 平日1人满足，特异日要求2人只有1人
	if len(violations) != 1 {
		t.Fatalf("应只有特异日违规, got %d", len(violations))
	}
	if violations[0].Date != "2026-03-02" {
		t.Errorf("违规日期 = %s, want 2026-03-02", violations[0].Date)
	}
	if violations[0].Expected != 2 {
		t.Errorf("Expected = %.0f, want 2", violations[0].Expected)
	}
}

func TestEvaluate_AllowanceBalance(t *testing.T) {
	emp1, emp2 := testEmployee("陈一"), testEmployee("周二")
	allowanceDuty := &model.Duty{
		BaseModel:    model.BaseModel{ID: uuid.New()},
		Name:         "津贴勤务",
		HasAllowance: true,
		IsActive:     true,
	}

	ctx := NewContext("东京营业所", "2026-03-01", "2026-03-03")
	ctx.SetEmployees([]*model.Employee{emp1, emp2})
	ctx.SetDuties([]*model.Duty{allowanceDuty})
	for _, date := range []string{"2026-03-01", "2026-03-02", "2026-03-03"} {
		a := testAssignment(emp1.ID, date, 8, 16)
		a.DutyID = allowanceDuty.ID
		ctx.AddAssignment(a)
	}

	c := testConstraint(model.ConstraintAllowanceBalance, 2, model.LevelStrict)
	e := NewEvaluator([]*model.Constraint{c}, NewRegistry())

	violations := e.Evaluate(c, ctx)
	if len(violations) != 1 {
		t.Fatalf("津贴差3超过阈值2应产生1条违规, got %d", len(violations))
	}
	v := violations[0]
	if v.Actual != 3 {
		t.Errorf("Actual = %.0f, want 3", v.Actual)
	}
	if v.Severity != model.SeverityWarning {
		t.Errorf("strict 级别应映射为 warning, got %s", v.Severity)
	}
}

func TestEvaluate_MinRestHours(t *testing.T) {
	emp := testEmployee("吴三")
	ctx := NewContext("东京营业所", "2026-03-01", "2026-03-02")
	ctx.SetEmployees([]*model.Employee{emp})
	// 3月1日22时下班，3月2日8时上班，仅休息10小时
	ctx.AddAssignment(testAssignment(emp.ID, "2026-03-01", 14, 22))
	ctx.AddAssignment(testAssignment(emp.ID, "2026-03-02", 8, 16))

	c := testConstraint(model.ConstraintMinRestHours, 11, model.LevelMandatory)
	e := NewEvaluator([]*model.Constraint{c}, NewRegistry())

	violations := e.Evaluate(c, ctx)
	if len(violations) != 1 {
		t.Fatalf("休息10小时不足11小时应产生1条违规, got %d", len(violations))
	}
	if violations[0].Actual != 10 {
		t.Errorf("Actual = %.1f, want 10", violations[0].Actual)
	}
	if violations[0].Date != "2026-03-02" {
		t.Errorf("违规日期应取后一班次的日期, got %s", violations[0].Date)
	}
}

func TestEvaluateAll_Deterministic(t *testing.T) {
	emp := testEmployee("郑四")
	ctx := NewContext("东京营业所", "2026-03-01", "2026-03-08")
	ctx.SetEmployees([]*model.Employee{emp})
	for _, date := range (model.DateRange{StartDate: "2026-03-01", EndDate: "2026-03-08"}).Dates() {
		ctx.AddAssignment(testAssignment(emp.ID, date, 8, 20))
	}

	constraints := []*model.Constraint{
		testConstraint(model.ConstraintMaxConsecutiveDays, 6, model.LevelMandatory),
		testConstraint(model.ConstraintMaxWeeklyHours, 40, model.LevelStrict),
		testConstraint(model.ConstraintMinRestHours, 11, model.LevelMandatory),
	}
	e := NewEvaluator(constraints, NewRegistry())

	first := e.EvaluateAll(ctx)
	second := e.EvaluateAll(ctx)
	if !reflect.DeepEqual(first, second) {
		t.Error("相同上下文重复评估应产生一致结果")
	}
	if first.Total() == 0 {
		t.Error("高负荷排班应产生违规")
	}
}

func TestEvaluateCandidate_RestoresContext(t *testing.T) {
	emp1, emp2 := testEmployee("冯五"), testEmployee("褚六")
	ctx := NewContext("东京营业所", "2026-03-01", "2026-03-01")
	ctx.SetEmployees([]*model.Employee{emp1, emp2})
	ctx.AddAssignment(testAssignment(emp1.ID, "2026-03-01", 8, 16))
	before := len(ctx.Assignments)

	c := testConstraint(model.ConstraintMaxShiftsPerDay, 1, model.LevelMandatory)
	e := NewEvaluator([]*model.Constraint{c}, NewRegistry())

	candidate := testAssignment(emp1.ID, "2026-03-01", 17, 20)
	violations := e.EvaluateCandidate(ctx, candidate)

	if len(ctx.Assignments) != before {
		t.Errorf("候选评估后上下文应恢复原状: len = %d, want %d", len(ctx.Assignments), before)
	}
	if len(violations) != 1 {
		t.Fatalf("同日第二班超过上限应产生1条违规, got %d", len(violations))
	}
	// 只返回候选员工自身范围的违规
	for _, v := range violations {
		if v.EmployeeID != emp1.ID {
			t.Errorf("违规应限定候选员工, got 员工 %s", v.EmployeeID)
		}
	}
}

func TestEvaluateCandidate_ExcludesAggregateViolations(t *testing.T) {
	emp := testEmployee("卫七")
	ctx := NewContext("东京营业所", "2026-03-01", "2026-03-01")
	ctx.SetEmployees([]*model.Employee{emp})

	// 覆盖约束按全天聚合评估，候选评估阶段不应因覆盖缺口产生违规
	c := testConstraint(model.ConstraintDailyCoverage, 3, model.LevelMandatory)
	e := NewEvaluator([]*model.Constraint{c}, NewRegistry())

	candidate := testAssignment(emp.ID, "2026-03-01", 8, 16)
	if violations := e.EvaluateCandidate(ctx, candidate); len(violations) != 0 {
		t.Errorf("聚合类违规不应出现在候选评估结果中, got %+v", violations)
	}

	// 同一上下文的全量评估仍然报告覆盖缺口
	ctx.AddAssignment(candidate)
	if result := e.EvaluateAll(ctx); len(result.Violations) != 1 {
		t.Errorf("全量评估应报告覆盖缺口, got %d 条", len(result.Violations))
	}
}

func TestNewEvaluator_FiltersInactive(t *testing.T) {
	active := testConstraint(model.ConstraintMaxConsecutiveDays, 6, model.LevelMandatory)
	inactive := testConstraint(model.ConstraintMinRestHours, 11, model.LevelMandatory)
	inactive.IsActive = false

	e := NewEvaluator([]*model.Constraint{active, inactive}, NewRegistry())
	if len(e.Constraints()) != 1 {
		t.Errorf("停用的约束应被过滤, got %d", len(e.Constraints()))
	}
}
