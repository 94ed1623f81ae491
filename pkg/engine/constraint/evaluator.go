// Package constraint 提供约束评估上下文与评估器
package constraint

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/chengwu/chengwu/pkg/logger"
	"github.com/chengwu/chengwu/pkg/model"
)

// Result 全量评估结果（按严重程度分组）
type Result struct {
	Violations []model.ConstraintViolation `json:"violations"` // critical
	Warnings   []model.ConstraintViolation `json:"warnings"`
	Info       []model.ConstraintViolation `json:"info"`
}

// Total 返回违规总数
func (r *Result) Total() int {
	return len(r.Violations) + len(r.Warnings) + len(r.Info)
}

// All 返回全部违规（severity 降序分组，组内保持评估顺序）
func (r *Result) All() []model.ConstraintViolation {
	all := make([]model.ConstraintViolation, 0, r.Total())
	all = append(all, r.Violations...)
	all = append(all, r.Warnings...)
	all = append(all, r.Info...)
	return all
}

// add 按严重程度归类违规
func (r *Result) add(v model.ConstraintViolation) {
	switch v.Severity {
	case model.SeverityCritical:
		r.Violations = append(r.Violations, v)
	case model.SeverityWarning:
		r.Warnings = append(r.Warnings, v)
	default:
		r.Info = append(r.Info, v)
	}
}

// Evaluator 约束评估器
// 约束列表在生成前加载一次，评估期间只读。
type Evaluator struct {
	constraints []*model.Constraint
	registry    *Registry
	logger      *logger.EngineLogger
}

// NewEvaluator 创建约束评估器
// 加载阶段即校验计算函数绑定，无法绑定的约束评估时跳过。
func NewEvaluator(constraints []*model.Constraint, registry *Registry) *Evaluator {
	if registry == nil {
		registry = NewRegistry()
	}
	active := make([]*model.Constraint, 0, len(constraints))
	for _, c := range constraints {
		if c.IsActive {
			active = append(active, c)
		}
	}
	registry.ValidateConstraints(active)
	return &Evaluator{
		constraints: active,
		registry:    registry,
		logger:      logger.NewEngineLogger(),
	}
}

// Constraints 返回生效中的约束
func (e *Evaluator) Constraints() []*model.Constraint {
	return e.constraints
}

// EvaluateAll 评估全部约束
// 相同上下文重复评估产生逐字节一致的结果。
func (e *Evaluator) EvaluateAll(ctx *Context) *Result {
	result := &Result{
		Violations: make([]model.ConstraintViolation, 0),
		Warnings:   make([]model.ConstraintViolation, 0),
		Info:       make([]model.ConstraintViolation, 0),
	}
	for _, c := range e.constraints {
		for _, v := range e.Evaluate(c, ctx) {
			result.add(v)
		}
	}
	return result
}

// Evaluate 评估单个约束
func (e *Evaluator) Evaluate(c *model.Constraint, ctx *Context) []model.ConstraintViolation {
	switch c.Type {
	case model.ConstraintMaxConsecutiveDays:
		return e.evaluateConsecutiveDays(c, ctx)
	case model.ConstraintDailyCoverage:
		return e.evaluateDailyCoverage(c, ctx)
	case model.ConstraintDailyExtraStaff:
		return e.evaluateDailyExtraStaff(c, ctx)
	case model.ConstraintAllowanceBalance:
		return e.evaluateAllowanceBalance(c, ctx)
	}
	return e.evaluateGeneric(c, ctx)
}

// EvaluateCandidate 评估追加一个候选分配后的约束状态
// 只返回候选员工自身范围的违规；无员工归属的聚合类违规（覆盖、机动
// 人员、均衡）不在此返回。生成过程中覆盖必然逐步补足，候选不应因
// 尚未补足的缺口被拒绝，聚合类由调用方在全天提交后统一评估。
// 上下文在评估后恢复原状。
func (e *Evaluator) EvaluateCandidate(ctx *Context, candidate *model.Assignment) []model.ConstraintViolation {
	ctx.AddAssignment(candidate)
	defer ctx.RemoveAssignment(candidate.ID)

	var violations []model.ConstraintViolation
	for _, c := range e.constraints {
		for _, v := range e.Evaluate(c, ctx) {
			if v.EmployeeID == candidate.EmployeeID {
				violations = append(violations, v)
			}
		}
	}
	return violations
}

// evaluateGeneric 数据驱动约束：计算函数 + 比较运算符 + 阈值
// 计算函数缺失按无操作处理（不产生违规），未知运算符同样宽松放行。
func (e *Evaluator) evaluateGeneric(c *model.Constraint, ctx *Context) []model.ConstraintViolation {
	name := c.CalcName
	if name == "" {
		name = string(c.Type)
	}
	fn, ok := e.registry.Lookup(name)
	if !ok {
		// 宽松失败：配置异常不阻断排班
		e.logger.ConstraintSkipped(c.Name, fmt.Sprintf("计算函数 '%s' 未注册", name))
		return nil
	}

	operator := c.Operator
	if operator == "" {
		operator = defaultOperator(c.Type)
	}

	var violations []model.ConstraintViolation
	for _, m := range fn(ctx, c) {
		satisfied, known := Compare(m.Actual, c.Threshold, operator)
		if !known {
			e.logger.ConstraintSkipped(c.Name, fmt.Sprintf("未知比较运算符 '%s'", operator))
			return nil
		}
		if satisfied {
			continue
		}
		violations = append(violations, model.ConstraintViolation{
			ConstraintID:   c.ID,
			ConstraintName: c.Name,
			Type:           c.Type,
			EmployeeID:     m.EmployeeID,
			Date:           m.Date,
			Severity:       model.SeverityFor(c.Level),
			Actual:         m.Actual,
			Expected:       c.Threshold,
			Message: fmt.Sprintf("%s: 员工 %s 在 %s 实际值 %.1f，要求 %s %.1f",
				c.Name, e.employeeName(ctx, m.EmployeeID), m.Date, m.Actual, operator, c.Threshold),
		})
	}
	return violations
}

// defaultOperator 返回约束类型的默认比较运算符
func defaultOperator(t model.ConstraintType) string {
	switch t {
	case model.ConstraintMinRestHours, model.ConstraintMonthlyDaysOff:
		return ">="
	default:
		return "<="
	}
}

// evaluateConsecutiveDays 最大连续工作天数
// 沿日期升序扫描：间隔恰好一天则连续计数，否则重置；
// 超过阈值的每一天各产生一条违规。
func (e *Evaluator) evaluateConsecutiveDays(c *model.Constraint, ctx *Context) []model.ConstraintViolation {
	maxDays := int(c.Threshold)
	var violations []model.ConstraintViolation

	for _, emp := range ctx.Employees {
		dates := ctx.GetEmployeeDates(emp.ID)
		streak := 0
		for i, date := range dates {
			if i > 0 && model.IsConsecutiveDate(dates[i-1], date) {
				streak++
			} else {
				streak = 1
			}
			if streak > maxDays {
				violations = append(violations, model.ConstraintViolation{
					ConstraintID:   c.ID,
					ConstraintName: c.Name,
					Type:           c.Type,
					EmployeeID:     emp.ID,
					Date:           date,
					Severity:       model.SeverityFor(c.Level),
					Actual:         float64(streak),
					Expected:       c.Threshold,
					Message: fmt.Sprintf("%s: 员工 %s 截至 %s 已连续工作 %d 天，超过限制 %d 天",
						c.Name, emp.Name, date, streak, maxDays),
				})
			}
		}
	}
	return violations
}

// evaluateDailyCoverage 每日人员覆盖
// 按日统计出勤人数，与当日类型对应的最低要求比较；
// 特异日可通过参数 special_day_min 设置不同的最低人数。
func (e *Evaluator) evaluateDailyCoverage(c *model.Constraint, ctx *Context) []model.ConstraintViolation {
	var violations []model.ConstraintViolation

	for _, date := range e.contextDates(ctx) {
		required := c.Threshold
		if ctx.IsSpecialDay(date) {
			required = c.ParamFloat("special_day_min", c.Threshold)
		}

		assigned := make(map[uuid.UUID]bool)
		for _, a := range ctx.GetDateAssignments(date) {
			assigned[a.EmployeeID] = true
		}

		if float64(len(assigned)) < required {
			violations = append(violations, model.ConstraintViolation{
				ConstraintID:   c.ID,
				ConstraintName: c.Name,
				Type:           c.Type,
				Date:           date,
				Severity:       model.SeverityFor(c.Level),
				Actual:         float64(len(assigned)),
				Expected:       required,
				Message: fmt.Sprintf("%s: %s 出勤 %d 人，少于要求的 %.0f 人",
					c.Name, date, len(assigned), required),
			})
		}
	}
	return violations
}

// evaluateDailyExtraStaff 每日机动人员
// 按日统计未承担任何勤务的在职员工数，低于要求则违规。
func (e *Evaluator) evaluateDailyExtraStaff(c *model.Constraint, ctx *Context) []model.ConstraintViolation {
	var violations []model.ConstraintViolation

	for _, date := range e.contextDates(ctx) {
		required := c.Threshold
		if ctx.IsSpecialDay(date) {
			required = c.ParamFloat("special_day_min", c.Threshold)
		}

		idle := 0
		for _, emp := range ctx.Employees {
			if !emp.IsActive() {
				continue
			}
			if ctx.GetEmployeeShiftsOnDate(emp.ID, date) == 0 {
				idle++
			}
		}

		if float64(idle) < required {
			violations = append(violations, model.ConstraintViolation{
				ConstraintID:   c.ID,
				ConstraintName: c.Name,
				Type:           c.Type,
				Date:           date,
				Severity:       model.SeverityFor(c.Level),
				Actual:         float64(idle),
				Expected:       required,
				Message: fmt.Sprintf("%s: %s 机动人员 %d 人，少于要求的 %.0f 人",
					c.Name, date, idle, required),
			})
		}
	}
	return violations
}

// evaluateAllowanceBalance 津贴勤务均衡
// 统计每位员工承担津贴勤务的次数，最多与最少之差超过阈值则违规，
// 违规说明中列出两端的员工。
func (e *Evaluator) evaluateAllowanceBalance(c *model.Constraint, ctx *Context) []model.ConstraintViolation {
	if len(ctx.Employees) == 0 {
		return nil
	}

	counts := make(map[uuid.UUID]int)
	for _, emp := range ctx.Employees {
		counts[emp.ID] = 0
	}
	for _, a := range ctx.Assignments {
		duty := ctx.GetDuty(a.DutyID)
		if duty == nil || !duty.HasAllowance {
			continue
		}
		if _, ok := counts[a.EmployeeID]; ok {
			counts[a.EmployeeID]++
		}
	}

	minCount, maxCount := -1, -1
	for _, emp := range ctx.Employees {
		n := counts[emp.ID]
		if minCount < 0 || n < minCount {
			minCount = n
		}
		if n > maxCount {
			maxCount = n
		}
	}

	spread := maxCount - minCount
	if float64(spread) <= c.Threshold {
		return nil
	}

	var maxNames, minNames []string
	for _, emp := range ctx.Employees {
		switch counts[emp.ID] {
		case maxCount:
			maxNames = append(maxNames, emp.Name)
		case minCount:
			minNames = append(minNames, emp.Name)
		}
	}
	sort.Strings(maxNames)
	sort.Strings(minNames)

	return []model.ConstraintViolation{{
		ConstraintID:   c.ID,
		ConstraintName: c.Name,
		Type:           c.Type,
		Severity:       model.SeverityFor(c.Level),
		Actual:         float64(spread),
		Expected:       c.Threshold,
		Message: fmt.Sprintf("%s: 津贴勤务次数最多 %d 次（%s）与最少 %d 次（%s）相差 %d，超过允许的 %.0f",
			c.Name, maxCount, strings.Join(maxNames, "、"),
			minCount, strings.Join(minNames, "、"), spread, c.Threshold),
	}}
}

// contextDates 返回评估涉及的日期：优先使用显式日期范围
func (e *Evaluator) contextDates(ctx *Context) []string {
	if ctx.StartDate != "" && ctx.EndDate != "" {
		if dates := (model.DateRange{StartDate: ctx.StartDate, EndDate: ctx.EndDate}).Dates(); dates != nil {
			return dates
		}
	}
	return ctx.Dates()
}

// employeeName 获取员工显示名称
func (e *Evaluator) employeeName(ctx *Context, id uuid.UUID) string {
	if emp := ctx.GetEmployee(id); emp != nil {
		return emp.Name
	}
	return id.String()
}
