// Package constraint 提供约束评估上下文与评估器
package constraint

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/chengwu/chengwu/pkg/logger"
	"github.com/chengwu/chengwu/pkg/model"
)

// Measurement 计算函数输出的一次测量
// 每条测量对应一个（员工，日期）维度的实际值，与约束阈值比较。
type Measurement struct {
	EmployeeID uuid.UUID
	Date       string
	Actual     float64
}

// CalcFunc 约束计算函数
// 纯函数：从评估上下文计算测量值序列，不修改上下文。
type CalcFunc func(ctx *Context, c *model.Constraint) []Measurement

// Registry 计算函数注册表
// 约束按名称动态绑定计算函数，新增约束类型无需改动评估器。
// 未注册的名称按未违规处理（宽松失败），仅记录警告。
type Registry struct {
	funcs  map[string]CalcFunc
	mu     sync.RWMutex
	logger *logger.EngineLogger
}

// NewRegistry 创建并注册默认计算函数
func NewRegistry() *Registry {
	r := &Registry{
		funcs:  make(map[string]CalcFunc),
		logger: logger.NewEngineLogger(),
	}
	r.Register(string(model.ConstraintMinRestHours), calcMinRestHours)
	r.Register(string(model.ConstraintMaxWeeklyHours), calcWeeklyHours)
	r.Register(string(model.ConstraintMaxMonthlyHours), calcMonthlyHours)
	r.Register(string(model.ConstraintMaxShiftsPerDay), calcShiftsPerDay)
	r.Register(string(model.ConstraintMonthlyDaysOff), calcMonthlyDaysOff)
	return r
}

// Register 注册计算函数
func (r *Registry) Register(name string, fn CalcFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.funcs[name] = fn
}

// Lookup 查找计算函数
func (r *Registry) Lookup(name string) (CalcFunc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.funcs[name]
	return fn, ok
}

// ValidateConstraints 在加载阶段校验约束配置
// 返回无法绑定计算函数的约束名称列表；这些约束在评估时被跳过。
func (r *Registry) ValidateConstraints(constraints []*model.Constraint) []string {
	var unbound []string
	for _, c := range constraints {
		if !usesCalcFunc(c.Type) {
			continue
		}
		name := c.CalcName
		if name == "" {
			name = string(c.Type)
		}
		if _, ok := r.Lookup(name); !ok {
			unbound = append(unbound, c.Name)
			r.logger.ConstraintSkipped(c.Name, fmt.Sprintf("计算函数 '%s' 未注册", name))
		}
	}
	return unbound
}

// usesCalcFunc 检查约束类型是否走计算函数路径
func usesCalcFunc(t model.ConstraintType) bool {
	switch t {
	case model.ConstraintMaxConsecutiveDays,
		model.ConstraintDailyCoverage,
		model.ConstraintDailyExtraStaff,
		model.ConstraintAllowanceBalance:
		return false
	}
	return true
}

// Compare 按配置的比较运算符判断实际值是否满足约束
// 返回（是否满足，运算符是否有效）。未知运算符按满足处理（宽松失败），
// 由调用方记录警告。
func Compare(actual, threshold float64, operator string) (satisfied, known bool) {
	switch operator {
	case ">":
		return actual > threshold, true
	case ">=":
		return actual >= threshold, true
	case "<":
		return actual < threshold, true
	case "<=":
		return actual <= threshold, true
	case "==":
		return actual == threshold, true
	case "!=":
		return actual != threshold, true
	}
	return true, false
}

// ----------------------------------------------------------------------------
// 默认计算函数
// ----------------------------------------------------------------------------

// calcMinRestHours 计算每位员工相邻班次之间的休息时长
// 每个班次间隔产生一条测量，日期取后一班次的日期。
func calcMinRestHours(ctx *Context, _ *model.Constraint) []Measurement {
	var measurements []Measurement

	for _, emp := range ctx.Employees {
		assignments := ctx.GetEmployeeAssignments(emp.ID)
		if len(assignments) < 2 {
			continue
		}

		sorted := make([]*model.Assignment, len(assignments))
		copy(sorted, assignments)
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].StartTime.Before(sorted[j].StartTime)
		})

		for i := 0; i < len(sorted)-1; i++ {
			gap := sorted[i+1].StartTime.Sub(sorted[i].EndTime).Hours()
			if gap < 0 {
				continue // 重叠由专门的冲突检查处理
			}
			measurements = append(measurements, Measurement{
				EmployeeID: emp.ID,
				Date:       sorted[i+1].Date,
				Actual:     gap,
			})
		}
	}

	return measurements
}

// calcWeeklyHours 计算每位员工每个 ISO 周的勤务时长
func calcWeeklyHours(ctx *Context, _ *model.Constraint) []Measurement {
	return calcBucketHours(ctx, func(date string) string {
		t, err := time.Parse("2006-01-02", date)
		if err != nil {
			return ""
		}
		year, week := t.ISOWeek()
		return fmt.Sprintf("%04d-W%02d", year, week)
	})
}

// calcMonthlyHours 计算每位员工每个自然月的勤务时长
func calcMonthlyHours(ctx *Context, _ *model.Constraint) []Measurement {
	return calcBucketHours(ctx, func(date string) string {
		if len(date) < 7 {
			return ""
		}
		return date[:7] // YYYY-MM
	})
}

// calcBucketHours 按时间桶汇总员工勤务时长
func calcBucketHours(ctx *Context, bucketOf func(date string) string) []Measurement {
	var measurements []Measurement

	for _, emp := range ctx.Employees {
		hours := make(map[string]float64)
		firstDate := make(map[string]string)
		for _, a := range ctx.GetEmployeeAssignments(emp.ID) {
			bucket := bucketOf(a.Date)
			if bucket == "" {
				continue
			}
			hours[bucket] += a.WorkingHours()
			if firstDate[bucket] == "" || a.Date < firstDate[bucket] {
				firstDate[bucket] = a.Date
			}
		}

		buckets := make([]string, 0, len(hours))
		for b := range hours {
			buckets = append(buckets, b)
		}
		sort.Strings(buckets)

		for _, b := range buckets {
			measurements = append(measurements, Measurement{
				EmployeeID: emp.ID,
				Date:       firstDate[b],
				Actual:     hours[b],
			})
		}
	}

	return measurements
}

// calcShiftsPerDay 计算每位员工每日的班次数
func calcShiftsPerDay(ctx *Context, _ *model.Constraint) []Measurement {
	var measurements []Measurement

	for _, emp := range ctx.Employees {
		for _, date := range ctx.GetEmployeeDates(emp.ID) {
			measurements = append(measurements, Measurement{
				EmployeeID: emp.ID,
				Date:       date,
				Actual:     float64(ctx.GetEmployeeShiftsOnDate(emp.ID, date)),
			})
		}
	}

	return measurements
}

// calcMonthlyDaysOff 计算每位员工每个自然月的休息天数
func calcMonthlyDaysOff(ctx *Context, _ *model.Constraint) []Measurement {
	var measurements []Measurement

	for _, emp := range ctx.Employees {
		workedByMonth := make(map[string]map[string]bool)
		for _, a := range ctx.GetEmployeeAssignments(emp.ID) {
			if len(a.Date) < 7 {
				continue
			}
			month := a.Date[:7]
			if workedByMonth[month] == nil {
				workedByMonth[month] = make(map[string]bool)
			}
			workedByMonth[month][a.Date] = true
		}

		months := make([]string, 0, len(workedByMonth))
		for m := range workedByMonth {
			months = append(months, m)
		}
		sort.Strings(months)

		for _, month := range months {
			t, err := time.Parse("2006-01", month)
			if err != nil {
				continue
			}
			daysInMonth := t.AddDate(0, 1, -1).Day()
			daysOff := daysInMonth - len(workedByMonth[month])
			measurements = append(measurements, Measurement{
				EmployeeID: emp.ID,
				Date:       month + "-01",
				Actual:     float64(daysOff),
			})
		}
	}

	return measurements
}
