// Package checker 提供已提交排班的独立规则审计
// 只读审计器：不参与生成，与生成路径相互独立地重新推导违规。
package checker

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/chengwu/chengwu/pkg/model"
	"github.com/chengwu/chengwu/pkg/restperiod"
)

// Config 审计配置
type Config struct {
	MinRestHours       float64 // 班次间最小休息时间（小时）
	MaxConsecutiveDays int     // 最大连续工作天数
	CheckRollCall      bool    // 是否检查点名勤务覆盖
}

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		MinRestHours:       restperiod.MinContinuousHours,
		MaxConsecutiveDays: 6,
		CheckRollCall:      true,
	}
}

// Result 审计结果
type Result struct {
	Violations      []model.ConstraintViolation `json:"violations"`
	TotalViolations int                         `json:"total_violations"`
	ErrorCount      int                         `json:"error_count"`
	WarningCount    int                         `json:"warning_count"`
}

// Checker 排班规则审计器
type Checker struct {
	config *Config
}

// NewChecker 创建审计器
func NewChecker(config *Config) *Checker {
	if config == nil {
		config = DefaultConfig()
	}
	return &Checker{config: config}
}

// CheckAll 审计整套已提交的排班
// 逐员工重新推导：时间重叠、休息时间（含分割休息）、连续工作天数、
// 月度分割休息配额；逐日检查点名勤务覆盖。
func (c *Checker) CheckAll(assignments []*model.Assignment, employees []*model.Employee, duties []*model.Duty) *Result {
	result := &Result{Violations: make([]model.ConstraintViolation, 0)}

	empMap := make(map[uuid.UUID]*model.Employee)
	for _, e := range employees {
		empMap[e.ID] = e
	}
	dutyMap := make(map[uuid.UUID]*model.Duty)
	for _, d := range duties {
		dutyMap[d.ID] = d
	}

	byEmployee := make(map[uuid.UUID][]*model.Assignment)
	for _, a := range assignments {
		byEmployee[a.EmployeeID] = append(byEmployee[a.EmployeeID], a)
	}

	// 员工按输入顺序遍历，保证结果稳定
	for _, emp := range employees {
		empAssignments := byEmployee[emp.ID]
		if len(empAssignments) == 0 {
			continue
		}
		result.Violations = append(result.Violations, c.checkOverlaps(emp, empAssignments)...)
		result.Violations = append(result.Violations, c.checkRestTime(emp, empAssignments)...)
		result.Violations = append(result.Violations, c.checkConsecutiveDays(emp, empAssignments)...)
	}

	if c.config.CheckRollCall {
		result.Violations = append(result.Violations, c.checkRollCallCoverage(assignments, empMap, dutyMap)...)
	}

	for _, v := range result.Violations {
		if v.Severity == model.SeverityCritical {
			result.ErrorCount++
		} else {
			result.WarningCount++
		}
	}
	result.TotalViolations = len(result.Violations)
	return result
}

// checkOverlaps 同日勤务两两区间相交检查
func (c *Checker) checkOverlaps(emp *model.Employee, assignments []*model.Assignment) []model.ConstraintViolation {
	var violations []model.ConstraintViolation

	sorted := sortByStart(assignments)
	for i := 0; i < len(sorted); i++ {
		for j := i + 1; j < len(sorted); j++ {
			if sorted[i].Date != sorted[j].Date {
				continue
			}
			if sorted[i].Overlaps(sorted[j]) {
				violations = append(violations, model.ConstraintViolation{
					ConstraintName: "时间重叠",
					Type:           model.ConstraintMaxShiftsPerDay,
					EmployeeID:     emp.ID,
					Date:           sorted[i].Date,
					Severity:       model.SeverityCritical,
					Message: fmt.Sprintf("员工 %s 在 %s 存在时间重叠的勤务分配",
						emp.Name, sorted[i].Date),
				})
			}
		}
	}
	return violations
}

// checkRestTime 休息时间检查（含分割休息）
//
// 对每个工作日，休息窗口由当日班次间空档加上到次个工作日首班的夜间空档
// 组成；单段 >= 11 小时为连续休息，两段按分割休息规则校验，三段以上
// 一律不合法。合法的分割休息计入月度配额。
func (c *Checker) checkRestTime(emp *model.Employee, assignments []*model.Assignment) []model.ConstraintViolation {
	var violations []model.ConstraintViolation

	byDate := make(map[string][]*model.Assignment)
	for _, a := range assignments {
		byDate[a.Date] = append(byDate[a.Date], a)
	}
	dates := make([]string, 0, len(byDate))
	for d := range byDate {
		dates = append(dates, d)
		byDate[d] = sortByStart(byDate[d])
	}
	sort.Strings(dates)

	splitByMonth := make(map[string]int)
	shiftsByMonth := make(map[string]int)
	for _, a := range assignments {
		if len(a.Date) >= 7 {
			shiftsByMonth[a.Date[:7]]++
		}
	}

	for i, date := range dates {
		// 最后一个工作日之后没有需要保障的休息窗口
		if i+1 >= len(dates) {
			break
		}
		day := byDate[date]

		// 当日班次间空档
		var periods []restperiod.Period
		for k := 0; k < len(day)-1; k++ {
			if day[k+1].StartTime.After(day[k].EndTime) {
				periods = append(periods, restperiod.Period{
					Start: day[k].EndTime,
					End:   day[k+1].StartTime,
				})
			}
		}

		// 到次个工作日首班的夜间空档
		next := byDate[dates[i+1]][0]
		last := day[len(day)-1]
		if next.StartTime.After(last.EndTime) {
			periods = append(periods, restperiod.Period{
				Start: last.EndTime,
				End:   next.StartTime,
			})
		}

		if len(periods) == 0 {
			continue
		}

		rest := restperiod.Validate(periods[0].Start, periods[len(periods)-1].End, periods)
		if !rest.IsValid {
			for _, msg := range rest.Violations {
				violations = append(violations, model.ConstraintViolation{
					ConstraintName: "休息时间",
					Type:           model.ConstraintMinRestHours,
					EmployeeID:     emp.ID,
					Date:           date,
					Severity:       model.SeverityCritical,
					Actual:         rest.TotalHours,
					Expected:       c.config.MinRestHours,
					Message:        fmt.Sprintf("员工 %s 在 %s 后的休息不合法: %s", emp.Name, date, msg),
				})
			}
		} else if rest.Type == restperiod.TypeSplit {
			if len(date) >= 7 {
				splitByMonth[date[:7]]++
			}
		}
	}

	// 月度分割休息配额：即使每次分割各自合法，超过配额仍违规
	months := make([]string, 0, len(splitByMonth))
	for m := range splitByMonth {
		months = append(months, m)
	}
	sort.Strings(months)
	for _, month := range months {
		quota := restperiod.CheckMonthlySplitRestLimit(splitByMonth[month], shiftsByMonth[month])
		if !quota.IsWithinLimit {
			violations = append(violations, model.ConstraintViolation{
				ConstraintName: "分割休息月度配额",
				Type:           model.ConstraintMinRestHours,
				EmployeeID:     emp.ID,
				Date:           month + "-01",
				Severity:       model.SeverityWarning,
				Actual:         float64(quota.SplitCount),
				Expected:       float64(quota.Limit),
				Message: fmt.Sprintf("员工 %s 在 %s 使用分割休息 %d 次，超过配额 %d 次（当月 %d 班）",
					emp.Name, month, quota.SplitCount, quota.Limit, quota.TotalShifts),
			})
		}
	}

	return violations
}

// checkConsecutiveDays 连续工作天数检查
func (c *Checker) checkConsecutiveDays(emp *model.Employee, assignments []*model.Assignment) []model.ConstraintViolation {
	var violations []model.ConstraintViolation

	seen := make(map[string]bool)
	for _, a := range assignments {
		seen[a.Date] = true
	}
	dates := make([]string, 0, len(seen))
	for d := range seen {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	streak := 0
	for i, date := range dates {
		if i > 0 && model.IsConsecutiveDate(dates[i-1], date) {
			streak++
		} else {
			streak = 1
		}
		if streak > c.config.MaxConsecutiveDays {
			violations = append(violations, model.ConstraintViolation{
				ConstraintName: "最大连续工作天数",
				Type:           model.ConstraintMaxConsecutiveDays,
				EmployeeID:     emp.ID,
				Date:           date,
				Severity:       model.SeverityCritical,
				Actual:         float64(streak),
				Expected:       float64(c.config.MaxConsecutiveDays),
				Message: fmt.Sprintf("员工 %s 截至 %s 已连续工作 %d 天，超过限制 %d 天",
					emp.Name, date, streak, c.config.MaxConsecutiveDays),
			})
		}
	}
	return violations
}

// checkRollCallCoverage 点名勤务覆盖检查
// 每个出现分配的日期必须有点名勤务的分配，且承担者具备点名资格。
func (c *Checker) checkRollCallCoverage(assignments []*model.Assignment, employees map[uuid.UUID]*model.Employee, duties map[uuid.UUID]*model.Duty) []model.ConstraintViolation {
	var violations []model.ConstraintViolation

	byDate := make(map[string][]*model.Assignment)
	for _, a := range assignments {
		byDate[a.Date] = append(byDate[a.Date], a)
	}
	dates := make([]string, 0, len(byDate))
	for d := range byDate {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	for _, date := range dates {
		covered := false
		for _, a := range byDate[date] {
			duty := duties[a.DutyID]
			if duty == nil || !duty.IsRollCall {
				continue
			}
			emp := employees[a.EmployeeID]
			if emp == nil || !emp.CanRollCall {
				name := a.EmployeeID.String()
				if emp != nil {
					name = emp.Name
				}
				violations = append(violations, model.ConstraintViolation{
					ConstraintName: "点名勤务资格",
					Type:           model.ConstraintDailyCoverage,
					EmployeeID:     a.EmployeeID,
					DutyID:         a.DutyID,
					Date:           date,
					Severity:       model.SeverityCritical,
					Message:        fmt.Sprintf("%s 的点名勤务由不具备资格的员工 %s 承担", date, name),
				})
				continue
			}
			covered = true
		}
		if !covered {
			violations = append(violations, model.ConstraintViolation{
				ConstraintName: "点名勤务覆盖",
				Type:           model.ConstraintDailyCoverage,
				Date:           date,
				Severity:       model.SeverityCritical,
				Message:        fmt.Sprintf("%s 没有合格的点名勤务分配", date),
			})
		}
	}
	return violations
}

// sortByStart 按开始时间稳定排序（不修改原切片）
func sortByStart(assignments []*model.Assignment) []*model.Assignment {
	sorted := make([]*model.Assignment, len(assignments))
	copy(sorted, assignments)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].StartTime.Before(sorted[j].StartTime)
	})
	return sorted
}
