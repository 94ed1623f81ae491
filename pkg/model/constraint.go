// Package model 定义乘务排班引擎的核心数据模型
package model

import (
	"github.com/google/uuid"
)

// ConstraintType 约束类型标识
type ConstraintType string

const (
	ConstraintMaxConsecutiveDays ConstraintType = "max_consecutive_days" // 最大连续工作天数
	ConstraintMinRestHours       ConstraintType = "min_rest_hours"       // 班次间最小休息时间
	ConstraintMaxWeeklyHours     ConstraintType = "max_weekly_hours"     // 每周最大工时
	ConstraintMaxMonthlyHours    ConstraintType = "max_monthly_hours"    // 每月最大工时
	ConstraintDailyCoverage      ConstraintType = "daily_coverage"       // 每日人员覆盖
	ConstraintMaxShiftsPerDay    ConstraintType = "max_shifts_per_day"   // 每日最大班次数
	ConstraintMonthlyDaysOff     ConstraintType = "monthly_days_off"     // 每月最少休息天数
	ConstraintAllowanceBalance   ConstraintType = "allowance_balance"    // 津贴勤务均衡
	ConstraintDailyExtraStaff    ConstraintType = "daily_extra_staff"    // 每日机动人员
)

// Constraint 约束配置
// 每个营业所在生成前加载一次，评估期间只读。
type Constraint struct {
	BaseModel
	Name      string           `json:"name" db:"name"`
	Type      ConstraintType   `json:"type" db:"type"`
	CalcName  string           `json:"calc_name,omitempty" db:"calc_name"` // 计算函数名（数据驱动约束）
	Threshold float64          `json:"threshold" db:"threshold"`
	Operator  string           `json:"operator" db:"operator"` // > >= < <= == !=
	Scope     string           `json:"scope,omitempty" db:"scope"`
	Level     EnforcementLevel `json:"level" db:"level"`
	Location  string           `json:"location,omitempty" db:"location"`
	IsActive  bool             `json:"is_active" db:"is_active"`
	Params    JSONMap          `json:"params,omitempty" db:"params"`
}

// IsMandatory 检查是否为强制约束
func (c *Constraint) IsMandatory() bool {
	return c.Level == LevelMandatory
}

// ParamInt 获取整数参数
func (c *Constraint) ParamInt(key string, defaultVal int) int {
	if val, ok := c.Params[key]; ok {
		switch v := val.(type) {
		case int:
			return v
		case float64:
			return int(v)
		case int64:
			return int(v)
		}
	}
	return defaultVal
}

// ParamFloat 获取浮点数参数
func (c *Constraint) ParamFloat(key string, defaultVal float64) float64 {
	if val, ok := c.Params[key]; ok {
		switch v := val.(type) {
		case float64:
			return v
		case int:
			return float64(v)
		}
	}
	return defaultVal
}

// ConstraintViolation 约束违规详情
// 由评估器生成后不再修改，单次运行内只追加。
type ConstraintViolation struct {
	ConstraintID   uuid.UUID      `json:"constraint_id,omitempty"`
	ConstraintName string         `json:"constraint_name"`
	Type           ConstraintType `json:"type"`
	EmployeeID     uuid.UUID      `json:"employee_id,omitempty"`
	DutyID         uuid.UUID      `json:"duty_id,omitempty"`
	Date           string         `json:"date,omitempty"`
	Severity       Severity       `json:"severity"`
	Actual         float64        `json:"actual"`
	Expected       float64        `json:"expected"`
	Message        string         `json:"message"`
}

// IsBlocking 检查违规是否阻止分配（强制约束的严重违规）
func (v *ConstraintViolation) IsBlocking() bool {
	return v.Severity == SeverityCritical
}
