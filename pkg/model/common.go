// Package model 定义乘务排班引擎的核心数据模型
package model

import (
	"time"

	"github.com/google/uuid"
)

// EnforcementLevel 约束执行级别
type EnforcementLevel string

const (
	LevelMandatory EnforcementLevel = "mandatory" // 强制（违反则阻止分配）
	LevelStrict    EnforcementLevel = "strict"    // 严格（警告）
	LevelFlexible  EnforcementLevel = "flexible"  // 灵活（提示）
)

// Severity 违规严重程度
type Severity string

const (
	SeverityCritical Severity = "critical" // 严重
	SeverityWarning  Severity = "warning"  // 警告
	SeverityInfo     Severity = "info"     // 提示
)

// SeverityFor 根据执行级别映射严重程度
func SeverityFor(level EnforcementLevel) Severity {
	switch level {
	case LevelMandatory:
		return SeverityCritical
	case LevelStrict:
		return SeverityWarning
	default:
		return SeverityInfo
	}
}

// BaseModel 基础模型（包含通用字段）
type BaseModel struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt *time.Time `json:"-" db:"deleted_at"`
}

// NewBaseModel 创建新的基础模型
func NewBaseModel() BaseModel {
	now := time.Now()
	return BaseModel{
		ID:        uuid.New(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// JSONMap 用于存储 JSONB 数据
type JSONMap map[string]interface{}

// TimeRange 时间范围
type TimeRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Duration 返回时间范围的持续时间
func (tr TimeRange) Duration() time.Duration {
	return tr.End.Sub(tr.Start)
}

// Overlaps 检查两个时间范围是否重叠
func (tr TimeRange) Overlaps(other TimeRange) bool {
	return tr.Start.Before(other.End) && other.Start.Before(tr.End)
}

// DateRange 日期范围
type DateRange struct {
	StartDate string `json:"start_date"` // YYYY-MM-DD
	EndDate   string `json:"end_date"`   // YYYY-MM-DD
}

// Dates 展开日期范围内的所有日期（含两端）
func (dr DateRange) Dates() []string {
	start, err1 := time.Parse("2006-01-02", dr.StartDate)
	end, err2 := time.Parse("2006-01-02", dr.EndDate)
	if err1 != nil || err2 != nil || end.Before(start) {
		return nil
	}

	var dates []string
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d.Format("2006-01-02"))
	}
	return dates
}

// Days 返回日期范围内的天数
func (dr DateRange) Days() int {
	return len(dr.Dates())
}

// PreviousDate 获取前一天日期
func PreviousDate(date string) string {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return ""
	}
	return t.AddDate(0, 0, -1).Format("2006-01-02")
}

// NextDate 获取后一天日期
func NextDate(date string) string {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return ""
	}
	return t.AddDate(0, 0, 1).Format("2006-01-02")
}

// IsConsecutiveDate 检查两个日期字符串是否相邻（date2 = date1 + 1天）
func IsConsecutiveDate(date1, date2 string) bool {
	t1, err1 := time.Parse("2006-01-02", date1)
	t2, err2 := time.Parse("2006-01-02", date2)
	if err1 != nil || err2 != nil {
		return false
	}
	return t2.Sub(t1).Hours()/24 == 1
}
