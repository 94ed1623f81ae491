// Package model 定义乘务排班引擎的核心数据模型
package model

import (
	"time"

	"github.com/google/uuid"
)

// Duty 业务勤务定义
type Duty struct {
	BaseModel
	Name      string `json:"name" db:"name"`
	Code      string `json:"code" db:"code"`
	GroupID   string `json:"group_id,omitempty" db:"group_id"`     // 勤务组（同组勤务需同一员工承担）
	StartTime string `json:"start_time" db:"start_time"`           // HH:MM
	EndTime   string `json:"end_time" db:"end_time"`               // HH:MM
	Location  string `json:"location,omitempty" db:"location"`     // 所属营业所
	IsActive  bool   `json:"is_active" db:"is_active"`

	// 勤务属性
	IsRollCall   bool       `json:"is_roll_call" db:"is_roll_call"`     // 点名勤务（需具备资格的员工）
	HasAllowance bool       `json:"has_allowance" db:"has_allowance"`   // 是否带津贴
	PairedDutyID *uuid.UUID `json:"paired_duty_id,omitempty" db:"paired_duty_id"` // 配对勤务
}

// TimeRangeOn 返回勤务在指定日期的时间范围（跨日勤务结束时间顺延一天）
func (d *Duty) TimeRangeOn(date string) TimeRange {
	day, err := time.Parse("2006-01-02", date)
	if err != nil {
		return TimeRange{}
	}
	start := parseTimeOnDate(day, d.StartTime)
	end := parseTimeOnDate(day, d.EndTime)
	if !end.After(start) {
		end = end.Add(24 * time.Hour)
	}
	return TimeRange{Start: start, End: end}
}

// parseTimeOnDate 在指定日期解析 HH:MM 时间
func parseTimeOnDate(date time.Time, timeStr string) time.Time {
	t, err := time.Parse("15:04", timeStr)
	if err != nil {
		return date
	}
	return time.Date(date.Year(), date.Month(), date.Day(), t.Hour(), t.Minute(), 0, 0, date.Location())
}

// Assignment 勤务分配
type Assignment struct {
	BaseModel
	EmployeeID uuid.UUID `json:"employee_id" db:"employee_id"`
	DutyID     uuid.UUID `json:"duty_id" db:"duty_id"`
	Date       string    `json:"date" db:"date"` // YYYY-MM-DD
	StartTime  time.Time `json:"start_time" db:"start_time"`
	EndTime    time.Time `json:"end_time" db:"end_time"`
	Status     string    `json:"status" db:"status"` // scheduled/confirmed/completed/cancelled
	BatchID    uuid.UUID `json:"batch_id" db:"batch_id"` // 生成批次
}

// WorkingHours 计算勤务时长（小时）
func (a *Assignment) WorkingHours() float64 {
	return a.EndTime.Sub(a.StartTime).Hours()
}

// IsOnDate 检查分配是否在指定日期
func (a *Assignment) IsOnDate(date string) bool {
	return a.Date == date
}

// Overlaps 检查两个分配的时间是否重叠
func (a *Assignment) Overlaps(other *Assignment) bool {
	return a.StartTime.Before(other.EndTime) && other.StartTime.Before(a.EndTime)
}

// DiversityHistory 勤务多样性历史
// 记录每位员工曾经承担过的勤务集合，用于轮换排班时优先安排未经历的勤务。
// 单次生成过程中只有引擎本身写入，跨日期必须串行处理。
type DiversityHistory struct {
	performed map[uuid.UUID]map[uuid.UUID]bool
}

// NewDiversityHistory 创建空的多样性历史
func NewDiversityHistory() *DiversityHistory {
	return &DiversityHistory{performed: make(map[uuid.UUID]map[uuid.UUID]bool)}
}

// Record 记录员工承担过某勤务
func (h *DiversityHistory) Record(employeeID, dutyID uuid.UUID) {
	if h.performed[employeeID] == nil {
		h.performed[employeeID] = make(map[uuid.UUID]bool)
	}
	h.performed[employeeID][dutyID] = true
}

// Has 检查员工是否承担过某勤务
func (h *DiversityHistory) Has(employeeID, dutyID uuid.UUID) bool {
	return h.performed[employeeID][dutyID]
}

// Count 返回员工承担过的不同勤务数
func (h *DiversityHistory) Count(employeeID uuid.UUID) int {
	return len(h.performed[employeeID])
}

// Merge 合并另一份历史（只增不减）
func (h *DiversityHistory) Merge(other *DiversityHistory) {
	if other == nil {
		return
	}
	for empID, duties := range other.performed {
		for dutyID := range duties {
			h.Record(empID, dutyID)
		}
	}
}

// Clone 复制历史
func (h *DiversityHistory) Clone() *DiversityHistory {
	clone := NewDiversityHistory()
	clone.Merge(h)
	return clone
}
