// Package model 定义乘务排班引擎的核心数据模型
package model

import (
	"github.com/google/uuid"
)

// Employee 乘务员工
type Employee struct {
	BaseModel
	Name     string `json:"name" db:"name"`
	Code     string `json:"code" db:"code"`
	Location string `json:"location" db:"location"` // 所属营业所
	Status   string `json:"status" db:"status"`     // active/inactive/leave

	// 能力标识
	CanRollCall bool `json:"can_roll_call" db:"can_roll_call"` // 是否具备点名勤务资格
}

// IsActive 检查员工是否在职
func (e *Employee) IsActive() bool {
	return e.Status == "active"
}

// Vacation 休假记录（按员工+日期）
type Vacation struct {
	EmployeeID uuid.UUID `json:"employee_id" db:"employee_id"`
	Date       string    `json:"date" db:"date"` // YYYY-MM-DD
	Reason     string    `json:"reason,omitempty" db:"reason"`
}

// ExcludedEmployee 排班排除员工（按营业所）
type ExcludedEmployee struct {
	EmployeeID uuid.UUID `json:"employee_id" db:"employee_id"`
	Location   string    `json:"location" db:"location"`
	Reason     string    `json:"reason,omitempty" db:"reason"`
}

// IncompatiblePair 不相容员工对（不可同日共同执勤）
type IncompatiblePair struct {
	EmployeeA uuid.UUID `json:"employee_a" db:"employee_a"`
	EmployeeB uuid.UUID `json:"employee_b" db:"employee_b"`
	Location  string    `json:"location" db:"location"`
}

// Matches 检查员工对是否命中（无序匹配）
func (p *IncompatiblePair) Matches(a, b uuid.UUID) bool {
	return (p.EmployeeA == a && p.EmployeeB == b) || (p.EmployeeA == b && p.EmployeeB == a)
}
