// Package constraint 提供约束评估上下文与评估器
package constraint

import (
	"sort"

	"github.com/google/uuid"
	"github.com/chengwu/chengwu/pkg/model"
)

// Context 约束评估上下文
// 汇集某次评估所需的员工、勤务、分配与日历元数据。
type Context struct {
	Location  string            `json:"location"`
	StartDate string            `json:"start_date"`
	EndDate   string            `json:"end_date"`
	Employees []*model.Employee `json:"employees"`
	Duties    []*model.Duty     `json:"duties"`

	// 当前分配结果（生成中或已持久化）
	Assignments []*model.Assignment `json:"assignments"`

	// 日历元数据：特异日（节假日等）标记
	SpecialDays map[string]bool `json:"special_days,omitempty"`

	// 索引缓存
	employeeMap       map[uuid.UUID]*model.Employee
	dutyMap           map[uuid.UUID]*model.Duty
	assignmentsByEmp  map[uuid.UUID][]*model.Assignment
	assignmentsByDate map[string][]*model.Assignment
}

// NewContext 创建新的评估上下文
func NewContext(location, startDate, endDate string) *Context {
	return &Context{
		Location:          location,
		StartDate:         startDate,
		EndDate:           endDate,
		Employees:         make([]*model.Employee, 0),
		Duties:            make([]*model.Duty, 0),
		Assignments:       make([]*model.Assignment, 0),
		SpecialDays:       make(map[string]bool),
		employeeMap:       make(map[uuid.UUID]*model.Employee),
		dutyMap:           make(map[uuid.UUID]*model.Duty),
		assignmentsByEmp:  make(map[uuid.UUID][]*model.Assignment),
		assignmentsByDate: make(map[string][]*model.Assignment),
	}
}

// SetEmployees 设置员工列表
func (c *Context) SetEmployees(employees []*model.Employee) {
	c.Employees = employees
	c.employeeMap = make(map[uuid.UUID]*model.Employee)
	for _, e := range employees {
		c.employeeMap[e.ID] = e
	}
}

// SetDuties 设置勤务列表
func (c *Context) SetDuties(duties []*model.Duty) {
	c.Duties = duties
	c.dutyMap = make(map[uuid.UUID]*model.Duty)
	for _, d := range duties {
		c.dutyMap[d.ID] = d
	}
}

// SetAssignments 设置分配列表
func (c *Context) SetAssignments(assignments []*model.Assignment) {
	c.Assignments = assignments
	c.rebuildAssignmentIndexes()
}

// AddAssignment 添加分配
func (c *Context) AddAssignment(a *model.Assignment) {
	c.Assignments = append(c.Assignments, a)
	c.assignmentsByEmp[a.EmployeeID] = append(c.assignmentsByEmp[a.EmployeeID], a)
	c.assignmentsByDate[a.Date] = append(c.assignmentsByDate[a.Date], a)
}

// RemoveAssignment 移除分配
func (c *Context) RemoveAssignment(id uuid.UUID) {
	for i, a := range c.Assignments {
		if a.ID == id {
			c.Assignments = append(c.Assignments[:i], c.Assignments[i+1:]...)
			break
		}
	}
	c.rebuildAssignmentIndexes()
}

// rebuildAssignmentIndexes 重建分配索引
func (c *Context) rebuildAssignmentIndexes() {
	c.assignmentsByEmp = make(map[uuid.UUID][]*model.Assignment)
	c.assignmentsByDate = make(map[string][]*model.Assignment)
	for _, a := range c.Assignments {
		c.assignmentsByEmp[a.EmployeeID] = append(c.assignmentsByEmp[a.EmployeeID], a)
		c.assignmentsByDate[a.Date] = append(c.assignmentsByDate[a.Date], a)
	}
}

// GetEmployee 获取员工
func (c *Context) GetEmployee(id uuid.UUID) *model.Employee {
	return c.employeeMap[id]
}

// GetDuty 获取勤务
func (c *Context) GetDuty(id uuid.UUID) *model.Duty {
	return c.dutyMap[id]
}

// GetEmployeeAssignments 获取员工的所有分配
func (c *Context) GetEmployeeAssignments(empID uuid.UUID) []*model.Assignment {
	return c.assignmentsByEmp[empID]
}

// GetDateAssignments 获取某日期的所有分配
func (c *Context) GetDateAssignments(date string) []*model.Assignment {
	return c.assignmentsByDate[date]
}

// IsSpecialDay 检查某日期是否为特异日
func (c *Context) IsSpecialDay(date string) bool {
	return c.SpecialDays[date]
}

// GetEmployeeDates 获取员工有分配的日期（去重升序）
func (c *Context) GetEmployeeDates(empID uuid.UUID) []string {
	seen := make(map[string]bool)
	for _, a := range c.assignmentsByEmp[empID] {
		seen[a.Date] = true
	}
	dates := make([]string, 0, len(seen))
	for d := range seen {
		dates = append(dates, d)
	}
	sort.Strings(dates)
	return dates
}

// GetEmployeeShiftsOnDate 获取员工某日的班次数
func (c *Context) GetEmployeeShiftsOnDate(empID uuid.UUID, date string) int {
	count := 0
	for _, a := range c.assignmentsByEmp[empID] {
		if a.Date == date {
			count++
		}
	}
	return count
}

// GetEmployeeHoursInRange 获取员工在日期范围内的勤务时长
func (c *Context) GetEmployeeHoursInRange(empID uuid.UUID, startDate, endDate string) float64 {
	var hours float64
	for _, a := range c.assignmentsByEmp[empID] {
		if a.Date >= startDate && a.Date <= endDate {
			hours += a.WorkingHours()
		}
	}
	return hours
}

// Dates 返回上下文中出现过分配的日期（去重升序）
func (c *Context) Dates() []string {
	seen := make(map[string]bool)
	for _, a := range c.Assignments {
		seen[a.Date] = true
	}
	dates := make([]string, 0, len(seen))
	for d := range seen {
		dates = append(dates, d)
	}
	sort.Strings(dates)
	return dates
}

// HasOverlap 检查在已有分配上追加 candidate 是否产生同日时间重叠
func (c *Context) HasOverlap(candidate *model.Assignment) bool {
	for _, existing := range c.assignmentsByEmp[candidate.EmployeeID] {
		if existing.ID == candidate.ID || existing.Date != candidate.Date {
			continue
		}
		if existing.Overlaps(candidate) {
			return true
		}
	}
	return false
}
