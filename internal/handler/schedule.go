// Package handler 提供HTTP请求处理器
package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/chengwu/chengwu/internal/metrics"
	"github.com/chengwu/chengwu/pkg/checker"
	"github.com/chengwu/chengwu/pkg/engine"
	"github.com/chengwu/chengwu/pkg/engine/constraint"
	"github.com/chengwu/chengwu/pkg/errors"
	"github.com/chengwu/chengwu/pkg/model"
)

// ScheduleHandler 勤务排班处理器
type ScheduleHandler struct {
	history     engine.HistoryStore
	exclusions  engine.ExclusionStore
	constraints engine.ConstraintStore
	assignments engine.AssignmentStore

	maxShiftsPerDay int
	timeout         time.Duration
}

// NewScheduleHandler 创建勤务排班处理器
func NewScheduleHandler(
	history engine.HistoryStore,
	exclusions engine.ExclusionStore,
	constraints engine.ConstraintStore,
	assignments engine.AssignmentStore,
	maxShiftsPerDay int,
	timeout time.Duration,
) *ScheduleHandler {
	return &ScheduleHandler{
		history:         history,
		exclusions:      exclusions,
		constraints:     constraints,
		assignments:     assignments,
		maxShiftsPerDay: maxShiftsPerDay,
		timeout:         timeout,
	}
}

// GenerateRequest 勤务生成请求
type GenerateRequest struct {
	Location    string          `json:"location"`
	StartDate   string          `json:"start_date"`
	EndDate     string          `json:"end_date"`
	Employees   []EmployeeInput `json:"employees"`
	Duties      []DutyInput     `json:"duties"`
	SpecialDays []string        `json:"special_days,omitempty"`
	Options     *GenerateOpts   `json:"options,omitempty"`
}

// EmployeeInput 员工输入
type EmployeeInput struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Code        string `json:"code,omitempty"`
	Status      string `json:"status,omitempty"`
	CanRollCall bool   `json:"can_roll_call,omitempty"`
}

// DutyInput 勤务输入
type DutyInput struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Code         string `json:"code,omitempty"`
	GroupID      string `json:"group_id,omitempty"`
	StartTime    string `json:"start_time"` // HH:MM
	EndTime      string `json:"end_time"`   // HH:MM
	IsRollCall   bool   `json:"is_roll_call,omitempty"`
	HasAllowance bool   `json:"has_allowance,omitempty"`
	PairedDutyID string `json:"paired_duty_id,omitempty"`
}

// GenerateOpts 生成选项
type GenerateOpts struct {
	Timeout         int `json:"timeout_seconds,omitempty"`
	MaxShiftsPerDay int `json:"max_shifts_per_day,omitempty"`
}

// GenerateResponse 勤务生成响应
type GenerateResponse struct {
	Success          bool                        `json:"success"`
	Message          string                      `json:"message,omitempty"`
	BatchID          string                      `json:"batch_id,omitempty"`
	Assignments      []AssignmentOutput          `json:"assignments"`
	Violations       []model.ConstraintViolation `json:"violations,omitempty"`
	UnassignedDuties []string                    `json:"unassigned_duties,omitempty"`
	Summary          engine.Summary              `json:"summary"`
	Duration         string                      `json:"duration"`
}

// AssignmentOutput 分配输出
type AssignmentOutput struct {
	ID           string  `json:"id"`
	EmployeeID   string  `json:"employee_id"`
	EmployeeName string  `json:"employee_name,omitempty"`
	DutyID       string  `json:"duty_id"`
	DutyName     string  `json:"duty_name,omitempty"`
	Date         string  `json:"date"`
	StartTime    string  `json:"start_time"`
	EndTime      string  `json:"end_time"`
	Hours        float64 `json:"hours"`
}

// Generate 生成勤务分配
func (h *ScheduleHandler) Generate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持POST方法"))
		return
	}

	var req GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "解析请求失败"))
		return
	}
	if appErr := validateGenerateRequest(&req); appErr != nil {
		respondError(w, appErr)
		return
	}

	employees, appErr := buildEmployees(req.Employees)
	if appErr != nil {
		respondError(w, appErr)
		return
	}
	duties, appErr := buildDuties(req.Duties)
	if appErr != nil {
		respondError(w, appErr)
		return
	}

	// 约束配置按营业所加载
	constraints, err := h.constraints.LoadActive(r.Context(), req.Location)
	if err != nil {
		respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "加载约束配置失败"))
		return
	}

	evaluator := constraint.NewEvaluator(constraints, constraint.NewRegistry())
	eng := engine.NewEngine(evaluator)
	if req.Options != nil && req.Options.MaxShiftsPerDay > 0 {
		eng.SetMaxShiftsPerDay(req.Options.MaxShiftsPerDay)
	} else if h.maxShiftsPerDay > 0 {
		eng.SetMaxShiftsPerDay(h.maxShiftsPerDay)
	}
	orch := engine.NewOrchestrator(eng, h.history, h.exclusions, h.assignments)

	timeout := h.timeout
	if req.Options != nil && req.Options.Timeout > 0 {
		timeout = time.Duration(req.Options.Timeout) * time.Second
	}
	genCtx, cancel := context.WithTimeout(r.Context(), timeout)
	defer cancel()

	specialDays := make(map[string]bool, len(req.SpecialDays))
	for _, d := range req.SpecialDays {
		specialDays[d] = true
	}

	start := time.Now()
	result := orch.GenerateRange(genCtx, &engine.RangeInput{
		Location:    req.Location,
		Employees:   employees,
		Duties:      duties,
		DateRange:   model.DateRange{StartDate: req.StartDate, EndDate: req.EndDate},
		SpecialDays: specialDays,
	})
	duration := time.Since(start)

	metrics.RecordGeneration(req.Location, result.Success, len(result.UnassignedDuties), duration)
	for _, v := range result.Violations {
		metrics.RecordViolation(string(v.Type), string(v.Severity))
	}

	empNames := make(map[uuid.UUID]string, len(employees))
	for _, e := range employees {
		empNames[e.ID] = e.Name
	}
	dutyNames := make(map[uuid.UUID]string, len(duties))
	for _, d := range duties {
		dutyNames[d.ID] = d.Name
	}

	outputs := make([]AssignmentOutput, len(result.Assignments))
	batchID := ""
	for i, a := range result.Assignments {
		outputs[i] = AssignmentOutput{
			ID:           a.ID.String(),
			EmployeeID:   a.EmployeeID.String(),
			EmployeeName: empNames[a.EmployeeID],
			DutyID:       a.DutyID.String(),
			DutyName:     dutyNames[a.DutyID],
			Date:         a.Date,
			StartTime:    a.StartTime.Format("15:04"),
			EndTime:      a.EndTime.Format("15:04"),
			Hours:        a.WorkingHours(),
		}
		batchID = a.BatchID.String()
	}

	respondJSON(w, http.StatusOK, GenerateResponse{
		Success:          result.Success,
		Message:          result.Message,
		BatchID:          batchID,
		Assignments:      outputs,
		Violations:       result.Violations,
		UnassignedDuties: result.UnassignedDuties,
		Summary:          result.Summary,
		Duration:         duration.String(),
	})
}

// CheckRequest 排班审计请求
type CheckRequest struct {
	Assignments []AssignmentInput `json:"assignments"`
	Employees   []EmployeeInput   `json:"employees"`
	Duties      []DutyInput       `json:"duties"`
	Config      *CheckConfig      `json:"config,omitempty"`
}

// AssignmentInput 分配输入
type AssignmentInput struct {
	EmployeeID string `json:"employee_id"`
	DutyID     string `json:"duty_id"`
	Date       string `json:"date"`       // YYYY-MM-DD
	StartTime  string `json:"start_time"` // HH:MM
	EndTime    string `json:"end_time"`   // HH:MM
}

// CheckConfig 审计配置输入
type CheckConfig struct {
	MinRestHours       float64 `json:"min_rest_hours,omitempty"`
	MaxConsecutiveDays int     `json:"max_consecutive_days,omitempty"`
	CheckRollCall      *bool   `json:"check_roll_call,omitempty"`
}

// Check 审计已提交排班
func (h *ScheduleHandler) Check(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持POST方法"))
		return
	}

	var req CheckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "解析请求失败"))
		return
	}
	if len(req.Assignments) == 0 {
		respondError(w, errors.InvalidInput("assignments", "分配列表不能为空"))
		return
	}

	employees, appErr := buildEmployees(req.Employees)
	if appErr != nil {
		respondError(w, appErr)
		return
	}
	duties, appErr := buildDuties(req.Duties)
	if appErr != nil {
		respondError(w, appErr)
		return
	}

	assignments := make([]*model.Assignment, 0, len(req.Assignments))
	for _, in := range req.Assignments {
		empID, err := uuid.Parse(in.EmployeeID)
		if err != nil {
			respondError(w, errors.InvalidInput("employee_id", "无效的员工ID格式: "+in.EmployeeID))
			return
		}
		dutyID, err := uuid.Parse(in.DutyID)
		if err != nil {
			respondError(w, errors.InvalidInput("duty_id", "无效的勤务ID格式: "+in.DutyID))
			return
		}
		startTime, err := time.Parse("2006-01-02 15:04", in.Date+" "+in.StartTime)
		if err != nil {
			respondError(w, errors.InvalidInput("start_time", "无效的时间格式: "+in.StartTime))
			return
		}
		endTime, err := time.Parse("2006-01-02 15:04", in.Date+" "+in.EndTime)
		if err != nil {
			respondError(w, errors.InvalidInput("end_time", "无效的时间格式: "+in.EndTime))
			return
		}
		if !endTime.After(startTime) {
			endTime = endTime.Add(24 * time.Hour)
		}

		assignments = append(assignments, &model.Assignment{
			BaseModel:  model.BaseModel{ID: uuid.New()},
			EmployeeID: empID,
			DutyID:     dutyID,
			Date:       in.Date,
			StartTime:  startTime,
			EndTime:    endTime,
			Status:     "scheduled",
		})
	}

	cfg := checker.DefaultConfig()
	if req.Config != nil {
		if req.Config.MinRestHours > 0 {
			cfg.MinRestHours = req.Config.MinRestHours
		}
		if req.Config.MaxConsecutiveDays > 0 {
			cfg.MaxConsecutiveDays = req.Config.MaxConsecutiveDays
		}
		if req.Config.CheckRollCall != nil {
			cfg.CheckRollCall = *req.Config.CheckRollCall
		}
	}

	result := checker.NewChecker(cfg).CheckAll(assignments, employees, duties)
	respondJSON(w, http.StatusOK, result)
}

// validateGenerateRequest 验证生成请求
func validateGenerateRequest(req *GenerateRequest) *errors.AppError {
	if req.Location == "" {
		return errors.InvalidInput("location", "营业所不能为空")
	}
	if len(req.Employees) == 0 {
		return errors.InvalidInput("employees", "员工列表不能为空")
	}
	if len(req.Duties) == 0 {
		return errors.InvalidInput("duties", "勤务列表不能为空")
	}
	if _, err := time.Parse("2006-01-02", req.StartDate); err != nil {
		return errors.InvalidInput("start_date", "日期格式无效，应为YYYY-MM-DD")
	}
	if _, err := time.Parse("2006-01-02", req.EndDate); err != nil {
		return errors.InvalidInput("end_date", "日期格式无效，应为YYYY-MM-DD")
	}
	if req.EndDate < req.StartDate {
		return errors.InvalidInput("end_date", "结束日期早于开始日期")
	}
	return nil
}

// buildEmployees 将输入转换为员工模型
func buildEmployees(inputs []EmployeeInput) ([]*model.Employee, *errors.AppError) {
	employees := make([]*model.Employee, 0, len(inputs))
	for _, in := range inputs {
		id, err := uuid.Parse(in.ID)
		if err != nil {
			return nil, errors.InvalidInput("employees", "无效的员工ID格式: "+in.ID)
		}
		emp := &model.Employee{
			BaseModel:   model.BaseModel{ID: id},
			Name:        in.Name,
			Code:        in.Code,
			Status:      in.Status,
			CanRollCall: in.CanRollCall,
		}
		if emp.Status == "" {
			emp.Status = "active"
		}
		employees = append(employees, emp)
	}
	return employees, nil
}

// buildDuties 将输入转换为勤务模型
func buildDuties(inputs []DutyInput) ([]*model.Duty, *errors.AppError) {
	duties := make([]*model.Duty, 0, len(inputs))
	for _, in := range inputs {
		id, err := uuid.Parse(in.ID)
		if err != nil {
			return nil, errors.InvalidInput("duties", "无效的勤务ID格式: "+in.ID)
		}
		duty := &model.Duty{
			BaseModel:    model.BaseModel{ID: id},
			Name:         in.Name,
			Code:         in.Code,
			GroupID:      in.GroupID,
			StartTime:    in.StartTime,
			EndTime:      in.EndTime,
			IsActive:     true,
			IsRollCall:   in.IsRollCall,
			HasAllowance: in.HasAllowance,
		}
		if in.PairedDutyID != "" {
			pairedID, err := uuid.Parse(in.PairedDutyID)
			if err != nil {
				return nil, errors.InvalidInput("duties", "无效的配对勤务ID格式: "+in.PairedDutyID)
			}
			duty.PairedDutyID = &pairedID
		}
		duties = append(duties, duty)
	}
	return duties, nil
}

// respondJSON 返回JSON响应
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError 返回错误响应
func respondError(w http.ResponseWriter, err *errors.AppError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(err.HTTPStatus)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"error":   true,
		"code":    err.Code,
		"message": err.Message,
		"details": err.Details,
	})
}
