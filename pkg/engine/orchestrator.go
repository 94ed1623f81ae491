// Package engine 提供勤务分配引擎与多日编排器
package engine

import (
	"context"

	"github.com/google/uuid"
	"github.com/chengwu/chengwu/pkg/errors"
	"github.com/chengwu/chengwu/pkg/logger"
	"github.com/chengwu/chengwu/pkg/model"
)

// Summary 多日生成汇总
type Summary struct {
	TotalAssignments int `json:"total_assignments"`
	TotalDays        int `json:"total_days"`
	TotalViolations  int `json:"total_violations"`
	TotalUnassigned  int `json:"total_unassigned"`
}

// RangeResult 多日生成结果
// 部分勤务未分配仍视为成功（Success=true 且 UnassignedDuties 非空），
// 与输入缺失导致的整体失败（Success=false）区分。
type RangeResult struct {
	Success          bool                        `json:"success"`
	Message          string                      `json:"message,omitempty"`
	Assignments      []*model.Assignment         `json:"assignments"`
	Violations       []model.ConstraintViolation `json:"violations"`
	UnassignedDuties []string                    `json:"unassigned_duties"`
	Summary          Summary                     `json:"summary"`
}

// RangeInput 多日生成输入
type RangeInput struct {
	Location    string
	Employees   []*model.Employee
	Duties      []*model.Duty
	DateRange   model.DateRange
	SpecialDays map[string]bool
}

// Orchestrator 多日编排器
// 按日期顺序串行驱动引擎：多样性历史的正确性依赖前序日期的全部提交，
// 日期级并行会破坏轮换公平性，故刻意串行。
type Orchestrator struct {
	engine      *Engine
	history     HistoryStore
	exclusions  ExclusionStore
	assignments AssignmentStore
	logger      *logger.EngineLogger
}

// NewOrchestrator 创建多日编排器
func NewOrchestrator(engine *Engine, history HistoryStore, exclusions ExclusionStore, assignments AssignmentStore) *Orchestrator {
	return &Orchestrator{
		engine:      engine,
		history:     history,
		exclusions:  exclusions,
		assignments: assignments,
		logger:      logger.NewEngineLogger(),
	}
}

// GenerateRange 在日期范围内逐日生成勤务分配
//
// 每个日期处理前重新加载多样性历史（合并本次运行及外部写入者的提交），
// 调用引擎生成当日分配，持久化后进入下一日期。持久化失败记为违规条目，
// 运行以内存状态继续，不回滚。
func (o *Orchestrator) GenerateRange(ctx context.Context, input *RangeInput) *RangeResult {
	result := &RangeResult{
		Assignments:      make([]*model.Assignment, 0),
		Violations:       make([]model.ConstraintViolation, 0),
		UnassignedDuties: make([]string, 0),
	}

	// 输入缺失：立即返回失败结果，不抛出
	if len(input.Employees) == 0 {
		result.Message = "没有可用员工"
		return result
	}
	if len(input.Duties) == 0 {
		result.Message = "没有待分配勤务"
		return result
	}
	dates := input.DateRange.Dates()
	if len(dates) == 0 {
		result.Message = "日期范围无效"
		return result
	}

	batchID := uuid.New()

	// 排除信息按营业所加载一次
	excluded, err := o.exclusions.ExcludedEmployees(ctx, input.Location)
	if err != nil {
		result.Message = errors.Wrap(err, errors.CodeDatabaseError, "加载排除员工失败").Error()
		return result
	}
	pairs, err := o.exclusions.IncompatiblePairs(ctx, input.Location)
	if err != nil {
		result.Message = errors.Wrap(err, errors.CodeDatabaseError, "加载不相容员工对失败").Error()
		return result
	}

	// 本次运行的累计历史：跨日期前向传递
	running := model.NewDiversityHistory()

	for _, date := range dates {
		if ctx.Err() != nil {
			result.Message = "运行被取消"
			return result
		}

		// 重新加载历史，纳入外部写入者在此之前的提交
		loaded, err := o.history.Load(ctx)
		if err != nil {
			o.logger.PersistFailed(date, err)
		} else {
			running.Merge(loaded)
		}

		vacations, err := o.exclusions.Vacations(ctx, date)
		if err != nil {
			o.logger.PersistFailed(date, err)
			vacations = make(map[uuid.UUID]bool)
		}

		dayResult := o.engine.GenerateDay(&DayInput{
			Date:        date,
			Location:    input.Location,
			Employees:   input.Employees,
			Duties:      input.Duties,
			Vacations:   vacations,
			Excluded:    excluded,
			Pairs:       pairs,
			History:     running,
			SpecialDays: input.SpecialDays,
			BatchID:     batchID,
		})
		o.logger.GenerateComplete(date, len(dayResult.Assignments),
			len(dayResult.UnassignedDuties), len(dayResult.Violations), 0)

		result.Assignments = append(result.Assignments, dayResult.Assignments...)
		result.Violations = append(result.Violations, dayResult.Violations...)
		result.UnassignedDuties = append(result.UnassignedDuties, dayResult.UnassignedDuties...)

		// 持久化：失败记为违规条目，继续使用内存状态
		if len(dayResult.Assignments) > 0 {
			if err := o.assignments.Persist(ctx, dayResult.Assignments); err != nil {
				o.logger.PersistFailed(date, err)
				result.Violations = append(result.Violations, model.ConstraintViolation{
					ConstraintName: "持久化",
					Date:           date,
					Severity:       model.SeverityWarning,
					Message:        errors.PersistenceFailure(date, err).Error(),
				})
			}
			for _, a := range dayResult.Assignments {
				if err := o.history.SaveEntry(ctx, a.EmployeeID, a.DutyID, date); err != nil {
					o.logger.PersistFailed(date, err)
				}
			}
		}
	}

	result.Success = true
	result.Summary = Summary{
		TotalAssignments: len(result.Assignments),
		TotalDays:        len(dates),
		TotalViolations:  len(result.Violations),
		TotalUnassigned:  len(result.UnassignedDuties),
	}
	return result
}
