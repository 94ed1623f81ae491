// Package engine 提供勤务分配引擎与多日编排器
package engine

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/chengwu/chengwu/pkg/engine/constraint"
	"github.com/chengwu/chengwu/pkg/logger"
	"github.com/chengwu/chengwu/pkg/model"
)

// defaultMaxShiftsPerDay 员工同日分配数默认上限
const defaultMaxShiftsPerDay = 3

// DayInput 单日生成输入
type DayInput struct {
	Date      string
	Location  string
	Employees []*model.Employee
	Duties    []*model.Duty

	// 排除信息
	Vacations map[uuid.UUID]bool
	Excluded  []*model.ExcludedEmployee
	Pairs     []*model.IncompatiblePair

	// 共享可变状态：多样性历史（单写者，按日期串行）
	History *model.DiversityHistory

	// 其他来源已提交的当日分配
	Existing []*model.Assignment

	// 日历元数据
	SpecialDays map[string]bool

	// 生成批次
	BatchID uuid.UUID
}

// DayResult 单日生成结果
// 即使部分勤务无法分配，也始终包含已完成的分配、违规列表和未分配勤务名。
type DayResult struct {
	Assignments      []*model.Assignment         `json:"assignments"`
	Violations       []model.ConstraintViolation `json:"violations"`
	UnassignedDuties []string                    `json:"unassigned_duties"`
	IdleEmployees    []uuid.UUID                 `json:"idle_employees,omitempty"` // 当日无勤务的员工（仅报告用）
}

// Engine 勤务分配引擎
// 贪心、无回溯：排序与选择依赖被逐步修改的共享状态（多样性历史与
// 当日分配计数），各阶段及阶段内勤务按固定顺序处理以保证可复现。
type Engine struct {
	evaluator       *constraint.Evaluator
	logger          *logger.EngineLogger
	maxShiftsPerDay int
}

// NewEngine 创建勤务分配引擎
func NewEngine(evaluator *constraint.Evaluator) *Engine {
	return &Engine{
		evaluator:       evaluator,
		logger:          logger.NewEngineLogger(),
		maxShiftsPerDay: defaultMaxShiftsPerDay,
	}
}

// SetMaxShiftsPerDay 设置员工同日分配数上限
func (e *Engine) SetMaxShiftsPerDay(max int) {
	if max > 0 {
		e.maxShiftsPerDay = max
	}
}

// GenerateDay 生成单日勤务分配
//
// 流程严格有序：
//  1. 排除过滤（休假、排除名单、不相容员工对）
//  2. 阶段0：点名勤务（限定具备资格的员工）
//  3. 阶段1：成组勤务（同组必须由同一员工整组承担）
//  4. 阶段2：单独勤务
//  5. 每次提交立即更新多样性历史与当日计数（同日内读己之写）
//  6. 全部提交后统一评估聚合类约束（覆盖、机动人员、均衡），
//     违规计入当日结果
func (e *Engine) GenerateDay(input *DayInput) *DayResult {
	start := time.Now()
	result := &DayResult{
		Assignments:      make([]*model.Assignment, 0),
		Violations:       make([]model.ConstraintViolation, 0),
		UnassignedDuties: make([]string, 0),
	}

	// 员工或勤务为空：立即返回，不阻塞
	if len(input.Employees) == 0 {
		for _, d := range input.Duties {
			result.UnassignedDuties = append(result.UnassignedDuties, d.Name)
		}
		return result
	}
	if len(input.Duties) == 0 {
		for _, emp := range input.Employees {
			result.IdleEmployees = append(result.IdleEmployees, emp.ID)
		}
		return result
	}

	e.logger.StartGenerate(input.Date, len(input.Employees), len(input.Duties))

	if input.History == nil {
		input.History = model.NewDiversityHistory()
	}
	if input.BatchID == uuid.Nil {
		input.BatchID = uuid.New()
	}

	// 评估上下文：包含其他来源已提交的当日分配
	ctx := constraint.NewContext(input.Location, input.Date, input.Date)
	ctx.SetEmployees(input.Employees)
	ctx.SetDuties(input.Duties)
	ctx.SpecialDays = input.SpecialDays
	for _, a := range input.Existing {
		ctx.AddAssignment(a)
	}

	state := newDayState(input, ctx)

	// 勤务分阶段：点名勤务 → 成组勤务 → 单独勤务
	rollCalls, groups, singles := partitionDuties(input.Duties)

	for _, duty := range rollCalls {
		e.assignRollCall(state, duty, result)
	}
	for _, group := range groups {
		e.assignGroup(state, group, result)
	}
	for _, duty := range singles {
		e.assignSingle(state, duty, result)
	}

	// 聚合类约束基于全天最终状态评估一次；
	// 员工范围的违规已在候选提交时收集，此处只取无员工归属的条目
	for _, v := range e.evaluator.EvaluateAll(ctx).All() {
		if v.EmployeeID == uuid.Nil {
			result.Violations = append(result.Violations, v)
		}
	}

	// 当日无勤务的员工仅作报告，不构成错误
	for _, emp := range input.Employees {
		if state.dayCount[emp.ID] == 0 {
			result.IdleEmployees = append(result.IdleEmployees, emp.ID)
		}
	}

	e.logger.GenerateComplete(input.Date,
		len(result.Assignments), len(result.UnassignedDuties), len(result.Violations),
		time.Since(start))
	return result
}

// dayState 单日生成过程的共享可变状态
type dayState struct {
	input    *DayInput
	ctx      *constraint.Context
	dayCount map[uuid.UUID]int // 当日分配计数（含外部已提交）

	available    []*model.Employee // 完全可用的员工
	rollCallOnly []*model.Employee // 仅可承担点名勤务的员工（排除名单中但具备点名资格）
}

// newDayState 构建单日状态并执行排除过滤
func newDayState(input *DayInput, ctx *constraint.Context) *dayState {
	s := &dayState{
		input:    input,
		ctx:      ctx,
		dayCount: make(map[uuid.UUID]int),
	}
	for _, a := range input.Existing {
		s.dayCount[a.EmployeeID]++
	}

	excluded := make(map[uuid.UUID]bool)
	for _, ex := range input.Excluded {
		excluded[ex.EmployeeID] = true
	}

	for _, emp := range input.Employees {
		if !emp.IsActive() {
			continue
		}
		if input.Vacations[emp.ID] {
			continue
		}
		if excluded[emp.ID] {
			// 排除名单中的员工仅在具备点名资格时参与点名勤务
			if emp.CanRollCall {
				s.rollCallOnly = append(s.rollCallOnly, emp)
			}
			continue
		}
		s.available = append(s.available, emp)
	}
	return s
}

// violatesPair 检查员工与当日已分配员工是否构成不相容对
func (s *dayState) violatesPair(empID uuid.UUID) bool {
	for _, a := range s.ctx.GetDateAssignments(s.input.Date) {
		if a.EmployeeID == empID {
			continue
		}
		for _, p := range s.input.Pairs {
			if p.Matches(empID, a.EmployeeID) {
				return true
			}
		}
	}
	return false
}

// commit 提交分配并立即传播状态（读己之写）
func (s *dayState) commit(a *model.Assignment, result *DayResult) {
	s.ctx.AddAssignment(a)
	s.dayCount[a.EmployeeID]++
	s.input.History.Record(a.EmployeeID, a.DutyID)
	result.Assignments = append(result.Assignments, a)
}

// newAssignment 构建候选分配
func (s *dayState) newAssignment(emp *model.Employee, duty *model.Duty) *model.Assignment {
	tr := duty.TimeRangeOn(s.input.Date)
	return &model.Assignment{
		BaseModel:  model.BaseModel{ID: uuid.New()},
		EmployeeID: emp.ID,
		DutyID:     duty.ID,
		Date:       s.input.Date,
		StartTime:  tr.Start,
		EndTime:    tr.End,
		Status:     "scheduled",
		BatchID:    s.input.BatchID,
	}
}

// candidateCheck 候选评估结果
type candidateCheck struct {
	assignment *model.Assignment
	rejected   bool // 时间重叠、超出同日上限、不相容对或强制约束违规
	violations []model.ConstraintViolation
}

// checkCandidate 评估把某勤务分配给某员工的后果
func (e *Engine) checkCandidate(s *dayState, emp *model.Employee, duty *model.Duty) candidateCheck {
	a := s.newAssignment(emp, duty)
	check := candidateCheck{assignment: a}

	if s.dayCount[emp.ID] >= e.maxShiftsPerDay {
		check.rejected = true
		return check
	}
	if s.ctx.HasOverlap(a) {
		check.rejected = true
		return check
	}
	if s.violatesPair(emp.ID) {
		check.rejected = true
		return check
	}

	for _, v := range e.evaluator.EvaluateCandidate(s.ctx, a) {
		if v.IsBlocking() {
			// 强制约束违规：拒绝候选，另寻他人
			check.rejected = true
			return check
		}
		check.violations = append(check.violations, v)
	}
	return check
}

// assignRollCall 阶段0：分配点名勤务
// 候选限定具备点名资格的员工，按（多样性历史数，当日分配数）升序取最小者。
func (e *Engine) assignRollCall(s *dayState, duty *model.Duty, result *DayResult) {
	if e.alreadyCommitted(s, duty) {
		return
	}

	var candidates []*model.Employee
	for _, emp := range s.available {
		if emp.CanRollCall {
			candidates = append(candidates, emp)
		}
	}
	candidates = append(candidates, s.rollCallOnly...)

	history := s.input.History
	sort.SliceStable(candidates, func(i, j int) bool {
		hi, hj := history.Count(candidates[i].ID), history.Count(candidates[j].ID)
		if hi != hj {
			return hi < hj
		}
		return s.dayCount[candidates[i].ID] < s.dayCount[candidates[j].ID]
	})

	for _, emp := range candidates {
		check := e.checkCandidate(s, emp, duty)
		if check.rejected {
			continue
		}
		s.commit(check.assignment, result)
		result.Violations = append(result.Violations, check.violations...)
		return
	}

	e.logger.DutyUnassigned(s.input.Date, duty.Name, "无具备点名资格的可用员工")
	result.UnassignedDuties = append(result.UnassignedDuties, duty.Name)
}

// assignGroup 阶段1：分配成组勤务
// 整组必须由同一员工承担；按当日分配数升序遍历候选，
// 选取组内非强制违规总数最少者，首个零违规候选直接胜出。
// 无可行候选时整组报告为未分配，绝不部分分配。
func (e *Engine) assignGroup(s *dayState, group []*model.Duty, result *DayResult) {
	// 组内任一勤务已在他处提交：整组跳过
	for _, duty := range group {
		if e.alreadyCommitted(s, duty) {
			return
		}
	}

	candidates := make([]*model.Employee, len(s.available))
	copy(candidates, s.available)
	sort.SliceStable(candidates, func(i, j int) bool {
		return s.dayCount[candidates[i].ID] < s.dayCount[candidates[j].ID]
	})

	type groupPlan struct {
		emp         *model.Employee
		assignments []*model.Assignment
		violations  []model.ConstraintViolation
	}
	var best *groupPlan

	for _, emp := range candidates {
		plan := &groupPlan{emp: emp}
		feasible := true

		// 逐个试分配组内勤务，评估后整体回滚
		var staged []*model.Assignment
		if s.dayCount[emp.ID]+len(group) > e.maxShiftsPerDay {
			continue
		}
		for _, duty := range group {
			check := e.checkCandidate(s, emp, duty)
			if check.rejected {
				feasible = false
				break
			}
			plan.assignments = append(plan.assignments, check.assignment)
			plan.violations = append(plan.violations, check.violations...)
			s.ctx.AddAssignment(check.assignment)
			staged = append(staged, check.assignment)
		}
		for _, a := range staged {
			s.ctx.RemoveAssignment(a.ID)
		}
		if !feasible {
			continue
		}

		if len(plan.violations) == 0 {
			best = plan
			break // 首个零违规候选胜出
		}
		if best == nil || len(plan.violations) < len(best.violations) {
			best = plan
		}
	}

	if best == nil {
		for _, duty := range group {
			e.logger.DutyUnassigned(s.input.Date, duty.Name, "成组勤务无可行候选")
			result.UnassignedDuties = append(result.UnassignedDuties, duty.Name)
		}
		return
	}

	for _, a := range best.assignments {
		s.commit(a, result)
	}
	result.Violations = append(result.Violations, best.violations...)
}

// assignSingle 阶段2：分配单独勤务
// 排序依据：未承担过该勤务者优先 → 多样性历史数升序 → 当日分配数升序；
// 取首个零违规候选，否则取违规最少者。
func (e *Engine) assignSingle(s *dayState, duty *model.Duty, result *DayResult) {
	if e.alreadyCommitted(s, duty) {
		return
	}

	history := s.input.History
	candidates := make([]*model.Employee, len(s.available))
	copy(candidates, s.available)
	sort.SliceStable(candidates, func(i, j int) bool {
		pi, pj := history.Has(candidates[i].ID, duty.ID), history.Has(candidates[j].ID, duty.ID)
		if pi != pj {
			return !pi // 未承担过的优先
		}
		hi, hj := history.Count(candidates[i].ID), history.Count(candidates[j].ID)
		if hi != hj {
			return hi < hj
		}
		return s.dayCount[candidates[i].ID] < s.dayCount[candidates[j].ID]
	})

	var best *candidateCheck
	for _, emp := range candidates {
		check := e.checkCandidate(s, emp, duty)
		if check.rejected {
			continue
		}
		if len(check.violations) == 0 {
			best = &check
			break
		}
		if best == nil || len(check.violations) < len(best.violations) {
			best = &check
		}
	}

	if best == nil {
		e.logger.DutyUnassigned(s.input.Date, duty.Name, "无可行候选")
		result.UnassignedDuties = append(result.UnassignedDuties, duty.Name)
		return
	}

	s.commit(best.assignment, result)
	result.Violations = append(result.Violations, best.violations...)
}

// alreadyCommitted 检查勤务当日是否已在他处提交
func (e *Engine) alreadyCommitted(s *dayState, duty *model.Duty) bool {
	for _, a := range s.ctx.GetDateAssignments(s.input.Date) {
		if a.DutyID == duty.ID {
			return true
		}
	}
	return false
}

// partitionDuties 勤务分阶段：点名勤务、成组勤务、单独勤务
// 各阶段内保持输入顺序，保证相同输入产生相同结果。
func partitionDuties(duties []*model.Duty) (rollCalls []*model.Duty, groups [][]*model.Duty, singles []*model.Duty) {
	byID := make(map[uuid.UUID]*model.Duty)
	for _, d := range duties {
		byID[d.ID] = d
	}

	// 组键：显式勤务组优先，其次配对勤务标识
	groupKey := func(d *model.Duty) string {
		if d.GroupID != "" {
			return "group:" + d.GroupID
		}
		if d.PairedDutyID != nil {
			// 配对勤务以无序对作为组键
			a, b := d.ID.String(), d.PairedDutyID.String()
			if b < a {
				a, b = b, a
			}
			return "pair:" + a + ":" + b
		}
		return ""
	}

	grouped := make(map[string][]*model.Duty)
	var groupOrder []string

	for _, d := range duties {
		if d.IsRollCall {
			rollCalls = append(rollCalls, d)
			continue
		}
		key := groupKey(d)
		if key == "" {
			singles = append(singles, d)
			continue
		}
		if _, seen := grouped[key]; !seen {
			groupOrder = append(groupOrder, key)
		}
		grouped[key] = append(grouped[key], d)
	}

	for _, key := range groupOrder {
		members := grouped[key]
		if len(members) < 2 {
			// 组内只有一个勤务（配对方缺席）：按单独勤务处理
			singles = append(singles, members...)
			continue
		}
		groups = append(groups, members)
	}
	return rollCalls, groups, singles
}
