// Package engine 提供勤务分配引擎与多日编排器
package engine

import (
	"context"

	"github.com/google/uuid"
	"github.com/chengwu/chengwu/pkg/model"
)

// HistoryStore 多样性历史存取接口（外部协作方）
type HistoryStore interface {
	// Load 加载全量多样性历史
	Load(ctx context.Context) (*model.DiversityHistory, error)

	// SaveEntry 记录一条历史（员工承担过某勤务）
	SaveEntry(ctx context.Context, employeeID, dutyID uuid.UUID, date string) error
}

// ExclusionStore 排除信息存取接口（外部协作方）
type ExclusionStore interface {
	// Vacations 加载某日期的休假员工集合
	Vacations(ctx context.Context, date string) (map[uuid.UUID]bool, error)

	// ExcludedEmployees 加载某营业所的排班排除员工
	ExcludedEmployees(ctx context.Context, location string) ([]*model.ExcludedEmployee, error)

	// IncompatiblePairs 加载某营业所的不相容员工对
	IncompatiblePairs(ctx context.Context, location string) ([]*model.IncompatiblePair, error)
}

// ConstraintStore 约束配置存取接口（外部协作方）
type ConstraintStore interface {
	// LoadActive 加载某营业所生效中的约束
	LoadActive(ctx context.Context, location string) ([]*model.Constraint, error)
}

// AssignmentStore 分配结果存取接口（外部协作方）
type AssignmentStore interface {
	// Persist 持久化分配结果
	Persist(ctx context.Context, assignments []*model.Assignment) error
}
