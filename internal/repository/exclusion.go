// Package repository 提供数据访问层
package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/chengwu/chengwu/pkg/model"
)

// ExclusionRepository 排除信息仓储（休假、排班排除、不相容员工对）
type ExclusionRepository struct {
	db DB
}

// NewExclusionRepository 创建排除信息仓储
func NewExclusionRepository(db DB) *ExclusionRepository {
	return &ExclusionRepository{db: db}
}

// Vacations 加载某日期的休假员工集合
func (r *ExclusionRepository) Vacations(ctx context.Context, date string) (map[uuid.UUID]bool, error) {
	query := `
		SELECT employee_id
		FROM vacations
		WHERE date = $1
	`

	rows, err := r.db.QueryContext(ctx, query, date)
	if err != nil {
		return nil, fmt.Errorf("查询休假记录失败: %w", err)
	}
	defer rows.Close()

	vacations := make(map[uuid.UUID]bool)
	for rows.Next() {
		var employeeID uuid.UUID
		if err := rows.Scan(&employeeID); err != nil {
			return nil, fmt.Errorf("扫描休假记录失败: %w", err)
		}
		vacations[employeeID] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("遍历休假记录失败: %w", err)
	}

	return vacations, nil
}

// ExcludedEmployees 加载某营业所的排班排除员工
func (r *ExclusionRepository) ExcludedEmployees(ctx context.Context, location string) ([]*model.ExcludedEmployee, error) {
	query := `
		SELECT employee_id, location, COALESCE(reason, '')
		FROM excluded_employees
		WHERE location = $1
		ORDER BY employee_id
	`

	rows, err := r.db.QueryContext(ctx, query, location)
	if err != nil {
		return nil, fmt.Errorf("查询排除员工失败: %w", err)
	}
	defer rows.Close()

	var excluded []*model.ExcludedEmployee
	for rows.Next() {
		e := &model.ExcludedEmployee{}
		if err := rows.Scan(&e.EmployeeID, &e.Location, &e.Reason); err != nil {
			return nil, fmt.Errorf("扫描排除员工失败: %w", err)
		}
		excluded = append(excluded, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("遍历排除员工失败: %w", err)
	}

	return excluded, nil
}

// IncompatiblePairs 加载某营业所的不相容员工对
func (r *ExclusionRepository) IncompatiblePairs(ctx context.Context, location string) ([]*model.IncompatiblePair, error) {
	query := `
		SELECT employee_a, employee_b, location
		FROM incompatible_pairs
		WHERE location = $1
		ORDER BY employee_a, employee_b
	`

	rows, err := r.db.QueryContext(ctx, query, location)
	if err != nil {
		return nil, fmt.Errorf("查询不相容员工对失败: %w", err)
	}
	defer rows.Close()

	var pairs []*model.IncompatiblePair
	for rows.Next() {
		p := &model.IncompatiblePair{}
		if err := rows.Scan(&p.EmployeeA, &p.EmployeeB, &p.Location); err != nil {
			return nil, fmt.Errorf("扫描不相容员工对失败: %w", err)
		}
		pairs = append(pairs, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("遍历不相容员工对失败: %w", err)
	}

	return pairs, nil
}
