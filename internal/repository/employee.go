// Package repository 提供数据访问层
package repository

import (
	"context"
	"fmt"

	"github.com/chengwu/chengwu/pkg/model"
)

// EmployeeRepository 员工仓储
type EmployeeRepository struct {
	db DB
}

// NewEmployeeRepository 创建员工仓储
func NewEmployeeRepository(db DB) *EmployeeRepository {
	return &EmployeeRepository{db: db}
}

// ListByLocation 加载某营业所的全部员工
func (r *EmployeeRepository) ListByLocation(ctx context.Context, location string) ([]*model.Employee, error) {
	query := `
		SELECT id, name, code, location, status, can_roll_call,
			created_at, updated_at
		FROM employees
		WHERE location = $1 AND deleted_at IS NULL
		ORDER BY code
	`

	rows, err := r.db.QueryContext(ctx, query, location)
	if err != nil {
		return nil, fmt.Errorf("查询员工失败: %w", err)
	}
	defer rows.Close()

	var employees []*model.Employee
	for rows.Next() {
		e := &model.Employee{}
		if err := rows.Scan(
			&e.ID, &e.Name, &e.Code, &e.Location, &e.Status, &e.CanRollCall,
			&e.CreatedAt, &e.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("扫描员工失败: %w", err)
		}
		employees = append(employees, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("遍历员工失败: %w", err)
	}

	return employees, nil
}
