// Package repository 提供数据访问层
package repository

import (
	"context"
	"fmt"

	"github.com/chengwu/chengwu/pkg/model"
)

// AssignmentRepository 勤务分配仓储
type AssignmentRepository struct {
	db DB
}

// NewAssignmentRepository 创建勤务分配仓储
func NewAssignmentRepository(db DB) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

// Persist 持久化一批分配结果
func (r *AssignmentRepository) Persist(ctx context.Context, assignments []*model.Assignment) error {
	if len(assignments) == 0 {
		return nil
	}

	query := `
		INSERT INTO assignments (
			id, employee_id, duty_id, date, start_time, end_time,
			status, batch_id, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	for _, a := range assignments {
		_, err := r.db.ExecContext(ctx, query,
			a.ID, a.EmployeeID, a.DutyID, a.Date, a.StartTime, a.EndTime,
			a.Status, a.BatchID, a.CreatedAt, a.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("写入勤务分配失败: %w", err)
		}
	}
	return nil
}

// ListByDateRange 查询日期区间内的分配记录
func (r *AssignmentRepository) ListByDateRange(ctx context.Context, location, startDate, endDate string) ([]*model.Assignment, error) {
	query := `
		SELECT a.id, a.employee_id, a.duty_id, a.date, a.start_time, a.end_time,
			a.status, a.batch_id, a.created_at, a.updated_at
		FROM assignments a
		JOIN duties d ON d.id = a.duty_id
		WHERE d.location = $1 AND a.date >= $2 AND a.date <= $3
			AND a.status <> 'cancelled'
		ORDER BY a.date, a.start_time
	`

	rows, err := r.db.QueryContext(ctx, query, location, startDate, endDate)
	if err != nil {
		return nil, fmt.Errorf("查询勤务分配失败: %w", err)
	}
	defer rows.Close()

	var assignments []*model.Assignment
	for rows.Next() {
		a := &model.Assignment{}
		if err := rows.Scan(
			&a.ID, &a.EmployeeID, &a.DutyID, &a.Date, &a.StartTime, &a.EndTime,
			&a.Status, &a.BatchID, &a.CreatedAt, &a.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("扫描勤务分配失败: %w", err)
		}
		assignments = append(assignments, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("遍历勤务分配失败: %w", err)
	}

	return assignments, nil
}
