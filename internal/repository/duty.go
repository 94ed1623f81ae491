// Package repository 提供数据访问层
package repository

import (
	"context"
	"fmt"

	"github.com/chengwu/chengwu/pkg/model"
)

// DutyRepository 勤务仓储
type DutyRepository struct {
	db DB
}

// NewDutyRepository 创建勤务仓储
func NewDutyRepository(db DB) *DutyRepository {
	return &DutyRepository{db: db}
}

// ListActive 加载某营业所生效中的勤务
func (r *DutyRepository) ListActive(ctx context.Context, location string) ([]*model.Duty, error) {
	query := `
		SELECT id, name, code, COALESCE(group_id, ''), start_time, end_time,
			location, is_active, is_roll_call, has_allowance, paired_duty_id,
			created_at, updated_at
		FROM duties
		WHERE location = $1 AND is_active = TRUE AND deleted_at IS NULL
		ORDER BY start_time, code
	`

	rows, err := r.db.QueryContext(ctx, query, location)
	if err != nil {
		return nil, fmt.Errorf("查询勤务失败: %w", err)
	}
	defer rows.Close()

	var duties []*model.Duty
	for rows.Next() {
		d := &model.Duty{}
		if err := rows.Scan(
			&d.ID, &d.Name, &d.Code, &d.GroupID, &d.StartTime, &d.EndTime,
			&d.Location, &d.IsActive, &d.IsRollCall, &d.HasAllowance, &d.PairedDutyID,
			&d.CreatedAt, &d.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("扫描勤务失败: %w", err)
		}
		duties = append(duties, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("遍历勤务失败: %w", err)
	}

	return duties, nil
}
