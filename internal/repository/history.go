// Package repository 提供数据访问层
package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/chengwu/chengwu/pkg/model"
)

// HistoryRepository 多样性历史仓储
type HistoryRepository struct {
	db DB
}

// NewHistoryRepository 创建多样性历史仓储
func NewHistoryRepository(db DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

// Load 加载全量多样性历史
func (r *HistoryRepository) Load(ctx context.Context) (*model.DiversityHistory, error) {
	query := `
		SELECT DISTINCT employee_id, duty_id
		FROM duty_history
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("查询多样性历史失败: %w", err)
	}
	defer rows.Close()

	history := model.NewDiversityHistory()
	for rows.Next() {
		var employeeID, dutyID uuid.UUID
		if err := rows.Scan(&employeeID, &dutyID); err != nil {
			return nil, fmt.Errorf("扫描多样性历史失败: %w", err)
		}
		history.Record(employeeID, dutyID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("遍历多样性历史失败: %w", err)
	}

	return history, nil
}

// SaveEntry 记录一条历史（员工承担过某勤务）
// 同一（员工，勤务）重复提交时只更新最近日期。
func (r *HistoryRepository) SaveEntry(ctx context.Context, employeeID, dutyID uuid.UUID, date string) error {
	query := `
		INSERT INTO duty_history (employee_id, duty_id, last_date)
		VALUES ($1, $2, $3)
		ON CONFLICT (employee_id, duty_id)
		DO UPDATE SET last_date = GREATEST(duty_history.last_date, EXCLUDED.last_date)
	`

	if _, err := r.db.ExecContext(ctx, query, employeeID, dutyID, date); err != nil {
		return fmt.Errorf("写入多样性历史失败: %w", err)
	}
	return nil
}
