// Package repository 提供数据访问层
package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/chengwu/chengwu/pkg/model"
)

// ConstraintRepository 约束配置仓储
type ConstraintRepository struct {
	db DB
}

// NewConstraintRepository 创建约束配置仓储
func NewConstraintRepository(db DB) *ConstraintRepository {
	return &ConstraintRepository{db: db}
}

// LoadActive 加载某营业所生效中的约束
func (r *ConstraintRepository) LoadActive(ctx context.Context, location string) ([]*model.Constraint, error) {
	query := `
		SELECT id, name, type, calc_name, threshold, operator, scope, level,
			location, is_active, params, created_at, updated_at
		FROM constraints
		WHERE location = $1 AND is_active = TRUE AND deleted_at IS NULL
		ORDER BY created_at
	`

	rows, err := r.db.QueryContext(ctx, query, location)
	if err != nil {
		return nil, fmt.Errorf("查询约束配置失败: %w", err)
	}
	defer rows.Close()

	var constraints []*model.Constraint
	for rows.Next() {
		c := &model.Constraint{}
		var paramsJSON []byte
		if err := rows.Scan(
			&c.ID, &c.Name, &c.Type, &c.CalcName, &c.Threshold, &c.Operator,
			&c.Scope, &c.Level, &c.Location, &c.IsActive, &paramsJSON,
			&c.CreatedAt, &c.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("扫描约束配置失败: %w", err)
		}
		if len(paramsJSON) > 0 {
			if err := json.Unmarshal(paramsJSON, &c.Params); err != nil {
				return nil, fmt.Errorf("解析约束参数失败: %w", err)
			}
		}
		constraints = append(constraints, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("遍历约束配置失败: %w", err)
	}

	return constraints, nil
}

// Create 创建约束配置
func (r *ConstraintRepository) Create(ctx context.Context, c *model.Constraint) error {
	if c.ID == uuid.Nil {
		c.BaseModel = model.NewBaseModel()
	}

	paramsJSON, err := json.Marshal(c.Params)
	if err != nil {
		return fmt.Errorf("序列化约束参数失败: %w", err)
	}

	query := `
		INSERT INTO constraints (
			id, name, type, calc_name, threshold, operator, scope, level,
			location, is_active, params, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err = r.db.ExecContext(ctx, query,
		c.ID, c.Name, c.Type, c.CalcName, c.Threshold, c.Operator,
		c.Scope, c.Level, c.Location, c.IsActive, paramsJSON,
		c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("创建约束配置失败: %w", err)
	}
	return nil
}
