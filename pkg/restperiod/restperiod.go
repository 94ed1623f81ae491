// Package restperiod 提供法定休息时间（含分割休息）校验
package restperiod

import (
	"fmt"
	"time"
)

// 法定休息时间规则常量（小时）
const (
	MinContinuousHours  = 11.0 // 连续休息最低时长
	MinSplitPeriodHours = 4.0  // 分割休息单段最低时长
	MinSplitTotalHours  = 11.0 // 分割休息合计最低时长
	MaxSplitPeriods     = 2    // 分割休息最多段数
)

// Type 休息类型
type Type string

const (
	TypeContinuous Type = "continuous" // 连续休息
	TypeSplit      Type = "split"      // 分割休息
	TypeInvalid    Type = "invalid"    // 不合法
)

// Period 休息子时段
type Period struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Hours 返回子时段时长（小时）
func (p Period) Hours() float64 {
	return p.End.Sub(p.Start).Hours()
}

// Result 休息校验结果
type Result struct {
	IsValid    bool     `json:"is_valid"`
	Type       Type     `json:"type"`
	TotalHours float64  `json:"total_hours"`
	Violations []string `json:"violations,omitempty"`
}

// Validate 校验两个班次之间的休息时间
//
// 规则：
//  1. 单段连续休息 >= 11 小时 → 合法（continuous）
//  2. 恰好两段分割休息，每段 >= 4 小时且合计 >= 11 小时 → 合法（split）
//  3. 三段及以上 → 无论合计多长均不合法
//  4. 其余情况不合法，结果逐条列出未满足的子规则
//
// periods 为空时按 prevEnd 到 nextStart 的单段连续休息处理。
// 纯函数，无副作用。
func Validate(prevEnd, nextStart time.Time, periods []Period) Result {
	if len(periods) == 0 {
		gap := nextStart.Sub(prevEnd).Hours()
		result := Result{Type: TypeContinuous, TotalHours: gap}
		if gap >= MinContinuousHours {
			result.IsValid = true
			return result
		}
		result.Type = TypeInvalid
		result.Violations = append(result.Violations,
			fmt.Sprintf("连续休息仅 %.1f 小时，少于法定的 %.0f 小时", gap, MinContinuousHours))
		return result
	}

	var total float64
	for _, p := range periods {
		total += p.Hours()
	}

	if len(periods) == 1 {
		result := Result{Type: TypeContinuous, TotalHours: total}
		if total >= MinContinuousHours {
			result.IsValid = true
			return result
		}
		result.Type = TypeInvalid
		result.Violations = append(result.Violations,
			fmt.Sprintf("连续休息仅 %.1f 小时，少于法定的 %.0f 小时", total, MinContinuousHours))
		return result
	}

	if len(periods) > MaxSplitPeriods {
		return Result{
			Type:       TypeInvalid,
			TotalHours: total,
			Violations: []string{
				fmt.Sprintf("休息被分割为 %d 段，超过允许的 %d 段", len(periods), MaxSplitPeriods),
			},
		}
	}

	// 恰好两段：逐条校验子规则
	result := Result{Type: TypeSplit, TotalHours: total, IsValid: true}
	for i, p := range periods {
		if hours := p.Hours(); hours < MinSplitPeriodHours {
			result.IsValid = false
			result.Violations = append(result.Violations,
				fmt.Sprintf("第 %d 段休息仅 %.1f 小时，少于单段最低 %.0f 小时", i+1, hours, MinSplitPeriodHours))
		}
	}
	if total < MinSplitTotalHours {
		result.IsValid = false
		result.Violations = append(result.Violations,
			fmt.Sprintf("分割休息合计仅 %.1f 小时，少于法定的 %.0f 小时", total, MinSplitTotalHours))
	}
	if !result.IsValid {
		result.Type = TypeInvalid
	}
	return result
}

// QuotaResult 月度分割休息配额校验结果
type QuotaResult struct {
	SplitCount    int  `json:"split_count"`
	TotalShifts   int  `json:"total_shifts"`
	Limit         int  `json:"limit"`
	IsWithinLimit bool `json:"is_within_limit"`
}

// CheckMonthlySplitRestLimit 校验员工当月分割休息使用次数
// 配额为当月总班次数的一半（向下取整），即使每次分割休息各自合法，
// 超过配额仍构成违规。
func CheckMonthlySplitRestLimit(splitCount, totalShifts int) QuotaResult {
	limit := totalShifts / 2
	return QuotaResult{
		SplitCount:    splitCount,
		TotalShifts:   totalShifts,
		Limit:         limit,
		IsWithinLimit: splitCount <= limit,
	}
}
