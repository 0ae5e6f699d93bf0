// Package report 将汇总结果格式化为文本
package report

import (
	"fmt"
	"math"
)

// FormatHours 小时 -> "7h 15min"；nil 或 0 为 "0h 0min"
func FormatHours(hours *float64) string {
	if hours == nil || *hours == 0 {
		return "0h 0min"
	}
	total := int(math.Round(*hours * 60))
	return fmt.Sprintf("%dh %dmin", total/60, total%60)
}

// FormatDeltaHours 带符号的小时差值："+1h 5min"、"-20min"、"+2h"；nil 为空串
func FormatDeltaHours(delta *float64) string {
	if delta == nil {
		return ""
	}
	sign := "+"
	if *delta < 0 {
		sign = "-"
	}
	total := int(math.Round(math.Abs(*delta) * 60))
	h, m := total/60, total%60
	switch {
	case h == 0:
		return fmt.Sprintf("%s%dmin", sign, m)
	case m == 0:
		return fmt.Sprintf("%s%dh", sign, h)
	default:
		return fmt.Sprintf("%s%dh %dmin", sign, h, m)
	}
}

// FormatMinutes 分钟 -> "15 min"；nil 或 0 为 "0 min"
func FormatMinutes(minutes *float64) string {
	if minutes == nil || *minutes == 0 {
		return "0 min"
	}
	return fmt.Sprintf("%.0f min", *minutes)
}

// FormatDeltaMinutes 带符号的分钟差值："+5 min"
func FormatDeltaMinutes(delta *float64) string {
	if delta == nil {
		return ""
	}
	return fmt.Sprintf("%+.0f min", *delta)
}

// FormatPercent 百分比，一位小数："85.1%"
func FormatPercent(pct *float64) string {
	if pct == nil {
		return "-"
	}
	return fmt.Sprintf("%.1f%%", *pct)
}

// FormatDeltaPercent 带符号的百分比差值："+1.5%"
func FormatDeltaPercent(delta *float64) string {
	if delta == nil {
		return ""
	}
	return fmt.Sprintf("%+.1f%%", *delta)
}
