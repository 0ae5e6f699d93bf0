package models

import (
	"fmt"
	"time"
)

// TimeOfDay 钟点时间（不含日期），范围 00:00..23:59
// 跨午夜的解释由 metrics 包负责
type TimeOfDay struct {
	Hour   int
	Minute int
}

// NewTimeOfDay 创建钟点时间，超出 00:00..23:59 返回 false
func NewTimeOfDay(hour, minute int) (TimeOfDay, bool) {
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return TimeOfDay{}, false
	}
	return TimeOfDay{Hour: hour, Minute: minute}, true
}

// Minutes 自午夜起的分钟数
func (t TimeOfDay) Minutes() int {
	return t.Hour*60 + t.Minute
}

// String 返回 "HH:MM"
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// RawRecord 上传数据的一行：原始表头 -> 原始单元格值（string / float64 / bool / time.Time / nil）
type RawRecord map[string]any

// Dataset 上传的表格数据（由 workbook 包读取）
type Dataset struct {
	Headers []string
	Rows    []RawRecord
}

// NormalizedRecord 清洗后的单晚记录
// 指针字段为 nil 表示缺失（未填写、无法解析或被判为异常值，三者不区分）
type NormalizedRecord struct {
	RowIndex int // 原始行号（从 0 开始），用于时间戳缺失时的稳定排序

	RespondentID       *string // 规范化并合并后的姓名
	RespondentOriginal string  // 原始姓名文本

	SubmittedAt *time.Time
	CompletedAt *time.Time

	WentToBed   *TimeOfDay
	LightsOff   *TimeOfDay
	WakeFinal   *TimeOfDay
	RoseFromBed *TimeOfDay

	LatencyMinutes *float64 // 入睡潜伏期（分钟）
	WASOMinutes    float64  // 入睡后觉醒总时长（分钟），已封顶，不为空
	AwakeningCount float64  // 夜间醒来次数

	EstimatedSleepHours *float64 // 受访者自估睡眠时长（小时）
}

// DerivedMetrics 单晚衍生指标
type DerivedMetrics struct {
	TimeInBedHours        *float64
	SleepDurationHours    *float64
	AwakeInBedHours       *float64
	SleepEfficiencyPct    *float64
	MorningInertiaMinutes *float64

	Rolling7TimeInBedHours        *float64
	Rolling7SleepDurationHours    *float64
	Rolling7SleepEfficiencyPct    *float64
	Rolling7MorningInertiaMinutes *float64
}

// NightResult 单晚记录及其指标
type NightResult struct {
	Record  NormalizedRecord
	Metrics DerivedMetrics
}

// Float64Ptr 返回 v 的指针
func Float64Ptr(v float64) *float64 {
	return &v
}

// StringPtr 返回 v 的指针
func StringPtr(v string) *string {
	return &v
}
