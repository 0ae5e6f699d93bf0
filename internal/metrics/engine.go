// Package metrics 由清洗后的睡眠日记计算每晚指标和滚动平均
package metrics

import (
	"fmt"
	"math"
	"sort"

	"wisefido-sleep-diary/internal/models"
)

// Engine 指标计算引擎（无状态，可复用）
type Engine struct {
	opts Options
}

// NewEngine 创建指标计算引擎
func NewEngine(opts Options) (*Engine, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid metrics options: %w", err)
	}
	return &Engine{opts: opts}, nil
}

// Options 返回引擎配置
func (e *Engine) Options() Options {
	return e.opts
}

// Night 计算单晚指标
//
// 输入字段缺失时对应指标为 nil，不返回错误：
//   - TIB = 跨午夜差(起点, 起床)
//   - TST = 跨午夜差(关灯, 终点) - 潜伏期 - WASO [- min(晨起惰性, 上限)]，
//     结果封顶在 [0, min(TIB, TSTCeilingHours)]
//   - 清醒卧床 = max(0, TIB - TST)
//   - 睡眠效率 = min(100, TST / TIB * 100)
func (e *Engine) Night(rec models.NormalizedRecord) models.DerivedMetrics {
	var m models.DerivedMetrics

	if rec.WakeFinal != nil && rec.RoseFromBed != nil {
		inertia := SameDayDiffMinutes(*rec.WakeFinal, *rec.RoseFromBed)
		m.MorningInertiaMinutes = &inertia
	}

	m.TimeInBedHours = e.timeInBed(rec)
	m.SleepDurationHours = e.sleepDuration(rec, m.TimeInBedHours, m.MorningInertiaMinutes)

	if m.TimeInBedHours != nil && m.SleepDurationHours != nil {
		tib, tst := *m.TimeInBedHours, *m.SleepDurationHours
		awake := math.Max(0, tib-tst)
		m.AwakeInBedHours = &awake
		if tib > 0 {
			eff := math.Min(100, tst/tib*100)
			m.SleepEfficiencyPct = &eff
		}
	}
	return m
}

func (e *Engine) timeInBed(rec models.NormalizedRecord) *float64 {
	start := rec.WentToBed
	if e.opts.TIBStart == StartLightsOff {
		start = rec.LightsOff
	}
	if start == nil || rec.RoseFromBed == nil {
		return nil
	}

	hours := WrapDiffMinutes(*start, *rec.RoseFromBed) / 60
	if e.opts.Bounds == BoundsReject && (hours < e.opts.MinTIBHours || hours > e.opts.MaxTIBHours) {
		return nil
	}
	return &hours
}

func (e *Engine) sleepDuration(rec models.NormalizedRecord, tib, inertia *float64) *float64 {
	end := rec.RoseFromBed
	if e.opts.TSTEnd == EndWakeFinal {
		end = rec.WakeFinal
	}
	if rec.LightsOff == nil || end == nil {
		return nil
	}

	minutes := WrapDiffMinutes(*rec.LightsOff, *end)
	if rec.LatencyMinutes != nil {
		minutes -= *rec.LatencyMinutes
	}
	minutes -= rec.WASOMinutes
	if e.opts.SubtractInertia && inertia != nil {
		minutes -= math.Min(*inertia, e.opts.MaxInertiaMinutes)
	}

	hours := minutes / 60
	if e.opts.Bounds == BoundsReject && (hours < e.opts.MinTSTHours || hours > e.opts.MaxTSTHours) {
		return nil
	}

	ceiling := e.opts.TSTCeilingHours
	if tib != nil && *tib < ceiling {
		ceiling = *tib
	}
	hours = math.Min(math.Max(0, hours), ceiling)
	return &hours
}

// SortBySubmission 按提交时间升序稳定排序，返回新切片
// 时间戳缺失的记录排在最后，彼此之间保持原始行号顺序
func SortBySubmission(records []models.NormalizedRecord) []models.NormalizedRecord {
	out := make([]models.NormalizedRecord, len(records))
	copy(out, records)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].SubmittedAt, out[j].SubmittedAt
		switch {
		case a == nil && b == nil:
			return out[i].RowIndex < out[j].RowIndex
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return a.Before(*b)
		}
	})
	return out
}

// Process 排序、逐晚计算指标、计算滚动平均
// records 的范围（全部受访者或单个受访者）由调用方决定，滚动窗口只在该范围内计算
func (e *Engine) Process(records []models.NormalizedRecord) []models.NightResult {
	sorted := SortBySubmission(records)
	results := make([]models.NightResult, len(sorted))
	valid := make([]bool, len(sorted))
	for i, rec := range sorted {
		results[i] = models.NightResult{Record: rec, Metrics: e.Night(rec)}
		valid[i] = IsValid(results[i].Metrics)
	}

	window := e.opts.RollingWindow
	column := func(get func(m models.DerivedMetrics) *float64) []*float64 {
		values := make([]*float64, len(results))
		for i := range results {
			values[i] = get(results[i].Metrics)
		}
		return Rolling(values, valid, window)
	}

	tib := column(func(m models.DerivedMetrics) *float64 { return m.TimeInBedHours })
	tst := column(func(m models.DerivedMetrics) *float64 { return m.SleepDurationHours })
	eff := column(func(m models.DerivedMetrics) *float64 { return m.SleepEfficiencyPct })
	inertia := column(func(m models.DerivedMetrics) *float64 { return m.MorningInertiaMinutes })

	for i := range results {
		results[i].Metrics.Rolling7TimeInBedHours = tib[i]
		results[i].Metrics.Rolling7SleepDurationHours = tst[i]
		results[i].Metrics.Rolling7SleepEfficiencyPct = eff[i]
		results[i].Metrics.Rolling7MorningInertiaMinutes = inertia[i]
	}
	return results
}

// Rolling 滚动平均：每个有效行取最近 window 个有效行（含自身）的均值
//
// 不足 window 个时使用已有的行；窗口内为 nil 的值不参与平均；
// 无效行的结果为 nil，也不进入后续窗口。
func Rolling(values []*float64, valid []bool, window int) []*float64 {
	out := make([]*float64, len(values))
	if window < 1 {
		return out
	}
	history := make([]int, 0, len(values))
	for i := range values {
		if i >= len(valid) || !valid[i] {
			continue
		}
		history = append(history, i)
		start := len(history) - window
		if start < 0 {
			start = 0
		}
		sum, n := 0.0, 0
		for _, j := range history[start:] {
			if values[j] == nil {
				continue
			}
			sum += *values[j]
			n++
		}
		if n > 0 {
			mean := sum / float64(n)
			out[i] = &mean
		}
	}
	return out
}

// IsValid 有效行：TIB 与 TST 均不为空，只有有效行参与平均
func IsValid(m models.DerivedMetrics) bool {
	return m.TimeInBedHours != nil && m.SleepDurationHours != nil
}

// ValidSubset 过滤出有效行
func ValidSubset(results []models.NightResult) []models.NightResult {
	out := make([]models.NightResult, 0, len(results))
	for _, r := range results {
		if IsValid(r.Metrics) {
			out = append(out, r)
		}
	}
	return out
}

// ListRespondents 排序去重后的受访者列表
func ListRespondents(records []models.NormalizedRecord) []string {
	seen := make(map[string]bool)
	var out []string
	for _, rec := range records {
		if rec.RespondentID == nil || seen[*rec.RespondentID] {
			continue
		}
		seen[*rec.RespondentID] = true
		out = append(out, *rec.RespondentID)
	}
	sort.Strings(out)
	return out
}

// FilterRespondent 只保留指定受访者的记录；respondent 为空时返回全部
func FilterRespondent(records []models.NormalizedRecord, respondent string) []models.NormalizedRecord {
	if respondent == "" {
		return records
	}
	out := make([]models.NormalizedRecord, 0, len(records))
	for _, rec := range records {
		if rec.RespondentID != nil && *rec.RespondentID == respondent {
			out = append(out, rec)
		}
	}
	return out
}
