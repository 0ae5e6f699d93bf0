package metrics

import "wisefido-sleep-diary/internal/models"

// Averages 一组指标的均值，没有数据时为 nil
type Averages struct {
	TimeInBedHours     *float64
	SleepDurationHours *float64
	SleepEfficiencyPct *float64
	LatencyMinutes     *float64
	WASOMinutes        *float64
}

// Summary 有效行的汇总
type Summary struct {
	Nights      int // 参与计算的行数
	ValidNights int // 有效行数
	Window      int

	Overall Averages // 全部有效行
	Recent  Averages // 最近 Window 个有效行
	Delta   Averages // Recent - Overall

	Partial bool // 有效行不足 Window 个
}

// Summarize 汇总结果（results 需已按提交时间排序，如 Engine.Process 的输出）
func Summarize(results []models.NightResult, window int) Summary {
	if window < 1 {
		window = DefaultRollingWindow
	}
	valid := ValidSubset(results)
	recent := valid
	if len(recent) > window {
		recent = recent[len(recent)-window:]
	}

	s := Summary{
		Nights:      len(results),
		ValidNights: len(valid),
		Window:      window,
		Overall:     averages(valid),
		Recent:      averages(recent),
		Partial:     len(valid) < window,
	}
	s.Delta = Averages{
		TimeInBedHours:     delta(s.Recent.TimeInBedHours, s.Overall.TimeInBedHours),
		SleepDurationHours: delta(s.Recent.SleepDurationHours, s.Overall.SleepDurationHours),
		SleepEfficiencyPct: delta(s.Recent.SleepEfficiencyPct, s.Overall.SleepEfficiencyPct),
		LatencyMinutes:     delta(s.Recent.LatencyMinutes, s.Overall.LatencyMinutes),
		WASOMinutes:        delta(s.Recent.WASOMinutes, s.Overall.WASOMinutes),
	}
	return s
}

func averages(results []models.NightResult) Averages {
	var tib, tst, eff, lat, waso mean
	for _, r := range results {
		tib.add(r.Metrics.TimeInBedHours)
		tst.add(r.Metrics.SleepDurationHours)
		eff.add(r.Metrics.SleepEfficiencyPct)
		lat.add(r.Record.LatencyMinutes)
		w := r.Record.WASOMinutes
		waso.add(&w)
	}
	return Averages{
		TimeInBedHours:     tib.value(),
		SleepDurationHours: tst.value(),
		SleepEfficiencyPct: eff.value(),
		LatencyMinutes:     lat.value(),
		WASOMinutes:        waso.value(),
	}
}

// mean 跳过 nil 的累加器
type mean struct {
	sum float64
	n   int
}

func (m *mean) add(v *float64) {
	if v == nil {
		return
	}
	m.sum += *v
	m.n++
}

func (m *mean) value() *float64 {
	if m.n == 0 {
		return nil
	}
	v := m.sum / float64(m.n)
	return &v
}

func delta(a, b *float64) *float64 {
	if a == nil || b == nil {
		return nil
	}
	d := *a - *b
	return &d
}
