package models

// 结果表列名（对外稳定，导出和展示层依赖这些名称）
const (
	ColRespondentID        = "respondent_id"
	ColRespondentOriginal  = "respondent_name_original"
	ColSubmittedAt         = "submitted_at"
	ColCompletedAt         = "completed_at"
	ColWentToBed           = "went_to_bed"
	ColLightsOff           = "lights_off"
	ColWakeFinal           = "wake_final"
	ColRoseFromBed         = "rose_from_bed"
	ColLatencyMinutes      = "latency_minutes"
	ColWASOMinutes         = "waso_minutes"
	ColAwakeningCount      = "awakening_count"
	ColEstimatedSleepHours = "estimated_sleep_hours"

	ColTimeInBedHours        = "time_in_bed_hours"
	ColSleepDurationHours    = "sleep_duration_hours"
	ColAwakeInBedHours       = "awake_in_bed_hours"
	ColSleepEfficiencyPct    = "sleep_efficiency_pct"
	ColMorningInertiaMinutes = "morning_inertia_minutes"

	ColRolling7TimeInBedHours        = "rolling_7_time_in_bed_hours"
	ColRolling7SleepDurationHours    = "rolling_7_sleep_duration_hours"
	ColRolling7SleepEfficiencyPct    = "rolling_7_sleep_efficiency_pct"
	ColRolling7MorningInertiaMinutes = "rolling_7_morning_inertia_minutes"
)

// Columns 导出列顺序
var Columns = []string{
	ColRespondentID,
	ColRespondentOriginal,
	ColSubmittedAt,
	ColCompletedAt,
	ColWentToBed,
	ColLightsOff,
	ColWakeFinal,
	ColRoseFromBed,
	ColLatencyMinutes,
	ColWASOMinutes,
	ColAwakeningCount,
	ColEstimatedSleepHours,
	ColTimeInBedHours,
	ColSleepDurationHours,
	ColAwakeInBedHours,
	ColSleepEfficiencyPct,
	ColMorningInertiaMinutes,
	ColRolling7TimeInBedHours,
	ColRolling7SleepDurationHours,
	ColRolling7SleepEfficiencyPct,
	ColRolling7MorningInertiaMinutes,
}

// Value 按列名取值，供导出层使用
// 返回 nil 表示该列为空；时间点返回 time.Time，钟点返回 "HH:MM"
func (r NightResult) Value(column string) any {
	rec, m := r.Record, r.Metrics
	switch column {
	case ColRespondentID:
		if rec.RespondentID == nil {
			return nil
		}
		return *rec.RespondentID
	case ColRespondentOriginal:
		if rec.RespondentOriginal == "" {
			return nil
		}
		return rec.RespondentOriginal
	case ColSubmittedAt:
		if rec.SubmittedAt == nil {
			return nil
		}
		return *rec.SubmittedAt
	case ColCompletedAt:
		if rec.CompletedAt == nil {
			return nil
		}
		return *rec.CompletedAt
	case ColWentToBed:
		return timeValue(rec.WentToBed)
	case ColLightsOff:
		return timeValue(rec.LightsOff)
	case ColWakeFinal:
		return timeValue(rec.WakeFinal)
	case ColRoseFromBed:
		return timeValue(rec.RoseFromBed)
	case ColLatencyMinutes:
		return floatValue(rec.LatencyMinutes)
	case ColWASOMinutes:
		return rec.WASOMinutes
	case ColAwakeningCount:
		return rec.AwakeningCount
	case ColEstimatedSleepHours:
		return floatValue(rec.EstimatedSleepHours)
	case ColTimeInBedHours:
		return floatValue(m.TimeInBedHours)
	case ColSleepDurationHours:
		return floatValue(m.SleepDurationHours)
	case ColAwakeInBedHours:
		return floatValue(m.AwakeInBedHours)
	case ColSleepEfficiencyPct:
		return floatValue(m.SleepEfficiencyPct)
	case ColMorningInertiaMinutes:
		return floatValue(m.MorningInertiaMinutes)
	case ColRolling7TimeInBedHours:
		return floatValue(m.Rolling7TimeInBedHours)
	case ColRolling7SleepDurationHours:
		return floatValue(m.Rolling7SleepDurationHours)
	case ColRolling7SleepEfficiencyPct:
		return floatValue(m.Rolling7SleepEfficiencyPct)
	case ColRolling7MorningInertiaMinutes:
		return floatValue(m.Rolling7MorningInertiaMinutes)
	}
	return nil
}

func timeValue(t *TimeOfDay) any {
	if t == nil {
		return nil
	}
	return t.String()
}

func floatValue(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}
