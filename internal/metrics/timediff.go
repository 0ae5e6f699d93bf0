package metrics

import "wisefido-sleep-diary/internal/models"

const minutesPerDay = 24 * 60

// WrapDiffMinutes 跨午夜的时间差（分钟）
// b <= a 时认为 b 在第二天，因此结果在 (0, 1440] 之间，永不为负
func WrapDiffMinutes(a, b models.TimeOfDay) float64 {
	diff := b.Minutes() - a.Minutes()
	if diff <= 0 {
		diff += minutesPerDay
	}
	return float64(diff)
}

// SameDayDiffMinutes 同一天内的时间差（分钟），b < a 时为 0，不跨午夜
func SameDayDiffMinutes(a, b models.TimeOfDay) float64 {
	diff := b.Minutes() - a.Minutes()
	if diff < 0 {
		return 0
	}
	return float64(diff)
}
