package normalizer

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"wisefido-sleep-diary/internal/models"
)

var (
	colonPair      = regexp.MustCompile(`^(\d{1,3}):(\d{1,3})$`)
	colonTriple    = regexp.MustCompile(`^(\d{1,3}):(\d{1,2}):00?$`)
	plainThreeDigs = regexp.MustCompile(`^\d{3}$`)
)

// ParseLatency 解析入睡潜伏期（分钟）
//
// 数值原样通过；字符串支持 "15"、"15 min"、"10/15"（取平均）、"30:00"（视为 30 分钟）、
// "01:30"（90 分钟）。空值、否定回答和超出 [0, MaxMinutes] 的值按 p.Missing 处理。
func ParseLatency(v any, p LatencyPolicy) *float64 {
	if isBlank(v) {
		return p.missing()
	}

	minutes, ok := latencyMinutes(v, p)
	if !ok {
		return p.missing()
	}
	if minutes < 0 || minutes > p.MaxMinutes {
		return p.missing()
	}
	return &minutes
}

func latencyMinutes(v any, p LatencyPolicy) (float64, bool) {
	if f, ok := toFloat(v); ok {
		return f, true
	}
	switch val := v.(type) {
	case models.TimeOfDay:
		return float64(val.Minutes()), true
	case time.Time:
		return float64(val.Hour()*60 + val.Minute()), true
	case bool:
		return 0, false
	}

	s := cleanText(fmt.Sprint(v))
	if isNonAnswer(s) {
		return 0, false
	}
	s = normalizeDurationText(s)

	if m := colonTriple.FindStringSubmatch(s); m != nil {
		s = m[1] + ":" + m[2]
	}
	if m := colonPair.FindStringSubmatch(s); m != nil {
		a, _ := strconv.Atoi(m[1])
		b, _ := strconv.Atoi(m[2])
		// "30:00" 是把分钟数填进了 hh:mm 格式
		if b == 0 && a <= 300 {
			return float64(a), true
		}
		if b < 60 {
			return float64(a*60 + b), true
		}
	}

	if mean, ok := slashMean(s); ok {
		return mean, true
	}

	if p.RepairDigits && plainThreeDigs.MatchString(s) {
		raw, _ := strconv.ParseFloat(s, 64)
		if raw > p.MaxMinutes {
			if m := fixMinutes(s); m != nil && float64(*m) <= p.MaxMinutes {
				return float64(*m), true
			}
		}
		return raw, true
	}

	return firstNumber(s)
}

// ParseWASO 解析入睡后觉醒时长（分钟），结果封顶在 [0, MaxMinutes]，空值和否定回答为 0
//
// 0 到 1 之间的数值视为 Excel 时间小数；"01:30" 为 90 分钟；
// "H:00" 只有在按小时理解会超过上限时才视为 H 分钟（"30:00" -> 30）。
func ParseWASO(v any, p WASOPolicy) float64 {
	if isBlank(v) {
		return 0
	}
	minutes, ok := wasoMinutes(v, p)
	if !ok {
		return 0
	}
	return p.clamp(minutes)
}

func wasoMinutes(v any, p WASOPolicy) (float64, bool) {
	if f, ok := toFloat(v); ok {
		if f > 0 && f < 1 {
			return f * 24 * 60, true
		}
		return f, true
	}
	switch val := v.(type) {
	case models.TimeOfDay:
		return float64(val.Minutes()), true
	case *models.TimeOfDay:
		if val == nil {
			return 0, false
		}
		return float64(val.Minutes()), true
	case time.Time:
		return float64(val.Hour()*60 + val.Minute()), true
	case bool:
		return 0, false
	}

	s := cleanText(fmt.Sprint(v))
	if isNonAnswer(s) {
		return 0, false
	}
	s = normalizeDurationText(s)

	if mean, ok := slashMean(s); ok {
		return mean, true
	}

	if m := colonTriple.FindStringSubmatch(s); m != nil {
		s = m[1] + ":" + m[2]
	}
	if m := colonPair.FindStringSubmatch(s); m != nil {
		hh, _ := strconv.Atoi(m[1])
		mm, _ := strconv.Atoi(m[2])
		if mm == 0 && hh <= 300 && float64(hh*60) > p.MaxMinutes {
			return float64(hh), true
		}
		if mm < 60 {
			return float64(hh*60 + mm), true
		}
	}

	return firstNumber(s)
}

// ParseCount 解析次数（醒来次数），空值为 0
func ParseCount(v any) float64 {
	if isBlank(v) {
		return 0
	}
	if f, ok := toFloat(v); ok {
		if f < 0 {
			return 0
		}
		return f
	}
	if _, ok := v.(bool); ok {
		return 0
	}
	s := cleanText(fmt.Sprint(v))
	if mean, ok := slashMean(s); ok {
		return mean
	}
	if n, ok := firstNumber(s); ok {
		return n
	}
	return 0
}

// ParseEstimatedHours 解析受访者自估的睡眠时长（小时），范围 (0, 24]
//
// "7:30" -> 7.5；"7,5" / "7.5" -> 7.5；"7" -> 7；"6/7" -> 6.5；0 到 1 之间的数值视为 Excel 时间小数。
func ParseEstimatedHours(v any) *float64 {
	if isBlank(v) {
		return nil
	}
	hours, ok := estimatedHours(v)
	if !ok || hours <= 0 || hours > 24 {
		return nil
	}
	return &hours
}

func estimatedHours(v any) (float64, bool) {
	if f, ok := toFloat(v); ok {
		if f > 0 && f < 1 {
			return f * 24, true
		}
		return f, true
	}
	switch val := v.(type) {
	case models.TimeOfDay:
		return float64(val.Minutes()) / 60, true
	case time.Time:
		return float64(val.Hour()) + float64(val.Minute())/60, true
	case bool:
		return 0, false
	}

	s := cleanText(fmt.Sprint(v))
	if isNonAnswer(s) {
		return 0, false
	}
	s = strings.Join(strings.Fields(s), "")

	if mean, ok := slashMean(s); ok {
		return mean, true
	}

	// 一位小数是十进制小时（"7,5"），两位是分钟（"7.30"）
	if i := strings.IndexAny(s, ".,"); i > 0 {
		whole, frac := digitsOnly(s[:i]), digitsOnly(s[i+1:])
		if whole != "" && len(frac) == 1 {
			if f, err := strconv.ParseFloat(whole+"."+frac, 64); err == nil {
				return f, true
			}
		}
	}

	s = normalizeDurationText(s)
	if m := colonTriple.FindStringSubmatch(s); m != nil {
		s = m[1] + ":" + m[2]
	}
	if m := colonPair.FindStringSubmatch(s); m != nil {
		hh, _ := strconv.Atoi(m[1])
		mm, _ := strconv.Atoi(m[2])
		if mm < 60 {
			return float64(hh) + float64(mm)/60, true
		}
	}
	return firstNumber(s)
}
