package normalizer

import (
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"

	"wisefido-sleep-diary/internal/models"
)

var midnight24 = regexp.MustCompile(`^24(:0{1,2})?$`)

// ParseTime 将单元格值解析为钟点时间
//
// 支持的输入：
//   - models.TimeOfDay / *models.TimeOfDay / time.Time：原样取钟点
//   - 数值：[0,1) 视为 Excel 日内小数；否则视为 小时[.小数]
//   - 字符串：分隔符 ". , ; ' 空格" 统一为冒号，"24:00" -> 00:00，
//     "2315" 按 HHMM 拆分，多输入的数字按 fixHours / fixMinutes 的规则修复
//
// 无法解析时返回 nil，不会 panic。
func ParseTime(v any) *models.TimeOfDay {
	switch val := v.(type) {
	case nil:
		return nil
	case models.TimeOfDay:
		return timeOfDay(val.Hour, val.Minute)
	case *models.TimeOfDay:
		if val == nil {
			return nil
		}
		return timeOfDay(val.Hour, val.Minute)
	case time.Time:
		if val.IsZero() {
			return nil
		}
		return timeOfDay(val.Hour(), val.Minute())
	case *time.Time:
		if val == nil || val.IsZero() {
			return nil
		}
		return timeOfDay(val.Hour(), val.Minute())
	case string:
		return parseTimeString(val)
	case bool:
		return nil
	}
	if f, ok := toFloat(v); ok {
		return timeFromNumber(f)
	}
	return parseTimeString(fmt.Sprint(v))
}

func timeOfDay(hour, minute int) *models.TimeOfDay {
	t, ok := models.NewTimeOfDay(hour, minute)
	if !ok {
		return nil
	}
	return &t
}

// timeFromNumber 数值钟点
func timeFromNumber(v float64) *models.TimeOfDay {
	if v >= 0 && v < 1 {
		// Excel 时间：一天的小数
		total := int(math.Round(v * 24 * 3600))
		hh := (total / 3600) % 24
		mm := (total % 3600) / 60
		return timeOfDay(hh, mm)
	}

	if v < 0 || v >= 25 {
		return nil
	}
	hh := int(v)
	mm := int(math.Round((v - float64(hh)) * 60))
	if hh == 24 {
		hh = 0
	}
	return timeOfDay(hh, mm)
}

func parseTimeString(raw string) *models.TimeOfDay {
	s := cleanText(raw)
	if s == "" || !hasDigit(s) || isNonAnswerPhrase(s) {
		return nil
	}

	s = normalizeTimeText(s)

	if midnight24.MatchString(s) {
		return timeOfDay(0, 0)
	}

	// HHMM 无分隔符（如 "2315"）
	if !strings.Contains(s, ":") {
		digits := digitsOnly(s)
		if len(digits) != 4 {
			return nil
		}
		return combine(fixHours(digits[:2]), fixMinutes(digits[2:]))
	}

	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return nil
	}
	return combine(fixHours(parts[0]), fixMinutes(parts[1]))
}

func combine(hh, mm *int) *models.TimeOfDay {
	if hh == nil || mm == nil {
		return nil
	}
	return timeOfDay(*hh, *mm)
}

// fixHours 修复小时部分
// 24 视为 0；超出范围的多位数取最后两位（"223" -> 23）
func fixHours(s string) *int {
	digits := digitsOnly(s)
	if digits == "" {
		return nil
	}
	if h, ok := atoi(digits); ok {
		if h == 24 {
			return intPtr(0)
		}
		if h >= 0 && h <= 23 {
			return intPtr(h)
		}
	}
	if len(digits) >= 2 {
		h2, _ := atoi(digits[len(digits)-2:])
		if h2 == 24 {
			return intPtr(0)
		}
		if h2 >= 0 && h2 <= 23 {
			return intPtr(h2)
		}
	}
	return nil
}

// fixMinutes 修复分钟部分
//
// 空串视为 0 分；1-2 位直接校验；
// 3 位依次尝试 跳过中间位、后两位、前两位（"125" -> 15, 25, 12）；
// 4 位及以上依次尝试 后两位、前两位。第一个落在 0..59 的候选生效。
func fixMinutes(s string) *int {
	digits := digitsOnly(s)
	if digits == "" {
		return intPtr(0)
	}
	if len(digits) <= 2 {
		m, _ := atoi(digits)
		if m >= 0 && m <= 59 {
			return intPtr(m)
		}
		return nil
	}
	for _, m := range minuteCandidates(digits) {
		if m >= 0 && m <= 59 {
			return intPtr(m)
		}
	}
	return nil
}

// minuteCandidates 3 位及以上分钟串的候选值，按优先级排列
func minuteCandidates(digits string) []int {
	n := len(digits)
	if n == 3 {
		skipMiddle, _ := atoi(digits[:1] + digits[2:])
		lastTwo, _ := atoi(digits[1:])
		firstTwo, _ := atoi(digits[:2])
		return []int{skipMiddle, lastTwo, firstTwo}
	}
	lastTwo, _ := atoi(digits[n-2:])
	firstTwo, _ := atoi(digits[:2])
	return []int{lastTwo, firstTwo}
}

func intPtr(v int) *int {
	return &v
}
